package git

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	cverrors "github.com/masmgr/changever/internal/errors"
)

// recordSentinel starts every commit record on its own line. Multi-line
// fields are indented by git (%w(0,2,2)), so the sentinel can never appear at
// the start of a line inside a record.
const recordSentinel = "\x1e"

// logFormat renders one YAML mapping per commit. Free-text fields use literal
// block scalars with an explicit indentation indicator, which keeps leading
// whitespace, "---" lines and "key: value" text inside the scalar.
const logFormat = "%x1e%n" +
	"hash: %H%n" +
	"parents: \"%P\"%n" +
	"subject: |2-%n%w(0,2,2)%s%w(0,0,0)%n" +
	"body: |2-%n%w(0,2,2)%b%w(0,0,0)%n" +
	"trailers: |2-%n%w(0,2,2)%(trailers:only,unfold)%w(0,0,0)"

// footerLine is the `Token: value` grammar of a footer line. "BREAKING CHANGE"
// is accepted even though git does not treat it as a trailer token.
var footerLine = regexp.MustCompile(`^(BREAKING CHANGE|[A-Za-z][A-Za-z0-9-]*): (.*)$`)

type logRecord struct {
	Hash     string `yaml:"hash"`
	Parents  string `yaml:"parents"`
	Subject  string `yaml:"subject"`
	Body     string `yaml:"body"`
	Trailers string `yaml:"trailers"`
}

// Extractor reads commits through a LogRunner and classifies them with the
// hooks given per call.
type Extractor struct {
	runner LogRunner
}

// NewExtractor creates an extractor. A nil runner means the git executable.
func NewExtractor(runner LogRunner) *Extractor {
	if runner == nil {
		runner = &CLIRunner{}
	}
	return &Extractor{runner: runner}
}

// Extract returns the commits of the requested range in git log order.
func (e *Extractor) Extract(ctx context.Context, repoPath string, opts ExtractOptions) ([]Commit, error) {
	if strings.TrimSpace(repoPath) == "" {
		return nil, cverrors.NewConfigError("repository path is required")
	}

	out, err := e.runner.RunLogQuery(ctx, repoPath, BuildLogArgs(opts))
	if err != nil {
		return nil, err
	}

	return ParseLog(out, opts.ParseSubject, opts.ParseBody)
}

// BuildLogArgs returns the git arguments (without -C) for a log query.
func BuildLogArgs(opts ExtractOptions) []string {
	args := []string{
		"log",
		"--no-color",
		"--format=" + logFormat,
	}

	if !opts.IncludeMergeCommits {
		args = append(args, "--no-merges")
	}

	return append(args, revisionRange(opts.StartRef, opts.EndRef))
}

func revisionRange(start, end string) string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if end == "" {
		end = "HEAD"
	}
	if start == "" {
		return end
	}
	return start + ".." + end
}

// ParseLog decodes the output of a log query built by BuildLogArgs and applies
// the hooks. Any decoding or hook failure discards the whole result.
func ParseLog(out []byte, parseSubject, parseBody TextParser) ([]Commit, error) {
	// A leading newline lets the first sentinel match the same separator as
	// the others.
	stream := append([]byte{'\n'}, out...)
	records := bytes.Split(stream, []byte("\n"+recordSentinel+"\n"))

	commits := make([]Commit, 0, len(records))
	for _, rec := range records {
		if len(bytes.TrimSpace(rec)) == 0 {
			continue
		}

		var raw logRecord
		if err := yaml.Unmarshal(escapeRecord(rec), &raw); err != nil {
			return nil, cverrors.Wrap(err, cverrors.Extraction, "decoding git log record")
		}
		raw.restore()
		if raw.Hash == "" {
			return nil, cverrors.NewExtractionError("git log record without hash: %q", truncate(string(rec), 80))
		}

		commit, err := buildCommit(raw, parseSubject, parseBody)
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}

	return commits, nil
}

func buildCommit(raw logRecord, parseSubject, parseBody TextParser) (Commit, error) {
	parents := strings.Fields(raw.Parents)

	c := Commit{
		Hash:    raw.Hash,
		Parents: parents,
		Merge:   len(parents) >= 2,
		Subject: RawText(raw.Subject),
		Footer:  mergeFooter(raw.Trailers, lastParagraph(raw.Body)),
	}

	if parseSubject != nil {
		v, err := parseSubject(raw.Subject)
		if err != nil {
			return Commit{}, fmt.Errorf("parse subject of %s: %w", raw.Hash, err)
		}
		c.Subject = ParsedText(raw.Subject, v)
	}

	if body := strings.TrimRight(raw.Body, "\n"); strings.TrimSpace(body) != "" {
		text := RawText(body)
		if parseBody != nil {
			v, err := parseBody(body)
			if err != nil {
				return Commit{}, fmt.Errorf("parse body of %s: %w", raw.Hash, err)
			}
			text = ParsedText(body, v)
		}
		c.Body = &text
	}

	return c, nil
}

type footerPair struct {
	token, value string
}

// footerPairs returns the `Token: value` lines of block in order. Lines that
// do not match the grammar are skipped.
func footerPairs(block string) []footerPair {
	var pairs []footerPair
	for _, line := range strings.Split(block, "\n") {
		m := footerLine.FindStringSubmatch(strings.TrimRight(line, " \t\r"))
		if m == nil {
			continue
		}
		pairs = append(pairs, footerPair{token: m[1], value: strings.TrimSpace(m[2])})
	}
	return pairs
}

// mergeFooter builds the footer from git's trailer block and the last
// paragraph of the body. git derives its trailers from that same paragraph, so
// a paragraph line is skipped when the trailer block already produced it;
// repeats within one source are kept.
func mergeFooter(trailers, paragraph string) map[string][]string {
	footer := make(map[string][]string)
	seen := make(map[footerPair]int)
	for _, p := range footerPairs(trailers) {
		footer[p.token] = append(footer[p.token], p.value)
		seen[p]++
	}
	for _, p := range footerPairs(paragraph) {
		if seen[p] > 0 {
			seen[p]--
			continue
		}
		footer[p.token] = append(footer[p.token], p.value)
	}
	return footer
}

// lastParagraph returns the last blank-line separated block of a message.
func lastParagraph(body string) string {
	body = strings.TrimRight(body, "\n \t")
	if idx := strings.LastIndex(body, "\n\n"); idx != -1 {
		return body[idx+2:]
	}
	return body
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
