package git

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	cverrors "github.com/masmgr/changever/internal/errors"
)

// logRecordText renders a record the way the log format does: sentinel line,
// YAML keys, free text indented by two spaces, newline-terminated.
func logRecordText(hash, parents, subject, body, trailers string) string {
	var sb strings.Builder
	sb.WriteString("\x1e\n")
	sb.WriteString("hash: " + hash + "\n")
	sb.WriteString("parents: \"" + parents + "\"\n")
	sb.WriteString("subject: |2-\n" + indentText(subject) + "\n")
	sb.WriteString("body: |2-\n" + indentText(body) + "\n")
	sb.WriteString("trailers: |2-\n" + indentText(trailers) + "\n")
	return sb.String()
}

func indentText(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = "  " + l
		}
	}
	return strings.Join(lines, "\n")
}

func TestBuildLogArgs(t *testing.T) {
	tests := []struct {
		name      string
		opts      ExtractOptions
		wantRange string
		wantMerge bool
	}{
		{name: "DefaultsToHEAD", opts: ExtractOptions{}, wantRange: "HEAD"},
		{name: "EndOnly", opts: ExtractOptions{EndRef: "main"}, wantRange: "main"},
		{name: "StartOnly", opts: ExtractOptions{StartRef: "v1.0.0"}, wantRange: "v1.0.0..HEAD"},
		{name: "StartAndEnd", opts: ExtractOptions{StartRef: "v1.0.0", EndRef: "v1.1.0"}, wantRange: "v1.0.0..v1.1.0"},
		{name: "TrimsWhitespace", opts: ExtractOptions{StartRef: " a ", EndRef: " b "}, wantRange: "a..b"},
		{name: "IncludeMerges", opts: ExtractOptions{IncludeMergeCommits: true}, wantRange: "HEAD", wantMerge: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := BuildLogArgs(tt.opts)

			if args[0] != "log" {
				t.Fatalf("args[0] = %q, expected log", args[0])
			}
			if got := args[len(args)-1]; got != tt.wantRange {
				t.Fatalf("range = %q, expected %q", got, tt.wantRange)
			}

			hasNoMerges := false
			hasFormat := false
			for _, a := range args {
				if a == "--no-merges" {
					hasNoMerges = true
				}
				if strings.HasPrefix(a, "--format=") {
					hasFormat = true
				}
			}
			if hasNoMerges == tt.wantMerge {
				t.Fatalf("--no-merges present = %v with IncludeMergeCommits = %v", hasNoMerges, tt.wantMerge)
			}
			if !hasFormat {
				t.Fatalf("missing --format argument in %v", args)
			}
		})
	}
}

func TestParseLog_RecordsInOrder(t *testing.T) {
	stream := logRecordText("c3", "b2 x9", "Merge branch 'feature'", "", "") +
		logRecordText("b2", "a1", "fix(api): handle nil", "Longer explanation.\n\nSigned-off-by: A <a@example.com>", "Signed-off-by: A <a@example.com>") +
		logRecordText("a1", "", "feat: initial", "", "")

	commits, err := ParseLog([]byte(stream), nil, nil)
	if err != nil {
		t.Fatalf("ParseLog: %v", err)
	}
	if len(commits) != 3 {
		t.Fatalf("commits = %d, expected 3", len(commits))
	}

	var hashes []string
	for _, c := range commits {
		hashes = append(hashes, c.Hash)
	}
	if !reflect.DeepEqual(hashes, []string{"c3", "b2", "a1"}) {
		t.Fatalf("order = %v, expected [c3 b2 a1]", hashes)
	}

	if !commits[0].Merge {
		t.Fatal("commit with two parents must be a merge")
	}
	if commits[1].Merge || commits[2].Merge {
		t.Fatal("single-parent and root commits must not be merges")
	}
	if commits[0].Body != nil {
		t.Fatalf("empty body should be absent, got %#v", commits[0].Body)
	}
	if commits[1].Subject.IsParsed || commits[1].Subject.Raw != "fix(api): handle nil" {
		t.Fatalf("subject = %#v, expected raw text", commits[1].Subject)
	}
	if commits[1].Body == nil || !strings.HasPrefix(commits[1].Body.Raw, "Longer explanation.") {
		t.Fatalf("body = %#v", commits[1].Body)
	}
	if got := commits[1].Footer["Signed-off-by"]; !reflect.DeepEqual(got, []string{"A <a@example.com>"}) {
		t.Fatalf("Signed-off-by = %v, expected a single deduplicated value", got)
	}
	if len(commits[2].Footer) != 0 || commits[2].Footer == nil {
		t.Fatalf("footer of commit without trailers = %#v, expected empty map", commits[2].Footer)
	}
}

func TestParseLog_DelimiterLikeContentStaysInBody(t *testing.T) {
	body := "  indented first line\n---\nhash: not-a-commit\nsubject: |2-\n\nMore text"
	stream := logRecordText("b2", "a1", "docs: tricky: subject --- here", body, "") +
		logRecordText("a1", "", "feat: initial", "", "")

	commits, err := ParseLog([]byte(stream), nil, nil)
	if err != nil {
		t.Fatalf("ParseLog: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("commits = %d, expected 2", len(commits))
	}
	if commits[0].Subject.Raw != "docs: tricky: subject --- here" {
		t.Fatalf("subject = %q", commits[0].Subject.Raw)
	}
	if commits[0].Body == nil || commits[0].Body.Raw != body {
		t.Fatalf("body = %#v, expected %q", commits[0].Body, body)
	}
}

func TestParseLog_FooterGrammar(t *testing.T) {
	body := "Some context.\n\nBREAKING CHANGE: config format changed\nRefs: #12\nRefs: #13\nnot a footer line"
	stream := logRecordText("a1", "", "feat!: new config", body, "Refs: #12\nRefs: #13")

	commits, err := ParseLog([]byte(stream), nil, nil)
	if err != nil {
		t.Fatalf("ParseLog: %v", err)
	}

	footer := commits[0].Footer
	if got := footer["BREAKING CHANGE"]; !reflect.DeepEqual(got, []string{"config format changed"}) {
		t.Fatalf("BREAKING CHANGE = %v", got)
	}
	if got := footer["Refs"]; !reflect.DeepEqual(got, []string{"#12", "#13"}) {
		t.Fatalf("Refs = %v", got)
	}
	if len(footer) != 2 {
		t.Fatalf("footer = %v, expected 2 tokens", footer)
	}
	if v, ok := commits[0].FooterValue("refs"); !ok || v != "#12" {
		t.Fatalf("FooterValue(refs) = %q, %v", v, ok)
	}
}

func TestParseLog_AppliesHooks(t *testing.T) {
	stream := logRecordText("a1", "", "feat: initial", "Body text", "")

	subjectHook := func(raw string) (any, error) {
		return map[string]any{"upper": strings.ToUpper(raw)}, nil
	}
	bodyHook := func(raw string) (any, error) {
		return len(raw), nil
	}

	commits, err := ParseLog([]byte(stream), subjectHook, bodyHook)
	if err != nil {
		t.Fatalf("ParseLog: %v", err)
	}

	subj := commits[0].Subject
	if !subj.IsParsed {
		t.Fatal("subject should be the parsed variant")
	}
	if m, ok := subj.Value().(map[string]any); !ok || m["upper"] != "FEAT: INITIAL" {
		t.Fatalf("subject value = %#v", subj.Value())
	}
	if subj.Raw != "feat: initial" {
		t.Fatalf("raw subject = %q, expected to be kept", subj.Raw)
	}
	if commits[0].Body == nil || commits[0].Body.Value() != len("Body text") {
		t.Fatalf("body = %#v", commits[0].Body)
	}
}

func TestParseLog_HookErrorDiscardsResult(t *testing.T) {
	stream := logRecordText("b2", "a1", "fix: ok", "", "") +
		logRecordText("a1", "", "bad subject", "", "")

	hookErr := errors.New("unparseable")
	hook := func(raw string) (any, error) {
		if raw == "bad subject" {
			return nil, hookErr
		}
		return raw, nil
	}

	commits, err := ParseLog([]byte(stream), hook, nil)
	if !errors.Is(err, hookErr) {
		t.Fatalf("err = %v, expected hook error", err)
	}
	if !strings.Contains(err.Error(), "a1") {
		t.Fatalf("err = %v, expected commit hash in message", err)
	}
	if commits != nil {
		t.Fatalf("commits = %v, expected nil on failure", commits)
	}
}

func TestParseLog_MalformedRecord(t *testing.T) {
	stream := "\x1e\nhash: [unterminated\n"

	_, err := ParseLog([]byte(stream), nil, nil)
	if !errors.Is(err, cverrors.ErrExtraction) {
		t.Fatalf("err = %v, expected extraction error", err)
	}

	_, err = ParseLog([]byte("\x1e\nsubject: |2-\n  no hash\n"), nil, nil)
	if !errors.Is(err, cverrors.ErrExtraction) {
		t.Fatalf("err = %v, expected extraction error for missing hash", err)
	}
}

func TestParseLog_Empty(t *testing.T) {
	commits, err := ParseLog(nil, nil, nil)
	if err != nil {
		t.Fatalf("ParseLog: %v", err)
	}
	if len(commits) != 0 {
		t.Fatalf("commits = %d, expected 0", len(commits))
	}
}

func TestExtractor_Extract(t *testing.T) {
	runner := NewMockLogRunner([]byte(logRecordText("a1", "", "feat: x", "", "")), nil)
	ex := NewExtractor(runner)

	commits, err := ex.Extract(context.Background(), "/repo", ExtractOptions{StartRef: "v1.0.0"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(commits) != 1 || commits[0].Hash != "a1" {
		t.Fatalf("commits = %#v", commits)
	}
	if runner.RepoPath != "/repo" {
		t.Fatalf("repo path = %q, expected /repo", runner.RepoPath)
	}
	if !reflect.DeepEqual(runner.Args, BuildLogArgs(ExtractOptions{StartRef: "v1.0.0"})) {
		t.Fatalf("args = %v", runner.Args)
	}
}

func TestExtractor_Errors(t *testing.T) {
	t.Run("MissingRepoPath", func(t *testing.T) {
		runner := NewMockLogRunner(nil, nil)
		_, err := NewExtractor(runner).Extract(context.Background(), " ", ExtractOptions{})
		if !errors.Is(err, cverrors.ErrConfiguration) {
			t.Fatalf("err = %v, expected configuration error", err)
		}
		if runner.Calls != 0 {
			t.Fatal("runner must not be invoked without a repository path")
		}
	})

	t.Run("RunnerErrorPropagatesUnchanged", func(t *testing.T) {
		runErr := cverrors.NewExtractionError("git log exited with code 128")
		_, err := NewExtractor(NewMockLogRunner(nil, runErr)).Extract(context.Background(), ".", ExtractOptions{})
		if err != runErr {
			t.Fatalf("err = %v, expected the runner error itself", err)
		}
	})
}

func TestParseLog_ControlCharactersRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
	}{
		{name: "record sentinel in body", subject: "feat: s", body: "line\n\x1e\nmore"},
		{name: "ansi colour codes", subject: "fix: colour", body: "Output was \x1b[31mred\x1b[0m"},
		{name: "bell in subject", subject: "fix: bell \x07 char", body: ""},
		{name: "carriage return", subject: "docs: crlf", body: "first\r\nsecond\rthird"},
		{name: "line separators", subject: "docs: breaks", body: "a\u2028b\u2029c\u0085d"},
		{name: "invalid utf-8", subject: "fix: latin \xe9t\xe9", body: "caf\xe9"},
		{name: "private use runes", subject: "chore: \ue100\ue041", body: "\ue100\ue100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := logRecordText("b2", "a1", tt.subject, tt.body, "") +
				logRecordText("a1", "", "feat: initial", "", "")

			commits, err := ParseLog([]byte(stream), nil, nil)
			if err != nil {
				t.Fatalf("ParseLog: %v", err)
			}
			if len(commits) != 2 {
				t.Fatalf("commits = %d, expected 2", len(commits))
			}
			if commits[0].Subject.Raw != tt.subject {
				t.Errorf("subject = %q, expected %q", commits[0].Subject.Raw, tt.subject)
			}
			if tt.body == "" {
				if commits[0].Body != nil {
					t.Errorf("body = %q, expected none", commits[0].Body.Raw)
				}
			} else if commits[0].Body == nil || commits[0].Body.Raw != tt.body {
				t.Errorf("body = %#v, expected %q", commits[0].Body, tt.body)
			}
			if commits[1].Hash != "a1" {
				t.Errorf("second hash = %q", commits[1].Hash)
			}
		})
	}
}

func TestParseLog_FooterKeepsRepeatedTrailers(t *testing.T) {
	body := "Context.\n\nReviewed-by: Ann <ann@example.com>\nReviewed-by: Ann <ann@example.com>\nRefs: #7"
	trailers := "Reviewed-by: Ann <ann@example.com>\nReviewed-by: Ann <ann@example.com>"
	stream := logRecordText("a1", "", "fix: x", body, trailers)

	commits, err := ParseLog([]byte(stream), nil, nil)
	if err != nil {
		t.Fatalf("ParseLog: %v", err)
	}

	footer := commits[0].Footer
	if got := footer["Reviewed-by"]; !reflect.DeepEqual(got, []string{"Ann <ann@example.com>", "Ann <ann@example.com>"}) {
		t.Fatalf("Reviewed-by = %v, expected both trailers", got)
	}
	if got := footer["Refs"]; !reflect.DeepEqual(got, []string{"#7"}) {
		t.Fatalf("Refs = %v", got)
	}
}

func TestParseLog_FooterRepeatsWithinParagraph(t *testing.T) {
	body := "Context.\n\nAcked-by: Bo\nAcked-by: Bo"
	stream := logRecordText("a1", "", "fix: x", body, "")

	commits, err := ParseLog([]byte(stream), nil, nil)
	if err != nil {
		t.Fatalf("ParseLog: %v", err)
	}
	if got := commits[0].Footer["Acked-by"]; !reflect.DeepEqual(got, []string{"Bo", "Bo"}) {
		t.Fatalf("Acked-by = %v", got)
	}
}
