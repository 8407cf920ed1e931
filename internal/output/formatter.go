package output

import (
	"time"

	"github.com/masmgr/changever/internal/bump"
	"github.com/masmgr/changever/internal/git"
)

// Compile-time interface conformance checks.
var (
	_ ReportWriter = (*ConsoleWriter)(nil)
	_ ReportWriter = (*JSONWriter)(nil)
	_ ReportWriter = (*CSVWriter)(nil)
	_ ReportWriter = (*MarkdownWriter)(nil)
	_ ReportWriter = (*CIWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
	FormatCI       OutputFormat = "ci"
)

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	OutputPath string
	// Verbose lists every commit in the console output, not only the ones
	// that move the version.
	Verbose bool
}

// ReleaseReport holds everything computed for one run.
type ReleaseReport struct {
	RepoPath       string
	From           string
	To             string
	CurrentVersion string
	// VersionSource names where CurrentVersion came from, e.g. "tag v1.2.0".
	VersionSource string
	NextVersion   string
	Level         bump.Level
	GeneratedAt   time.Time
	Commits       []CommitEntry
	// Changelog is the rendered entry, empty when none was rendered.
	Changelog string
	// Written lists the files modified by a release.
	Written []string
}

// Changed reports whether the run produces a new version.
func (r *ReleaseReport) Changed() bool {
	return r.Level != bump.None
}

// IncludedCount returns how many commits appear in the changelog.
func (r *ReleaseReport) IncludedCount() int {
	n := 0
	for _, c := range r.Commits {
		if c.Included {
			n++
		}
	}
	return n
}

// CommitEntry is one analyzed commit.
type CommitEntry struct {
	Hash     string
	Subject  string
	Level    bump.Level
	Included bool
	Merge    bool
}

// NewCommitEntries classifies each commit for reporting. A nil include keeps
// every commit.
func NewCommitEntries(commits []git.Commit, classify bump.Classifier, include func(git.Commit) bool) []CommitEntry {
	entries := make([]CommitEntry, len(commits))
	for i, c := range commits {
		entries[i] = CommitEntry{
			Hash:     c.Hash,
			Subject:  c.Subject.Raw,
			Level:    classify(c),
			Included: include == nil || include(c),
			Merge:    c.Merge,
		}
	}
	return entries
}

// ReportWriter writes release reports.
type ReportWriter interface {
	Write(report *ReleaseReport, options OutputOptions) error
}

// NewReportWriter creates a report writer for the specified format.
func NewReportWriter(format OutputFormat) ReportWriter {
	switch format {
	case FormatJSON:
		return &JSONWriter{}
	case FormatCSV:
		return &CSVWriter{}
	case FormatMarkdown:
		return &MarkdownWriter{}
	case FormatCI:
		return &CIWriter{}
	default:
		return &ConsoleWriter{}
	}
}
