package git

import "context"

// LogRunner runs a git log query and returns its standard output.
// This abstraction lets the record parser be tested against canned streams.
type LogRunner interface {
	RunLogQuery(ctx context.Context, repoPath string, args []string) ([]byte, error)
}

// CommitExtractor reads classified commits from a repository.
type CommitExtractor interface {
	Extract(ctx context.Context, repoPath string, opts ExtractOptions) ([]Commit, error)
}

// Compile-time interface conformance checks.
var (
	_ LogRunner       = (*CLIRunner)(nil)
	_ LogRunner       = (*MockLogRunner)(nil)
	_ CommitExtractor = (*Extractor)(nil)
)
