package git

import "context"

// MockLogRunner is a test double for CLIRunner.
// It returns a canned log stream and records the arguments it was called with.
type MockLogRunner struct {
	Output []byte
	Error  error

	RepoPath string
	Args     []string
	Calls    int
}

// NewMockLogRunner creates a new MockLogRunner with the given output.
func NewMockLogRunner(output []byte, err error) *MockLogRunner {
	return &MockLogRunner{
		Output: output,
		Error:  err,
	}
}

// RunLogQuery returns the predefined output or error.
func (m *MockLogRunner) RunLogQuery(_ context.Context, repoPath string, args []string) ([]byte, error) {
	m.Calls++
	m.RepoPath = repoPath
	m.Args = append([]string(nil), args...)
	if m.Error != nil {
		return nil, m.Error
	}
	return m.Output, nil
}
