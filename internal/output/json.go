package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONWriter writes release reports as JSON.
type JSONWriter struct{}

// JSONReport is the JSON output structure for a release report.
type JSONReport struct {
	RepoPath       string       `json:"repo"`
	From           string       `json:"from,omitempty"`
	To             string       `json:"to"`
	CurrentVersion string       `json:"currentVersion"`
	VersionSource  string       `json:"versionSource,omitempty"`
	NextVersion    string       `json:"nextVersion"`
	Level          string       `json:"level"`
	Changed        bool         `json:"changed"`
	GeneratedAt    string       `json:"generatedAt"`
	Commits        []JSONCommit `json:"commits"`
	Changelog      string       `json:"changelog,omitempty"`
	Written        []string     `json:"written,omitempty"`
}

// JSONCommit is the JSON output structure for a single commit.
type JSONCommit struct {
	Hash     string `json:"hash"`
	Subject  string `json:"subject"`
	Level    string `json:"level"`
	Included bool   `json:"included"`
	Merge    bool   `json:"merge,omitempty"`
}

// Write outputs the release report as JSON.
func (w *JSONWriter) Write(report *ReleaseReport, options OutputOptions) error {
	commits := make([]JSONCommit, len(report.Commits))
	for i, c := range report.Commits {
		commits[i] = JSONCommit{
			Hash:     c.Hash,
			Subject:  c.Subject,
			Level:    c.Level.String(),
			Included: c.Included,
			Merge:    c.Merge,
		}
	}

	to := report.To
	if to == "" {
		to = "HEAD"
	}

	jsonReport := JSONReport{
		RepoPath:       report.RepoPath,
		From:           report.From,
		To:             to,
		CurrentVersion: report.CurrentVersion,
		VersionSource:  report.VersionSource,
		NextVersion:    report.NextVersion,
		Level:          report.Level.String(),
		Changed:        report.Changed(),
		GeneratedAt:    report.GeneratedAt.Format(reportDateTimeLayout),
		Commits:        commits,
		Changelog:      report.Changelog,
		Written:        report.Written,
	}

	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}
	return writeJSON(out, jsonReport)
}

func writeJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
