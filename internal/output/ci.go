package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/masmgr/changever/internal/bump"
)

// CIWriter writes release reports as NDJSON (one JSON object per line) for CI pipelines.
type CIWriter struct{}

// CISummary is the first line of CI output.
type CISummary struct {
	Type           string `json:"type"`
	CurrentVersion string `json:"currentVersion"`
	NextVersion    string `json:"nextVersion"`
	Level          string `json:"level"`
	Changed        bool   `json:"changed"`
	TotalCommits   int    `json:"totalCommits"`
	Included       int    `json:"included"`
	MajorCount     int    `json:"majorCount"`
	MinorCount     int    `json:"minorCount"`
	PatchCount     int    `json:"patchCount"`
}

// CICommitEntry represents a single commit in CI output.
type CICommitEntry struct {
	Type     string `json:"type"`
	Hash     string `json:"hash"`
	Level    string `json:"level"`
	Included bool   `json:"included"`
	Subject  string `json:"subject"`
}

// Write outputs the release report as NDJSON.
func (w *CIWriter) Write(report *ReleaseReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	summary := CISummary{
		Type:           "summary",
		CurrentVersion: report.CurrentVersion,
		NextVersion:    report.NextVersion,
		Level:          report.Level.String(),
		Changed:        report.Changed(),
		TotalCommits:   len(report.Commits),
		Included:       report.IncludedCount(),
	}
	for _, c := range report.Commits {
		switch c.Level {
		case bump.Major:
			summary.MajorCount++
		case bump.Minor:
			summary.MinorCount++
		case bump.Patch:
			summary.PatchCount++
		}
	}
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}

	for _, c := range report.Commits {
		entry := CICommitEntry{
			Type:     "commit",
			Hash:     c.Hash,
			Level:    c.Level.String(),
			Included: c.Included,
			Subject:  c.Subject,
		}
		if err := writeNDJSONLine(out, entry); err != nil {
			return err
		}
	}

	return nil
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
