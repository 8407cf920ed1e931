package output

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCIWriter_Write(t *testing.T) {
	data := writeReport(t, &CIWriter{}, sampleReport(), OutputOptions{Format: FormatCI})

	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) != 4 { // 1 summary + 3 commits
		t.Fatalf("expected 4 lines, got %d: %s", len(lines), data)
	}

	var summary CISummary
	if err := json.Unmarshal([]byte(lines[0]), &summary); err != nil {
		t.Fatalf("Failed to parse summary: %v", err)
	}
	if summary.Type != "summary" {
		t.Errorf("summary.Type = %q, want %q", summary.Type, "summary")
	}
	if summary.NextVersion != "1.3.0" || summary.Level != "minor" || !summary.Changed {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.TotalCommits != 3 || summary.Included != 2 {
		t.Errorf("summary counts = %d/%d, want 3/2", summary.TotalCommits, summary.Included)
	}
	if summary.MinorCount != 1 || summary.PatchCount != 1 || summary.MajorCount != 0 {
		t.Errorf("level counts = %d/%d/%d", summary.MajorCount, summary.MinorCount, summary.PatchCount)
	}

	var entry CICommitEntry
	if err := json.Unmarshal([]byte(lines[2]), &entry); err != nil {
		t.Fatalf("Failed to parse entry: %v", err)
	}
	if entry.Type != "commit" || entry.Hash != "bbbbbbb222222" || entry.Level != "none" || entry.Included {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestCIWriter_NoCommits(t *testing.T) {
	report := sampleReport()
	report.Commits = nil

	data := writeReport(t, &CIWriter{}, report, OutputOptions{Format: FormatCI})
	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the summary line, got %d", len(lines))
	}
}
