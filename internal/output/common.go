package output

import (
	"io"
	"os"

	"github.com/masmgr/changever/internal/bump"
	"github.com/masmgr/changever/internal/git"
)

const reportDateTimeLayout = "2006-01-02T15:04:05"

func openOutputWriter(outputPath string) (io.Writer, *os.File, error) {
	if outputPath == "" {
		return os.Stdout, nil, nil
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}

func rangeLabel(from, to string) string {
	if to == "" {
		to = "HEAD"
	}
	if from == "" {
		return to
	}
	return from + ".." + to
}

func shortHash(hash string) string {
	return git.Commit{Hash: hash}.ShortHash()
}

func versionLabel(report *ReleaseReport) string {
	if report.Level == bump.None {
		return report.NextVersion + " (unchanged)"
	}
	return report.NextVersion
}

func truncateMessage(msg string, maxLen int) string {
	if len(msg) <= maxLen {
		return msg
	}
	return msg[:maxLen-3] + "..."
}
