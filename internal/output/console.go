package output

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/masmgr/changever/internal/bump"
)

// ConsoleWriter writes release reports for a terminal.
type ConsoleWriter struct{}

// Write outputs the release report to the console.
func (w *ConsoleWriter) Write(report *ReleaseReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	color.New(color.FgGreen).Fprintln(out, "Release Analysis")
	fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
	fmt.Fprintf(out, "Range: %s\n", rangeLabel(report.From, report.To))
	if report.VersionSource != "" {
		fmt.Fprintf(out, "Current version: %s (from %s)\n", report.CurrentVersion, report.VersionSource)
	} else {
		fmt.Fprintf(out, "Current version: %s\n", report.CurrentVersion)
	}
	fmt.Fprintf(out, "Commits analyzed: %d (%d in changelog)\n\n", len(report.Commits), report.IncludedCount())

	rows := report.Commits
	if !options.Verbose {
		rows = significant(report.Commits)
	}

	if len(rows) > 0 {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tSHA\tLevel\tLog\tSubject")
		for i, c := range rows {
			levelColor := getLevelColor(c.Level)
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
				i+1,
				shortHash(c.Hash),
				levelColor(c.Level.String()),
				yesNo(c.Included),
				truncateMessage(c.Subject, 60),
			)
		}
		tw.Flush()
		fmt.Fprintln(out)
	}

	levelColor := getLevelColor(report.Level)
	fmt.Fprintf(out, "Next version: %s [%s]\n", color.New(color.Bold).Sprint(versionLabel(report)), levelColor(report.Level.String()))

	for _, path := range report.Written {
		fmt.Fprintf(out, "Updated %s\n", path)
	}
	return nil
}

// Helper functions

func getLevelColor(level bump.Level) func(string, ...interface{}) string {
	switch level {
	case bump.Major:
		return color.RedString
	case bump.Minor:
		return color.YellowString
	case bump.Patch:
		return color.GreenString
	default:
		return fmt.Sprintf
	}
}

// significant drops commits that neither bump the version nor reach the
// changelog.
func significant(commits []CommitEntry) []CommitEntry {
	var kept []CommitEntry
	for _, c := range commits {
		if c.Level != bump.None || c.Included {
			kept = append(kept, c)
		}
	}
	return kept
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
