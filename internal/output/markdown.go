package output

import (
	"fmt"
	"strings"

	"github.com/masmgr/changever/internal/bump"
)

// MarkdownWriter writes release reports as Markdown, e.g. for a pull request
// comment.
type MarkdownWriter struct{}

// Write outputs the release report as Markdown.
func (w *MarkdownWriter) Write(report *ReleaseReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintf(out, "# Release %s\n\n", versionLabel(report))
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	fmt.Fprintf(out, "**Range:** `%s`\n\n", rangeLabel(report.From, report.To))
	fmt.Fprintf(out, "**Current Version:** %s\n\n", report.CurrentVersion)
	fmt.Fprintf(out, "**Increment:** %s %s\n\n", getLevelEmoji(report.Level), report.Level)

	fmt.Fprintln(out, "## Commits")
	fmt.Fprintln(out)
	if len(report.Commits) == 0 {
		fmt.Fprintln(out, "_No commits in range._")
	} else {
		fmt.Fprintln(out, "| # | SHA | Level | Changelog | Subject |")
		fmt.Fprintln(out, "|---|-----|-------|-----------|---------|")
		for i, c := range report.Commits {
			fmt.Fprintf(out, "| %d | `%s` | %s %s | %s | %s |\n",
				i+1, shortHash(c.Hash), getLevelEmoji(c.Level), c.Level, yesNo(c.Included),
				escapeMarkdown(truncateMessage(c.Subject, 80)))
		}
	}

	if report.Changelog != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "## Changelog Entry")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "````markdown")
		fmt.Fprint(out, strings.TrimRight(report.Changelog, "\n"))
		fmt.Fprintln(out)
		fmt.Fprintln(out, "````")
	}

	if len(report.Written) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "## Updated Files")
		fmt.Fprintln(out)
		for _, path := range report.Written {
			fmt.Fprintf(out, "- `%s`\n", path)
		}
	}

	return nil
}

func getLevelEmoji(level bump.Level) string {
	switch level {
	case bump.Major:
		return "🔴"
	case bump.Minor:
		return "🟡"
	case bump.Patch:
		return "🟢"
	default:
		return "⚪"
	}
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
