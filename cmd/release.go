package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/changever/internal/bump"
	"github.com/masmgr/changever/internal/changelog"
	"github.com/masmgr/changever/internal/versionfile"
)

// ReleaseCmd returns the release command.
func ReleaseCmd() *cli.Command {
	flags := append(commonFlags(), renderFlags()...)
	flags = append(flags, reportFlags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Compute and report without writing any file",
		},
	)

	return &cli.Command{
		Name:    "release",
		Aliases: []string{"r"},
		Usage:   "Bump the version file and prepend the changelog entry",
		Flags:   flags,
		Action:  releaseAction,
	}
}

func releaseAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}

	level, next, err := ctx.NextVersion()
	if err != nil {
		return err
	}
	report := ctx.Report(level, next)

	if level == bump.None {
		color.New(color.FgYellow).Fprintf(c.App.ErrWriter,
			"No release-worthy commits in %s; version stays %s.\n", rangeDescription(ctx.From, ctx.To), next)
		return writeReleaseReport(c, report)
	}

	entry, err := ctx.RenderChangelog(next, c.String("date"), ctx.Preset.Include)
	if err != nil {
		return err
	}
	report.Changelog = entry

	if c.Bool("dry-run") {
		return writeReleaseReport(c, report)
	}

	// The version file is written first and restored if the changelog
	// cannot be.
	var update *versionfile.Update
	if ctx.Config.VersionFile != "" {
		update, err = versionfile.Prepare(repoFile(ctx.RepoPath, ctx.Config.VersionFile), next)
		if err != nil {
			return fmt.Errorf("updating version file: %w", err)
		}
		if err := update.Apply(); err != nil {
			return fmt.Errorf("updating version file: %w", err)
		}
	}

	path := ctx.ChangelogPath()
	if err := changelog.Prepend(path, entry); err != nil {
		if update != nil {
			if rerr := update.Revert(); rerr != nil {
				return errors.Join(err, rerr)
			}
		}
		return err
	}
	report.Written = append(report.Written, path)
	if update != nil {
		report.Written = append(report.Written, update.Path)
	}

	return writeReleaseReport(c, report)
}
