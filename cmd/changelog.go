package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/changever/internal/bump"
	"github.com/masmgr/changever/internal/changelog"
)

// ChangelogCmd returns the changelog command.
func ChangelogCmd() *cli.Command {
	flags := append(commonFlags(), renderFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:  "release-version",
			Usage: "Version for the heading (default: the computed next version)",
		},
		&cli.BoolFlag{
			Name:    "write",
			Aliases: []string{"w"},
			Usage:   "Prepend the entry to the changelog file instead of printing it",
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Include every commit, not only the configured types",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
	)

	return &cli.Command{
		Name:    "changelog",
		Aliases: []string{"cl"},
		Usage:   "Render the changelog entry for the next version",
		Flags:   flags,
		Action:  changelogAction,
	}
}

func changelogAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	if !ctx.HasCommits() {
		fmt.Fprintln(c.App.Writer, ctx.NoCommitsMessage())
		return nil
	}

	level, version, err := ctx.NextVersion()
	if err != nil {
		return err
	}
	if c.IsSet("release-version") {
		version = c.String("release-version")
	} else if level == bump.None && c.Bool("write") {
		color.New(color.FgYellow).Fprintf(c.App.Writer,
			"No release-worthy commits; %s is unchanged. Pass --release-version to write an entry anyway.\n", version)
		return nil
	}

	var include changelog.Predicate = ctx.Preset.Include
	if c.Bool("all") {
		include = nil
	}

	entry, err := ctx.RenderChangelog(version, c.String("date"), include)
	if err != nil {
		return err
	}

	if !c.Bool("write") {
		return writeText(c, entry)
	}

	path := ctx.ChangelogPath()
	if err := changelog.Prepend(path, entry); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(c.App.Writer, "Updated %s with %s\n", path, version)
	return nil
}
