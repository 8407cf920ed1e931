package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// NextCmd returns the next command.
func NextCmd() *cli.Command {
	flags := append(commonFlags(), reportFlags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:    "short",
			Aliases: []string{"s"},
			Usage:   "Print only the version",
		},
	)

	return &cli.Command{
		Name:    "next",
		Aliases: []string{"n"},
		Usage:   "Compute the next version from the commits since the last release",
		Flags:   flags,
		Action:  nextAction,
	}
}

func nextAction(c *cli.Context) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}

	level, next, err := ctx.NextVersion()
	if err != nil {
		return err
	}

	if c.Bool("short") {
		return writeText(c, fmt.Sprintln(next))
	}
	return writeReleaseReport(c, ctx.Report(level, next))
}
