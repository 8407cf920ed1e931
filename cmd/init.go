package cmd

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/changever/config"
	cverrors "github.com/masmgr/changever/internal/errors"
	"github.com/masmgr/changever/internal/patterns"
)

// InitCmd returns the init command.
func InitCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a .changever.json with the default settings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "repo",
				Aliases: []string{"r"},
				Usage:   "Path to Git repository",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing file",
			},
		},
		Action: initAction,
	}
}

func initAction(c *cli.Context) error {
	path := filepath.Join(c.String("repo"), ".changever.json")

	_, err := os.Stat(path)
	switch {
	case err == nil && !c.Bool("force"):
		return cverrors.NewConfigError("%s already exists (use --force to overwrite)", path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return err
	}

	cfg := config.DefaultConfig()
	cfg.PatchPatterns = patterns.DefaultPatchPatterns
	if err := config.SaveConfig(cfg, path); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}
