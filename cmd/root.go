package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/changever/config"
	cverrors "github.com/masmgr/changever/internal/errors"
	"github.com/masmgr/changever/internal/git"
	"github.com/masmgr/changever/internal/output"
)

// Version is the changever release, overridden at build time.
var Version = "0.1.0"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "changever",
		Usage:   "Derive the next semantic version and a changelog from git history",
		Version: Version,
		Commands: []*cli.Command{
			NextCmd(),
			ChangelogCmd(),
			ReleaseCmd(),
			InitCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (default: .changever.{yml,yaml,json} in the repository)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"V"},
				Usage:   "Print the git commands being run",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				debug := color.New(color.Faint)
				git.SetDebugLogger(func(format string, args ...any) {
					debug.Fprintf(c.App.ErrWriter, format+"\n", args...)
				})
			}
			return nil
		},
	}
}

// Common flags shared across commands
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:  "from",
			Usage: "Start of the range, exclusive (default: latest tag matching --tag-pattern)",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "End of the range, inclusive (default: HEAD)",
		},
		&cli.StringFlag{
			Name:  "current",
			Usage: "Current version (default: version file, latest tag, changelog, then 0.0.0)",
		},
		&cli.BoolFlag{
			Name:  "include-merges",
			Usage: "Include merge commits",
		},
		&cli.StringFlag{
			Name:  "tag-pattern",
			Usage: "Glob selecting release tags",
		},
		&cli.StringFlag{
			Name:  "level",
			Usage: "Force the increment level (none, patch, minor, major) instead of deriving it from the commits",
		},
		&cli.StringSliceFlag{
			Name:  "types",
			Usage: "Commit types that appear in the changelog (can be specified multiple times)",
		},
	}
}

func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, csv, markdown, ci)",
			Value:   "console",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
		&cli.BoolFlag{
			Name:  "all-commits",
			Usage: "List every analyzed commit in console output",
		},
	}
}

func renderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "template",
			Aliases: []string{"t"},
			Usage:   "Handlebars template file (default: built-in)",
		},
		&cli.StringFlag{
			Name:  "date",
			Usage: "Release date, YYYY-MM-DD or RFC 3339 (default: now)",
		},
	}
}

// getOutputFormat parses the output format flag.
func getOutputFormat(s string) output.OutputFormat {
	switch s {
	case "json":
		return output.FormatJSON
	case "csv":
		return output.FormatCSV
	case "markdown", "md":
		return output.FormatMarkdown
	case "ci", "ndjson":
		return output.FormatCI
	default:
		return output.FormatConsole
	}
}

// loadConfig loads configuration for the repository and applies flag
// overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfigIn(c.String("repo"), c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("tag-pattern") {
		cfg.TagPattern = c.String("tag-pattern")
	}
	if c.IsSet("include-merges") {
		cfg.IncludeMerges = c.Bool("include-merges")
	}
	if types := c.StringSlice("types"); len(types) > 0 {
		cfg.IncludeTypes = types
	}
	if c.IsSet("template") {
		// Flag paths are relative to the working directory, not the repository.
		abs, err := filepath.Abs(c.String("template"))
		if err != nil {
			return nil, err
		}
		cfg.TemplateFile = abs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// repoFile resolves a configured path against the repository root.
func repoFile(repoPath, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(repoPath, path)
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		cverrors.Print(os.Stderr, err)
		os.Exit(1)
	}
}
