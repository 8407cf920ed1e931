package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/changever/config"
	"github.com/masmgr/changever/internal/bump"
	"github.com/masmgr/changever/internal/changelog"
	"github.com/masmgr/changever/internal/conventional"
	cverrors "github.com/masmgr/changever/internal/errors"
	"github.com/masmgr/changever/internal/git"
	"github.com/masmgr/changever/internal/output"
	"github.com/masmgr/changever/internal/patterns"
	"github.com/masmgr/changever/internal/versionfile"
)

const initialVersion = "0.0.0"

// newExtractor is replaced in tests.
var newExtractor = func() git.CommitExtractor { return git.NewExtractor(nil) }

// CommandContext holds common state for command execution.
// It encapsulates the shared setup logic across all commands.
type CommandContext struct {
	Config   *config.Config
	RepoPath string
	From     string
	To       string
	Preset   conventional.Preset
	// CurrentVersion and VersionSource describe where the release starts.
	CurrentVersion string
	VersionSource  string
	// ForceLevel replaces the level derived from the commits when non-nil.
	ForceLevel *bump.Level
	Commits    []git.Commit
}

// NewCommandContext creates a context from CLI flags.
// It loads configuration, resolves the range and the current version and
// extracts the commits.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	repoPath, err := filepath.Abs(c.String("repo"))
	if err != nil {
		return nil, fmt.Errorf("resolving repository path: %w", err)
	}
	if !git.IsRepository(repoPath) {
		return nil, cverrors.NewConfigError("not a git repository: %s", repoPath)
	}

	tag, err := git.LatestTag(repoPath, cfg.TagPattern)
	hasTag := err == nil
	if err != nil && !errors.Is(err, git.ErrNoTag) {
		return nil, fmt.Errorf("finding latest tag: %w", err)
	}

	var forceLevel *bump.Level
	if c.IsSet("level") {
		level, err := bump.ParseLevel(c.String("level"))
		if err != nil {
			return nil, cverrors.Wrap(err, cverrors.Configuration, "--level")
		}
		forceLevel = &level
	}

	// The range starts at the full tag ref so a branch of the same name
	// cannot make it ambiguous.
	from, startRef := c.String("from"), c.String("from")
	if !c.IsSet("from") && hasTag {
		from, startRef = tag.Name, "refs/tags/"+tag.Name
	}

	current, source, err := resolveCurrentVersion(c.String("current"), repoPath, cfg, tag, hasTag)
	if err != nil {
		return nil, err
	}

	preset := conventional.Default().WithTypes(cfg.IncludeTypes)
	detector, err := patterns.NewDetector(patterns.Rules{
		Major: cfg.MajorPatterns,
		Minor: cfg.MinorPatterns,
		Patch: cfg.PatchPatterns,
	})
	if err != nil {
		return nil, err
	}
	if !detector.Empty() {
		preset = preset.WithFallback(detector.Classify)
	}

	commits, err := newExtractor().Extract(c.Context, repoPath, git.ExtractOptions{
		StartRef:            startRef,
		EndRef:              c.String("to"),
		IncludeMergeCommits: cfg.IncludeMerges,
		ParseSubject:        preset.ParseSubject,
		ParseBody:           preset.ParseBody,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	return &CommandContext{
		Config:         cfg,
		RepoPath:       repoPath,
		From:           from,
		To:             c.String("to"),
		Preset:         preset,
		CurrentVersion: current,
		VersionSource:  source,
		ForceLevel:     forceLevel,
		Commits:        commits,
	}, nil
}

// resolveCurrentVersion picks the first available of: the flag, the version
// file, the latest tag, the changelog heading, 0.0.0.
func resolveCurrentVersion(flag, repoPath string, cfg *config.Config, tag git.Tag, hasTag bool) (string, string, error) {
	if strings.TrimSpace(flag) != "" {
		return bump.Normalize(flag), "--current", nil
	}

	if cfg.VersionFile != "" {
		v, err := versionfile.Read(repoFile(repoPath, cfg.VersionFile))
		if err != nil {
			return "", "", err
		}
		return bump.Normalize(v), cfg.VersionFile, nil
	}

	if hasTag {
		return tag.Version.String(), "tag " + tag.Name, nil
	}

	v, ok, err := changelog.LatestVersionFromFile(repoFile(repoPath, cfg.ChangelogFile))
	if err != nil {
		return "", "", err
	}
	if ok {
		return v, cfg.ChangelogFile, nil
	}

	return initialVersion, "", nil
}

// HasCommits returns true if commits were found in the specified range.
func (ctx *CommandContext) HasCommits() bool {
	return len(ctx.Commits) > 0
}

// NoCommitsMessage explains an empty range.
func (ctx *CommandContext) NoCommitsMessage() string {
	return fmt.Sprintf("No commits found in %s.", rangeDescription(ctx.From, ctx.To))
}

// NextVersion classifies the commits and computes the next version. A forced
// level applies even when no commit asks for a change.
func (ctx *CommandContext) NextVersion() (bump.Level, string, error) {
	if ctx.ForceLevel != nil {
		return ctx.forcedVersion(*ctx.ForceLevel)
	}

	level := bump.Dominant(ctx.Commits, ctx.Preset.Classify)
	next, err := bump.NextVersion(ctx.Commits, bump.Options{
		CurrentVersion: ctx.CurrentVersion,
		Classify:       ctx.Preset.Classify,
	})
	if err != nil {
		return bump.None, "", err
	}
	return level, next, nil
}

func (ctx *CommandContext) forcedVersion(level bump.Level) (bump.Level, string, error) {
	if level == bump.None {
		if _, err := bump.Parse(ctx.CurrentVersion); err != nil {
			return bump.None, "", err
		}
		return bump.None, ctx.CurrentVersion, nil
	}
	next, err := bump.Increment(ctx.CurrentVersion, level)
	if err != nil {
		return bump.None, "", err
	}
	return level, next, nil
}

// RenderChangelog renders the entry for version. A nil include keeps every
// commit.
func (ctx *CommandContext) RenderChangelog(version, date string, include changelog.Predicate) (string, error) {
	tpl, err := changelog.LoadTemplate(repoFile(ctx.RepoPath, ctx.Config.TemplateFile))
	if err != nil {
		return "", cverrors.Wrap(err, cverrors.Configuration, "loading template")
	}

	opts := changelog.RenderOptions{
		Version:    version,
		Template:   tpl,
		Include:    include,
		DateLayout: ctx.Config.DateLayout,
	}
	if date != "" {
		d, err := changelog.ParseDate(date)
		if err != nil {
			return "", err
		}
		opts.Date = &d
	}
	return changelog.Render(ctx.Commits, opts)
}

// ChangelogPath is the configured changelog file inside the repository.
func (ctx *CommandContext) ChangelogPath() string {
	return repoFile(ctx.RepoPath, ctx.Config.ChangelogFile)
}

// Report builds the release report for the given result.
func (ctx *CommandContext) Report(level bump.Level, next string) *output.ReleaseReport {
	return &output.ReleaseReport{
		RepoPath:       ctx.RepoPath,
		From:           ctx.From,
		To:             ctx.To,
		CurrentVersion: ctx.CurrentVersion,
		VersionSource:  ctx.VersionSource,
		NextVersion:    next,
		Level:          level,
		GeneratedAt:    time.Now(),
		Commits:        output.NewCommitEntries(ctx.Commits, ctx.Preset.Classify, ctx.Preset.Include),
	}
}

// OutputOptions creates OutputOptions from CLI flags.
func OutputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:     getOutputFormat(c.String("format")),
		OutputPath: c.String("output"),
		Verbose:    c.Bool("all-commits"),
	}
}

func rangeDescription(from, to string) string {
	if to == "" {
		to = "HEAD"
	}
	if from == "" {
		return "the history of " + to
	}
	return from + ".." + to
}
