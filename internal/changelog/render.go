// Package changelog renders changelog entries from classified commits and
// persists them to a markdown changelog file.
//
// Rendering is delegated to a Handlebars engine (github.com/aymerick/raymond).
// This package only defines the data handed to it:
//
//	{
//	  "commits": [{"hash", "shortHash", "parents", "merge", "subject", "body", "footer"}],
//	  "version": "1.2.3",
//	  "date":    time.Time,
//	}
//
// subject and body are the raw strings, or the value returned by the parser
// hook. Values implementing TemplateValuer are bound through TemplateValue.
package changelog

import (
	"fmt"
	"strings"
	"time"

	"github.com/aymerick/raymond"

	"github.com/masmgr/changever/internal/bump"
	cverrors "github.com/masmgr/changever/internal/errors"
	"github.com/masmgr/changever/internal/git"
)

// DefaultDateLayout is the layout used by the formatDate helper.
const DefaultDateLayout = "2006-01-02"

// Predicate decides whether a commit appears in the changelog.
type Predicate func(git.Commit) bool

// TemplateValuer is implemented by parser results that want a specific shape
// in the template context.
type TemplateValuer interface {
	TemplateValue() map[string]any
}

// RenderOptions configures Render.
type RenderOptions struct {
	Version  string
	Template string
	// Date defaults to the render time. A non-nil zero time is rejected.
	Date *time.Time
	// Include defaults to keeping every commit.
	Include Predicate
	// Now replaces time.Now when Date is nil.
	Now func() time.Time
	// DateLayout is the formatDate layout used when the template gives none.
	DateLayout string
}

// Context is the data bound into the template.
type Context struct {
	Commits []git.Commit
	Version string
	Date    time.Time
}

// NewContext validates the inputs, filters the commits and normalizes the
// version. The input slice is never modified.
func NewContext(commits []git.Commit, opts RenderOptions) (Context, error) {
	if len(commits) == 0 {
		return Context{}, cverrors.NewInputError("no commits to render")
	}
	if strings.TrimSpace(opts.Template) == "" {
		return Context{}, cverrors.NewConfigError("changelog template is required")
	}
	if strings.TrimSpace(opts.Version) == "" {
		return Context{}, cverrors.NewConfigError("version is required")
	}

	var date time.Time
	switch {
	case opts.Date != nil:
		if opts.Date.IsZero() {
			return Context{}, cverrors.NewInputError("invalid date: zero time")
		}
		date = *opts.Date
	case opts.Now != nil:
		date = opts.Now()
	default:
		date = time.Now()
	}

	return Context{
		Commits: Filter(commits, opts.Include),
		Version: bump.Normalize(opts.Version),
		Date:    date,
	}, nil
}

// Filter returns the commits include keeps, in their original order.
// A nil predicate keeps everything.
func Filter(commits []git.Commit, include Predicate) []git.Commit {
	kept := make([]git.Commit, 0, len(commits))
	for _, c := range commits {
		if include == nil || include(c) {
			kept = append(kept, c)
		}
	}
	return kept
}

// Bind converts the context into the map handed to the template engine.
func (c Context) Bind() map[string]any {
	commits := make([]map[string]any, len(c.Commits))
	for i, commit := range c.Commits {
		commits[i] = bindCommit(commit)
	}
	return map[string]any{
		"commits": commits,
		"version": c.Version,
		"date":    c.Date,
	}
}

func bindCommit(c git.Commit) map[string]any {
	m := map[string]any{
		"hash":      c.Hash,
		"shortHash": c.ShortHash(),
		"parents":   c.Parents,
		"merge":     c.Merge,
		"subject":   bindText(c.Subject),
		"footer":    c.Footer,
	}
	if c.Body != nil {
		m["body"] = bindText(*c.Body)
	}
	return m
}

func bindText(t git.Text) any {
	v := t.Value()
	if tv, ok := v.(TemplateValuer); ok {
		return tv.TemplateValue()
	}
	return v
}

// Render filters the commits, binds them with the version and date and
// renders the template. The output is returned exactly as the template
// produced it.
func Render(commits []git.Commit, opts RenderOptions) (string, error) {
	ctx, err := NewContext(commits, opts)
	if err != nil {
		return "", err
	}

	tpl, err := raymond.Parse(opts.Template)
	if err != nil {
		return "", cverrors.Wrap(err, cverrors.Configuration, "parsing changelog template")
	}
	tpl.RegisterHelper("formatDate", formatDateHelper(opts.DateLayout))

	out, err := tpl.Exec(ctx.Bind())
	if err != nil {
		return "", fmt.Errorf("rendering changelog template: %w", err)
	}
	return out, nil
}

// formatDateHelper: {{formatDate date layout="2006-01-02"}}
func formatDateHelper(defaultLayout string) func(interface{}, *raymond.Options) string {
	if defaultLayout == "" {
		defaultLayout = DefaultDateLayout
	}
	return func(value interface{}, options *raymond.Options) string {
		layout := options.HashStr("layout")
		if layout == "" {
			layout = defaultLayout
		}
		switch v := value.(type) {
		case time.Time:
			return v.Format(layout)
		case *time.Time:
			if v == nil {
				return ""
			}
			return v.Format(layout)
		default:
			return raymond.Str(value)
		}
	}
}

// ParseDate parses a date given on the command line, either RFC 3339 or
// YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(DefaultDateLayout, s)
	if err != nil {
		return time.Time{}, cverrors.NewInputError("invalid date %q (expected YYYY-MM-DD or RFC 3339)", s)
	}
	return t, nil
}
