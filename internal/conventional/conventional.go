// Package conventional is the default hook preset: it reads Conventional
// Commits subjects ("type(scope): title") and classifies commits by type.
//
// Every function here is pure. A Preset is a plain value; callers may copy it
// and replace any hook.
package conventional

import (
	"regexp"
	"strings"

	"github.com/masmgr/changever/internal/bump"
	"github.com/masmgr/changever/internal/git"
)

// subjectPattern matches an optional "fixup! " marker, the type, an optional
// scope, an optional breaking "!" and the title.
var subjectPattern = regexp.MustCompile(`^(fixup! )?(\w+)(?:\(([^()]*)\))?(!)?: (.*)$`)

// DefaultIncludedTypes are the commit types listed in a changelog by default.
var DefaultIncludedTypes = []string{"feat", "fix", "perf"}

// Subject is the structured form of a commit subject.
type Subject struct {
	Type     string
	Scope    string
	Title    string
	Fixup    bool
	Breaking bool
}

// TemplateValue returns the map the template engine sees for a subject.
// Type and scope are absent when the subject did not match the pattern.
func (s Subject) TemplateValue() map[string]any {
	m := map[string]any{
		"title":    s.Title,
		"fixup":    s.Fixup,
		"breaking": s.Breaking,
	}
	if s.Type != "" {
		m["type"] = s.Type
	}
	if s.Scope != "" {
		m["scope"] = s.Scope
	}
	return m
}

// ParseSubject parses a subject line. When the pattern does not match the
// whole subject becomes the title.
func ParseSubject(raw string) Subject {
	m := subjectPattern.FindStringSubmatch(raw)
	if m == nil {
		return Subject{Title: raw}
	}
	return Subject{
		Fixup:    m[1] != "",
		Type:     m[2],
		Scope:    m[3],
		Breaking: m[4] != "",
		Title:    m[5],
	}
}

// SubjectParser adapts ParseSubject to the extractor's hook signature.
func SubjectParser(raw string) (any, error) {
	return ParseSubject(raw), nil
}

// SubjectOf returns the structured subject of a commit. A raw subject, or
// one produced by a different parser, is parsed on the spot.
func SubjectOf(c git.Commit) Subject {
	if s, ok := c.Subject.Value().(Subject); ok {
		return s
	}
	return ParseSubject(c.Subject.Raw)
}

// IsBreaking reports whether the commit announces a breaking change, either
// with a "!" marker or a BREAKING CHANGE footer.
func IsBreaking(c git.Commit) bool {
	if SubjectOf(c).Breaking {
		return true
	}
	if _, ok := c.FooterValue("BREAKING CHANGE"); ok {
		return true
	}
	_, ok := c.FooterValue("BREAKING-CHANGE")
	return ok
}

// IncludeTypes returns an inclusion predicate keeping commits whose type is
// one of types.
func IncludeTypes(types ...string) func(git.Commit) bool {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return func(c git.Commit) bool {
		_, ok := set[strings.ToLower(SubjectOf(c).Type)]
		return ok
	}
}

// IncludeCommit is the default inclusion predicate: feat, fix and perf.
func IncludeCommit(c git.Commit) bool {
	return IncludeTypes(DefaultIncludedTypes...)(c)
}

// IncrementLevel is the default increment rule: breaking changes are major,
// features minor, fixes and performance work patch.
func IncrementLevel(c git.Commit) bump.Level {
	if IsBreaking(c) {
		return bump.Major
	}
	switch strings.ToLower(SubjectOf(c).Type) {
	case "feat":
		return bump.Minor
	case "fix", "perf":
		return bump.Patch
	default:
		return bump.None
	}
}

// Preset bundles the hooks used by the CLI.
type Preset struct {
	ParseSubject git.TextParser
	ParseBody    git.TextParser
	Classify     bump.Classifier
	Include      func(git.Commit) bool
}

// Default returns the Conventional Commits preset. Bodies are kept raw.
func Default() Preset {
	return Preset{
		ParseSubject: SubjectParser,
		Classify:     IncrementLevel,
		Include:      IncludeCommit,
	}
}

// WithTypes returns a copy of p whose inclusion predicate keeps types.
// An empty list keeps p unchanged.
func (p Preset) WithTypes(types []string) Preset {
	if len(types) > 0 {
		p.Include = IncludeTypes(types...)
	}
	return p
}

// WithFallback returns a copy of p that classifies commits without a
// conventional type through fallback. Such commits are also kept in the
// changelog when fallback assigns them a level.
func (p Preset) WithFallback(fallback bump.Classifier) Preset {
	if fallback == nil {
		return p
	}
	classify, include := p.Classify, p.Include
	p.Classify = func(c git.Commit) bump.Level {
		if SubjectOf(c).Type == "" {
			return fallback(c)
		}
		return classify(c)
	}
	p.Include = func(c git.Commit) bool {
		if SubjectOf(c).Type == "" {
			return fallback(c) != bump.None
		}
		return include == nil || include(c)
	}
	return p
}
