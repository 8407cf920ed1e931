// Package patterns classifies free-form commit messages with regular
// expressions, for histories that do not follow Conventional Commits.
package patterns

import (
	"regexp"
	"strings"

	"github.com/masmgr/changever/internal/bump"
	cverrors "github.com/masmgr/changever/internal/errors"
	"github.com/masmgr/changever/internal/git"
)

// DefaultPatchPatterns are the bug-fix wordings recognized by `changever init`.
var DefaultPatchPatterns = []string{
	`\bfix(ed|es)?\b`,
	`\bbug\b`,
	`\bhotfix\b`,
	`\bpatch\b`,
}

type rule struct {
	level bump.Level
	re    *regexp.Regexp
}

// Detector maps commit messages to increment levels.
type Detector struct {
	rules []rule
}

// Rules lists the patterns for each level.
type Rules struct {
	Major []string
	Minor []string
	Patch []string
}

// NewDetector compiles the rules. Patterns are case-insensitive; blank
// patterns are skipped.
func NewDetector(rules Rules) (*Detector, error) {
	d := &Detector{}
	for _, group := range []struct {
		level    bump.Level
		patterns []string
	}{
		{bump.Major, rules.Major},
		{bump.Minor, rules.Minor},
		{bump.Patch, rules.Patch},
	} {
		for _, p := range group.patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			// Add case-insensitive flag if not already present
			if !strings.HasPrefix(p, "(?i)") {
				p = "(?i)" + p
			}
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, cverrors.Wrap(err, cverrors.Configuration, "invalid "+group.level.String()+" pattern")
			}
			d.rules = append(d.rules, rule{level: group.level, re: re})
		}
	}
	return d, nil
}

// Empty reports whether the detector has no rules.
func (d *Detector) Empty() bool {
	return d == nil || len(d.rules) == 0
}

// Level returns the highest level whose pattern matches message.
func (d *Detector) Level(message string) bump.Level {
	if d == nil {
		return bump.None
	}
	level := bump.None
	for _, r := range d.rules {
		if r.level > level && r.re.MatchString(message) {
			level = r.level
		}
	}
	return level
}

// Classify matches the subject and body of c.
func (d *Detector) Classify(c git.Commit) bump.Level {
	message := c.Subject.Raw
	if c.Body != nil {
		message += "\n\n" + c.Body.Raw
	}
	return d.Level(message)
}
