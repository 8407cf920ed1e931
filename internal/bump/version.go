// Package bump decides the next semantic version from a sequence of commits.
package bump

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	cverrors "github.com/masmgr/changever/internal/errors"
	"github.com/masmgr/changever/internal/git"
)

// Classifier maps a commit to the increment level it asks for.
type Classifier func(git.Commit) Level

// Options configures NextVersion.
type Options struct {
	CurrentVersion string
	Classify       Classifier
}

// Normalize strips surrounding whitespace and a leading "v" or "V".
// Numeric components are left untouched.
func Normalize(version string) string {
	v := strings.TrimSpace(version)
	if len(v) > 0 && (v[0] == 'v' || v[0] == 'V') {
		v = v[1:]
	}
	return v
}

// Parse normalizes version and parses it as a strict SemVer 2.0.0 string.
func Parse(version string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(Normalize(version))
	if err != nil {
		return nil, cverrors.NewInvalidVersionError(version, err)
	}
	return v, nil
}

// Increment applies level to version. Pre-release and build metadata are
// dropped by any increment; None returns the normalized version.
func Increment(version string, level Level) (string, error) {
	v, err := Parse(version)
	if err != nil {
		return "", err
	}

	var next *semver.Version
	switch level.known() {
	case Major:
		next = semver.New(v.Major()+1, 0, 0, "", "")
	case Minor:
		next = semver.New(v.Major(), v.Minor()+1, 0, "", "")
	case Patch:
		next = semver.New(v.Major(), v.Minor(), v.Patch()+1, "", "")
	default:
		return Normalize(version), nil
	}
	return next.String(), nil
}

// Dominant returns the highest level classify assigns to any commit.
// An empty sequence yields None.
func Dominant(commits []git.Commit, classify Classifier) Level {
	level := None
	for _, c := range commits {
		level = Max(level, classify(c).known())
	}
	return level
}

// NextVersion returns the version that follows opts.CurrentVersion given the
// commits. When no commit asks for a change the current version is returned
// exactly as given.
func NextVersion(commits []git.Commit, opts Options) (string, error) {
	if strings.TrimSpace(opts.CurrentVersion) == "" {
		return "", cverrors.NewConfigError("current version is required")
	}
	if opts.Classify == nil {
		return "", cverrors.NewConfigError("increment classifier is required")
	}
	if _, err := Parse(opts.CurrentVersion); err != nil {
		return "", err
	}

	level := Dominant(commits, opts.Classify)
	if level == None {
		return opts.CurrentVersion, nil
	}
	return Increment(opts.CurrentVersion, level)
}
