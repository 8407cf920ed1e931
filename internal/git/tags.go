package git

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// DefaultTagPattern matches the usual "v1.2.3" release tags.
const DefaultTagPattern = "v*"

// ErrNoTag is returned when no tag matches the pattern.
var ErrNoTag = errors.New("no matching semver tag")

// Tag is a release tag and the version it names.
type Tag struct {
	Name string
	// Commit is the hash of the tagged commit.
	Commit  string
	Version *semver.Version
}

// openRepo opens the repository containing path, walking up to find .git.
func openRepo(path string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return repo, nil
}

// IsRepository reports whether path is inside a git repository.
func IsRepository(path string) bool {
	_, err := openRepo(path)
	return err == nil
}

// LatestTag returns the tag with the highest semantic version among the tags
// whose name matches the glob pattern. Tags that do not contain a version are
// ignored.
func LatestTag(repoPath, pattern string) (Tag, error) {
	if pattern == "" {
		pattern = DefaultTagPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return Tag{}, fmt.Errorf("invalid tag pattern %q", pattern)
	}

	repo, err := openRepo(repoPath)
	if err != nil {
		return Tag{}, err
	}

	iter, err := repo.Tags()
	if err != nil {
		return Tag{}, fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	var best Tag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()

		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			return err
		}
		if !matched {
			return nil
		}

		v, ok := versionFromTagName(name)
		if !ok {
			return nil
		}
		if best.Version != nil && !v.GreaterThan(best.Version) {
			return nil
		}

		commit, err := tagCommit(repo, ref)
		if err != nil {
			return err
		}
		best = Tag{Name: name, Commit: commit, Version: v}
		return nil
	})
	if err != nil {
		return Tag{}, err
	}

	if best.Version == nil {
		return Tag{}, ErrNoTag
	}
	logDebug("[git] latest tag matching %q: %s", pattern, best.Name)
	return best, nil
}

// versionFromTagName parses the version part of a tag name such as
// "v1.2.3" or "release-1.2.3".
func versionFromTagName(name string) (*semver.Version, bool) {
	idx := strings.IndexFunc(name, unicode.IsDigit)
	if idx == -1 {
		return nil, false
	}
	v, err := semver.StrictNewVersion(name[idx:])
	if err != nil {
		return nil, false
	}
	return v, true
}

// tagCommit resolves annotated tags to the commit they point at.
func tagCommit(repo *gogit.Repository, ref *plumbing.Reference) (string, error) {
	obj, err := repo.TagObject(ref.Hash())
	switch {
	case err == nil:
		c, err := obj.Commit()
		if err != nil {
			return "", fmt.Errorf("resolving tag %s: %w", ref.Name().Short(), err)
		}
		return c.Hash.String(), nil
	case errors.Is(err, plumbing.ErrObjectNotFound):
		// Lightweight tag.
		return ref.Hash().String(), nil
	default:
		return "", fmt.Errorf("reading tag %s: %w", ref.Name().Short(), err)
	}
}
