package changelog

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/masmgr/changever/internal/bump"
)

var (
	headingLine    = regexp.MustCompile(`^#{1,6}\s+(.*)$`)
	headingVersion = regexp.MustCompile(`v?\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?`)
)

// Prepend writes text in front of the existing content of path, creating the
// file (and its directory) when it does not exist.
func Prepend(path, text string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading changelog %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating changelog directory: %w", err)
		}
	}

	content := make([]byte, 0, len(text)+len(existing))
	content = append(content, text...)
	content = append(content, existing...)

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("writing changelog %s: %w", path, err)
	}
	return nil
}

// LatestVersion returns the version named by the first markdown heading that
// contains one, e.g. "## [1.2.3] - 2025-01-01" or "# v1.2.3". Headings
// without a version ("## Unreleased") are skipped.
func LatestVersion(markdown string) (string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(markdown))
	inFence := false
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		m := headingLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if v := headingVersion.FindString(m[1]); v != "" {
			return bump.Normalize(v), true
		}
	}
	return "", false
}

// LatestVersionFromFile reads path and calls LatestVersion. A missing file
// yields no version and no error.
func LatestVersionFromFile(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading changelog %s: %w", path, err)
	}
	v, ok := LatestVersion(string(data))
	return v, ok, nil
}
