package changelog

import (
	_ "embed"
	"fmt"
	"os"
)

// DefaultTemplate renders one markdown section per release: a version heading
// and one bullet per commit, as produced by the conventional subject parser.
//
//go:embed templates/default.hbs
var DefaultTemplate string

// LoadTemplate returns the content of path, or DefaultTemplate when path is
// empty.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return DefaultTemplate, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading template %s: %w", path, err)
	}
	return string(data), nil
}
