// Package config loads changever settings. Values are layered with koanf:
// defaults, then the project config file, then CHANGEVER_* environment
// variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	cverrors "github.com/masmgr/changever/internal/errors"
)

// EnvPrefix is the prefix of environment overrides, e.g. CHANGEVER_TAG_PATTERN.
const EnvPrefix = "CHANGEVER_"

// FileNames are the project config files looked up, in order.
var FileNames = []string{".changever.yml", ".changever.yaml", ".changever.json"}

// Config is the root configuration structure.
type Config struct {
	ChangelogFile string `koanf:"changelog_file" json:"changelog_file"`
	// VersionFile is a JSON manifest whose "version" field is read and bumped.
	VersionFile   string   `koanf:"version_file" json:"version_file"`
	TemplateFile  string   `koanf:"template_file" json:"template_file"`
	TagPattern    string   `koanf:"tag_pattern" json:"tag_pattern"`
	IncludeMerges bool     `koanf:"include_merges" json:"include_merges"`
	IncludeTypes  []string `koanf:"include_types" json:"include_types"`
	DateLayout    string   `koanf:"date_layout" json:"date_layout"`

	// Regular expressions classifying commits that do not follow
	// Conventional Commits.
	MajorPatterns []string `koanf:"major_patterns" json:"major_patterns"`
	MinorPatterns []string `koanf:"minor_patterns" json:"minor_patterns"`
	PatchPatterns []string `koanf:"patch_patterns" json:"patch_patterns"`

	// Source is the config file that was loaded, empty when none was found.
	Source string `koanf:"-" json:"-"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		ChangelogFile: "CHANGELOG.md",
		TagPattern:    "v*",
		IncludeTypes:  []string{},
		DateLayout:    "2006-01-02",
		MajorPatterns: []string{},
		MinorPatterns: []string{},
		PatchPatterns: []string{},
	}
}

func defaults() map[string]any {
	cfg := DefaultConfig()
	return map[string]any{
		"changelog_file": cfg.ChangelogFile,
		"version_file":   cfg.VersionFile,
		"template_file":  cfg.TemplateFile,
		"tag_pattern":    cfg.TagPattern,
		"include_merges": cfg.IncludeMerges,
		"include_types":  cfg.IncludeTypes,
		"date_layout":    cfg.DateLayout,
		"major_patterns": cfg.MajorPatterns,
		"minor_patterns": cfg.MinorPatterns,
		"patch_patterns": cfg.PatchPatterns,
	}
}

// LoadConfigIn loads configuration from path, or from the first of FileNames
// found in dir. An explicit path must exist; a missing default file is not an
// error.
func LoadConfigIn(dir, path string) (*Config, error) {
	k := koanf.New(".")
	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	if path == "" {
		path = findConfig(dir)
	} else if _, err := os.Stat(path); err != nil {
		return nil, cverrors.Wrap(err, cverrors.Configuration, "config file")
	}

	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, cverrors.Wrap(err, cverrors.Configuration, fmt.Sprintf("loading %s", path))
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, cverrors.Wrap(err, cverrors.Configuration, "decoding config")
	}
	cfg.Source = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ChangelogFile) == "" {
		return cverrors.NewConfigError("changelog_file must not be empty")
	}
	if !doublestar.ValidatePattern(c.TagPattern) {
		return cverrors.NewConfigError("tag_pattern %q is not a valid glob", c.TagPattern)
	}
	if strings.TrimSpace(c.DateLayout) == "" {
		return cverrors.NewConfigError("date_layout must not be empty")
	}
	return nil
}

// SaveConfig saves configuration to a file as indented JSON.
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func findConfig(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func parserFor(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return kjson.Parser()
	}
	return yaml.Parser()
}

// envValue maps CHANGEVER_TAG_PATTERN to tag_pattern. include_types is a
// comma separated list.
func envValue(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "include_types" {
		var types []string
		for _, t := range strings.Split(value, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
		return key, types
	}
	return key, value
}
