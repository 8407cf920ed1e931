package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	cverrors "github.com/masmgr/changever/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ChangelogFile != "CHANGELOG.md" {
		t.Errorf("ChangelogFile = %q, expected %q", cfg.ChangelogFile, "CHANGELOG.md")
	}
	if cfg.TagPattern != "v*" {
		t.Errorf("TagPattern = %q, expected %q", cfg.TagPattern, "v*")
	}
	if cfg.DateLayout != "2006-01-02" {
		t.Errorf("DateLayout = %q, expected %q", cfg.DateLayout, "2006-01-02")
	}
	if cfg.IncludeMerges {
		t.Error("IncludeMerges should default to false")
	}
	if cfg.VersionFile != "" || cfg.TemplateFile != "" {
		t.Errorf("VersionFile/TemplateFile should be empty, got %q/%q", cfg.VersionFile, cfg.TemplateFile)
	}
	if len(cfg.MajorPatterns)+len(cfg.MinorPatterns)+len(cfg.PatchPatterns) != 0 {
		t.Error("message patterns should default to empty")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfigIn_Patterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".changever.yml", `
patch_patterns:
  - '\bfix(ed)?\b'
  - '\bbug\b'
major_patterns: ['BREAKING']
`)
	t.Setenv("CHANGEVER_MINOR_PATTERNS", `\badd\b`)

	cfg, err := LoadConfigIn(dir, "")
	if err != nil {
		t.Fatalf("LoadConfigIn: %v", err)
	}
	if !reflect.DeepEqual(cfg.PatchPatterns, []string{`\bfix(ed)?\b`, `\bbug\b`}) {
		t.Errorf("PatchPatterns = %q", cfg.PatchPatterns)
	}
	if !reflect.DeepEqual(cfg.MajorPatterns, []string{"BREAKING"}) {
		t.Errorf("MajorPatterns = %q", cfg.MajorPatterns)
	}
	if !reflect.DeepEqual(cfg.MinorPatterns, []string{`\badd\b`}) {
		t.Errorf("MinorPatterns = %q", cfg.MinorPatterns)
	}
}

func TestLoadConfigIn_NoFile(t *testing.T) {
	cfg, err := LoadConfigIn(t.TempDir(), "")
	if err != nil {
		t.Fatalf("LoadConfigIn: %v", err)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, expected empty", cfg.Source)
	}
	if cfg.TagPattern != "v*" || cfg.ChangelogFile != "CHANGELOG.md" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfigIn_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".changever.yml", `
changelog_file: docs/CHANGES.md
version_file: package.json
include_types: [feat, docs]
`)

	cfg, err := LoadConfigIn(dir, "")
	if err != nil {
		t.Fatalf("LoadConfigIn: %v", err)
	}
	if cfg.Source != path {
		t.Errorf("Source = %q, expected %q", cfg.Source, path)
	}
	if cfg.ChangelogFile != "docs/CHANGES.md" {
		t.Errorf("ChangelogFile = %q", cfg.ChangelogFile)
	}
	if cfg.VersionFile != "package.json" {
		t.Errorf("VersionFile = %q", cfg.VersionFile)
	}
	if !reflect.DeepEqual(cfg.IncludeTypes, []string{"feat", "docs"}) {
		t.Errorf("IncludeTypes = %v", cfg.IncludeTypes)
	}
	if cfg.TagPattern != "v*" {
		t.Errorf("TagPattern = %q, expected default to survive", cfg.TagPattern)
	}
}

func TestLoadConfigIn_ExplicitJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "release.json", `{"tag_pattern": "release-*", "include_merges": true}`)

	cfg, err := LoadConfigIn(t.TempDir(), path)
	if err != nil {
		t.Fatalf("LoadConfigIn: %v", err)
	}
	if cfg.TagPattern != "release-*" {
		t.Errorf("TagPattern = %q", cfg.TagPattern)
	}
	if !cfg.IncludeMerges {
		t.Error("IncludeMerges should be true")
	}
}

func TestLoadConfigIn_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".changever.json", `{"tag_pattern": "release-*", "date_layout": "02 Jan 2006"}`)

	t.Setenv("CHANGEVER_TAG_PATTERN", "rel/*")
	t.Setenv("CHANGEVER_INCLUDE_MERGES", "true")
	t.Setenv("CHANGEVER_INCLUDE_TYPES", "feat, docs,")

	cfg, err := LoadConfigIn(dir, "")
	if err != nil {
		t.Fatalf("LoadConfigIn: %v", err)
	}
	if cfg.TagPattern != "rel/*" {
		t.Errorf("TagPattern = %q, expected env value", cfg.TagPattern)
	}
	if cfg.DateLayout != "02 Jan 2006" {
		t.Errorf("DateLayout = %q, expected file value", cfg.DateLayout)
	}
	if !cfg.IncludeMerges {
		t.Error("IncludeMerges should be true from env")
	}
	if !reflect.DeepEqual(cfg.IncludeTypes, []string{"feat", "docs"}) {
		t.Errorf("IncludeTypes = %v", cfg.IncludeTypes)
	}
}

func TestLoadConfigIn_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid glob", content: `{"tag_pattern": "v["}`},
		{name: "empty changelog file", content: `{"changelog_file": " "}`},
		{name: "malformed json", content: `{"tag_pattern": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, ".changever.json", tt.content)

			_, err := LoadConfigIn(dir, "")
			if !errors.Is(err, cverrors.ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestLoadConfigIn_MissingExplicitPath(t *testing.T) {
	_, err := LoadConfigIn(t.TempDir(), filepath.Join(t.TempDir(), "nope.yml"))
	if !errors.Is(err, cverrors.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestSaveConfig_LoadsBack(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.VersionFile = "package.json"
	cfg.IncludeTypes = []string{"feat"}

	path := filepath.Join(dir, ".changever.json")
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfigIn(dir, "")
	if err != nil {
		t.Fatalf("LoadConfigIn: %v", err)
	}
	if loaded.VersionFile != "package.json" || !reflect.DeepEqual(loaded.IncludeTypes, []string{"feat"}) {
		t.Errorf("loaded config differs: %+v", loaded)
	}
}
