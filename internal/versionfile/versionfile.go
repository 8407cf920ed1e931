// Package versionfile reads and patches the top-level "version" field of a
// JSON manifest such as package.json.
package versionfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	cverrors "github.com/masmgr/changever/internal/errors"
)

const field = "version"

// location is the byte span of the version string literal, quotes included.
type location struct {
	start, end int
	value      string
}

// Read returns the version stored in the manifest at path.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading version file: %w", err)
	}
	loc, err := locate(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return loc.value, nil
}

// Update is a prepared rewrite of a version file. Nothing touches the disk
// until Apply.
type Update struct {
	Path     string
	original []byte
	patched  []byte
	mode     os.FileMode
}

// Prepare reads the manifest at path and computes its content with version
// in place. Parse errors surface here, before any file is written.
func Prepare(path, version string) (*Update, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading version file: %w", err)
	}
	patched, err := Patch(data, version)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat version file: %w", err)
	}
	return &Update{Path: path, original: data, patched: patched, mode: info.Mode().Perm()}, nil
}

// Apply writes the patched content. Every other byte of the file is left
// untouched.
func (u *Update) Apply() error {
	if err := os.WriteFile(u.Path, u.patched, u.mode); err != nil {
		return fmt.Errorf("writing version file: %w", err)
	}
	return nil
}

// Revert restores the content read by Prepare.
func (u *Update) Revert() error {
	if err := os.WriteFile(u.Path, u.original, u.mode); err != nil {
		return fmt.Errorf("restoring version file: %w", err)
	}
	return nil
}

// Patch returns a copy of data with the top-level version replaced.
func Patch(data []byte, version string) ([]byte, error) {
	loc, err := locate(data)
	if err != nil {
		return nil, err
	}
	literal, err := json.Marshal(version)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(data)-(loc.end-loc.start)+len(literal))
	out = append(out, data[:loc.start]...)
	out = append(out, literal...)
	out = append(out, data[loc.end:]...)
	return out, nil
}

// locate walks the top-level object and finds the version string literal.
func locate(data []byte) (location, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return location{}, invalid(err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return location{}, invalid(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return location{}, cverrors.NewConfigError("version file is not a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return location{}, invalid(err)
		}
		key, _ := tok.(string)

		if key != field {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return location{}, invalid(err)
			}
			continue
		}

		afterKey := int(dec.InputOffset())
		tok, err = dec.Token()
		if err != nil {
			return location{}, invalid(err)
		}
		value, ok := tok.(string)
		if !ok {
			return location{}, cverrors.NewConfigError("%q field is not a string", field)
		}
		end := int(dec.InputOffset())
		start := afterKey + bytes.IndexByte(data[afterKey:end], '"')
		return location{start: start, end: end, value: value}, nil
	}

	return location{}, cverrors.NewConfigError("version file has no top-level %q field", field)
}

func invalid(err error) error {
	return cverrors.Wrap(err, cverrors.Configuration, "version file is not valid JSON")
}
