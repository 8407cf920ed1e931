package bump

import (
	"fmt"
	"strings"
)

// Level is the semantic-version component a commit asks to change.
// Levels are totally ordered: None < Patch < Minor < Major.
type Level int

const (
	None Level = iota
	Patch
	Minor
	Major
)

// String returns a string representation of the level.
func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case Patch:
		return "patch"
	case Minor:
		return "minor"
	case Major:
		return "major"
	default:
		return "unknown"
	}
}

// ParseLevel parses "none", "patch", "minor" or "major". The empty string is
// treated as none.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "patch":
		return Patch, nil
	case "minor":
		return Minor, nil
	case "major":
		return Major, nil
	default:
		return None, fmt.Errorf("unknown increment level %q (expected none, patch, minor or major)", s)
	}
}

// Max returns the dominant of two levels.
func Max(a, b Level) Level {
	if a > b {
		return a
	}
	return b
}

// known maps values outside the enumeration to None.
func (l Level) known() Level {
	if l < None || l > Major {
		return None
	}
	return l
}
