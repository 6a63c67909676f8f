package artifact

import (
	"fmt"
	"strings"
)

// Coordinate identifies a distributable archive by name, version and an
// optional classifier. Version resolution beyond this mapping (snapshot
// timestamps, metadata lookups) is delegated to the repository that serves
// the file.
type Coordinate struct {
	Name       string
	Version    string
	Classifier string
}

// ParseCoordinate parses the flag form "name:version[:classifier]".
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ":")
	for _, p := range parts {
		if p == "" {
			return Coordinate{}, fmt.Errorf("invalid artifact coordinate %q", s)
		}
	}
	switch len(parts) {
	case 2:
		return Coordinate{Name: parts[0], Version: parts[1]}, nil
	case 3:
		return Coordinate{Name: parts[0], Version: parts[1], Classifier: parts[2]}, nil
	default:
		return Coordinate{}, fmt.Errorf("invalid artifact coordinate %q (expected name:version[:classifier])", s)
	}
}

// Filename returns the archive filename the coordinate maps to.
func (c Coordinate) Filename() string {
	if c.Classifier != "" {
		return fmt.Sprintf("%s-%s-%s.zip", c.Name, c.Version, c.Classifier)
	}
	return fmt.Sprintf("%s-%s.zip", c.Name, c.Version)
}

// String renders the canonical name:version[:classifier] form.
func (c Coordinate) String() string {
	if c.Classifier != "" {
		return fmt.Sprintf("%s:%s:%s", c.Name, c.Version, c.Classifier)
	}
	return fmt.Sprintf("%s:%s", c.Name, c.Version)
}

// IsZero reports whether the coordinate is empty.
func (c Coordinate) IsZero() bool {
	return c.Name == "" && c.Version == "" && c.Classifier == ""
}
