package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration problem that should surface as a
// usage failure rather than a runtime one: an unreadable or unparsable config
// file, or required fields that are missing.
type ValidationError struct {
	Path     string   // File the error came from; empty for field validation
	Problems []string // One entry per problem found
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Path, strings.Join(e.Problems, "; "))
	}
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Problems, "; "))
}

// Add appends a problem to the collection.
func (e *ValidationError) Add(format string, args ...interface{}) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// HasProblems returns true if any problem was recorded.
func (e *ValidationError) HasProblems() bool {
	return len(e.Problems) > 0
}
