// Package cli holds the error and option types shared by the command layer.
package cli

import "fmt"

// UsageError indicates invalid flags or arguments. The root command maps it
// to the usage exit code; it is always raised before any side effect.
type UsageError struct {
	Message string
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return e.Message
}

// NewUsageError builds a UsageError from a format string.
func NewUsageError(format string, args ...interface{}) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}
