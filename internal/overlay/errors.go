package overlay

import "fmt"

// OverlayError reports that a configuration overlay could not be applied.
type OverlayError struct {
	Source string
	Target string
	Err    error
}

// Error implements the error interface.
func (e *OverlayError) Error() string {
	return fmt.Sprintf("could not overlay %s into %s: %v", e.Source, e.Target, e.Err)
}

// Unwrap returns the underlying cause.
func (e *OverlayError) Unwrap() error {
	return e.Err
}
