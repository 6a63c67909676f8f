package artifact

import "fmt"

// ResolutionError reports that an artifact could not be located, downloaded
// or verified. It aborts the provisioning sequence before any unpack occurs.
type ResolutionError struct {
	Coordinate Coordinate
	Repository string
	Err        error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Repository != "" {
		return fmt.Sprintf("could not resolve artifact %s from %s: %v", e.Coordinate, e.Repository, e.Err)
	}
	return fmt.Sprintf("could not resolve artifact %s: %v", e.Coordinate, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}
