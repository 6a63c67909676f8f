package archive

import "fmt"

// UnpackError reports that extracting the server bundle failed.
type UnpackError struct {
	Archive string
	Dest    string
	Err     error
}

// Error implements the error interface.
func (e *UnpackError) Error() string {
	return fmt.Sprintf("could not unpack %s into %s: %v", e.Archive, e.Dest, e.Err)
}

// Unwrap returns the underlying cause.
func (e *UnpackError) Unwrap() error {
	return e.Err
}
