package invoker

import "fmt"

// TestRunError reports that the external test command exited non-zero or
// could not be started at all. ExitCode carries the child's exit status, or
// -1 when the command never ran.
type TestRunError struct {
	Command  string
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *TestRunError) Error() string {
	if e.ExitCode == -1 {
		return fmt.Sprintf("test command %q could not be started: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("test command %q exited with status %d", e.Command, e.ExitCode)
}

// Unwrap returns the underlying cause.
func (e *TestRunError) Unwrap() error {
	return e.Err
}
