// Package history persists one record per harness run into a local SQLite
// database. Recording is best-effort: a broken or locked database must never
// fail the run it is recording.
package history

import "time"

// Run verdicts stored alongside each record.
const (
	VerdictPassed = "passed" // tests ran and exited zero
	VerdictFailed = "failed" // tests ran and exited non-zero
	VerdictError  = "error"  // the run aborted before or during provisioning
)

// RunRecord is one completed harness invocation.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	Duration   time.Duration
	Coordinate string
	ServerURL  string
	Command    string
	ExitCode   int
	Verdict    string
	Error      string
}
