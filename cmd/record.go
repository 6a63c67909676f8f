package cmd

import (
	"errors"
	"time"

	"nxharness/internal/config"
	"nxharness/internal/history"
	"nxharness/internal/invoker"
)

// buildRunRecord assembles the history row for a finished run or test
// invocation. The verdict discriminates test failures (the command ran and
// exited non-zero) from harness errors (anything that kept the tests from
// running to completion).
func buildRunRecord(id, coordinate string, testCfg config.TestConfig, started time.Time, runErr error) history.RunRecord {
	command := testCfg.Command
	if command == "" {
		command = config.DefaultTestCommand
	}

	rec := history.RunRecord{
		ID:         id,
		StartedAt:  started,
		Duration:   time.Since(started),
		Coordinate: coordinate,
		ServerURL:  invoker.EffectiveServerURL(testCfg.ServerURL),
		Command:    command,
		Verdict:    history.VerdictPassed,
	}
	if runErr == nil {
		return rec
	}

	rec.Error = runErr.Error()
	rec.Verdict = history.VerdictError

	var testErr *invoker.TestRunError
	if errors.As(runErr, &testErr) {
		rec.ExitCode = testErr.ExitCode
		if testErr.ExitCode > 0 {
			rec.Verdict = history.VerdictFailed
		}
	}
	return rec
}
