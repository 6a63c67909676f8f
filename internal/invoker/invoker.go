// Package invoker runs the external test-orchestration command against a
// provisioned environment.
//
// The invoker owns the thinnest part of the harness contract: it defaults
// SERVER_URL so downstream consumers always observe the variable (empty when
// nothing set it), brackets the run with start and end banners, and
// propagates the command's exit status unchanged. All actual test logic
// lives in the external command.
package invoker

import (
	"context"
	"os"
	"time"

	"github.com/alessio/shellescape"

	"nxharness/internal/config"
	"nxharness/pkg/logging"
)

const subsystem = "invoker"

// ServerURLVar is the environment variable handed to the test command.
const ServerURLVar = "SERVER_URL"

// Result describes a completed (or failed-to-start) test invocation.
type Result struct {
	Command   string
	ServerURL string
	ExitCode  int
	Duration  time.Duration
}

// Invoker invokes the configured test command exactly once, with no
// arguments, inheriting the harness's working directory and environment.
type Invoker struct {
	cfg    config.TestConfig
	runner CommandRunner
}

// New creates an invoker. A nil runner falls back to the exec-based one.
func New(cfg config.TestConfig, runner CommandRunner) *Invoker {
	if runner == nil {
		runner = NewExecRunner()
	}
	return &Invoker{cfg: cfg, runner: runner}
}

// EffectiveServerURL returns the SERVER_URL value the test command will
// observe: the configured override when non-empty, otherwise the process
// environment value, otherwise the empty string. The value is passed through
// exactly, no trimming or transformation.
func EffectiveServerURL(override string) string {
	if override != "" {
		return override
	}
	return os.Getenv(ServerURLVar)
}

// buildEnv returns the child environment: the full harness environment plus
// an explicit SERVER_URL entry. The entry is always appended, even when
// empty, so downstream consumers see "empty but present" rather than absent;
// os/exec resolves duplicate keys in favor of the last entry.
func buildEnv(serverURL string) []string {
	return append(os.Environ(), ServerURLVar+"="+serverURL)
}

// Run invokes the test command and blocks until it returns. The end banner
// is emitted only after the command returns; a non-zero exit or a command
// that cannot be started yields a TestRunError. The returned Result is
// populated in both cases.
func (i *Invoker) Run(ctx context.Context) (Result, error) {
	command := i.cfg.Command
	if command == "" {
		command = config.DefaultTestCommand
	}
	serverURL := EffectiveServerURL(i.cfg.ServerURL)

	logging.Info(subsystem, "=== Starting functional tests ===")
	logging.Info(subsystem, "PATH=%s", os.Getenv("PATH"))
	logging.Info(subsystem, "%s=%s", ServerURLVar, serverURL)
	logging.Debug(subsystem, "Invoking %s", shellescape.Quote(command))

	start := time.Now()
	exitCode, runErr := i.runner.Run(ctx, command, nil, buildEnv(serverURL))
	result := Result{
		Command:   command,
		ServerURL: serverURL,
		ExitCode:  exitCode,
		Duration:  time.Since(start),
	}

	logging.Info(subsystem, "=== Ending functional tests (%s) ===", result.Duration.Round(time.Millisecond))

	if runErr != nil {
		return result, &TestRunError{Command: command, ExitCode: -1, Err: runErr}
	}
	if exitCode != 0 {
		return result, &TestRunError{Command: command, ExitCode: exitCode}
	}
	return result, nil
}
