package invoker

import (
	"context"
	"errors"
	"os"
	"os/exec"
)

// CommandRunner runs one external command to completion and reports its exit
// status. It exists so tests can substitute a deterministic fake for the real
// process invocation.
type CommandRunner interface {
	// Run executes name with args and the given environment, blocking until
	// the command exits. It returns the command's exit code. A command that
	// could not be started at all yields -1 and a non-nil error; a command
	// that ran and exited non-zero yields its exit code and a nil error.
	Run(ctx context.Context, name string, args []string, env []string) (int, error)
}

// ExecRunner is the production CommandRunner. The child inherits the
// harness's working directory and streams; only the environment is supplied
// by the caller.
type ExecRunner struct{}

// NewExecRunner creates an exec-based command runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements CommandRunner on top of os/exec.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, env []string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The command ran and exited on its own terms.
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
