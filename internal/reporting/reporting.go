// Package reporting renders run progress and outcomes on the console and
// writes optional JSON report files. Console output goes to stdout; the
// structured log stream stays on stderr, so the two can be consumed
// separately.
package reporting

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"nxharness/internal/invoker"
	"nxharness/internal/provision"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Options configure console rendering.
type Options struct {
	Output io.Writer // defaults to os.Stdout
	Quiet  bool      // suppress step progression, keep the final verdict
	Debug  bool      // disable the spinner so log lines stay readable
}

// ConsoleReporter prints the provisioning step progression and a one-line
// run verdict. It implements provision.Observer.
type ConsoleReporter struct {
	out         io.Writer
	quiet       bool
	interactive bool
	spin        *spinner.Spinner
}

// NewConsoleReporter builds a reporter. The spinner only runs on an
// interactive terminal and never alongside debug logging.
func NewConsoleReporter(opts Options) *ConsoleReporter {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{
		out:         out,
		quiet:       opts.Quiet,
		interactive: !opts.Quiet && !opts.Debug && isTerminal(out),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var stepLabels = map[string]string{
	provision.StepAcquire:  "Acquiring server bundle",
	provision.StepUnpack:   "Unpacking server bundle",
	provision.StepOverlay:  "Applying configuration overlays",
	provision.StepServices: "Starting services",
}

func stepLabel(step string) string {
	if label, ok := stepLabels[step]; ok {
		return label
	}
	return step
}

var (
	okMark   = color.New(color.FgGreen).Sprint("✔")
	failMark = color.New(color.FgRed).Sprint("✘")
)

// StepStarted implements provision.Observer.
func (r *ConsoleReporter) StepStarted(step string) {
	if !r.interactive {
		return
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + stepLabel(step) + "..."
	s.Start()
	r.spin = s
}

// StepFinished implements provision.Observer.
func (r *ConsoleReporter) StepFinished(step string, d time.Duration, err error) {
	if r.spin != nil {
		r.spin.Stop()
		r.spin = nil
	}
	if r.quiet {
		return
	}

	mark := okMark
	if err != nil {
		mark = failMark
	}
	fmt.Fprintf(r.out, "%s %s (%s)\n", mark, stepLabel(step), d.Round(time.Millisecond))
}

// RunPassed prints the success verdict.
func (r *ConsoleReporter) RunPassed(d time.Duration) {
	fmt.Fprintf(r.out, "%s Tests passed in %s\n", okMark, d.Round(time.Second))
}

// RunFailed prints the failure verdict: test failures report the exit
// status, everything else the aborting error.
func (r *ConsoleReporter) RunFailed(err error, d time.Duration) {
	var terr *invoker.TestRunError
	if errors.As(err, &terr) && terr.ExitCode > 0 {
		fmt.Fprintf(r.out, "%s Tests failed with exit status %d (%s)\n", failMark, terr.ExitCode, d.Round(time.Second))
		return
	}
	fmt.Fprintf(r.out, "%s Run aborted: %v\n", failMark, err)
}

// ProvisionComplete prints the verdict for a provision-only invocation.
func (r *ConsoleReporter) ProvisionComplete(dest string, d time.Duration) {
	fmt.Fprintf(r.out, "%s Environment provisioned at %s (%s)\n", okMark, dest, d.Round(time.Second))
}
