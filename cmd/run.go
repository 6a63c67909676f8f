package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nxharness/internal/app"
	"nxharness/internal/history"
	"nxharness/internal/provision"
	"nxharness/internal/reporting"
	"nxharness/pkg/logging"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	runDest         string
	runForceUnpack  bool
	runSkipServices bool
	runTimeout      time.Duration
	runServerURL    string
	runReportDir    string
	runNoHistory    bool
)

// runCmd represents the run command, the primary entry point: provision the
// server environment and invoke the functional tests against it.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Provision the server environment and run the functional tests",
	Long: `Runs the full harness sequence: resolve the configured server bundle,
unpack it into the destination, apply configuration overlays, start
dependent services, and invoke the external test command with SERVER_URL
exported.

The sequence is fail-fast: the first failing step aborts the run and its
step maps to a dedicated exit code. The test command's own exit status is
reported via exit code 7.

Example usage:
  nxharness run                            # Full sequence with nxharness.yaml
  nxharness run --force-unpack             # Re-extract the bundle first
  nxharness run --skip-services            # Server is already running
  nxharness run --server-url=http://localhost:8080/nuxeo
  nxharness run --report=./reports         # Also write a JSON run report`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

// runRun executes provision followed by the test invocation and records the
// outcome.
func runRun(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(rootDebug, rootQuiet, rootSilent, rootConfigPath)
	cfg.Destination = runDest
	cfg.ForceUnpack = runForceUnpack
	cfg.SkipServices = runSkipServices
	cfg.ServerURL = runServerURL
	cfg.NoHistory = runNoHistory

	application, err := app.NewApplication(cfg)
	if err != nil {
		return err
	}

	reporter := application.Reporter()

	provisioner, err := application.Provisioner(reporter)
	if err != nil {
		return err
	}
	tests, err := application.Invoker()
	if err != nil {
		return err
	}

	ctx, cancel := runContext(cmd.Context(), runTimeout)
	defer cancel()

	runID := uuid.New().String()
	started := time.Now()

	provResult, runErr := provisioner.Provision(ctx)
	if runErr == nil {
		_, runErr = tests.Run(ctx)
	}
	elapsed := time.Since(started)

	record := buildRunRecord(runID, provisioner.Coordinate().String(), application.Harness.Test, started, runErr)
	// Recording uses a fresh context so an interrupted run still gets a
	// history row.
	application.RecordRun(context.Background(), record)

	if runReportDir != "" {
		saveRunReport(runReportDir, record, provResult.Destination, provResult.Steps)
	}

	if runErr != nil {
		reporter.RunFailed(runErr, elapsed)
		return runErr
	}
	reporter.RunPassed(elapsed)
	return nil
}

// saveRunReport writes the JSON run report. Report failures are logged, never
// fatal.
func saveRunReport(dir string, record history.RunRecord, destination string, steps []provision.StepTiming) {
	report := reporting.Report{
		RunID:       record.ID,
		StartedAt:   record.StartedAt,
		Duration:    record.Duration,
		Coordinate:  record.Coordinate,
		Destination: destination,
		ServerURL:   record.ServerURL,
		Command:     record.Command,
		Steps:       steps,
		ExitCode:    record.ExitCode,
		Verdict:     record.Verdict,
		Error:       record.Error,
	}
	path, err := reporting.SaveReport(dir, report)
	if err != nil {
		logging.Warn("harness", "Failed to save run report: %v", err)
		return
	}
	logging.Info("harness", "Run report saved to %s", path)
}

// runContext derives the execution context for a harness run: cancelled on
// SIGINT/SIGTERM and bounded by the timeout when one is set.
func runContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	var ctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			logging.Info("harness", "Received interrupt, stopping run")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDest, "dest", "", "Destination directory for the unpacked server bundle")
	runCmd.Flags().BoolVar(&runForceUnpack, "force-unpack", false, "Clear the destination and re-extract the bundle")
	runCmd.Flags().BoolVar(&runSkipServices, "skip-services", false, "Do not start dependent services")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Overall run timeout (0 means no timeout)")
	runCmd.Flags().StringVar(&runServerURL, "server-url", "", "SERVER_URL exported to the test command")
	runCmd.Flags().StringVar(&runReportDir, "report", "", "Directory to write a JSON run report into")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Do not record this run in the history database")
}
