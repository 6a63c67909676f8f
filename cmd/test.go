package cmd

import (
	"context"
	"time"

	"nxharness/internal/app"
	"nxharness/internal/artifact"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	testServerURL string
	testReportDir string
	testNoHistory bool
)

// testCmd represents the test command: invoke the functional tests against an
// already-provisioned environment.
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run the functional tests against an existing environment",
	Long: `Invokes the configured test-orchestration command (default: tox) with no
arguments, inheriting the working directory and environment. SERVER_URL
is exported to the command: the --server-url flag or the configured
serverURL when set, otherwise the value already present in the
environment, otherwise empty but present.

The command's exit status is the run's status; a non-zero exit surfaces
as harness exit code 7.

Example usage:
  nxharness test                           # Run tests with SERVER_URL passthrough
  nxharness test --server-url=http://localhost:8080/nuxeo
  nxharness test --report=./reports        # Also write a JSON run report`,
	Args: cobra.NoArgs,
	RunE: runTest,
}

// runTest executes the test invocation only.
func runTest(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(rootDebug, rootQuiet, rootSilent, rootConfigPath)
	cfg.ServerURL = testServerURL
	cfg.NoHistory = testNoHistory

	application, err := app.NewApplication(cfg)
	if err != nil {
		return err
	}

	reporter := application.Reporter()

	tests, err := application.Invoker()
	if err != nil {
		return err
	}

	ctx, cancel := runContext(cmd.Context(), 0)
	defer cancel()

	runID := uuid.New().String()
	started := time.Now()

	_, runErr := tests.Run(ctx)
	elapsed := time.Since(started)

	coordinate := artifact.Coordinate{
		Name:       application.Harness.Artifact.Name,
		Version:    application.Harness.Artifact.Version,
		Classifier: application.Harness.Artifact.Classifier,
	}
	var coordinateName string
	if !coordinate.IsZero() {
		coordinateName = coordinate.String()
	}

	record := buildRunRecord(runID, coordinateName, application.Harness.Test, started, runErr)
	application.RecordRun(context.Background(), record)

	if testReportDir != "" {
		saveRunReport(testReportDir, record, application.Harness.Destination, nil)
	}

	if runErr != nil {
		reporter.RunFailed(runErr, elapsed)
		return runErr
	}
	reporter.RunPassed(elapsed)
	return nil
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringVar(&testServerURL, "server-url", "", "SERVER_URL exported to the test command")
	testCmd.Flags().StringVar(&testReportDir, "report", "", "Directory to write a JSON run report into")
	testCmd.Flags().BoolVar(&testNoHistory, "no-history", false, "Do not record this run in the history database")
}
