package cmd

import (
	"errors"
	"os"

	"nxharness/internal/archive"
	"nxharness/internal/artifact"
	"nxharness/internal/cli"
	"nxharness/internal/config"
	"nxharness/internal/invoker"
	"nxharness/internal/overlay"
	"nxharness/internal/services"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands. Each provisioning step and the test
// invocation maps to a distinct code so CI pipelines can tell a broken
// environment from broken tests.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, internal failure).
	ExitCodeError = 1
	// ExitCodeUsage indicates invalid flags or an invalid configuration file.
	ExitCodeUsage = 2
	// ExitCodeResolution indicates the server bundle could not be resolved.
	ExitCodeResolution = 3
	// ExitCodeUnpack indicates the server bundle could not be extracted.
	ExitCodeUnpack = 4
	// ExitCodeOverlay indicates a configuration overlay could not be applied.
	ExitCodeOverlay = 5
	// ExitCodeService indicates a dependent service failed to start.
	ExitCodeService = 6
	// ExitCodeTest indicates the external test command failed.
	ExitCodeTest = 7
)

// Persistent flags shared by every subcommand.
var (
	rootConfigPath string
	rootDebug      bool
	rootQuiet      bool
	rootSilent     bool
)

// rootCmd represents the base command for the nxharness application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "nxharness",
	Short: "Provision a server environment and run functional tests against it",
	Long: `nxharness prepares a disposable server environment for functional testing
and hands control to an external test-orchestration command.

A run resolves the configured server test-support bundle, unpacks it,
applies configuration overlays, starts dependent services, and then
invokes the test command with SERVER_URL exported. The harness exit
status tells CI which stage failed.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the
// application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application. It runs the root
// command and translates the returned error into a semantic exit code.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "nxharness version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var usageErr *cli.UsageError
	if errors.As(err, &usageErr) {
		return ExitCodeUsage
	}

	var configErr *config.ValidationError
	if errors.As(err, &configErr) {
		return ExitCodeUsage
	}

	var resolutionErr *artifact.ResolutionError
	if errors.As(err, &resolutionErr) {
		return ExitCodeResolution
	}

	var unpackErr *archive.UnpackError
	if errors.As(err, &unpackErr) {
		return ExitCodeUnpack
	}

	var overlayErr *overlay.OverlayError
	if errors.As(err, &overlayErr) {
		return ExitCodeOverlay
	}

	var serviceErr *services.ServiceStartError
	if errors.As(err, &serviceErr) {
		return ExitCodeService
	}

	var testErr *invoker.TestRunError
	if errors.As(err, &testErr) {
		return ExitCodeTest
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())

	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", "", "Configuration file path (default: ./nxharness.yaml, then ~/.config/nxharness/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&rootQuiet, "quiet", false, "Suppress step progression output")
	rootCmd.PersistentFlags().BoolVar(&rootSilent, "silent", false, "Suppress all harness output except errors")
}
