package cmd

import (
	"time"

	"nxharness/internal/app"

	"github.com/spf13/cobra"
)

var (
	provisionDest         string
	provisionForceUnpack  bool
	provisionSkipServices bool
	provisionTimeout      time.Duration
)

// provisionCmd represents the provision command: prepare the server
// environment without invoking the tests.
var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Provision the server environment without running tests",
	Long: `Resolves the configured server bundle, unpacks it into the destination,
applies configuration overlays, and starts dependent services.

Useful when iterating on tests against an already-provisioned
environment: provision once, then invoke 'nxharness test' repeatedly.

Example usage:
  nxharness provision                      # Prepare the environment
  nxharness provision --dest=./target/server
  nxharness provision --force-unpack       # Re-extract the bundle first`,
	Args: cobra.NoArgs,
	RunE: runProvision,
}

// runProvision executes the provisioning sequence only.
func runProvision(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(rootDebug, rootQuiet, rootSilent, rootConfigPath)
	cfg.Destination = provisionDest
	cfg.ForceUnpack = provisionForceUnpack
	cfg.SkipServices = provisionSkipServices

	application, err := app.NewApplication(cfg)
	if err != nil {
		return err
	}

	reporter := application.Reporter()

	provisioner, err := application.Provisioner(reporter)
	if err != nil {
		return err
	}

	ctx, cancel := runContext(cmd.Context(), provisionTimeout)
	defer cancel()

	started := time.Now()
	result, err := provisioner.Provision(ctx)
	if err != nil {
		reporter.RunFailed(err, time.Since(started))
		return err
	}

	reporter.ProvisionComplete(result.Destination, time.Since(started))
	return nil
}

func init() {
	rootCmd.AddCommand(provisionCmd)

	provisionCmd.Flags().StringVar(&provisionDest, "dest", "", "Destination directory for the unpacked server bundle")
	provisionCmd.Flags().BoolVar(&provisionForceUnpack, "force-unpack", false, "Clear the destination and re-extract the bundle")
	provisionCmd.Flags().BoolVar(&provisionSkipServices, "skip-services", false, "Do not start dependent services")
	provisionCmd.Flags().DurationVar(&provisionTimeout, "timeout", 0, "Overall provisioning timeout (0 means no timeout)")
}
