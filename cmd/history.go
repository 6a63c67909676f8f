package cmd

import (
	"context"

	"nxharness/internal/app"
	"nxharness/internal/cli"
	"nxharness/internal/reporting"

	"github.com/spf13/cobra"
)

var (
	historyOutput string
	historyLimit  int
)

// historyCmd represents the history command: list recorded past runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded past runs",
	Long: `Lists the most recent recorded runs from the history database, newest
first. Each row carries the start time, duration, server bundle
coordinate, test command, exit code and verdict.

Example usage:
  nxharness history                        # Last 20 runs as a table
  nxharness history --limit=5              # Only the last 5
  nxharness history --output=json          # Machine-readable output`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

// runHistory renders the recorded runs in the requested format.
func runHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(historyOutput)
	if err != nil {
		return err
	}
	if historyLimit < 1 {
		return cli.NewUsageError("limit must be at least 1, got %d", historyLimit)
	}

	cfg := app.NewConfig(rootDebug, rootQuiet, rootSilent, rootConfigPath)
	application, err := app.NewApplication(cfg)
	if err != nil {
		return err
	}

	store, err := application.HistoryStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	records, err := store.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}

	if format == cli.OutputFormatJSON {
		return reporting.RenderHistoryJSON(cmd.OutOrStdout(), records)
	}
	reporting.RenderHistoryTable(cmd.OutOrStdout(), records)
	return nil
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyOutput, "output", "table", "Output format (table, json)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
}
