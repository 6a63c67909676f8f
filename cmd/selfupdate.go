package cmd

import (
	"context"
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// githubRepoSlug specifies the GitHub repository (owner/repo) to check for
// updates.
const (
	githubRepoSlug = "nuxeo/nxharness"
)

var (
	selfUpdateCheck   bool
	selfUpdateVersion string
)

// newSelfUpdateCmd creates the Cobra command for the self-update
// functionality. This allows the application to update itself from GitHub
// releases.
func newSelfUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selfupdate",
		Short: "Update nxharness to the latest version",
		Long: `Checks for the latest release of nxharness on GitHub and updates the
current binary if a newer version is found.

Use --check to only report whether an update is available, and
--version to update to a specific release instead of the latest.`,
		RunE: runSelfUpdate,
	}

	cmd.Flags().BoolVar(&selfUpdateCheck, "check", false, "Only report whether an update is available")
	cmd.Flags().StringVar(&selfUpdateVersion, "version", "", "Update to a specific release (e.g. v1.2.3) instead of the latest")

	return cmd
}

// runSelfUpdate performs the self-update logic. It resolves the requested
// release, compares it to the current application version and replaces the
// running binary unless --check was given.
func runSelfUpdate(cmd *cobra.Command, args []string) error {
	currentVersion := rootCmd.Version
	// Development builds are not releases and cannot be meaningfully
	// compared or replaced.
	if currentVersion == "" || currentVersion == "dev" {
		return fmt.Errorf("cannot self-update a development version")
	}

	fmt.Printf("Current version: %s\n", currentVersion)

	updater, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}

	ctx := context.Background()
	repository := selfupdate.ParseSlug(githubRepoSlug)

	var release *selfupdate.Release
	var found bool
	if selfUpdateVersion != "" {
		fmt.Printf("Looking up release %s...\n", selfUpdateVersion)
		release, found, err = updater.DetectVersion(ctx, repository, selfUpdateVersion)
	} else {
		fmt.Println("Checking for updates...")
		release, found, err = updater.DetectLatest(ctx, repository)
	}
	if err != nil {
		return fmt.Errorf("error detecting release: %w", err)
	}
	if !found {
		if selfUpdateVersion != "" {
			return fmt.Errorf("release %s of %s could not be found", selfUpdateVersion, githubRepoSlug)
		}
		return fmt.Errorf("latest release for %s could not be found", githubRepoSlug)
	}

	// A pinned version is applied as requested, even when it is not newer.
	if selfUpdateVersion == "" && !release.GreaterThan(currentVersion) {
		fmt.Println("Current version is the latest.")
		return nil
	}

	if selfUpdateCheck {
		fmt.Printf("Update available: %s (published at %s)\n", release.Version(), release.PublishedAt)
		fmt.Printf("Release notes:\n%s\n", release.ReleaseNotes)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	fmt.Printf("Updating %s to version %s...\n", exe, release.Version())

	if err := updater.UpdateTo(ctx, release, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Printf("Successfully updated to version %s\n", release.Version())
	return nil
}
