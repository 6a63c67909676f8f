// Package app bootstraps the harness: logging first, then configuration,
// then the component wiring shared by the run, provision and test commands.
package app

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"nxharness/internal/artifact"
	"nxharness/internal/config"
	"nxharness/internal/history"
	"nxharness/internal/invoker"
	"nxharness/internal/provision"
	"nxharness/internal/reporting"
	"nxharness/internal/services"
	"nxharness/pkg/logging"
)

// Application carries the loaded configuration and builds the components a
// command needs. Construction is cheap; the expensive parts (resolver,
// orchestrator, history store) are built on demand.
type Application struct {
	Options *Config
	Harness config.Config
}

// NewApplication performs the bootstrap sequence: initialize logging from
// the flags, load the configuration, then apply flag overrides on top.
// Configuration problems come back as *config.ValidationError.
func NewApplication(cfg *Config) (*Application, error) {
	logLevel := logging.LevelInfo
	switch {
	case cfg.Debug:
		logLevel = logging.LevelDebug
	case cfg.Silent:
		logLevel = logging.LevelError
	}

	var logOutput io.Writer = os.Stderr
	logging.InitForCLI(logLevel, logOutput)

	harness, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		logging.Error("bootstrap", err, "Failed to load configuration")
		return nil, err
	}

	// The configured level applies unless a flag already forced one.
	if !cfg.Debug && !cfg.Silent {
		if level, perr := logging.ParseLevel(harness.Logging.Level); perr == nil && level != logLevel {
			logging.InitForCLI(level, logOutput)
		}
	}
	if harness.Logging.Journal {
		if logging.EnableJournal() {
			logging.Debug("bootstrap", "Mirroring log records to the systemd journal")
		}
	}

	applyOverrides(&harness, cfg)

	// Services and provisioning steps share the destination; pin it down
	// before any component captures it.
	if harness.Destination != "" {
		if abs, aerr := filepath.Abs(harness.Destination); aerr == nil {
			harness.Destination = abs
		}
	}

	return &Application{Options: cfg, Harness: harness}, nil
}

// applyOverrides folds flag values into the loaded configuration. Flags win
// over file values; empty flags leave the file values alone.
func applyOverrides(harness *config.Config, cfg *Config) {
	if cfg.Destination != "" {
		harness.Destination = cfg.Destination
	}
	if cfg.ForceUnpack {
		harness.ForceUnpack = true
	}
	if cfg.ServerURL != "" {
		harness.Test.ServerURL = cfg.ServerURL
	}
	if cfg.NoHistory {
		harness.History.Enabled = false
	}
}

// Reporter builds the console reporter for this invocation.
func (a *Application) Reporter() *reporting.ConsoleReporter {
	return reporting.NewConsoleReporter(reporting.Options{
		Quiet: a.Options.Quiet || a.Options.Silent,
		Debug: a.Options.Debug,
	})
}

// Provisioner validates the provisioning configuration and wires the full
// sequence: resolver, unpack, overlays and the service orchestrator (or the
// no-op provisioner when services are skipped).
func (a *Application) Provisioner(obs provision.Observer) (*provision.Provisioner, error) {
	if err := a.Harness.ValidateForProvision(); err != nil {
		return nil, err
	}

	resolver, err := artifact.NewResolver(a.Harness.Artifact)
	if err != nil {
		return nil, &config.ValidationError{Problems: []string{err.Error()}}
	}

	var svc provision.ServiceProvisioner
	if a.Options.SkipServices || len(a.Harness.Services) == 0 {
		svc = provision.NoopServiceProvisioner{}
	} else {
		orch, oerr := services.NewOrchestrator(a.Harness.Services, a.Harness.Destination)
		if oerr != nil {
			return nil, oerr
		}
		svc = orch
	}

	return provision.New(a.Harness, resolver, svc, obs), nil
}

// Invoker validates the test configuration and builds the test invoker.
func (a *Application) Invoker() (*invoker.Invoker, error) {
	if err := a.Harness.ValidateForTest(); err != nil {
		return nil, err
	}
	return invoker.New(a.Harness.Test, nil), nil
}

// RecordRun persists one run record. Recording is best-effort: failures are
// logged as warnings and never affect the run's outcome.
func (a *Application) RecordRun(ctx context.Context, rec history.RunRecord) {
	if !a.Harness.History.Enabled {
		return
	}

	path := a.Harness.History.Path
	if path == "" {
		var err error
		path, err = config.DefaultHistoryPath()
		if err != nil {
			logging.Warn("history", "Not recording run: %v", err)
			return
		}
	}

	store, err := history.NewStore(path)
	if err != nil {
		logging.Warn("history", "Not recording run: %v", err)
		return
	}
	defer store.Close()

	if err := store.Record(ctx, rec); err != nil {
		logging.Warn("history", "Failed to record run: %v", err)
	}
}

// HistoryStore opens the run-history database for reading.
func (a *Application) HistoryStore() (*history.Store, error) {
	path := a.Harness.History.Path
	if path == "" {
		var err error
		path, err = config.DefaultHistoryPath()
		if err != nil {
			return nil, err
		}
	}
	return history.NewStore(path)
}
