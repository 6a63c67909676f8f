package services

import (
	"context"
	"fmt"

	"nxharness/internal/config"
	"nxharness/internal/template"
	"nxharness/pkg/logging"
)

const subsystem = "services"

// Orchestrator starts the configured dependent services strictly in
// configuration order. Each service must reach readiness before the next
// one starts, so a database always precedes the application server that
// needs it. The first failure aborts the sequence; services started
// earlier are left running (teardown is external).
type Orchestrator struct {
	services []Service
}

// NewOrchestrator builds the service list from configuration. Placeholders
// like {{ .Destination }} in command, args, dir, env and logFile values are
// expanded against the destination directory.
func NewOrchestrator(cfgs []config.ServiceConfig, destination string) (*Orchestrator, error) {
	engine := template.New()
	expansion := map[string]interface{}{
		"Destination": destination,
	}

	svcs := make([]Service, 0, len(cfgs))
	for _, cfg := range cfgs {
		expanded, err := expandServiceConfig(engine, cfg, expansion)
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", cfg.Name, err)
		}

		svc := NewProcessService(expanded, destination)
		svc.SetStateChangeCallback(logStateChange)
		svcs = append(svcs, svc)
	}

	return &Orchestrator{services: svcs}, nil
}

// expandServiceConfig expands placeholders in all templatable fields of a
// service configuration. The input is a value copy, the caller's slice is
// not modified.
func expandServiceConfig(engine *template.Engine, cfg config.ServiceConfig, expansion map[string]interface{}) (config.ServiceConfig, error) {
	var err error

	if cfg.Command, err = engine.ReplaceString(cfg.Command, expansion); err != nil {
		return cfg, fmt.Errorf("command: %w", err)
	}
	if cfg.Args, err = engine.ReplaceSlice(cfg.Args, expansion); err != nil {
		return cfg, fmt.Errorf("args: %w", err)
	}
	if cfg.Dir, err = engine.ReplaceString(cfg.Dir, expansion); err != nil {
		return cfg, fmt.Errorf("dir: %w", err)
	}
	if cfg.Env, err = engine.ReplaceStringMap(cfg.Env, expansion); err != nil {
		return cfg, fmt.Errorf("env: %w", err)
	}
	if cfg.LogFile, err = engine.ReplaceString(cfg.LogFile, expansion); err != nil {
		return cfg, fmt.Errorf("logFile: %w", err)
	}

	return cfg, nil
}

func logStateChange(name string, oldState, newState ServiceState, err error) {
	if err != nil {
		logging.Debug(subsystem, "Service %s: %s -> %s (%v)", name, oldState, newState, err)
		return
	}
	logging.Debug(subsystem, "Service %s: %s -> %s", name, oldState, newState)
}

// Start starts every service in order, waiting for readiness between
// services.
func (o *Orchestrator) Start(ctx context.Context) error {
	for _, svc := range o.services {
		logging.Info(subsystem, "Starting service %s", svc.GetName())
		if err := svc.Start(ctx); err != nil {
			return &ServiceStartError{Service: svc.GetName(), Err: err}
		}
		logging.Info(subsystem, "Service %s is ready", svc.GetName())
	}
	return nil
}

// Stop stops all services in reverse order, returning the first error
// encountered. Provisioning never calls this (teardown is external); it
// exists for embedders and tests.
func (o *Orchestrator) Stop(ctx context.Context) error {
	var firstErr error
	for i := len(o.services) - 1; i >= 0; i-- {
		if err := o.services[i].Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Services returns the managed services in start order.
func (o *Orchestrator) Services() []Service {
	return o.services
}
