// Package provision runs the environment-preparation sequence: resolve the
// server test-support bundle, unpack it, overlay local configuration and
// start the dependent services.
//
// The sequence is strictly linear and fail-fast. Any step failing aborts the
// run with the step's typed error; nothing is cleaned up on failure
// (teardown belongs to external infrastructure). The overlay step runs on
// every invocation even when the unpack step was skipped, so configuration
// always reflects the current source tree.
package provision

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"nxharness/internal/archive"
	"nxharness/internal/artifact"
	"nxharness/internal/config"
	"nxharness/internal/invoker"
	"nxharness/internal/overlay"
	"nxharness/internal/services"
	"nxharness/pkg/logging"
)

const subsystem = "provision"

// Step names in execution order.
const (
	StepAcquire  = "acquire"
	StepUnpack   = "unpack"
	StepOverlay  = "overlay"
	StepServices = "services"
)

// ServiceProvisioner starts the dependent services (database, application
// server). The provisioning sequence treats it as a black box that must
// succeed before control returns; tests substitute a fake to avoid bringing
// up real infrastructure.
type ServiceProvisioner interface {
	Start(ctx context.Context) error
}

// NoopServiceProvisioner skips service startup. Used when the environment
// is already running and only provisioning of files is wanted.
type NoopServiceProvisioner struct{}

// Start implements ServiceProvisioner as a logged no-op.
func (NoopServiceProvisioner) Start(ctx context.Context) error {
	logging.Info(subsystem, "Service startup skipped")
	return nil
}

// StepTiming records how long one completed step took.
type StepTiming struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
}

// Result describes a provisioning run. Steps contains an entry for every
// step that ran, including the failing one.
type Result struct {
	Coordinate  artifact.Coordinate
	ArchivePath string
	Destination string
	Steps       []StepTiming
}

// Observer receives step lifecycle notifications while the sequence runs.
// Implementations must not block; they are called on the provisioning
// goroutine.
type Observer interface {
	StepStarted(step string)
	StepFinished(step string, d time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) StepStarted(string)                        {}
func (nopObserver) StepFinished(string, time.Duration, error) {}

// Provisioner runs the four-step preparation sequence against one
// destination directory. It is not safe for concurrent use; no two runs
// may share a destination.
type Provisioner struct {
	cfg      config.Config
	resolver artifact.Resolver
	services ServiceProvisioner
	observer Observer
}

// New creates a provisioner. A nil services provisioner is replaced with the
// no-op one, a nil observer with a silent one.
func New(cfg config.Config, resolver artifact.Resolver, svc ServiceProvisioner, obs Observer) *Provisioner {
	if svc == nil {
		svc = NoopServiceProvisioner{}
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &Provisioner{cfg: cfg, resolver: resolver, services: svc, observer: obs}
}

// Coordinate returns the artifact coordinate the provisioner will resolve.
func (p *Provisioner) Coordinate() artifact.Coordinate {
	return artifact.Coordinate{
		Name:       p.cfg.Artifact.Name,
		Version:    p.cfg.Artifact.Version,
		Classifier: p.cfg.Artifact.Classifier,
	}
}

// Provision runs Acquire, Unpack, Overlay and StartServices in order,
// stopping at the first failure. The returned error is the failing step's
// typed error; the Result is valid in both outcomes.
func (p *Provisioner) Provision(ctx context.Context) (Result, error) {
	result := Result{Coordinate: p.Coordinate()}

	dest, err := filepath.Abs(p.cfg.Destination)
	if err != nil {
		return result, fmt.Errorf("resolving destination %q: %w", p.cfg.Destination, err)
	}
	result.Destination = dest

	// Acquire. Must fail before the destination is created or touched.
	err = p.runStep(ctx, StepAcquire, &result, func(ctx context.Context) error {
		logging.Info(subsystem, "Acquiring %s", result.Coordinate)
		path, rerr := p.resolver.Resolve(ctx, result.Coordinate)
		if rerr != nil {
			return rerr
		}
		result.ArchivePath = path
		return nil
	})
	if err != nil {
		return result, err
	}

	// Unpack. Skipped internally when the destination is already populated.
	err = p.runStep(ctx, StepUnpack, &result, func(ctx context.Context) error {
		logging.Info(subsystem, "Unpacking %s into %s", result.ArchivePath, dest)
		return archive.Unpack(ctx, result.ArchivePath, dest, p.cfg.ForceUnpack)
	})
	if err != nil {
		return result, err
	}

	// Overlay. Runs unconditionally on every invocation.
	err = p.runStep(ctx, StepOverlay, &result, func(ctx context.Context) error {
		logging.Info(subsystem, "Applying %d configuration overlay(s)", len(p.cfg.Overlays))
		tctx := overlay.Context{
			Destination: dest,
			ServerURL:   invoker.EffectiveServerURL(p.cfg.Test.ServerURL),
		}
		return overlay.Apply(dest, p.cfg.Overlays, tctx)
	})
	if err != nil {
		return result, err
	}

	// Start dependent services.
	err = p.runStep(ctx, StepServices, &result, func(ctx context.Context) error {
		logging.Info(subsystem, "Starting dependent services")
		if serr := p.services.Start(ctx); serr != nil {
			var typed *services.ServiceStartError
			if !errors.As(serr, &typed) {
				serr = &services.ServiceStartError{Service: "services", Err: serr}
			}
			return serr
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	logging.Info(subsystem, "Provisioning complete at %s", dest)
	return result, nil
}

// runStep times one step, notifies the observer and records the timing.
func (p *Provisioner) runStep(ctx context.Context, name string, result *Result, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.observer.StepStarted(name)
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	result.Steps = append(result.Steps, StepTiming{Name: name, Duration: elapsed})
	p.observer.StepFinished(name, elapsed, err)
	return err
}
