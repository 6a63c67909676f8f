package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alessio/shellescape"

	"nxharness/internal/config"
	"nxharness/pkg/logging"
)

const (
	// stopGracePeriod is how long a process group gets to shut down after
	// SIGTERM before it is killed.
	stopGracePeriod = 10 * time.Second

	// consoleTailLines bounds the amount of captured output included in
	// start failure errors.
	consoleTailLines = 20

	consoleTailBytes = 4096
)

// ProcessService runs one dependent service as an external process in its
// own process group. Stdout and stderr are redirected to a console log file
// under the destination so the process can outlive the harness; the console
// log (and the configured logFile, when set) is followed and streamed into
// the harness log at debug level.
type ProcessService struct {
	*BaseService

	cfg  config.ServiceConfig
	dest string

	mu          sync.Mutex
	cmd         *exec.Cmd
	consolePath string
	exitErr     error
	exited      chan struct{}
	followers   []*LogFollower
}

// NewProcessService creates a process service from its configuration.
// Relative dir and logFile values are resolved against the destination
// directory, which is expected to be absolute.
func NewProcessService(cfg config.ServiceConfig, destination string) *ProcessService {
	return &ProcessService{
		BaseService: NewBaseService(cfg.Name),
		cfg:         cfg,
		dest:        destination,
	}
}

// Start launches the process and blocks until it is ready. Without a
// configured readiness probe the service counts as ready as soon as the
// process is running.
func (s *ProcessService) Start(ctx context.Context) error {
	switch s.GetState() {
	case StateStarting, StateRunning:
		return nil
	}

	s.UpdateState(StateStarting, nil)

	consolePath := filepath.Join(s.dest, "log", s.GetName()+"-console.log")
	if err := os.MkdirAll(filepath.Dir(consolePath), 0755); err != nil {
		err = fmt.Errorf("creating log directory: %w", err)
		s.UpdateState(StateFailed, err)
		return err
	}
	console, err := os.OpenFile(consolePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		err = fmt.Errorf("opening console log: %w", err)
		s.UpdateState(StateFailed, err)
		return err
	}

	cmd := exec.CommandContext(ctx, s.cfg.Command, s.cfg.Args...)
	cmd.Dir = s.workDir()
	cmd.Env = buildEnv(s.cfg.Env)
	cmd.Stdout = console
	cmd.Stderr = console
	configureProcAttr(cmd)
	cmd.Cancel = func() error {
		return terminateProcessGroup(cmd.Process.Pid)
	}
	cmd.WaitDelay = stopGracePeriod

	logging.Debug(s.GetName(), "Starting %s in %s",
		shellescape.QuoteCommand(append([]string{s.cfg.Command}, s.cfg.Args...)), cmd.Dir)

	if err := cmd.Start(); err != nil {
		console.Close()
		err = fmt.Errorf("starting command %q: %w", s.cfg.Command, err)
		s.UpdateState(StateFailed, err)
		return err
	}

	// Close our copy of the console descriptor. The child keeps its own,
	// so it can write (and survive) after the harness exits.
	console.Close()

	s.mu.Lock()
	s.cmd = cmd
	s.consolePath = consolePath
	s.exitErr = nil
	s.exited = make(chan struct{})
	exited := s.exited
	s.mu.Unlock()

	go s.reap(cmd, exited)
	s.startFollowers(consolePath)

	return s.waitReady(ctx)
}

// reap waits for the process to exit and records the result. State
// transitions during startup are owned by waitReady; the reaper only
// transitions services that were already running or stopping.
func (s *ProcessService) reap(cmd *exec.Cmd, exited chan struct{}) {
	err := cmd.Wait()

	s.mu.Lock()
	s.exitErr = err
	s.mu.Unlock()
	close(exited)

	switch s.GetState() {
	case StateStopping:
		s.UpdateState(StateStopped, nil)
	case StateRunning:
		if err != nil {
			s.UpdateState(StateFailed, fmt.Errorf("process exited: %w", err))
		} else {
			s.UpdateState(StateStopped, nil)
		}
	}
}

// waitReady polls the readiness probes until they pass, the process dies,
// or the per-service timeout expires.
func (s *ProcessService) waitReady(ctx context.Context) error {
	r := s.cfg.Readiness
	if !hasProbe(r) {
		s.UpdateState(StateRunning, nil)
		return nil
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = config.DefaultReadinessTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readinessPollInterval)
	defer ticker.Stop()

	s.mu.Lock()
	exited := s.exited
	s.mu.Unlock()

	var lastProbeErr error
	for {
		if err := probeReadiness(probeCtx, r); err == nil {
			s.UpdateState(StateRunning, nil)
			return nil
		} else {
			lastProbeErr = err
		}

		select {
		case <-exited:
			s.mu.Lock()
			exitErr := s.exitErr
			s.mu.Unlock()
			if exitErr == nil {
				// A starter script may exit 0 once the real service is
				// running in the background. Keep probing.
				exited = nil
				continue
			}
			err := fmt.Errorf("process exited before becoming ready: %v%s", exitErr, s.recentOutput())
			s.UpdateState(StateFailed, err)
			return err

		case <-probeCtx.Done():
			if err := ctx.Err(); err != nil {
				s.UpdateState(StateFailed, err)
				return err
			}
			err := fmt.Errorf("not ready within %s: %v%s", timeout, lastProbeErr, s.recentOutput())
			s.UpdateState(StateFailed, err)
			return err

		case <-ticker.C:
		}
	}
}

// Stop terminates the process group, SIGTERM first, SIGKILL after the grace
// period. Provisioning never calls this (teardown is external); it exists
// for embedders and tests.
func (s *ProcessService) Stop(ctx context.Context) error {
	switch s.GetState() {
	case StateStopped, StateStopping:
		return nil
	}

	s.mu.Lock()
	cmd := s.cmd
	exited := s.exited
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		s.UpdateState(StateStopped, nil)
		return nil
	}

	s.UpdateState(StateStopping, nil)
	s.stopFollowers()

	pid := cmd.Process.Pid
	if err := terminateProcessGroup(pid); err != nil {
		logging.Warn(s.GetName(), "Graceful termination failed: %v", err)
	}

	select {
	case <-exited:
		return nil
	case <-time.After(stopGracePeriod):
	case <-ctx.Done():
	}

	if err := killProcessGroup(pid); err != nil {
		logging.Warn(s.GetName(), "Kill failed: %v", err)
	}

	select {
	case <-exited:
		return nil
	case <-time.After(2 * time.Second):
		return fmt.Errorf("process %d did not exit after kill", pid)
	}
}

// workDir resolves the working directory for the process.
func (s *ProcessService) workDir() string {
	dir := s.cfg.Dir
	if dir == "" {
		return s.dest
	}
	if !filepath.IsAbs(dir) {
		return filepath.Join(s.dest, dir)
	}
	return dir
}

// startFollowers streams the console log, and the service's own log file
// when one is configured, into the harness log.
func (s *ProcessService) startFollowers(consolePath string) {
	name := s.GetName()

	paths := []string{consolePath}
	if s.cfg.LogFile != "" {
		logPath := s.cfg.LogFile
		if !filepath.IsAbs(logPath) {
			logPath = filepath.Join(s.dest, logPath)
		}
		if logPath != consolePath {
			paths = append(paths, logPath)
		}
	}

	for _, path := range paths {
		follower := NewLogFollower(path, func(line string) {
			logging.Debug(name, "%s", line)
		})
		if err := follower.Start(); err != nil {
			logging.Warn(name, "Unable to follow %s: %v", path, err)
			continue
		}
		s.mu.Lock()
		s.followers = append(s.followers, follower)
		s.mu.Unlock()
	}
}

func (s *ProcessService) stopFollowers() {
	s.mu.Lock()
	followers := s.followers
	s.followers = nil
	s.mu.Unlock()

	for _, f := range followers {
		f.Stop()
	}
}

// recentOutput returns the tail of the console log for inclusion in start
// failure errors, or an empty string when nothing was captured.
func (s *ProcessService) recentOutput() string {
	s.mu.Lock()
	path := s.consolePath
	s.mu.Unlock()

	tail, err := tailFile(path, consoleTailLines)
	if err != nil || tail == "" {
		return ""
	}
	return "\nrecent output:\n" + tail
}

// tailFile reads up to maxLines complete lines from the end of a file.
func tailFile(path string, maxLines int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	offset := info.Size() - consoleTailBytes
	if offset < 0 {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return "", err
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if offset > 0 && len(lines) > 1 {
		// Drop the line the seek cut in half
		lines = lines[1:]
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n"), nil
}

// buildEnv merges extra entries over the harness environment. Extra keys
// are appended in sorted order so later entries win deterministically.
func buildEnv(extra map[string]string) []string {
	env := os.Environ()
	if len(extra) == 0 {
		return env
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
