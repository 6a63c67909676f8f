package services

import (
	"context"
	"errors"
	"testing"

	"nxharness/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedService records lifecycle calls into a shared event log.
type scriptedService struct {
	*BaseService
	startErr error
	events   *[]string
}

func newScriptedService(name string, startErr error, events *[]string) *scriptedService {
	return &scriptedService{
		BaseService: NewBaseService(name),
		startErr:    startErr,
		events:      events,
	}
}

func (s *scriptedService) Start(ctx context.Context) error {
	*s.events = append(*s.events, "start-"+s.GetName())
	if s.startErr != nil {
		s.UpdateState(StateFailed, s.startErr)
		return s.startErr
	}
	s.UpdateState(StateRunning, nil)
	return nil
}

func (s *scriptedService) Stop(ctx context.Context) error {
	*s.events = append(*s.events, "stop-"+s.GetName())
	s.UpdateState(StateStopped, nil)
	return nil
}

func TestOrchestratorStartsInConfigurationOrder(t *testing.T) {
	var events []string
	o := &Orchestrator{services: []Service{
		newScriptedService("database", nil, &events),
		newScriptedService("appserver", nil, &events),
	}}

	require.NoError(t, o.Start(context.Background()))
	assert.Equal(t, []string{"start-database", "start-appserver"}, events)
}

func TestOrchestratorAbortsAtFirstFailure(t *testing.T) {
	var events []string
	o := &Orchestrator{services: []Service{
		newScriptedService("database", nil, &events),
		newScriptedService("appserver", errors.New("readiness probe timed out"), &events),
		newScriptedService("worker", nil, &events),
	}}

	err := o.Start(context.Background())
	require.Error(t, err)

	var startErr *ServiceStartError
	require.ErrorAs(t, err, &startErr)
	assert.Equal(t, "appserver", startErr.Service)

	// The failing service aborts the sequence; later services never start
	// and earlier ones are left running.
	assert.Equal(t, []string{"start-database", "start-appserver"}, events)
	assert.Equal(t, StateRunning, o.services[0].GetState())
}

func TestOrchestratorStopsInReverseOrder(t *testing.T) {
	var events []string
	o := &Orchestrator{services: []Service{
		newScriptedService("database", nil, &events),
		newScriptedService("appserver", nil, &events),
	}}

	require.NoError(t, o.Start(context.Background()))
	events = events[:0]

	require.NoError(t, o.Stop(context.Background()))
	assert.Equal(t, []string{"stop-appserver", "stop-database"}, events)
}

func TestNewOrchestratorExpandsPlaceholders(t *testing.T) {
	cfgs := []config.ServiceConfig{
		{
			Name:    "appserver",
			Command: "{{ .Destination }}/bin/nxserver",
			Args:    []string{"console", "--home={{ .Destination }}"},
			Dir:     "{{ .Destination }}",
			Env:     map[string]string{"NUXEO_HOME": "{{ .Destination }}"},
			LogFile: "log/server.log",
		},
	}

	o, err := NewOrchestrator(cfgs, "/srv/target/server")
	require.NoError(t, err)
	require.Len(t, o.Services(), 1)

	svc, ok := o.Services()[0].(*ProcessService)
	require.True(t, ok)

	assert.Equal(t, "/srv/target/server/bin/nxserver", svc.cfg.Command)
	assert.Equal(t, []string{"console", "--home=/srv/target/server"}, svc.cfg.Args)
	assert.Equal(t, "/srv/target/server", svc.cfg.Dir)
	assert.Equal(t, "/srv/target/server", svc.cfg.Env["NUXEO_HOME"])
	assert.Equal(t, "log/server.log", svc.cfg.LogFile)
}

func TestNewOrchestratorRejectsUnknownPlaceholder(t *testing.T) {
	cfgs := []config.ServiceConfig{
		{Name: "database", Command: "{{ .DataDir }}/start.sh"},
	}

	_, err := NewOrchestrator(cfgs, "/srv/target/server")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
}
