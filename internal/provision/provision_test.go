package provision

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nxharness/internal/archive"
	"nxharness/internal/artifact"
	"nxharness/internal/config"
	"nxharness/internal/overlay"
	"nxharness/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	path  string
	err   error
	calls int
}

func (r *fakeResolver) Resolve(ctx context.Context, coord artifact.Coordinate) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return r.path, nil
}

type fakeServices struct {
	err     error
	started int
}

func (s *fakeServices) Start(ctx context.Context) error {
	s.started++
	return s.err
}

type recordingObserver struct {
	started  []string
	finished []string
}

func (o *recordingObserver) StepStarted(step string) {
	o.started = append(o.started, step)
}

func (o *recordingObserver) StepFinished(step string, d time.Duration, err error) {
	o.finished = append(o.finished, step)
}

// writeBundle places a server bundle zip into dir under the name the file
// repository expects for the given coordinate.
func writeBundle(t *testing.T, dir string, coord artifact.Coordinate) string {
	t.Helper()

	path := filepath.Join(dir, coord.Filename())
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	entries := map[string]string{
		"nxserver/config/default.properties": "launcher.start.max.wait=300\n",
		"bin/nxserver":                       "#!/bin/sh\nexec java -jar server.jar\n",
	}
	for name, content := range entries {
		ew, err := w.Create(name)
		require.NoError(t, err)
		_, err = ew.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func testCoordinate() artifact.Coordinate {
	return artifact.Coordinate{Name: "server-test-support", Version: "11.1"}
}

// testConfig wires a file repository, a temp destination and one overlay.
func testConfig(t *testing.T, dir string) config.Config {
	t.Helper()

	repoDir := filepath.Join(dir, "repo")
	require.NoError(t, os.MkdirAll(repoDir, 0755))
	writeBundle(t, repoDir, testCoordinate())

	srcDir := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(srcDir, 0755))
	source := filepath.Join(srcDir, "cors-config.xml")
	require.NoError(t, os.WriteFile(source, []byte("<cors/>\n"), 0644))

	return config.Config{
		Artifact: config.ArtifactConfig{
			Repository: "file://" + repoDir,
			Name:       "server-test-support",
			Version:    "11.1",
		},
		Destination: filepath.Join(dir, "target", "server"),
		Overlays:    []config.OverlayEntry{{Source: source}},
	}
}

func newTestProvisioner(t *testing.T, cfg config.Config, svc ServiceProvisioner, obs Observer) *Provisioner {
	t.Helper()
	resolver, err := artifact.NewResolver(cfg.Artifact)
	require.NoError(t, err)
	return New(cfg, resolver, svc, obs)
}

func TestProvision_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	svc := &fakeServices{}
	obs := &recordingObserver{}

	result, err := newTestProvisioner(t, cfg, svc, obs).Provision(context.Background())
	require.NoError(t, err)

	// Bundle extracted and overlay landed in the default target.
	content, err := os.ReadFile(filepath.Join(cfg.Destination, "nxserver", "config", "cors-config.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<cors/>\n", string(content))

	_, err = os.Stat(filepath.Join(cfg.Destination, "bin", "nxserver"))
	assert.NoError(t, err)

	assert.Equal(t, 1, svc.started)
	assert.NotEmpty(t, result.ArchivePath)
	assert.Equal(t, cfg.Destination, result.Destination)

	want := []string{StepAcquire, StepUnpack, StepOverlay, StepServices}
	assert.Equal(t, want, obs.started)
	assert.Equal(t, want, obs.finished)
	require.Len(t, result.Steps, 4)
	for i, step := range result.Steps {
		assert.Equal(t, want[i], step.Name)
	}
}

func TestProvision_ResolutionAbortsBeforeDestination(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Artifact.Version = "99.9" // not in the repository
	svc := &fakeServices{}

	result, err := newTestProvisioner(t, cfg, svc, nil).Provision(context.Background())
	require.Error(t, err)

	var rerr *artifact.ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "server-test-support:99.9", rerr.Coordinate.String())

	// The destination must not exist after a resolution failure.
	_, statErr := os.Stat(cfg.Destination)
	assert.True(t, os.IsNotExist(statErr))
	assert.Zero(t, svc.started)

	require.Len(t, result.Steps, 1)
	assert.Equal(t, StepAcquire, result.Steps[0].Name)
}

func TestProvision_UnpackFailureAborts(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	corrupt := filepath.Join(dir, "corrupt.zip")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a zip"), 0644))
	resolver := &fakeResolver{path: corrupt}
	svc := &fakeServices{}
	obs := &recordingObserver{}

	_, err := New(cfg, resolver, svc, obs).Provision(context.Background())
	require.Error(t, err)

	var uerr *archive.UnpackError
	assert.ErrorAs(t, err, &uerr)
	assert.Zero(t, svc.started)
	assert.Equal(t, []string{StepAcquire, StepUnpack}, obs.finished)
}

func TestProvision_OverlayFailureAborts(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Overlays = []config.OverlayEntry{{Source: filepath.Join(dir, "missing.xml")}}
	svc := &fakeServices{}

	_, err := newTestProvisioner(t, cfg, svc, nil).Provision(context.Background())
	require.Error(t, err)

	var oerr *overlay.OverlayError
	assert.ErrorAs(t, err, &oerr)
	assert.Zero(t, svc.started)
}

func TestProvision_ServiceErrorTyped(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	svc := &fakeServices{err: errors.New("port already bound")}

	_, err := newTestProvisioner(t, cfg, svc, nil).Provision(context.Background())
	require.Error(t, err)

	var serr *services.ServiceStartError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Error(), "port already bound")
}

func TestProvision_ServiceErrorPreserved(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	orig := &services.ServiceStartError{Service: "postgres", Err: errors.New("exited early")}
	svc := &fakeServices{err: orig}

	_, err := newTestProvisioner(t, cfg, svc, nil).Provision(context.Background())
	require.Error(t, err)

	var serr *services.ServiceStartError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "postgres", serr.Service)
}

func TestProvision_OverlayRunsWhenUnpackSkipped(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	p := newTestProvisioner(t, cfg, &fakeServices{}, nil)
	_, err := p.Provision(context.Background())
	require.NoError(t, err)

	// Change the overlay source; a second run must refresh the target even
	// though the populated destination suppresses re-extraction.
	require.NoError(t, os.WriteFile(cfg.Overlays[0].Source, []byte("<cors updated/>\n"), 0644))
	_, err = p.Provision(context.Background())
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(cfg.Destination, "nxserver", "config", "cors-config.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<cors updated/>\n", string(content))
}

func TestProvision_NilServicesIsNoop(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	_, err := newTestProvisioner(t, cfg, nil, nil).Provision(context.Background())
	assert.NoError(t, err)
}

func TestProvision_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	svc := &fakeServices{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := newTestProvisioner(t, cfg, svc, nil).Provision(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, result.Steps)
	assert.Zero(t, svc.started)
}

func TestProvisioner_Coordinate(t *testing.T) {
	cfg := config.Config{Artifact: config.ArtifactConfig{Name: "server-test-support", Version: "11.1", Classifier: "tomcat"}}
	p := New(cfg, &fakeResolver{}, nil, nil)
	assert.Equal(t, "server-test-support:11.1:tomcat", p.Coordinate().String())
}
