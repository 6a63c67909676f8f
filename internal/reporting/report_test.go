package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nxharness/internal/provision"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	rep := Report{
		RunID:       "run-7",
		StartedAt:   time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Duration:    2 * time.Minute,
		Coordinate:  "server-test-support:11.1",
		Destination: "/tmp/target/server",
		ServerURL:   "http://localhost:8080",
		Command:     "tox",
		Steps: []provision.StepTiming{
			{Name: provision.StepAcquire, Duration: 3 * time.Second},
			{Name: provision.StepUnpack, Duration: 9 * time.Second},
		},
		ExitCode: 0,
		Verdict:  "passed",
	}

	path, err := SaveReport(dir, rep)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filepath.Base(path), "nxharness-report-"))
	assert.True(t, strings.HasSuffix(path, ".json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "run-7", got.RunID)
	assert.Equal(t, "server-test-support:11.1", got.Coordinate)
	assert.Equal(t, "passed", got.Verdict)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, provision.StepUnpack, got.Steps[1].Name)
	assert.Equal(t, 9*time.Second, got.Steps[1].Duration)
}

func TestSaveReport_ErrorField(t *testing.T) {
	dir := t.TempDir()

	rep := Report{
		RunID:    "run-8",
		ExitCode: 6,
		Verdict:  "error",
		Error:    "starting service postgres: readiness probe timed out",
	}

	path, err := SaveReport(dir, rep)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "readiness probe timed out")
}

func TestSaveReport_UnwritableDir(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	parent := t.TempDir()
	require.NoError(t, os.Chmod(parent, 0555))
	defer os.Chmod(parent, 0755)

	_, err := SaveReport(filepath.Join(parent, "reports"), Report{RunID: "run-9"})
	assert.Error(t, err)
}
