package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a temporary config file with raw YAML content.
func writeTempConfig(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

// Point both resolution candidates at non-existent files so only the
// explicitly created fixtures are picked up.
func isolateConfigPaths(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	originalProject := getProjectConfigPath
	originalUser := getUserConfigPath
	t.Cleanup(func() {
		getProjectConfigPath = originalProject
		getUserConfigPath = originalUser
	})

	getProjectConfigPath = func() (string, error) {
		return filepath.Join(tempDir, "no-project.yaml"), nil
	}
	getUserConfigPath = func() (string, error) {
		return filepath.Join(tempDir, "no-user.yaml"), nil
	}
	return tempDir
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	isolateConfigPaths(t)

	loaded, err := LoadConfig("")
	require.NoError(t, err)

	defaults := GetDefaultConfig()
	assert.Equal(t, defaults.Test.Command, loaded.Test.Command)
	assert.Equal(t, defaults.Destination, loaded.Destination)
	assert.True(t, loaded.History.Enabled)
	assert.True(t, loaded.Artifact.VerifyDigest)
}

func TestLoadConfig_ProjectFile(t *testing.T) {
	tempDir := isolateConfigPaths(t)

	path := writeTempConfig(t, tempDir, "nxharness.yaml", `
artifact:
  repository: file:///opt/artifacts
  name: server-test-support
  version: "11.1"
destination: /tmp/ftest-server
`)
	getProjectConfigPath = func() (string, error) { return path, nil }

	loaded, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "file:///opt/artifacts", loaded.Artifact.Repository)
	assert.Equal(t, "server-test-support", loaded.Artifact.Name)
	assert.Equal(t, "/tmp/ftest-server", loaded.Destination)
	// Absent fields keep their defaults.
	assert.Equal(t, DefaultTestCommand, loaded.Test.Command)
	assert.True(t, loaded.History.Enabled)
}

func TestLoadConfig_UserFileFallback(t *testing.T) {
	tempDir := isolateConfigPaths(t)

	path := writeTempConfig(t, tempDir, "config.yaml", `
test:
  command: pytest
`)
	getUserConfigPath = func() (string, error) { return path, nil }

	loaded, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "pytest", loaded.Test.Command)
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	tempDir := isolateConfigPaths(t)

	path := writeTempConfig(t, tempDir, "custom.yaml", `
destination: /srv/bundle
history:
  enabled: false
`)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/bundle", loaded.Destination)
	assert.False(t, loaded.History.Enabled)
}

func TestLoadConfig_ExplicitPathMissing(t *testing.T) {
	tempDir := isolateConfigPaths(t)

	_, err := LoadConfig(filepath.Join(tempDir, "does-not-exist.yaml"))
	require.Error(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	tempDir := isolateConfigPaths(t)

	path := writeTempConfig(t, tempDir, "broken.yaml", "destination: [unclosed\n")

	_, err := LoadConfig(path)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, path, verr.Path)
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	tempDir := isolateConfigPaths(t)
	t.Setenv("FTEST_REPO_HOST", "artifacts.example.org")
	t.Setenv("FTEST_DB_PORT", "5433")

	path := writeTempConfig(t, tempDir, "env.yaml", `
artifact:
  repository: https://${FTEST_REPO_HOST}/releases
  name: bundle
  version: "1.0"
services:
  - name: database
    command: pg_ctl
    args: ["-o", "-p ${FTEST_DB_PORT}"]
    env:
      PGPORT: ${FTEST_DB_PORT}
`)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://artifacts.example.org/releases", loaded.Artifact.Repository)
	require.Len(t, loaded.Services, 1)
	assert.Equal(t, "-p 5433", loaded.Services[0].Args[1])
	assert.Equal(t, "5433", loaded.Services[0].Env["PGPORT"])
}

func TestLoadConfig_DurationParsing(t *testing.T) {
	tempDir := isolateConfigPaths(t)

	path := writeTempConfig(t, tempDir, "durations.yaml", `
services:
  - name: appserver
    command: ./bin/nxserver
    readiness:
      url: http://localhost:8080/nuxeo/runningstatus
      timeout: 90s
`)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, loaded.Services, 1)
	assert.Equal(t, 90*time.Second, loaded.Services[0].Readiness.Timeout)
}
