package config

import "time"

// Config is the top-level configuration structure for nxharness.
type Config struct {
	Artifact    ArtifactConfig  `yaml:"artifact"`
	Destination string          `yaml:"destination,omitempty"` // Directory the server bundle is unpacked into
	ForceUnpack bool            `yaml:"forceUnpack,omitempty"` // Clear the destination and re-extract on every run
	Overlays    []OverlayEntry  `yaml:"overlays,omitempty"`
	Services    []ServiceConfig `yaml:"services,omitempty"`
	Test        TestConfig      `yaml:"test"`
	History     HistoryConfig   `yaml:"history"`
	Logging     LoggingConfig   `yaml:"logging"`
}

// ArtifactConfig identifies the server test-support bundle and where to
// resolve it from.
type ArtifactConfig struct {
	Repository   string `yaml:"repository,omitempty"`   // file://, http(s)://, s3:// or dav(s):// base URL
	Name         string `yaml:"name,omitempty"`         // Artifact name, e.g. server-test-support
	Version      string `yaml:"version,omitempty"`      // Artifact version, e.g. 11.1-SNAPSHOT
	Classifier   string `yaml:"classifier,omitempty"`   // Optional classifier, e.g. tomcat
	VerifyDigest bool   `yaml:"verifyDigest,omitempty"` // Verify a digest sidecar file when one is present
	CacheDir     string `yaml:"cacheDir,omitempty"`     // Download cache (default: ~/.cache/nxharness/artifacts)
}

// OverlayEntry describes one configuration file applied into the unpacked
// tree after extraction. Sources ending in .tmpl are rendered as templates.
type OverlayEntry struct {
	Source string `yaml:"source"`
	Target string `yaml:"target,omitempty"` // Subdirectory under the destination (default: nxserver/config)
}

// ServiceConfig describes one dependent service started before the test run.
// Services are started strictly in configuration order.
type ServiceConfig struct {
	Name      string            `yaml:"name"`
	Command   string            `yaml:"command"`
	Args      []string          `yaml:"args,omitempty"`
	Dir       string            `yaml:"dir,omitempty"`     // Working directory ({{ .Destination }} is expanded)
	Env       map[string]string `yaml:"env,omitempty"`     // Extra environment entries for the process
	LogFile   string            `yaml:"logFile,omitempty"` // Followed and streamed at debug level while waiting for readiness
	Readiness ReadinessConfig   `yaml:"readiness,omitempty"`
}

// ReadinessConfig defines how a started service is probed. When both Port and
// URL are set, both probes must pass.
type ReadinessConfig struct {
	Port    int           `yaml:"port,omitempty"`    // TCP dial on localhost
	URL     string        `yaml:"url,omitempty"`     // HTTP GET expecting a 2xx response
	Timeout time.Duration `yaml:"timeout,omitempty"` // Per-service readiness timeout (default: 2m)
}

// TestConfig configures the external test-orchestration command.
type TestConfig struct {
	Command   string `yaml:"command,omitempty"`   // Invoked with no arguments (default: tox)
	ServerURL string `yaml:"serverURL,omitempty"` // Overrides SERVER_URL when non-empty
}

// HistoryConfig controls run-history persistence.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"` // SQLite database file (default: ~/.local/share/nxharness/history.db)
}

// LoggingConfig controls harness log output.
type LoggingConfig struct {
	Level   string `yaml:"level,omitempty"`   // debug|info|warn|error (default: info)
	Journal bool   `yaml:"journal,omitempty"` // Mirror records to the systemd journal
}
