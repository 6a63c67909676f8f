package config

import "time"

const (
	// DefaultTestCommand is the external test-orchestration command invoked
	// when none is configured.
	DefaultTestCommand = "tox"

	// DefaultDestination is the directory the server bundle is unpacked into
	// when none is configured.
	DefaultDestination = "./target/server"

	// DefaultReadinessTimeout bounds how long a single service may take to
	// become ready.
	DefaultReadinessTimeout = 2 * time.Minute
)

// GetDefaultConfig returns the built-in default configuration.
func GetDefaultConfig() Config {
	return Config{
		Artifact: ArtifactConfig{
			VerifyDigest: true,
		},
		Destination: DefaultDestination,
		Test: TestConfig{
			Command: DefaultTestCommand,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
