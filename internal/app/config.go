package app

// Config holds the flag-level settings shared by the run, provision and
// test commands. Command handlers populate it from their cobra flags; the
// bootstrap folds it into the loaded harness configuration.
type Config struct {
	// Output settings
	Debug  bool
	Quiet  bool
	Silent bool

	// Custom configuration file (optional)
	ConfigPath string

	// Provisioning overrides
	Destination  string
	ForceUnpack  bool
	SkipServices bool

	// Test invocation overrides
	ServerURL string

	// History recording
	NoHistory bool
}

// NewConfig creates an application configuration carrying the persistent
// flag values.
func NewConfig(debug, quiet, silent bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		Quiet:      quiet,
		Silent:     silent,
		ConfigPath: configPath,
	}
}
