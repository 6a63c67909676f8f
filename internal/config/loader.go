package config

import (
	"errors"
	"os"
	"path/filepath"

	"nxharness/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir   = ".config/nxharness"
	configFileName  = "config.yaml"
	projectFileName = "nxharness.yaml"
)

// Indirection points so tests can redirect path resolution.
var (
	osUserHomeDir = os.UserHomeDir

	getProjectConfigPath = func() (string, error) {
		return projectFileName, nil
	}

	getUserConfigPath = func() (string, error) {
		homeDir, err := osUserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, userConfigDir, configFileName), nil
	}
)

// DefaultCacheDir returns the artifact download cache directory used when
// artifact.cacheDir is not configured.
func DefaultCacheDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".cache", "nxharness", "artifacts"), nil
}

// DefaultHistoryPath returns the run-history database location used when
// history.path is not configured.
func DefaultHistoryPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "share", "nxharness", "history.db"), nil
}

// LoadConfig loads the harness configuration. An explicit configPath must
// exist and parse; otherwise nxharness.yaml in the working directory is
// tried, then the user config file, and finally the built-in defaults.
func LoadConfig(configPath string) (Config, error) {
	config := GetDefaultConfig()

	if configPath != "" {
		if err := loadFile(configPath, &config); err != nil {
			return Config{}, err
		}
		logging.Info("config", "Loaded configuration from %s", configPath)
		return config, nil
	}

	for _, candidate := range []func() (string, error){getProjectConfigPath, getUserConfigPath} {
		path, err := candidate()
		if err != nil {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := loadFile(path, &config); err != nil {
			return Config{}, err
		}
		logging.Info("config", "Loaded configuration from %s", path)
		return config, nil
	}

	logging.Info("config", "No configuration file found, using defaults")
	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ValidationError{Path: path, Problems: []string{err.Error()}}
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return &ValidationError{Path: path, Problems: []string{err.Error()}}
	}
	config.expandEnv()
	return nil
}

// expandEnv substitutes ${VAR} references in the fields that commonly carry
// credentials or host-specific paths.
func (c *Config) expandEnv() {
	c.Artifact.Repository = os.ExpandEnv(c.Artifact.Repository)
	c.Artifact.CacheDir = os.ExpandEnv(c.Artifact.CacheDir)
	c.History.Path = os.ExpandEnv(c.History.Path)
	for i := range c.Services {
		svc := &c.Services[i]
		svc.Command = os.ExpandEnv(svc.Command)
		for j := range svc.Args {
			svc.Args[j] = os.ExpandEnv(svc.Args[j])
		}
		for k, v := range svc.Env {
			svc.Env[k] = os.ExpandEnv(v)
		}
	}
}
