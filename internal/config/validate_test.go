package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProvisionConfig() Config {
	cfg := GetDefaultConfig()
	cfg.Artifact.Repository = "file:///opt/artifacts"
	cfg.Artifact.Name = "server-test-support"
	cfg.Artifact.Version = "11.1"
	cfg.Overlays = []OverlayEntry{{Source: "ftest/cors-config.xml"}}
	cfg.Services = []ServiceConfig{{Name: "database", Command: "pg_ctl"}}
	return cfg
}

func TestValidateForProvision_Valid(t *testing.T) {
	cfg := validProvisionConfig()
	assert.NoError(t, cfg.ValidateForProvision())
}

func TestValidateForProvision_MissingFields(t *testing.T) {
	cfg := Config{}

	err := cfg.ValidateForProvision()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Problems, "artifact.repository is required")
	assert.Contains(t, verr.Problems, "artifact.name is required")
	assert.Contains(t, verr.Problems, "artifact.version is required")
	assert.Contains(t, verr.Problems, "destination is required")
}

func TestValidateForProvision_CollectsAllProblems(t *testing.T) {
	cfg := validProvisionConfig()
	cfg.Overlays = append(cfg.Overlays, OverlayEntry{})
	cfg.Services = append(cfg.Services, ServiceConfig{Name: "appserver"})

	err := cfg.ValidateForProvision()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 2)
	assert.Contains(t, verr.Problems, "overlays[1].source is required")
	assert.Contains(t, verr.Problems, "services[1] (appserver): command is required")
}

func TestValidateForTest(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.NoError(t, cfg.ValidateForTest())

	cfg.Test.Command = ""
	err := cfg.ValidateForTest()
	require.Error(t, err)

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
