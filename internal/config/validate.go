package config

// ValidateForProvision checks the fields the provisioning sequence needs.
func (c *Config) ValidateForProvision() error {
	verr := &ValidationError{}

	if c.Artifact.Repository == "" {
		verr.Add("artifact.repository is required")
	}
	if c.Artifact.Name == "" {
		verr.Add("artifact.name is required")
	}
	if c.Artifact.Version == "" {
		verr.Add("artifact.version is required")
	}
	if c.Destination == "" {
		verr.Add("destination is required")
	}
	for i, overlay := range c.Overlays {
		if overlay.Source == "" {
			verr.Add("overlays[%d].source is required", i)
		}
	}
	for i, svc := range c.Services {
		if svc.Name == "" {
			verr.Add("services[%d].name is required", i)
		}
		if svc.Command == "" {
			verr.Add("services[%d] (%s): command is required", i, svc.Name)
		}
		if svc.Readiness.Timeout < 0 {
			verr.Add("services[%d] (%s): readiness.timeout must not be negative", i, svc.Name)
		}
	}

	if verr.HasProblems() {
		return verr
	}
	return nil
}

// ValidateForTest checks the fields the test invocation needs.
func (c *Config) ValidateForTest() error {
	if c.Test.Command == "" {
		return &ValidationError{Problems: []string{"test.command is required"}}
	}
	return nil
}
