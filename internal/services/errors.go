package services

import "fmt"

// ServiceStartError indicates a dependent service failed to start or did not
// become ready. It aborts provisioning; services started earlier are left
// running.
type ServiceStartError struct {
	Service string
	Err     error
}

func (e *ServiceStartError) Error() string {
	return fmt.Sprintf("starting service %s: %v", e.Service, e.Err)
}

func (e *ServiceStartError) Unwrap() error {
	return e.Err
}
