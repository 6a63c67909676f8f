package services

import "context"

// ServiceState represents the lifecycle state of a service.
type ServiceState string

const (
	StateUnknown  ServiceState = "unknown"
	StateStarting ServiceState = "starting"
	StateRunning  ServiceState = "running"
	StateStopping ServiceState = "stopping"
	StateStopped  ServiceState = "stopped"
	StateFailed   ServiceState = "failed"
)

// Service is the core interface all dependent services implement.
type Service interface {
	// Lifecycle management
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// State management
	GetState() ServiceState
	GetLastError() error

	// Service metadata
	GetName() string

	// State change notifications
	// The service calls this callback when its state changes
	SetStateChangeCallback(callback StateChangeCallback)
}

// StateChangeCallback is called when a service's state changes
type StateChangeCallback func(name string, oldState, newState ServiceState, err error)
