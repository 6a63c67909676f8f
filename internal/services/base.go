package services

import (
	"sync"
)

// BaseService provides a base implementation of the Service interface
// that other services can embed to avoid reimplementing common functionality
type BaseService struct {
	mu            sync.RWMutex
	name          string
	state         ServiceState
	lastError     error
	stateChangeCb StateChangeCallback
}

// NewBaseService creates a new base service
func NewBaseService(name string) *BaseService {
	return &BaseService{
		name:  name,
		state: StateUnknown,
	}
}

// GetName returns the service name
func (b *BaseService) GetName() string {
	return b.name
}

// GetState returns the current state
func (b *BaseService) GetState() ServiceState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// GetLastError returns the last error
func (b *BaseService) GetLastError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastError
}

// SetStateChangeCallback sets the state change callback
func (b *BaseService) SetStateChangeCallback(callback StateChangeCallback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stateChangeCb = callback
}

// UpdateState updates the service state and notifies the callback
func (b *BaseService) UpdateState(newState ServiceState, err error) {
	b.mu.Lock()
	oldState := b.state
	b.state = newState
	b.lastError = err
	callback := b.stateChangeCb
	b.mu.Unlock()

	// Call the callback outside of the lock to avoid deadlocks
	if callback != nil && oldState != newState {
		callback(b.name, oldState, newState, err)
	}
}
