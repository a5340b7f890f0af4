package p2p

import (
	"errors"
	"fmt"
)

var (
	// ErrHostNotRunning host has not been started or was stopped
	ErrHostNotRunning = errors.New("p2p host is not running")

	// ErrHostAlreadyRunning Start was called twice
	ErrHostAlreadyRunning = errors.New("p2p host is already running")

	// ErrInvalidConfig configuration failed validation
	ErrInvalidConfig = errors.New("invalid p2p configuration")

	// ErrDHTNotEnabled rendezvous discovery requires the DHT
	ErrDHTNotEnabled = errors.New("DHT is not enabled")
)

// ConfigError reports a single invalid configuration field.
type ConfigError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// NewConfigError creates a config error
func NewConfigError(field string, value interface{}, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// DiscoveryError wraps a failure in one discovery namespace.
type DiscoveryError struct {
	Namespace string
	Cause     error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery error in namespace '%s': %v", e.Namespace, e.Cause)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Cause
}

// NewDiscoveryError creates a discovery error
func NewDiscoveryError(namespace string, cause error) *DiscoveryError {
	return &DiscoveryError{
		Namespace: namespace,
		Cause:     cause,
	}
}
