package models

import (
	"errors"
	"fmt"
)

var (
	// ErrRootNotFound indicates the traversal root does not exist.
	ErrRootNotFound = errors.New("root path does not exist")
	// ErrRootNotDir indicates the traversal root is not a directory.
	ErrRootNotDir = errors.New("root path is not a directory")
	// ErrInvalidPattern indicates a glob pattern could not be parsed.
	ErrInvalidPattern = errors.New("invalid glob pattern")
	// ErrInvalidOption indicates a configuration value is out of range.
	ErrInvalidOption = errors.New("invalid option")
)

// ConfigError is the only fatal error class: the run aborts before traversal.
type ConfigError struct {
	Field string // Configuration field or flag at fault
	Value string // Offending value
	Err   error  // Usually one of the ErrXxx sentinels above
}

// NewConfigError creates a ConfigError.
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Err: err}
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config: %s %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
