package testhub

import (
	"errors"
	"fmt"
)

// ConfigError represents a configuration or argument error. It is fatal,
// reported to stderr before any test runs, and never produces a report.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(err error) *ConfigError {
	return &ConfigError{Err: err}
}

// IsConfigError checks if the error is or wraps a ConfigError
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return err != nil && errors.As(err, &cfgErr)
}

// TestFailureError signals that the run completed but at least one test
// failed; the process exits non-zero without treating it as a crash.
type TestFailureError struct {
	Failed int
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("test failure: %d test(s) failed", e.Failed)
}

// NewTestFailureError creates a new TestFailureError
func NewTestFailureError(failed int) *TestFailureError {
	return &TestFailureError{Failed: failed}
}

// IsTestFailureError checks if the error is or wraps a TestFailureError
func IsTestFailureError(err error) bool {
	var testErr *TestFailureError
	return err != nil && errors.As(err, &testErr)
}
