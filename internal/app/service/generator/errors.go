package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every configuration problem reported
	// before generation starts.
	ErrInvalidConfig = errors.New("invalid generator configuration")
	// ErrInvariantViolation means a generated record broke a data-model
	// invariant. It indicates a generator defect and aborts the run.
	ErrInvariantViolation = errors.New("generation invariant violated")
)

type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

func configErr(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

type InvariantError struct {
	Entity string
	ID     string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s %s: %s", ErrInvariantViolation, e.Entity, e.ID, e.Reason)
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }
