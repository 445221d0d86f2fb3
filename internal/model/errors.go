package model

import (
	"fmt"
	"strings"
)

// ConfigurationError reports missing or invalid settings
type ConfigurationError struct {
	Missing []string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	switch {
	case len(e.Missing) > 0 && e.Reason != "":
		return fmt.Sprintf("configuration: %s (missing %s)", e.Reason, strings.Join(e.Missing, ", "))
	case len(e.Missing) > 0:
		return "configuration: missing " + strings.Join(e.Missing, ", ")
	default:
		return "configuration: " + e.Reason
	}
}

// ValidationError reports a request that cannot be served as given
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// DataAccessError wraps a failure raised by the database layer
type DataAccessError struct {
	SQLState string // "UNKNOWN" when the driver gives none
	Number   int32
	Err      error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("database error SQLSTATE-%s: %v", e.SQLState, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// MappingError reports a report field missing while preparing log rows
type MappingError struct {
	Field string
	Store string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("mapping: column %q (store %q) not found", e.Field, e.Store)
}

// ResourceLockError reports a file still locked after the retry budget
type ResourceLockError struct {
	Path     string
	Attempts int
}

func (e *ResourceLockError) Error() string {
	return fmt.Sprintf("%s is locked by another process after %d attempts", e.Path, e.Attempts)
}
