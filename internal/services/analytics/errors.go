package analytics

import "fmt"

// DataError reports an unusable input series (e.g. no close-equivalent
// field). It is fatal for the request, unlike insufficient history, which
// yields an undersized result instead of an error.
type DataError struct {
	Op  string
	Msg string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error in %s: %s", e.Op, e.Msg)
}

// NewDataError creates a DataError.
func NewDataError(op, msg string) *DataError {
	return &DataError{Op: op, Msg: msg}
}

// ConfigError reports an invalid policy configuration, rejected at
// construction and never silently defaulted.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Msg)
}

// NewConfigError creates a ConfigError.
func NewConfigError(field, msg string) *ConfigError {
	return &ConfigError{Field: field, Msg: msg}
}
