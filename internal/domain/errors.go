package domain

import "fmt"

// ConfigError indicates the configuration file is missing or malformed.
// Fatal at startup; nothing else in the taxonomy is.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// UnsupportedFormatError indicates a source extension absent from the
// dispatch table.
type UnsupportedFormatError struct {
	Message string
}

func (e *UnsupportedFormatError) Error() string { return e.Message }

// IngestionError indicates the engine rejected the source content.
type IngestionError struct {
	Message string
}

func (e *IngestionError) Error() string { return e.Message }

// NotFoundError indicates a referenced column, dataset, or table was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrConfig creates a ConfigError with a formatted message.
func ErrConfig(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnsupportedFormat creates an UnsupportedFormatError with a formatted message.
func ErrUnsupportedFormat(format string, args ...any) *UnsupportedFormatError {
	return &UnsupportedFormatError{Message: fmt.Sprintf(format, args...)}
}

// ErrIngestion creates an IngestionError with a formatted message.
func ErrIngestion(format string, args ...any) *IngestionError {
	return &IngestionError{Message: fmt.Sprintf(format, args...)}
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
