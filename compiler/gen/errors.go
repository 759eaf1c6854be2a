package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("sqla: missing configuration")
	// ErrGenerationFailed indicates a generation failure.
	ErrGenerationFailed = errors.New("sqla: generation failed")
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("sqla: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("sqla: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// GenerateError represents a failure producing one output file.
type GenerateError struct {
	File    string
	Table   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerateError) Error() string {
	var b strings.Builder
	b.WriteString("sqla: generate")
	if e.File != "" {
		b.WriteString(" ")
		b.WriteString(e.File)
	}
	if e.Table != "" {
		b.WriteString(" for table ")
		b.WriteString(e.Table)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerateError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerateError.
func (e *GenerateError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerateError creates a new GenerateError.
func NewGenerateError(file, table, message string, cause error) *GenerateError {
	return &GenerateError{
		File:    file,
		Table:   table,
		Message: message,
		Cause:   cause,
	}
}
