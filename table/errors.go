package table

import (
	"errors"
	"strings"
)

// ErrInvalidDefinition indicates a table definition error.
var ErrInvalidDefinition = errors.New("sqla: invalid table definition")

// DefinitionError represents a table definition error.
type DefinitionError struct {
	Table   string // Table name
	Column  string // Column name (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	var b strings.Builder
	b.WriteString("sqla: definition error")
	if e.Table != "" {
		b.WriteString(" on table ")
		b.WriteString(e.Table)
	}
	if e.Column != "" {
		b.WriteString(" column ")
		b.WriteString(e.Column)
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
func (e *DefinitionError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for DefinitionError.
func (e *DefinitionError) Is(target error) bool {
	return target == ErrInvalidDefinition
}

// NewDefinitionError creates a new DefinitionError.
func NewDefinitionError(table, column, message string, cause error) *DefinitionError {
	return &DefinitionError{
		Table:   table,
		Column:  column,
		Message: message,
		Cause:   cause,
	}
}

// IsDefinitionError returns true if the error is a DefinitionError.
func IsDefinitionError(err error) bool {
	var e *DefinitionError
	return errors.As(err, &e)
}
