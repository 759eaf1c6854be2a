package sqla

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for statement composition.
var (
	// ErrDomainKindUnsupported is returned when a value-shape descriptor has
	// no domain constructor.
	ErrDomainKindUnsupported = errors.New("sqla: domain kind unsupported")

	// ErrUnresolvedReference is returned when a reference placeholder could
	// not be bound to a real column before it was rendered.
	ErrUnresolvedReference = errors.New("sqla: unresolved reference")

	// ErrSchemaViolation is returned when a record does not satisfy the
	// closed shape of a domain collection.
	ErrSchemaViolation = errors.New("sqla: schema violation")

	// ErrDuplicateIdentity is returned when two members of a collection
	// share an identity.
	ErrDuplicateIdentity = errors.New("sqla: duplicate identity")
)

// DomainKindUnsupportedError represents a declaration whose core kind has no
// domain constructor.
type DomainKindUnsupportedError struct {
	Identity string // Collection key of the declaration, if known
	Kind     string // Kind name of the unwrapped value shape
}

// Error returns the error string.
func (e *DomainKindUnsupportedError) Error() string {
	if e.Identity != "" {
		return fmt.Sprintf("sqla: domain kind %q unsupported for %q", e.Kind, e.Identity)
	}
	return fmt.Sprintf("sqla: domain kind %q unsupported", e.Kind)
}

// Is reports whether the target error matches DomainKindUnsupportedError.
func (e *DomainKindUnsupportedError) Is(err error) bool {
	return err == ErrDomainKindUnsupported
}

// NewDomainKindUnsupportedError returns a new DomainKindUnsupportedError.
func NewDomainKindUnsupportedError(identity, kind string) *DomainKindUnsupportedError {
	return &DomainKindUnsupportedError{Identity: identity, Kind: kind}
}

// IsDomainKindUnsupported returns true if the error is a DomainKindUnsupportedError.
func IsDomainKindUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var e *DomainKindUnsupportedError
	return errors.As(err, &e) || errors.Is(err, ErrDomainKindUnsupported)
}

// UnresolvedReferenceError represents a foreign key whose target could not be
// found. It is fatal: composition or rendering stops.
type UnresolvedReferenceError struct {
	Table         string // Table owning the foreign key column
	Column        string // Foreign key column
	ForeignTable  string // Referenced table, empty for unbound self references
	ForeignColumn string // Referenced column
}

// Error returns the error string.
func (e *UnresolvedReferenceError) Error() string {
	var sb strings.Builder
	sb.WriteString("sqla: unresolved reference")
	if e.Table != "" || e.Column != "" {
		fmt.Fprintf(&sb, " from %s.%s", e.Table, e.Column)
	}
	if e.ForeignTable != "" {
		fmt.Fprintf(&sb, " to %s.%s", e.ForeignTable, e.ForeignColumn)
	} else if e.ForeignColumn != "" {
		fmt.Fprintf(&sb, " to column %s", e.ForeignColumn)
	}
	return sb.String()
}

// Is reports whether the target error matches UnresolvedReferenceError.
func (e *UnresolvedReferenceError) Is(err error) bool {
	return err == ErrUnresolvedReference
}

// NewUnresolvedReferenceError returns a new UnresolvedReferenceError.
func NewUnresolvedReferenceError(table, column, foreignTable, foreignColumn string) *UnresolvedReferenceError {
	return &UnresolvedReferenceError{Table: table, Column: column, ForeignTable: foreignTable, ForeignColumn: foreignColumn}
}

// IsUnresolvedReference returns true if the error is an UnresolvedReferenceError.
func IsUnresolvedReference(err error) bool {
	if err == nil {
		return false
	}
	var e *UnresolvedReferenceError
	return errors.As(err, &e) || errors.Is(err, ErrUnresolvedReference)
}

// SchemaViolation represents a single field of a record that failed
// validation against a closed shape.
type SchemaViolation struct {
	Field  string // Record key, empty when the record as a whole is invalid
	Reason string
}

// Error returns the error string.
func (e *SchemaViolation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("sqla: schema violation: %s", e.Reason)
	}
	return fmt.Sprintf("sqla: schema violation on %q: %s", e.Field, e.Reason)
}

// Is reports whether the target error matches SchemaViolation.
func (e *SchemaViolation) Is(err error) bool {
	return err == ErrSchemaViolation
}

// NewSchemaViolation returns a new SchemaViolation.
func NewSchemaViolation(field, reason string) *SchemaViolation {
	return &SchemaViolation{Field: field, Reason: reason}
}

// IsSchemaViolation returns true if the error is, or aggregates, a SchemaViolation.
func IsSchemaViolation(err error) bool {
	if err == nil {
		return false
	}
	var e *SchemaViolation
	return errors.As(err, &e) || errors.Is(err, ErrSchemaViolation)
}

// SchemaViolations returns every SchemaViolation found in err, including
// those collected in an AggregateError.
func SchemaViolations(err error) []*SchemaViolation {
	if err == nil {
		return nil
	}
	var agg *AggregateError
	if errors.As(err, &agg) {
		var out []*SchemaViolation
		for _, e := range agg.Errors {
			out = append(out, SchemaViolations(e)...)
		}
		return out
	}
	var v *SchemaViolation
	if errors.As(err, &v) {
		return []*SchemaViolation{v}
	}
	return nil
}

// DuplicateIdentityError represents a collection declaring the same identity twice.
type DuplicateIdentityError struct {
	Collection string
	Identity   string
}

// Error returns the error string.
func (e *DuplicateIdentityError) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("sqla: duplicate identity %q in %q", e.Identity, e.Collection)
	}
	return fmt.Sprintf("sqla: duplicate identity %q", e.Identity)
}

// Is reports whether the target error matches DuplicateIdentityError.
func (e *DuplicateIdentityError) Is(err error) bool {
	return err == ErrDuplicateIdentity
}

// NewDuplicateIdentityError returns a new DuplicateIdentityError.
func NewDuplicateIdentityError(collection, identity string) *DuplicateIdentityError {
	return &DuplicateIdentityError{Collection: collection, Identity: identity}
}

// IsDuplicateIdentity returns true if the error is a DuplicateIdentityError.
func IsDuplicateIdentity(err error) bool {
	if err == nil {
		return false
	}
	var e *DuplicateIdentityError
	return errors.As(err, &e) || errors.Is(err, ErrDuplicateIdentity)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "sqla: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("sqla: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors so errors.Is and errors.As see each one.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
