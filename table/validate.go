package table

import (
	"fmt"
	"strings"

	"github.com/syssam/sqla"
	"github.com/syssam/sqla/ref"
)

// ValidationError represents a definition validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of definition validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Err joins the validation errors, or returns nil.
func (r *ValidationResult) Err() error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return sqla.NewAggregateError(errs...)
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

func (r *ValidationResult) merge(o *ValidationResult) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// ValidateTable validates a single table definition: constraint and index
// columns must exist and index names must be unique.
func ValidateTable(d *Definition) *ValidationResult {
	result := &ValidationResult{}
	colNames := make(map[string]bool)
	for _, name := range d.coll.Names() {
		colNames[name] = true
	}

	for _, c := range d.constraints {
		if c.Kind == CheckConstraint {
			if strings.TrimSpace(c.Expr) == "" {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   d.name,
					Message: "empty check constraint",
				})
			}
			continue
		}
		if len(c.Columns) == 0 {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   d.name,
				Message: "constraint without columns",
			})
		}
		for _, col := range c.Columns {
			if !colNames[col] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   d.name,
					Message: fmt.Sprintf("constraint references non-existent column %q", col),
				})
			}
		}
	}

	idxNames := make(map[string]bool)
	for _, idx := range d.indexes {
		name := idx.name
		if name == "" {
			name = "idx_" + d.name + "__" + strings.Join(idx.columns, "__")
		}
		if idxNames[name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   d.name,
				Message: fmt.Sprintf("duplicate index name: %s", name),
			})
		}
		idxNames[name] = true
		if len(idx.columns) == 0 {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   d.name,
				Message: fmt.Sprintf("index %q has no columns", name),
			})
		}
		for _, col := range idx.columns {
			if !colNames[col] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   d.name,
					Message: fmt.Sprintf("index %q references non-existent column %q", name, col),
				})
			}
		}
	}

	for _, c := range d.coll.Domains() {
		if c.IsNullable() && c.Flags().PrimaryKey && !c.Flags().AutoIncrement {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   d.name,
				Column:  c.Identity(),
				Message: "primary key column is nullable",
			})
		}
	}
	return result
}

// ValidateSchema validates a set of tables: names must be unique and
// every reference must point at a known table.
func ValidateSchema(tables []*Definition) *ValidationResult {
	result := &ValidationResult{}

	tableNames := make(map[string]bool)
	for _, t := range tables {
		if tableNames[t.name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.name,
				Message: "duplicate table name",
			})
		}
		tableNames[t.name] = true
		result.merge(ValidateTable(t))
	}

	for _, t := range tables {
		for _, dest := range ref.Destinations(t.coll) {
			if !tableNames[dest.ForeignTable()] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.name,
					Column:  dest.Column(),
					Message: fmt.Sprintf("foreign key references non-existent table %q", dest.ForeignTable()),
				})
			}
		}
	}

	return result
}
