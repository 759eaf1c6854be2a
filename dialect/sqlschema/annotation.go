// Package sqlschema provides SQL-specific annotations for column domains,
// foreign keys and indexes.
//
// Import this package as:
//
//	import "github.com/syssam/sqla/dialect/sqlschema"
//
// # API Styles
//
// Functional style:
//
//	sqlschema.Size(10)
//	sqlschema.ColumnType("JSONB")
//	sqlschema.OnDelete(sqlschema.Cascade)
//
// Struct literal style:
//
//	sqlschema.Annotation{
//	    Size:       10,
//	    ColumnType: "VARCHAR",
//	    Check:      "length(code) > 0",
//	}
//
// Annotations combine with Merge, later values winning:
//
//	a := sqlschema.Merge(sqlschema.ColumnType("VARCHAR"), sqlschema.Size(10))
//
// # Cascade Actions
//
// Available constants for OnDelete and OnUpdate:
//
//	sqlschema.Cascade    - Delete/update related rows
//	sqlschema.SetNull    - Set foreign key to NULL
//	sqlschema.Restrict   - Prevent delete/update if related rows exist
//	sqlschema.SetDefault - Set foreign key to default value
//	sqlschema.NoAction   - No action (database default)
package sqlschema

import (
	"fmt"
	"strings"
)

// CascadeAction defines cascade behavior for foreign key constraints.
type CascadeAction string

const (
	Cascade    CascadeAction = "CASCADE"
	SetNull    CascadeAction = "SET NULL"
	Restrict   CascadeAction = "RESTRICT"
	SetDefault CascadeAction = "SET DEFAULT"
	NoAction   CascadeAction = "NO ACTION"
)

// ParseCascadeAction returns the action named s, accepting "set_null"
// style spellings. The empty string is no action at all.
func ParseCascadeAction(s string) (CascadeAction, error) {
	a := CascadeAction(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "_", " ")))
	switch a {
	case "", Cascade, SetNull, Restrict, SetDefault, NoAction:
		return a, nil
	}
	return "", fmt.Errorf("sqlschema: unknown cascade action %q", s)
}

// Annotation holds SQL-specific settings for a column domain or a
// foreign key.
type Annotation struct {
	// Size overrides the column size (e.g., VARCHAR(Size)).
	Size int64

	// ColumnType sets a custom database column type.
	ColumnType string

	// Collation sets the collation for string columns.
	Collation string

	// Check adds a CHECK constraint expression.
	Check string

	// Default is a SQL expression used verbatim in the DEFAULT clause.
	Default string

	// OnDelete sets the ON DELETE cascade action.
	OnDelete CascadeAction

	// OnUpdate sets the ON UPDATE cascade action.
	OnUpdate CascadeAction
}

// Size sets the column size override.
func Size(size int64) Annotation {
	return Annotation{Size: size}
}

// ColumnType sets a custom database column type.
//
// Example:
//
//	domain.Annotate(sqlschema.ColumnType("JSONB"))
func ColumnType(typ string) Annotation {
	return Annotation{ColumnType: typ}
}

// Collation sets the collation for a string column.
func Collation(c string) Annotation {
	return Annotation{Collation: c}
}

// Check adds a CHECK constraint to the column.
//
// Example:
//
//	domain.Annotate(sqlschema.Check("age >= 0"))
func Check(expr string) Annotation {
	return Annotation{Check: expr}
}

// Default sets a SQL default expression such as CURRENT_TIMESTAMP.
func Default(expr string) Annotation {
	return Annotation{Default: expr}
}

// OnDelete sets the ON DELETE cascade action for a foreign key.
func OnDelete(action CascadeAction) Annotation {
	return Annotation{OnDelete: action}
}

// OnUpdate sets the ON UPDATE cascade action for a foreign key.
func OnUpdate(action CascadeAction) Annotation {
	return Annotation{OnUpdate: action}
}

// Merge combines annotations. Non-zero fields of later annotations win.
func Merge(as ...Annotation) Annotation {
	var out Annotation
	for _, a := range as {
		if a.Size != 0 {
			out.Size = a.Size
		}
		if a.ColumnType != "" {
			out.ColumnType = a.ColumnType
		}
		if a.Collation != "" {
			out.Collation = a.Collation
		}
		if a.Check != "" {
			out.Check = a.Check
		}
		if a.Default != "" {
			out.Default = a.Default
		}
		if a.OnDelete != "" {
			out.OnDelete = a.OnDelete
		}
		if a.OnUpdate != "" {
			out.OnUpdate = a.OnUpdate
		}
	}
	return out
}

// Sized appends a size to a column type, replacing an existing one:
// Sized("VARCHAR", 10) is "VARCHAR(10)".
func Sized(typ string, size int64) string {
	if i := strings.IndexByte(typ, '('); i >= 0 {
		typ = typ[:i]
	}
	return fmt.Sprintf("%s(%d)", typ, size)
}

// ReferentialActions renders the ON DELETE and ON UPDATE clauses, each
// preceded by a space, or the empty string.
func ReferentialActions(onDelete, onUpdate CascadeAction) string {
	var sb strings.Builder
	if onDelete != "" {
		sb.WriteString(" ON DELETE ")
		sb.WriteString(string(onDelete))
	}
	if onUpdate != "" {
		sb.WriteString(" ON UPDATE ")
		sb.WriteString(string(onUpdate))
	}
	return sb.String()
}

// IndexAnnotation holds SQL-specific settings for indexes.
type IndexAnnotation struct {
	// Where sets the partial index predicate (WHERE clause).
	Where string

	// DescColumns specifies descending order per column.
	DescColumns map[string]bool
}
