// Package returning renders the column projections shared by INSERT
// RETURNING and SELECT lists.
package returning

import (
	"strings"

	"github.com/syssam/sqla/emit"
)

// Kind selects the projection form.
type Kind int

// Projection forms.
const (
	None Kind = iota
	All
	PrimaryKeys
	Columns
	Exprs
)

// Projection is exactly one of the projection forms.
type Projection struct {
	Kind    Kind
	Columns []string
	Exprs   []emit.Renderable
}

// IsZero reports whether no projection was requested.
func (p Projection) IsZero() bool { return p.Kind == None }

// SQL renders the projection. primaryKeys is used for the PrimaryKeys
// form and column names each column identity.
func (p Projection) SQL(ctx *emit.Context, primaryKeys []string, column func(string) string) string {
	switch p.Kind {
	case All:
		return "*"
	case PrimaryKeys:
		return names(primaryKeys, column)
	case Columns:
		return names(p.Columns, column)
	case Exprs:
		parts := make([]string, len(p.Exprs))
		for i, e := range p.Exprs {
			parts[i] = e.SQL(ctx)
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func names(cols []string, column func(string) string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = column(c)
	}
	return strings.Join(parts, ", ")
}
