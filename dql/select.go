package dql

import (
	"strings"

	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/internal/returning"
	"github.com/syssam/sqla/lint"
	"github.com/syssam/sqla/shape"
)

// SelectOption configures a Statement.
type SelectOption func(*selectConfig)

type selectConfig struct {
	name      string
	layout    *emit.Layout
	returning returning.Projection
	filter    []Option
}

// Named sets the statement name.
func Named(name string) SelectOption {
	return func(c *selectConfig) { c.name = name }
}

// Layout overrides the layout of the context.
func Layout(l emit.Layout) SelectOption {
	return func(c *selectConfig) { c.layout = &l }
}

// ReturningAll selects every column.
func ReturningAll() SelectOption {
	return func(c *selectConfig) { c.returning = returning.Projection{Kind: returning.All} }
}

// ReturningPrimaryKeys selects the primary key columns.
func ReturningPrimaryKeys() SelectOption {
	return func(c *selectConfig) { c.returning = returning.Projection{Kind: returning.PrimaryKeys} }
}

// ReturningColumns selects the named columns.
func ReturningColumns(columns ...string) SelectOption {
	return func(c *selectConfig) { c.returning = returning.Projection{Kind: returning.Columns, Columns: columns} }
}

// ReturningExprs selects raw expressions.
func ReturningExprs(exprs ...emit.Renderable) SelectOption {
	return func(c *selectConfig) { c.returning = returning.Projection{Kind: returning.Exprs, Exprs: exprs} }
}

// WithCriteria passes options to criteria preparation.
func WithCriteria(opts ...Option) SelectOption {
	return func(c *selectConfig) { c.filter = append(c.filter, opts...) }
}

// Statement is a SELECT of a table filtered by a record. Criteria are
// prepared at render time against the render context.
type Statement struct {
	table  Table
	record shape.Record
	cfg    selectConfig
}

// Select prepares a SELECT of t filtered by rec.
//
// Without an explicit projection the attributes marked with Return are
// selected, or the primary key columns when none are. A table without a
// primary key selects every column.
func Select(t Table, rec shape.Record, opts ...SelectOption) *Statement {
	s := &Statement{table: t, record: rec}
	for _, opt := range opts {
		opt(&s.cfg)
	}
	return s
}

// Name returns the statement name.
func (s *Statement) Name() string { return s.cfg.name }

// Filterable returns the record the statement filters by.
func (s *Statement) Filterable() shape.Record { return s.record }

// Criteria prepares the statement's criteria against ctx.
func (s *Statement) Criteria(ctx *emit.Context) *Criteria {
	return Prepare(ctx, s.table, s.record, s.cfg.filter...)
}

// PopulateLint registers the issues found preparing the criteria.
func (s *Statement) PopulateLint(sink *lint.Sink, ctx *emit.Context) {
	sink.Register(s.Criteria(ctx).LintIssues()...)
}

// SQL renders the SELECT.
func (s *Statement) SQL(ctx *emit.Context) string {
	names := ctx.Names()
	column := func(attr string) string { return names.TableColumn(s.table.Name(), attr, false) }
	crit := s.Criteria(ctx)

	proj := s.cfg.returning
	if proj.IsZero() {
		if cols := crit.Returning(); len(cols) > 0 {
			proj = returning.Projection{Kind: returning.Columns, Columns: cols}
		} else {
			proj = returning.Projection{Kind: returning.PrimaryKeys}
		}
	}
	pks := crit.CandidateAttrs(PrimaryKeyAttrs)
	if proj.Kind == returning.PrimaryKeys && len(pks) == 0 {
		proj = returning.Projection{Kind: returning.All}
	}
	cols := proj.SQL(ctx, pks, column)

	layout := ctx.Text.Layout
	if s.cfg.layout != nil {
		layout = *s.cfg.layout
	}
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(cols)
	if layout == emit.SingleLine {
		sb.WriteString(" FROM ")
	} else {
		sb.WriteString("\n  FROM ")
	}
	sb.WriteString(s.table.SQLSymbol(ctx))
	if crit.Len() > 0 {
		if layout == emit.SingleLine {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString("\n WHERE ")
		}
		sb.WriteString(crit.Render(column))
	}
	return sb.String()
}
