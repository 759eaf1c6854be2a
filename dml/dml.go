// Package dml prepares INSERT statements for composed tables.
//
//	person := table.Must(table.Define("person", domains.Shape{...}))
//	stmt, err := dml.Insert(person, shape.Record{"name": "Ann"}, dml.ReturningPrimaryKeys())
//	if err != nil {
//	    return err
//	}
//	text, err := emit.Render(ctx, stmt)
package dml

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/internal/returning"
	"github.com/syssam/sqla/lint"
	"github.com/syssam/sqla/shape"
)

// Table is the part of a composed table an insert needs.
// *table.Definition implements it.
type Table interface {
	Name() string
	SQLSymbol(ctx *emit.Context) string
	InsertableColumns() []*domain.Domain
	PrimaryKey() []*domain.Domain
	Validate(rec shape.Record) (shape.Record, error)
}

// Option configures a Statement.
type Option func(*config)

type config struct {
	returning  returning.Projection
	where      emit.Renderable
	onConflict emit.Renderable
	filter     func(col *domain.Domain, rec shape.Record) bool
	transform  func(sql string, ctx *emit.Context) string
}

// ReturningAll appends RETURNING *.
func ReturningAll() Option {
	return func(c *config) { c.returning = returning.Projection{Kind: returning.All} }
}

// ReturningPrimaryKeys appends RETURNING with the primary key columns.
func ReturningPrimaryKeys() Option {
	return func(c *config) { c.returning = returning.Projection{Kind: returning.PrimaryKeys} }
}

// ReturningColumns appends RETURNING with the named columns.
func ReturningColumns(columns ...string) Option {
	return func(c *config) { c.returning = returning.Projection{Kind: returning.Columns, Columns: columns} }
}

// ReturningExprs appends RETURNING with raw expressions.
func ReturningExprs(exprs ...emit.Renderable) Option {
	return func(c *config) { c.returning = returning.Projection{Kind: returning.Exprs, Exprs: exprs} }
}

// Where appends r verbatim after the VALUES list.
func Where(r emit.Renderable) Option {
	return func(c *config) { c.where = r }
}

// OnConflict appends r verbatim before RETURNING.
func OnConflict(r emit.Renderable) Option {
	return func(c *config) { c.onConflict = r }
}

// ColumnFilter decides per column whether it is emitted. Rejected columns
// are left out of the column list.
func ColumnFilter(fn func(col *domain.Domain, rec shape.Record) bool) Option {
	return func(c *config) { c.filter = fn }
}

// Transform rewrites the rendered statement.
func Transform(fn func(sql string, ctx *emit.Context) string) Option {
	return func(c *config) { c.transform = fn }
}

// Statement is a prepared INSERT of one or more rows.
type Statement struct {
	table  Table
	rows   []shape.Record
	cfg    config
	issues []lint.Issue
}

// Insert validates rec against the table and prepares a single-row
// INSERT. Validation fills application supplied defaults; a mismatch is a
// *sqla.SchemaViolation.
func Insert(t Table, rec shape.Record, opts ...Option) (*Statement, error) {
	return InsertRows(t, []shape.Record{rec}, opts...)
}

// InsertRows validates every record and prepares a multi-row INSERT.
func InsertRows(t Table, recs []shape.Record, opts ...Option) (*Statement, error) {
	valid := make([]shape.Record, len(recs))
	for i, rec := range recs {
		v, err := t.Validate(rec)
		if err != nil {
			return nil, err
		}
		valid[i] = v
	}
	return RawInsertRows(t, valid, opts...), nil
}

// RawInsert prepares a single-row INSERT without validation. Use it when a
// value is a sub-statement.
func RawInsert(t Table, rec shape.Record, opts ...Option) *Statement {
	return RawInsertRows(t, []shape.Record{rec}, opts...)
}

// RawInsertRows prepares a multi-row INSERT without validation.
func RawInsertRows(t Table, recs []shape.Record, opts ...Option) *Statement {
	s := &Statement{table: t, rows: recs}
	for _, opt := range opts {
		opt(&s.cfg)
	}
	s.issues = s.unknownKeys()
	return s
}

// Rows returns the records being inserted.
func (s *Statement) Rows() []shape.Record { return s.rows }

// Columns returns the columns that appear in the column list.
func (s *Statement) Columns() []*domain.Domain {
	var out []*domain.Domain
	for _, col := range s.table.InsertableColumns() {
		if s.emits(col) {
			out = append(out, col)
		}
	}
	return out
}

// emits reports whether col is listed. A column absent from every row is
// left out when it is optional in insertable records and the engine
// supplies a default.
func (s *Statement) emits(col *domain.Domain) bool {
	if s.cfg.filter != nil {
		for _, rec := range s.rows {
			if !s.cfg.filter(col, rec) {
				return false
			}
		}
	}
	if !col.Flags().OptionalInInsertableRecord || !col.HasSQLDefault() {
		return true
	}
	for _, rec := range s.rows {
		if _, ok := rec[col.Identity()]; ok {
			return true
		}
	}
	return false
}

func (s *Statement) unknownKeys() []lint.Issue {
	known := make(map[string]bool)
	for _, col := range s.table.InsertableColumns() {
		known[col.Identity()] = true
	}
	var keys []string
	for _, rec := range s.rows {
		for k := range rec {
			if !known[k] && !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)
	issues := make([]lint.Issue, len(keys))
	for i, k := range keys {
		issues[i] = lint.Issue{
			Message:     fmt.Sprintf("value for %q is not an insertable column of %q and was ignored", k, s.table.Name()),
			Location:    s.table.Name() + "." + k,
			Consequence: lint.WarningDML,
		}
	}
	return issues
}

// LintIssues implements lint.Supplier.
func (s *Statement) LintIssues() []lint.Issue { return slices.Clone(s.issues) }

// PopulateLint registers the statement's issues and those carried by
// sub-statement values.
func (s *Statement) PopulateLint(sink *lint.Sink, ctx *emit.Context) {
	sink.Register(s.issues...)
	for _, rec := range s.rows {
		for _, v := range rec {
			switch v := v.(type) {
			case emit.LintPopulator:
				v.PopulateLint(sink, ctx)
			case lint.Supplier:
				sink.Register(v.LintIssues()...)
			}
		}
	}
}

// SQL renders the INSERT.
func (s *Statement) SQL(ctx *emit.Context) string {
	names := ctx.Names()
	cols := s.Columns()

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s ", s.table.SQLSymbol(ctx))
	if len(cols) == 0 {
		sb.WriteString("DEFAULT VALUES")
	} else {
		idents := make([]string, len(cols))
		for i, col := range cols {
			idents[i] = names.Domain(col.Identity())
		}
		fmt.Fprintf(&sb, "(%s)", strings.Join(idents, ", "))

		rows := make([]string, len(s.rows))
		for i, rec := range s.rows {
			rows[i] = "(" + strings.Join(s.values(ctx, cols, rec), ", ") + ")"
		}
		if ctx.Text.Layout == emit.SingleLine || len(rows) == 1 {
			sb.WriteString(" VALUES ")
			sb.WriteString(strings.Join(rows, ", "))
		} else {
			sb.WriteString("\n       VALUES ")
			sb.WriteString(strings.Join(rows, ",\n              "))
		}
	}
	for _, r := range []emit.Renderable{s.cfg.where, s.cfg.onConflict} {
		if r != nil {
			sb.WriteString(" ")
			sb.WriteString(r.SQL(ctx))
		}
	}
	if !s.cfg.returning.IsZero() {
		pks := make([]string, 0)
		for _, pk := range s.table.PrimaryKey() {
			pks = append(pks, pk.Identity())
		}
		sb.WriteString(" RETURNING ")
		sb.WriteString(s.cfg.returning.SQL(ctx, pks, func(c string) string {
			return names.TableColumn(s.table.Name(), c, false)
		}))
	}
	if s.cfg.transform != nil {
		return s.cfg.transform(sb.String(), ctx)
	}
	return sb.String()
}

func (s *Statement) values(ctx *emit.Context, cols []*domain.Domain, rec shape.Record) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		v, ok := rec[col.Identity()]
		switch {
		case !ok || v == nil:
			out[i] = "NULL"
		default:
			if r, ok := v.(emit.Renderable); ok {
				out[i] = "(" + r.SQL(ctx) + ")"
				continue
			}
			out[i] = ctx.Literal(col.TransformInsertableValue(v))
		}
	}
	return out
}
