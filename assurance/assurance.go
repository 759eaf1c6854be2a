// Package assurance renders row-level data quality rules. Each rule is a
// query that lists the rows of a table violating it, one row per issue,
// with the column, the offending value and a human readable message.
package assurance

import (
	"fmt"
	"strings"

	"github.com/syssam/sqla"
	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/emit"
)

// Table is the part of a composed table a rule needs.
// *table.Definition implements it.
type Table interface {
	Name() string
	SQLSymbol(ctx *emit.Context) string
	Column(name string) (*domain.Domain, bool)
	PrimaryKey() []*domain.Domain
}

// Issue column names produced by every rule.
const (
	IssueRow         = "issue_row"
	IssueColumn      = "issue_column"
	InvalidValue     = "invalid_value"
	IssueNature      = "issue_nature"
	IssueMessage     = "issue_message"
	IssueRemediation = "issue_remediation"
)

// Governance turns the named CTE of offending rows into the statement
// that records them. The SQL arguments are expressions over the CTE.
type Governance interface {
	RowValueIssue(from, nature, rowSQL, columnSQL, valueSQL, messageSQL, remediationSQL string) string
}

// Listing selects the issues.
type Listing struct{}

// RowValueIssue implements Governance.
func (Listing) RowValueIssue(from, nature, rowSQL, columnSQL, valueSQL, messageSQL, remediationSQL string) string {
	return fmt.Sprintf("SELECT %s AS %s,\n       %s AS %s,\n       %s AS %s,\n       %s AS %s,\n       %s AS %s,\n       %s AS %s\n  FROM %s",
		rowSQL, IssueRow, columnSQL, IssueColumn, valueSQL, InvalidValue,
		emit.QuoteLiteral(nature), IssueNature, messageSQL, IssueMessage, remediationSQL, IssueRemediation, from)
}

// Rule is one row-level assurance query.
type Rule struct {
	cte         string
	nature      string
	table       Table
	column      string
	where       func(col string, ctx *emit.Context) string
	message     string
	remediation string
	govn        Governance
	row         string
}

// Option configures a Rule.
type Option func(*Rule)

// WithGovernance sets how issues are recorded. The default is Listing.
func WithGovernance(g Governance) Option {
	return func(r *Rule) { r.govn = g }
}

// RowColumn names the column reported as issue_row. It defaults to the
// single primary key column, and NULL when there is none.
func RowColumn(name string) Option {
	return func(r *Rule) { r.row = name }
}

func newRule(t Table, column string, r Rule, opts []Option) *Rule {
	r.table = t
	r.column = column
	r.govn = Listing{}
	for _, opt := range opts {
		opt(&r)
	}
	return &r
}

// IntRange reports non-null values outside [min, max].
func IntRange(t Table, column string, min, max int64, opts ...Option) *Rule {
	return newRule(t, column, Rule{
		cte:    "int_range_assurance",
		nature: "Range Violation",
		where: func(col string, _ *emit.Context) string {
			return fmt.Sprintf("%s IS NOT NULL\n       AND (CAST(%s AS INTEGER) < %d OR CAST(%s AS INTEGER) > %d)", col, col, min, col, max)
		},
		message:     fmt.Sprintf("'Value ' || %s || ' in ' || %s || ' out of range (%d-%d)'", InvalidValue, IssueColumn, min, max),
		remediation: fmt.Sprintf("'Ensure values in ' || %s || ' are between %d and %d'", IssueColumn, min, max),
	}, opts)
}

// Mandatory reports NULL and blank values.
func Mandatory(t Table, column string, opts ...Option) *Rule {
	return newRule(t, column, Rule{
		cte:    "mandatory_value",
		nature: "Missing Mandatory Value",
		where: func(col string, _ *emit.Context) string {
			return fmt.Sprintf("%s IS NULL\n        OR TRIM(CAST(%s AS VARCHAR)) = ''", col, col)
		},
		message:     fmt.Sprintf("'Mandatory field ' || %s || ' is empty'", IssueColumn),
		remediation: fmt.Sprintf("'Provide a value for ' || %s", IssueColumn),
	}, opts)
}

// UniqueValue reports values that occur in more than one row.
func UniqueValue(t Table, column string, opts ...Option) *Rule {
	return newRule(t, column, Rule{
		cte:    "unique_value",
		nature: "Unique Value Violation",
		where: func(col string, ctx *emit.Context) string {
			tbl := t.SQLSymbol(ctx)
			return fmt.Sprintf("%s IS NOT NULL\n       AND %s IN (SELECT %s FROM %s GROUP BY %s HAVING COUNT(*) > 1)", col, col, col, tbl, col)
		},
		message:     fmt.Sprintf("'Duplicate value ' || %s || ' found in ' || %s", InvalidValue, IssueColumn),
		remediation: fmt.Sprintf("'Ensure each value in ' || %s || ' is unique'", IssueColumn),
	}, opts)
}

// Pattern reports non-null values that do not match the LIKE pattern.
func Pattern(t Table, column, pattern string, opts ...Option) *Rule {
	return newRule(t, column, Rule{
		cte:    "pattern",
		nature: "Pattern Mismatch",
		where: func(col string, ctx *emit.Context) string {
			return fmt.Sprintf("%s IS NOT NULL\n       AND CAST(%s AS VARCHAR) NOT LIKE %s", col, col, ctx.Literal(pattern))
		},
		message:     fmt.Sprintf("'Value ' || %s || ' in ' || %s || ' does not match the pattern %s'", InvalidValue, IssueColumn, escape(pattern)),
		remediation: fmt.Sprintf("'Follow the pattern %s in ' || %s", escape(pattern), IssueColumn),
	}, opts)
}

// AllowedValues reports non-null values outside values.
func AllowedValues(t Table, column string, values []any, opts ...Option) *Rule {
	human := make([]string, len(values))
	for i, v := range values {
		human[i] = fmt.Sprint(v)
	}
	list := escape(strings.Join(human, ", "))
	return newRule(t, column, Rule{
		cte:    "allowed_values",
		nature: "Invalid Value",
		where: func(col string, ctx *emit.Context) string {
			lits := make([]string, len(values))
			for i, v := range values {
				lits[i] = ctx.Literal(v)
			}
			return fmt.Sprintf("%s IS NOT NULL\n       AND %s NOT IN (%s)", col, col, strings.Join(lits, ", "))
		},
		message:     fmt.Sprintf("'Value ' || %s || ' in ' || %s || ' not in allowed list (%s)'", InvalidValue, IssueColumn, list),
		remediation: fmt.Sprintf("'Use only allowed values %s in ' || %s", list, IssueColumn),
	}, opts)
}

func escape(s string) string { return strings.ReplaceAll(s, "'", "''") }

// Table returns the table the rule checks.
func (r *Rule) Table() Table { return r.table }

// Column returns the checked column.
func (r *Rule) Column() string { return r.column }

// Nature returns the issue category.
func (r *Rule) Nature() string { return r.nature }

func (r *Rule) rowSQL(ctx *emit.Context) string {
	if r.row != "" {
		return ctx.Names().Domain(r.row)
	}
	if pks := r.table.PrimaryKey(); len(pks) == 1 {
		return ctx.Names().Domain(pks[0].Identity())
	}
	return "NULL"
}

// SQL renders the rule. An unknown column fails the render.
func (r *Rule) SQL(ctx *emit.Context) string {
	if _, ok := r.table.Column(r.column); !ok {
		ctx.Fail(sqla.NewSchemaViolation(r.column, fmt.Sprintf("unknown column of %q", r.table.Name())))
		return ""
	}
	col := ctx.Names().Domain(r.column)
	return emit.Options{Unindent: true}.SQL(`
		WITH ${} AS (
		    SELECT ${} AS ${},
		           ${} AS ${},
		           ${} AS ${}
		      FROM ${}
		     WHERE ${}
		)
		${}`,
		r.cte,
		ctx.Literal(r.column), IssueColumn,
		col, InvalidValue,
		r.rowSQL(ctx), IssueRow,
		r.table.SQLSymbol(ctx),
		r.where(col, ctx),
		r.govn.RowValueIssue(r.cte, r.nature, IssueRow, IssueColumn, InvalidValue, r.message, r.remediation),
	).SQL(ctx)
}
