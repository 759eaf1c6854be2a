package dql

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/lint"
	"github.com/syssam/sqla/shape"
)

// Table is the part of a composed table filtering needs.
// *table.Definition implements it.
type Table interface {
	Name() string
	SQLSymbol(ctx *emit.Context) string
	FilterableColumns() []*domain.Domain
	PrimaryKey() []*domain.Domain
}

// Compare is the comparison nature of a criteria component.
type Compare string

// Comparisons.
const (
	Equals         Compare = "="
	Greater        Compare = ">"
	Less           Compare = "<"
	GreaterOrEqual Compare = ">="
	LessOrEqual    Compare = "<="
	In             Compare = "in"
)

// Connector joins a component to the ones before it.
type Connector string

// Connectors.
const (
	ConnectAnd Connector = "AND"
	ConnectOr  Connector = "OR"
)

// CompareFunc renders a custom comparison of lhs against the rendered value.
type CompareFunc func(lhs, value string) string

// Value is a filter value carrying an explicit connector, comparison,
// negation or projection. Plain record values are compared with Equals
// and joined with AND.
type Value struct {
	Value     any
	Connector Connector
	Compare   Compare
	Func      CompareFunc
	Negate    bool
	Returning bool
}

func asValue(v any) Value {
	if fv, ok := v.(Value); ok {
		return fv
	}
	return Value{Value: v}
}

// Is compares against v with c.
func Is(c Compare, v any) Value {
	fv := asValue(v)
	fv.Compare = c
	return fv
}

// Using compares against v with fn.
func Using(fn CompareFunc, v any) Value {
	fv := asValue(v)
	fv.Func = fn
	return fv
}

// And joins v with AND.
func And(v any) Value {
	fv := asValue(v)
	fv.Connector = ConnectAnd
	return fv
}

// Or joins v with OR.
func Or(v any) Value {
	fv := asValue(v)
	fv.Connector = ConnectOr
	return fv
}

// Not negates the comparison against v. There is no NOT connector: the
// component renders as "NOT expr" and is joined with AND unless v carries
// another connector, so {a: 1, b: Not(2)} is "a = 1 AND NOT b = 2".
func Not(v any) Value {
	fv := asValue(v)
	fv.Negate = true
	return fv
}

// Return marks the attribute of v as projected by a SELECT.
func Return(v any) Value {
	fv := asValue(v)
	fv.Returning = true
	return fv
}

// IsNull reports whether v filters for NULL: nil, or the string "NULL" in
// any case and surrounding whitespace.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.EqualFold(strings.TrimSpace(s), "NULL")
}

// Component is one prepared comparison.
type Component struct {
	Identity string
	// Connector is empty for the first component.
	Connector Connector
	Compare   Compare
	Func      CompareFunc
	Negate    bool
	Returning bool
	// Value is the raw value and Text its rendered form.
	Value any
	Text  string
}

// SQL renders the comparison against lhs, without its connector.
func (c Component) SQL(lhs string) string {
	var expr string
	switch {
	case c.Func != nil:
		expr = c.Func(lhs, c.Text)
	case c.Compare == Equals || c.Compare == "":
		if IsNull(c.Value) {
			expr = lhs + " IS NULL"
		} else {
			expr = lhs + " = " + c.Text
		}
	case c.Compare == In:
		expr = lhs + " IN " + c.Text
	default:
		expr = lhs + " " + string(c.Compare) + " " + c.Text
	}
	if c.Negate {
		return "NOT " + expr
	}
	return expr
}

// Group selects a subset of candidate attributes.
type Group int

// Candidate groups.
const (
	AllAttrs Group = iota
	PrimaryKeyAttrs
)

// Option configures criteria preparation.
type Option func(*options)

type options struct {
	filterable func(attr string, rec shape.Record) bool
	filterAttr func(attr string, rec shape.Record, ctx *emit.Context) (Component, bool)
}

// Filterable overrides which attributes take part. By default an
// attribute takes part when the record has its key.
func Filterable(fn func(attr string, rec shape.Record) bool) Option {
	return func(o *options) { o.filterable = fn }
}

// FilterAttr builds the component of every filterable attribute itself.
// Returning false skips the attribute.
func FilterAttr(fn func(attr string, rec shape.Record, ctx *emit.Context) (Component, bool)) Option {
	return func(o *options) { o.filterAttr = fn }
}

// Criteria is the prepared filter of a record against a table.
type Criteria struct {
	table      Table
	record     shape.Record
	components []Component
	issues     []lint.Issue
}

// Prepare builds the criteria for rec. Candidate attributes are visited
// in column order; values render with the quoting of ctx.
func Prepare(ctx *emit.Context, t Table, rec shape.Record, opts ...Option) *Criteria {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.filterable == nil {
		o.filterable = func(attr string, rec shape.Record) bool {
			_, ok := rec[attr]
			return ok
		}
	}
	c := &Criteria{table: t, record: rec}
	for _, attr := range c.CandidateAttrs(AllAttrs) {
		if !o.filterable(attr, rec) {
			continue
		}
		var (
			comp Component
			ok   = true
		)
		if o.filterAttr != nil {
			comp, ok = o.filterAttr(attr, rec, ctx)
		} else {
			comp = c.component(ctx, attr, rec[attr])
		}
		if !ok {
			continue
		}
		if comp.Identity == "" {
			comp.Identity = attr
		}
		if len(c.components) == 0 {
			comp.Connector = ""
		} else if comp.Connector == "" {
			comp.Connector = ConnectAnd
		}
		c.components = append(c.components, comp)
	}
	c.issues = append(c.issues, c.unknownKeys()...)
	return c
}

func (c *Criteria) component(ctx *emit.Context, attr string, raw any) Component {
	if comp, ok := raw.(Component); ok {
		return comp
	}
	fv := asValue(raw)
	if fv.Compare == "" {
		fv.Compare = Equals
	}
	return Component{
		Identity:  attr,
		Connector: fv.Connector,
		Compare:   fv.Compare,
		Func:      fv.Func,
		Negate:    fv.Negate,
		Returning: fv.Returning,
		Value:     fv.Value,
		Text:      c.valueText(ctx, attr, fv),
	}
}

func (c *Criteria) valueText(ctx *emit.Context, attr string, fv Value) string {
	if r, ok := fv.Value.(emit.Renderable); ok {
		return "(" + r.SQL(ctx) + ")"
	}
	if fv.Func == nil && fv.Compare != Equals && IsNull(fv.Value) {
		c.issues = append(c.issues, lint.Issue{
			Message:     fmt.Sprintf("%q compared with %s NULL is never true; only = renders IS NULL", attr, strings.ToUpper(string(fv.Compare))),
			Location:    c.table.Name() + "." + attr,
			Consequence: lint.WarningDQL,
		})
	}
	if fv.Compare != In {
		return ctx.Literal(fv.Value)
	}
	rv := reflect.ValueOf(fv.Value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return "(" + ctx.Literal(fv.Value) + ")"
	}
	if rv.Len() == 0 {
		c.issues = append(c.issues, lint.Issue{
			Message:     fmt.Sprintf("empty IN list for %q matches no rows", attr),
			Location:    c.table.Name() + "." + attr,
			Consequence: lint.FatalDQL,
		})
	}
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = ctx.Literal(rv.Index(i).Interface())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (c *Criteria) unknownKeys() []lint.Issue {
	candidates := c.CandidateAttrs(AllAttrs)
	var keys []string
	for k := range c.record {
		if !slices.Contains(candidates, k) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	issues := make([]lint.Issue, len(keys))
	for i, k := range keys {
		issues[i] = lint.Issue{
			Message:     fmt.Sprintf("%q is not a filterable column of %q and was ignored", k, c.table.Name()),
			Location:    c.table.Name() + "." + k,
			Consequence: lint.WarningDQL,
		}
	}
	return issues
}

// CandidateAttrs returns the attribute names of group in column order.
func (c *Criteria) CandidateAttrs(g Group) []string {
	var cols []*domain.Domain
	if g == PrimaryKeyAttrs {
		cols = c.table.PrimaryKey()
	} else {
		cols = c.table.FilterableColumns()
	}
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = col.Identity()
	}
	return out
}

// Components returns the prepared comparisons.
func (c *Criteria) Components() []Component { return slices.Clone(c.components) }

// Filterable returns the record the criteria were prepared from.
func (c *Criteria) Filterable() shape.Record { return c.record }

// Len returns the number of components.
func (c *Criteria) Len() int { return len(c.components) }

// Returning returns the attributes marked with Return.
func (c *Criteria) Returning() []string {
	var out []string
	for _, comp := range c.components {
		if comp.Returning {
			out = append(out, comp.Identity)
		}
	}
	return out
}

// LintIssues implements lint.Supplier.
func (c *Criteria) LintIssues() []lint.Issue { return slices.Clone(c.issues) }

// SQL renders the criteria with quoted, unqualified column names.
func (c *Criteria) SQL(ctx *emit.Context) string {
	return c.Render(ctx.Names().Domain)
}

// Render renders the criteria naming each attribute with attrName.
func (c *Criteria) Render(attrName func(string) string) string {
	var sb strings.Builder
	for _, comp := range c.components {
		if comp.Connector != "" {
			sb.WriteString(" ")
			sb.WriteString(string(comp.Connector))
			sb.WriteString(" ")
		}
		sb.WriteString(comp.SQL(attrName(comp.Identity)))
	}
	return sb.String()
}
