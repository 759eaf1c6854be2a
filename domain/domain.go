// Package domain binds a logical identity and a value shape to the SQL
// knowledge needed to render it as a column: type, nullability, default,
// decorators and insert-time value transformation.
//
// Domains are immutable. Every option returns a copy, and a domain placed
// in a second collection is re-identified as a copy, never aliased.
//
//	name, err := domain.From("name", shape.String())
//	id := domain.AutoIncPrimaryKey()
//	email := domain.Unique(shape.String().Rule("email"))
package domain

import (
	"maps"
	"slices"

	"github.com/syssam/sqla"
	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/dialect/sqlschema"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/lint"
	"github.com/syssam/sqla/shape"
)

// Purpose identifies where a type is being rendered.
type Purpose int

// Rendering purposes.
const (
	ColumnType Purpose = iota
	RoutineArg
	FunctionReturnScalar
	FunctionReturnTableColumn
	TypeField
	Diagram
)

// Destination identifies which part of a table definition a decorator
// belongs to.
type Destination int

// Decorator destinations.
const (
	// FullColumnDefn replaces the whole column definition.
	FullColumnDefn Destination = iota
	// ColumnDecorators follow the column type, such as "PRIMARY KEY".
	ColumnDecorators
	// AfterAllColumns are appended after every column definition, such as
	// table level CHECK constraints.
	AfterAllColumns
)

// Partial renders a fragment for a domain.
type Partial func(ctx *emit.Context, d *Domain) string

// Reference is a foreign key binding attached to a column domain.
type Reference interface {
	ForeignTable() string
	ForeignNamespace() string
	ForeignColumn() string
	// ForeignDomain returns the referenced column, nil until resolved.
	ForeignDomain() *Domain
	Resolved() bool
	OnDelete() sqlschema.CascadeAction
	OnUpdate() sqlschema.CascadeAction
	// Rebind returns an unowned copy of the binding for column, so the
	// same column can be collected into another table.
	Rebind(column string) Reference
}

// Provider supplies a domain for a collection key.
type Provider interface {
	ProvideDomain(identity string) (*Domain, error)
}

// Flags holds the table composition switches of a domain.
type Flags struct {
	PrimaryKey                    bool
	AutoIncrement                 bool
	ExcludedFromInsertDML         bool
	OptionalInInsertableRecord    bool
	Unique                        bool
	ExcludedFromFilterCriteriaDQL bool
}

// Domain is an immutable column domain.
type Domain struct {
	identity    string
	typ         shape.Type
	sqlType     string
	purposeType map[Purpose]string
	schemaType  map[dialect.Dialect]string
	nullable    bool
	placeholder bool
	sqlDefault  emit.Renderable
	transform   func(any) any
	partials    map[Destination][]Partial
	comment     string
	flags       Flags
	reference   Reference
	issues      []lint.Issue
	err         error
}

// Identity returns the collection key, empty when not yet collected.
func (d *Domain) Identity() string { return d.identity }

// Shape returns the value shape the domain was built from.
func (d *Domain) Shape() shape.Type { return d.typ }

// Kind returns the core kind of the value shape.
func (d *Domain) Kind() shape.Kind { return d.typ.Kind() }

// IsNullable reports whether the column accepts NULL.
func (d *Domain) IsNullable() bool { return d.nullable }

// IsPlaceholder reports whether the domain is waiting for a resolver.
func (d *Domain) IsPlaceholder() bool { return d.placeholder }

// Flags returns the composition switches.
func (d *Domain) Flags() Flags { return d.flags }

// Comment returns the column comment.
func (d *Domain) Comment() string { return d.comment }

// Reference returns the foreign key binding, or nil.
func (d *Domain) Reference() Reference { return d.reference }

// Err returns the error recorded while building the domain.
func (d *Domain) Err() error { return d.err }

// LintIssues returns issues attached to the domain.
func (d *Domain) LintIssues() []lint.Issue { return slices.Clone(d.issues) }

// SQLType renders the column type for purpose. A per-dialect schema type
// wins over a per-purpose type, which wins over the default. Rendering a
// placeholder records an unresolved reference on ctx.
func (d *Domain) SQLType(purpose Purpose, ctx *emit.Context) string {
	if d.placeholder {
		ctx.Fail(d.unresolved())
		return ""
	}
	if t, ok := d.schemaType[ctx.Dialect]; ok {
		return t
	}
	if t, ok := d.purposeType[purpose]; ok {
		return t
	}
	return d.sqlType
}

func (d *Domain) unresolved() error {
	if d.reference == nil {
		return sqla.NewUnresolvedReferenceError("", d.identity, "", "")
	}
	return sqla.NewUnresolvedReferenceError("", d.identity, d.reference.ForeignTable(), d.reference.ForeignColumn())
}

// SQLDefault renders the DEFAULT expression, if any.
func (d *Domain) SQLDefault(ctx *emit.Context) (string, bool) {
	if d.sqlDefault == nil {
		return "", false
	}
	return d.sqlDefault.SQL(ctx), true
}

// HasSQLDefault reports whether the column carries a DEFAULT.
func (d *Domain) HasSQLDefault() bool { return d.sqlDefault != nil }

// TransformInsertableValue converts a record value before it is quoted.
func (d *Domain) TransformInsertableValue(v any) any {
	if d.transform == nil {
		return v
	}
	return d.transform(v)
}

// RenderDecorators renders the partials registered for dest.
func (d *Domain) RenderDecorators(ctx *emit.Context, dest Destination) []string {
	ps := d.partials[dest]
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		if s := p(ctx, d); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// HasDecorators reports whether any partial is registered for dest.
func (d *Domain) HasDecorators(dest Destination) bool {
	return len(d.partials[dest]) > 0
}

// SQLSymbol renders the quoted column name.
func (d *Domain) SQLSymbol(ctx *emit.Context) string {
	return ctx.Names().Domain(d.identity)
}

// ProvideDomain implements Provider by returning a copy of d under identity.
// The copy carries its own binding; resolving it never touches d.
func (d *Domain) ProvideDomain(identity string) (*Domain, error) {
	if d.err != nil {
		return nil, d.err
	}
	c := d.Rename(identity)
	if d.reference != nil {
		c.reference = d.reference.Rebind(identity)
	}
	return c, nil
}

// Rename returns a copy of d under a new identity.
func (d *Domain) Rename(identity string) *Domain {
	c := d.clone()
	c.identity = identity
	return c
}

// With returns a copy of d with opts applied.
func (d *Domain) With(opts ...Option) *Domain {
	c := d.clone()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (d *Domain) clone() *Domain {
	c := *d
	c.purposeType = maps.Clone(d.purposeType)
	c.schemaType = maps.Clone(d.schemaType)
	c.partials = make(map[Destination][]Partial, len(d.partials))
	for k, v := range d.partials {
		c.partials[k] = slices.Clone(v)
	}
	c.issues = slices.Clone(d.issues)
	return &c
}

// Option modifies a copy of a domain.
type Option func(*Domain)

// SQLType sets the default column type.
func SQLType(t string) Option {
	return func(d *Domain) { d.sqlType = t }
}

// PurposeType sets the type rendered for purpose.
func PurposeType(p Purpose, t string) Option {
	return func(d *Domain) {
		if d.purposeType == nil {
			d.purposeType = make(map[Purpose]string)
		}
		d.purposeType[p] = t
	}
}

// SchemaType sets per-dialect column types.
func SchemaType(types map[dialect.Dialect]string) Option {
	return func(d *Domain) {
		if d.schemaType == nil {
			d.schemaType = make(map[dialect.Dialect]string, len(types))
		}
		maps.Copy(d.schemaType, types)
	}
}

// Annotate applies a sqlschema annotation: column type, check constraint
// and collation.
func Annotate(a sqlschema.Annotation) Option {
	return func(d *Domain) {
		if a.ColumnType != "" {
			d.sqlType = a.ColumnType
		}
		if a.Size > 0 && d.sqlType != "" {
			d.sqlType = sqlschema.Sized(d.sqlType, a.Size)
		}
		if a.Collation != "" {
			collation := a.Collation
			d.addPartial(ColumnDecorators, func(*emit.Context, *Domain) string { return "COLLATE " + collation })
		}
		if a.Check != "" {
			check := a.Check
			d.addPartial(AfterAllColumns, func(*emit.Context, *Domain) string { return "CHECK (" + check + ")" })
		}
		if a.Default != "" {
			d.sqlDefault = emit.Raw(a.Default)
		}
	}
}

// Nullable overrides the nullability derived from the shape.
func Nullable(b bool) Option {
	return func(d *Domain) { d.nullable = b }
}

// Default sets the DEFAULT expression.
func Default(r emit.Renderable) Option {
	return func(d *Domain) { d.sqlDefault = r }
}

// DefaultValue sets a DEFAULT literal quoted at render time.
func DefaultValue(v any) Option {
	return Default(emit.RenderFunc(func(ctx *emit.Context) string { return ctx.Literal(v) }))
}

// Transform sets the insertable value transformation.
func Transform(fn func(any) any) Option {
	return func(d *Domain) { d.transform = fn }
}

// Comment sets the column comment.
func Comment(text string) Option {
	return func(d *Domain) { d.comment = text }
}

// Decorate appends a partial for dest.
func Decorate(dest Destination, p Partial) Option {
	return func(d *Domain) { d.addPartial(dest, p) }
}

// Lint attaches issues to the domain.
func Lint(issues ...lint.Issue) Option {
	return func(d *Domain) { d.issues = append(d.issues, issues...) }
}

// ExcludeFromInsert drops the column from insert statements.
func ExcludeFromInsert() Option {
	return func(d *Domain) { d.flags.ExcludedFromInsertDML = true }
}

// OptionalInInsert lets insertable records omit the column.
func OptionalInInsert() Option {
	return func(d *Domain) { d.flags.OptionalInInsertableRecord = true }
}

// ExcludeFromFilter drops the column from filter criteria.
func ExcludeFromFilter() Option {
	return func(d *Domain) { d.flags.ExcludedFromFilterCriteriaDQL = true }
}

// WithReference attaches a foreign key binding. A nil reference clears it.
func WithReference(r Reference) Option {
	return func(d *Domain) { d.reference = r }
}

func (d *Domain) addPartial(dest Destination, p Partial) {
	if d.partials == nil {
		d.partials = make(map[Destination][]Partial)
	}
	d.partials[dest] = append(d.partials[dest], p)
}

func (d *Domain) prependPartial(dest Destination, p Partial) {
	if d.partials == nil {
		d.partials = make(map[Destination][]Partial)
	}
	d.partials[dest] = append([]Partial{p}, d.partials[dest]...)
}

// Placeholder returns a domain with no type of its own, standing in for
// a column that r will eventually bind to. It is replaced by a resolver
// before rendering.
func Placeholder(identity string, r Reference, nullable bool) *Domain {
	return &Domain{
		identity:    identity,
		typ:         shape.Named("placeholder"),
		nullable:    nullable,
		placeholder: true,
		reference:   r,
	}
}

// ForeignKeyColumn returns a copy of target suitable for a column that
// references it: key, uniqueness and insert exclusions are stripped, the
// identity becomes identity and the binding is r.
func ForeignKeyColumn(identity string, target *Domain, r Reference, nullable bool) *Domain {
	c := target.clone()
	c.identity = identity
	c.placeholder = false
	c.reference = r
	c.nullable = nullable
	c.flags = Flags{}
	c.sqlDefault = nil
	c.comment = ""
	c.issues = nil
	delete(c.partials, ColumnDecorators)
	delete(c.partials, FullColumnDefn)
	if target.flags.AutoIncrement {
		c.schemaType = nil
		c.sqlType = "INTEGER"
	}
	typ := target.typ.Core()
	if nullable {
		typ = typ.Optional()
	}
	c.typ = typ
	return c
}
