// Package table composes domain collections into table definitions and
// renders them as CREATE TABLE statements.
//
//	person, err := table.Define("person", domains.Shape{
//	    domains.F("id", domain.AutoIncPrimaryKey()),
//	    domains.F("name", shape.String()),
//	    domains.F("nickname", shape.String().Optional()),
//	})
//
// Columns render in declaration order. Table level clauses follow the
// columns: implicit UNIQUE constraints first, then FOREIGN KEY clauses,
// then constraints contributed by the domains, then caller constraints.
package table

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/sqla/dialect/sqlschema"
	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/domains"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/lint"
	"github.com/syssam/sqla/ref"
	"github.com/syssam/sqla/shape"
)

// Option configures a table definition.
type Option func(*config)

type config struct {
	idempotent  bool
	temp        bool
	namespace   string
	comment     string
	constraints func(*ConstraintBuilder)
	indexes     func(*IndexBuilder)
	after       []emit.Renderable
	policy      lint.Policy
	ignore      []string
	registry    *Registry
}

// Idempotent renders CREATE TABLE IF NOT EXISTS where the dialect allows it.
func Idempotent() Option {
	return func(c *config) { c.idempotent = true }
}

// Temp renders a temporary table.
func Temp() Option {
	return func(c *config) { c.temp = true }
}

// Namespace qualifies the table name with a schema at render time.
func Namespace(ns string) Option {
	return func(c *config) { c.namespace = ns }
}

// Comment sets the table comment.
func Comment(text string) Option {
	return func(c *config) { c.comment = text }
}

// Constraints declares table constraints.
func Constraints(fn func(*ConstraintBuilder)) Option {
	return func(c *config) { c.constraints = fn }
}

// Indexes declares indexes created after the table.
func Indexes(fn func(*IndexBuilder)) Option {
	return func(c *config) { c.indexes = fn }
}

// AfterColumns appends raw clauses after every other table clause.
func AfterColumns(rs ...emit.Renderable) Option {
	return func(c *config) { c.after = append(c.after, rs...) }
}

// LintPolicy makes Define fail on the issues p considers fatal.
func LintPolicy(p lint.Policy) Option {
	return func(c *config) { c.policy = p }
}

// IgnoreLint disables the named lint rules.
func IgnoreLint(rules ...string) Option {
	return func(c *config) { c.ignore = append(c.ignore, rules...) }
}

// WithRegistry registers the definition with r and lets its references
// resolve against the tables r already knows.
func WithRegistry(r *Registry) Option {
	return func(c *config) { c.registry = r }
}

// Definition is a composed table.
type Definition struct {
	name        string
	cfg         config
	coll        *domains.Collection
	sources     map[string]*ref.Source
	constraints []Constraint
	indexes     []*Index
	issues      []lint.Issue
}

// Define composes a table named name from s.
func Define(name string, s domains.Shape, opts ...Option) (*Definition, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if strings.TrimSpace(name) == "" {
		return nil, NewDefinitionError("", "", "table name is empty", nil)
	}
	coll, err := domains.New(s, domains.WithIdentity(name))
	if err != nil {
		return nil, NewDefinitionError(name, "", "invalid columns", err)
	}
	def := &Definition{
		name:    name,
		cfg:     cfg,
		coll:    coll,
		sources: make(map[string]*ref.Source),
	}
	if err := ref.ResolveAll(coll, def.owner(), def.lookup); err != nil {
		return nil, NewDefinitionError(name, "", "unresolvable references", err)
	}
	if cfg.constraints != nil {
		b := &ConstraintBuilder{}
		cfg.constraints(b)
		def.constraints = b.constraints
	}
	if cfg.indexes != nil {
		b := &IndexBuilder{table: def}
		cfg.indexes(b)
		def.indexes = b.indexes
	}
	if res := ValidateTable(def); res.HasErrors() {
		return nil, NewDefinitionError(name, "", "invalid definition", res.Err())
	}
	sink := lint.NewSink()
	lintRules(def).Lint(sink)
	def.issues = sink.Issues()
	if err := cfg.policy.Check(def.LintIssues()); err != nil {
		return nil, NewDefinitionError(name, "", "lint", err)
	}
	if cfg.registry != nil {
		if err := cfg.registry.Register(def); err != nil {
			return nil, err
		}
	}
	return def, nil
}

// Must returns def or panics on err.
func Must(def *Definition, err error) *Definition {
	if err != nil {
		panic(err)
	}
	return def
}

func (d *Definition) owner() ref.Owner {
	return ref.Owner{Table: d.name, Namespace: d.cfg.namespace}
}

func (d *Definition) lookup(table, column string) (*ref.Source, bool) {
	if table == d.name {
		return d.Source(column)
	}
	if d.cfg.registry != nil {
		return d.cfg.registry.Lookup(table, column)
	}
	return nil, false
}

// Name returns the table name.
func (d *Definition) Name() string { return d.name }

// Namespace returns the schema the table is qualified with, if any.
func (d *Definition) Namespace() string { return d.cfg.namespace }

// TableComment returns the table comment.
func (d *Definition) TableComment() string { return d.cfg.comment }

// IsIdempotent reports whether the table renders IF NOT EXISTS.
func (d *Definition) IsIdempotent() bool { return d.cfg.idempotent }

// Collection returns the table's domain collection.
func (d *Definition) Collection() *domains.Collection { return d.coll }

// Columns returns the column domains in declaration order.
func (d *Definition) Columns() []*domain.Domain { return d.coll.Domains() }

// Column returns the column named name.
func (d *Definition) Column(name string) (*domain.Domain, bool) { return d.coll.Get(name) }

// PrimaryKey returns the primary key columns, in declaration order. A
// composite key declared with ConstraintBuilder.PrimaryKey comes after
// any column flagged as a key.
func (d *Definition) PrimaryKey() []*domain.Domain {
	pk := d.coll.Filter(func(c *domain.Domain) bool { return c.Flags().PrimaryKey })
	for _, c := range d.constraints {
		if c.Kind != PrimaryKeyConstraint {
			continue
		}
		for _, name := range c.Columns {
			if col, ok := d.coll.Get(name); ok && !slices.Contains(pk, col) {
				pk = append(pk, col)
			}
		}
	}
	return pk
}

// Unique returns the columns flagged unique.
func (d *Definition) Unique() []*domain.Domain {
	return d.coll.Filter(func(c *domain.Domain) bool { return c.Flags().Unique })
}

// ForeignKeys returns the columns carrying a reference.
func (d *Definition) ForeignKeys() []*domain.Domain {
	return d.coll.Filter(func(c *domain.Domain) bool { return c.Reference() != nil })
}

// InsertableColumns returns the columns insert statements write to.
func (d *Definition) InsertableColumns() []*domain.Domain {
	return d.coll.Filter(func(c *domain.Domain) bool { return !c.Flags().ExcludedFromInsertDML })
}

// FilterableColumns returns the columns filter criteria may compare.
func (d *Definition) FilterableColumns() []*domain.Domain {
	return d.coll.Filter(func(c *domain.Domain) bool { return !c.Flags().ExcludedFromFilterCriteriaDQL })
}

// Constraints returns the caller declared constraints.
func (d *Definition) Constraints() []Constraint { return slices.Clone(d.constraints) }

// Indexes returns the indexes declared for the table.
func (d *Definition) Indexes() []*Index { return slices.Clone(d.indexes) }

// Source returns the referenceable source for column.
func (d *Definition) Source(column string) (*ref.Source, bool) {
	if s, ok := d.sources[column]; ok {
		return s, true
	}
	if _, ok := d.coll.Get(column); !ok {
		return nil, false
	}
	s := ref.NewSource(d.owner(), d.coll, column)
	d.sources[column] = s
	return s, true
}

// References returns a placeholder referencing column of d, for use in
// another table's shape.
func (d *Definition) References(column string) *ref.Placeholder {
	if s, ok := d.Source(column); ok {
		return ref.From(s)
	}
	return ref.To(d.name, column)
}

// BelongsTo references column of d as the parent of the declaring table,
// which d exposes as collection.
func (d *Definition) BelongsTo(column, collection string) *ref.Placeholder {
	return d.References(column).BelongsTo(collection)
}

// Validate checks rec against the table's closed record shape.
func (d *Definition) Validate(rec shape.Record) (shape.Record, error) {
	return d.coll.Validate(rec)
}

// LintIssues returns the table's lint issues followed by those attached to
// its columns.
func (d *Definition) LintIssues() []lint.Issue {
	issues := slices.Clone(d.issues)
	for _, c := range d.coll.Domains() {
		issues = append(issues, c.LintIssues()...)
	}
	return issues
}

// SQLSymbol renders the table name, qualified by its namespace.
func (d *Definition) SQLSymbol(ctx *emit.Context) string {
	return ctx.NamesIn(d.cfg.namespace).Table(d.name)
}

// SQL renders the CREATE TABLE statement. A reference still pending
// resolution fails the render.
func (d *Definition) SQL(ctx *emit.Context) string {
	if err := ref.Unresolved(d.coll); err != nil {
		ctx.Fail(err)
		return ""
	}
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if d.cfg.temp {
		sb.WriteString("TEMP ")
	}
	sb.WriteString("TABLE ")
	if d.cfg.idempotent && ctx.Dialect.SupportsIfNotExists() {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(d.SQLSymbol(ctx))

	clauses := d.columnClauses(ctx)
	clauses = append(clauses, d.afterColumnClauses(ctx)...)
	if ctx.Text.Layout == emit.SingleLine {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(clauses, ", "))
		sb.WriteString(")")
		return sb.String()
	}
	for i, c := range clauses {
		clauses[i] = ctx.Indent(emit.DefineTableColumn, c)
	}
	sb.WriteString(" (\n")
	sb.WriteString(strings.Join(clauses, ",\n"))
	sb.WriteString("\n)")
	return sb.String()
}

// columnClauses is the first pass: one inline definition per column.
func (d *Definition) columnClauses(ctx *emit.Context) []string {
	cols := d.coll.Domains()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = columnClause(ctx, c)
	}
	return out
}

func columnClause(ctx *emit.Context, c *domain.Domain) string {
	if full := c.RenderDecorators(ctx, domain.FullColumnDefn); len(full) > 0 {
		return strings.Join(full, " ")
	}
	parts := []string{c.SQLSymbol(ctx), c.SQLType(domain.ColumnType, ctx)}
	parts = append(parts, c.RenderDecorators(ctx, domain.ColumnDecorators)...)
	if !c.IsNullable() {
		parts = append(parts, "NOT NULL")
	}
	if def, ok := c.SQLDefault(ctx); ok {
		parts = append(parts, "DEFAULT "+def)
	}
	return strings.Join(parts, " ")
}

// afterColumnClauses is the second pass over the columns.
func (d *Definition) afterColumnClauses(ctx *emit.Context) []string {
	var out []string
	for _, c := range d.Unique() {
		out = append(out, fmt.Sprintf("UNIQUE(%s)", c.SQLSymbol(ctx)))
	}
	for _, c := range d.ForeignKeys() {
		out = append(out, foreignKeyClause(ctx, c))
	}
	for _, c := range d.coll.Domains() {
		out = append(out, c.RenderDecorators(ctx, domain.AfterAllColumns)...)
	}
	for _, c := range d.constraints {
		out = append(out, c.SQL(ctx))
	}
	for _, r := range d.cfg.after {
		if s := r.SQL(ctx); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// foreignKeyClause reads the reference at render time, so a self
// reference names the table it ended up in.
func foreignKeyClause(ctx *emit.Context, c *domain.Domain) string {
	r := c.Reference()
	return fmt.Sprintf("FOREIGN KEY(%s) REFERENCES %s(%s)%s",
		c.SQLSymbol(ctx),
		ctx.NamesIn(r.ForeignNamespace()).Table(r.ForeignTable()),
		ctx.Names().Domain(r.ForeignColumn()),
		sqlschema.ReferentialActions(r.OnDelete(), r.OnUpdate()),
	)
}

// Statements returns the CREATE TABLE statement followed by its indexes
// and comments.
func (d *Definition) Statements() []emit.Renderable {
	out := []emit.Renderable{d}
	for _, idx := range d.indexes {
		out = append(out, idx)
	}
	return append(out, d.Comments()...)
}
