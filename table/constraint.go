package table

import (
	"fmt"
	"strings"

	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/dialect/sqlschema"
	"github.com/syssam/sqla/emit"
)

// ConstraintKind identifies a table constraint.
type ConstraintKind int

// Constraint kinds.
const (
	UniqueConstraint ConstraintKind = iota
	CheckConstraint
	PrimaryKeyConstraint
)

// Constraint is a caller declared table constraint.
type Constraint struct {
	Kind    ConstraintKind
	Name    string
	Columns []string
	Expr    string
}

// SQL renders the constraint clause.
func (c Constraint) SQL(ctx *emit.Context) string {
	var sb strings.Builder
	if c.Name != "" {
		sb.WriteString("CONSTRAINT ")
		sb.WriteString(ctx.Names().Domain(c.Name))
		sb.WriteString(" ")
	}
	switch c.Kind {
	case CheckConstraint:
		sb.WriteString("CHECK (")
		sb.WriteString(c.Expr)
		sb.WriteString(")")
	case PrimaryKeyConstraint:
		fmt.Fprintf(&sb, "PRIMARY KEY(%s)", columnList(ctx, c.Columns, nil))
	default:
		fmt.Fprintf(&sb, "UNIQUE(%s)", columnList(ctx, c.Columns, nil))
	}
	return sb.String()
}

// ConstraintBuilder collects the constraints of a table.
type ConstraintBuilder struct {
	constraints []Constraint
}

// Unique adds a UNIQUE constraint over columns.
func (b *ConstraintBuilder) Unique(columns ...string) *ConstraintBuilder {
	return b.add(Constraint{Kind: UniqueConstraint, Columns: columns})
}

// NamedUnique adds a named UNIQUE constraint over columns.
func (b *ConstraintBuilder) NamedUnique(name string, columns ...string) *ConstraintBuilder {
	return b.add(Constraint{Kind: UniqueConstraint, Name: name, Columns: columns})
}

// Check adds a CHECK constraint.
func (b *ConstraintBuilder) Check(expr string) *ConstraintBuilder {
	return b.add(Constraint{Kind: CheckConstraint, Expr: expr})
}

// NamedCheck adds a named CHECK constraint.
func (b *ConstraintBuilder) NamedCheck(name, expr string) *ConstraintBuilder {
	return b.add(Constraint{Kind: CheckConstraint, Name: name, Expr: expr})
}

// PrimaryKey declares a composite primary key.
func (b *ConstraintBuilder) PrimaryKey(columns ...string) *ConstraintBuilder {
	return b.add(Constraint{Kind: PrimaryKeyConstraint, Columns: columns})
}

func (b *ConstraintBuilder) add(c Constraint) *ConstraintBuilder {
	b.constraints = append(b.constraints, c)
	return b
}

// Index is a CREATE INDEX statement over columns of a table.
type Index struct {
	table      *Definition
	name       string
	columns    []string
	unique     bool
	annotation sqlschema.IndexAnnotation
}

// Name sets the index name. Unnamed indexes are named by the dialect.
func (i *Index) Name(name string) *Index {
	i.name = name
	return i
}

// Unique makes the index unique.
func (i *Index) Unique() *Index {
	i.unique = true
	return i
}

// Where makes the index partial.
func (i *Index) Where(predicate string) *Index {
	i.annotation.Where = predicate
	return i
}

// Desc orders column descending.
func (i *Index) Desc(column string) *Index {
	if i.annotation.DescColumns == nil {
		i.annotation.DescColumns = make(map[string]bool)
	}
	i.annotation.DescColumns[column] = true
	return i
}

// Annotate merges SQL specific index settings.
func (i *Index) Annotate(a sqlschema.IndexAnnotation) *Index {
	if a.Where != "" {
		i.annotation.Where = a.Where
	}
	for col, desc := range a.DescColumns {
		if desc {
			i.Desc(col)
		}
	}
	return i
}

// Columns returns the indexed columns.
func (i *Index) Columns() []string { return i.columns }

// IsUnique reports whether the index is unique.
func (i *Index) IsUnique() bool { return i.unique }

// Predicate returns the partial index predicate.
func (i *Index) Predicate() string { return i.annotation.Where }

// SQLSymbol renders the index name.
func (i *Index) SQLSymbol(ctx *emit.Context) string {
	if i.name != "" {
		return ctx.Names().Domain(i.name)
	}
	return ctx.Names().Index(i.table.name, i.columns)
}

// SQL renders the CREATE INDEX statement.
func (i *Index) SQL(ctx *emit.Context) string {
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if i.unique {
		sb.WriteString("UNIQUE ")
	}
	sb.WriteString("INDEX ")
	if i.table.cfg.idempotent && ctx.Dialect.SupportsIfNotExists() {
		sb.WriteString("IF NOT EXISTS ")
	}
	fmt.Fprintf(&sb, "%s ON %s (%s)", i.SQLSymbol(ctx), i.table.SQLSymbol(ctx), columnList(ctx, i.columns, i.annotation.DescColumns))
	if i.annotation.Where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(i.annotation.Where)
	}
	return sb.String()
}

// IndexBuilder collects the indexes of a table.
type IndexBuilder struct {
	table   *Definition
	indexes []*Index
}

// Index adds an index over columns.
func (b *IndexBuilder) Index(columns ...string) *Index {
	idx := &Index{table: b.table, columns: columns}
	b.indexes = append(b.indexes, idx)
	return idx
}

func columnList(ctx *emit.Context, columns []string, desc map[string]bool) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = ctx.Names().Domain(c)
		if desc[c] {
			parts[i] += " DESC"
		}
	}
	return strings.Join(parts, ", ")
}

// comment is a COMMENT ON statement, or a SQL comment for engines that
// have no such statement.
type comment struct {
	table  *Definition
	column string
	text   string
}

func commentsSupported(d dialect.Dialect) bool {
	return d != dialect.SQLite && d != dialect.MySQL
}

func (c comment) SQL(ctx *emit.Context) string {
	if !commentsSupported(ctx.Dialect) {
		target := c.table.name
		if c.column != "" {
			target += "." + c.column
		}
		return ctx.Comment(target+": "+c.text, "")
	}
	names := ctx.NamesIn(c.table.cfg.namespace)
	if c.column == "" {
		return fmt.Sprintf("COMMENT ON TABLE %s IS %s", names.Table(c.table.name), ctx.Literal(c.text))
	}
	return fmt.Sprintf("COMMENT ON COLUMN %s IS %s", names.TableColumn(c.table.name, c.column, true), ctx.Literal(c.text))
}

// Comments returns the table comment followed by the column comments.
func (d *Definition) Comments() []emit.Renderable {
	var out []emit.Renderable
	if d.cfg.comment != "" {
		out = append(out, comment{table: d, text: d.cfg.comment})
	}
	for _, c := range d.coll.Domains() {
		if text := c.Comment(); text != "" {
			out = append(out, comment{table: d, column: c.Identity(), text: text})
		}
	}
	return out
}
