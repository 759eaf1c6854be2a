// Package atlas exports composed tables as an Atlas schema realm, so they
// can be diffed, inspected or migrated with ariga.io/atlas tooling.
//
//	realm, err := atlas.Realm(emit.NewContext(emit.WithDialect(dialect.Postgres)), reg.Tables()...)
//
// Column types are the ones the tables render for the context's dialect.
package atlas

import (
	"fmt"
	"strings"

	"ariga.io/atlas/sql/schema"

	"github.com/syssam/sqla"
	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/shape"
	"github.com/syssam/sqla/table"
)

// Realm converts defs into a realm with one schema per namespace. Tables
// without a namespace land in a schema with an empty name. Every foreign
// key must target a table among defs.
func Realm(ctx *emit.Context, defs ...*table.Definition) (*schema.Realm, error) {
	realm := schema.NewRealm()
	schemas := make(map[string]*schema.Schema)
	tables := make(map[string]*schema.Table, len(defs))
	for _, def := range defs {
		s, ok := schemas[def.Namespace()]
		if !ok {
			s = schema.New(def.Namespace())
			schemas[def.Namespace()] = s
			realm.AddSchemas(s)
		}
		t, err := Table(ctx, def)
		if err != nil {
			return nil, err
		}
		s.AddTables(t)
		tables[key(def.Namespace(), def.Name())] = t
	}
	var errs []error
	for _, def := range defs {
		t := tables[key(def.Namespace(), def.Name())]
		for _, c := range def.ForeignKeys() {
			r := c.Reference()
			refTable, ok := tables[key(r.ForeignNamespace(), r.ForeignTable())]
			if !ok {
				errs = append(errs, sqla.NewUnresolvedReferenceError(def.Name(), c.Identity(), r.ForeignTable(), r.ForeignColumn()))
				continue
			}
			col, _ := t.Column(c.Identity())
			refCol, ok := refTable.Column(r.ForeignColumn())
			if !ok {
				errs = append(errs, sqla.NewUnresolvedReferenceError(def.Name(), c.Identity(), r.ForeignTable(), r.ForeignColumn()))
				continue
			}
			t.AddForeignKeys(&schema.ForeignKey{
				Symbol:     fmt.Sprintf("%s_%s_fkey", def.Name(), c.Identity()),
				Table:      t,
				Columns:    []*schema.Column{col},
				RefTable:   refTable,
				RefColumns: []*schema.Column{refCol},
				OnDelete:   schema.ReferenceOption(r.OnDelete()),
				OnUpdate:   schema.ReferenceOption(r.OnUpdate()),
			})
		}
	}
	if err := sqla.NewAggregateError(errs...); err != nil {
		return nil, err
	}
	return realm, nil
}

func key(namespace, name string) string {
	return namespace + "\x00" + name
}

// Table converts def, without its foreign keys, into an Atlas table.
func Table(ctx *emit.Context, def *table.Definition) (*schema.Table, error) {
	t := schema.NewTable(def.Name())
	for _, c := range def.Columns() {
		if c.IsPlaceholder() {
			return nil, sqla.NewUnresolvedReferenceError(def.Name(), c.Identity(), c.Reference().ForeignTable(), c.Reference().ForeignColumn())
		}
		t.AddColumns(Column(ctx, c))
	}
	if pk := def.PrimaryKey(); len(pk) > 0 {
		parts := make([]*schema.Column, len(pk))
		for i, c := range pk {
			parts[i], _ = t.Column(c.Identity())
		}
		t.SetPrimaryKey(schema.NewPrimaryKey(parts...))
	}
	for _, c := range def.Unique() {
		col, _ := t.Column(c.Identity())
		t.AddIndexes(schema.NewUniqueIndex(fmt.Sprintf("%s_%s_key", def.Name(), c.Identity())).AddColumns(col))
	}
	for _, con := range def.Constraints() {
		switch con.Kind {
		case table.UniqueConstraint:
			name := con.Name
			if name == "" {
				name = fmt.Sprintf("%s_%s_key", def.Name(), strings.Join(con.Columns, "_"))
			}
			idx := schema.NewUniqueIndex(name)
			for _, n := range con.Columns {
				if col, ok := t.Column(n); ok {
					idx.AddColumns(col)
				}
			}
			t.AddIndexes(idx)
		case table.CheckConstraint:
			t.AddChecks(&schema.Check{Name: con.Name, Expr: con.Expr})
		}
	}
	for _, idx := range def.Indexes() {
		name := idx.SQLSymbol(bare(ctx))
		var ai *schema.Index
		if idx.IsUnique() {
			ai = schema.NewUniqueIndex(name)
		} else {
			ai = schema.NewIndex(name)
		}
		for _, n := range idx.Columns() {
			if col, ok := t.Column(n); ok {
				ai.AddColumns(col)
			}
		}
		t.AddIndexes(ai)
	}
	if text := def.TableComment(); text != "" {
		t.SetComment(text)
	}
	return t, nil
}

// bare derives a context that renders names unquoted.
func bare(ctx *emit.Context) *emit.Context {
	c := ctx.Fork()
	c.Naming = dialect.NewNaming(ctx.BareNames(), ctx.BareNames())
	return c
}

// Column converts c into an Atlas column typed for the context's dialect.
func Column(ctx *emit.Context, c *domain.Domain) *schema.Column {
	raw := c.SQLType(domain.ColumnType, ctx)
	col := schema.NewColumn(c.Identity()).SetType(columnType(c, raw))
	col.Type.Raw = raw
	col.SetNull(c.IsNullable() && !c.Flags().PrimaryKey)
	if def, ok := c.SQLDefault(ctx); ok {
		col.SetDefault(&schema.RawExpr{X: def})
	}
	if text := c.Comment(); text != "" {
		col.SetComment(text)
	}
	return col
}

func columnType(c *domain.Domain, raw string) schema.Type {
	t := strings.ToLower(raw)
	switch c.Kind() {
	case shape.KindString:
		return &schema.StringType{T: t}
	case shape.KindInteger, shape.KindBigInt:
		return &schema.IntegerType{T: t}
	case shape.KindFloat:
		return &schema.FloatType{T: t}
	case shape.KindDecimal:
		return &schema.DecimalType{T: t}
	case shape.KindBoolean:
		return &schema.BoolType{T: t}
	case shape.KindDate, shape.KindDateTime:
		return &schema.TimeType{T: t}
	case shape.KindJSON:
		return &schema.JSONType{T: t}
	case shape.KindUUID:
		return &schema.UUIDType{T: t}
	case shape.KindBytes:
		return &schema.BinaryType{T: t}
	case shape.KindEnum:
		return &schema.EnumType{T: t, Values: c.Shape().Core().Values()}
	}
	return &schema.UnsupportedType{T: t}
}
