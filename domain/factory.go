package domain

import (
	"fmt"
	"maps"
	"strings"

	"github.com/syssam/sqla"
	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/shape"
)

// constructor builds the SQL side of a domain from a core shape.
type constructor func(core shape.Type) *Domain

// Per-dialect column types of the built-in kinds.
var (
	dateTimeTypes = map[dialect.Dialect]string{
		dialect.Postgres: "TIMESTAMP",
		dialect.DuckDB:   "TIMESTAMP",
		dialect.MSSQL:    "DATETIME2",
	}
	jsonTypes = map[dialect.Dialect]string{
		dialect.Postgres: "JSONB",
		dialect.MSSQL:    "NVARCHAR(MAX)",
	}
	uuidTypes = map[dialect.Dialect]string{
		dialect.SQLite: "TEXT",
		dialect.MSSQL:  "UNIQUEIDENTIFIER",
		dialect.MySQL:  "CHAR(36)",
	}
	bytesTypes = map[dialect.Dialect]string{
		dialect.Postgres: "BYTEA",
		dialect.MSSQL:    "VARBINARY(MAX)",
	}
)

// constructors maps each supported core kind to its domain constructor.
var constructors = map[shape.Kind]constructor{
	shape.KindString:   typed("TEXT", nil),
	shape.KindInteger:  typed("INTEGER", nil),
	shape.KindBigInt:   typed("BIGINT", nil),
	shape.KindFloat:    typed("REAL", nil),
	shape.KindDecimal:  typed("DECIMAL", nil),
	shape.KindBoolean:  typed("BOOLEAN", nil),
	shape.KindDate:     typed("DATE", nil),
	shape.KindDateTime: typed("DATETIME", dateTimeTypes),
	shape.KindJSON:     typed("JSON", jsonTypes),
	shape.KindUUID:     typed("UUID", uuidTypes),
	shape.KindBytes:    typed("BLOB", bytesTypes),
	shape.KindEnum:     enum,
}

func typed(sqlType string, schemaType map[dialect.Dialect]string) constructor {
	return func(shape.Type) *Domain {
		return &Domain{sqlType: sqlType, schemaType: maps.Clone(schemaType)}
	}
}

// enum renders as TEXT guarded by a table level CHECK over its values.
func enum(core shape.Type) *Domain {
	values := core.Values()
	d := &Domain{sqlType: "TEXT"}
	d.addPartial(AfterAllColumns, func(ctx *emit.Context, d *Domain) string {
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = ctx.Literal(v)
		}
		return fmt.Sprintf("CHECK (%s IN (%s))", ctx.Names().Domain(d.identity), strings.Join(quoted, ", "))
	})
	return d
}

// From builds the domain of t under identity. Wrappers are unwrapped to
// find the core kind; nullability is derived from the wrappers and a
// fixed default becomes the column DEFAULT. A kind with no constructor
// fails with *sqla.DomainKindUnsupportedError.
func From(identity string, t shape.Type) (*Domain, error) {
	ctor, ok := constructors[t.Kind()]
	if !ok {
		return nil, sqla.NewDomainKindUnsupportedError(identity, t.KindName())
	}
	d := ctor(t.Core())
	d.identity = identity
	d.typ = t
	d.nullable = t.IsOptional() || t.IsNullable()
	if t.HasDefault() && !t.DefaultIsGenerated() {
		v, _ := t.DefaultValue()
		DefaultValue(v)(d)
	}
	return d, nil
}

// Provide builds a domain for identity from a declaration: a shape.Type
// is dispatched through From, a Provider (custom domains, reference
// placeholders) supplies its own copy.
func Provide(identity string, decl any) (*Domain, error) {
	switch v := decl.(type) {
	case shape.Type:
		return From(identity, v)
	case Provider:
		return v.ProvideDomain(identity)
	case nil:
		return nil, sqla.NewDomainKindUnsupportedError(identity, "nil")
	default:
		return nil, sqla.NewDomainKindUnsupportedError(identity, fmt.Sprintf("%T", decl))
	}
}

// Must returns d or panics on err. For package level declarations.
func Must(d *Domain, err error) *Domain {
	if err != nil {
		panic(err)
	}
	return d
}
