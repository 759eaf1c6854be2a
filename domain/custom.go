package domain

import (
	"github.com/google/uuid"

	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/shape"
)

// OnDemandPrimaryKey is the default key value of UADefaultablePrimaryKey
// when none is given.
const OnDemandPrimaryKey = "ON_DEMAND_PK"

// declared builds a domain from decl, carrying any failure on the result
// so custom domains can be declared inline and fail when collected.
func declared(decl any) *Domain {
	d, err := Provide("", decl)
	if err != nil {
		return &Domain{typ: shape.Named("invalid"), err: err}
	}
	return d
}

func static(text string) Partial {
	return func(*emit.Context, *Domain) string { return text }
}

// PrimaryKey marks decl as the primary key: PRIMARY KEY precedes any
// other decorator and the column is NOT NULL.
func PrimaryKey(decl any) *Domain {
	d := declared(decl)
	if d.err != nil {
		return d
	}
	d.flags.PrimaryKey = true
	d.nullable = false
	d.prependPartial(ColumnDecorators, static("PRIMARY KEY"))
	return d
}

// TextPrimaryKey is a TEXT primary key supplied by the caller.
func TextPrimaryKey() *Domain {
	return PrimaryKey(shape.String())
}

// AutoIncPrimaryKey is an integer key generated by the engine. It is
// excluded from inserts and may be omitted from insertable records.
func AutoIncPrimaryKey() *Domain {
	d := declared(shape.Integer().Optional())
	d.flags = Flags{
		PrimaryKey:                 true,
		AutoIncrement:              true,
		ExcludedFromInsertDML:      true,
		OptionalInInsertableRecord: true,
	}
	d.schemaType = map[dialect.Dialect]string{dialect.Postgres: "SERIAL"}
	d.addPartial(ColumnDecorators, func(ctx *emit.Context, _ *Domain) string {
		switch ctx.Dialect {
		case dialect.Postgres:
			return "PRIMARY KEY"
		case dialect.MySQL:
			return "PRIMARY KEY AUTO_INCREMENT"
		case dialect.MSSQL:
			return "PRIMARY KEY IDENTITY(1,1)"
		default:
			return "PRIMARY KEY AUTOINCREMENT"
		}
	})
	return d
}

// UADefaultablePrimaryKey is a primary key whose value is supplied by the
// application when the record omits it. A fixed default also becomes the
// column DEFAULT. A t without a default defaults to OnDemandPrimaryKey.
func UADefaultablePrimaryKey(t shape.Type) *Domain {
	if !t.HasDefault() {
		t = t.Default(OnDemandPrimaryKey)
	}
	d := PrimaryKey(t)
	d.flags.OptionalInInsertableRecord = true
	return d
}

// UUIDPrimaryKey is a UUID primary key generated by the application.
func UUIDPrimaryKey() *Domain {
	return UADefaultablePrimaryKey(shape.UUID().Default(func() any { return uuid.NewString() }))
}

// Unique marks decl as unique; the table adds a UNIQUE constraint for it.
func Unique(decl any) *Domain {
	d := declared(decl)
	if d.err != nil {
		return d
	}
	d.flags.Unique = true
	return d
}

// CreatedAt is a timestamp defaulted by the engine. Records may omit it
// and filter criteria ignore it.
func CreatedAt() *Domain {
	d := declared(shape.DateTime().Optional())
	d.sqlDefault = emit.Raw("CURRENT_TIMESTAMP")
	d.flags.OptionalInInsertableRecord = true
	d.flags.ExcludedFromFilterCriteriaDQL = true
	return d
}
