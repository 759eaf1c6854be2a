package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqla"
	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/dialect/sqlschema"
	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/lint"
	"github.com/syssam/sqla/shape"
)

func TestFromKinds(t *testing.T) {
	ctx := emit.NewContext()
	tests := []struct {
		typ  shape.Type
		want string
	}{
		{shape.String(), "TEXT"},
		{shape.Integer(), "INTEGER"},
		{shape.BigInt(), "BIGINT"},
		{shape.Float(), "REAL"},
		{shape.Decimal(), "DECIMAL"},
		{shape.Boolean(), "BOOLEAN"},
		{shape.Date(), "DATE"},
		{shape.DateTime(), "DATETIME"},
		{shape.JSON(), "JSON"},
		{shape.UUID(), "UUID"},
		{shape.Bytes(), "BLOB"},
		{shape.Enum("a"), "TEXT"},
		{shape.String().Optional().Nullable(), "TEXT"},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			d, err := domain.From("col", tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.SQLType(domain.ColumnType, ctx))
			assert.Equal(t, "col", d.Identity())
		})
	}
}

func TestFromUnsupported(t *testing.T) {
	_, err := domain.From("geom", shape.Named("geometry").Optional())
	require.Error(t, err)
	assert.True(t, sqla.IsDomainKindUnsupported(err))
	assert.Contains(t, err.Error(), `"geometry"`)

	_, err = domain.Provide("x", 42)
	assert.True(t, sqla.IsDomainKindUnsupported(err))
	_, err = domain.Provide("x", nil)
	assert.True(t, sqla.IsDomainKindUnsupported(err))
}

func TestNullability(t *testing.T) {
	tests := []struct {
		name string
		typ  shape.Type
		want bool
	}{
		{"required", shape.String(), false},
		{"optional", shape.String().Optional(), true},
		{"nullable", shape.String().Nullable(), true},
		{"defaulted", shape.String().Default("x"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := domain.From("c", tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.IsNullable())
		})
	}
}

func TestDialectSchemaTypes(t *testing.T) {
	d := domain.Must(domain.From("at", shape.DateTime()))
	assert.Equal(t, "TIMESTAMP", d.SQLType(domain.ColumnType, emit.NewContext(emit.WithDialect(dialect.Postgres))))
	assert.Equal(t, "DATETIME", d.SQLType(domain.ColumnType, emit.NewContext(emit.WithDialect(dialect.SQLite))))

	custom := d.With(domain.SchemaType(map[dialect.Dialect]string{dialect.SQLite: "TEXT"}))
	assert.Equal(t, "TEXT", custom.SQLType(domain.ColumnType, emit.NewContext(emit.WithDialect(dialect.SQLite))))
	assert.Equal(t, "DATETIME", d.SQLType(domain.ColumnType, emit.NewContext(emit.WithDialect(dialect.SQLite))))

	arg := d.With(domain.PurposeType(domain.RoutineArg, "VARCHAR"))
	assert.Equal(t, "VARCHAR", arg.SQLType(domain.RoutineArg, emit.NewContext()))
	assert.Equal(t, "DATETIME", arg.SQLType(domain.ColumnType, emit.NewContext()))
}

func TestDefaults(t *testing.T) {
	ctx := emit.NewContext()
	d := domain.Must(domain.From("role", shape.String().Default("member")))
	text, ok := d.SQLDefault(ctx)
	require.True(t, ok)
	assert.Equal(t, "'member'", text)

	gen := domain.Must(domain.From("token", shape.String().Default(func() any { return "x" })))
	assert.False(t, gen.HasSQLDefault())

	expr := d.With(domain.Default(emit.Raw("CURRENT_TIMESTAMP")))
	text, _ = expr.SQLDefault(ctx)
	assert.Equal(t, "CURRENT_TIMESTAMP", text)
}

func TestImmutability(t *testing.T) {
	base := domain.Must(domain.From("name", shape.String()))
	changed := base.With(domain.Comment("person name"), domain.Nullable(true), domain.ExcludeFromFilter())
	assert.Empty(t, base.Comment())
	assert.False(t, base.IsNullable())
	assert.False(t, base.Flags().ExcludedFromFilterCriteriaDQL)
	assert.Equal(t, "person name", changed.Comment())
	assert.True(t, changed.Flags().ExcludedFromFilterCriteriaDQL)

	renamed := base.Rename("title")
	assert.Equal(t, "name", base.Identity())
	assert.Equal(t, "title", renamed.Identity())
	assert.NotSame(t, base, renamed)

	provided, err := base.ProvideDomain("alias")
	require.NoError(t, err)
	assert.Equal(t, "alias", provided.Identity())
	assert.NotSame(t, base, provided)
}

func TestDecorators(t *testing.T) {
	ctx := emit.NewContext()
	d := domain.Must(domain.From("code", shape.String())).With(
		domain.Decorate(domain.ColumnDecorators, func(*emit.Context, *domain.Domain) string { return "COLLATE NOCASE" }),
	)
	assert.Equal(t, []string{"COLLATE NOCASE"}, d.RenderDecorators(ctx, domain.ColumnDecorators))
	assert.Empty(t, d.RenderDecorators(ctx, domain.AfterAllColumns))
	assert.True(t, d.HasDecorators(domain.ColumnDecorators))
	assert.False(t, d.HasDecorators(domain.FullColumnDefn))
}

func TestEnumCheck(t *testing.T) {
	ctx := emit.NewContext()
	d := domain.Must(domain.From("status", shape.Enum("open", "closed")))
	assert.Equal(t, []string{`CHECK ("status" IN ('open', 'closed'))`}, d.RenderDecorators(ctx, domain.AfterAllColumns))

	// the check follows the domain's identity when it is reused
	renamed := d.Rename("state")
	assert.Equal(t, []string{`CHECK ("state" IN ('open', 'closed'))`}, renamed.RenderDecorators(ctx, domain.AfterAllColumns))
}

func TestAnnotate(t *testing.T) {
	ctx := emit.NewContext()
	d := domain.Must(domain.From("code", shape.String())).With(domain.Annotate(sqlschema.Merge(
		sqlschema.ColumnType("VARCHAR"),
		sqlschema.Size(12),
		sqlschema.Collation("NOCASE"),
		sqlschema.Check("length(code) > 2"),
		sqlschema.Default("'X'"),
	)))
	assert.Equal(t, "VARCHAR(12)", d.SQLType(domain.ColumnType, ctx))
	assert.Equal(t, []string{"COLLATE NOCASE"}, d.RenderDecorators(ctx, domain.ColumnDecorators))
	assert.Equal(t, []string{"CHECK (length(code) > 2)"}, d.RenderDecorators(ctx, domain.AfterAllColumns))
	text, _ := d.SQLDefault(ctx)
	assert.Equal(t, "'X'", text)
}

func TestTransform(t *testing.T) {
	d := domain.Must(domain.From("flag", shape.Boolean())).With(domain.Transform(func(v any) any {
		if b, ok := v.(bool); ok && b {
			return 1
		}
		return 0
	}))
	assert.Equal(t, 1, d.TransformInsertableValue(true))
	assert.Equal(t, "x", domain.Must(domain.From("s", shape.String())).TransformInsertableValue("x"))
}

func TestPrimaryKeys(t *testing.T) {
	ctx := emit.NewContext()

	t.Run("text", func(t *testing.T) {
		d := domain.TextPrimaryKey()
		require.NoError(t, d.Err())
		assert.True(t, d.Flags().PrimaryKey)
		assert.False(t, d.IsNullable())
		assert.Equal(t, []string{"PRIMARY KEY"}, d.RenderDecorators(ctx, domain.ColumnDecorators))
	})

	t.Run("auto increment", func(t *testing.T) {
		d := domain.AutoIncPrimaryKey()
		f := d.Flags()
		assert.True(t, f.PrimaryKey && f.AutoIncrement && f.ExcludedFromInsertDML && f.OptionalInInsertableRecord)
		assert.True(t, d.IsNullable())
		assert.Equal(t, "INTEGER", d.SQLType(domain.ColumnType, ctx))
		assert.Equal(t, []string{"PRIMARY KEY AUTOINCREMENT"}, d.RenderDecorators(ctx, domain.ColumnDecorators))

		pg := emit.NewContext(emit.WithDialect(dialect.Postgres))
		assert.Equal(t, "SERIAL", d.SQLType(domain.ColumnType, pg))
		assert.Equal(t, []string{"PRIMARY KEY"}, d.RenderDecorators(pg, domain.ColumnDecorators))

		ms := emit.NewContext(emit.WithDialect(dialect.MSSQL))
		assert.Equal(t, []string{"PRIMARY KEY IDENTITY(1,1)"}, d.RenderDecorators(ms, domain.ColumnDecorators))
	})

	t.Run("ua defaultable", func(t *testing.T) {
		d := domain.UADefaultablePrimaryKey(shape.String())
		assert.True(t, d.Flags().OptionalInInsertableRecord)
		assert.False(t, d.IsNullable())
		text, ok := d.SQLDefault(ctx)
		require.True(t, ok)
		assert.Equal(t, "'ON_DEMAND_PK'", text)
	})

	t.Run("uuid", func(t *testing.T) {
		d := domain.UUIDPrimaryKey()
		assert.False(t, d.HasSQLDefault())
		v1, _ := d.Shape().DefaultValue()
		v2, _ := d.Shape().DefaultValue()
		assert.NotEqual(t, v1, v2)
	})

	t.Run("invalid declaration", func(t *testing.T) {
		d := domain.PrimaryKey(shape.Named("geometry"))
		require.Error(t, d.Err())
		_, err := d.ProvideDomain("id")
		assert.True(t, sqla.IsDomainKindUnsupported(err))
	})

	t.Run("pk precedes other decorators", func(t *testing.T) {
		collated := domain.Must(domain.From("code", shape.String())).With(domain.Annotate(sqlschema.Collation("NOCASE")))
		d := domain.PrimaryKey(collated)
		assert.Equal(t, []string{"PRIMARY KEY", "COLLATE NOCASE"}, d.RenderDecorators(ctx, domain.ColumnDecorators))
		assert.Equal(t, []string{"COLLATE NOCASE"}, collated.RenderDecorators(ctx, domain.ColumnDecorators))
	})
}

func TestUniqueAndCreatedAt(t *testing.T) {
	u := domain.Unique(shape.String())
	assert.True(t, u.Flags().Unique)

	c := domain.CreatedAt()
	assert.True(t, c.IsNullable())
	assert.True(t, c.Flags().OptionalInInsertableRecord)
	assert.True(t, c.Flags().ExcludedFromFilterCriteriaDQL)
	text, _ := c.SQLDefault(emit.NewContext())
	assert.Equal(t, "CURRENT_TIMESTAMP", text)
}

func TestLintIssues(t *testing.T) {
	issue := lint.Issue{Message: "legacy column", Consequence: lint.ConventionDDL}
	d := domain.Must(domain.From("x", shape.String())).With(domain.Lint(issue))
	assert.Equal(t, []lint.Issue{issue}, d.LintIssues())
}

type fakeRef struct{ target *domain.Domain }

func (f fakeRef) ForeignTable() string              { return "author" }
func (f fakeRef) ForeignNamespace() string          { return "" }
func (f fakeRef) ForeignColumn() string             { return "id" }
func (f fakeRef) ForeignDomain() *domain.Domain     { return f.target }
func (f fakeRef) Resolved() bool                    { return f.target != nil }
func (f fakeRef) OnDelete() sqlschema.CascadeAction { return "" }
func (f fakeRef) OnUpdate() sqlschema.CascadeAction { return "" }
func (f fakeRef) Rebind(string) domain.Reference    { return fakeRef{target: f.target} }

func TestPlaceholder(t *testing.T) {
	ctx := emit.NewContext()
	p := domain.Placeholder("author_id", fakeRef{}, false)
	assert.True(t, p.IsPlaceholder())
	assert.Empty(t, p.SQLType(domain.ColumnType, ctx))
	err := ctx.Err()
	require.Error(t, err)
	assert.True(t, sqla.IsUnresolvedReference(err))
	assert.Contains(t, err.Error(), "author.id")
}

func TestForeignKeyColumn(t *testing.T) {
	ctx := emit.NewContext()
	target := domain.AutoIncPrimaryKey().Rename("id")
	fk := domain.ForeignKeyColumn("author_id", target, fakeRef{target: target}, false)
	assert.Equal(t, "author_id", fk.Identity())
	assert.Equal(t, domain.Flags{}, fk.Flags())
	assert.False(t, fk.IsNullable())
	assert.Equal(t, "INTEGER", fk.SQLType(domain.ColumnType, emit.NewContext(emit.WithDialect(dialect.Postgres))))
	assert.Empty(t, fk.RenderDecorators(ctx, domain.ColumnDecorators))
	assert.Equal(t, "author", fk.Reference().ForeignTable())

	text := domain.Must(domain.From("code", shape.String()))
	optional := domain.ForeignKeyColumn("code_ref", text, fakeRef{target: text}, true)
	assert.True(t, optional.IsNullable())
	assert.True(t, optional.Shape().IsOptional())
}
