package dml_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqla"
	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/dml"
	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/domains"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/internal/sqlitetest"
	"github.com/syssam/sqla/lint"
	"github.com/syssam/sqla/shape"
	"github.com/syssam/sqla/table"
)

func person(t *testing.T) *table.Definition {
	t.Helper()
	def, err := table.Define("person", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("name", shape.String()),
		domains.F("nickname", shape.String().Optional()),
	})
	require.NoError(t, err)
	return def
}

func render(t *testing.T, r emit.Renderable, opts ...emit.ContextOption) string {
	t.Helper()
	text, err := emit.Render(emit.NewContext(opts...), r)
	require.NoError(t, err)
	return text
}

func TestInsertPerson(t *testing.T) {
	stmt, err := dml.Insert(person(t), shape.Record{"name": "Ann"}, dml.ReturningPrimaryKeys())
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "person" ("name", "nickname") VALUES ('Ann', NULL) RETURNING "id"`,
		render(t, stmt),
	)
	assert.Empty(t, stmt.LintIssues())
}

func TestInsertValidation(t *testing.T) {
	def := person(t)

	_, err := dml.Insert(def, shape.Record{"nickname": "Annie"})
	require.Error(t, err)
	assert.True(t, sqla.IsSchemaViolation(err))

	_, err = dml.Insert(def, shape.Record{"name": 42})
	assert.True(t, sqla.IsSchemaViolation(err))

	_, err = dml.InsertRows(def, []shape.Record{{"name": "Ann"}, {"name": nil}})
	assert.Error(t, err)
}

func TestInsertDefaults(t *testing.T) {
	def, err := table.Define("event", domains.Shape{
		domains.F("id", domain.UUIDPrimaryKey()),
		domains.F("body", shape.String()),
		domains.F("created_at", domain.CreatedAt()),
	})
	require.NoError(t, err)

	stmt, err := dml.Insert(def, shape.Record{"body": "hello"})
	require.NoError(t, err)
	text := render(t, stmt)
	assert.Regexp(t, `^INSERT INTO "event" \("id", "body"\) VALUES \('[0-9a-f-]{36}', 'hello'\)$`, text)
	assert.Len(t, stmt.Columns(), 2)

	db := sqlitetest.Open(t)
	ddl := render(t, def, emit.WithDialect(dialect.SQLite))
	sqlitetest.Exec(t, db, ddl, text)
	assert.Equal(t, 1, sqlitetest.Count(t, db, `SELECT * FROM "event" WHERE "created_at" IS NOT NULL`))
}

func TestInsertRows(t *testing.T) {
	def := person(t)
	stmt, err := dml.InsertRows(def, []shape.Record{
		{"name": "Ann"},
		{"name": "Bob", "nickname": "Bobby"},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO \"person\" (\"name\", \"nickname\")\n"+
			"       VALUES ('Ann', NULL),\n"+
			"              ('Bob', 'Bobby')",
		render(t, stmt),
	)
	single := render(t, stmt, emit.WithLayout(emit.SingleLine))
	assert.Equal(t, `INSERT INTO "person" ("name", "nickname") VALUES ('Ann', NULL), ('Bob', 'Bobby')`, single)

	db := sqlitetest.Open(t)
	sqlitetest.Exec(t, db, render(t, def, emit.WithDialect(dialect.SQLite)), single)
	assert.Equal(t, 2, sqlitetest.Count(t, db, `SELECT * FROM "person"`))
}

func TestInsertReturning(t *testing.T) {
	def := person(t)
	rec := shape.Record{"name": "Ann", "nickname": "Annie"}
	tests := []struct {
		name string
		opt  dml.Option
		want string
	}{
		{"all", dml.ReturningAll(), " RETURNING *"},
		{"columns", dml.ReturningColumns("id", "name"), ` RETURNING "id", "name"`},
		{"exprs", dml.ReturningExprs(emit.Raw("length(name)")), " RETURNING length(name)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := dml.Insert(def, rec, tt.opt)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(render(t, stmt), tt.want))
		})
	}
}

func TestInsertClauses(t *testing.T) {
	def := person(t)
	stmt, err := dml.Insert(def, shape.Record{"name": "Ann"},
		dml.ReturningPrimaryKeys(),
		dml.OnConflict(emit.Raw("ON CONFLICT DO NOTHING")),
		dml.Where(emit.Raw("WHERE 1 = 1")),
		dml.ColumnFilter(func(col *domain.Domain, rec shape.Record) bool {
			_, ok := rec[col.Identity()]
			return ok
		}),
		dml.Transform(func(sql string, _ *emit.Context) string { return sql + " -- generated" }),
	)
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "person" ("name") VALUES ('Ann') WHERE 1 = 1 ON CONFLICT DO NOTHING RETURNING "id" -- generated`,
		render(t, stmt),
	)
}

func TestRawInsertSubStatement(t *testing.T) {
	def := person(t)
	stmt := dml.RawInsert(def, shape.Record{
		"name":     emit.Raw(`SELECT "name" FROM "person" WHERE "id" = 1`),
		"nickname": "copy",
		"age":      30,
	})
	ctx := emit.NewContext()
	text, err := emit.Render(ctx, stmt)
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "person" ("name", "nickname") VALUES ((SELECT "name" FROM "person" WHERE "id" = 1), 'copy')`,
		text,
	)

	issues := ctx.Lint.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, lint.WarningDML, issues[0].Consequence)
	assert.Equal(t, "person.age", issues[0].Location)
}

func TestInsertDefaultValues(t *testing.T) {
	def, err := table.Define("tick", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("at", domain.CreatedAt()),
	})
	require.NoError(t, err)
	stmt, err := dml.Insert(def, shape.Record{}, dml.ReturningPrimaryKeys())
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "tick" DEFAULT VALUES RETURNING "id"`, render(t, stmt))
}
