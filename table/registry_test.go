package table_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqla"
	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/domains"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/internal/sqlitetest"
	"github.com/syssam/sqla/ref"
	"github.com/syssam/sqla/shape"
	"github.com/syssam/sqla/table"
)

func library(t *testing.T, reg *table.Registry) {
	t.Helper()
	_, err := reg.Define("book", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("title", shape.String()),
		domains.F("author_id", ref.To("author", "id").BelongsTo("")),
	}, table.Indexes(func(b *table.IndexBuilder) { b.Index("title") }))
	require.NoError(t, err)
	_, err = reg.Define("author", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("name", shape.String()),
		domains.F("mentor_id", ref.Self("id").Optional()),
	})
	require.NoError(t, err)
}

func TestRegistryResolve(t *testing.T) {
	var logs bytes.Buffer
	reg := table.NewRegistry(table.WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	library(t, reg)

	book, ok := reg.Table("book")
	require.True(t, ok)
	_, err := emit.Render(emit.NewContext(), book)
	assert.True(t, sqla.IsUnresolvedReference(err), "forward reference pending before Resolve")

	require.NoError(t, reg.Resolve())
	require.NoError(t, reg.Resolve(), "resolving twice")
	assert.Contains(t, logs.String(), "from=book.author_id to=author.id nature=belongs-to resolved=true")

	assert.Equal(t,
		`CREATE TABLE "book" ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "title" TEXT NOT NULL, "author_id" INTEGER NOT NULL, `+
			`FOREIGN KEY("author_id") REFERENCES "author"("id"))`,
		render(t, book, singleLine()),
	)

	ordered, err := reg.Ordered()
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, "author", ordered[0].Name())
	assert.Equal(t, "book", ordered[1].Name())

	src, ok := reg.Lookup("author", "id")
	require.True(t, ok)
	assert.Len(t, src.Destinations(), 2)
	assert.False(t, reg.Validate().HasErrors())
}

func TestRegistryUnresolved(t *testing.T) {
	reg := table.NewRegistry()
	_, err := reg.Define("book", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("publisher_id", ref.To("publisher", "id")),
	})
	require.NoError(t, err)

	err = reg.Resolve()
	require.Error(t, err)
	assert.True(t, sqla.IsUnresolvedReference(err))

	res := reg.Validate()
	require.True(t, res.HasErrors())
	assert.Contains(t, res.String(), `foreign key references non-existent table "publisher"`)
}

func TestRegistryDuplicate(t *testing.T) {
	reg := table.NewRegistry()
	_, err := reg.Define("tag", domains.Shape{domains.F("id", domain.TextPrimaryKey())})
	require.NoError(t, err)
	_, err = reg.Define("tag", domains.Shape{domains.F("id", domain.TextPrimaryKey())})
	assert.True(t, sqla.IsDuplicateIdentity(err))
}

func TestRegistryCycle(t *testing.T) {
	reg := table.NewRegistry()
	_, err := reg.Define("chicken", domains.Shape{
		domains.F("id", domain.TextPrimaryKey()),
		domains.F("egg_id", ref.To("egg", "id").Optional()),
	})
	require.NoError(t, err)
	_, err = reg.Define("egg", domains.Shape{
		domains.F("id", domain.TextPrimaryKey()),
		domains.F("chicken_id", ref.To("chicken", "id")),
	})
	require.NoError(t, err)
	require.NoError(t, reg.Resolve())

	_, err = reg.Ordered()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chicken, egg")

	_, err = emit.Render(emit.NewContext(), reg.Script())
	assert.Error(t, err)
}

func TestRegistryScript(t *testing.T) {
	reg := table.NewRegistry()
	library(t, reg)
	require.NoError(t, reg.Resolve())

	script, err := emit.Render(emit.NewContext(emit.WithDialect(dialect.SQLite)), reg.Script())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(script, "-- no lint issues\n\nCREATE TABLE \"author\""), script)
	assert.Contains(t, script, "\n);\n\nCREATE TABLE \"book\"")
	assert.True(t, strings.HasSuffix(script, `CREATE INDEX "idx_book__title" ON "book" ("title");`), script)

	db := sqlitetest.Open(t)
	sqlitetest.Exec(t, db, script,
		`INSERT INTO "author" ("name") VALUES ('Ann')`,
		`INSERT INTO "book" ("title", "author_id") VALUES ('Go', 1)`,
	)
	assert.Equal(t, 1, sqlitetest.Count(t, db, `SELECT * FROM "book"`))
	assert.Empty(t, reg.LintIssues())
}
