package sample_test

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/domains"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/internal/sqlitetest"
	"github.com/syssam/sqla/ref"
	"github.com/syssam/sqla/sample"
	"github.com/syssam/sqla/shape"
	"github.com/syssam/sqla/table"
)

func registry(t *testing.T) (*table.Definition, *table.Definition) {
	t.Helper()
	reg := table.NewRegistry()
	author, err := reg.Define("author", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("name", shape.String()),
		domains.F("email", shape.String()),
		domains.F("bio", shape.String().Optional()),
		domains.F("created_at", domain.CreatedAt()),
	})
	require.NoError(t, err)
	book, err := reg.Define("book", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("title", shape.String()),
		domains.F("genre", shape.Enum("fiction", "essay")),
		domains.F("pages", shape.Integer()),
		domains.F("published", shape.Date()),
		domains.F("author_id", author.References("id")),
	})
	require.NoError(t, err)
	require.NoError(t, reg.Resolve())
	return author, book
}

func TestRecords(t *testing.T) {
	author, book := registry(t)

	recs := sample.Records(author, 5, sample.Seed(7))
	require.Len(t, recs, 5)
	for _, rec := range recs {
		assert.NotContains(t, rec, "id")
		assert.NotContains(t, rec, "created_at")
		_, err := mail.ParseAddress(rec["email"].(string))
		assert.NoError(t, err)
		_, err = author.Validate(rec)
		assert.NoError(t, err)
	}
	assert.Equal(t, recs, sample.Records(author, 5, sample.Seed(7)))

	for _, rec := range sample.Records(book, 5, sample.Seed(7)) {
		assert.Contains(t, []any{"fiction", "essay"}, rec["genre"])
		assert.GreaterOrEqual(t, rec["author_id"], 1)
		assert.LessOrEqual(t, rec["author_id"], 5)
	}
}

func TestOptions(t *testing.T) {
	author, book := registry(t)

	for _, rec := range sample.Records(author, 10, sample.OmitOptional(1)) {
		assert.NotContains(t, rec, "bio")
	}
	for _, rec := range sample.Records(author, 10, sample.OmitOptional(0)) {
		assert.Contains(t, rec, "bio")
	}
	recs := sample.Records(book, 3, sample.ForeignKeys(func(col *domain.Domain, r domain.Reference) any {
		assert.Equal(t, "author", r.ForeignTable())
		return 1
	}))
	for _, rec := range recs {
		assert.Equal(t, 1, rec["author_id"])
	}
}

func TestInsertExecutes(t *testing.T) {
	author, book := registry(t)
	ctx := func() *emit.Context { return emit.NewContext(emit.WithDialect(dialect.SQLite)) }

	db := sqlitetest.Open(t)
	for _, def := range []*table.Definition{author, book} {
		ddl, err := emit.Render(ctx(), def)
		require.NoError(t, err)
		sqlitetest.Exec(t, db, ddl)
	}

	authors, err := sample.Insert(author, 4, sample.Seed(1))
	require.NoError(t, err)
	books, err := sample.Insert(book, 4, sample.Seed(1))
	require.NoError(t, err)
	for _, stmt := range []emit.Renderable{authors, books} {
		text, err := emit.Render(ctx(), stmt)
		require.NoError(t, err)
		sqlitetest.Exec(t, db, text)
	}
	assert.Equal(t, 4, sqlitetest.Count(t, db, "SELECT * FROM author"))
	assert.Equal(t, 4, sqlitetest.Count(t, db, "SELECT * FROM book"))
}

func TestSelfReference(t *testing.T) {
	def, err := table.Define("category", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("parent_id", ref.Self("id").Optional()),
	})
	require.NoError(t, err)
	for _, rec := range sample.Records(def, 3, sample.OmitOptional(0)) {
		assert.Contains(t, rec, "parent_id")
	}
}
