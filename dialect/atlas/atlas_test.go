package atlas_test

import (
	"testing"

	"ariga.io/atlas/sql/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqla"
	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/dialect/atlas"
	"github.com/syssam/sqla/dialect/sqlschema"
	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/domains"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/ref"
	"github.com/syssam/sqla/shape"
	"github.com/syssam/sqla/table"
)

func library(t *testing.T) *table.Registry {
	t.Helper()
	reg := table.NewRegistry()
	_, err := reg.Define("book", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("title", shape.String()),
		domains.F("genre", shape.Enum("fiction", "essay")),
		domains.F("author_id", ref.To("author", "id").OnDelete(sqlschema.Cascade)),
	}, table.Indexes(func(b *table.IndexBuilder) {
		b.Index("title")
	}))
	require.NoError(t, err)
	_, err = reg.Define("author", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("email", domain.Unique(shape.String())),
		domains.F("bio", shape.String().Optional()),
	}, table.Comment("people who write"))
	require.NoError(t, err)
	require.NoError(t, reg.Resolve())
	return reg
}

func TestRealm(t *testing.T) {
	reg := library(t)
	ctx := emit.NewContext(emit.WithDialect(dialect.Postgres))
	realm, err := atlas.Realm(ctx, reg.Tables()...)
	require.NoError(t, err)
	require.Len(t, realm.Schemas, 1)

	s := realm.Schemas[0]
	book, ok := s.Table("book")
	require.True(t, ok)
	author, ok := s.Table("author")
	require.True(t, ok)

	id, ok := book.Column("id")
	require.True(t, ok)
	assert.Equal(t, "SERIAL", id.Type.Raw)
	assert.False(t, id.Type.Null)
	require.NotNil(t, book.PrimaryKey)
	assert.Equal(t, "id", book.PrimaryKey.Parts[0].C.Name)

	genre, ok := book.Column("genre")
	require.True(t, ok)
	assert.Equal(t, &schema.EnumType{T: "text", Values: []string{"fiction", "essay"}}, genre.Type.Type)

	require.Len(t, book.ForeignKeys, 1)
	fk := book.ForeignKeys[0]
	assert.Equal(t, "book_author_id_fkey", fk.Symbol)
	assert.Same(t, author, fk.RefTable)
	assert.Equal(t, "id", fk.RefColumns[0].Name)
	assert.Equal(t, schema.Cascade, fk.OnDelete)

	idx, ok := book.Index("idx_book__title")
	require.True(t, ok)
	assert.False(t, idx.Unique)

	email, ok := author.Index("author_email_key")
	require.True(t, ok)
	assert.True(t, email.Unique)

	bio, ok := author.Column("bio")
	require.True(t, ok)
	assert.True(t, bio.Type.Null)
}

func TestRealmMissingTarget(t *testing.T) {
	reg := library(t)
	book, ok := reg.Table("book")
	require.True(t, ok)
	_, err := atlas.Realm(emit.NewContext(), book)
	require.Error(t, err)
	assert.True(t, sqla.IsUnresolvedReference(err))
}

func TestColumnDefault(t *testing.T) {
	d := domain.Must(domain.From("status", shape.String().Default("new")))
	col := atlas.Column(emit.NewContext(), d)
	assert.Equal(t, &schema.RawExpr{X: "'new'"}, col.Default)
	assert.Equal(t, &schema.StringType{T: "text"}, col.Type.Type)
}
