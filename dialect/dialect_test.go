package dialect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/sqla/dialect"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want dialect.Dialect
	}{
		{"", dialect.ANSI},
		{"SQLite", dialect.SQLite},
		{"postgresql", dialect.Postgres},
		{"pg", dialect.Postgres},
		{"sqlserver", dialect.MSSQL},
		{"duckdb", dialect.DuckDB},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := dialect.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
	_, err := dialect.Parse("oracle")
	assert.Error(t, err)
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "PostgreSQL", dialect.Postgres.Presentation())
	assert.Equal(t, "custom", dialect.Dialect("custom").Presentation())
	assert.True(t, dialect.SQLite.SupportsIfNotExists())
	assert.False(t, dialect.MSSQL.SupportsIfNotExists())
}

func TestStrategies(t *testing.T) {
	tests := []struct {
		name   string
		names  dialect.Names
		table  string
		column string
		index  string
	}{
		{"quoted", dialect.QuotedNames(), `"person"`, `"person"."id"`, `"idx_person__a__b"`},
		{"postgres", dialect.PostgresNames(), `"person"`, `"person"."id"`, `"idx_person__a__b"`},
		{"bracket", dialect.BracketNames(), `[person]`, `[person].[id]`, `[idx_person__a__b]`},
		{"backtick", dialect.BacktickNames(), "`person`", "`person`.`id`", "`idx_person__a__b`"},
		{"bare", dialect.BareNames(), `person`, `person.id`, `idx_person__a__b`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.table, tt.names.Table("person"))
			assert.Equal(t, tt.column, tt.names.TableColumn("person", "id", true))
			assert.Equal(t, tt.index, tt.names.Index("person", []string{"a", "b"}))
		})
	}
}

func TestQuotedEscapes(t *testing.T) {
	assert.Equal(t, `"we""ird"`, dialect.QuotedNames().Domain(`we"ird`))
	assert.Equal(t, `[we]]ird]`, dialect.BracketNames().Domain(`we]ird`))
}

func TestQualified(t *testing.T) {
	q := dialect.Qualified(dialect.QuotedNames(), "app")
	assert.Equal(t, `"app"."person"`, q.Table("person"))
	assert.Equal(t, `"app"."v"`, q.View("v"))
	assert.Equal(t, `"id"`, q.Domain("id"))
	assert.Equal(t, `"id"`, q.TableColumn("person", "id", false))
	assert.Equal(t, `"app"."person"."id"`, q.TableColumn("person", "id", true))

	same := dialect.QuotedNames()
	assert.Same(t, same, dialect.Qualified(same, ""))
}

func TestFolded(t *testing.T) {
	up := dialect.Folded(dialect.QuotedNames(), cases.Upper(language.Und))
	assert.Equal(t, `"PERSON"`, up.Table("person"))
	assert.Equal(t, `"PERSON"."ID"`, up.TableColumn("person", "id", true))
	assert.Equal(t, `"IDX_PERSON__NAME"`, up.Index("person", []string{"name"}))
}

func TestForDialect(t *testing.T) {
	assert.Equal(t, `[t]`, dialect.ForDialect(dialect.MSSQL).Quoted().Table("t"))
	assert.Equal(t, "`t`", dialect.ForDialect(dialect.MySQL).Quoted().Table("t"))
	assert.Equal(t, `"t"`, dialect.ForDialect(dialect.SQLite).Quoted().Table("t"))
	assert.Equal(t, `t`, dialect.ForDialect(dialect.Postgres).Bare().Table("t"))
}
