package table_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqla"
	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/dialect/sqlschema"
	"github.com/syssam/sqla/domain"
	"github.com/syssam/sqla/domains"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/internal/sqlitetest"
	"github.com/syssam/sqla/lint"
	"github.com/syssam/sqla/ref"
	"github.com/syssam/sqla/shape"
	"github.com/syssam/sqla/table"
)

func person(t *testing.T, opts ...table.Option) *table.Definition {
	t.Helper()
	def, err := table.Define("person", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("name", shape.String()),
		domains.F("nickname", shape.String().Optional()),
	}, opts...)
	require.NoError(t, err)
	return def
}

func render(t *testing.T, r emit.Renderable, opts ...emit.ContextOption) string {
	t.Helper()
	text, err := emit.Render(emit.NewContext(opts...), r)
	require.NoError(t, err)
	return text
}

func singleLine() emit.ContextOption { return emit.WithLayout(emit.SingleLine) }

func TestPersonSingleLine(t *testing.T) {
	def := person(t)
	assert.Equal(t,
		`CREATE TABLE "person" ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "name" TEXT NOT NULL, "nickname" TEXT)`,
		render(t, def, singleLine()),
	)
	assert.Empty(t, def.LintIssues())
}

func TestSelfReferenceClosure(t *testing.T) {
	def, err := table.Define("category", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("name", shape.String()),
		domains.F("parent_id", ref.Self("id").Optional().OnDelete(sqlschema.Cascade)),
	}, table.Idempotent())
	require.NoError(t, err)

	want := `CREATE TABLE IF NOT EXISTS "category" (
    "id" INTEGER PRIMARY KEY AUTOINCREMENT,
    "name" TEXT NOT NULL,
    "parent_id" INTEGER,
    FOREIGN KEY("parent_id") REFERENCES "category"("id") ON DELETE CASCADE
)`
	first := render(t, def)
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("CREATE TABLE mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, first, render(t, def), "rendering twice")

	db := sqlitetest.Open(t)
	sqlitetest.Exec(t, db, first,
		`INSERT INTO "category" ("name") VALUES ('root')`,
		`INSERT INTO "category" ("name", "parent_id") VALUES ('leaf', 1)`,
	)
	_, err = db.Exec(`INSERT INTO "category" ("name", "parent_id") VALUES ('orphan', 42)`)
	assert.Error(t, err, "foreign key is enforced")
}

func TestColumnOrderInvariance(t *testing.T) {
	def, err := table.Define("book", domains.Shape{
		domains.F("title", shape.String()),
		domains.F("isbn", domain.Unique(shape.String())),
		domains.F("id", domain.TextPrimaryKey()),
		domains.F("parent_id", ref.Self("id").Optional()),
	})
	require.NoError(t, err)
	assert.Equal(t,
		`CREATE TABLE "book" ("title" TEXT NOT NULL, "isbn" TEXT NOT NULL, "id" TEXT PRIMARY KEY NOT NULL, `+
			`"parent_id" TEXT, UNIQUE("isbn"), FOREIGN KEY("parent_id") REFERENCES "book"("id"))`,
		render(t, def, singleLine()),
	)
}

func TestAfterColumnsOrder(t *testing.T) {
	def, err := table.Define("account", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("email", domain.Unique(shape.String())),
		domains.F("status", shape.Enum("active", "closed")),
		domains.F("owner_id", ref.Self("id").Optional()),
	},
		table.Constraints(func(b *table.ConstraintBuilder) {
			b.NamedUnique("account_email_status", "email", "status").Check("length(email) > 3")
		}),
		table.AfterColumns(emit.Raw("CHECK (id > 0)")),
	)
	require.NoError(t, err)
	assert.Equal(t,
		`CREATE TABLE "account" ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "email" TEXT NOT NULL, "status" TEXT NOT NULL, "owner_id" INTEGER, `+
			`UNIQUE("email"), FOREIGN KEY("owner_id") REFERENCES "account"("id"), CHECK ("status" IN ('active', 'closed')), `+
			`CONSTRAINT "account_email_status" UNIQUE("email", "status"), CHECK (length(email) > 3), CHECK (id > 0))`,
		render(t, def, singleLine()),
	)
}

func TestDialects(t *testing.T) {
	def := person(t, table.Idempotent(), table.Namespace("app"))
	tests := []struct {
		dialect dialect.Dialect
		want    string
	}{
		{dialect.SQLite, `CREATE TABLE IF NOT EXISTS "app"."person" ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "name" TEXT NOT NULL, "nickname" TEXT)`},
		{dialect.Postgres, `CREATE TABLE IF NOT EXISTS "app"."person" ("id" SERIAL PRIMARY KEY, "name" TEXT NOT NULL, "nickname" TEXT)`},
		{dialect.MSSQL, `CREATE TABLE [app].[person] ([id] INTEGER PRIMARY KEY IDENTITY(1,1), [name] TEXT NOT NULL, [nickname] TEXT)`},
		{dialect.MySQL, "CREATE TABLE IF NOT EXISTS `app`.`person` (`id` INTEGER PRIMARY KEY AUTO_INCREMENT, `name` TEXT NOT NULL, `nickname` TEXT)"},
	}
	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, def, emit.WithDialect(tt.dialect), singleLine()))
		})
	}
}

func TestTemp(t *testing.T) {
	def := person(t, table.Temp())
	assert.Contains(t, render(t, def, singleLine()), `CREATE TEMP TABLE "person"`)
}

func TestDefaultsAndCreatedAt(t *testing.T) {
	def, err := table.Define("event", domains.Shape{
		domains.F("id", domain.UUIDPrimaryKey()),
		domains.F("kind", shape.String().Default("info")),
		domains.F("created_at", domain.CreatedAt()),
	})
	require.NoError(t, err)
	assert.Equal(t,
		`CREATE TABLE "event" ("id" UUID PRIMARY KEY NOT NULL, "kind" TEXT DEFAULT 'info', "created_at" DATETIME DEFAULT CURRENT_TIMESTAMP)`,
		render(t, def, singleLine()),
	)

	db := sqlitetest.Open(t)
	sqlitetest.Exec(t, db,
		render(t, def, emit.WithDialect(dialect.SQLite)),
		`INSERT INTO "event" ("id") VALUES ('a')`,
	)
	var kind string
	require.NoError(t, db.QueryRow(`SELECT "kind" FROM "event"`).Scan(&kind))
	assert.Equal(t, "info", kind)
}

func TestPartitions(t *testing.T) {
	def, err := table.Define("post", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("slug", domain.Unique(shape.String())),
		domains.F("created_at", domain.CreatedAt()),
		domains.F("reply_to", ref.Self("id").Optional()),
	}, table.IgnoreLint(table.RuleForeignKeyNaming))
	require.NoError(t, err)

	names := func(ds []*domain.Domain) []string {
		out := make([]string, len(ds))
		for i, d := range ds {
			out[i] = d.Identity()
		}
		return out
	}
	assert.Equal(t, []string{"id"}, names(def.PrimaryKey()))
	assert.Equal(t, []string{"slug"}, names(def.Unique()))
	assert.Equal(t, []string{"reply_to"}, names(def.ForeignKeys()))
	assert.Equal(t, []string{"slug", "created_at", "reply_to"}, names(def.InsertableColumns()))
	assert.Equal(t, []string{"id", "slug", "reply_to"}, names(def.FilterableColumns()))
	assert.Empty(t, def.LintIssues())
}

func TestLint(t *testing.T) {
	def, err := table.Define("logs", domains.Shape{
		domains.F("message", shape.String()),
		domains.F("parent", ref.Self("message")),
	})
	require.NoError(t, err)

	issues := def.LintIssues()
	require.Len(t, issues, 3)
	assert.Equal(t, lint.WarningDDL, issues[0].Consequence)
	assert.Contains(t, issues[0].Message, "no primary key")
	assert.Equal(t, lint.ConventionDDL, issues[1].Consequence)
	assert.Contains(t, issues[1].Message, "should be singular")
	assert.Equal(t, "logs.parent", issues[2].Location)

	_, err = table.Define("logs", domains.Shape{domains.F("message", shape.String())},
		table.LintPolicy(lint.Policy{Fatal: []lint.Consequence{lint.WarningDDL}}))
	require.Error(t, err)
	var fatal *lint.FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Len(t, fatal.Issues, 1)
	assert.True(t, table.IsDefinitionError(err))

	quiet, err := table.Define("address", domains.Shape{domains.F("message", shape.String())},
		table.IgnoreLint(table.RuleMissingPrimaryKey))
	require.NoError(t, err)
	assert.Empty(t, quiet.LintIssues(), "address is singular")
}

func TestLintSummary(t *testing.T) {
	def, err := table.Define("note", domains.Shape{domains.F("body", shape.String())})
	require.NoError(t, err)
	text := render(t, emit.SQL("${}\n${}", emit.LintSummary{}, def), singleLine())
	assert.Equal(t,
		`-- [WARNING_DDL] table "note" has no primary key column(s) (note)`+"\n"+
			`CREATE TABLE "note" ("body" TEXT NOT NULL)`,
		text,
	)
}

func TestDefineErrors(t *testing.T) {
	_, err := table.Define("", nil)
	assert.True(t, table.IsDefinitionError(err))

	_, err = table.Define("t", domains.Shape{domains.F("g", shape.Named("geometry"))})
	assert.ErrorIs(t, err, table.ErrInvalidDefinition)
	assert.True(t, sqla.IsDomainKindUnsupported(err))

	_, err = table.Define("node", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("parent_id", ref.Self("uid")),
	})
	assert.True(t, sqla.IsUnresolvedReference(err))

	_, err = table.Define("t", domains.Shape{domains.F("id", domain.TextPrimaryKey())},
		table.Indexes(func(b *table.IndexBuilder) { b.Index("missing") }))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `non-existent column "missing"`)

	_, err = table.Define("t", domains.Shape{domains.F("id", domain.TextPrimaryKey())},
		table.Constraints(func(b *table.ConstraintBuilder) { b.Unique("nope") }))
	assert.Error(t, err)
}

func TestUnresolvedRender(t *testing.T) {
	def, err := table.Define("book", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("author_id", ref.To("author", "id")),
	})
	require.NoError(t, err)
	_, err = emit.Render(emit.NewContext(), def)
	require.Error(t, err)
	assert.True(t, sqla.IsUnresolvedReference(err))
	assert.Contains(t, err.Error(), "book.author_id")
}

func TestReferencesBetweenTables(t *testing.T) {
	author := person(t)
	book, err := table.Define("book", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("author_id", author.BelongsTo("id", "")),
		domains.F("editor_id", author.References("id").Optional().OnDelete(sqlschema.SetNull)),
	})
	require.NoError(t, err)
	assert.Equal(t,
		`CREATE TABLE "book" ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "author_id" INTEGER NOT NULL, "editor_id" INTEGER, `+
			`FOREIGN KEY("author_id") REFERENCES "person"("id"), FOREIGN KEY("editor_id") REFERENCES "person"("id") ON DELETE SET NULL)`,
		render(t, book, singleLine()),
	)

	src, ok := author.Source("id")
	require.True(t, ok)
	dests := src.Destinations()
	require.Len(t, dests, 2)
	assert.Equal(t, ref.BelongsTo, dests[0].Nature())
	assert.Equal(t, "books", dests[0].Collection())

	db := sqlitetest.Open(t)
	sqlitetest.Exec(t, db, render(t, author), render(t, book))
}

func TestReusedColumnKeepsItsTable(t *testing.T) {
	category, err := table.Define("category", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("parent_id", ref.Self("id").Optional()),
	})
	require.NoError(t, err)
	before := render(t, category, singleLine())

	parent, ok := category.Column("parent_id")
	require.True(t, ok)
	tag, err := table.Define("tag", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("parent_id", parent),
	})
	require.NoError(t, err)

	assert.Equal(t, before, render(t, category, singleLine()))
	assert.Contains(t, before, `FOREIGN KEY("parent_id") REFERENCES "category"("id")`)
	assert.Contains(t, render(t, tag, singleLine()), `FOREIGN KEY("parent_id") REFERENCES "category"("id")`)

	author := person(t)
	book, err := table.Define("book", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("author_id", author.BelongsTo("id", "")),
	})
	require.NoError(t, err)
	bookDDL := render(t, book, singleLine())

	authorID, ok := book.Column("author_id")
	require.True(t, ok)
	_, err = table.Define("review", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("author_id", authorID),
	})
	require.NoError(t, err)
	assert.Equal(t, bookDDL, render(t, book, singleLine()))

	src, ok := author.Source("id")
	require.True(t, ok)
	var tables []string
	for _, d := range src.Destinations() {
		tables = append(tables, d.Table())
	}
	assert.Equal(t, []string{"book", "review"}, tables)
	assert.Equal(t, "books", src.Destinations()[0].Collection())
}

func TestIndexesAndComments(t *testing.T) {
	def, err := table.Define("person", domains.Shape{
		domains.F("id", domain.AutoIncPrimaryKey()),
		domains.F("name", shape.String()),
		domains.F("email", domain.Must(domain.From("", shape.String())).With(domain.Comment("login e-mail"))),
	},
		table.Comment("people we know"),
		table.Indexes(func(b *table.IndexBuilder) {
			b.Index("name")
			b.Index("email").Unique().Name("person_email").Where("email IS NOT NULL")
			b.Index("name", "email").Desc("email")
		}),
	)
	require.NoError(t, err)

	idx := def.Indexes()
	require.Len(t, idx, 3)
	assert.Equal(t, `CREATE INDEX "idx_person__name" ON "person" ("name")`, render(t, idx[0]))
	assert.Equal(t, `CREATE UNIQUE INDEX "person_email" ON "person" ("email") WHERE email IS NOT NULL`, render(t, idx[1]))
	assert.Equal(t, `CREATE INDEX "idx_person__name__email" ON "person" ("name", "email" DESC)`, render(t, idx[2]))

	comments := def.Comments()
	require.Len(t, comments, 2)
	assert.Equal(t, `COMMENT ON TABLE "person" IS 'people we know'`, render(t, comments[0], emit.WithDialect(dialect.Postgres)))
	assert.Equal(t, `COMMENT ON COLUMN "person"."email" IS 'login e-mail'`, render(t, comments[1], emit.WithDialect(dialect.Postgres)))
	assert.Equal(t, `-- person.email: login e-mail`, render(t, comments[1], emit.WithDialect(dialect.SQLite)))

	assert.Len(t, def.Statements(), 6)
}

func TestValidate(t *testing.T) {
	def := person(t)
	rec, err := def.Validate(shape.Record{"name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", rec["name"])

	_, err = def.Validate(shape.Record{"name": "Ann", "age": 3})
	assert.True(t, sqla.IsSchemaViolation(err))
}
