package main

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqla/lint"
)

const library = `
tables:
  - name: author
    comment: People who write
    columns:
      - {name: id, type: integer, primary_key: true, auto_increment: true}
      - {name: name, type: string}
      - {name: email, type: string, unique: true, optional: true}
  - name: book
    columns:
      - {name: id, type: integer, primary_key: true, auto_increment: true}
      - {name: title, type: string}
      - name: author_id
        references: {table: author, column: id, on_delete: cascade}
`

const plural = `
tables:
  - name: books
    columns:
      - {name: id, type: integer, primary_key: true}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDDL(t *testing.T) {
	schema := writeFile(t, "library.yaml", library)

	out, err := run(t, "ddl", schema, "--dialect", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, `CREATE TABLE "author"`)
	assert.Contains(t, out, `CREATE TABLE "book"`)
	assert.Less(t, strings.Index(out, `"author"`), strings.Index(out, `"book"`))
	assert.NotContains(t, out, "COMMENT ON")

	cfg := writeFile(t, "sqla.yaml", "dialect: sqlite\nidempotent: true\n")
	out, err = run(t, "ddl", schema, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `CREATE TABLE IF NOT EXISTS "author"`)
}

func TestDDLOutputFile(t *testing.T) {
	schema := writeFile(t, "library.yaml", library)
	target := filepath.Join(t.TempDir(), "schema.sql")

	out, err := run(t, "ddl", schema, "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CREATE TABLE")
}

func TestLint(t *testing.T) {
	schema := writeFile(t, "books.yaml", plural)

	out, err := run(t, "lint", schema, "--format", "json")
	require.NoError(t, err)
	report, err := lint.Decode(strings.NewReader(out), lint.FormatJSON)
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, lint.ConventionDDL, report.Issues[0].Consequence)

	strict := writeFile(t, "sqla.yaml", "lint:\n  fatal: [convention_ddl]\n")
	_, err = run(t, "lint", schema, "--config", strict)
	var fatal *lint.FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Len(t, fatal.Issues, 1)

	_, err = run(t, "ddl", schema, "--config", strict)
	assert.ErrorAs(t, err, &fatal)

	ignore := writeFile(t, "ignore.yaml", "lint:\n  fatal: [convention_ddl]\n  ignore: [plural-table-name]\n")
	out, err = run(t, "lint", schema, "--config", ignore)
	require.NoError(t, err)
	assert.Equal(t, "No lint issues", out)
}

func TestSample(t *testing.T) {
	schema := writeFile(t, "library.yaml", library)

	out, err := run(t, "sample", schema, "-n", "3", "--seed", "7", "--dialect", "sqlite")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "INSERT INTO"))
	assert.Less(t, strings.Index(out, `INSERT INTO "author"`), strings.Index(out, `INSERT INTO "book"`))

	again, err := run(t, "sample", schema, "-n", "3", "--seed", "7", "--dialect", "sqlite")
	require.NoError(t, err)
	assert.Equal(t, out, again)

	out, err = run(t, "sample", schema, "--table", "book", "-n", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "INSERT INTO"))

	_, err = run(t, "sample", schema, "--table", "missing")
	assert.ErrorContains(t, err, `unknown table "missing"`)

	_, err = run(t, "sample", schema, "-n", "0")
	assert.Error(t, err)
}

func TestGen(t *testing.T) {
	schema := writeFile(t, "library.yaml", library)
	dir := t.TempDir()

	_, err := run(t, "gen", schema, "--package", "library", "--import", "example.com/library", "-o", dir)
	require.NoError(t, err)
	for _, name := range []string{"author.go", "book.go", "schema.graphqls", "schema.sql", "gqlgen.yml"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	src, err := os.ReadFile(filepath.Join(dir, "book.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "package library")

	_, err = run(t, "gen", schema, "--package", "not valid", "-o", dir)
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	schema := writeFile(t, "library.yaml", library)

	out, err := run(t, "inspect", schema, "--dialect", "postgres")
	require.NoError(t, err)
	assert.Contains(t, out, "table author\n")
	assert.Contains(t, out, "  id SERIAL NOT NULL\n")
	assert.Contains(t, out, "  primary key (id)\n")
	assert.Contains(t, out, "  unique author_email_key (email)\n")
	assert.Contains(t, out, "  foreign key book_author_id_fkey (author_id) -> author (id) ON DELETE CASCADE\n")
}

func TestApply(t *testing.T) {
	schema := writeFile(t, "library.yaml", library)
	path := filepath.Join(t.TempDir(), "library.db")

	out, err := run(t, "apply", schema, "--dialect", "sqlite", "--dsn", path, "--sample", "4", "--seed", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "applied 2 tables: queries=0 execs=4")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	for _, name := range []string{"author", "book"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "`+name+`"`).Scan(&n))
		assert.Equal(t, 4, n, name)
	}

	_, err = run(t, "apply", schema, "--dialect", "sqlite", "--dsn", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "apply", schema)
	assert.ErrorContains(t, err, "--dsn is required")
}

func TestBadFlags(t *testing.T) {
	schema := writeFile(t, "library.yaml", library)

	_, err := run(t, "ddl", schema, "--dialect", "oracle")
	assert.ErrorContains(t, err, "unknown dialect")

	_, err = run(t, "ddl", schema, "--layout", "diagonal")
	assert.ErrorContains(t, err, "unknown layout")

	_, err = run(t, "ddl", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = run(t, "ddl")
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	schema := writeFile(t, "library.yaml", plural)
	target := filepath.Join(t.TempDir(), "schema.sql")

	ctx, cancel := context.WithCancel(context.Background())
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"watch", schema, "--dialect", "sqlite", "-o", target, "--debounce", "10ms"})
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	read := func() string {
		data, _ := os.ReadFile(target)
		return string(data)
	}
	require.Eventually(t, func() bool {
		return strings.Contains(read(), `CREATE TABLE "books"`)
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(schema, []byte(library), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(read(), `CREATE TABLE "author"`)
	}, 5*time.Second, 20*time.Millisecond)

	// A broken schema keeps the previous output.
	require.NoError(t, os.WriteFile(schema, []byte("tables: ["), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Contains(t, read(), `CREATE TABLE "author"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
