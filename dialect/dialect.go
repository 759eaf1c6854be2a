package dialect

import (
	"fmt"
	"strings"
)

// Dialect names a SQL engine.
type Dialect string

// Dialects known to the package.
const (
	ANSI     Dialect = "ansi"
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
	DuckDB   Dialect = "duckdb"
	MSSQL    Dialect = "mssql"
	MySQL    Dialect = "mysql"
)

var presentations = map[Dialect]string{
	ANSI:     "ANSI SQL",
	SQLite:   "SQLite",
	Postgres: "PostgreSQL",
	DuckDB:   "DuckDB",
	MSSQL:    "Microsoft SQL Server",
	MySQL:    "MySQL",
}

// String returns the dialect identifier.
func (d Dialect) String() string { return string(d) }

// Presentation returns a human readable name.
func (d Dialect) Presentation() string {
	if p, ok := presentations[d]; ok {
		return p
	}
	return string(d)
}

// SupportsIfNotExists reports whether CREATE TABLE accepts IF NOT EXISTS.
func (d Dialect) SupportsIfNotExists() bool {
	return d != MSSQL
}

// Parse returns the dialect named s. The empty string is ANSI.
func Parse(s string) (Dialect, error) {
	d := Dialect(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case "":
		return ANSI, nil
	case "postgresql", "pg":
		return Postgres, nil
	case "sqlserver":
		return MSSQL, nil
	}
	if _, ok := presentations[d]; !ok {
		return "", fmt.Errorf("dialect: unknown dialect %q", s)
	}
	return d, nil
}

// Naming supplies quoted and bare naming strategies.
type Naming interface {
	Quoted() Names
	Bare() Names
}

type naming struct {
	quoted Names
	bare   Names
}

func (n naming) Quoted() Names { return n.quoted }
func (n naming) Bare() Names   { return n.bare }

// NewNaming pairs a quoted and a bare strategy.
func NewNaming(quoted, bare Names) Naming {
	return naming{quoted: quoted, bare: bare}
}

// ForDialect returns the default naming of d.
func ForDialect(d Dialect) Naming {
	switch d {
	case Postgres:
		return NewNaming(PostgresNames(), BareNames())
	case MSSQL:
		return NewNaming(BracketNames(), BareNames())
	case MySQL:
		return NewNaming(BacktickNames(), BareNames())
	default:
		return NewNaming(QuotedNames(), BareNames())
	}
}
