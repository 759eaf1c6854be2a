// Package dialect identifies SQL engines and provides the naming strategies
// used to turn logical identities into SQL identifiers.
//
// # Supported Dialects
//
// Each dialect is identified by a constant string:
//
//	dialect.ANSI     = "ansi"
//	dialect.SQLite   = "sqlite"
//	dialect.Postgres = "postgres"
//	dialect.DuckDB   = "duckdb"
//	dialect.MSSQL    = "mssql"
//	dialect.MySQL    = "mysql"
//
// The core composers never branch on a dialect for anything but naming
// defaults and a few syntax switches (for example MSSQL has no
// "IF NOT EXISTS" on CREATE TABLE). Engine specific column types are
// supplied per dialect by the domains themselves.
//
// # Naming Strategies
//
// A Names value renders schema, table, domain (column), view, type and
// routine names:
//
//	ns := dialect.QuotedNames()
//	ns.Table("person")                   // "person"
//	ns.TableColumn("person", "id", true) // "person"."id"
//
//	pg := dialect.PostgresNames()        // quoting through lib/pq
//	ms := dialect.BracketNames()         // [person]
//
// Names can be qualified by a namespace. Only object level names are
// qualified; a bare column stays bare:
//
//	q := dialect.Qualified(dialect.QuotedNames(), "app")
//	q.Table("person")  // "app"."person"
//	q.Domain("id")     // "id"
//
// and case folded using golang.org/x/text/cases:
//
//	up := dialect.Folded(dialect.BareNames(), cases.Upper(language.Und))
//	up.Table("person") // PERSON
package dialect
