// Package sql executes composed statements against a database.
//
// A Driver renders every statement with a context bound to its dialect,
// then executes it and records statistics:
//
//	drv, err := sql.Open(dialect.Postgres, dsn, sql.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//
//	// Create every table in one transaction.
//	tables, _ := reg.Ordered()
//	if err := drv.Apply(ctx, table.Statements(drv.Dialect(), tables...)...); err != nil {
//	    return err
//	}
//
//	// Seed them.
//	stmt, _ := sample.Insert(book, 50)
//	_, err = drv.Exec(ctx, stmt)
//
//	fmt.Println(drv.QueryStats().Stats())
//
// The Driver implements ExecQuerier, so it can be handed to
// assurance.Run. The database/sql driver itself is registered by the
// caller (lib/pq for Postgres, modernc.org/sqlite for SQLite).
package sql
