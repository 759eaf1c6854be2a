package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/emit"
)

// ExecQuerier wraps the standard Exec and Query methods. *sql.DB, *sql.Tx
// and *Driver implement it.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Driver renders statements for one dialect and executes them, collecting
// statistics on the way.
type Driver struct {
	conn    ExecQuerier
	dialect dialect.Dialect
	base    *emit.Context
	log     *slog.Logger
	stats   *QueryStats
	slow    time.Duration
}

// Option configures a Driver.
type Option func(*Driver)

// WithContext sets the render context statements are rendered with. Its
// dialect should match the driver's.
func WithContext(ctx *emit.Context) Option {
	return func(d *Driver) { d.base = ctx }
}

// WithLogger logs every statement at debug level and slow ones as
// warnings.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithSlowThreshold sets the duration above which a statement counts as
// slow. Default is 100ms.
func WithSlowThreshold(t time.Duration) Option {
	return func(d *Driver) { d.slow = t }
}

// DriverName returns the database/sql driver name registered for d by
// the drivers sqla is used with (lib/pq and modernc.org/sqlite).
func DriverName(d dialect.Dialect) string {
	switch d {
	case dialect.Postgres:
		return "postgres"
	case dialect.SQLite:
		return "sqlite"
	}
	return string(d)
}

// Open opens a database for d. The database/sql driver must be registered
// under DriverName(d).
func Open(d dialect.Dialect, source string, opts ...Option) (*Driver, error) {
	db, err := sql.Open(DriverName(d), source)
	if err != nil {
		return nil, err
	}
	return OpenDB(d, db, opts...), nil
}

// OpenDB wraps db with a Driver for d.
func OpenDB(d dialect.Dialect, db *sql.DB, opts ...Option) *Driver {
	drv := &Driver{
		conn:    db,
		dialect: d,
		log:     slog.New(slog.DiscardHandler),
		stats:   &QueryStats{},
		slow:    100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(drv)
	}
	if drv.base == nil {
		drv.base = emit.NewContext(emit.WithDialect(d))
	}
	return drv
}

// DB returns the underlying *sql.DB.
func (d *Driver) DB() *sql.DB {
	return d.conn.(*sql.DB)
}

// Dialect returns the driver's dialect.
func (d *Driver) Dialect() dialect.Dialect { return d.dialect }

// QueryStats returns the statistics collected so far.
func (d *Driver) QueryStats() *QueryStats { return d.stats }

// Close closes the underlying database.
func (d *Driver) Close() error { return d.DB().Close() }

// Render renders r on a fork of the driver's render context.
func (d *Driver) Render(r emit.Renderable) (string, error) {
	return emit.Render(d.base.Fork(), r)
}

// Exec renders r and executes it.
func (d *Driver) Exec(ctx context.Context, r emit.Renderable) (sql.Result, error) {
	return exec(ctx, d, d, r)
}

// Query renders r and runs it as a query.
func (d *Driver) Query(ctx context.Context, r emit.Renderable) (*sql.Rows, error) {
	return query(ctx, d, d, r)
}

// ExecContext executes a raw statement, recording statistics.
func (d *Driver) ExecContext(ctx context.Context, stmt string, args ...any) (sql.Result, error) {
	return d.execContext(ctx, d.conn, stmt, args...)
}

// QueryContext runs a raw query, recording statistics.
func (d *Driver) QueryContext(ctx context.Context, stmt string, args ...any) (*sql.Rows, error) {
	return d.queryContext(ctx, d.conn, stmt, args...)
}

// Apply executes rs in order inside one transaction. The first failure
// rolls everything back.
func (d *Driver) Apply(ctx context.Context, rs ...emit.Renderable) error {
	return d.Tx(ctx, func(tx *Tx) error {
		for _, r := range rs {
			if _, err := tx.Exec(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
}

// Tx runs fn inside a transaction, committing when fn returns nil.
func (d *Driver) Tx(ctx context.Context, fn func(*Tx) error) (rerr error) {
	stx, err := d.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dialect/sql: begin: %w", err)
	}
	d.log.Debug("begin transaction")
	tx := &Tx{tx: stx, drv: d}
	defer func() {
		if rerr != nil {
			d.log.Debug("rollback transaction", "error", rerr)
			rerr = errors.Join(rerr, stx.Rollback())
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	d.log.Debug("commit transaction")
	return stx.Commit()
}

// Tx is a transaction of a Driver.
type Tx struct {
	tx  *sql.Tx
	drv *Driver
}

// Exec renders r and executes it within the transaction.
func (tx *Tx) Exec(ctx context.Context, r emit.Renderable) (sql.Result, error) {
	return exec(ctx, tx.drv, tx, r)
}

// Query renders r and runs it within the transaction.
func (tx *Tx) Query(ctx context.Context, r emit.Renderable) (*sql.Rows, error) {
	return query(ctx, tx.drv, tx, r)
}

// ExecContext executes a raw statement within the transaction.
func (tx *Tx) ExecContext(ctx context.Context, stmt string, args ...any) (sql.Result, error) {
	return tx.drv.execContext(ctx, tx.tx, stmt, args...)
}

// QueryContext runs a raw query within the transaction.
func (tx *Tx) QueryContext(ctx context.Context, stmt string, args ...any) (*sql.Rows, error) {
	return tx.drv.queryContext(ctx, tx.tx, stmt, args...)
}

func exec(ctx context.Context, d *Driver, ex ExecQuerier, r emit.Renderable) (sql.Result, error) {
	stmt, err := d.Render(r)
	if err != nil {
		return nil, err
	}
	return ex.ExecContext(ctx, stmt)
}

func query(ctx context.Context, d *Driver, ex ExecQuerier, r emit.Renderable) (*sql.Rows, error) {
	stmt, err := d.Render(r)
	if err != nil {
		return nil, err
	}
	return ex.QueryContext(ctx, stmt)
}

func (d *Driver) execContext(ctx context.Context, conn ExecQuerier, stmt string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := conn.ExecContext(ctx, stmt, args...)
	d.record(stmt, start, err, false)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: exec: %w", err)
	}
	return res, nil
}

func (d *Driver) queryContext(ctx context.Context, conn ExecQuerier, stmt string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := conn.QueryContext(ctx, stmt, args...)
	d.record(stmt, start, err, true)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: query: %w", err)
	}
	return rows, nil
}

// statementKind returns the leading keyword of stmt, for logging.
func statementKind(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexAny(stmt, " \n\t("); i > 0 {
		stmt = stmt[:i]
	}
	return strings.ToUpper(stmt)
}
