package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// database/sql drivers for the supported providers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sssemil/butane/internal/debug"
	"github.com/sssemil/butane/sqlgen"
	"github.com/sssemil/butane/sqlval"
)

// driverName maps a dialect name onto the registered sql driver.
var driverName = map[string]string{
	"postgres":   "postgres",
	"postgresql": "postgres",
	"mysql":      "mysql",
	"sqlite":     "sqlite3",
	"sqlite3":    "sqlite3",
}

// Connect opens a backend for the given provider and DSN. The provider
// selects both the driver and the dialect from the runtime registry.
func Connect(provider, dsn string) (Backend, error) {
	dialect, err := sqlgen.Get(provider)
	if err != nil {
		return nil, err
	}
	driver, ok := driverName[provider]
	if !ok {
		return nil, fmt.Errorf("db: no driver for provider %q", provider)
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, &BackendError{Op: "open", Err: err}
	}
	if driver == "sqlite3" && strings.Contains(dsn, ":memory:") {
		// every pooled connection would otherwise get its own database
		conn.SetMaxOpenConns(1)
	}
	return &sqlBackend{db: conn, dialect: dialect}, nil
}

// Wrap adapts an already-open *sql.DB. Used by tests and by applications
// that manage their own connection setup.
func Wrap(conn *sql.DB, dialect sqlgen.Dialect) Backend {
	return &sqlBackend{db: conn, dialect: dialect}
}

type sqlBackend struct {
	db      *sql.DB
	dialect sqlgen.Dialect
}

func (b *sqlBackend) Execute(ctx context.Context, sqlText string, args []sqlval.Value) (int64, error) {
	debug.Debug("execute", "dialect", b.dialect.Name(), "sql", sqlText, "args", len(args))
	res, err := b.db.ExecContext(ctx, sqlText, sqlval.ToBackendArgs(args)...)
	if err != nil {
		return 0, &BackendError{Op: "execute", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		// some drivers cannot report a count for DDL
		return 0, nil
	}
	return n, nil
}

func (b *sqlBackend) Query(ctx context.Context, sqlText string, args []sqlval.Value) (*Rows, error) {
	debug.Debug("query", "dialect", b.dialect.Name(), "sql", sqlText, "args", len(args))
	rows, err := b.db.QueryContext(ctx, sqlText, sqlval.ToBackendArgs(args)...)
	if err != nil {
		return nil, &BackendError{Op: "query", Err: err}
	}
	return &Rows{rows: rows}, nil
}

func (b *sqlBackend) Begin(ctx context.Context) (Tx, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &BackendError{Op: "begin", Err: err}
	}
	return &sqlTx{tx: tx, dialect: b.dialect}, nil
}

func (b *sqlBackend) Dialect() sqlgen.Dialect { return b.dialect }

func (b *sqlBackend) Close() error { return b.db.Close() }

type sqlTx struct {
	tx      *sql.Tx
	dialect sqlgen.Dialect
}

func (t *sqlTx) Execute(ctx context.Context, sqlText string, args []sqlval.Value) (int64, error) {
	debug.Debug("tx execute", "dialect", t.dialect.Name(), "sql", sqlText, "args", len(args))
	res, err := t.tx.ExecContext(ctx, sqlText, sqlval.ToBackendArgs(args)...)
	if err != nil {
		return 0, &BackendError{Op: "execute", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (t *sqlTx) Query(ctx context.Context, sqlText string, args []sqlval.Value) (*Rows, error) {
	rows, err := t.tx.QueryContext(ctx, sqlText, sqlval.ToBackendArgs(args)...)
	if err != nil {
		return nil, &BackendError{Op: "query", Err: err}
	}
	return &Rows{rows: rows}, nil
}

func (t *sqlTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return &BackendError{Op: "commit", Err: err}
	}
	return nil
}

func (t *sqlTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		return &BackendError{Op: "rollback", Err: err}
	}
	return nil
}
