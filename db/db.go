// Package db defines the capability contract every database backend
// satisfies, plus the database/sql based implementation covering
// postgres, mysql, and sqlite.
package db

import (
	"context"

	"github.com/sssemil/butane/sqlgen"
	"github.com/sssemil/butane/sqlval"
)

// Executor is the statement surface shared by connections and
// transactions. Calls block for the duration of backend I/O; no timeout
// is imposed beyond what the context carries.
type Executor interface {
	// Execute runs a statement and returns the number of affected rows.
	Execute(ctx context.Context, sql string, args []sqlval.Value) (int64, error)

	// Query runs a statement and returns a lazy row stream. The stream
	// must be fully drained or closed before the same connection issues
	// another statement.
	Query(ctx context.Context, sql string, args []sqlval.Value) (*Rows, error)
}

// Backend is the contract a database driver supplies to the engine. The
// engine never special-cases a backend by name outside its Dialect.
type Backend interface {
	Executor

	// Begin opens a transaction. The transaction owns the connection
	// until Commit or Rollback.
	Begin(ctx context.Context) (Tx, error)

	// Dialect identifies the SQL dialect this backend speaks.
	Dialect() sqlgen.Dialect

	// Close releases the underlying connection resources.
	Close() error
}

// Tx is an open transaction.
type Tx interface {
	Executor

	Commit() error
	Rollback() error
}

// BackendError wraps a driver failure verbatim. The engine never retries
// on its own: statement idempotence cannot be assumed.
type BackendError struct {
	Op  string // "execute", "query", "begin", "commit", "rollback", "scan"
	Err error
}

func (e *BackendError) Error() string {
	return "db: " + e.Op + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
