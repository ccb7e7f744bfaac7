package migrate

import (
	"context"

	"github.com/sssemil/butane/db"
	"github.com/sssemil/butane/internal/debug"
	"github.com/sssemil/butane/schema"
	"github.com/sssemil/butane/sqlgen"
)

// Applier runs stored migrations against a backend. Each migration is
// applied inside a single transaction together with its history row, so
// a failure leaves the database exactly as it was.
type Applier struct {
	backend db.Backend
	store   *Store
	history *History
}

func NewApplier(backend db.Backend, store *Store) *Applier {
	return &Applier{
		backend: backend,
		store:   store,
		history: NewHistory(backend),
	}
}

// Status describes one stored migration's relation to the database.
type Status struct {
	Name        string
	Applied     bool
	Destructive bool
}

// Status lists all stored migrations with their applied state.
func (a *Applier) Status(ctx context.Context) ([]Status, error) {
	if err := a.history.Ensure(ctx); err != nil {
		return nil, err
	}
	applied, err := a.history.Applied(ctx)
	if err != nil {
		return nil, err
	}
	appliedSet := make(map[string]bool, len(applied))
	for _, name := range applied {
		appliedSet[name] = true
	}
	all, err := a.store.List()
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(all))
	for _, m := range all {
		out = append(out, Status{
			Name:        m.Name,
			Applied:     appliedSet[m.Name],
			Destructive: m.Destructive(),
		})
	}
	return out, nil
}

// Plan renders the statements a migration would execute, without
// touching the database.
func (a *Applier) Plan(m *Migration) ([]sqlgen.Statement, error) {
	from, err := a.fromSchema(m)
	if err != nil {
		return nil, err
	}
	return renderAll(m, m.Operations, from, a.backend.Dialect())
}

// Apply runs one migration. An already-applied migration is a silent
// no-op; re-running the whole chain is always safe.
func (a *Applier) Apply(ctx context.Context, m *Migration) error {
	if err := a.history.Ensure(ctx); err != nil {
		return err
	}
	done, err := a.history.IsApplied(ctx, m.Name)
	if err != nil {
		return err
	}
	if done {
		debug.Debug("migration already applied", "name", m.Name)
		return nil
	}

	applied, err := a.history.Applied(ctx)
	if err != nil {
		return err
	}
	last := ""
	if len(applied) > 0 {
		last = applied[len(applied)-1]
	}
	if m.FromName != last {
		return &MigrationError{
			Code:      CodeOutOfOrder,
			Migration: m.Name,
			Message:   "migration does not follow the last applied migration " + displayName(last),
		}
	}
	expected, err := a.appliedHash(last)
	if err != nil {
		return err
	}
	if m.FromHash != expected {
		return &MigrationError{
			Code:      CodeSchemaDrift,
			Migration: m.Name,
			Message:   "database schema does not match the migration's starting snapshot",
		}
	}

	from, err := a.fromSchema(m)
	if err != nil {
		return err
	}

	tx, err := a.backend.Begin(ctx)
	if err != nil {
		return err
	}
	if err := a.execute(ctx, tx, m, m.Operations, from); err != nil {
		tx.Rollback()
		return err
	}
	if err := a.history.Record(ctx, tx, m.Name); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	debug.Info("applied migration", "name", m.Name)
	return nil
}

// ApplyAll applies every stored migration in order and returns the
// names of those that actually ran.
func (a *Applier) ApplyAll(ctx context.Context) ([]string, error) {
	if err := a.history.Ensure(ctx); err != nil {
		return nil, err
	}
	all, err := a.store.List()
	if err != nil {
		return nil, err
	}
	var ran []string
	for _, m := range all {
		done, err := a.history.IsApplied(ctx, m.Name)
		if err != nil {
			return ran, err
		}
		if done {
			continue
		}
		if err := a.Apply(ctx, m); err != nil {
			return ran, err
		}
		ran = append(ran, m.Name)
	}
	return ran, nil
}

// Rollback reverses the most recently applied migration using its
// recorded down operations and removes its history row, all in one
// transaction.
func (a *Applier) Rollback(ctx context.Context) (string, error) {
	if err := a.history.Ensure(ctx); err != nil {
		return "", err
	}
	applied, err := a.history.Applied(ctx)
	if err != nil {
		return "", err
	}
	if len(applied) == 0 {
		return "", &MigrationError{Code: CodeNotFound, Message: "no applied migrations to roll back"}
	}
	name := applied[len(applied)-1]
	m, err := a.store.Get(name)
	if err != nil {
		return "", err
	}

	tx, err := a.backend.Begin(ctx)
	if err != nil {
		return "", err
	}
	if err := a.execute(ctx, tx, m, m.DownOperations, m.Schema); err != nil {
		tx.Rollback()
		return "", err
	}
	if err := a.history.Remove(ctx, tx, m.Name); err != nil {
		tx.Rollback()
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	debug.Info("rolled back migration", "name", m.Name)
	return m.Name, nil
}

// execute renders and runs ops inside tx, evolving the schema snapshot
// one operation at a time so each statement renders against the state
// the database is in after that operation.
func (a *Applier) execute(ctx context.Context, tx db.Tx, m *Migration, ops []schema.Operation, from *schema.Schema) error {
	cur := from
	for i, op := range ops {
		next, err := cur.Apply(op)
		if err != nil {
			return &MigrationError{
				Code: CodeCorrupt, Migration: m.Name, OpIndex: i, Op: op.String(),
				Message: "operation does not apply to its snapshot", Cause: err,
			}
		}
		stmts, err := sqlgen.RenderOperation(op, next, a.backend.Dialect())
		if err != nil {
			return &MigrationError{
				Code: CodeOperationFailed, Migration: m.Name, OpIndex: i, Op: op.String(),
				Message: "failed to render operation", Cause: err,
			}
		}
		for _, stmt := range stmts {
			if _, err := tx.Execute(ctx, stmt.SQL, stmt.Args); err != nil {
				return &MigrationError{
					Code: CodeOperationFailed, Migration: m.Name, OpIndex: i, Op: op.String(),
					Message: "operation failed", Cause: err,
				}
			}
		}
		cur = next
	}
	return nil
}

// fromSchema resolves the snapshot a migration starts from.
func (a *Applier) fromSchema(m *Migration) (*schema.Schema, error) {
	if m.FromName == "" {
		return schema.Empty(), nil
	}
	prev, err := a.store.Get(m.FromName)
	if err != nil {
		return nil, err
	}
	return prev.Schema, nil
}

// appliedHash resolves the schema hash the database should currently
// have, given the name of the last applied migration.
func (a *Applier) appliedHash(last string) (string, error) {
	if last == "" {
		return schema.Empty().Hash(), nil
	}
	m, err := a.store.Get(last)
	if err != nil {
		return "", err
	}
	return m.ToHash, nil
}

func renderAll(m *Migration, ops []schema.Operation, from *schema.Schema, d sqlgen.Dialect) ([]sqlgen.Statement, error) {
	cur := from
	var out []sqlgen.Statement
	for i, op := range ops {
		next, err := cur.Apply(op)
		if err != nil {
			return nil, &MigrationError{
				Code: CodeCorrupt, Migration: m.Name, OpIndex: i, Op: op.String(),
				Message: "operation does not apply to its snapshot", Cause: err,
			}
		}
		stmts, err := sqlgen.RenderOperation(op, next, d)
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
		cur = next
	}
	return out, nil
}

func displayName(name string) string {
	if name == "" {
		return "(none)"
	}
	return name
}
