package migrate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sssemil/butane/db"
	"github.com/sssemil/butane/schema"
	"github.com/sssemil/butane/sqlgen"
	"github.com/sssemil/butane/sqlval"
)

// HistoryTable is the in-database record of applied migrations. It is
// the only schema object the engine owns.
const HistoryTable = "butane_migrations"

// historySchema describes the history table so its DDL renders through
// the same pipeline as user tables.
func historySchema() *schema.Schema {
	return schema.New(schema.Table{
		Name: HistoryTable,
		Columns: []schema.Column{
			{Name: "name", Type: schema.Type(schema.TypeText), PrimaryKey: true},
			{Name: "applied_at", Type: schema.Type(schema.TypeTimestamp)},
		},
	})
}

// History reads and writes the applied-migration record.
type History struct {
	backend db.Backend
}

func NewHistory(backend db.Backend) *History {
	return &History{backend: backend}
}

// Ensure creates the history table if it does not exist yet. The CREATE
// is issued with IF NOT EXISTS so concurrent callers are safe.
func (h *History) Ensure(ctx context.Context) error {
	s := historySchema()
	tbl, _ := s.Table(HistoryTable)
	op := schema.Operation{Kind: schema.OpCreateTable, TableName: HistoryTable, Table: &tbl}
	stmts, err := sqlgen.RenderOperation(op, s, h.backend.Dialect())
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		sql := stmt.SQL
		if rest, ok := strings.CutPrefix(sql, "CREATE TABLE"); ok {
			sql = "CREATE TABLE IF NOT EXISTS" + rest
		}
		if _, err := h.backend.Execute(ctx, sql, stmt.Args); err != nil {
			return err
		}
	}
	return nil
}

// Applied returns the names of applied migrations in application order.
func (h *History) Applied(ctx context.Context) ([]string, error) {
	d := h.backend.Dialect()
	sql := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		d.QuoteIdent("name"), d.QuoteIdent(HistoryTable), d.QuoteIdent("name"))
	rows, err := h.backend.Query(ctx, sql, nil)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		vals, err := rows.Scan([]sqlval.Kind{sqlval.KindText})
		if err != nil {
			return nil, err
		}
		name, _ := vals[0].TextValue()
		names = append(names, name)
	}
	return names, rows.Err()
}

// IsApplied reports whether the named migration is recorded as applied.
func (h *History) IsApplied(ctx context.Context, name string) (bool, error) {
	d := h.backend.Dialect()
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		d.QuoteIdent("name"), d.QuoteIdent(HistoryTable),
		d.QuoteIdent("name"), d.Placeholder(1))
	rows, err := h.backend.Query(ctx, sql, []sqlval.Value{sqlval.Text(name)})
	if err != nil {
		return false, err
	}
	defer rows.Close()
	found := rows.Next()
	return found, rows.Err()
}

// Record inserts a history row. It runs on the executor so it can join
// the migration's transaction.
func (h *History) Record(ctx context.Context, exec db.Executor, name string) error {
	d := h.backend.Dialect()
	sql := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (%s, %s)",
		d.QuoteIdent(HistoryTable), d.QuoteIdent("name"), d.QuoteIdent("applied_at"),
		d.Placeholder(1), d.Placeholder(2))
	_, err := exec.Execute(ctx, sql, []sqlval.Value{
		sqlval.Text(name),
		sqlval.Timestamp(time.Now().UTC()),
	})
	return err
}

// Remove deletes a history row after a rollback.
func (h *History) Remove(ctx context.Context, exec db.Executor, name string) error {
	d := h.backend.Dialect()
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		d.QuoteIdent(HistoryTable), d.QuoteIdent("name"), d.Placeholder(1))
	_, err := exec.Execute(ctx, sql, []sqlval.Value{sqlval.Text(name)})
	return err
}
