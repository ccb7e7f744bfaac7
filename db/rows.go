package db

import (
	"database/sql"

	"github.com/sssemil/butane/sqlval"
)

// Rows is a lazy, forward-only, single-pass stream of result rows. It
// must be fully consumed or closed before the owning connection or
// transaction issues another statement; most wire protocols allow only
// one statement in flight per connection.
type Rows struct {
	rows *sql.Rows
	err  error
}

// Next advances to the next row, returning false at the end of the
// stream or on error. Check Err after a false return.
func (r *Rows) Next() bool {
	if r.err != nil {
		return false
	}
	return r.rows.Next()
}

// Scan converts the current row's cells into values of the wanted kinds.
// Cell conversion failures surface as sqlval.ConversionError; transport
// failures as BackendError.
func (r *Rows) Scan(kinds []sqlval.Kind) ([]sqlval.Value, error) {
	cells := make([]any, len(kinds))
	ptrs := make([]any, len(kinds))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		r.err = &BackendError{Op: "scan", Err: err}
		return nil, r.err
	}
	values := make([]sqlval.Value, len(kinds))
	for i, cell := range cells {
		v, err := sqlval.FromBackend(cell, kinds[i])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Err returns the error that terminated iteration, if any.
func (r *Rows) Err() error {
	if r.err != nil {
		return r.err
	}
	if err := r.rows.Err(); err != nil {
		return &BackendError{Op: "query", Err: err}
	}
	return nil
}

// Close discards the remainder of the stream. Safe to call more than
// once.
func (r *Rows) Close() error {
	return r.rows.Close()
}

// Collect drains the stream into memory and closes it. Intended for
// small result sets like the migration history.
func (r *Rows) Collect(kinds []sqlval.Kind) ([][]sqlval.Value, error) {
	defer r.Close()
	var out [][]sqlval.Value
	for r.Next() {
		row, err := r.Scan(kinds)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
