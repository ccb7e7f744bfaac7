package db_test

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sssemil/butane/db"
	"github.com/sssemil/butane/sqlval"
)

func openSqlite(t *testing.T) db.Backend {
	t.Helper()
	backend, err := db.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	_, err = backend.Execute(context.Background(),
		"CREATE TABLE items (id INTEGER PRIMARY KEY, label TEXT NOT NULL, price REAL, created_at TIMESTAMP)", nil)
	require.NoError(t, err)
	return backend
}

func TestConnect_UnknownProvider(t *testing.T) {
	_, err := db.Connect("oracle", "whatever")
	require.Error(t, err)
}

func TestBackend_ExecuteAndQuery(t *testing.T) {
	ctx := context.Background()
	backend := openSqlite(t)

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	affected, err := backend.Execute(ctx,
		"INSERT INTO items (id, label, price, created_at) VALUES (?, ?, ?, ?)",
		[]sqlval.Value{sqlval.Int(1), sqlval.Text("apple"), sqlval.Real(1.25), sqlval.Timestamp(created)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	rows, err := backend.Query(ctx, "SELECT id, label, price, created_at FROM items", nil)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	vals, err := rows.Scan([]sqlval.Kind{sqlval.KindInt, sqlval.KindText, sqlval.KindReal, sqlval.KindTimestamp})
	require.NoError(t, err)

	id, _ := vals[0].IntValue()
	label, _ := vals[1].TextValue()
	price, _ := vals[2].RealValue()
	ts, _ := vals[3].TimestampValue()
	assert.Equal(t, int64(1), id)
	assert.Equal(t, "apple", label)
	assert.Equal(t, 1.25, price)
	assert.True(t, ts.Equal(created))

	assert.False(t, rows.Next())
	require.NoError(t, rows.Err())
}

func TestBackend_NullRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := openSqlite(t)

	_, err := backend.Execute(ctx,
		"INSERT INTO items (id, label, price) VALUES (?, ?, ?)",
		[]sqlval.Value{sqlval.Int(1), sqlval.Text("bare"), sqlval.Null()})
	require.NoError(t, err)

	rows, err := backend.Query(ctx, "SELECT price FROM items WHERE id = ?", []sqlval.Value{sqlval.Int(1)})
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	vals, err := rows.Scan([]sqlval.Kind{sqlval.KindReal})
	require.NoError(t, err)
	assert.True(t, vals[0].IsNull())
}

func TestBackend_QueryErrorIsBackendError(t *testing.T) {
	backend := openSqlite(t)
	_, err := backend.Query(context.Background(), "SELECT nope FROM missing", nil)
	var berr *db.BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "query", berr.Op)
}

func TestTx_CommitMakesWritesVisible(t *testing.T) {
	ctx := context.Background()
	backend := openSqlite(t)

	tx, err := backend.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Execute(ctx, "INSERT INTO items (id, label) VALUES (?, ?)",
		[]sqlval.Value{sqlval.Int(1), sqlval.Text("kept")})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	rows, err := backend.Query(ctx, "SELECT COUNT(*) FROM items", nil)
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	vals, err := rows.Scan([]sqlval.Kind{sqlval.KindInt})
	require.NoError(t, err)
	count, _ := vals[0].IntValue()
	assert.Equal(t, int64(1), count)
}

func TestTx_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	backend := openSqlite(t)

	tx, err := backend.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Execute(ctx, "INSERT INTO items (id, label) VALUES (?, ?)",
		[]sqlval.Value{sqlval.Int(1), sqlval.Text("gone")})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	rows, err := backend.Query(ctx, "SELECT COUNT(*) FROM items", nil)
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	vals, err := rows.Scan([]sqlval.Kind{sqlval.KindInt})
	require.NoError(t, err)
	count, _ := vals[0].IntValue()
	assert.Equal(t, int64(0), count)
}

func TestRows_Collect(t *testing.T) {
	ctx := context.Background()
	backend := openSqlite(t)

	for i := 1; i <= 3; i++ {
		_, err := backend.Execute(ctx, "INSERT INTO items (id, label) VALUES (?, ?)",
			[]sqlval.Value{sqlval.Int(int64(i)), sqlval.Text("x")})
		require.NoError(t, err)
	}

	rows, err := backend.Query(ctx, "SELECT id FROM items ORDER BY id", nil)
	require.NoError(t, err)
	all, err := rows.Collect([]sqlval.Kind{sqlval.KindInt})
	require.NoError(t, err)
	require.Len(t, all, 3)
	last, _ := all[2][0].IntValue()
	assert.Equal(t, int64(3), last)
}
