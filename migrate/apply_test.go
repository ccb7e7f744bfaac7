package migrate_test

import (
	"context"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sssemil/butane/db"
	"github.com/sssemil/butane/migrate"
	"github.com/sssemil/butane/schema"
	"github.com/sssemil/butane/sqlval"
)

func sqliteBackend(t *testing.T) db.Backend {
	t.Helper()
	backend, err := db.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend
}

func tableNames(t *testing.T, backend db.Backend) []string {
	t.Helper()
	rows, err := backend.Query(context.Background(),
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name", nil)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		vals, err := rows.Scan([]sqlval.Kind{sqlval.KindText})
		require.NoError(t, err)
		name, _ := vals[0].TextValue()
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestApplier_ApplyCreatesTablesAndHistory(t *testing.T) {
	ctx := context.Background()
	backend := sqliteBackend(t)
	store := memStore()

	m, err := store.Create("initial", schemaV1())
	require.NoError(t, err)

	applier := migrate.NewApplier(backend, store)
	require.NoError(t, applier.Apply(ctx, m))

	names := tableNames(t, backend)
	assert.Contains(t, names, "users")
	assert.Contains(t, names, migrate.HistoryTable)

	statuses, err := applier.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Applied)
}

func TestApplier_ApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	backend := sqliteBackend(t)
	store := memStore()

	m, err := store.Create("initial", schemaV1())
	require.NoError(t, err)
	applier := migrate.NewApplier(backend, store)

	require.NoError(t, applier.Apply(ctx, m))
	// second run is a no-op, not an error
	require.NoError(t, applier.Apply(ctx, m))

	rows, err := backend.Query(ctx, "SELECT COUNT(*) FROM butane_migrations", nil)
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	vals, err := rows.Scan([]sqlval.Kind{sqlval.KindInt})
	require.NoError(t, err)
	count, _ := vals[0].IntValue()
	assert.Equal(t, int64(1), count)
}

func TestApplier_ApplyAllRunsChainInOrder(t *testing.T) {
	ctx := context.Background()
	backend := sqliteBackend(t)
	store := memStore()

	_, err := store.Create("initial", schemaV1())
	require.NoError(t, err)
	_, err = store.Create("add_email", schemaV2())
	require.NoError(t, err)

	applier := migrate.NewApplier(backend, store)
	ran, err := applier.ApplyAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_initial", "0002_add_email"}, ran)

	// the added column is live
	_, err = backend.Execute(ctx,
		"INSERT INTO users (id, name, email) VALUES (1, 'ada', 'a@b.c')", nil)
	require.NoError(t, err)

	ran, err = applier.ApplyAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, ran)
}

func TestApplier_OutOfOrderApplyFails(t *testing.T) {
	ctx := context.Background()
	backend := sqliteBackend(t)
	store := memStore()

	_, err := store.Create("initial", schemaV1())
	require.NoError(t, err)
	second, err := store.Create("add_email", schemaV2())
	require.NoError(t, err)

	applier := migrate.NewApplier(backend, store)
	err = applier.Apply(ctx, second)

	var merr *migrate.MigrationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, migrate.CodeOutOfOrder, merr.Code)
	assert.NotContains(t, tableNames(t, backend), "users")
}

func TestApplier_DriftDetection(t *testing.T) {
	ctx := context.Background()
	backend := sqliteBackend(t)
	store := memStore()

	first, err := store.Create("initial", schemaV1())
	require.NoError(t, err)
	applier := migrate.NewApplier(backend, store)
	require.NoError(t, applier.Apply(ctx, first))

	// a migration whose starting snapshot does not match the database
	forged := &migrate.Migration{
		Name:     "0002_forged",
		FromName: first.Name,
		FromHash: "not-the-real-hash",
		ToHash:   schemaV2().Hash(),
		Schema:   schemaV2(),
	}
	err = applier.Apply(ctx, forged)

	var merr *migrate.MigrationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, migrate.CodeSchemaDrift, merr.Code)
}

func TestApplier_FailedOperationRollsBackWholeMigration(t *testing.T) {
	ctx := context.Background()
	backend := sqliteBackend(t)
	store := memStore()

	first, err := store.Create("initial", schemaV1())
	require.NoError(t, err)
	applier := migrate.NewApplier(backend, store)
	require.NoError(t, applier.Apply(ctx, first))

	// second operation collides with the already-existing users table,
	// so the first operation's tags table must not survive
	tags := schema.Table{
		Name:    "tags",
		Columns: []schema.Column{{Name: "id", Type: schema.Type(schema.TypeInt), PrimaryKey: true}},
	}
	users := schema.Table{
		Name:    "users",
		Columns: []schema.Column{{Name: "id", Type: schema.Type(schema.TypeInt), PrimaryKey: true}},
	}
	bad := &migrate.Migration{
		Name:     "0002_bad",
		FromName: first.Name,
		FromHash: first.ToHash,
		Operations: []schema.Operation{
			{Kind: schema.OpCreateTable, TableName: "tags", Table: &tags},
			{Kind: schema.OpCreateTable, TableName: "users", Table: &users},
		},
		Schema: schemaV1(),
	}
	bad.ToHash = bad.Schema.Hash()

	err = applier.Apply(ctx, bad)
	var merr *migrate.MigrationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, migrate.CodeOperationFailed, merr.Code)
	assert.Equal(t, 1, merr.OpIndex)

	assert.NotContains(t, tableNames(t, backend), "tags")

	statuses, err := applier.Status(ctx)
	require.NoError(t, err)
	for _, st := range statuses {
		if st.Name == "0002_bad" {
			assert.False(t, st.Applied)
		}
	}
}

func TestApplier_Rollback(t *testing.T) {
	ctx := context.Background()
	backend := sqliteBackend(t)
	store := memStore()

	_, err := store.Create("initial", schemaV1())
	require.NoError(t, err)
	_, err = store.Create("add_email", schemaV2())
	require.NoError(t, err)

	applier := migrate.NewApplier(backend, store)
	_, err = applier.ApplyAll(ctx)
	require.NoError(t, err)

	name, err := applier.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0002_add_email", name)

	// email is gone again
	_, err = backend.Execute(ctx,
		"INSERT INTO users (id, name, email) VALUES (1, 'ada', 'a@b.c')", nil)
	require.Error(t, err)
	_, err = backend.Execute(ctx,
		"INSERT INTO users (id, name) VALUES (1, 'ada')", nil)
	require.NoError(t, err)

	// and the migration can be applied again
	ran, err := applier.ApplyAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_add_email"}, ran)
}

func TestApplier_RollbackWithNothingApplied(t *testing.T) {
	backend := sqliteBackend(t)
	applier := migrate.NewApplier(backend, memStore())

	_, err := applier.Rollback(context.Background())
	var merr *migrate.MigrationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, migrate.CodeNotFound, merr.Code)
}

func TestApplier_PlanDoesNotTouchDatabase(t *testing.T) {
	backend := sqliteBackend(t)
	store := memStore()

	m, err := store.Create("initial", schemaV1())
	require.NoError(t, err)

	applier := migrate.NewApplier(backend, store)
	stmts, err := applier.Plan(m)
	require.NoError(t, err)
	require.NotEmpty(t, stmts)
	assert.Contains(t, stmts[0].SQL, "CREATE TABLE users")

	assert.NotContains(t, tableNames(t, backend), "users")
}
