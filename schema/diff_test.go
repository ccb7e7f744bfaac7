package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_IdenticalSchemasProduceNothing(t *testing.T) {
	s := New(usersTable(), postsTable())
	ops, err := Diff(s, s)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestDiff_CreateRespectsForeignKeyOrder(t *testing.T) {
	to := New(postsTable(), usersTable())
	ops, err := Diff(Empty(), to)
	require.NoError(t, err)

	var creates []string
	for _, op := range ops {
		if op.Kind == OpCreateTable {
			creates = append(creates, op.TableName)
		}
	}
	// posts references users, so users must come first despite sorting
	assert.Equal(t, []string{"users", "posts"}, creates)
}

func TestDiff_CreateEmitsIndexesSeparately(t *testing.T) {
	to := New(usersTable())
	ops, err := Diff(Empty(), to)
	require.NoError(t, err)

	require.Len(t, ops, 2)
	assert.Equal(t, OpCreateTable, ops[0].Kind)
	assert.Empty(t, ops[0].Table.Indexes)
	assert.Equal(t, OpAddIndex, ops[1].Kind)
	assert.Equal(t, []string{"name"}, ops[1].Index.Columns)
}

func TestDiff_DropsReferencingTablesFirst(t *testing.T) {
	from := New(usersTable(), postsTable())
	ops, err := Diff(from, Empty())
	require.NoError(t, err)

	var drops []string
	for _, op := range ops {
		if op.Kind == OpDropTable {
			drops = append(drops, op.TableName)
		}
	}
	assert.Equal(t, []string{"posts", "users"}, drops)
}

func TestDiff_ColumnChanges(t *testing.T) {
	from := New(usersTable())

	next := usersTable()
	// email dropped, age added, name becomes nullable
	next.Columns = []Column{
		next.Columns[0],
		{Name: "name", Type: Type(TypeText), Nullable: true},
		{Name: "age", Type: Type(TypeInt), Nullable: true},
	}
	to := New(next)

	ops, err := Diff(from, to)
	require.NoError(t, err)
	require.Len(t, ops, 3)

	assert.Equal(t, OpRemoveColumn, ops[0].Kind)
	assert.Equal(t, "email", ops[0].ColumnName)
	assert.Equal(t, OpAddColumn, ops[1].Kind)
	assert.Equal(t, "age", ops[1].Column.Name)
	assert.Equal(t, OpChangeColumnType, ops[2].Kind)
	assert.Equal(t, "name", ops[2].Column.Name)
	assert.True(t, ops[2].Column.Nullable)
}

func TestDiff_IndexChanges(t *testing.T) {
	from := New(usersTable())

	next := usersTable()
	next.Indexes = []Index{{Columns: []string{"email"}, Unique: true}}
	to := New(next)

	ops, err := Diff(from, to)
	require.NoError(t, err)
	require.Len(t, ops, 2)

	assert.Equal(t, OpRemoveIndex, ops[0].Kind)
	assert.Equal(t, []string{"name"}, ops[0].Index.Columns)
	assert.Equal(t, OpAddIndex, ops[1].Kind)
	assert.True(t, ops[1].Index.Unique)
}

func TestDiff_RemovalsComeBeforeCreations(t *testing.T) {
	from := New(usersTable())

	next := usersTable()
	next.Columns = next.Columns[:2]
	next.Indexes = nil
	to := New(next, Table{
		Name:    "tags",
		Columns: []Column{{Name: "id", Type: Type(TypeInt), PrimaryKey: true}},
	})

	ops, err := Diff(from, to)
	require.NoError(t, err)

	kinds := make([]OpKind, len(ops))
	for i, op := range ops {
		kinds[i] = op.Kind
	}
	assert.Equal(t, []OpKind{OpRemoveIndex, OpRemoveColumn, OpCreateTable}, kinds)
}

func TestDiff_SelfReferenceIsACycle(t *testing.T) {
	to := New(Table{
		Name: "employees",
		Columns: []Column{
			{Name: "id", Type: Type(TypeBigInt), PrimaryKey: true},
			{Name: "manager", Type: ForeignKey("employees"), Nullable: true},
		},
	})

	_, err := Diff(Empty(), to)
	var serr *SchemaError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeCyclicForeignKeys, serr.Code)
	assert.Equal(t, []string{"employees"}, serr.Tables)
}

func TestDiff_MutualReferenceIsACycle(t *testing.T) {
	to := New(
		Table{
			Name: "a",
			Columns: []Column{
				{Name: "id", Type: Type(TypeInt), PrimaryKey: true},
				{Name: "b_ref", Type: ForeignKey("b")},
			},
		},
		Table{
			Name: "b",
			Columns: []Column{
				{Name: "id", Type: Type(TypeInt), PrimaryKey: true},
				{Name: "a_ref", Type: ForeignKey("a")},
			},
		},
	)

	_, err := Diff(Empty(), to)
	var serr *SchemaError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, CodeCyclicForeignKeys, serr.Code)
	assert.Equal(t, []string{"a", "b"}, serr.Tables)
}

func TestApply_RejectsUnknownTargets(t *testing.T) {
	s := New(usersTable())

	_, err := s.Apply(Operation{Kind: OpRemoveColumn, TableName: "users", ColumnName: "ghost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users.ghost")

	_, err = s.Apply(Operation{
		Kind:      OpChangeColumnType,
		TableName: "users",
		Column:    &Column{Name: "ghost", Type: Type(TypeText)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users.ghost")

	_, err = s.Apply(Operation{
		Kind:      OpRemoveIndex,
		TableName: "users",
		Index:     &Index{Columns: []string{"ghost"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matches no index")
}

func TestApply_ReplaysDiff(t *testing.T) {
	from := New(usersTable())
	to := New(usersTable(), postsTable(), Table{
		Name: "tags",
		Columns: []Column{
			{Name: "id", Type: Type(TypeInt), PrimaryKey: true},
			{Name: "label", Type: Type(TypeText)},
		},
		Indexes: []Index{{Columns: []string{"label"}, Unique: true}},
	})

	ops, err := Diff(from, to)
	require.NoError(t, err)

	got, err := from.Apply(ops...)
	require.NoError(t, err)
	assert.True(t, got.Equal(to))
	assert.Equal(t, to.Hash(), got.Hash())
}
