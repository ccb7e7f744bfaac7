package schema

import "fmt"

// OpKind identifies a schema mutation.
type OpKind string

const (
	OpCreateTable      OpKind = "create_table"
	OpDropTable        OpKind = "drop_table"
	OpAddColumn        OpKind = "add_column"
	OpRemoveColumn     OpKind = "remove_column"
	OpChangeColumnType OpKind = "change_column"
	OpAddIndex         OpKind = "add_index"
	OpRemoveIndex      OpKind = "remove_index"
)

// Operation is a single atomic schema mutation. An Operation belongs to
// exactly one migration; the slices it carries are never shared.
type Operation struct {
	Kind OpKind `json:"kind"`

	// TableName names the affected table for every kind.
	TableName string `json:"table_name"`

	// Table is the full definition for create_table.
	Table *Table `json:"table,omitempty"`

	// Column carries the new definition for add_column and change_column.
	Column *Column `json:"column,omitempty"`

	// ColumnName names the removed column for remove_column.
	ColumnName string `json:"column_name,omitempty"`

	// Index is the structural index for add_index and remove_index.
	Index *Index `json:"index,omitempty"`
}

// Destructive reports whether applying the operation can discard data.
func (op Operation) Destructive() bool {
	switch op.Kind {
	case OpDropTable, OpRemoveColumn, OpChangeColumnType:
		return true
	}
	return false
}

// String describes the operation for logs and CLI output
func (op Operation) String() string {
	switch op.Kind {
	case OpCreateTable:
		return fmt.Sprintf("create table %s", op.TableName)
	case OpDropTable:
		return fmt.Sprintf("drop table %s", op.TableName)
	case OpAddColumn:
		return fmt.Sprintf("add column %s.%s", op.TableName, op.Column.Name)
	case OpRemoveColumn:
		return fmt.Sprintf("remove column %s.%s", op.TableName, op.ColumnName)
	case OpChangeColumnType:
		return fmt.Sprintf("change column %s.%s", op.TableName, op.Column.Name)
	case OpAddIndex:
		return fmt.Sprintf("add index on %s%s", op.TableName, indexSuffix(op.Index))
	case OpRemoveIndex:
		return fmt.Sprintf("remove index on %s%s", op.TableName, indexSuffix(op.Index))
	default:
		return string(op.Kind)
	}
}

func indexSuffix(idx *Index) string {
	if idx == nil {
		return ""
	}
	s := "("
	for i, c := range idx.Columns {
		if i > 0 {
			s += ", "
		}
		s += c
	}
	return s + ")"
}

// Apply returns the snapshot produced by applying the operation. It is
// used by tests and by the store to verify that a migration's operations
// really bridge its recorded snapshots.
func (s *Schema) Apply(ops ...Operation) (*Schema, error) {
	cur := s
	for _, op := range ops {
		next, err := cur.applyOne(op)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (s *Schema) applyOne(op Operation) (*Schema, error) {
	switch op.Kind {
	case OpCreateTable:
		if op.Table == nil {
			return nil, fmt.Errorf("schema: create_table without table definition")
		}
		return s.WithTable(*op.Table), nil
	case OpDropTable:
		next := make(map[string]Table, len(s.tables))
		for k, v := range s.tables {
			if k != op.TableName {
				next[k] = v
			}
		}
		return &Schema{tables: next}, nil
	case OpAddColumn:
		t, ok := s.Table(op.TableName)
		if !ok {
			return nil, fmt.Errorf("schema: add_column on unknown table %q", op.TableName)
		}
		t.Columns = append(append([]Column(nil), t.Columns...), *op.Column)
		return s.WithTable(t), nil
	case OpRemoveColumn:
		t, ok := s.Table(op.TableName)
		if !ok {
			return nil, fmt.Errorf("schema: remove_column on unknown table %q", op.TableName)
		}
		var cols []Column
		for _, c := range t.Columns {
			if c.Name != op.ColumnName {
				cols = append(cols, c)
			}
		}
		if len(cols) == len(t.Columns) {
			return nil, fmt.Errorf("schema: remove_column on unknown column %s.%s", op.TableName, op.ColumnName)
		}
		t.Columns = cols
		return s.WithTable(t), nil
	case OpChangeColumnType:
		t, ok := s.Table(op.TableName)
		if !ok {
			return nil, fmt.Errorf("schema: change_column on unknown table %q", op.TableName)
		}
		cols := append([]Column(nil), t.Columns...)
		changed := false
		for i, c := range cols {
			if c.Name == op.Column.Name {
				cols[i] = *op.Column
				changed = true
			}
		}
		if !changed {
			return nil, fmt.Errorf("schema: change_column on unknown column %s.%s", op.TableName, op.Column.Name)
		}
		t.Columns = cols
		return s.WithTable(t), nil
	case OpAddIndex:
		t, ok := s.Table(op.TableName)
		if !ok {
			return nil, fmt.Errorf("schema: add_index on unknown table %q", op.TableName)
		}
		t.Indexes = append(append([]Index(nil), t.Indexes...), *op.Index)
		return s.WithTable(t), nil
	case OpRemoveIndex:
		t, ok := s.Table(op.TableName)
		if !ok {
			return nil, fmt.Errorf("schema: remove_index on unknown table %q", op.TableName)
		}
		var idxs []Index
		for _, idx := range t.Indexes {
			if !idx.Equal(*op.Index) {
				idxs = append(idxs, idx)
			}
		}
		if len(idxs) == len(t.Indexes) {
			return nil, fmt.Errorf("schema: remove_index on %s%s matches no index", op.TableName, indexSuffix(op.Index))
		}
		t.Indexes = idxs
		return s.WithTable(t), nil
	default:
		return nil, fmt.Errorf("schema: unknown operation kind %q", op.Kind)
	}
}
