// Package schema models database structure as immutable snapshots and
// computes the ordered operation sequences that bridge two snapshots.
package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/sssemil/butane/sqlval"
)

// TypeKind enumerates the declared column types.
type TypeKind string

const (
	TypeBool       TypeKind = "bool"
	TypeInt        TypeKind = "int"
	TypeBigInt     TypeKind = "bigint"
	TypeReal       TypeKind = "real"
	TypeText       TypeKind = "text"
	TypeBlob       TypeKind = "blob"
	TypeTimestamp  TypeKind = "timestamp"
	TypeUuid       TypeKind = "uuid"
	TypeForeignKey TypeKind = "fk"
)

// ColumnType is the declared type of a column. Foreign-key columns carry
// the referenced table name and take on the concrete type of that table's
// primary key when rendered.
type ColumnType struct {
	Kind       TypeKind `json:"kind"`
	References string   `json:"references,omitempty"`
}

// Type constructs a plain column type
func Type(kind TypeKind) ColumnType {
	return ColumnType{Kind: kind}
}

// ForeignKey constructs a foreign-key column type referencing a table
func ForeignKey(table string) ColumnType {
	return ColumnType{Kind: TypeForeignKey, References: table}
}

// ValueKind maps a concrete (non-FK) column type to its value variant.
func (t ColumnType) ValueKind() sqlval.Kind {
	switch t.Kind {
	case TypeBool:
		return sqlval.KindBool
	case TypeInt, TypeBigInt:
		return sqlval.KindInt
	case TypeReal:
		return sqlval.KindReal
	case TypeText:
		return sqlval.KindText
	case TypeBlob:
		return sqlval.KindBlob
	case TypeTimestamp:
		return sqlval.KindTimestamp
	case TypeUuid:
		return sqlval.KindUuid
	default:
		return sqlval.KindNull
	}
}

// Column describes one column of a table.
type Column struct {
	Name       string        `json:"name"`
	Type       ColumnType    `json:"type"`
	Nullable   bool          `json:"nullable,omitempty"`
	Default    *sqlval.Value `json:"default,omitempty"`
	PrimaryKey bool          `json:"primary_key,omitempty"`
}

// Equal compares two columns structurally
func (c Column) Equal(o Column) bool {
	if c.Name != o.Name || c.Type != o.Type || c.Nullable != o.Nullable || c.PrimaryKey != o.PrimaryKey {
		return false
	}
	if (c.Default == nil) != (o.Default == nil) {
		return false
	}
	if c.Default != nil && !c.Default.Equal(*o.Default) {
		return false
	}
	return true
}

// Index describes a table index. Identity is structural: the ordered
// column list plus the uniqueness flag. Index names are derived at
// rendering time.
type Index struct {
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
}

// Equal compares two indexes structurally
func (i Index) Equal(o Index) bool {
	if i.Unique != o.Unique || len(i.Columns) != len(o.Columns) {
		return false
	}
	for n, col := range i.Columns {
		if col != o.Columns[n] {
			return false
		}
	}
	return true
}

// Table describes one table: ordered columns, foreign-key references and
// indexes. Column order matters for CREATE TABLE rendering but not for
// semantic equality.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Indexes []Index  `json:"indexes,omitempty"`
}

// Column returns the named column and whether it exists
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKey returns the primary-key column and whether one is declared
func (t Table) PrimaryKey() (Column, bool) {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c, true
		}
	}
	return Column{}, false
}

// References returns the sorted set of tables this table's foreign-key
// columns point at, excluding itself.
func (t Table) References() []string {
	seen := map[string]bool{}
	var refs []string
	for _, c := range t.Columns {
		if c.Type.Kind == TypeForeignKey && c.Type.References != t.Name && !seen[c.Type.References] {
			seen[c.Type.References] = true
			refs = append(refs, c.Type.References)
		}
	}
	sort.Strings(refs)
	return refs
}

// Equal compares two tables semantically, ignoring column order
func (t Table) Equal(o Table) bool {
	if t.Name != o.Name || len(t.Columns) != len(o.Columns) || len(t.Indexes) != len(o.Indexes) {
		return false
	}
	for _, c := range t.Columns {
		oc, ok := o.Column(c.Name)
		if !ok || !c.Equal(oc) {
			return false
		}
	}
	for _, idx := range t.Indexes {
		found := false
		for _, oidx := range o.Indexes {
			if idx.Equal(oidx) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Schema is an immutable snapshot of the modeled database structure.
// Snapshots are freely shared across concurrent readers.
type Schema struct {
	tables map[string]Table
}

// New builds a schema snapshot from tables. Input slices are copied so
// later mutation by the caller cannot leak into the snapshot.
func New(tables ...Table) *Schema {
	m := make(map[string]Table, len(tables))
	for _, t := range tables {
		m[t.Name] = copyTable(t)
	}
	return &Schema{tables: m}
}

// NewChecked builds a schema snapshot from tables, rejecting duplicate
// table names. New keeps only the last definition of a repeated name, so
// callers assembling tables from external input use this instead.
func NewChecked(tables ...Table) (*Schema, error) {
	seen := make(map[string]bool, len(tables))
	for _, t := range tables {
		if seen[t.Name] {
			return nil, &SchemaError{
				Code:    CodeDuplicateTable,
				Table:   t.Name,
				Message: "table defined more than once",
			}
		}
		seen[t.Name] = true
	}
	return New(tables...), nil
}

// Empty returns the schema snapshot of an empty database
func Empty() *Schema {
	return &Schema{tables: map[string]Table{}}
}

func copyTable(t Table) Table {
	cp := Table{Name: t.Name}
	cp.Columns = append([]Column(nil), t.Columns...)
	for _, idx := range t.Indexes {
		cp.Indexes = append(cp.Indexes, Index{Columns: append([]string(nil), idx.Columns...), Unique: idx.Unique})
	}
	return cp
}

// Table returns the named table and whether it exists
func (s *Schema) Table(name string) (Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// Tables returns all tables sorted by name
func (s *Schema) Tables() []Table {
	out := make([]Table, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of tables
func (s *Schema) Len() int { return len(s.tables) }

// WithTable returns a new snapshot with the table added or replaced
func (s *Schema) WithTable(t Table) *Schema {
	next := make(map[string]Table, len(s.tables)+1)
	for k, v := range s.tables {
		next[k] = v
	}
	next[t.Name] = copyTable(t)
	return &Schema{tables: next}
}

// ConcreteType resolves a column type to its rendered concrete type. A
// foreign-key column takes the type of the referenced table's primary key.
func (s *Schema) ConcreteType(t ColumnType) (ColumnType, error) {
	if t.Kind != TypeForeignKey {
		return t, nil
	}
	ref, ok := s.tables[t.References]
	if !ok {
		return ColumnType{}, &SchemaError{
			Code:    CodeUnknownReferenced,
			Table:   t.References,
			Message: "foreign key references unknown table",
		}
	}
	pk, ok := ref.PrimaryKey()
	if !ok {
		return ColumnType{}, &SchemaError{
			Code:    CodeMissingPrimaryKey,
			Table:   ref.Name,
			Message: "referenced table has no primary key",
		}
	}
	return s.ConcreteType(pk.Type)
}

// ValueKind resolves the value variant stored in a column, following
// foreign keys to the referenced primary key.
func (s *Schema) ValueKind(table, column string) (sqlval.Kind, error) {
	t, ok := s.tables[table]
	if !ok {
		return sqlval.KindNull, &SchemaError{Code: CodeUnknownReferenced, Table: table, Message: "unknown table"}
	}
	c, ok := t.Column(column)
	if !ok {
		return sqlval.KindNull, &SchemaError{Code: CodeUnknownReferenced, Table: table, Column: column, Message: "unknown column"}
	}
	ct, err := s.ConcreteType(c.Type)
	if err != nil {
		return sqlval.KindNull, err
	}
	return ct.ValueKind(), nil
}

// Validate checks structural invariants: unique column names, at most one
// primary key per table, resolvable foreign keys, indexable columns and
// defaults compatible with nullability.
func (s *Schema) Validate() error {
	for _, t := range s.Tables() {
		seen := map[string]bool{}
		pkCount := 0
		for _, c := range t.Columns {
			if seen[c.Name] {
				return &SchemaError{Code: CodeDuplicateColumn, Table: t.Name, Column: c.Name, Message: "duplicate column"}
			}
			seen[c.Name] = true
			if c.PrimaryKey {
				pkCount++
			}
			if c.Default != nil && c.Default.IsNull() && !c.Nullable {
				return &SchemaError{Code: CodeBadDefault, Table: t.Name, Column: c.Name, Message: "null default on non-nullable column"}
			}
			if c.Type.Kind == TypeForeignKey {
				if _, err := s.ConcreteType(c.Type); err != nil {
					return err
				}
			}
		}
		if pkCount > 1 {
			return &SchemaError{Code: CodeMultiplePrimaryKeys, Table: t.Name, Message: "more than one primary key column"}
		}
		for _, idx := range t.Indexes {
			for _, col := range idx.Columns {
				if !seen[col] {
					return &SchemaError{Code: CodeUnknownIndexedColumn, Table: t.Name, Column: col, Message: "index names unknown column"}
				}
			}
		}
	}
	return nil
}

// Equal compares two snapshots structurally
func (s *Schema) Equal(o *Schema) bool {
	if len(s.tables) != len(o.tables) {
		return false
	}
	for name, t := range s.tables {
		ot, ok := o.tables[name]
		if !ok || !t.Equal(ot) {
			return false
		}
	}
	return true
}

// canonical is the stable serialized shape used for hashing and for the
// table snapshots inside migration files. Columns are sorted by name so
// declaration order does not affect the hash.
type canonical struct {
	Tables []canonicalTable `json:"tables"`
}

type canonicalTable struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Indexes []Index  `json:"indexes,omitempty"`
}

func (s *Schema) canonical() canonical {
	var c canonical
	for _, t := range s.Tables() {
		ct := canonicalTable{Name: t.Name}
		ct.Columns = append([]Column(nil), t.Columns...)
		sort.Slice(ct.Columns, func(i, j int) bool { return ct.Columns[i].Name < ct.Columns[j].Name })
		ct.Indexes = append([]Index(nil), t.Indexes...)
		sort.Slice(ct.Indexes, func(i, j int) bool { return indexLess(ct.Indexes[i], ct.Indexes[j]) })
		c.Tables = append(c.Tables, ct)
	}
	return c
}

// Hash returns the content hash of the snapshot, used to detect drift
// between generated migrations and the database's recorded state.
func (s *Schema) Hash() string {
	data, err := json.Marshal(s.canonical())
	if err != nil {
		// canonical form contains only marshalable types
		panic(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func indexLess(a, b Index) bool {
	if a.Unique != b.Unique {
		return !a.Unique
	}
	for i := 0; i < len(a.Columns) && i < len(b.Columns); i++ {
		if a.Columns[i] != b.Columns[i] {
			return a.Columns[i] < b.Columns[i]
		}
	}
	return len(a.Columns) < len(b.Columns)
}
