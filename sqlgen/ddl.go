package sqlgen

import (
	"fmt"
	"strings"

	"github.com/sssemil/butane/schema"
	"github.com/sssemil/butane/sqlval"
)

// RenderOperation renders one schema operation into the statement
// sequence that realizes it on the dialect. The schema passed in must be
// the snapshot that holds after the operation is applied, so that
// foreign-key references and recreate sequences can be resolved against
// tables created earlier in the same migration.
func RenderOperation(op schema.Operation, s *schema.Schema, d Dialect) ([]Statement, error) {
	switch op.Kind {
	case schema.OpCreateTable:
		return renderCreateTable(*op.Table, s, d)
	case schema.OpDropTable:
		return []Statement{{SQL: "DROP TABLE " + d.QuoteIdent(op.TableName)}}, nil
	case schema.OpAddColumn:
		return renderAddColumn(op.TableName, *op.Column, s, d)
	case schema.OpRemoveColumn:
		sql := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", d.QuoteIdent(op.TableName), d.QuoteIdent(op.ColumnName))
		return []Statement{{SQL: sql}}, nil
	case schema.OpChangeColumnType:
		return renderChangeColumn(op.TableName, *op.Column, s, d)
	case schema.OpAddIndex:
		return renderAddIndex(op.TableName, *op.Index, d), nil
	case schema.OpRemoveIndex:
		return renderDropIndex(op.TableName, *op.Index, d), nil
	default:
		return nil, fmt.Errorf("sqlgen: unknown operation kind %q", op.Kind)
	}
}

// IndexName derives the deterministic name of a structural index.
func IndexName(table string, idx schema.Index) string {
	suffix := "idx"
	if idx.Unique {
		suffix = "key"
	}
	return table + "_" + strings.Join(idx.Columns, "_") + "_" + suffix
}

func renderCreateTable(t schema.Table, s *schema.Schema, d Dialect) ([]Statement, error) {
	var defs []string
	var fks []string
	for _, col := range t.Columns {
		def, err := columnDef(col, s, d)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
		if col.Type.Kind == schema.TypeForeignKey {
			clause, err := foreignKeyClause(col, s, d)
			if err != nil {
				return nil, err
			}
			fks = append(fks, clause)
		}
	}
	defs = append(defs, fks...)
	sql := fmt.Sprintf("CREATE TABLE %s (%s)", d.QuoteIdent(t.Name), strings.Join(defs, ", "))
	return []Statement{{SQL: sql}}, nil
}

func renderAddColumn(table string, col schema.Column, s *schema.Schema, d Dialect) ([]Statement, error) {
	def, err := columnDef(col, s, d)
	if err != nil {
		return nil, err
	}
	if col.Type.Kind == schema.TypeForeignKey {
		ref, pk, err := resolveReference(col, s)
		if err != nil {
			return nil, err
		}
		if d.Name() == "sqlite" {
			// sqlite cannot add a constraint later; inline it
			def += fmt.Sprintf(" REFERENCES %s (%s)", d.QuoteIdent(ref), d.QuoteIdent(pk))
			sql := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", d.QuoteIdent(table), def)
			return []Statement{{SQL: sql}}, nil
		}
		add := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", d.QuoteIdent(table), def)
		constraint := fmt.Sprintf("ALTER TABLE %s ADD FOREIGN KEY (%s) REFERENCES %s (%s)",
			d.QuoteIdent(table), d.QuoteIdent(col.Name), d.QuoteIdent(ref), d.QuoteIdent(pk))
		return []Statement{{SQL: add}, {SQL: constraint}}, nil
	}
	sql := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", d.QuoteIdent(table), def)
	return []Statement{{SQL: sql}}, nil
}

func renderChangeColumn(table string, col schema.Column, s *schema.Schema, d Dialect) ([]Statement, error) {
	if !d.SupportsAlterColumnType() {
		return renderRecreateTable(table, s, d)
	}

	typeName, err := concreteTypeName(col.Type, s, d)
	if err != nil {
		return nil, err
	}

	switch d.Name() {
	case "mysql":
		def, err := columnDef(col, s, d)
		if err != nil {
			return nil, err
		}
		sql := fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s", d.QuoteIdent(table), def)
		return []Statement{{SQL: sql}}, nil
	default:
		tbl := d.QuoteIdent(table)
		c := d.QuoteIdent(col.Name)
		stmts := []Statement{{SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", tbl, c, typeName)}}
		if col.Nullable {
			stmts = append(stmts, Statement{SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", tbl, c)})
		} else {
			stmts = append(stmts, Statement{SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", tbl, c)})
		}
		if col.Default != nil {
			lit, err := defaultLiteral(*col.Default, d)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, Statement{SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", tbl, c, lit)})
		} else {
			stmts = append(stmts, Statement{SQL: fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", tbl, c)})
		}
		return stmts, nil
	}
}

// renderRecreateTable emits the copy sequence dialects without in-place
// column alteration need: build the new shape under a scratch name, copy
// rows, swap, and restore indexes.
func renderRecreateTable(table string, s *schema.Schema, d Dialect) ([]Statement, error) {
	t, ok := s.Table(table)
	if !ok {
		return nil, fmt.Errorf("sqlgen: recreate of unknown table %q", table)
	}
	scratch := t
	scratch.Name = table + "__butane_new"

	stmts, err := renderCreateTable(schema.Table{Name: scratch.Name, Columns: scratch.Columns}, s, d)
	if err != nil {
		return nil, err
	}

	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = d.QuoteIdent(c.Name)
	}
	list := strings.Join(cols, ", ")
	stmts = append(stmts,
		Statement{SQL: fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
			d.QuoteIdent(scratch.Name), list, list, d.QuoteIdent(table))},
		Statement{SQL: "DROP TABLE " + d.QuoteIdent(table)},
		Statement{SQL: fmt.Sprintf("ALTER TABLE %s RENAME TO %s", d.QuoteIdent(scratch.Name), d.QuoteIdent(table))},
	)
	// indexes are lost with the dropped table
	for _, idx := range t.Indexes {
		stmts = append(stmts, renderAddIndex(table, idx, d)...)
	}
	return stmts, nil
}

func renderAddIndex(table string, idx schema.Index, d Dialect) []Statement {
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		cols[i] = d.QuoteIdent(c)
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	sql := fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
		unique, d.QuoteIdent(IndexName(table, idx)), d.QuoteIdent(table), strings.Join(cols, ", "))
	return []Statement{{SQL: sql}}
}

func renderDropIndex(table string, idx schema.Index, d Dialect) []Statement {
	name := d.QuoteIdent(IndexName(table, idx))
	if d.Name() == "mysql" {
		return []Statement{{SQL: fmt.Sprintf("DROP INDEX %s ON %s", name, d.QuoteIdent(table))}}
	}
	return []Statement{{SQL: "DROP INDEX " + name}}
}

func columnDef(col schema.Column, s *schema.Schema, d Dialect) (string, error) {
	typeName, err := concreteTypeName(col.Type, s, d)
	if err != nil {
		return "", err
	}
	def := d.QuoteIdent(col.Name) + " " + typeName
	if col.PrimaryKey {
		def += " PRIMARY KEY"
	} else if !col.Nullable {
		def += " NOT NULL"
	}
	if col.Default != nil {
		lit, err := defaultLiteral(*col.Default, d)
		if err != nil {
			return "", err
		}
		def += " DEFAULT " + lit
	}
	return def, nil
}

func concreteTypeName(t schema.ColumnType, s *schema.Schema, d Dialect) (string, error) {
	ct, err := s.ConcreteType(t)
	if err != nil {
		return "", err
	}
	return d.TypeName(ct)
}

func foreignKeyClause(col schema.Column, s *schema.Schema, d Dialect) (string, error) {
	ref, pk, err := resolveReference(col, s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
		d.QuoteIdent(col.Name), d.QuoteIdent(ref), d.QuoteIdent(pk)), nil
}

func resolveReference(col schema.Column, s *schema.Schema) (table, pkCol string, err error) {
	ref, ok := s.Table(col.Type.References)
	if !ok {
		return "", "", fmt.Errorf("sqlgen: foreign key %q references unknown table %q", col.Name, col.Type.References)
	}
	pk, ok := ref.PrimaryKey()
	if !ok {
		return "", "", fmt.Errorf("sqlgen: referenced table %q has no primary key", ref.Name)
	}
	return ref.Name, pk.Name, nil
}

// defaultLiteral encodes a schema-declared default value inside DDL. The
// value comes from the modeled schema, never from a caller, which is why
// this is the one place values are inlined rather than bound.
func defaultLiteral(v sqlval.Value, d Dialect) (string, error) {
	switch v.Kind() {
	case sqlval.KindNull:
		return "NULL", nil
	case sqlval.KindBool:
		b, _ := v.BoolValue()
		return d.BoolLiteral(b), nil
	case sqlval.KindInt:
		i, _ := v.IntValue()
		return fmt.Sprintf("%d", i), nil
	case sqlval.KindReal:
		f, _ := v.RealValue()
		return fmt.Sprintf("%g", f), nil
	case sqlval.KindText:
		s, _ := v.TextValue()
		return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
	case sqlval.KindTimestamp:
		t, _ := v.TimestampValue()
		return "'" + t.Format("2006-01-02 15:04:05") + "'", nil
	case sqlval.KindUuid:
		u, _ := v.UuidValue()
		return "'" + u.String() + "'", nil
	default:
		return "", fmt.Errorf("sqlgen: %s defaults are not supported", v.Kind())
	}
}
