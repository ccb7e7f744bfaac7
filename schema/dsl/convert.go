package dsl

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sssemil/butane/schema"
	"github.com/sssemil/butane/sqlval"
)

var typeKinds = map[string]schema.TypeKind{
	"bool":      schema.TypeBool,
	"int":       schema.TypeInt,
	"bigint":    schema.TypeBigInt,
	"real":      schema.TypeReal,
	"text":      schema.TypeText,
	"blob":      schema.TypeBlob,
	"timestamp": schema.TypeTimestamp,
	"uuid":      schema.TypeUuid,
}

// Convert turns a parsed file into a validated schema. All problems in
// the file are collected before returning, so the caller can show every
// error at once.
func Convert(file *File) (*schema.Schema, error) {
	s, diags := ConvertFile(file)
	if diags.HasErrors() {
		return nil, diags.ToResult()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ConvertFile converts without failing, returning the collected
// diagnostics so tooling can pretty-print them with positions. The
// schema is only meaningful when the diagnostics hold no errors, and
// still needs Validate.
func ConvertFile(file *File) (*schema.Schema, *Diagnostics) {
	var diags Diagnostics
	tables := make([]schema.Table, 0, len(file.Models))
	seen := make(map[string]bool, len(file.Models))
	for _, m := range file.Models {
		if seen[m.Name] {
			diags.Push(m.Pos, "model %s is defined more than once", m.Name)
			continue
		}
		seen[m.Name] = true
		tables = append(tables, convertModel(m, &diags))
	}
	return schema.New(tables...), &diags
}

func convertModel(m *Model, diags *Diagnostics) schema.Table {
	tbl := schema.Table{Name: m.Name}
	for _, f := range m.Fields {
		col, ok := convertField(f, diags)
		if !ok {
			continue
		}
		tbl.Columns = append(tbl.Columns, col)
		if fieldHasAttr(f, "unique") {
			tbl.Indexes = append(tbl.Indexes, schema.Index{Columns: []string{col.Name}, Unique: true})
		}
	}
	for _, attr := range m.Attributes {
		switch attr.Name {
		case "index":
			tbl.Indexes = append(tbl.Indexes, schema.Index{Columns: attr.Columns})
		case "unique":
			tbl.Indexes = append(tbl.Indexes, schema.Index{Columns: attr.Columns, Unique: true})
		default:
			diags.Push(attr.Pos, "unknown block attribute @@%s", attr.Name)
		}
	}
	return tbl
}

func convertField(f *Field, diags *Diagnostics) (schema.Column, bool) {
	col := schema.Column{Name: f.Name, Nullable: f.Nullable}

	switch {
	case f.Type.Name == "fk":
		if f.Type.Arg == "" {
			diags.Push(f.Type.Pos, "fk needs a referenced table, as in fk(users)")
			return col, false
		}
		col.Type = schema.ForeignKey(f.Type.Arg)
	case f.Type.Arg != "":
		diags.Push(f.Type.Pos, "type %s takes no argument", f.Type.Name)
		return col, false
	default:
		kind, ok := typeKinds[f.Type.Name]
		if !ok {
			diags.Push(f.Type.Pos, "unknown type %s (one of %s, or fk(table))", f.Type.Name, knownTypes())
			return col, false
		}
		col.Type = schema.Type(kind)
	}

	for _, attr := range f.Attrs {
		switch attr.Name {
		case "id":
			col.PrimaryKey = true
		case "default":
			if attr.Arg == nil {
				diags.Push(attr.Pos, "@default needs a value")
				continue
			}
			v, ok := convertLiteral(attr, col.Type, diags)
			if ok {
				col.Default = &v
			}
		case "unique":
			// handled at the model level, one index per field
		default:
			diags.Push(attr.Pos, "unknown attribute @%s", attr.Name)
		}
	}
	return col, true
}

// convertLiteral coerces an attribute argument to the column's value
// kind. Timestamp and uuid defaults are written as strings.
func convertLiteral(attr *FieldAttr, t schema.ColumnType, diags *Diagnostics) (sqlval.Value, bool) {
	lit := attr.Arg
	switch t.ValueKind() {
	case sqlval.KindBool:
		if lit.Bool != nil {
			return sqlval.Bool(*lit.Bool == "true"), true
		}
	case sqlval.KindInt:
		if lit.Num != nil {
			n, err := strconv.ParseInt(*lit.Num, 10, 64)
			if err == nil {
				return sqlval.Int(n), true
			}
		}
	case sqlval.KindReal:
		if lit.Num != nil {
			n, err := strconv.ParseFloat(*lit.Num, 64)
			if err == nil {
				return sqlval.Real(n), true
			}
		}
	case sqlval.KindText:
		if lit.Str != nil {
			return sqlval.Text(*lit.Str), true
		}
	case sqlval.KindTimestamp:
		if lit.Str != nil {
			ts, err := time.Parse(time.RFC3339, *lit.Str)
			if err == nil {
				return sqlval.Timestamp(ts), true
			}
			diags.Push(attr.Pos, "timestamp default must be RFC 3339, got %q", *lit.Str)
			return sqlval.Value{}, false
		}
	case sqlval.KindUuid:
		if lit.Str != nil {
			u, err := uuid.Parse(*lit.Str)
			if err == nil {
				return sqlval.Uuid(u), true
			}
			diags.Push(attr.Pos, "invalid uuid default %q", *lit.Str)
			return sqlval.Value{}, false
		}
	}
	diags.Push(attr.Pos, "default value does not fit a %s column", t.Kind)
	return sqlval.Value{}, false
}

func fieldHasAttr(f *Field, name string) bool {
	for _, attr := range f.Attrs {
		if attr.Name == name {
			return true
		}
	}
	return false
}

func knownTypes() string {
	names := []string{"bool", "int", "bigint", "real", "text", "blob", "timestamp", "uuid"}
	return strings.Join(names, ", ")
}
