package sqlgen

import (
	"fmt"

	"github.com/sssemil/butane/schema"
)

// SQLiteDialect renders SQLite SQL: double-quoted identifiers and `?`
// placeholders. SQLite cannot alter a column in place, so column changes
// render as a recreate-and-copy sequence.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "sqlite" }

func (SQLiteDialect) QuoteIdent(ident string) string {
	return quoteWith(ident, '"')
}

func (SQLiteDialect) Placeholder(int) string { return "?" }

func (SQLiteDialect) TypeName(t schema.ColumnType) (string, error) {
	switch t.Kind {
	case schema.TypeBool:
		return "INTEGER", nil
	case schema.TypeInt, schema.TypeBigInt:
		return "INTEGER", nil
	case schema.TypeReal:
		return "REAL", nil
	case schema.TypeText:
		return "TEXT", nil
	case schema.TypeBlob:
		return "BLOB", nil
	case schema.TypeTimestamp:
		return "TIMESTAMP", nil
	case schema.TypeUuid:
		return "TEXT", nil
	}
	return "", fmt.Errorf("sqlgen: no sqlite type for column kind %q", t.Kind)
}

func (SQLiteDialect) BoolLiteral(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func (SQLiteDialect) SupportsAlterColumnType() bool { return false }

func (SQLiteDialect) SupportsDeferredFK() bool { return true }
