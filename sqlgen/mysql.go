package sqlgen

import (
	"fmt"

	"github.com/sssemil/butane/schema"
)

// MySQLDialect renders MySQL SQL: backtick-quoted identifiers and `?`
// placeholders.
type MySQLDialect struct{}

func (MySQLDialect) Name() string { return "mysql" }

func (MySQLDialect) QuoteIdent(ident string) string {
	return quoteWith(ident, '`')
}

func (MySQLDialect) Placeholder(int) string { return "?" }

func (MySQLDialect) TypeName(t schema.ColumnType) (string, error) {
	switch t.Kind {
	case schema.TypeBool:
		return "TINYINT(1)", nil
	case schema.TypeInt:
		return "INTEGER", nil
	case schema.TypeBigInt:
		return "BIGINT", nil
	case schema.TypeReal:
		return "DOUBLE", nil
	case schema.TypeText:
		// indexable and defaultable, unlike bare TEXT
		return "VARCHAR(255)", nil
	case schema.TypeBlob:
		return "BLOB", nil
	case schema.TypeTimestamp:
		return "DATETIME", nil
	case schema.TypeUuid:
		return "CHAR(36)", nil
	}
	return "", fmt.Errorf("sqlgen: no mysql type for column kind %q", t.Kind)
}

func (MySQLDialect) BoolLiteral(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func (MySQLDialect) SupportsAlterColumnType() bool { return true }

func (MySQLDialect) SupportsDeferredFK() bool { return false }
