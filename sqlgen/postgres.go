package sqlgen

import (
	"fmt"

	"github.com/sssemil/butane/schema"
)

// PostgresDialect renders PostgreSQL SQL: double-quoted identifiers and
// positional $n placeholders.
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

func (PostgresDialect) QuoteIdent(ident string) string {
	return quoteWith(ident, '"')
}

func (PostgresDialect) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (PostgresDialect) TypeName(t schema.ColumnType) (string, error) {
	switch t.Kind {
	case schema.TypeBool:
		return "BOOLEAN", nil
	case schema.TypeInt:
		return "INTEGER", nil
	case schema.TypeBigInt:
		return "BIGINT", nil
	case schema.TypeReal:
		return "DOUBLE PRECISION", nil
	case schema.TypeText:
		return "TEXT", nil
	case schema.TypeBlob:
		return "BYTEA", nil
	case schema.TypeTimestamp:
		return "TIMESTAMP", nil
	case schema.TypeUuid:
		return "UUID", nil
	}
	return "", fmt.Errorf("sqlgen: no postgres type for column kind %q", t.Kind)
}

func (PostgresDialect) BoolLiteral(v bool) string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

func (PostgresDialect) SupportsAlterColumnType() bool { return true }

func (PostgresDialect) SupportsDeferredFK() bool { return true }
