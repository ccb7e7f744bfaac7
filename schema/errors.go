package schema

import (
	"fmt"
	"strings"
)

// Error codes for schema validation and diffing.
const (
	CodeCyclicForeignKeys    = "CYCLIC_FOREIGN_KEYS"
	CodeDuplicateTable       = "DUPLICATE_TABLE"
	CodeUnknownReferenced    = "UNKNOWN_REFERENCED_TABLE"
	CodeDuplicateColumn      = "DUPLICATE_COLUMN"
	CodeMultiplePrimaryKeys  = "MULTIPLE_PRIMARY_KEYS"
	CodeMissingPrimaryKey    = "MISSING_PRIMARY_KEY"
	CodeBadDefault           = "BAD_DEFAULT"
	CodeUnknownIndexedColumn = "UNKNOWN_INDEXED_COLUMN"
)

// SchemaError reports invalid schema input or an impossible diff. It is
// fatal to migration generation and never silently worked around.
type SchemaError struct {
	Code    string
	Table   string
	Column  string
	Tables  []string // cycle members for CodeCyclicForeignKeys
	Message string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema: ")
	b.WriteString(e.Message)
	if e.Table != "" {
		fmt.Fprintf(&b, " (table %q", e.Table)
		if e.Column != "" {
			fmt.Fprintf(&b, ", column %q", e.Column)
		}
		b.WriteString(")")
	}
	if len(e.Tables) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Tables, ", "))
	}
	return b.String()
}
