package query

import "fmt"

// Error codes for query construction failures. All of them are detected
// before any I/O happens.
const (
	CodeUnknownColumn = "UNKNOWN_COLUMN"
	CodeUnknownTable  = "UNKNOWN_TABLE"
	CodeTypeMismatch  = "TYPE_MISMATCH"
	CodeBadExpr       = "BAD_EXPR"
)

// QueryError reports an invalid query at build time.
type QueryError struct {
	Code    string
	Table   string
	Column  string
	Message string
}

func (e *QueryError) Error() string {
	msg := "query: " + e.Message
	if e.Table != "" || e.Column != "" {
		msg += fmt.Sprintf(" (%s.%s)", e.Table, e.Column)
	}
	return msg
}
