package migrate

import "fmt"

// Error codes for migration generation and application.
const (
	CodeSchemaDrift     = "SCHEMA_DRIFT"
	CodeOutOfOrder      = "OUT_OF_ORDER"
	CodeOperationFailed = "OPERATION_FAILED"
	CodeNotFound        = "NOT_FOUND"
	CodeCorrupt         = "CORRUPT"
)

// MigrationError reports a failed migration step. For a failed
// operation it names the operation so the operator knows exactly where
// application stopped; the database is left in its pre-transaction
// state.
type MigrationError struct {
	Code      string
	Migration string
	OpIndex   int    // valid for CodeOperationFailed
	Op        string // human description of the failed operation
	Message   string
	Cause     error
}

func (e *MigrationError) Error() string {
	msg := fmt.Sprintf("migrate: %s", e.Message)
	if e.Migration != "" {
		msg += fmt.Sprintf(" (migration %s)", e.Migration)
	}
	if e.Op != "" {
		msg += fmt.Sprintf(": operation %d (%s)", e.OpIndex, e.Op)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *MigrationError) Unwrap() error {
	return e.Cause
}
