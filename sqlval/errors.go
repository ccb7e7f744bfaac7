package sqlval

import "fmt"

// Error codes for value conversion failures.
const (
	CodeTypeMismatch     = "TYPE_MISMATCH"
	CodeOverflow         = "OVERFLOW"
	CodeInvalidUuid      = "INVALID_UUID"
	CodeInvalidTimestamp = "INVALID_TIMESTAMP"
)

// ConversionError reports a failed conversion between a backend cell and
// a Value. It is always recoverable and never fatal to the caller.
type ConversionError struct {
	Code     string
	Expected Kind
	Got      string
	Cause    error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("sqlval: cannot convert %s to %s (%s)", e.Got, e.Expected, e.Code)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

func mismatch(expected Kind, got any) *ConversionError {
	return &ConversionError{
		Code:     CodeTypeMismatch,
		Expected: expected,
		Got:      fmt.Sprintf("%T", got),
	}
}
