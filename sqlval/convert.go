package sqlval

import (
	"time"

	"github.com/google/uuid"
)

// Timestamp layouts accepted from backends that return datetime columns
// as text (notably sqlite without parse-time support).
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToBackend converts a Value into the native representation expected by
// database/sql drivers. The mapping is lossless and total; placeholder
// binding is the only way values reach SQL statements.
func ToBackend(v Value) any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindReal:
		return v.f
	case KindText:
		return v.s
	case KindBlob:
		return v.blob
	case KindTimestamp:
		return v.t
	case KindUuid:
		return v.u.String()
	default:
		return nil
	}
}

// ToBackendArgs converts a bound-parameter list for driver execution.
func ToBackendArgs(values []Value) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = ToBackend(v)
	}
	return args
}

// FromBackend converts a raw cell returned by a backend into a Value of
// the wanted kind. A nil cell becomes Null regardless of the wanted kind;
// nullability is enforced when queries and operations are built, not here.
// Any cell whose runtime type cannot be coerced to the wanted kind fails
// with a ConversionError.
func FromBackend(cell any, want Kind) (Value, error) {
	if cell == nil {
		return Null(), nil
	}

	switch want {
	case KindBool:
		switch c := cell.(type) {
		case bool:
			return Bool(c), nil
		case int64:
			// sqlite has no native boolean and stores 0/1
			if c == 0 || c == 1 {
				return Bool(c == 1), nil
			}
		}
		return Value{}, mismatch(KindBool, cell)

	case KindInt:
		switch c := cell.(type) {
		case int64:
			return Int(c), nil
		case int:
			return Int(int64(c)), nil
		case int32:
			return Int(int64(c)), nil
		}
		return Value{}, mismatch(KindInt, cell)

	case KindReal:
		switch c := cell.(type) {
		case float64:
			return Real(c), nil
		case float32:
			return Real(float64(c)), nil
		case int64:
			// integer-typed cells widen losslessly into a real column
			return Real(float64(c)), nil
		}
		return Value{}, mismatch(KindReal, cell)

	case KindText:
		switch c := cell.(type) {
		case string:
			return Text(c), nil
		case []byte:
			return Text(string(c)), nil
		}
		return Value{}, mismatch(KindText, cell)

	case KindBlob:
		switch c := cell.(type) {
		case []byte:
			b := make([]byte, len(c))
			copy(b, c)
			return Blob(b), nil
		case string:
			return Blob([]byte(c)), nil
		}
		return Value{}, mismatch(KindBlob, cell)

	case KindTimestamp:
		switch c := cell.(type) {
		case time.Time:
			return Timestamp(c), nil
		case string:
			return parseTimestamp(c)
		case []byte:
			return parseTimestamp(string(c))
		}
		return Value{}, mismatch(KindTimestamp, cell)

	case KindUuid:
		switch c := cell.(type) {
		case string:
			u, err := uuid.Parse(c)
			if err != nil {
				return Value{}, &ConversionError{Code: CodeInvalidUuid, Expected: KindUuid, Got: "string", Cause: err}
			}
			return Uuid(u), nil
		case []byte:
			if len(c) == 16 {
				u, err := uuid.FromBytes(c)
				if err == nil {
					return Uuid(u), nil
				}
			}
			u, err := uuid.ParseBytes(c)
			if err != nil {
				return Value{}, &ConversionError{Code: CodeInvalidUuid, Expected: KindUuid, Got: "[]byte", Cause: err}
			}
			return Uuid(u), nil
		}
		return Value{}, mismatch(KindUuid, cell)
	}

	return Value{}, mismatch(want, cell)
}

func parseTimestamp(s string) (Value, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp(t), nil
		}
	}
	return Value{}, &ConversionError{Code: CodeInvalidTimestamp, Expected: KindTimestamp, Got: "string"}
}
