// Package sqlval provides the backend-agnostic value type used for all
// column data crossing the engine boundary.
package sqlval

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindReal
	KindText
	KindBlob
	KindTimestamp
	KindUuid
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindReal:
		return "real"
	case KindText:
		return "text"
	case KindBlob:
		return "blob"
	case KindTimestamp:
		return "timestamp"
	case KindUuid:
		return "uuid"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a tagged SQL value. The zero value is Null. A Value never
// changes variant after construction; conversions to and from backend
// native types are explicit and fallible.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	blob []byte
	t    time.Time
	u    uuid.UUID
}

// Null returns the null value
func Null() Value {
	return Value{kind: KindNull}
}

// Bool returns a boolean value
func Bool(v bool) Value {
	return Value{kind: KindBool, b: v}
}

// Int returns a 64-bit integer value
func Int(v int64) Value {
	return Value{kind: KindInt, i: v}
}

// Real returns a double-precision value
func Real(v float64) Value {
	return Value{kind: KindReal, f: v}
}

// Text returns a text value
func Text(v string) Value {
	return Value{kind: KindText, s: v}
}

// Blob returns a binary value
func Blob(v []byte) Value {
	return Value{kind: KindBlob, blob: v}
}

// Timestamp returns a timestamp value. The time is stored in UTC so that
// serialized values compare equal regardless of the source location.
func Timestamp(v time.Time) Value {
	return Value{kind: KindTimestamp, t: v.UTC()}
}

// Uuid returns a UUID value
func Uuid(v uuid.UUID) Value {
	return Value{kind: KindUuid, u: v}
}

// Kind returns the variant tag of the value
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null
func (v Value) IsNull() bool { return v.kind == KindNull }

// BoolValue returns the boolean payload and whether the value is a bool
func (v Value) BoolValue() (bool, bool) { return v.b, v.kind == KindBool }

// IntValue returns the integer payload and whether the value is an int
func (v Value) IntValue() (int64, bool) { return v.i, v.kind == KindInt }

// RealValue returns the float payload and whether the value is a real
func (v Value) RealValue() (float64, bool) { return v.f, v.kind == KindReal }

// TextValue returns the string payload and whether the value is text
func (v Value) TextValue() (string, bool) { return v.s, v.kind == KindText }

// BlobValue returns the byte payload and whether the value is a blob
func (v Value) BlobValue() ([]byte, bool) { return v.blob, v.kind == KindBlob }

// TimestampValue returns the time payload and whether the value is a timestamp
func (v Value) TimestampValue() (time.Time, bool) { return v.t, v.kind == KindTimestamp }

// UuidValue returns the UUID payload and whether the value is a UUID
func (v Value) UuidValue() (uuid.UUID, bool) { return v.u, v.kind == KindUuid }

// Equal reports whether two values have the same variant and payload
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindReal:
		return v.f == o.f
	case KindText:
		return v.s == o.s
	case KindBlob:
		if len(v.blob) != len(o.blob) {
			return false
		}
		for i := range v.blob {
			if v.blob[i] != o.blob[i] {
				return false
			}
		}
		return true
	case KindTimestamp:
		return v.t.Equal(o.t)
	case KindUuid:
		return v.u == o.u
	}
	return false
}

// String renders the value for logs and error messages. It is never used
// to build SQL text.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindReal:
		return fmt.Sprintf("%g", v.f)
	case KindText:
		return fmt.Sprintf("%q", v.s)
	case KindBlob:
		return fmt.Sprintf("blob(%d bytes)", len(v.blob))
	case KindTimestamp:
		return v.t.Format(time.RFC3339Nano)
	case KindUuid:
		return v.u.String()
	default:
		return "invalid"
	}
}
