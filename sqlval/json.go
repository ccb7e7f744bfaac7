package sqlval

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// jsonValue is the serialized shape of a Value inside migration files.
// The encoding is stable so that identical schemas always serialize to
// byte-identical migrations.
type jsonValue struct {
	Kind  string `json:"kind"`
	Value any    `json:"value,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	jv := jsonValue{Kind: v.kind.String()}
	switch v.kind {
	case KindNull:
	case KindBool:
		jv.Value = v.b
	case KindInt:
		jv.Value = v.i
	case KindReal:
		jv.Value = v.f
	case KindText:
		jv.Value = v.s
	case KindBlob:
		jv.Value = base64.StdEncoding.EncodeToString(v.blob)
	case KindTimestamp:
		jv.Value = v.t.Format(time.RFC3339Nano)
	case KindUuid:
		jv.Value = v.u.String()
	}
	return json.Marshal(jv)
}

// UnmarshalJSON implements json.Unmarshaler
func (v *Value) UnmarshalJSON(data []byte) error {
	var jv jsonValue
	if err := json.Unmarshal(data, &jv); err != nil {
		return err
	}
	switch jv.Kind {
	case "null":
		*v = Null()
	case "bool":
		b, ok := jv.Value.(bool)
		if !ok {
			return fmt.Errorf("sqlval: bool value expected, got %T", jv.Value)
		}
		*v = Bool(b)
	case "int":
		// encoding/json decodes numbers into float64
		f, ok := jv.Value.(float64)
		if !ok {
			return fmt.Errorf("sqlval: numeric value expected, got %T", jv.Value)
		}
		*v = Int(int64(f))
	case "real":
		f, ok := jv.Value.(float64)
		if !ok {
			return fmt.Errorf("sqlval: numeric value expected, got %T", jv.Value)
		}
		*v = Real(f)
	case "text":
		s, ok := jv.Value.(string)
		if !ok {
			return fmt.Errorf("sqlval: string value expected, got %T", jv.Value)
		}
		*v = Text(s)
	case "blob":
		s, ok := jv.Value.(string)
		if !ok {
			return fmt.Errorf("sqlval: base64 string expected, got %T", jv.Value)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return fmt.Errorf("sqlval: invalid blob encoding: %w", err)
		}
		*v = Blob(b)
	case "timestamp":
		s, ok := jv.Value.(string)
		if !ok {
			return fmt.Errorf("sqlval: timestamp string expected, got %T", jv.Value)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("sqlval: invalid timestamp: %w", err)
		}
		*v = Timestamp(t)
	case "uuid":
		s, ok := jv.Value.(string)
		if !ok {
			return fmt.Errorf("sqlval: uuid string expected, got %T", jv.Value)
		}
		u, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("sqlval: invalid uuid: %w", err)
		}
		*v = Uuid(u)
	default:
		return fmt.Errorf("sqlval: unknown value kind %q", jv.Kind)
	}
	return nil
}
