package sqlval

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.Equal(t, KindNull, v.Kind())
}

func TestValue_Constructors(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	u := uuid.MustParse("9b7d1a2e-4c3f-4f6a-9a61-1d25a8f0c3de")

	tests := []struct {
		name string
		v    Value
		kind Kind
	}{
		{"bool", Bool(true), KindBool},
		{"int", Int(42), KindInt},
		{"real", Real(3.5), KindReal},
		{"text", Text("hello"), KindText},
		{"blob", Blob([]byte{0x01, 0x02}), KindBlob},
		{"timestamp", Timestamp(ts), KindTimestamp},
		{"uuid", Uuid(u), KindUuid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.v.Kind())
			assert.False(t, tt.v.IsNull())
		})
	}
}

func TestValue_AccessorsRejectWrongKind(t *testing.T) {
	_, ok := Text("x").IntValue()
	assert.False(t, ok)
	_, ok = Int(1).TextValue()
	assert.False(t, ok)
	_, ok = Null().BoolValue()
	assert.False(t, ok)
}

func TestValue_TimestampNormalizedToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	local := time.Date(2024, 3, 1, 15, 0, 0, 0, loc)
	v := Timestamp(local)

	got, ok := v.TimestampValue()
	require.True(t, ok)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(local))
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, Int(7).Equal(Int(7)))
	assert.False(t, Int(7).Equal(Int(8)))
	assert.False(t, Int(7).Equal(Real(7)))
	assert.True(t, Null().Equal(Null()))
	assert.True(t, Blob([]byte{1, 2}).Equal(Blob([]byte{1, 2})))
	assert.False(t, Blob([]byte{1, 2}).Equal(Blob([]byte{1, 3})))

	loc := time.FixedZone("UTC-5", -5*3600)
	a := Timestamp(time.Date(2024, 1, 1, 7, 0, 0, 0, loc))
	b := Timestamp(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	assert.True(t, a.Equal(b))
}

func TestFromBackend_NilIsAlwaysNull(t *testing.T) {
	for _, kind := range []Kind{KindBool, KindInt, KindReal, KindText, KindBlob, KindTimestamp, KindUuid} {
		v, err := FromBackend(nil, kind)
		require.NoError(t, err)
		assert.True(t, v.IsNull(), "kind %s", kind)
	}
}

func TestFromBackend_BoolFromSqliteInteger(t *testing.T) {
	v, err := FromBackend(int64(1), KindBool)
	require.NoError(t, err)
	b, ok := v.BoolValue()
	require.True(t, ok)
	assert.True(t, b)

	v, err = FromBackend(int64(0), KindBool)
	require.NoError(t, err)
	b, _ = v.BoolValue()
	assert.False(t, b)

	_, err = FromBackend(int64(2), KindBool)
	require.Error(t, err)
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
}

func TestFromBackend_IntWidensToReal(t *testing.T) {
	v, err := FromBackend(int64(5), KindReal)
	require.NoError(t, err)
	f, ok := v.RealValue()
	require.True(t, ok)
	assert.Equal(t, 5.0, f)
}

func TestFromBackend_TimestampFromString(t *testing.T) {
	v, err := FromBackend("2024-03-01 12:30:00", KindTimestamp)
	require.NoError(t, err)
	got, ok := v.TimestampValue()
	require.True(t, ok)
	assert.Equal(t, 2024, got.Year())

	_, err = FromBackend("not a time", KindTimestamp)
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, CodeInvalidTimestamp, convErr.Code)
}

func TestFromBackend_UuidFromStringAndBytes(t *testing.T) {
	u := uuid.MustParse("9b7d1a2e-4c3f-4f6a-9a61-1d25a8f0c3de")

	v, err := FromBackend(u.String(), KindUuid)
	require.NoError(t, err)
	got, _ := v.UuidValue()
	assert.Equal(t, u, got)

	raw, _ := u.MarshalBinary()
	v, err = FromBackend(raw, KindUuid)
	require.NoError(t, err)
	got, _ = v.UuidValue()
	assert.Equal(t, u, got)

	_, err = FromBackend("zz", KindUuid)
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, CodeInvalidUuid, convErr.Code)
}

func TestFromBackend_KindMismatch(t *testing.T) {
	_, err := FromBackend("text", KindInt)
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, CodeTypeMismatch, convErr.Code)
	assert.Equal(t, KindInt, convErr.Expected)
}

func TestToBackend_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	u := uuid.MustParse("9b7d1a2e-4c3f-4f6a-9a61-1d25a8f0c3de")

	values := []Value{
		Null(), Bool(true), Int(-9), Real(2.25), Text("x"),
		Blob([]byte{0xff}), Timestamp(ts), Uuid(u),
	}
	for _, v := range values {
		native := ToBackend(v)
		got, err := FromBackend(native, v.Kind())
		require.NoError(t, err, "kind %s", v.Kind())
		assert.True(t, v.Equal(got), "kind %s", v.Kind())
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 500, time.UTC)
	u := uuid.MustParse("9b7d1a2e-4c3f-4f6a-9a61-1d25a8f0c3de")

	values := []Value{
		Null(), Bool(false), Int(123), Real(-0.5), Text("héllo \"quoted\""),
		Blob([]byte{0, 1, 2}), Timestamp(ts), Uuid(u),
	}
	for _, v := range values {
		data, err := v.MarshalJSON()
		require.NoError(t, err)
		var got Value
		require.NoError(t, got.UnmarshalJSON(data))
		assert.True(t, v.Equal(got), "kind %s: %s", v.Kind(), data)
	}
}
