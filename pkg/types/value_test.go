package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueConstructorsAndKinds(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		kind ValueKind
	}{
		{"null", Null(), KindNull},
		{"int", Int(42), KindInt},
		{"float", Float(3.5), KindFloat},
		{"text", Text("hi"), KindText},
		{"bool", Bool(true), KindBool},
		{"blob", Blob([]byte{1, 2}), KindBlob},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.v.Kind())
		})
	}
}

func TestValueConversionFallbacks(t *testing.T) {
	assert.Equal(t, int64(7), Int(7).AsInt(0))
	assert.Equal(t, int64(3), Float(3.9).AsInt(0))
	assert.Equal(t, int64(1), Bool(true).AsInt(0))
	assert.Equal(t, int64(12), Text("12").AsInt(0))
	assert.Equal(t, int64(-1), Text("nope").AsInt(-1))
	assert.Equal(t, int64(-1), Null().AsInt(-1))

	assert.Equal(t, 2.5, Float(2.5).AsFloat(0))
	assert.Equal(t, 9.0, Int(9).AsFloat(0))
	assert.Equal(t, 0.25, Text("0.25").AsFloat(0))
	assert.Equal(t, -1.0, Blob(nil).AsFloat(-1))

	assert.Equal(t, "x", Text("x").AsText("d"))
	assert.Equal(t, "d", Int(1).AsText("d"))

	assert.True(t, Bool(true).AsBool(false))
	assert.True(t, Int(5).AsBool(false))
	assert.False(t, Int(0).AsBool(true))
	assert.True(t, Text("yes").AsBool(true))
}

func TestValueEqualIsVariantWise(t *testing.T) {
	assert.True(t, Int(1).Equal(Int(1)))
	assert.False(t, Int(1).Equal(Float(1)))
	assert.True(t, Null().Equal(Null()))
	assert.True(t, Blob([]byte("ab")).Equal(Blob([]byte("ab"))))
	assert.False(t, Blob([]byte("ab")).Equal(Blob([]byte("ac"))))
	assert.False(t, Text("a").Equal(Text("b")))
}

func TestValueSQLLiteral(t *testing.T) {
	assert.Equal(t, "NULL", Null().SQLLiteral())
	assert.Equal(t, "42", Int(42).SQLLiteral())
	assert.Equal(t, "'it''s'", Text("it's").SQLLiteral())
	assert.Equal(t, "1", Bool(true).SQLLiteral())
	assert.Equal(t, "0", Bool(false).SQLLiteral())
	assert.Equal(t, "X'0a0b'", Blob([]byte{0x0a, 0x0b}).SQLLiteral())
	assert.Equal(t, "150.5", Float(150.5).SQLLiteral())
}

func TestValueSizeCaps(t *testing.T) {
	require.NoError(t, Text(strings.Repeat("a", MaxTextSize)).Validate())
	assert.ErrorIs(t, Text(strings.Repeat("a", MaxTextSize+1)).Validate(), ErrValueTooLarge)
	assert.ErrorIs(t, Blob(make([]byte, MaxBlobSize+1)).Validate(), ErrValueTooLarge)
}

func TestQueryResultAccessors(t *testing.T) {
	r := QueryResult{
		Rows:    []Row{{Text("hero"), Int(15)}},
		Columns: []string{"id", "level"},
		Success: true,
	}
	assert.Equal(t, "hero", r.Value(0, "id").AsText(""))
	assert.Equal(t, int64(15), r.Value(0, "level").AsInt(0))
	assert.True(t, r.Value(0, "missing").IsNull())
	assert.True(t, r.Value(3, "id").IsNull())

	m := r.RowMap(0)
	require.NotNil(t, m)
	assert.Equal(t, int64(15), m["level"].AsInt(0))
	assert.Nil(t, r.RowMap(1))
}
