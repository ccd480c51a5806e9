package types

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind discriminates the active variant of a Value.
type ValueKind int

// Value variants. Exactly one is active per Value.
const (
	KindNull ValueKind = iota
	KindInt
	KindFloat
	KindText
	KindBool
	KindBlob
)

// Default size caps for textual and binary payloads.
const (
	MaxTextSize = 64 << 10 // 64 KiB
	MaxBlobSize = 16 << 20 // 16 MiB
)

// Value is a tagged scalar as stored in or read from the backing store.
// The zero Value is Null.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	s    string
	b    bool
	blob []byte
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Int returns an integer Value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float returns a floating-point Value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Text returns a string Value.
func Text(v string) Value { return Value{kind: KindText, s: v} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Blob returns a binary Value. The slice is not copied; callers must not
// mutate it after handing it over.
func Blob(v []byte) Value { return Value{kind: KindBlob, blob: v} }

// Kind reports the active variant.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the Value is the null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsInt returns the integer payload, converting from float and bool where
// the conversion is lossless in spirit. Mismatched variants return def.
func (v Value) AsInt(def int64) int64 {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return int64(v.f)
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindText:
		if n, err := strconv.ParseInt(v.s, 10, 64); err == nil {
			return n
		}
	}
	return def
}

// AsFloat returns the float payload, or def on variant mismatch.
func (v Value) AsFloat(def float64) float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return float64(v.i)
	case KindText:
		if f, err := strconv.ParseFloat(v.s, 64); err == nil {
			return f
		}
	}
	return def
}

// AsText returns the string payload, or def on variant mismatch.
func (v Value) AsText(def string) string {
	if v.kind == KindText {
		return v.s
	}
	return def
}

// AsBool returns the boolean payload. Integer values map zero to false and
// anything else to true. Other variants return def.
func (v Value) AsBool(def bool) bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	}
	return def
}

// AsBlob returns the binary payload, or def on variant mismatch.
func (v Value) AsBlob(def []byte) []byte {
	if v.kind == KindBlob {
		return v.blob
	}
	return def
}

// Equal reports variant-wise equality. Values of different kinds are never
// equal, even when numerically equivalent.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindText:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	case KindBlob:
		return bytes.Equal(v.blob, o.blob)
	}
	return false
}

// Validate checks the size caps on textual and binary payloads.
func (v Value) Validate() error {
	switch v.kind {
	case KindText:
		if len(v.s) > MaxTextSize {
			return fmt.Errorf("%w: text payload %d bytes exceeds %d", ErrValueTooLarge, len(v.s), MaxTextSize)
		}
	case KindBlob:
		if len(v.blob) > MaxBlobSize {
			return fmt.Errorf("%w: blob payload %d bytes exceeds %d", ErrValueTooLarge, len(v.blob), MaxBlobSize)
		}
	}
	return nil
}

// Arg returns the payload as a driver-native argument for parameter binding.
func (v Value) Arg() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindBool:
		return v.b
	case KindBlob:
		return v.blob
	}
	return nil
}

// SQLLiteral renders the Value as a textual SQL literal. Strings escape
// single quotes by doubling; blobs emit as X'..' hex literals; floats use
// locale-independent formatting that round-trips.
func (v Value) SQLLiteral() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindText:
		return "'" + strings.ReplaceAll(v.s, "'", "''") + "'"
	case KindBool:
		if v.b {
			return "1"
		}
		return "0"
	case KindBlob:
		return "X'" + hex.EncodeToString(v.blob) + "'"
	}
	return "NULL"
}

// String implements fmt.Stringer for diagnostics.
func (v Value) String() string {
	if v.kind == KindBlob {
		return fmt.Sprintf("blob(%d bytes)", len(v.blob))
	}
	return v.SQLLiteral()
}
