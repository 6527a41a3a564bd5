package value

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a [Value].
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFloat
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInvalid:
	}

	return "invalid"
}

// Value is an immutable tagged union of Float, String and Boolean.
// The zero Value has [KindInvalid].
type Value struct {
	s    string
	f    float64
	kind Kind
	b    bool
}

// Float returns a Float value.
func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// String returns a String value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Bool returns a Boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Coerce converts a raw cell into a [Value]. The cell becomes a Float only if
// the entire string is a valid number; anything else (including partial
// numbers such as "01x" or padded numbers such as " 1") stays a String.
func Coerce(cell string) Value {
	if goNumberSyntax(cell) {
		return String(cell)
	}

	f, err := strconv.ParseFloat(cell, 64)
	if err == nil && (math.IsInf(f, 0) || math.IsNaN(f)) {
		// Spelled out as "inf" or "NaN".
		return String(cell)
	}

	if err == nil || errors.Is(err, strconv.ErrRange) {
		// Out of range values still consumed the whole cell, ParseFloat
		// returns the signed infinity (or zero) for them.
		return Float(f)
	}

	return String(cell)
}

// goNumberSyntax reports whether cell uses number syntax that
// [strconv.ParseFloat] accepts beyond plain decimal: digit separators or
// hexadecimal mantissas. Such cells are text.
func goNumberSyntax(cell string) bool {
	if strings.ContainsRune(cell, '_') {
		return true
	}

	unsigned := strings.TrimLeft(cell, "+-")
	if len(unsigned) < len(cell)-1 {
		return false
	}

	return strings.HasPrefix(unsigned, "0x") || strings.HasPrefix(unsigned, "0X")
}

// Kind returns the variant of v.
func (v Value) Kind() Kind {
	return v.kind
}

// AsFloat returns the float held by v, and false if v is not a Float.
func (v Value) AsFloat() (float64, bool) {
	return v.f, v.kind == KindFloat
}

// AsString returns the text held by v, and false if v is not a String.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// AsBool returns the boolean held by v, and false if v is not a Boolean.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Equal reports whether v and o hold the same variant and the same content.
// Values of different kinds are never equal. Float equality follows IEEE-754,
// so NaN is not equal to itself.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	case KindInvalid:
	}

	return true
}

// String renders v for diagnostics and reports.
func (v Value) String() string {
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInvalid:
	}

	return "<invalid>"
}

// Interface returns v as a plain Go value (float64, string or bool), or nil
// for an invalid value.
func (v Value) Interface() any {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBool:
		return v.b
	case KindInvalid:
	}

	return nil
}
