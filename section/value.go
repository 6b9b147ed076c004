package section

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindText ValueKind = iota
	KindInt
)

// Value is a TEXT keyword value: either an integer or a string.
//
// Tokens that are fully numeric (optionally signed) parse as integers,
// everything else stays text. The zero Value is the empty text value.
type Value struct {
	kind ValueKind
	i    int64
	s    string
}

// IntValue returns an integer Value.
func IntValue(v int64) Value {
	return Value{kind: KindInt, i: v}
}

// TextValue returns a text Value holding s verbatim.
func TextValue(s string) Value {
	return Value{kind: KindText, s: s}
}

// FloatValue returns the shortest Value representing f. Integral values
// become IntValue so they read back the same way they are written.
func FloatValue(f float64) Value {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return IntValue(int64(f))
	}

	return TextValue(strconv.FormatFloat(f, 'g', -1, 64))
}

// ParseValue coerces a decoded token: fully numeric tokens become integers.
func ParseValue(token string) Value {
	if isInteger(token) {
		if v, err := strconv.ParseInt(token, 10, 64); err == nil {
			return IntValue(v)
		}
	}

	return TextValue(token)
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsInt reports whether v holds an integer.
func (v Value) IsInt() bool {
	return v.kind == KindInt
}

// Int returns the integer held by v. Text values that parse as integers are
// accepted too, so keywords written as " 42" by other tools still resolve.
func (v Value) Int() (int64, bool) {
	if v.kind == KindInt {
		return v.i, true
	}

	n, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}

// Float returns the numeric value of v, parsing text as a float if needed.
func (v Value) Float() (float64, bool) {
	if v.kind == KindInt {
		return float64(v.i), true
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
	if err != nil {
		return 0, false
	}

	return f, true
}

// String returns the serialized form of v.
func (v Value) String() string {
	if v.kind == KindInt {
		return strconv.FormatInt(v.i, 10)
	}

	return v.s
}

// Equal reports whether both values hold the same variant and content.
func (v Value) Equal(o Value) bool {
	return v == o
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
