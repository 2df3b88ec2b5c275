package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ValueKind identifies the type of a literal value.
type ValueKind uint8

// Literal value kinds. Only the primitive kinds take part in folding and
// constant propagation.
const (
	ValueUndefined ValueKind = iota
	ValueNull
	ValueBoolean
	ValueNumber
	ValueString
	ValueRegExp // a fresh object per evaluation, never propagated
	ValueOpaque // valid source text whose value is not modelled (bigint, lone surrogates)
)

// Value is the value carried by a Literal node.
type Value struct {
	Kind ValueKind
	Bool bool
	Num  float64
	Str  string
}

// UndefinedValue is the value rendered as "void 0".
var UndefinedValue = Value{Kind: ValueUndefined}

// NullValue is the JavaScript null.
var NullValue = Value{Kind: ValueNull}

// BoolValue returns a boolean value.
func BoolValue(b bool) Value { return Value{Kind: ValueBoolean, Bool: b} }

// NumberValue returns a number value.
func NumberValue(f float64) Value { return Value{Kind: ValueNumber, Num: f} }

// StringValue returns a string value.
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// IsPrimitive reports whether v is a modelled primitive value.
func (v Value) IsPrimitive() bool {
	return v.Kind <= ValueString
}

// Equal reports whether two values are identical (SameValueZero for numbers).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueBoolean:
		return v.Bool == o.Bool
	case ValueNumber:
		if math.IsNaN(v.Num) {
			return math.IsNaN(o.Num)
		}
		return v.Num == o.Num
	case ValueString, ValueRegExp, ValueOpaque:
		return v.Str == o.Str
	}
	return true
}

// Serialize returns the canonical source text of v. Values without a literal
// spelling (NaN, infinities, regular expressions, opaque values) report false.
func (v Value) Serialize() (string, bool) {
	switch v.Kind {
	case ValueUndefined:
		return "void 0", true
	case ValueNull:
		return "null", true
	case ValueBoolean:
		if v.Bool {
			return "true", true
		}
		return "false", true
	case ValueNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return "", false
		}
		if v.Num == 0 && math.Signbit(v.Num) {
			return "-0", true
		}
		return FormatNumber(v.Num), true
	case ValueString:
		return QuoteString(v.Str), true
	}
	return "", false
}

// String returns a debugging representation.
func (v Value) String() string {
	if s, ok := v.Serialize(); ok {
		return s
	}
	switch v.Kind {
	case ValueNumber:
		return FormatNumber(v.Num)
	case ValueRegExp, ValueOpaque:
		return v.Str
	}
	return "?"
}

// FormatNumber renders f the way Number.prototype.toString(10) does.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	case f < 0:
		return "-" + FormatNumber(-f)
	}

	// Shortest digits that round-trip, then the ECMA-262 layout rules.
	mant, expStr, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	digits := strings.Replace(mant, ".", "", 1)
	exp, _ := strconv.Atoi(expStr)
	k, n := len(digits), exp+1

	switch {
	case k <= n && n <= 21:
		return digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return "0." + strings.Repeat("0", -n) + digits
	}

	e := n - 1
	sign := "+"
	if e < 0 {
		sign = "-"
		e = -e
	}
	if k == 1 {
		return digits + "e" + sign + strconv.Itoa(e)
	}
	return digits[:1] + "." + digits[1:] + "e" + sign + strconv.Itoa(e)
}

// QuoteString returns s as a double-quoted literal. JSON string syntax is a
// subset of ECMAScript string syntax, so the JSON encoding is reused.
func QuoteString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
