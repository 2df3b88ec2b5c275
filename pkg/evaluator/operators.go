package evaluator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/sandrolain/esopt/pkg/types"
)

// Binary applies a binary operator to two primitive values.
func Binary(op string, left, right types.Value) (types.Value, error) {
	if !left.IsPrimitive() || !right.IsPrimitive() {
		return types.Value{}, errUnsupported("operand is not a primitive")
	}

	switch op {
	case "+":
		if left.Kind == types.ValueString || right.Kind == types.ValueString {
			return types.StringValue(ToString(left) + ToString(right)), nil
		}
		return types.NumberValue(ToNumber(left) + ToNumber(right)), nil
	case "-":
		return types.NumberValue(ToNumber(left) - ToNumber(right)), nil
	case "*":
		return types.NumberValue(ToNumber(left) * ToNumber(right)), nil
	case "/":
		return types.NumberValue(ToNumber(left) / ToNumber(right)), nil
	case "%":
		return types.NumberValue(math.Mod(ToNumber(left), ToNumber(right))), nil
	case "**":
		return types.NumberValue(pow(ToNumber(left), ToNumber(right))), nil

	case "<<":
		return types.NumberValue(float64(ToInt32(ToNumber(left)) << (ToUint32(ToNumber(right)) & 31))), nil
	case ">>":
		return types.NumberValue(float64(ToInt32(ToNumber(left)) >> (ToUint32(ToNumber(right)) & 31))), nil
	case ">>>":
		return types.NumberValue(float64(ToUint32(ToNumber(left)) >> (ToUint32(ToNumber(right)) & 31))), nil
	case "&":
		return types.NumberValue(float64(ToInt32(ToNumber(left)) & ToInt32(ToNumber(right)))), nil
	case "|":
		return types.NumberValue(float64(ToInt32(ToNumber(left)) | ToInt32(ToNumber(right)))), nil
	case "^":
		return types.NumberValue(float64(ToInt32(ToNumber(left)) ^ ToInt32(ToNumber(right)))), nil

	case "==":
		return types.BoolValue(LooseEqual(left, right)), nil
	case "!=":
		return types.BoolValue(!LooseEqual(left, right)), nil
	case "===":
		return types.BoolValue(StrictEqual(left, right)), nil
	case "!==":
		return types.BoolValue(!StrictEqual(left, right)), nil

	case "<":
		r, ok := lessThan(left, right)
		return types.BoolValue(ok && r), nil
	case ">":
		r, ok := lessThan(right, left)
		return types.BoolValue(ok && r), nil
	case "<=":
		r, ok := lessThan(right, left)
		return types.BoolValue(ok && !r), nil
	case ">=":
		r, ok := lessThan(left, right)
		return types.BoolValue(ok && !r), nil
	}

	// in and instanceof need an object on the right.
	return types.Value{}, errUnsupported(fmt.Sprintf("operator %q", op))
}

// Logical applies &&, || or ?? to two already evaluated operands.
func Logical(op string, left, right types.Value) (types.Value, error) {
	switch op {
	case "&&":
		if !Truthy(left) {
			return left, nil
		}
		return right, nil
	case "||":
		if Truthy(left) {
			return left, nil
		}
		return right, nil
	case "??":
		if left.Kind == types.ValueNull || left.Kind == types.ValueUndefined {
			return right, nil
		}
		return left, nil
	}
	return types.Value{}, errUnsupported(fmt.Sprintf("operator %q", op))
}

// Unary applies a prefix operator to a primitive value.
func Unary(op string, v types.Value) (types.Value, error) {
	if !v.IsPrimitive() {
		return types.Value{}, errUnsupported("operand is not a primitive")
	}
	switch op {
	case "-":
		return types.NumberValue(-ToNumber(v)), nil
	case "+":
		return types.NumberValue(ToNumber(v)), nil
	case "!":
		return types.BoolValue(!Truthy(v)), nil
	case "~":
		return types.NumberValue(float64(^ToInt32(ToNumber(v)))), nil
	case "typeof":
		return types.StringValue(TypeOf(v)), nil
	case "void":
		return types.UndefinedValue, nil
	}
	return types.Value{}, errUnsupported(fmt.Sprintf("operator %q", op))
}

// Truthy implements ToBoolean.
func Truthy(v types.Value) bool {
	switch v.Kind {
	case types.ValueBoolean:
		return v.Bool
	case types.ValueNumber:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case types.ValueString:
		return v.Str != ""
	case types.ValueRegExp, types.ValueOpaque:
		return true
	}
	return false
}

// TypeOf returns the typeof string of a primitive.
func TypeOf(v types.Value) string {
	switch v.Kind {
	case types.ValueUndefined:
		return "undefined"
	case types.ValueNull, types.ValueRegExp:
		return "object"
	case types.ValueBoolean:
		return "boolean"
	case types.ValueNumber:
		return "number"
	case types.ValueString:
		return "string"
	}
	return "bigint"
}

// ToNumber implements the ToNumber conversion for primitives.
func ToNumber(v types.Value) float64 {
	switch v.Kind {
	case types.ValueNull:
		return 0
	case types.ValueBoolean:
		if v.Bool {
			return 1
		}
		return 0
	case types.ValueNumber:
		return v.Num
	case types.ValueString:
		return StringToNumber(v.Str)
	}
	return math.NaN()
}

// ToString implements the ToString conversion for primitives.
func ToString(v types.Value) string {
	switch v.Kind {
	case types.ValueUndefined:
		return "undefined"
	case types.ValueNull:
		return "null"
	case types.ValueBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case types.ValueNumber:
		return types.FormatNumber(v.Num)
	}
	return v.Str
}

// ToInt32 implements the ToInt32 conversion.
func ToInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	i := int32(f)
	if float64(i) == f {
		return i
	}
	i = int32(uint32(math.Mod(math.Abs(f), 4294967296)))
	if math.Signbit(f) {
		return -i
	}
	return i
}

// ToUint32 implements the ToUint32 conversion.
func ToUint32(f float64) uint32 {
	return uint32(ToInt32(f))
}

// StrictEqual implements ===.
func StrictEqual(a, b types.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case types.ValueNumber:
		return a.Num == b.Num
	case types.ValueRegExp:
		// Two evaluations of a regex literal are distinct objects.
		return false
	}
	return a.Equal(b)
}

// LooseEqual implements ==.
func LooseEqual(a, b types.Value) bool {
	if a.Kind == b.Kind {
		return StrictEqual(a, b)
	}
	nullish := func(v types.Value) bool {
		return v.Kind == types.ValueNull || v.Kind == types.ValueUndefined
	}
	switch {
	case nullish(a) || nullish(b):
		return nullish(a) && nullish(b)
	case a.Kind == types.ValueBoolean:
		return LooseEqual(types.NumberValue(ToNumber(a)), b)
	case b.Kind == types.ValueBoolean:
		return LooseEqual(a, types.NumberValue(ToNumber(b)))
	case a.Kind == types.ValueNumber && b.Kind == types.ValueString,
		a.Kind == types.ValueString && b.Kind == types.ValueNumber:
		return ToNumber(a) == ToNumber(b)
	}
	return false
}

// lessThan implements the abstract relational comparison a < b. The second
// result is false when the comparison is undefined (a NaN operand).
func lessThan(a, b types.Value) (bool, bool) {
	if a.Kind == types.ValueString && b.Kind == types.ValueString {
		return compareUTF16(a.Str, b.Str) < 0, true
	}
	x, y := ToNumber(a), ToNumber(b)
	if math.IsNaN(x) || math.IsNaN(y) {
		return false, false
	}
	return x < y, true
}

// compareUTF16 orders strings by UTF-16 code units, as JavaScript does.
func compareUTF16(a, b string) int {
	ua, ub := utf16.Encode([]rune(a)), utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			if ua[i] < ub[i] {
				return -1
			}
			return 1
		}
	}
	return len(ua) - len(ub)
}

func pow(x, y float64) float64 {
	if math.IsNaN(y) {
		return math.NaN()
	}
	if math.IsInf(y, 0) && math.Abs(x) == 1 {
		return math.NaN()
	}
	return math.Pow(x, y)
}

// StringToNumber implements StringToNumber: surrounding whitespace is
// ignored, the empty string is 0, and anything that is not a complete
// numeric literal is NaN.
func StringToNumber(s string) float64 {
	s = strings.TrimFunc(s, isJSSpace)
	if s == "" {
		return 0
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			return parseRadix(s[2:], base)
		}
	}

	sign := 1.0
	body := s
	switch body[0] {
	case '+':
		body = body[1:]
	case '-':
		sign = -1
		body = body[1:]
	}
	if body == "Infinity" {
		return sign * math.Inf(1)
	}
	if !isDecimalLiteral(body) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(body, 64)
	if err != nil {
		// Out of range values round to ±Inf, which ParseFloat also returns.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return math.NaN()
		}
	}
	return sign * f
}

func parseRadix(digits string, base int) float64 {
	if digits == "" {
		return math.NaN()
	}
	var f float64
	for _, c := range digits {
		d := digitValue(c)
		if d < 0 || d >= base {
			return math.NaN()
		}
		f = f*float64(base) + float64(d)
	}
	return f
}

func digitValue(c rune) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'z':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'Z':
		return int(c-'A') + 10
	}
	return -1
}

// isDecimalLiteral checks StrUnsignedDecimalLiteral without "Infinity":
// digits with an optional fraction and exponent.
func isDecimalLiteral(s string) bool {
	i, n := 0, len(s)
	intDigits := 0
	for i < n && isDigit(s[i]) {
		i++
		intDigits++
	}
	fracDigits := 0
	if i < n && s[i] == '.' {
		i++
		for i < n && isDigit(s[i]) {
			i++
			fracDigits++
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return false
	}
	if i < n && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < n && (s[i] == '+' || s[i] == '-') {
			i++
		}
		expDigits := 0
		for i < n && isDigit(s[i]) {
			i++
			expDigits++
		}
		if expDigits == 0 {
			return false
		}
	}
	return i == n
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// isJSSpace reports WhiteSpace and LineTerminator code points.
func isJSSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0xa0, 0x1680, 0x2028, 0x2029, 0x202f, 0x205f, 0x3000, 0xfeff:
		return true
	}
	return 0x2000 <= r && r <= 0x200a
}

func errUnsupported(msg string) error {
	return types.NewError(types.ErrFoldAbandoned, msg, types.NoNode)
}
