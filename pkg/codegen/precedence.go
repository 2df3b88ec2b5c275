package codegen

import "github.com/sandrolain/esopt/pkg/types"

// level is an operator precedence level. Higher values bind more tightly.
// https://developer.mozilla.org/en-US/docs/Web/JavaScript/Reference/Operators/Operator_Precedence
type level uint8

const (
	lLowest level = iota
	lComma
	lAssign
	lConditional
	lNullishCoalescing
	lLogicalOr
	lLogicalAnd
	lBitwiseOr
	lBitwiseXor
	lBitwiseAnd
	lEquals
	lCompare
	lShift
	lAdd
	lMultiply
	lExponentiation
	lPrefix
	lPostfix
	lNew
	lCall
	lMember
)

type opEntry struct {
	level      level
	isKeyword  bool
	rightAssoc bool
}

// opTable maps binary and logical operator tokens to their level.
var opTable = map[string]opEntry{
	"+":          {level: lAdd},
	"-":          {level: lAdd},
	"*":          {level: lMultiply},
	"/":          {level: lMultiply},
	"%":          {level: lMultiply},
	"**":         {level: lExponentiation, rightAssoc: true},
	"<":          {level: lCompare},
	"<=":         {level: lCompare},
	">":          {level: lCompare},
	">=":         {level: lCompare},
	"in":         {level: lCompare, isKeyword: true},
	"instanceof": {level: lCompare, isKeyword: true},
	"<<":         {level: lShift},
	">>":         {level: lShift},
	">>>":        {level: lShift},
	"==":         {level: lEquals},
	"!=":         {level: lEquals},
	"===":        {level: lEquals},
	"!==":        {level: lEquals},
	"??":         {level: lNullishCoalescing},
	"||":         {level: lLogicalOr},
	"&&":         {level: lLogicalAnd},
	"|":          {level: lBitwiseOr},
	"&":          {level: lBitwiseAnd},
	"^":          {level: lBitwiseXor},
}

// keywordOps are the unary operators spelled as words.
var keywordOps = map[string]bool{
	"typeof": true,
	"void":   true,
	"delete": true,
}

// levelOf returns the precedence level of the expression rooted at id.
func levelOf(t *types.Tree, id types.NodeID) level {
	n := t.Node(id)
	if n == nil {
		return lMember
	}
	switch n.Kind {
	case types.KindSequenceExpression:
		return lComma
	case types.KindAssignmentExpression:
		return lAssign
	case types.KindConditionalExpression:
		return lConditional
	case types.KindBinaryExpression, types.KindLogicalExpression:
		if e, ok := opTable[n.Operator]; ok {
			return e.level
		}
		return lLowest
	case types.KindUnaryExpression:
		return lPrefix
	case types.KindUpdateExpression:
		if n.Prefix {
			return lPrefix
		}
		return lPostfix
	case types.KindNewExpression:
		return lNew
	case types.KindCallExpression:
		return lCall
	case types.KindLiteral:
		if isPrefixLiteral(n) {
			return lPrefix
		}
	}
	return lMember
}

// isPrefixLiteral reports literals whose text starts with a prefix operator:
// negative numbers and "void 0".
func isPrefixLiteral(n *types.Node) bool {
	if n.Value.Kind == types.ValueUndefined {
		return true
	}
	return len(n.Raw) > 0 && n.Raw[0] == '-'
}
