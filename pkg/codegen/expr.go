package codegen

import (
	"strings"

	"github.com/sandrolain/esopt/pkg/types"
)

// expr renders id as an expression that is valid wherever an expression of
// at least level min is expected, adding parentheses when it binds looser.
func (p *printer) expr(id types.NodeID, min level) string {
	if levelOf(p.t, id) < min {
		return p.paren(id)
	}
	return p.exprText(id)
}

func (p *printer) paren(id types.NodeID) string {
	saved := p.noIn
	p.noIn = false
	text := "(" + p.exprText(id) + ")"
	p.noIn = saved
	return text
}

// list renders comma separated elements at assignment level.
func (p *printer) list(ids []types.NodeID) string {
	saved := p.noIn
	p.noIn = false
	defer func() { p.noIn = saved }()

	parts := make([]string, len(ids))
	for i, c := range ids {
		parts[i] = p.expr(c, lAssign)
	}
	return strings.Join(parts, ",")
}

func (p *printer) exprText(id types.NodeID) string {
	t := p.t
	n := t.Node(id)
	if n == nil {
		return ""
	}

	switch n.Kind {
	case types.KindIdentifier:
		return n.Name

	case types.KindLiteral:
		if n.Raw != "" {
			return n.Raw
		}
		if s, ok := n.Value.Serialize(); ok {
			return s
		}
		return n.Value.String()

	case types.KindThisExpression:
		return "this"

	case types.KindRaw:
		return n.Raw

	case types.KindFunctionExpression:
		return p.function(id)

	case types.KindArrayExpression:
		elems := t.Children(id, types.FieldElements)
		text := "[" + p.list(elems)
		if len(elems) > 0 && elems[len(elems)-1] == types.NoNode {
			// A trailing hole needs its own comma.
			text += ","
		}
		return text + "]"

	case types.KindObjectExpression:
		props := t.Children(id, types.FieldProperties)
		saved := p.noIn
		p.noIn = false
		parts := make([]string, len(props))
		for i, prop := range props {
			parts[i] = p.property(prop)
		}
		p.noIn = saved
		return "{" + strings.Join(parts, ",") + "}"

	case types.KindProperty:
		return p.property(id)

	case types.KindSequenceExpression:
		exprs := t.Children(id, types.FieldExpressions)
		parts := make([]string, len(exprs))
		for i, e := range exprs {
			parts[i] = p.expr(e, lAssign)
		}
		return strings.Join(parts, ",")

	case types.KindMemberExpression:
		obj := p.memberObject(t.Child(id, types.FieldObject))
		prop := t.Child(id, types.FieldProperty)
		if n.Computed {
			saved := p.noIn
			p.noIn = false
			text := obj + "[" + p.expr(prop, lLowest) + "]"
			p.noIn = saved
			return text
		}
		return obj + "." + p.exprText(prop)

	case types.KindCallExpression:
		callee := t.Child(id, types.FieldCallee)
		return p.expr(callee, lNew) + "(" + p.list(t.Children(id, types.FieldArguments)) + ")"

	case types.KindNewExpression:
		callee := t.Child(id, types.FieldCallee)
		var text string
		if p.hasCallInChain(callee) {
			text = p.paren(callee)
		} else {
			text = p.expr(callee, lNew)
		}
		return keyword("new", text) + "(" + p.list(t.Children(id, types.FieldArguments)) + ")"

	case types.KindUnaryExpression:
		arg := p.expr(t.Child(id, types.FieldArgument), lPrefix)
		if keywordOps[n.Operator] {
			return keyword(n.Operator, arg)
		}
		return glue(n.Operator, arg)

	case types.KindUpdateExpression:
		if n.Prefix {
			return glue(n.Operator, p.expr(t.Child(id, types.FieldArgument), lPrefix))
		}
		return p.expr(t.Child(id, types.FieldArgument), lPostfix) + n.Operator

	case types.KindBinaryExpression, types.KindLogicalExpression:
		return p.binary(id, n)

	case types.KindAssignmentExpression:
		left := p.expr(t.Child(id, types.FieldLeft), lPostfix)
		right := p.expr(t.Child(id, types.FieldRight), lAssign)
		return glue(glue(left, n.Operator), right)

	case types.KindConditionalExpression:
		return p.expr(t.Child(id, types.FieldTest), lConditional+1) + "?" +
			p.expr(t.Child(id, types.FieldConsequent), lAssign) + ":" +
			p.expr(t.Child(id, types.FieldAlternate), lAssign)
	}

	return p.unresolved(id)
}

func (p *printer) binary(id types.NodeID, n *types.Node) string {
	t := p.t
	entry, ok := opTable[n.Operator]
	if !ok {
		return p.unresolved(id)
	}
	if n.Operator == "in" && p.noIn {
		p.noIn = false
		defer func() { p.noIn = true }()
		return "(" + p.binary(id, n) + ")"
	}

	leftLevel, rightLevel := entry.level, entry.level+1
	if entry.rightAssoc {
		leftLevel, rightLevel = entry.level+1, entry.level
	}

	leftID, rightID := t.Child(id, types.FieldLeft), t.Child(id, types.FieldRight)
	var left, right string
	switch {
	case n.Operator == "**" && p.isUnaryLike(leftID):
		// -a ** b is a syntax error.
		left = p.paren(leftID)
	case mixesNullish(t, n.Operator, leftID):
		left = p.paren(leftID)
	default:
		left = p.expr(leftID, leftLevel)
	}
	if mixesNullish(t, n.Operator, rightID) {
		right = p.paren(rightID)
	} else {
		right = p.expr(rightID, rightLevel)
	}

	if entry.isKeyword {
		return left + " " + n.Operator + " " + right
	}
	return glue(glue(left, n.Operator), right)
}

func (p *printer) property(id types.NodeID) string {
	t := p.t
	key := t.Child(id, types.FieldKey)
	var keyText string
	if t.Node(id).Computed {
		keyText = "[" + p.expr(key, lAssign) + "]"
	} else {
		keyText = p.exprText(key)
	}
	return keyText + ":" + p.expr(t.Child(id, types.FieldValue), lAssign)
}

// memberObject renders the object of a member access. Numeric literals are
// parenthesized so that the dot is not read as a decimal point.
func (p *printer) memberObject(id types.NodeID) string {
	if n := p.t.Node(id); n != nil && n.Kind == types.KindLiteral && n.Value.Kind == types.ValueNumber {
		return p.paren(id)
	}
	return p.expr(id, lNew)
}

// hasCallInChain reports whether a call appears along the member chain of a
// new callee, where "new a.b()" and "new (a.b())" differ.
func (p *printer) hasCallInChain(id types.NodeID) bool {
	t := p.t
	for {
		switch t.Kind(id) {
		case types.KindCallExpression:
			return true
		case types.KindMemberExpression:
			id = t.Child(id, types.FieldObject)
		default:
			return false
		}
	}
}

func (p *printer) isUnaryLike(id types.NodeID) bool {
	n := p.t.Node(id)
	if n == nil {
		return false
	}
	switch n.Kind {
	case types.KindUnaryExpression:
		return true
	case types.KindUpdateExpression:
		return n.Prefix
	case types.KindLiteral:
		return isPrefixLiteral(n)
	}
	return false
}

// mixesNullish reports whether child is a ||/&& operand of ?? or the reverse,
// which must always be parenthesized.
func mixesNullish(t *types.Tree, op string, child types.NodeID) bool {
	cn := t.Node(child)
	if cn == nil || cn.Kind != types.KindLogicalExpression {
		return false
	}
	if op == "??" {
		return cn.Operator == "||" || cn.Operator == "&&"
	}
	return (op == "||" || op == "&&") && cn.Operator == "??"
}

// glue concatenates two token runs, separating them when the last character
// of a and the first of b would fuse into a different operator ("a+ +b",
// "- -1") or comment.
func glue(a, b string) string {
	if a == "" || b == "" {
		return a + b
	}
	last, first := a[len(a)-1], b[0]
	switch {
	case (last == '+' || last == '-') && first == last:
		return a + " " + b
	case last == '/' && (first == '/' || first == '*'):
		return a + " " + b
	case last == '<' && first == '!':
		// "<!--" starts an HTML-like comment.
		return a + " " + b
	}
	return a + b
}
