package evaluator

import (
	"context"
	"fmt"

	"github.com/sandrolain/esopt/pkg/types"
)

type completionKind uint8

const (
	completionNormal completionKind = iota
	completionReturn
	completionBreak
	completionContinue
)

type completion struct {
	kind  completionKind
	value types.Value
}

// interp evaluates one function body or expression. Local variables are
// the only state it can read or write.
type interp struct {
	ctx      context.Context
	t        *types.Tree
	locals   map[string]types.Value
	steps    int
	maxSteps int
	maxStr   int
}

// ctxCheckInterval is how many steps pass between deadline checks.
const ctxCheckInterval = 64

func (e *Evaluator) newInterp(ctx context.Context, t *types.Tree) *interp {
	return &interp{
		ctx:      ctx,
		t:        t,
		locals:   make(map[string]types.Value),
		maxSteps: e.opts.MaxSteps,
		maxStr:   e.opts.MaxStringLength,
	}
}

func (in *interp) step(id types.NodeID) error {
	in.steps++
	if in.maxSteps > 0 && in.steps > in.maxSteps {
		return types.NewError(types.ErrFoldTimeout, fmt.Sprintf("step budget of %d exhausted", in.maxSteps), id)
	}
	if in.steps%ctxCheckInterval == 0 {
		if err := in.ctx.Err(); err != nil {
			return types.NewError(types.ErrFoldTimeout, "evaluation timed out", id).WithCause(err)
		}
	}
	return nil
}

func impure(id types.NodeID, what string) error {
	return types.NewError(types.ErrFoldAbandoned, what+" is not evaluable", id)
}

// hoist pre-declares every var in body as undefined. Nested functions are
// rejected here so that stmt never meets one.
func (in *interp) hoist(id types.NodeID) error {
	n := in.t.Node(id)
	if n == nil {
		return nil
	}
	switch n.Kind {
	case types.KindFunctionDeclaration, types.KindFunctionExpression:
		return impure(id, "nested function")
	case types.KindVariableDeclarator:
		if name := in.t.Node(in.t.Child(id, types.FieldID)); name != nil {
			in.locals[name.Name] = types.UndefinedValue
		}
	}
	var err error
	in.t.Each(id, func(c types.NodeID, _ types.Path) {
		if err == nil {
			err = in.hoist(c)
		}
	})
	return err
}

func (in *interp) stmts(list []types.NodeID) (completion, error) {
	for _, c := range list {
		r, err := in.stmt(c)
		if err != nil || r.kind != completionNormal {
			return r, err
		}
	}
	return completion{}, nil
}

func (in *interp) stmt(id types.NodeID) (completion, error) {
	t := in.t
	n := t.Node(id)
	if n == nil {
		return completion{}, nil
	}
	if err := in.step(id); err != nil {
		return completion{}, err
	}

	switch n.Kind {
	case types.KindBlockStatement:
		return in.stmts(t.Children(id, types.FieldBody))

	case types.KindEmptyStatement, types.KindDirective:
		return completion{}, nil

	case types.KindExpressionStatement:
		_, err := in.expr(t.Child(id, types.FieldExpression))
		return completion{}, err

	case types.KindVariableDeclaration:
		for _, d := range t.Children(id, types.FieldDeclarations) {
			init := t.Child(d, types.FieldInit)
			if init == types.NoNode {
				continue
			}
			v, err := in.expr(init)
			if err != nil {
				return completion{}, err
			}
			in.locals[t.Node(t.Child(d, types.FieldID)).Name] = v
		}
		return completion{}, nil

	case types.KindReturnStatement:
		arg := t.Child(id, types.FieldArgument)
		if arg == types.NoNode {
			return completion{kind: completionReturn, value: types.UndefinedValue}, nil
		}
		v, err := in.expr(arg)
		return completion{kind: completionReturn, value: v}, err

	case types.KindIfStatement:
		test, err := in.expr(t.Child(id, types.FieldTest))
		if err != nil {
			return completion{}, err
		}
		if Truthy(test) {
			return in.stmt(t.Child(id, types.FieldConsequent))
		}
		return in.stmt(t.Child(id, types.FieldAlternate))

	case types.KindBreakStatement, types.KindContinueStatement:
		if n.Label != "" {
			return completion{}, impure(id, "labeled jump")
		}
		if n.Kind == types.KindBreakStatement {
			return completion{kind: completionBreak}, nil
		}
		return completion{kind: completionContinue}, nil

	case types.KindWhileStatement:
		return in.loop(id, types.NoNode, t.Child(id, types.FieldTest), types.NoNode, t.Child(id, types.FieldBody), false)

	case types.KindDoWhileStatement:
		return in.loop(id, types.NoNode, t.Child(id, types.FieldTest), types.NoNode, t.Child(id, types.FieldBody), true)

	case types.KindForStatement:
		return in.loop(id, t.Child(id, types.FieldInit), t.Child(id, types.FieldTest),
			t.Child(id, types.FieldUpdate), t.Child(id, types.FieldBody), false)
	}

	return completion{}, impure(id, n.Kind.String())
}

// loop runs a while, do-while or for loop.
func (in *interp) loop(id, init, test, update, body types.NodeID, bodyFirst bool) (completion, error) {
	t := in.t
	if init != types.NoNode {
		var err error
		if t.Is(init, types.KindVariableDeclaration) {
			_, err = in.stmt(init)
		} else {
			_, err = in.expr(init)
		}
		if err != nil {
			return completion{}, err
		}
	}

	for first := true; ; first = false {
		if !(bodyFirst && first) && test != types.NoNode {
			v, err := in.expr(test)
			if err != nil {
				return completion{}, err
			}
			if !Truthy(v) {
				return completion{}, nil
			}
		}
		if err := in.step(id); err != nil {
			return completion{}, err
		}

		r, err := in.stmt(body)
		if err != nil {
			return completion{}, err
		}
		switch r.kind {
		case completionReturn:
			return r, nil
		case completionBreak:
			return completion{}, nil
		}

		if update != types.NoNode {
			if _, err := in.expr(update); err != nil {
				return completion{}, err
			}
		}
	}
}

func (in *interp) expr(id types.NodeID) (types.Value, error) {
	t := in.t
	n := t.Node(id)
	if n == nil {
		return types.Value{}, impure(id, "missing expression")
	}
	if err := in.step(id); err != nil {
		return types.Value{}, err
	}

	switch n.Kind {
	case types.KindLiteral:
		if !n.Value.IsPrimitive() {
			return types.Value{}, impure(id, "non-primitive literal")
		}
		return n.Value, nil

	case types.KindIdentifier:
		if v, ok := in.locals[n.Name]; ok {
			return v, nil
		}
		return types.Value{}, impure(id, "free variable "+n.Name)

	case types.KindSequenceExpression:
		var last types.Value
		for _, e := range t.Children(id, types.FieldExpressions) {
			v, err := in.expr(e)
			if err != nil {
				return types.Value{}, err
			}
			last = v
		}
		return last, nil

	case types.KindConditionalExpression:
		test, err := in.expr(t.Child(id, types.FieldTest))
		if err != nil {
			return types.Value{}, err
		}
		if Truthy(test) {
			return in.expr(t.Child(id, types.FieldConsequent))
		}
		return in.expr(t.Child(id, types.FieldAlternate))

	case types.KindLogicalExpression:
		left, err := in.expr(t.Child(id, types.FieldLeft))
		if err != nil {
			return types.Value{}, err
		}
		switch {
		case n.Operator == "&&" && !Truthy(left),
			n.Operator == "||" && Truthy(left),
			n.Operator == "??" && left.Kind != types.ValueNull && left.Kind != types.ValueUndefined:
			return left, nil
		}
		right, err := in.expr(t.Child(id, types.FieldRight))
		if err != nil {
			return types.Value{}, err
		}
		return Logical(n.Operator, left, right)

	case types.KindBinaryExpression:
		left, err := in.expr(t.Child(id, types.FieldLeft))
		if err != nil {
			return types.Value{}, err
		}
		right, err := in.expr(t.Child(id, types.FieldRight))
		if err != nil {
			return types.Value{}, err
		}
		v, err := Binary(n.Operator, left, right)
		if err != nil {
			return types.Value{}, err
		}
		return v, in.checkString(id, v)

	case types.KindUnaryExpression:
		arg := t.Child(id, types.FieldArgument)
		if n.Operator == "typeof" && t.Is(arg, types.KindIdentifier) {
			if _, ok := in.locals[t.Node(arg).Name]; !ok {
				return types.Value{}, impure(id, "typeof a free variable")
			}
		}
		v, err := in.expr(arg)
		if err != nil {
			return types.Value{}, err
		}
		return Unary(n.Operator, v)

	case types.KindAssignmentExpression:
		name, err := in.target(t.Child(id, types.FieldLeft))
		if err != nil {
			return types.Value{}, err
		}
		cur := in.locals[name]
		switch {
		case n.Operator == "&&=" && !Truthy(cur),
			n.Operator == "||=" && Truthy(cur),
			n.Operator == "??=" && cur.Kind != types.ValueNull && cur.Kind != types.ValueUndefined:
			return cur, nil
		}
		right, err := in.expr(t.Child(id, types.FieldRight))
		if err != nil {
			return types.Value{}, err
		}
		if n.Operator != "=" {
			right, err = compound(n.Operator, cur, right)
			if err != nil {
				return types.Value{}, err
			}
			if err := in.checkString(id, right); err != nil {
				return types.Value{}, err
			}
		}
		in.locals[name] = right
		return right, nil

	case types.KindUpdateExpression:
		name, err := in.target(t.Child(id, types.FieldArgument))
		if err != nil {
			return types.Value{}, err
		}
		old := ToNumber(in.locals[name])
		next := old + 1
		if n.Operator == "--" {
			next = old - 1
		}
		in.locals[name] = types.NumberValue(next)
		if n.Prefix {
			return types.NumberValue(next), nil
		}
		return types.NumberValue(old), nil
	}

	return types.Value{}, impure(id, n.Kind.String())
}

// target returns the local variable an assignment writes to.
func (in *interp) target(id types.NodeID) (string, error) {
	n := in.t.Node(id)
	if n == nil || n.Kind != types.KindIdentifier {
		return "", impure(id, "assignment to a non-variable")
	}
	if _, ok := in.locals[n.Name]; !ok {
		return "", impure(id, "assignment to free variable "+n.Name)
	}
	return n.Name, nil
}

func (in *interp) checkString(id types.NodeID, v types.Value) error {
	if in.maxStr > 0 && v.Kind == types.ValueString && len(v.Str) > in.maxStr {
		return types.NewError(types.ErrFoldAbandoned, "string result too long", id)
	}
	return nil
}

// compound applies the binary operator behind a compound assignment.
func compound(op string, left, right types.Value) (types.Value, error) {
	switch op {
	case "&&=", "||=", "??=":
		return Logical(op[:len(op)-1], left, right)
	}
	return Binary(op[:len(op)-1], left, right)
}
