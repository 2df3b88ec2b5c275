package optimizer

import (
	"math"

	"github.com/sandrolain/esopt/pkg/types"
	"github.com/sandrolain/esopt/pkg/walker"
)

// foldable lists the unary operators folded on literal operands.
var foldable = map[string]bool{
	"-": true, "+": true, "!": true, "~": true, "typeof": true, "void": true,
}

type folder struct {
	*round
	changes int
	err     error
}

// runFold propagates constant variables and folds operators applied to
// literals.
func runFold(r *round) (int, error) {
	f := &folder{round: r}
	walker.Walk(r.t, r.t.Root, nil, f.post)
	return f.changes, f.err
}

func (f *folder) post(t *types.Tree, id types.NodeID) walker.Action {
	if f.err != nil {
		return walker.Keep()
	}
	n := t.Node(id)
	switch n.Kind {
	case types.KindIdentifier:
		return f.propagate(id)

	case types.KindBinaryExpression, types.KindLogicalExpression:
		if primitiveLiteral(t, t.Child(id, types.FieldLeft)) && primitiveLiteral(t, t.Child(id, types.FieldRight)) {
			return f.fold(id)
		}

	case types.KindUnaryExpression:
		if foldable[n.Operator] && primitiveLiteral(t, t.Child(id, types.FieldArgument)) {
			return f.fold(id)
		}
	}
	return walker.Keep()
}

// propagate replaces a read of a constant variable with a copy of its
// literal. Only reads in the declaring function that follow the
// declaration qualify.
func (f *folder) propagate(id types.NodeID) walker.Action {
	t := f.t
	if isBindingSlot(t, id) || isWriteTarget(t, id) {
		return walker.Keep()
	}
	rec, err := f.scopes.FindVar(id)
	if err != nil {
		f.err = err
		return walker.Keep()
	}
	if !rec.Tracked() || !rec.IsConstant() {
		return walker.Keep()
	}
	if f.scopes.ScopeOf(id).FunctionScope() != rec.Owner {
		return walker.Keep()
	}
	if order, ok := f.scopes.Order(id); !ok || order <= rec.DeclOrder {
		return walker.Keep()
	}

	f.debug("propagating constant", "name", rec.Name, "value", t.Node(rec.Constant).Raw)
	f.changes++
	return walker.Replace(t.Clone(rec.Constant))
}

// fold evaluates id and replaces it with the resulting literal.
func (f *folder) fold(id types.NodeID) walker.Action {
	t := f.t
	v, err := f.o.eval.Fold(f.ctx, t, id)
	if err != nil {
		if ctxErr := f.ctx.Err(); ctxErr != nil {
			f.err = ctxErr
			return walker.Keep()
		}
		f.debug("expression not folded", "expr", f.render(id), "reason", err)
		return walker.Keep()
	}
	if v.Kind == types.ValueNumber && (math.IsNaN(v.Num) || math.IsInf(v.Num, 0)) {
		return walker.Keep()
	}
	if _, ok := v.Serialize(); !ok {
		return walker.Keep()
	}

	f.debug("folded expression", "expr", f.render(id), "value", v.String())
	f.changes++
	return walker.Replace(t.Literal(v))
}
