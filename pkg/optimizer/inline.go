package optimizer

import (
	"github.com/sandrolain/esopt/pkg/types"
	"github.com/sandrolain/esopt/pkg/walker"
)

// runInline replaces calls of precomputed functions with their result. The
// arguments must be free of side effects since they are dropped.
func runInline(r *round) (int, error) {
	changes := 0
	var err error
	walker.Walk(r.t, r.t.Root, nil, func(t *types.Tree, id types.NodeID) walker.Action {
		if err != nil || !t.Is(id, types.KindCallExpression) {
			return walker.Keep()
		}

		lit := types.NoNode
		switch callee := t.Child(id, types.FieldCallee); t.Kind(callee) {
		case types.KindFunctionExpression:
			lit = r.scopes.Inline(callee)
		case types.KindIdentifier:
			rec, ferr := r.scopes.FindVar(callee)
			if ferr != nil {
				err = ferr
				return walker.Keep()
			}
			if rec.Tracked() && !rec.Assigned {
				lit = rec.Inline
			}
		}
		if lit == types.NoNode || !r.allPure(t.Children(id, types.FieldArguments)) {
			return walker.Keep()
		}

		r.debug("inlining call", "call", r.render(id), "value", t.Node(lit).Raw)
		changes++
		return walker.Replace(t.Clone(lit))
	})
	return changes, err
}
