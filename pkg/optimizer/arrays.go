package optimizer

import (
	"github.com/sandrolain/esopt/pkg/types"
	"github.com/sandrolain/esopt/pkg/walker"
)

// runArrays rewrites calls of the global Array constructor into array
// literals wherever the two are equivalent. new Array(n) with a single
// number, or with an argument of unknown type, creates a sparse array of
// length n and is left alone.
func runArrays(r *round) (int, error) {
	changes := 0
	var err error
	walker.Walk(r.t, r.t.Root, nil, func(t *types.Tree, id types.NodeID) walker.Action {
		if err != nil || !t.Is(id, types.KindNewExpression) {
			return walker.Keep()
		}
		callee := t.Child(id, types.FieldCallee)
		if !t.Is(callee, types.KindIdentifier) || t.Node(callee).Name != "Array" {
			return walker.Keep()
		}
		rec, ferr := r.scopes.FindVar(callee)
		if ferr != nil {
			err = ferr
			return walker.Keep()
		}
		if rec.Tracked() {
			return walker.Keep()
		}

		args := t.Children(id, types.FieldArguments)
		if len(args) == 1 {
			v, ok := literalValue(t, args[0])
			if !ok || v.Kind == types.ValueNumber {
				return walker.Keep()
			}
		}
		t.SetChildren(id, types.FieldArguments, nil)
		changes++
		return walker.Replace(t.Array(args...))
	})
	return changes, err
}
