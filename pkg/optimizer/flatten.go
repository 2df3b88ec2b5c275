package optimizer

import (
	"github.com/sandrolain/esopt/pkg/types"
	"github.com/sandrolain/esopt/pkg/walker"
)

// runFlatten splices nested blocks into the enclosing statement list and
// drops empty statements. Blocks holding block-scoped declarations keep
// their braces.
func runFlatten(r *round) (int, error) {
	changes := 0
	walker.Walk(r.t, r.t.Root, nil, func(t *types.Tree, id types.NodeID) walker.Action {
		if !t.Is(id, types.KindProgram) && !t.Is(id, types.KindBlockStatement) {
			return walker.Keep()
		}
		list := t.Children(id, types.FieldBody)
		flat := make([]types.NodeID, 0, len(list))
		edits := 0
		for _, s := range list {
			switch {
			case t.Is(s, types.KindEmptyStatement):
				edits++
			case t.Is(s, types.KindBlockStatement) && !scoped(t, s):
				flat = append(flat, t.Children(s, types.FieldBody)...)
				edits++
			default:
				flat = append(flat, s)
			}
		}
		if edits > 0 {
			t.ReplaceChildren(id, types.FieldBody, flat)
			changes += edits
		}
		return walker.Keep()
	})
	return changes, nil
}

// scoped reports whether a block directly declares let, const or a
// function, which would leak into the enclosing list if spliced.
func scoped(t *types.Tree, block types.NodeID) bool {
	for _, s := range t.Children(block, types.FieldBody) {
		n := t.Node(s)
		switch {
		case n.Kind == types.KindFunctionDeclaration:
			return true
		case n.Kind == types.KindVariableDeclaration && n.DeclKind != "var":
			return true
		}
	}
	return false
}
