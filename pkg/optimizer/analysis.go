package optimizer

import (
	"github.com/sandrolain/esopt/pkg/scope"
	"github.com/sandrolain/esopt/pkg/types"
	"github.com/sandrolain/esopt/pkg/walker"
)

// analysis records usage and constness on the round's variable records,
// trims unreferenced trailing parameters and precomputes the result of
// zero-parameter functions.
type analysis struct {
	*round
	// dynamic holds functions whose locals may be reached by name at run
	// time, through arguments or eval.
	dynamic map[types.NodeID]bool
	changes int
	err     error
}

func runAnalysis(r *round) (int, error) {
	a := &analysis{round: r, dynamic: make(map[types.NodeID]bool)}
	walker.Walk(r.t, r.t.Root, a.pre, a.post)
	return a.changes, a.err
}

func (a *analysis) pre(t *types.Tree, id types.NodeID) walker.Action {
	if a.err != nil {
		return walker.Keep()
	}
	switch t.Kind(id) {
	case types.KindAssignmentExpression:
		a.assign(t.Child(id, types.FieldLeft))
	case types.KindUpdateExpression:
		a.assign(t.Child(id, types.FieldArgument))
	case types.KindForInStatement:
		left := t.Child(id, types.FieldLeft)
		if !t.Is(left, types.KindVariableDeclaration) {
			a.assign(left)
			break
		}
		for _, d := range t.Children(left, types.FieldDeclarations) {
			a.assign(t.Child(d, types.FieldID))
		}
	case types.KindIdentifier:
		if !isBindingSlot(t, id) {
			a.reference(id)
		}
	}
	return walker.Keep()
}

// assign marks the variable behind a write target as non-constant.
func (a *analysis) assign(target types.NodeID) {
	base := baseIdentifier(a.t, target)
	if base == types.NoNode {
		return
	}
	rec, err := a.scopes.FindVar(base)
	if err != nil {
		a.err = err
		return
	}
	rec.ClearConstant()
	rec.Assigned = true
}

func (a *analysis) reference(id types.NodeID) {
	rec, err := a.scopes.FindVar(id)
	if err != nil {
		a.err = err
		return
	}
	rec.Used = true
	rec.Refs++
	if rec.Tracked() {
		return
	}

	sc := a.scopes.ScopeOf(id)
	switch rec.Name {
	case "arguments":
		a.dynamic[sc.FunctionScope().Node] = true
	case "eval":
		// Direct eval can read and write every visible variable.
		a.dynamic[sc.FunctionScope().Node] = true
		for ; sc != nil; sc = sc.Parent {
			for _, v := range sc.Vars {
				v.Used = true
				v.Refs++
				v.Assigned = true
				v.ClearConstant()
			}
		}
	}
}

func (a *analysis) post(t *types.Tree, id types.NodeID) walker.Action {
	if a.err != nil || !t.Kind(id).IsFunction() {
		return walker.Keep()
	}
	if !a.dynamic[id] {
		a.trimParams(id)
	}
	if len(t.Children(id, types.FieldParams)) == 0 {
		a.precompute(id)
	}
	return walker.Keep()
}

// trimParams removes trailing parameters that nothing references.
func (a *analysis) trimParams(fn types.NodeID) {
	t := a.t
	sc, ok := a.scopes.Declared(fn)
	if !ok {
		return
	}
	params := t.Children(fn, types.FieldParams)
	for i := len(params) - 1; i >= 0; i-- {
		rec := sc.Vars[t.Node(params[i]).Name]
		if rec == nil || rec.Refs > 0 {
			return
		}
		a.debug("removing unused parameter", "name", rec.Name, "function", fn)
		t.Remove(params[i])
		a.changes++
	}
}

// precompute evaluates a zero-parameter function and attaches the result
// as its inline literal.
func (a *analysis) precompute(fn types.NodeID) {
	t := a.t
	v, err := a.o.eval.EvalFunction(a.ctx, t, fn)
	if err != nil {
		if ctxErr := a.ctx.Err(); ctxErr != nil {
			a.err = ctxErr
			return
		}
		a.debug("function not precomputed", "function", fn, "reason", err)
		return
	}
	if _, ok := v.Serialize(); !ok {
		return
	}

	lit := t.Literal(v)
	a.scopes.SetInline(fn, lit)
	if rec := a.binding(fn); rec != nil && rec.Declarations == 1 {
		rec.Inline = lit
	}
	a.debug("function precomputed", "function", fn, "value", v.String())
}

// binding returns the record naming a function: the name of a declaration,
// or the variable a single var declarator binds a function expression to.
func (a *analysis) binding(fn types.NodeID) *scope.VariableRecord {
	t := a.t
	n := t.Node(fn)
	if n.Kind == types.KindFunctionDeclaration {
		name := t.Node(t.Child(fn, types.FieldID))
		if name == nil {
			return nil
		}
		return a.scopes.ScopeOf(fn).FunctionScope().Vars[name.Name]
	}

	decl := n.Parent
	if !t.Is(decl, types.KindVariableDeclarator) || n.Path.Field != types.FieldInit {
		return nil
	}
	if t.Node(t.Node(decl).Parent).DeclKind != "var" {
		return nil
	}
	name := t.Node(t.Child(decl, types.FieldID))
	if name == nil {
		return nil
	}
	return a.hoistedRecord(decl, name.Name)
}
