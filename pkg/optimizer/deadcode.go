package optimizer

import (
	"github.com/sandrolain/esopt/pkg/types"
	"github.com/sandrolain/esopt/pkg/walker"
)

type eliminator struct {
	*round
	changes int
	// prologue holds the string statements that open a program or function
	// body, recorded before any sibling is removed.
	prologue map[types.NodeID]bool
}

// runDeadCode removes code that can never run or whose result nobody
// observes.
func runDeadCode(r *round) (int, error) {
	e := &eliminator{round: r, prologue: make(map[types.NodeID]bool)}
	walker.Walk(r.t, r.t.Root, e.pre, e.post)
	return e.changes, nil
}

func (e *eliminator) pre(t *types.Tree, id types.NodeID) walker.Action {
	if isBody(t, id) {
		e.markPrologue(id)
	}
	return walker.Keep()
}

func (e *eliminator) post(t *types.Tree, id types.NodeID) walker.Action {
	act := e.visit(t, id)
	if act != walker.Keep() {
		e.changes++
	}
	return act
}

func (e *eliminator) visit(t *types.Tree, id types.NodeID) walker.Action {
	n := t.Node(id)
	switch n.Kind {
	case types.KindProgram, types.KindBlockStatement:
		e.truncate(id, types.FieldBody)
	case types.KindSwitchCase:
		e.truncate(id, types.FieldConsequent)

	case types.KindIfStatement:
		return e.ifStatement(id)

	case types.KindWhileStatement:
		if truth, ok := literalTruth(t, t.Child(id, types.FieldTest)); ok && !truth {
			return e.drop(id, t.Child(id, types.FieldBody))
		}

	case types.KindDoWhileStatement:
		if truth, ok := literalTruth(t, t.Child(id, types.FieldTest)); ok && !truth && !loopBound(t, id) {
			return walker.Replace(t.Child(id, types.FieldBody))
		}

	case types.KindConditionalExpression:
		if truth, ok := literalTruth(t, t.Child(id, types.FieldTest)); ok {
			if truth {
				return walker.Replace(t.Child(id, types.FieldConsequent))
			}
			return walker.Replace(t.Child(id, types.FieldAlternate))
		}

	case types.KindExpressionStatement:
		expr := t.Child(id, types.FieldExpression)
		if !t.Is(expr, types.KindLiteral) {
			break
		}
		if t.Node(expr).Value.Kind == types.ValueString && e.prologue[id] {
			break
		}
		return removeStatement(t, id)

	case types.KindFunctionDeclaration:
		name := t.Node(t.Child(id, types.FieldID))
		if name == nil {
			break
		}
		rec := e.scopes.ScopeOf(id).FunctionScope().Vars[name.Name]
		if rec != nil && !rec.Used && !e.keepGlobal(rec) {
			e.debug("removing unused function", "name", name.Name)
			return removeStatement(t, id)
		}

	case types.KindVariableDeclarator:
		return e.declarator(id)

	case types.KindVariableDeclaration:
		if len(t.Children(id, types.FieldDeclarations)) == 0 {
			return removeStatement(t, id)
		}
	}
	return walker.Keep()
}

func isJump(k types.Kind) bool {
	switch k {
	case types.KindReturnStatement, types.KindThrowStatement, types.KindBreakStatement, types.KindContinueStatement:
		return true
	}
	return false
}

// truncate prunes the statements following the first jump in a statement
// list. Function declarations survive since they are hoisted, and var
// names still in use are kept as declarations without initializers.
func (e *eliminator) truncate(id types.NodeID, f types.Field) {
	t := e.t
	list := t.Children(id, f)
	cut := -1
	for i, s := range list {
		if isJump(t.Kind(s)) {
			cut = i
			break
		}
	}
	if cut < 0 || cut == len(list)-1 || settledTail(t, list[cut+1:]) {
		return
	}

	kept := append([]types.NodeID(nil), list[:cut+1]...)
	var names []string
	for _, s := range list[cut+1:] {
		if t.Is(s, types.KindFunctionDeclaration) {
			kept = append(kept, s)
			continue
		}
		names = hoistedNames(t, s, names)
	}
	if names = e.usedHoisted(id, names); len(names) > 0 {
		kept = append(kept, bareVar(t, names))
	}
	e.debug("pruning unreachable statements", "count", len(list)-len(kept))
	t.ReplaceChildren(id, f, kept)
	e.changes++
}

// settledTail reports whether an unreachable tail is already reduced to
// function declarations followed by at most one initializer-free var.
func settledTail(t *types.Tree, tail []types.NodeID) bool {
	for i, s := range tail {
		n := t.Node(s)
		switch {
		case n.Kind == types.KindFunctionDeclaration:
		case n.Kind == types.KindVariableDeclaration && n.DeclKind == "var" && i == len(tail)-1:
			for _, d := range t.Children(s, types.FieldDeclarations) {
				if t.Child(d, types.FieldInit) != types.NoNode {
					return false
				}
			}
		default:
			return false
		}
	}
	return true
}

func (e *eliminator) ifStatement(id types.NodeID) walker.Action {
	t := e.t
	truth, ok := literalTruth(t, t.Child(id, types.FieldTest))
	if !ok {
		return walker.Keep()
	}
	keep, dropped := t.Child(id, types.FieldConsequent), t.Child(id, types.FieldAlternate)
	if !truth {
		keep, dropped = dropped, keep
	}
	if keep == types.NoNode {
		return e.drop(id, dropped)
	}

	names := e.usedHoisted(id, hoistedNames(t, dropped, nil))
	if len(names) == 0 {
		return walker.Replace(keep)
	}
	t.SetChild(id, t.Node(keep).Path.Field, types.NoNode)
	return walker.Replace(t.Block(keep, bareVar(t, names)))
}

// drop removes the statement id whose part body never runs, keeping the
// var names body declares that are still in use.
func (e *eliminator) drop(id, body types.NodeID) walker.Action {
	t := e.t
	if names := e.usedHoisted(id, hoistedNames(t, body, nil)); len(names) > 0 {
		return walker.Replace(bareVar(t, names))
	}
	return removeStatement(t, id)
}

func (e *eliminator) declarator(id types.NodeID) walker.Action {
	t := e.t
	decl := t.Node(id).Parent
	if t.Is(t.Node(decl).Parent, types.KindForInStatement) {
		return walker.Keep()
	}
	name := t.Node(t.Child(id, types.FieldID))
	if name == nil {
		return walker.Keep()
	}
	rec := e.hoistedRecord(id, name.Name)
	if rec == nil || rec.Used || e.keepGlobal(rec) {
		return walker.Keep()
	}
	if init := t.Child(id, types.FieldInit); init != types.NoNode && !e.isPure(init) {
		return walker.Keep()
	}
	e.debug("removing unused variable", "name", name.Name)
	return walker.Delete()
}

// isBody reports whether id is a program or function body, the places a
// directive prologue can open.
func isBody(t *types.Tree, id types.NodeID) bool {
	n := t.Node(id)
	switch n.Kind {
	case types.KindProgram:
		return true
	case types.KindBlockStatement:
		return t.Kind(n.Parent).IsFunction()
	}
	return false
}

// markPrologue records the leading string statements of body. Directives
// may be interleaved with them.
func (e *eliminator) markPrologue(body types.NodeID) {
	t := e.t
	for _, s := range t.Children(body, types.FieldBody) {
		if t.Is(s, types.KindDirective) {
			continue
		}
		v, ok := literalValue(t, t.Child(s, types.FieldExpression))
		if !t.Is(s, types.KindExpressionStatement) || !ok || v.Kind != types.ValueString {
			return
		}
		e.prologue[s] = true
	}
}

// loopBound reports whether the body of a loop contains a break or continue
// that targets the loop itself.
func loopBound(t *types.Tree, loop types.NodeID) bool {
	label := ""
	if p := t.Node(t.Node(loop).Parent); p != nil && p.Kind == types.KindLabeledStatement {
		label = p.Label
	}
	return jumpsOut(t, t.Child(loop, types.FieldBody), label, false, false)
}

func jumpsOut(t *types.Tree, id types.NodeID, label string, inLoop, inSwitch bool) bool {
	n := t.Node(id)
	if n == nil || n.Kind.IsFunction() {
		return false
	}
	switch n.Kind {
	case types.KindBreakStatement:
		if n.Label == "" {
			return !inLoop && !inSwitch
		}
		return n.Label == label
	case types.KindContinueStatement:
		if n.Label == "" {
			return !inLoop
		}
		return n.Label == label
	case types.KindWhileStatement, types.KindDoWhileStatement, types.KindForStatement, types.KindForInStatement:
		inLoop = true
	case types.KindSwitchStatement:
		inSwitch = true
	}
	found := false
	t.Each(id, func(c types.NodeID, _ types.Path) {
		if !found {
			found = jumpsOut(t, c, label, inLoop, inSwitch)
		}
	})
	return found
}
