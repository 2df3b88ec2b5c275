package optimizer

import (
	"context"

	"github.com/sandrolain/esopt/pkg/evaluator"
	"github.com/sandrolain/esopt/pkg/scope"
	"github.com/sandrolain/esopt/pkg/types"
	"github.com/sandrolain/esopt/pkg/walker"
)

// round is the state shared by the passes of one pipeline round.
type round struct {
	ctx    context.Context
	o      *Optimizer
	t      *types.Tree
	scopes *scope.Scopes
}

func (r *round) debug(msg string, args ...any) {
	if r.o.opts.Debug {
		r.o.logger.Debug(msg, args...)
	}
}

// render returns the source text of id for log messages.
func (r *round) render(id types.NodeID) string {
	return r.o.gen.Generate(r.t, id).Code
}

// keepGlobal reports whether rec is a top-level name that must survive
// even when nothing in the program reads it.
func (r *round) keepGlobal(rec *scope.VariableRecord) bool {
	return !r.o.opts.PruneGlobals && rec.Owner == r.scopes.Global
}

// isBindingSlot reports whether the identifier id names a binding rather
// than reading one: declarator and function names, parameters, the catch
// parameter, non-computed property keys and non-computed member names.
func isBindingSlot(t *types.Tree, id types.NodeID) bool {
	n := t.Node(id)
	parent := t.Node(n.Parent)
	if parent == nil {
		return false
	}
	switch n.Path.Field {
	case types.FieldID:
		return parent.Kind == types.KindVariableDeclarator || parent.Kind.IsFunction()
	case types.FieldParams:
		return parent.Kind.IsFunction()
	case types.FieldParam:
		return parent.Kind == types.KindCatchClause
	case types.FieldKey:
		return parent.Kind == types.KindProperty && !parent.Computed
	case types.FieldProperty:
		return parent.Kind == types.KindMemberExpression && !parent.Computed
	}
	return false
}

// isWriteTarget reports whether id is written by its parent: the left side
// of an assignment, the operand of an update or the head of a for-in loop.
func isWriteTarget(t *types.Tree, id types.NodeID) bool {
	n := t.Node(id)
	switch t.Kind(n.Parent) {
	case types.KindAssignmentExpression:
		return n.Path.Field == types.FieldLeft
	case types.KindUpdateExpression:
		return true
	case types.KindForInStatement:
		return n.Path.Field == types.FieldLeft
	}
	return false
}

// literalValue returns the value of a literal node.
func literalValue(t *types.Tree, id types.NodeID) (types.Value, bool) {
	n := t.Node(id)
	if n == nil || n.Kind != types.KindLiteral {
		return types.Value{}, false
	}
	return n.Value, true
}

// primitiveLiteral reports whether id is a literal with a modelled
// primitive value.
func primitiveLiteral(t *types.Tree, id types.NodeID) bool {
	v, ok := literalValue(t, id)
	return ok && v.IsPrimitive()
}

// literalTruth returns the truthiness of a literal test. Opaque literals
// (bigint) have no known truthiness.
func literalTruth(t *types.Tree, id types.NodeID) (truth, ok bool) {
	v, ok := literalValue(t, id)
	if !ok {
		return false, false
	}
	switch {
	case v.Kind == types.ValueRegExp:
		return true, true
	case v.IsPrimitive():
		return evaluator.Truthy(v), true
	}
	return false, false
}

// isPure reports whether evaluating id can neither have side effects nor
// throw.
func (r *round) isPure(id types.NodeID) bool {
	t := r.t
	n := t.Node(id)
	if n == nil {
		return true
	}
	switch n.Kind {
	case types.KindLiteral, types.KindThisExpression, types.KindFunctionExpression:
		return true
	case types.KindIdentifier:
		// Reading an undeclared name throws.
		rec, err := r.scopes.FindVar(id)
		return err == nil && rec.Tracked()
	case types.KindArrayExpression:
		return r.allPure(t.Children(id, types.FieldElements))
	case types.KindObjectExpression:
		for _, p := range t.Children(id, types.FieldProperties) {
			if t.Node(p).Computed && !r.isPure(t.Child(p, types.FieldKey)) {
				return false
			}
			if !r.isPure(t.Child(p, types.FieldValue)) {
				return false
			}
		}
		return true
	case types.KindSequenceExpression:
		return r.allPure(t.Children(id, types.FieldExpressions))
	case types.KindUnaryExpression:
		arg := t.Child(id, types.FieldArgument)
		switch n.Operator {
		case "delete":
			return false
		case "typeof":
			return t.Is(arg, types.KindIdentifier) || r.isPure(arg)
		case "!", "void":
			return r.isPure(arg)
		}
		// Numeric conversion may call valueOf.
		return primitiveLiteral(t, arg)
	case types.KindBinaryExpression:
		return primitiveLiteral(t, t.Child(id, types.FieldLeft)) &&
			primitiveLiteral(t, t.Child(id, types.FieldRight)) &&
			n.Operator != "in" && n.Operator != "instanceof"
	case types.KindLogicalExpression:
		return r.isPure(t.Child(id, types.FieldLeft)) && r.isPure(t.Child(id, types.FieldRight))
	case types.KindConditionalExpression:
		return r.isPure(t.Child(id, types.FieldTest)) &&
			r.isPure(t.Child(id, types.FieldConsequent)) &&
			r.isPure(t.Child(id, types.FieldAlternate))
	}
	return false
}

func (r *round) allPure(ids []types.NodeID) bool {
	for _, id := range ids {
		if !r.isPure(id) {
			return false
		}
	}
	return true
}

// removeStatement removes a statement from its position: a sequence
// shrinks, an optional slot is cleared and a required statement slot gets
// an empty statement.
func removeStatement(t *types.Tree, id types.NodeID) walker.Action {
	n := t.Node(id)
	if n.Path.Index >= 0 || n.Parent == types.NoNode {
		return walker.Delete()
	}
	switch n.Path.Field {
	case types.FieldAlternate, types.FieldInit, types.FieldUpdate, types.FieldHandler, types.FieldFinalizer:
		return walker.Delete()
	}
	return walker.Replace(t.Empty())
}

// hoistedNames collects the var-declared names inside id, not descending
// into nested functions.
func hoistedNames(t *types.Tree, id types.NodeID, names []string) []string {
	n := t.Node(id)
	if n == nil || n.Kind.IsFunction() {
		return names
	}
	if n.Kind == types.KindVariableDeclaration && n.DeclKind == "var" {
		for _, d := range t.Children(id, types.FieldDeclarations) {
			if name := t.Node(t.Child(d, types.FieldID)); name != nil {
				names = appendUnique(names, name.Name)
			}
		}
	}
	t.Each(id, func(c types.NodeID, _ types.Path) {
		names = hoistedNames(t, c, names)
	})
	return names
}

func appendUnique(list []string, s string) []string {
	for _, x := range list {
		if x == s {
			return list
		}
	}
	return append(list, s)
}

// usedHoisted filters names declared by var inside a statement about to be
// dropped, keeping those that are still read.
func (r *round) usedHoisted(at types.NodeID, names []string) []string {
	owner := r.scopes.ScopeOf(at).FunctionScope()
	var kept []string
	for _, name := range names {
		rec, ok := owner.Vars[name]
		if ok && (rec.Used || r.keepGlobal(rec)) {
			kept = append(kept, name)
		}
	}
	return kept
}

// bareVar builds "var a, b;" for names.
func bareVar(t *types.Tree, names []string) types.NodeID {
	decls := make([]types.NodeID, len(names))
	for i, name := range names {
		decls[i] = t.Declarator(name, types.NoNode)
	}
	return t.VarDecl("var", decls...)
}

// hoistedRecord returns the record a var declarator initializes, or nil when
// a catch parameter between the declarator and its function scope shadows
// the name.
func (r *round) hoistedRecord(decl types.NodeID, name string) *scope.VariableRecord {
	cur := r.scopes.ScopeOf(decl)
	owner := cur.FunctionScope()
	for sc := cur; sc != owner; sc = sc.Parent {
		if sc.Declares(name) {
			return nil
		}
	}
	return owner.Vars[name]
}

// baseIdentifier returns the identifier at the root of a member chain, or
// NoNode when the chain starts at anything else.
func baseIdentifier(t *types.Tree, id types.NodeID) types.NodeID {
	for t.Is(id, types.KindMemberExpression) {
		id = t.Child(id, types.FieldObject)
	}
	if t.Is(id, types.KindIdentifier) {
		return id
	}
	return types.NoNode
}
