// Package scope resolves function-level (var-style) scopes over a types.Tree.
//
// Resolve builds a fresh set of side-tables for the current tree shape:
// one scope per function and per catch clause, rooted at the global scope,
// plus a VariableRecord for every declared name. Plain blocks introduce no
// scope. The tables are keyed by NodeID and are never stored on nodes, so a
// new Resolve is needed whenever the tree has changed shape.
package scope

import (
	"fmt"

	"github.com/sandrolain/esopt/pkg/types"
	"github.com/sandrolain/esopt/pkg/walker"
)

// Kind classifies a scope.
type Kind uint8

// Scope kinds.
const (
	KindGlobal Kind = iota
	KindFunction
	KindCatch
)

func (k Kind) String() string {
	switch k {
	case KindGlobal:
		return "global"
	case KindFunction:
		return "function"
	case KindCatch:
		return "catch"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Scope is one level of name resolution.
type Scope struct {
	ID     int
	Kind   Kind
	Parent *Scope       // enclosing scope, nil for the global scope
	Node   types.NodeID // program, function or catch clause owning the scope
	Vars   map[string]*VariableRecord
}

// VariableRecord tracks what is known about one declared name.
type VariableRecord struct {
	Name string

	// Constant is the literal the name is bound to, or NoNode when the name
	// is not a propagation candidate.
	Constant types.NodeID
	Used     bool

	// Inline is a precomputed literal substituted at call sites.
	Inline types.NodeID

	Refs         int  // reading references seen by the analysis
	Assigned     bool // target of an assignment or update
	Param        bool // function or catch parameter
	Function     bool // bound by a function declaration or named expression
	Declarations int  // number of declaration sites

	Decl      types.NodeID // declarator or function introducing the name
	DeclOrder int          // pre-order index of Decl
	Owner     *Scope       // nil for the untracked record of an unresolved name
}

func newRecord(name string, owner *Scope) *VariableRecord {
	return &VariableRecord{
		Name:     name,
		Constant: types.NoNode,
		Inline:   types.NoNode,
		Decl:     types.NoNode,
		Owner:    owner,
	}
}

// IsConstant reports whether the record is bound to a literal.
func (r *VariableRecord) IsConstant() bool {
	return r.Constant != types.NoNode
}

// Tracked reports whether the record belongs to a declared name. Unresolved
// names (globals, builtins) and this yield untracked records; mutating
// them has no effect on later lookups.
func (r *VariableRecord) Tracked() bool {
	return r.Owner != nil
}

// ClearConstant drops the constant binding. It is never re-set within the
// same round.
func (r *VariableRecord) ClearConstant() {
	r.Constant = types.NoNode
}

// Lookup resolves name from s outwards. Unresolved names yield a fresh,
// untracked record.
func (s *Scope) Lookup(name string) *VariableRecord {
	for sc := s; sc != nil; sc = sc.Parent {
		if v, ok := sc.Vars[name]; ok {
			return v
		}
	}
	return newRecord(name, nil)
}

// Declares reports whether name is declared directly in s.
func (s *Scope) Declares(name string) bool {
	_, ok := s.Vars[name]
	return ok
}

// FunctionScope returns the nearest enclosing scope that is not a catch
// scope, where var declarations are hoisted to.
func (s *Scope) FunctionScope() *Scope {
	sc := s
	for sc.Kind == KindCatch && sc.Parent != nil {
		sc = sc.Parent
	}
	return sc
}

func (s *Scope) String() string {
	return fmt.Sprintf("Scope{id=%d, kind=%s, vars=%d}", s.ID, s.Kind, len(s.Vars))
}

// Scopes holds the scope tree and the side-tables for one tree shape.
type Scopes struct {
	tree   *types.Tree
	Global *Scope

	all      []*Scope
	scopeOf  map[types.NodeID]*Scope
	declared map[types.NodeID]*Scope
	order    map[types.NodeID]int
	inline   map[types.NodeID]types.NodeID
}

// Resolve builds scopes for the whole tree.
func Resolve(t *types.Tree) *Scopes {
	s := &Scopes{
		tree:     t,
		scopeOf:  make(map[types.NodeID]*Scope),
		declared: make(map[types.NodeID]*Scope),
		order:    make(map[types.NodeID]int),
		inline:   make(map[types.NodeID]types.NodeID),
	}
	s.Global = s.newScope(KindGlobal, nil, t.Root)
	if t.Root == types.NoNode {
		return s
	}

	index := 0
	walker.Walk(t, t.Root, func(t *types.Tree, id types.NodeID) walker.Action {
		s.order[id] = index
		index++
		s.enter(id)
		return walker.Keep()
	}, func(t *types.Tree, id types.NodeID) walker.Action {
		if t.Is(id, types.KindVariableDeclarator) {
			s.declare(id)
		}
		return walker.Keep()
	})
	return s
}

func (s *Scopes) newScope(kind Kind, parent *Scope, node types.NodeID) *Scope {
	sc := &Scope{
		ID:     len(s.all),
		Kind:   kind,
		Parent: parent,
		Node:   node,
		Vars:   make(map[string]*VariableRecord),
	}
	s.all = append(s.all, sc)
	return sc
}

// enter assigns the scope a node is evaluated in and opens the scopes that
// functions and catch clauses declare.
func (s *Scopes) enter(id types.NodeID) {
	t := s.tree
	n := t.Node(id)

	cur := s.Global
	if n.Parent != types.NoNode {
		if d, ok := s.declared[n.Parent]; ok {
			cur = d
		} else {
			cur = s.scopeOf[n.Parent]
		}
	}
	s.scopeOf[id] = cur

	switch n.Kind {
	case types.KindCatchClause:
		sc := s.newScope(KindCatch, cur, id)
		if p := t.Node(t.Child(id, types.FieldParam)); p != nil {
			rec := s.bind(sc, p.Name, id)
			rec.Param = true
			rec.Used = true
		}
		s.declared[id] = sc

	case types.KindFunctionDeclaration, types.KindFunctionExpression:
		sc := s.newScope(KindFunction, cur, id)
		for _, p := range t.Children(id, types.FieldParams) {
			if pn := t.Node(p); pn != nil {
				rec := s.bind(sc, pn.Name, id)
				rec.Param = true
				rec.Used = true
			}
		}
		if name := t.Node(t.Child(id, types.FieldID)); name != nil {
			owner := sc
			if n.Kind == types.KindFunctionDeclaration {
				owner = cur.FunctionScope()
			}
			rec := s.bind(owner, name.Name, id)
			rec.Function = true
		}
		s.declared[id] = sc
	}
}

// bind registers one declaration of name in sc. Declaring a name twice
// disqualifies it from constant propagation.
func (s *Scopes) bind(sc *Scope, name string, decl types.NodeID) *VariableRecord {
	rec, ok := sc.Vars[name]
	if !ok {
		rec = newRecord(name, sc)
		rec.Decl = decl
		rec.DeclOrder = s.order[decl]
		sc.Vars[name] = rec
	}
	rec.Declarations++
	if rec.Declarations > 1 {
		rec.ClearConstant()
	}
	return rec
}

// declare seeds the record for a variable declarator. The record lives in
// the nearest function or global scope.
func (s *Scopes) declare(id types.NodeID) {
	t := s.tree
	name := t.Node(t.Child(id, types.FieldID))
	if name == nil || name.Kind != types.KindIdentifier {
		return
	}
	cur := s.scopeOf[id]
	owner := cur.FunctionScope()

	fresh := !owner.Declares(name.Name)
	rec := s.bind(owner, name.Name, id)
	if !fresh || rec.Param || rec.Function {
		return
	}
	// A var inside catch(e){...} that reuses the catch parameter's name
	// initializes the parameter, not the hoisted variable.
	for sc := cur; sc != owner; sc = sc.Parent {
		if sc.Declares(name.Name) {
			return
		}
	}
	if s.isCandidate(id) {
		rec.Constant = t.Child(id, types.FieldInit)
	}
}

// isCandidate reports whether a declarator binds a primitive literal in a
// declaration that is a direct statement of its function or program body.
func (s *Scopes) isCandidate(id types.NodeID) bool {
	t := s.tree
	init := t.Node(t.Child(id, types.FieldInit))
	if init == nil || init.Kind != types.KindLiteral || !init.Value.IsPrimitive() {
		return false
	}
	decl := t.Node(t.Node(id).Parent)
	if decl == nil || decl.Kind != types.KindVariableDeclaration || decl.DeclKind != "var" {
		return false
	}
	switch body := t.Node(decl.Parent); {
	case body == nil:
		return false
	case body.Kind == types.KindProgram:
		return true
	case body.Kind == types.KindBlockStatement:
		return t.Kind(body.Parent).IsFunction() && body.Path.Field == types.FieldBody
	}
	return false
}

// ScopeOf returns the scope id is evaluated in. Nodes created after Resolve
// resolve through their nearest known ancestor.
func (s *Scopes) ScopeOf(id types.NodeID) *Scope {
	for n := s.tree.Node(id); n != nil; n = s.tree.Node(n.Parent) {
		if d, ok := s.declared[n.Parent]; ok {
			return d
		}
		if sc, ok := s.scopeOf[n.ID]; ok {
			return sc
		}
	}
	return s.Global
}

// Declared returns the scope opened by a function or catch clause.
func (s *Scopes) Declared(id types.NodeID) (*Scope, bool) {
	sc, ok := s.declared[id]
	return sc, ok
}

// Order returns the pre-order index of id, or false for nodes created
// after Resolve.
func (s *Scopes) Order(id types.NodeID) (int, bool) {
	i, ok := s.order[id]
	return i, ok
}

// All returns every scope, indexed by scope id.
func (s *Scopes) All() []*Scope {
	return s.all
}

// Len returns the number of scopes, the global scope included.
func (s *Scopes) Len() int {
	return len(s.all)
}

// FindVar resolves the record a reference denotes. Member chains resolve
// through their base object; this yields an untracked record. Any other
// non-identifier base is a structural invariant violation.
func (s *Scopes) FindVar(id types.NodeID) (*VariableRecord, error) {
	t := s.tree
	base := id
	for t.Is(base, types.KindMemberExpression) {
		base = t.Child(base, types.FieldObject)
	}
	n := t.Node(base)
	switch {
	case n == nil:
		return nil, types.NewError(types.ErrStructuralInvariant, "missing node can't be resolved to a variable name", id)
	case n.Kind == types.KindThisExpression:
		return newRecord("this", nil), nil
	case n.Kind != types.KindIdentifier:
		return nil, types.NewError(types.ErrStructuralInvariant,
			fmt.Sprintf("%s can't be resolved to a variable name", n.Kind), base)
	}
	return s.ScopeOf(base).Lookup(n.Name), nil
}

// SetInline attaches a precomputed literal to a function node.
func (s *Scopes) SetInline(fn, literal types.NodeID) {
	s.inline[fn] = literal
}

// Inline returns the literal attached to fn, or NoNode.
func (s *Scopes) Inline(fn types.NodeID) types.NodeID {
	if lit, ok := s.inline[fn]; ok {
		return lit
	}
	return types.NoNode
}
