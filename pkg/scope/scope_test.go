package scope_test

import (
	"reflect"
	"sort"
	"testing"

	"github.com/sandrolain/esopt/pkg/scope"
	"github.com/sandrolain/esopt/pkg/types"
)

// program builds:
//
//	var g = 1;
//	function f(a) {
//	  var x = 2, y = a;
//	  if (a) { var z = 3; }
//	  try {} catch (e) { var e = 4; var w = 5; }
//	  return function h() { return x; };
//	}
func program(t *testing.T) (*types.Tree, map[string]types.NodeID) {
	t.Helper()
	tree := types.NewTree()
	ids := map[string]types.NodeID{}

	ids["g"] = tree.Declarator("g", tree.Num(1))
	ids["x"] = tree.Declarator("x", tree.Num(2))
	ids["a-ref"] = tree.Ident("a")
	ids["y"] = tree.Declarator("y", ids["a-ref"])
	ids["z"] = tree.Declarator("z", tree.Num(3))
	ids["e-var"] = tree.Declarator("e", tree.Num(4))
	ids["w"] = tree.Declarator("w", tree.Num(5))
	ids["x-ref"] = tree.Ident("x")
	ids["h"] = tree.FuncExpr("h", nil, tree.Block(tree.Return(ids["x-ref"])))
	ids["catch"] = tree.Catch("e", tree.Block(tree.VarDecl("var", ids["e-var"]), tree.VarDecl("var", ids["w"])))
	ids["f"] = tree.FuncDecl("f", []string{"a"}, tree.Block(
		tree.VarDecl("var", ids["x"], ids["y"]),
		tree.If(tree.Ident("a"), tree.Block(tree.VarDecl("var", ids["z"])), types.NoNode),
		tree.Try(tree.Block(), ids["catch"], types.NoNode),
		tree.Return(ids["h"]),
	))
	tree.Program(tree.UseStrict(), tree.VarDecl("var", ids["g"]), ids["f"])
	return tree, ids
}

func names(sc *scope.Scope) []string {
	var out []string
	for name := range sc.Vars {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func TestResolveScopes(t *testing.T) {
	tree, ids := program(t)
	s := scope.Resolve(tree)

	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4 (global, f, catch, h)", s.Len())
	}
	if got, want := names(s.Global), []string{"f", "g"}; !reflect.DeepEqual(got, want) {
		t.Errorf("global vars = %v, want %v", got, want)
	}

	fs, ok := s.Declared(ids["f"])
	if !ok {
		t.Fatal("f declares no scope")
	}
	if got, want := names(fs), []string{"a", "e", "w", "x", "y", "z"}; !reflect.DeepEqual(got, want) {
		t.Errorf("f vars = %v, want %v", got, want)
	}
	if fs.Parent != s.Global || fs.Kind != scope.KindFunction {
		t.Errorf("f scope = %s, parent %v", fs, fs.Parent)
	}

	cs, _ := s.Declared(ids["catch"])
	if got, want := names(cs), []string{"e"}; !reflect.DeepEqual(got, want) {
		t.Errorf("catch vars = %v, want %v", got, want)
	}
	if cs.FunctionScope() != fs {
		t.Error("catch scope should hoist into f")
	}

	hs, _ := s.Declared(ids["h"])
	if got, want := names(hs), []string{"h"}; !reflect.DeepEqual(got, want) {
		t.Errorf("named function expression vars = %v, want %v", got, want)
	}
}

func TestResolveConstants(t *testing.T) {
	tree, ids := program(t)
	s := scope.Resolve(tree)
	fs, _ := s.Declared(ids["f"])

	tests := []struct {
		name     string
		rec      *scope.VariableRecord
		constant bool
		param    bool
		used     bool
	}{
		{"global literal", s.Global.Vars["g"], true, false, false},
		{"body literal", fs.Vars["x"], true, false, false},
		{"non-literal init", fs.Vars["y"], false, false, false},
		{"nested block", fs.Vars["z"], false, false, false},
		{"var shadowing catch parameter", fs.Vars["e"], false, false, false},
		{"catch block", fs.Vars["w"], false, false, false},
		{"parameter", fs.Vars["a"], false, true, true},
		{"function name", s.Global.Vars["f"], false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.rec == nil {
				t.Fatal("record missing")
			}
			if tt.rec.IsConstant() != tt.constant {
				t.Errorf("IsConstant() = %v, want %v", tt.rec.IsConstant(), tt.constant)
			}
			if tt.rec.Param != tt.param {
				t.Errorf("Param = %v, want %v", tt.rec.Param, tt.param)
			}
			if tt.rec.Used != tt.used {
				t.Errorf("Used = %v, want %v", tt.rec.Used, tt.used)
			}
			if !tt.rec.Tracked() {
				t.Error("declared name should be tracked")
			}
		})
	}

	if got := tree.Node(fs.Vars["x"].Constant).Value; !got.Equal(types.NumberValue(2)) {
		t.Errorf("x constant = %v, want 2", got)
	}
	if !s.Global.Vars["f"].Function {
		t.Error("f should be marked as a function binding")
	}
}

func TestResolveRedeclaration(t *testing.T) {
	tree := types.NewTree()
	f := tree.FuncDecl("f", []string{"p"}, tree.Block(
		tree.Var("p", tree.Num(1)),
		tree.Var("q", tree.Num(1)),
		tree.Var("q", tree.Num(2)),
	))
	tree.Program(tree.UseStrict(), f)

	s := scope.Resolve(tree)
	fs, _ := s.Declared(f)
	if rec := fs.Vars["p"]; rec.IsConstant() {
		t.Error("redeclared parameter must not be constant")
	}
	rec := fs.Vars["q"]
	if rec.IsConstant() {
		t.Error("name declared twice must not be constant")
	}
	if rec.Declarations != 2 {
		t.Errorf("Declarations = %d, want 2", rec.Declarations)
	}
}

func TestFindVar(t *testing.T) {
	tree, ids := program(t)
	s := scope.Resolve(tree)
	fs, _ := s.Declared(ids["f"])

	rec, err := s.FindVar(ids["x-ref"])
	if err != nil {
		t.Fatalf("FindVar(x) error = %v", err)
	}
	if rec != fs.Vars["x"] {
		t.Error("x in h should resolve to f's x")
	}

	rec, err = s.FindVar(ids["a-ref"])
	if err != nil || rec != fs.Vars["a"] {
		t.Errorf("FindVar(a) = %v, %v", rec, err)
	}
}

func TestFindVarMemberChains(t *testing.T) {
	tree := types.NewTree()
	obj := tree.Member(tree.Member(tree.Ident("o"), tree.Ident("p"), false), tree.Ident("q"), false)
	this := tree.Member(tree.This(), tree.Ident("p"), false)
	call := tree.Member(tree.Call(tree.Ident("f")), tree.Ident("p"), false)
	free := tree.Ident("undeclared")
	tree.Program(tree.UseStrict(), tree.Var("o", tree.Object()),
		tree.ExprStmt(obj), tree.ExprStmt(this), tree.ExprStmt(call), tree.ExprStmt(free))
	s := scope.Resolve(tree)

	rec, err := s.FindVar(obj)
	if err != nil || rec != s.Global.Vars["o"] {
		t.Errorf("FindVar(o.p.q) = %v, %v", rec, err)
	}

	rec, err = s.FindVar(this)
	if err != nil || rec.Tracked() {
		t.Errorf("FindVar(this.p) = %v, %v; want untracked record", rec, err)
	}

	rec, err = s.FindVar(free)
	if err != nil || rec.Tracked() || rec.Name != "undeclared" {
		t.Errorf("FindVar(undeclared) = %v, %v; want untracked record", rec, err)
	}
	rec.Used = true
	if again, _ := s.FindVar(free); again.Used {
		t.Error("untracked records must not retain state")
	}

	_, err = s.FindVar(call)
	if !types.IsCode(err, types.ErrStructuralInvariant) {
		t.Errorf("FindVar(f().p) error = %v, want %s", err, types.ErrStructuralInvariant)
	}
}

func TestScopeOfSynthesizedNode(t *testing.T) {
	tree, ids := program(t)
	s := scope.Resolve(tree)
	fs, _ := s.Declared(ids["f"])

	// A node created after Resolve resolves through its ancestors.
	fresh := tree.Ident("x")
	tree.Replace(ids["a-ref"], fresh)
	if got := s.ScopeOf(fresh); got != fs {
		t.Errorf("ScopeOf(fresh) = %s, want %s", got, fs)
	}
	if _, ok := s.Order(fresh); ok {
		t.Error("synthesized node should have no pre-order index")
	}
	if i, ok := s.Order(ids["x-ref"]); !ok || i <= fs.Vars["x"].DeclOrder {
		t.Errorf("Order(x-ref) = %d, %v; want after declaration", i, ok)
	}
}

func TestInlineTable(t *testing.T) {
	tree, ids := program(t)
	s := scope.Resolve(tree)
	if got := s.Inline(ids["h"]); got != types.NoNode {
		t.Errorf("Inline() = %d before SetInline", got)
	}
	lit := tree.Num(7)
	s.SetInline(ids["h"], lit)
	if got := s.Inline(ids["h"]); got != lit {
		t.Errorf("Inline() = %d, want %d", got, lit)
	}
}
