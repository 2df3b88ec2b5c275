package walker_test

import (
	"reflect"
	"testing"

	"github.com/sandrolain/esopt/pkg/codegen"
	"github.com/sandrolain/esopt/pkg/types"
	"github.com/sandrolain/esopt/pkg/walker"
)

func verify(t *testing.T, tree *types.Tree) {
	t.Helper()
	if err := tree.Verify(); err != nil {
		t.Fatalf("Verify() = %v", err)
	}
}

func TestWalkOrder(t *testing.T) {
	tree := types.NewTree()
	tree.Program(tree.ExprStmt(tree.Binary("+", tree.Ident("a"), tree.Ident("b"))))

	var pre, post []string
	name := func(t *types.Tree, id types.NodeID) string {
		if n := t.Node(id); n.Kind == types.KindIdentifier {
			return n.Name
		}
		return t.Kind(id).String()
	}
	_, changed := walker.Walk(tree, tree.Root,
		func(t *types.Tree, id types.NodeID) walker.Action {
			pre = append(pre, name(t, id))
			return walker.Keep()
		},
		func(t *types.Tree, id types.NodeID) walker.Action {
			post = append(post, name(t, id))
			return walker.Keep()
		})

	if changed {
		t.Error("Walk() reported a change for Keep-only visitors")
	}
	wantPre := []string{"Program", "ExpressionStatement", "BinaryExpression", "a", "b"}
	wantPost := []string{"a", "b", "BinaryExpression", "ExpressionStatement", "Program"}
	if !reflect.DeepEqual(pre, wantPre) {
		t.Errorf("pre order = %v, want %v", pre, wantPre)
	}
	if !reflect.DeepEqual(post, wantPost) {
		t.Errorf("post order = %v, want %v", post, wantPost)
	}
}

func TestWalkDeleteVisitsShiftedSibling(t *testing.T) {
	tree := types.NewTree()
	tree.Program(tree.Empty(), tree.Empty(), tree.ExprStmt(tree.Ident("x")), tree.Empty())

	visited := 0
	_, changed := walker.Walk(tree, tree.Root, nil, func(t *types.Tree, id types.NodeID) walker.Action {
		if t.Is(id, types.KindEmptyStatement) {
			visited++
			return walker.Delete()
		}
		return walker.Keep()
	})

	if !changed {
		t.Error("Walk() did not report a change")
	}
	if visited != 3 {
		t.Errorf("visited %d empty statements, want 3", visited)
	}
	if got := codegen.Generate(tree, tree.Root); got != "x;" {
		t.Errorf("output = %q", got)
	}
	verify(t, tree)
}

func TestWalkReplaceRetraces(t *testing.T) {
	tree := types.NewTree()
	sum := tree.Binary("+", tree.Num(1), tree.Num(2))
	tree.Program(tree.ExprStmt(tree.Call(tree.Ident("f"), sum)))

	_, changed := walker.Walk(tree, tree.Root, nil, func(t *types.Tree, id types.NodeID) walker.Action {
		if id == sum {
			return walker.Replace(t.Num(3))
		}
		return walker.Keep()
	})

	if !changed {
		t.Error("Walk() did not report a change")
	}
	if got := codegen.Generate(tree, tree.Root); got != "f(3);" {
		t.Errorf("output = %q", got)
	}
	verify(t, tree)
}

func TestWalkReplaceWithOwnChild(t *testing.T) {
	// { { a; } } -> { a; } by hoisting the inner block's statement.
	tree := types.NewTree()
	stmt := tree.ExprStmt(tree.Ident("a"))
	inner := tree.Block(stmt)
	tree.Program(tree.Block(inner))

	walker.Walk(tree, tree.Root, nil, func(t *types.Tree, id types.NodeID) walker.Action {
		if id == inner {
			return walker.Replace(stmt)
		}
		return walker.Keep()
	})

	if got := codegen.Generate(tree, tree.Root); got != "{a;}" {
		t.Errorf("output = %q", got)
	}
	if d := tree.Node(stmt).Depth; d != 2 {
		t.Errorf("hoisted depth = %d, want 2", d)
	}
	verify(t, tree)
}

func TestWalkReplaceRoot(t *testing.T) {
	tree := types.NewTree()
	tree.Program(tree.ExprStmt(tree.Ident("a")))

	root, changed := walker.Walk(tree, tree.Root, func(t *types.Tree, id types.NodeID) walker.Action {
		if t.Is(id, types.KindProgram) {
			prog := t.New(types.KindProgram)
			t.SetChildren(prog, types.FieldBody, []types.NodeID{t.Debugger()})
			return walker.Replace(prog)
		}
		return walker.Keep()
	}, nil)

	if !changed || root != tree.Root {
		t.Fatalf("Walk() = %d, %v; tree root %d", root, changed, tree.Root)
	}
	if got := codegen.Generate(tree, tree.Root); got != "debugger;" {
		t.Errorf("output = %q", got)
	}
	verify(t, tree)
}

func TestWalkDeleteScalar(t *testing.T) {
	tree := types.NewTree()
	tree.Program(tree.Return(tree.Ident("a")))

	walker.Walk(tree, tree.Root, nil, func(t *types.Tree, id types.NodeID) walker.Action {
		if t.Is(id, types.KindIdentifier) {
			return walker.Delete()
		}
		return walker.Keep()
	})

	if got := codegen.Generate(tree, tree.Root); got != "return;" {
		t.Errorf("output = %q", got)
	}
	verify(t, tree)
}

func TestWalkSplice(t *testing.T) {
	tree := types.NewTree()
	call := tree.Call(tree.Ident("g"))
	tree.Program(tree.ExprStmt(tree.Binary("*", call, tree.Num(2))))

	walker.Walk(tree, tree.Root, nil, func(t *types.Tree, id types.NodeID) walker.Action {
		if id == call {
			return walker.Splice("h()")
		}
		return walker.Keep()
	})

	if got := codegen.Generate(tree, tree.Root); got != "h()*2;" {
		t.Errorf("output = %q", got)
	}
	verify(t, tree)
}

func TestWalkSubtree(t *testing.T) {
	tree := types.NewTree()
	left := tree.ExprStmt(tree.Ident("a"))
	right := tree.ExprStmt(tree.Ident("b"))
	tree.Program(left, right)

	var seen []string
	walker.Walk(tree, right, func(t *types.Tree, id types.NodeID) walker.Action {
		if n := t.Node(id); n.Kind == types.KindIdentifier {
			seen = append(seen, n.Name)
		}
		return walker.Keep()
	}, nil)

	if !reflect.DeepEqual(seen, []string{"b"}) {
		t.Errorf("seen = %v, want [b]", seen)
	}
}
