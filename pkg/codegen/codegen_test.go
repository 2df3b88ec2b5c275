package codegen_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/sandrolain/esopt/pkg/codegen"
	"github.com/sandrolain/esopt/pkg/types"
)

type buildFunc func(t *types.Tree) types.NodeID

func TestGenerateExpressions(t *testing.T) {
	tests := []struct {
		name  string
		build buildFunc
		want  string
	}{
		{
			name: "precedence keeps tighter operand bare",
			build: func(t *types.Tree) types.NodeID {
				return t.Binary("+", t.Ident("a"), t.Binary("*", t.Ident("b"), t.Ident("c")))
			},
			want: "a+b*c",
		},
		{
			name: "precedence wraps looser operand",
			build: func(t *types.Tree) types.NodeID {
				return t.Binary("*", t.Binary("+", t.Ident("a"), t.Ident("b")), t.Ident("c"))
			},
			want: "(a+b)*c",
		},
		{
			name: "left associativity",
			build: func(t *types.Tree) types.NodeID {
				return t.Binary("-", t.Ident("a"), t.Binary("-", t.Ident("b"), t.Ident("c")))
			},
			want: "a-(b-c)",
		},
		{
			name: "exponent is right associative",
			build: func(t *types.Tree) types.NodeID {
				return t.Binary("**", t.Binary("**", t.Ident("a"), t.Ident("b")), t.Ident("c"))
			},
			want: "(a**b)**c",
		},
		{
			name: "unary base of exponent",
			build: func(t *types.Tree) types.NodeID {
				return t.Binary("**", t.Unary("-", t.Ident("a")), t.Num(2))
			},
			want: "(-a)**2",
		},
		{
			name: "negative literal base of exponent",
			build: func(t *types.Tree) types.NodeID {
				return t.Binary("**", t.Num(-1), t.Num(2))
			},
			want: "(-1)**2",
		},
		{
			name: "unary minus does not fuse",
			build: func(t *types.Tree) types.NodeID {
				return t.Unary("-", t.Num(-1))
			},
			want: "- -1",
		},
		{
			name: "plus before prefix increment",
			build: func(t *types.Tree) types.NodeID {
				return t.Binary("+", t.Ident("a"), t.Update("++", true, t.Ident("b")))
			},
			want: "a+ ++b",
		},
		{
			name: "keyword unary",
			build: func(t *types.Tree) types.NodeID {
				return t.Unary("typeof", t.Ident("x"))
			},
			want: "typeof x",
		},
		{
			name: "keyword binary",
			build: func(t *types.Tree) types.NodeID {
				return t.Binary("in", t.Str("k"), t.Ident("o"))
			},
			want: `"k" in o`,
		},
		{
			name: "undefined renders as void 0",
			build: func(t *types.Tree) types.NodeID {
				return t.Member(t.Undefined(), t.Ident("x"), false)
			},
			want: "(void 0).x",
		},
		{
			name: "number literal as member object",
			build: func(t *types.Tree) types.NodeID {
				return t.Call(t.Member(t.Num(1), t.Ident("toString"), false))
			},
			want: "(1).toString()",
		},
		{
			name: "conditional in arguments",
			build: func(t *types.Tree) types.NodeID {
				return t.Call(t.Ident("f"), t.Cond(t.Ident("a"), t.Num(1), t.Num(2)), t.Seq(t.Ident("b"), t.Ident("c")))
			},
			want: "f(a?1:2,(b,c))",
		},
		{
			name: "nested conditional",
			build: func(t *types.Tree) types.NodeID {
				return t.Cond(t.Cond(t.Ident("a"), t.Ident("b"), t.Ident("c")), t.Ident("d"), t.Ident("e"))
			},
			want: "(a?b:c)?d:e",
		},
		{
			name: "assignment chain",
			build: func(t *types.Tree) types.NodeID {
				return t.Assign("=", t.Ident("a"), t.Assign("+=", t.Ident("b"), t.Num(1)))
			},
			want: "a=b+=1",
		},
		{
			name: "array with holes",
			build: func(t *types.Tree) types.NodeID {
				return t.Array(t.Num(1), types.NoNode, t.Num(2), types.NoNode)
			},
			want: "[1,,2,,]",
		},
		{
			name: "object literal",
			build: func(t *types.Tree) types.NodeID {
				return t.Object(
					t.Property(t.Ident("a"), t.Num(1), false),
					t.Property(t.Str("b c"), t.Bool(true), false),
					t.Property(t.Ident("k"), t.Null(), true),
				)
			},
			want: `{a:1,"b c":true,[k]:null}`,
		},
		{
			name: "computed member",
			build: func(t *types.Tree) types.NodeID {
				return t.Member(t.Ident("a"), t.Binary("+", t.Ident("i"), t.Num(1)), true)
			},
			want: "a[i+1]",
		},
		{
			name: "new with call in callee",
			build: func(t *types.Tree) types.NodeID {
				return t.NewExpr(t.Member(t.Call(t.Ident("f")), t.Ident("C"), false))
			},
			want: "new(f().C)()",
		},
		{
			name: "member of new",
			build: func(t *types.Tree) types.NodeID {
				return t.Member(t.NewExpr(t.Ident("Date")), t.Ident("t"), false)
			},
			want: "new Date().t",
		},
		{
			name: "postfix update",
			build: func(t *types.Tree) types.NodeID {
				return t.Update("--", false, t.Member(t.Ident("a"), t.Ident("b"), false))
			},
			want: "a.b--",
		},
		{
			name: "nullish mixed with logical or",
			build: func(t *types.Tree) types.NodeID {
				return t.Logical("??", t.Logical("||", t.Ident("a"), t.Ident("b")), t.Ident("c"))
			},
			want: "(a||b)??c",
		},
		{
			name: "logical precedence",
			build: func(t *types.Tree) types.NodeID {
				return t.Logical("&&", t.Logical("||", t.Ident("a"), t.Ident("b")), t.Ident("c"))
			},
			want: "(a||b)&&c",
		},
		{
			name: "string literal escapes",
			build: func(t *types.Tree) types.NodeID {
				return t.Str("say \"hi\"\n")
			},
			want: `"say \"hi\"\n"`,
		},
		{
			name: "regex literal",
			build: func(t *types.Tree) types.NodeID {
				return t.Call(t.Member(t.Regex("/a+/g"), t.Ident("test"), false), t.Ident("s"))
			},
			want: "/a+/g.test(s)",
		},
		{
			name: "function expression",
			build: func(t *types.Tree) types.NodeID {
				return t.Assign("=", t.Ident("f"), t.FuncExpr("", []string{"a", "b"}, t.Block(t.Return(t.Ident("a")))))
			},
			want: "f=function(a,b){return a;}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := types.NewTree()
			id := tt.build(tree)
			got := codegen.Generate(tree, id)
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateStatements(t *testing.T) {
	tests := []struct {
		name  string
		build buildFunc
		want  string
	}{
		{
			name: "var declarations",
			build: func(t *types.Tree) types.NodeID {
				return t.Program(t.VarDecl("var", t.Declarator("a", t.Num(1)), t.Declarator("b", types.NoNode)))
			},
			want: "var a=1,b;",
		},
		{
			name: "empty declaration in program",
			build: func(t *types.Tree) types.NodeID {
				return t.Program(t.VarDecl("var"), t.ExprStmt(t.Ident("x")))
			},
			want: "x;",
		},
		{
			name: "function declaration",
			build: func(t *types.Tree) types.NodeID {
				return t.Program(t.FuncDecl("f", []string{"x"}, t.Block(t.Return(types.NoNode))))
			},
			want: "function f(x){return;}",
		},
		{
			name: "expression statement starting with function",
			build: func(t *types.Tree) types.NodeID {
				return t.Program(t.ExprStmt(t.Call(t.FuncExpr("", nil, t.Block()))))
			},
			want: "(function(){}());",
		},
		{
			name: "expression statement starting with object",
			build: func(t *types.Tree) types.NodeID {
				return t.Program(t.ExprStmt(t.Member(t.Object(), t.Ident("a"), false)))
			},
			want: "({}.a);",
		},
		{
			name: "if else",
			build: func(t *types.Tree) types.NodeID {
				return t.Program(t.If(t.Ident("a"), t.ExprStmt(t.Call(t.Ident("b"))), t.Block()))
			},
			want: "if(a)b();else{}",
		},
		{
			name: "dangling else",
			build: func(t *types.Tree) types.NodeID {
				inner := t.If(t.Ident("b"), t.ExprStmt(t.Ident("c")), types.NoNode)
				return t.Program(t.If(t.Ident("a"), inner, t.ExprStmt(t.Ident("d"))))
			},
			want: "if(a){if(b)c;}else d;",
		},
		{
			name: "for loop",
			build: func(t *types.Tree) types.NodeID {
				init := t.Var("i", t.Num(0))
				test := t.Binary("<", t.Ident("i"), t.Num(10))
				update := t.Update("++", false, t.Ident("i"))
				return t.Program(t.For(init, test, update, t.Empty()))
			},
			want: "for(var i=0;i<10;i++);",
		},
		{
			name: "for loop with in inside initializer",
			build: func(t *types.Tree) types.NodeID {
				init := t.Var("x", t.Binary("in", t.Str("a"), t.Ident("o")))
				return t.Program(t.For(init, types.NoNode, types.NoNode, t.Block()))
			},
			want: `for(var x=("a" in o);;){}`,
		},
		{
			name: "for in",
			build: func(t *types.Tree) types.NodeID {
				left := t.VarDecl("var", t.Declarator("k", types.NoNode))
				return t.Program(t.ForIn(left, t.Ident("o"), t.Block()))
			},
			want: "for(var k in o){}",
		},
		{
			name: "do while",
			build: func(t *types.Tree) types.NodeID {
				return t.Program(t.DoWhile(t.Block(t.Break("")), t.Bool(false)))
			},
			want: "do{break;}while(false);",
		},
		{
			name: "switch",
			build: func(t *types.Tree) types.NodeID {
				return t.Program(t.Switch(t.Ident("x"),
					t.Case(t.Num(1), t.ExprStmt(t.Ident("a")), t.Break("")),
					t.Case(types.NoNode, t.ExprStmt(t.Ident("b"))),
				))
			},
			want: "switch(x){case 1:a;break;default:b;}",
		},
		{
			name: "try catch finally",
			build: func(t *types.Tree) types.NodeID {
				return t.Program(t.Try(t.Block(), t.Catch("e", t.Block(t.Throw(t.Ident("e")))), t.Block()))
			},
			want: "try{}catch(e){throw e;}finally{}",
		},
		{
			name: "labeled continue",
			build: func(t *types.Tree) types.NodeID {
				return t.Program(t.Labeled("outer", t.While(t.Bool(true), t.Continue("outer"))))
			},
			want: "outer:while(true)continue outer;",
		},
		{
			name: "directive and raw",
			build: func(t *types.Tree) types.NodeID {
				return t.Program(t.UseStrict(), t.RawText("a=1;"), t.Debugger())
			},
			want: `"use strict";a=1;debugger;`,
		},
		{
			name: "with statement",
			build: func(t *types.Tree) types.NodeID {
				return t.Program(t.With(t.Ident("o"), t.ExprStmt(t.Ident("p"))))
			},
			want: "with(o)p;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := types.NewTree()
			id := tt.build(tree)
			got := codegen.Generate(tree, id)
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateUnresolvedKind(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	gen := codegen.New(codegen.WithLogger(logger))

	tree := types.NewTree()
	bogus := tree.New(types.Kind(200))
	tree.Program(tree.ExprStmt(tree.Binary("+", tree.Ident("a"), bogus)))

	out := gen.Generate(tree, tree.Root)
	if out.Code != "a+/*Error*/;" {
		t.Errorf("Code = %q", out.Code)
	}
	if len(out.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(out.Diagnostics))
	}
	if out.Diagnostics[0].Code != types.ErrUnresolvedNodeKind {
		t.Errorf("diagnostic code = %s", out.Diagnostics[0].Code)
	}
	if out.Diagnostics[0].Node != bogus {
		t.Errorf("diagnostic node = %d, want %d", out.Diagnostics[0].Node, bogus)
	}
	if !strings.Contains(buf.String(), "unresolved node kind") {
		t.Errorf("expected a logged warning, got %q", buf.String())
	}
}
