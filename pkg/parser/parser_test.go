package parser_test

import (
	"strings"
	"testing"

	"github.com/sandrolain/esopt/pkg/codegen"
	"github.com/sandrolain/esopt/pkg/parser"
	"github.com/sandrolain/esopt/pkg/types"
)

func roundTrip(t *testing.T, src string) string {
	t.Helper()
	tree, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	if err := tree.Verify(); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	return codegen.Generate(tree, tree.Root)
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"precedence", "a + b * c", "a+b*c;"},
		{"grouping", "(a + b) * c", "(a+b)*c;"},
		{"exponent", "2 ** 3 ** 2", "2**3**2;"},
		{"logical", "a && b || c", "a&&b||c;"},
		{"conditional", "a ? b : c ? d : e", "a?b:c?d:e;"},
		{"assignment chain", "a = b += 1", "a=b+=1;"},
		{"logical assignment", "a ??= b", "a??=b;"},
		{"sequence", "a, b, c", "a,b,c;"},
		{"unary", "!a, ~b, typeof c, delete o.p", "!a,~b,typeof c,delete o.p;"},
		{"update", "++a, b--", "++a,b--;"},
		{"member and call", "a.b[c](d, e).f", "a.b[c](d,e).f;"},
		{"keyword property", "a.default.in", "a.default.in;"},
		{"new without arguments", "new Foo", "new Foo();"},
		{"new member", "new a.B(1).c", "new a.B(1).c;"},
		{"array holes", "[1,,2,,]", "[1,,2,,];"},
		{"trailing comma", "[1, 2,]", "[1,2];"},
		{"object", `({a: 1, "b c": true, [k]: null, 1: 2})`, `({a:1,"b c":true,[k]:null,1:2});`},
		{"shorthand property", "({a})", "({a:a});"},
		{"grouped negative base", "(-1) ** 2", "(-1)**2;"},
		{"grouped unary base", "(-a) ** 2", "(-a)**2;"},
		{"function expression", "f = function g(a, b) { return a; }", "f=function g(a,b){return a;};"},
		{"iife", "(function () {})()", "(function(){}());"},
		{"regex", "r = /a+/g.test(s)", "r=/a+/g.test(s);"},
		{"regex after keyword", "x = typeof /a/", "x=typeof/a/;"},
		{"division", "a / b / c", "a/b/c;"},
		{"in", `"k" in o`, `"k" in o;`},
		{"instanceof", "a instanceof B", "a instanceof B;"},
		{"this", "this.x", "this.x;"},
		{"literals", "null, true, false", "null,true,false;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := roundTrip(t, tt.input); got != tt.want {
				t.Errorf("round trip = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"integer", "42", "42;"},
		{"fraction", ".5", "0.5;"},
		{"exponent", "1e3", "1000;"},
		{"hex", "0xff", "255;"},
		{"octal", "0o17", "15;"},
		{"binary", "0b101", "5;"},
		{"separators", "1_000_000", "1000000;"},
		{"negative", "-5", "-5;"},
		{"negative zero", "-0", "-0;"},
		{"overflow", "1e400", "1e400;"},
		{"negative overflow", "-1e400", "-1e400;"},
		{"void literal", "void 0", "void 0;"},
		{"void string", `void "x"`, "void 0;"},
		{"void call", "void f()", "void f();"},
		{"bigint", "10n", "10n;"},
		{"single quotes", `'it\'s'`, `"it's";`},
		{"escapes", `"\x41B\u{43}\t"`, `"ABC\t";`},
		{"null escape", `"\0"`, `"\u0000";`},
		{"identity escape", `"\q"`, `"q";`},
		{"line continuation", "\"a\\\nb\"", `"ab";`},
		{"astral pair", `"😀"`, "\"\U0001F600\";"},
		{"lone surrogate", `"\uD800"`, `"\uD800";`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A leading statement ends the directive prologue.
			if got := roundTrip(t, "0;"+tt.input); got != "0;"+tt.want {
				t.Errorf("round trip = %q, want %q", got, "0;"+tt.want)
			}
		})
	}
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"directive", `"use strict"; var a = 1;`, `"use strict";var a=1;`},
		{"single quoted directive", `'use strict'`, `'use strict';`},
		{"prologue ends", `a; "use strict";`, `a;"use strict";`},
		{"function directive", `function f() { "use strict"; return 1 }`, `function f(){"use strict";return 1;}`},
		{"declarations", "var a = 1, b; let c; const d = 2;", "var a=1,b;let c;const d=2;"},
		{"asi newline", "a = 1\nb = 2", "a=1;b=2;"},
		{"asi brace", "function f() { return 1 }", "function f(){return 1;}"},
		{"restricted return", "function f() { return\n1 }", "function f(){return;1;}"},
		{"restricted postfix", "a\n++b", "a;++b;"},
		{"block and empty", "{ a; ; }", "{a;;}"},
		{"if else", "if (a) b(); else { c() }", "if(a)b();else{c();}"},
		{"while", "while (a) a--", "while(a)a--;"},
		{"do while", "do x(); while (a) y()", "do x();while(a);y();"},
		{"for", "for (var i = 0; i < n; i++) {}", "for(var i=0;i<n;i++){}"},
		{"empty for", "for (;;) break", "for(;;){break;}"},
		{"for in declaration", "for (var k in o) {}", "for(var k in o){}"},
		{"for in target", "for (o.k in p);", "for(o.k in p){}"},
		{"for init with in", `for (var x = ("a" in o);;) {}`, `for(var x=("a" in o);;){}`},
		{"switch", "switch (x) { case 1: a; break; default: b }", "switch(x){case 1:a;break;default:b;}"},
		{"try", "try {} catch (e) { throw e } finally {}", "try{}catch(e){throw e;}finally{}"},
		{"try finally", "try { a() } finally { b() }", "try{a();}finally{b();}"},
		{"labels", "outer: while (true) continue outer", "outer:while(true)continue outer;"},
		{"break newline", "a: for (;;) { break\na }", "a:for(;;){break;a;}"},
		{"with", "with (o) p", "with(o)p;"},
		{"debugger", "debugger", "debugger;"},
		{"comments", "a /* b */ + // c\n d", "a+d;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := roundTrip(t, tt.input); got != tt.want {
				t.Errorf("round trip = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTree(t *testing.T) {
	tree, err := parser.Parse(`"use strict"; function f(a) { var x = [1]; }`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	body := tree.Children(tree.Root, types.FieldBody)
	if len(body) != 2 {
		t.Fatalf("program has %d statements, want 2", len(body))
	}
	if !tree.Is(body[0], types.KindDirective) {
		t.Errorf("first statement = %s, want Directive", tree.Kind(body[0]))
	}

	fn := tree.Node(body[1])
	if fn.Kind != types.KindFunctionDeclaration {
		t.Fatalf("second statement = %s, want FunctionDeclaration", fn.Kind)
	}
	if fn.Parent != tree.Root || fn.Depth != 1 {
		t.Errorf("function parent = %d depth = %d", fn.Parent, fn.Depth)
	}
	params := tree.Children(body[1], types.FieldParams)
	if len(params) != 1 || tree.Node(params[0]).Name != "a" {
		t.Errorf("params = %v", params)
	}

	lone, err := parser.Parse(`x = "\uDC00"`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	assign := lone.Child(lone.Children(lone.Root, types.FieldBody)[0], types.FieldExpression)
	if v := lone.Node(lone.Child(assign, types.FieldRight)).Value; v.Kind != types.ValueOpaque {
		t.Errorf("lone surrogate literal kind = %d, want opaque", v.Kind)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing name", "var = 1;"},
		{"missing semicolon", "a b"},
		{"unclosed call", "f("},
		{"unclosed block", "{ a;"},
		{"assignment target", "1 = 2"},
		{"update target", "f()++"},
		{"eval assignment", "eval = 1"},
		{"delete identifier", "delete x"},
		{"top-level return", "return 1;"},
		{"legacy octal", "010"},
		{"octal escape", `"\07"`},
		{"bad hex escape", `"\xZZ"`},
		{"reserved identifier", "var if = 1;"},
		{"strict reserved identifier", "var let = 1;"},
		{"const without initializer", "const a;"},
		{"try without handler", "try {}"},
		{"duplicate default", "switch (a) { default: default: }"},
		{"throw newline", "throw\nx"},
		{"for in initializer", "for (var a = 1 in o);"},
		{"class", "class A {}"},
		{"arrow", "x => x"},
		{"template", "`x`"},
		{"spread", "f(...a)"},
		{"optional chaining", "a?.b"},
		{"destructuring", "var [a] = b;"},
		{"shorthand initializer", "({a = 1})"},
		{"method", "({a() {}})"},
		{"generator", "function* g() {}"},
		{"default parameter", "function f(a = 1) {}"},
		{"for of", "for (var a of b);"},
		{"catch without binding", "try {} catch {}"},
		{"labeled function", "l: function f() {}"},
		{"negative literal base", "x = -1 ** 2;"},
		{"negated base", "-a ** 2"},
		{"typeof base", "typeof a ** 2"},
		{"async function", "async function f() {}"},
		{"accessor", "({get a() { return 1; }})"},
		{"module syntax", "export var a = 1;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.input)
			}
			if !types.IsCode(err, types.ErrParse) {
				t.Errorf("error = %v, want %s", err, types.ErrParse)
			}
		})
	}
}

func TestParseMaxDepth(t *testing.T) {
	src := "((((((((((((1))))))))))))"

	if _, err := parser.Parse(src); err != nil {
		t.Fatalf("Parse() with default depth error = %v", err)
	}

	_, err := parser.Parse(src, parser.WithMaxDepth(10))
	if !types.IsCode(err, types.ErrParse) {
		t.Errorf("Parse() with depth 10 error = %v, want %s", err, types.ErrParse)
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := parser.Parse("var a = 1;\nvar = 2;")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "line 2, column 5") {
		t.Errorf("error = %v, want position line 2, column 5", err)
	}
}

func TestIsIncomplete(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"function f() {", true},
		{"var a = ", true},
		{"f(1,", true},
		{"a b", false},
		{"var = 1", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parser.Parse(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := parser.IsIncomplete(err); got != tt.want {
				t.Errorf("IsIncomplete(%v) = %v, want %v", err, got, tt.want)
			}
		})
	}
}
