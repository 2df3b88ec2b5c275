package optimizer_test

import (
	"context"
	"testing"
	"time"

	"github.com/sandrolain/esopt/pkg/optimizer"
	"github.com/sandrolain/esopt/pkg/parser"
)

// FuzzOptimize checks that optimizing parsed programs never panics and
// never leaves a tree that fails verification.
func FuzzOptimize(f *testing.F) {
	seeds := []string{
		`"use strict"; var a = 1 + 2; function f() { return a; }`,
		`"use strict"; function f(x, y) { if (0) { var z; } return x; var w = 1; }`,
		`"use strict"; var v = (function () { return "a" + 1; })();`,
		`"use strict"; function g() { do { h(); } while (false); l: { break l; } }`,
		`"use strict"; var a = [new Array(2), new Array(1, 2)];`,
		`"use strict"; function e() { eval("x"); var x = 1; return arguments; }`,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	opt := optimizer.New(optimizer.WithFoldTimeout(20*time.Millisecond), optimizer.WithMaxSteps(1000))
	f.Fuzz(func(t *testing.T, input string) {
		tree, err := parser.Parse(input)
		if err != nil {
			return
		}
		res, err := opt.Optimize(context.Background(), tree)
		if err != nil {
			return
		}
		if err := res.Tree.Verify(); err != nil {
			t.Fatalf("Verify() after optimizing %q error = %v", input, err)
		}
	})
}
