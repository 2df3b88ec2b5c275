// Benchmarks for the parse, optimize and print pipeline.
//
// Run all benchmarks:
//
//	go test -bench=. -benchmem .
package esopt_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sandrolain/esopt"
	"github.com/sandrolain/esopt/pkg/codegen"
	"github.com/sandrolain/esopt/pkg/parser"
)

// program builds a strict mode script with n functions mixing foldable
// constants, dead branches and array constructors.
func program(n int) string {
	var b strings.Builder
	b.WriteString("\"use strict\";\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `function f%d(a, unused) {
  var k = %d * 2, s = "id" + %d;
  if (false) { a = k; }
  var list = new Array(1, 2, k);
  return a ? s : list;
  cleanup();
}
`, i, i, i)
	}
	return b.String()
}

var (
	smallProgram  = program(1)
	mediumProgram = program(20)
	largeProgram  = program(200)
)

func BenchmarkParse(b *testing.B) {
	for _, bm := range []struct {
		name string
		src  string
	}{{"small", smallProgram}, {"medium", mediumProgram}, {"large", largeProgram}} {
		b.Run(bm.name, func(b *testing.B) {
			b.SetBytes(int64(len(bm.src)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := parser.Parse(bm.src); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkGenerate(b *testing.B) {
	tree, err := parser.Parse(mediumProgram)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = codegen.Generate(tree, tree.Root)
	}
}

func BenchmarkOptimize(b *testing.B) {
	ctx := context.Background()
	for _, bm := range []struct {
		name string
		src  string
	}{{"small", smallProgram}, {"medium", mediumProgram}, {"large", largeProgram}} {
		b.Run(bm.name, func(b *testing.B) {
			eng := esopt.New()
			b.SetBytes(int64(len(bm.src)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := eng.OptimizeSource(ctx, bm.src); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkOptimizeCached(b *testing.B) {
	ctx := context.Background()
	eng := esopt.New(esopt.WithCacheSize(8))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eng.OptimizeSource(ctx, mediumProgram); err != nil {
			b.Fatal(err)
		}
	}
}
