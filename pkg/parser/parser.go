// Package parser turns ECMAScript source into a types.Tree.
//
// Source text is parsed by tdewolff's js.Parse and its AST is converted
// into the arena representation. The conversion accepts the strict mode
// subset of the language the optimizer understands. Constructs outside it
// (classes, arrow functions, templates, destructuring, spread, modules,
// accessors) are reported as parse errors rather than passed through, as
// are the strict mode early errors js.Parse leaves to its callers.
//
// # Normalization
//
// Negated number literals and void applied to a literal become single
// literal nodes, and numbers and strings are stored with their canonical
// spelling, so printing a parsed tree yields the form the optimizer
// produces.
//
// # Example
//
//	tree, err := parser.Parse(`"use strict"; var a = 1 + 2;`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(codegen.Generate(tree, tree.Root))
package parser

import (
	"errors"
	"io"

	"github.com/sandrolain/esopt/pkg/types"
)

// Parse parses a program and returns its tree.
//
// If parsing fails, it returns an ErrParse error. Syntax errors carry the
// line and column of the offending token.
//
// Example:
//
//	tree, err := parser.Parse("var x = 1;")
//	if err != nil {
//	    fmt.Println(err)
//	    return
//	}
func Parse(src string, opts ...Option) (*types.Tree, error) {
	p := NewParser(src, opts...)
	return p.Parse()
}

// Option configures parsing behavior.
type Option func(*Options)

// Options holds parser configuration.
type Options struct {
	// MaxDepth limits statement and expression nesting to prevent stack
	// overflow.
	MaxDepth int
}

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(depth int) Option {
	return func(opts *Options) {
		opts.MaxDepth = depth
	}
}

// IsIncomplete reports whether err was caused by input ending in the middle
// of a statement, so that more input could complete it.
func IsIncomplete(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF)
}
