// Package optimizer runs structural optimization passes over a types.Tree
// until a fixpoint is reached.
//
// Every round resolves scopes afresh and then runs, in order:
//
//   - analysis: constant and usage tracking, trailing parameter trimming and
//     eager evaluation of zero-parameter functions
//   - fold: constant propagation and literal folding
//   - arrays: new Array(...) normalization
//   - deadcode: unreachable code, constant branches and unused declarations
//   - flatten: nested block splicing
//   - inline: substitution of precomputed function results at call sites
//
// The loop stops after the first round in which no pass changed the tree.
//
// # Example
//
//	opt := optimizer.New(optimizer.WithFoldTimeout(50 * time.Millisecond))
//	res, err := opt.Optimize(ctx, tree)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Code)
package optimizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sandrolain/esopt/pkg/codegen"
	"github.com/sandrolain/esopt/pkg/evaluator"
	"github.com/sandrolain/esopt/pkg/scope"
	"github.com/sandrolain/esopt/pkg/types"
)

// Optimizer optimizes program trees.
type Optimizer struct {
	opts   Options
	logger *slog.Logger
	eval   *evaluator.Evaluator
	gen    *codegen.Generator
}

// Options configures optimizer behavior.
type Options struct {
	// MaxRounds bounds the number of pass rounds. Reaching it without a
	// fixpoint fails with ErrRoundLimit.
	MaxRounds int
	// FoldTimeout bounds each literal fold and function evaluation.
	FoldTimeout time.Duration
	// MaxSteps bounds the work of each function evaluation.
	MaxSteps int
	// PruneGlobals lets dead-code elimination remove unused top-level
	// declarations. By default they are kept, since other scripts may use
	// them.
	PruneGlobals bool
	// Debug enables per-pass debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
}

// Option configures an Optimizer.
type Option func(*Options)

// DefaultOptions returns the options New starts from.
func DefaultOptions() Options {
	return Options{
		MaxRounds:   100,
		FoldTimeout: 100 * time.Millisecond,
		MaxSteps:    100000,
	}
}

// New creates a new Optimizer with default options.
func New(opts ...Option) *Optimizer {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.MaxRounds <= 0 {
		options.MaxRounds = DefaultOptions().MaxRounds
	}

	return &Optimizer{
		opts:   options,
		logger: options.Logger,
		eval: evaluator.New(
			evaluator.WithTimeout(options.FoldTimeout),
			evaluator.WithMaxSteps(options.MaxSteps),
			evaluator.WithDebug(options.Debug),
			evaluator.WithLogger(options.Logger),
		),
		gen: codegen.New(codegen.WithLogger(options.Logger)),
	}
}

// Options returns the effective options.
func (o *Optimizer) Options() Options {
	return o.opts
}

// Result is the outcome of one Optimize call.
type Result struct {
	// Code is the optimized program rendered as source text.
	Code string
	// Tree is the optimized tree.
	Tree *types.Tree
	// Rounds is the number of pass rounds run, the final unchanged round
	// included.
	Rounds int
	// Changes counts edits per pass over all rounds.
	Changes map[string]int
	// Diagnostics lists nodes the generator could not render.
	Diagnostics []*types.Error
}

// passFunc runs one pass over the tree and returns the number of edits.
type passFunc func(r *round) (int, error)

var passes = []struct {
	name string
	run  passFunc
}{
	{"analysis", runAnalysis},
	{"fold", runFold},
	{"arrays", runArrays},
	{"deadcode", runDeadCode},
	{"flatten", runFlatten},
	{"inline", runInline},
}

// Optimize rewrites t in place until no pass changes it and renders the
// result. The program must start with the "use strict" directive.
func (o *Optimizer) Optimize(ctx context.Context, t *types.Tree) (*Result, error) {
	if err := checkStrict(t); err != nil {
		return nil, err
	}
	if err := t.Verify(); err != nil {
		return nil, err
	}

	res := &Result{
		Tree:    t,
		Changes: make(map[string]int, len(passes)),
	}

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n > o.opts.MaxRounds {
			return nil, types.NewError(types.ErrRoundLimit,
				fmt.Sprintf("no fixpoint after %d rounds", o.opts.MaxRounds), types.NoNode)
		}

		r := &round{
			ctx:    ctx,
			o:      o,
			t:      t,
			scopes: scope.Resolve(t),
		}
		total := 0
		for _, p := range passes {
			changed, err := p.run(r)
			if err != nil {
				return nil, fmt.Errorf("%s pass: %w", p.name, err)
			}
			if err := t.Verify(); err != nil {
				return nil, fmt.Errorf("%s pass: %w", p.name, err)
			}
			res.Changes[p.name] += changed
			total += changed
			if o.opts.Debug && changed > 0 {
				o.logger.Debug("pass changed tree", "round", n, "pass", p.name, "changes", changed)
			}
		}
		res.Rounds = n
		if total == 0 {
			break
		}
	}

	out := o.gen.Generate(t, t.Root)
	res.Code = out.Code
	res.Diagnostics = out.Diagnostics
	return res, nil
}

// checkStrict reports a usage error unless the program opens with the
// "use strict" directive.
func checkStrict(t *types.Tree) error {
	if !t.Is(t.Root, types.KindProgram) {
		return types.NewError(types.ErrUsage, "can only optimize a program", t.Root)
	}
	body := t.Children(t.Root, types.FieldBody)
	if len(body) == 0 || !isUseStrict(t, body[0]) {
		return types.NewError(types.ErrUsage,
			`can only optimize valid strict mode script starting with "use strict"`, t.Root)
	}
	return nil
}

func isUseStrict(t *types.Tree, id types.NodeID) bool {
	n := t.Node(id)
	switch n.Kind {
	case types.KindDirective:
		return n.Raw == `"use strict"` || n.Raw == `'use strict'`
	case types.KindExpressionStatement:
		lit := t.Node(t.Child(id, types.FieldExpression))
		return lit != nil && lit.Kind == types.KindLiteral &&
			lit.Value.Kind == types.ValueString && lit.Value.Str == "use strict"
	}
	return false
}

// WithMaxRounds sets the round limit.
func WithMaxRounds(n int) Option {
	return func(opts *Options) {
		opts.MaxRounds = n
	}
}

// WithFoldTimeout sets the per-evaluation timeout.
func WithFoldTimeout(d time.Duration) Option {
	return func(opts *Options) {
		opts.FoldTimeout = d
	}
}

// WithMaxSteps sets the per-evaluation step budget.
func WithMaxSteps(n int) Option {
	return func(opts *Options) {
		opts.MaxSteps = n
	}
}

// WithPruneGlobals enables removal of unused top-level declarations.
func WithPruneGlobals(enabled bool) Option {
	return func(opts *Options) {
		opts.PruneGlobals = enabled
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) Option {
	return func(opts *Options) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}
