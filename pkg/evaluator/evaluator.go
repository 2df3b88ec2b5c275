package evaluator

// Package evaluator computes the values of literal-only ECMAScript code.
//
// It stands in for an embedded interpreter: the optimizer hands it either a
// single operator applied to literal operands, or the body of a
// zero-parameter function, and gets back a primitive value. Anything that
// could observe or cause side effects (calls, member access, free
// variables, this, throw) makes the evaluation fail with ErrFoldAbandoned.
//
// Every evaluation is bounded by a wall-clock timeout and a step budget.
// Exceeding either fails with ErrFoldTimeout; callers treat both errors as
// a local failure and keep the original code.
//
// # Example
//
//	ev := evaluator.New(evaluator.WithTimeout(50 * time.Millisecond))
//	v, err := ev.EvalFunction(ctx, tree, fn)
//	if err != nil {
//	    // keep the call
//	}

import (
	"context"
	"log/slog"
	"time"

	"github.com/sandrolain/esopt/pkg/types"
)

// Evaluator evaluates literal-only code.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Timeout bounds the wall-clock time of one evaluation.
	Timeout time.Duration
	// MaxSteps bounds the number of statements and expressions evaluated by
	// one function evaluation. Loops that do not terminate within the budget
	// fail with ErrFoldTimeout.
	MaxSteps int
	// MaxStringLength bounds strings produced during evaluation.
	MaxStringLength int
	// Debug enables debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
}

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Timeout:         100 * time.Millisecond,
		MaxSteps:        100000,
		MaxStringLength: 1 << 20,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	return &Evaluator{
		opts:   options,
		logger: options.Logger,
	}
}

// Options returns the effective options.
func (e *Evaluator) Options() EvalOptions {
	return e.opts
}

// Fold evaluates the expression rooted at id. Operands must be literals or
// nested foldable expressions; identifiers are not resolved.
func (e *Evaluator) Fold(ctx context.Context, t *types.Tree, id types.NodeID) (types.Value, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	in := e.newInterp(ctx, t)
	v, err := in.expr(id)
	if err != nil {
		e.debug("fold failed", "node", int(id), "error", err)
		return types.Value{}, err
	}
	return v, nil
}

// EvalFunction evaluates the body of a zero-parameter function and returns
// the value a call would produce. The body may declare and update local
// variables, branch and loop; it may not touch anything outside itself.
func (e *Evaluator) EvalFunction(ctx context.Context, t *types.Tree, fn types.NodeID) (types.Value, error) {
	if !t.Kind(fn).IsFunction() {
		return types.Value{}, types.NewError(types.ErrFoldAbandoned, "not a function", fn)
	}
	if len(t.Children(fn, types.FieldParams)) > 0 {
		return types.Value{}, types.NewError(types.ErrFoldAbandoned, "function takes parameters", fn)
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	in := e.newInterp(ctx, t)
	body := t.Child(fn, types.FieldBody)
	if err := in.hoist(body); err != nil {
		e.debug("function evaluation failed", "node", int(fn), "error", err)
		return types.Value{}, err
	}
	c, err := in.stmt(body)
	if err != nil {
		e.debug("function evaluation failed", "node", int(fn), "error", err)
		return types.Value{}, err
	}
	if c.kind == completionReturn {
		return c.value, nil
	}
	if c.kind != completionNormal {
		return types.Value{}, types.NewError(types.ErrFoldAbandoned, "break or continue outside a loop", fn)
	}
	return types.UndefinedValue, nil
}

func (e *Evaluator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.Timeout > 0 {
		return context.WithTimeout(ctx, e.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

func (e *Evaluator) debug(msg string, args ...any) {
	if e.opts.Debug {
		e.logger.Debug(msg, args...)
	}
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithTimeout sets the evaluation timeout.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(opts *EvalOptions) {
		opts.Timeout = timeout
	}
}

// WithMaxSteps sets the step budget of one evaluation.
func WithMaxSteps(steps int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxSteps = steps
	}
}

// WithMaxStringLength sets the longest string an evaluation may produce.
func WithMaxStringLength(n int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxStringLength = n
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}
