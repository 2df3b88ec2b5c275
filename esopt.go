// Package esopt is a source-to-source optimizer for strict mode ECMAScript.
//
// A program is parsed into a tree, rewritten by structural passes until a
// fixpoint is reached and printed back as compact source text:
//   - Constant propagation and literal folding
//   - Dead code elimination of unreachable statements, constant branches and
//     unused declarations
//   - Block flattening
//   - Inlining of precomputed zero-parameter functions
//   - Array constructor normalization
//
// Only programs starting with the "use strict" directive are accepted.
//
// # Quick Start
//
//	// One-shot optimization
//	code, err := esopt.Optimize(ctx, `"use strict"; var a = 1 + 2;`)
//
//	// Reusable engine with a result cache
//	eng := esopt.New(esopt.WithCacheSize(512))
//	res, err := eng.OptimizeSource(ctx, src)
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/sandrolain/esopt/pkg/parser
//   - Optimizer: github.com/sandrolain/esopt/pkg/optimizer
//   - Code generator: github.com/sandrolain/esopt/pkg/codegen
//   - Types: github.com/sandrolain/esopt/pkg/types
package esopt

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sandrolain/esopt/pkg/cache"
	"github.com/sandrolain/esopt/pkg/config"
	"github.com/sandrolain/esopt/pkg/optimizer"
	"github.com/sandrolain/esopt/pkg/parser"
	"github.com/sandrolain/esopt/pkg/types"
)

// Version returns the current version of esopt.
func Version() string {
	return "v0.1.0-dev"
}

// Options configures an Engine.
type Options struct {
	Config config.Config
	Logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Options)

// WithConfig replaces the whole configuration.
func WithConfig(cfg config.Config) Option {
	return func(opts *Options) {
		opts.Config = cfg
	}
}

// WithCacheSize enables the result cache with room for n programs.
// Zero disables caching.
func WithCacheSize(n int) Option {
	return func(opts *Options) {
		opts.Config.CacheSize = n
	}
}

// WithMaxRounds sets the optimizer round limit.
func WithMaxRounds(n int) Option {
	return func(opts *Options) {
		opts.Config.MaxRounds = n
	}
}

// WithPruneGlobals enables removal of unused top-level declarations.
func WithPruneGlobals(enabled bool) Option {
	return func(opts *Options) {
		opts.Config.PruneGlobals = enabled
	}
}

// WithDebug enables debug logging of every pass.
func WithDebug(enabled bool) Option {
	return func(opts *Options) {
		opts.Config.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// Result is the outcome of optimizing one source text.
type Result struct {
	Code    string
	Rounds  int
	Changes int  // edits over all passes and rounds
	Cached  bool // served from the result cache
}

// Engine parses and optimizes programs with a fixed configuration.
// It is safe for concurrent use; every call works on its own tree.
type Engine struct {
	cfg         config.Config
	logger      *slog.Logger
	opt         *optimizer.Optimizer
	cache       *cache.Cache
	fingerprint string
}

// New creates an Engine. Without options it uses config.Default().
func New(opts ...Option) *Engine {
	options := Options{Config: config.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	cfg := options.Config
	e := &Engine{
		cfg:    cfg,
		logger: options.Logger,
		opt:    optimizer.New(cfg.OptimizerOptions(options.Logger)...),
		// Settings that change the output; Debug only adds logging.
		fingerprint: fmt.Sprintf("rounds=%d timeout=%s steps=%d depth=%d prune=%t",
			cfg.MaxRounds, cfg.FoldTimeout, cfg.MaxSteps, cfg.MaxDepth, cfg.PruneGlobals),
	}
	if cfg.CacheSize > 0 {
		e.cache = cache.New(cfg.CacheSize)
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// OptimizeSource parses and optimizes src.
func (e *Engine) OptimizeSource(ctx context.Context, src string) (*Result, error) {
	run := func() (cache.Result, error) {
		tree, err := parser.Parse(src, e.cfg.ParserOptions()...)
		if err != nil {
			return cache.Result{}, err
		}
		res, err := e.OptimizeTree(ctx, tree)
		if err != nil {
			return cache.Result{}, err
		}
		changes := 0
		for _, n := range res.Changes {
			changes += n
		}
		return cache.Result{Code: res.Code, Rounds: res.Rounds, Changes: changes}, nil
	}

	var res cache.Result
	var err error
	ran := false
	if e.cache == nil {
		res, err = run()
	} else {
		res, err = e.cache.GetOrOptimize(cache.Key(src, e.fingerprint), func() (cache.Result, error) {
			ran = true
			return run()
		})
	}
	if err != nil {
		return nil, err
	}
	return &Result{Code: res.Code, Rounds: res.Rounds, Changes: res.Changes, Cached: e.cache != nil && !ran}, nil
}

// OptimizeTree optimizes an already built tree in place.
func (e *Engine) OptimizeTree(ctx context.Context, tree *types.Tree) (*optimizer.Result, error) {
	res, err := e.opt.Optimize(ctx, tree)
	if err != nil {
		return nil, err
	}
	for _, d := range res.Diagnostics {
		e.logger.Warn("unrendered node", "code", d.Code, "node", d.Node, "message", d.Message)
	}
	return res, nil
}

// CacheStats returns the result cache counters. The zero value is returned
// when caching is disabled.
func (e *Engine) CacheStats() cache.Stats {
	if e.cache == nil {
		return cache.Stats{}
	}
	return e.cache.Stats()
}

// Optimize is a convenience function that parses, optimizes and prints src
// in a single call.
//
// Example:
//
//	code, err := esopt.Optimize(ctx, `"use strict"; var a = [1, 2][0];`)
func Optimize(ctx context.Context, src string, opts ...Option) (string, error) {
	res, err := New(opts...).OptimizeSource(ctx, src)
	if err != nil {
		return "", err
	}
	return res.Code, nil
}

// OptimizeTree optimizes tree in place with a fresh engine.
func OptimizeTree(ctx context.Context, tree *types.Tree, opts ...Option) (*optimizer.Result, error) {
	return New(opts...).OptimizeTree(ctx, tree)
}

// MustOptimize is like Optimize but panics on error. It simplifies
// initialization of embedded scripts.
func MustOptimize(src string) string {
	code, err := Optimize(context.Background(), src)
	if err != nil {
		panic(fmt.Sprintf("esopt: Optimize: %v", err))
	}
	return code
}
