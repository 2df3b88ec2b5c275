// Package config loads esopt settings from defaults and ESOPT_* environment
// variables.
//
// # Example
//
//	cfg := config.FromEnv()
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	opt := optimizer.New(cfg.OptimizerOptions(nil)...)
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xyproto/env/v2"

	"github.com/sandrolain/esopt/pkg/optimizer"
	"github.com/sandrolain/esopt/pkg/parser"
	"github.com/sandrolain/esopt/pkg/types"
)

// Environment variables read by FromEnv.
const (
	EnvMaxRounds     = "ESOPT_MAX_ROUNDS"
	EnvFoldTimeoutMS = "ESOPT_FOLD_TIMEOUT_MS"
	EnvMaxSteps      = "ESOPT_MAX_STEPS"
	EnvMaxDepth      = "ESOPT_MAX_DEPTH"
	EnvPruneGlobals  = "ESOPT_PRUNE_GLOBALS"
	EnvDebug         = "ESOPT_DEBUG"
	EnvCacheSize     = "ESOPT_CACHE_SIZE"
	EnvLogLevel      = "ESOPT_LOG_LEVEL"
)

// Config holds every tunable of the optimizer front-ends.
type Config struct {
	MaxRounds    int
	FoldTimeout  time.Duration
	MaxSteps     int
	MaxDepth     int // parser nesting limit
	PruneGlobals bool
	Debug        bool
	CacheSize    int // 0 disables the result cache
	LogLevel     slog.Level
}

// Default returns the built-in configuration.
func Default() Config {
	opts := optimizer.DefaultOptions()
	return Config{
		MaxRounds:   opts.MaxRounds,
		FoldTimeout: opts.FoldTimeout,
		MaxSteps:    opts.MaxSteps,
		MaxDepth:    500,
		LogLevel:    slog.LevelInfo,
	}
}

// FromEnv returns Default overridden by the ESOPT_* variables that are set.
// Malformed numbers fall back to the default.
func FromEnv() Config {
	c := Default()
	c.MaxRounds = env.Int(EnvMaxRounds, c.MaxRounds)
	c.FoldTimeout = time.Duration(env.Int(EnvFoldTimeoutMS, int(c.FoldTimeout/time.Millisecond))) * time.Millisecond
	c.MaxSteps = env.Int(EnvMaxSteps, c.MaxSteps)
	c.MaxDepth = env.Int(EnvMaxDepth, c.MaxDepth)
	c.CacheSize = env.Int(EnvCacheSize, c.CacheSize)
	if env.Has(EnvPruneGlobals) {
		c.PruneGlobals = env.Bool(EnvPruneGlobals)
	}
	if env.Has(EnvDebug) {
		c.Debug = env.Bool(EnvDebug)
	}
	if env.Has(EnvLogLevel) {
		var level slog.Level
		if err := level.UnmarshalText([]byte(env.Str(EnvLogLevel))); err == nil {
			c.LogLevel = level
		}
	}
	if c.Debug && c.LogLevel > slog.LevelDebug {
		c.LogLevel = slog.LevelDebug
	}
	return c
}

// Validate reports the first setting out of range as an ErrUsage error.
func (c Config) Validate() error {
	switch {
	case c.MaxRounds <= 0:
		return usage("max rounds must be positive, got %d", c.MaxRounds)
	case c.FoldTimeout <= 0:
		return usage("fold timeout must be positive, got %s", c.FoldTimeout)
	case c.MaxSteps <= 0:
		return usage("max steps must be positive, got %d", c.MaxSteps)
	case c.MaxDepth <= 0:
		return usage("max depth must be positive, got %d", c.MaxDepth)
	case c.CacheSize < 0:
		return usage("cache size must not be negative, got %d", c.CacheSize)
	}
	return nil
}

func usage(format string, args ...any) error {
	return types.NewError(types.ErrUsage, fmt.Sprintf(format, args...), types.NoNode)
}

// OptimizerOptions converts c into optimizer options. logger may be nil.
func (c Config) OptimizerOptions(logger *slog.Logger) []optimizer.Option {
	opts := []optimizer.Option{
		optimizer.WithMaxRounds(c.MaxRounds),
		optimizer.WithFoldTimeout(c.FoldTimeout),
		optimizer.WithMaxSteps(c.MaxSteps),
		optimizer.WithPruneGlobals(c.PruneGlobals),
		optimizer.WithDebug(c.Debug),
	}
	if logger != nil {
		opts = append(opts, optimizer.WithLogger(logger))
	}
	return opts
}

// ParserOptions converts c into parser options.
func (c Config) ParserOptions() []parser.Option {
	return []parser.Option{parser.WithMaxDepth(c.MaxDepth)}
}
