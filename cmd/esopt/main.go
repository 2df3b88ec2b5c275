// Command esopt optimizes strict mode ECMAScript programs.
//
// Usage:
//
//	esopt [flags] [file ...]   optimize files (stdin when none or "-")
//	esopt repl                 interactive session
//	esopt version
//
// Several files are optimized in parallel. Without -w the results are
// written to stdout in argument order.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/sandrolain/esopt"
	"github.com/sandrolain/esopt/pkg/config"
)

const appName = "esopt"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "repl":
			os.Exit(cmdRepl(os.Args[2:]))
		case "version":
			fmt.Println(esopt.Version())
			return
		}
	}
	os.Exit(cmdOptimize(os.Args[1:]))
}

// flags are shared by all subcommands and override ESOPT_* variables.
type flags struct {
	cfg   config.Config
	write bool
	stats bool
	jobs  int
}

func parseFlags(name string, args []string) (*flags, []string, error) {
	f := &flags{cfg: config.FromEnv()}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.IntVar(&f.cfg.MaxRounds, "max-rounds", f.cfg.MaxRounds, "maximum optimization rounds")
	fs.DurationVar(&f.cfg.FoldTimeout, "fold-timeout", f.cfg.FoldTimeout, "time limit per constant evaluation")
	fs.IntVar(&f.cfg.MaxSteps, "max-steps", f.cfg.MaxSteps, "step limit per function evaluation")
	fs.BoolVar(&f.cfg.PruneGlobals, "prune", f.cfg.PruneGlobals, "remove unused top-level declarations")
	fs.BoolVar(&f.cfg.Debug, "debug", f.cfg.Debug, "log every pass")
	fs.IntVar(&f.cfg.CacheSize, "cache", f.cfg.CacheSize, "result cache size (0 disables)")
	fs.BoolVar(&f.write, "w", false, "write results back to the source files")
	fs.BoolVar(&f.stats, "stats", false, "report rounds and edits on stderr")
	fs.IntVar(&f.jobs, "j", runtime.NumCPU(), "files optimized in parallel")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [flags] [file ...]\n       %s repl\n       %s version\n\nflags:\n",
			appName, appName, appName)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if f.cfg.Debug {
		f.cfg.LogLevel = slog.LevelDebug
	}
	if err := f.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

func newEngine(cfg config.Config) *esopt.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	return esopt.New(esopt.WithConfig(cfg), esopt.WithLogger(logger))
}

// -----------------------------------------------------------------------------
// optimize
// -----------------------------------------------------------------------------

type job struct {
	path string // "-" for stdin
	res  *esopt.Result
}

func cmdOptimize(args []string) int {
	f, files, err := parseFlags(appName, args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if len(files) == 0 {
		files = []string{"-"}
	}
	if f.write {
		for _, path := range files {
			if path == "-" {
				fmt.Fprintln(os.Stderr, "-w cannot be used with stdin")
				return 2
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs, err := optimizeAll(ctx, newEngine(f.cfg), files, f.jobs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	for _, j := range jobs {
		if f.stats {
			fmt.Fprintf(os.Stderr, "%s: %d rounds, %d edits\n", j.path, j.res.Rounds, j.res.Changes)
		}
		if f.write {
			if err := os.WriteFile(j.path, []byte(j.res.Code+"\n"), 0o644); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			continue
		}
		fmt.Println(j.res.Code)
	}
	return 0
}

// optimizeAll optimizes every file with at most limit in flight. The first
// failure cancels the rest.
func optimizeAll(ctx context.Context, eng *esopt.Engine, files []string, limit int) ([]job, error) {
	jobs := make([]job, len(files))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			src, err := readSource(path)
			if err != nil {
				return err
			}
			res, err := eng.OptimizeSource(ctx, src)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			jobs[i] = job{path: path, res: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return jobs, nil
}

func readSource(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
