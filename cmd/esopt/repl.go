package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/sandrolain/esopt"
	"github.com/sandrolain/esopt/pkg/parser"
)

const (
	historyFile = ".esopt_history"
	promptMain  = "esopt> "
	promptCont  = "...    "
	useStrict   = `"use strict";`
)

var helpText = `
REPL commands:
  :help    Show this help
  :stats   Show cache statistics
  :quit    Exit the REPL

Each entry is optimized as a program of its own. The "use strict"
directive is added when the entry does not start with it.
`

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func cmdRepl(args []string) int {
	f, _, err := parseFlags(appName+" repl", args)
	if err != nil {
		return 2
	}
	if f.cfg.CacheSize == 0 {
		f.cfg.CacheSize = 256
	}
	eng := newEngine(f.cfg)

	fmt.Printf("esopt %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.\n", esopt.Version())

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if hf, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(hf)
		_ = hf.Close()
	}
	defer func() {
		if hf, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(hf)
			_ = hf.Close()
		}
	}()

	for {
		code, ok := readEntry(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}

		if strings.HasPrefix(code, ":") {
			switch strings.ToLower(code) {
			case ":quit", ":q":
				return 0
			case ":help":
				fmt.Print(helpText)
			case ":stats":
				s := eng.CacheStats()
				fmt.Printf("cache: %d entries, %d hits, %d misses\n", s.Len, s.Hits, s.Misses)
			default:
				fmt.Println("unknown command. Type :help for commands.")
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		res, err := eng.OptimizeSource(context.Background(), withStrict(code))
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		fmt.Println(blue(res.Code))
	}
}

// withStrict prepends the strict directive unless code already has one.
func withStrict(code string) string {
	if strings.HasPrefix(code, `"use strict"`) || strings.HasPrefix(code, `'use strict'`) {
		return code
	}
	return useStrict + code
}

// readEntry reads lines until they form a complete program or a syntax
// error that more input cannot fix.
func readEntry(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, perr := parser.Parse(withStrict(src)); perr != nil && parser.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
