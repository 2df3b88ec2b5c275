//go:build wasip1

// Command esopt-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "source": "<program>", "pruneGlobals": false, "maxRounds": 100 }
//	stdout: { "code": "<optimized>", "rounds": 3 }   on success
//	        { "error": "<message>", "errorCode": "E1001" } on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o esopt.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"source":"\"use strict\";var a=1+2;"}' | wasmtime esopt.wasm
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/sandrolain/esopt"
	"github.com/sandrolain/esopt/pkg/types"
)

type request struct {
	Source       string `json:"source"`
	PruneGlobals bool   `json:"pruneGlobals,omitempty"`
	MaxRounds    int    `json:"maxRounds,omitempty"`
}

type response struct {
	Code      string `json:"code,omitempty"`
	Rounds    int    `json:"rounds,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	opts := []esopt.Option{esopt.WithPruneGlobals(req.PruneGlobals)}
	if req.MaxRounds > 0 {
		opts = append(opts, esopt.WithMaxRounds(req.MaxRounds))
	}

	res, err := esopt.New(opts...).OptimizeSource(context.Background(), req.Source)
	if err != nil {
		resp := response{Error: err.Error()}
		var e *types.Error
		if errors.As(err, &e) {
			resp.ErrorCode = string(e.Code)
		}
		writeResponse(resp, 1)
	}

	writeResponse(response{Code: res.Code, Rounds: res.Rounds}, 0)
}
