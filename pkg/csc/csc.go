// Package csc is the embeddable façade over the compiler pipeline: lex,
// parse, resolve, and emit a single source file without touching the CLI.
// cmd/csc is a thin wrapper around this package; callers that want to drive
// the compiler from their own Go program should depend on this package
// instead of reaching into internal/*.
package csc

import (
	"fmt"

	"github.com/csc-go/compiler/internal/backend"
	"github.com/csc-go/compiler/internal/backend/memfactory"
	"github.com/csc-go/compiler/internal/diag"
	"github.com/csc-go/compiler/internal/emitter"
	"github.com/csc-go/compiler/internal/lexer"
	"github.com/csc-go/compiler/internal/parser"
	"github.com/csc-go/compiler/internal/resolver"
)

// Options configures a single Compile call.
type Options struct {
	// FileName labels the source for diagnostics; it need not be a real path.
	FileName string
	// AssemblyName is passed to the backend's BeginOutput.
	AssemblyName string
	// OutputPath is where the backend persists the finished module.
	OutputPath string
	// MainClass explicitly names the class hosting the entry point; if
	// empty, the emitter searches every declared class for a unique static
	// Main method.
	MainClass string
	// Factory is the backend.RuntimeTypeFactory to drive. If nil, Compile
	// creates an in-memory memfactory.Factory and returns it as Result.Factory
	// so callers that only want to inspect the compiled module don't need to
	// supply their own backend.
	Factory backend.RuntimeTypeFactory
}

// Result is everything a caller can observe from a successful Compile.
type Result struct {
	// Factory is the backend.RuntimeTypeFactory the emitter drove: either
	// the one the caller supplied in Options, or the memfactory.Factory
	// Compile created on the caller's behalf.
	Factory backend.RuntimeTypeFactory
	// Resolved is the resolver's full symbol/type Result, for callers that
	// want to inspect resolved types past what the backend records.
	Resolved *resolver.Result
}

// Compile runs the whole pipeline over src and reports every diagnostic on
// diags. The pipeline is stage-gated: parsing stops at parse errors,
// resolving stops at resolve errors, and Compile never calls the emitter
// over a Result that came from a failed resolve. Callers must check
// diags.HasErrors() before trusting Result; a non-nil Result with errors
// recorded reflects whatever stage got furthest before stopping.
func Compile(src string, opts Options, diags *diag.Sink) (*Result, error) {
	if opts.FileName == "" {
		return nil, fmt.Errorf("csc: FileName must be set")
	}

	l := lexer.New(opts.FileName, src, diags)
	p := parser.New(l, diags)
	prog := p.Parse()
	if diags.HasErrors() {
		return nil, nil
	}

	res := resolver.New(diags).Run(prog)
	if diags.HasErrors() {
		return &Result{Resolved: res}, nil
	}

	factory := opts.Factory
	if factory == nil {
		factory = memfactory.New()
	}
	e := emitter.New(diags, factory)
	e.Emit(prog, res, emitter.Options{
		AssemblyName: opts.AssemblyName,
		OutputPath:   opts.OutputPath,
		MainClass:    opts.MainClass,
	})
	if diags.HasErrors() {
		return &Result{Factory: factory, Resolved: res}, nil
	}

	return &Result{Factory: factory, Resolved: res}, nil
}
