// Package diag implements the compiler's diagnostic sink: every stage
// reports problems as a Diagnostic carrying a closed Code, an optional
// source range, and a message, instead of returning bare Go errors. No
// diagnostic aborts the pipeline stage it belongs to; the driver gates
// later stages on Sink.HasErrors once a stage completes.
package diag

import (
	"fmt"
	"strings"

	"github.com/csc-go/compiler/pkg/token"
)

// Code is the closed set of diagnostic kinds the compiler can emit. Tests
// rely on this being a fixed, exhaustive contract: see spec §7.
type Code string

const (
	// Lexical errors.
	LexUnmatchedEndRegion    Code = "unmatched-endregion"
	LexMissingEndIf          Code = "missing-endif"
	LexUnterminatedComment   Code = "unterminated-comment"
	LexPreprocNotAtLineStart Code = "preproc-must-start-line"
	LexInvalidDirective      Code = "invalid-preproc-directive"
	LexUnterminatedChar      Code = "unterminated-char"
	LexNewlineInString       Code = "newline-in-string"
	LexUnexpectedEOF         Code = "unexpected-eof"
	LexUnrecognizedEscape    Code = "unrecognized-escape"

	// Parse errors.
	ParseSyntaxError       Code = "syntax-error"
	ParseDuplicateModifier Code = "duplicate-modifier"

	// Resolve errors.
	ResolveUndefinedSymbol      Code = "undefined-symbol"
	ResolveSymbolAlreadyDefined Code = "symbol-already-defined"
	ResolveTypeMismatch         Code = "type-mismatch"
	ResolveIllegalImportAsm     Code = "illegal-import-assembly"
	ResolveMissingAsmReference  Code = "missing-asm-reference"
	ResolveShadowCatchHandlers  Code = "shadow-catch-handlers"
	ResolveLabelAlreadyDefined  Code = "label-already-defined"
	ResolveBadSymbolType        Code = "bad-symbol-type"
	ResolveMustBeInsideLoop     Code = "must-be-inside-loop"
	ResolveOnlySingleInherit    Code = "only-single-inheritance"
	ResolveNoReturnTypeExpected Code = "no-return-type-expected"
	ResolveAmbiguousMethod      Code = "ambiguous-method"
	ResolveMethodNotDefined     Code = "method-not-defined"
	ResolveNoAcceptableOverload Code = "no-acceptable-overload"
	ResolveCircularReference    Code = "circular-reference"
	ResolveNoParamsOnStaticCtor Code = "no-params-on-static-ctor"
	ResolveNotValidLHS          Code = "not-valid-lhs"
	ResolveNotYetImplemented    Code = "not-yet-implemented"
	ResolveNoFieldInitForStruct Code = "no-field-init-for-structs"
	ResolveNoAcceptableOperator Code = "no-acceptable-operator"
	ResolveAsOpOnlyOnRefTypes   Code = "as-op-only-on-ref-types"
	ResolveBadTypeIfExp         Code = "bad-type-if-exp"
	ResolveMissingIfaceMethod   Code = "missing-interface-method"
	ResolveIMethodMustBePublic  Code = "imethod-must-be-public"
	ResolveSymbolNotInNamespace Code = "symbol-not-in-namespace"
	ResolveSymbolNotInType      Code = "symbol-not-in-type"
	ResolveClassMustBeAbstract  Code = "class-must-be-abstract"
	ResolveNoMethodToOverride   Code = "no-method-to-override"
	ResolveCantOverrideFinal    Code = "cant-override-final"
	ResolveCantOverrideNonVirt  Code = "cant-override-non-virtual"
	ResolveVisibilityMismatch   Code = "visibility-mismatch"
	ResolveMustDeriveFromIface  Code = "must-derive-from-interface"
	ResolveNoEventOnRHS         Code = "no-event-on-rhs"
	ResolveMustBeConstExpr      Code = "must-be-compile-time-constant"
	ResolveArrayBoundsMismatch  Code = "new-array-bounds-mismatch"
	ResolveNoAcceptableIndexer  Code = "no-acceptable-indexer"
	ResolveBaseAccessCantStatic Code = "base-access-cant-be-static"

	// Emit errors.
	EmitDuplicateMain      Code = "duplicate-main"
	EmitNoMain             Code = "no-main"
	EmitIOError            Code = "io-error"
	EmitEntryClassNotFound Code = "entry-class-not-found"

	// Internal: any unexpected condition, caught at the driver boundary.
	Internal Code = "internal-compiler-error"
)

// Diagnostic is a single compiler-reported problem.
type Diagnostic struct {
	Code    Code
	Range   token.Range // zero value if the diagnostic has no source location
	Message string
}

func (d Diagnostic) String() string {
	if d.Range.Start.Line == 0 {
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Range.Start, d.Code, d.Message)
}

// Sink accumulates diagnostics produced across the pipeline. Every stage
// shares a single Sink; nothing downstream mutates diagnostics already
// recorded.
type Sink struct {
	diags []Diagnostic
}

// NewSink returns an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{}
}

// Add records a diagnostic.
func (s *Sink) Add(code Code, rng token.Range, format string, args ...any) {
	s.diags = append(s.diags, Diagnostic{Code: code, Range: rng, Message: fmt.Sprintf(format, args...)})
}

// Diagnostics returns every diagnostic recorded so far, in emission order.
func (s *Sink) Diagnostics() []Diagnostic {
	return s.diags
}

// HasErrors reports whether any diagnostic has been recorded. The compiler
// has only one severity: every Diagnostic is an error; there are no warnings
// in this language's diagnostic model.
func (s *Sink) HasErrors() bool {
	return len(s.diags) > 0
}

// Filter returns the diagnostics whose Code is in codes.
func (s *Sink) Filter(codes ...Code) []Diagnostic {
	want := make(map[Code]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	var out []Diagnostic
	for _, d := range s.diags {
		if want[d.Code] {
			out = append(out, d)
		}
	}
	return out
}

// Format renders all diagnostics, one per line.
func (s *Sink) Format() string {
	var sb strings.Builder
	for _, d := range s.diags {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
