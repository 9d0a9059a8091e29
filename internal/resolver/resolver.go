// Package resolver implements the two-pass symbol resolver: Pass A builds
// a stub TypeEntry for every declared type (so every type name is in scope
// before any body is examined), Pass A.2 links each stub's super type,
// interfaces, and member signatures, a realization-check pass confirms
// every class/struct provides a public implementation of each interface
// member it claims to support, and Pass B walks every method/property/
// constructor body, type-checking expressions and statements and
// rewriting the handful of constructs the language defines as sugar
// (foreach, implicit base() injection) into their desugared form in
// place.
package resolver

import (
	"github.com/csc-go/compiler/internal/ast"
	"github.com/csc-go/compiler/internal/diag"
	"github.com/csc-go/compiler/internal/types"
)

// Result is everything downstream (the emitter) needs: the global scope,
// and side tables mapping AST nodes to the symbols/types the resolver
// computed for them. The AST itself is mutated in place for desugarings
// only; every other resolved fact lives in these side tables, since
// internal/ast's declaration and expression structs carry no resolver
// fields of their own.
type Result struct {
	Global      *types.Scope
	TypeOf      map[ast.Expression]types.Type
	TypeSym     map[*ast.TypeDecl]*types.TypeEntry
	EnumSym     map[*ast.EnumDecl]*types.EnumTypeEntry
	MethodSym   map[*ast.MethodDecl]*types.MethodExpEntry
	FieldSym    map[*ast.FieldDecl]*types.FieldExpEntry
	PropSym     map[*ast.PropertyDecl]*types.PropertyExpEntry
	LocalSym    map[*ast.LocalVarDecl][]*types.LocalEntry
	EntryPoint  *types.MethodExpEntry

	// CallSym, CtorSym, CtorChainSym and IndexerSym record which overload Pass
	// B actually picked at each call-like site, so the emitter never has to
	// re-run overload resolution: it only needs to know which concrete
	// MethodExpEntry/PropertyExpEntry a node resolved to. A nil value for a
	// NewObjectExpr/CtorChainStmt key means the implicit parameterless
	// default constructor; an implicit base() chain the resolver injects has
	// no CtorChainSym entry at all.
	CallSym      map[*ast.CallExpr]*types.MethodExpEntry
	CtorSym      map[*ast.NewObjectExpr]*types.MethodExpEntry
	CtorChainSym map[*ast.CtorChainStmt]*types.MethodExpEntry
	IndexerSym   map[*ast.ArrayAccessExpr]*types.PropertyExpEntry
}

func newResult() *Result {
	return &Result{
		TypeOf:       make(map[ast.Expression]types.Type),
		TypeSym:      make(map[*ast.TypeDecl]*types.TypeEntry),
		EnumSym:      make(map[*ast.EnumDecl]*types.EnumTypeEntry),
		MethodSym:    make(map[*ast.MethodDecl]*types.MethodExpEntry),
		FieldSym:     make(map[*ast.FieldDecl]*types.FieldExpEntry),
		PropSym:      make(map[*ast.PropertyDecl]*types.PropertyExpEntry),
		LocalSym:     make(map[*ast.LocalVarDecl][]*types.LocalEntry),
		CallSym:      make(map[*ast.CallExpr]*types.MethodExpEntry),
		CtorSym:      make(map[*ast.NewObjectExpr]*types.MethodExpEntry),
		CtorChainSym: make(map[*ast.CtorChainStmt]*types.MethodExpEntry),
		IndexerSym:   make(map[*ast.ArrayAccessExpr]*types.PropertyExpEntry),
	}
}

// Resolver holds the state threaded across all four passes.
type Resolver struct {
	diags  *diag.Sink
	global *types.Scope
	res    *Result

	// namespaceScopes shares one *types.Scope per namespace name across
	// every NamespaceDecl reopening it, per the scope-sharing invariant.
	namespaceScopes map[string]*types.Scope
	namespaceSyms   map[string]*types.NamespaceEntry

	// pending links every TypeDecl/EnumDecl to the stub Pass A created for
	// it, so Pass A.2/B can find a declaration's symbol without a second
	// full-tree walk keyed by name.
	pendingTypes map[*ast.TypeDecl]*types.TypeEntry
	pendingEnums map[*ast.EnumDecl]*types.EnumTypeEntry

	// ctx is the per-body state (current method, current loop depth,
	// current try depth, local scope) for whichever body Pass B is
	// currently walking.
	ctx *bodyContext
}

// New creates a Resolver reporting to diags.
func New(diags *diag.Sink) *Resolver {
	global := types.NewScope(types.ScopeGlobal, nil)
	installPredefined(global)
	return &Resolver{
		diags:           diags,
		global:          global,
		res:             newResult(),
		namespaceScopes: make(map[string]*types.Scope),
		namespaceSyms:   make(map[string]*types.NamespaceEntry),
		pendingTypes:    make(map[*ast.TypeDecl]*types.TypeEntry),
		pendingEnums:    make(map[*ast.EnumDecl]*types.EnumTypeEntry),
	}
}

// installPredefined installs the System.* primitive aliases and root types
// a program may reference without an explicit declaration.
func installPredefined(global *types.Scope) {
	global.Define("object", types.Object)
	global.Define("System.Object", types.Object)
	global.Define("int", types.Int)
	global.Define("System.Int32", types.Int)
	global.Define("char", types.Char)
	global.Define("System.Char", types.Char)
	global.Define("bool", types.Bool)
	global.Define("System.Boolean", types.Bool)
	global.Define("string", types.String)
	global.Define("System.String", types.String)
	global.Define("void", types.Void)
	global.Define("System.Void", types.Void)
	global.Define("System.Array", types.Array)
	global.Define("System.Enum", types.Enum)
	global.Define("System.Exception", types.Exception)
}

// Run executes all four passes (Pass A, Pass A.2, the interface-realization
// check and Pass B) over prog and returns the accumulated
// Result. Per the pipeline's stage-gating contract, the caller must not
// proceed to emission if diags.HasErrors() afterward.
func (r *Resolver) Run(prog *ast.Program) *Result {
	r.passAStub(prog)
	if r.diags.HasErrors() {
		return r.res
	}
	r.passALink(prog)
	if r.diags.HasErrors() {
		return r.res
	}
	r.passIfaceRealization(prog)
	if r.diags.HasErrors() {
		return r.res
	}
	r.passBBodies(prog)
	return r.res
}
