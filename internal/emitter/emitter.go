// Package emitter implements the bytecode emitter: phase 1 opens an output
// module on a backend.RuntimeTypeFactory, phases 2-3 materialize every
// declared type and member, phase 4 generates a method body's instruction
// tape from its resolved AST, and phase 5 locates the Main entry point and
// persists the module. The emitter never re-runs overload resolution or
// type-checking; it only translates the resolver's already-computed facts
// (internal/resolver.Result) into backend calls.
package emitter

import (
	"strings"

	"github.com/csc-go/compiler/internal/ast"
	"github.com/csc-go/compiler/internal/backend"
	"github.com/csc-go/compiler/internal/diag"
	"github.com/csc-go/compiler/internal/resolver"
	"github.com/csc-go/compiler/internal/types"
	"github.com/csc-go/compiler/pkg/token"
)

// Options configures one emission run.
type Options struct {
	// AssemblyName is passed to BeginOutput; typically the output file's
	// base name without extension.
	AssemblyName string
	// OutputPath is the file EndOutput persists the module to.
	OutputPath string
	// MainClass, if non-empty, names the class /main selected explicitly;
	// otherwise Main is found by searching every declared class for a
	// unique static method named "Main".
	MainClass string
}

// Emitter drives a backend.RuntimeTypeFactory from a resolved program.
type Emitter struct {
	diags   *diag.Sink
	factory backend.RuntimeTypeFactory
	res     *resolver.Result

	typeFullNames map[*types.TypeEntry]string
	enumFullNames map[*types.EnumTypeEntry]string
	creating      map[*types.TypeEntry]bool

	fieldHandles       map[*types.FieldExpEntry]any
	enumLiteralHandles map[*types.LiteralFieldEntry]any

	// typeByName/enumByName index every declared type by its bare (last
	// path component) name, for the handful of places downstream of the
	// resolver that only have an ast.TypeExpr to work from and no
	// recorded types.Type: catch clause exception types, and cast/is/
	// as/typeof operand types. This is a best-effort stand-in for the
	// resolver's full using-directive-aware name lookup (rebuilding that
	// here would duplicate pass_link.go's resolveTypeExpr), so a
	// duplicate bare name across namespaces resolves to whichever
	// declaration was collected last.
	typeByName map[string]*types.TypeEntry
	enumByName map[string]*types.EnumTypeEntry

	pending []pendingBody

	mainCandidates []mainCandidate
}

type mainCandidate struct {
	className string
	handle    any
}

// externalTypeRef is the opaque value the emitter hands the factory for a
// type it never declares itself: a primitive's boxed runtime counterpart,
// System.Object/Array/Enum/Exception, or anything pulled in from a
// referenced assembly (§4.4's lazily-populated import stubs carry their own
// RuntimeHandle once resolved, so those flow through typeRef unchanged; this
// path only covers the handful of well-known roots the resolver installs
// without ever routing them through type import).
type externalTypeRef struct {
	FullName string
}

// arrayTypeRef is the opaque "array of T, rank N" TypeRef the emitter
// builds for array-typed parameters, fields, locals, and Ldelem/Newarr
// operands.
type arrayTypeRef struct {
	Element any
	Rank    int
}

// New creates an Emitter that reports internal failures to diags and drives
// factory.
func New(diags *diag.Sink, factory backend.RuntimeTypeFactory) *Emitter {
	return &Emitter{
		diags:         diags,
		factory:       factory,
		typeFullNames:      make(map[*types.TypeEntry]string),
		enumFullNames:      make(map[*types.EnumTypeEntry]string),
		creating:           make(map[*types.TypeEntry]bool),
		fieldHandles:       make(map[*types.FieldExpEntry]any),
		enumLiteralHandles: make(map[*types.LiteralFieldEntry]any),
		typeByName:         make(map[string]*types.TypeEntry),
		enumByName:         make(map[string]*types.EnumTypeEntry),
	}
}

// Emit runs all five phases over prog using res, the Result from a
// resolver run that reported no errors. The caller must not call Emit if
// res came from a Run whose diags.HasErrors() was true.
func (e *Emitter) Emit(prog *ast.Program, res *resolver.Result, opts Options) {
	e.res = res

	// Phase 1.
	e.factory.BeginOutput(opts.AssemblyName)

	// Phases 2-3: materialize every type, then every member. Full names are
	// precomputed in one pass so a type's super/interfaces can be declared
	// on demand regardless of source order or cross-namespace references.
	e.collectFullNames(prog)
	for _, ns := range prog.Namespaces {
		e.declareNamespaceTypes(ns)
	}
	for _, ns := range prog.Namespaces {
		e.declareNamespaceMembers(ns)
	}

	// Phase 4: generate every pending method/constructor/accessor body.
	for _, pb := range e.pending {
		e.emitPendingBody(pb)
	}

	// Phase 5: locate Main, save.
	e.setEntryPoint(opts.MainClass)
	if err := e.factory.EndOutput(opts.OutputPath); err != nil {
		e.diags.Add(diag.EmitIOError, token.Range{}, "writing %q: %v", opts.OutputPath, err)
	}
}

// --- Full-name precomputation ---

func (e *Emitter) collectFullNames(prog *ast.Program) {
	for _, ns := range prog.Namespaces {
		e.collectNamespace(ns)
	}
}

func (e *Emitter) collectNamespace(ns *ast.NamespaceDecl) {
	for _, decl := range ns.Types {
		switch d := decl.(type) {
		case *ast.TypeDecl:
			e.collectTypeDecl(d, ns.Name, nil)
		case *ast.EnumDecl:
			if ee := e.res.EnumSym[d]; ee != nil {
				e.enumFullNames[ee] = joinName(ns.Name, []string{d.Name})
				e.enumByName[d.Name] = ee
			}
		}
	}
	for _, nested := range ns.Nested {
		e.collectNamespace(nested)
	}
}

func (e *Emitter) collectTypeDecl(d *ast.TypeDecl, nsName string, containing []string) {
	te := e.res.TypeSym[d]
	if te == nil {
		return
	}
	parts := append(append([]string{}, containing...), d.Name)
	e.typeFullNames[te] = joinName(nsName, parts)
	e.typeByName[d.Name] = te
	for _, nested := range d.Nested {
		e.collectTypeDecl(nested, nsName, parts)
	}
	for _, en := range d.Enums {
		if ee := e.res.EnumSym[en]; ee != nil {
			enParts := append(append([]string{}, parts...), en.Name)
			e.enumFullNames[ee] = joinName(nsName, enParts)
			e.enumByName[en.Name] = ee
		}
	}
}

func joinName(ns string, parts []string) string {
	name := strings.Join(parts, ".")
	if ns == "" {
		return name
	}
	return ns + "." + name
}

// --- Type declaration (phase 2) ---

func (e *Emitter) declareNamespaceTypes(ns *ast.NamespaceDecl) {
	for _, decl := range ns.Types {
		switch d := decl.(type) {
		case *ast.TypeDecl:
			e.declareTypeDeclTree(d)
		case *ast.EnumDecl:
			if ee := e.res.EnumSym[d]; ee != nil {
				e.declareEnumEntry(ee)
			}
		}
	}
	for _, nested := range ns.Nested {
		e.declareNamespaceTypes(nested)
	}
}

func (e *Emitter) declareTypeDeclTree(d *ast.TypeDecl) {
	if te := e.res.TypeSym[d]; te != nil {
		e.declareTypeEntry(te)
	}
	for _, nested := range d.Nested {
		e.declareTypeDeclTree(nested)
	}
	for _, en := range d.Enums {
		if ee := e.res.EnumSym[en]; ee != nil {
			e.declareEnumEntry(ee)
		}
	}
}

// declareTypeEntry materializes te's builder, recursively declaring its
// super type and interfaces first if they haven't been declared yet.
// DeclareType is idempotent, so a type reachable through more than one
// path (e.g. both as a field's type and later in source-declaration order)
// is only ever sent to the factory once.
func (e *Emitter) declareTypeEntry(te *types.TypeEntry) any {
	if te == nil {
		return nil
	}
	if te.RuntimeHandle != nil {
		return te.RuntimeHandle
	}
	full, ok := e.typeFullNames[te]
	if !ok {
		ref := &externalTypeRef{FullName: te.Name()}
		te.RuntimeHandle = ref
		return ref
	}
	if e.creating[te] {
		// A genuine cycle here would mean the resolver let a circular
		// super/interface graph through; single inheritance plus
		// ResolveCircularReference make that unreachable in practice.
		return nil
	}
	e.creating[te] = true
	defer delete(e.creating, te)

	var super any
	if s, ok := te.Super().(*types.TypeEntry); ok {
		super = e.declareTypeEntry(s)
	}
	ifaces := make([]any, len(te.Interfaces))
	for i, iface := range te.Interfaces {
		ifaces[i] = e.declareTypeEntry(iface)
	}

	handle := e.factory.DeclareType(full, kindOf(te), backend.MemberModifiers(te.Modifiers), super, ifaces)
	te.RuntimeHandle = handle
	return handle
}

func kindOf(te *types.TypeEntry) backend.TypeKind {
	switch te.GenreVal {
	case types.GenreStruct:
		return backend.KindStruct
	case types.GenreInterface:
		return backend.KindInterface
	default:
		return backend.KindClass
	}
}

// declareEnumEntry materializes ee as a regular type builder deriving from
// System.Enum plus a magic `value__` integer field, the documented
// workaround for a backend bug with dedicated enum builders. Each literal
// is then declared as a static const field of the enum's own type.
func (e *Emitter) declareEnumEntry(ee *types.EnumTypeEntry) any {
	if ee.RuntimeHandle != nil {
		return ee.RuntimeHandle
	}
	full := e.enumFullNames[ee]
	super := e.declareTypeEntry(types.Enum)
	handle := e.factory.DeclareType(full, backend.KindEnum, backend.MemberModifiers(ee.Modifiers), super, nil)
	ee.RuntimeHandle = handle

	// "specialname" is a backend metadata bit outside this language's
	// Modifiers bit-set entirely, so value__ is declared with no modifiers.
	e.factory.DeclareField(handle, "value__", e.typeRef(types.Int), backend.MemberModifiers(0))
	for _, lit := range ee.Literals {
		fh := e.factory.DeclareField(handle, lit.Name, handle, backend.MemberModifiers(uint16(ast.ModPublic|ast.ModStatic|ast.ModConst)))
		e.enumLiteralHandles[lit] = fh
	}
	return handle
}

// typeRef turns a resolved types.Type into the opaque TypeRef value the
// factory expects, declaring the underlying class/struct/interface/enum on
// demand via declareTypeEntry/declareEnumEntry.
func (e *Emitter) typeRef(t types.Type) any {
	switch v := t.(type) {
	case nil:
		return nil
	case *types.PrimitiveType:
		return &externalTypeRef{FullName: v.NameStr}
	case *types.TypeEntry:
		return e.declareTypeEntry(v)
	case *types.EnumTypeEntry:
		return e.declareEnumEntry(v)
	case *types.ArrayTypeEntry:
		return &arrayTypeRef{Element: e.typeRef(v.Element), Rank: v.Rank}
	case *types.RefTypeEntry:
		return e.typeRef(v.Inner)
	default:
		return nil
	}
}

// resolveTypeExprBestEffort resolves a TypeExpr to a types.Type using only
// the name indices built during collectFullNames, for the few places
// downstream of the resolver that carry an ast.TypeExpr without a recorded
// types.Type alongside it: a catch clause's exception type, and a cast/is/
// as/typeof operand's named type. Unlike the resolver's resolveTypeExpr,
// this never consults using directives or namespace scoping, so a name
// that exists in more than one namespace resolves arbitrarily; programs
// that rely on that ambiguity are out of scope here.
func (e *Emitter) resolveTypeExprBestEffort(te ast.TypeExpr) types.Type {
	switch t := te.(type) {
	case *ast.SimpleTypeExpr:
		name := t.Name
		if idx := strings.LastIndex(name, "."); idx >= 0 {
			name = name[idx+1:]
		}
		switch name {
		case "int":
			return types.Int
		case "char":
			return types.Char
		case "bool":
			return types.Bool
		case "string":
			return types.String
		case "void":
			return types.Void
		case "object", "Object":
			return types.Object
		case "Exception":
			return types.Exception
		}
		if ee, ok := e.enumByName[name]; ok {
			return ee
		}
		if te, ok := e.typeByName[name]; ok {
			return te
		}
		return types.Object
	case *ast.ArrayTypeExpr:
		return &types.ArrayTypeEntry{Element: e.resolveTypeExprBestEffort(t.Element), Rank: t.Rank}
	case *ast.RefTypeExpr:
		return e.resolveTypeExprBestEffort(t.Inner)
	}
	return types.Object
}

// resolveCatchType resolves a catch clause's declared exception type.
func (e *Emitter) resolveCatchType(te ast.TypeExpr) types.Type {
	return e.resolveTypeExprBestEffort(te)
}

// --- Entry point search (phase 5) ---

func (e *Emitter) setEntryPoint(mainClass string) {
	var found []mainCandidate
	if mainClass != "" {
		for _, c := range e.mainCandidates {
			if c.className == mainClass {
				found = append(found, c)
			}
		}
		if len(found) == 0 {
			e.diags.Add(diag.EmitEntryClassNotFound, token.Range{}, "class %q named by /main has no static Main method", mainClass)
			return
		}
	} else {
		found = e.mainCandidates
	}
	switch len(found) {
	case 0:
		e.diags.Add(diag.EmitNoMain, token.Range{}, "no static Main method found")
	case 1:
		e.factory.SetEntryPoint(found[0].handle)
	default:
		e.diags.Add(diag.EmitDuplicateMain, token.Range{}, "more than one static Main method found")
	}
}
