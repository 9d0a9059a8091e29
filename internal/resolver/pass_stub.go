package resolver

import (
	"github.com/csc-go/compiler/internal/ast"
	"github.com/csc-go/compiler/internal/diag"
	"github.com/csc-go/compiler/internal/types"
)

// passAStub is Pass A: it walks every namespace and type declaration and
// creates a bare TypeEntry/EnumTypeEntry stub for each, with no super type,
// no interfaces, and no members linked yet. Its only job is to make every
// declared type's name resolvable before any cross-type reference (a base
// class, a field type, a parameter type) is examined, so declaration order
// never matters.
func (r *Resolver) passAStub(prog *ast.Program) {
	for _, ns := range prog.Namespaces {
		r.stubNamespace(ns, nil)
	}
}

// namespaceScope returns the shared scope for a dotted namespace name,
// creating it (and its NamespaceEntry) on first use.
func (r *Resolver) namespaceScope(name string, parent *types.Scope) *types.Scope {
	if s, ok := r.namespaceScopes[name]; ok {
		return s
	}
	root := types.NewScope(types.ScopeNamespace, parent)
	r.namespaceScopes[name] = root
	r.namespaceSyms[name] = &types.NamespaceEntry{Name: name, Scope: root}
	return root
}

func (r *Resolver) stubNamespace(ns *ast.NamespaceDecl, containing *TypeContext) {
	scope := r.namespaceScope(ns.Name, r.global)

	for _, td := range ns.Types {
		r.stubTypeDecl(td, scope)
	}
	for _, nested := range ns.Nested {
		r.stubNamespace(nested, containing)
	}
}

// TypeContext is the type of stubNamespace's containing argument, which is
// always nil (namespaces never nest inside a type); nested types are stubbed
// through stubClassLike's containing *types.TypeEntry argument instead.
type TypeContext struct {
	Entry *types.TypeEntry
}

func (r *Resolver) stubTypeDecl(decl ast.Declaration, scope *types.Scope) {
	switch d := decl.(type) {
	case *ast.TypeDecl:
		r.stubClassLike(d, scope, nil)
	case *ast.EnumDecl:
		r.stubEnum(d, scope, nil)
	case *ast.DelegateDecl:
		// Delegates are modeled as ordinary reference types with no
		// members (no Invoke method is declared for them); no stub work
		// beyond reserving the name is needed here since this subset never
		// subclasses a delegate.
		entry := &types.TypeEntry{NameStr: d.Name, GenreVal: types.GenreClass, SuperVal: types.Object}
		scope.Define(d.Name, entry)
	}
}

func (r *Resolver) stubClassLike(d *ast.TypeDecl, scope *types.Scope, containing *types.TypeEntry) *types.TypeEntry {
	genre := types.GenreClass
	switch d.Kind {
	case ast.TypeStruct:
		genre = types.GenreStruct
	case ast.TypeInterface:
		genre = types.GenreInterface
	}
	entry := &types.TypeEntry{
		NameStr:        d.Name,
		GenreVal:       genre,
		ContainingType: containing,
		Modifiers:      uint16(d.Modifiers),
	}
	if scope.IsDeclaredHere(d.Name) {
		r.diags.Add(diag.ResolveSymbolAlreadyDefined, d.Pos(), "type %q is already defined in this scope", d.Name)
	} else {
		scope.Define(d.Name, entry)
	}
	r.res.TypeSym[d] = entry
	r.pendingTypes[d] = entry

	entry.MemberScope = types.NewScope(types.ScopeClassMembers, nil)
	for _, nested := range d.Nested {
		nestedEntry := r.stubClassLike(nested, entry.MemberScope, entry)
		_ = nestedEntry
	}
	for _, e := range d.Enums {
		r.stubEnum(e, entry.MemberScope, entry)
	}
	return entry
}

func (r *Resolver) stubEnum(d *ast.EnumDecl, scope *types.Scope, containing *types.TypeEntry) *types.EnumTypeEntry {
	entry := &types.EnumTypeEntry{
		NameStr:        d.Name,
		ContainingType: containing,
		Modifiers:      uint16(d.Modifiers),
	}
	if scope.IsDeclaredHere(d.Name) {
		r.diags.Add(diag.ResolveSymbolAlreadyDefined, d.Pos(), "type %q is already defined in this scope", d.Name)
	} else {
		scope.Define(d.Name, entry)
	}
	r.res.EnumSym[d] = entry
	r.pendingEnums[d] = entry
	return entry
}
