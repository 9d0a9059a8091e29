package resolver

import (
	"github.com/csc-go/compiler/internal/ast"
	"github.com/csc-go/compiler/internal/diag"
	"github.com/csc-go/compiler/internal/types"
)

// passALink is Pass A.2: for every stub created in Pass A, resolve its
// super type, its interface list, and every member's signature (field
// types, method parameter/return types, property types). No method body
// is examined yet, so a member can reference any other type in the
// program regardless of declaration order.
func (r *Resolver) passALink(prog *ast.Program) {
	for _, ns := range prog.Namespaces {
		r.linkNamespace(ns)
	}
}

func (r *Resolver) linkNamespace(ns *ast.NamespaceDecl) {
	scope := r.sectionScope(ns)
	for _, decl := range ns.Types {
		r.linkTypeDecl(decl, scope)
	}
	for _, nested := range ns.Nested {
		r.linkNamespace(nested)
	}
}

// sectionScope returns a lookup view over one namespace section: its
// shared member table, falling back through this section's own `using`
// clauses. Each section gets its own usingClauseController even though
// the underlying Symbols map is shared, since two sections of the same
// namespace may list different usings.
func (r *Resolver) sectionScope(ns *ast.NamespaceDecl) *types.Scope {
	root := r.namespaceScopes[ns.Name]
	view := types.NewSharedScope(types.ScopeNamespace, r.global, root)
	var usings []*types.NamespaceEntry
	for _, u := range ns.Usings {
		if nsEntry, ok := r.namespaceSyms[u.Namespace]; ok {
			usings = append(usings, nsEntry)
		} else {
			r.diags.Add(diag.ResolveUndefinedSymbol, u.Pos(), "unknown namespace %q in using directive", u.Namespace)
		}
	}
	view.Parent = r.global
	if len(usings) > 0 {
		view.Controller = &usingViewController{usings: usings, fallback: view.Controller}
	}
	return view
}

// usingViewController tries every used namespace's own table before
// falling back to whatever controller the base scope already had (the
// global scope's no-parent controller).
type usingViewController struct {
	usings   []*types.NamespaceEntry
	fallback types.LookupController
}

func (c *usingViewController) Lookup(name string) (any, bool) {
	for _, ns := range c.usings {
		if sym, ok := ns.Scope.OwnSymbol(name); ok {
			return sym, true
		}
	}
	if c.fallback != nil {
		return c.fallback.Lookup(name)
	}
	return nil, false
}

func (r *Resolver) linkTypeDecl(decl ast.Declaration, scope *types.Scope) {
	switch d := decl.(type) {
	case *ast.TypeDecl:
		r.linkClassLike(d, scope)
	case *ast.EnumDecl:
		r.linkEnum(d, scope)
	case *ast.DelegateDecl:
		// A delegate's parameter and return types are looked up here, but
		// the results are not recorded and a type that fails to resolve is
		// not reported; no Invoke signature is linked for a delegate.
		for _, p := range d.Parameters {
			r.resolveTypeExpr(p.Type, scope)
		}
		if d.ReturnType != nil {
			r.resolveTypeExpr(d.ReturnType, scope)
		}
	}
}

func (r *Resolver) linkClassLike(d *ast.TypeDecl, scope *types.Scope) {
	entry := r.pendingTypes[d]

	if d.BaseName != nil {
		baseT, ok := r.resolveTypeExpr(d.BaseName, scope)
		if !ok {
			r.diags.Add(diag.ResolveUndefinedSymbol, d.BaseName.Pos(), "undefined base type %q", d.BaseName.Name)
		} else if baseClass, ok := baseT.(*types.TypeEntry); ok && baseClass.GenreVal != types.GenreInterface {
			entry.SuperVal = baseClass
		} else {
			// BaseName actually named an interface (the grammar can't tell
			// superclass from interface apart); treat it as one more entry
			// in Interfaces instead.
			if iface, ok := baseT.(*types.TypeEntry); ok {
				entry.Interfaces = append(entry.Interfaces, iface)
			}
		}
	}
	if entry.SuperVal == nil && entry.GenreVal != types.GenreInterface {
		entry.SuperVal = types.Object
	}

	for _, i := range d.Interfaces {
		if d.BaseName == i {
			continue // already consumed as BaseName above
		}
		ifaceT, ok := r.resolveTypeExpr(i, scope)
		if !ok {
			r.diags.Add(diag.ResolveUndefinedSymbol, i.Pos(), "undefined interface %q", i.Name)
			continue
		}
		ifaceEntry, ok := ifaceT.(*types.TypeEntry)
		if !ok || ifaceEntry.GenreVal != types.GenreInterface {
			r.diags.Add(diag.ResolveMustDeriveFromIface, i.Pos(), "%q is not an interface", i.Name)
			continue
		}
		entry.Interfaces = append(entry.Interfaces, ifaceEntry)
	}

	for _, f := range d.Fields {
		ft, ok := r.resolveTypeExpr(f.Type, scope)
		if !ok {
			r.diags.Add(diag.ResolveUndefinedSymbol, f.Pos(), "undefined type in field %q", f.Name)
			continue
		}
		fieldSym := &types.FieldExpEntry{Name: f.Name, FieldType: ft, Modifiers: uint16(f.Modifiers), ContainingType: entry}
		entry.MemberScope.Define(f.Name, fieldSym)
		r.res.FieldSym[f] = fieldSym
	}

	for _, m := range d.Methods {
		r.linkMethod(m, entry, scope)
	}

	for _, p := range d.Properties {
		r.linkProperty(p, entry, scope)
	}

	for _, ev := range d.Events {
		et, ok := r.resolveTypeExpr(ev.Type, scope)
		if !ok {
			r.diags.Add(diag.ResolveUndefinedSymbol, ev.Pos(), "undefined delegate type for event %q", ev.Name)
			continue
		}
		entry.MemberScope.Define(ev.Name, &types.EventExpEntry{Name: ev.Name, DelegateType: et, Modifiers: uint16(ev.Modifiers), ContainingType: entry})
	}

	for _, nested := range d.Nested {
		r.linkClassLike(nested, scope)
	}
	for _, e := range d.Enums {
		r.linkEnum(e, scope)
	}

	entry.IsInit = true
}

func (r *Resolver) linkMethod(m *ast.MethodDecl, owner *types.TypeEntry, scope *types.Scope) {
	header := &types.MethodHeaderEntry{}
	for i, p := range m.Parameters {
		pt, ok := r.resolveTypeExpr(p.Type, scope)
		if !ok {
			r.diags.Add(diag.ResolveUndefinedSymbol, p.Pos(), "undefined parameter type for %q", p.Name)
			pt = types.Object
		}
		header.ParamTypes = append(header.ParamTypes, pt)
		header.ParamIsRef = append(header.ParamIsRef, p.IsRef)
		header.ParamIsOut = append(header.ParamIsOut, p.IsOut)
		// A trailing `params T[] name` parameter lets a call site pass a
		// variable tail of T arguments (or a single T[]) in its place;
		// only the last parameter may carry it, and only over an array
		// type, matching how ResolveOverload/SignatureDistance score a
		// variadic header's tail arguments against VariadicElem.
		if p.IsParams && i == len(m.Parameters)-1 {
			if arr, ok := pt.(*types.ArrayTypeEntry); ok {
				header.IsVariadic = true
				header.VariadicElem = arr.Element
			}
		}
	}
	retType := types.Type(types.Void)
	if m.ReturnType != nil {
		if rt, ok := r.resolveTypeExpr(m.ReturnType, scope); ok {
			retType = rt
		}
	}
	header.ReturnType = retType

	name := m.Name
	if m.IsCtor {
		name = ".ctor"
	}
	sym := &types.MethodExpEntry{
		Name: name, Header: header, Modifiers: uint16(m.Modifiers),
		ContainingType: owner, IsCtor: m.IsCtor, Pos: m.Pos(),
	}
	if existing, ok := owner.MemberScope.OwnSymbol(name); ok {
		if set, ok := existing.(*types.OverloadSet); ok {
			for _, other := range set.Overloads {
				if types.SignaturesEqual(other.Header, header) {
					r.diags.Add(diag.ResolveSymbolAlreadyDefined, m.Pos(), "method %q is already defined with the same parameter types", m.Name)
					break
				}
			}
		}
	}
	owner.MemberScope.DefineOverload(name, sym)
	r.res.MethodSym[m] = sym
}

func (r *Resolver) linkProperty(p *ast.PropertyDecl, owner *types.TypeEntry, scope *types.Scope) {
	pt, ok := r.resolveTypeExpr(p.Type, scope)
	if !ok {
		r.diags.Add(diag.ResolveUndefinedSymbol, p.Pos(), "undefined property type for %q", p.Name)
		pt = types.Object
	}
	sym := &types.PropertyExpEntry{Name: p.Name, PropType: pt, Modifiers: uint16(p.Modifiers), ContainingType: owner}
	owner.MemberScope.Define(p.Name, sym)
	r.res.PropSym[p] = sym
}

func (r *Resolver) linkEnum(d *ast.EnumDecl, scope *types.Scope) {
	entry := r.pendingEnums[d]
	next := int64(0)
	for _, m := range d.Members {
		val := next
		if m.Value != nil {
			if lit, ok := m.Value.(*ast.IntLiteral); ok {
				val = lit.Value
			} else {
				r.diags.Add(diag.ResolveMustBeConstExpr, m.Pos(), "enum member %q must have a constant integer value", m.Name)
			}
		}
		lit := &types.LiteralFieldEntry{Name: m.Name, EnumType: entry, Value: val}
		entry.Literals = append(entry.Literals, lit)
		next = val + 1
	}
}

// resolveTypeExpr turns a syntactic TypeExpr into a types.Type, consulting
// scope (and, for an array, recursing on its element type).
func (r *Resolver) resolveTypeExpr(te ast.TypeExpr, scope *types.Scope) (types.Type, bool) {
	switch t := te.(type) {
	case *ast.SimpleTypeExpr:
		if t.Name == "void" {
			return types.Void, true
		}
		sym, ok := scope.Resolve(t.Name)
		if !ok {
			// Fall back to a bare last-segment lookup for a dotted name
			// resolved relative to a using'd namespace (e.g. `Collections.List`
			// where `using System;` brought `Collections` into scope, not
			// `System.Collections`): try the type name alone.
			if idx := lastDot(t.Name); idx >= 0 {
				sym, ok = scope.Resolve(t.Name[idx+1:])
			}
		}
		if !ok {
			return nil, false
		}
		ty, ok := sym.(types.Type)
		return ty, ok
	case *ast.ArrayTypeExpr:
		elem, ok := r.resolveTypeExpr(t.Element, scope)
		if !ok {
			return nil, false
		}
		return &types.ArrayTypeEntry{Element: elem, Rank: t.Rank}, true
	case *ast.RefTypeExpr:
		inner, ok := r.resolveTypeExpr(t.Inner, scope)
		if !ok {
			return nil, false
		}
		return &types.RefTypeEntry{Inner: inner}, true
	}
	return nil, false
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
