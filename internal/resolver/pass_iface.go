package resolver

import (
	"github.com/csc-go/compiler/internal/ast"
	"github.com/csc-go/compiler/internal/diag"
	"github.com/csc-go/compiler/internal/types"
)

// passIfaceRealization runs after Pass A.2 has linked every type's super
// type, interfaces, and member signatures, and before Pass B walks any
// body. It checks every class/struct against the interfaces it claims to
// implement: each interface method and property must have a matching,
// public implementing member somewhere in the class's own super chain.
// It runs as its own full-tree pass, not inline during linking, because a
// class's claimed interface may itself link its members later in the same
// tree walk that links the class.
func (r *Resolver) passIfaceRealization(prog *ast.Program) {
	for decl, entry := range r.pendingTypes {
		if entry.GenreVal == types.GenreInterface || len(entry.Interfaces) == 0 {
			continue
		}
		seen := map[*types.TypeEntry]bool{}
		for _, iface := range entry.Interfaces {
			r.checkRealizes(decl, entry, iface, seen)
		}
	}
}

// checkRealizes walks iface and every interface it extends, checking each
// of iface's own members (not inherited ones — those are checked when we
// recurse into the base interface) against class's member set.
func (r *Resolver) checkRealizes(decl *ast.TypeDecl, class, iface *types.TypeEntry, seen map[*types.TypeEntry]bool) {
	if iface == nil || seen[iface] {
		return
	}
	seen[iface] = true

	if iface.MemberScope != nil {
		for _, sym := range iface.MemberScope.Symbols {
			switch want := sym.(type) {
			case *types.OverloadSet:
				for _, m := range want.Overloads {
					r.checkMethodRealized(decl, class, iface, m)
				}
			case *types.PropertyExpEntry:
				r.checkPropertyRealized(decl, class, iface, want)
			}
		}
	}
	for _, base := range iface.Interfaces {
		r.checkRealizes(decl, class, base, seen)
	}
}

func (r *Resolver) checkMethodRealized(decl *ast.TypeDecl, class, iface *types.TypeEntry, want *types.MethodExpEntry) {
	sym, ok := memberLookup(class, want.Name)
	if ok {
		if set, ok := sym.(*types.OverloadSet); ok {
			for _, have := range set.Overloads {
				if !types.SignaturesEqual(have.Header, want.Header) {
					continue
				}
				if ast.Modifiers(have.Modifiers).Has(ast.ModPublic) {
					return
				}
				r.diags.Add(diag.ResolveIMethodMustBePublic, have.Pos,
					"%s.%s implementing %s.%s must be public", class.Name(), have.Name, iface.Name(), want.Name)
				return
			}
		}
	}
	r.diags.Add(diag.ResolveMissingIfaceMethod, decl.Pos(),
		"%s does not implement %s.%s", class.Name(), iface.Name(), want.Name)
}

func (r *Resolver) checkPropertyRealized(decl *ast.TypeDecl, class, iface *types.TypeEntry, want *types.PropertyExpEntry) {
	sym, ok := memberLookup(class, want.Name)
	if ok {
		if have, ok := sym.(*types.PropertyExpEntry); ok && types.Equal(have.PropType, want.PropType) {
			if !ast.Modifiers(have.Modifiers).Has(ast.ModPublic) {
				r.diags.Add(diag.ResolveIMethodMustBePublic, have.Pos,
					"%s.%s implementing %s.%s must be public", class.Name(), have.Name, iface.Name(), want.Name)
				return
			}
			if want.Getter != nil && have.Getter == nil {
				r.diags.Add(diag.ResolveMissingIfaceMethod, decl.Pos(),
					"%s does not implement %s.%s's getter", class.Name(), iface.Name(), want.Name)
				return
			}
			if want.Setter != nil && have.Setter == nil {
				r.diags.Add(diag.ResolveMissingIfaceMethod, decl.Pos(),
					"%s does not implement %s.%s's setter", class.Name(), iface.Name(), want.Name)
			}
			return
		}
	}
	r.diags.Add(diag.ResolveMissingIfaceMethod, decl.Pos(),
		"%s does not implement %s.%s", class.Name(), iface.Name(), want.Name)
}
