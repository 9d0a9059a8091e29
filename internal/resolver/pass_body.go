package resolver

import (
	"github.com/csc-go/compiler/internal/ast"
	"github.com/csc-go/compiler/internal/diag"
	"github.com/csc-go/compiler/internal/types"
	"github.com/csc-go/compiler/pkg/token"
)

// bodyContext is the per-method-body state threaded through statement and
// expression resolution.
type bodyContext struct {
	owner     *types.TypeEntry
	method    *types.MethodExpEntry
	isStatic  bool
	returnTy  types.Type
	loopDepth int
	tryDepth  int
	labels    map[string]bool
}

// passBBodies is Pass B: walk every method/constructor/property-accessor
// body, resolving and type-checking every statement and expression and
// rewriting foreach into its desugared loop form in place.
func (r *Resolver) passBBodies(prog *ast.Program) {
	for _, ns := range prog.Namespaces {
		r.walkNamespaceBodies(ns)
	}
}

func (r *Resolver) walkNamespaceBodies(ns *ast.NamespaceDecl) {
	scope := r.sectionScope(ns)
	for _, decl := range ns.Types {
		if td, ok := decl.(*ast.TypeDecl); ok {
			r.walkTypeBodies(td, scope)
		}
	}
	for _, nested := range ns.Nested {
		r.walkNamespaceBodies(nested)
	}
}

func (r *Resolver) walkTypeBodies(td *ast.TypeDecl, scope *types.Scope) {
	entry := r.pendingTypes[td]

	for _, m := range td.Methods {
		r.walkMethodBody(td, entry, m, scope)
	}
	for _, p := range td.Properties {
		r.walkPropertyBody(td, entry, p, scope)
	}
	for _, nested := range td.Nested {
		r.walkTypeBodies(nested, scope)
	}
}

// methodLookupScope builds the scope a method body resolves names
// against: its own (empty, to be filled) symbol table for parameters and
// locals, falling back to owner's member scope (including inherited
// members, via a super-chain controller) and then to the enclosing
// namespace section (types, and anything brought in by `using`).
func (r *Resolver) methodLookupScope(owner *types.TypeEntry, section *types.Scope) *types.Scope {
	s := types.NewScope(types.ScopeMethodBody, section)
	s.Controller = &superChainController2{start: owner}
	return s
}

// superChainController2 mirrors types' own superChainController but also
// checks the owner's own MemberScope first (the controller in the types
// package is unexported and only walks ancestors, since it sits on a
// class's own member scope as its *parent* fallback; here we need "this
// class and its ancestors" from a body scope that isn't the class's
// member scope itself).
type superChainController2 struct {
	start *types.TypeEntry
}

func (c *superChainController2) Lookup(name string) (any, bool) {
	for cur := c.start; cur != nil; {
		if cur.MemberScope != nil {
			if sym, ok := cur.MemberScope.OwnSymbol(name); ok {
				return sym, true
			}
		}
		super, _ := cur.Super().(*types.TypeEntry)
		cur = super
	}
	return nil, false
}

func (r *Resolver) walkMethodBody(td *ast.TypeDecl, owner *types.TypeEntry, m *ast.MethodDecl, section *types.Scope) {
	sym := r.res.MethodSym[m]
	if sym == nil || m.Body == nil {
		return
	}
	ctx := &bodyContext{
		owner:    owner,
		method:   sym,
		isStatic: m.Modifiers.Has(ast.ModStatic),
		returnTy: sym.Header.ReturnType,
		labels:   make(map[string]bool),
	}
	prevCtx := r.ctx
	r.ctx = ctx

	scope := r.methodLookupScope(owner, section)
	for i, p := range m.Parameters {
		pt := sym.Header.ParamTypes[i]
		scope.Define(p.Name, &types.ParameterEntry{Name: p.Name, ParamType: pt, IsRef: p.IsRef, IsOut: p.IsOut, Index: i})
	}

	if m.IsCtor {
		r.resolveCtorChain(m, owner, scope)
	}

	r.resolveBlock(m.Body, scope)
	r.ctx = prevCtx
}

// resolveCtorChain validates an explicit `: base(...)`/`: this(...)`
// clause's arguments against the target constructor overload set, and
// injects an implicit parameterless `base()` chain when the constructor
// has none and the owning type isn't System.Object itself.
func (r *Resolver) resolveCtorChain(m *ast.MethodDecl, owner *types.TypeEntry, scope *types.Scope) {
	if m.CtorChain == nil {
		if owner == types.Object {
			return
		}
		m.CtorChain = &ast.CtorChainStmt{IsThis: false}
		return
	}
	var target *types.TypeEntry
	if m.CtorChain.IsThis {
		target = owner
	} else {
		super, _ := owner.Super().(*types.TypeEntry)
		target = super
	}
	if target == nil {
		return
	}
	argTypes := make([]types.Type, len(m.CtorChain.Args))
	for i, a := range m.CtorChain.Args {
		argTypes[i] = r.resolveExpr(a, scope)
	}
	r.res.CtorChainSym[m.CtorChain] = r.resolveCtorOverload(target, argTypes, m.Pos())
}

func (r *Resolver) walkPropertyBody(td *ast.TypeDecl, owner *types.TypeEntry, p *ast.PropertyDecl, section *types.Scope) {
	sym := r.res.PropSym[p]
	if sym == nil {
		return
	}
	if p.Getter != nil {
		ctx := &bodyContext{owner: owner, returnTy: sym.PropType, labels: make(map[string]bool)}
		ctx.method = &types.MethodExpEntry{Name: "get_" + p.Name, Header: &types.MethodHeaderEntry{ReturnType: sym.PropType}, ContainingType: owner}
		prevCtx := r.ctx
		r.ctx = ctx
		scope := r.methodLookupScope(owner, section)
		r.resolveBlock(p.Getter, scope)
		r.ctx = prevCtx
	}
	if p.Setter != nil {
		ctx := &bodyContext{owner: owner, returnTy: types.Void, labels: make(map[string]bool)}
		ctx.method = &types.MethodExpEntry{Name: "set_" + p.Name, Header: &types.MethodHeaderEntry{ReturnType: types.Void}, ContainingType: owner}
		prevCtx := r.ctx
		r.ctx = ctx
		scope := r.methodLookupScope(owner, section)
		scope.Define("value", &types.ParameterEntry{Name: "value", ParamType: sym.PropType})
		r.resolveBlock(p.Setter, scope)
		r.ctx = prevCtx
	}
}

// --- Statements ---

func (r *Resolver) resolveBlock(b *ast.BlockStmt, parent *types.Scope) {
	scope := types.NewScope(types.ScopeBlock, parent)
	for i, stmt := range b.Statements {
		b.Statements[i] = r.resolveStmt(stmt, scope)
	}
}

// resolveStmt resolves stmt and returns its replacement (itself, unless
// this call desugars it into a different statement node).
func (r *Resolver) resolveStmt(stmt ast.Statement, scope *types.Scope) ast.Statement {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		r.resolveBlock(s, scope)
		return s
	case *ast.LocalVarDecl:
		r.resolveLocalVarDecl(s, scope)
		return s
	case *ast.ExprStmt:
		r.resolveExpr(s.Expression, scope)
		return s
	case *ast.EmptyStmt:
		return s
	case *ast.IfStmt:
		r.checkBool(r.resolveExpr(s.Cond, scope), s.Cond.Pos())
		s.Then = r.resolveStmt(s.Then, scope)
		if s.Else != nil {
			s.Else = r.resolveStmt(s.Else, scope)
		}
		return s
	case *ast.WhileStmt:
		r.checkBool(r.resolveExpr(s.Cond, scope), s.Cond.Pos())
		r.ctx.loopDepth++
		s.Body = r.resolveStmt(s.Body, scope)
		r.ctx.loopDepth--
		return s
	case *ast.DoStmt:
		r.ctx.loopDepth++
		s.Body = r.resolveStmt(s.Body, scope)
		r.ctx.loopDepth--
		r.checkBool(r.resolveExpr(s.Cond, scope), s.Cond.Pos())
		return s
	case *ast.ForStmt:
		forScope := types.NewScope(types.ScopeBlock, scope)
		if s.Init != nil {
			s.Init = r.resolveStmt(s.Init, forScope)
		}
		if s.Cond != nil {
			r.checkBool(r.resolveExpr(s.Cond, forScope), s.Cond.Pos())
		}
		for _, post := range s.Post {
			r.resolveExpr(post, forScope)
		}
		r.ctx.loopDepth++
		s.Body = r.resolveStmt(s.Body, forScope)
		r.ctx.loopDepth--
		return s
	case *ast.ForEachStmt:
		return r.desugarForEach(s, scope)
	case *ast.SwitchStmt:
		r.resolveExpr(s.Tag, scope)
		r.ctx.loopDepth++ // break exits a switch too
		for _, c := range s.Cases {
			caseScope := types.NewScope(types.ScopeBlock, scope)
			if c.Value != nil {
				r.resolveExpr(c.Value, caseScope)
			}
			for i, cs := range c.Statements {
				c.Statements[i] = r.resolveStmt(cs, caseScope)
			}
		}
		r.ctx.loopDepth--
		return s
	case *ast.TryStmt:
		r.ctx.tryDepth++
		r.resolveBlock(s.Body, scope)
		for _, c := range s.Catches {
			catchScope := types.NewScope(types.ScopeBlock, scope)
			if c.ExcType != nil {
				if et, ok := r.resolveTypeExpr(c.ExcType, scope); ok && c.Name != "" {
					catchScope.Define(c.Name, &types.LocalEntry{Name: c.Name, VarType: et})
				}
			}
			r.resolveBlock(c.Body, catchScope)
		}
		if s.Finally != nil {
			r.resolveBlock(s.Finally, scope)
		}
		r.ctx.tryDepth--
		return s
	case *ast.ThrowStmt:
		if s.Expr != nil {
			r.resolveExpr(s.Expr, scope)
		}
		return s
	case *ast.ReturnStmt:
		if s.Value != nil {
			vt := r.resolveExpr(s.Value, scope)
			if r.ctx.returnTy != nil && !types.Equal(r.ctx.returnTy, types.Void) {
				if !types.Assignable(vt, r.ctx.returnTy) {
					r.diags.Add(diag.ResolveTypeMismatch, s.Pos(), "cannot return %s where %s is expected", typeName(vt), typeName(r.ctx.returnTy))
				}
			}
		} else if r.ctx.returnTy != nil && !types.Equal(r.ctx.returnTy, types.Void) {
			r.diags.Add(diag.ResolveTypeMismatch, s.Pos(), "missing return value")
		}
		return s
	case *ast.BreakStmt:
		if r.ctx.loopDepth == 0 {
			r.diags.Add(diag.ResolveMustBeInsideLoop, s.Pos(), "'break' must be inside a loop or switch")
		}
		return s
	case *ast.ContinueStmt:
		if r.ctx.loopDepth == 0 {
			r.diags.Add(diag.ResolveMustBeInsideLoop, s.Pos(), "'continue' must be inside a loop")
		}
		return s
	case *ast.GotoStmt:
		return s
	case *ast.LabelStmt:
		if r.ctx.labels[s.Name] {
			r.diags.Add(diag.ResolveLabelAlreadyDefined, s.Pos(), "label %q is already defined", s.Name)
		}
		r.ctx.labels[s.Name] = true
		s.Stmt = r.resolveStmt(s.Stmt, scope)
		return s
	}
	return stmt
}

func (r *Resolver) resolveLocalVarDecl(d *ast.LocalVarDecl, scope *types.Scope) {
	vt, ok := r.resolveTypeExpr(d.Type, scope)
	if !ok {
		r.diags.Add(diag.ResolveUndefinedSymbol, d.Pos(), "undefined type in local variable declaration")
		vt = types.Object
	}
	var locals []*types.LocalEntry
	for i, name := range d.Names {
		if scope.IsDeclaredHere(name) {
			r.diags.Add(diag.ResolveSymbolAlreadyDefined, d.Pos(), "local %q is already declared in this scope", name)
		} else {
			local := &types.LocalEntry{Name: name, VarType: vt}
			scope.Define(name, local)
			locals = append(locals, local)
		}
		if d.Inits[i] != nil {
			it := r.resolveExpr(d.Inits[i], scope)
			if !types.Assignable(it, vt) {
				r.diags.Add(diag.ResolveTypeMismatch, d.Inits[i].Pos(), "cannot initialize %s with %s", typeName(vt), typeName(it))
			}
		}
	}
	r.res.LocalSym[d] = locals
}

// desugarForEach rewrites `foreach (T x in coll) body` into an equivalent
// index-based ForStmt when coll's type is an array, and into a
// GetEnumerator/MoveNext/Current-based while loop otherwise, per §4.3.2.
func (r *Resolver) desugarForEach(s *ast.ForEachStmt, scope *types.Scope) ast.Statement {
	collT := r.resolveExpr(s.Collection, scope)
	arrT, ok := types.Unwrap(collT).(*types.ArrayTypeEntry)
	if !ok {
		return r.desugarForEachEnumerator(s, collT, scope)
	}
	varT, ok := r.resolveTypeExpr(s.VarType, scope)
	if !ok {
		varT = arrT.Element
	}
	if !types.Assignable(arrT.Element, varT) {
		r.diags.Add(diag.ResolveTypeMismatch, s.Pos(), "cannot iterate %s elements as %s", typeName(arrT.Element), typeName(varT))
	}

	loopScope := types.NewScope(types.ScopeBlock, scope)
	idxName := "$i"
	idxIdent := &ast.Identifier{Value: idxName}
	init := &ast.LocalVarDecl{Type: &ast.SimpleTypeExpr{Name: "int"}, Names: []string{idxName}, Inits: []ast.Expression{&ast.IntLiteral{Value: 0}}}
	cond := &ast.BinaryExpr{Left: idxIdent, Operator: "<", Right: &ast.FieldAccessExpr{Target: s.Collection, Name: "Length"}}
	post := &ast.IncDecExpr{Operand: idxIdent, Operator: "++", IsPrefix: false}

	bodyBlock, ok := s.Body.(*ast.BlockStmt)
	if !ok {
		bodyBlock = &ast.BlockStmt{Statements: []ast.Statement{s.Body}}
	}
	itemDecl := &ast.LocalVarDecl{
		Type: s.VarType, Names: []string{s.VarName},
		Inits: []ast.Expression{&ast.ArrayAccessExpr{Array: s.Collection, Index: idxIdent}},
	}
	bodyBlock.Statements = append([]ast.Statement{itemDecl}, bodyBlock.Statements...)

	forStmt := &ast.ForStmt{Range: s.Range, Init: init, Cond: cond, Post: []ast.Expression{post}, Body: bodyBlock}
	r.resolveLocalVarDecl(init, loopScope)
	r.resolveExpr(cond, loopScope)
	r.ctx.loopDepth++
	r.resolveExpr(post, loopScope)
	r.resolveBlock(bodyBlock, loopScope)
	r.ctx.loopDepth--
	return forStmt
}

// desugarForEachEnumerator rewrites `foreach (T x in coll) body` into
//
//	{
//	    var $e = coll.GetEnumerator();
//	    while ($e.MoveNext()) {
//	        T x = $e.Current;
//	        body
//	    }
//	}
//
// for any coll whose type exposes GetEnumerator/MoveNext/Current, the
// non-array branch of §4.3.2's foreach desugaring. $e is declared in a
// block wrapping the while loop rather than inside the loop body, since it
// must survive across iterations; ordinary member lookup and overload
// resolution (the same calls a hand-written `coll.GetEnumerator()` would
// go through) resolve each of the three synthesized calls/accesses, so a
// collection missing any of the three reports the same diagnostics a
// hand-written call site would.
func (r *Resolver) desugarForEachEnumerator(s *ast.ForEachStmt, collT types.Type, scope *types.Scope) ast.Statement {
	outerScope := types.NewScope(types.ScopeBlock, scope)

	const enumName = "$e"
	getEnum := &ast.CallExpr{Range: s.Range, Callee: &ast.FieldAccessExpr{Range: s.Range, Target: s.Collection, Name: "GetEnumerator"}}
	enumT := r.resolveExpr(getEnum, outerScope)
	if enumT == nil {
		r.diags.Add(diag.ResolveMethodNotDefined, s.Pos(), "%s has no GetEnumerator method", typeName(collT))
		return s
	}
	enumLocal := &types.LocalEntry{Name: enumName, VarType: enumT}
	outerScope.Define(enumName, enumLocal)
	enumDecl := &ast.LocalVarDecl{Range: s.Range, Type: s.VarType, Names: []string{enumName}, Inits: []ast.Expression{getEnum}}
	r.res.LocalSym[enumDecl] = []*types.LocalEntry{enumLocal}

	enumIdent := &ast.Identifier{Value: enumName}
	moveNext := &ast.CallExpr{Range: s.Range, Callee: &ast.FieldAccessExpr{Range: s.Range, Target: enumIdent, Name: "MoveNext"}}
	r.checkBool(r.resolveExpr(moveNext, outerScope), s.Pos())

	bodyBlock, ok := s.Body.(*ast.BlockStmt)
	if !ok {
		bodyBlock = &ast.BlockStmt{Statements: []ast.Statement{s.Body}}
	}
	currentAccess := &ast.FieldAccessExpr{Range: s.Range, Target: &ast.Identifier{Value: enumName}, Name: "Current"}
	itemDecl := &ast.LocalVarDecl{Type: s.VarType, Names: []string{s.VarName}, Inits: []ast.Expression{currentAccess}}
	bodyBlock.Statements = append([]ast.Statement{itemDecl}, bodyBlock.Statements...)

	whileStmt := &ast.WhileStmt{Range: s.Range, Cond: moveNext, Body: bodyBlock}

	r.ctx.loopDepth++
	r.resolveBlock(bodyBlock, outerScope)
	r.ctx.loopDepth--

	return &ast.BlockStmt{Range: s.Range, Statements: []ast.Statement{enumDecl, whileStmt}}
}

func (r *Resolver) checkBool(t types.Type, rng token.Range) {
	if t != nil && !types.Equal(types.Unwrap(t), types.Bool) {
		r.diags.Add(diag.ResolveTypeMismatch, rng, "condition must be bool, got %s", typeName(t))
	}
}

func typeName(t types.Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.String()
}
