package emitter

import (
	"github.com/csc-go/compiler/internal/ast"
	"github.com/csc-go/compiler/internal/backend"
	"github.com/csc-go/compiler/internal/types"
)

// pendingBody is a materialized method/constructor/accessor handle waiting
// for its instruction tape; phase 3 collects these as it declares members,
// phase 4 drains them so every type and member handle in the whole program
// is already available to every body (a body may call a method declared
// later in source order or on a type in a different namespace).
type pendingBody struct {
	owner      *types.TypeEntry
	handle     any
	isStatic   bool
	isCtor     bool
	params     []*types.ParameterEntry
	returnType types.Type
	body       *ast.BlockStmt

	// Constructor-only.
	ctorChain    *ast.CtorChainStmt
	fieldInits   []*ast.FieldDecl // owner's instance fields with an Init, in declaration order

	// Static-constructor-only (synthesized, no AST method backs it).
	staticFieldInits []*ast.FieldDecl
}

func (e *Emitter) declareNamespaceMembers(ns *ast.NamespaceDecl) {
	for _, decl := range ns.Types {
		if td, ok := decl.(*ast.TypeDecl); ok {
			e.declareTypeMembers(td)
		}
	}
	for _, nested := range ns.Nested {
		e.declareNamespaceMembers(nested)
	}
}

func (e *Emitter) declareTypeMembers(td *ast.TypeDecl) {
	te := e.res.TypeSym[td]
	if te == nil {
		return
	}
	handle := te.RuntimeHandle

	var instanceFieldInits, staticFieldInits []*ast.FieldDecl
	for _, f := range td.Fields {
		fe := e.res.FieldSym[f]
		if fe == nil {
			continue
		}
		h := e.factory.DeclareField(handle, f.Name, e.typeRef(fe.FieldType), backend.MemberModifiers(fe.Modifiers))
		e.fieldHandles[fe] = h
		if f.Init != nil {
			if fe.Modifiers&uint16(ast.ModStatic) != 0 {
				staticFieldInits = append(staticFieldInits, f)
			} else {
				instanceFieldInits = append(instanceFieldInits, f)
			}
		}
	}

	hasExplicitCtor := false
	for _, m := range td.Methods {
		if m.IsCtor {
			hasExplicitCtor = true
		}
		e.declareMethodDecl(td, te, handle, m, instanceFieldInits)
	}
	// A type with field initializers but no user-written constructor still
	// needs them run; the implicit default constructor is declared here so
	// it has somewhere to put them.
	if !hasExplicitCtor && (te.GenreVal == types.GenreClass || te.GenreVal == types.GenreStruct) {
		e.declareImplicitCtor(te, handle, instanceFieldInits)
	}
	if len(staticFieldInits) > 0 {
		e.declareStaticCtor(te, handle, staticFieldInits)
	}

	for _, p := range td.Properties {
		e.declarePropertyDecl(te, handle, p)
	}
	for _, ev := range td.Events {
		if sym, ok := te.MemberScope.OwnSymbol(ev.Name); ok {
			if evEntry, ok := sym.(*types.EventExpEntry); ok {
				e.factory.DeclareEvent(handle, ev.Name, e.typeRef(evEntry.DelegateType))
			}
		}
	}
	for _, nested := range td.Nested {
		e.declareTypeMembers(nested)
	}
}

func paramEntries(m *ast.MethodDecl, header *types.MethodHeaderEntry) []*types.ParameterEntry {
	out := make([]*types.ParameterEntry, len(m.Parameters))
	for i, p := range m.Parameters {
		out[i] = &types.ParameterEntry{Name: p.Name, ParamType: header.ParamTypes[i], IsRef: header.ParamIsRef[i], IsOut: header.ParamIsOut[i], Index: i}
	}
	return out
}

func (e *Emitter) declareMethodDecl(td *ast.TypeDecl, te *types.TypeEntry, ownerHandle any, m *ast.MethodDecl, instanceFieldInits []*ast.FieldDecl) {
	me := e.res.MethodSym[m]
	if me == nil {
		return
	}
	paramTypes := make([]any, len(me.Header.ParamTypes))
	paramFlow := make([]backend.ParamFlow, len(me.Header.ParamTypes))
	for i, pt := range me.Header.ParamTypes {
		paramTypes[i] = e.typeRef(pt)
		switch {
		case me.Header.ParamIsOut[i]:
			paramFlow[i] = backend.FlowOut
		case me.Header.ParamIsRef[i]:
			paramFlow[i] = backend.FlowRef
		default:
			paramFlow[i] = backend.FlowByValue
		}
	}
	name := m.Name
	if m.IsCtor {
		name = ".ctor"
	}
	handle := e.factory.DeclareMethod(ownerHandle, name, paramTypes, paramFlow, e.typeRef(me.Header.ReturnType), backend.MemberModifiers(me.Modifiers), m.IsCtor)
	me.RuntimeHandle = handle

	isStatic := me.Modifiers&uint16(ast.ModStatic) != 0
	if isStatic && m.Name == "Main" {
		e.mainCandidates = append(e.mainCandidates, mainCandidate{className: te.Name(), handle: handle})
	}
	if m.Body == nil {
		return // abstract/interface method: no body to emit
	}
	pb := pendingBody{
		owner: te, handle: handle, isStatic: isStatic, isCtor: m.IsCtor,
		params: paramEntries(m, me.Header), returnType: me.Header.ReturnType, body: m.Body,
	}
	if m.IsCtor {
		pb.ctorChain = m.CtorChain
		pb.fieldInits = instanceFieldInits
	}
	e.pending = append(e.pending, pb)
}

// declareImplicitCtor declares the parameterless default constructor for a
// type that wrote none, so field initializers and the base() chain still
// run; this mirrors the resolver's own implicit-base-ctor injection
// (resolveCtorChain) by giving that injected chain somewhere to execute.
func (e *Emitter) declareImplicitCtor(te *types.TypeEntry, ownerHandle any, instanceFieldInits []*ast.FieldDecl) {
	handle := e.factory.DeclareMethod(ownerHandle, ".ctor", nil, nil, e.typeRef(types.Void), backend.MemberModifiers(uint16(ast.ModPublic)), true)
	e.pending = append(e.pending, pendingBody{
		owner: te, handle: handle, isStatic: false, isCtor: true,
		ctorChain: &ast.CtorChainStmt{IsThis: false}, fieldInits: instanceFieldInits,
		body: &ast.BlockStmt{},
	})
}

func (e *Emitter) declareStaticCtor(te *types.TypeEntry, ownerHandle any, staticFieldInits []*ast.FieldDecl) {
	handle := e.factory.DeclareMethod(ownerHandle, ".cctor", nil, nil, e.typeRef(types.Void), backend.MemberModifiers(uint16(ast.ModStatic)), true)
	e.pending = append(e.pending, pendingBody{
		owner: te, handle: handle, isStatic: true, isCtor: false,
		staticFieldInits: staticFieldInits, body: &ast.BlockStmt{},
	})
}

func (e *Emitter) declarePropertyDecl(te *types.TypeEntry, ownerHandle any, p *ast.PropertyDecl) {
	pe := e.res.PropSym[p]
	if pe == nil {
		return
	}
	isStatic := pe.Modifiers&uint16(ast.ModStatic) != 0
	var getterHandle, setterHandle any
	if p.Getter != nil {
		getterHandle = e.factory.DeclareMethod(ownerHandle, "get_"+p.Name, nil, nil, e.typeRef(pe.PropType), backend.MemberModifiers(pe.Modifiers), false)
		e.pending = append(e.pending, pendingBody{owner: te, handle: getterHandle, isStatic: isStatic, returnType: pe.PropType, body: p.Getter})
	}
	if p.Setter != nil {
		valueParam := []*types.ParameterEntry{{Name: "value", ParamType: pe.PropType, Index: 0}}
		setterHandle = e.factory.DeclareMethod(ownerHandle, "set_"+p.Name, []any{e.typeRef(pe.PropType)}, []backend.ParamFlow{backend.FlowByValue}, e.typeRef(types.Void), backend.MemberModifiers(pe.Modifiers), false)
		e.pending = append(e.pending, pendingBody{owner: te, handle: setterHandle, isStatic: isStatic, params: valueParam, returnType: types.Void, body: p.Setter})
	}
	indexerParams := make([]any, len(pe.IndexerParams))
	for i, ip := range pe.IndexerParams {
		indexerParams[i] = e.typeRef(ip)
	}
	e.factory.DeclareProperty(ownerHandle, p.Name, e.typeRef(pe.PropType), getterHandle, setterHandle, indexerParams)
}

func (e *Emitter) emitPendingBody(pb pendingBody) {
	be := newBodyEmitter(e, pb)
	be.run()
}
