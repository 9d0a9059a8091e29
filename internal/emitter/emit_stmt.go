package emitter

import (
	"fmt"

	"github.com/csc-go/compiler/internal/ast"
	"github.com/csc-go/compiler/internal/backend"
	"github.com/csc-go/compiler/internal/types"
)

// envScope binds a name to the local/parameter it was declared as, nested
// the same way the resolver's block scopes were; a miss falls through to
// memberLookup against the body's owning type.
type envScope struct {
	parent *envScope
	vars   map[string]any // *types.LocalEntry or *types.ParameterEntry
}

type loopFrame struct {
	breakLabel    string
	continueLabel string // empty for a switch's frame: continue skips it
}

// bodyEmitter generates one method/constructor/accessor body's linear
// instruction tape.
type bodyEmitter struct {
	e  *Emitter
	pb pendingBody

	owner      *types.TypeEntry
	env        *envScope
	instrs     []backend.Instr
	localTypes []any
	nextLocal  int
	labelSeq   int
	pending    string // label awaiting the next emitted instruction
	loopStack  []loopFrame
	userLabels map[string]string // source `goto` label name -> tape label
}

func newBodyEmitter(e *Emitter, pb pendingBody) *bodyEmitter {
	be := &bodyEmitter{e: e, pb: pb, owner: pb.owner, env: &envScope{vars: map[string]any{}}, userLabels: map[string]string{}}
	for _, p := range pb.params {
		be.env.vars[p.Name] = p
	}
	return be
}

func (b *bodyEmitter) run() {
	if b.pb.ctorChain != nil {
		b.emitCtorChain()
	}
	for _, f := range b.pb.fieldInits {
		b.emitFieldInit(f)
	}
	for _, f := range b.pb.staticFieldInits {
		b.emitStaticFieldInit(f)
	}
	b.emitBlock(b.pb.body)
	b.emitImplicitReturn()
	b.e.factory.EmitBody(b.pb.handle, b.localTypes, b.instrs)
}

// --- tape bookkeeping ---

func (b *bodyEmitter) emit(op backend.Opcode, operand any) {
	ins := backend.Instr{Op: op, Operand: operand}
	if b.pending != "" {
		ins.Label = b.pending
		b.pending = ""
	}
	b.instrs = append(b.instrs, ins)
}

func (b *bodyEmitter) newLabel() string {
	b.labelSeq++
	return fmt.Sprintf("L%d", b.labelSeq)
}

// markLabel arranges for the next emitted instruction to carry name as its
// branch-target label.
func (b *bodyEmitter) markLabel(name string) {
	b.pending = name
}

func (b *bodyEmitter) labelFor(userName string) string {
	if l, ok := b.userLabels[userName]; ok {
		return l
	}
	l := b.newLabel()
	b.userLabels[userName] = l
	return l
}

func (b *bodyEmitter) pushScope() { b.env = &envScope{parent: b.env, vars: map[string]any{}} }
func (b *bodyEmitter) popScope()  { b.env = b.env.parent }

// lookup finds name as a local/parameter in the current scope chain, then
// as a field/property/literal/overload-set member of the body's owner.
func (b *bodyEmitter) lookup(name string) (any, bool) {
	for s := b.env; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return memberLookup(b.owner, name)
}

// memberLookup walks owner's super chain looking for name; it mirrors the
// resolver's own superChainController2 since that lookup state isn't
// preserved past Pass B.
func memberLookup(owner *types.TypeEntry, name string) (any, bool) {
	for cur := owner; cur != nil; {
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

func (b *bodyEmitter) declareLocal(local *types.LocalEntry) {
	local.Slot = b.nextLocal
	b.nextLocal++
	b.localTypes = append(b.localTypes, b.e.typeRef(local.VarType))
	b.env.vars[local.Name] = local
}

// --- slot-aware load/store helpers ---

func (b *bodyEmitter) emitLoadLocal(l *types.LocalEntry) {
	switch l.Slot {
	case 0:
		b.emit(backend.OpLdloc0, nil)
	case 1:
		b.emit(backend.OpLdloc1, nil)
	case 2:
		b.emit(backend.OpLdloc2, nil)
	case 3:
		b.emit(backend.OpLdloc3, nil)
	default:
		b.emit(backend.OpLdlocS, l.Slot)
	}
}

func (b *bodyEmitter) emitStoreLocal(l *types.LocalEntry) {
	switch l.Slot {
	case 0:
		b.emit(backend.OpStloc0, nil)
	case 1:
		b.emit(backend.OpStloc1, nil)
	case 2:
		b.emit(backend.OpStloc2, nil)
	case 3:
		b.emit(backend.OpStloc3, nil)
	default:
		b.emit(backend.OpStlocS, l.Slot)
	}
}

func (b *bodyEmitter) emitLoadAddrLocal(l *types.LocalEntry) { b.emit(backend.OpLdloca, l.Slot) }

// argSlot translates a parameter's logical (0-based, `this`-excluded) index
// into its CIL argument slot: instance methods reserve slot 0 for the
// implicit `this`, so their declared parameters start at slot 1.
func (b *bodyEmitter) argSlot(idx int) int {
	if b.pb.isStatic {
		return idx
	}
	return idx + 1
}

func (b *bodyEmitter) emitLoadParam(p *types.ParameterEntry) {
	switch slot := b.argSlot(p.Index); slot {
	case 0:
		b.emit(backend.OpLdarg0, nil)
	case 1:
		b.emit(backend.OpLdarg1, nil)
	case 2:
		b.emit(backend.OpLdarg2, nil)
	case 3:
		b.emit(backend.OpLdarg3, nil)
	default:
		b.emit(backend.OpLdargS, slot)
	}
}

func (b *bodyEmitter) emitStoreParam(p *types.ParameterEntry) {
	if slot := b.argSlot(p.Index); slot == 0 {
		b.emit(backend.OpStarg0, nil)
	} else {
		b.emit(backend.OpStargS, slot)
	}
}

func (b *bodyEmitter) emitLoadAddrParam(p *types.ParameterEntry) {
	b.emit(backend.OpLdarga, b.argSlot(p.Index))
}

func (b *bodyEmitter) emitLoadField(fe *types.FieldExpEntry, isStatic bool) {
	if isStatic {
		b.emit(backend.OpLdsfld, b.e.fieldHandles[fe])
	} else {
		b.emit(backend.OpLdfld, b.e.fieldHandles[fe])
	}
}

func (b *bodyEmitter) emitStoreField(fe *types.FieldExpEntry, isStatic bool) {
	if isStatic {
		b.emit(backend.OpStsfld, b.e.fieldHandles[fe])
	} else {
		b.emit(backend.OpStfld, b.e.fieldHandles[fe])
	}
}

// --- constructor/field-init plumbing (phase 4 prologue) ---

// externalCtorRef is handed to the factory for an implicit base()/this()
// call whose target constructor isn't one this program declared (the
// well-known roots System.Object/System.Exception and anything pulled in
// through type import, §4.4).
type externalCtorRef struct {
	Type any
}

func (b *bodyEmitter) emitCtorChain() {
	chain := b.pb.ctorChain
	b.emit(backend.OpLdarg0, nil)
	for _, a := range chain.Args {
		b.emitExpr(a)
	}
	if sym, ok := b.e.res.CtorChainSym[chain]; ok && sym != nil {
		b.emit(backend.OpCall, sym.RuntimeHandle)
		return
	}
	var targetOwner *types.TypeEntry
	if chain.IsThis {
		targetOwner = b.owner
	} else if s, ok := b.owner.Super().(*types.TypeEntry); ok {
		targetOwner = s
	}
	b.emit(backend.OpCall, b.defaultCtorHandle(targetOwner))
}

// defaultCtorHandle finds the parameterless constructor's runtime handle
// for owner, declared either explicitly or (declareImplicitCtor) on its
// behalf; an owner this program never declared (System.Object and
// friends) gets an externalCtorRef instead.
func (b *bodyEmitter) defaultCtorHandle(owner *types.TypeEntry) any {
	if owner != nil && owner.MemberScope != nil {
		if sym, ok := owner.MemberScope.OwnSymbol(".ctor"); ok {
			if set, ok := sym.(*types.OverloadSet); ok {
				for _, m := range set.Overloads {
					if len(m.Header.ParamTypes) == 0 {
						return m.RuntimeHandle
					}
				}
			}
		}
	}
	return &externalCtorRef{Type: b.e.typeRef(owner)}
}

func (b *bodyEmitter) emitFieldInit(f *ast.FieldDecl) {
	fe := b.e.res.FieldSym[f]
	if fe == nil {
		return
	}
	b.emit(backend.OpLdarg0, nil)
	b.emitExpr(f.Init)
	b.coerceTo(f.Init, fe.FieldType)
	b.emitStoreField(fe, false)
}

func (b *bodyEmitter) emitStaticFieldInit(f *ast.FieldDecl) {
	fe := b.e.res.FieldSym[f]
	if fe == nil {
		return
	}
	b.emitExpr(f.Init)
	b.coerceTo(f.Init, fe.FieldType)
	b.emitStoreField(fe, true)
}

// --- statements ---

func (b *bodyEmitter) emitBlock(blk *ast.BlockStmt) {
	if blk == nil {
		return
	}
	b.pushScope()
	for _, s := range blk.Statements {
		b.emitStmt(s)
	}
	b.popScope()
}

func (b *bodyEmitter) emitStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		b.emitBlock(s)
	case *ast.LocalVarDecl:
		b.emitLocalVarDecl(s)
	case *ast.ExprStmt:
		b.emitDiscard(s.Expression)
	case *ast.EmptyStmt:
		// nothing to emit
	case *ast.IfStmt:
		b.emitIf(s)
	case *ast.WhileStmt:
		b.emitWhile(s)
	case *ast.DoStmt:
		b.emitDo(s)
	case *ast.ForStmt:
		b.emitFor(s)
	case *ast.SwitchStmt:
		b.emitSwitch(s)
	case *ast.TryStmt:
		b.emitTry(s)
	case *ast.ThrowStmt:
		if s.Expr != nil {
			b.emitExpr(s.Expr)
			b.emit(backend.OpThrow, nil)
		} else {
			b.emit(backend.OpRethrow, nil)
		}
	case *ast.ReturnStmt:
		if s.Value != nil {
			b.emitExpr(s.Value)
			b.coerceTo(s.Value, b.pb.returnType)
		}
		b.emit(backend.OpRet, nil)
	case *ast.BreakStmt:
		if n := len(b.loopStack); n > 0 {
			b.emit(backend.OpBr, b.loopStack[n-1].breakLabel)
		}
	case *ast.ContinueStmt:
		for i := len(b.loopStack) - 1; i >= 0; i-- {
			if b.loopStack[i].continueLabel != "" {
				b.emit(backend.OpBr, b.loopStack[i].continueLabel)
				break
			}
		}
	case *ast.GotoStmt:
		b.emit(backend.OpBr, b.labelFor(s.Label))
	case *ast.LabelStmt:
		b.markLabel(b.labelFor(s.Name))
		b.emitStmt(s.Stmt)
	}
}

func (b *bodyEmitter) emitDiscard(e ast.Expression) {
	b.emitExpr(e)
	if t := b.e.res.TypeOf[e]; t == nil || !types.Equal(types.Unwrap(t), types.Void) {
		b.emit(backend.OpPop, nil)
	}
}

func (b *bodyEmitter) emitLocalVarDecl(s *ast.LocalVarDecl) {
	locals := b.e.res.LocalSym[s]
	for i, local := range locals {
		b.declareLocal(local)
		if i < len(s.Inits) && s.Inits[i] != nil {
			b.emitExpr(s.Inits[i])
			b.coerceTo(s.Inits[i], local.VarType)
			b.emitStoreLocal(local)
		}
	}
}

func (b *bodyEmitter) emitBranchFalse(cond ast.Expression, label string) {
	b.emitExpr(cond)
	b.emit(backend.OpBrfalse, label)
}

func (b *bodyEmitter) emitBranchTrue(cond ast.Expression, label string) {
	b.emitExpr(cond)
	b.emit(backend.OpBrtrue, label)
}

func (b *bodyEmitter) emitIf(s *ast.IfStmt) {
	elseLabel := b.newLabel()
	b.emitBranchFalse(s.Cond, elseLabel)
	b.emitStmt(s.Then)
	if s.Else != nil {
		endLabel := b.newLabel()
		b.emit(backend.OpBr, endLabel)
		b.markLabel(elseLabel)
		b.emitStmt(s.Else)
		b.markLabel(endLabel)
	} else {
		b.markLabel(elseLabel)
	}
}

func (b *bodyEmitter) emitWhile(s *ast.WhileStmt) {
	startLabel := b.newLabel()
	endLabel := b.newLabel()
	b.markLabel(startLabel)
	b.emitBranchFalse(s.Cond, endLabel)
	b.loopStack = append(b.loopStack, loopFrame{breakLabel: endLabel, continueLabel: startLabel})
	b.emitStmt(s.Body)
	b.loopStack = b.loopStack[:len(b.loopStack)-1]
	b.emit(backend.OpBr, startLabel)
	b.markLabel(endLabel)
}

func (b *bodyEmitter) emitDo(s *ast.DoStmt) {
	bodyLabel := b.newLabel()
	contLabel := b.newLabel()
	endLabel := b.newLabel()
	b.markLabel(bodyLabel)
	b.loopStack = append(b.loopStack, loopFrame{breakLabel: endLabel, continueLabel: contLabel})
	b.emitStmt(s.Body)
	b.loopStack = b.loopStack[:len(b.loopStack)-1]
	b.markLabel(contLabel)
	b.emitBranchTrue(s.Cond, bodyLabel)
	b.markLabel(endLabel)
}

func (b *bodyEmitter) emitFor(s *ast.ForStmt) {
	b.pushScope()
	if s.Init != nil {
		b.emitStmt(s.Init)
	}
	startLabel := b.newLabel()
	endLabel := b.newLabel()
	contLabel := b.newLabel()
	b.markLabel(startLabel)
	if s.Cond != nil {
		b.emitBranchFalse(s.Cond, endLabel)
	}
	b.loopStack = append(b.loopStack, loopFrame{breakLabel: endLabel, continueLabel: contLabel})
	b.emitStmt(s.Body)
	b.loopStack = b.loopStack[:len(b.loopStack)-1]
	b.markLabel(contLabel)
	for _, post := range s.Post {
		b.emitDiscard(post)
	}
	b.emit(backend.OpBr, startLabel)
	b.markLabel(endLabel)
	b.popScope()
}

// emitSwitch lowers a switch to a chain of tag comparisons followed by the
// case bodies in source order, each non-empty case branching to the shared
// end label once its statements run (this language has no implicit
// fallthrough from one case's statements into the next). A case with no
// statements of its own — `case 1: case 2: S;`, a grouped label — shares
// the following case's label, so its comparison branches straight to that
// case's body, since that's the only way a grouped label reaches S. The
// default case, wherever it appears in source, is tried last among the
// comparisons — source order of the case bodies themselves is otherwise
// preserved.
func (b *bodyEmitter) emitSwitch(s *ast.SwitchStmt) {
	endLabel := b.newLabel()
	tagType := b.e.res.TypeOf[s.Tag]
	tag := &types.LocalEntry{Name: "$switch", VarType: tagType}
	b.emitExpr(s.Tag)
	b.declareLocal(tag)
	b.emitStoreLocal(tag)

	// An instruction carries only one label, so a grouped label takes the
	// label of the case after it (the end label when it is the last case).
	caseLabels := make([]string, len(s.Cases))
	for i := len(s.Cases) - 1; i >= 0; i-- {
		switch {
		case len(s.Cases[i].Statements) > 0:
			caseLabels[i] = b.newLabel()
		case i+1 < len(s.Cases):
			caseLabels[i] = caseLabels[i+1]
		default:
			caseLabels[i] = endLabel
		}
	}
	defaultLabel := ""
	for i, c := range s.Cases {
		if c.Value == nil {
			defaultLabel = caseLabels[i]
			continue
		}
		b.emitLoadLocal(tag)
		b.emitExpr(c.Value)
		b.emit(backend.OpCeq, nil)
		b.emit(backend.OpBrtrue, caseLabels[i])
	}
	if defaultLabel != "" {
		b.emit(backend.OpBr, defaultLabel)
	} else {
		b.emit(backend.OpBr, endLabel)
	}

	b.loopStack = append(b.loopStack, loopFrame{breakLabel: endLabel})
	for i, c := range s.Cases {
		if len(c.Statements) == 0 {
			// Grouped case label: it shares the following case's label,
			// so its comparison already branches to that case's body.
			continue
		}
		b.markLabel(caseLabels[i])
		b.pushScope()
		for _, cs := range c.Statements {
			b.emitStmt(cs)
		}
		b.popScope()
		b.emit(backend.OpBr, endLabel)
	}
	b.loopStack = b.loopStack[:len(b.loopStack)-1]
	b.markLabel(endLabel)
}

func (b *bodyEmitter) emitTry(s *ast.TryStmt) {
	endLabel := b.newLabel()
	b.emit(backend.OpBeginTry, nil)
	b.emitBlock(s.Body)
	b.emit(backend.OpLeave, endLabel)

	for _, c := range s.Catches {
		excType := types.Type(types.Exception)
		if c.ExcType != nil {
			excType = b.e.resolveCatchType(c.ExcType)
		}
		b.emit(backend.OpBeginCatch, b.e.typeRef(excType))
		b.pushScope()
		if c.Name != "" {
			local := &types.LocalEntry{Name: c.Name, VarType: excType}
			b.declareLocal(local)
			b.emitStoreLocal(local)
		} else {
			b.emit(backend.OpPop, nil)
		}
		b.emitBlock(c.Body)
		b.popScope()
		b.emit(backend.OpLeave, endLabel)
	}

	if s.Finally != nil {
		b.emit(backend.OpBeginFinally, nil)
		b.emitBlock(s.Finally)
	}
	b.emit(backend.OpEndExceptionRegion, nil)
	b.markLabel(endLabel)
}

// emitImplicitReturn closes out every body with a terminal return so a
// well-formed tape never falls off the end, even though every explicit
// path already returns in a program this subset accepts.
func (b *bodyEmitter) emitImplicitReturn() {
	if b.pb.returnType == nil || types.Equal(types.Unwrap(b.pb.returnType), types.Void) {
		b.emit(backend.OpRet, nil)
		return
	}
	b.emitDefaultValue(b.pb.returnType)
	b.emit(backend.OpRet, nil)
}

// emitDefaultValue pushes T's default value: for a struct, a freshly
// zeroed temporary via initobj; for everything else (reference types and
// the remaining value types) the all-zero bit pattern, which this opcode
// set represents with ldc.i4.0 since it has no dedicated null-reference
// opcode.
func (b *bodyEmitter) emitDefaultValue(t types.Type) {
	if te, ok := types.Unwrap(t).(*types.TypeEntry); ok && te.GenreVal == types.GenreStruct {
		tmp := &types.LocalEntry{Name: "$default", VarType: t}
		b.declareLocal(tmp)
		b.emitLoadAddrLocal(tmp)
		b.emit(backend.OpInitobj, b.e.typeRef(t))
		b.emitLoadLocal(tmp)
		return
	}
	b.emit(backend.OpLdcI4_0, nil)
}
