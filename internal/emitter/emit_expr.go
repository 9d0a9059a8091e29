package emitter

import (
	"github.com/csc-go/compiler/internal/ast"
	"github.com/csc-go/compiler/internal/backend"
	"github.com/csc-go/compiler/internal/types"
)

// emitExpr pushes e's value onto the stack. Every expression kind leaves
// exactly one value, except a call to a void method, which leaves none
// (emitDiscard is what drops an unused non-void value; after a void call it
// pops nothing).
func (b *bodyEmitter) emitExpr(e ast.Expression) {
	switch ex := e.(type) {
	case *ast.IntLiteral:
		b.emitIntConst(ex.Value)
	case *ast.CharLiteral:
		b.emitIntConst(int64(ex.Value))
	case *ast.BoolLiteral:
		if ex.Value {
			b.emit(backend.OpLdcI4_1, nil)
		} else {
			b.emit(backend.OpLdcI4_0, nil)
		}
	case *ast.StringLiteral:
		b.emit(backend.OpLdStr, ex.Value)
	case *ast.NullLiteral:
		// Stands in for ldnull; see emitDefaultValue.
		b.emit(backend.OpLdcI4_0, nil)
	case *ast.Identifier:
		b.emitIdentifierLoad(ex)
	case *ast.ThisExpr:
		b.emit(backend.OpLdarg0, nil)
	case *ast.BaseExpr:
		b.emit(backend.OpLdarg0, nil)
	case *ast.BinaryExpr:
		b.emitBinary(ex)
	case *ast.UnaryExpr:
		b.emitUnary(ex)
	case *ast.IncDecExpr:
		b.emitIncDec(ex)
	case *ast.AssignExpr:
		b.emitAssign(ex)
	case *ast.ConditionalExpr:
		b.emitConditional(ex)
	case *ast.FieldAccessExpr:
		b.emitFieldAccessLoad(ex)
	case *ast.CallExpr:
		b.emitCall(ex)
	case *ast.ArgWrapperExpr:
		b.emitExpr(ex.Inner)
	case *ast.MethodPointerExpr:
		b.emitMethodPointer(ex)
	case *ast.NewObjectExpr:
		b.emitNewObject(ex)
	case *ast.NewArrayExpr:
		b.emitNewArray(ex)
	case *ast.ArrayAccessExpr:
		b.emitArrayAccessLoad(ex)
	case *ast.CastExpr:
		b.emitCast(ex)
	case *ast.IsExpr:
		b.emitExpr(ex.Operand)
		b.emit(backend.OpIsinst, b.e.typeRef(b.e.resolveTypeExprBestEffort(ex.Type)))
		// isinst leaves null-or-object; this opcode set has no unsigned
		// compare-with-null, so approximate "is" with a signed compare
		// against the same zero stand-in emitDefaultValue uses for null.
		b.emit(backend.OpLdcI4_0, nil)
		b.emit(backend.OpCgt, nil)
	case *ast.AsExpr:
		b.emitExpr(ex.Operand)
		b.emit(backend.OpIsinst, b.e.typeRef(b.e.resolveTypeExprBestEffort(ex.Type)))
	case *ast.TypeOfExpr:
		b.emit(backend.OpLdtoken, b.e.typeRef(b.e.resolveTypeExprBestEffort(ex.Type)))
	}
}

// emitIntConst picks the shortest available form for a constant int value.
func (b *bodyEmitter) emitIntConst(v int64) {
	switch {
	case v == -1:
		b.emit(backend.OpLdcI4M1, nil)
	case v >= 0 && v <= 8:
		b.emit(backend.Opcode(int(backend.OpLdcI4_0)+int(v)), nil)
	case v >= -128 && v <= 127:
		b.emit(backend.OpLdcI4S, int8(v))
	default:
		b.emit(backend.OpLdcI4, int32(v))
	}
}

// --- name resolution shared by load and store paths ---

func (b *bodyEmitter) emitIdentifierLoad(ex *ast.Identifier) {
	sym, ok := b.lookup(ex.Value)
	if !ok {
		return
	}
	switch s := sym.(type) {
	case *types.LocalEntry:
		b.emitLoadLocal(s)
	case *types.ParameterEntry:
		b.emitLoadParam(s)
	case *types.FieldExpEntry:
		isStatic := s.Modifiers&uint16(ast.ModStatic) != 0
		if !isStatic {
			b.emit(backend.OpLdarg0, nil)
		}
		b.emitLoadField(s, isStatic)
	case *types.PropertyExpEntry:
		b.emitPropertyGet(s, nil)
	case *types.LiteralFieldEntry:
		b.emit(backend.OpLdsfld, b.e.enumLiteralHandles[s])
	case types.Type:
		// A bare type name used as a value only ever appears as the
		// receiver of a further member access or call; nothing to push.
	}
}

// emitPropertyGet calls a property's getter. target is nil for an implicit
// `this` receiver on an instance property (the static case pushes nothing).
func (b *bodyEmitter) emitPropertyGet(pe *types.PropertyExpEntry, target ast.Expression) {
	isStatic := pe.Modifiers&uint16(ast.ModStatic) != 0
	if !isStatic {
		if target == nil {
			b.emit(backend.OpLdarg0, nil)
		} else {
			b.emitExpr(target)
		}
	}
	op := backend.OpCall
	if !isStatic && pe.Modifiers&uint16(ast.ModVirtual|ast.ModAbstract|ast.ModOverride) != 0 {
		op = backend.OpCallvirt
	}
	var handle any
	if pe.Getter != nil {
		handle = pe.Getter.RuntimeHandle
	}
	b.emit(op, handle)
}

func (b *bodyEmitter) emitPropertySet(pe *types.PropertyExpEntry, target ast.Expression) {
	isStatic := pe.Modifiers&uint16(ast.ModStatic) != 0
	op := backend.OpCall
	if !isStatic && pe.Modifiers&uint16(ast.ModVirtual|ast.ModAbstract|ast.ModOverride) != 0 {
		op = backend.OpCallvirt
	}
	var handle any
	if pe.Setter != nil {
		handle = pe.Setter.RuntimeHandle
	}
	b.emit(op, handle)
	_ = target // the receiver, if any, is pushed by the caller before the value
}

// --- field access ---

// fieldAccessTargetPushed evaluates ex.Target (or, for an implicit `this`
// access, pushes `this`) unless the member turns out to be static, in
// which case nothing is pushed. It returns the resolved member symbol.
// arrayLengthSentinel is fieldAccessTargetPushed's return value for the one
// field-like member ArrayTypeEntry exposes (`a.Length`) without a declared
// FieldExpEntry behind it.
var arrayLengthSentinel = &struct{}{}

func (b *bodyEmitter) fieldAccessTargetPushed(ex *ast.FieldAccessExpr) (any, bool) {
	if ex.Target != nil && ex.Name == "Length" {
		if _, ok := types.Unwrap(b.e.res.TypeOf[ex.Target]).(*types.ArrayTypeEntry); ok {
			b.emitExpr(ex.Target)
			return arrayLengthSentinel, true
		}
	}
	var owner *types.TypeEntry
	if ex.Target == nil {
		owner = b.owner
	} else if t := b.e.res.TypeOf[ex.Target]; t != nil {
		owner, _ = types.Unwrap(t).(*types.TypeEntry)
	}
	if owner == nil {
		return nil, false
	}
	sym, found := memberLookup(owner, ex.Name)
	if !found {
		return nil, false
	}
	isStatic := false
	switch s := sym.(type) {
	case *types.FieldExpEntry:
		isStatic = s.Modifiers&uint16(ast.ModStatic) != 0
	case *types.PropertyExpEntry:
		isStatic = s.Modifiers&uint16(ast.ModStatic) != 0
	}
	if !isStatic {
		if ex.Target == nil {
			b.emit(backend.OpLdarg0, nil)
		} else if _, ok := ex.Target.(*ast.BaseExpr); ok {
			b.emit(backend.OpLdarg0, nil)
		} else {
			b.emitExpr(ex.Target)
		}
	}
	return sym, true
}

func (b *bodyEmitter) emitFieldAccessLoad(ex *ast.FieldAccessExpr) {
	sym, ok := b.fieldAccessTargetPushed(ex)
	if !ok {
		return
	}
	if sym == arrayLengthSentinel {
		b.emit(backend.OpLdlen, nil)
		return
	}
	switch s := sym.(type) {
	case *types.FieldExpEntry:
		b.emitLoadField(s, s.Modifiers&uint16(ast.ModStatic) != 0)
	case *types.PropertyExpEntry:
		isStatic := s.Modifiers&uint16(ast.ModStatic) != 0
		op := backend.OpCall
		if !isStatic && s.Modifiers&uint16(ast.ModVirtual|ast.ModAbstract|ast.ModOverride) != 0 {
			op = backend.OpCallvirt
		}
		var handle any
		if s.Getter != nil {
			handle = s.Getter.RuntimeHandle
		}
		b.emit(op, handle)
	case *types.EventExpEntry:
		// Bare event reference as a value: not separately modeled (see
		// resolveFieldAccess); nothing meaningful to push beyond the
		// receiver already on the stack, so pop it back off.
		b.emit(backend.OpPop, nil)
	}
}

// --- array access ---

func (b *bodyEmitter) emitArrayAccessLoad(ex *ast.ArrayAccessExpr) {
	if idx, ok := b.e.res.IndexerSym[ex]; ok && idx != nil {
		b.emitExpr(ex.Array)
		b.emitExpr(ex.Index)
		op := backend.OpCall
		if idx.Getter != nil && idx.Getter.Modifiers&uint16(ast.ModVirtual|ast.ModAbstract|ast.ModOverride) != 0 {
			op = backend.OpCallvirt
		}
		var handle any
		if idx.Getter != nil {
			handle = idx.Getter.RuntimeHandle
		}
		b.emit(op, handle)
		return
	}
	b.emitExpr(ex.Array)
	b.emitExpr(ex.Index)
	elem := b.e.res.TypeOf[ex]
	b.emit(backend.OpLdelem, b.e.typeRef(elem))
}

func (b *bodyEmitter) emitArrayAccessAddr(ex *ast.ArrayAccessExpr) {
	b.emitExpr(ex.Array)
	b.emitExpr(ex.Index)
	elem := b.e.res.TypeOf[ex]
	b.emit(backend.OpLdelema, b.e.typeRef(elem))
}

// --- binary / unary / inc-dec ---

func (b *bodyEmitter) emitBinary(ex *ast.BinaryExpr) {
	switch ex.Operator {
	case "&&":
		b.emitShortCircuit(ex, false)
		return
	case "||":
		b.emitShortCircuit(ex, true)
		return
	}
	b.emitExpr(ex.Left)
	b.emitExpr(ex.Right)
	switch ex.Operator {
	case "+":
		b.emit(backend.OpAdd, nil)
	case "-":
		b.emit(backend.OpSub, nil)
	case "*":
		b.emit(backend.OpMul, nil)
	case "/":
		b.emit(backend.OpDiv, nil)
	case "%":
		b.emit(backend.OpRem, nil)
	case "&":
		b.emit(backend.OpAnd, nil)
	case "|":
		b.emit(backend.OpOr, nil)
	case "^":
		b.emit(backend.OpXor, nil)
	case "<<":
		b.emit(backend.OpShl, nil)
	case ">>":
		b.emit(backend.OpShr, nil)
	case "==":
		b.emit(backend.OpCeq, nil)
	case "!=":
		b.emit(backend.OpCeq, nil)
		b.emit(backend.OpLdcI4_0, nil)
		b.emit(backend.OpCeq, nil)
	case "<":
		b.emit(backend.OpClt, nil)
	case ">":
		b.emit(backend.OpCgt, nil)
	case "<=":
		// Decided lowering: a <= b is !(a > b).
		b.emit(backend.OpCgt, nil)
		b.emit(backend.OpLdcI4_0, nil)
		b.emit(backend.OpCeq, nil)
	case ">=":
		// a >= b is !(a < b).
		b.emit(backend.OpClt, nil)
		b.emit(backend.OpLdcI4_0, nil)
		b.emit(backend.OpCeq, nil)
	}
}

// emitShortCircuit implements && (shortOnTrue=false, i.e. short-circuits on
// false) and || (shortOnTrue=true) without evaluating the right operand unless
// it's needed: evaluate the left, dup it, and branch past the right operand
// straight to the result if it already decides the outcome.
func (b *bodyEmitter) emitShortCircuit(ex *ast.BinaryExpr, shortOnTrue bool) {
	endLabel := b.newLabel()
	b.emitExpr(ex.Left)
	b.emit(backend.OpDup, nil)
	if shortOnTrue {
		b.emit(backend.OpBrtrue, endLabel)
	} else {
		b.emit(backend.OpBrfalse, endLabel)
	}
	b.emit(backend.OpPop, nil)
	b.emitExpr(ex.Right)
	b.markLabel(endLabel)
}

func (b *bodyEmitter) emitUnary(ex *ast.UnaryExpr) {
	b.emitExpr(ex.Operand)
	switch ex.Operator {
	case "!":
		b.emit(backend.OpLdcI4_0, nil)
		b.emit(backend.OpCeq, nil)
	case "-":
		b.emit(backend.OpNeg, nil)
	case "+":
		// no-op
	case "~":
		b.emit(backend.OpNot, nil)
	}
}

// emitIncDec reads the operand into a temporary, computes its new value
// into a second temporary, stores that into the operand, and leaves
// whichever temporary (old for postfix, new for prefix) the expression's
// value.
func (b *bodyEmitter) emitIncDec(ex *ast.IncDecExpr) {
	t := b.e.res.TypeOf[ex.Operand]
	b.emitLValueLoad(ex.Operand)
	oldTmp := &types.LocalEntry{Name: "$old", VarType: t}
	b.declareLocal(oldTmp)
	b.emitStoreLocal(oldTmp)

	b.emitLoadLocal(oldTmp)
	b.emitIntConst(1)
	if ex.Operator == "++" {
		b.emit(backend.OpAdd, nil)
	} else {
		b.emit(backend.OpSub, nil)
	}
	newTmp := &types.LocalEntry{Name: "$new", VarType: t}
	b.declareLocal(newTmp)
	b.emitStoreLocal(newTmp)

	b.emitStoreToTarget(ex.Operand, newTmp)
	if ex.IsPrefix {
		b.emitLoadLocal(newTmp)
	} else {
		b.emitLoadLocal(oldTmp)
	}
}

// --- assignment ---

// emitAssign always routes the computed value through a temporary local
// before storing it: an instance field/property/indexer target needs its
// receiver (`this`, or an arbitrary target expression) pushed immediately
// before the store, which is after the value would otherwise already be
// on the stack. Going through a temporary sidesteps reordering the stack
// in place and keeps every target kind's store uniform.
func (b *bodyEmitter) emitAssign(ex *ast.AssignExpr) {
	dstType := b.e.res.TypeOf[ex.Target]
	if ex.Operator == "=" {
		b.emitExpr(ex.Value)
		b.coerceTo(ex.Value, dstType)
	} else {
		b.emitLValueLoad(ex.Target)
		b.emitExpr(ex.Value)
		switch ex.Operator {
		case "+=":
			b.emit(backend.OpAdd, nil)
		case "-=":
			b.emit(backend.OpSub, nil)
		case "*=":
			b.emit(backend.OpMul, nil)
		case "/=":
			b.emit(backend.OpDiv, nil)
		case "%=":
			b.emit(backend.OpRem, nil)
		case "&=":
			b.emit(backend.OpAnd, nil)
		case "|=":
			b.emit(backend.OpOr, nil)
		case "^=":
			b.emit(backend.OpXor, nil)
		case "<<=":
			b.emit(backend.OpShl, nil)
		case ">>=":
			b.emit(backend.OpShr, nil)
		}
	}
	tmp := &types.LocalEntry{Name: "$assign", VarType: dstType}
	b.declareLocal(tmp)
	b.emitStoreLocal(tmp)
	b.emitStoreToTarget(ex.Target, tmp)
	b.emitLoadLocal(tmp)
}

func (b *bodyEmitter) fieldStaticness(ex *ast.FieldAccessExpr) (any, bool) {
	var owner *types.TypeEntry
	if ex.Target == nil {
		owner = b.owner
	} else if t := b.e.res.TypeOf[ex.Target]; t != nil {
		owner, _ = types.Unwrap(t).(*types.TypeEntry)
	}
	if owner == nil {
		return nil, false
	}
	sym, found := memberLookup(owner, ex.Name)
	if !found {
		return nil, false
	}
	switch s := sym.(type) {
	case *types.FieldExpEntry:
		return s, s.Modifiers&uint16(ast.ModStatic) != 0
	case *types.PropertyExpEntry:
		return s, s.Modifiers&uint16(ast.ModStatic) != 0
	}
	return sym, false
}

// emitLValueLoad loads target's current value, used by compound
// assignment and ++/-- to read the starting value.
func (b *bodyEmitter) emitLValueLoad(target ast.Expression) {
	switch t := target.(type) {
	case *ast.Identifier:
		b.emitIdentifierLoad(t)
	case *ast.FieldAccessExpr:
		b.emitFieldAccessLoad(t)
	case *ast.ArrayAccessExpr:
		b.emitArrayAccessLoad(t)
	}
}

// emitStoreToTarget stores tmp's value into target: it pushes whatever
// receiver the target needs (nothing for a local/parameter/static member,
// `this` or an arbitrary expression otherwise) immediately before
// reloading tmp and issuing the store, so the receiver and value always
// reach the store opcode in the right order regardless of what was
// already on the stack when the value was computed.
func (b *bodyEmitter) emitStoreToTarget(target ast.Expression, tmp *types.LocalEntry) {
	switch t := target.(type) {
	case *ast.Identifier:
		sym, _ := b.lookup(t.Value)
		switch s := sym.(type) {
		case *types.LocalEntry:
			b.emitLoadLocal(tmp)
			b.emitStoreLocal(s)
		case *types.ParameterEntry:
			b.emitLoadLocal(tmp)
			b.emitStoreParam(s)
		case *types.FieldExpEntry:
			isStatic := s.Modifiers&uint16(ast.ModStatic) != 0
			if !isStatic {
				b.emit(backend.OpLdarg0, nil)
			}
			b.emitLoadLocal(tmp)
			b.emitStoreField(s, isStatic)
		case *types.PropertyExpEntry:
			isStatic := s.Modifiers&uint16(ast.ModStatic) != 0
			if !isStatic {
				b.emit(backend.OpLdarg0, nil)
			}
			b.emitLoadLocal(tmp)
			b.emitPropertySet(s, nil)
		}
	case *ast.FieldAccessExpr:
		sym, isStatic := b.fieldStaticness(t)
		if !isStatic {
			if t.Target == nil {
				b.emit(backend.OpLdarg0, nil)
			} else {
				b.emitExpr(t.Target)
			}
		}
		b.emitLoadLocal(tmp)
		switch s := sym.(type) {
		case *types.FieldExpEntry:
			b.emitStoreField(s, isStatic)
		case *types.PropertyExpEntry:
			b.emitPropertySet(s, t.Target)
		}
	case *ast.ArrayAccessExpr:
		if idx, ok := b.e.res.IndexerSym[t]; ok && idx != nil {
			b.emitExpr(t.Array)
			b.emitExpr(t.Index)
			b.emitLoadLocal(tmp)
			op := backend.OpCall
			if idx.Setter != nil && idx.Setter.Modifiers&uint16(ast.ModVirtual|ast.ModAbstract|ast.ModOverride) != 0 {
				op = backend.OpCallvirt
			}
			var handle any
			if idx.Setter != nil {
				handle = idx.Setter.RuntimeHandle
			}
			b.emit(op, handle)
			return
		}
		b.emitExpr(t.Array)
		b.emitExpr(t.Index)
		b.emitLoadLocal(tmp)
		elem := b.e.res.TypeOf[t]
		b.emit(backend.OpStelem, b.e.typeRef(elem))
	}
}

// --- conditional ---

func (b *bodyEmitter) emitConditional(ex *ast.ConditionalExpr) {
	elseLabel := b.newLabel()
	endLabel := b.newLabel()
	b.emitBranchFalse(ex.Cond, elseLabel)
	b.emitExpr(ex.Then)
	b.emit(backend.OpBr, endLabel)
	b.markLabel(elseLabel)
	b.emitExpr(ex.Else)
	b.markLabel(endLabel)
}

// --- calls ---

func (b *bodyEmitter) emitCall(ex *ast.CallExpr) {
	me := b.e.res.CallSym[ex]
	if me == nil {
		return
	}
	isStatic := me.Modifiers&uint16(ast.ModStatic) != 0
	nonVirtual := false
	if !isStatic {
		switch callee := ex.Callee.(type) {
		case *ast.Identifier:
			b.emit(backend.OpLdarg0, nil)
		case *ast.FieldAccessExpr:
			if callee.Target == nil {
				b.emit(backend.OpLdarg0, nil)
			} else if _, ok := callee.Target.(*ast.BaseExpr); ok {
				b.emit(backend.OpLdarg0, nil)
				nonVirtual = true
			} else {
				b.emitExpr(callee.Target)
			}
		}
	}
	for i, a := range ex.Args {
		b.emitArg(a, me, i)
	}
	op := backend.OpCall
	if !isStatic && !nonVirtual {
		if me.ContainingType != nil && me.ContainingType.GenreVal == types.GenreInterface {
			op = backend.OpCallvirt
		} else if me.Modifiers&uint16(ast.ModVirtual|ast.ModAbstract|ast.ModOverride) != 0 {
			op = backend.OpCallvirt
		}
	}
	b.emit(op, me.RuntimeHandle)
}

func (b *bodyEmitter) emitArg(a ast.Expression, me *types.MethodExpEntry, idx int) {
	if aw, ok := a.(*ast.ArgWrapperExpr); ok {
		b.emitAddressOf(aw.Inner)
		return
	}
	b.emitExpr(a)
	if me.Header != nil && idx < len(me.Header.ParamTypes) {
		b.coerceTo(a, me.Header.ParamTypes[idx])
	}
}

// emitAddressOf pushes an address for a ref/out argument. Locals and
// parameters use OpLdloca/OpLdarga and array elements use OpLdelema; a
// field ref/out target falls back to passing its current value, since
// there is no field-address opcode (OpLdflda) to round-trip the mutation
// back out.
func (b *bodyEmitter) emitAddressOf(e ast.Expression) {
	if id, ok := e.(*ast.Identifier); ok {
		if sym, ok := b.lookup(id.Value); ok {
			switch s := sym.(type) {
			case *types.LocalEntry:
				b.emitLoadAddrLocal(s)
				return
			case *types.ParameterEntry:
				b.emitLoadAddrParam(s)
				return
			}
		}
	}
	if aa, ok := e.(*ast.ArrayAccessExpr); ok {
		b.emitArrayAccessAddr(aa)
		return
	}
	b.emitExpr(e)
}

func (b *bodyEmitter) emitMethodPointer(ex *ast.MethodPointerExpr) {
	var owner *types.TypeEntry
	if ex.Target != nil {
		if t := b.e.res.TypeOf[ex.Target]; t != nil {
			owner, _ = types.Unwrap(t).(*types.TypeEntry)
		}
	} else {
		owner = b.owner
	}
	if owner == nil {
		return
	}
	sym, found := memberLookup(owner, ex.Name)
	if !found {
		return
	}
	set, ok := sym.(*types.OverloadSet)
	if !ok || len(set.Overloads) == 0 {
		return
	}
	b.emit(backend.OpLdftn, set.Overloads[0].RuntimeHandle)
}

// --- object/array construction ---

func (b *bodyEmitter) emitNewObject(ex *ast.NewObjectExpr) {
	ctor := b.e.res.CtorSym[ex]
	for _, a := range ex.Args {
		b.emitExpr(a)
	}
	t := b.e.res.TypeOf[ex]
	owner, _ := types.Unwrap(t).(*types.TypeEntry)
	var handle any
	if ctor != nil {
		handle = ctor.RuntimeHandle
	} else {
		handle = b.defaultCtorHandle(owner)
	}
	b.emit(backend.OpNewobj, handle)
}

func (b *bodyEmitter) emitNewArray(ex *ast.NewArrayExpr) {
	elemType := b.e.resolveTypeExprBestEffort(ex.ElementType)
	elemRef := b.e.typeRef(elemType)
	if ex.Initializer != nil {
		b.emitIntConst(int64(len(ex.Initializer)))
		b.emit(backend.OpNewarr, elemRef)
		for i, item := range ex.Initializer {
			b.emit(backend.OpDup, nil)
			b.emitIntConst(int64(i))
			b.emitExpr(item)
			b.coerceTo(item, elemType)
			b.emit(backend.OpStelem, elemRef)
		}
		return
	}
	b.emitExpr(ex.Length)
	b.emit(backend.OpNewarr, elemRef)
}

// --- casts ---

func (b *bodyEmitter) emitCast(ex *ast.CastExpr) {
	b.emitExpr(ex.Operand)
	target := b.e.resolveTypeExprBestEffort(ex.Type)
	srcType := b.e.res.TypeOf[ex.Operand]
	b.coerceCast(srcType, target)
}

// coerceCast inserts the box/unbox/castclass this subset's numeric and
// reference conversions need. Numeric widenings (char -> int) and
// identity conversions need no instruction at all.
func (b *bodyEmitter) coerceCast(src, dst types.Type) {
	if src == nil || dst == nil {
		return
	}
	su, du := types.Unwrap(src), types.Unwrap(dst)
	if types.Equal(su, du) {
		return
	}
	dstIsValue := types.IsValueType(du)
	srcIsValue := types.IsValueType(su)
	switch {
	case srcIsValue && !dstIsValue:
		b.emit(backend.OpBox, b.e.typeRef(src))
	case !srcIsValue && dstIsValue:
		b.emit(backend.OpUnbox, b.e.typeRef(dst))
	case !srcIsValue && !dstIsValue:
		b.emit(backend.OpCastclass, b.e.typeRef(dst))
	}
	// value-to-value (e.g. char -> int) needs no conversion opcode: both
	// share the same 32-bit representation in this subset.
}

// coerceTo inserts a boxing conversion when expr's static type is a value
// type but the destination (a field/parameter/return/array-element slot)
// is System.Object or another reference type; this is the one implicit
// conversion the language performs without a cast.
func (b *bodyEmitter) coerceTo(expr ast.Expression, dst types.Type) {
	if dst == nil {
		return
	}
	src := b.e.res.TypeOf[expr]
	if src == nil {
		return
	}
	su, du := types.Unwrap(src), types.Unwrap(dst)
	if types.IsValueType(su) && !types.IsValueType(du) {
		b.emit(backend.OpBox, b.e.typeRef(src))
	}
}
