// Package backend declares RuntimeTypeFactory, the capability the emitter
// drives to build types and method bodies, plus the bytecode opcode set
// method bodies are expressed in. The package itself ships no working
// code-generation backend — per spec, the real backend that turns this
// into an executable module is an external collaborator. See
// internal/backend/memfactory for the in-memory reference implementation
// used by tests.
package backend

// Opcode is the closed instruction set the emitter's method-body tape
// uses. Names follow their CIL counterparts where one exists.
type Opcode int

const (
	// Integer loading: shortest available form first.
	OpLdcI4M1 Opcode = iota // -1
	OpLdcI4_0
	OpLdcI4_1
	OpLdcI4_2
	OpLdcI4_3
	OpLdcI4_4
	OpLdcI4_5
	OpLdcI4_6
	OpLdcI4_7
	OpLdcI4_8
	OpLdcI4S // short form, [-128..127], Operand = int8 value
	OpLdcI4  // wide form, Operand = int32 value
	OpLdStr  // Operand = string constant

	// Argument/local load and store: slot-specialized for 0..3, else
	// Operand-indexed.
	OpLdarg0
	OpLdarg1
	OpLdarg2
	OpLdarg3
	OpLdargS // Operand = slot
	OpLdloc0
	OpLdloc1
	OpLdloc2
	OpLdloc3
	OpLdlocS // Operand = slot
	OpStarg0
	OpStargS // Operand = slot
	OpStloc0
	OpStloc1
	OpStloc2
	OpStloc3
	OpStlocS // Operand = slot
	OpLdloca // Operand = slot; address-of a local
	OpLdarga // Operand = slot; address-of a parameter

	// Fields and elements.
	OpLdfld  // Operand = FieldRef
	OpStfld  // Operand = FieldRef
	OpLdsfld // Operand = FieldRef (static)
	OpStsfld // Operand = FieldRef (static)
	OpLdelem // Operand = element TypeRef
	OpStelem // Operand = element TypeRef
	OpLdelema
	OpLdlen

	// Arithmetic, comparison, bitwise, shift.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpNeg
	OpAnd
	OpOr
	OpXor
	OpNot
	OpShl
	OpShr
	OpCeq
	OpCgt
	OpClt

	// Control flow.
	OpBr     // Operand = label
	OpBrtrue // Operand = label
	OpBrfalse
	OpDup
	OpPop
	OpRet
	OpLeave // Operand = label; exits a try/catch/finally region

	// Objects, casting, boxing.
	OpNewobj // Operand = MethodRef (a constructor)
	OpNewarr // Operand = TypeRef
	OpInitobj
	OpLdobj
	OpStobj
	OpBox   // Operand = TypeRef
	OpUnbox // Operand = TypeRef
	OpCastclass
	OpIsinst
	OpLdtoken // Operand = TypeRef; paired with a call to GetTypeFromHandle
	OpLdftn   // Operand = MethodRef

	// Calls and exceptions.
	OpCall    // Operand = MethodRef
	OpCallvirt
	OpThrow
	OpRethrow

	// Exception-region markers consumed by the backend's try/catch/
	// finally lowering; not real CIL opcodes, but the emitter's own
	// bookkeeping instructions recorded on the tape so a reference backend
	// can reconstruct region boundaries without a side table.
	OpBeginTry
	OpBeginCatch // Operand = TypeRef (the caught exception type)
	OpBeginFinally
	OpEndExceptionRegion
)

// Instr is one instruction on a method body's linear tape.
type Instr struct {
	Op      Opcode
	Operand any
	Label   string // set for branch targets so the backend can resolve them
}

// ParamFlow describes a parameter's passing convention, threaded through to
// the backend so it can emit the right calling-convention metadata.
type ParamFlow int

const (
	FlowByValue ParamFlow = iota
	FlowRef
	FlowOut
)

// MemberModifiers mirrors ast.Modifiers without importing the ast package,
// since the emitter translates resolved types.TypeEntry/MethodExpEntry
// modifiers bits (themselves a copy of ast.Modifiers, see types.TypeEntry)
// into this value when it calls the factory.
type MemberModifiers uint16

// RuntimeTypeFactory is the capability the emitter drives. It has no
// in-scope implementation beyond internal/backend/memfactory: the real
// module-writing backend is an external collaborator (spec §1), so this
// interface exists to keep the emitter testable against a recorder rather
// than a live host runtime.
type RuntimeTypeFactory interface {
	// BeginOutput starts a new output module named assemblyName.
	BeginOutput(assemblyName string)

	// DeclareType registers a type declaration (class/struct/interface/
	// enum) ahead of its members, returning an opaque handle the emitter
	// threads through every later call that targets this type. Calling
	// DeclareType twice for the same fully-qualified name is a no-op that
	// returns the original handle (emitter idempotence, per spec §8).
	DeclareType(fullName string, kind TypeKind, mods MemberModifiers, super any, interfaces []any) any

	// DeclareField registers an instance or static field on typeHandle.
	DeclareField(typeHandle any, name string, fieldType any, mods MemberModifiers) any

	// DeclareMethod registers a method (or constructor, when isCtor) on
	// typeHandle and returns a handle used to emit its body and to
	// reference it as a call target from other bodies.
	DeclareMethod(typeHandle any, name string, paramTypes []any, paramFlow []ParamFlow, returnType any, mods MemberModifiers, isCtor bool) any

	// DeclareProperty registers a property (or indexer, when indexerParams
	// is non-empty) with its get/set method handles, which may be nil.
	DeclareProperty(typeHandle any, name string, propType any, getter, setter any, indexerParams []any) any

	// DeclareEvent registers an event backed by a delegate type.
	DeclareEvent(typeHandle any, name string, delegateType any) any

	// EmitBody installs the linear instruction tape for a previously
	// declared method handle.
	EmitBody(methodHandle any, localTypes []any, instructions []Instr)

	// SetEntryPoint marks methodHandle as the module's Main entry point.
	SetEntryPoint(methodHandle any)

	// EndOutput finalizes and persists the module to path, returning an
	// error that the emitter wraps as diag.EmitIOError on failure.
	EndOutput(path string) error
}

// TypeKind mirrors types.Genre for the subset of genres a RuntimeTypeFactory
// cares about when declaring a type (arrays, refs, and primitives are never
// declared — only class/struct/interface/enum are).
type TypeKind int

const (
	KindClass TypeKind = iota
	KindStruct
	KindInterface
	KindEnum
)
