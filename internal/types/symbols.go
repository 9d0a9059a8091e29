package types

import "github.com/csc-go/compiler/pkg/token"

// MethodHeaderEntry is one overload's signature: parameter types (in
// declaration order) plus return type. It exists separately from
// MethodExpEntry so Pass A.2 can build and compare signatures before a
// method's body (and therefore its full MethodExpEntry) is resolved.
type MethodHeaderEntry struct {
	ParamTypes   []Type
	ParamIsRef   []bool // parallel to ParamTypes: true for ref parameters
	ParamIsOut   []bool // parallel to ParamTypes: true for out parameters
	IsVariadic   bool // trailing parameter is `params T[]`
	VariadicElem Type // element type of the trailing params array, if IsVariadic
	ReturnType   Type // Void for a procedure
}

// MethodExpEntry is a single method overload: its header plus declaration
// metadata. Each overload's decorated key (DecoratedKey) is built from its
// name and its header's ParamTypes, per the overload-resolution scheme.
type MethodExpEntry struct {
	Name           string
	Header         *MethodHeaderEntry
	Modifiers      uint16
	ContainingType *TypeEntry
	IsCtor         bool
	Overrides      *MethodExpEntry // the base method this overrides, if ModOverride
	RuntimeHandle  any
	Pos            token.Range
}

// OverloadSet collects every MethodExpEntry sharing a name within one
// containing type. Constructors use the reserved name ".ctor".
type OverloadSet struct {
	Name      string
	Overloads []*MethodExpEntry
}

func (s *OverloadSet) Add(m *MethodExpEntry) { s.Overloads = append(s.Overloads, m) }

// FieldExpEntry is an instance or static field.
type FieldExpEntry struct {
	Name           string
	FieldType      Type
	Modifiers      uint16
	ContainingType *TypeEntry
	Pos            token.Range
}

// LiteralFieldEntry is an enum member: a const field of its enum type with
// a fixed integral value.
type LiteralFieldEntry struct {
	Name      string
	EnumType  *EnumTypeEntry
	Value     int64
	Pos       token.Range
}

// PropertyExpEntry is a property: a get/set accessor pair over a backing
// type, looked up by name like a field but emitted as accessor calls.
type PropertyExpEntry struct {
	Name           string
	PropType       Type
	Modifiers      uint16
	ContainingType *TypeEntry
	Getter         *MethodExpEntry // nil if write-only
	Setter         *MethodExpEntry // nil if read-only
	// IndexerParams is non-nil for an indexer (`this[...]`); indexer lookup
	// dispatches by parameter signature rather than by name alone.
	IndexerParams []Type
	Pos           token.Range
}

// EventExpEntry is an event: add/remove accessors over a delegate-typed
// backing field.
type EventExpEntry struct {
	Name           string
	DelegateType   Type
	Modifiers      uint16
	ContainingType *TypeEntry
	Pos            token.Range
}

// LocalEntry is a local variable or `catch` binding.
type LocalEntry struct {
	Name     string
	VarType  Type
	ReadOnly bool
	Slot     int // assigned by the emitter
}

// ParameterEntry is a formal method parameter.
type ParameterEntry struct {
	Name     string
	ParamType Type
	IsRef    bool
	IsOut    bool
	Index    int
}

// LabelEntry is a `goto` target within one method body.
type LabelEntry struct {
	Name string
}

// NamespaceEntry is a namespace: a named scope shared across every file
// that reopens it with a matching `namespace` declaration.
type NamespaceEntry struct {
	Name   string
	Scope  *Scope
}
