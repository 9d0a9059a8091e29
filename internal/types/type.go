// Package types implements the compiler's symbol and type model: TypeEntry
// and its variants, the Scope/LookupController chain, and the overload
// resolution algorithm that methods and indexers share.
package types

import "strings"

// Genre distinguishes the declaration-level kind of a TypeEntry.
type Genre int

const (
	GenreClass Genre = iota
	GenreStruct
	GenreInterface
	GenreArray
	GenreRef
	GenreEnum
	GenrePrimitive
)

func (g Genre) String() string {
	switch g {
	case GenreClass:
		return "class"
	case GenreStruct:
		return "struct"
	case GenreInterface:
		return "interface"
	case GenreArray:
		return "array"
	case GenreRef:
		return "ref"
	case GenreEnum:
		return "enum"
	case GenrePrimitive:
		return "primitive"
	default:
		return "unknown"
	}
}

// Type is satisfied by every type-like symbol: TypeEntry and its variants.
type Type interface {
	Name() string
	Genre() Genre
	String() string
}

// Well-known primitive types. These back the source language's built-in
// type aliases (int, bool, char, string, void, object); the resolver
// installs them into the global scope under their lowercase alias names
// alongside their canonical runtime names, per the "primitive aliasing"
// scope-integrity exception.
var (
	Void    = &PrimitiveType{NameStr: "System.Void"}
	Int     = &PrimitiveType{NameStr: "System.Int32"}
	Char    = &PrimitiveType{NameStr: "System.Char"}
	Bool    = &PrimitiveType{NameStr: "System.Boolean"}
	String  = &PrimitiveType{NameStr: "System.String"}
	Object  = &TypeEntry{NameStr: "System.Object", GenreVal: GenreClass}
	Array   = &TypeEntry{NameStr: "System.Array", GenreVal: GenreClass, SuperVal: Object}
	Enum    = &TypeEntry{NameStr: "System.Enum", GenreVal: GenreClass, SuperVal: Object}
	Exception = &TypeEntry{NameStr: "System.Exception", GenreVal: GenreClass, SuperVal: Object}
)

// PrimitiveType represents a built-in value type alias (int, bool, char).
// PrimitiveType never has a member scope of its own: member access on a
// primitive resolves through its boxed class counterpart, which is out of
// scope for this subset (the language exposes no methods on primitives).
type PrimitiveType struct {
	NameStr string
}

func (p *PrimitiveType) Name() string  { return p.NameStr }
func (p *PrimitiveType) Genre() Genre  { return GenrePrimitive }
func (p *PrimitiveType) String() string { return p.NameStr }

// TypeEntry is a class, struct, or interface declaration's symbol.
type TypeEntry struct {
	NameStr        string
	GenreVal       Genre
	SuperVal       Type   // nil for System.Object and for interfaces
	Interfaces     []*TypeEntry
	ContainingType *TypeEntry // nil for a top-level type
	MemberScope    *Scope
	Modifiers      uint16 // mirrors ast.Modifiers; duplicated to avoid an import cycle
	RuntimeHandle  any    // set post-emit by the backend
	IsImported     bool
	IsInit         bool // true once pass A.2 has fully linked this entry
}

func (t *TypeEntry) Name() string  { return t.NameStr }
func (t *TypeEntry) Genre() Genre  { return t.GenreVal }
func (t *TypeEntry) String() string { return t.NameStr }

// Super returns the super type, or nil if t is System.Object or an
// interface.
func (t *TypeEntry) Super() Type { return t.SuperVal }

// IsAbstract reports whether t was declared with the `abstract` modifier
// (its ModAbstract bit is set in Modifiers).
func (t *TypeEntry) IsAbstract() bool { return t.Modifiers&uint16(1<<6) != 0 } // ModAbstract bit, see ast.Modifiers

// ArrayTypeEntry is the type of array values: element type plus rank.
// Its super type is always System.Array.
type ArrayTypeEntry struct {
	Element Type
	Rank    int
}

func (t *ArrayTypeEntry) Name() string { return t.String() }
func (t *ArrayTypeEntry) Genre() Genre { return GenreArray }
func (t *ArrayTypeEntry) String() string {
	return t.Element.String() + "[" + strings.Repeat(",", t.Rank-1) + "]"
}

// RefTypeEntry wraps a non-ref type for `ref`/`out` parameters. It never
// wraps another RefTypeEntry.
type RefTypeEntry struct {
	Inner Type
}

func (t *RefTypeEntry) Name() string   { return t.String() }
func (t *RefTypeEntry) Genre() Genre   { return GenreRef }
func (t *RefTypeEntry) String() string { return "ref " + t.Inner.String() }

// EnumTypeEntry is an enum declaration; its super is always System.Enum and
// it owns its literal-field symbols.
type EnumTypeEntry struct {
	NameStr        string
	ContainingType *TypeEntry
	Modifiers      uint16
	Literals       []*LiteralFieldEntry
	RuntimeHandle  any
}

func (t *EnumTypeEntry) Name() string   { return t.NameStr }
func (t *EnumTypeEntry) Genre() Genre   { return GenreEnum }
func (t *EnumTypeEntry) String() string { return t.NameStr }
func (t *EnumTypeEntry) Super() Type    { return Enum }

// Unwrap strips a RefTypeEntry wrapper, returning its inner type; any other
// Type is returned unchanged.
func Unwrap(t Type) Type {
	if r, ok := t.(*RefTypeEntry); ok {
		return r.Inner
	}
	return t
}

// Equal reports whether a and b name the same type. Distinct *TypeEntry
// instances are never equal even with the same name: every declared type
// gets exactly one TypeEntry, created once during Pass A.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if pa, ok := a.(*ArrayTypeEntry); ok {
		pb, ok := b.(*ArrayTypeEntry)
		return ok && pa.Rank == pb.Rank && Equal(pa.Element, pb.Element)
	}
	if pa, ok := a.(*RefTypeEntry); ok {
		pb, ok := b.(*RefTypeEntry)
		return ok && Equal(pa.Inner, pb.Inner)
	}
	return a == b
}
