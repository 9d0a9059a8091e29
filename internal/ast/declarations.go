package ast

import (
	"bytes"
	"strings"

	"github.com/csc-go/compiler/pkg/token"
)

// UsingDecl is a `using Some.Namespace;` clause.
type UsingDecl struct {
	Range     token.Range
	Namespace string
}

func (d *UsingDecl) declarationNode()    {}
func (d *UsingDecl) TokenLiteral() string { return "using" }
func (d *UsingDecl) String() string       { return "using " + d.Namespace + ";" }
func (d *UsingDecl) Pos() token.Range     { return d.Range }

// NamespaceDecl is a namespace section: using-clauses, nested namespaces,
// and type declarations. Two sections of the same namespace name share one
// symbol-table-backed scope (see the resolver's scope-sharing contract).
type NamespaceDecl struct {
	Range   token.Range
	Name    string
	Usings  []*UsingDecl
	Nested  []*NamespaceDecl
	Types   []Declaration // class/struct/interface/enum/delegate decls
}

func (d *NamespaceDecl) declarationNode()    {}
func (d *NamespaceDecl) TokenLiteral() string { return "namespace" }
func (d *NamespaceDecl) Pos() token.Range     { return d.Range }
func (d *NamespaceDecl) String() string {
	var out bytes.Buffer
	out.WriteString("namespace " + d.Name + " {\n")
	for _, u := range d.Usings {
		out.WriteString(u.String() + "\n")
	}
	for _, n := range d.Nested {
		out.WriteString(n.String())
	}
	for _, t := range d.Types {
		out.WriteString(t.String() + "\n")
	}
	out.WriteString("}\n")
	return out.String()
}

// TypeKind distinguishes the declaration-level genre of a type declaration.
type TypeKind int

const (
	TypeClass TypeKind = iota
	TypeStruct
	TypeInterface
)

// TypeDecl is a class, struct, or interface declaration.
type TypeDecl struct {
	Range      token.Range
	Kind       TypeKind
	Modifiers  Modifiers
	Name       string
	BaseName   *SimpleTypeExpr   // super class or, for interfaces, none
	Interfaces []*SimpleTypeExpr // implemented/extended interfaces
	Fields     []*FieldDecl
	Methods    []*MethodDecl
	Properties []*PropertyDecl
	Events     []*EventDecl
	Nested     []*TypeDecl
	Enums      []*EnumDecl
	Delegates  []*DelegateDecl
}

func (d *TypeDecl) declarationNode()    {}
func (d *TypeDecl) TokenLiteral() string { return d.Name }
func (d *TypeDecl) Pos() token.Range     { return d.Range }
func (d *TypeDecl) String() string {
	kw := [...]string{"class", "struct", "interface"}[d.Kind]
	var out bytes.Buffer
	mods := d.Modifiers.String()
	if mods != "" {
		out.WriteString(mods + " ")
	}
	out.WriteString(kw + " " + d.Name)
	if d.BaseName != nil {
		out.WriteString(" : " + d.BaseName.Name)
	}
	for _, i := range d.Interfaces {
		out.WriteString(", " + i.Name)
	}
	out.WriteString(" { ... }")
	return out.String()
}

// EnumDecl declares an enum type; its members are LiteralFieldDecls.
type EnumDecl struct {
	Range     token.Range
	Modifiers Modifiers
	Name      string
	Members   []*LiteralFieldDecl
}

func (d *EnumDecl) declarationNode()    {}
func (d *EnumDecl) TokenLiteral() string { return d.Name }
func (d *EnumDecl) Pos() token.Range     { return d.Range }
func (d *EnumDecl) String() string {
	names := make([]string, len(d.Members))
	for i, m := range d.Members {
		names[i] = m.Name
	}
	return "enum " + d.Name + " { " + strings.Join(names, ", ") + " }"
}

// LiteralFieldDecl is one member of an enum (name plus optional explicit
// constant expression).
type LiteralFieldDecl struct {
	Range token.Range
	Name  string
	Value Expression // nil: value assigned sequentially by the resolver
}

func (d *LiteralFieldDecl) declarationNode()    {}
func (d *LiteralFieldDecl) TokenLiteral() string { return d.Name }
func (d *LiteralFieldDecl) Pos() token.Range     { return d.Range }
func (d *LiteralFieldDecl) String() string       { return d.Name }

// DelegateDecl declares a delegate type: a named method signature.
type DelegateDecl struct {
	Range      token.Range
	Modifiers  Modifiers
	Name       string
	ReturnType TypeExpr // nil for void
	Parameters []*ParameterDecl
}

func (d *DelegateDecl) declarationNode()    {}
func (d *DelegateDecl) TokenLiteral() string { return d.Name }
func (d *DelegateDecl) Pos() token.Range     { return d.Range }
func (d *DelegateDecl) String() string       { return "delegate " + d.Name + "(...)" }

// FieldDecl declares an instance or static field.
type FieldDecl struct {
	Range     token.Range
	Modifiers Modifiers
	Type      TypeExpr
	Name      string
	Init      Expression // nil if uninitialized
}

func (d *FieldDecl) declarationNode()    {}
func (d *FieldDecl) TokenLiteral() string { return d.Name }
func (d *FieldDecl) Pos() token.Range     { return d.Range }
func (d *FieldDecl) String() string {
	s := d.Modifiers.String() + " " + d.Type.String() + " " + d.Name
	if d.Init != nil {
		s += " = " + d.Init.String()
	}
	return strings.TrimSpace(s) + ";"
}

// ParameterDecl declares one method/delegate parameter.
type ParameterDecl struct {
	Range    token.Range
	Type     TypeExpr
	Name     string
	IsOut    bool
	IsRef    bool
	// IsParams marks the trailing `params T[] name` parameter that lets a
	// caller pass a variable number of trailing arguments, or a single
	// array, in its place. Only the last parameter in a list may set it.
	IsParams bool
}

func (d *ParameterDecl) declarationNode()    {}
func (d *ParameterDecl) TokenLiteral() string { return d.Name }
func (d *ParameterDecl) Pos() token.Range     { return d.Range }
func (d *ParameterDecl) String() string {
	prefix := ""
	if d.IsOut {
		prefix = "out "
	} else if d.IsRef {
		prefix = "ref "
	}
	return prefix + d.Type.String() + " " + d.Name
}

// MethodDecl declares a constructor or a regular (possibly static) method.
// IsCtor distinguishes the two; ReturnType is nil for both a void method
// and a constructor.
type MethodDecl struct {
	Range       token.Range
	Modifiers   Modifiers
	ReturnType  TypeExpr
	Name        string
	Parameters  []*ParameterDecl
	Body        *BlockStmt // nil for abstract/interface methods
	IsCtor      bool
	CtorChain   *CtorChainStmt // `: base(...)` or `: this(...)`, ctors only
}

func (d *MethodDecl) declarationNode()    {}
func (d *MethodDecl) TokenLiteral() string { return d.Name }
func (d *MethodDecl) Pos() token.Range     { return d.Range }
func (d *MethodDecl) String() string {
	var out bytes.Buffer
	out.WriteString(d.Modifiers.String() + " ")
	if d.ReturnType != nil {
		out.WriteString(d.ReturnType.String() + " ")
	}
	out.WriteString(d.Name + "(")
	parts := make([]string, len(d.Parameters))
	for i, p := range d.Parameters {
		parts[i] = p.String()
	}
	out.WriteString(strings.Join(parts, ", "))
	out.WriteString(")")
	if d.Body != nil {
		out.WriteString(" " + d.Body.String())
	} else {
		out.WriteString(";")
	}
	return out.String()
}

// PropertyDecl declares a property with an optional get and/or set accessor.
type PropertyDecl struct {
	Range     token.Range
	Modifiers Modifiers
	Type      TypeExpr
	Name      string
	Getter    *BlockStmt // nil if no getter
	Setter    *BlockStmt // nil if no setter; implicit `value` parameter
}

func (d *PropertyDecl) declarationNode()    {}
func (d *PropertyDecl) TokenLiteral() string { return d.Name }
func (d *PropertyDecl) Pos() token.Range     { return d.Range }
func (d *PropertyDecl) String() string {
	return d.Modifiers.String() + " " + d.Type.String() + " " + d.Name + " { ... }"
}

// EventDecl declares an event field of a delegate type.
type EventDecl struct {
	Range     token.Range
	Modifiers Modifiers
	Type      TypeExpr
	Name      string
}

func (d *EventDecl) declarationNode()    {}
func (d *EventDecl) TokenLiteral() string { return d.Name }
func (d *EventDecl) Pos() token.Range     { return d.Range }
func (d *EventDecl) String() string {
	return d.Modifiers.String() + " event " + d.Type.String() + " " + d.Name + ";"
}

// LocalVarDecl declares one or more local variables of the same type within
// a block; it also appears as the loop-init clause of a `for` statement.
type LocalVarDecl struct {
	Range token.Range
	Type  TypeExpr
	Names []string
	Inits []Expression // parallel to Names; nil entry means uninitialized
}

func (d *LocalVarDecl) statementNode()    {}
func (d *LocalVarDecl) TokenLiteral() string { return d.Type.TokenLiteral() }
func (d *LocalVarDecl) Pos() token.Range     { return d.Range }
func (d *LocalVarDecl) String() string {
	return d.Type.String() + " " + strings.Join(d.Names, ", ") + ";"
}
