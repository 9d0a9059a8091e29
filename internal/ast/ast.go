// Package ast defines the Abstract Syntax Tree produced by the parser and
// consumed (then rewritten in place) by the resolver and emitter.
package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/csc-go/compiler/pkg/token"
)

// Node is the base interface every AST node satisfies.
type Node interface {
	// TokenLiteral returns the literal text of the node's leading token,
	// useful in error messages and tests.
	TokenLiteral() string

	// String renders the node for debugging; it is not a pretty-printer.
	String() string

	// Pos returns the node's source range.
	Pos() token.Range
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a node that performs an action.
type Statement interface {
	Node
	statementNode()
}

// Declaration is a node declaring a named entity at namespace or type scope.
type Declaration interface {
	Node
	declarationNode()
}

// TypeExpr is a syntactic type reference, as written by the programmer,
// before the resolver turns it into a flyweight ResolvedType over a symbol.
type TypeExpr interface {
	Node
	typeExprNode()
}

// Modifiers is a bit-set of C# subset declaration modifiers.
type Modifiers uint16

const (
	ModPublic Modifiers = 1 << iota
	ModPrivate
	ModProtected
	ModInternal
	ModStatic
	ModVirtual
	ModAbstract
	ModOverride
	ModSealed
	ModReadonly
	ModConst
	ModNew
)

func (m Modifiers) Has(flag Modifiers) bool { return m&flag != 0 }

func (m Modifiers) String() string {
	names := []struct {
		flag Modifiers
		name string
	}{
		{ModPublic, "public"}, {ModPrivate, "private"}, {ModProtected, "protected"},
		{ModInternal, "internal"}, {ModStatic, "static"}, {ModVirtual, "virtual"},
		{ModAbstract, "abstract"}, {ModOverride, "override"}, {ModSealed, "sealed"},
		{ModReadonly, "readonly"}, {ModConst, "const"}, {ModNew, "new"},
	}
	var parts []string
	for _, n := range names {
		if m.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, " ")
}

// Program is the root node: one or more source files' namespace contents
// combined into a single compilation unit.
type Program struct {
	Range      token.Range
	Namespaces []*NamespaceDecl
}

func (p *Program) TokenLiteral() string { return "" }
func (p *Program) Pos() token.Range     { return p.Range }
func (p *Program) String() string {
	var out bytes.Buffer
	for _, ns := range p.Namespaces {
		out.WriteString(ns.String())
		out.WriteString("\n")
	}
	return out.String()
}

// Identifier is a bare name reference: a local, parameter, field, type, or
// namespace name depending on what the resolver finds in scope.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()        {}
func (i *Identifier) TokenLiteral() string   { return i.Token.Literal }
func (i *Identifier) String() string         { return i.Value }
func (i *Identifier) Pos() token.Range       { return i.Token.Range }

// IntLiteral is an integer literal, decimal or hexadecimal.
type IntLiteral struct {
	Token token.Token
	Value int64
}

func (l *IntLiteral) expressionNode()      {}
func (l *IntLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *IntLiteral) String() string       { return strconv.FormatInt(l.Value, 10) }
func (l *IntLiteral) Pos() token.Range     { return l.Token.Range }

// CharLiteral is a character literal.
type CharLiteral struct {
	Token token.Token
	Value rune
}

func (l *CharLiteral) expressionNode()      {}
func (l *CharLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *CharLiteral) String() string       { return "'" + string(l.Value) + "'" }
func (l *CharLiteral) Pos() token.Range     { return l.Token.Range }

// BoolLiteral is a true/false literal.
type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (l *BoolLiteral) expressionNode()      {}
func (l *BoolLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *BoolLiteral) String() string {
	if l.Value {
		return "true"
	}
	return "false"
}
func (l *BoolLiteral) Pos() token.Range { return l.Token.Range }

// StringLiteral is a string literal (escapes already decoded).
type StringLiteral struct {
	Token token.Token
	Value string
}

func (l *StringLiteral) expressionNode()      {}
func (l *StringLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *StringLiteral) String() string       { return `"` + l.Value + `"` }
func (l *StringLiteral) Pos() token.Range     { return l.Token.Range }

// NullLiteral is the `null` literal. It is the one expression whose resolved
// type symbol may legitimately be nil until its target type is known from
// context (assignment target, parameter type, cast).
type NullLiteral struct {
	Token token.Token
}

func (l *NullLiteral) expressionNode()      {}
func (l *NullLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *NullLiteral) String() string       { return "null" }
func (l *NullLiteral) Pos() token.Range     { return l.Token.Range }
