package ast

import (
	"bytes"
	"strings"

	"github.com/csc-go/compiler/pkg/token"
)

// BlockStmt is an ordered list of statements (and the locals they declare)
// sharing one lexical scope.
type BlockStmt struct {
	Range      token.Range
	Statements []Statement
}

func (s *BlockStmt) statementNode()    {}
func (s *BlockStmt) TokenLiteral() string { return "{" }
func (s *BlockStmt) Pos() token.Range     { return s.Range }
func (s *BlockStmt) String() string {
	var out bytes.Buffer
	out.WriteString("{\n")
	for _, st := range s.Statements {
		out.WriteString("  " + strings.ReplaceAll(st.String(), "\n", "\n  ") + "\n")
	}
	out.WriteString("}")
	return out.String()
}

// ExprStmt wraps a statement-expression (assignment, call, pre/post-inc/dec)
// used in statement position.
type ExprStmt struct {
	Range      token.Range
	Expression Expression
}

func (s *ExprStmt) statementNode()    {}
func (s *ExprStmt) TokenLiteral() string { return s.Expression.TokenLiteral() }
func (s *ExprStmt) Pos() token.Range     { return s.Range }
func (s *ExprStmt) String() string       { return s.Expression.String() + ";" }

// EmptyStmt is a bare `;`.
type EmptyStmt struct {
	Range token.Range
}

func (s *EmptyStmt) statementNode()    {}
func (s *EmptyStmt) TokenLiteral() string { return ";" }
func (s *EmptyStmt) Pos() token.Range     { return s.Range }
func (s *EmptyStmt) String() string       { return ";" }

// IfStmt is `if (Cond) Then [else Else]`.
type IfStmt struct {
	Range token.Range
	Cond  Expression
	Then  Statement
	Else  Statement // nil if no else clause
}

func (s *IfStmt) statementNode()    {}
func (s *IfStmt) TokenLiteral() string { return "if" }
func (s *IfStmt) Pos() token.Range     { return s.Range }
func (s *IfStmt) String() string {
	out := "if (" + s.Cond.String() + ") " + s.Then.String()
	if s.Else != nil {
		out += " else " + s.Else.String()
	}
	return out
}

// WhileStmt is `while (Cond) Body`.
type WhileStmt struct {
	Range token.Range
	Cond  Expression
	Body  Statement
}

func (s *WhileStmt) statementNode()    {}
func (s *WhileStmt) TokenLiteral() string { return "while" }
func (s *WhileStmt) Pos() token.Range     { return s.Range }
func (s *WhileStmt) String() string       { return "while (" + s.Cond.String() + ") " + s.Body.String() }

// DoStmt is `do Body while (Cond);`.
type DoStmt struct {
	Range token.Range
	Body  Statement
	Cond  Expression
}

func (s *DoStmt) statementNode()    {}
func (s *DoStmt) TokenLiteral() string { return "do" }
func (s *DoStmt) Pos() token.Range     { return s.Range }
func (s *DoStmt) String() string {
	return "do " + s.Body.String() + " while (" + s.Cond.String() + ");"
}

// ForStmt is a C-style `for (Init; Cond; Post) Body`. Init may be a
// LocalVarDecl or an ExprStmt (or nil); Post is a list of statement
// expressions evaluated after each iteration.
type ForStmt struct {
	Range token.Range
	Init  Statement
	Cond  Expression // nil means "always true"
	Post  []Expression
	Body  Statement
}

func (s *ForStmt) statementNode()    {}
func (s *ForStmt) TokenLiteral() string { return "for" }
func (s *ForStmt) Pos() token.Range     { return s.Range }
func (s *ForStmt) String() string       { return "for (...) " + s.Body.String() }

// ForEachStmt is `foreach (T x in Collection) Body`, rewritten by the
// resolver into a ForStmt (array source) or a BlockStmt holding a
// GetEnumerator() local declaration followed by a MoveNext()/Current-driven
// WhileStmt (any other source) — see the resolver's foreach desugaring.
type ForEachStmt struct {
	Range      token.Range
	VarType    TypeExpr
	VarName    string
	Collection Expression
	Body       Statement
}

func (s *ForEachStmt) statementNode()    {}
func (s *ForEachStmt) TokenLiteral() string { return "foreach" }
func (s *ForEachStmt) Pos() token.Range     { return s.Range }
func (s *ForEachStmt) String() string {
	return "foreach (" + s.VarType.String() + " " + s.VarName + " in " + s.Collection.String() + ") " + s.Body.String()
}

// SwitchCase is one `case Value:`/`default:` arm of a SwitchStmt. Value is
// nil for the default arm; per spec, a default arm is evaluated last
// regardless of its source position.
type SwitchCase struct {
	Range      token.Range
	Value      Expression
	Statements []Statement
}

// SwitchStmt is `switch (Tag) { case ...: ...; default: ...; }`.
type SwitchStmt struct {
	Range token.Range
	Tag   Expression
	Cases []*SwitchCase
}

func (s *SwitchStmt) statementNode()    {}
func (s *SwitchStmt) TokenLiteral() string { return "switch" }
func (s *SwitchStmt) Pos() token.Range     { return s.Range }
func (s *SwitchStmt) String() string       { return "switch (" + s.Tag.String() + ") { ... }" }

// TryStmt is `try Body [catch (T n) Handler]* [finally Finally]`.
type TryStmt struct {
	Range    token.Range
	Body     *BlockStmt
	Catches  []*CatchClause
	Finally  *BlockStmt // nil if absent
}

func (s *TryStmt) statementNode()    {}
func (s *TryStmt) TokenLiteral() string { return "try" }
func (s *TryStmt) Pos() token.Range     { return s.Range }
func (s *TryStmt) String() string       { return "try " + s.Body.String() + " ..." }

// CatchClause is one `catch (T name) Body` or bare `catch Body` arm.
type CatchClause struct {
	Range     token.Range
	ExcType   TypeExpr // nil: catches any exception (bare `catch`)
	Name      string   // "" if unnamed
	Body      *BlockStmt
}

// ThrowStmt is `throw Expr;` (Expr nil for a bare rethrow inside a catch).
type ThrowStmt struct {
	Range token.Range
	Expr  Expression
}

func (s *ThrowStmt) statementNode()    {}
func (s *ThrowStmt) TokenLiteral() string { return "throw" }
func (s *ThrowStmt) Pos() token.Range     { return s.Range }
func (s *ThrowStmt) String() string {
	if s.Expr == nil {
		return "throw;"
	}
	return "throw " + s.Expr.String() + ";"
}

// ReturnStmt is `return [Expr];`.
type ReturnStmt struct {
	Range token.Range
	Value Expression // nil for a void return
}

func (s *ReturnStmt) statementNode()    {}
func (s *ReturnStmt) TokenLiteral() string { return "return" }
func (s *ReturnStmt) Pos() token.Range     { return s.Range }
func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return "return;"
	}
	return "return " + s.Value.String() + ";"
}

// BreakStmt is `break;`; must be lexically inside a loop or switch.
type BreakStmt struct{ Range token.Range }

func (s *BreakStmt) statementNode()    {}
func (s *BreakStmt) TokenLiteral() string { return "break" }
func (s *BreakStmt) Pos() token.Range     { return s.Range }
func (s *BreakStmt) String() string       { return "break;" }

// ContinueStmt is `continue;`; must be lexically inside a loop.
type ContinueStmt struct{ Range token.Range }

func (s *ContinueStmt) statementNode()    {}
func (s *ContinueStmt) TokenLiteral() string { return "continue" }
func (s *ContinueStmt) Pos() token.Range     { return s.Range }
func (s *ContinueStmt) String() string       { return "continue;" }

// GotoStmt is `goto Label;`.
type GotoStmt struct {
	Range token.Range
	Label string
}

func (s *GotoStmt) statementNode()    {}
func (s *GotoStmt) TokenLiteral() string { return "goto" }
func (s *GotoStmt) Pos() token.Range     { return s.Range }
func (s *GotoStmt) String() string       { return "goto " + s.Label + ";" }

// LabelStmt is `Label: Stmt`.
type LabelStmt struct {
	Range token.Range
	Name  string
	Stmt  Statement
}

func (s *LabelStmt) statementNode()    {}
func (s *LabelStmt) TokenLiteral() string { return s.Name }
func (s *LabelStmt) Pos() token.Range     { return s.Range }
func (s *LabelStmt) String() string       { return s.Name + ": " + s.Stmt.String() }

// CtorChainStmt is the `: base(args)` or `: this(args)` clause preceding a
// constructor body. The resolver injects an implicit `base()` chain for
// constructors that omit one, except on System.Object itself.
type CtorChainStmt struct {
	Range    token.Range
	IsThis   bool // true: ": this(...)"; false: ": base(...)"
	Args     []Expression
}

func (s *CtorChainStmt) statementNode()    {}
func (s *CtorChainStmt) TokenLiteral() string {
	if s.IsThis {
		return "this"
	}
	return "base"
}
func (s *CtorChainStmt) Pos() token.Range { return s.Range }
func (s *CtorChainStmt) String() string {
	kw := "base"
	if s.IsThis {
		kw = "this"
	}
	return ": " + kw + "(...)"
}
