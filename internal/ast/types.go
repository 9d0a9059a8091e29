package ast

import "github.com/csc-go/compiler/pkg/token"

// SimpleTypeExpr names a type by a (possibly dotted) identifier, e.g. "int",
// "string", "Foo.Bar". The resolver looks this up in the enclosing scope.
type SimpleTypeExpr struct {
	Range token.Range
	Name  string
}

func (t *SimpleTypeExpr) typeExprNode()        {}
func (t *SimpleTypeExpr) TokenLiteral() string { return t.Name }
func (t *SimpleTypeExpr) String() string       { return t.Name }
func (t *SimpleTypeExpr) Pos() token.Range     { return t.Range }

// ArrayTypeExpr is an element type plus a rank (1 for "T[]", 2+ for "T[,]"
// etc; ranks above 1 are accepted syntactically but rejected by the
// resolver, since multi-dimensional arrays are not supported).
type ArrayTypeExpr struct {
	Range   token.Range
	Element TypeExpr
	Rank    int
}

func (t *ArrayTypeExpr) typeExprNode()        {}
func (t *ArrayTypeExpr) TokenLiteral() string { return t.Element.TokenLiteral() }
func (t *ArrayTypeExpr) String() string {
	s := t.Element.String() + "["
	for i := 1; i < t.Rank; i++ {
		s += ","
	}
	return s + "]"
}
func (t *ArrayTypeExpr) Pos() token.Range { return t.Range }

// RefTypeExpr marks a `ref`/`out` parameter's declared type.
type RefTypeExpr struct {
	Range    token.Range
	Inner    TypeExpr
	IsOut    bool
}

func (t *RefTypeExpr) typeExprNode()        {}
func (t *RefTypeExpr) TokenLiteral() string { return t.Inner.TokenLiteral() }
func (t *RefTypeExpr) String() string {
	if t.IsOut {
		return "out " + t.Inner.String()
	}
	return "ref " + t.Inner.String()
}
func (t *RefTypeExpr) Pos() token.Range { return t.Range }
