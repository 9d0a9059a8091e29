package ast

import "testing"

func TestModifiersString(t *testing.T) {
	m := ModPublic | ModStatic
	got := m.String()
	if got != "public static" {
		t.Errorf("Modifiers.String() = %q, want %q", got, "public static")
	}
}

func TestModifiersHas(t *testing.T) {
	m := ModPublic | ModOverride
	if !m.Has(ModPublic) {
		t.Error("expected ModPublic to be set")
	}
	if m.Has(ModSealed) {
		t.Error("did not expect ModSealed to be set")
	}
}

func TestIdentifierString(t *testing.T) {
	id := &Identifier{Value: "foo"}
	if id.String() != "foo" {
		t.Errorf("Identifier.String() = %q, want %q", id.String(), "foo")
	}
}

func TestBinaryExprString(t *testing.T) {
	e := &BinaryExpr{
		Left:     &IntLiteral{Value: 1},
		Operator: "+",
		Right:    &IntLiteral{Value: 2},
	}
	if got, want := e.String(), "(1 + 2)"; got != want {
		t.Errorf("BinaryExpr.String() = %q, want %q", got, want)
	}
}

func TestArrayTypeExprRankString(t *testing.T) {
	at := &ArrayTypeExpr{Element: &SimpleTypeExpr{Name: "int"}, Rank: 2}
	if got, want := at.String(), "int[,]"; got != want {
		t.Errorf("ArrayTypeExpr.String() = %q, want %q", got, want)
	}
}

func TestForEachStmtString(t *testing.T) {
	fe := &ForEachStmt{
		VarType:    &SimpleTypeExpr{Name: "int"},
		VarName:    "x",
		Collection: &Identifier{Value: "arr"},
		Body:       &BlockStmt{},
	}
	want := "foreach (int x in arr) {\n}"
	if got := fe.String(); got != want {
		t.Errorf("ForEachStmt.String() = %q, want %q", got, want)
	}
}
