package token

import "testing"

func TestPositionString(t *testing.T) {
	tests := []struct {
		pos  Position
		want string
	}{
		{Position{Line: 1, Column: 5}, "1:5"},
		{Position{File: "a.cs", Line: 3, Column: 9}, "a.cs:3:9"},
	}
	for _, tt := range tests {
		if got := tt.pos.String(); got != tt.want {
			t.Errorf("Position.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		ident string
		want  Type
	}{
		{"class", CLASS},
		{"namespace", NAMESPACE},
		{"foreach", FOREACH},
		{"MyClass", IDENT},
		{"Class", IDENT}, // keywords are case-sensitive
	}
	for _, tt := range tests {
		if got := LookupIdent(tt.ident); got != tt.want {
			t.Errorf("LookupIdent(%q) = %v, want %v", tt.ident, got, tt.want)
		}
	}
}

func TestTypeClassification(t *testing.T) {
	if !IDENT.IsLiteral() && IDENT != IDENT {
		t.Fatal("unreachable")
	}
	if !INT.IsLiteral() {
		t.Error("INT should be a literal kind")
	}
	if !CLASS.IsKeyword() {
		t.Error("CLASS should be a keyword")
	}
	if LPAREN.IsKeyword() {
		t.Error("LPAREN should not be a keyword")
	}
}

func TestTokenString(t *testing.T) {
	tok := New(IDENT, "Foo", Range{})
	if got, want := tok.String(), `IDENT("Foo")`; got != want {
		t.Errorf("Token.String() = %q, want %q", got, want)
	}
	tok2 := New(PLUS, "", Range{})
	if got, want := tok2.String(), "+"; got != want {
		t.Errorf("Token.String() = %q, want %q", got, want)
	}
}
