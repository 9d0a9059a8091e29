package lexer

import (
	"testing"

	"github.com/csc-go/compiler/internal/diag"
	"github.com/csc-go/compiler/pkg/token"
)

func lexAll(t *testing.T, input string) ([]token.Token, *diag.Sink) {
	t.Helper()
	d := diag.NewSink()
	l := New("test.cs", input, d)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks, d
}

func TestNextToken(t *testing.T) {
	input := `class Foo {
		public int x;
		void Bar() { x = x + 1; }
	}`

	want := []token.Type{
		token.CLASS, token.IDENT, token.LBRACE,
		token.PUBLIC, token.IDENT, token.IDENT, token.SEMICOLON,
		token.VOID, token.IDENT, token.LPAREN, token.RPAREN, token.LBRACE,
		token.IDENT, token.ASSIGN, token.IDENT, token.PLUS, token.INT, token.SEMICOLON,
		token.RBRACE,
		token.RBRACE,
		token.EOF,
	}

	toks, d := lexAll(t, input)
	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", d.Format())
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestCaseSensitiveKeywords(t *testing.T) {
	toks, d := lexAll(t, "class Class CLASS")
	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", d.Format())
	}
	want := []token.Type{token.CLASS, token.IDENT, token.IDENT, token.EOF}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestOperators(t *testing.T) {
	input := `+ - * / % ++ -- == != < > <= >= && || ! & | ^ ~ << >> ?? => += -= *= /= %= &= |= ^= <<= >>=`
	want := []token.Type{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.INC, token.DEC, token.EQ, token.NEQ, token.LT, token.GT,
		token.LE, token.GE, token.AMP_AMP, token.PIPE_PIPE, token.BANG,
		token.AMP, token.PIPE, token.CARET, token.TILDE, token.SHL, token.SHR,
		token.QUESTION_QUESTION, token.ARROW,
		token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN,
		token.PERCENT_ASSIGN, token.AMP_ASSIGN, token.PIPE_ASSIGN, token.CARET_ASSIGN,
		token.SHL_ASSIGN, token.SHR_ASSIGN,
		token.EOF,
	}
	toks, d := lexAll(t, input)
	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", d.Format())
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestArrayRank(t *testing.T) {
	toks, d := lexAll(t, "int[] a; int[,] b; int[,,] c;")
	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", d.Format())
	}
	var ranks []int
	for _, tok := range toks {
		if tok.Type == token.ARRAY_RANK {
			ranks = append(ranks, tok.Rank)
		}
	}
	// Plain "[]" is LBRACK RBRACK; only "[,]" and "[,,]" produce ARRAY_RANK.
	want := []int{2, 3}
	if len(ranks) != len(want) {
		t.Fatalf("got %d ARRAY_RANK tokens %v, want %v", len(ranks), ranks, want)
	}
	for i := range want {
		if ranks[i] != want[i] {
			t.Errorf("rank %d: got %d, want %d", i, ranks[i], want[i])
		}
	}
}

func TestIntegerLiterals(t *testing.T) {
	tests := []struct {
		input string
		value int64
	}{
		{"123", 123},
		{"0", 0},
		{"0x10", 16},
		{"0XFF", 255},
	}
	for _, tt := range tests {
		toks, d := lexAll(t, tt.input)
		if d.HasErrors() {
			t.Fatalf("input %q: unexpected diagnostics: %s", tt.input, d.Format())
		}
		if toks[0].Type != token.INT {
			t.Fatalf("input %q: got %s, want INT", tt.input, toks[0].Type)
		}
		if toks[0].IntValue != tt.value {
			t.Errorf("input %q: got %d, want %d", tt.input, toks[0].IntValue, tt.value)
		}
	}
}

func TestStringLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"hello"`, "hello"},
		{`"a\nb"`, "a\nb"},
		{`"a\"b"`, `a"b`},
	}
	for _, tt := range tests {
		toks, d := lexAll(t, tt.input)
		if d.HasErrors() {
			t.Fatalf("input %q: unexpected diagnostics: %s", tt.input, d.Format())
		}
		if toks[0].Type != token.STRING {
			t.Fatalf("input %q: got %s, want STRING", tt.input, toks[0].Type)
		}
		if toks[0].Literal != tt.want {
			t.Errorf("input %q: got %q, want %q", tt.input, toks[0].Literal, tt.want)
		}
	}
}

func TestCharLiterals(t *testing.T) {
	toks, d := lexAll(t, `'a' '\n' '\''`)
	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", d.Format())
	}
	want := []rune{'a', '\n', '\''}
	for i, r := range want {
		if toks[i].Type != token.CHAR {
			t.Fatalf("token %d: got %s, want CHAR", i, toks[i].Type)
		}
		if toks[i].IntValue != int64(r) {
			t.Errorf("token %d: got %d, want %d", i, toks[i].IntValue, r)
		}
	}
}

func TestComments(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"line comment", "int x; // trailing comment\nint y;"},
		{"block comment", "int x; /* a block\ncomment */ int y;"},
	}
	for _, tt := range tests {
		toks, d := lexAll(t, tt.input)
		if d.HasErrors() {
			t.Fatalf("%s: unexpected diagnostics: %s", tt.name, d.Format())
		}
		count := 0
		for _, tok := range toks {
			if tok.Type == token.COMMENT {
				count++
			}
		}
		if count != 0 {
			t.Errorf("%s: comments should not be emitted as tokens", tt.name)
		}
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, d := lexAll(t, "int x; /* never closed")
	got := d.Filter(diag.LexUnterminatedComment)
	if len(got) != 1 {
		t.Fatalf("expected one unterminated-comment diagnostic, got %d", len(got))
	}
}

func TestPreprocessorIfDefine(t *testing.T) {
	input := "#define FOO\n#if FOO\nint a;\n#else\nint b;\n#endif\n"
	toks, d := lexAll(t, input)
	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", d.Format())
	}
	var idents []string
	for _, tok := range toks {
		if tok.Type == token.IDENT {
			idents = append(idents, tok.Literal)
		}
	}
	if len(idents) != 1 || idents[0] != "a" {
		t.Fatalf("expected only ident 'a' to survive, got %v", idents)
	}
}

func TestPreprocessorElifElse(t *testing.T) {
	input := "#if UNDEF\nint a;\n#elif true\nint b;\n#else\nint c;\n#endif\n"
	toks, _ := lexAll(t, input)
	var idents []string
	for _, tok := range toks {
		if tok.Type == token.IDENT {
			idents = append(idents, tok.Literal)
		}
	}
	if len(idents) != 1 || idents[0] != "b" {
		t.Fatalf("expected only ident 'b' to survive, got %v", idents)
	}
}

func TestPreprocessorBlueDefault(t *testing.T) {
	input := "#if __BLUE__\nint a;\n#endif\n"
	toks, d := lexAll(t, input)
	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", d.Format())
	}
	found := false
	for _, tok := range toks {
		if tok.Type == token.IDENT && tok.Literal == "a" {
			found = true
		}
	}
	if !found {
		t.Fatal("__BLUE__ should be predefined and true")
	}
}

func TestPreprocessorDeadRegionToleratesGarbageSyntax(t *testing.T) {
	input := "#if false\n@#$%^ not valid C# at all {{{\n#endif\nint x;\n"
	toks, d := lexAll(t, input)
	if d.HasErrors() {
		t.Fatalf("dead region should not produce diagnostics: %s", d.Format())
	}
	var idents []string
	for _, tok := range toks {
		if tok.Type == token.IDENT {
			idents = append(idents, tok.Literal)
		}
	}
	if len(idents) != 1 || idents[0] != "x" {
		t.Fatalf("expected only ident 'x' to survive, got %v", idents)
	}
}

func TestPreprocessorMissingEndIf(t *testing.T) {
	_, d := lexAll(t, "#if true\nint a;\n")
	got := d.Filter(diag.LexMissingEndIf)
	if len(got) != 1 {
		t.Fatalf("expected one missing-endif diagnostic, got %d", len(got))
	}
}

func TestPreprocessorUnmatchedEndRegion(t *testing.T) {
	_, d := lexAll(t, "#endregion\n")
	got := d.Filter(diag.LexUnmatchedEndRegion)
	if len(got) != 1 {
		t.Fatalf("expected one unmatched-endregion diagnostic, got %d", len(got))
	}
}

func TestPreprocessorMustStartLine(t *testing.T) {
	_, d := lexAll(t, "int x; #define FOO\n")
	got := d.Filter(diag.LexPreprocNotAtLineStart)
	if len(got) != 1 {
		t.Fatalf("expected one preproc-must-start-line diagnostic, got %d", len(got))
	}
}

func TestPeek(t *testing.T) {
	d := diag.NewSink()
	l := New("test.cs", "class Foo", d)
	if got := l.Peek(1).Type; got != token.IDENT {
		t.Fatalf("Peek(1) = %s, want IDENT", got)
	}
	if got := l.NextToken().Type; got != token.CLASS {
		t.Fatalf("NextToken() = %s, want CLASS", got)
	}
	if got := l.NextToken().Type; got != token.IDENT {
		t.Fatalf("NextToken() = %s, want IDENT", got)
	}
}
