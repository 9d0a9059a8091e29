// Package parser implements a recursive-descent parser over the token
// stream produced by internal/lexer, looking at two tokens at a time (and
// further ahead through the lexer's Peek when telling a cast from a
// parenthesized expression), building the internal/ast tree that
// internal/resolver and internal/emitter consume.
package parser

import (
	"strconv"

	"github.com/csc-go/compiler/internal/ast"
	"github.com/csc-go/compiler/internal/diag"
	"github.com/csc-go/compiler/pkg/token"
)

// tokenSource is the subset of *lexer.Lexer the parser depends on, so
// tests can feed it a canned token sequence without building a Lexer.
type tokenSource interface {
	NextToken() token.Token
	Peek(n int) token.Token
}

// Parser turns a token stream into a *ast.Program, recovering from local
// syntax errors by skipping to the next statement or closing brace rather
// than aborting the whole file.
type Parser struct {
	lex   tokenSource
	diags *diag.Sink

	cur  token.Token
	next token.Token
}

// New creates a Parser reading from lex, reporting syntax errors to diags.
func New(lex tokenSource, diags *diag.Sink) *Parser {
	p := &Parser{lex: lex, diags: diags}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.next
	p.next = p.lex.NextToken()
}

func (p *Parser) at(t token.Type) bool     { return p.cur.Type == t }
func (p *Parser) atAny(ts ...token.Type) bool {
	for _, t := range ts {
		if p.cur.Type == t {
			return true
		}
	}
	return false
}

func (p *Parser) errorf(format string, args ...any) {
	p.diags.Add(diag.ParseSyntaxError, p.cur.Range, format, args...)
}

// expect consumes the current token if it has type t, reporting a syntax
// error and leaving the cursor unchanged otherwise.
func (p *Parser) expect(t token.Type) token.Token {
	if p.cur.Type != t {
		p.errorf("expected %s, found %s", t, p.cur.Type)
		return p.cur
	}
	tok := p.cur
	p.advance()
	return tok
}

// accept consumes the current token if it has type t, returning whether it
// matched.
func (p *Parser) accept(t token.Type) bool {
	if p.cur.Type == t {
		p.advance()
		return true
	}
	return false
}

// recoverToStatement skips tokens until a plausible statement/declaration
// boundary (`;`, `}`, or EOF), so one syntax error doesn't cascade into a
// flood of spurious follow-on errors.
func (p *Parser) recoverToStatement() {
	for !p.atAny(token.SEMICOLON, token.RBRACE, token.EOF) {
		p.advance()
	}
	p.accept(token.SEMICOLON)
}

// Parse consumes the whole token stream and returns the resulting Program.
// Syntax errors are reported to the Sink passed to New; Parse always
// returns a (possibly partial) Program rather than an error, matching
// the "no diagnostic aborts its own stage" pipeline contract.
func (p *Parser) Parse() *ast.Program {
	start := p.cur.Range
	prog := &ast.Program{Range: start}
	for !p.at(token.EOF) {
		if !p.at(token.NAMESPACE) {
			p.errorf("expected 'namespace' at top level, found %s", p.cur.Type)
			p.recoverToStatement()
			continue
		}
		prog.Namespaces = append(prog.Namespaces, p.parseNamespace())
	}
	return prog
}

func (p *Parser) parseNamespace() *ast.NamespaceDecl {
	start := p.expect(token.NAMESPACE).Range
	name := p.parseDottedName()
	ns := &ast.NamespaceDecl{Range: start, Name: name}
	p.expect(token.LBRACE)
	for !p.atAny(token.RBRACE, token.EOF) {
		switch {
		case p.at(token.USING):
			ns.Usings = append(ns.Usings, p.parseUsing())
		case p.at(token.NAMESPACE):
			nested := p.parseNamespace()
			ns.Nested = append(ns.Nested, nested)
		case p.atAny(token.CLASS, token.STRUCT, token.INTERFACE, token.ENUM, token.DELEGATE) || isModifierStart(p.cur.Type):
			ns.Types = append(ns.Types, p.parseTypeDecl())
		default:
			p.errorf("expected a type declaration, found %s", p.cur.Type)
			p.recoverToStatement()
		}
	}
	p.expect(token.RBRACE)
	return ns
}

func (p *Parser) parseUsing() *ast.UsingDecl {
	start := p.expect(token.USING).Range
	name := p.parseDottedName()
	p.expect(token.SEMICOLON)
	return &ast.UsingDecl{Range: start, Namespace: name}
}

func (p *Parser) parseDottedName() string {
	name := p.expect(token.IDENT).Literal
	for p.accept(token.DOT) {
		name += "." + p.expect(token.IDENT).Literal
	}
	return name
}

func isModifierStart(t token.Type) bool {
	switch t {
	case token.PUBLIC, token.PRIVATE, token.PROTECTED, token.INTERNAL,
		token.STATIC, token.VIRTUAL, token.ABSTRACT, token.OVERRIDE,
		token.SEALED, token.READONLY, token.CONST, token.NEW:
		return true
	}
	return false
}

func (p *Parser) parseModifiers() ast.Modifiers {
	var mods ast.Modifiers
	for {
		var flag ast.Modifiers
		switch p.cur.Type {
		case token.PUBLIC:
			flag = ast.ModPublic
		case token.PRIVATE:
			flag = ast.ModPrivate
		case token.PROTECTED:
			flag = ast.ModProtected
		case token.INTERNAL:
			flag = ast.ModInternal
		case token.STATIC:
			flag = ast.ModStatic
		case token.VIRTUAL:
			flag = ast.ModVirtual
		case token.ABSTRACT:
			flag = ast.ModAbstract
		case token.OVERRIDE:
			flag = ast.ModOverride
		case token.SEALED:
			flag = ast.ModSealed
		case token.READONLY:
			flag = ast.ModReadonly
		case token.CONST:
			flag = ast.ModConst
		case token.NEW:
			flag = ast.ModNew
		default:
			return mods
		}
		if mods.Has(flag) {
			p.diags.Add(diag.ParseDuplicateModifier, p.cur.Range, "duplicate modifier %s", p.cur.Type)
		}
		mods |= flag
		p.advance()
	}
}

func (p *Parser) parseTypeDecl() ast.Declaration {
	mods := p.parseModifiers()
	switch p.cur.Type {
	case token.ENUM:
		return p.parseEnumDecl(mods)
	case token.DELEGATE:
		return p.parseDelegateDecl(mods)
	case token.CLASS, token.STRUCT, token.INTERFACE:
		return p.parseClassLikeDecl(mods)
	default:
		p.errorf("expected class, struct, interface, enum, or delegate, found %s", p.cur.Type)
		p.recoverToStatement()
		return &ast.TypeDecl{Kind: ast.TypeClass, Name: "<error>"}
	}
}

func (p *Parser) parseClassLikeDecl(mods ast.Modifiers) *ast.TypeDecl {
	var kind ast.TypeKind
	switch p.cur.Type {
	case token.CLASS:
		kind = ast.TypeClass
	case token.STRUCT:
		kind = ast.TypeStruct
	case token.INTERFACE:
		kind = ast.TypeInterface
	}
	p.advance()
	name := p.expect(token.IDENT).Literal
	td := &ast.TypeDecl{Kind: kind, Modifiers: mods, Name: name}

	if p.accept(token.COLON) {
		first := p.parseSimpleTypeExpr()
		bases := []*ast.SimpleTypeExpr{first}
		for p.accept(token.COMMA) {
			bases = append(bases, p.parseSimpleTypeExpr())
		}
		// The first base listed for a class may be its superclass; the
		// resolver disambiguates superclass vs. interface by looking each
		// name up, since the grammar alone can't tell them apart.
		td.BaseName = first
		td.Interfaces = bases
		if kind == ast.TypeInterface {
			td.BaseName = nil
			td.Interfaces = bases
		}
	}

	p.expect(token.LBRACE)
	for !p.atAny(token.RBRACE, token.EOF) {
		p.parseMember(td)
	}
	p.expect(token.RBRACE)
	return td
}

func (p *Parser) parseEnumDecl(mods ast.Modifiers) *ast.EnumDecl {
	p.expect(token.ENUM)
	name := p.expect(token.IDENT).Literal
	ed := &ast.EnumDecl{Modifiers: mods, Name: name}
	p.expect(token.LBRACE)
	for !p.atAny(token.RBRACE, token.EOF) {
		memberName := p.expect(token.IDENT).Literal
		member := &ast.LiteralFieldDecl{Name: memberName}
		if p.accept(token.ASSIGN) {
			member.Value = p.parseExpression()
		}
		ed.Members = append(ed.Members, member)
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE)
	return ed
}

func (p *Parser) parseDelegateDecl(mods ast.Modifiers) *ast.DelegateDecl {
	p.expect(token.DELEGATE)
	retType := p.parseTypeExpr()
	name := p.expect(token.IDENT).Literal
	params := p.parseParameterList()
	p.expect(token.SEMICOLON)
	return &ast.DelegateDecl{Modifiers: mods, Name: name, ReturnType: retType, Parameters: params}
}

// parseMember parses one class/struct/interface member and appends it to
// the right slice on td, dispatching on lookahead since a member's leading
// tokens (modifiers, then a type or the enclosing type's own name for a
// constructor) don't disambiguate until we've consumed the declared name.
func (p *Parser) parseMember(td *ast.TypeDecl) {
	mods := p.parseModifiers()

	switch p.cur.Type {
	case token.ENUM:
		td.Enums = append(td.Enums, p.parseEnumDecl(mods))
		return
	case token.DELEGATE:
		td.Delegates = append(td.Delegates, p.parseDelegateDecl(mods))
		return
	case token.CLASS, token.STRUCT, token.INTERFACE:
		td.Nested = append(td.Nested, p.parseClassLikeDecl(mods))
		return
	}

	// Constructor: IDENT matching the enclosing type name, directly
	// followed by '('.
	if p.at(token.IDENT) && p.cur.Literal == td.Name && p.next.Type == token.LPAREN {
		td.Methods = append(td.Methods, p.parseConstructor(mods))
		return
	}

	typeExpr := p.parseTypeExpr()
	name := p.expect(token.IDENT).Literal

	switch p.cur.Type {
	case token.LPAREN:
		td.Methods = append(td.Methods, p.parseMethodTail(mods, typeExpr, name))
	case token.LBRACE:
		td.Properties = append(td.Properties, p.parsePropertyTail(mods, typeExpr, name))
	case token.ASSIGN, token.SEMICOLON, token.COMMA:
		td.Fields = append(td.Fields, p.parseFieldTail(mods, typeExpr, name)...)
	default:
		p.errorf("expected '(', '{', '=', or ';' after member name, found %s", p.cur.Type)
		p.recoverToStatement()
	}
}

func (p *Parser) parseConstructor(mods ast.Modifiers) *ast.MethodDecl {
	name := p.expect(token.IDENT).Literal
	params := p.parseParameterList()
	m := &ast.MethodDecl{Modifiers: mods, Name: name, IsCtor: true, Parameters: params}
	if p.accept(token.COLON) {
		isThis := false
		switch p.cur.Type {
		case token.BASE:
			p.advance()
		case token.THIS:
			isThis = true
			p.advance()
		default:
			p.errorf("expected 'base' or 'this' in constructor initializer, found %s", p.cur.Type)
		}
		args := p.parseArgList()
		m.CtorChain = &ast.CtorChainStmt{IsThis: isThis, Args: args}
	}
	m.Body = p.parseBlock()
	return m
}

func (p *Parser) parseMethodTail(mods ast.Modifiers, retType ast.TypeExpr, name string) *ast.MethodDecl {
	params := p.parseParameterList()
	m := &ast.MethodDecl{Modifiers: mods, ReturnType: retType, Name: name, Parameters: params}
	if p.accept(token.SEMICOLON) {
		return m // abstract or interface method: no body
	}
	m.Body = p.parseBlock()
	return m
}

func (p *Parser) parsePropertyTail(mods ast.Modifiers, propType ast.TypeExpr, name string) *ast.PropertyDecl {
	prop := &ast.PropertyDecl{Modifiers: mods, Type: propType, Name: name}
	p.expect(token.LBRACE)
	for !p.atAny(token.RBRACE, token.EOF) {
		accessorMods := p.parseModifiers()
		isGetter := p.cur.Literal == "get"
		isSetter := p.cur.Literal == "set"
		if !isGetter && !isSetter || p.cur.Type != token.IDENT {
			p.errorf("expected 'get' or 'set' accessor, found %s", p.cur.Type)
			p.recoverToStatement()
			continue
		}
		p.advance()
		var body *ast.BlockStmt
		if p.accept(token.SEMICOLON) {
			body = nil // auto-property accessor
		} else {
			body = p.parseBlock()
		}
		if isGetter {
			prop.Getter = body
		} else {
			prop.Setter = body
		}
		_ = accessorMods
	}
	p.expect(token.RBRACE)
	return prop
}

func (p *Parser) parseFieldTail(mods ast.Modifiers, fieldType ast.TypeExpr, firstName string) []*ast.FieldDecl {
	var fields []*ast.FieldDecl
	name := firstName
	for {
		f := &ast.FieldDecl{Modifiers: mods, Type: fieldType, Name: name}
		if p.accept(token.ASSIGN) {
			f.Init = p.parseExpression()
		}
		fields = append(fields, f)
		if !p.accept(token.COMMA) {
			break
		}
		name = p.expect(token.IDENT).Literal
	}
	p.expect(token.SEMICOLON)
	return fields
}

func (p *Parser) parseParameterList() []*ast.ParameterDecl {
	p.expect(token.LPAREN)
	var params []*ast.ParameterDecl
	for !p.atAny(token.RPAREN, token.EOF) {
		param := &ast.ParameterDecl{}
		switch p.cur.Type {
		case token.OUT:
			param.IsOut = true
			p.advance()
		case token.REF:
			param.IsRef = true
			p.advance()
		case token.PARAMS:
			param.IsParams = true
			p.advance()
		}
		param.Type = p.parseTypeExpr()
		param.Name = p.expect(token.IDENT).Literal
		params = append(params, param)
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseArgList() []ast.Expression {
	p.expect(token.LPAREN)
	var args []ast.Expression
	for !p.atAny(token.RPAREN, token.EOF) {
		if p.at(token.OUT) || p.at(token.REF) {
			isOut := p.at(token.OUT)
			p.advance()
			inner := p.parseExpression()
			args = append(args, &ast.ArgWrapperExpr{Inner: inner, IsOut: isOut})
		} else {
			args = append(args, p.parseExpression())
		}
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return args
}

// --- Types ---

func (p *Parser) parseTypeExpr() ast.TypeExpr {
	var base ast.TypeExpr = p.parseSimpleTypeExpr()
	for p.at(token.LBRACK) || p.at(token.ARRAY_RANK) {
		rank := 1
		start := p.cur.Range
		if p.at(token.ARRAY_RANK) {
			rank = p.cur.Rank
			p.advance()
		} else {
			p.advance()
			p.expect(token.RBRACK)
		}
		base = &ast.ArrayTypeExpr{Range: start, Element: base, Rank: rank}
	}
	return base
}

func (p *Parser) parseSimpleTypeExpr() *ast.SimpleTypeExpr {
	start := p.cur.Range
	if p.at(token.VOID) {
		p.advance()
		return &ast.SimpleTypeExpr{Range: start, Name: "void"}
	}
	name := p.parseDottedName()
	return &ast.SimpleTypeExpr{Range: start, Name: name}
}

// --- Statements ---

func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.expect(token.LBRACE).Range
	block := &ast.BlockStmt{Range: start}
	for !p.atAny(token.RBRACE, token.EOF) {
		block.Statements = append(block.Statements, p.parseStatement())
	}
	p.expect(token.RBRACE)
	return block
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.LBRACE:
		return p.parseBlock()
	case token.SEMICOLON:
		r := p.cur.Range
		p.advance()
		return &ast.EmptyStmt{Range: r}
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDo()
	case token.FOR:
		return p.parseFor()
	case token.FOREACH:
		return p.parseForEach()
	case token.SWITCH:
		return p.parseSwitch()
	case token.TRY:
		return p.parseTry()
	case token.THROW:
		return p.parseThrow()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		r := p.cur.Range
		p.advance()
		p.expect(token.SEMICOLON)
		return &ast.BreakStmt{Range: r}
	case token.CONTINUE:
		r := p.cur.Range
		p.advance()
		p.expect(token.SEMICOLON)
		return &ast.ContinueStmt{Range: r}
	case token.GOTO:
		r := p.cur.Range
		p.advance()
		label := p.expect(token.IDENT).Literal
		p.expect(token.SEMICOLON)
		return &ast.GotoStmt{Range: r, Label: label}
	}

	if p.isLocalVarDeclStart() {
		decl := p.parseLocalVarDecl()
		p.expect(token.SEMICOLON)
		return decl
	}

	// `IDENT ':' Stmt` is a label; anything else falls through to a
	// statement-expression.
	if p.at(token.IDENT) && p.next.Type == token.COLON {
		name := p.cur.Literal
		r := p.cur.Range
		p.advance()
		p.advance()
		return &ast.LabelStmt{Range: r, Name: name, Stmt: p.parseStatement()}
	}

	start := p.cur.Range
	expr := p.parseExpression()
	p.expect(token.SEMICOLON)
	return &ast.ExprStmt{Range: start, Expression: expr}
}

// isLocalVarDeclStart reports whether the upcoming tokens look like a type
// followed by an identifier, i.e. a local variable declaration rather than
// a statement-expression. A bare type name used as an expression (e.g. a
// static-member access through a type) does not arise in statement
// position in this subset, so IDENT IDENT is an unambiguous signal.
func (p *Parser) isLocalVarDeclStart() bool {
	if p.at(token.VOID) {
		return false
	}
	if !p.at(token.IDENT) {
		return false
	}
	// A single-identifier type is only a decl start when followed by
	// another identifier (the variable name), by '[' ']' (an array type,
	// unlike an element access such as xs[0]), or by a rank token.
	if p.next.Type == token.LBRACK {
		return p.lex.Peek(0).Type == token.RBRACK
	}
	return p.next.Type == token.IDENT || p.next.Type == token.ARRAY_RANK
}

func (p *Parser) parseLocalVarDecl() *ast.LocalVarDecl {
	typeExpr := p.parseTypeExpr()
	decl := &ast.LocalVarDecl{Type: typeExpr}
	for {
		name := p.expect(token.IDENT).Literal
		decl.Names = append(decl.Names, name)
		var init ast.Expression
		if p.accept(token.ASSIGN) {
			init = p.parseExpression()
		}
		decl.Inits = append(decl.Inits, init)
		if !p.accept(token.COMMA) {
			break
		}
	}
	return decl
}

func (p *Parser) parseIf() *ast.IfStmt {
	start := p.expect(token.IF).Range
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	then := p.parseStatement()
	stmt := &ast.IfStmt{Range: start, Cond: cond, Then: then}
	if p.accept(token.ELSE) {
		stmt.Else = p.parseStatement()
	}
	return stmt
}

func (p *Parser) parseWhile() *ast.WhileStmt {
	start := p.expect(token.WHILE).Range
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	body := p.parseStatement()
	return &ast.WhileStmt{Range: start, Cond: cond, Body: body}
}

func (p *Parser) parseDo() *ast.DoStmt {
	start := p.expect(token.DO).Range
	body := p.parseStatement()
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	p.expect(token.SEMICOLON)
	return &ast.DoStmt{Range: start, Body: body, Cond: cond}
}

func (p *Parser) parseFor() *ast.ForStmt {
	start := p.expect(token.FOR).Range
	p.expect(token.LPAREN)
	stmt := &ast.ForStmt{Range: start}
	if !p.at(token.SEMICOLON) {
		if p.isLocalVarDeclStart() {
			stmt.Init = p.parseLocalVarDecl()
		} else {
			e := p.parseExpression()
			stmt.Init = &ast.ExprStmt{Expression: e}
		}
	}
	p.expect(token.SEMICOLON)
	if !p.at(token.SEMICOLON) {
		stmt.Cond = p.parseExpression()
	}
	p.expect(token.SEMICOLON)
	for !p.at(token.RPAREN) {
		stmt.Post = append(stmt.Post, p.parseExpression())
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseForEach() *ast.ForEachStmt {
	start := p.expect(token.FOREACH).Range
	p.expect(token.LPAREN)
	varType := p.parseTypeExpr()
	varName := p.expect(token.IDENT).Literal
	p.expect(token.IN)
	collection := p.parseExpression()
	p.expect(token.RPAREN)
	body := p.parseStatement()
	return &ast.ForEachStmt{Range: start, VarType: varType, VarName: varName, Collection: collection, Body: body}
}

func (p *Parser) parseSwitch() *ast.SwitchStmt {
	start := p.expect(token.SWITCH).Range
	p.expect(token.LPAREN)
	tag := p.parseExpression()
	p.expect(token.RPAREN)
	p.expect(token.LBRACE)
	stmt := &ast.SwitchStmt{Range: start, Tag: tag}
	for !p.atAny(token.RBRACE, token.EOF) {
		c := &ast.SwitchCase{Range: p.cur.Range}
		if p.accept(token.CASE) {
			c.Value = p.parseExpression()
		} else {
			p.expect(token.DEFAULT)
		}
		p.expect(token.COLON)
		for !p.atAny(token.CASE, token.DEFAULT, token.RBRACE, token.EOF) {
			c.Statements = append(c.Statements, p.parseStatement())
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	p.expect(token.RBRACE)
	return stmt
}

func (p *Parser) parseTry() *ast.TryStmt {
	start := p.expect(token.TRY).Range
	body := p.parseBlock()
	stmt := &ast.TryStmt{Range: start, Body: body}
	for p.at(token.CATCH) {
		p.advance()
		clause := &ast.CatchClause{Range: p.cur.Range}
		if p.accept(token.LPAREN) {
			clause.ExcType = p.parseTypeExpr()
			if p.at(token.IDENT) {
				clause.Name = p.cur.Literal
				p.advance()
			}
			p.expect(token.RPAREN)
		}
		clause.Body = p.parseBlock()
		stmt.Catches = append(stmt.Catches, clause)
	}
	if p.accept(token.FINALLY) {
		stmt.Finally = p.parseBlock()
	}
	return stmt
}

func (p *Parser) parseThrow() *ast.ThrowStmt {
	start := p.expect(token.THROW).Range
	stmt := &ast.ThrowStmt{Range: start}
	if !p.at(token.SEMICOLON) {
		stmt.Expr = p.parseExpression()
	}
	p.expect(token.SEMICOLON)
	return stmt
}

func (p *Parser) parseReturn() *ast.ReturnStmt {
	start := p.expect(token.RETURN).Range
	stmt := &ast.ReturnStmt{Range: start}
	if !p.at(token.SEMICOLON) {
		stmt.Value = p.parseExpression()
	}
	p.expect(token.SEMICOLON)
	return stmt
}

// --- Expressions: precedence climbing ---
//
// Lowest to highest: assignment, ternary, ||, &&, |, ^, &, equality,
// relational/is/as, shift, additive, multiplicative, unary, postfix,
// primary.

func (p *Parser) parseExpression() ast.Expression {
	return p.parseAssignment()
}

var assignOps = map[token.Type]string{
	token.ASSIGN: "=", token.PLUS_ASSIGN: "+=", token.MINUS_ASSIGN: "-=",
	token.STAR_ASSIGN: "*=", token.SLASH_ASSIGN: "/=", token.PERCENT_ASSIGN: "%=",
	token.AMP_ASSIGN: "&=", token.PIPE_ASSIGN: "|=", token.CARET_ASSIGN: "^=",
	token.SHL_ASSIGN: "<<=", token.SHR_ASSIGN: ">>=",
}

func (p *Parser) parseAssignment() ast.Expression {
	left := p.parseConditional()
	if op, ok := assignOps[p.cur.Type]; ok {
		r := p.cur.Range
		p.advance()
		right := p.parseAssignment()
		return &ast.AssignExpr{Range: r, Target: left, Operator: op, Value: right}
	}
	return left
}

func (p *Parser) parseConditional() ast.Expression {
	cond := p.parseBinary(0)
	if p.accept(token.QUESTION) {
		then := p.parseAssignment()
		p.expect(token.COLON)
		els := p.parseAssignment()
		return &ast.ConditionalExpr{Cond: cond, Then: then, Else: els}
	}
	return cond
}

type binOp struct {
	tok token.Type
	lit string
}

// precLevels lists binary operators from lowest to highest precedence,
// each level left-associative. `is`/`as` sit at relational precedence.
var precLevels = [][]binOp{
	{{token.PIPE_PIPE, "||"}},
	{{token.AMP_AMP, "&&"}},
	{{token.PIPE, "|"}},
	{{token.CARET, "^"}},
	{{token.AMP, "&"}},
	{{token.EQ, "=="}, {token.NEQ, "!="}},
	{{token.LT, "<"}, {token.GT, ">"}, {token.LE, "<="}, {token.GE, ">="}},
	{{token.SHL, "<<"}, {token.SHR, ">>"}},
	{{token.PLUS, "+"}, {token.MINUS, "-"}},
	{{token.STAR, "*"}, {token.SLASH, "/"}, {token.PERCENT, "%"}},
}

func (p *Parser) parseBinary(level int) ast.Expression {
	if level >= len(precLevels) {
		return p.parseIsAs()
	}
	left := p.parseBinary(level + 1)
	for {
		matched := false
		for _, op := range precLevels[level] {
			if p.cur.Type == op.tok {
				r := p.cur.Range
				p.advance()
				right := p.parseBinary(level + 1)
				left = &ast.BinaryExpr{Range: r, Left: left, Operator: op.lit, Right: right}
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
	}
}

// parseIsAs handles `is`/`as`, which bind at relational precedence but take
// a type operand on the right rather than an expression.
func (p *Parser) parseIsAs() ast.Expression {
	left := p.parseUnary()
	for {
		switch p.cur.Type {
		case token.IS:
			r := p.cur.Range
			p.advance()
			t := p.parseTypeExpr()
			left = &ast.IsExpr{Range: r, Operand: left, Type: t}
		case token.AS:
			r := p.cur.Range
			p.advance()
			t := p.parseTypeExpr()
			left = &ast.AsExpr{Range: r, Operand: left, Type: t}
		case token.QUESTION_QUESTION:
			r := p.cur.Range
			p.advance()
			right := p.parseUnary()
			left = &ast.BinaryExpr{Range: r, Left: left, Operator: "??", Right: right}
		default:
			return left
		}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.cur.Type {
	case token.PLUS, token.MINUS, token.BANG, token.TILDE:
		op := p.cur.Type.String()
		r := p.cur.Range
		p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Range: r, Operator: op, Operand: operand}
	case token.INC, token.DEC:
		op := p.cur.Type.String()
		r := p.cur.Range
		p.advance()
		operand := p.parseUnary()
		return &ast.IncDecExpr{Range: r, Operand: operand, Operator: op, IsPrefix: true}
	case token.LPAREN:
		if p.looksLikeCast() {
			r := p.cur.Range
			p.advance()
			t := p.parseTypeExpr()
			p.expect(token.RPAREN)
			operand := p.parseUnary()
			return &ast.CastExpr{Range: r, Type: t, Operand: operand}
		}
	}
	return p.parsePostfix()
}

// looksLikeCast reports whether the parenthesized group starting at the
// current '(' is a cast, distinguishing `(Type) expr` from a parenthesized
// expression by requiring the token after the matching ')' to be able to
// start a unary expression, and the contents to be a bare type name.
func (p *Parser) looksLikeCast() bool {
	if p.next.Type != token.IDENT && p.next.Type != token.VOID {
		return false
	}
	// Look past "(" IDENT ("." IDENT)* ("[" "]")* for ")" followed by a
	// token that can start a unary expression. This needs lookahead beyond
	// the Parser's own 2-token buffer, so consult the lexer's Peek
	// directly. p.next (the IDENT just checked above) was already pulled
	// off the lexer, so Peek(0) is the token immediately following it.
	i := 0
	for {
		t := p.lex.Peek(i)
		if t.Type == token.DOT {
			i++
			t = p.lex.Peek(i)
			if t.Type != token.IDENT {
				return false
			}
			i++
			continue
		}
		if t.Type == token.LBRACK {
			i++
			if p.lex.Peek(i).Type != token.RBRACK {
				return false
			}
			i++
			continue
		}
		if t.Type == token.ARRAY_RANK {
			i++
			continue
		}
		break
	}
	if p.lex.Peek(i).Type != token.RPAREN {
		return false
	}
	after := p.lex.Peek(i + 1).Type
	switch after {
	case token.IDENT, token.INT, token.CHAR, token.STRING, token.BOOL,
		token.LPAREN, token.BANG, token.TILDE, token.MINUS, token.PLUS,
		token.THIS, token.BASE, token.NEW, token.NULL, token.TRUE, token.FALSE,
		token.INC, token.DEC, token.TYPEOF:
		return true
	}
	return false
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch p.cur.Type {
		case token.DOT:
			p.advance()
			name := p.expect(token.IDENT).Literal
			expr = &ast.FieldAccessExpr{Target: expr, Name: name}
		case token.LPAREN:
			args := p.parseArgList()
			expr = &ast.CallExpr{Callee: expr, Args: args}
		case token.LBRACK:
			p.advance()
			idx := p.parseExpression()
			p.expect(token.RBRACK)
			expr = &ast.ArrayAccessExpr{Array: expr, Index: idx}
		case token.INC, token.DEC:
			op := p.cur.Type.String()
			p.advance()
			expr = &ast.IncDecExpr{Operand: expr, Operator: op, IsPrefix: false}
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expression {
	start := p.cur.Range
	switch p.cur.Type {
	case token.INT:
		tok := p.cur
		p.advance()
		return &ast.IntLiteral{Token: tok, Value: tok.IntValue}
	case token.CHAR:
		tok := p.cur
		p.advance()
		r := []rune(tok.Literal)
		var v rune
		if len(r) > 0 {
			v = r[0]
		}
		if tok.IntValue != 0 {
			v = rune(tok.IntValue)
		}
		return &ast.CharLiteral{Token: tok, Value: v}
	case token.STRING:
		tok := p.cur
		p.advance()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}
	case token.TRUE, token.FALSE:
		tok := p.cur
		p.advance()
		return &ast.BoolLiteral{Token: tok, Value: tok.Type == token.TRUE}
	case token.NULL:
		tok := p.cur
		p.advance()
		return &ast.NullLiteral{Token: tok}
	case token.THIS:
		p.advance()
		return &ast.ThisExpr{Range: start}
	case token.BASE:
		p.advance()
		return &ast.BaseExpr{Range: start}
	case token.IDENT:
		tok := p.cur
		p.advance()
		return &ast.Identifier{Token: tok, Value: tok.Literal}
	case token.LPAREN:
		p.advance()
		e := p.parseExpression()
		p.expect(token.RPAREN)
		return e
	case token.NEW:
		return p.parseNew()
	case token.TYPEOF:
		p.advance()
		p.expect(token.LPAREN)
		t := p.parseTypeExpr()
		p.expect(token.RPAREN)
		return &ast.TypeOfExpr{Range: start, Type: t}
	default:
		p.errorf("unexpected token %s in expression", p.cur.Type)
		tok := p.cur
		p.advance()
		return &ast.Identifier{Token: tok, Value: "<error>"}
	}
}

func (p *Parser) parseNew() ast.Expression {
	start := p.expect(token.NEW).Range
	elemType := p.parseSimpleTypeExpr()
	if p.at(token.LBRACK) || p.at(token.ARRAY_RANK) {
		rank := 1
		var length ast.Expression
		if p.at(token.ARRAY_RANK) {
			rank = p.cur.Rank
			p.advance()
		} else {
			p.advance()
			if !p.at(token.RBRACK) {
				length = p.parseExpression()
			}
			p.expect(token.RBRACK)
		}
		na := &ast.NewArrayExpr{Range: start, ElementType: elemType, Length: length}
		if p.at(token.LBRACE) {
			p.advance()
			for !p.atAny(token.RBRACE, token.EOF) {
				na.Initializer = append(na.Initializer, p.parseExpression())
				if !p.accept(token.COMMA) {
					break
				}
			}
			p.expect(token.RBRACE)
		}
		_ = rank
		return na
	}
	args := p.parseArgList()
	return &ast.NewObjectExpr{Range: start, Type: elemType, Args: args}
}

// parseIntLiteralValue parses an integer literal's text with strconv's
// base-prefix rules (decimal, or 0x hex). Nothing calls it: the resolver
// reads enum member values from the IntLiteral nodes the parser builds.
func parseIntLiteralValue(lit string) (int64, error) {
	return strconv.ParseInt(lit, 0, 64)
}
