// Package parser builds an internal/ast tree from a token stream (spec
// §4.3): recursive-descent for statements and declarations, operator-
// precedence climbing for expressions, with single-token-skip and
// synthesized-closing-brace recovery on malformed input.
//
// Shape (current/peek token cursor, expect/advance helpers, a
// diagnostic-emitting recovery path instead of panicking) is grounded on
// the teacher's internal/parser/parser.go and error_recovery.go.
package parser

import (
	"strings"

	"github.com/lsl-tools/lslintel/internal/ast"
	"github.com/lsl-tools/lslintel/internal/diagnostics"
	"github.com/lsl-tools/lslintel/internal/lexer"
	"github.com/lsl-tools/lslintel/internal/position"
)

var typeKeywords = map[string]bool{
	"integer": true, "float": true, "string": true, "key": true,
	"vector": true, "rotation": true, "list": true, "void": true,
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"<<=": true, ">>=": true,
}

// Parser consumes a significant (comment- and preprocessor-line-free)
// token stream and produces an *ast.Script.
type Parser struct {
	toks     []lexer.Token
	pos      int
	diags    *diagnostics.Collection
	filePath string
	eof      position.Span
}

// New builds a Parser. tokens is filtered to drop TokenComment and
// TokenPreprocessorLine kinds, which carry no grammar meaning here (the
// semantic tokenizer, not the parser, is responsible for classifying
// directive-line contents).
func New(tokens []lexer.Token, diags *diagnostics.Collection, filePath string) *Parser {
	sig := make([]lexer.Token, 0, len(tokens))

	end := 0

	for _, t := range tokens {
		if t.Kind == lexer.TokenComment || t.Kind == lexer.TokenPreprocessorLine {
			continue
		}

		sig = append(sig, t)

		if t.Span.End > end {
			end = t.Span.End
		}
	}

	return &Parser{toks: sig, diags: diags, filePath: filePath, eof: position.Span{Start: end, End: end}}
}

// Parse parses the full token stream into a Script.
func (p *Parser) Parse() *ast.Script {
	start := p.curSpan()

	script := &ast.Script{}

	for !p.atEnd() && !p.atStateSection() {
		script.Globals = append(script.Globals, p.parseGlobalItem())
	}

	for !p.atEnd() {
		script.States = append(script.States, p.parseState())
	}

	script.Sp = position.Span{Start: start.Start, End: p.lastEnd()}

	return script
}

func (p *Parser) lastEnd() int {
	if len(p.toks) == 0 {
		return 0
	}

	return p.toks[len(p.toks)-1].Span.End
}

func (p *Parser) atStateSection() bool {
	cur := p.cur()
	if cur.Kind != lexer.TokenIdentifier {
		return false
	}

	if cur.Value == "state" {
		return true
	}

	if cur.Value == "default" {
		nxt := p.peekAt(1)

		return nxt.Kind == lexer.TokenPunctuation && nxt.Value == "{"
	}

	return false
}

func (p *Parser) cur() lexer.Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return lexer.Token{Kind: lexer.TokenEOF, Span: p.eof}
	}

	return p.toks[i]
}

func (p *Parser) curSpan() position.Span {
	return p.cur().Span
}

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.toks)
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}

	return t
}

func (p *Parser) is(kind lexer.TokenKind, value string) bool {
	t := p.cur()

	return t.Kind == kind && (value == "" || t.Value == value)
}

func (p *Parser) isValue(value string) bool {
	return p.cur().Value == value
}

// expect consumes the current token if it matches kind/value and returns
// it; otherwise it emits a parse-recovery diagnostic and returns the
// current token without advancing.
func (p *Parser) expect(kind lexer.TokenKind, value string) (lexer.Token, bool) {
	if p.is(kind, value) {
		return p.advance(), true
	}

	t := p.cur()
	p.diags.Add(diagnostics.NewBuilder().Error().
		WithCategory(diagnostics.CategoryParseRecovery).
		WithMessagef("expected %q, found %q", value, t.Value).
		WithSpan(t.Span).WithSourceFile(p.filePath).Build())

	return t, false
}

func (p *Parser) expectIdentifier() (lexer.Token, bool) {
	if p.cur().Kind == lexer.TokenIdentifier {
		return p.advance(), true
	}

	t := p.cur()
	p.diags.Add(diagnostics.NewBuilder().Error().
		WithCategory(diagnostics.CategoryParseRecovery).
		WithMessagef("expected an identifier, found %q", t.Value).
		WithSpan(t.Span).WithSourceFile(p.filePath).Build())

	return t, false
}

// ====== Top-level declarations ======

func (p *Parser) parseGlobalItem() ast.Stmt {
	start := p.curSpan()

	typeName := ""
	if p.cur().Kind == lexer.TokenIdentifier && typeKeywords[p.cur().Value] {
		typeName = p.advance().Value
	}

	nameTok, ok := p.expectIdentifier()
	if !ok {
		return p.skipOne(start)
	}

	if p.isValue("(") {
		return p.parseFunctionDecl(start, typeName, nameTok)
	}

	return p.parseVarDeclTail(start, typeName, nameTok)
}

func (p *Parser) parseFunctionDecl(start position.Span, returnType string, nameTok lexer.Token) *ast.FunctionDecl {
	p.advance() // '('

	var params []*ast.Param
	if !p.isValue(")") {
		params = append(params, p.parseParam())

		for p.isValue(",") {
			p.advance()
			params = append(params, p.parseParam())
		}
	}

	p.expect(lexer.TokenPunctuation, ")")

	body := p.parseBlock()

	return &ast.FunctionDecl{
		Sp:         position.Span{Start: start.Start, End: body.Sp.End},
		ReturnType: returnType,
		Name:       nameTok.Value,
		NameSpan:   nameTok.Span,
		Params:     params,
		Body:       body,
	}
}

func (p *Parser) parseParam() *ast.Param {
	start := p.curSpan()

	typeName := ""
	if p.cur().Kind == lexer.TokenIdentifier && typeKeywords[p.cur().Value] {
		typeName = p.advance().Value
	}

	nameTok, _ := p.expectIdentifier()

	return &ast.Param{
		Sp:       position.Span{Start: start.Start, End: nameTok.Span.End},
		Type:     typeName,
		Name:     nameTok.Value,
		NameSpan: nameTok.Span,
	}
}

func (p *Parser) parseVarDeclTail(start position.Span, typeName string, nameTok lexer.Token) *ast.VarDecl {
	var init ast.Expr

	if p.isValue("=") {
		p.advance()
		init = p.parseExpr()
	}

	semi, _ := p.expect(lexer.TokenPunctuation, ";")

	end := semi.Span.End
	if end <= start.Start {
		end = p.lastEnd()
	}

	return &ast.VarDecl{
		Sp:       position.Span{Start: start.Start, End: end},
		Type:     typeName,
		Name:     nameTok.Value,
		NameSpan: nameTok.Span,
		Init:     init,
	}
}

func (p *Parser) parseState() *ast.StateDecl {
	start := p.curSpan()

	name := "default"

	var nameSpan position.Span

	if p.isValue("state") {
		p.advance()

		nameTok, _ := p.expectIdentifier()
		name = nameTok.Value
		nameSpan = nameTok.Span
	} else {
		nameTok, _ := p.expect(lexer.TokenIdentifier, "default")
		nameSpan = nameTok.Span
	}

	p.expect(lexer.TokenPunctuation, "{")

	var events []*ast.EventHandler
	for !p.isValue("}") && !p.atEnd() {
		events = append(events, p.parseEventHandler())
	}

	closeTok, _ := p.expect(lexer.TokenPunctuation, "}")

	return &ast.StateDecl{
		Sp:       position.Span{Start: start.Start, End: endOr(closeTok, p.lastEnd())},
		Name:     name,
		NameSpan: nameSpan,
		Events:   events,
	}
}

func (p *Parser) parseEventHandler() *ast.EventHandler {
	start := p.curSpan()

	nameTok, _ := p.expectIdentifier()

	p.expect(lexer.TokenPunctuation, "(")

	var params []*ast.Param
	if !p.isValue(")") {
		params = append(params, p.parseParam())

		for p.isValue(",") {
			p.advance()
			params = append(params, p.parseParam())
		}
	}

	p.expect(lexer.TokenPunctuation, ")")

	body := p.parseBlock()

	return &ast.EventHandler{
		Sp:       position.Span{Start: start.Start, End: body.Sp.End},
		Name:     nameTok.Value,
		NameSpan: nameTok.Span,
		Params:   params,
		Body:     body,
	}
}

func endOr(t lexer.Token, fallback int) int {
	if t.Span.End > 0 {
		return t.Span.End
	}

	return fallback
}

// ====== Statements ======

func (p *Parser) parseBlock() *ast.Block {
	start := p.curSpan()

	p.expect(lexer.TokenPunctuation, "{")

	var stmts []ast.Stmt

	for !p.isValue("}") && !p.atEnd() {
		stmts = append(stmts, p.parseStatement())
	}

	if p.atEnd() {
		p.diags.Add(diagnostics.NewBuilder().Error().
			WithCategory(diagnostics.CategoryParseRecovery).
			WithMessage("unclosed block: synthesized closing brace at end of file").
			WithSpan(start).WithSourceFile(p.filePath).Build())

		return &ast.Block{Sp: position.Span{Start: start.Start, End: p.lastEnd()}, Stmts: stmts}
	}

	closeTok := p.advance() // '}'

	return &ast.Block{Sp: position.Span{Start: start.Start, End: closeTok.Span.End}, Stmts: stmts}
}

func (p *Parser) parseStatement() ast.Stmt {
	switch {
	case p.isValue("{"):
		return p.parseBlock()
	case p.isValue(";"):
		t := p.advance()
		return &ast.EmptyStmt{Sp: t.Span}
	case p.isValue("if"):
		return p.parseIf()
	case p.isValue("while"):
		return p.parseWhile()
	case p.isValue("do"):
		return p.parseDoWhile()
	case p.isValue("for"):
		return p.parseFor()
	case p.isValue("return"):
		return p.parseReturn()
	case p.isValue("jump"):
		return p.parseJump()
	case p.isValue("@"):
		return p.parseLabel()
	case p.isValue("state"):
		return p.parseStateChange()
	case p.cur().Kind == lexer.TokenIdentifier && typeKeywords[p.cur().Value]:
		return p.parseLocalVarDecl()
	case p.cur().Kind == lexer.TokenEOF:
		t := p.cur()
		p.diags.Add(diagnostics.NewBuilder().Error().
			WithCategory(diagnostics.CategoryParseRecovery).
			WithMessage("unexpected end of file while parsing a statement").
			WithSpan(t.Span).WithSourceFile(p.filePath).Build())

		return &ast.EmptyStmt{Sp: t.Span}
	default:
		return p.parseExprOrRecover()
	}
}

// skipOne implements the "single-token skip" recovery policy (spec
// §4.3): consume exactly one token and report it via a placeholder node.
func (p *Parser) skipOne(span position.Span) *ast.VarDecl {
	p.diags.Add(diagnostics.NewBuilder().Error().
		WithCategory(diagnostics.CategoryParseRecovery).
		WithMessagef("unexpected token %q, skipped", p.cur().Value).
		WithSpan(span).WithSourceFile(p.filePath).Build())

	if !p.atEnd() {
		p.advance()
	}

	return &ast.VarDecl{Sp: span}
}

func (p *Parser) parseExprOrRecover() ast.Stmt {
	if p.cur().Kind == lexer.TokenOperator || p.cur().Kind == lexer.TokenPunctuation {
		if !p.isValue("(") && !p.isValue("[") && !p.isValue("<") && !p.isValue("-") && !p.isValue("+") &&
			!p.isValue("!") && !p.isValue("~") && !p.isValue("++") && !p.isValue("--") {
			t := p.advance()
			p.diags.Add(diagnostics.NewBuilder().Error().
				WithCategory(diagnostics.CategoryParseRecovery).
				WithMessagef("unexpected token %q, skipped", t.Value).
				WithSpan(t.Span).WithSourceFile(p.filePath).Build())

			return &ast.EmptyStmt{Sp: t.Span}
		}
	}

	start := p.curSpan()
	x := p.parseExpr()
	semi, _ := p.expect(lexer.TokenPunctuation, ";")

	end := semi.Span.End
	if end <= start.Start {
		end = x.Span().End
	}

	return &ast.ExprStmt{Sp: position.Span{Start: start.Start, End: end}, X: x}
}

func (p *Parser) parseLocalVarDecl() ast.Stmt {
	start := p.curSpan()
	typeName := p.advance().Value
	nameTok, _ := p.expectIdentifier()

	return p.parseVarDeclTail(start, typeName, nameTok)
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.curSpan()
	p.advance() // 'if'
	p.expect(lexer.TokenPunctuation, "(")

	cond := p.parseExpr()

	p.expect(lexer.TokenPunctuation, ")")

	then := p.parseStatement()

	var els ast.Stmt

	end := then.Span().End
	if p.isValue("else") {
		p.advance()
		els = p.parseStatement()
		end = els.Span().End
	}

	return &ast.IfStmt{Sp: position.Span{Start: start.Start, End: end}, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.curSpan()
	p.advance() // 'while'
	p.expect(lexer.TokenPunctuation, "(")

	cond := p.parseExpr()

	p.expect(lexer.TokenPunctuation, ")")

	body := p.parseStatement()

	return &ast.WhileStmt{Sp: position.Span{Start: start.Start, End: body.Span().End}, Cond: cond, Body: body}
}

func (p *Parser) parseDoWhile() ast.Stmt {
	start := p.curSpan()
	p.advance() // 'do'

	body := p.parseStatement()

	p.expect(lexer.TokenIdentifier, "while")
	p.expect(lexer.TokenPunctuation, "(")

	cond := p.parseExpr()

	p.expect(lexer.TokenPunctuation, ")")

	semi, _ := p.expect(lexer.TokenPunctuation, ";")

	return &ast.DoWhileStmt{Sp: position.Span{Start: start.Start, End: endOr(semi, p.lastEnd())}, Body: body, Cond: cond}
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.curSpan()
	p.advance() // 'for'
	p.expect(lexer.TokenPunctuation, "(")

	init := p.parseExprListUntil(";")

	p.expect(lexer.TokenPunctuation, ";")

	var cond ast.Expr
	if !p.isValue(";") {
		cond = p.parseExpr()
	}

	p.expect(lexer.TokenPunctuation, ";")

	post := p.parseExprListUntil(")")

	p.expect(lexer.TokenPunctuation, ")")

	body := p.parseStatement()

	return &ast.ForStmt{
		Sp:   position.Span{Start: start.Start, End: body.Span().End},
		Init: init, Cond: cond, Post: post, Body: body,
	}
}

func (p *Parser) parseExprListUntil(terminator string) []ast.Expr {
	if p.isValue(terminator) {
		return nil
	}

	var out []ast.Expr
	out = append(out, p.parseExpr())

	for p.isValue(",") {
		p.advance()
		out = append(out, p.parseExpr())
	}

	return out
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.curSpan()
	p.advance() // 'return'

	var value ast.Expr
	if !p.isValue(";") {
		value = p.parseExpr()
	}

	semi, _ := p.expect(lexer.TokenPunctuation, ";")

	return &ast.ReturnStmt{Sp: position.Span{Start: start.Start, End: endOr(semi, p.lastEnd())}, Value: value}
}

func (p *Parser) parseJump() ast.Stmt {
	start := p.curSpan()
	p.advance() // 'jump'

	nameTok, _ := p.expectIdentifier()
	semi, _ := p.expect(lexer.TokenPunctuation, ";")

	return &ast.JumpStmt{Sp: position.Span{Start: start.Start, End: endOr(semi, p.lastEnd())}, Label: nameTok.Value}
}

func (p *Parser) parseLabel() ast.Stmt {
	start := p.curSpan()
	p.advance() // '@'

	nameTok, _ := p.expectIdentifier()
	semi, _ := p.expect(lexer.TokenPunctuation, ";")

	return &ast.LabelStmt{Sp: position.Span{Start: start.Start, End: endOr(semi, p.lastEnd())}, Name: nameTok.Value}
}

func (p *Parser) parseStateChange() ast.Stmt {
	start := p.curSpan()
	p.advance() // 'state'

	nameTok, _ := p.expectIdentifier()
	semi, _ := p.expect(lexer.TokenPunctuation, ";")

	return &ast.StateChangeStmt{Sp: position.Span{Start: start.Start, End: endOr(semi, p.lastEnd())}, Name: nameTok.Value}
}

// ====== Expressions ======

func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expr {
	left := p.parseLogicalOr()

	if p.cur().Kind == lexer.TokenOperator && assignOps[p.cur().Value] {
		opTok := p.advance()
		right := p.parseAssignment()
		op := strings.TrimSuffix(opTok.Value, "=")

		return &ast.AssignExpr{
			Sp:     position.Span{Start: left.Span().Start, End: right.Span().End},
			Op:     op,
			Target: left,
			Value:  right,
		}
	}

	return left
}

func (p *Parser) binaryLevel(next func() ast.Expr, ops map[string]bool) ast.Expr {
	left := next()

	for p.cur().Kind == lexer.TokenOperator && ops[p.cur().Value] {
		opTok := p.advance()
		right := next()
		left = &ast.BinaryExpr{
			Sp:    position.Span{Start: left.Span().Start, End: right.Span().End},
			Op:    opTok.Value,
			Left:  left,
			Right: right,
		}
	}

	return left
}

var (
	orOps      = map[string]bool{"||": true}
	andOps     = map[string]bool{"&&": true}
	bitOrOps   = map[string]bool{"|": true}
	bitXorOps  = map[string]bool{"^": true}
	bitAndOps  = map[string]bool{"&": true}
	eqOps      = map[string]bool{"==": true, "!=": true}
	relOps     = map[string]bool{"<": true, "<=": true, ">": true, ">=": true}
	shiftOps   = map[string]bool{"<<": true, ">>": true}
	addOps     = map[string]bool{"+": true, "-": true}
	mulOps     = map[string]bool{"*": true, "/": true, "%": true}
)

func (p *Parser) parseLogicalOr() ast.Expr  { return p.binaryLevel(p.parseLogicalAnd, orOps) }
func (p *Parser) parseLogicalAnd() ast.Expr  { return p.binaryLevel(p.parseBitOr, andOps) }
func (p *Parser) parseBitOr() ast.Expr       { return p.binaryLevel(p.parseBitXor, bitOrOps) }
func (p *Parser) parseBitXor() ast.Expr      { return p.binaryLevel(p.parseBitAnd, bitXorOps) }
func (p *Parser) parseBitAnd() ast.Expr      { return p.binaryLevel(p.parseEquality, bitAndOps) }
func (p *Parser) parseEquality() ast.Expr    { return p.binaryLevel(p.parseRelational, eqOps) }
func (p *Parser) parseRelational() ast.Expr {
	// '<' introduces a vector/rotation literal at primary position; at
	// relational-operator position it is always a comparison, so this
	// level is unambiguous.
	return p.binaryLevel(p.parseShift, relOps)
}
func (p *Parser) parseShift() ast.Expr       { return p.binaryLevel(p.parseAdditive, shiftOps) }
func (p *Parser) parseAdditive() ast.Expr    { return p.binaryLevel(p.parseMultiplicative, addOps) }
func (p *Parser) parseMultiplicative() ast.Expr { return p.binaryLevel(p.parseUnary, mulOps) }

var prefixOps = map[string]bool{"!": true, "~": true, "-": true, "+": true}

func (p *Parser) parseUnary() ast.Expr {
	t := p.cur()

	if t.Kind == lexer.TokenOperator && (t.Value == "++" || t.Value == "--") {
		p.advance()
		x := p.parseUnary()

		return &ast.IncDecExpr{Sp: position.Span{Start: t.Span.Start, End: x.Span().End}, Op: t.Value, X: x, Prefix: true}
	}

	if t.Kind == lexer.TokenOperator && prefixOps[t.Value] {
		p.advance()
		x := p.parseUnary()

		return &ast.UnaryExpr{Sp: position.Span{Start: t.Span.Start, End: x.Span().End}, Op: t.Value, X: x}
	}

	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()

	for {
		switch {
		case p.isValue("("):
			x = p.parseCallSuffix(x)
		case p.isValue("["):
			x = p.parseIndexSuffix(x)
		case p.isValue("."):
			x = p.parseMemberSuffix(x)
		case p.cur().Kind == lexer.TokenOperator && (p.isValue("++") || p.isValue("--")):
			t := p.advance()
			x = &ast.IncDecExpr{Sp: position.Span{Start: x.Span().Start, End: t.Span.End}, Op: t.Value, X: x, Prefix: false}
		default:
			return x
		}
	}
}

func (p *Parser) parseCallSuffix(callee ast.Expr) ast.Expr {
	start := callee.Span().Start
	p.advance() // '('

	var args []ast.Expr
	if !p.isValue(")") {
		args = append(args, p.parseExpr())

		for p.isValue(",") {
			p.advance()
			args = append(args, p.parseExpr())
		}
	}

	closeTok, _ := p.expect(lexer.TokenPunctuation, ")")

	name := ""
	var nameSpan position.Span

	if id, ok := callee.(*ast.Identifier); ok {
		name = id.Name
		nameSpan = id.Sp
	} else {
		p.diags.Add(diagnostics.NewBuilder().Error().
			WithCategory(diagnostics.CategoryParseRecovery).
			WithMessage("call target must be a simple identifier").
			WithSpan(callee.Span()).WithSourceFile(p.filePath).Build())
	}

	return &ast.CallExpr{
		Sp:         position.Span{Start: start, End: endOr(closeTok, p.lastEnd())},
		Callee:     name,
		CalleeSpan: nameSpan,
		Args:       args,
	}
}

func (p *Parser) parseIndexSuffix(x ast.Expr) ast.Expr {
	p.advance() // '['
	idx := p.parseExpr()
	closeTok, _ := p.expect(lexer.TokenPunctuation, "]")

	return &ast.IndexExpr{Sp: position.Span{Start: x.Span().Start, End: endOr(closeTok, p.lastEnd())}, X: x, Index: idx}
}

func (p *Parser) parseMemberSuffix(x ast.Expr) ast.Expr {
	p.advance() // '.'
	nameTok, _ := p.expectIdentifier()

	return &ast.MemberExpr{
		Sp:         position.Span{Start: x.Span().Start, End: nameTok.Span.End},
		X:          x,
		Member:     nameTok.Value,
		MemberSpan: nameTok.Span,
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	t := p.cur()

	switch {
	case t.Kind == lexer.TokenNumber:
		p.advance()
		if isFloatLiteral(t.Value) {
			return &ast.FloatLit{Sp: t.Span, Value: t.Value}
		}

		return &ast.IntegerLit{Sp: t.Span, Value: t.Value}

	case t.Kind == lexer.TokenString:
		p.advance()

		return &ast.StringLit{Sp: t.Span, Value: t.Value}

	case t.Kind == lexer.TokenPunctuation && t.Value == "(":
		p.advance()

		inner := p.parseExpr()
		p.expect(lexer.TokenPunctuation, ")")

		return inner

	case t.Kind == lexer.TokenPunctuation && t.Value == "[":
		return p.parseListLit()

	case t.Kind == lexer.TokenOperator && t.Value == "<":
		return p.parseVectorOrRotationLit()

	case t.Kind == lexer.TokenIdentifier:
		p.advance()

		return &ast.Identifier{Sp: t.Span, Name: t.Value}

	default:
		p.diags.Add(diagnostics.NewBuilder().Error().
			WithCategory(diagnostics.CategoryParseRecovery).
			WithMessagef("unexpected token %q in expression", t.Value).
			WithSpan(t.Span).WithSourceFile(p.filePath).Build())

		if !p.atEnd() {
			p.advance()
		}

		return &ast.Identifier{Sp: t.Span, Name: ""}
	}
}

func (p *Parser) parseListLit() ast.Expr {
	start := p.curSpan()
	p.advance() // '['

	var elems []ast.Expr
	if !p.isValue("]") {
		elems = append(elems, p.parseExpr())

		for p.isValue(",") {
			p.advance()
			elems = append(elems, p.parseExpr())
		}
	}

	closeTok, _ := p.expect(lexer.TokenPunctuation, "]")

	return &ast.ListLit{Sp: position.Span{Start: start.Start, End: endOr(closeTok, p.lastEnd())}, Elements: elems}
}

func (p *Parser) parseVectorOrRotationLit() ast.Expr {
	start := p.curSpan()
	p.advance() // '<'

	x := p.parseExpr()
	p.expect(lexer.TokenPunctuation, ",")
	y := p.parseExpr()
	p.expect(lexer.TokenPunctuation, ",")
	// The last component stops below the relational level so the closing
	// '>' is left for the expect below instead of read as a comparison.
	z := p.parseShift()

	if p.isValue(",") {
		p.advance()

		s := p.parseShift()
		closeTok, _ := p.expect(lexer.TokenOperator, ">")

		return &ast.RotationLit{
			Sp:         position.Span{Start: start.Start, End: endOr(closeTok, p.lastEnd())},
			X: x, Y: y, Z: z, S: s,
		}
	}

	closeTok, _ := p.expect(lexer.TokenOperator, ">")

	return &ast.VectorLit{Sp: position.Span{Start: start.Start, End: endOr(closeTok, p.lastEnd())}, X: x, Y: y, Z: z}
}

func isFloatLiteral(v string) bool {
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "0x") {
		return false
	}

	return strings.ContainsAny(v, ".eEfF")
}
