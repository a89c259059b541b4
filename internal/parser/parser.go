// Package parser builds the AST (spec.md §6's contract) from token stream
// via recursive descent for statements and precedence climbing for
// expressions, in the teacher's style: tokenize the whole input up front,
// track diagnostics on the parser itself, and recover from a malformed
// construct by synchronizing to the next likely statement/declaration
// boundary rather than aborting outright.
package parser

import (
	"strconv"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/diagnostic"
	"github.com/glintlang/glint/internal/lexer"
	"github.com/glintlang/glint/internal/value"
)

// Parser holds the parser state: the fully tokenized input, a cursor, and
// the diagnostics accumulated so far.
type Parser struct {
	tokens []lexer.Token
	pos    int
	diags  *diagnostic.Diagnostics
}

// New creates a parser over source, tokenizing it immediately.
func New(source string) *Parser {
	return &Parser{
		tokens: lexer.New(source).Tokenize(),
		diags:  diagnostic.New(),
	}
}

// Diagnostics returns the diagnostics accumulated during Parse.
func (p *Parser) Diagnostics() *diagnostic.Diagnostics {
	return p.diags
}

// Parse parses the whole input as a sequence of top-level function
// definitions.
func (p *Parser) Parse() []*ast.FuncDef {
	var defs []*ast.FuncDef
	for !p.check(lexer.EOF) {
		if !p.check(lexer.FN) {
			tok := p.current()
			p.diags.Errorf(tok.Line, tok.Column, "expected a function definition, got %s", tok.Type)
			startPos := p.pos
			p.synchronize()
			if p.pos == startPos {
				p.advance() // ensure forward progress to avoid infinite loop
			}
			continue
		}
		defs = append(defs, p.parseFuncDef())
	}
	return defs
}

func (p *Parser) parseFuncDef() *ast.FuncDef {
	fnTok := p.expect(lexer.FN)
	name := p.expect(lexer.IDENT).Literal

	p.expect(lexer.LPAREN)
	var params []ast.Param
	for !p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
		pname := p.expect(lexer.IDENT).Literal
		p.expect(lexer.COLON)
		ptype := p.parseType()
		params = append(params, ast.Param{Name: pname, Type: ptype})
		if !p.check(lexer.RPAREN) {
			p.expect(lexer.COMMA)
		}
	}
	p.expect(lexer.RPAREN)

	retType := value.Unit
	if p.match(lexer.COLON) {
		retType = p.parseType()
	}

	body := p.parseBlock()

	return &ast.FuncDef{
		Name:       name,
		Params:     params,
		ReturnType: retType,
		Body:       body,
		Line:       fnTok.Line,
		Col:        fnTok.Column,
	}
}

func (p *Parser) parseType() value.Type {
	tok := p.current()
	switch tok.Type {
	case lexer.I32_TYPE:
		p.advance()
		return value.I32
	case lexer.F64_TYPE:
		p.advance()
		return value.F64
	case lexer.BOOL_TYPE:
		p.advance()
		return value.Bool
	case lexer.UNIT_TYPE:
		p.advance()
		return value.Unit
	default:
		p.diags.Errorf(tok.Line, tok.Column, "expected a type, got %s", tok.Type)
		return value.Unit
	}
}

// parseBlock parses `{ expr (;|) expr ... }`. Semicolons between
// expressions are optional and leave no trace in the AST, so `{ e }` and
// `{ e; }` parse identically; whether the block yields a value is decided
// by the builder from its last expression.
func (p *Parser) parseBlock() *ast.Block {
	open := p.expect(lexer.LBRACE)
	block := &ast.Block{Line: open.Line, Col: open.Column}

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		expr := p.parseStatement()
		block.Exprs = append(block.Exprs, expr)
		p.match(lexer.SEMICOLON)
	}
	p.expect(lexer.RBRACE)
	return block
}

// parseStatement parses one statement-or-expression inside a block: let,
// return, while, or a bare expression (which may itself be an assignment
// if the parsed expression is a plain identifier followed by `=`).
func (p *Parser) parseStatement() ast.Expr {
	switch p.current().Type {
	case lexer.LET:
		return p.parseDeclare()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.WHILE:
		return p.parseWhile()
	default:
		return p.parseExprOrAssign()
	}
}

func (p *Parser) parseDeclare() *ast.Declare {
	tok := p.expect(lexer.LET)
	name := p.expect(lexer.IDENT).Literal
	p.expect(lexer.ASSIGN)
	val := p.parseExpression()
	return &ast.Declare{Name: name, Value: val, Line: tok.Line, Col: tok.Column}
}

func (p *Parser) parseReturn() *ast.Return {
	tok := p.expect(lexer.RETURN)
	val := p.parseExpression()
	return &ast.Return{Value: val, Line: tok.Line, Col: tok.Column}
}

func (p *Parser) parseWhile() *ast.While {
	tok := p.expect(lexer.WHILE)
	cond := p.parseExpression()
	body := p.parseBlock()
	return &ast.While{Cond: cond, Body: body, Line: tok.Line, Col: tok.Column}
}

// parseExprOrAssign parses an expression, turning it into an Assign if it
// turns out to be a bare identifier immediately followed by `=`.
func (p *Parser) parseExprOrAssign() ast.Expr {
	expr := p.parseExpression()
	if p.check(lexer.ASSIGN) {
		ident, ok := expr.(*ast.Ident)
		if !ok {
			tok := p.current()
			p.diags.Errorf(tok.Line, tok.Column, "left-hand side of assignment must be a name")
			p.advance()
			return expr
		}
		tok := p.advance()
		rhs := p.parseExpression()
		return &ast.Assign{Name: ident.Name, Value: rhs, Line: tok.Line, Col: tok.Column}
	}
	return expr
}

// --- expression parsing: precedence climbing ---

const (
	precNone       = 0
	precEquality   = 1
	precComparison = 2
	precAdditive   = 3
	precMulti      = 4
)

func tokenPrecedence(tt lexer.TokenType) int {
	switch tt {
	case lexer.EQ, lexer.NEQ:
		return precEquality
	case lexer.LT, lexer.GT, lexer.LEQ, lexer.GEQ:
		return precComparison
	case lexer.PLUS, lexer.MINUS:
		return precAdditive
	case lexer.STAR, lexer.SLASH:
		return precMulti
	default:
		return precNone
	}
}

func tokenOp(tt lexer.TokenType) value.Op {
	switch tt {
	case lexer.PLUS:
		return value.Add
	case lexer.MINUS:
		return value.Sub
	case lexer.STAR:
		return value.Mul
	case lexer.SLASH:
		return value.Div
	case lexer.EQ:
		return value.Eq
	case lexer.NEQ:
		return value.Ne
	case lexer.LT:
		return value.Lt
	case lexer.LEQ:
		return value.Le
	case lexer.GT:
		return value.Gt
	case lexer.GEQ:
		return value.Ge
	default:
		panic("parser: not a binary operator token")
	}
}

func (p *Parser) parseExpression() ast.Expr {
	return p.parsePrecedence(precEquality)
}

func (p *Parser) parsePrecedence(minPrec int) ast.Expr {
	left := p.parseUnary()

	for {
		prec := tokenPrecedence(p.current().Type)
		if prec < minPrec || prec == precNone {
			break
		}
		op := p.advance()
		right := p.parsePrecedence(prec + 1)
		left = &ast.BinaryOp{Op: tokenOp(op.Type), Left: left, Right: right, Line: op.Line, Col: op.Column}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.check(lexer.MINUS) {
		tok := p.advance()
		operand := p.parseUnary()
		return &ast.Negative{Operand: operand, Line: tok.Line, Col: tok.Column}
	}
	return p.parseCall()
}

func (p *Parser) parseCall() ast.Expr {
	expr := p.parsePrimary()
	for p.check(lexer.LPAREN) {
		tok := p.advance()
		var args []ast.Expr
		for !p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
			args = append(args, p.parseExpression())
			if !p.check(lexer.RPAREN) {
				p.expect(lexer.COMMA)
			}
		}
		p.expect(lexer.RPAREN)
		expr = &ast.Call{Callee: expr, Args: args, Line: tok.Line, Col: tok.Column}
	}
	return expr
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.current()
	switch tok.Type {
	case lexer.INT_LIT:
		p.advance()
		n, err := strconv.ParseInt(tok.Literal, 10, 32)
		if err != nil {
			p.diags.Errorf(tok.Line, tok.Column, "invalid integer literal %q", tok.Literal)
		}
		return &ast.IntLit{Value: int32(n), Line: tok.Line, Col: tok.Column}
	case lexer.FLOAT_LIT:
		p.advance()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.diags.Errorf(tok.Line, tok.Column, "invalid float literal %q", tok.Literal)
		}
		return &ast.FloatLit{Value: f, Line: tok.Line, Col: tok.Column}
	case lexer.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true, Line: tok.Line, Col: tok.Column}
	case lexer.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false, Line: tok.Line, Col: tok.Column}
	case lexer.IDENT:
		p.advance()
		return &ast.Ident{Name: tok.Literal, Line: tok.Line, Col: tok.Column}
	case lexer.LPAREN:
		p.advance()
		expr := p.parseExpression()
		p.expect(lexer.RPAREN)
		return expr
	case lexer.IF:
		return p.parseIf()
	case lexer.LBRACE:
		return p.parseBlock()
	default:
		p.diags.Errorf(tok.Line, tok.Column, "unexpected token %s in expression", tok.Type)
		p.advance()
		return &ast.IntLit{Value: 0, Line: tok.Line, Col: tok.Column}
	}
}

func (p *Parser) parseIf() *ast.If {
	tok := p.expect(lexer.IF)
	cond := p.parseExpression()
	then := p.parseBlock()

	node := &ast.If{Cond: cond, Then: then, Line: tok.Line, Col: tok.Column}
	if p.match(lexer.ELSE) {
		if p.check(lexer.IF) {
			node.Else = p.parseIf()
		} else {
			node.Else = p.parseBlock()
		}
	}
	return node
}
