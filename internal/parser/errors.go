package parser

import (
	"github.com/glintlang/glint/internal/lexer"
)

// syncTokens are tokens the parser can synchronize to after an error,
// trimmed to this language's top-level and statement starters.
var syncTokens = map[lexer.TokenType]bool{
	lexer.FN:        true,
	lexer.LET:       true,
	lexer.RETURN:    true,
	lexer.IF:        true,
	lexer.WHILE:     true,
	lexer.RBRACE:    true,
	lexer.SEMICOLON: true,
	lexer.EOF:       true,
}

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() lexer.Token {
	if p.pos+1 >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	tok := p.current()
	if tok.Type != tt {
		p.diags.Errorf(tok.Line, tok.Column, "expected %s, got %s", tt, tok.Type)
		return tok
	}
	return p.advance()
}

func (p *Parser) check(tt lexer.TokenType) bool {
	return p.current().Type == tt
}

func (p *Parser) match(tt lexer.TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

// synchronize skips tokens until a sync point, forcing progress past a
// dangling semicolon so a single malformed statement can't stall the loop.
func (p *Parser) synchronize() {
	for !p.check(lexer.EOF) {
		if p.current().Type == lexer.SEMICOLON {
			p.advance()
			return
		}
		if syncTokens[p.current().Type] {
			return
		}
		p.advance()
	}
}
