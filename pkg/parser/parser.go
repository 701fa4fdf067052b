// Package parser implements the JSONata tokenizer and parser.
//
// The parser is a top-down operator precedence (Pratt) parser. Each token
// kind is looked up in a rule table that provides its left binding power
// and its prefix (nud) and infix (led) handlers.
//
// # Example
//
//	node, err := parser.Parse("$.items[price > 100]")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The result is a raw tree; the compiler package resolves it into the
// form the evaluator consumes.
package parser

import (
	"github.com/sandrolain/jsonata/pkg/types"
)

// Parse parses a JSONata expression into a raw syntax tree.
//
// If parsing fails, it returns a *types.Error carrying the error code and
// the source position.
func Parse(query string) (*Node, error) {
	p := NewParser(query)
	return p.Parse()
}

// Parser builds a raw syntax tree from a token stream.
type Parser struct {
	lexer  *Lexer
	source string

	token Token  // current token
	id    string // rule table key of the current token
}

// NewParser creates a parser for query.
func NewParser(query string) *Parser {
	return &Parser{
		lexer:  NewLexer(query),
		source: query,
	}
}

// Parse parses the whole input.
func (p *Parser) Parse() (*Node, error) {
	if err := p.advance("", false); err != nil {
		return nil, err
	}
	node, err := p.expression(0)
	if err != nil {
		return nil, err
	}
	if p.id != "(end)" {
		return nil, types.NewError(types.ErrSyntaxError, "", p.token.Position).WithToken(p.token.Value)
	}
	return node, nil
}

// advance checks that the current token is expected (when given) and
// moves to the next one. infix reports that the next token follows an
// operand, where / is division rather than the start of a regex.
func (p *Parser) advance(expected string, infix bool) error {
	if expected != "" && p.id != expected {
		code := types.ErrExpectedToken
		if p.id == "(end)" {
			code = types.ErrExpectedBeforeEnd
		}
		return types.NewError(code, "expected "+expected, p.token.Position).WithToken(p.token.Value)
	}

	t, err := p.lexer.Next(!infix)
	if err != nil {
		return err
	}

	var id string
	switch t.Type {
	case TokenEOF:
		id = "(end)"
	case TokenName, TokenVariable:
		id = "(name)"
	case TokenString, TokenNumber, TokenValue:
		id = "(literal)"
	case TokenRegex:
		id = "(regex)"
	case TokenOperator:
		if _, ok := rules[t.Value]; !ok {
			return types.NewError(types.ErrUnknownOperator, "", t.Position).WithToken(t.Value)
		}
		id = t.Value
	}
	p.token = t
	p.id = id
	return nil
}

// expression parses operators binding tighter than rbp.
func (p *Parser) expression(rbp int) (*Node, error) {
	t, id := p.token, p.id
	if err := p.advance("", true); err != nil {
		return nil, err
	}
	left, err := p.nud(id, t)
	if err != nil {
		return nil, err
	}
	for rbp < p.lbp() {
		t, id = p.token, p.id
		if err := p.advance("", false); err != nil {
			return nil, err
		}
		left, err = p.led(id, t, left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) lbp() int {
	if r, ok := rules[p.id]; ok {
		return r.lbp
	}
	return 0
}

func (p *Parser) nud(id string, t Token) (*Node, error) {
	r, ok := rules[id]
	if !ok || r.nud == nil {
		if id == "(end)" {
			return nil, types.NewError(types.ErrUnexpectedEnd, "", t.Position)
		}
		return nil, types.NewError(types.ErrInvalidPrefix, "", t.Position).WithToken(t.Value)
	}
	return r.nud(p, t)
}

func (p *Parser) led(id string, t Token, left *Node) (*Node, error) {
	r := rules[id]
	if r.led == nil {
		return nil, types.NewError(types.ErrSyntaxError, "", t.Position).WithToken(t.Value)
	}
	return r.led(p, t, left)
}
