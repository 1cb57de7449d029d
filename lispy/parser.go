package lispy

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

type Parser struct {
	lexer  *Lexer
	tokens []Token
	pos    int
}

func NewParser() *Parser {
	return &Parser{lexer: NewLexer()}
}

type MoreInputError struct{}

func (e *MoreInputError) Error() string {
	return "parser needs more input"
}

// ErrMoreInputNeeded means the input stopped inside an open bracket
// or string; the repl answers it with a continuation prompt.
var ErrMoreInputNeeded = &MoreInputError{}

var UnexpectedEnd error = errors.New("Unexpected end of input")

func (p *Parser) Reset() {
	p.lexer.Reset()
	p.tokens = nil
	p.pos = 0
}

func (p *Parser) ResetAddNewInput(s io.RuneScanner) {
	p.Reset()
	p.lexer.AddNextStream(s)
}

func (p *Parser) Linenum() int {
	return p.lexer.Linenum()
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return EndTk
	}
	return p.tokens[p.pos]
}

func (p *Parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// ParseTokens reads every top-level expression in the input.
func (p *Parser) ParseTokens() ([]Sexp, error) {
	tokens, err := p.lexer.Tokenize()
	if err != nil {
		return nil, err
	}
	p.tokens = tokens
	p.pos = 0

	out := make([]Sexp, 0, 4)
	for p.peek().typ != TokenEnd {
		expr, err := p.ParseExpression(0)
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

func (p *Parser) ParseExpression(depth int) (Sexp, error) {
	tok := p.next()
	switch tok.typ {
	case TokenLParen:
		xs, err := p.ParseList(depth+1, TokenRParen)
		if err != nil {
			return nil, err
		}
		return MakeSexpr(xs), nil
	case TokenLCurly:
		xs, err := p.ParseList(depth+1, TokenRCurly)
		if err != nil {
			return nil, err
		}
		return MakeQexpr(xs), nil
	case TokenRParen, TokenRCurly:
		return nil, fmt.Errorf("unexpected '%s' on line %d", tok, tok.linenum)
	case TokenDecimal:
		return readNumber(tok.str), nil
	case TokenSymbol:
		return MakeSymbol(tok.str), nil
	case TokenString:
		return MakeStr(tok.str), nil
	case TokenEnd:
		return nil, UnexpectedEnd
	}
	return nil, fmt.Errorf("unrecognized token '%s' on line %d", tok, tok.linenum)
}

// ParseList reads children up to the closing token endTyp.
func (p *Parser) ParseList(depth int, endTyp TokenType) ([]Sexp, error) {
	xs := make([]Sexp, 0, 4)
	for {
		tok := p.peek()
		switch tok.typ {
		case endTyp:
			p.next()
			return xs, nil
		case TokenEnd:
			return nil, ErrMoreInputNeeded
		case TokenRParen, TokenRCurly:
			return nil, fmt.Errorf("mismatched '%s' on line %d", tok, tok.linenum)
		}
		x, err := p.ParseExpression(depth)
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
}

// readNumber maps a literal outside the int64 range to the
// invalid number Error value instead of failing the read.
func readNumber(lit string) Sexp {
	i, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return InvalidNumberError()
	}
	return MakeInt(i)
}
