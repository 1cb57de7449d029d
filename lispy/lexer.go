package lispy

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

type TokenType int

const (
	TokenTypeEmpty TokenType = iota
	TokenLParen
	TokenRParen
	TokenLCurly
	TokenRCurly
	TokenSymbol
	TokenDecimal
	TokenString
	TokenEnd
)

type Token struct {
	typ     TokenType
	str     string
	linenum int
}

var EndTk = Token{typ: TokenEnd}

func (t Token) String() string {
	switch t.typ {
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenLCurly:
		return "{"
	case TokenRCurly:
		return "}"
	case TokenString:
		return strconv.Quote(t.str)
	case TokenEnd:
		return "<end>"
	}
	return t.str
}

type LexerState int

const (
	LexerNormal LexerState = iota
	LexerCommentLine
	LexerStrLit
	LexerStrEscaped
)

type Lexer struct {
	state   LexerState
	tokens  []Token
	buffer  *bytes.Buffer
	stream  io.RuneScanner
	linenum int
}

func NewLexer() *Lexer {
	return &Lexer{
		tokens:  make([]Token, 0, 10),
		buffer:  new(bytes.Buffer),
		state:   LexerNormal,
		linenum: 1,
	}
}

func (lexer *Lexer) Linenum() int {
	return lexer.linenum
}

func (lexer *Lexer) Reset() {
	lexer.stream = nil
	lexer.tokens = lexer.tokens[:0]
	lexer.state = LexerNormal
	lexer.linenum = 1
	lexer.buffer.Reset()
}

func (lexer *Lexer) AddNextStream(s io.RuneScanner) {
	lexer.stream = s
}

var (
	DecimalRegex = regexp.MustCompile(`^-?[0-9]+$`)
	SymbolRegex  = regexp.MustCompile(`^[a-zA-Z0-9_+\-*/\\=<>!&]+$`)
)

func (lexer *Lexer) appendToken(typ TokenType, str string) {
	lexer.tokens = append(lexer.tokens, Token{typ: typ, str: str, linenum: lexer.linenum})
}

// dumpBuffer turns the pending atom, if any, into a token.
func (lexer *Lexer) dumpBuffer() error {
	if lexer.buffer.Len() == 0 {
		return nil
	}
	atom := lexer.buffer.String()
	lexer.buffer.Reset()

	switch {
	case DecimalRegex.MatchString(atom):
		lexer.appendToken(TokenDecimal, atom)
	case SymbolRegex.MatchString(atom):
		lexer.appendToken(TokenSymbol, atom)
	default:
		return fmt.Errorf("unrecognized token '%s'", atom)
	}
	return nil
}

func (lexer *Lexer) dumpString() error {
	raw := `"` + lexer.buffer.String() + `"`
	lexer.buffer.Reset()
	s, err := strconv.Unquote(raw)
	if err != nil {
		return fmt.Errorf("bad string literal %s", raw)
	}
	lexer.appendToken(TokenString, s)
	return nil
}

func (lexer *Lexer) lexRune(r rune) error {
	switch lexer.state {
	case LexerCommentLine:
		if r == '\n' {
			lexer.state = LexerNormal
		}
		return nil

	case LexerStrLit:
		switch r {
		case '\\':
			lexer.buffer.WriteRune(r)
			lexer.state = LexerStrEscaped
		case '"':
			lexer.state = LexerNormal
			return lexer.dumpString()
		default:
			lexer.buffer.WriteRune(r)
		}
		return nil

	case LexerStrEscaped:
		lexer.buffer.WriteRune(r)
		lexer.state = LexerStrLit
		return nil
	}

	switch r {
	case '(', ')', '{', '}':
		if err := lexer.dumpBuffer(); err != nil {
			return err
		}
		lexer.appendToken(bracketTokens[r], string(r))
	case ' ', '\t', '\r', '\n':
		return lexer.dumpBuffer()
	case ';':
		if err := lexer.dumpBuffer(); err != nil {
			return err
		}
		lexer.state = LexerCommentLine
	case '"':
		if err := lexer.dumpBuffer(); err != nil {
			return err
		}
		lexer.state = LexerStrLit
	default:
		lexer.buffer.WriteRune(r)
	}
	return nil
}

var bracketTokens = map[rune]TokenType{
	'(': TokenLParen,
	')': TokenRParen,
	'{': TokenLCurly,
	'}': TokenRCurly,
}

// Tokenize consumes the whole stream. An unterminated string
// literal reports ErrMoreInputNeeded.
func (lexer *Lexer) Tokenize() ([]Token, error) {
	if lexer.stream == nil {
		return []Token{EndTk}, nil
	}
	for {
		r, _, err := lexer.stream.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := lexer.lexRune(r); err != nil {
			return nil, err
		}
		if r == '\n' {
			lexer.linenum++
		}
	}

	switch lexer.state {
	case LexerStrLit, LexerStrEscaped:
		return nil, ErrMoreInputNeeded
	}
	if err := lexer.dumpBuffer(); err != nil {
		return nil, err
	}
	lexer.appendToken(TokenEnd, "")
	return lexer.tokens, nil
}
