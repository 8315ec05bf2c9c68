package query

import (
	"fmt"
	"strings"
)

// Lexer converts raw statement text into a flat token sequence.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a lexer over the given statement text.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// multiSymbols are the multi-character operators, matched greedily before
// single characters.
var multiSymbols = []string{"<>", "<=", ">="}

// singleSymbols is the set of characters the grammar accepts as
// single-character symbols. Anything outside it is a lexical error.
const singleSymbols = "(),;.*=<>-"

// Tokenize scans the whole input and returns the token sequence, terminated
// by one End token.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokenEnd {
			return tokens, nil
		}
	}
}

// next returns the next token from the input.
func (l *Lexer) next() (Token, error) {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return Token{Kind: TokenEnd}, nil
	}

	ch := l.input[l.pos]
	switch {
	case isLetter(ch):
		return l.readIdentifier(), nil
	case isDigit(ch):
		return l.readNumber(), nil
	case ch == '\'':
		return l.readString()
	default:
		return l.readSymbol()
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
}

// readIdentifier consumes an alphanumeric/underscore run. Case is preserved;
// keyword matching happens later in the cursor.
func (l *Lexer) readIdentifier() Token {
	start := l.pos
	for l.pos < len(l.input) && (isLetter(l.input[l.pos]) || isDigit(l.input[l.pos])) {
		l.pos++
	}
	return Token{Kind: TokenIdentifier, Text: l.input[start:l.pos]}
}

// readNumber consumes a digit run. No sign, no decimal point; overflow is
// caught later when the literal is converted.
func (l *Lexer) readNumber() Token {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	return Token{Kind: TokenNumber, Text: l.input[start:l.pos]}
}

// readString consumes a single-quoted string literal, unescaping doubled
// quotes ('' becomes ').
func (l *Lexer) readString() (Token, error) {
	l.pos++ // opening quote
	var value strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		l.pos++
		if ch != '\'' {
			value.WriteByte(ch)
			continue
		}
		if l.pos < len(l.input) && l.input[l.pos] == '\'' {
			value.WriteByte('\'')
			l.pos++
			continue
		}
		return Token{Kind: TokenString, Text: value.String()}, nil
	}
	return Token{}, fmt.Errorf("Unterminated string literal")
}

// readSymbol consumes an operator or punctuation token, preferring the
// multi-character table over single characters.
func (l *Lexer) readSymbol() (Token, error) {
	for _, op := range multiSymbols {
		if strings.HasPrefix(l.input[l.pos:], op) {
			l.pos += len(op)
			return Token{Kind: TokenSymbol, Text: op}, nil
		}
	}

	ch := l.input[l.pos]
	if strings.IndexByte(singleSymbols, ch) < 0 {
		return Token{}, fmt.Errorf("Unexpected character: %q", string(ch))
	}
	l.pos++
	return Token{Kind: TokenSymbol, Text: string(ch)}, nil
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
