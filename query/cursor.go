package query

import (
	"fmt"
	"strings"
)

// endToken is returned for any read past the token sequence.
var endToken = Token{Kind: TokenEnd}

// cursor is a read-only, position-tracked view over a token sequence. It
// offers lookahead, non-failing match helpers, and mandatory expect helpers
// that produce the parser's syntax diagnostics.
type cursor struct {
	tokens []Token
	pos    int
}

func newCursor(tokens []Token) *cursor {
	return &cursor{tokens: tokens}
}

// peek returns the token at the given lookahead offset without consuming it.
func (c *cursor) peek(offset int) Token {
	idx := c.pos + offset
	if idx >= len(c.tokens) {
		return endToken
	}
	return c.tokens[idx]
}

// current returns the token under the cursor.
func (c *cursor) current() Token {
	return c.peek(0)
}

// consume returns the current token and advances past it.
func (c *cursor) consume() Token {
	tok := c.current()
	if c.pos < len(c.tokens) {
		c.pos++
	}
	return tok
}

// matchSymbol consumes the current token if it is the given symbol.
func (c *cursor) matchSymbol(symbol string) bool {
	if tok := c.current(); tok.Kind == TokenSymbol && tok.Text == symbol {
		c.consume()
		return true
	}
	return false
}

// expectSymbol consumes the given symbol or fails.
func (c *cursor) expectSymbol(symbol string) error {
	if !c.matchSymbol(symbol) {
		return fmt.Errorf("Expected symbol %q, found: %s", symbol, c.describeCurrent())
	}
	return nil
}

// matchKeyword consumes the current token if it is an identifier equal to
// the keyword, compared case-insensitively.
func (c *cursor) matchKeyword(keyword string) bool {
	if tok := c.current(); tok.Kind == TokenIdentifier && strings.EqualFold(tok.Text, keyword) {
		c.consume()
		return true
	}
	return false
}

// expectKeyword consumes the given keyword or fails.
func (c *cursor) expectKeyword(keyword string) error {
	if !c.matchKeyword(keyword) {
		return fmt.Errorf("Expected keyword %s, found: %s", keyword, c.describeCurrent())
	}
	return nil
}

// consumeIdentifier returns the current identifier's text, failing with the
// given context in the diagnostic when the token is not an identifier.
func (c *cursor) consumeIdentifier(context string) (string, error) {
	tok := c.current()
	if tok.Kind != TokenIdentifier {
		return "", fmt.Errorf("Expected identifier for %s, found: %s", context, c.describeCurrent())
	}
	c.consume()
	return tok.Text, nil
}

// consumeNumber returns the current numeric literal's text.
func (c *cursor) consumeNumber(context string) (string, error) {
	tok := c.current()
	if tok.Kind != TokenNumber {
		return "", fmt.Errorf("Expected numeric literal for %s, found: %s", context, c.describeCurrent())
	}
	c.consume()
	return tok.Text, nil
}

// consumeString returns the current string literal's unescaped value.
func (c *cursor) consumeString() (string, error) {
	tok := c.current()
	if tok.Kind != TokenString {
		return "", fmt.Errorf("Expected string literal, found: %s", c.describeCurrent())
	}
	c.consume()
	return tok.Text, nil
}

// ensureEnd fails unless the cursor has consumed every token. Each top-level
// grammar rule finishes with this check, so trailing garbage is a syntax
// error.
func (c *cursor) ensureEnd() error {
	if tok := c.current(); tok.Kind != TokenEnd {
		return fmt.Errorf("Unexpected token: %s", tok.Text)
	}
	return nil
}

// describeCurrent renders the current token for diagnostics.
func (c *cursor) describeCurrent() string {
	tok := c.current()
	if tok.Kind == TokenEnd {
		return tok.Kind.String()
	}
	return fmt.Sprintf("%s %q", tok.Kind, tok.Text)
}
