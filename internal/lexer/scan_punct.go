package lexer

import (
	"ftex/internal/token"
)

// scanPunct consumes a single-byte structural delimiter and emits it as kind k.
func (lx *Lexer) scanPunct(k token.Kind) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: k, Span: sp, Text: lx.text(sp)}
}
