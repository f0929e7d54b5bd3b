package lexer

import (
	"ftex/internal/token"
)

// scanWhitespace consumes a run of horizontal whitespace (spaces, tabs, and
// stray '\r'). It never crosses a '\n', which is always its own token.
func (lx *Lexer) scanWhitespace() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() && isSpaceOrTab(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Whitespace, Span: sp, Text: lx.text(sp)}
}
