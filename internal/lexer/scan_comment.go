package lexer

import (
	"ftex/internal/token"
)

// scanComment consumes a '%' and everything up to but not including the
// terminating newline (the newline itself is lexed separately as its own
// Newline token, keeping the CST's line-boundary bookkeeping uniform).
func (lx *Lexer) scanComment() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '%'
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Comment, Span: sp, Text: lx.text(sp)}
}
