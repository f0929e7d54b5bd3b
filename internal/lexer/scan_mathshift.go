package lexer

import (
	"ftex/internal/token"
)

// scanMathShift consumes '$' or the display-math marker '$$' as a single
// MathShift token; the CST builder distinguishes inline vs display math by
// the token's text length, not by a separate token kind.
func (lx *Lexer) scanMathShift() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // first '$'
	if lx.cursor.Peek() == '$' {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.MathShift, Span: sp, Text: lx.text(sp)}
}
