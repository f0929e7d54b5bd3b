package lexer

import (
	"ftex/internal/token"
)

// scanNewline consumes a single '\n'. A preceding '\r' is lexed separately
// as Whitespace; the normalizer upstream is expected to canonicalize CRLF
// before tokens ever reach the lexer, but nothing here depends on that.
func (lx *Lexer) scanNewline() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Newline, Span: sp, Text: lx.text(sp)}
}
