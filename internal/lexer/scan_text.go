package lexer

import (
	"ftex/internal/token"
)

// scanText consumes a run of ordinary characters up to the next byte the
// lexer treats specially (command, delimiter, math shift, comment marker,
// or whitespace/newline). Multi-byte UTF-8 runes are consumed whole.
func (lx *Lexer) scanText() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b < 0x80 {
			if isTextBreakByte(b) {
				break
			}
			lx.cursor.Bump()
			continue
		}
		lx.bumpRune()
	}
	sp := lx.cursor.SpanFrom(start)
	if sp.Start == sp.End {
		// A lone continuation/invalid byte that isn't a break byte but also
		// didn't advance (shouldn't happen for well-formed UTF-8, but stay
		// panic-free): consume one byte as an ErrorToken.
		lx.cursor.Bump()
		sp = lx.cursor.SpanFrom(start)
		return token.Token{Kind: token.ErrorToken, Span: sp, Text: lx.text(sp)}
	}
	return token.Token{Kind: token.Text, Span: sp, Text: lx.text(sp)}
}
