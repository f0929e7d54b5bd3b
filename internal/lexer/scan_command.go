package lexer

import (
	"ftex/internal/diag"
	"ftex/internal/token"
)

// scanCommandName scans a TeX control sequence: '\' followed by a run of
// letters (a control word, which also swallows the single following space
// per TeX's own skip-blanks-after-a-word rule — approximated here by simply
// not extending the token past the letters; the caller's CST builder treats
// the following Whitespace token as ordinary, which is sufficient for a
// lossless, non-semantic CST), or '\' followed by exactly one non-letter
// (a control symbol: \\, \%, \&, \$, \{, \}, ...). An isolated '\' at end of
// input recovers as ErrorToken rather than panicking.
func (lx *Lexer) scanCommandName() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // consume '\'

	if lx.cursor.EOF() {
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownByte, sp, "backslash at end of input")
		return token.Token{Kind: token.ErrorToken, Span: sp, Text: lx.text(sp)}
	}

	b := lx.cursor.Peek()
	if isLetterByte(b) {
		for {
			r, sz := lx.peekRune()
			if sz == 0 {
				break
			}
			if sz == 1 && isLetterByte(byte(r)) {
				lx.cursor.Bump()
				continue
			}
			if sz > 1 && isLetterRune(r) {
				lx.bumpRune()
				continue
			}
			break
		}
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: token.CommandName, Span: sp, Text: lx.text(sp)}
	}

	// Control symbol: exactly one rune, whatever it is (including another
	// backslash, a brace, or a digit — TeX allows all of these).
	lx.bumpRune()
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.CommandName, Span: sp, Text: lx.text(sp)}
}
