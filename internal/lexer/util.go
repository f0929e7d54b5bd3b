package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"

	"ftex/internal/source"
)

// text returns the exact source bytes covered by sp as a string.
func (lx *Lexer) text(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}

// peekRune reads the current byte(s) as a rune without consuming it.
func (lx *Lexer) peekRune() (r rune, size int) {
	if lx.cursor.EOF() {
		return utf8.RuneError, 0
	}
	b := lx.cursor.Peek()
	if b < utf8.RuneSelf { // ASCII fast path
		return rune(b), 1
	}
	r, sz := utf8.DecodeRune(lx.file.Content[lx.cursor.Off:])
	return r, sz
}

// bumpRune consumes the current rune and advances the cursor by its width.
func (lx *Lexer) bumpRune() {
	_, sz := lx.peekRune()
	if sz == 0 {
		return
	}
	usz, err := safecast.Conv[uint32](sz)
	if err != nil {
		panic(fmt.Errorf("bumpRune overflow: %w", err))
	}
	lx.cursor.Off += usz
}

// isLetterByte reports whether b is an ASCII letter, the only byte class
// that continues a LaTeX control word (\foo, \FooBar).
func isLetterByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// isLetterRune extends isLetterByte to Unicode letters for control words
// written with non-ASCII identifiers (rare but not prohibited by TeX).
func isLetterRune(r rune) bool {
	return unicode.IsLetter(r)
}

// isSpaceOrTab reports whether b is horizontal whitespace (not newline).
func isSpaceOrTab(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}

// isTextBreakByte reports whether b ends a run of plain Text: any byte the
// lexer treats specially elsewhere (command, group/bracket delimiters, math
// shift, comment marker, or whitespace/newline).
func isTextBreakByte(b byte) bool {
	switch b {
	case '\\', '{', '}', '[', ']', '$', '%', '\n', ' ', '\t', '\r':
		return true
	default:
		return false
	}
}
