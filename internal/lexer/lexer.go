package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"ftex/internal/diag"
	"ftex/internal/source"
	"ftex/internal/token"
)

const maxTokenLength = 64 * 1024 // hard limit in bytes to avoid pathological tokens

// Lexer converts LaTeX source content into a total stream of tokens.
// Every byte of input up to the first token longer than maxTokenLength is
// covered by exactly one token (that token becomes an ErrorToken and the
// rest of the input is skipped); there is no leading-trivia concept here because Whitespace,
// Newline, and Comment are themselves significant tokens, which keeps the
// CST builder's losslessness invariant trivial to satisfy.
type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token // one-token pushback buffer
}

// New creates a new Lexer for the provided file.
func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// SetRange restricts the lexer to a specific byte range within the file
// (end == 0 keeps the current limit) and drops any pushed-back token; the
// lexer is restartable from any byte offset that lies on a line boundary.
func (lx *Lexer) SetRange(start, end uint32) {
	if lx == nil {
		return
	}
	lx.cursor.Off = start
	if end != 0 {
		lx.cursor.Limit = end
	}
	lx.look = nil
}

// Next returns the next token. After EOF it always returns EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.EmptySpan()}
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case ch == '\\':
		tok = lx.scanCommandName()
	case ch == '{':
		tok = lx.scanPunct(token.LBrace)
	case ch == '}':
		tok = lx.scanPunct(token.RBrace)
	case ch == '[':
		tok = lx.scanPunct(token.LBracket)
	case ch == ']':
		tok = lx.scanPunct(token.RBracket)
	case ch == '$':
		tok = lx.scanMathShift()
	case ch == '%':
		tok = lx.scanComment()
	case ch == '\n':
		tok = lx.scanNewline()
	case ch == ' ' || ch == '\t' || ch == '\r':
		tok = lx.scanWhitespace()
	default:
		tok = lx.scanText()
	}

	lx.enforceTokenLength(&tok)
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// Push injects a token back into the one-slot lookahead buffer.
func (lx *Lexer) Push(tok token.Token) {
	lx.look = &tok
}

// EmptySpan returns a zero-length span at the current cursor position.
func (lx *Lexer) EmptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) errLex(code diag.Code, span source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevError, span, msg, nil, nil)
	}
}

func (lx *Lexer) enforceTokenLength(tok *token.Token) {
	if tok == nil {
		return
	}
	length := tok.Span.End - tok.Span.Start
	if length <= maxTokenLength {
		return
	}
	msg := fmt.Sprintf("token length %d exceeds limit %d", length, maxTokenLength)
	lx.errLex(diag.LexTokenTooLong, tok.Span, msg)
	tok.Kind = token.ErrorToken
	if tok.Text == "" && tok.Span.End > tok.Span.Start && int(tok.Span.End) <= len(lx.file.Content) {
		tok.Text = string(lx.file.Content[tok.Span.Start:tok.Span.End])
	}
	// Fast-forward to EOF to avoid cascading work on a pathological token.
	if off, err := safecast.Conv[uint32](len(lx.file.Content)); err == nil {
		lx.cursor.Off = off
	}
}
