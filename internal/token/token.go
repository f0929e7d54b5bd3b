package token

import (
	"ftex/internal/source"
)

// Token represents a single source token with its location. The lexer is
// total over Whitespace, Newline, and Comment as well as structural tokens,
// so the concatenation of Token.Text across a stream reproduces the source
// byte-exactly, unless a token exceeds the lexer's length limit, in which
// case the input after that token is skipped.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsDelimiter reports whether the token opens or closes a group, bracket
// argument, or math shift.
func (t Token) IsDelimiter() bool {
	switch t.Kind {
	case LBrace, RBrace, LBracket, RBracket, MathShift:
		return true
	default:
		return false
	}
}

// IsOpening reports whether the token opens a delimited region.
func (t Token) IsOpening() bool {
	return t.Kind == LBrace || t.Kind == LBracket
}

// IsClosing reports whether the token closes a delimited region.
func (t Token) IsClosing() bool {
	return t.Kind == RBrace || t.Kind == RBracket
}

// IsTrivial reports whether the token carries no semantic content on its own.
// The CST builder still keeps these as leaves to preserve losslessness; "trivial"
// only means downstream queries (symbols, includes) skip over them.
func (t Token) IsTrivial() bool {
	switch t.Kind {
	case Whitespace, Newline, Comment:
		return true
	default:
		return false
	}
}
