package loglex

import (
	"regexp"
	"strings"

	"ftex/internal/source"
)

// Kind is a log-token class.
type Kind uint8

const (
	Invalid Kind = iota
	LParen
	RParen
	Bang
	LineRef
	WarningPrefix
	Prompt
	Text
)

func (k Kind) String() string {
	switch k {
	case LParen:
		return "LPAREN"
	case RParen:
		return "RPAREN"
	case Bang:
		return "BANG"
	case LineRef:
		return "LINEREF"
	case WarningPrefix:
		return "WARNING_PREFIX"
	case Prompt:
		return "PROMPT"
	case Text:
		return "TEXT"
	default:
		return "INVALID"
	}
}

// Tok is a single log token.
type Tok struct {
	Kind Kind
	Span source.Span
	Text string
}

var lineRefPattern = regexp.MustCompile(`^l\.(\d+)`)

// WarningPrefix is a single configured warning-prefix matcher. The set of
// prefixes is configurable, defaulting to the four built in here.
type WarningPrefix struct {
	Name string
	re   *regexp.Regexp
}

// NewWarningPrefix compiles a named warning-prefix pattern anchored at the
// start of the (trimmed) line.
func NewWarningPrefix(name, pattern string) WarningPrefix {
	return WarningPrefix{Name: name, re: regexp.MustCompile("^" + pattern)}
}

// MatchString reports whether s begins with this prefix.
func (wp WarningPrefix) MatchString(s string) bool {
	return wp.re != nil && wp.re.FindStringIndex(s) != nil && wp.re.FindStringIndex(s)[0] == 0
}

func (wp WarningPrefix) findIndex(s string) []int {
	if wp.re == nil {
		return nil
	}
	loc := wp.re.FindStringIndex(s)
	if loc == nil || loc[0] != 0 {
		return nil
	}
	return loc
}

// DefaultWarningPrefixes is the default four engine warning shapes;
// ftxconfig can select a subset of them by Name.
var DefaultWarningPrefixes = []WarningPrefix{
	NewWarningPrefix("latex", `LaTeX Warning:`),
	NewWarningPrefix("package", `Package [A-Za-z0-9_@*-]+ Warning:`),
	NewWarningPrefix("overfull-hbox", `Overfull \\hbox`),
	NewWarningPrefix("underfull-hbox", `Underfull \\hbox`),
}

// Tokenize converts a normalized, wrap-joined Line into its token stream.
// interactive enables the PROMPT token class ('?' at line start), which
// only applies when the engine is known to be running interactively.
func Tokenize(l Line, warningPrefixes []WarningPrefix, interactive bool) []Tok {
	if warningPrefixes == nil {
		warningPrefixes = DefaultWarningPrefixes
	}
	text := l.Text
	pos := 0

	spanOf := func(off, ln int) source.Span {
		if l.Joined || off < 0 || ln < 0 || off+ln > len(text) {
			return l.Span
		}
		return source.Span{File: l.Span.File, Start: l.Span.Start + uint32(off), End: l.Span.Start + uint32(off+ln)}
	}

	var toks []Tok

	switch {
	case strings.HasPrefix(text, "!"):
		toks = append(toks, Tok{Kind: Bang, Span: spanOf(0, 1), Text: "!"})
		pos = 1
	case interactive && strings.HasPrefix(text, "?"):
		toks = append(toks, Tok{Kind: Prompt, Span: spanOf(0, 1), Text: "?"})
		pos = 1
	case lineRefPattern.FindStringIndex(text) != nil && lineRefPattern.FindStringIndex(text)[0] == 0:
		m := lineRefPattern.FindStringIndex(text)
		toks = append(toks, Tok{Kind: LineRef, Span: spanOf(m[0], m[1]-m[0]), Text: text[m[0]:m[1]]})
		pos = m[1]
	default:
		for _, wp := range warningPrefixes {
			if loc := wp.findIndex(text); loc != nil {
				toks = append(toks, Tok{Kind: WarningPrefix, Span: spanOf(0, loc[1]), Text: text[:loc[1]]})
				pos = loc[1]
				break
			}
		}
	}

	runStart := pos
	flushText := func(end int) {
		if end > runStart {
			toks = append(toks, Tok{Kind: Text, Span: spanOf(runStart, end-runStart), Text: text[runStart:end]})
		}
	}
	for i := pos; i < len(text); i++ {
		switch text[i] {
		case '(':
			flushText(i)
			toks = append(toks, Tok{Kind: LParen, Span: spanOf(i, 1), Text: "("})
			runStart = i + 1
		case ')':
			flushText(i)
			toks = append(toks, Tok{Kind: RParen, Span: spanOf(i, 1), Text: ")"})
			runStart = i + 1
		}
	}
	flushText(len(text))

	if len(toks) == 0 {
		toks = append(toks, Tok{Kind: Text, Span: l.Span, Text: ""})
	}
	return toks
}
