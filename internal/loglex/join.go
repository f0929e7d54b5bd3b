package loglex

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultWrapColumn is the engine's typical terminal wrap width.
const DefaultWrapColumn = 79

// DefaultJoinCeiling bounds how many wrapped fragments Join will merge into
// a single logical line, guaranteeing the join algorithm terminates even on
// pathological input.
const DefaultJoinCeiling = 3

// Join merges wrapped continuation lines into their logical predecessor
// under the guarded wrap-join policy. The two original line
// contents are concatenated logically — never rewritten into the backing
// buffer — and the resulting Line's Span covers both original ranges.
func Join(lines []Line, wrapColumn, ceiling int, warningPrefixes []WarningPrefix) []Line {
	if wrapColumn <= 0 {
		wrapColumn = DefaultWrapColumn
	}
	if ceiling <= 0 {
		ceiling = DefaultJoinCeiling
	}
	out := make([]Line, 0, len(lines))
	i := 0
	for i < len(lines) {
		cur := lines[i]
		fragments := 1
		for fragments < ceiling && i+1 < len(lines) && cur.Complete &&
			firstLineIncomplete(cur, wrapColumn) && secondLineContinues(lines[i+1], warningPrefixes) {
			next := lines[i+1]
			cur = Line{
				Text:     cur.Text + next.Text,
				Span:     cur.Span.Cover(next.Span),
				Joined:   true,
				Complete: next.Complete,
			}
			i++
			fragments++
		}
		out = append(out, cur)
		i++
	}
	return out
}

// firstLineIncomplete reports whether l ends in a state where a path token
// or delimiter run is syntactically incomplete: it reached (or exceeded)
// the configured wrap column, or it contains an unbalanced run of open
// parens (a file name can still be mid-path well before column 79).
func firstLineIncomplete(l Line, wrapColumn int) bool {
	if runewidth.StringWidth(l.Text) >= wrapColumn {
		return true
	}
	return openParenDepth(l.Text) > 0
}

func openParenDepth(s string) int {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}

// secondLineContinues reports whether l begins with characters consistent
// with continuing a wrapped structure: not '!', not a known warning
// prefix, not an "l.<digits>" line reference.
func secondLineContinues(l Line, warningPrefixes []WarningPrefix) bool {
	trimmed := strings.TrimLeft(l.Text, " \t")
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "!") {
		return false
	}
	if m := lineRefPattern.FindStringIndex(trimmed); m != nil && m[0] == 0 {
		return false
	}
	for _, wp := range warningPrefixes {
		if wp.MatchString(trimmed) {
			return false
		}
	}
	return true
}
