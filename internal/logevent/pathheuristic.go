package logevent

import (
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultRecognizedExtensions is the default set of file extensions
// recognized as plausible include targets.
var DefaultRecognizedExtensions = map[string]bool{
	".tex": true, ".sty": true, ".cls": true, ".bib": true,
	".aux": true, ".toc": true, ".bbl": true,
}

// pathCandidate splits a raw TEXT run following an LPAREN into the
// path-like prefix (terminated at the first whitespace, since spaces are
// treated as terminators unless the engine emits quoted paths) and
// whatever trailing text remains.
func pathCandidate(raw string) (candidate, trailing string) {
	trimmed := strings.TrimLeft(raw, " \t")
	idx := strings.IndexAny(trimmed, " \t")
	if idx < 0 {
		return trimmed, ""
	}
	return trimmed[:idx], strings.TrimLeft(trimmed[idx:], " \t")
}

// scorePath implements the path-plausibility heuristic: it returns
// whether candidate is at least plausible as a file enter, and a confidence
// in [0,1] reflecting how strongly it was recognized. hadWhitespace should
// be true when the original (pre-split) text contained whitespace, since
// that alone is evidence of ambiguity even once the candidate itself has
// been isolated.
func scorePath(candidate string, hadWhitespace bool, extSet map[string]bool) (plausible bool, confidence float64) {
	if candidate == "" {
		return false, 0
	}
	if extSet == nil {
		extSet = DefaultRecognizedExtensions
	}

	confidence = 1.0
	looksLikePath := strings.ContainsAny(candidate, "/\\") ||
		strings.HasPrefix(candidate, "./") ||
		strings.HasPrefix(candidate, "../") ||
		filepath.IsAbs(candidate) ||
		isWindowsDrivePath(candidate)

	if !looksLikePath {
		// A bare filename with no separator is still accepted, but starts
		// from a lower baseline — most log entries are paths, not bare
		// words, so an isolated word is weaker evidence.
		confidence -= 0.3
	}

	ext := strings.ToLower(filepath.Ext(candidate))
	if ext == "" || !extSet[ext] {
		confidence -= 0.25
	}
	if hadWhitespace {
		confidence -= 0.2
	}

	if confidence < 0 {
		confidence = 0
	}
	return true, confidence
}

func isWindowsDrivePath(s string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return len(s) >= 3 && s[1] == ':' && (s[2] == '\\' || s[2] == '/') &&
		((s[0] >= 'a' && s[0] <= 'z') || (s[0] >= 'A' && s[0] <= 'Z'))
}
