package diag

import (
	"fmt"
)

// Code identifies a diagnostic's category. Codes are grouped by the
// component that raises them: 0000 reserved, 0100s are parse and lexical recovery,
// 0200s symbol/label resolution, 0300s bibliography/citation, 0400s
// include graph, 1000s log reconstruction ambiguity, 2000s TeX engine
// output classes, 3000s engine invocation.
type Code uint16

const (
	UnknownCode Code = 0

	// Parse / CST recovery.
	ParseRecovery        Code = 100
	ParseUnmatchedEnv    Code = 101
	ParseUnmatchedGroup  Code = 102
	ParseUnmatchedMath   Code = 103
	ParseUnexpectedToken Code = 104

	// Lexical recovery.
	LexUnknownByte  Code = 110
	LexTokenTooLong Code = 111

	// Symbol / reference resolution.
	SymDuplicateLabel    Code = 200
	SymUnresolvedLabel   Code = 201
	SymDuplicateCommand  Code = 202
	SymUnresolvedCommand Code = 203

	// Bibliography / citation.
	BibUnresolvedCitation Code = 300
	BibParseError         Code = 301

	// Include graph.
	IncludeCycle            Code = 400
	IncludeResolutionFailed Code = 401

	// Log reconstruction ambiguity.
	LogAmbiguousReconstruction Code = 1000
	LogUnmatchedFileExit       Code = 1001
	LogSuspiciousFileEnter     Code = 1002
	LogWrapJoinAmbiguous       Code = 1003

	// TeX engine output classes.
	TexError       Code = 2000
	LatexWarning   Code = 2001
	OverfullHBox   Code = 2002
	UnderfullHBox  Code = 2003
	OverfullVBox   Code = 2004
	UnderfullVBox  Code = 2005
	PackageWarning Code = 2006
	PackageError   Code = 2007

	// Engine invocation.
	EngineInvocationFailed Code = 3000
	LogNotFound            Code = 3001
)

var codeDescription = map[Code]string{
	UnknownCode:                "unknown error",
	LexUnknownByte:             "unrecognized byte",
	LexTokenTooLong:            "token exceeds maximum length",
	ParseRecovery:              "parser entered error recovery",
	ParseUnmatchedEnv:          "unmatched \\begin/\\end environment",
	ParseUnmatchedGroup:        "unmatched group delimiter",
	ParseUnmatchedMath:         "unmatched math shift",
	ParseUnexpectedToken:       "unexpected token",
	SymDuplicateLabel:          "duplicate label definition",
	SymUnresolvedLabel:         "unresolved label reference",
	SymDuplicateCommand:        "duplicate command definition",
	SymUnresolvedCommand:       "unresolved command reference",
	BibUnresolvedCitation:      "unresolved citation",
	BibParseError:              "bibliography entry parse error",
	IncludeCycle:               "include cycle detected",
	IncludeResolutionFailed:    "include path could not be resolved",
	LogAmbiguousReconstruction: "ambiguous log reconstruction",
	LogUnmatchedFileExit:       "file exit with no matching enter",
	LogSuspiciousFileEnter:     "suspicious file enter heuristic match",
	LogWrapJoinAmbiguous:       "ambiguous wrapped-line join",
	TexError:                   "TeX error",
	LatexWarning:               "LaTeX warning",
	OverfullHBox:               "overfull hbox",
	UnderfullHBox:              "underfull hbox",
	OverfullVBox:               "overfull vbox",
	UnderfullVBox:              "underfull vbox",
	PackageWarning:             "package warning",
	PackageError:               "package error",
	EngineInvocationFailed:     "engine invocation failed",
	LogNotFound:                "log file not found",
}

// ID renders the code as its FTX-namespaced string form, e.g. "FTX2002".
func (c Code) ID() string {
	return fmt.Sprintf("FTX%04d", uint16(c))
}

// Title returns the human-readable description registered for c.
func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
