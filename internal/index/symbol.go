// Package index implements the symbol/reference index: label definitions
// and references, citations, bibliography entries, command and
// environment definitions, package uses, and include directives extracted
// from a document's CST.
package index

import "ftex/internal/source"

// Kind classifies one extracted symbol.
type Kind uint8

const (
	Invalid Kind = iota
	// LabelDefinition is \label{name}.
	LabelDefinition
	// LabelReference is \ref{name}, \eqref{name}, \pageref{name}, and
	// similar cross-reference commands.
	LabelReference
	// CitationReference is one key out of \cite{a,b,c} and its variants.
	CitationReference
	// BibEntry is \bibitem{key} inside a thebibliography environment.
	BibEntry
	// CommandDefinition is \newcommand{\name}... and its variants.
	CommandDefinition
	// EnvironmentDefinition is \newenvironment{name}... and its variants.
	EnvironmentDefinition
	// PackageUse is one package out of \usepackage{a,b} / \RequirePackage.
	PackageUse
	// InputInclude is \input{P}, \include{P}, \subfile{P}, or
	// \includegraphics{P} (path resolution happens in internal/includegraph).
	InputInclude
)

func (k Kind) String() string {
	switch k {
	case LabelDefinition:
		return "LabelDefinition"
	case LabelReference:
		return "LabelReference"
	case CitationReference:
		return "CitationReference"
	case BibEntry:
		return "BibEntry"
	case CommandDefinition:
		return "CommandDefinition"
	case EnvironmentDefinition:
		return "EnvironmentDefinition"
	case PackageUse:
		return "PackageUse"
	case InputInclude:
		return "InputInclude"
	default:
		return "Invalid"
	}
}

// isDefinition reports whether k is a kind find_definitions should match.
func (k Kind) isDefinition() bool {
	switch k {
	case LabelDefinition, CommandDefinition, EnvironmentDefinition, BibEntry:
		return true
	default:
		return false
	}
}

// isReference reports whether k is a kind find_references should match.
func (k Kind) isReference() bool {
	switch k {
	case LabelReference, CitationReference:
		return true
	default:
		return false
	}
}

// Symbol is one occurrence of a name in a document: a definition site, a
// reference site, a package use, or an include directive. Name carries the
// form appropriate to its Kind (a whitespace-trimmed label/citation key, a
// command name without its leading backslash, an environment or package
// name, or an include's raw argument text).
type Symbol struct {
	Kind Kind
	Name string
	Span source.Span
	File source.FileID
}
