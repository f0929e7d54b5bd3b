package index

import (
	"testing"

	"ftex/internal/cst"
	"ftex/internal/source"
)

func extractSrc(t *testing.T, src string) []Symbol {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Add("test.tex", []byte(src), source.FileVirtual)
	root := cst.Build(fs.Get(id), cst.Options{})
	return Extract(id, root)
}

func findOne(t *testing.T, symbols []Symbol, kind Kind, name string) Symbol {
	t.Helper()
	for _, s := range symbols {
		if s.Kind == kind && s.Name == name {
			return s
		}
	}
	t.Fatalf("no %v symbol named %q in %+v", kind, name, symbols)
	return Symbol{}
}

func TestExtract_Label(t *testing.T) {
	symbols := extractSrc(t, `\label{fig:intro}`)
	findOne(t, symbols, LabelDefinition, "fig:intro")
}

func TestExtract_References(t *testing.T) {
	symbols := extractSrc(t, `see \ref{fig:intro} and \eqref{eq:one}`)
	findOne(t, symbols, LabelReference, "fig:intro")
	findOne(t, symbols, LabelReference, "eq:one")
}

func TestExtract_CitationsSplitCommaList(t *testing.T) {
	symbols := extractSrc(t, `\cite{knuth1984,lamport1994}`)
	findOne(t, symbols, CitationReference, "knuth1984")
	findOne(t, symbols, CitationReference, "lamport1994")
}

func TestExtract_BibItem(t *testing.T) {
	symbols := extractSrc(t, "\\begin{thebibliography}{9}\n\\bibitem{knuth1984} D. Knuth.\n\\end{thebibliography}")
	findOne(t, symbols, BibEntry, "knuth1984")
}

func TestExtract_CommandDefinition(t *testing.T) {
	symbols := extractSrc(t, `\newcommand{\foo}{bar}`)
	findOne(t, symbols, CommandDefinition, "foo")
}

func TestExtract_EnvironmentDefinition(t *testing.T) {
	symbols := extractSrc(t, `\newenvironment{myenv}{\begin{quote}}{\end{quote}}`)
	findOne(t, symbols, EnvironmentDefinition, "myenv")
}

func TestExtract_PackageUseSplitsList(t *testing.T) {
	symbols := extractSrc(t, `\usepackage{amsmath,hyperref}`)
	findOne(t, symbols, PackageUse, "amsmath")
	findOne(t, symbols, PackageUse, "hyperref")
}

func TestExtract_Include(t *testing.T) {
	symbols := extractSrc(t, `\input{chapters/intro}`)
	s := findOne(t, symbols, InputInclude, "chapters/intro")
	if s.Span.Len() == 0 {
		t.Error("expected a non-empty span")
	}
}

func TestExtract_NestedInsideEnvironment(t *testing.T) {
	symbols := extractSrc(t, "\\begin{document}\n\\label{sec:one}\n\\end{document}")
	findOne(t, symbols, LabelDefinition, "sec:one")
}

func TestExtract_PlainCommandYieldsNothing(t *testing.T) {
	symbols := extractSrc(t, `\textbf{bold text}`)
	if len(symbols) != 0 {
		t.Errorf("got %+v, want no symbols for an unrecognized command", symbols)
	}
}
