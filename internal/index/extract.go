package index

import (
	"strings"

	"ftex/internal/cst"
	"ftex/internal/source"
)

var referenceCommands = map[string]bool{
	"ref": true, "eqref": true, "pageref": true, "autoref": true,
	"nameref": true, "cref": true, "Cref": true, "vref": true,
}

var citationCommands = map[string]bool{
	"cite": true, "citet": true, "citep": true, "citeauthor": true,
	"citeyear": true, "parencite": true, "textcite": true, "autocite": true,
}

var commandDefCommands = map[string]bool{
	"newcommand": true, "renewcommand": true, "providecommand": true,
	"DeclareMathOperator": true,
}

var environmentDefCommands = map[string]bool{
	"newenvironment": true, "renewenvironment": true,
}

var packageCommands = map[string]bool{
	"usepackage": true, "RequirePackage": true,
}

// Extract walks root and returns every symbol it defines or references.
// fileID tags every resulting Symbol so callers can merge results from
// many files into one Index.
func Extract(fileID source.FileID, root *cst.Node) []Symbol {
	var out []Symbol
	if root != nil {
		extractSiblings(fileID, root.Children, &out)
	}
	return out
}

// extractSiblings scans one sibling list, since a command's argument is its
// next sibling Group (internal/cst keeps Command and its argument as
// separate nodes), not a child of the Command node.
func extractSiblings(fileID source.FileID, siblings []*cst.Node, out *[]Symbol) {
	for i, n := range siblings {
		switch n.Kind {
		case cst.Command:
			handleCommand(fileID, siblings, i, out)
		case cst.Include:
			*out = append(*out, Symbol{Kind: InputInclude, Name: n.Data.RawArg, Span: n.Span, File: fileID})
		case cst.Environment, cst.Group, cst.Math, cst.Root:
			extractSiblings(fileID, n.Children, out)
		}
	}
}

func handleCommand(fileID source.FileID, siblings []*cst.Node, i int, out *[]Symbol) {
	n := siblings[i]
	name := n.Data.Name

	var argGroup *cst.Node
	if i+1 < len(siblings) && siblings[i+1].Kind == cst.Group && !siblings[i+1].Data.Bracket {
		argGroup = siblings[i+1]
	}
	argText := groupArgumentText(argGroup)
	span := n.Span
	if argGroup != nil {
		span = span.Cover(argGroup.Span)
	}

	switch {
	case name == "label":
		addIfNamed(out, LabelDefinition, argText, span, fileID)
	case referenceCommands[name]:
		addIfNamed(out, LabelReference, argText, span, fileID)
	case citationCommands[name]:
		for _, key := range splitList(argText) {
			*out = append(*out, Symbol{Kind: CitationReference, Name: key, Span: span, File: fileID})
		}
	case name == "bibitem":
		addIfNamed(out, BibEntry, argText, span, fileID)
	case commandDefCommands[name]:
		addIfNamed(out, CommandDefinition, strings.TrimPrefix(argText, "\\"), span, fileID)
	case environmentDefCommands[name]:
		addIfNamed(out, EnvironmentDefinition, argText, span, fileID)
	case packageCommands[name]:
		for _, pkg := range splitList(argText) {
			*out = append(*out, Symbol{Kind: PackageUse, Name: pkg, Span: span, File: fileID})
		}
	}

	if argGroup != nil {
		extractSiblings(fileID, argGroup.Children, out)
	}
}

func addIfNamed(out *[]Symbol, kind Kind, name string, span source.Span, fileID source.FileID) {
	if name == "" {
		return
	}
	*out = append(*out, Symbol{Kind: kind, Name: name, Span: span, File: fileID})
}

// groupArgumentText returns a Group node's inner text with its delimiters
// stripped, or "" for a nil/empty group.
func groupArgumentText(g *cst.Node) string {
	if g == nil {
		return ""
	}
	full := cst.Text(g)
	full = strings.TrimPrefix(full, "{")
	full = strings.TrimSuffix(full, "}")
	return strings.TrimSpace(full)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
