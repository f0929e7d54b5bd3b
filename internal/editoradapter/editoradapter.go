// Package editoradapter is the thin, data-only seam an LSP host would sit
// behind: it turns workspace state into the plain slices a protocol layer
// would marshal into textDocument/publishDiagnostics, textDocument/definition,
// and textDocument/references responses, without implementing JSON-RPC
// framing itself. A full LSP server stays an external collaborator built
// on top of this query surface, analogous to a definition/references query
// layer sitting in front of its own transport.
package editoradapter

import (
	"ftex/internal/diag"
	"ftex/internal/includegraph"
	"ftex/internal/index"
	"ftex/internal/source"
	"ftex/internal/workspace"
)

// Position is an LSP-style 0-indexed line/character pair.
type Position struct {
	Line      uint32
	Character uint32
}

// Adapter wraps a *workspace.Workspace with the query surface an editor
// integration needs, without exposing the workspace's internal mutex or
// recompute plumbing.
type Adapter struct {
	ws *workspace.Workspace
}

// New wraps ws.
func New(ws *workspace.Workspace) *Adapter {
	return &Adapter{ws: ws}
}

// PublishDiagnostics returns the diagnostics currently recorded for uri, or
// nil if uri is not open or has not been diagnosed yet. The payload a
// textDocument/publishDiagnostics notification would carry, minus the
// JSON-RPC envelope.
func (a *Adapter) PublishDiagnostics(uri string) []*diag.Diagnostic {
	doc, ok := a.ws.Document(uri)
	if !ok {
		return nil
	}
	return a.ws.Diagnostics(doc.FileID)
}

// DefinitionAt resolves the symbol occurrence at pos in uri (if any) and
// returns every definition-kind index.Symbol sharing its name: a two-step
// "what's under the cursor, then look it up" query.
func (a *Adapter) DefinitionAt(uri string, pos Position) []index.Symbol {
	sym, ok := a.symbolAt(uri, pos)
	if !ok {
		return nil
	}
	return a.ws.Index().FindDefinitions(sym.Name)
}

// ReferencesOf resolves the symbol occurrence at pos in uri and returns
// every reference-kind index.Symbol sharing its name.
func (a *Adapter) ReferencesOf(uri string, pos Position) []index.Symbol {
	sym, ok := a.symbolAt(uri, pos)
	if !ok {
		return nil
	}
	return a.ws.Index().FindReferences(sym.Name)
}

// WorkspaceSymbols forwards to the index's substring query, the data
// backing a textDocument/workspaceSymbol response.
func (a *Adapter) WorkspaceSymbols(query string) []index.Symbol {
	return a.ws.Index().WorkspaceSymbols(query)
}

// LinksIn returns the InputInclude symbols recorded for uri, the data
// backing a textDocument/documentLink response.
func (a *Adapter) LinksIn(uri string) []index.Symbol {
	doc, ok := a.ws.Document(uri)
	if !ok {
		return nil
	}
	return a.ws.Index().LinksIn(doc.FileID)
}

// EntrypointsIncluding returns the build roots (files nothing else
// includes) that transitively include uri; a file with no includers is its
// own sole entrypoint.
func (a *Adapter) EntrypointsIncluding(uri string) []source.FileID {
	doc, ok := a.ws.Document(uri)
	if !ok {
		return nil
	}
	return includegraph.EntrypointsIncluding(a.ws.Graph(), doc.FileID)
}

// symbolAt finds the narrowest symbol in uri whose Span covers the byte
// offset addressed by pos, preferring the most recently recorded match at
// that offset (FileSymbols is in document order, so the last one found is
// also the most deeply nested on ties).
func (a *Adapter) symbolAt(uri string, pos Position) (index.Symbol, bool) {
	doc, ok := a.ws.Document(uri)
	if !ok {
		return index.Symbol{}, false
	}
	fs := a.ws.FileSet()
	if !fs.Has(doc.FileID) {
		return index.Symbol{}, false
	}
	f := fs.Get(doc.FileID)
	offset := offsetAt(f, pos)

	var best index.Symbol
	found := false
	for _, sym := range a.ws.Index().FileSymbols(doc.FileID) {
		if offset < sym.Span.Start || offset >= sym.Span.End {
			continue
		}
		if !found || sym.Span.Len() <= best.Span.Len() {
			best = sym
			found = true
		}
	}
	return best, found
}

// offsetAt converts a 0-indexed line/character position into a byte offset
// within f, clamped to f's content length. f.LineIdx holds the byte offset
// of every '\n' (0-based), mirroring source.toLineCol's own line-start
// arithmetic but in the opposite direction.
func offsetAt(f *source.File, pos Position) uint32 {
	var lineStart uint32
	if pos.Line > 0 {
		idx := int(pos.Line) - 1
		if idx < len(f.LineIdx) {
			lineStart = f.LineIdx[idx] + 1
		} else if len(f.LineIdx) > 0 {
			lineStart = f.LineIdx[len(f.LineIdx)-1] + 1
		}
	}
	offset := lineStart + pos.Character
	if contentLen := uint32(len(f.Content)); offset > contentLen {
		offset = contentLen
	}
	return offset
}
