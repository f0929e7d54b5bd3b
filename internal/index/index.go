package index

import (
	"sort"
	"strings"
	"sync"

	"ftex/internal/source"
)

// Index aggregates Symbol extractions across every file in a workspace and
// answers a standard query set: find_definitions, find_references,
// workspace_symbols, links_in. It is safe for concurrent
// use (SetFile/RemoveFile mutate, queries read), the same mutex-guarded
// shape internal/logbuf.Buffer uses for its own append/read split.
type Index struct {
	mu     sync.RWMutex
	byFile map[source.FileID][]Symbol
}

// New creates an empty Index.
func New() *Index {
	return &Index{byFile: make(map[source.FileID][]Symbol)}
}

// SetFile replaces file's symbol set, e.g. after a reparse. A nil or empty
// symbols clears the file's entry.
func (idx *Index) SetFile(file source.FileID, symbols []Symbol) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if len(symbols) == 0 {
		delete(idx.byFile, file)
		return
	}
	idx.byFile[file] = symbols
}

// RemoveFile drops file's symbols entirely, e.g. on document close.
func (idx *Index) RemoveFile(file source.FileID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.byFile, file)
}

// FindDefinitions returns every definition-kind symbol named name
// (LabelDefinition, CommandDefinition, EnvironmentDefinition, BibEntry).
func (idx *Index) FindDefinitions(name string) []Symbol {
	return idx.filter(func(s Symbol) bool { return s.Kind.isDefinition() && s.Name == name })
}

// FindReferences returns every reference-kind symbol named name
// (LabelReference, CitationReference).
func (idx *Index) FindReferences(name string) []Symbol {
	return idx.filter(func(s Symbol) bool { return s.Kind.isReference() && s.Name == name })
}

// WorkspaceSymbols returns every symbol whose name contains query
// (case-insensitive), across every kind.
func (idx *Index) WorkspaceSymbols(query string) []Symbol {
	q := strings.ToLower(query)
	return idx.filter(func(s Symbol) bool { return strings.Contains(strings.ToLower(s.Name), q) })
}

// LinksIn returns every InputInclude symbol recorded for file, in document
// order.
func (idx *Index) LinksIn(file source.FileID) []Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var out []Symbol
	for _, s := range idx.byFile[file] {
		if s.Kind == InputInclude {
			out = append(out, s)
		}
	}
	sortSymbols(out)
	return out
}

// FileSymbols returns every symbol recorded for file, in document order.
func (idx *Index) FileSymbols(file source.FileID) []Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]Symbol, len(idx.byFile[file]))
	copy(out, idx.byFile[file])
	sortSymbols(out)
	return out
}

func (idx *Index) filter(pred func(Symbol) bool) []Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var out []Symbol
	for _, symbols := range idx.byFile {
		for _, s := range symbols {
			if pred(s) {
				out = append(out, s)
			}
		}
	}
	sortSymbols(out)
	return out
}

func sortSymbols(s []Symbol) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].File != s[j].File {
			return s[i].File < s[j].File
		}
		return s[i].Span.Start < s[j].Span.Start
	})
}
