// Package includegraph builds the include graph: a directed multigraph
// over \input/\include/\subfile/\includegraphics edges extracted by
// internal/index, with path resolution and cycle detection.
package includegraph

import (
	"sort"

	"ftex/internal/source"
)

// Edge is one resolved include directive.
type Edge struct {
	From    source.FileID
	To      source.FileID
	RawPath string
	Span    source.Span
}

// Graph is a directed multigraph keyed by FileID; a file can include the
// same target more than once (multiple \input of the same chapter), hence
// a multigraph rather than a plain adjacency set.
type Graph struct {
	edges   map[source.FileID][]Edge
	present map[source.FileID]bool
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{edges: make(map[source.FileID][]Edge), present: make(map[source.FileID]bool)}
}

// AddNode registers file as present even if it has no edges yet (e.g. a
// leaf document with no includes of its own).
func (g *Graph) AddNode(file source.FileID) {
	g.present[file] = true
}

// AddEdge records a resolved include and marks both endpoints present.
func (g *Graph) AddEdge(e Edge) {
	g.edges[e.From] = append(g.edges[e.From], e)
	g.present[e.From] = true
	g.present[e.To] = true
}

// ClearFrom removes every outgoing edge previously recorded for file,
// without forgetting that file is present. Used before re-adding a
// document's edges after reindexing, so a removed \input doesn't linger.
func (g *Graph) ClearFrom(file source.FileID) {
	delete(g.edges, file)
}

// EdgesFrom returns file's outgoing edges, in the order they were added.
func (g *Graph) EdgesFrom(file source.FileID) []Edge {
	return g.edges[file]
}

// Present reports whether file has been registered in the graph, either as
// an include source or an include target.
func (g *Graph) Present(file source.FileID) bool {
	return g.present[file]
}

// Nodes returns every registered file, sorted for deterministic iteration.
func (g *Graph) Nodes() []source.FileID {
	out := make([]source.FileID, 0, len(g.present))
	for n := range g.present {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (g *Graph) incoming() map[source.FileID][]source.FileID {
	rev := make(map[source.FileID][]source.FileID)
	for from, edges := range g.edges {
		for _, e := range edges {
			rev[e.To] = append(rev[e.To], from)
		}
	}
	return rev
}

// Incoming returns, for every file with at least one includer, the list of
// files that include it directly. Exported for callers (internal/
// invalidator) that need to walk the graph backwards without duplicating
// its adjacency bookkeeping.
func (g *Graph) Incoming() map[source.FileID][]source.FileID {
	return g.incoming()
}
