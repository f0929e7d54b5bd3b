package includegraph

import (
	"sort"

	"ftex/internal/source"
)

type color uint8

const (
	white color = iota
	gray
	black
)

// Cycle is one detected include cycle: the member files in inclusion order,
// and the edge that closes the loop back to the first file.
type Cycle struct {
	Files   []source.FileID
	Closing Edge
}

// DetectCycleEdges finds every cycle in g via DFS coloring (white/gray/
// black), visiting nodes in FileID order for deterministic output, and
// records the specific edge that closes each loop back to its first
// element — the edge a cycle diagnostic is reported against.
func DetectCycleEdges(g *Graph) []Cycle {
	colors := make(map[source.FileID]color)
	var stack []source.FileID
	var cycles []Cycle

	var visit func(n source.FileID)
	visit = func(n source.FileID) {
		colors[n] = gray
		stack = append(stack, n)
		for _, e := range g.edges[n] {
			switch colors[e.To] {
			case white:
				visit(e.To)
			case gray:
				if i := indexOf(stack, e.To); i >= 0 {
					files := append([]source.FileID(nil), stack[i:]...)
					cycles = append(cycles, Cycle{Files: files, Closing: e})
				}
			}
		}
		stack = stack[:len(stack)-1]
		colors[n] = black
	}

	for _, n := range g.Nodes() {
		if colors[n] == white {
			visit(n)
		}
	}
	return cycles
}

// DetectCycles finds every cycle in g, returning just the member files in
// inclusion order. See DetectCycleEdges for the variant that also reports
// each cycle's closing edge.
func DetectCycles(g *Graph) [][]source.FileID {
	edges := DetectCycleEdges(g)
	cycles := make([][]source.FileID, len(edges))
	for i, c := range edges {
		cycles[i] = c.Files
	}
	return cycles
}

func indexOf(stack []source.FileID, target source.FileID) int {
	for i, n := range stack {
		if n == target {
			return i
		}
	}
	return -1
}

// EntrypointsIncluding returns every file in g with no incoming edges
// (a build root) that transitively includes target, via reverse
// reachability over the include edges. A target with no includers at all
// is its own sole entrypoint.
func EntrypointsIncluding(g *Graph, target source.FileID) []source.FileID {
	rev := g.incoming()
	visited := make(map[source.FileID]bool)
	var ancestors []source.FileID

	var walk func(n source.FileID)
	walk = func(n source.FileID) {
		if visited[n] {
			return
		}
		visited[n] = true
		ancestors = append(ancestors, n)
		for _, p := range rev[n] {
			walk(p)
		}
	}
	walk(target)

	var entrypoints []source.FileID
	for _, n := range ancestors {
		if len(rev[n]) == 0 {
			entrypoints = append(entrypoints, n)
		}
	}
	sort.Slice(entrypoints, func(i, j int) bool { return entrypoints[i] < entrypoints[j] })
	return entrypoints
}
