package includegraph

import (
	"testing"

	"ftex/internal/cst"
	"ftex/internal/diag"
	"ftex/internal/index"
	"ftex/internal/source"
)

func addDoc(t *testing.T, fs *source.FileSet, path, src string) source.FileID {
	t.Helper()
	return fs.Add(path, []byte(src), source.FileVirtual)
}

func reindex(t *testing.T, fs *source.FileSet, idx *index.Index, file source.FileID) {
	t.Helper()
	root := cst.Build(fs.Get(file), cst.Options{})
	idx.SetFile(file, index.Extract(file, root))
}

func TestResolvePath_IncludingFileDirectory(t *testing.T) {
	fs := source.NewFileSet()
	main := addDoc(t, fs, "doc/main.tex", `\input{chapter1}`)
	chapter := addDoc(t, fs, "doc/chapter1.tex", "content")

	got, ok := ResolvePath(fs, main, "chapter1", nil, nil, nil)
	if !ok || got != chapter {
		t.Fatalf("ResolvePath = (%v, %v), want (%v, true)", got, ok, chapter)
	}
}

func TestResolvePath_WorkspaceRootFallback(t *testing.T) {
	fs := source.NewFileSet()
	main := addDoc(t, fs, "doc/main.tex", `\input{shared/preamble}`)
	preamble := addDoc(t, fs, "lib/shared/preamble.tex", "preamble")

	if _, ok := ResolvePath(fs, main, "shared/preamble", nil, nil, nil); ok {
		t.Fatal("expected no resolution without a matching root")
	}
	got, ok := ResolvePath(fs, main, "shared/preamble", []string{"lib"}, nil, nil)
	if !ok || got != preamble {
		t.Fatalf("ResolvePath with root = (%v, %v), want (%v, true)", got, ok, preamble)
	}
}

func TestResolvePath_SearchPathFallback(t *testing.T) {
	fs := source.NewFileSet()
	main := addDoc(t, fs, "doc/main.tex", `\input{macros}`)
	macros := addDoc(t, fs, "texmf/macros.tex", "macros")

	got, ok := ResolvePath(fs, main, "macros", nil, []string{"texmf"}, nil)
	if !ok || got != macros {
		t.Fatalf("ResolvePath via search path = (%v, %v), want (%v, true)", got, ok, macros)
	}
}

func TestResolvePath_ExternalResolverIsLastResort(t *testing.T) {
	fs := source.NewFileSet()
	main := addDoc(t, fs, "doc/main.tex", `\input{generated}`)
	gen := addDoc(t, fs, "build/generated.tex", "generated")

	resolver := resolverFunc(func(fromDir, rawPath string) (string, bool) {
		if rawPath == "generated" {
			return "build/generated.tex", true
		}
		return "", false
	})

	got, ok := ResolvePath(fs, main, "generated", nil, nil, resolver)
	if !ok || got != gen {
		t.Fatalf("ResolvePath via resolver = (%v, %v), want (%v, true)", got, ok, gen)
	}
}

type resolverFunc func(fromDir, rawPath string) (string, bool)

func (f resolverFunc) Resolve(fromDir, rawPath string) (string, bool) { return f(fromDir, rawPath) }

func TestAddFile_UnresolvedIncludeReportsDiagnostic(t *testing.T) {
	fs := source.NewFileSet()
	idx := index.New()
	main := addDoc(t, fs, "doc/main.tex", `\input{missing}`)
	reindex(t, fs, idx, main)

	bag := diag.NewBag(16)
	g := New()
	AddFile(g, fs, idx, main, nil, nil, nil, diag.BagReporter{Bag: bag})

	if len(bag.Items()) != 1 || bag.Items()[0].Code != diag.IncludeResolutionFailed {
		t.Fatalf("bag = %+v, want one IncludeResolutionFailed", bag.Items())
	}
	if len(g.EdgesFrom(main)) != 0 {
		t.Errorf("expected no edges for an unresolved include, got %+v", g.EdgesFrom(main))
	}
}

func TestAddFile_ResolvedIncludeAddsEdge(t *testing.T) {
	fs := source.NewFileSet()
	idx := index.New()
	main := addDoc(t, fs, "doc/main.tex", `\input{chapter1}`)
	chapter := addDoc(t, fs, "doc/chapter1.tex", "content")
	reindex(t, fs, idx, main)

	g := New()
	AddFile(g, fs, idx, main, nil, nil, nil, nil)

	edges := g.EdgesFrom(main)
	if len(edges) != 1 || edges[0].To != chapter {
		t.Fatalf("EdgesFrom(main) = %+v, want one edge to chapter1", edges)
	}
}

func TestDetectCycles_FindsDirectCycle(t *testing.T) {
	fs := source.NewFileSet()
	a := addDoc(t, fs, "a.tex", `\input{b}`)
	b := addDoc(t, fs, "b.tex", `\input{a}`)

	g := New()
	g.AddEdge(Edge{From: a, To: b})
	g.AddEdge(Edge{From: b, To: a})

	cycles := DetectCycles(g)
	if len(cycles) == 0 {
		t.Fatal("expected at least one cycle")
	}
}

func TestDetectCycleEdges_ReportsClosingEdge(t *testing.T) {
	fs := source.NewFileSet()
	a := addDoc(t, fs, "a.tex", `\input{b}`)
	b := addDoc(t, fs, "b.tex", `\input{a}`)

	g := New()
	g.AddEdge(Edge{From: a, To: b})
	closing := Edge{From: b, To: a, RawPath: "a"}
	g.AddEdge(closing)

	cycles := DetectCycleEdges(g)
	if len(cycles) != 1 {
		t.Fatalf("got %d cycles, want 1", len(cycles))
	}
	if cycles[0].Closing.From != b || cycles[0].Closing.To != a {
		t.Fatalf("closing edge = %+v, want the b->a edge", cycles[0].Closing)
	}
}

func TestDetectCycles_AcyclicGraphHasNone(t *testing.T) {
	fs := source.NewFileSet()
	a := addDoc(t, fs, "a.tex", "")
	b := addDoc(t, fs, "b.tex", "")
	c := addDoc(t, fs, "c.tex", "")

	g := New()
	g.AddEdge(Edge{From: a, To: b})
	g.AddEdge(Edge{From: b, To: c})

	if cycles := DetectCycles(g); len(cycles) != 0 {
		t.Fatalf("got %+v, want no cycles", cycles)
	}
}

func TestEntrypointsIncluding(t *testing.T) {
	fs := source.NewFileSet()
	main := addDoc(t, fs, "main.tex", "")
	chapter := addDoc(t, fs, "chapter1.tex", "")
	section := addDoc(t, fs, "section1.tex", "")

	g := New()
	g.AddEdge(Edge{From: main, To: chapter})
	g.AddEdge(Edge{From: chapter, To: section})

	entrypoints := EntrypointsIncluding(g, section)
	if len(entrypoints) != 1 || entrypoints[0] != main {
		t.Fatalf("EntrypointsIncluding(section) = %v, want [main]", entrypoints)
	}
}

func TestEntrypointsIncluding_FileWithNoIncludersIsOwnEntrypoint(t *testing.T) {
	fs := source.NewFileSet()
	standalone := addDoc(t, fs, "standalone.tex", "")
	g := New()
	g.AddNode(standalone)

	entrypoints := EntrypointsIncluding(g, standalone)
	if len(entrypoints) != 1 || entrypoints[0] != standalone {
		t.Fatalf("got %v, want [standalone]", entrypoints)
	}
}
