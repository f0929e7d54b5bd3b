// Package workspace owns the live state of a multi-document LaTeX project:
// the shared source.FileSet, the symbol index, the include graph, and
// the debounced invalidator tying edits to recomputation. It is the
// concurrency seam a multi-document analysis workspace needs: parallel
// per-file analysis via errgroup, and an optional disk cache keyed by
// content hash (diskcache.go) that lets an unchanged file skip CST
// rebuilding entirely. golang.org/x/sync/singleflight dedups concurrent
// Diagnose calls for the same document — a need a one-shot batch CLI
// never has, but an editor issuing overlapping requests on every
// keystroke does.
package workspace

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"ftex/internal/cst"
	"ftex/internal/diag"
	"ftex/internal/includegraph"
	"ftex/internal/index"
	"ftex/internal/invalidator"
	"ftex/internal/source"
)

// RequestID correlates a cancellable request (e.g. a definition lookup
// racing an in-flight reindex) across log lines, grounded on the
// uuid.NewString() idiom used for session/request identifiers elsewhere in
// the retrieved pack.
type RequestID string

// NewRequestID returns a fresh correlation id.
func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

// Options configures a Workspace.
type Options struct {
	Roots          []string
	SearchPath     []string
	Resolver       includegraph.Resolver
	CST            cst.Options
	MaxDiagnostics int
	Jobs           int
	Debounce       time.Duration
	Cache          *DiskCache
}

func (o Options) withDefaults() Options {
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = 100
	}
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	return o
}

// Document is one file the workspace is tracking, either editor-open or
// loaded in passing as an include target.
type Document struct {
	Path    string
	FileID  source.FileID
	Version int
}

// Workspace is the shared, concurrency-safe owner of one project's analysis
// state.
type Workspace struct {
	opts Options

	fs    *source.FileSet
	idx   *index.Index
	graph *includegraph.Graph
	inv   *invalidator.Invalidator

	mu     sync.Mutex
	docs   map[string]*Document
	diags  map[source.FileID]*diag.Bag
	cycles map[source.FileID][]*diag.Diagnostic

	group singleflight.Group
}

// New creates an empty Workspace.
func New(opts Options) *Workspace {
	opts = opts.withDefaults()
	w := &Workspace{
		opts:   opts,
		fs:     source.NewFileSet(),
		idx:    index.New(),
		graph:  includegraph.New(),
		docs:   make(map[string]*Document),
		diags:  make(map[source.FileID]*diag.Bag),
		cycles: make(map[source.FileID][]*diag.Diagnostic),
	}
	w.inv = invalidator.New(w.graph, invalidator.Options{
		Debounce:  opts.Debounce,
		Recompute: w.recompute,
	})
	return w
}

// FileSet exposes the workspace's shared FileSet for read-only inspection
// (e.g. by internal/editoradapter).
func (w *Workspace) FileSet() *source.FileSet { return w.fs }

// Index exposes the workspace's shared symbol index.
func (w *Workspace) Index() *index.Index { return w.idx }

// Graph exposes the workspace's shared include graph.
func (w *Workspace) Graph() *includegraph.Graph { return w.graph }

// OpenDocument registers path as open with the given content and indexes it
// synchronously (an editor opening a file wants its symbols available
// immediately, not after a debounce window).
func (w *Workspace) OpenDocument(path string, content []byte) source.FileID {
	w.mu.Lock()
	fileID := w.fs.Add(path, content, source.FileVirtual)
	doc, existed := w.docs[path]
	if existed {
		doc.FileID = fileID
		doc.Version++
	} else {
		doc = &Document{Path: path, FileID: fileID, Version: 1}
		w.docs[path] = doc
	}
	w.mu.Unlock()

	w.reindexOne(fileID)
	return fileID
}

// UpdateDocument records new content for an already-open path and schedules
// a debounced reindex rather than reindexing inline, so a burst of
// keystrokes coalesces into one recomputation.
func (w *Workspace) UpdateDocument(path string, content []byte) (source.FileID, bool) {
	w.mu.Lock()
	doc, ok := w.docs[path]
	if !ok {
		w.mu.Unlock()
		return 0, false
	}
	fileID := w.fs.Add(path, content, source.FileVirtual)
	doc.FileID = fileID
	doc.Version++
	w.mu.Unlock()

	w.inv.DidChange(fileID)
	return fileID, true
}

// CloseDocument stops tracking path as open. Its FileSet entries, index
// symbols, and graph edges are left in place (the FileSet is append-only by
// design; see internal/source), since other open documents may still
// reference it as an include target.
func (w *Workspace) CloseDocument(path string) {
	w.mu.Lock()
	delete(w.docs, path)
	w.mu.Unlock()
}

// Document returns the currently tracked document for path, if open.
func (w *Workspace) Document(path string) (Document, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, ok := w.docs[path]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// OpenPaths returns every currently open document path, sorted.
func (w *Workspace) OpenPaths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.docs))
	for p := range w.docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Diagnostics returns the diagnostics recorded for file from its most
// recent reindex, plus any include-cycle diagnostic whose closing edge
// originates in file.
func (w *Workspace) Diagnostics(file source.FileID) []*diag.Diagnostic {
	w.mu.Lock()
	bag := w.diags[file]
	cycles := w.cycles[file]
	w.mu.Unlock()

	var out []*diag.Diagnostic
	if bag != nil {
		out = append(out, bag.Items()...)
	}
	return append(out, cycles...)
}

// Diagnose reindexes path synchronously (deduped via singleflight so
// concurrent callers for the same path share one reindex) and returns its
// diagnostics. Use this from a one-shot CLI command that can't wait out a
// debounce window; use UpdateDocument for live-editing scenarios.
func (w *Workspace) Diagnose(ctx context.Context, path string) ([]*diag.Diagnostic, error) {
	w.mu.Lock()
	doc, ok := w.docs[path]
	w.mu.Unlock()
	if !ok {
		return nil, errNotOpen{path: path}
	}

	v, err, _ := w.group.Do(path, func() (any, error) {
		w.reindexOne(doc.FileID)
		return w.Diagnostics(doc.FileID), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*diag.Diagnostic), nil
}

// DiagnoseAll reindexes every open document in parallel, bounded by
// opts.Jobs via errgroup.WithContext + g.SetLimit. A cancelled ctx stops
// further work but results already computed for other files are kept.
func (w *Workspace) DiagnoseAll(ctx context.Context) (map[string][]*diag.Diagnostic, error) {
	paths := w.OpenPaths()
	if len(paths) == 0 {
		return nil, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(w.opts.Jobs, len(paths)))

	results := make(map[string][]*diag.Diagnostic, len(paths))
	var resultsMu sync.Mutex

	for _, path := range paths {
		path := path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			diags, err := w.Diagnose(gctx, path)
			if err != nil {
				return err
			}
			resultsMu.Lock()
			results[path] = diags
			resultsMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// reindexOne runs the cst/index/includegraph pipeline for file, consulting
// the disk cache for the CST-extraction stage (pure in the file's content
// hash) and always re-resolving include edges, since two files with
// identical content can still resolve against different roots.
func (w *Workspace) reindexOne(file source.FileID) {
	bag := diag.NewBag(w.opts.MaxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}

	if !w.fs.Has(file) {
		w.idx.RemoveFile(file)
		w.graph.ClearFrom(file)
		w.mu.Lock()
		delete(w.diags, file)
		w.mu.Unlock()
		w.recomputeCycles()
		return
	}

	f := w.fs.Get(file)
	if w.opts.Cache != nil {
		if symbols, hit, err := w.opts.Cache.Get(f.Hash); err == nil && hit {
			// Cached symbols carry the FileID of the version they were
			// extracted from; rebind them to this one.
			for i := range symbols {
				symbols[i].File = file
				symbols[i].Span.File = file
			}
			w.idx.SetFile(file, symbols)
		} else {
			w.extractAndCache(f, file)
		}
	} else {
		root := cst.Build(f, w.opts.CST)
		w.idx.SetFile(file, index.Extract(file, root))
	}

	includegraph.AddFile(w.graph, w.fs, w.idx, file, w.opts.Roots, w.opts.SearchPath, w.opts.Resolver, reporter)
	w.recomputeCycles()

	w.mu.Lock()
	w.diags[file] = bag
	w.mu.Unlock()
}

// recomputeCycles re-runs cycle detection over the whole graph after any
// edge mutation and rebuilds the closing-edge-keyed diagnostic map from
// scratch. Each cycle produces exactly one diag.IncludeCycle diagnostic,
// attached to the file whose outgoing edge closes the loop — not
// necessarily the file that was just reindexed, since the closing edge a
// DFS discovers depends on the cycle's shape, not which member was touched
// last. Keying the whole map off the graph rather than one file's bag is
// what lets Diagnostics(file) see the cycle regardless of which member's
// reindex happened to complete the loop.
func (w *Workspace) recomputeCycles() {
	found := includegraph.DetectCycleEdges(w.graph)
	byFile := make(map[source.FileID][]*diag.Diagnostic, len(found))
	for _, c := range found {
		d := diag.ReportError(nil, diag.IncludeCycle, c.Closing.Span,
			fmt.Sprintf("include cycle detected: %s", w.cycleDescription(c.Files))).Diagnostic()
		byFile[c.Closing.From] = append(byFile[c.Closing.From], &d)
	}

	w.mu.Lock()
	w.cycles = byFile
	w.mu.Unlock()
}

func (w *Workspace) cycleDescription(files []source.FileID) string {
	names := make([]string, 0, len(files)+1)
	for _, f := range files {
		if w.fs.Has(f) {
			names = append(names, w.fs.Get(f).Path)
		}
	}
	if len(names) > 0 {
		names = append(names, names[0])
	}
	return strings.Join(names, " -> ")
}

func (w *Workspace) extractAndCache(f *source.File, file source.FileID) {
	root := cst.Build(f, w.opts.CST)
	symbols := index.Extract(file, root)
	w.idx.SetFile(file, symbols)
	_ = w.opts.Cache.Put(f.Hash, symbols)
}

// recompute is the invalidator.Recompute callback: reindex every file in
// the invalidation closure.
func (w *Workspace) recompute(files []source.FileID) {
	for _, f := range files {
		w.reindexOne(f)
	}
}

type errNotOpen struct{ path string }

func (e errNotOpen) Error() string { return "workspace: " + e.path + " is not open" }
