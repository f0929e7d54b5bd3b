// Package invalidator schedules the minimal, dependency-directed
// recomputation that follows a document edit (the invalidator): reparsing and
// reindexing the changed file, re-resolving its include edges, and
// propagating staleness to every file whose include graph touches it,
// behind a debounce window so a burst of keystrokes triggers one pass
// rather than one per keystroke.
package invalidator

import (
	"sort"
	"sync"
	"time"

	"ftex/internal/cst"
	"ftex/internal/diag"
	"ftex/internal/includegraph"
	"ftex/internal/index"
	"ftex/internal/source"
)

// defaultDebounce is the default wait between the last observed edit and
// the recomputation it triggers.
const defaultDebounce = 300 * time.Millisecond

// Recompute is run once the debounce window elapses for a batch of dirty
// files. A typical callback reparses, reindexes, and re-resolves each file
// (see ReindexOne); it returns nothing, and the invalidator does not
// inspect what it changed.
type Recompute func(files []source.FileID)

// Options configures an Invalidator.
type Options struct {
	// Debounce is how long to wait after the last DidChange before running
	// Recompute. Defaults to 300ms.
	Debounce time.Duration
	// Recompute is invoked with the closure of dirty files once the
	// debounce window elapses. Required.
	Recompute Recompute
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = defaultDebounce
	}
	return o
}

// Invalidator coalesces document-change events into a single debounced
// recomputation pass over the transitive closure of affected files.
//
// Rather than debouncing a single whole-workspace re-analysis, Invalidator
// tracks dirty files individually and expands each one through the
// include graph before firing Recompute, so an edit to a leaf chapter
// does not force re-reading files it shares no include edge with.
type Invalidator struct {
	mu      sync.Mutex
	opts    Options
	graph   *includegraph.Graph
	timer   *time.Timer
	dirty   map[source.FileID]bool
	seq     uint64
	latest  uint64
	fired   uint64
}

// New creates an Invalidator that expands invalidation through graph.
// graph is read (for reverse-dependency lookups) each time the debounce
// timer fires, so it reflects whatever edges callers have recorded via
// includegraph.AddFile (or ReindexOne) by then.
func New(graph *includegraph.Graph, opts Options) *Invalidator {
	return &Invalidator{
		opts:  opts.withDefaults(),
		graph: graph,
		dirty: make(map[source.FileID]bool),
	}
}

// DidChange records file as dirty and (re)starts the debounce timer. Calling
// it again before the timer fires cancels the pending timer and restarts it,
// a stop-then-restart idiom.
func (v *Invalidator) DidChange(file source.FileID) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.dirty[file] = true
	v.seq++
	seq := v.seq
	v.latest = seq

	if v.timer != nil {
		v.timer.Stop()
	}
	v.timer = time.AfterFunc(v.opts.Debounce, func() {
		v.fire(seq)
	})
}

// Flush cancels any pending debounce timer and runs Recompute immediately
// over whatever is currently dirty. Used by callers that need a synchronous
// result (e.g. a one-shot CLI invocation) instead of waiting on the timer.
func (v *Invalidator) Flush() {
	v.mu.Lock()
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.seq++
	seq := v.seq
	v.latest = seq
	v.mu.Unlock()

	v.fire(seq)
}

// Pending reports the currently dirty files, sorted, without clearing them.
func (v *Invalidator) Pending() []source.FileID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return sortedKeys(v.dirty)
}

func (v *Invalidator) fire(seq uint64) {
	v.mu.Lock()
	if seq != v.latest {
		// superseded by a later edit before the timer fired
		v.mu.Unlock()
		return
	}
	closure := v.closure()
	v.dirty = make(map[source.FileID]bool)
	v.fired++
	v.mu.Unlock()

	if v.opts.Recompute != nil && len(closure) > 0 {
		v.opts.Recompute(closure)
	}
}

// closure expands the current dirty set through the include graph to every
// file that includes a dirty file, directly or transitively: a changed
// file's content affects the files that include it (their links-in may now
// resolve differently). Files a dirty file itself includes are not added.
// Callers must hold v.mu.
func (v *Invalidator) closure() []source.FileID {
	visited := make(map[source.FileID]bool)
	var order []source.FileID

	var add func(source.FileID)
	add = func(f source.FileID) {
		if visited[f] {
			return
		}
		visited[f] = true
		order = append(order, f)
	}

	for f := range v.dirty {
		add(f)
	}

	if v.graph != nil {
		rev := v.graph.Incoming()
		queue := sortedKeys(v.dirty)
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			for _, parent := range rev[f] {
				if !visited[parent] {
					add(parent)
					queue = append(queue, parent)
				}
			}
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	return order
}

func sortedKeys(m map[source.FileID]bool) []source.FileID {
	out := make([]source.FileID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ReindexOne reparses and reindexes a single file and refreshes its
// outgoing include edges. It is the unit of work a Recompute callback runs
// per file in the invalidation closure; exported so callers (internal/
// workspace) can reuse it instead of re-deriving the cst/index/includegraph
// wiring themselves.
func ReindexOne(fs *source.FileSet, idx *index.Index, graph *includegraph.Graph, file source.FileID, opts cst.Options, roots, searchPath []string, resolver includegraph.Resolver, reporter diag.Reporter) {
	if !fs.Has(file) {
		idx.RemoveFile(file)
		graph.ClearFrom(file)
		return
	}
	root := cst.Build(fs.Get(file), opts)
	idx.SetFile(file, index.Extract(file, root))
	includegraph.AddFile(graph, fs, idx, file, roots, searchPath, resolver, reporter)
}
