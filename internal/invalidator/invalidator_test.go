package invalidator

import (
	"sync"
	"testing"
	"time"

	"ftex/internal/cst"
	"ftex/internal/diag"
	"ftex/internal/includegraph"
	"ftex/internal/index"
	"ftex/internal/source"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]source.FileID
}

func (r *recorder) record(files []source.FileID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := append([]source.FileID(nil), files...)
	r.calls = append(r.calls, cp)
}

func (r *recorder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) lastCall() []source.FileID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDidChange_FiresRecomputeAfterDebounce(t *testing.T) {
	rec := &recorder{}
	fs := source.NewFileSet()
	file := fs.Add("main.tex", []byte("content"), source.FileVirtual)

	v := New(includegraph.New(), Options{Debounce: 10 * time.Millisecond, Recompute: rec.record})
	v.DidChange(file)

	waitUntil(t, func() bool { return rec.callCount() == 1 })
	if got := rec.lastCall(); len(got) != 1 || got[0] != file {
		t.Fatalf("Recompute called with %v, want [%v]", got, file)
	}
}

func TestDidChange_BurstCoalescesIntoOneRun(t *testing.T) {
	rec := &recorder{}
	fs := source.NewFileSet()
	file := fs.Add("main.tex", []byte("content"), source.FileVirtual)

	v := New(includegraph.New(), Options{Debounce: 30 * time.Millisecond, Recompute: rec.record})
	for i := 0; i < 5; i++ {
		v.DidChange(file)
		time.Sleep(5 * time.Millisecond)
	}

	waitUntil(t, func() bool { return rec.callCount() == 1 })
	// give a little extra time to confirm no second firing arrives late
	time.Sleep(50 * time.Millisecond)
	if rec.callCount() != 1 {
		t.Fatalf("callCount = %d, want exactly 1 after a coalesced burst", rec.callCount())
	}
}

func TestDidChange_ExpandsClosureToIncludingFiles(t *testing.T) {
	rec := &recorder{}
	fs := source.NewFileSet()
	main := fs.Add("main.tex", []byte(`\input{chapter1}`), source.FileVirtual)
	chapter := fs.Add("chapter1.tex", []byte("content"), source.FileVirtual)

	g := includegraph.New()
	g.AddEdge(includegraph.Edge{From: main, To: chapter})

	v := New(g, Options{Debounce: 10 * time.Millisecond, Recompute: rec.record})
	v.DidChange(chapter)

	waitUntil(t, func() bool { return rec.callCount() == 1 })
	got := rec.lastCall()
	if len(got) != 2 || got[0] != main || got[1] != chapter {
		t.Fatalf("Recompute closure = %v, want [%v %v]", got, main, chapter)
	}
}

func TestFlush_RunsImmediatelyWithoutWaitingForDebounce(t *testing.T) {
	rec := &recorder{}
	fs := source.NewFileSet()
	file := fs.Add("main.tex", []byte("content"), source.FileVirtual)

	v := New(includegraph.New(), Options{Debounce: time.Hour, Recompute: rec.record})
	v.DidChange(file)
	v.Flush()

	if rec.callCount() != 1 {
		t.Fatalf("callCount = %d, want 1 immediately after Flush", rec.callCount())
	}
}

func TestPending_ReflectsDirtyFilesBeforeTimerFires(t *testing.T) {
	fs := source.NewFileSet()
	a := fs.Add("a.tex", []byte(""), source.FileVirtual)
	b := fs.Add("b.tex", []byte(""), source.FileVirtual)

	v := New(includegraph.New(), Options{Debounce: time.Hour, Recompute: func([]source.FileID) {}})
	v.DidChange(a)
	v.DidChange(b)

	pending := v.Pending()
	if len(pending) != 2 {
		t.Fatalf("Pending() = %v, want 2 entries", pending)
	}
}

func TestDidChange_SupersededTimerDoesNotFireTwice(t *testing.T) {
	rec := &recorder{}
	fs := source.NewFileSet()
	file := fs.Add("main.tex", []byte("content"), source.FileVirtual)

	v := New(includegraph.New(), Options{Debounce: 20 * time.Millisecond, Recompute: rec.record})
	v.DidChange(file)
	time.Sleep(5 * time.Millisecond)
	v.DidChange(file) // restarts the timer; the first AfterFunc must become a no-op

	waitUntil(t, func() bool { return rec.callCount() == 1 })
	time.Sleep(50 * time.Millisecond)
	if rec.callCount() != 1 {
		t.Fatalf("callCount = %d, want exactly 1", rec.callCount())
	}
}

func TestReindexOne_RebuildsIndexAndEdges(t *testing.T) {
	fs := source.NewFileSet()
	idx := index.New()
	g := includegraph.New()
	main := fs.Add("doc/main.tex", []byte(`\input{chapter1}`), source.FileVirtual)
	fs.Add("doc/chapter1.tex", []byte("content"), source.FileVirtual)

	bag := diag.NewBag(16)
	ReindexOne(fs, idx, g, main, cst.Options{}, nil, nil, nil, diag.BagReporter{Bag: bag})

	if len(g.EdgesFrom(main)) != 1 {
		t.Fatalf("EdgesFrom(main) = %v, want one edge", g.EdgesFrom(main))
	}
	if len(idx.LinksIn(main)) != 1 {
		t.Fatalf("LinksIn(main) = %v, want one link", idx.LinksIn(main))
	}
}

func TestReindexOne_RemovedFileClearsIndexAndEdges(t *testing.T) {
	fs := source.NewFileSet()
	idx := index.New()
	g := includegraph.New()
	main := fs.Add("doc/main.tex", []byte(`\input{chapter1}`), source.FileVirtual)
	fs.Add("doc/chapter1.tex", []byte("content"), source.FileVirtual)

	ReindexOne(fs, idx, g, main, cst.Options{}, nil, nil, nil, nil)

	ghost := source.FileID(9999)
	ReindexOne(fs, idx, g, ghost, cst.Options{}, nil, nil, nil, nil)
	if len(idx.FileSymbols(ghost)) != 0 {
		t.Fatalf("FileSymbols(ghost) = %v, want none", idx.FileSymbols(ghost))
	}
	if len(g.EdgesFrom(ghost)) != 0 {
		t.Fatalf("EdgesFrom(ghost) = %v, want none", g.EdgesFrom(ghost))
	}
}
