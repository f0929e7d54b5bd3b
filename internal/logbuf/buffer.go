// Package logbuf implements the append-only log buffer — the
// byte-addressable substrate the log reconstruction core parses
// incrementally as an engine run produces bytes.
package logbuf

import (
	"fmt"
	"sync"

	"fortio.org/safecast"

	"ftex/internal/source"
)

// Anchor marks a byte offset at which the downstream event state machine is
// known to be stable: stack depth 0 right after a FileEnter/FileExit pair,
// the end of a completed error block, or the start of a
// build-summary-shaped line. Incremental reparse restarts at the latest
// anchor at or below the previous length instead of byte 0.
type Anchor struct {
	Offset uint32
	// EventIndex is how many events from the previous pass are still valid
	// as of this anchor; events at or after EventIndex must be discarded
	// and re-emitted.
	EventIndex int
}

// Buffer is the append-only byte sequence produced by a TeX engine run. A
// Span handed out before an Append remains a valid range into Buffer
// afterward, because Append only ever grows the backing slice — it never
// rewrites or shifts previously written bytes.
//
// Buffer deliberately does not register itself in a source.FileSet: log
// provenance (diag.Provenance) is always reported as a byte span plus an
// excerpt, never a resolved line/column, so no FileSet line index is
// needed here — line/character resolution is only meaningful for source
// diagnostics, not log ones.
type Buffer struct {
	mu      sync.Mutex
	fileID  source.FileID
	content []byte
	anchors []Anchor
}

// New creates an empty log buffer tagged with fileID. fileID only needs to
// be distinct from any source.FileID used for open documents so provenance
// spans are never confused with a document span.
func New(fileID source.FileID) *Buffer {
	return &Buffer{fileID: fileID}
}

func (b *Buffer) lenLocked() uint32 {
	n, err := safecast.Conv[uint32](len(b.content))
	if err != nil {
		panic(fmt.Errorf("logbuf: content length overflow: %w", err))
	}
	return n
}

// Len returns the current length of the buffer in bytes.
func (b *Buffer) Len() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lenLocked()
}

// FileID returns the tag used for every Span this buffer produces.
func (b *Buffer) FileID() source.FileID {
	return b.fileID
}

// Append grows the buffer with chunk and returns the Span newly assigned to
// it. Previously returned spans remain valid; new events must only
// reference positions at or after the pre-append length.
func (b *Buffer) Append(chunk []byte) source.Span {
	b.mu.Lock()
	defer b.mu.Unlock()
	start := b.lenLocked()
	b.content = append(b.content, chunk...)
	end := b.lenLocked()
	return source.Span{File: b.fileID, Start: start, End: end}
}

// Bytes returns the full buffer content. Callers must treat the result as
// read-only; a subsequent Append may reallocate the backing array.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

// Slice returns the bytes covered by span, clamped to the buffer's current
// bounds so a stale span from before a (hypothetical) truncation never
// panics.
func (b *Buffer) Slice(span source.Span) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.lenLocked()
	start, end := span.Start, span.End
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	return b.content[start:end]
}

// RecordAnchor appends a synchronization anchor. Anchors should be recorded
// in non-decreasing Offset order as parsing progresses.
func (b *Buffer) RecordAnchor(a Anchor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.anchors = append(b.anchors, a)
}

// AnchorBefore returns the latest anchor at or below prevLen, if any.
// Reparse after an Append should restart from this anchor rather than from
// offset 0, bounding reparse work to O(|append| + |tail since anchor|).
func (b *Buffer) AnchorBefore(prevLen uint32) (Anchor, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var best Anchor
	found := false
	for _, a := range b.anchors {
		if a.Offset <= prevLen && (!found || a.Offset > best.Offset) {
			best = a
			found = true
		}
	}
	return best, found
}

// TruncateAnchorsAfter drops anchors at or beyond offset; used after a
// reparse discards and re-emits events so stale anchors are not reused.
func (b *Buffer) TruncateAnchorsAfter(offset uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.anchors[:0]
	for _, a := range b.anchors {
		if a.Offset < offset {
			kept = append(kept, a)
		}
	}
	b.anchors = kept
}
