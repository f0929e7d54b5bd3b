package logpipeline

import (
	"reflect"
	"testing"

	"ftex/internal/source"
)

func diagValues(t *testing.T, p *Pipeline) []any {
	t.Helper()
	var out []any
	for _, d := range p.Diagnostics() {
		out = append(out, *d)
	}
	return out
}

// TestPipeline_ChunkedMatchesOneShot exercises the incremental pipeline's
// stability requirement: splitting an append into several chunks must
// produce the same events and diagnostics as a single append of the full
// text.
func TestPipeline_ChunkedMatchesOneShot(t *testing.T) {
	text := "(./main.tex\n" +
		"! Undefined control sequence.\n" +
		"l.4 \\foo\n" +
		"LaTeX Warning: Reference undefined.\n" +
		")\n"

	oneShot := New(source.FileID(0), "pdflatex", Options{})
	oneShot.Append([]byte(text))

	chunked := New(source.FileID(0), "pdflatex", Options{})
	mid := len(text) / 2
	chunked.Append([]byte(text[:mid]))
	chunked.Append([]byte(text[mid:]))

	if !reflect.DeepEqual(oneShot.Events(), chunked.Events()) {
		t.Fatalf("chunked events differ from one-shot:\n got: %+v\nwant: %+v", chunked.Events(), oneShot.Events())
	}
	if !reflect.DeepEqual(diagValues(t, oneShot), diagValues(t, chunked)) {
		t.Fatalf("chunked diagnostics differ from one-shot:\n got: %+v\nwant: %+v", diagValues(t, chunked), diagValues(t, oneShot))
	}
}

// TestPipeline_ReparsesFromAnchorNotZero appends a transcript in two
// pieces, the first ending exactly at a FileExit-to-depth-0
// synchronization anchor, checks that anchor was recorded there, and
// checks the final result still matches a full one-shot parse — i.e. the
// anchor-based restart did not lose or duplicate any events.
func TestPipeline_ReparsesFromAnchorNotZero(t *testing.T) {
	part1 := "(./main.tex\nsome text\n)\n"
	part2 := "! Undefined control sequence.\nl.9 \\bar\n"

	p := New(source.FileID(0), "", Options{})
	p.Append([]byte(part1))
	if len(p.Buffer().Bytes()) == 0 {
		t.Fatal("buffer empty after first append")
	}
	if a, ok := p.Buffer().AnchorBefore(uint32(len(part1))); !ok || a.Offset != uint32(len(part1)) {
		t.Fatalf("AnchorBefore(%d) = (%+v, %v), want an anchor at offset %d", len(part1), a, ok, len(part1))
	}
	p.Append([]byte(part2))

	oneShot := New(source.FileID(0), "", Options{})
	oneShot.Append([]byte(part1 + part2))

	if !reflect.DeepEqual(oneShot.Events(), p.Events()) {
		t.Fatalf("incremental events differ from one-shot:\n got: %+v\nwant: %+v", p.Events(), oneShot.Events())
	}
}

func TestPipeline_HoldsBackIncompleteTrailingLine(t *testing.T) {
	p := New(source.FileID(0), "", Options{})
	p.Append([]byte("! Undefined control sequence.\nl.1"))
	if got := len(p.Events()); got != 1 {
		t.Fatalf("got %d events before line ref completes, want 1 (ErrorStart only)", got)
	}

	p.Append([]byte(" \\x\n"))
	if got := len(p.Events()); got != 2 {
		t.Fatalf("got %d events after completing line ref, want 2", got)
	}
	if p.Events()[1].Data.Line != 1 {
		t.Fatalf("ErrorLineRef.Data.Line = %d, want 1", p.Events()[1].Data.Line)
	}
}
