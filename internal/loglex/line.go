// Package loglex implements the normalizer and tokenizer/wrap-join
// stages of the log reconstruction core: turning raw
// log bytes into logical lines, and logical lines into a token stream with
// guarded wrapped-line rejoining.
package loglex

import (
	"fortio.org/safecast"

	"ftex/internal/source"
)

// Line is one logical line of the normalized log: content with line
// endings stripped, alongside the original byte span it was read from. CRLF
// is normalized by dropping the trailing '\r' from Text rather than
// maintaining a translation table — Span.Start still points at the
// original, unnormalized buffer position; whichever strategy is chosen
// must not shift reported spans.
//
// Joined reports whether this Line is the result of Join() merging two or
// more wrapped fragments. Tokenize gives every token on a
// Joined line the full covering Span rather than attempting a
// fragment-precise byte mapping — the one case that matters, a token that
// straddles the join, covers both original ranges.
type Line struct {
	Text   string
	Span   source.Span
	Joined bool
	// Complete is false only for a trailing line with no terminating '\n'
	// yet observed — the tail of a log still being appended to. Callers
	// must hold such a line back and reprocess it once more bytes complete
	// it, rather than emitting terminal events for a line that may still
	// grow.
	Complete bool
}

// Normalize splits buf into logical lines. start is the absolute offset of
// buf[0] within the owning log buffer, so callers can normalize a tail
// slice (e.g. from a synchronization anchor) without losing provenance.
func Normalize(buf []byte, fileID source.FileID, start uint32) []Line {
	var lines []Line
	var i uint32
	n := mustU32(len(buf))
	for i < n {
		lineStart := i
		for i < n && buf[i] != '\n' {
			i++
		}
		contentEnd := i
		if contentEnd > lineStart && buf[contentEnd-1] == '\r' {
			contentEnd--
		}
		end := i
		complete := i < n
		if complete { // consume the '\n' itself
			end++
			i++
		}
		lines = append(lines, Line{
			Text:     string(buf[lineStart:contentEnd]),
			Span:     source.Span{File: fileID, Start: start + lineStart, End: start + end},
			Complete: complete,
		})
	}
	return lines
}

func mustU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(err)
	}
	return v
}
