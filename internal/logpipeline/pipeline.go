// Package logpipeline drives the log-reconstruction pipeline incrementally:
// it owns a logbuf.Buffer and a logevent.Machine, and re-parses only the
// tail since the latest synchronization anchor when new bytes arrive,
// instead of restarting from byte 0.
package logpipeline

import (
	"ftex/internal/diag"
	"ftex/internal/logbuf"
	"ftex/internal/logevent"
	"ftex/internal/loglex"
	"ftex/internal/reconstruct"
	"ftex/internal/source"
)

// Options configures every stage of the pipeline. Zero-value fields fall
// back to their stage's own defaults.
type Options struct {
	WrapColumn      int
	JoinCeiling     int
	WarningPrefixes []loglex.WarningPrefix
	// Interactive enables the PROMPT token class; set when the engine run
	// is known to be interactive.
	Interactive bool
	Event       logevent.Config
	Reconstruct reconstruct.Config
}

func (o Options) withDefaults() Options {
	if o.WrapColumn <= 0 {
		o.WrapColumn = loglex.DefaultWrapColumn
	}
	if o.JoinCeiling <= 0 {
		o.JoinCeiling = loglex.DefaultJoinCeiling
	}
	if o.WarningPrefixes == nil {
		o.WarningPrefixes = loglex.DefaultWarningPrefixes
	}
	return o
}

// Pipeline is a resumable driver over one engine run's log transcript. It
// is not safe for concurrent use; callers serialize Append calls.
type Pipeline struct {
	buf     *logbuf.Buffer
	engine  string
	opts    Options
	machine *logevent.Machine
	diags   []*diag.Diagnostic
}

// New creates a pipeline over a fresh log buffer tagged fileID. engine
// names the TeX engine producing the log (pdflatex, xelatex, ...); it is
// only used to annotate diagnostic provenance.
func New(fileID source.FileID, engine string, opts Options) *Pipeline {
	opts = opts.withDefaults()
	return &Pipeline{
		buf:     logbuf.New(fileID),
		engine:  engine,
		opts:    opts,
		machine: logevent.New(opts.Event),
	}
}

// Buffer returns the underlying log buffer.
func (p *Pipeline) Buffer() *logbuf.Buffer { return p.buf }

// Events returns every event emitted so far.
func (p *Pipeline) Events() []logevent.Event { return p.machine.Events() }

// Diagnostics returns the diagnostic set computed by the most recent
// Append.
func (p *Pipeline) Diagnostics() []*diag.Diagnostic { return p.diags }

// Append grows the log with chunk, re-parsing only from the latest
// synchronization anchor at or below the buffer's previous length —
// bounded work of O(|append| + |tail since last anchor|) rather than a
// full re-parse — and returns the recomputed diagnostic set.
//
// Reconstruct itself walks the full event stream on every call: only the
// event-stream re-parse is bounded to the tail, not the attachment pass,
// and a full walk keeps file-stack/confidence attribution exactly
// consistent with a from-scratch parse. A future optimization could
// memoize Reconstruct per anchor the same way FeedLine does; tracked as a
// follow-up, not required for correctness.
func (p *Pipeline) Append(chunk []byte) []*diag.Diagnostic {
	prevLen := p.buf.Len()
	p.buf.Append(chunk)

	var restart uint32
	eventIndex := 0
	if a, ok := p.buf.AnchorBefore(prevLen); ok {
		restart = a.Offset
		eventIndex = a.EventIndex
	}
	p.machine.Truncate(eventIndex)
	p.buf.TruncateAnchorsAfter(restart)

	tail := p.buf.Bytes()[restart:]
	lines := loglex.Normalize(tail, p.buf.FileID(), restart)
	lines = loglex.Join(lines, p.opts.WrapColumn, p.opts.JoinCeiling, p.opts.WarningPrefixes)

	for _, l := range lines {
		if !l.Complete {
			// The tail of the log still being written; held back until a
			// future Append's re-normalize from this same anchor sees it
			// terminated.
			continue
		}
		toks := loglex.Tokenize(l, p.opts.WarningPrefixes, p.opts.Interactive)
		p.machine.FeedLine(toks)

		if p.atSyncPoint() {
			p.buf.RecordAnchor(logbuf.Anchor{Offset: l.Span.End, EventIndex: len(p.machine.Events())})
		}
	}

	p.diags = reconstruct.Reconstruct(p.machine.Events(), p.buf, p.engine, p.opts.Reconstruct)
	return p.diags
}

// atSyncPoint reports whether the machine has just reached one of the
// three stable points safe to resume from: a FileEnter/FileExit back to
// stack depth 0, the end of a completed error block (ErrorLineRef), or
// the start of a BuildSummary-like line.
func (p *Pipeline) atSyncPoint() bool {
	events := p.machine.Events()
	if len(events) == 0 {
		return false
	}
	switch events[len(events)-1].Kind {
	case logevent.FileExit:
		return len(p.machine.Stack()) == 0
	case logevent.ErrorLineRef, logevent.BuildSummary:
		return true
	default:
		return false
	}
}
