// Package reconstruct implements the reconstruction rules: it walks the
// event stream produced by internal/logevent and attaches each
// diagnostic-worthy event to a reconstructed source location, a severity,
// related info, and a composed confidence score.
package reconstruct

import (
	"strings"

	"ftex/internal/diag"
	"ftex/internal/logbuf"
	"ftex/internal/logevent"
	"ftex/internal/source"
)

// Config tunes the confidence-composition constants the attachment rules leave as
// configuration parameters without canonical values.
type Config struct {
	// NoStackPenalty multiplies confidence when the file stack is empty at
	// the point of emission (file = null when the stack is empty).
	NoStackPenalty float64
	// MissingLineRefPenalty multiplies confidence when an error block is
	// finalized (stream end, or superseded by a new BANG) without ever
	// seeing a matching ErrorLineRef.
	MissingLineRefPenalty float64
	// MaxExcerptBytes bounds the log excerpt attached as Provenance.LogExcerpt
	// (a bounded log excerpt).
	MaxExcerptBytes int
}

// DefaultConfig returns the reconstruction defaults used absent an
// ftxconfig override.
func DefaultConfig() Config {
	return Config{
		NoStackPenalty:        0.5,
		MissingLineRefPenalty: 0.5,
		MaxExcerptBytes:       200,
	}
}

func (c Config) withDefaults() Config {
	if c.NoStackPenalty <= 0 || c.NoStackPenalty > 1 {
		c.NoStackPenalty = 0.5
	}
	if c.MissingLineRefPenalty <= 0 || c.MissingLineRefPenalty > 1 {
		c.MissingLineRefPenalty = 0.5
	}
	if c.MaxExcerptBytes <= 0 {
		c.MaxExcerptBytes = 200
	}
	return c
}

// frame is one entry of the file-context stack as replayed from the event
// stream, carrying the confidence the corresponding FileEnter was
// recognized with (used as the "stack-reconstruction confidence" factor of
// confidence composition for any diagnostic attributed to that frame).
type frame struct {
	path       string
	confidence float64
}

// pendingError accumulates an ErrorStart and any ErrorContextLine events
// that follow it, until a matching ErrorLineRef closes the block (or the
// block is superseded/abandoned).
type pendingError struct {
	message         string
	span            source.Span
	eventConfidence float64
	context         []string
}

// Reconstruct applies the file-association and confidence-propagation
// rules to a full event stream, producing one
// diagnostic per ErrorStart/ErrorLineRef pair, per Warning, and per
// recovery-coded Info event. buf supplies the log excerpt text; engine
// names the TeX engine the log came from (may be empty).
func Reconstruct(events []logevent.Event, buf *logbuf.Buffer, engine string, cfg Config) []*diag.Diagnostic {
	cfg = cfg.withDefaults()

	var (
		stack   []frame
		out     []*diag.Diagnostic
		pending *pendingError
	)

	closePending := func(lineRef *logevent.Event) {
		if pending == nil {
			return
		}
		out = append(out, finalizeError(pending, lineRef, stack, buf, engine, cfg))
		pending = nil
	}

	for i := range events {
		e := events[i]
		switch e.Kind {
		case logevent.FileEnter:
			stack = append(stack, frame{path: e.Data.Path, confidence: e.Confidence})

		case logevent.FileExit:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case logevent.ErrorStart:
			// A new BANG while a block is already open supersedes it,
			// closing the previous error and starting a new one; the
			// abandoned block is reported without a line.
			closePending(nil)
			pending = &pendingError{
				message:         e.Data.Message,
				span:            e.Span,
				eventConfidence: e.Confidence,
			}

		case logevent.ErrorContextLine:
			if pending != nil {
				pending.context = append(pending.context, e.Data.Message)
				pending.span = pending.span.Cover(e.Span)
			}

		case logevent.ErrorLineRef:
			closePending(&e)

		case logevent.Warning:
			out = append(out, warningDiagnostic(e, stack, buf, engine, cfg))

		case logevent.Info:
			if d := infoDiagnostic(e, stack, buf, engine, cfg); d != nil {
				out = append(out, d)
			}
		}
	}
	closePending(nil)

	return out
}

// stackAssociation resolves file association: the file-stack top and its reconstruction
// confidence, or ("", NoStackPenalty) when the stack is empty.
func stackAssociation(stack []frame, cfg Config) (file string, confidence float64) {
	if len(stack) == 0 {
		return "", cfg.NoStackPenalty
	}
	top := stack[len(stack)-1]
	return top.path, clamp01(top.confidence)
}

func fileStackSnapshot(stack []frame) []string {
	if len(stack) == 0 {
		return nil
	}
	paths := make([]string, len(stack))
	for i, f := range stack {
		paths[i] = f.path
	}
	return paths
}

func logExcerpt(buf *logbuf.Buffer, span source.Span, maxBytes int) string {
	if buf == nil {
		return ""
	}
	raw := buf.Slice(span)
	text := string(raw)
	if len(text) > maxBytes {
		text = text[:maxBytes] + "..."
	}
	return text
}

func provenance(span source.Span, stack []frame, buf *logbuf.Buffer, engine string, cfg Config) diag.Provenance {
	return diag.Provenance{
		LogSpan:    span,
		LogExcerpt: logExcerpt(buf, span, cfg.MaxExcerptBytes),
		FileStack:  fileStackSnapshot(stack),
		Engine:     engine,
	}
}

// finalizeError applies line-mapping, severity, and confidence-propagation
// rules to a completed (or abandoned) error block.
// lineRef is nil when the block never saw a matching ErrorLineRef — the
// diagnostic is still emitted rather than silently dropped, just with
// line = 0 (unknown) and a
// MissingLineRefPenalty applied.
func finalizeError(p *pendingError, lineRef *logevent.Event, stack []frame, buf *logbuf.Buffer, engine string, cfg Config) *diag.Diagnostic {
	file, stackConf := stackAssociation(stack, cfg)

	span := p.span
	line := 0
	lineRefConf := cfg.MissingLineRefPenalty
	var excerptNote string
	if lineRef != nil {
		span = span.Cover(lineRef.Span)
		line = lineRef.Data.Line
		lineRefConf = clamp01(lineRef.Confidence)
		excerptNote = lineRef.Data.Excerpt
	}

	confidence := clamp01(p.eventConfidence * stackConf * lineRefConf)

	d := diag.Diagnostic{
		Severity:   diag.SevError,
		Code:       diag.TexError,
		Message:    p.message,
		Confidence: confidence,
	}
	d = d.WithSourceLocation(file, line)
	prov := provenance(span, stack, buf, engine, cfg)
	d = d.WithProvenance(prov)

	for _, c := range p.context {
		d.Notes = append(d.Notes, diag.Note{Msg: c})
	}
	if excerptNote != "" {
		d.Notes = append(d.Notes, diag.Note{Msg: strings.TrimSpace(excerptNote)})
	}

	return &d
}

// warningDiagnostic applies severity, related-info, and confidence-
// propagation rules to a single Warning event.
func warningDiagnostic(e logevent.Event, stack []frame, buf *logbuf.Buffer, engine string, cfg Config) *diag.Diagnostic {
	file, stackConf := stackAssociation(stack, cfg)

	code := diag.LatexWarning
	if e.Data.Package != "" {
		code = diag.PackageWarning
	}

	d := diag.Diagnostic{
		Severity:   diag.SevWarning,
		Code:       code,
		Message:    e.Data.Message,
		Confidence: clamp01(e.Confidence * stackConf),
	}
	d = d.WithSourceLocation(file, 0)
	d = d.WithProvenance(provenance(e.Span, stack, buf, engine, cfg))
	return &d
}

// recoveryCodes maps the stable recovery code string a recovery-coded Info
// event carries back to its diag.Code.
var recoveryCodes = map[string]diag.Code{
	"FTX1000": diag.LogAmbiguousReconstruction,
	"FTX1001": diag.LogUnmatchedFileExit,
}

// infoDiagnostic applies the severity rule to a recovery-coded Info event. Info events
// without a recovery code are internal bookkeeping only (none currently
// emitted by internal/logevent) and produce no diagnostic.
func infoDiagnostic(e logevent.Event, stack []frame, buf *logbuf.Buffer, engine string, cfg Config) *diag.Diagnostic {
	code, ok := recoveryCodes[e.Data.RecoveryCode]
	if !ok {
		return nil
	}
	file, stackConf := stackAssociation(stack, cfg)

	d := diag.Diagnostic{
		Severity:   diag.SevInfo,
		Code:       code,
		Message:    e.Data.Message,
		Confidence: clamp01(e.Confidence * stackConf),
	}
	d = d.WithSourceLocation(file, 0)
	d = d.WithProvenance(provenance(e.Span, stack, buf, engine, cfg))
	return &d
}

func clamp01(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
