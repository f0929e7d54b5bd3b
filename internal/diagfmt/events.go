package diagfmt

import (
	"encoding/json"
	"io"

	"ftex/internal/diag"
	"ftex/internal/logevent"
)

// EventIRSchemaVersion is the schema_version stamped on every exported
// event stream. Consumers are expected to ignore unknown kinds/fields
// rather than failing on a version bump.
const EventIRSchemaVersion = "1.0"

// SpanJSON is a half-open byte range into the log buffer.
type SpanJSON struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// EventJSON is one exported Event IR record.
type EventJSON struct {
	Kind       string        `json:"kind"`
	Span       SpanJSON      `json:"span"`
	Confidence float64       `json:"confidence"`
	Data       logevent.Data `json:"data"`
}

// EventStreamOutput is the root object emitted by `ftex parse --format json`:
// the Event IR alongside the diagnostics reconstructed from it, sharing one
// schema_version field so a consumer that understands one understands the
// vintage of the other too.
type EventStreamOutput struct {
	SchemaVersion string              `json:"schema_version"`
	Events        []EventJSON         `json:"events"`
	Diagnostics   []DiagnosticJSON    `json:"diagnostics"`
	EventCount    int                 `json:"event_count"`
	Summary       *DiagnosticsSummary `json:"diagnostics_summary,omitempty"`
}

// DiagnosticsSummary is a small rollup for scripted consumers that only
// want counts, not the full diagnostic bodies.
type DiagnosticsSummary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
	Hints    int `json:"hints"`
}

// BuildEventStreamOutput converts a machine's events and the diagnostics
// reconstructed from them into the exported Event IR shape. No FileSet is
// used: log diagnostics never resolve through one (their position lives in
// the log buffer via Provenance), so the JSON diagnostics carry File/Range
// populated from Diagnostic.SourceFile/SourceLine, not from makeLocation.
func BuildEventStreamOutput(events []logevent.Event, diagnostics []*diag.Diagnostic, opts JSONOpts) EventStreamOutput {
	out := EventStreamOutput{
		SchemaVersion: EventIRSchemaVersion,
		Events:        make([]EventJSON, len(events)),
		EventCount:    len(events),
	}
	for i, e := range events {
		out.Events[i] = EventJSON{
			Kind:       e.Kind.String(),
			Span:       SpanJSON{Start: e.Span.Start, End: e.Span.End},
			Confidence: e.Confidence,
			Data:       e.Data,
		}
	}

	bag := diag.NewBag(len(diagnostics) + 1)
	for _, d := range diagnostics {
		bag.Add(d)
	}
	built, err := BuildDiagnosticsOutput(bag, nil, opts)
	if err == nil {
		out.Diagnostics = built.Diagnostics
	}

	summary := &DiagnosticsSummary{}
	for _, d := range diagnostics {
		switch d.Severity {
		case diag.SevError:
			summary.Errors++
		case diag.SevWarning:
			summary.Warnings++
		case diag.SevInfo:
			summary.Infos++
		case diag.SevHint:
			summary.Hints++
		}
	}
	out.Summary = summary

	return out
}

// WriteEventStream JSON-encodes an EventStreamOutput to w, using the same
// two-space indented json.Encoder convention as the rest of internal/diagfmt.
func WriteEventStream(w io.Writer, out EventStreamOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
