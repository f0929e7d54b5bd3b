package reconstruct

import (
	"testing"

	"ftex/internal/diag"
	"ftex/internal/logbuf"
	"ftex/internal/logevent"
	"ftex/internal/loglex"
	"ftex/internal/source"
)

// feed runs raw log text through the full normalize-to-reconstruct pipeline and returns
// the resulting events alongside the buffer they were tokenized from.
func feed(t *testing.T, text string) ([]logevent.Event, *logbuf.Buffer) {
	t.Helper()
	buf := logbuf.New(source.FileID(0))
	span := buf.Append([]byte(text))

	lines := loglex.Normalize(buf.Bytes(), buf.FileID(), span.Start)
	lines = loglex.Join(lines, loglex.DefaultWrapColumn, loglex.DefaultJoinCeiling, loglex.DefaultWarningPrefixes)

	m := logevent.New(logevent.DefaultConfig())
	var events []logevent.Event
	for _, l := range lines {
		toks := loglex.Tokenize(l, loglex.DefaultWarningPrefixes, false)
		events = append(events, m.FeedLine(toks)...)
	}
	return events, buf
}

func TestReconstruct_ErrorWithLineRef(t *testing.T) {
	text := "! Undefined control sequence.\nl.12 \\foo\n"
	events, buf := feed(t, text)

	diags := Reconstruct(events, buf, "pdflatex", DefaultConfig())
	if len(diags) != 1 {
		t.Fatalf("Reconstruct produced %d diagnostics, want 1 (events: %+v)", len(diags), events)
	}
	d := diags[0]
	if d.Severity != diag.SevError {
		t.Errorf("Severity = %v, want SevError", d.Severity)
	}
	if d.Code != diag.TexError {
		t.Errorf("Code = %v, want TexError", d.Code)
	}
	if d.SourceLine != 12 {
		t.Errorf("SourceLine = %d, want 12", d.SourceLine)
	}
	if d.Provenance == nil || d.Provenance.Engine != "pdflatex" {
		t.Errorf("Provenance = %+v, want Engine=pdflatex", d.Provenance)
	}
	// No FileEnter ever observed in this transcript, so the no-stack
	// penalty applies even though the error and line ref were both fully
	// certain on their own.
	cfg := DefaultConfig()
	if d.Confidence != cfg.NoStackPenalty {
		t.Errorf("Confidence = %v, want NoStackPenalty %v", d.Confidence, cfg.NoStackPenalty)
	}
}

func TestReconstruct_ErrorNoStackPenalty(t *testing.T) {
	// No FileEnter ever observed: file association falls back to its
	// no-stack penalty, visible in the diagnostic's reduced confidence.
	text := "! Emergency stop.\nl.3 \\bar\n"
	events, buf := feed(t, text)

	cfg := DefaultConfig()
	diags := Reconstruct(events, buf, "", cfg)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	d := diags[0]
	if d.SourceFile != "" {
		t.Errorf("SourceFile = %q, want empty (no file on stack)", d.SourceFile)
	}
	if d.Confidence != cfg.NoStackPenalty {
		t.Errorf("Confidence = %v, want NoStackPenalty %v", d.Confidence, cfg.NoStackPenalty)
	}
}

func TestReconstruct_ErrorWithFileContext(t *testing.T) {
	text := "(./chapter1.tex\n! Undefined control sequence.\nl.7 \\baz\n)"
	events, buf := feed(t, text)

	diags := Reconstruct(events, buf, "pdflatex", DefaultConfig())
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	d := diags[0]
	if d.SourceFile != "./chapter1.tex" {
		t.Errorf("SourceFile = %q, want ./chapter1.tex", d.SourceFile)
	}
	if d.SourceLine != 7 {
		t.Errorf("SourceLine = %d, want 7", d.SourceLine)
	}
	if len(d.Provenance.FileStack) != 1 || d.Provenance.FileStack[0] != "./chapter1.tex" {
		t.Errorf("FileStack = %v, want [./chapter1.tex]", d.Provenance.FileStack)
	}
}

func TestReconstruct_UnterminatedErrorGetsPenalized(t *testing.T) {
	// An error block with no closing l.N: still reported (never silently
	// dropped), but confidence reflects the missing line reference, on top
	// of the no-stack penalty since no FileEnter was observed.
	text := "! Undefined control sequence.\n"
	events, buf := feed(t, text)

	cfg := DefaultConfig()
	diags := Reconstruct(events, buf, "", cfg)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	d := diags[0]
	if d.SourceLine != 0 {
		t.Errorf("SourceLine = %d, want 0 (unknown)", d.SourceLine)
	}
	if want := cfg.NoStackPenalty * cfg.MissingLineRefPenalty; d.Confidence != want {
		t.Errorf("Confidence = %v, want NoStackPenalty*MissingLineRefPenalty %v", d.Confidence, want)
	}
}

func TestReconstruct_PackageWarning(t *testing.T) {
	text := "Package hyperref Warning: Token not allowed in a PDF string.\n"
	events, buf := feed(t, text)

	diags := Reconstruct(events, buf, "", DefaultConfig())
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	d := diags[0]
	if d.Severity != diag.SevWarning {
		t.Errorf("Severity = %v, want SevWarning", d.Severity)
	}
	if d.Code != diag.PackageWarning {
		t.Errorf("Code = %v, want PackageWarning", d.Code)
	}
}

func TestReconstruct_UnmatchedCloseParenIsInfo(t *testing.T) {
	text := ")\n"
	events, buf := feed(t, text)

	diags := Reconstruct(events, buf, "", DefaultConfig())
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	d := diags[0]
	if d.Severity != diag.SevInfo {
		t.Errorf("Severity = %v, want SevInfo", d.Severity)
	}
	if d.Code != diag.LogUnmatchedFileExit {
		t.Errorf("Code = %v, want LogUnmatchedFileExit", d.Code)
	}
}

func TestReconstruct_NewErrorSupersedesAbandonedBlock(t *testing.T) {
	text := "! First error.\n! Second error.\nl.5 \\x\n"
	events, buf := feed(t, text)

	diags := Reconstruct(events, buf, "", DefaultConfig())
	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2 (abandoned + resolved)", len(diags))
	}
	if diags[0].Message != "First error." || diags[0].SourceLine != 0 {
		t.Errorf("diags[0] = %+v, want abandoned First error with no line", diags[0])
	}
	if diags[1].Message != "Second error." || diags[1].SourceLine != 5 {
		t.Errorf("diags[1] = %+v, want Second error at line 5", diags[1])
	}
}
