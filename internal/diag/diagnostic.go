package diag

import "ftex/internal/source"

// Note provides auxiliary context for a diagnostic message.
type Note struct {
	Span source.Span
	Msg  string
}

// TextEdit describes a textual change that can be applied to a source file.
// - Insertion: Span.Start == Span.End, NewText != "", OldText is optional guard.
// - Deletion:  Span.Start < Span.End, NewText == "", OldText is optional guard.
// - Replace:   Span.Start < Span.End, NewText != "", OldText is optional guard.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// FixEdit is kept for transitional compatibility with older call sites.
// It aliases TextEdit and should be considered deprecated.
type FixEdit = TextEdit

// FixApplicability communicates how safe it is to apply a fix automatically.
type FixApplicability uint8

const (
	FixApplicabilityAlwaysSafe FixApplicability = iota
	FixApplicabilitySafeWithHeuristics
	FixApplicabilityManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "ALWAYS_SAFE"
	case FixApplicabilitySafeWithHeuristics:
		return "SAFE_WITH_HEURISTICS"
	case FixApplicabilityManualReview:
		return "MANUAL_REVIEW"
	default:
		return "UNKNOWN"
	}
}

// FixKind categorises the intent of a fix. Mirrors common LSP quick-fix kinds.
type FixKind uint8

const (
	FixKindQuickFix FixKind = iota
	FixKindRefactor
	FixKindRefactorRewrite
	FixKindSourceAction
)

func (k FixKind) String() string {
	switch k {
	case FixKindQuickFix:
		return "QUICK_FIX"
	case FixKindRefactor:
		return "REFACTOR"
	case FixKindRefactorRewrite:
		return "REFACTOR_REWRITE"
	case FixKindSourceAction:
		return "SOURCE_ACTION"
	default:
		return "UNKNOWN_KIND"
	}
}

// FixThunk allows deferring fix materialisation until formatting or application.
type FixThunk interface {
	ID() string
	Build(ctx FixBuildContext) (Fix, error)
}

// FixBuildContext supplies shared data needed to build lazy fixes.
type FixBuildContext struct {
	FileSet *source.FileSet
}

// Fix describes an actionable change that can repair a diagnostic.
type Fix struct {
	ID            string
	Title         string
	Kind          FixKind
	Applicability FixApplicability
	IsPreferred   bool
	Edits         []TextEdit
	Thunk         FixThunk
}

// Materialized reports whether the fix already contains concrete edits.
func (f Fix) Materialized() bool {
	return len(f.Edits) > 0
}

func (f Fix) ensureDefaults() Fix {
	if f.Kind > FixKindSourceAction {
		f.Kind = FixKindQuickFix
	}
	if f.Applicability > FixApplicabilityManualReview {
		f.Applicability = FixApplicabilityManualReview
	}
	return f
}

// Resolve materialises lazy fixes using provided context, inheriting defaults.
func (f Fix) Resolve(ctx FixBuildContext) (Fix, error) {
	if !f.Materialized() && f.Thunk != nil {
		built, err := f.Thunk.Build(ctx)
		if err != nil {
			return Fix{}, err
		}
		if built.ID == "" {
			built.ID = f.ID
		}
		if built.Title == "" {
			built.Title = f.Title
		}
		if built.Kind == 0 && f.Kind != 0 {
			built.Kind = f.Kind
		}
		if built.Applicability == 0 && f.Applicability != 0 {
			built.Applicability = f.Applicability
		}
		if f.IsPreferred {
			built.IsPreferred = true
		}
		return built.ensureDefaults(), nil
	}
	return f.ensureDefaults(), nil
}

// MaterializeFixes produces a slice of resolved fixes with lazy thunks expanded.
func MaterializeFixes(ctx FixBuildContext, fixes []Fix) ([]Fix, error) {
	if len(fixes) == 0 {
		return nil, nil
	}
	out := make([]Fix, len(fixes))
	for i := range fixes {
		resolved, err := fixes[i].Resolve(ctx)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
	}
	return out, nil
}

// Provenance records where in an engine's log transcript a diagnostic was
// reconstructed from. It is populated only for diagnostics raised by the
// log reconstruction core; diagnostics raised directly from a source CST
// (parse recovery, unresolved references, include cycles, ...) leave it nil.
type Provenance struct {
	// LogSpan is the byte range within the (possibly wrap-joined) log
	// transcript that this diagnostic was reconstructed from.
	LogSpan source.Span
	// LogExcerpt is the raw transcript text covering LogSpan, kept verbatim
	// so a reviewer can see exactly what the reconstruction was based on.
	LogExcerpt string
	// FileStack is the reconstructed input-file stack (innermost last) at
	// the point the diagnostic was observed in the log.
	FileStack []string
	// Engine names the TeX engine that produced the log (pdflatex, xelatex,
	// lualatex, ...), when known.
	Engine string
}

// Diagnostic captures a single issue along with optional notes and fixes.
// The same type backs both cores: source-analysis diagnostics carry a
// Primary span into a document and leave Provenance nil; log
// (log
// reconstruction) diagnostics always populate Provenance and carry a
// Confidence score reflecting how certain the reconstruction is.
type Diagnostic struct {
	Severity   Severity
	Code       Code
	Message    string
	Primary    source.Span
	Notes      []Note
	Fixes      []Fix
	Confidence float64
	Provenance *Provenance
	// SourceFile and SourceLine carry the log-reconstructed file/line target
	// for a log diagnostic, independent of Primary: the reconstructed path is
	// frequently not (yet) an open document in any FileSet, so there is no
	// FileID to address a Span with. SourceLine is 1-based; 0 means unknown —
	// ambiguity is representable rather than silently guessed.
	// source diagnostics leave both zero and use Primary instead, which does
	// resolve through a FileSet.
	SourceFile string
	SourceLine int
}

// WithSourceLocation attaches a log-reconstructed file/line target. line ==
// 0 means "line unknown"; file == "" means "file stack was empty".
func (d Diagnostic) WithSourceLocation(file string, line int) Diagnostic {
	d.SourceFile = file
	d.SourceLine = line
	return d
}

// Unmapped reports whether a log diagnostic could not be attributed to any
// file (SourceFile is empty), rather than carrying a silently guessed
// location. Confidence is not consulted.
func (d Diagnostic) Unmapped() bool {
	return d.Provenance != nil && d.SourceFile == ""
}

// WithConfidence sets the diagnostic's reconstruction confidence, clamped
// to [0,1].
func (d Diagnostic) WithConfidence(c float64) Diagnostic {
	switch {
	case c < 0:
		c = 0
	case c > 1:
		c = 1
	}
	d.Confidence = c
	return d
}

// WithProvenance attaches log-transcript provenance to the diagnostic.
func (d Diagnostic) WithProvenance(p Provenance) Diagnostic {
	d.Provenance = &p
	return d
}
