package logevent

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"ftex/internal/loglex"
	"ftex/internal/source"
)

// State is one of the event state machine's named states.
type State uint8

const (
	// StateTop is the initial and "resting" state.
	StateTop State = iota
	// StateInError is entered on a BANG and left on the next line reference
	// or boundary token.
	StateInError
	// StateAfterLineRef follows a successfully parsed ErrorLineRef.
	StateAfterLineRef
)

// Config tunes the confidence-composition constants left as configuration
// parameters without canonical values.
type Config struct {
	RecognizedExtensions map[string]bool
	// AmbiguityDecay multiplies confidence once per consecutive ambiguous
	// event within the current streak: repeated ambiguity reduces
	// subsequent event confidence by a configured decay factor.
	AmbiguityDecay float64
	// AmbiguityThreshold is the confidence below which an event counts as
	// "ambiguous" for the decay streak.
	AmbiguityThreshold float64
}

// DefaultConfig returns the machine defaults used absent an ftxconfig
// override.
func DefaultConfig() Config {
	return Config{
		RecognizedExtensions: DefaultRecognizedExtensions,
		AmbiguityDecay:       0.9,
		AmbiguityThreshold:   0.9,
	}
}

// Machine is the log-reconstruction event state machine. It is resumable:
// Feed may be called repeatedly as more lines become available, and
// Truncate/Stack let a caller rewind to a synchronization anchor for
// incremental reparse.
type Machine struct {
	cfg             Config
	state           State
	stack           []FileRef
	events          []Event
	ambiguousStreak int
	lastWarningIdx  int
}

// New creates a Machine in the initial Top state with an empty file stack.
func New(cfg Config) *Machine {
	if cfg.RecognizedExtensions == nil {
		cfg.RecognizedExtensions = DefaultRecognizedExtensions
	}
	if cfg.AmbiguityDecay <= 0 || cfg.AmbiguityDecay > 1 {
		cfg.AmbiguityDecay = 0.9
	}
	if cfg.AmbiguityThreshold <= 0 {
		cfg.AmbiguityThreshold = 0.9
	}
	return &Machine{cfg: cfg, lastWarningIdx: -1}
}

// State returns the machine's current state.
func (m *Machine) State() State { return m.state }

// Stack returns a copy of the current file-context stack (innermost last).
func (m *Machine) Stack() []FileRef {
	return append([]FileRef(nil), m.stack...)
}

// Events returns every event emitted so far.
func (m *Machine) Events() []Event {
	return m.events
}

// Truncate drops every event at or beyond index n and rebuilds the file
// stack from what remains — used by the incremental driver to discard
// events re-parsed from a synchronization anchor.
func (m *Machine) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(m.events) {
		n = len(m.events)
	}
	m.events = m.events[:n]
	m.stack = m.stack[:0]
	for i, e := range m.events {
		switch e.Kind {
		case FileEnter:
			m.stack = append(m.stack, FileRef{Path: e.Data.Path, EnteredAt: i})
		case FileExit:
			if len(m.stack) > 0 {
				m.stack = m.stack[:len(m.stack)-1]
			}
		}
	}
	m.state = StateTop
	m.lastWarningIdx = -1
	if n := len(m.events); n > 0 && m.events[n-1].Kind == Warning {
		m.lastWarningIdx = n - 1
	}
}

func (m *Machine) emit(e Event) int {
	m.events = append(m.events, e)
	return len(m.events) - 1
}

// decay applies the ambiguity-streak penalty and advances the streak.
func (m *Machine) decay(confidence float64) float64 {
	if confidence < m.cfg.AmbiguityThreshold {
		confidence *= math.Pow(m.cfg.AmbiguityDecay, float64(m.ambiguousStreak))
		m.ambiguousStreak++
	} else if m.ambiguousStreak > 0 {
		m.ambiguousStreak--
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

var packageWarningName = regexp.MustCompile(`^Package ([A-Za-z0-9_@*-]+) Warning:`)

func packageNameFromPrefix(prefixText string) string {
	m := packageWarningName.FindStringSubmatch(prefixText)
	if m == nil {
		return ""
	}
	return m[1]
}

func remainderText(toks []loglex.Tok) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Text)
	}
	return strings.TrimSpace(b.String())
}

func blankLine(toks []loglex.Tok) bool {
	for _, t := range toks {
		if t.Kind != loglex.Text || strings.TrimSpace(t.Text) != "" {
			return false
		}
	}
	return true
}

func parseLineRef(text string) int {
	digits := strings.TrimPrefix(text, "l.")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// FeedLine advances the machine with one normalized (and possibly
// wrap-joined) line's token stream, appending to Events, and returns just
// the events newly emitted while processing this line.
func (m *Machine) FeedLine(toks []loglex.Tok) []Event {
	start := len(m.events)

	if m.foldIntoWarning(toks) {
		return nil
	}

	i := 0
	for i < len(toks) {
		t := toks[i]
		switch t.Kind {
		case loglex.Bang:
			msg := remainderText(toks[i+1:])
			m.emit(Event{Kind: ErrorStart, Span: t.Span, Confidence: 1.0, Data: Data{Message: msg}})
			m.state = StateInError
			m.lastWarningIdx = -1
			i = len(toks)

		case loglex.LineRef:
			if m.state == StateInError {
				excerpt := remainderText(toks[i+1:])
				sp := t.Span
				if len(toks) > 0 {
					sp = sp.Cover(toks[len(toks)-1].Span)
				}
				m.emit(Event{Kind: ErrorLineRef, Span: sp, Confidence: 1.0, Data: Data{Line: parseLineRef(t.Text), Excerpt: excerpt}})
				m.state = StateAfterLineRef
				i = len(toks)
				continue
			}
			conf := m.decay(0.4)
			m.emit(Event{Kind: Info, Span: t.Span, Confidence: conf, Data: Data{Message: "line reference outside error context", RecoveryCode: "FTX1000"}})
			i++

		case loglex.WarningPrefix:
			msg := strings.TrimSpace(t.Text + " " + remainderText(toks[i+1:]))
			pkg := packageNameFromPrefix(t.Text)
			sp := lineSpan(toks)
			idx := m.emit(Event{Kind: Warning, Span: sp, Confidence: 1.0, Data: Data{Message: msg, Package: pkg}})
			m.lastWarningIdx = idx
			m.state = StateTop
			i = len(toks)

		case loglex.LParen:
			cand, trailing := "", ""
			consumedText := false
			if i+1 < len(toks) && toks[i+1].Kind == loglex.Text {
				cand, trailing = pathCandidate(toks[i+1].Text)
			}
			plausible, conf := scorePath(cand, trailing != "", m.cfg.RecognizedExtensions)
			if plausible {
				sp := t.Span
				if i+1 < len(toks) && toks[i+1].Kind == loglex.Text {
					sp = sp.Cover(toks[i+1].Span)
					consumedText = true
				}
				conf = m.decay(conf)
				m.emit(Event{Kind: FileEnter, Span: sp, Confidence: conf, Data: Data{Path: cand}})
				m.stack = append(m.stack, FileRef{Path: cand, EnteredAt: len(m.events) - 1})
				m.state = StateTop
				m.lastWarningIdx = -1
				i++
				if consumedText {
					i++
				}
				continue
			}
			i++

		case loglex.RParen:
			if len(m.stack) > 0 {
				m.stack = m.stack[:len(m.stack)-1]
				m.emit(Event{Kind: FileExit, Span: t.Span, Confidence: 1.0})
			} else {
				m.emit(Event{Kind: Info, Span: t.Span, Confidence: 1.0, Data: Data{Message: "unmatched ')'", RecoveryCode: "FTX1001"}})
			}
			m.state = StateTop
			m.lastWarningIdx = -1
			i++

		case loglex.Prompt:
			i++

		case loglex.Text:
			if m.state == StateInError && strings.TrimSpace(t.Text) != "" {
				m.emit(Event{Kind: ErrorContextLine, Span: t.Span, Confidence: 1.0, Data: Data{Message: t.Text}})
			}
			i++

		default:
			i++
		}
	}

	if m.state == StateInError || m.state == StateAfterLineRef {
		if blankLine(toks) {
			m.state = StateTop
		}
	}

	return m.events[start:]
}

// foldIntoWarning folds continuation lines that are clearly part of the
// warning into its message, under the same wrap-join guard: an indented
// line immediately following a Warning, with
// no boundary token of its own, is appended to that Warning's message
// rather than becoming a new event.
func (m *Machine) foldIntoWarning(toks []loglex.Tok) bool {
	if m.lastWarningIdx < 0 || m.state != StateTop {
		return false
	}
	if len(toks) != 1 || toks[0].Kind != loglex.Text {
		return false
	}
	raw := toks[0].Text
	if raw == "" || (raw[0] != ' ' && raw[0] != '\t') {
		return false
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	ev := &m.events[m.lastWarningIdx]
	ev.Data.Message = strings.TrimSpace(ev.Data.Message + " " + trimmed)
	ev.Span = ev.Span.Cover(toks[0].Span)
	return true
}

func lineSpan(toks []loglex.Tok) source.Span {
	sp := toks[0].Span
	for _, t := range toks[1:] {
		sp = sp.Cover(t.Span)
	}
	return sp
}
