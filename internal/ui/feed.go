// Package ui renders live progress for ftex's long-running commands with
// Bubble Tea, grounded on progress.Model's spinner + per-item status list
// driven by a channel of pipeline events. Where progress.Model tracks a
// fixed, known-up-front file list compiling through discrete stages,
// FeedModel tracks an unbounded, growing log transcript: there is no
// total to reach 100% of, so it trades that percentage bar for a
// scrolling tail of the most recent reconstructed events plus a running
// diagnostic tally.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ftex/internal/diag"
	"ftex/internal/logevent"
)

// maxFeedLines bounds the scrolling event tail so a long-running watch
// session's terminal repaint stays O(1) in the number of events seen.
const maxFeedLines = 14

// FeedUpdate is one tick of newly observed log state, posted by the
// command driving FeedModel (cmd/ftex's `watch`). Diagnostics is the full,
// recomputed set (logpipeline.Pipeline.Append returns the whole set every
// call, not a delta), while NewEvents is only the events emitted since the
// previous tick, so the feed can append without re-rendering history.
type FeedUpdate struct {
	NewEvents   []logevent.Event
	Diagnostics []*diag.Diagnostic
	BytesTotal  uint32
	Err         error
}

type feedTickMsg FeedUpdate
type feedDoneMsg struct{}

// FeedModel is a Bubble Tea model streaming a log watch session.
type FeedModel struct {
	path    string
	updates <-chan FeedUpdate
	spinner spinner.Model

	lines      []string
	bytesTotal uint32
	severities [4]int // indexed by diag.Severity
	lastErr    error
	done       bool
	width      int
}

// NewFeedModel returns a Bubble Tea model rendering updates from ch as they
// arrive, until ch is closed.
func NewFeedModel(path string, ch <-chan FeedUpdate) *FeedModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	return &FeedModel{
		path:    path,
		updates: ch,
		spinner: sp,
		width:   80,
	}
}

// Init starts the spinner and the first receive from the update channel.
func (m *FeedModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case feedTickMsg:
		m.apply(FeedUpdate(msg))
		return m, m.listen()
	case feedDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *FeedModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("watching %s (%d bytes)", m.path, m.bytesTotal)
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(m.summaryLine())
	b.WriteString("\n\n")

	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.lastErr != nil {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("error: " + m.lastErr.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\npress q to quit\n")
	return b.String()
}

func (m *FeedModel) summaryLine() string {
	style := func(n int, color string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(fmt.Sprintf("%d", n))
	}
	return fmt.Sprintf("errors: %s  warnings: %s  info: %s  hints: %s",
		style(m.severities[diag.SevError], "1"),
		style(m.severities[diag.SevWarning], "3"),
		style(m.severities[diag.SevInfo], "6"),
		style(m.severities[diag.SevHint], "7"),
	)
}

func (m *FeedModel) apply(u FeedUpdate) {
	m.bytesTotal = u.BytesTotal
	m.lastErr = u.Err

	for _, ev := range u.NewEvents {
		m.lines = append(m.lines, formatEvent(ev))
	}
	if overflow := len(m.lines) - maxFeedLines; overflow > 0 {
		m.lines = m.lines[overflow:]
	}

	m.severities = [4]int{}
	for _, d := range u.Diagnostics {
		if int(d.Severity) < len(m.severities) {
			m.severities[d.Severity]++
		}
	}
}

func (m *FeedModel) listen() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.updates
		if !ok {
			return feedDoneMsg{}
		}
		return feedTickMsg(u)
	}
}

func formatEvent(ev logevent.Event) string {
	style := eventStyle(ev.Kind)
	tag := style.Render(fmt.Sprintf("%-16s", ev.Kind.String()))
	detail := eventDetail(ev)
	return fmt.Sprintf("  %s %s", tag, detail)
}

func eventDetail(ev logevent.Event) string {
	switch ev.Kind {
	case logevent.FileEnter:
		return ev.Data.Path
	case logevent.FileExit:
		return ""
	case logevent.ErrorStart, logevent.Warning, logevent.Info:
		return ev.Data.Message
	case logevent.ErrorLineRef:
		return fmt.Sprintf("l.%d", ev.Data.Line)
	case logevent.OutputArtifact:
		return ev.Data.OutputPath
	case logevent.BuildSummary:
		if ev.Data.Success {
			return "success"
		}
		return "failed"
	default:
		return ""
	}
}

func eventStyle(k logevent.Kind) lipgloss.Style {
	switch k {
	case logevent.ErrorStart, logevent.ErrorLineRef:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case logevent.Warning:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case logevent.FileEnter, logevent.FileExit:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	case logevent.BuildSummary:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}
