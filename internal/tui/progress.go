package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"fileeraser/internal/erase"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

// --- Message types ---

type eventMsg erase.Event

type streamClosedMsg struct{}

// Model renders a single erase job's progress bar. It pulls exactly
// one event from the stream per delivered message, so the UI side
// never blocks on the queue.
type Model struct {
	path    string
	stream  *erase.Stream
	bar     progress.Model
	percent float64
	done    bool
	success bool
	aborted bool
}

func New(path string, stream *erase.Stream) Model {
	return Model{
		path:   path,
		stream: stream,
		bar:    progress.New(progress.WithDefaultGradient()),
	}
}

// receiveNextEvent waits for the next event from the stream.
func receiveNextEvent(stream *erase.Stream) tea.Cmd {
	return func() tea.Msg {
		e, ok := stream.Next()
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(e)
	}
}

func (m Model) Init() tea.Cmd {
	return receiveNextEvent(m.stream)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			// Abandoning the stream stops the job at its next
			// emission; the file may stay partially overwritten.
			m.stream.Close()
			m.aborted = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		w := msg.Width - 4
		if w > 60 {
			w = 60
		}
		if w > 0 {
			m.bar.Width = w
		}

	case eventMsg:
		e := erase.Event(msg)
		switch e.Type {
		case erase.EventUpdated:
			m.percent = e.Fraction
			return m, receiveNextEvent(m.stream)
		case erase.EventFinished:
			m.done = true
			m.success = e.Success
			// A failed job keeps its last observed fraction; only
			// success earns the full bar.
			if e.Success {
				m.percent = 100.0
			}
			return m, tea.Quit
		}

	case streamClosedMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	s := titleStyle.Render("Erasing "+m.path) + "\n\n"
	s += "  " + m.bar.ViewAs(m.percent/100.0) + fmt.Sprintf("  %.1f%%\n\n", m.percent)

	switch {
	case m.done && m.success:
		s += okStyle.Render("File securely erased.") + "\n"
	case m.done && !m.success:
		s += failStyle.Render("Erase failed, see log for details.") + "\n"
	case m.aborted:
		s += failStyle.Render("Aborted.") + "\n"
	default:
		s += helpStyle.Render("q/ctrl+c to abandon") + "\n"
	}

	return s
}

// Done reports whether the job reached its terminal event.
func (m Model) Done() bool { return m.done }

// Success reports the terminal outcome; meaningful only when Done.
func (m Model) Success() bool { return m.success }

// Percent returns the last observed completion fraction.
func (m Model) Percent() float64 { return m.percent }
