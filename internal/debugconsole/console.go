// Package debugconsole implements the emergency post-mortem console the
// manager hands off to after an uncaught failure in the event loop. It is
// a read-only crash inspector, not a general-purpose debugger: it shows
// the last log lines, the client table snapshot taken at the moment of
// failure, and the error that triggered the handoff.
package debugconsole

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	gloss "github.com/charmbracelet/lipgloss"
)

const logLines = 64

// ClientSnapshot is a frozen, display-only view of one managed client at
// the moment of the crash. It intentionally does not reference
// internal/wm.Client so the console can never be mistaken for a live
// control surface.
type ClientSnapshot struct {
	Window uint32
	Title  string
	Class  string
	Tags   []string
	Frame  uint32
}

// Model is the bubbletea model for the crash console.
type Model struct {
	cause     error
	clients   []ClientSnapshot
	log       []string
	logCursor int
	scroll    int
}

// NewModel builds a console model from the failure that triggered the
// handoff, a snapshot of managed clients, and the most recent log lines
// (oldest first).
func NewModel(cause error, clients []ClientSnapshot, recentLog []string) Model {
	if len(recentLog) > logLines {
		recentLog = recentLog[len(recentLog)-logLines:]
	}
	return Model{cause: cause, clients: clients, log: recentLog}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		case "down", "j":
			if m.scroll < len(m.log)-1 {
				m.scroll++
			}
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	out := errStyle.Render("  dimwm crashed") + "\n"
	if m.cause != nil {
		out += errStyle.Render("  cause: "+m.cause.Error()) + "\n"
	}
	out += "\n"

	out += cyanStyle.Render(fmt.Sprintf("  %d managed clients at time of failure\n", len(m.clients)))
	out += cyanStyle.Render("  window      frame       class            title\n")
	for _, c := range m.clients {
		row := "  " + pad(hex(c.Window), 12)
		row += pad(hex(c.Frame), 12)
		row += pad(c.Class, 17)
		row += c.Title + "\n"
		out += plainStyle.Render(row)
	}

	out += "\n" + cyanStyle.Render("  recent log\n")
	start := m.scroll
	end := start + 20
	if end > len(m.log) {
		end = len(m.log)
	}
	for _, line := range m.log[start:end] {
		out += grayStyle.Render("  "+line) + "\n"
	}

	out += "\n" + grayStyle.Render("  j/k: scroll    q: exit\n")
	return out
}

func hex(v uint32) string {
	return "0x" + strconv.FormatUint(uint64(v), 16)
}

func pad(str string, length int) string {
	for len(str) < length {
		str += " "
	}
	return str
}

var (
	errStyle   = gloss.NewStyle().Bold(true).Foreground(gloss.Color("9"))
	cyanStyle  = gloss.NewStyle().Bold(true).Foreground(gloss.Color("14"))
	grayStyle  = gloss.NewStyle().Foreground(gloss.Color("#aaaaaa"))
	plainStyle = gloss.NewStyle().Foreground(gloss.Color("15"))
)

// Run blocks until the user exits the console. The manager calls this
// after tearing down the X connection, as the last thing it does before
// the process exits.
func Run(cause error, clients []ClientSnapshot, recentLog []string) error {
	p := tea.NewProgram(NewModel(cause, clients, recentLog))
	_, err := p.Run()
	return err
}
