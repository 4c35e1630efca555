package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	orchestration "github.com/koscakluka/ema-voice/core"
	"github.com/koscakluka/ema-voice/core/conversations"
	"github.com/koscakluka/ema-voice/core/events"
	"github.com/koscakluka/ema-voice/core/language"
	"github.com/muesli/reflow/wordwrap"
)

// chrome is the number of terminal lines outside the transcript viewport.
const chrome = 6

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("70"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("70"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// controller is the part of the controller the terminal client drives.
type controller interface {
	StartListening() error
	StopListening() error
	Submit(text string) error
	StopSpeaking() error
	SetLanguage(tag language.Tag) error
	Close() error
	Snapshot() orchestration.Snapshot
}

type controllerEventMsg struct {
	event events.Event
}

type model struct {
	controller controller
	snapshot   orchestration.Snapshot

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width  int
	ready  bool
	status error
}

func newModel(c controller) model {
	input := textinput.New()
	input.Placeholder = "Type a question, or press ctrl+r to speak"
	input.CharLimit = 500
	input.Focus()

	return model{
		controller: c,
		snapshot:   c.Snapshot(),
		input:      input,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		height := max(msg.Height-chrome, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.input.Width = max(msg.Width-4, 10)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			_ = m.controller.Close()
			return m, tea.Quit
		case "ctrl+r":
			if m.snapshot.Mode == orchestration.ModeListening {
				m.status = m.controller.StopListening()
			} else {
				m.status = m.controller.StartListening()
			}
		case "enter":
			m.status = m.controller.Submit(m.input.Value())
			if m.status == nil {
				m.input.Reset()
			}
		case "ctrl+s":
			m.status = m.controller.StopSpeaking()
		case "ctrl+l":
			m.status = m.controller.SetLanguage(m.snapshot.Language.Next())
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		m.refresh()
		return m, nil

	case controllerEventMsg:
		if msg.event.Kind() == events.KindModeChanged {
			m.status = nil
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) refresh() {
	m.snapshot = m.controller.Snapshot()
	if m.ready {
		m.viewport.SetContent(renderTurns(m.snapshot.Turns, m.width))
		m.viewport.GotoBottom()
	}
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header(m.snapshot)))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("ctrl+r talk/stop • enter send • ctrl+s stop speaking • ctrl+l language • esc quit"))
	return b.String()
}

func header(s orchestration.Snapshot) string {
	subject := s.Subject
	if subject == "" {
		subject = "General question"
	}
	return fmt.Sprintf("%s · %s", subject, s.Language.Name())
}

func (m model) statusLine() string {
	switch {
	case m.snapshot.NoticeText != "":
		return noticeStyle.Render(m.snapshot.NoticeText)
	case m.status != nil:
		return errorStyle.Render(statusText(m.status))
	}

	switch m.snapshot.Mode {
	case orchestration.ModeListening, orchestration.ModeTranscribing, orchestration.ModeThinking, orchestration.ModeSpeaking:
		return m.spinner.View() + " " + m.snapshot.Mode.String()
	}
	return m.snapshot.Mode.String()
}

func statusText(err error) string {
	switch {
	case errors.Is(err, orchestration.ErrBusy):
		return "busy, wait for the current answer or press ctrl+s"
	case errors.Is(err, orchestration.ErrEmptyInput):
		return "type a question first"
	}
	return err.Error()
}

// renderTurns renders the transcript wrapped to width.
func renderTurns(turns []conversations.Turn, width int) string {
	wrap := max(width-2, 20)

	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		if turn.Role == conversations.RoleUser {
			b.WriteString(userStyle.Render("You"))
		} else {
			b.WriteString(assistantStyle.Render("Assistant"))
		}
		b.WriteString("\n")
		b.WriteString(wordwrap.String(turn.Text, wrap))
		b.WriteString("\n")
	}
	return b.String()
}
