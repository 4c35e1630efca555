package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/ema-voice/core"
	"github.com/koscakluka/ema-voice/core/conversations"
	"github.com/koscakluka/ema-voice/core/events"
	"github.com/koscakluka/ema-voice/core/language"
)

type fakeController struct {
	snapshot  orchestration.Snapshot
	submitted []string
	calls     []string
	err       error
}

func (f *fakeController) StartListening() error {
	f.calls = append(f.calls, "start")
	f.snapshot.Mode = orchestration.ModeListening
	return f.err
}

func (f *fakeController) StopListening() error {
	f.calls = append(f.calls, "stop")
	f.snapshot.Mode = orchestration.ModeTranscribing
	return f.err
}

func (f *fakeController) Submit(text string) error {
	f.calls = append(f.calls, "submit")
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, text)
	return nil
}

func (f *fakeController) StopSpeaking() error {
	f.calls = append(f.calls, "stop_speaking")
	return f.err
}

func (f *fakeController) SetLanguage(tag language.Tag) error {
	f.calls = append(f.calls, "language")
	f.snapshot.Language = tag
	return f.err
}

func (f *fakeController) Close() error {
	f.calls = append(f.calls, "close")
	return nil
}

func (f *fakeController) Snapshot() orchestration.Snapshot { return f.snapshot }

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()

	next, _ := m.Update(msg)
	updated, ok := next.(model)
	if !ok {
		t.Fatalf("expected model, got %T", next)
	}
	return updated
}

func TestCtrlRTogglesListening(t *testing.T) {
	fake := &fakeController{snapshot: orchestration.Snapshot{Language: language.English}}
	m := update(t, newModel(fake), tea.WindowSizeMsg{Width: 80, Height: 24})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})

	if strings.Join(fake.calls, ",") != "start,stop" {
		t.Fatalf("expected start then stop, got %v", fake.calls)
	}
	if m.snapshot.Mode != orchestration.ModeTranscribing {
		t.Fatalf("expected refreshed snapshot, got %v", m.snapshot.Mode)
	}
}

func TestEnterSubmitsAndClearsInput(t *testing.T) {
	fake := &fakeController{}
	m := newModel(fake)
	m.input.SetValue("how do I treat blight?")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(fake.submitted) != 1 || fake.submitted[0] != "how do I treat blight?" {
		t.Fatalf("expected question submitted, got %v", fake.submitted)
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input cleared, got %q", m.input.Value())
	}
}

func TestRejectedSubmitKeepsInputAndShowsStatus(t *testing.T) {
	fake := &fakeController{err: orchestration.ErrBusy}
	m := update(t, newModel(fake), tea.WindowSizeMsg{Width: 80, Height: 24})
	m.input.SetValue("second question")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.input.Value() != "second question" {
		t.Fatalf("expected input kept, got %q", m.input.Value())
	}
	if !strings.Contains(m.View(), "busy") {
		t.Fatalf("expected busy status in view")
	}

	m = update(t, m, controllerEventMsg{event: events.NewModeChanged("thinking", "speaking")})
	if m.status != nil {
		t.Fatalf("expected status cleared on mode change, got %v", m.status)
	}
}

func TestCtrlLCyclesLanguage(t *testing.T) {
	fake := &fakeController{snapshot: orchestration.Snapshot{Language: language.Hindi}}
	m := newModel(fake)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})

	if m.snapshot.Language != language.Telugu {
		t.Fatalf("expected %q, got %q", language.Telugu, m.snapshot.Language)
	}
}

func TestEscClosesSession(t *testing.T) {
	fake := &fakeController{}
	_, cmd := newModel(fake).Update(tea.KeyMsg{Type: tea.KeyEsc})

	if len(fake.calls) != 1 || fake.calls[0] != "close" {
		t.Fatalf("expected close, got %v", fake.calls)
	}
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}

func TestViewShowsNoticeAndTurns(t *testing.T) {
	fake := &fakeController{snapshot: orchestration.Snapshot{
		Subject:    "Tomato Late Blight",
		Language:   language.English,
		NoticeText: "No speech detected",
		Turns: []conversations.Turn{
			conversations.NewUserTurn("What is this?"),
			conversations.NewAssistantTurn("It is late blight."),
		},
	}}
	m := update(t, newModel(fake), tea.WindowSizeMsg{Width: 80, Height: 24})

	view := m.View()
	for _, want := range []string{"Tomato Late Blight", "No speech detected", "What is this?", "It is late blight."} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q, got %q", want, view)
		}
	}
}

func TestRenderTurnsWrapsLongAnswers(t *testing.T) {
	turns := []conversations.Turn{conversations.NewAssistantTurn(strings.Repeat("word ", 20))}

	rendered := renderTurns(turns, 22)

	for _, line := range strings.Split(rendered, "\n") {
		if len(strings.TrimSpace(line)) > 20 && !strings.Contains(line, "Assistant") {
			t.Fatalf("expected wrapped lines, got %q", line)
		}
	}
}
