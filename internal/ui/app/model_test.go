package app_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	trackerdto "prodman/internal/modules/tracker/dto"
	apperrors "prodman/internal/platform/errors"
	"prodman/internal/ui/app"
)

type fakeTracker struct {
	mu       sync.Mutex
	progress trackerdto.ProgressOutput
	tokens   []string
	recorded []string
	started  int
}

func (f *fakeTracker) Start(context.Context) (trackerdto.StartOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	if f.started > 1 {
		return trackerdto.StartOutput{}, apperrors.ErrActiveSessionExists
	}
	return trackerdto.StartOutput{RunID: "run-1"}, nil
}

func (f *fakeTracker) Submit(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return nil
}

func (f *fakeTracker) Progress(context.Context) (trackerdto.ProgressOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress, nil
}

func (f *fakeTracker) Record(_ context.Context, name string) (trackerdto.RecordOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, name)
	return trackerdto.RecordOutput{Date: "2026-03-02", ID: 0}, nil
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to the model and keeps feeding back what its commands
// produce until the chain settles.
func send(m tea.Model, msg tea.Msg) tea.Model {
	for depth := 0; msg != nil && depth < 6; depth++ {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		if cmd == nil {
			return m
		}
		msg = cmd()
		if _, isBatch := msg.(tea.BatchMsg); isBatch {
			return m
		}
	}
	return m
}

func typeLine(m tea.Model, line string) tea.Model {
	m, _ = m.Update(keyPress(":"))
	for _, r := range line {
		m, _ = m.Update(keyPress(string(r)))
	}
	return send(m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestKeysBecomeCommands(t *testing.T) {
	t.Parallel()
	fake := &fakeTracker{}
	var m tea.Model = app.NewModel(fake, time.Second)
	for _, k := range []string{"o", "p", "u", "n", "f"} {
		m = send(m, keyPress(k))
	}
	want := []string{"okay", "pause", "unpause", "next", "finish"}
	if strings.Join(fake.tokens, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, fake.tokens)
	}
	if !strings.Contains(m.View(), "sent finish") {
		t.Fatalf("status not updated:\n%s", m.View())
	}
}

func TestStartTwiceReportsError(t *testing.T) {
	t.Parallel()
	fake := &fakeTracker{}
	var m tea.Model = app.NewModel(fake, time.Second)
	m = send(m, keyPress("s"))
	m = send(m, keyPress("s"))
	if !strings.Contains(m.View(), "start failed") {
		t.Fatalf("expected start failure in view:\n%s", m.View())
	}
}

func TestHasslerOpensPromptOnce(t *testing.T) {
	t.Parallel()
	fake := &fakeTracker{progress: trackerdto.ProgressOutput{Phase: "hassler", Hassler: true, Task: "work", BlockCount: 2}}
	var m tea.Model = app.NewModel(fake, time.Second)
	m = send(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m, _ = m.Update(mustProgress(t, m))
	if !strings.Contains(m.View(), "Type okay to start work") {
		t.Fatalf("hassler prompt not shown:\n%s", m.View())
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = m.Update(mustProgress(t, m))
	if strings.Contains(m.View(), "Type okay") {
		t.Fatalf("prompt reopened after dismissal:\n%s", m.View())
	}
}

func TestPromptSubmitsTypedCommandAndRecord(t *testing.T) {
	t.Parallel()
	fake := &fakeTracker{}
	var m tea.Model = app.NewModel(fake, time.Second)
	m = typeLine(m, "ok")
	m = typeLine(m, "record morning")

	if len(fake.tokens) != 1 || fake.tokens[0] != "ok" {
		t.Fatalf("expected the typed text to be submitted, got %v", fake.tokens)
	}
	if len(fake.recorded) != 1 || fake.recorded[0] != "morning" {
		t.Fatalf("expected record with name, got %v", fake.recorded)
	}
	if !strings.Contains(m.View(), "recorded 2026-03-02#0") {
		t.Fatalf("record status missing:\n%s", m.View())
	}
}

func TestRowsRenderWithBars(t *testing.T) {
	t.Parallel()
	fake := &fakeTracker{progress: trackerdto.ProgressOutput{
		Phase: "running", Task: "work", BlockCount: 1,
		Rows: []trackerdto.ProgressRow{
			{Task: "work", GoalMinutes: 25, ActualMinutes: 30, Goal: "25:00", Actual: "30:00"},
			{Task: "total", GoalMinutes: 25, ActualMinutes: 30, Goal: "25:00", Actual: "30:00"},
		},
	}}
	var m tea.Model = app.NewModel(fake, time.Second)
	m = send(m, tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = m.Update(mustProgress(t, m))
	view := m.View()
	for _, want := range []string{"work", "25:00", "30:00", "█"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

// mustProgress runs the model's progress load the way a tick would.
func mustProgress(t *testing.T, m tea.Model) tea.Msg {
	t.Helper()
	msg := m.(app.Model).Refresh()()
	if msg == nil {
		t.Fatalf("refresh produced no message")
	}
	return msg
}
