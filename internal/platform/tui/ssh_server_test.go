package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/triplestack/internal/core"
	"github.com/vovakirdan/triplestack/internal/games/triple"
	"github.com/vovakirdan/triplestack/internal/prefs"
)

func sessionUpdate(t *testing.T, m SessionModel, msg tea.Msg) (SessionModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(SessionModel), cmd
}

func newTestSession(t *testing.T) SessionModel {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	svc := testServices(openTestStore(t))
	svc.Prefs = prefs.Memory()
	return NewSessionModel(svc, core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30, Seed: 1})
}

func TestSessionFlow(t *testing.T) {
	m := newTestSession(t)
	if m.stage != stageMenu {
		t.Fatalf("stage = %d, want menu", m.stage)
	}
	if m.menu.items[m.menu.cursor].GameID != triple.IDClassic {
		t.Errorf("menu should preselect the remembered game")
	}

	enter := tea.KeyMsg{Type: tea.KeyEnter}

	m, _ = sessionUpdate(t, m, enter)
	if m.stage != stageSetup {
		t.Fatalf("stage = %d, want setup", m.stage)
	}

	m, cmd := sessionUpdate(t, m, enter)
	if m.stage != stageGame || m.game == nil {
		t.Fatalf("stage = %d, want game", m.stage)
	}
	if cmd == nil {
		t.Error("starting a game should start its tick loop")
	}
	if m.View() == "" {
		t.Error("game view is empty")
	}

	m, cmd = sessionUpdate(t, m, runeKey('b'))
	if cmd == nil {
		t.Fatal("back should produce an exit message")
	}
	m, _ = sessionUpdate(t, m, cmd())
	if m.stage != stageMenu || m.game != nil {
		t.Errorf("stage = %d after back, want menu", m.stage)
	}
}

func TestSessionScoreboardAndQuit(t *testing.T) {
	m := newTestSession(t)

	m, _ = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.stage != stageScoreboard {
		t.Fatalf("stage = %d, want scoreboard", m.stage)
	}
	m, _ = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.stage != stageMenu {
		t.Fatalf("stage = %d, want menu", m.stage)
	}

	m, cmd := sessionUpdate(t, m, runeKey('q'))
	if !m.quitting || cmd == nil {
		t.Fatal("q should quit the session")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit should end the program")
	}
	if m.View() != "" {
		t.Error("a quitting session renders nothing")
	}
}

func TestSessionGamesAreIndependent(t *testing.T) {
	a := newTestSession(t)
	b := newTestSession(t)
	enter := tea.KeyMsg{Type: tea.KeyEnter}

	for range 2 {
		a, _ = sessionUpdate(t, a, enter)
		b, _ = sessionUpdate(t, b, enter)
	}
	if a.game == nil || b.game == nil {
		t.Fatal("both sessions should be in a game")
	}
	if a.game.game == b.game.game {
		t.Error("sessions must not share a game instance")
	}
}
