package tui

import (
	"io"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/triplestack/internal/core"
	"github.com/vovakirdan/triplestack/internal/games/triple"
	"github.com/vovakirdan/triplestack/internal/storage"
)

// stubGame records what the model asks of it.
type stubGame struct {
	state   core.GameState
	resets  int
	resized [2]int
	steps   []core.InputFrame
	checker triple.RecordChecker
}

func (g *stubGame) ID() string { return "stub" }
func (g *stubGame) Title() string { return "Stub" }
func (g *stubGame) Reset(core.RuntimeConfig) { g.resets++ }
func (g *stubGame) Render(dst *core.Screen) { dst.DrawText(0, 0, "stub") }
func (g *stubGame) State() core.GameState { return g.state }
func (g *stubGame) Resize(w, h int) { g.resized = [2]int{w, h} }
func (g *stubGame) SetRecordChecker(rc triple.RecordChecker) { g.checker = rc }

func (g *stubGame) Step(in core.InputFrame) core.StepResult {
	g.steps = append(g.steps, in.Clone())
	return core.StepResult{State: g.state}
}

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testServices(store *storage.Store) Services {
	return Services{Store: store, Logger: log.New(io.Discard)}
}

func newTestModel(g *stubGame, svc Services) Model {
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30, Seed: 1}
	return NewModel(g, svc, cfg)
}

func tick(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(TickMsg{Gen: m.gen})
	return next.(Model)
}

func pressKey(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModelSavesRunOncePerLevelEnd(t *testing.T) {
	store := openTestStore(t)
	g := &stubGame{state: core.GameState{Level: 2}}
	m := newTestModel(g, testServices(store))

	m = tick(t, m)
	g.state.LevelCleared = true
	m = tick(t, m)
	m = tick(t, m)

	g.state = core.GameState{Level: 3}
	m = tick(t, m)
	g.state.GameOver = true
	m = tick(t, m)
	tick(t, m)

	runs, err := store.AllRuns(10)
	if err != nil {
		t.Fatalf("AllRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	// Newest first
	if runs[0].Level != 3 || runs[0].Cleared {
		t.Errorf("runs[0] = %+v, want lost level 3", runs[0])
	}
	if runs[1].Level != 2 || !runs[1].Cleared {
		t.Errorf("runs[1] = %+v, want cleared level 2", runs[1])
	}
}

func TestModelWithoutStore(t *testing.T) {
	g := &stubGame{state: core.GameState{Level: 1, GameOver: true}}
	m := newTestModel(g, testServices(nil))
	tick(t, m)
	if len(g.steps) != 1 {
		t.Errorf("game should still step without a store")
	}
}

func TestModelIgnoresStaleTicks(t *testing.T) {
	g := &stubGame{}
	m := newTestModel(g, testServices(nil))

	next, cmd := m.Update(TickMsg{Gen: m.gen + 1})
	if cmd != nil {
		t.Error("a stale tick must not schedule another")
	}
	tick(t, next.(Model))
	if len(g.steps) != 1 {
		t.Errorf("steps = %d, want 1", len(g.steps))
	}
}

func TestModelBuffersKeysUntilTick(t *testing.T) {
	g := &stubGame{}
	m := newTestModel(g, testServices(nil))

	m, _ = pressKey(t, m, runeKey('h'))
	m, _ = pressKey(t, m, runeKey('3'))
	if len(g.steps) != 0 {
		t.Fatal("keys must not step the game")
	}
	m = tick(t, m)
	tick(t, m)

	if len(g.steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(g.steps))
	}
	first := g.steps[0]
	if !first.Has(core.ActionHint) || !first.Has(core.ActionReturn) || first.Slot != 2 {
		t.Errorf("first frame = %+v, want hint and return slot 2", first)
	}
	if !g.steps[1].Empty() {
		t.Error("input should be cleared after each tick")
	}
}

func TestModelExit(t *testing.T) {
	tests := []struct {
		name     string
		msg      tea.KeyMsg
		back     bool
		embedded bool
	}{
		{"back standalone", runeKey('b'), true, false},
		{"quit standalone", runeKey('q'), false, false},
		{"back embedded", tea.KeyMsg{Type: tea.KeyEsc}, true, true},
		{"quit embedded", tea.KeyMsg{Type: tea.KeyCtrlC}, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestModel(&stubGame{}, testServices(nil))
			m.embedded = tc.embedded

			m, cmd := pressKey(t, m, tc.msg)
			if cmd == nil {
				t.Fatal("expected a command")
			}
			if m.BackToMenu() != tc.back {
				t.Errorf("BackToMenu() = %v, want %v", m.BackToMenu(), tc.back)
			}

			msg := cmd()
			if !tc.embedded {
				if _, ok := msg.(tea.QuitMsg); !ok {
					t.Errorf("standalone exit sent %T, want tea.QuitMsg", msg)
				}
				return
			}
			exit, ok := msg.(gameExitMsg)
			if !ok {
				t.Fatalf("embedded exit sent %T, want gameExitMsg", msg)
			}
			if exit.back != tc.back {
				t.Errorf("exit.back = %v, want %v", exit.back, tc.back)
			}
		})
	}
}

func TestModelResizeKeepsGame(t *testing.T) {
	g := &stubGame{}
	m := newTestModel(g, testServices(nil))

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(Model)

	if g.resized != [2]int{100, 40} {
		t.Errorf("resized = %v", g.resized)
	}
	if g.resets != 0 {
		t.Errorf("resize should not reset a resizable game")
	}
	if m.screen.Width() != 100 || m.screen.Height() != 40 {
		t.Errorf("screen = %dx%d", m.screen.Width(), m.screen.Height())
	}
}

func TestRecordCheckerAttached(t *testing.T) {
	store := openTestStore(t)
	g := &stubGame{}
	newTestModel(g, testServices(store))

	if g.checker == nil {
		t.Fatal("NewModel should attach a record checker")
	}

	ev, err := g.checker.CheckRecords(4)
	if err != nil {
		t.Fatalf("CheckRecords: %v", err)
	}
	if !ev.NewPersonal || ev.NewGlobal {
		t.Errorf("first clear = %+v, want personal only", ev)
	}
	if best, _ := store.ReadBest("stub"); best != 4 {
		t.Errorf("personal best = %d, want 4", best)
	}

	ev, err = g.checker.CheckRecords(3)
	if err != nil {
		t.Fatalf("CheckRecords: %v", err)
	}
	if ev.NewPersonal {
		t.Error("a shallower level is not a record")
	}
}

func TestViewRendersScreen(t *testing.T) {
	m := newTestModel(&stubGame{}, testServices(nil))
	if m.View() == "" {
		t.Error("View() should render the game")
	}
}
