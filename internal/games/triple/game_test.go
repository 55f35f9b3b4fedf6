package triple

import (
	"errors"
	"strings"
	"testing"

	"github.com/vovakirdan/triplestack/internal/config"
	"github.com/vovakirdan/triplestack/internal/core"
	"github.com/vovakirdan/triplestack/internal/games/triple/engine"
	"github.com/vovakirdan/triplestack/internal/registry"
)

func newTestGame(t *testing.T, g *Game) *Game {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	SetStartLevel(0)
	SetPreset(config.DifficultyNormal)
	SetConfigPath("")

	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30, Seed: 42})
	return g
}

// loadRow replaces the board with one layer of well separated cards.
func loadRow(g *Game, rules engine.Rules, types ...string) {
	cards := make([]engine.Card, len(types))
	for i, typ := range types {
		cards[i] = engine.Card{
			Type:      typ,
			Index:     i,
			X:         float64(i) * 100,
			MaxClicks: rules.MaxClicksPerCard,
		}
	}
	stack := engine.Stack{Layers: []engine.Layer{{Index: 0, Cards: cards}}}
	g.eng.Load(engine.NewState(1, stack, rules, 600, 300))
	g.levelStarted()
}

func press(g *Game, a core.Action) core.StepResult {
	f := core.NewInputFrame()
	f.Set(a)
	return g.Step(f)
}

func idle(g *Game, ticks int) {
	for range ticks {
		g.Step(core.NewInputFrame())
	}
}

func pickAt(g *Game, index int) {
	g.cursor = engine.Ref{Layer: 0, Index: index}
	g.hasCursor = true
	press(g, core.ActionConfirm)
}

func TestRegistered(t *testing.T) {
	tests := []struct {
		id    string
		title string
	}{
		{IDClassic, "Triple Stack"},
		{IDLegacy, "Triple Stack (Legacy)"},
	}
	for _, tc := range tests {
		g, err := registry.Create(tc.id)
		if err != nil {
			t.Fatalf("Create(%q): %v", tc.id, err)
		}
		if g.Title() != tc.title {
			t.Errorf("Title() = %q, want %q", g.Title(), tc.title)
		}
	}
}

func TestResetStartsLevelOne(t *testing.T) {
	g := newTestGame(t, New())

	st := g.State()
	if st.Level != 1 || st.GameOver || st.LevelCleared || st.Score != 0 {
		t.Errorf("State() after Reset = %+v", st)
	}
	if g.eng.View().Total == 0 {
		t.Error("level 1 should have cards")
	}
	if !g.hasCursor {
		t.Error("cursor should start on a selectable card")
	}

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if !strings.Contains(screen.String(), "Level 1") {
		t.Errorf("HUD should show the level:\n%s", screen.String())
	}
}

func TestSetStartLevel(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	SetStartLevel(3)
	defer SetStartLevel(0)

	g := New()
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30, Seed: 1})
	if g.State().Level != 3 {
		t.Errorf("Level = %d, want 3", g.State().Level)
	}
}

func TestConfigureOverridesSelections(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	SetStartLevel(5)
	defer SetStartLevel(0)

	g := New()
	g.Configure(Setup{StartLevel: 2, Preset: config.DifficultyEasy})
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30, Seed: 1})
	if g.State().Level != 2 {
		t.Errorf("Level = %d, want 2", g.State().Level)
	}
	if g.eng.View().Buffer.Cap() != 8 {
		t.Errorf("easy preset should add a slot, got %d", g.eng.View().Buffer.Cap())
	}

	// Restart returns to the configured level, not the package-level one
	press(g, core.ActionRestart)
	if g.State().Level != 2 {
		t.Errorf("after restart Level = %d, want 2", g.State().Level)
	}
}

func TestLegacyRuleset(t *testing.T) {
	g := newTestGame(t, NewLegacy())
	if g.Config().MaxClicksPerCard != 2 || g.Config().RemoveQuotaPerLevel != 0 {
		t.Errorf("legacy config = %+v", g.Config())
	}
	if g.eng.View().RemoveLeft != 0 {
		t.Error("legacy levels start without removes")
	}
}

func TestPresetApplied(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	SetPreset(config.DifficultyEasy)
	defer SetPreset(config.DifficultyNormal)

	g := New()
	g.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30, Seed: 1})
	if g.eng.View().Buffer.Cap() != 8 {
		t.Errorf("easy preset should add a slot, got %d", g.eng.View().Buffer.Cap())
	}
}

func TestConfirmPicksCursorCard(t *testing.T) {
	g := newTestGame(t, New())
	loadRow(g, g.cfg.Rules(), "A", "B", "C")

	pickAt(g, 0)

	view := g.eng.View()
	if view.Buffer.Len() != 1 {
		t.Fatalf("Buffer.Len() = %d, want 1", view.Buffer.Len())
	}
	if ref, _ := view.Buffer.At(0); ref != (engine.Ref{Layer: 0, Index: 0}) {
		t.Errorf("slot 0 holds %v", ref)
	}
	if g.cursor == (engine.Ref{Layer: 0, Index: 0}) {
		t.Error("cursor should leave a card once it is held")
	}
}

func TestReturnSlot(t *testing.T) {
	g := newTestGame(t, New())
	loadRow(g, g.cfg.Rules(), "A", "B", "C")
	pickAt(g, 1)

	f := core.NewInputFrame()
	f.SetReturn(0)
	g.Step(f)

	if g.eng.View().Buffer.Len() != 0 {
		t.Error("returned card should leave the buffer")
	}

	f = core.NewInputFrame()
	f.SetReturn(4)
	g.Step(f)
	if g.feedback != reasonText(engine.ReasonNotFound) {
		t.Errorf("feedback = %q", g.feedback)
	}
}

func TestMatchClearsLevel(t *testing.T) {
	g := newTestGame(t, New())

	var checked []int
	g.SetRecordChecker(RecordCheckerFunc(func(level int) (engine.RecordEvent, error) {
		checked = append(checked, level)
		return engine.RecordEvent{Level: level, NewPersonal: true, NewGlobal: true}, nil
	}))

	loadRow(g, g.cfg.Rules(), "A", "A", "A")
	pickAt(g, 0)
	pickAt(g, 1)
	pickAt(g, 2)

	if !g.eng.View().Processing {
		t.Fatal("a match should hold the engine until it settles")
	}

	// 400ms settle at 30 ticks per second
	idle(g, 15)

	st := g.State()
	if !st.LevelCleared || st.GameOver {
		t.Fatalf("State() = %+v, want level cleared", st)
	}
	if st.Score != 1 {
		t.Errorf("Score = %d, want 1", st.Score)
	}
	if len(checked) != 1 || checked[0] != 1 {
		t.Errorf("records checked for %v, want [1]", checked)
	}
	if g.message != g.cfg.Messages.GlobalRecord {
		t.Errorf("message = %q, want the global record text", g.message)
	}

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if !strings.Contains(screen.String(), "LEVEL 1 CLEARED") {
		t.Errorf("win overlay missing:\n%s", screen.String())
	}

	// Records are checked once per level
	idle(g, 5)
	if len(checked) != 1 {
		t.Errorf("records checked %d times", len(checked))
	}
}

func TestRecordCheckerError(t *testing.T) {
	g := newTestGame(t, New())
	g.SetRecordChecker(RecordCheckerFunc(func(level int) (engine.RecordEvent, error) {
		return engine.RecordEvent{Level: level}, errors.New("offline")
	}))

	loadRow(g, g.cfg.Rules(), "A", "A", "A")
	pickAt(g, 0)
	pickAt(g, 1)
	pickAt(g, 2)
	idle(g, 15)

	if !g.State().LevelCleared {
		t.Fatal("a record failure must not block the win")
	}
	if g.recordErr == nil {
		t.Error("record error should be kept for display")
	}
}

func TestNextLevel(t *testing.T) {
	g := newTestGame(t, New())
	loadRow(g, g.cfg.Rules(), "A", "A", "A", "B")

	press(g, core.ActionNext)
	if g.State().Level != 1 || g.feedback == "" {
		t.Errorf("Next before a win should be refused, level=%d feedback=%q", g.State().Level, g.feedback)
	}

	loadRow(g, g.cfg.Rules(), "A", "A", "A")
	pickAt(g, 0)
	pickAt(g, 1)
	pickAt(g, 2)
	idle(g, 15)

	press(g, core.ActionNext)
	st := g.State()
	if st.Level != 2 || st.LevelCleared {
		t.Errorf("State() after Next = %+v", st)
	}
	if st.Score != 1 {
		t.Errorf("Score should keep the cleared level, got %d", st.Score)
	}
}

func TestLossEndsRun(t *testing.T) {
	g := newTestGame(t, New())
	rules := g.cfg.Rules()
	rules.Slots = 3
	loadRow(g, rules, "A", "B", "C")

	pickAt(g, 0)
	pickAt(g, 1)
	pickAt(g, 2)

	st := g.State()
	if !st.GameOver {
		t.Fatalf("State() = %+v, want game over", st)
	}

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if !strings.Contains(screen.String(), "GAME OVER") {
		t.Errorf("loss overlay missing:\n%s", screen.String())
	}

	press(g, core.ActionRestart)
	if g.State().GameOver || g.State().Level != 1 {
		t.Errorf("restart should begin a new run: %+v", g.State())
	}
}

func TestPause(t *testing.T) {
	g := newTestGame(t, New())
	loadRow(g, g.cfg.Rules(), "A", "B", "C")

	if !press(g, core.ActionPause).State.Paused {
		t.Fatal("Pause should pause")
	}
	pickAt(g, 0)
	if g.eng.View().Buffer.Len() != 0 {
		t.Error("picks are ignored while paused")
	}
	if press(g, core.ActionPause).State.Paused {
		t.Error("Pause again should resume")
	}
}

func TestCursorMovement(t *testing.T) {
	g := newTestGame(t, New())
	loadRow(g, g.cfg.Rules(), "A", "B", "C")
	g.cursor = engine.Ref{Layer: 0, Index: 0}

	steps := []struct {
		action core.Action
		want   int
	}{
		{core.ActionRight, 1},
		{core.ActionRight, 2},
		{core.ActionRight, 2},
		{core.ActionLeft, 1},
		{core.ActionUp, 1},
		{core.ActionDown, 1},
	}
	for i, s := range steps {
		press(g, s.action)
		if g.cursor.Index != s.want {
			t.Errorf("step %d (%s): cursor at %d, want %d", i, s.action, g.cursor.Index, s.want)
		}
	}
}

func TestHintHighlightExpires(t *testing.T) {
	g := newTestGame(t, New())
	loadRow(g, g.cfg.Rules(), "A", "B", "A", "A")

	press(g, core.ActionHint)
	if len(g.highlight) != 3 || g.highlight[engine.Ref{Layer: 0, Index: 1}] {
		t.Fatalf("highlight = %v", g.highlight)
	}

	// 3s hint at 30 ticks per second
	idle(g, 95)
	if g.highlight != nil {
		t.Error("highlight should expire")
	}
}

func TestDeclineFeedback(t *testing.T) {
	g := newTestGame(t, New())
	loadRow(g, g.cfg.Rules(), "A", "B", "C")

	press(g, core.ActionRemoveAll)
	if g.feedback != reasonText(engine.ReasonNoCandidates) {
		t.Errorf("feedback = %q", g.feedback)
	}

	// Feedback clears after two seconds
	idle(g, 61)
	if g.feedback != "" {
		t.Errorf("feedback should clear, got %q", g.feedback)
	}
}

func TestRemoveAllFeedback(t *testing.T) {
	g := newTestGame(t, New())
	loadRow(g, g.cfg.Rules(), "A", "B", "C")
	pickAt(g, 0)
	pickAt(g, 1)

	press(g, core.ActionRemoveAll)
	if g.eng.View().Buffer.Len() != 0 {
		t.Error("remove should empty the slots")
	}
	if !strings.Contains(g.feedback, "2 cards") {
		t.Errorf("feedback = %q", g.feedback)
	}
}

func TestTooSmall(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	g := New()
	g.Reset(core.RuntimeConfig{ScreenW: 30, ScreenH: 10, TickRate: 30, Seed: 1})

	screen := core.NewScreen(30, 10)
	g.Render(screen)
	if !strings.Contains(screen.String(), "Window too small") {
		t.Errorf("expected the resize message:\n%s", screen.String())
	}

	g.Resize(80, 24)
	g.Render(screen)
	if strings.Contains(screen.String(), "Window too small") {
		t.Error("resize should bring the board back")
	}
}

func TestDeterministicLevels(t *testing.T) {
	a := newTestGame(t, New())
	b := newTestGame(t, New())
	if a.eng.Snapshot() != b.eng.Snapshot() {
		t.Error("same seed should generate the same level")
	}
}

func TestSpentCardsEndRun(t *testing.T) {
	g := newTestGame(t, New())
	loadRow(g, g.cfg.Rules(), "A", "A", "A", "B", "B", "B")

	pickAt(g, 0)
	pickAt(g, 3)
	press(g, core.ActionRemoveAll)
	if g.State().GameOver {
		t.Fatal("cards are still pickable after the remove")
	}
	for _, i := range []int{1, 2, 4, 5} {
		pickAt(g, i)
	}

	st := g.State()
	if !st.GameOver {
		t.Fatalf("State() = %+v, want game over once every card is spent", st)
	}
	if g.eng.Status() != engine.InProgress {
		t.Errorf("engine status = %s, the engine itself never calls this lost", g.eng.Status())
	}
	if g.hasCursor {
		t.Error("no card should be under the cursor")
	}

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	if !strings.Contains(screen.String(), "NO MOVES LEFT") {
		t.Errorf("stuck panel missing:\n%s", screen.String())
	}

	if press(g, core.ActionPause).State.Paused {
		t.Error("a finished level cannot be paused")
	}
	press(g, core.ActionRestart)
	if g.State().GameOver {
		t.Errorf("restart should begin a new run: %+v", g.State())
	}
}

func TestFooterNamesSlots(t *testing.T) {
	tests := []struct {
		preset config.DifficultyPreset
		want   string
	}{
		{config.DifficultyNormal, "1-7 return"},
		{config.DifficultyEasy, "1-8 return"},
	}
	for _, tc := range tests {
		t.Run(string(tc.preset), func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			g := New()
			g.Configure(Setup{StartLevel: 1, Preset: tc.preset})
			g.Reset(core.RuntimeConfig{ScreenW: 100, ScreenH: 24, TickRate: 30, Seed: 1})

			screen := core.NewScreen(100, 24)
			g.Render(screen)
			if !strings.Contains(screen.String(), tc.want) {
				t.Errorf("footer should read %q:\n%s", tc.want, screen.String())
			}
		})
	}
}

func TestRefreshAfterShrink(t *testing.T) {
	g := newTestGame(t, New())
	g.Resize(50, 20)
	if g.tooSmall {
		t.Fatal("50x20 should still fit the board")
	}
	w, h := g.area.AreaSize()

	res := g.eng.Refresh()
	if !res.Accepted {
		t.Fatalf("Refresh declined with %s", res.Reason)
	}
	size := g.cfg.Geometry.CardSize
	view := g.eng.View()
	for _, ref := range res.Moved {
		c := view.Stack.Card(ref)
		if c.X > w-size || c.Y > h-size {
			t.Errorf("%s shuffled to (%g, %g), outside the %gx%g board", c.ID, c.X, c.Y, w, h)
		}
	}
}
