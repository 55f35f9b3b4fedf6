// Package triple adapts the layered tile-matching engine to the terminal
// platform: it owns the cursor, maps keys to engine operations and draws the
// board, the holding slots and the level overlays.
package triple

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/vovakirdan/triplestack/internal/config"
	"github.com/vovakirdan/triplestack/internal/core"
	"github.com/vovakirdan/triplestack/internal/games/triple/engine"
	"github.com/vovakirdan/triplestack/internal/registry"
)

// Game IDs.
const (
	IDClassic = "triple"
	IDLegacy  = "triple_legacy"
)

// Card boxes are drawn cardW columns by cardH rows.
const (
	cardW = 5
	cardH = 3
)

// RulesetFor returns the ruleset name a game ID plays.
func RulesetFor(id string) (string, bool) {
	switch id {
	case IDClassic:
		return config.Classic, true
	case IDLegacy:
		return config.Legacy, true
	}
	return "", false
}

// RecordChecker is called once per cleared level with the level number.
type RecordChecker interface {
	CheckRecords(level int) (engine.RecordEvent, error)
}

// RecordCheckerFunc adapts a function to RecordChecker.
type RecordCheckerFunc func(level int) (engine.RecordEvent, error)

// CheckRecords implements RecordChecker.
func (f RecordCheckerFunc) CheckRecords(level int) (engine.RecordEvent, error) {
	return f(level)
}

// Package-level selections made by the CLI and the menu before a game starts.
var (
	settingsMu         sync.Mutex
	selectedStartLevel int
	selectedPreset     = config.DifficultyNormal
	selectedConfigPath string
)

// SetStartLevel sets the level new games start on. Values below 1 mean level 1.
func SetStartLevel(level int) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	selectedStartLevel = level
}

// GetStartLevel returns the currently selected start level.
func GetStartLevel() int {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	return max(selectedStartLevel, 1)
}

// SetPreset sets the difficulty preset applied on Reset.
func SetPreset(p config.DifficultyPreset) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	selectedPreset = p
}

// SetConfigPath sets a ruleset file layered over the built-in ruleset.
func SetConfigPath(path string) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	selectedConfigPath = path
}

func selections() (int, config.DifficultyPreset, string) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	return max(selectedStartLevel, 1), selectedPreset, selectedConfigPath
}

// Setup holds the choices made in the level selector for one game instance.
type Setup struct {
	StartLevel int
	Preset     config.DifficultyPreset
}

func init() {
	registry.Register(IDClassic, func() registry.Game {
		return New()
	})
	registry.Register(IDLegacy, func() registry.Game {
		return NewLegacy()
	})
}

// Game is one player's session: a run of consecutive levels.
type Game struct {
	id      string
	ruleset string

	cfg     config.RulesetConfig
	eng     *engine.Engine
	sched   *engine.ManualScheduler
	area    *boardArea
	msgRand *rand.Rand
	checker RecordChecker
	setup   *Setup // Overrides the package-level selections when set

	tick       uint64
	tickRate   int
	tickDur    time.Duration
	startLevel int

	screenW  int
	screenH  int
	tooSmall bool

	cursor    engine.Ref
	hasCursor bool

	highlight     map[engine.Ref]bool
	highlightLeft time.Duration
	flash         []engine.Card // Cards just matched, drawn until flashLeft runs out
	flashLeft     time.Duration

	feedback      string
	feedbackTicks int

	paused      bool
	lastStatus  engine.Status
	stuck       bool // No card can ever be picked again, though the engine still plays on
	bestCleared int // Highest level cleared this run
	message     string
	records     engine.RecordEvent
	recordErr   error
}

// New creates a game on the classic ruleset.
func New() *Game {
	return &Game{id: IDClassic, ruleset: config.Classic}
}

// NewLegacy creates a game on the legacy ruleset.
func NewLegacy() *Game {
	return &Game{id: IDLegacy, ruleset: config.Legacy}
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return g.id
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.ruleset == config.Legacy {
		return "Triple Stack (Legacy)"
	}
	return "Triple Stack"
}

// Description returns a one-line summary for menus and the list command.
func (g *Game) Description() string {
	if g.ruleset == config.Legacy {
		return "Two picks per card, no remove, levels not balanced"
	}
	return "One pick per card, two refreshes and removes per level"
}

// Config returns the ruleset in use since the last Reset.
func (g *Game) Config() config.RulesetConfig {
	return g.cfg
}

// SetRecordChecker attaches the personal and global record stores.
func (g *Game) SetRecordChecker(rc RecordChecker) {
	g.checker = rc
}

// Configure makes Reset use s instead of the package-level selections.
// SSH sessions configure their own instance.
func (g *Game) Configure(s Setup) {
	s.StartLevel = max(s.StartLevel, 1)
	g.setup = &s
}

// Reset loads the ruleset and starts a new run on the selected start level.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	startLevel, preset, path := selections()
	if g.setup != nil {
		startLevel, preset = g.setup.StartLevel, g.setup.Preset
	}

	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}
	g.tickRate = cfg.TickRate
	g.tickDur = time.Second / time.Duration(cfg.TickRate)
	g.feedback = ""
	g.feedbackTicks = 0

	g.cfg = g.loadConfig(path)
	config.ApplyPreset(&g.cfg, preset)

	g.tick = 0
	g.startLevel = startLevel
	g.paused = false
	g.bestCleared = 0
	g.msgRand = rand.New(rand.NewSource(cfg.Seed + 1))

	rules := g.cfg.Rules()
	g.area = &boardArea{colUnit: rules.CardSize / cardW, rowUnit: rules.CardSize / cardH}
	g.resize(cfg.ScreenW, cfg.ScreenH)

	g.sched = &engine.ManualScheduler{}
	g.eng = engine.New(engine.Options{
		Rules:     rules,
		Rand:      rand.New(rand.NewSource(cfg.Seed)),
		Scheduler: g.sched,
		Renderer:  engine.RendererFunc(g.onEvent),
		Area:      g.area,
	})
	g.beginLevel(startLevel)
}

func (g *Game) loadConfig(path string) config.RulesetConfig {
	cfg, err := config.Load(g.ruleset, path)
	if err == nil {
		return cfg
	}
	g.say(fmt.Sprintf("ruleset not loaded, using defaults: %v", err))
	if g.ruleset == config.Legacy {
		return config.DefaultLegacyConfig()
	}
	return config.DefaultClassicConfig()
}

// Resize adapts the board to a new terminal size without restarting.
// The new size applies to the placement of the next level.
func (g *Game) Resize(w, h int) {
	g.resize(w, h)
}

func (g *Game) resize(w, h int) {
	g.screenW = w
	g.screenH = h
	if g.area == nil {
		return
	}
	g.area.cols = max(min(w-2, maxBoardCols), 0)
	g.area.rows = max(h-hudRows-footerRows, 0)
	g.checkScreenSize()
}

// checkScreenSize checks if the screen is large enough.
func (g *Game) checkScreenSize() {
	minW := max(g.cfg.Slots*(cardW+1)+2, 40)
	minH := hudRows + footerRows + cardH*3
	g.tooSmall = g.screenW < minW || g.screenH < minH
}

// beginLevel generates a level from scratch.
func (g *Game) beginLevel(level int) {
	g.eng.StartLevel(level)
	g.levelStarted()
}

// levelStarted clears per-level presentation state. Settle steps left over
// from the previous level are drained; the engine ignores them.
func (g *Game) levelStarted() {
	g.sched.Flush()
	g.lastStatus = engine.InProgress
	g.stuck = false
	g.message = ""
	g.records = engine.RecordEvent{}
	g.recordErr = nil
	g.highlight = nil
	g.flash = nil
	g.hasCursor = false
	g.ensureCursor()
}

// Step advances the game by one tick and applies at most one action.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionRestart) {
		g.bestCleared = 0
		g.paused = false
		g.beginLevel(g.startLevel)
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && g.eng.Status() == engine.InProgress && !g.stuck {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.sched.Advance(g.tickDur)
	g.ageEffects()
	g.handleInput(in)
	g.ensureCursor()
	g.checkLevelEnd()

	return core.StepResult{State: g.State()}
}

func (g *Game) handleInput(in core.InputFrame) {
	switch {
	case in.Has(core.ActionNext):
		if g.eng.NextLevel() {
			g.levelStarted()
		} else {
			g.say("Clear the level first")
		}
	case in.Has(core.ActionConfirm):
		if !g.hasCursor {
			g.say("Nothing to pick")
			return
		}
		res := g.eng.Select(g.cursor.Layer, g.cursor.Index)
		g.report(res.Outcome)
	case in.Has(core.ActionReturn):
		res := g.eng.ReturnFromBuffer(in.Slot)
		g.report(res.Outcome)
	case in.Has(core.ActionHint):
		res := g.eng.Hint()
		g.report(res.Outcome)
	case in.Has(core.ActionRefresh):
		res := g.eng.Refresh()
		if g.report(res.Outcome) {
			g.say(fmt.Sprintf("Shuffled %d cards", len(res.Moved)))
		}
	case in.Has(core.ActionRemoveAll):
		res := g.eng.RemoveAll()
		if g.report(res.Outcome) {
			g.say(fmt.Sprintf("%d cards back on the board", len(res.Returned)))
		}
	case in.Has(core.ActionUp):
		g.moveCursor(0, -1)
	case in.Has(core.ActionDown):
		g.moveCursor(0, 1)
	case in.Has(core.ActionLeft):
		g.moveCursor(-1, 0)
	case in.Has(core.ActionRight):
		g.moveCursor(1, 0)
	}
}

// report shows a decline reason and returns whether the operation went through.
func (g *Game) report(o engine.Outcome) bool {
	if o.Accepted {
		return true
	}
	g.say(reasonText(o.Reason))
	return false
}

func reasonText(r engine.Reason) string {
	switch r {
	case engine.ReasonLocked:
		return "That card is covered"
	case engine.ReasonAlreadyMatched:
		return "That card is already cleared"
	case engine.ReasonObstacle:
		return "Obstacles cannot be picked"
	case engine.ReasonClickLimit:
		return "That card has no picks left"
	case engine.ReasonBufferFull:
		return "The slots are full"
	case engine.ReasonBusy:
		return "Wait for the match to clear"
	case engine.ReasonNoQuota:
		return "None left this level"
	case engine.ReasonNoCandidates:
		return "Nothing to do that with"
	case engine.ReasonHeld:
		return "That card is already in a slot"
	case engine.ReasonFinished:
		return "The level is over"
	case engine.ReasonNotFound:
		return "That slot is empty"
	default:
		return r.String()
	}
}

func (g *Game) say(msg string) {
	g.feedback = msg
	g.feedbackTicks = 2 * max(g.tickRate, 1)
}

func (g *Game) ageEffects() {
	if g.feedbackTicks > 0 {
		g.feedbackTicks--
		if g.feedbackTicks == 0 {
			g.feedback = ""
		}
	}
	if g.highlightLeft > 0 {
		g.highlightLeft -= g.tickDur
		if g.highlightLeft <= 0 {
			g.highlight = nil
		}
	}
	if g.flashLeft > 0 {
		g.flashLeft -= g.tickDur
		if g.flashLeft <= 0 {
			g.flash = nil
		}
	}
}

// onEvent receives engine notifications for presentation effects.
func (g *Game) onEvent(ev engine.Event) {
	switch ev.Kind {
	case engine.EventHighlight:
		g.highlight = make(map[engine.Ref]bool, len(ev.Refs))
		for _, ref := range ev.Refs {
			g.highlight[ref] = true
		}
		g.highlightLeft = g.cfg.HintDuration()
	case engine.EventCardsMatched:
		view := g.eng.View()
		g.flash = g.flash[:0]
		for _, ref := range ev.Refs {
			if c := view.Stack.Card(ref); c != nil {
				g.flash = append(g.flash, *c)
			}
		}
		g.flashLeft = g.cfg.Rules().SettleDelay
	case engine.EventPositionsChanged, engine.EventCardsAdded:
		g.highlight = nil
	}
}

// checkLevelEnd reacts once to a level being won or lost. A level whose
// remaining cards were all spent by returns ends like a loss.
func (g *Game) checkLevelEnd() {
	st := g.eng.Status()
	if st == engine.InProgress && !g.stuck && g.eng.View().Stuck() {
		g.stuck = true
		g.paused = false
		g.message = "No moves left"
		return
	}
	if st == g.lastStatus {
		return
	}
	g.lastStatus = st

	switch st {
	case engine.Won:
		level := g.eng.View().Level
		g.bestCleared = max(g.bestCleared, level)
		g.message = pick(g.msgRand, g.cfg.Messages.Encouragements, "Level cleared!")
		if g.checker == nil {
			return
		}
		g.records, g.recordErr = g.checker.CheckRecords(level)
		switch {
		case g.records.NewGlobal:
			g.message = g.cfg.Messages.GlobalRecord
		case g.records.NewPersonal:
			g.message = pick(g.msgRand, g.cfg.Messages.NewRecord, "New personal best!")
		}
	case engine.Lost:
		g.message = "No moves left"
	}
}

func pick(rng *rand.Rand, options []string, fallback string) string {
	if len(options) == 0 {
		return fallback
	}
	return options[rng.Intn(len(options))]
}

// ensureCursor keeps the cursor on a selectable card, moving it to the
// nearest one when its card went away.
func (g *Game) ensureCursor() {
	view := g.eng.View()
	if g.hasCursor {
		if c := view.Stack.Card(g.cursor); c != nil && c.Selectable() {
			return
		}
	}

	var fromX, fromY float64
	if c := view.Stack.Card(g.cursor); g.hasCursor && c != nil {
		fromX, fromY = g.center(c)
	} else {
		fromX, fromY = view.AreaW/2, view.AreaH/2
	}

	best := math.Inf(1)
	g.hasCursor = false
	for _, ref := range view.Selectable() {
		x, y := g.center(view.Stack.Card(ref))
		d := math.Hypot(x-fromX, y-fromY)
		// Prefer higher layers on ties so the cursor lands on what is visible
		if d < best || (d == best && ref.Layer > g.cursor.Layer) {
			best = d
			g.cursor = ref
			g.hasCursor = true
		}
	}
}

// moveCursor jumps to the nearest selectable card in the given direction.
func (g *Game) moveCursor(dx, dy int) {
	if !g.hasCursor {
		return
	}
	view := g.eng.View()
	fromX, fromY := g.center(view.Stack.Card(g.cursor))

	best := math.Inf(1)
	for _, ref := range view.Selectable() {
		if ref == g.cursor {
			continue
		}
		x, y := g.center(view.Stack.Card(ref))
		along := (x-fromX)*float64(dx) + (y-fromY)*float64(dy)
		if along <= 0 {
			continue
		}
		across := math.Abs((x-fromX)*float64(dy)) + math.Abs((y-fromY)*float64(dx))
		if score := along + 2*across; score < best {
			best = score
			g.cursor = ref
		}
	}
}

func (g *Game) center(c *engine.Card) (float64, float64) {
	size := g.cfg.Geometry.CardSize
	return c.X + size/2, c.Y + size/2
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	st := core.GameState{
		Score:  g.bestCleared,
		Paused: g.paused,
	}
	if g.eng == nil {
		return st
	}
	st.Level = g.eng.View().Level
	st.GameOver = g.eng.Status() == engine.Lost || g.stuck
	st.LevelCleared = g.eng.Status() == engine.Won
	return st
}

// Engine exposes the underlying engine for inspection.
func (g *Game) Engine() *engine.Engine {
	return g.eng
}
