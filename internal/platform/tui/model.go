package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/triplestack/internal/core"
	"github.com/vovakirdan/triplestack/internal/registry"
)

// resizer is implemented by games that adapt to a new terminal size
// without starting over.
type resizer interface {
	Resize(w, h int)
}

// gameExitMsg is emitted by an embedded Model when the player leaves the game.
type gameExitMsg struct {
	back bool // Back to the menu rather than quitting
}

// Model is the Bubble Tea model for running a game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	svc        Services
	config     core.RuntimeConfig
	keys       *KeyMapper
	inputFrame core.InputFrame
	gameState  core.GameState
	gen        uint64
	embedded   bool // Exit through gameExitMsg instead of tea.Quit
	quitting   bool
	back       bool
	endSaved   bool // Whether the current level end has been recorded
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, svc Services, cfg core.RuntimeConfig) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}
	svc.attachRecords(game)

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		svc:        svc,
		config:     cfg,
		keys:       NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
		gen:        nextTickGen(),
	}
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	m.svc.logger().Debug("game started", "game", m.game.ID(), "seed", m.config.Seed)

	return tickCmd(m.config.TickRate, m.gen)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		if msg.Gen != m.gen || m.quitting || m.back {
			return m, nil
		}
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input. Actions are buffered until the next tick.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	if m.keys.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, m.exit()
	}
	if m.inputFrame.Has(core.ActionBack) {
		m.back = true
		return m, m.exit()
	}

	return m, nil
}

func (m Model) exit() tea.Cmd {
	if !m.embedded {
		return tea.Quit
	}
	back := m.back
	return func() tea.Msg { return gameExitMsg{back: back} }
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	if r, ok := m.game.(resizer); ok {
		r.Resize(msg.Width, msg.Height)
	} else if !m.gameState.GameOver {
		m.game.Reset(m.config)
	}

	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.recordLevelEnd()

	m.inputFrame.Clear()

	return m, tickCmd(m.config.TickRate, m.gen)
}

// recordLevelEnd stores one run entry per won or lost level.
func (m *Model) recordLevelEnd() {
	ended := m.gameState.LevelCleared || m.gameState.GameOver
	if !ended {
		m.endSaved = false
		return
	}
	if m.endSaved {
		return
	}
	m.endSaved = true

	logger := m.svc.logger().With("game", m.game.ID(), "level", m.gameState.Level)
	if m.gameState.GameOver {
		logger.Info("run over")
	} else {
		logger.Debug("level cleared")
	}

	if m.svc.Store == nil {
		return
	}
	id, err := m.svc.Store.SaveRun(m.game.ID(), m.gameState.Level, m.gameState.LevelCleared)
	if err != nil {
		logger.Warn("run not saved", "err", err)
		return
	}
	logger.Debug("run saved", "id", id)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".triplestack", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.svc.logger().Warn("screenshot dir", "err", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))

	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.svc.logger().Warn("screenshot not saved", "err", err)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// BackToMenu reports whether the player left the game with the back key.
func (m Model) BackToMenu() bool {
	return m.back
}

// Run starts the Bubble Tea program with the given game.
// It returns true when the player asked to go back to the menu.
func Run(game registry.Game, svc Services, cfg core.RuntimeConfig) (bool, error) {
	model := NewModel(game, svc, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(Model)
	return ok && m.BackToMenu(), nil
}
