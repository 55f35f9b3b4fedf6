package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/triplestack/internal/config"
	"github.com/vovakirdan/triplestack/internal/games/triple"
	"github.com/vovakirdan/triplestack/internal/prefs"
	"github.com/vovakirdan/triplestack/internal/registry"
)

// maxStartLevel caps the level selector when no run history is available.
const maxStartLevel = 99

// Selector rows
const (
	setupRowLevel = iota
	setupRowPreset
	setupRowStart
	setupRows
)

// SetupModel lets users choose the start level and difficulty preset.
// Levels beyond the highest cleared one plus one stay locked.
type SetupModel struct {
	gameID    string
	title     string
	row       int
	level     int
	maxLevel  int
	presets   []config.DifficultyPreset
	presetIdx int
	width     int
	height    int
	keyMapper *KeyMapper
	embedded  bool
	chosen    bool
	quitting  bool
	back      bool
}

// NewSetupModel creates a selector for gameID preselected from saved preferences.
func NewSetupModel(gameID string, svc Services, width, height int) SetupModel {
	title := gameID
	for _, info := range registry.List() {
		if info.ID == gameID {
			title = info.Title
		}
	}

	maxLevel := maxStartLevel
	if svc.Store != nil {
		if best, err := svc.Store.ReadBest(gameID); err == nil {
			maxLevel = best + 1
		} else {
			svc.logger().Warn("personal best unavailable", "err", err)
		}
	}

	p := svc.loadPrefs()
	m := SetupModel{
		gameID:    gameID,
		title:     title,
		row:       setupRowStart,
		level:     min(max(p.Level, 1), maxLevel),
		maxLevel:  maxLevel,
		presets:   config.Presets(),
		width:     width,
		height:    height,
		keyMapper: NewKeyMapper(),
	}
	m.presetIdx = m.indexOf(config.DifficultyNormal)
	if preset, err := config.ParsePreset(p.Preset); err == nil {
		m.presetIdx = m.indexOf(preset)
	}
	return m
}

func (m SetupModel) indexOf(p config.DifficultyPreset) int {
	for i, preset := range m.presets {
		if preset == p {
			return i
		}
	}
	return 0
}

// Init initializes the model.
func (m SetupModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m SetupModel) done() tea.Cmd {
	if m.embedded {
		return nil
	}
	return tea.Quit
}

func (m SetupModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, m.done()
	case MenuActionBack:
		m.back = true
		return m, m.done()
	case MenuActionUp:
		m.row = (m.row + setupRows - 1) % setupRows
	case MenuActionDown:
		m.row = (m.row + 1) % setupRows
	case MenuActionLeft:
		m.adjust(-1)
	case MenuActionRight:
		m.adjust(1)
	case MenuActionSelect:
		m.chosen = true
		return m, m.done()
	}
	return m, nil
}

// adjust changes the value on the current row, wrapping around.
func (m *SetupModel) adjust(delta int) {
	switch m.row {
	case setupRowLevel:
		m.level += delta
		if m.level < 1 {
			m.level = m.maxLevel
		} else if m.level > m.maxLevel {
			m.level = 1
		}
	case setupRowPreset:
		n := len(m.presets)
		m.presetIdx = (m.presetIdx + delta + n) % n
	}
}

// Setup returns the current choices.
func (m SetupModel) Setup() triple.Setup {
	return triple.Setup{StartLevel: m.level, Preset: m.presets[m.presetIdx]}
}

// View renders the selector.
func (m SetupModel) View() string {
	if m.quitting {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerStyled(titleStyle, m.title, m.width))
	b.WriteString("\n\n")

	preset := m.presets[m.presetIdx]
	rows := []string{
		fmt.Sprintf("Start level   < %2d >  of %d", m.level, m.maxLevel),
		fmt.Sprintf("Difficulty    < %-6s >", preset),
		"Play",
	}
	for i, row := range rows {
		if i == m.row {
			b.WriteString(centerStyled(activeStyle, "> "+row, m.width))
		} else {
			b.WriteString(centerText("  "+row, m.width))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerStyled(dimStyle, preset.Describe(), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerStyled(dimStyle, "Up/Down: Row  |  Left/Right: Change  |  Enter: Play  |  Esc: Back", m.width))
	b.WriteString("\n")

	return b.String()
}

// SetupResult holds the outcome of the selector.
type SetupResult struct {
	Setup triple.Setup
	Back  bool
	Quit  bool
}

// result converts the final model state and remembers the choices.
func (m SetupModel) result(svc Services) SetupResult {
	switch {
	case m.quitting:
		return SetupResult{Quit: true}
	case m.back || !m.chosen:
		return SetupResult{Back: true}
	}

	s := m.Setup()
	svc.savePrefs(prefs.Preferences{Game: m.gameID, Preset: string(s.Preset), Level: s.StartLevel})
	return SetupResult{Setup: s}
}

// RunSetup runs the selector for gameID.
func RunSetup(gameID string, svc Services, width, height int) (SetupResult, error) {
	model := NewSetupModel(gameID, svc, width, height)

	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return SetupResult{}, err
	}

	m, ok := finalModel.(SetupModel)
	if !ok {
		return SetupResult{Quit: true}, nil
	}
	return m.result(svc), nil
}

// configurable is implemented by games that accept a per-instance setup.
type configurable interface {
	Configure(triple.Setup)
}

// configureGame applies s to games that support it.
func configureGame(game registry.Game, s triple.Setup) {
	if c, ok := game.(configurable); ok {
		c.Configure(s)
	}
}

// StartGame creates a game and applies the selector's choices to it.
func StartGame(gameID string, s triple.Setup) (registry.Game, error) {
	game, err := registry.Create(gameID)
	if err != nil {
		return nil, err
	}
	configureGame(game, s)
	return game, nil
}
