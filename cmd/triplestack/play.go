package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/triplestack/internal/config"
	"github.com/vovakirdan/triplestack/internal/core"
	"github.com/vovakirdan/triplestack/internal/games/triple"
	"github.com/vovakirdan/triplestack/internal/platform/tui"
	"github.com/vovakirdan/triplestack/internal/registry"
)

var (
	flagConfig     string
	flagDifficulty string
	flagLevel      int
)

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Play a game",
	Long: `Start playing the specified game (default: triple).

Controls:
  Arrows/WASD  - Move the cursor between uncovered cards
  Enter/Space  - Pick the card under the cursor
  1-7          - Put a held card back on the board
  H            - Hint: highlight a pair you can pick
  F            - Refresh: shuffle the remaining cards
  X            - Remove: return every held card to the board
  N            - Next level (after clearing one)
  R            - Restart from the start level
  P            - Pause
  B/Esc        - Back to the menu
  Q/Ctrl+C     - Quit

Difficulty options:
  easy   - One extra slot, refresh and removal; half the obstacles
  normal - The ruleset as written
  hard   - One fewer refresh and removal; more obstacles
  fixed  - Levels never grow

Examples:
  triplestack play
  triplestack play triple_legacy
  triplestack play --difficulty easy --level 4
  triplestack play --config ./my-rules.yaml --seed 7`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to a ruleset YAML layered over the built-in one")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().IntVar(&flagLevel, "level", 1, "Level to start on")
}

// terminalConfig builds a runtime config from the terminal size and global flags.
func terminalConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// applyRulesetFlags passes --config and --difficulty to the game package.
func applyRulesetFlags() {
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		fail("%v", err)
	}
	triple.SetConfigPath(flagConfig)
	triple.SetPreset(preset)
}

func runPlay(_ *cobra.Command, args []string) {
	gameID := triple.IDClassic
	if len(args) == 1 {
		gameID = args[0]
	}
	if !registry.Exists(gameID) {
		fail("unknown game %q\nRun 'triplestack list' to see available games.", gameID)
	}
	if flagLevel < 1 {
		fail("--level must be at least 1")
	}

	applyRulesetFlags()
	triple.SetStartLevel(flagLevel)

	logger, closer, err := newLogger()
	if err != nil {
		fail("%v", err)
	}
	defer closer.Close()

	game, err := registry.Create(gameID)
	if err != nil {
		fail("creating game: %v", err)
	}

	svc := openServices(logger)
	_, runErr := tui.Run(game, quietDuringTUI(svc), terminalConfig())
	closeServices(svc)

	if runErr != nil {
		fail("running game: %v", runErr)
	}
}
