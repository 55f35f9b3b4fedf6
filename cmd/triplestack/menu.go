package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/triplestack/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with a game picker menu",
	Long: `Start in interactive menu mode.

Pick a ruleset, then the start level and difficulty. Your last choices are
remembered. Leaving a game with B or Esc returns to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Left/Right   - Change level or difficulty
  Enter/Space  - Select
  Tab          - Scoreboard
  Q            - Quit

Examples:
  triplestack menu
  triplestack menu --fps 60
  triplestack menu --db ./runs.db`,
	Run: runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&flagConfig, "config", "", "Path to a ruleset YAML layered over the built-in one")
}

func runMenu(_ *cobra.Command, _ []string) {
	applyRulesetFlags()

	logger, closer, err := newLogger()
	if err != nil {
		fail("%v", err)
	}
	defer closer.Close()

	svc := openServices(logger)
	defer closeServices(svc)
	tuiSvc := quietDuringTUI(svc)

	cfg := terminalConfig()

	for {
		lastGame := ""
		if svc.Prefs != nil {
			if p, err := svc.Prefs.Load(); err == nil {
				lastGame = p.Game
			}
		}

		menuResult, err := tui.RunMenu(cfg, lastGame)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		cfg = menuResult.Config

		if menuResult.Quit {
			return
		}

		if menuResult.WantsScoreboard {
			goBack, sbErr := tui.RunScoreboard(tuiSvc, cfg.ScreenW, cfg.ScreenH)
			if sbErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", sbErr)
			}
			if goBack {
				continue
			}
			return
		}

		setup, err := tui.RunSetup(menuResult.GameID, tuiSvc, cfg.ScreenW, cfg.ScreenH)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if setup.Quit {
			return
		}
		if setup.Back {
			continue
		}

		game, err := tui.StartGame(menuResult.GameID, setup.Setup)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
			continue
		}

		// Fresh levels for each game unless a seed was given
		if flagSeed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}

		back, err := tui.Run(game, tuiSvc, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		}
		if !back {
			return
		}
	}
}
