package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/triplestack/internal/config"
	"github.com/vovakirdan/triplestack/internal/games/triple"
	"github.com/vovakirdan/triplestack/internal/registry"
)

var flagRulesYAML bool

var rulesCmd = &cobra.Command{
	Use:   "rules [game]",
	Short: "Show the rules of a game",
	Long: `Print the rules of a game (default: triple) with the numbers that
apply under the chosen difficulty. With --yaml, dump the effective ruleset
instead; the output is a valid --config file to start customizing from.

Examples:
  triplestack rules
  triplestack rules triple_legacy --difficulty hard
  triplestack rules --yaml > ~/.triplestack/configs/classic.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRules,
}

func init() {
	rulesCmd.Flags().BoolVar(&flagRulesYAML, "yaml", false, "Dump the effective ruleset as YAML")
	rulesCmd.Flags().StringVar(&flagConfig, "config", "", "Path to a ruleset YAML layered over the built-in one")
	rulesCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

func runRules(_ *cobra.Command, args []string) {
	gameID := triple.IDClassic
	if len(args) == 1 {
		gameID = args[0]
	}
	if !registry.Exists(gameID) {
		fail("unknown game %q\nRun 'triplestack list' to see available games.", gameID)
	}
	name, ok := triple.RulesetFor(gameID)
	if !ok {
		fail("%q has no ruleset", gameID)
	}

	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		fail("%v", err)
	}
	cfg, err := config.Load(name, flagConfig)
	if err != nil {
		fail("%v", err)
	}
	config.ApplyPreset(&cfg, preset)

	if flagRulesYAML {
		data, err := config.Marshal(cfg)
		if err != nil {
			fail("%v", err)
		}
		os.Stdout.Write(data)
		return
	}

	fmt.Printf("%s (%s, %s)\n\n", cfg.Title, name, preset)
	for _, line := range cfg.Messages.Rules {
		fmt.Printf("  - %s\n", line)
	}
	fmt.Println()
	fmt.Printf("  Holding slots:       %d\n", cfg.Slots)
	fmt.Printf("  Picks per card:      %d\n", cfg.MaxClicksPerCard)
	fmt.Printf("  Refreshes per level: %d\n", cfg.RefreshQuotaPerLevel)
	fmt.Printf("  Removes per level:   %d\n", cfg.RemoveQuotaPerLevel)
	fmt.Printf("  Card types:          %d\n", len(cfg.CardTypes))
	fmt.Println()
	fmt.Printf("Difficulty %s: %s\n", preset, preset.Describe())
}
