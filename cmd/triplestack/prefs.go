package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/triplestack/internal/prefs"
)

var flagPrefsReset bool

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or reset remembered menu choices",
	Long: `The menu remembers the last game, difficulty and start level you
picked. This command shows them, or forgets them with --reset.

Examples:
  triplestack prefs
  triplestack prefs --reset`,
	Args: cobra.NoArgs,
	Run:  runPrefs,
}

func init() {
	prefsCmd.Flags().BoolVar(&flagPrefsReset, "reset", false, "Restore the defaults")
}

func runPrefs(_ *cobra.Command, _ []string) {
	store, err := prefs.Open(prefs.AppName)
	if err != nil {
		fail("%v", err)
	}

	if flagPrefsReset {
		if err := store.Reset(); err != nil {
			fail("%v", err)
		}
		fmt.Println("Preferences reset.")
	}

	p, err := store.Load()
	if err != nil {
		fail("%v", err)
	}
	fmt.Printf("  Game:        %s\n", p.Game)
	fmt.Printf("  Difficulty:  %s\n", p.Preset)
	fmt.Printf("  Start level: %d\n", p.Level)
}
