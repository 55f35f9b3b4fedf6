package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/triplestack/internal/leaderboard"
	"github.com/vovakirdan/triplestack/internal/registry"
	"github.com/vovakirdan/triplestack/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [game]",
	Short: "Show the deepest runs for a game",
	Long: `Display the deepest runs for the specified game along with the
personal best and, when Redis is configured, the global record.
Without a game, shows a summary of every game played.

Examples:
  triplestack scores
  triplestack scores triple
  triplestack scores triple_legacy --limit 20
  triplestack scores triple --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of runs to show")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete the game's run history and personal best")
}

func runScores(_ *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening runs database: %v", err)
	}
	defer store.Close()

	if len(args) == 0 {
		printSummary(store)
		return
	}

	gameID := args[0]
	if !registry.Exists(gameID) {
		fail("unknown game %q\nRun 'triplestack list' to see available games.", gameID)
	}

	if flagScoresClear {
		if err := store.ClearRuns(gameID); err != nil {
			fail("%v", err)
		}
		fmt.Printf("Cleared run history for %s.\n", gameID)
		return
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fail("creating game: %v", err)
	}

	runs, err := store.TopRuns(gameID, flagScoresLimit)
	if err != nil {
		fail("retrieving runs: %v", err)
	}

	fmt.Printf("Deepest runs - %s\n", game.Title())
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'triplestack play %s' to set the first record!\n", gameID)
		return
	}

	fmt.Printf("  %-4s  %-6s  %-8s  %s\n", "Rank", "Level", "Result", "Date")
	fmt.Printf("  %-4s  %-6s  %-8s  %s\n", "----", "-----", "------", "----")

	for i, r := range runs {
		result := "lost"
		if r.Cleared {
			result = "cleared"
		}
		fmt.Printf("  %-4d  %-6d  %-8s  %s\n", i+1, r.Level, result, r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if best, err := store.ReadBest(gameID); err == nil {
		fmt.Printf("Personal best: level %d\n", best)
	}
	if stats, err := store.GameStats(gameID); err == nil {
		fmt.Printf("Runs: %d  Levels cleared: %d  Average level: %.1f\n", stats.Runs, stats.Cleared, stats.AvgLevel)
	}
	printGlobal(gameID)
}

// printGlobal prints the shared record when a leaderboard is configured.
func printGlobal(gameID string) {
	if flagRedisAddr == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	global, err := leaderboard.Open(ctx, gameID, redisOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return
	}
	defer global.Close()

	best, err := global.ReadBest()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return
	}
	fmt.Printf("Global best: level %d\n", best)
}

// printSummary prints one line per game that has runs.
func printSummary(store *storage.Store) {
	all, err := store.AllGameStats()
	if err != nil {
		fail("retrieving stats: %v", err)
	}
	if len(all) == 0 {
		fmt.Println("No runs recorded yet.")
		return
	}

	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Printf("  %-14s  %5s  %7s  %7s  %s\n", "Game", "Runs", "Cleared", "Deepest", "Last played")
	fmt.Printf("  %-14s  %5s  %7s  %7s  %s\n", "----", "----", "-------", "-------", "-----------")
	for _, id := range ids {
		s := all[id]
		fmt.Printf("  %-14s  %5d  %7d  %7d  %s\n", id, s.Runs, s.Cleared, s.HighestLevel, s.LastPlayed.Local().Format("2006-01-02 15:04"))
	}
}
