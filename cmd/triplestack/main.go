// triplestack is a layered tile-matching puzzle for the terminal.
//
// Usage:
//
//	triplestack list              - List available rulesets
//	triplestack play [game]       - Play a game (default: triple)
//	triplestack menu              - Start menu to pick a game interactively
//	triplestack serve             - Start SSH server for remote play
//	triplestack scores <game>     - Show the deepest runs for a game
//	triplestack rules [game]      - Show the rules or dump the ruleset YAML
//	triplestack prefs             - Show or reset remembered menu choices
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 30)
//	--seed <value>      - Set RNG seed for reproducible levels
//	--db <path>         - Set database path (default: ~/.triplestack/runs.db)
//	--redis <addr>      - Redis address for the global record
//	--log-file <path>   - Write logs to a file
//	--log-level <level> - debug, info, warn or error
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/triplestack/internal/games/triple"
	"github.com/vovakirdan/triplestack/internal/leaderboard"
	"github.com/vovakirdan/triplestack/internal/platform/tui"
	"github.com/vovakirdan/triplestack/internal/prefs"
	"github.com/vovakirdan/triplestack/internal/storage"
)

const envRedisPassword = "TRIPLESTACK_REDIS_PASSWORD"

var (
	// Global flags
	flagFPS       int
	flagSeed      int64
	flagDBPath    string
	flagRedisAddr string
	flagLogFile   string
	flagLogLevel  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "triplestack",
	Short: "Triple Stack - clear stacked cards three at a time",
	Long: `Triple Stack is a layered tile-matching puzzle for the terminal.

Cards lie in overlapping layers. Pick an uncovered card to move it into a
holding slot; three alike in the slots clear. Fill every slot without a
match and the run is over.

Available commands:
  list     - Show all available rulesets
  play     - Play a game directly
  menu     - Interactive game picker menu
  serve    - Start SSH server for remote play
  scores   - View the deepest runs
  rules    - Show the rules of a ruleset
  prefs    - Show or reset remembered menu choices

Examples:
  triplestack play
  triplestack play triple_legacy --level 3
  triplestack menu
  triplestack serve --ssh :2222
  triplestack scores triple`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.triplestack/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagRedisAddr, "redis", os.Getenv(leaderboard.EnvAddr),
		"Redis address for the global record (env "+leaderboard.EnvAddr+")")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(prefsCmd)
}

// newLogger builds the command logger. Without --log-file it writes to stderr.
// The returned closer releases the log file.
func newLogger() (*log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}

	var w io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)
	if flagLogFile != "" {
		path := expandHome(flagLogFile)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		w, closer = f, f
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "triplestack",
		Level:           level,
	})
	return logger, closer, nil
}

// expandHome replaces a leading ~ with the home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// openServices opens the runs database, the global leaderboard and the
// preferences. Each one that fails is logged and left out.
func openServices(logger *log.Logger) tui.Services {
	svc := tui.Services{Logger: logger}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("runs database unavailable, history is off", "path", flagDBPath, "err", err)
	} else {
		svc.Store = store
	}

	if flagRedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		global, err := leaderboard.Open(ctx, triple.IDClassic, redisOptions())
		cancel()
		if err != nil {
			logger.Warn("global leaderboard unavailable", "addr", flagRedisAddr, "err", err)
		} else {
			svc.Global = global
		}
	}

	p, err := prefs.Open(prefs.AppName)
	if err != nil {
		logger.Warn("preferences unavailable, using defaults", "err", err)
		p = prefs.Memory()
	}
	svc.Prefs = p

	return svc
}

func redisOptions() leaderboard.Options {
	return leaderboard.Options{
		Addr:     flagRedisAddr,
		Password: os.Getenv(envRedisPassword),
	}
}

// closeServices releases what openServices opened.
func closeServices(svc tui.Services) {
	if svc.Store != nil {
		if err := svc.Store.Close(); err != nil {
			svc.Logger.Warn("closing runs database", "err", err)
		}
	}
	if svc.Global != nil {
		if err := svc.Global.Close(); err != nil {
			svc.Logger.Warn("closing leaderboard", "err", err)
		}
	}
}

// quietDuringTUI keeps log lines off the terminal while the alt screen is up,
// unless they go to a file.
func quietDuringTUI(svc tui.Services) tui.Services {
	if flagLogFile == "" {
		svc.Logger = log.New(io.Discard)
	}
	return svc
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
