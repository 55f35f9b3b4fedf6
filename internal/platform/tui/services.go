package tui

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/triplestack/internal/games/triple"
	"github.com/vovakirdan/triplestack/internal/games/triple/engine"
	"github.com/vovakirdan/triplestack/internal/leaderboard"
	"github.com/vovakirdan/triplestack/internal/prefs"
	"github.com/vovakirdan/triplestack/internal/registry"
	"github.com/vovakirdan/triplestack/internal/storage"
)

// Services are the stores shared by the menus and the game model.
// Any field may be nil; the feature backed by it is then skipped.
type Services struct {
	Store  *storage.Store
	Global *leaderboard.GlobalStore
	Prefs  *prefs.Store
	Logger *log.Logger
}

func (s Services) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}

// recordAware is implemented by games that report cleared levels for records.
type recordAware interface {
	SetRecordChecker(triple.RecordChecker)
}

// attachRecords connects a game to the personal and global best stores.
func (s Services) attachRecords(game registry.Game) {
	ra, ok := game.(recordAware)
	if !ok {
		return
	}
	ra.SetRecordChecker(s.recordChecker(game.ID()))
}

func (s Services) recordChecker(gameID string) triple.RecordChecker {
	logger := s.logger().With("game", gameID)

	return triple.RecordCheckerFunc(func(level int) (engine.RecordEvent, error) {
		// Typed nils must not reach the interface
		var personal, global engine.ScoreStore
		if s.Store != nil {
			personal = s.Store.Best(gameID)
		}
		if s.Global != nil {
			global = s.Global.ForGame(gameID)
		}

		ev, err := engine.CheckRecords(level, personal, global)
		if err != nil {
			logger.Warn("record check failed", "level", level, "err", err)
		}
		if ev.Any() {
			logger.Info("new record", "level", level, "personal", ev.NewPersonal, "global", ev.NewGlobal)
		}
		return ev, err
	})
}

// loadPrefs returns the saved preferences or the defaults.
func (s Services) loadPrefs() prefs.Preferences {
	if s.Prefs == nil {
		return prefs.Defaults()
	}
	p, err := s.Prefs.Load()
	if err != nil {
		s.logger().Warn("preferences not loaded", "err", err)
		return prefs.Defaults()
	}
	return p
}

func (s Services) savePrefs(p prefs.Preferences) {
	if s.Prefs == nil {
		return
	}
	if err := s.Prefs.Save(p); err != nil {
		s.logger().Warn("preferences not saved", "err", err)
	}
}
