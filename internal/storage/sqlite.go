// Package storage provides SQLite-based persistence for finished levels and
// personal bests. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/triplestack/internal/games/triple/engine"
)

// ErrNoScore is returned when a requested run does not exist.
var ErrNoScore = errors.New("storage: no such run")

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// RunEntry is one finished level: cleared (won) or lost.
type RunEntry struct {
	ID        string
	GameID    string
	Level     int
	Cleared   bool
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			level INTEGER NOT NULL,
			cleared INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_game_id ON runs(game_id);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(game_id, level DESC);

		CREATE TABLE IF NOT EXISTS bests (
			game_id TEXT PRIMARY KEY,
			level INTEGER NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished level and returns the new run's ID.
func (s *Store) SaveRun(gameID string, level int, cleared bool) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO runs (id, game_id, level, cleared) VALUES (?, ?, ?, ?)",
		id, gameID, level, cleared,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}
	return id, nil
}

// Run retrieves a single run by ID. Returns ErrNoScore if it does not exist.
func (s *Store) Run(id string) (RunEntry, error) {
	row := s.db.QueryRow(
		`SELECT id, game_id, level, cleared, created_at FROM runs WHERE id = ?`,
		id,
	)
	e, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunEntry{}, fmt.Errorf("%w: %s", ErrNoScore, id)
	}
	if err != nil {
		return RunEntry{}, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return e, nil
}

// TopRuns retrieves the deepest N runs for the given game.
// Ties go to the earlier run.
func (s *Store) TopRuns(gameID string, limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, game_id, level, cleared, created_at
		 FROM runs
		 WHERE game_id = ?
		 ORDER BY level DESC, cleared DESC, created_at ASC
		 LIMIT ?`,
		gameID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return collectRuns(rows)
}

// AllRuns retrieves the most recent runs across every game.
func (s *Store) AllRuns(limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, game_id, level, cleared, created_at
		 FROM runs
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return collectRuns(rows)
}

// HighestLevel returns the deepest level reached in any run of the game.
// Returns 0 if no runs exist.
func (s *Store) HighestLevel(gameID string) (int, error) {
	var level sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(level) FROM runs WHERE game_id = ?",
		gameID,
	).Scan(&level)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query highest level: %w", err)
	}

	if !level.Valid {
		return 0, nil
	}
	return int(level.Int64), nil
}

// ClearRuns deletes all runs and the personal best for the given game.
func (s *Store) ClearRuns(gameID string) error {
	if _, err := s.db.Exec("DELETE FROM runs WHERE game_id = ?", gameID); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM bests WHERE game_id = ?", gameID); err != nil {
		return fmt.Errorf("storage: cannot clear best: %w", err)
	}
	return nil
}

// ReadBest returns the personal best level for the game, 0 when unset.
func (s *Store) ReadBest(gameID string) (int, error) {
	var level int
	err := s.db.QueryRow("SELECT level FROM bests WHERE game_id = ?", gameID).Scan(&level)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("storage: cannot read best: %w", err)
	}
	return level, nil
}

// WriteBest stores the personal best level for the game.
// A lower value than the stored one is ignored.
func (s *Store) WriteBest(gameID string, level int) error {
	_, err := s.db.Exec(
		`INSERT INTO bests (game_id, level) VALUES (?, ?)
		 ON CONFLICT(game_id) DO UPDATE SET
		   level = excluded.level,
		   updated_at = CURRENT_TIMESTAMP
		 WHERE excluded.level > bests.level`,
		gameID, level,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write best: %w", err)
	}
	return nil
}

// Best returns the personal best for one game as an engine.ScoreStore.
func (s *Store) Best(gameID string) engine.ScoreStore {
	return bestStore{store: s, gameID: gameID}
}

type bestStore struct {
	store  *Store
	gameID string
}

func (b bestStore) ReadBest() (int, error)    { return b.store.ReadBest(b.gameID) }
func (b bestStore) WriteBest(level int) error { return b.store.WriteBest(b.gameID, level) }

var _ engine.ScoreStore = bestStore{}

// GameStats contains aggregated statistics for a game.
type GameStats struct {
	GameID       string
	Runs         int
	Cleared      int
	HighestLevel int
	AvgLevel     float64
	LastPlayed   time.Time
}

// GameStats retrieves aggregated statistics for a specific game.
func (s *Store) GameStats(gameID string) (*GameStats, error) {
	stats := &GameStats{GameID: gameID}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(cleared), 0), COALESCE(MAX(level), 0),
		        COALESCE(AVG(level), 0), MAX(created_at)
		 FROM runs WHERE game_id = ?`,
		gameID,
	).Scan(&stats.Runs, &stats.Cleared, &stats.HighestLevel, &stats.AvgLevel, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// AllGameStats retrieves statistics for every game that has been played.
func (s *Store) AllGameStats() (map[string]*GameStats, error) {
	rows, err := s.db.Query(
		`SELECT game_id, COUNT(*), SUM(cleared), MAX(level), AVG(level), MAX(created_at)
		 FROM runs
		 GROUP BY game_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all games stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*GameStats)
	for rows.Next() {
		var st GameStats
		var lastPlayed any
		if err := rows.Scan(&st.GameID, &st.Runs, &st.Cleared, &st.HighestLevel, &st.AvgLevel, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.GameID] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunEntry, error) {
	var e RunEntry
	var createdAt any
	if err := row.Scan(&e.ID, &e.GameID, &e.Level, &e.Cleared, &createdAt); err != nil {
		return RunEntry{}, err
	}
	e.CreatedAt = parseTime(createdAt)
	return e, nil
}

func collectRuns(rows *sql.Rows) ([]RunEntry, error) {
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		e, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
