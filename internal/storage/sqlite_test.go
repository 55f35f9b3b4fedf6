package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreOpenExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := Open("~/.triplestack/runs.db")
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(home, ".triplestack", "runs.db")); err != nil {
		t.Errorf("expected database under HOME: %v", err)
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveRun("triple", 3, false)
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("run ID %q is not a UUID: %v", id, err)
	}

	store.SaveRun("triple", 1, true)
	store.SaveRun("triple", 5, true)
	store.SaveRun("triple_legacy", 9, false)

	runs, err := store.TopRuns("triple", 10)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}
	if runs[0].Level != 5 || runs[1].Level != 3 || runs[2].Level != 1 {
		t.Errorf("Runs not ordered by level: %+v", runs)
	}
	if !runs[0].Cleared || runs[1].Cleared {
		t.Errorf("Cleared flag not stored: %+v", runs)
	}

	got, err := store.Run(id)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if got.Level != 3 || got.GameID != "triple" || got.CreatedAt.IsZero() {
		t.Errorf("Run() = %+v", got)
	}
}

func TestStoreRunMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Run(uuid.NewString())
	if !errors.Is(err, ErrNoScore) {
		t.Errorf("err = %v, expected ErrNoScore", err)
	}
}

func TestStoreTopRunsLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 1; i <= 5; i++ {
		store.SaveRun("triple", i, true)
	}

	runs, err := store.TopRuns("triple", 3)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs with limit, got %d", len(runs))
	}
	if runs[0].Level != 5 || runs[1].Level != 4 || runs[2].Level != 3 {
		t.Errorf("Runs not in expected order: %+v", runs)
	}
}

func TestStoreAllRuns(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun("triple", 1, true)
	store.SaveRun("triple_legacy", 2, false)

	runs, err := store.AllRuns(0)
	if err != nil {
		t.Fatalf("AllRuns() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	// Same-second inserts fall back to insertion order, newest first.
	if runs[0].GameID != "triple_legacy" {
		t.Errorf("Expected newest run first, got %+v", runs)
	}
}

func TestStoreHighestLevel(t *testing.T) {
	store := openTestStore(t)

	high, err := store.HighestLevel("triple")
	if err != nil {
		t.Fatalf("HighestLevel() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected 0 for a game with no runs, got %d", high)
	}

	store.SaveRun("triple", 2, true)
	store.SaveRun("triple", 7, false)
	store.SaveRun("triple", 4, true)

	high, err = store.HighestLevel("triple")
	if err != nil {
		t.Fatalf("HighestLevel() failed: %v", err)
	}
	if high != 7 {
		t.Errorf("Expected highest level 7, got %d", high)
	}
}

func TestStoreBestOnlyGrows(t *testing.T) {
	store := openTestStore(t)
	best := store.Best("triple")

	level, err := best.ReadBest()
	if err != nil || level != 0 {
		t.Fatalf("ReadBest() on empty store = %d, %v", level, err)
	}

	tests := []struct {
		write int
		want  int
	}{
		{3, 3},
		{5, 5},
		{2, 5},
		{5, 5},
		{6, 6},
	}
	for _, tc := range tests {
		if err := best.WriteBest(tc.write); err != nil {
			t.Fatalf("WriteBest(%d) failed: %v", tc.write, err)
		}
		got, err := best.ReadBest()
		if err != nil {
			t.Fatalf("ReadBest() failed: %v", err)
		}
		if got != tc.want {
			t.Errorf("after WriteBest(%d): best = %d, want %d", tc.write, got, tc.want)
		}
	}

	other, _ := store.Best("triple_legacy").ReadBest()
	if other != 0 {
		t.Errorf("bests should be per game, got %d", other)
	}
}

func TestStoreClearRuns(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun("triple", 4, true)
	store.SaveRun("triple_legacy", 2, true)
	store.WriteBest("triple", 4)

	if err := store.ClearRuns("triple"); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}

	runs, _ := store.TopRuns("triple", 10)
	if len(runs) != 0 {
		t.Errorf("Expected no runs after clear, got %d", len(runs))
	}
	if best, _ := store.ReadBest("triple"); best != 0 {
		t.Errorf("Expected best reset, got %d", best)
	}
	if others, _ := store.TopRuns("triple_legacy", 10); len(others) != 1 {
		t.Errorf("Clearing one game should keep the others, got %d", len(others))
	}
}

func TestStoreGameStats(t *testing.T) {
	store := openTestStore(t)

	empty, err := store.GameStats("triple")
	if err != nil {
		t.Fatalf("GameStats() failed: %v", err)
	}
	if empty.Runs != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("Expected empty stats, got %+v", empty)
	}

	store.SaveRun("triple", 1, true)
	store.SaveRun("triple", 2, true)
	store.SaveRun("triple", 3, false)
	store.SaveRun("triple_legacy", 1, false)

	st, err := store.GameStats("triple")
	if err != nil {
		t.Fatalf("GameStats() failed: %v", err)
	}
	if st.Runs != 3 || st.Cleared != 2 || st.HighestLevel != 3 || st.AvgLevel != 2 {
		t.Errorf("GameStats() = %+v", st)
	}
	if st.LastPlayed.IsZero() {
		t.Error("LastPlayed should be set")
	}

	all, err := store.AllGameStats()
	if err != nil {
		t.Fatalf("AllGameStats() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected stats for 2 games, got %d", len(all))
	}
	if all["triple_legacy"].Runs != 1 || all["triple_legacy"].Cleared != 0 {
		t.Errorf("legacy stats = %+v", all["triple_legacy"])
	}
}
