package engine

import (
	"errors"
	"fmt"
	"sync"
)

// ScoreStore persists the best level reached. The engine never calls it on
// its own; CheckRecords does, on behalf of the presentation layer.
type ScoreStore interface {
	ReadBest() (int, error)
	WriteBest(level int) error
}

// RecordEvent tells which records a cleared level broke.
type RecordEvent struct {
	Level            int
	PreviousPersonal int
	PreviousGlobal   int
	NewPersonal      bool
	NewGlobal        bool
}

// Any reports whether any record was broken.
func (r RecordEvent) Any() bool {
	return r.NewPersonal || r.NewGlobal
}

// CheckRecords compares a cleared level with the personal and global bests
// and writes the ones it beats. Either store may be nil. A failing store does
// not stop the other from being checked; the failures are joined.
func CheckRecords(level int, personal, global ScoreStore) (RecordEvent, error) {
	ev := RecordEvent{Level: level}
	var errs []error

	if personal != nil {
		best, beaten, err := beat(personal, level)
		ev.PreviousPersonal, ev.NewPersonal = best, beaten
		if err != nil {
			errs = append(errs, fmt.Errorf("personal best: %w", err))
		}
	}
	if global != nil {
		best, beaten, err := beat(global, level)
		ev.PreviousGlobal, ev.NewGlobal = best, beaten
		if err != nil {
			errs = append(errs, fmt.Errorf("global best: %w", err))
		}
	}
	return ev, errors.Join(errs...)
}

func beat(store ScoreStore, level int) (int, bool, error) {
	best, err := store.ReadBest()
	if err != nil {
		return 0, false, err
	}
	if level <= best {
		return best, false, nil
	}
	if err := store.WriteBest(level); err != nil {
		return best, false, err
	}
	return best, true, nil
}

// MemoryStore is an in-process ScoreStore.
type MemoryStore struct {
	mu   sync.Mutex
	best int
}

// ReadBest implements ScoreStore.
func (m *MemoryStore) ReadBest() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.best, nil
}

// WriteBest implements ScoreStore.
func (m *MemoryStore) WriteBest(level int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if level > m.best {
		m.best = level
	}
	return nil
}
