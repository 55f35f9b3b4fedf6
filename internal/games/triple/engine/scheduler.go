package engine

import (
	"sort"
	"time"
)

// Scheduler runs a continuation after a delay. The engine uses it for the
// settle step after an elimination. Continuations must run on the same
// goroutine that drives the engine.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// ImmediateScheduler runs continuations synchronously, ignoring the delay.
type ImmediateScheduler struct{}

// After implements Scheduler.
func (ImmediateScheduler) After(_ time.Duration, fn func()) { fn() }

type pendingCall struct {
	at  time.Duration
	seq int
	fn  func()
}

// ManualScheduler queues continuations on a virtual clock that only moves
// when the owner calls Advance. A fixed-tick game loop advances it once per
// tick.
type ManualScheduler struct {
	now     time.Duration
	seq     int
	pending []pendingCall
}

// After implements Scheduler.
func (m *ManualScheduler) After(d time.Duration, fn func()) {
	m.seq++
	m.pending = append(m.pending, pendingCall{at: m.now + d, seq: m.seq, fn: fn})
}

// Advance moves the clock forward by d and runs every due continuation in
// deadline order, including ones scheduled by continuations that fall due
// within the same window. It returns how many ran.
func (m *ManualScheduler) Advance(d time.Duration) int {
	target := m.now + d
	ran := 0
	for {
		next, ok := m.popDue(target)
		if !ok {
			break
		}
		if next.at > m.now {
			m.now = next.at
		}
		next.fn()
		ran++
	}
	m.now = target
	return ran
}

// Flush runs everything pending regardless of deadline.
func (m *ManualScheduler) Flush() int {
	ran := 0
	for len(m.pending) > 0 {
		latest := m.now
		for _, p := range m.pending {
			if p.at > latest {
				latest = p.at
			}
		}
		ran += m.Advance(latest - m.now)
	}
	return ran
}

// Pending returns the number of queued continuations.
func (m *ManualScheduler) Pending() int {
	return len(m.pending)
}

// Now returns the virtual clock.
func (m *ManualScheduler) Now() time.Duration {
	return m.now
}

func (m *ManualScheduler) popDue(deadline time.Duration) (pendingCall, bool) {
	if len(m.pending) == 0 {
		return pendingCall{}, false
	}
	sort.Slice(m.pending, func(i, j int) bool {
		if m.pending[i].at != m.pending[j].at {
			return m.pending[i].at < m.pending[j].at
		}
		return m.pending[i].seq < m.pending[j].seq
	})
	if m.pending[0].at > deadline {
		return pendingCall{}, false
	}
	next := m.pending[0]
	m.pending = m.pending[1:]
	return next, true
}
