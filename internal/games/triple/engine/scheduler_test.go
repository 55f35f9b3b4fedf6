package engine

import (
	"testing"
	"time"
)

func TestManualSchedulerOrder(t *testing.T) {
	var m ManualScheduler
	var got []string

	m.After(300*time.Millisecond, func() { got = append(got, "late") })
	m.After(100*time.Millisecond, func() { got = append(got, "early") })
	m.After(100*time.Millisecond, func() { got = append(got, "early-2") })

	if ran := m.Advance(50 * time.Millisecond); ran != 0 {
		t.Fatalf("nothing is due yet, ran %d", ran)
	}
	if ran := m.Advance(50 * time.Millisecond); ran != 2 {
		t.Fatalf("ran = %d, expected 2", ran)
	}
	if m.Pending() != 1 {
		t.Errorf("pending = %d, expected 1", m.Pending())
	}
	m.Advance(time.Second)

	want := []string{"early", "early-2", "late"}
	if len(got) != len(want) {
		t.Fatalf("got %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %s, expected %s", i, got[i], want[i])
		}
	}
}

func TestManualSchedulerChained(t *testing.T) {
	var m ManualScheduler
	calls := 0
	m.After(10*time.Millisecond, func() {
		calls++
		m.After(10*time.Millisecond, func() { calls++ })
	})

	if ran := m.Advance(25 * time.Millisecond); ran != 2 {
		t.Errorf("chained continuation due in the same window should run, ran %d", ran)
	}
	if calls != 2 {
		t.Errorf("calls = %d, expected 2", calls)
	}
}

func TestManualSchedulerFlush(t *testing.T) {
	var m ManualScheduler
	calls := 0
	m.After(time.Hour, func() { calls++ })
	m.After(time.Minute, func() { calls++ })

	if ran := m.Flush(); ran != 2 || calls != 2 {
		t.Errorf("Flush ran %d, calls %d", ran, calls)
	}
	if m.Now() < time.Hour {
		t.Errorf("clock = %s, expected at least an hour", m.Now())
	}
}

func TestImmediateScheduler(t *testing.T) {
	ran := false
	ImmediateScheduler{}.After(time.Hour, func() { ran = true })
	if !ran {
		t.Error("ImmediateScheduler should run the continuation synchronously")
	}
}
