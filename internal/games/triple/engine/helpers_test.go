package engine

import (
	"math/rand"
	"testing"
)

// spot describes one card of a hand-built stack.
type spot struct {
	typ      string
	x, y     float64
	obstacle bool
}

func at(typ string, x, y float64) spot { return spot{typ: typ, x: x, y: y} }

func rock(x, y float64) spot { return spot{typ: "#", x: x, y: y, obstacle: true} }

// buildStack turns spots into a stack, bottom layer first.
func buildStack(maxClicks int, layers ...[]spot) Stack {
	s := Stack{}
	for li, spots := range layers {
		layer := Layer{Index: li}
		for ci, sp := range spots {
			layer.Cards = append(layer.Cards, Card{
				ID:        cardID(li, ci),
				Type:      sp.typ,
				Layer:     li,
				Index:     ci,
				X:         sp.x,
				Y:         sp.y,
				MaxClicks: maxClicks,
				Obstacle:  sp.obstacle,
			})
		}
		s.Layers = append(s.Layers, layer)
	}
	return s
}

// recorder collects engine events.
type recorder struct {
	events []Event
}

func (r *recorder) Notify(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) count(kind EventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder) last(kind EventKind) (Event, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Kind == kind {
			return r.events[i], true
		}
	}
	return Event{}, false
}

type fixture struct {
	eng   *Engine
	sched *ManualScheduler
	rec   *recorder
}

// newFixture builds an engine on a hand-built stack with a manual scheduler.
func newFixture(t *testing.T, rules Rules, stack Stack) fixture {
	t.Helper()
	sched := &ManualScheduler{}
	rec := &recorder{}
	eng := New(Options{
		Rules:     rules,
		Rand:      rand.New(rand.NewSource(7)),
		Scheduler: sched,
		Renderer:  rec,
		Area:      FixedArea{W: 1000, H: 1000},
	})
	eng.Load(NewState(1, stack, rules, 1000, 1000))
	return fixture{eng: eng, sched: sched, rec: rec}
}

func (f fixture) settle() {
	f.sched.Advance(f.eng.Rules().SettleDelay)
}

func (f fixture) card(t *testing.T, layer, index int) *Card {
	t.Helper()
	c := f.eng.View().Stack.Card(Ref{Layer: layer, Index: index})
	if c == nil {
		t.Fatalf("no card at %d/%d", layer, index)
	}
	return c
}

func mustSelect(t *testing.T, e *Engine, layer, index int) SelectionResult {
	t.Helper()
	res := e.Select(layer, index)
	if !res.Accepted {
		t.Fatalf("Select(%d, %d) declined with %s", layer, index, res.Reason)
	}
	return res
}

// spread returns n card positions far enough apart not to cover each other.
func spread(n int) [][2]float64 {
	out := make([][2]float64, n)
	for i := range out {
		out[i] = [2]float64{float64(i%8) * 100, float64(i/8) * 100}
	}
	return out
}

// flatRow builds a single-layer stack whose cards never overlap.
func flatRow(types ...string) []spot {
	pos := spread(len(types))
	out := make([]spot, len(types))
	for i, t := range types {
		out[i] = at(t, pos[i][0], pos[i][1])
	}
	return out
}
