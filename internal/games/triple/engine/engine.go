package engine

import (
	"math/rand"
)

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Rules     Rules
	Rand      *rand.Rand
	Scheduler Scheduler
	Renderer  Renderer
	Cover     CoverFunc
	Area      AreaMetrics
}

// DefaultArea is used when no AreaMetrics is configured.
var DefaultArea = FixedArea{W: 520, H: 520}

// Engine runs one player's game. It is not safe for concurrent use: all calls,
// including scheduled continuations, must come from a single goroutine.
type Engine struct {
	rules    Rules
	rng      *rand.Rand
	sched    Scheduler
	renderer Renderer
	cover    CoverFunc
	area     AreaMetrics
	gen      *Generator

	state GameState

	// epoch invalidates settle continuations left over from a previous level.
	epoch int
}

// New creates an engine. Call StartLevel or Load before using it.
func New(opts Options) *Engine {
	e := &Engine{
		rules:    opts.Rules,
		rng:      opts.Rand,
		sched:    opts.Scheduler,
		renderer: opts.Renderer,
		cover:    opts.Cover,
		area:     opts.Area,
	}
	if e.rules.Slots == 0 {
		e.rules = DefaultRules()
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(1))
	}
	if e.sched == nil {
		e.sched = ImmediateScheduler{}
	}
	if e.renderer == nil {
		e.renderer = NopRenderer{}
	}
	if e.cover == nil {
		e.cover = DistanceCover(e.rules.CardSize, e.rules.CoverRatio)
	}
	if e.area == nil {
		e.area = DefaultArea
	}
	e.gen = NewGenerator(e.rules, e.rng, e.cover)
	e.state = NewState(1, Stack{}, e.rules, 0, 0)
	return e
}

// Rules returns the ruleset in use.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Cover returns the cover predicate in use.
func (e *Engine) Cover() CoverFunc {
	return e.cover
}

// State returns a copy of the current state.
func (e *Engine) State() GameState {
	return e.state.Clone()
}

// View returns the live state for read-only use by renderers.
// Callers must not modify it.
func (e *Engine) View() *GameState {
	return &e.state
}

// SetRenderer replaces the event sink.
func (e *Engine) SetRenderer(r Renderer) {
	if r == nil {
		r = NopRenderer{}
	}
	e.renderer = r
}

// StartLevel discards the current stack and generates level from scratch.
// Quotas are reset; any pending settle step is abandoned.
func (e *Engine) StartLevel(level int) {
	if level < 1 {
		level = 1
	}
	w, h := e.area.AreaSize()
	stack := e.gen.Generate(level, w, h)
	e.install(NewState(level, stack, e.rules, w, h))
}

// Restart goes back to level 1.
func (e *Engine) Restart() {
	e.StartLevel(1)
}

// NextLevel continues with the following level after a win.
// It returns false and does nothing unless the current level is won.
func (e *Engine) NextLevel() bool {
	if e.state.Status != Won {
		return false
	}
	e.StartLevel(e.state.Level + 1)
	return true
}

// Load installs a prepared state, for example a hand-built stack.
// Locks are recomputed; counters are taken as given.
func (e *Engine) Load(s GameState) {
	if s.Buffer.capacity == 0 {
		s.Buffer = NewBuffer(e.rules.Slots)
	}
	e.install(s)
}

func (e *Engine) install(s GameState) {
	e.epoch++
	e.state = s
	RecomputeLocks(&e.state.Stack, e.cover)

	all := make([]Ref, 0, e.state.Stack.Len())
	e.state.Stack.Each(func(c *Card) { all = append(all, c.Ref()) })
	e.notify(Event{Kind: EventCardsAdded, Refs: all})
	e.notify(Event{Kind: EventLocksUpdated})
	e.notify(Event{Kind: EventBufferChanged, Refs: e.state.Buffer.Refs()})
}

func (e *Engine) notify(ev Event) {
	e.renderer.Notify(ev)
}

// gate rejects every mutating entry point while an elimination settles or
// after the level ended.
func (e *Engine) gate() Reason {
	if e.state.Processing {
		return ReasonBusy
	}
	if e.state.Status != InProgress {
		return ReasonFinished
	}
	return ReasonNone
}

// Select moves the card at (layer, index) into the buffer.
func (e *Engine) Select(layer, index int) SelectionResult {
	ref := Ref{Layer: layer, Index: index}
	res := SelectionResult{Ref: ref, Slot: -1}

	if r := e.gate(); r != ReasonNone {
		res.Outcome = declined(r)
		return res
	}
	c := e.state.Stack.Card(ref)
	if c == nil {
		res.Outcome = declined(ReasonNotFound)
		return res
	}

	switch {
	case c.Matched():
		res.Outcome = declined(ReasonAlreadyMatched)
	case c.Locked:
		res.Outcome = declined(ReasonLocked)
	case c.Obstacle:
		res.Outcome = declined(ReasonObstacle)
	case c.ClickCount >= c.MaxClicks:
		res.Outcome = declined(ReasonClickLimit)
	case c.Status == Held:
		res.Outcome = declined(ReasonHeld)
	case e.state.Buffer.Full():
		res.Outcome = declined(ReasonBufferFull)
	}
	if res.Reason != ReasonNone {
		return res
	}

	c.ClickCount++
	c.Status = Held
	res.Slot = e.state.Buffer.push(ref)
	res.Outcome = accepted
	e.notify(Event{Kind: EventCardHeld, Refs: []Ref{ref}})
	e.notify(Event{Kind: EventBufferChanged, Refs: e.state.Buffer.Refs()})

	if slots := e.state.bufferTriple(); slots != nil {
		res.Matched = e.eliminate(slots)
		return res
	}
	e.checkStatus()
	return res
}

// ReturnFromBuffer sends the card in the given slot back to the board.
// The click count is kept, so the card is only selectable again while it has
// clicks left.
func (e *Engine) ReturnFromBuffer(slot int) ReturnResult {
	if r := e.gate(); r != ReasonNone {
		return ReturnResult{Outcome: declined(r)}
	}
	ref, ok := e.state.Buffer.removeAt(slot)
	if !ok {
		return ReturnResult{Outcome: declined(ReasonNotFound)}
	}
	if c := e.state.Stack.Card(ref); c != nil {
		c.Status = Hidden
	}
	e.notify(Event{Kind: EventCardsReturned, Refs: []Ref{ref}})
	e.notify(Event{Kind: EventBufferChanged, Refs: e.state.Buffer.Refs()})
	e.checkStatus()
	return ReturnResult{Outcome: accepted, Ref: ref}
}

// eliminate retires the cards in the given buffer slots and schedules the
// settle step. Nothing else is accepted until the settle step ran.
func (e *Engine) eliminate(slots []int) []Ref {
	e.state.Processing = true

	refs := make([]Ref, 0, len(slots))
	for _, slot := range slots {
		ref, _ := e.state.Buffer.At(slot)
		if c := e.state.Stack.Card(ref); c != nil {
			c.Status = Matched
		}
		refs = append(refs, ref)
	}
	e.state.Buffer.removeSlots(slots)
	e.state.Remaining -= len(refs)

	e.notify(Event{Kind: EventCardsMatched, Refs: refs})
	e.notify(Event{Kind: EventBufferChanged, Refs: e.state.Buffer.Refs()})

	epoch := e.epoch
	e.sched.After(e.rules.SettleDelay, func() {
		if epoch != e.epoch {
			return
		}
		e.settle()
	})
	return refs
}

func (e *Engine) settle() {
	RecomputeLocks(&e.state.Stack, e.cover)
	e.state.Processing = false
	e.notify(Event{Kind: EventLocksUpdated})

	if slots := e.state.bufferTriple(); slots != nil {
		e.eliminate(slots)
		return
	}
	e.checkStatus()
}

// checkStatus records a terminal status the first time it is reached.
func (e *Engine) checkStatus() {
	if e.state.Status != InProgress {
		return
	}
	st := e.state.Evaluate()
	if st == InProgress {
		return
	}
	e.state.Status = st
	e.notify(Event{Kind: EventStatusChanged, Status: st})
}

// Status returns the recorded level status.
func (e *Engine) Status() Status {
	return e.state.Status
}
