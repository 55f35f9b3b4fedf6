package engine

import "math"

// Hint looks for three selectable cards of the same symbol. Symbols are tried
// in the order they are first met walking the stack bottom-up, and the first
// three cards of the first complete group are returned. Hints are free.
func (e *Engine) Hint() HintResult {
	if r := e.gate(); r != ReasonNone {
		return HintResult{Outcome: declined(r)}
	}

	var order []string
	groups := make(map[string][]Ref)
	e.state.Stack.Each(func(c *Card) {
		if !c.Selectable() {
			return
		}
		if _, seen := groups[c.Type]; !seen {
			order = append(order, c.Type)
		}
		groups[c.Type] = append(groups[c.Type], c.Ref())
	})

	for _, t := range order {
		if refs := groups[t]; len(refs) >= 3 {
			res := HintResult{Outcome: accepted, Type: t, Refs: refs[:3]}
			e.notify(Event{Kind: EventHighlight, Refs: res.Refs})
			return res
		}
	}
	return HintResult{Outcome: declined(ReasonNoCandidates)}
}

// Refresh scatters the unlocked cards of the top layer over the whole area.
// It needs at least two such cards and consumes one refresh only when it
// actually moves them. Locks are left as they are. New positions stay inside
// both the area the level was generated for and the current area.
func (e *Engine) Refresh() RefreshResult {
	if r := e.gate(); r != ReasonNone {
		return RefreshResult{Outcome: declined(r)}
	}
	if e.state.RefreshLeft <= 0 {
		return RefreshResult{Outcome: declined(ReasonNoQuota)}
	}

	top := e.state.Stack.Top()
	if top < 0 {
		return RefreshResult{Outcome: declined(ReasonNoCandidates)}
	}
	cards := e.state.Stack.Layers[top].Cards
	var eligible []*Card
	for i := range cards {
		c := &cards[i]
		if !c.Matched() && !c.Locked && !c.Obstacle {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) < 2 {
		return RefreshResult{Outcome: declined(ReasonNoCandidates)}
	}

	e.state.RefreshLeft--

	size := e.rules.CardSize
	minDist := size + e.rules.RefreshSpacing
	areaW, areaH := e.state.AreaW, e.state.AreaH
	if w, h := e.area.AreaSize(); w > 0 && h > 0 {
		// The area may have shrunk since the level was generated
		areaW, areaH = math.Min(areaW, w), math.Min(areaH, h)
	}
	spanX := math.Max(areaW-size, 0)
	spanY := math.Max(areaH-size, 0)

	placed := make([][2]float64, 0, len(eligible))
	moved := make([]Ref, 0, len(eligible))
	for _, c := range eligible {
		var x, y float64
		for attempt := 0; attempt < e.rules.RefreshAttempts; attempt++ {
			x = math.Floor(e.rng.Float64() * spanX)
			y = math.Floor(e.rng.Float64() * spanY)
			if !tooClose(placed, x, y, minDist) {
				break
			}
		}
		placed = append(placed, [2]float64{x, y})
		c.X, c.Y = x, y
		moved = append(moved, c.Ref())
	}

	e.notify(Event{Kind: EventPositionsChanged, Refs: moved})
	e.checkStatus()
	return RefreshResult{Outcome: accepted, Moved: moved}
}

func tooClose(placed [][2]float64, x, y, minDist float64) bool {
	for _, p := range placed {
		if math.Hypot(p[0]-x, p[1]-y) < minDist {
			return true
		}
	}
	return false
}

// RemoveAll empties the buffer, putting every held card back on the board.
// It consumes one removal and declines when the buffer is already empty.
func (e *Engine) RemoveAll() RemoveResult {
	if r := e.gate(); r != ReasonNone {
		return RemoveResult{Outcome: declined(r)}
	}
	if e.state.RemoveLeft <= 0 {
		return RemoveResult{Outcome: declined(ReasonNoQuota)}
	}
	if e.state.Buffer.Empty() {
		return RemoveResult{Outcome: declined(ReasonNoCandidates)}
	}

	e.state.RemoveLeft--
	returned := e.state.Buffer.clear()
	for _, ref := range returned {
		if c := e.state.Stack.Card(ref); c != nil {
			c.Status = Hidden
		}
	}

	e.notify(Event{Kind: EventCardsReturned, Refs: returned})
	e.notify(Event{Kind: EventBufferChanged})
	RecomputeLocks(&e.state.Stack, e.cover)
	e.notify(Event{Kind: EventLocksUpdated})
	e.checkStatus()
	return RemoveResult{Outcome: accepted, Returned: returned}
}
