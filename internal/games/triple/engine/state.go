package engine

// GameState is everything the engine mutates during a level.
type GameState struct {
	Level       int
	Stack       Stack
	Buffer      Buffer
	Remaining   int // Clearable cards not yet matched
	Total       int // Clearable cards at level start
	Processing  bool
	RefreshLeft int
	RemoveLeft  int
	Status      Status

	// AreaW and AreaH are the playable area the stack was generated for.
	AreaW, AreaH float64
}

// NewState builds the state for a freshly generated stack. Quotas come from
// the rules; counters are derived from the stack.
func NewState(level int, stack Stack, rules Rules, areaW, areaH float64) GameState {
	total := stack.Clearable()
	return GameState{
		Level:       level,
		Stack:       stack,
		Buffer:      NewBuffer(rules.Slots),
		Remaining:   total,
		Total:       total,
		RefreshLeft: rules.RefreshQuotaPerLevel,
		RemoveLeft:  rules.RemoveQuotaPerLevel,
		AreaW:       areaW,
		AreaH:       areaH,
	}
}

// Clone returns a deep copy of the state.
func (s *GameState) Clone() GameState {
	out := *s
	out.Stack = s.Stack.Clone()
	out.Buffer = Buffer{capacity: s.Buffer.capacity, refs: s.Buffer.Refs()}
	return out
}

// Cleared returns how many clearable cards have been matched.
func (s *GameState) Cleared() int {
	return s.Total - s.Remaining
}

// Held returns the cards currently in the buffer, in slot order.
func (s *GameState) Held() []Card {
	out := make([]Card, 0, s.Buffer.Len())
	for _, ref := range s.Buffer.refs {
		if c := s.Stack.Card(ref); c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// Selectable returns every card that Select would currently accept,
// ignoring buffer capacity.
func (s *GameState) Selectable() []Ref {
	var out []Ref
	s.Stack.Each(func(c *Card) {
		if c.Selectable() {
			out = append(out, c.Ref())
		}
	})
	return out
}

// bufferTriple returns the slots of the first three buffer entries of the
// first symbol, in buffer order, that appears at least three times.
func (s *GameState) bufferTriple() []int {
	var order []string
	slots := make(map[string][]int)
	for i, ref := range s.Buffer.refs {
		c := s.Stack.Card(ref)
		if c == nil {
			continue
		}
		if _, seen := slots[c.Type]; !seen {
			order = append(order, c.Type)
		}
		slots[c.Type] = append(slots[c.Type], i)
	}
	for _, t := range order {
		if len(slots[t]) >= 3 {
			return slots[t][:3]
		}
	}
	return nil
}

func (s *GameState) anySelectable() bool {
	for li := range s.Stack.Layers {
		cards := s.Stack.Layers[li].Cards
		for ci := range cards {
			if cards[ci].Selectable() {
				return true
			}
		}
	}
	return false
}

// Evaluate reports the status the current state implies, without recording it.
// A full buffer is only fatal when it holds no triple and nothing on the board
// can be selected.
func (s *GameState) Evaluate() Status {
	if s.Remaining <= 0 {
		return Won
	}
	if s.Buffer.Full() && s.bufferTriple() == nil && !s.anySelectable() {
		return Lost
	}
	return InProgress
}

// Stuck reports whether a level that Evaluate still calls InProgress can no
// longer be won: nothing on the board can be picked, no match is pending and
// no held card could be picked again after going back to the board.
func (s *GameState) Stuck() bool {
	if s.Remaining <= 0 || s.Processing || s.anySelectable() || s.bufferTriple() != nil {
		return false
	}
	for _, ref := range s.Buffer.refs {
		if c := s.Stack.Card(ref); c != nil && !c.Locked && c.ClickCount < c.MaxClicks {
			return false
		}
	}
	return true
}
