package engine

import "fmt"

// CardStatus tracks where a card is in its life cycle.
type CardStatus uint8

const (
	Hidden  CardStatus = iota // On the board, not held
	Held                      // Referenced by the holding buffer, still part of its layer
	Matched                   // Retired by an elimination
)

func (s CardStatus) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Held:
		return "held"
	case Matched:
		return "matched"
	default:
		return "unknown"
	}
}

// Card is one tile of the stack. X and Y are the top-left corner in area units.
type Card struct {
	ID         string
	Type       string
	Layer      int
	Index      int
	X, Y       float64
	Status     CardStatus
	Locked     bool
	ClickCount int
	MaxClicks  int
	Obstacle   bool
}

// Matched reports whether the card has been eliminated.
func (c *Card) Matched() bool {
	return c.Status == Matched
}

// Selectable reports whether the card may be sent to the holding buffer.
func (c *Card) Selectable() bool {
	return c.Status == Hidden && !c.Locked && !c.Obstacle && c.ClickCount < c.MaxClicks
}

// Ref returns the card's address in the stack.
func (c *Card) Ref() Ref {
	return Ref{Layer: c.Layer, Index: c.Index}
}

// Ref addresses a card by layer and position within the layer.
type Ref struct {
	Layer int
	Index int
}

func (r Ref) String() string {
	return fmt.Sprintf("%d/%d", r.Layer, r.Index)
}

func cardID(layer, index int) string {
	return fmt.Sprintf("card-%d-%d", layer, index)
}

// Layer is an ordered group of cards sharing a layer index.
type Layer struct {
	Index int
	Cards []Card
}

// Stack is the ordered sequence of layers, index 0 at the bottom.
type Stack struct {
	Layers []Layer
}

// Top returns the index of the topmost layer, or -1 for an empty stack.
func (s *Stack) Top() int {
	return len(s.Layers) - 1
}

// Card returns a pointer to the referenced card, or nil when out of range.
func (s *Stack) Card(ref Ref) *Card {
	if ref.Layer < 0 || ref.Layer >= len(s.Layers) {
		return nil
	}
	cards := s.Layers[ref.Layer].Cards
	if ref.Index < 0 || ref.Index >= len(cards) {
		return nil
	}
	return &cards[ref.Index]
}

// Each calls fn for every card, bottom layer first.
func (s *Stack) Each(fn func(c *Card)) {
	for li := range s.Layers {
		cards := s.Layers[li].Cards
		for ci := range cards {
			fn(&cards[ci])
		}
	}
}

// Len returns the total number of cards, obstacles included.
func (s *Stack) Len() int {
	n := 0
	for _, l := range s.Layers {
		n += len(l.Cards)
	}
	return n
}

// Clearable returns the number of non-obstacle cards.
func (s *Stack) Clearable() int {
	n := 0
	s.Each(func(c *Card) {
		if !c.Obstacle {
			n++
		}
	})
	return n
}

// Clone returns a deep copy of the stack.
func (s *Stack) Clone() Stack {
	out := Stack{Layers: make([]Layer, len(s.Layers))}
	for i, l := range s.Layers {
		out.Layers[i] = Layer{Index: l.Index, Cards: append([]Card(nil), l.Cards...)}
	}
	return out
}
