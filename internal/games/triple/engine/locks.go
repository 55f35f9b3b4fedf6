package engine

// RecomputeLocks refreshes the Locked flag of every card in the stack.
// Cards on the top layer are always unlocked. Any other card is locked while
// an unmatched card on a higher layer covers it; held cards still count as
// covering. Every layer is recomputed on each call, so clearing a card
// unlocks everything it was the last cover for, however deep.
func RecomputeLocks(s *Stack, covers CoverFunc) {
	top := s.Top()
	for li := top; li >= 0; li-- {
		cards := s.Layers[li].Cards
		for ci := range cards {
			c := &cards[ci]
			c.Locked = li != top && coveredFrom(s, li+1, c, covers)
		}
	}
}

// Blockers returns the unmatched cards above ref that cover it.
func Blockers(s *Stack, ref Ref, covers CoverFunc) []Ref {
	c := s.Card(ref)
	if c == nil {
		return nil
	}
	var out []Ref
	for ui := ref.Layer + 1; ui < len(s.Layers); ui++ {
		upper := s.Layers[ui].Cards
		for k := range upper {
			if !upper[k].Matched() && covers(&upper[k], c) {
				out = append(out, upper[k].Ref())
			}
		}
	}
	return out
}

func coveredFrom(s *Stack, from int, c *Card, covers CoverFunc) bool {
	for ui := from; ui < len(s.Layers); ui++ {
		upper := s.Layers[ui].Cards
		for k := range upper {
			if !upper[k].Matched() && covers(&upper[k], c) {
				return true
			}
		}
	}
	return false
}
