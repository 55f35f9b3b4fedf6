package engine

import (
	"fmt"
	"hash/fnv"
)

// Snapshot hashes the observable state for determinism tests and replay checks.
func (s *GameState) Snapshot() uint64 {
	h := fnv.New64a()

	fmt.Fprintf(h, "L:%d;R:%d/%d;P:%v;Q:%d:%d;S:%d;",
		s.Level, s.Remaining, s.Total, s.Processing, s.RefreshLeft, s.RemoveLeft, s.Status)

	fmt.Fprintf(h, "B:")
	for _, ref := range s.Buffer.refs {
		fmt.Fprintf(h, "%d:%d,", ref.Layer, ref.Index)
	}

	fmt.Fprintf(h, ";C:")
	s.Stack.Each(func(c *Card) {
		fmt.Fprintf(h, "%s:%s:%g:%g:%d:%v:%d:%v,",
			c.ID, c.Type, c.X, c.Y, c.Status, c.Locked, c.ClickCount, c.Obstacle)
	})

	return h.Sum64()
}

// Snapshot hashes the engine's current state.
func (e *Engine) Snapshot() uint64 {
	return e.state.Snapshot()
}
