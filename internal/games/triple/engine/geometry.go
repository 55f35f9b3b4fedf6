package engine

import "math"

// CoverFunc decides whether upper visually covers lower.
// It must be pure: the lock resolver calls it for every pair of cards in
// different layers and relies on identical answers for identical inputs.
type CoverFunc func(upper, lower *Card) bool

// DistanceCover treats lower as covered when the two card centers are closer
// than ratio * size/2.
func DistanceCover(size, ratio float64) CoverFunc {
	threshold := size / 2 * ratio
	return func(upper, lower *Card) bool {
		ux, uy := center(upper, size)
		lx, ly := center(lower, size)
		return math.Hypot(ux-lx, uy-ly) < threshold
	}
}

// BoxCover treats lower as covered when the card squares overlap at all.
// It is the strict alternative to DistanceCover.
func BoxCover(size float64) CoverFunc {
	return func(upper, lower *Card) bool {
		return math.Abs(upper.X-lower.X) < size && math.Abs(upper.Y-lower.Y) < size
	}
}

func center(c *Card, size float64) (float64, float64) {
	return c.X + size/2, c.Y + size/2
}

// AreaMetrics supplies the playable area size at level start.
type AreaMetrics interface {
	AreaSize() (w, h float64)
}

// FixedArea is an AreaMetrics with constant dimensions.
type FixedArea struct {
	W, H float64
}

// AreaSize implements AreaMetrics.
func (a FixedArea) AreaSize() (float64, float64) {
	return a.W, a.H
}
