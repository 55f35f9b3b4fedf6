package core

import "testing"

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Rect
		expected bool
	}{
		{"overlapping cards", NewRect(0, 0, 5, 3), NewRect(3, 1, 5, 3), true},
		{"side by side", NewRect(0, 0, 5, 3), NewRect(5, 0, 5, 3), false},
		{"stacked rows", NewRect(0, 0, 5, 3), NewRect(0, 3, 5, 3), false},
		{"contained", NewRect(0, 0, 20, 20), NewRect(5, 5, 5, 3), true},
		{"corner cell", NewRect(0, 0, 5, 3), NewRect(4, 2, 5, 3), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Intersects(tc.b); got != tc.expected {
				t.Errorf("Intersects() = %v, expected %v", got, tc.expected)
			}
			if got := tc.b.Intersects(tc.a); got != tc.expected {
				t.Errorf("Intersects() (reversed) = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 5, 3)

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"inside", 12, 11, true},
		{"top-left corner", 10, 10, true},
		{"right edge is exclusive", 15, 11, false},
		{"bottom edge is exclusive", 12, 13, false},
		{"outside left", 9, 11, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Contains(tc.x, tc.y); got != tc.expected {
				t.Errorf("Contains(%d, %d) = %v, expected %v", tc.x, tc.y, got, tc.expected)
			}
		})
	}
}

func TestRectCenterAndInset(t *testing.T) {
	r := NewRect(4, 2, 5, 3)

	if c := r.Center(); c != (Point{X: 6, Y: 3}) {
		t.Errorf("Center() = %+v, expected {6 3}", c)
	}

	in := r.Inset(1)
	if in != NewRect(5, 3, 3, 1) {
		t.Errorf("Inset(1) = %+v", in)
	}

	if in := r.Inset(5); in.W != 0 || in.H != 0 {
		t.Errorf("Inset(5) should collapse to zero size, got %+v", in)
	}
}

func TestPointDistSq(t *testing.T) {
	a := Point{X: 1, Y: 1}
	b := Point{X: 4, Y: 5}
	if d := a.DistSq(b); d != 25 {
		t.Errorf("DistSq = %d, expected 25", d)
	}
	if a.DistSq(b) != b.DistSq(a) {
		t.Error("DistSq should be symmetric")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tc := range tests {
		if got := Clamp(tc.val, tc.lo, tc.hi); got != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.lo, tc.hi, got, tc.expected)
		}
	}
}

func TestClampF(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected float64
	}{
		{5.5, 0.0, 10.0, 5.5},
		{-5.5, 0.0, 10.0, 0.0},
		{15.5, 0.0, 10.0, 10.0},
	}

	for _, tc := range tests {
		if got := ClampF(tc.val, tc.lo, tc.hi); got != tc.expected {
			t.Errorf("ClampF(%f, %f, %f) = %f, expected %f", tc.val, tc.lo, tc.hi, got, tc.expected)
		}
	}
}

func TestMinMaxAbs(t *testing.T) {
	if Min(5, 10) != 5 || Min(10, 5) != 5 {
		t.Error("Min should return the smaller value")
	}
	if Max(5, 10) != 10 || Max(10, 5) != 10 {
		t.Error("Max should return the larger value")
	}
	if Abs(-5) != 5 || Abs(5) != 5 || Abs(0) != 0 {
		t.Error("Abs returned a wrong value")
	}
}
