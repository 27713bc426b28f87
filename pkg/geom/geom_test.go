package geom

import (
	"testing"
)

func TestNearestTieBreak(t *testing.T) {
	// Midpoints of a 100x100 square in Top, Right, Bottom, Left order.
	mids := []Point{{50, 0}, {100, 50}, {50, 100}, {0, 50}}

	tests := []struct {
		name   string
		p      Point
		metric Metric
		want   int
	}{
		{"near top", Pt(50, 10), SquaredDistance, 0},
		{"near right", Pt(95, 50), SquaredDistance, 1},
		{"near bottom", Pt(40, 99), SquaredDistance, 2},
		{"near left", Pt(2, 60), SquaredDistance, 3},
		{"center ties to top", Pt(50, 50), SquaredDistance, 0},
		{"top-right corner ties to top", Pt(100, 0), SquaredDistance, 0},
		{"bottom-left corner ties to bottom", Pt(0, 100), ManhattanDistance, 2},
		{"manhattan near right", Pt(90, 45), ManhattanDistance, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Nearest(mids, tt.p, tt.metric); got != tt.want {
				t.Errorf("Nearest(%v) = %d, want %d", tt.p, got, tt.want)
			}
		})
	}

	if got := Nearest(nil, Pt(0, 0), SquaredDistance); got != -1 {
		t.Errorf("Nearest(nil) = %d, want -1", got)
	}
}

func TestMetrics(t *testing.T) {
	a, b := Pt(0, 0), Pt(3, 4)
	if got := SquaredDistance(a, b); got != 25 {
		t.Errorf("SquaredDistance = %v, want 25", got)
	}
	if got := ManhattanDistance(a, b); got != 7 {
		t.Errorf("ManhattanDistance = %v, want 7", got)
	}
	if got := PathLength([]Point{a, Pt(3, 0), b}); got != 7 {
		t.Errorf("PathLength = %v, want 7", got)
	}
}

func TestCross(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 Point
		want           Point
		ok             bool
	}{
		{"plus", Pt(0, 50), Pt(100, 50), Pt(50, 0), Pt(50, 100), Pt(50, 50), true},
		{"plus reversed args", Pt(50, 100), Pt(50, 0), Pt(100, 50), Pt(0, 50), Pt(50, 50), true},
		{"parallel horizontal", Pt(0, 0), Pt(10, 0), Pt(0, 5), Pt(10, 5), Point{}, false},
		{"touching endpoint", Pt(0, 50), Pt(50, 50), Pt(50, 0), Pt(50, 100), Point{}, false},
		{"corner", Pt(0, 0), Pt(10, 0), Pt(10, 0), Pt(10, 10), Point{}, false},
		{"miss", Pt(0, 0), Pt(10, 0), Pt(20, -5), Pt(20, 5), Point{}, false},
		{"oblique", Pt(0, 0), Pt(10, 10), Pt(0, 10), Pt(10, 0), Point{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Cross(tt.a1, tt.a2, tt.b1, tt.b2)
			if ok != tt.ok {
				t.Fatalf("Cross ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Eq(tt.want) {
				t.Errorf("Cross = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrientationOf(t *testing.T) {
	tests := []struct {
		a, b Point
		want Orientation
	}{
		{Pt(0, 0), Pt(10, 0), Horizontal},
		{Pt(0, 0), Pt(0, -10), Vertical},
		{Pt(0, 0), Pt(3, 4), Oblique},
		{Pt(1, 1), Pt(1, 1), Degenerate},
	}
	for _, tt := range tests {
		if got := OrientationOf(tt.a, tt.b); got != tt.want {
			t.Errorf("OrientationOf(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDirection(t *testing.T) {
	for _, d := range Directions {
		if d.Opposite().Opposite() != d {
			t.Errorf("%v.Opposite().Opposite() = %v", d, d.Opposite().Opposite())
		}
		parsed, err := ParseDirection(d.String())
		if err != nil || parsed != d {
			t.Errorf("ParseDirection(%q) = %v, %v", d.String(), parsed, err)
		}
	}

	if _, err := ParseDirection("north"); err == nil {
		t.Error("ParseDirection(north) = nil error, want error")
	}

	if d, ok := DirectionOf(Pt(0, 0), Pt(0, -5)); !ok || d != Top {
		t.Errorf("DirectionOf up = %v, %v, want TOP, true", d, ok)
	}
	if _, ok := DirectionOf(Pt(0, 0), Pt(1, 1)); ok {
		t.Error("DirectionOf oblique ok = true, want false")
	}
}

func TestRect(t *testing.T) {
	r := R(0, 0, 100, 50)
	if !r.Contains(Pt(100, 50)) {
		t.Error("Contains(bottom-right corner) = false, want true")
	}
	if r.ContainsStrict(Pt(100, 25)) {
		t.Error("ContainsStrict(border) = true, want false")
	}

	in := r.Inset(10)
	if in != R(10, 10, 80, 30) {
		t.Errorf("Inset(10) = %+v", in)
	}
	if tiny := R(0, 0, 10, 10).Inset(8); tiny.W != 0 || tiny.H != 0 {
		t.Errorf("Inset larger than half size = %+v, want zero size", tiny)
	}

	if !SegmentCrossesRect(Pt(-10, 25), Pt(110, 25), r) {
		t.Error("SegmentCrossesRect through middle = false, want true")
	}
	if SegmentCrossesRect(Pt(100, 0), Pt(100, 50), r) {
		t.Error("SegmentCrossesRect along border = true, want false")
	}

	u := R(0, 0, 10, 10).Union(R(20, 20, 5, 5))
	if u != R(0, 0, 25, 25) {
		t.Errorf("Union = %+v", u)
	}
}
