package geom

import "math"

// Orientation classifies a straight segment.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
	// Oblique segments only occur in user-defined routes.
	Oblique
	// Degenerate marks a zero-length segment.
	Degenerate
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case Oblique:
		return "oblique"
	default:
		return "degenerate"
	}
}

// OrientationOf classifies the segment from a to b.
func OrientationOf(a, b Point) Orientation {
	sameX := math.Abs(a.X-b.X) <= Epsilon
	sameY := math.Abs(a.Y-b.Y) <= Epsilon
	switch {
	case sameX && sameY:
		return Degenerate
	case sameY:
		return Horizontal
	case sameX:
		return Vertical
	default:
		return Oblique
	}
}

// AxisAligned reports whether the segment from a to b is horizontal or vertical.
func AxisAligned(a, b Point) bool {
	o := OrientationOf(a, b)
	return o == Horizontal || o == Vertical
}

// Cross returns the crossing point of two perpendicular axis-aligned
// segments a1-a2 and b1-b2. Only a horizontal/vertical pair can cross; the
// crossing must lie strictly inside both segments, so segments that merely
// touch at an endpoint or corner do not count.
func Cross(a1, a2, b1, b2 Point) (Point, bool) {
	oa, ob := OrientationOf(a1, a2), OrientationOf(b1, b2)
	switch {
	case oa == Horizontal && ob == Vertical:
		return crossHV(a1, a2, b1, b2)
	case oa == Vertical && ob == Horizontal:
		return crossHV(b1, b2, a1, a2)
	}
	return Point{}, false
}

func crossHV(h1, h2, v1, v2 Point) (Point, bool) {
	x, y := v1.X, h1.Y
	if !strictlyBetween(x, h1.X, h2.X) || !strictlyBetween(y, v1.Y, v2.Y) {
		return Point{}, false
	}
	return Point{x, y}, true
}

func strictlyBetween(v, a, b float64) bool {
	lo, hi := math.Min(a, b), math.Max(a, b)
	return v > lo+Epsilon && v < hi-Epsilon
}

// SegmentCrossesRect reports whether the axis-aligned segment a-b passes
// through the interior of r. Touching the border does not count.
func SegmentCrossesRect(a, b Point, r Rect) bool {
	if r.IsEmpty() {
		return false
	}
	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	if maxX <= r.X+Epsilon || minX >= r.X+r.W-Epsilon {
		return false
	}
	if maxY <= r.Y+Epsilon || minY >= r.Y+r.H-Epsilon {
		return false
	}
	return true
}
