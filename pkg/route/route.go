package route

import (
	"errors"
	"fmt"

	"github.com/matzehuels/canvaskit/pkg/geom"
)

var (
	// ErrDegenerate is returned when both anchors coincide and no route with
	// a positive length can be built.
	ErrDegenerate = errors.New("source and destination anchors coincide")

	// ErrTooShort is returned by Validate for routes with fewer than two points.
	ErrTooShort = errors.New("route needs at least two points")

	// ErrNotOrthogonal is returned by Validate when a segment is not axis-aligned.
	ErrNotOrthogonal = errors.New("route segment is not axis-aligned")

	// ErrZeroLength is returned by Validate for repeated consecutive points.
	ErrZeroLength = errors.New("route contains a zero-length segment")

	// ErrEndpointMismatch is returned by Validate when the route does not
	// start and end at the anchors.
	ErrEndpointMismatch = errors.New("route does not start and end at the anchors")
)

// Endpoint describes one end of a connection.
type Endpoint struct {
	Point     geom.Point     // Anchor on the shape border
	Direction geom.Direction // Side of the shape the anchor sits on
	Bounds    geom.Rect      // Absolute bounds of the owning shape (may be empty)
}

// Router computes a route between two endpoints.
type Router interface {
	Route(src, dst Endpoint) ([]geom.Point, error)
}

// RouterFunc adapts a function to the Router interface.
type RouterFunc func(src, dst Endpoint) ([]geom.Point, error)

// Route calls f(src, dst).
func (f RouterFunc) Route(src, dst Endpoint) ([]geom.Point, error) { return f(src, dst) }

// Validate checks the router output contract for a route between src and dst.
func Validate(pts []geom.Point, src, dst geom.Point) error {
	if len(pts) < 2 {
		return ErrTooShort
	}
	if !pts[0].Eq(src) || !pts[len(pts)-1].Eq(dst) {
		return ErrEndpointMismatch
	}
	for i := 1; i < len(pts); i++ {
		switch geom.OrientationOf(pts[i-1], pts[i]) {
		case geom.Degenerate:
			return fmt.Errorf("%w at %d", ErrZeroLength, i)
		case geom.Oblique:
			return fmt.Errorf("%w: %v -> %v", ErrNotOrthogonal, pts[i-1], pts[i])
		}
	}
	return nil
}

// Simplify removes repeated points and interior points that continue
// straight on in the same direction. Points where the route reverses are
// kept so the reversal stays visible to callers.
func Simplify(pts []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1].Eq(p) {
			continue
		}
		out = append(out, p)
		for len(out) >= 3 {
			n := len(out)
			a, b, c := out[n-3], out[n-2], out[n-1]
			d1, ok1 := geom.DirectionOf(a, b)
			d2, ok2 := geom.DirectionOf(b, c)
			if !ok1 || !ok2 || d1 != d2 {
				break
			}
			out[n-2] = c
			out = out[:n-1]
		}
	}
	return out
}

// Bends counts the direction changes along a route.
func Bends(pts []geom.Point) int {
	bends := 0
	for i := 2; i < len(pts); i++ {
		d1, ok1 := geom.DirectionOf(pts[i-2], pts[i-1])
		d2, ok2 := geom.DirectionOf(pts[i-1], pts[i])
		if ok1 && ok2 && d1 != d2 {
			bends++
		}
	}
	return bends
}

// Translate returns a copy of pts shifted by d.
func Translate(pts []geom.Point, d geom.Point) []geom.Point {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = p.Add(d)
	}
	return out
}
