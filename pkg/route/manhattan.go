package route

import (
	"math"

	"github.com/matzehuels/canvaskit/pkg/geom"
)

// DefaultStub is the distance a route travels straight out of a port before
// it is allowed to turn.
const DefaultStub = 15.0

// Manhattan routes connections with axis-aligned segments and as few bends
// as the port directions allow.
type Manhattan struct {
	// Stub is the straight run out of each port. Zero means DefaultStub.
	Stub float64
}

// NewManhattan returns a Manhattan router with the given stub length.
func NewManhattan(stub float64) *Manhattan {
	return &Manhattan{Stub: stub}
}

type score struct {
	violations int
	crossings  int
	bends      int
	length     float64
}

func (s score) less(o score) bool {
	if s.violations != o.violations {
		return s.violations < o.violations
	}
	if s.crossings != o.crossings {
		return s.crossings < o.crossings
	}
	if s.bends != o.bends {
		return s.bends < o.bends
	}
	return s.length < o.length-geom.Epsilon
}

// Route implements Router.
func (m *Manhattan) Route(src, dst Endpoint) ([]geom.Point, error) {
	if src.Point.Eq(dst.Point) {
		return nil, ErrDegenerate
	}
	stub := m.Stub
	if stub <= 0 {
		stub = DefaultStub
	}

	var (
		best      []geom.Point
		bestScore score
	)
	for _, s := range []float64{stub, 0} {
		for _, c := range candidates(src, dst, s) {
			pts := Simplify(c)
			if len(pts) < 2 {
				continue
			}
			sc := evaluate(pts, src, dst)
			if best == nil || sc.less(bestScore) {
				best, bestScore = pts, sc
			}
		}
	}
	if best == nil {
		return nil, ErrDegenerate
	}
	return best, nil
}

// candidates returns raw routes s0 -> s1 -> middle -> d1 -> d0, where s1 and
// d1 are the anchors pushed out by the stub. The middle leg always runs
// through one channel, either a vertical line x=cx or a horizontal line y=cy.
func candidates(src, dst Endpoint, stub float64) [][]geom.Point {
	s0, d0 := src.Point, dst.Point
	s1 := s0.Add(src.Direction.Vector().Scale(stub))
	d1 := d0.Add(dst.Direction.Vector().Scale(stub))

	area := src.Bounds.Union(dst.Bounds).Union(geom.Bounds([]geom.Point{s1, d1}))
	xs := []float64{s1.X, d1.X, (s1.X + d1.X) / 2, area.X - stub, area.X + area.W + stub}
	ys := []float64{s1.Y, d1.Y, (s1.Y + d1.Y) / 2, area.Y - stub, area.Y + area.H + stub}

	out := make([][]geom.Point, 0, len(xs)+len(ys))
	for _, cx := range xs {
		out = append(out, []geom.Point{s0, s1, {X: cx, Y: s1.Y}, {X: cx, Y: d1.Y}, d1, d0})
	}
	for _, cy := range ys {
		out = append(out, []geom.Point{s0, s1, {X: s1.X, Y: cy}, {X: d1.X, Y: cy}, d1, d0})
	}
	return out
}

func evaluate(pts []geom.Point, src, dst Endpoint) score {
	var sc score

	if d, ok := geom.DirectionOf(pts[0], pts[1]); !ok || d != src.Direction {
		sc.violations++
	}
	n := len(pts)
	if d, ok := geom.DirectionOf(pts[n-2], pts[n-1]); !ok || d != dst.Direction.Opposite() {
		sc.violations++
	}
	for i := 2; i < n; i++ {
		d1, _ := geom.DirectionOf(pts[i-2], pts[i-1])
		d2, _ := geom.DirectionOf(pts[i-1], pts[i])
		if d1.Opposite() == d2 {
			sc.violations++
		}
	}

	for i := 1; i < n; i++ {
		if geom.SegmentCrossesRect(pts[i-1], pts[i], src.Bounds) {
			sc.crossings++
		}
		if geom.SegmentCrossesRect(pts[i-1], pts[i], dst.Bounds) {
			sc.crossings++
		}
	}

	sc.bends = Bends(pts)
	sc.length = math.Round(geom.PathLength(pts)*1e6) / 1e6
	return sc
}
