package diagram

import (
	"slices"

	"github.com/matzehuels/canvaskit/pkg/geom"
)

// Intersection is a crossing with another connection.
type Intersection struct {
	With  string
	Point geom.Point
}

// Segment is one straight piece of a connection route in zoom-scaled canvas
// coordinates.
type Segment struct {
	Start, End    geom.Point
	Orientation   geom.Orientation
	HasMoveHandle bool

	prev, next    *Segment
	intersections []Intersection
}

func newSegment(a, b geom.Point) *Segment {
	return &Segment{Start: a, End: b, Orientation: geom.OrientationOf(a, b)}
}

// Previous returns the preceding segment, or nil for the first one.
func (s *Segment) Previous() *Segment { return s.prev }

// Next returns the following segment, or nil for the last one.
func (s *Segment) Next() *Segment { return s.next }

// Intersections returns the crossings recorded on this segment, ordered
// along the segment.
func (s *Segment) Intersections() []Intersection {
	out := slices.Clone(s.intersections)
	slices.SortStableFunc(out, func(a, b Intersection) int {
		da := geom.ManhattanDistance(s.Start, a.Point)
		db := geom.ManhattanDistance(s.Start, b.Point)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})
	return out
}

// Length returns the Euclidean length.
func (s *Segment) Length() float64 {
	return geom.PathLength([]geom.Point{s.Start, s.End})
}

func (s *Segment) addIntersection(with string, p geom.Point) {
	for _, in := range s.intersections {
		if in.With == with && in.Point.Eq(p) {
			return
		}
	}
	s.intersections = append(s.intersections, Intersection{With: with, Point: p})
}

func (s *Segment) removeIntersections(with string) {
	s.intersections = slices.DeleteFunc(s.intersections, func(in Intersection) bool { return in.With == with })
}
