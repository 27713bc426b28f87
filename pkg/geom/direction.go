package geom

import (
	"strings"

	"github.com/matzehuels/canvaskit/pkg/errors"
)

// Direction is the side of a shape a port sits on, and therefore the
// direction a connection leaves the shape in.
type Direction int

const (
	Top Direction = iota
	Right
	Bottom
	Left
)

// Directions lists every direction in enumeration order. Tie-breaks that
// pick "the first minimum" iterate in this order.
var Directions = [4]Direction{Top, Right, Bottom, Left}

// String returns the upper-case name used in serialized documents.
func (d Direction) String() string {
	switch d {
	case Top:
		return "TOP"
	case Right:
		return "RIGHT"
	case Bottom:
		return "BOTTOM"
	case Left:
		return "LEFT"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool { return d >= Top && d <= Left }

// Opposite returns the direction facing the other way.
func (d Direction) Opposite() Direction {
	switch d {
	case Top:
		return Bottom
	case Right:
		return Left
	case Bottom:
		return Top
	case Left:
		return Right
	default:
		return d
	}
}

// Vector returns the unit vector pointing away from the shape.
func (d Direction) Vector() Point {
	switch d {
	case Top:
		return Point{0, -1}
	case Right:
		return Point{1, 0}
	case Bottom:
		return Point{0, 1}
	case Left:
		return Point{-1, 0}
	default:
		return Point{}
	}
}

// Orientation returns the orientation of a segment leaving in direction d.
func (d Direction) Orientation() Orientation {
	if d == Left || d == Right {
		return Horizontal
	}
	return Vertical
}

// ParseDirection parses a direction name case-insensitively.
// Unrecognized names return an ErrCodeInvalidInput error.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TOP":
		return Top, nil
	case "RIGHT":
		return Right, nil
	case "BOTTOM":
		return Bottom, nil
	case "LEFT":
		return Left, nil
	}
	return Top, errors.New(errors.ErrCodeInvalidInput, "unknown direction %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// DirectionOf returns the direction of travel from a to b for an
// axis-aligned pair. ok is false for oblique or zero-length pairs.
func DirectionOf(a, b Point) (d Direction, ok bool) {
	switch OrientationOf(a, b) {
	case Horizontal:
		if b.X > a.X {
			return Right, true
		}
		return Left, true
	case Vertical:
		if b.Y > a.Y {
			return Bottom, true
		}
		return Top, true
	}
	return Top, false
}
