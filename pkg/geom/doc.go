// Package geom provides the planar primitives used by the diagram engine.
//
// # Overview
//
// Diagrams are drawn in a y-down coordinate system: X grows to the right and
// Y grows downward, matching screen and SVG space. The package defines:
//
//   - [Point] and [Rect] value types
//   - [Direction], the four sides of a shape a port can face
//     (enumerated in the fixed order Top, Right, Bottom, Left)
//   - [Orientation] of a straight segment (horizontal, vertical or oblique)
//   - Distance metrics ([SquaredDistance], [ManhattanDistance]) and
//     [Nearest], which picks the first candidate with the minimum distance
//   - [Cross], the perpendicular crossing test used for connection
//     intersections
//
// All types are small values and are safe to copy and share between
// goroutines.
package geom
