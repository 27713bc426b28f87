// Package route computes orthogonal connection routes between two ports.
//
// # Overview
//
// A [Router] turns two [Endpoint] values (anchor point, outward direction and
// the owning shape's bounds) into a polyline of waypoints. The output
// contract is fixed regardless of the implementation:
//
//   - the first point is the source anchor
//   - the last point is the destination anchor
//   - every consecutive pair is axis-aligned
//   - there are no zero-length segments
//
// [Validate] checks this contract and is used by the diagram package before a
// route is turned into segments.
//
// # Manhattan Routing
//
// [Manhattan] builds a small set of candidate routes (straight, L-shaped,
// Z-shaped through a mid channel, and U-shaped around both shapes), each with
// and without a stub leaving the port, and scores them lexicographically:
//
//  1. direction violations: the route must leave the source in the port's
//     direction, arrive at the destination against the port's direction and
//     never double back on itself
//  2. shape crossings: segments entering the interior of either endpoint's shape
//  3. bends
//  4. length
//
// The first candidate with the best score wins, so results are deterministic.
package route
