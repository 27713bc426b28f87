package geom

import "math"

// Metric measures the distance between two points.
type Metric func(a, b Point) float64

// SquaredDistance is the squared Euclidean distance. It orders points the
// same way as the Euclidean distance without the square root.
func SquaredDistance(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// ManhattanDistance is the L1 distance |dx|+|dy|.
func ManhattanDistance(a, b Point) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
}

// Nearest returns the index of the candidate closest to p under m.
// Ties go to the earliest candidate. Returns -1 if candidates is empty.
func Nearest(candidates []Point, p Point, m Metric) int {
	best, bestDist := -1, math.Inf(1)
	for i, c := range candidates {
		if d := m(c, p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// PathLength returns the summed Euclidean length of a polyline.
func PathLength(pts []Point) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	return total
}
