// Package geometry provides the 2D math shared by the touch tracker and
// gesture classifiers: distances, angles, centroids, and path analysis.
package geometry

import "math"

// Point is a position in the tracked surface's local coordinate space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Centroid returns the arithmetic mean of pts. Zero value for an empty
// slice; callers that care must check length first.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var x, y float64
	for _, p := range pts {
		x += p.X
		y += p.Y
	}
	n := float64(len(pts))
	return Point{X: x / n, Y: y / n}
}

// Angle returns the angle of the vector from a to b, in radians,
// measured counterclockwise from the positive X axis in (-π, π].
func Angle(a, b Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// NormalizeAngle wraps a into [-π, π].
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// AngleDelta returns the smallest signed rotation taking angle a to
// angle b, in [-π, π]. Summing per-step deltas instead of subtracting
// endpoint angles avoids wraparound error on multi-revolution paths.
func AngleDelta(a, b float64) float64 {
	return NormalizeAngle(b - a)
}

// PathLength returns the summed segment lengths along pts.
func PathLength(pts []Point) float64 {
	var d float64
	for i := 1; i < len(pts); i++ {
		d += Distance(pts[i-1], pts[i])
	}
	return d
}

// BoundingBox returns the min and max corners of the axis-aligned box
// enclosing pts. Zero values for an empty slice.
func BoundingBox(pts []Point) (min, max Point) {
	if len(pts) == 0 {
		return Point{}, Point{}
	}
	min, max = pts[0], pts[0]
	for _, p := range pts[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}
