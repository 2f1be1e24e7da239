package geometry

import "math"

// ===== PATH ANALYSIS =====
// Shape analysis over sampled contact paths: radial statistics and
// angular sweep for circular detection, resampling and unit-box
// normalization plus dynamic time warping for stroke matching.

// RadialStats describes how a path's samples sit around their centroid.
type RadialStats struct {
	Center     Point
	MeanRadius float64
	// Deviation is the mean absolute deviation of sample radii from
	// MeanRadius. A circle traced cleanly keeps this small relative
	// to MeanRadius.
	Deviation float64
}

// Radial computes radial statistics for pts. Zero value when fewer
// than two samples exist.
func Radial(pts []Point) RadialStats {
	if len(pts) < 2 {
		return RadialStats{}
	}
	center := Centroid(pts)

	var mean float64
	radii := make([]float64, len(pts))
	for i, p := range pts {
		radii[i] = Distance(center, p)
		mean += radii[i]
	}
	mean /= float64(len(pts))

	var dev float64
	for _, r := range radii {
		dev += math.Abs(r - mean)
	}
	dev /= float64(len(radii))

	return RadialStats{Center: center, MeanRadius: mean, Deviation: dev}
}

// Sweep returns the total signed angular travel of pts around center,
// in radians. Each consecutive pair contributes its normalized angular
// delta, so full revolutions accumulate instead of wrapping. With Y
// growing downward, positive sweep reads as clockwise on screen.
func Sweep(pts []Point, center Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var total float64
	prev := Angle(center, pts[0])
	for _, p := range pts[1:] {
		a := Angle(center, p)
		total += AngleDelta(prev, a)
		prev = a
	}
	return total
}

// Resample redistributes pts into n points spaced evenly along the
// path's arc length. The first and last points are preserved. Returns
// nil when pts has fewer than two samples or n < 2.
func Resample(pts []Point, n int) []Point {
	if len(pts) < 2 || n < 2 {
		return nil
	}
	interval := PathLength(pts) / float64(n-1)
	if interval <= 0 {
		// Degenerate path, every sample at the same position.
		out := make([]Point, n)
		for i := range out {
			out[i] = pts[0]
		}
		return out
	}

	out := make([]Point, 0, n)
	out = append(out, pts[0])
	var accum float64
	prev := pts[0]
	for i := 1; i < len(pts); {
		d := Distance(prev, pts[i])
		if accum+d >= interval && d > 0 {
			t := (interval - accum) / d
			q := Point{
				X: prev.X + t*(pts[i].X-prev.X),
				Y: prev.Y + t*(pts[i].Y-prev.Y),
			}
			out = append(out, q)
			prev = q
			accum = 0
			continue
		}
		accum += d
		prev = pts[i]
		i++
	}
	for len(out) < n {
		out = append(out, pts[len(pts)-1])
	}
	return out[:n]
}

// NormalizeUnit translates and scales pts into the unit box [0,1]x[0,1],
// preserving aspect per axis. A path with zero extent on an axis maps
// that axis to 0.
func NormalizeUnit(pts []Point) []Point {
	if len(pts) == 0 {
		return nil
	}
	min, max := BoundingBox(pts)
	rangeX := max.X - min.X
	rangeY := max.Y - min.Y

	out := make([]Point, len(pts))
	for i, p := range pts {
		var nx, ny float64
		if rangeX > 0 {
			nx = (p.X - min.X) / rangeX
		}
		if rangeY > 0 {
			ny = (p.Y - min.Y) / rangeY
		}
		out[i] = Point{X: nx, Y: ny}
	}
	return out
}

// DTW returns the dynamic-time-warping distance between paths a and b,
// normalized by the longer path's length. Infinity when either is empty.
func DTW(a, b []Point) float64 {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}

	cost := make([][]float64, n+1)
	for i := range cost {
		cost[i] = make([]float64, m+1)
		for j := range cost[i] {
			cost[i][j] = math.Inf(1)
		}
	}
	cost[0][0] = 0

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			d := Distance(a[i-1], b[j-1])
			cost[i][j] = d + min3(cost[i-1][j], cost[i][j-1], cost[i-1][j-1])
		}
	}

	longer := n
	if m > longer {
		longer = m
	}
	return cost[n][m] / float64(longer)
}

func min3(a, b, c float64) float64 {
	if a <= b && a <= c {
		return a
	}
	if b <= c {
		return b
	}
	return c
}
