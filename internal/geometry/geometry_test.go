package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestDistance(t *testing.T) {
	d := Distance(Point{X: 0, Y: 0}, Point{X: 3, Y: 4})
	if !almostEqual(d, 5, eps) {
		t.Fatalf("Distance = %v, want 5", d)
	}
	if Distance(Point{X: 1, Y: 1}, Point{X: 1, Y: 1}) != 0 {
		t.Fatal("distance of identical points should be 0")
	}
}

func TestCentroid(t *testing.T) {
	pts := []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	c := Centroid(pts)
	if !almostEqual(c.X, 5, eps) || !almostEqual(c.Y, 5, eps) {
		t.Fatalf("Centroid = %+v, want (5,5)", c)
	}
	if got := Centroid(nil); got != (Point{}) {
		t.Fatalf("Centroid(nil) = %+v, want zero", got)
	}
}

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{4 * math.Pi, 0},
		{-4 * math.Pi, 0},
	}
	for _, c := range cases {
		if got := NormalizeAngle(c.in); !almostEqual(got, c.want, eps) {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestAngleDeltaWraparound(t *testing.T) {
	// Crossing the -π/π seam must produce a small delta, not ~2π.
	a := math.Pi - 0.1
	b := -math.Pi + 0.1
	if got := AngleDelta(a, b); !almostEqual(got, 0.2, 1e-9) {
		t.Fatalf("AngleDelta across seam = %v, want 0.2", got)
	}
	if got := AngleDelta(b, a); !almostEqual(got, -0.2, 1e-9) {
		t.Fatalf("AngleDelta across seam reversed = %v, want -0.2", got)
	}
}

func TestPathLength(t *testing.T) {
	pts := []Point{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 3, Y: 10}}
	if got := PathLength(pts); !almostEqual(got, 11, eps) {
		t.Fatalf("PathLength = %v, want 11", got)
	}
	if PathLength([]Point{{X: 1, Y: 1}}) != 0 {
		t.Fatal("single-point path should have length 0")
	}
}

// circlePath produces steps+1 samples along an arc of sweepDeg degrees
// starting at startDeg on a circle of the given radius. Positive sweep
// advances the angle, which reads as clockwise with Y down.
func circlePath(center Point, radius, startDeg, sweepDeg float64, steps int) []Point {
	pts := make([]Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		a := (startDeg + sweepDeg*float64(i)/float64(steps)) * math.Pi / 180
		pts = append(pts, Point{
			X: center.X + radius*math.Cos(a),
			Y: center.Y + radius*math.Sin(a),
		})
	}
	return pts
}

func TestRadialOnCircle(t *testing.T) {
	pts := circlePath(Point{X: 100, Y: 100}, 50, 0, 360, 72)
	rs := Radial(pts)
	if !almostEqual(rs.Center.X, 100, 1) || !almostEqual(rs.Center.Y, 100, 1) {
		t.Fatalf("Radial center = %+v, want near (100,100)", rs.Center)
	}
	if !almostEqual(rs.MeanRadius, 50, 1) {
		t.Fatalf("MeanRadius = %v, want near 50", rs.MeanRadius)
	}
	if rs.Deviation > 0.05*rs.MeanRadius {
		t.Fatalf("Deviation = %v too large for a clean circle", rs.Deviation)
	}
}

func TestRadialOnLine(t *testing.T) {
	pts := make([]Point, 0, 21)
	for i := 0; i <= 20; i++ {
		pts = append(pts, Point{X: float64(i) * 10, Y: 0})
	}
	rs := Radial(pts)
	// A straight line has high radial spread relative to its mean radius.
	if rs.Deviation < 0.3*rs.MeanRadius {
		t.Fatalf("line Deviation/Mean = %v, expected > 0.3", rs.Deviation/rs.MeanRadius)
	}
}

func TestSweepDirectionAndMagnitude(t *testing.T) {
	center := Point{X: 0, Y: 0}

	cw := circlePath(center, 40, 0, 300, 60)
	got := Sweep(cw, center) * 180 / math.Pi
	if !almostEqual(got, 300, 1) {
		t.Fatalf("clockwise sweep = %v deg, want 300", got)
	}

	ccw := circlePath(center, 40, 0, -300, 60)
	got = Sweep(ccw, center) * 180 / math.Pi
	if !almostEqual(got, -300, 1) {
		t.Fatalf("counterclockwise sweep = %v deg, want -300", got)
	}
}

func TestSweepMultipleRevolutions(t *testing.T) {
	center := Point{X: 0, Y: 0}
	pts := circlePath(center, 40, 0, 720, 144)
	got := Sweep(pts, center) * 180 / math.Pi
	if !almostEqual(got, 720, 2) {
		t.Fatalf("two-revolution sweep = %v deg, want 720", got)
	}
}

func TestResample(t *testing.T) {
	pts := []Point{{X: 0, Y: 0}, {X: 100, Y: 0}}
	out := Resample(pts, 5)
	if len(out) != 5 {
		t.Fatalf("Resample returned %d points, want 5", len(out))
	}
	if out[0] != pts[0] {
		t.Fatalf("first point moved: %+v", out[0])
	}
	for i, want := range []float64{0, 25, 50, 75, 100} {
		if !almostEqual(out[i].X, want, 1e-6) {
			t.Errorf("point %d X = %v, want %v", i, out[i].X, want)
		}
	}

	if Resample([]Point{{X: 1, Y: 1}}, 8) != nil {
		t.Fatal("single-point input should resample to nil")
	}
}

func TestResampleDegeneratePath(t *testing.T) {
	pts := []Point{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 5}}
	out := Resample(pts, 4)
	if len(out) != 4 {
		t.Fatalf("got %d points, want 4", len(out))
	}
	for _, p := range out {
		if p != (Point{X: 5, Y: 5}) {
			t.Fatalf("degenerate resample moved a point: %+v", p)
		}
	}
}

func TestNormalizeUnit(t *testing.T) {
	pts := []Point{{X: 10, Y: 20}, {X: 110, Y: 20}, {X: 110, Y: 220}}
	out := NormalizeUnit(pts)
	min, max := BoundingBox(out)
	if min != (Point{}) || !almostEqual(max.X, 1, eps) || !almostEqual(max.Y, 1, eps) {
		t.Fatalf("normalized box = %+v..%+v, want (0,0)..(1,1)", min, max)
	}

	// Zero vertical extent maps Y to 0 everywhere.
	flat := NormalizeUnit([]Point{{X: 0, Y: 7}, {X: 50, Y: 7}})
	for _, p := range flat {
		if p.Y != 0 {
			t.Fatalf("flat path Y = %v, want 0", p.Y)
		}
	}
}

func TestDTW(t *testing.T) {
	a := []Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	if got := DTW(a, a); !almostEqual(got, 0, eps) {
		t.Fatalf("DTW of identical paths = %v, want 0", got)
	}

	b := []Point{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}}
	got := DTW(a, b)
	if !almostEqual(got, 1, eps) {
		t.Fatalf("DTW of offset paths = %v, want 1", got)
	}

	if !math.IsInf(DTW(nil, a), 1) {
		t.Fatal("DTW with empty path should be +Inf")
	}
}
