package touch

import (
	"testing"
	"time"

	"gestured/internal/geometry"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func TestContactLifecycle(t *testing.T) {
	tr := NewTracker(0)

	c := tr.Start(1, geometry.Point{X: 10, Y: 20}, 0.5, at(0))
	if c.ID != 1 || c.StartPosition != (geometry.Point{X: 10, Y: 20}) {
		t.Fatalf("unexpected contact after start: %+v", c)
	}
	if tr.Count() != 1 {
		t.Fatalf("Count = %d, want 1", tr.Count())
	}

	moved, ok := tr.Move(1, geometry.Point{X: 15, Y: 24}, 0.6, at(16))
	if !ok {
		t.Fatal("move on live contact should succeed")
	}
	if moved.Position != (geometry.Point{X: 15, Y: 24}) {
		t.Fatalf("Position = %+v after move", moved.Position)
	}
	if moved.StartPosition != (geometry.Point{X: 10, Y: 20}) {
		t.Fatal("StartPosition must not change on move")
	}
	if moved.Pressure != 0.6 {
		t.Fatalf("Pressure = %v, want 0.6", moved.Pressure)
	}
	if len(moved.Path) != 2 {
		t.Fatalf("Path has %d samples, want 2", len(moved.Path))
	}

	ended, ok := tr.End(1, at(120))
	if !ok {
		t.Fatal("end on live contact should succeed")
	}
	if ended.LastTime != at(120) {
		t.Fatalf("LastTime = %v, want %v", ended.LastTime, at(120))
	}
	if tr.Count() != 0 {
		t.Fatalf("Count = %d after end, want 0", tr.Count())
	}
}

func TestUnknownIDIgnored(t *testing.T) {
	tr := NewTracker(0)

	if _, ok := tr.Move(42, geometry.Point{}, 0, at(0)); ok {
		t.Fatal("move for unknown id should report not-ok")
	}
	if _, ok := tr.End(42, at(0)); ok {
		t.Fatal("end for unknown id should report not-ok")
	}
	if tr.Cancel(42, at(0)) {
		t.Fatal("cancel for unknown id should report not-ok")
	}
	if tr.Count() != 0 {
		t.Fatal("unknown-id events must not create contacts")
	}
}

func TestCancelDiscardsContact(t *testing.T) {
	tr := NewTracker(0)
	tr.Start(7, geometry.Point{X: 1, Y: 1}, 0, at(0))
	if !tr.Cancel(7, at(10)) {
		t.Fatal("cancel on live contact should succeed")
	}
	if _, ok := tr.Get(7); ok {
		t.Fatal("cancelled contact still live")
	}
}

func TestCentroid(t *testing.T) {
	tr := NewTracker(0)

	if _, ok := tr.Centroid(); ok {
		t.Fatal("centroid of empty tracker should report not-ok")
	}

	tr.Start(1, geometry.Point{X: 0, Y: 0}, 0, at(0))
	tr.Start(2, geometry.Point{X: 100, Y: 50}, 0, at(0))

	c, ok := tr.Centroid()
	if !ok {
		t.Fatal("centroid with live contacts should be ok")
	}
	if c != (geometry.Point{X: 50, Y: 25}) {
		t.Fatalf("Centroid = %+v, want (50,25)", c)
	}
}

func TestActiveSortedByID(t *testing.T) {
	tr := NewTracker(0)
	tr.Start(3, geometry.Point{}, 0, at(0))
	tr.Start(1, geometry.Point{}, 0, at(0))
	tr.Start(2, geometry.Point{}, 0, at(0))

	active := tr.Active()
	if len(active) != 3 {
		t.Fatalf("Active returned %d contacts, want 3", len(active))
	}
	for i, want := range []int{1, 2, 3} {
		if active[i].ID != want {
			t.Fatalf("Active[%d].ID = %d, want %d", i, active[i].ID, want)
		}
	}
}

func TestPathBounded(t *testing.T) {
	tr := NewTracker(8)
	tr.Start(1, geometry.Point{X: 0, Y: 0}, 0, at(0))

	for i := 1; i <= 50; i++ {
		tr.Move(1, geometry.Point{X: float64(i), Y: 0}, 0, at(i*10))
	}

	c, _ := tr.Get(1)
	if len(c.Path) != 8 {
		t.Fatalf("Path has %d samples, want cap of 8", len(c.Path))
	}
	// Newest sample survives, oldest were dropped.
	last := c.Path[len(c.Path)-1]
	if last.Position.X != 50 {
		t.Fatalf("last sample X = %v, want 50", last.Position.X)
	}
	if c.Path[0].Position.X != 43 {
		t.Fatalf("oldest retained sample X = %v, want 43", c.Path[0].Position.X)
	}
	// StartPosition is kept independently of path truncation.
	if c.StartPosition != (geometry.Point{X: 0, Y: 0}) {
		t.Fatal("StartPosition lost to path truncation")
	}
}

func TestDisplacementAndTravel(t *testing.T) {
	tr := NewTracker(0)
	tr.Start(1, geometry.Point{X: 0, Y: 0}, 0, at(0))
	tr.Move(1, geometry.Point{X: 30, Y: 40}, 0, at(10))
	tr.Move(1, geometry.Point{X: 0, Y: 0}, 0, at(20))

	c, _ := tr.Get(1)
	if c.Displacement() != 0 {
		t.Fatalf("Displacement = %v, want 0 after returning to start", c.Displacement())
	}
	if c.TravelDistance() != 100 {
		t.Fatalf("TravelDistance = %v, want 100", c.TravelDistance())
	}
}

func TestDuplicateStartReplaces(t *testing.T) {
	tr := NewTracker(0)
	tr.Start(1, geometry.Point{X: 1, Y: 1}, 0, at(0))
	tr.Move(1, geometry.Point{X: 5, Y: 5}, 0, at(10))

	tr.Start(1, geometry.Point{X: 100, Y: 100}, 0, at(500))
	c, _ := tr.Get(1)
	if c.StartPosition != (geometry.Point{X: 100, Y: 100}) {
		t.Fatalf("duplicate start did not replace contact: %+v", c.StartPosition)
	}
	if len(c.Path) != 1 {
		t.Fatalf("replaced contact path has %d samples, want 1", len(c.Path))
	}
}
