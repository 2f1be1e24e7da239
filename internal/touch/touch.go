// Package touch maintains the authoritative set of live contacts on a
// tracked surface. Every recognition pass reads this state; nothing
// else mutates it.
package touch

import (
	"sort"
	"time"

	"gestured/internal/geometry"
	"gestured/internal/logging"
)

// DefaultMaxPathPoints bounds each contact's sampled path. Oldest
// samples are dropped first once the cap is reached, so a drag held
// for minutes cannot grow memory without bound.
const DefaultMaxPathPoints = 256

// Sample is one recorded point along a contact's path.
type Sample struct {
	Position geometry.Point
	Time     time.Time
}

// Contact is one active touch, pointer, or stylus point.
type Contact struct {
	ID            int
	Position      geometry.Point
	StartPosition geometry.Point
	Pressure      float64
	Path          []Sample
	StartTime     time.Time
	LastTime      time.Time

	maxPath int
}

// Displacement returns the straight-line distance from the contact's
// start position to its current position.
func (c *Contact) Displacement() float64 {
	return geometry.Distance(c.StartPosition, c.Position)
}

// TravelDistance returns the summed length of the sampled path.
func (c *Contact) TravelDistance() float64 {
	return geometry.PathLength(c.PathPoints())
}

// Duration returns how long the contact has been down as of now.
func (c *Contact) Duration(now time.Time) time.Duration {
	return now.Sub(c.StartTime)
}

// PathPoints returns the path positions without timestamps.
func (c *Contact) PathPoints() []geometry.Point {
	pts := make([]geometry.Point, len(c.Path))
	for i, s := range c.Path {
		pts[i] = s.Position
	}
	return pts
}

func (c *Contact) appendSample(s Sample) {
	if len(c.Path) >= c.maxPath {
		copy(c.Path, c.Path[1:])
		c.Path[len(c.Path)-1] = s
		return
	}
	c.Path = append(c.Path, s)
}

// Tracker owns the live contact set. It is not safe for concurrent
// use; the engine drives it from a single goroutine.
type Tracker struct {
	contacts map[int]*Contact
	maxPath  int
}

// NewTracker creates a tracker whose contact paths hold at most
// maxPathPoints samples. Values < 2 fall back to DefaultMaxPathPoints.
func NewTracker(maxPathPoints int) *Tracker {
	if maxPathPoints < 2 {
		maxPathPoints = DefaultMaxPathPoints
	}
	return &Tracker{
		contacts: make(map[int]*Contact),
		maxPath:  maxPathPoints,
	}
}

// Start registers a new contact. A start for an id that is already
// live replaces the stale entry; ids are not recycled mid-gesture, so
// a duplicate start means the previous contact's end event was lost.
func (t *Tracker) Start(id int, pos geometry.Point, pressure float64, at time.Time) *Contact {
	if _, ok := t.contacts[id]; ok {
		logging.TouchDebug("replacing stale contact id=%d", id)
	}
	c := &Contact{
		ID:            id,
		Position:      pos,
		StartPosition: pos,
		Pressure:      pressure,
		StartTime:     at,
		LastTime:      at,
		maxPath:       t.maxPath,
		Path:          make([]Sample, 0, 16),
	}
	c.appendSample(Sample{Position: pos, Time: at})
	t.contacts[id] = c
	return c
}

// Move updates a live contact's position and pressure and appends a
// path sample. Unknown ids are ignored.
func (t *Tracker) Move(id int, pos geometry.Point, pressure float64, at time.Time) (*Contact, bool) {
	c, ok := t.contacts[id]
	if !ok {
		logging.TouchDebug("move for unknown contact id=%d", id)
		return nil, false
	}
	c.Position = pos
	c.Pressure = pressure
	c.LastTime = at
	c.appendSample(Sample{Position: pos, Time: at})
	return c, true
}

// End removes a contact and returns its final state for end-of-contact
// classification. Unknown ids are ignored.
func (t *Tracker) End(id int, at time.Time) (*Contact, bool) {
	c, ok := t.contacts[id]
	if !ok {
		logging.TouchDebug("end for unknown contact id=%d", id)
		return nil, false
	}
	c.LastTime = at
	delete(t.contacts, id)
	return c, true
}

// Cancel removes a contact without classification. Unknown ids are
// ignored.
func (t *Tracker) Cancel(id int, at time.Time) bool {
	if _, ok := t.contacts[id]; !ok {
		logging.TouchDebug("cancel for unknown contact id=%d", id)
		return false
	}
	delete(t.contacts, id)
	return true
}

// Get returns the live contact with the given id.
func (t *Tracker) Get(id int) (*Contact, bool) {
	c, ok := t.contacts[id]
	return c, ok
}

// Count returns the number of live contacts.
func (t *Tracker) Count() int {
	return len(t.contacts)
}

// Active returns the live contacts ordered by id, so classifier passes
// see a deterministic ordering.
func (t *Tracker) Active() []*Contact {
	out := make([]*Contact, 0, len(t.contacts))
	for _, c := range t.contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Centroid returns the arithmetic mean of the active contact
// positions. The second return is false when no contacts are live.
func (t *Tracker) Centroid() (geometry.Point, bool) {
	if len(t.contacts) == 0 {
		return geometry.Point{}, false
	}
	pts := make([]geometry.Point, 0, len(t.contacts))
	for _, c := range t.contacts {
		pts = append(pts, c.Position)
	}
	return geometry.Centroid(pts), true
}
