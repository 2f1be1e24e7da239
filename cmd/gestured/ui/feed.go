package ui

import (
	"sync"

	"gestured/internal/gesture"
)

// EventLog is a bounded ring of recognized gestures backing the feed
// pane. The engine handler appends and the view reads; both run on the
// update loop, but recording handlers may fan out from other callers,
// so access is guarded.
type EventLog struct {
	mu     sync.Mutex
	events []gesture.Event
	max    int
	total  uint64
}

// NewEventLog creates a log retaining at most max events.
func NewEventLog(max int) *EventLog {
	if max < 1 {
		max = 1
	}
	return &EventLog{max: max}
}

// Add appends an event, evicting the oldest when full.
func (l *EventLog) Add(ev gesture.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	if len(l.events) > l.max {
		l.events = l.events[len(l.events)-l.max:]
	}
	l.total++
}

// Events returns a copy of the retained events, oldest first.
func (l *EventLog) Events() []gesture.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]gesture.Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of retained events.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Version increments on every Add, including ones that evicted. The
// view uses it to skip rebuilding an unchanged feed.
func (l *EventLog) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Clear drops all retained events.
func (l *EventLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}
