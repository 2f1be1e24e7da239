// Package sequence matches ordered chains of recognized gestures, such
// as tap tap swipe-left. It operates on gesture kind names and
// timestamps only, so it stays decoupled from the recognition engine
// that feeds it.
package sequence

import (
	"fmt"
	"time"

	"gestured/internal/geometry"
	"gestured/internal/logging"
)

// ===== DEFINITIONS =====

// Step is one element of a sequence definition.
type Step struct {
	// Kind names the gesture this step requires, e.g. "tap" or
	// "swipe". Compared verbatim against the emitted kind name.
	Kind string

	// MaxInterval bounds the gap from the previous step's gesture.
	// Zero means no per-step limit. Ignored on the first step.
	MaxInterval time.Duration

	// PositionTolerance, when positive, requires this step's gesture
	// center to land within the given distance of the previous
	// step's center. Ignored on the first step.
	PositionTolerance float64
}

// Definition describes one named gesture sequence.
type Definition struct {
	Name  string
	Steps []Step

	// MaxDuration bounds the span from the first step's gesture to
	// the last. Zero means unbounded.
	MaxDuration time.Duration
}

// Validate rejects definitions the tracker cannot match.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("sequence has no name")
	}
	if len(d.Steps) < 2 {
		return fmt.Errorf("sequence %q needs at least 2 steps, has %d", d.Name, len(d.Steps))
	}
	for i, s := range d.Steps {
		if s.Kind == "" {
			return fmt.Errorf("sequence %q step %d has no kind", d.Name, i)
		}
		if s.MaxInterval < 0 {
			return fmt.Errorf("sequence %q step %d has negative interval", d.Name, i)
		}
	}
	return nil
}

// ===== TRACKER =====

// Entry is one recognized gesture as seen by the tracker.
type Entry struct {
	Kind   string
	At     time.Time
	Center geometry.Point
}

// Completion reports one matched sequence.
type Completion struct {
	Name  string
	Steps int
	Span  time.Duration // first gesture to last
	At    time.Time     // timestamp of the completing gesture
}

// maxLogEntries bounds the gesture log. Definitions are short, so a
// small window is plenty.
const maxLogEntries = 64

// Tracker keeps a bounded log of recent gestures and reports every
// definition whose steps match the trailing entries. Matched entries
// are removed from the log, so three taps complete a tap-tap-tap
// sequence once, not again on every later tap; matches never overlap.
// Not safe for concurrent use.
type Tracker struct {
	defs []Definition
	log  []Entry
}

// NewTracker creates an empty tracker with no definitions.
func NewTracker() *Tracker {
	return &Tracker{}
}

// SetDefinitions replaces the definition set. Invalid definitions are
// rejected and the previous set stays active.
func (t *Tracker) SetDefinitions(defs []Definition) error {
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	t.defs = append([]Definition(nil), defs...)
	logging.Sequence("loaded %d sequence definitions", len(defs))
	return nil
}

// Definitions returns the active definition set.
func (t *Tracker) Definitions() []Definition {
	return append([]Definition(nil), t.defs...)
}

// Observe appends a recognized gesture to the log and returns every
// definition it completes. A completed definition consumes its trailing
// entries, so definitions registered earlier win when two could claim
// the same gestures.
func (t *Tracker) Observe(kind string, at time.Time, center geometry.Point) []Completion {
	e := Entry{Kind: kind, At: at, Center: center}
	if len(t.log) >= maxLogEntries {
		copy(t.log, t.log[1:])
		t.log[len(t.log)-1] = e
	} else {
		t.log = append(t.log, e)
	}

	var done []Completion
	for _, d := range t.defs {
		c, ok := t.match(d)
		if !ok {
			continue
		}
		t.log = t.log[:len(t.log)-c.Steps]
		done = append(done, c)
		logging.Sequence("sequence %q completed in %v", c.Name, c.Span)
	}
	return done
}

// match checks whether the trailing log entries satisfy d.
func (t *Tracker) match(d Definition) (Completion, bool) {
	n := len(d.Steps)
	if len(t.log) < n {
		return Completion{}, false
	}
	tail := t.log[len(t.log)-n:]
	for i, step := range d.Steps {
		if tail[i].Kind != step.Kind {
			return Completion{}, false
		}
		if i == 0 {
			continue
		}
		if step.MaxInterval > 0 && tail[i].At.Sub(tail[i-1].At) > step.MaxInterval {
			return Completion{}, false
		}
		if step.PositionTolerance > 0 &&
			geometry.Distance(tail[i].Center, tail[i-1].Center) > step.PositionTolerance {
			return Completion{}, false
		}
	}
	span := tail[n-1].At.Sub(tail[0].At)
	if d.MaxDuration > 0 && span > d.MaxDuration {
		return Completion{}, false
	}
	return Completion{Name: d.Name, Steps: n, Span: span, At: tail[n-1].At}, true
}

// Prune drops log entries too old to participate in any future match.
// The engine calls this from its tick path.
func (t *Tracker) Prune(now time.Time) {
	horizon := t.retention()
	i := 0
	for i < len(t.log) && now.Sub(t.log[i].At) > horizon {
		i++
	}
	if i > 0 {
		t.log = append(t.log[:0], t.log[i:]...)
		logging.SequenceDebug("pruned %d stale log entries", i)
	}
}

// retention returns how long an entry can still matter. Bounded below
// so definitions without a MaxDuration still get a usable window.
func (t *Tracker) retention() time.Duration {
	horizon := 10 * time.Second
	for _, d := range t.defs {
		if d.MaxDuration > horizon {
			horizon = d.MaxDuration
		}
	}
	return horizon
}

// LogLen returns the number of gestures currently in the log.
func (t *Tracker) LogLen() int {
	return len(t.log)
}
