// Package gesture turns streams of contact lifecycle events into
// discrete gesture events. The Engine is the single entry point: feed
// it start/move/end/cancel events plus periodic ticks and it emits
// recognized gestures through a registered handler.
package gesture

import (
	"fmt"
	"time"

	"gestured/internal/geometry"
)

// ===== GESTURE KINDS =====

// Kind identifies a recognized gesture.
type Kind int

const (
	KindUnknown Kind = iota
	KindTap
	KindDoubleTap
	KindTripleTap
	KindLongPress
	KindPan
	KindSwipe
	KindPinch
	KindRotate
	KindMultiFingerTap
	KindMultiFingerSwipe
	KindForceTouch
	KindCircular
	KindEdgeSwipe
	KindCustom
	KindSequence
)

// String returns the wire name of the kind, used in config files,
// traces, and the store.
func (k Kind) String() string {
	switch k {
	case KindTap:
		return "tap"
	case KindDoubleTap:
		return "double-tap"
	case KindTripleTap:
		return "triple-tap"
	case KindLongPress:
		return "long-press"
	case KindPan:
		return "pan"
	case KindSwipe:
		return "swipe"
	case KindPinch:
		return "pinch"
	case KindRotate:
		return "rotate"
	case KindMultiFingerTap:
		return "multi-finger-tap"
	case KindMultiFingerSwipe:
		return "multi-finger-swipe"
	case KindForceTouch:
		return "force-touch"
	case KindCircular:
		return "circular"
	case KindEdgeSwipe:
		return "edge-swipe"
	case KindCustom:
		return "custom"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// ParseKind maps a wire name back to its Kind.
func ParseKind(s string) (Kind, error) {
	for k := KindTap; k <= KindSequence; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown gesture kind %q", s)
}

// Discrete reports whether the kind is a one-shot recognition that
// feeds the sequence log. Pan, pinch, and rotate stream continuously
// and are excluded; sequence completions do not feed back into the
// log they came from.
func (k Kind) Discrete() bool {
	switch k {
	case KindPan, KindPinch, KindRotate, KindSequence, KindUnknown:
		return false
	default:
		return true
	}
}

// ===== DIRECTIONS =====

// Direction is an axis-aligned swipe/pan direction.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionDown
	DirectionLeft
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return "none"
	}
}

// ParseDirection maps a wire name back to its Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "none":
		return DirectionNone, nil
	case "up":
		return DirectionUp, nil
	case "down":
		return DirectionDown, nil
	case "left":
		return DirectionLeft, nil
	case "right":
		return DirectionRight, nil
	}
	return DirectionNone, fmt.Errorf("unknown direction %q", s)
}

// DominantDirection picks the axis-aligned direction of a movement
// vector by its dominant axis. Y grows downward.
func DominantDirection(dx, dy float64) Direction {
	if dx == 0 && dy == 0 {
		return DirectionNone
	}
	if abs(dx) >= abs(dy) {
		if dx > 0 {
			return DirectionRight
		}
		return DirectionLeft
	}
	if dy > 0 {
		return DirectionDown
	}
	return DirectionUp
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ===== FORCE LEVELS =====

// ForceLevel is a discrete pressure band.
type ForceLevel int

const (
	ForceNone ForceLevel = iota
	ForceLight
	ForceMedium
	ForceHeavy
)

func (f ForceLevel) String() string {
	switch f {
	case ForceLight:
		return "light"
	case ForceMedium:
		return "medium"
	case ForceHeavy:
		return "heavy"
	default:
		return "none"
	}
}

// ParseForceLevel maps a wire name back to its ForceLevel.
func ParseForceLevel(s string) (ForceLevel, error) {
	switch s {
	case "none":
		return ForceNone, nil
	case "light":
		return ForceLight, nil
	case "medium":
		return ForceMedium, nil
	case "heavy":
		return ForceHeavy, nil
	}
	return ForceNone, fmt.Errorf("unknown force level %q", s)
}

// ===== SURFACE EDGES =====

// Edge names a surface edge for edge-swipe classification.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeLeft
	EdgeRight
	EdgeTop
	EdgeBottom
)

func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	default:
		return "none"
	}
}

// ParseEdge maps a wire name back to its Edge.
func ParseEdge(s string) (Edge, error) {
	switch s {
	case "none":
		return EdgeNone, nil
	case "left":
		return EdgeLeft, nil
	case "right":
		return EdgeRight, nil
	case "top":
		return EdgeTop, nil
	case "bottom":
		return EdgeBottom, nil
	}
	return EdgeNone, fmt.Errorf("unknown edge %q", s)
}

// ===== EVENTS =====

// Event is an immutable record emitted when a pattern is recognized.
// Only the fields meaningful for the Kind are populated.
type Event struct {
	Kind       Kind           `json:"kind"`
	Center     geometry.Point `json:"center"`
	Delta      geometry.Point `json:"delta"`
	Scale      float64        `json:"scale,omitempty"`
	Rotation   float64        `json:"rotation,omitempty"` // radians since gesture start
	Velocity   geometry.Point `json:"velocity"`           // px/sec
	Direction  Direction      `json:"direction,omitempty"`
	TouchCount int            `json:"touch_count"`
	Confidence float64        `json:"confidence"`
	Timestamp  time.Time      `json:"timestamp"`
	Force      ForceLevel     `json:"force,omitempty"`
	Edge       Edge           `json:"edge,omitempty"`
	Clockwise  bool           `json:"clockwise,omitempty"`
	Name       string         `json:"name,omitempty"` // template or sequence name
}

// String renders a compact one-line summary for logs and feeds.
func (e Event) String() string {
	s := fmt.Sprintf("%s touches=%d center=(%.0f,%.0f) conf=%.2f",
		e.Kind, e.TouchCount, e.Center.X, e.Center.Y, e.Confidence)
	switch e.Kind {
	case KindSwipe, KindMultiFingerSwipe:
		s += " dir=" + e.Direction.String()
	case KindEdgeSwipe:
		s += " edge=" + e.Edge.String() + " dir=" + e.Direction.String()
	case KindPinch:
		s += fmt.Sprintf(" scale=%.2f", e.Scale)
	case KindRotate:
		s += fmt.Sprintf(" rotation=%.2frad", e.Rotation)
	case KindForceTouch:
		s += " force=" + e.Force.String()
	case KindCircular:
		if e.Clockwise {
			s += " dir=clockwise"
		} else {
			s += " dir=counterclockwise"
		}
	case KindCustom, KindSequence:
		s += " name=" + e.Name
	}
	return s
}

// Handler receives recognized gestures. Handlers run synchronously on
// the goroutine delivering contact events; a slow handler stalls
// recognition.
type Handler func(Event)

// ===== CONTACT EVENTS =====

// ContactOp is the lifecycle operation of a raw contact event.
type ContactOp int

const (
	OpStart ContactOp = iota
	OpMove
	OpEnd
	OpCancel
)

func (o ContactOp) String() string {
	switch o {
	case OpStart:
		return "start"
	case OpMove:
		return "move"
	case OpEnd:
		return "end"
	case OpCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// ParseContactOp maps a wire name back to its ContactOp.
func ParseContactOp(s string) (ContactOp, error) {
	switch s {
	case "start":
		return OpStart, nil
	case "move":
		return OpMove, nil
	case "end":
		return OpEnd, nil
	case "cancel":
		return OpCancel, nil
	}
	return OpStart, fmt.Errorf("unknown contact op %q", s)
}

// ContactEvent is one raw input event. Timestamps come from the event
// source, never the wall clock, so replayed streams classify the same
// way live ones did.
type ContactEvent struct {
	Op       ContactOp      `json:"op"`
	ID       int            `json:"id"`
	Position geometry.Point `json:"position"`
	Pressure float64        `json:"pressure,omitempty"`
	Time     time.Time      `json:"time"`
}
