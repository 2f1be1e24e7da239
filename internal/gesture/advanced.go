package gesture

import (
	"math"
	"time"

	"gestured/internal/geometry"
	"gestured/internal/logging"
	"gestured/internal/touch"
)

// ===== FORCE TOUCH =====

// forceLevel maps a normalized pressure to its band.
func (e *Engine) forceLevel(pressure float64) ForceLevel {
	fc := e.cfg.Force
	switch {
	case pressure >= fc.Heavy:
		return ForceHeavy
	case pressure >= fc.Medium:
		return ForceMedium
	case pressure >= fc.Light:
		return ForceLight
	default:
		return ForceNone
	}
}

// checkForce emits a force-touch event whenever a contact's pressure
// enters a new band. Devices that never report pressure never cross
// out of the none band, so they never emit. Dropping back to none is
// tracked silently; pressing deep again re-emits.
func (e *Engine) checkForce(c *touch.Contact, aux *contactAux, now time.Time) {
	if !e.cfg.EnableForceTouch {
		return
	}
	band := e.forceLevel(c.Pressure)
	if band == aux.lastForce {
		return
	}
	aux.lastForce = band
	if band == ForceNone {
		return
	}
	e.emit(Event{
		Kind:       KindForceTouch,
		Center:     c.Position,
		Force:      band,
		TouchCount: 1,
		Confidence: 1,
		Timestamp:  now,
	})
}

// ===== EDGE SWIPES =====

// edgeAt resolves which enabled screen edge a position sits on, if
// any. Right and bottom need the surface size to be known.
func (e *Engine) edgeAt(p geometry.Point) Edge {
	ec := e.cfg.Edge
	if ec.Width <= 0 {
		return EdgeNone
	}
	switch {
	case ec.Left && p.X <= ec.Width:
		return EdgeLeft
	case ec.Top && p.Y <= ec.Width:
		return EdgeTop
	case ec.Right && e.surfaceW > 0 && p.X >= e.surfaceW-ec.Width:
		return EdgeRight
	case ec.Bottom && e.surfaceH > 0 && p.Y >= e.surfaceH-ec.Width:
		return EdgeBottom
	default:
		return EdgeNone
	}
}

// ===== CIRCULAR GESTURES =====

// tryCircular reports a circular gesture when the released path is
// round enough: radial deviation within the configured fraction of
// the mean radius, radius inside the accepted band, and total sweep
// past the angle threshold. Positive sweep is clockwise on screen.
func (e *Engine) tryCircular(c *touch.Contact, now time.Time) bool {
	if !e.cfg.EnableCircular {
		return false
	}
	cc := e.cfg.Circular
	pts := c.PathPoints()
	if len(pts) < cc.MinSamples {
		return false
	}
	stats := geometry.Radial(pts)
	if stats.MeanRadius < cc.MinRadius || stats.MeanRadius > cc.MaxRadius {
		return false
	}
	if stats.Deviation > cc.MaxDeviationRatio*stats.MeanRadius {
		return false
	}
	sweep := geometry.Sweep(pts, stats.Center)
	if math.Abs(sweep)*180/math.Pi < cc.AngleThreshold {
		return false
	}
	logging.ClassifyDebug("circular: radius=%.1f deviation=%.1f sweep=%.0fdeg",
		stats.MeanRadius, stats.Deviation, sweep*180/math.Pi)
	e.emit(Event{
		Kind:       KindCircular,
		Center:     stats.Center,
		Rotation:   sweep,
		Clockwise:  sweep > 0,
		TouchCount: 1,
		Confidence: 1,
		Timestamp:  now,
	})
	return true
}

// ===== MULTI-FINGER GESTURES =====

// evaluateMultiFinger classifies a 3+ contact group the moment its
// first finger lifts, then consumes every member so later lifts stay
// silent. At most one gesture per group.
func (e *Engine) evaluateMultiFinger(group []*touch.Contact, now time.Time) {
	for _, c := range group {
		if a, ok := e.aux[c.ID]; ok && a.consumed {
			// A finger joined after the group was already reported.
			e.consumeGroup(group)
			return
		}
	}
	e.consumeGroup(group)

	n := len(group)
	if !e.cfg.fingerEnabled(n) {
		logging.ClassifyDebug("%d-finger gestures disabled", n)
		return
	}

	starts := make([]geometry.Point, n)
	ends := make([]geometry.Point, n)
	tapOK, swipeOK := true, true
	var dir Direction
	for i, c := range group {
		starts[i] = c.StartPosition
		ends[i] = c.Position
		dur := now.Sub(c.StartTime)

		maxDisp := c.Displacement()
		if a, ok := e.aux[c.ID]; ok && a.maxDisplacement > maxDisp {
			maxDisp = a.maxDisplacement
		}
		if maxDisp > e.cfg.PanThreshold || dur >= e.cfg.LongPressDelay {
			tapOK = false
		}

		if c.Displacement() < e.cfg.SwipeThreshold || dur > e.cfg.SwipeMaxDuration {
			swipeOK = false
		}
		d := c.Position.Sub(c.StartPosition)
		cd := DominantDirection(d.X, d.Y)
		if i == 0 {
			dir = cd
		} else if cd != dir {
			swipeOK = false
		}
	}

	center := geometry.Centroid(ends)
	switch {
	case tapOK:
		e.emit(Event{
			Kind:       KindMultiFingerTap,
			Center:     center,
			TouchCount: n,
			Confidence: 1,
			Timestamp:  now,
		})
	case swipeOK:
		e.emit(Event{
			Kind:       KindMultiFingerSwipe,
			Center:     center,
			Delta:      center.Sub(geometry.Centroid(starts)),
			Direction:  dir,
			TouchCount: n,
			Confidence: 1,
			Timestamp:  now,
		})
	default:
		logging.ClassifyDebug("%d-finger group matched neither tap nor swipe", n)
	}
}

func (e *Engine) consumeGroup(group []*touch.Contact) {
	for _, c := range group {
		if a, ok := e.aux[c.ID]; ok {
			a.consumed = true
		}
	}
}
