package gesture

import (
	"math"
	"time"

	"gestured/internal/geometry"
	"gestured/internal/logging"
	"gestured/internal/touch"
)

// ===== SINGLE-CONTACT CLASSIFICATION =====

// classifySingleEnd decides what a lone, ungrouped contact performed,
// evaluated at release. Priority: tap chain, then circular, then
// swipe. A contact that long-pressed already reported its gesture.
func (e *Engine) classifySingleEnd(c *touch.Contact, aux *contactAux, now time.Time) {
	if aux.state == stateLongPressed {
		return
	}
	dur := now.Sub(c.StartTime)
	if aux.maxDisplacement <= e.cfg.PanThreshold && dur < e.cfg.LongPressDelay {
		e.handleTapEnd(c, now)
		return
	}
	if e.tryCircular(c, now) {
		return
	}
	e.trySwipe(c, aux, now, dur)
}

// flushPendingTap emits a deferred tap whose double-tap window has
// already closed. Without this, a later release could overwrite a
// still-unfired tap when no Tick ran in between.
func (e *Engine) flushPendingTap(now time.Time) {
	if p := e.pendingTap; p != nil && !now.Before(p.deadline) {
		e.pendingTap = nil
		e.emit(p.ev)
	}
}

// handleTapEnd appends a qualifying release to the tap chain and
// emits the right member of the tap family. A double-tap fires at the
// second release, a triple at the third; a lone tap is held back for
// the double-tap window, keeping its release timestamp.
func (e *Engine) handleTapEnd(c *touch.Contact, now time.Time) {
	e.flushPendingTap(now)
	e.pruneTapLog(now)
	rec := tapRecord{pos: c.Position, at: now}
	if len(e.tapLog) >= maxTapLog {
		copy(e.tapLog, e.tapLog[1:])
		e.tapLog[len(e.tapLog)-1] = rec
	} else {
		e.tapLog = append(e.tapLog, rec)
	}

	n := e.tapChainLen()
	switch {
	case n >= 3 && e.cfg.EnableTripleTap:
		e.cancelPendingTap()
		e.tapLog = nil
		e.emit(Event{
			Kind:       KindTripleTap,
			Center:     c.Position,
			TouchCount: 1,
			Confidence: 1,
			Timestamp:  now,
		})
	case n == 2 && e.cfg.EnableDoubleTap:
		e.cancelPendingTap()
		if !e.cfg.EnableTripleTap {
			e.tapLog = nil
		}
		e.emit(Event{
			Kind:       KindDoubleTap,
			Center:     c.Position,
			TouchCount: 1,
			Confidence: 1,
			Timestamp:  now,
		})
	default:
		// A release that does not extend the chain leaves any held
		// tap unable to ever become a double; report it now.
		if p := e.pendingTap; p != nil {
			e.pendingTap = nil
			e.emit(p.ev)
		}
		if !e.cfg.EnableTap {
			return
		}
		ev := Event{
			Kind:       KindTap,
			Center:     c.Position,
			TouchCount: 1,
			Confidence: 1,
			Timestamp:  now,
		}
		if e.cfg.EnableDoubleTap {
			e.pendingTap = &pendingTap{ev: ev, deadline: now.Add(e.cfg.DoubleTapInterval)}
			logging.ClassifyDebug("tap held for double-tap window until %s",
				e.pendingTap.deadline.Format("15:04:05.000"))
		} else {
			e.emit(ev)
		}
	}
}

// tapChainLen counts the unbroken run of chained taps ending at the
// newest log entry. Consecutive releases must fall within the
// double-tap interval and the tap slop of each other.
func (e *Engine) tapChainLen() int {
	n := 1
	for i := len(e.tapLog) - 1; i > 0; i-- {
		cur, prev := e.tapLog[i], e.tapLog[i-1]
		if cur.at.Sub(prev.at) > e.cfg.DoubleTapInterval {
			break
		}
		if geometry.Distance(cur.pos, prev.pos) > e.cfg.TapSlop {
			break
		}
		n++
	}
	return n
}

// pruneTapLog drops entries too old to ever chain again.
func (e *Engine) pruneTapLog(now time.Time) {
	horizon := 2 * e.cfg.DoubleTapInterval
	i := 0
	for i < len(e.tapLog) && now.Sub(e.tapLog[i].at) > horizon {
		i++
	}
	if i > 0 {
		e.tapLog = append(e.tapLog[:0], e.tapLog[i:]...)
	}
}

func (e *Engine) cancelPendingTap() {
	if e.pendingTap != nil {
		logging.ClassifyDebug("pending tap superseded by chained tap")
		e.pendingTap = nil
	}
}

// fireLongPress reports a matured long-press dwell. The event carries
// the deadline timestamp, not the time it was noticed, so replays and
// coarse tick cadences agree.
func (e *Engine) fireLongPress(c *touch.Contact, aux *contactAux) {
	at := aux.longPressAt
	aux.longPressAt = time.Time{}
	aux.state = stateLongPressed
	e.emit(Event{
		Kind:       KindLongPress,
		Center:     c.Position,
		TouchCount: 1,
		Confidence: 1,
		Timestamp:  at,
	})
}

// trySwipe reports a swipe, or an edge swipe when the contact started
// on an enabled screen edge, for a fast displaced release.
func (e *Engine) trySwipe(c *touch.Contact, aux *contactAux, now time.Time, dur time.Duration) {
	if c.Displacement() < e.cfg.SwipeThreshold || dur > e.cfg.SwipeMaxDuration {
		return
	}
	disp := c.Position.Sub(c.StartPosition)
	dir := DominantDirection(disp.X, disp.Y)
	ev := Event{
		Center:     c.Position,
		Delta:      disp,
		Velocity:   e.velocityOf(c, now),
		Direction:  dir,
		TouchCount: 1,
		Confidence: 1,
		Timestamp:  now,
	}
	if aux.startEdge != EdgeNone && e.cfg.EnableEdgeSwipe {
		ev.Kind = KindEdgeSwipe
		ev.Edge = aux.startEdge
		e.emit(ev)
		return
	}
	if e.cfg.EnableSwipe {
		ev.Kind = KindSwipe
		e.emit(ev)
	}
}

// velocityOf measures the contact's velocity over the trailing
// velocity window, in px per second.
func (e *Engine) velocityOf(c *touch.Contact, now time.Time) geometry.Point {
	if len(c.Path) < 2 {
		return geometry.Point{}
	}
	window := e.cfg.VelocityWindow
	if window <= 0 {
		window = 100 * time.Millisecond
	}
	cutoff := now.Add(-window)
	first := c.Path[0]
	for i := len(c.Path) - 1; i >= 0; i-- {
		if c.Path[i].Time.Before(cutoff) {
			break
		}
		first = c.Path[i]
	}
	last := c.Path[len(c.Path)-1]
	dt := last.Time.Sub(first.Time).Seconds()
	if dt <= 0 {
		return geometry.Point{}
	}
	d := last.Position.Sub(first.Position)
	return geometry.Point{X: d.X / dt, Y: d.Y / dt}
}

// ===== TWO-CONTACT CLASSIFICATION =====

// rebaseTwoFinger captures a fresh pinch/rotate baseline when exactly
// two contacts are live, and clears it otherwise. Scale and rotation
// are always reported relative to this baseline.
func (e *Engine) rebaseTwoFinger() {
	contacts := e.tracker.Active()
	if len(contacts) != 2 {
		e.two = twoFingerState{}
		return
	}
	a, b := contacts[0], contacts[1]
	if e.two.active && e.two.idA == a.ID && e.two.idB == b.ID {
		return
	}
	e.two = twoFingerState{
		active:     true,
		idA:        a.ID,
		idB:        b.ID,
		startDist:  geometry.Distance(a.Position, b.Position),
		startAngle: geometry.Angle(a.Position, b.Position),
	}
	logging.ClassifyDebug("two-finger baseline: dist=%.1f angle=%.2frad",
		e.two.startDist, e.two.startAngle)
}

// streamTwoFinger emits pinch and rotate events against the baseline
// while exactly two contacts move.
func (e *Engine) streamTwoFinger(now time.Time) {
	contacts := e.tracker.Active()
	if len(contacts) != 2 {
		return
	}
	a, b := contacts[0], contacts[1]
	if !e.two.active || e.two.idA != a.ID || e.two.idB != b.ID {
		e.rebaseTwoFinger()
		return
	}
	mid := geometry.Midpoint(a.Position, b.Position)

	if e.cfg.EnablePinch && e.two.startDist > 0 {
		scale := geometry.Distance(a.Position, b.Position) / e.two.startDist
		if math.Abs(scale-1) >= e.cfg.PinchThreshold {
			e.emit(Event{
				Kind:       KindPinch,
				Center:     mid,
				Scale:      scale,
				TouchCount: 2,
				Confidence: 1,
				Timestamp:  now,
			})
		}
	}
	if e.cfg.EnableRotate {
		rot := geometry.AngleDelta(e.two.startAngle, geometry.Angle(a.Position, b.Position))
		if math.Abs(rot) >= rotateEpsilon {
			e.emit(Event{
				Kind:       KindRotate,
				Center:     mid,
				Rotation:   rot,
				TouchCount: 2,
				Confidence: 1,
				Timestamp:  now,
			})
		}
	}
}
