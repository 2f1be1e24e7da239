package gesture

import (
	"sort"
	"time"

	"gestured/internal/geometry"
	"gestured/internal/logging"
	"gestured/internal/sequence"
	"gestured/internal/template"
	"gestured/internal/touch"
)

// ===== PER-CONTACT CLASSIFIER STATE =====

type contactState int

const (
	stateTouching contactState = iota
	stateLongPressed
	statePanning
)

// contactAux carries the classifier's view of one live contact,
// alongside the raw tracker state.
type contactAux struct {
	state           contactState
	grouped         bool // ever part of a 2+ contact set; single-contact kinds no longer apply
	consumed        bool // already reported by a multi-finger evaluation
	maxDisplacement float64
	lastPanPos      geometry.Point
	longPressAt     time.Time // deadline; zero once fired or cancelled
	startEdge       Edge
	lastForce       ForceLevel
}

type tapRecord struct {
	pos geometry.Point
	at  time.Time
}

// maxTapLog bounds the tap chain log; chains longer than this never
// matter.
const maxTapLog = 8

// pendingTap is a single tap held back until the double-tap window
// closes. The event keeps its release timestamp.
type pendingTap struct {
	ev       Event
	deadline time.Time
}

// twoFingerState is the pinch/rotate baseline, captured whenever the
// contact set becomes exactly two.
type twoFingerState struct {
	active     bool
	idA, idB   int
	startDist  float64
	startAngle float64
}

// rotateEpsilon suppresses rotate events for jitter-level angle
// changes, in radians.
const rotateEpsilon = 0.01

// ===== ENGINE =====

// Engine turns a stream of contact events into recognized gestures.
// It is event driven: time only advances through the timestamps on
// incoming events and explicit Tick calls, never the wall clock, so a
// replayed stream classifies exactly as the live one did. Not safe
// for concurrent use; drive it from one goroutine.
type Engine struct {
	cfg       Config
	tracker   *touch.Tracker
	matcher   *template.Matcher
	sequences *sequence.Tracker
	metrics   *Metrics
	handler   Handler

	surfaceW float64
	surfaceH float64

	aux        map[int]*contactAux
	tapLog     []tapRecord
	pendingTap *pendingTap
	two        twoFingerState
	lastEmit   map[Kind]time.Time

	// interactionEnded collects contacts that ended (not cancelled)
	// since the surface was last clear, for template matching once
	// the whole interaction finishes.
	interactionEnded []*touch.Contact
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		tracker:   touch.NewTracker(cfg.MaxPathPoints),
		matcher:   template.NewMatcher(cfg.RecognitionThreshold),
		sequences: sequence.NewTracker(),
		metrics:   newMetrics(),
		aux:       make(map[int]*contactAux),
		lastEmit:  make(map[Kind]time.Time),
	}, nil
}

// SetHandler installs the callback that receives recognized gestures.
// The handler runs synchronously on the engine's goroutine.
func (e *Engine) SetHandler(h Handler) { e.handler = h }

// SetSurfaceSize tells the engine how large the touch surface is, so
// right and bottom edge swipes can be resolved. Zero means unknown;
// only left and top edges work then.
func (e *Engine) SetSurfaceSize(w, h float64) {
	e.surfaceW, e.surfaceH = w, h
}

// SetConfig swaps the configuration of a running engine, for config
// hot reload. Live contacts keep classifying; only new decisions use
// the new thresholds.
func (e *Engine) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg
	e.matcher.SetThreshold(cfg.RecognitionThreshold)
	logging.Engine("configuration updated")
	return nil
}

// Config returns the active configuration.
func (e *Engine) Config() Config { return e.cfg }

// Matcher exposes the template matcher for registration and listing.
func (e *Engine) Matcher() *template.Matcher { return e.matcher }

// Sequences exposes the sequence tracker for registration and listing.
func (e *Engine) Sequences() *sequence.Tracker { return e.sequences }

// Metrics returns a snapshot of the recognition counters.
func (e *Engine) Metrics() Metrics { return e.metrics.Snapshot() }

// ActiveContacts returns the live contacts ordered by id.
func (e *Engine) ActiveContacts() []*touch.Contact { return e.tracker.Active() }

// ===== CONTACT EVENT ENTRY POINTS =====

// Handle dispatches one raw contact event.
func (e *Engine) Handle(ev ContactEvent) {
	switch ev.Op {
	case OpStart:
		e.HandleStart(ev.ID, ev.Position, ev.Pressure, ev.Time)
	case OpMove:
		e.HandleMove(ev.ID, ev.Position, ev.Pressure, ev.Time)
	case OpEnd:
		e.HandleEnd(ev.ID, ev.Position, ev.Time)
	case OpCancel:
		e.HandleCancel(ev.ID, ev.Time)
	}
}

// HandleStart registers a new contact.
func (e *Engine) HandleStart(id int, pos geometry.Point, pressure float64, now time.Time) {
	defer e.pass()()
	e.metrics.ContactEvents++
	e.flushPendingTap(now)

	c := e.tracker.Start(id, pos, pressure, now)
	aux := &contactAux{lastPanPos: pos, startEdge: e.edgeAt(pos)}
	if e.cfg.EnableLongPress {
		aux.longPressAt = now.Add(e.cfg.LongPressDelay)
	}
	e.aux[id] = aux

	if e.tracker.Count() >= 2 {
		for _, other := range e.tracker.Active() {
			if a := e.aux[other.ID]; a != nil && !a.grouped {
				a.grouped = true
				a.longPressAt = time.Time{}
			}
		}
		e.rebaseTwoFinger()
	}
	e.checkForce(c, aux, now)
	logging.EngineDebug("contact %d down at (%.0f,%.0f), %d active", id, pos.X, pos.Y, e.tracker.Count())
}

// HandleMove updates a contact and streams any continuous gestures.
func (e *Engine) HandleMove(id int, pos geometry.Point, pressure float64, now time.Time) {
	defer e.pass()()
	e.metrics.ContactEvents++

	c, ok := e.tracker.Move(id, pos, pressure, now)
	if !ok {
		e.metrics.UnknownContacts++
		logging.Journal().UnknownContact("move", id)
		return
	}
	aux, ok := e.aux[id]
	if !ok {
		return
	}

	e.checkForce(c, aux, now)

	// A long-press whose deadline passed fires even when no Tick
	// arrived in between; the event keeps the deadline timestamp.
	if !aux.grouped && aux.state == stateTouching &&
		!aux.longPressAt.IsZero() && !now.Before(aux.longPressAt) {
		e.fireLongPress(c, aux)
	}

	if aux.grouped {
		e.streamTwoFinger(now)
		return
	}
	if aux.state == stateLongPressed {
		return
	}

	disp := c.Displacement()
	if disp > aux.maxDisplacement {
		aux.maxDisplacement = disp
	}
	if disp > e.cfg.PanThreshold {
		aux.longPressAt = time.Time{}
	}

	switch {
	case aux.state == statePanning:
		e.emit(Event{
			Kind:       KindPan,
			Center:     pos,
			Delta:      pos.Sub(aux.lastPanPos),
			Velocity:   e.velocityOf(c, now),
			TouchCount: 1,
			Confidence: 1,
			Timestamp:  now,
		})
		aux.lastPanPos = pos
	case disp > e.cfg.PanThreshold && e.cfg.EnablePan:
		aux.state = statePanning
		e.emit(Event{
			Kind:       KindPan,
			Center:     pos,
			Delta:      pos.Sub(c.StartPosition),
			Velocity:   e.velocityOf(c, now),
			TouchCount: 1,
			Confidence: 1,
			Timestamp:  now,
		})
		aux.lastPanPos = pos
	}
}

// HandleEnd removes a contact and classifies what it performed.
func (e *Engine) HandleEnd(id int, pos geometry.Point, now time.Time) {
	defer e.pass()()
	e.metrics.ContactEvents++

	if c, ok := e.tracker.Get(id); ok && c.Position != pos {
		e.tracker.Move(id, pos, c.Pressure, now)
	}
	group := e.tracker.Active()
	c, ok := e.tracker.End(id, now)
	if !ok {
		e.metrics.UnknownContacts++
		logging.Journal().UnknownContact("end", id)
		return
	}
	aux, ok := e.aux[id]
	if !ok {
		aux = &contactAux{}
	}

	if !aux.grouped && aux.state == stateTouching &&
		!aux.longPressAt.IsZero() && !now.Before(aux.longPressAt) {
		e.fireLongPress(c, aux)
	}

	switch {
	case aux.consumed:
	case aux.grouped && len(group) >= 3:
		e.evaluateMultiFinger(group, now)
	case aux.grouped:
		// Two-finger member: pinch and rotate stream during moves,
		// nothing more fires at lift.
	default:
		e.classifySingleEnd(c, aux, now)
	}

	delete(e.aux, id)
	e.interactionEnded = append(e.interactionEnded, c)
	e.rebaseTwoFinger()
	logging.EngineDebug("contact %d up, %d active", id, e.tracker.Count())

	if e.tracker.Count() == 0 {
		e.endInteraction(now)
	}
}

// HandleCancel discards a contact without classification.
func (e *Engine) HandleCancel(id int, now time.Time) {
	defer e.pass()()
	e.metrics.ContactEvents++

	if !e.tracker.Cancel(id, now) {
		e.metrics.UnknownContacts++
		logging.Journal().UnknownContact("cancel", id)
		return
	}
	delete(e.aux, id)
	e.rebaseTwoFinger()
	logging.EngineDebug("contact %d cancelled, %d active", id, e.tracker.Count())

	if e.tracker.Count() == 0 {
		e.endInteraction(now)
	}
}

// ===== TIME ADVANCEMENT =====

// Tick advances the engine's notion of time, firing any deadline that
// has passed: deferred taps and long-press dwells. Callers decide the
// cadence; the engine never consults the wall clock.
func (e *Engine) Tick(now time.Time) {
	defer e.pass()()

	type firing struct {
		at   time.Time
		fire func()
	}
	var due []firing

	if p := e.pendingTap; p != nil && !now.Before(p.deadline) {
		due = append(due, firing{p.deadline, func() {
			e.pendingTap = nil
			e.emit(p.ev)
		}})
	}
	for _, c := range e.tracker.Active() {
		aux, ok := e.aux[c.ID]
		if !ok || aux.grouped || aux.state != stateTouching || aux.longPressAt.IsZero() {
			continue
		}
		if now.Before(aux.longPressAt) {
			continue
		}
		due = append(due, firing{aux.longPressAt, func() { e.fireLongPress(c, aux) }})
	}

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, f := range due {
		f.fire()
	}

	e.pruneTapLog(now)
	e.sequences.Prune(now)
}

// ===== EMISSION =====

// emit runs every recognized gesture through debounce, metrics,
// logging, the handler, and the sequence tracker, in that order.
func (e *Engine) emit(ev Event) {
	if e.cfg.DebounceDelay > 0 && ev.Kind.Discrete() {
		if last, ok := e.lastEmit[ev.Kind]; ok && ev.Timestamp.Sub(last) < e.cfg.DebounceDelay {
			e.metrics.DebouncedEvents++
			logging.ClassifyDebug("debounced %s within %v", ev.Kind, e.cfg.DebounceDelay)
			return
		}
		e.lastEmit[ev.Kind] = ev.Timestamp
	}

	e.metrics.recordEvent(ev)
	if ev.Kind.Discrete() {
		logging.Classify("%s", ev)
		if ev.Kind == KindCustom {
			logging.Journal().TemplateMatched(ev.Name, ev.Confidence)
		} else {
			logging.Journal().GestureRecognized(ev.Kind.String(), ev.TouchCount, ev.Confidence)
		}
	} else {
		logging.ClassifyDebug("%s", ev)
	}
	if e.handler != nil {
		e.handler(ev)
	}

	if !ev.Kind.Discrete() {
		return
	}
	for _, comp := range e.sequences.Observe(ev.Kind.String(), ev.Timestamp, ev.Center) {
		logging.Journal().SequenceCompleted(comp.Name, comp.Steps, comp.Span.Milliseconds())
		seq := Event{
			Kind:       KindSequence,
			Name:       comp.Name,
			Center:     ev.Center,
			TouchCount: comp.Steps,
			Confidence: 1,
			Timestamp:  comp.At,
		}
		e.metrics.recordEvent(seq)
		logging.Classify("%s", seq)
		if e.handler != nil {
			e.handler(seq)
		}
	}
}

// endInteraction runs once the surface is clear: template matching
// over everything that ended since the last clear surface.
func (e *Engine) endInteraction(now time.Time) {
	ended := e.interactionEnded
	e.interactionEnded = nil
	e.two = twoFingerState{}
	if len(ended) == 0 {
		return
	}

	matches := e.matcher.Match(ended)
	if len(matches) == 0 {
		return
	}
	centers := make([]geometry.Point, len(ended))
	for i, c := range ended {
		centers[i] = c.Position
	}
	center := geometry.Centroid(centers)
	for _, m := range matches {
		e.emit(Event{
			Kind:       KindCustom,
			Name:       m.Name,
			Center:     center,
			TouchCount: len(ended),
			Confidence: m.Confidence,
			Timestamp:  now,
		})
	}
}

// slowPassThreshold flags classification passes that took long enough
// to matter. A pass walks a handful of contacts and the template
// library, so anything past this points at an oversized library.
const slowPassThreshold = 10 * time.Millisecond

// pass times one engine entry point for the metrics.
func (e *Engine) pass() func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		e.metrics.recordPass(d)
		if d >= slowPassThreshold {
			logging.Journal().PerfSample("classify", d.Milliseconds(), slowPassThreshold.Milliseconds())
		}
	}
}
