package gesture

import (
	"math"
	"testing"
	"time"

	"gestured/internal/geometry"
	"gestured/internal/sequence"
	"gestured/internal/template"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func pt(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }

// collector records every emitted event for assertions.
type collector struct {
	events []Event
}

func (c *collector) handle(ev Event) { c.events = append(c.events, ev) }

func (c *collector) byKind(k Kind) []Event {
	var out []Event
	for _, ev := range c.events {
		if ev.Kind == k {
			out = append(out, ev)
		}
	}
	return out
}

func (c *collector) kinds() []Kind {
	out := make([]Kind, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Kind
	}
	return out
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *collector) {
	t.Helper()
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	col := &collector{}
	e.SetHandler(col.handle)
	return e, col
}

// tap presses and releases without movement.
func tap(e *Engine, id int, pos geometry.Point, downMs, upMs int) {
	e.HandleStart(id, pos, 0, at(downMs))
	e.HandleEnd(id, pos, at(upMs))
}

// drag presses at from, moves in even steps, and releases at to.
func drag(e *Engine, id int, from, to geometry.Point, downMs, upMs, steps int) {
	e.HandleStart(id, from, 0, at(downMs))
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		p := geometry.Point{X: from.X + (to.X-from.X)*f, Y: from.Y + (to.Y-from.Y)*f}
		ms := downMs + (upMs-downMs)*i/(steps+1)
		e.HandleMove(id, p, 0, at(ms))
	}
	e.HandleEnd(id, to, at(upMs))
}

// ===== TAP FAMILY =====

func TestTapHeldUntilDoubleTapWindowCloses(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	tap(e, 1, pt(100, 100), 0, 80)
	if len(col.events) != 0 {
		t.Fatalf("events before window closed: %v", col.kinds())
	}

	e.Tick(at(200))
	if len(col.events) != 0 {
		t.Fatalf("tap fired before deadline: %v", col.kinds())
	}

	e.Tick(at(380))
	if len(col.events) != 1 || col.events[0].Kind != KindTap {
		t.Fatalf("events = %v, want exactly one tap", col.kinds())
	}
	ev := col.events[0]
	if !ev.Timestamp.Equal(at(80)) {
		t.Errorf("tap timestamp = %v, want release time %v", ev.Timestamp, at(80))
	}
	if ev.Center != pt(100, 100) || ev.TouchCount != 1 {
		t.Errorf("tap = %+v", ev)
	}

	e.Tick(at(1000))
	if len(col.events) != 1 {
		t.Fatalf("tap emitted twice: %v", col.kinds())
	}
}

func TestTapImmediateWhenDoubleTapDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableDoubleTap = false
	cfg.EnableTripleTap = false
	e, col := newTestEngine(t, cfg)

	tap(e, 1, pt(100, 100), 0, 80)
	if len(col.events) != 1 || col.events[0].Kind != KindTap {
		t.Fatalf("events = %v, want immediate tap", col.kinds())
	}
}

func TestDoubleTap(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	tap(e, 1, pt(100, 100), 0, 80)
	tap(e, 2, pt(100, 100), 200, 280)
	e.Tick(at(1000))

	if len(col.events) != 1 || col.events[0].Kind != KindDoubleTap {
		t.Fatalf("events = %v, want exactly one double-tap", col.kinds())
	}
	if !col.events[0].Timestamp.Equal(at(280)) {
		t.Errorf("double-tap timestamp = %v, want %v", col.events[0].Timestamp, at(280))
	}
}

func TestSlowTapsStaySingles(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	tap(e, 1, pt(100, 100), 0, 80)
	tap(e, 2, pt(100, 100), 500, 580)
	e.Tick(at(1500))

	taps := col.byKind(KindTap)
	if len(taps) != 2 {
		t.Fatalf("events = %v, want two taps", col.kinds())
	}
	if len(col.byKind(KindDoubleTap)) != 0 {
		t.Fatalf("double-tap fired across a 420ms gap: %v", col.kinds())
	}
	if !taps[0].Timestamp.Equal(at(80)) || !taps[1].Timestamp.Equal(at(580)) {
		t.Errorf("tap timestamps = %v, %v", taps[0].Timestamp, taps[1].Timestamp)
	}
}

func TestTripleTap(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	tap(e, 1, pt(100, 100), 0, 80)
	tap(e, 2, pt(100, 100), 150, 230)
	tap(e, 3, pt(100, 100), 300, 380)
	e.Tick(at(1500))

	want := []Kind{KindDoubleTap, KindTripleTap}
	got := col.kinds()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if len(col.byKind(KindTap)) != 0 {
		t.Fatalf("single tap leaked from a triple chain: %v", got)
	}
}

func TestTapsApartInSpaceDoNotChain(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	tap(e, 1, pt(0, 0), 0, 80)
	tap(e, 2, pt(200, 0), 150, 230)
	e.Tick(at(1500))

	if len(col.byKind(KindDoubleTap)) != 0 {
		t.Fatalf("taps 200px apart chained: %v", col.kinds())
	}
	if len(col.byKind(KindTap)) != 2 {
		t.Fatalf("events = %v, want two separate taps", col.kinds())
	}
}

// ===== LONG PRESS =====

func TestLongPressFiresAtDeadline(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	e.HandleStart(1, pt(100, 100), 0, at(0))
	e.Tick(at(400))
	if len(col.events) != 0 {
		t.Fatalf("long-press fired early: %v", col.kinds())
	}
	e.Tick(at(500))
	if len(col.events) != 1 || col.events[0].Kind != KindLongPress {
		t.Fatalf("events = %v, want long-press", col.kinds())
	}
	e.HandleEnd(1, pt(100, 100), at(600))
	e.Tick(at(1200))
	if len(col.events) != 1 {
		t.Fatalf("extra events after long-press release: %v", col.kinds())
	}
}

func TestLongPressTimestampIsDeadlineNotTick(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	e.HandleStart(1, pt(100, 100), 0, at(0))
	e.Tick(at(730))
	if len(col.events) != 1 {
		t.Fatalf("events = %v", col.kinds())
	}
	if !col.events[0].Timestamp.Equal(at(500)) {
		t.Errorf("timestamp = %v, want deadline %v", col.events[0].Timestamp, at(500))
	}
}

func TestLongPressFiresAtReleaseWithoutTick(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	e.HandleStart(1, pt(100, 100), 0, at(0))
	e.HandleEnd(1, pt(100, 100), at(600))
	e.Tick(at(1200))

	if len(col.events) != 1 || col.events[0].Kind != KindLongPress {
		t.Fatalf("events = %v, want exactly one long-press", col.kinds())
	}
	if !col.events[0].Timestamp.Equal(at(500)) {
		t.Errorf("timestamp = %v, want %v", col.events[0].Timestamp, at(500))
	}
}

func TestMovementCancelsLongPress(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	e.HandleStart(1, pt(100, 100), 0, at(0))
	e.HandleMove(1, pt(130, 100), 0, at(100))
	e.Tick(at(600))

	if len(col.byKind(KindLongPress)) != 0 {
		t.Fatalf("long-press fired after 30px of movement: %v", col.kinds())
	}
}

// ===== PAN AND SWIPE =====

func TestPanDeltasReconstructDisplacement(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	e.HandleStart(1, pt(100, 100), 0, at(0))
	e.HandleMove(1, pt(120, 100), 0, at(50))
	e.HandleMove(1, pt(140, 100), 0, at(100))
	e.HandleMove(1, pt(160, 100), 0, at(150))
	e.HandleEnd(1, pt(160, 100), at(1000))

	pans := col.byKind(KindPan)
	if len(pans) != 3 {
		t.Fatalf("events = %v, want three pans", col.kinds())
	}
	var sum float64
	for _, p := range pans {
		sum += p.Delta.X
	}
	if sum != 60 {
		t.Errorf("sum of pan deltas = %v, want 60", sum)
	}
	if len(col.byKind(KindSwipe)) != 0 {
		t.Fatalf("900ms drag reported as swipe: %v", col.kinds())
	}
}

func TestPanVelocity(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	e.HandleStart(1, pt(100, 100), 0, at(0))
	for i := 1; i <= 5; i++ {
		e.HandleMove(1, pt(100+float64(i)*20, 100), 0, at(i*20))
	}

	pans := col.byKind(KindPan)
	if len(pans) == 0 {
		t.Fatal("no pan events")
	}
	v := pans[len(pans)-1].Velocity
	if math.Abs(v.X-1000) > 100 || math.Abs(v.Y) > 1 {
		t.Errorf("velocity = %+v, want about (1000, 0) px/s", v)
	}
}

func TestSwipeRight(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	drag(e, 1, pt(100, 100), pt(180, 100), 0, 90, 3)

	swipes := col.byKind(KindSwipe)
	if len(swipes) != 1 {
		t.Fatalf("events = %v, want one swipe", col.kinds())
	}
	s := swipes[0]
	if s.Direction != DirectionRight {
		t.Errorf("direction = %v, want right", s.Direction)
	}
	if s.Delta.X != 80 || s.Velocity.X <= 0 {
		t.Errorf("swipe = %+v", s)
	}
}

func TestSlowDragIsNotSwipe(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	drag(e, 1, pt(100, 100), pt(180, 100), 0, 500, 5)

	if len(col.byKind(KindSwipe)) != 0 {
		t.Fatalf("500ms drag reported as swipe: %v", col.kinds())
	}
	if len(col.byKind(KindPan)) == 0 {
		t.Fatalf("slow drag produced no pans: %v", col.kinds())
	}
}

// ===== CANCEL AND UNKNOWN IDS =====

func TestCancelProducesNoGesture(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	e.HandleStart(1, pt(100, 100), 0, at(0))
	e.HandleMove(1, pt(200, 100), 0, at(50))
	e.HandleCancel(1, at(80))
	e.Tick(at(1000))

	for _, ev := range col.events {
		if ev.Kind != KindPan {
			t.Fatalf("cancelled contact produced %v", ev.Kind)
		}
	}
	if n := len(e.ActiveContacts()); n != 0 {
		t.Fatalf("%d contacts left after cancel", n)
	}
}

func TestUnknownIdsIgnored(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	e.HandleMove(9, pt(10, 10), 0, at(0))
	e.HandleEnd(9, pt(10, 10), at(10))

	if len(col.events) != 0 {
		t.Fatalf("unknown ids emitted %v", col.kinds())
	}
	if got := e.Metrics().UnknownContacts; got != 2 {
		t.Errorf("UnknownContacts = %d, want 2", got)
	}
}

func TestDuplicateStartReplacesContact(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	e.HandleStart(1, pt(100, 100), 0, at(0))
	e.HandleStart(1, pt(300, 300), 0, at(50))
	e.HandleEnd(1, pt(300, 300), at(130))
	e.Tick(at(1000))

	taps := col.byKind(KindTap)
	if len(taps) != 1 {
		t.Fatalf("events = %v, want one tap", col.kinds())
	}
	if taps[0].Center != pt(300, 300) {
		t.Errorf("tap center = %v, want replaced position", taps[0].Center)
	}
}

// ===== TICK ORDERING AND DEBOUNCE =====

func TestTickFiresDeadlinesInOrder(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	tap(e, 1, pt(100, 100), 0, 80) // pending tap deadline 380
	e.HandleStart(2, pt(400, 400), 0, at(100))
	e.Tick(at(700)) // long-press deadline 600

	got := col.kinds()
	if len(got) != 2 || got[0] != KindTap || got[1] != KindLongPress {
		t.Fatalf("events = %v, want [tap long-press]", got)
	}
}

func TestDebounceSwallowsRapidRepeats(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DebounceDelay = 500 * time.Millisecond
	e, col := newTestEngine(t, cfg)

	tap(e, 1, pt(100, 100), 0, 80)
	tap(e, 2, pt(100, 100), 450, 530)
	e.Tick(at(2000))

	if len(col.byKind(KindTap)) != 1 {
		t.Fatalf("events = %v, want one tap after debounce", col.kinds())
	}
	if got := e.Metrics().DebouncedEvents; got != 1 {
		t.Errorf("DebouncedEvents = %d, want 1", got)
	}
}

// ===== SEQUENCES AND TEMPLATES THROUGH THE ENGINE =====

func TestSequenceRecognizedThroughEngine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableDoubleTap = false
	cfg.EnableTripleTap = false
	e, col := newTestEngine(t, cfg)

	err := e.Sequences().SetDefinitions([]sequence.Definition{{
		Name: "combo",
		Steps: []sequence.Step{
			{Kind: "tap"},
			{Kind: "tap", MaxInterval: 400 * time.Millisecond},
			{Kind: "swipe", MaxInterval: 400 * time.Millisecond},
		},
	}})
	if err != nil {
		t.Fatalf("SetDefinitions: %v", err)
	}

	tap(e, 1, pt(100, 100), 0, 80)
	tap(e, 2, pt(100, 100), 150, 230)
	drag(e, 3, pt(100, 100), pt(180, 100), 300, 380, 3)

	seqs := col.byKind(KindSequence)
	if len(seqs) != 1 {
		t.Fatalf("events = %v, want one sequence", col.kinds())
	}
	if seqs[0].Name != "combo" || seqs[0].TouchCount != 3 {
		t.Errorf("sequence = %+v", seqs[0])
	}
	if !seqs[0].Timestamp.Equal(at(380)) {
		t.Errorf("sequence timestamp = %v, want %v", seqs[0].Timestamp, at(380))
	}
}

func TestCustomTemplateRecognizedThroughEngine(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	err := e.Matcher().Add(template.Template{
		Name: "two-finger-hold",
		Patterns: []template.Pattern{
			{Type: template.PatternStatic},
			{Type: template.PatternStatic},
		},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	e.HandleStart(1, pt(100, 100), 0, at(0))
	e.HandleStart(2, pt(200, 100), 0, at(20))
	e.HandleEnd(1, pt(100, 100), at(150))
	e.HandleEnd(2, pt(200, 100), at(180))

	customs := col.byKind(KindCustom)
	if len(customs) != 1 {
		t.Fatalf("events = %v, want one custom match", col.kinds())
	}
	ev := customs[0]
	if ev.Name != "two-finger-hold" || ev.Confidence != 1.0 || ev.TouchCount != 2 {
		t.Errorf("custom = %+v", ev)
	}
}

func TestCustomBelowThresholdStaysSilent(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	e.Matcher().Add(template.Template{
		Name: "two-finger-hold",
		Patterns: []template.Pattern{
			{Type: template.PatternStatic},
			{Type: template.PatternStatic},
		},
	})

	tap(e, 1, pt(100, 100), 0, 80)
	e.Tick(at(1000))

	if len(col.byKind(KindCustom)) != 0 {
		t.Fatalf("count-mismatched template matched: %v", col.kinds())
	}
}

// ===== METRICS =====

func TestMetricsCountEventsAndPasses(t *testing.T) {
	e, col := newTestEngine(t, DefaultConfig())

	tap(e, 1, pt(100, 100), 0, 80)
	e.Tick(at(400))
	drag(e, 2, pt(100, 100), pt(180, 100), 500, 590, 3)

	m := e.Metrics()
	if m.EventsByKind[KindTap] != 1 || m.EventsByKind[KindSwipe] != 1 {
		t.Errorf("EventsByKind = %v", m.EventsByKind)
	}
	if m.TotalEvents != int64(len(col.events)) {
		t.Errorf("TotalEvents = %d, handler saw %d", m.TotalEvents, len(col.events))
	}
	if m.ContactEvents != 7 {
		t.Errorf("ContactEvents = %d, want 7", m.ContactEvents)
	}
	if m.Passes == 0 || m.AvgPassDuration() < 0 {
		t.Errorf("pass metrics = %+v", m)
	}
}

func TestSetConfigRejectsInvalid(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())

	bad := DefaultConfig()
	bad.PanThreshold = -1
	if err := e.SetConfig(bad); err == nil {
		t.Fatal("invalid config accepted")
	}
	if e.Config().PanThreshold != 10 {
		t.Errorf("config mutated by rejected update: %v", e.Config().PanThreshold)
	}
}
