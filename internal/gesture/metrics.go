package gesture

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ===== RECOGNITION METRICS =====

// Metrics counts what the engine has recognized and how long
// classification passes take. The engine owns it on its single
// goroutine; read it through Engine.Metrics().
type Metrics struct {
	EventsByKind  map[Kind]int64
	TotalEvents   int64
	ContactEvents int64

	Passes            int64
	LastPassDuration  time.Duration
	MaxPassDuration   time.Duration
	totalPassDuration time.Duration

	SequencesCompleted int64
	TemplatesMatched   int64
	UnknownContacts    int64
	DebouncedEvents    int64
}

func newMetrics() *Metrics {
	return &Metrics{EventsByKind: make(map[Kind]int64)}
}

func (m *Metrics) recordEvent(ev Event) {
	m.EventsByKind[ev.Kind]++
	m.TotalEvents++
	switch ev.Kind {
	case KindSequence:
		m.SequencesCompleted++
	case KindCustom:
		m.TemplatesMatched++
	}
}

func (m *Metrics) recordPass(d time.Duration) {
	m.Passes++
	m.LastPassDuration = d
	m.totalPassDuration += d
	if d > m.MaxPassDuration {
		m.MaxPassDuration = d
	}
}

// AvgPassDuration returns the mean classification pass duration.
func (m *Metrics) AvgPassDuration() time.Duration {
	if m.Passes == 0 {
		return 0
	}
	return m.totalPassDuration / time.Duration(m.Passes)
}

// Snapshot returns a copy safe to hold across further engine calls.
func (m *Metrics) Snapshot() Metrics {
	out := *m
	out.EventsByKind = make(map[Kind]int64, len(m.EventsByKind))
	for k, v := range m.EventsByKind {
		out.EventsByKind[k] = v
	}
	return out
}

// String renders a one-line summary for logs and the stats footer.
func (m *Metrics) String() string {
	kinds := make([]Kind, 0, len(m.EventsByKind))
	for k := range m.EventsByKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var b strings.Builder
	fmt.Fprintf(&b, "events=%d contacts=%d passes=%d avg=%v max=%v",
		m.TotalEvents, m.ContactEvents, m.Passes, m.AvgPassDuration(), m.MaxPassDuration)
	for _, k := range kinds {
		fmt.Fprintf(&b, " %s=%d", k, m.EventsByKind[k])
	}
	return b.String()
}
