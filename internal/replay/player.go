package replay

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"gestured/internal/gesture"
	"gestured/internal/logging"
)

// EventSource yields trace events in recorded order. Next returns
// io.EOF once the stream is exhausted.
type EventSource interface {
	Next() (TraceEvent, error)
}

// Sink consumes a contact-event stream on the caller's goroutine.
// *gesture.Engine is the canonical implementation.
type Sink interface {
	Handle(ev gesture.ContactEvent)
	Tick(now time.Time)
}

var _ Sink = (*gesture.Engine)(nil)

// DefaultSettleDelay is how far past the last recorded event time is
// advanced after playback, so deadlines armed at the tail of a trace
// (pending taps, dwell gestures) still fire. Covers the default
// double-tap and long-press windows with room to spare.
const DefaultSettleDelay = time.Second

// PlayStats summarizes one playback run.
type PlayStats struct {
	ContactsFed     int           // raw contact events dispatched
	AnnotationsSeen int           // recognized-gesture lines in the trace
	TraceDuration   time.Duration // recorded span, first to last contact
	WallDuration    time.Duration // how long playback took
}

// Player feeds a trace into a sink. The sink keeps the recorded
// timeline: event timestamps come from the trace, the wall clock only
// paces delivery.
type Player struct {
	sink   Sink
	speed  float64
	settle time.Duration
}

// NewPlayer creates a player. speed scales playback: 1 is recorded
// speed, 2 is twice as fast, 0 or less dispatches without pacing.
func NewPlayer(sink Sink, speed float64) *Player {
	return &Player{sink: sink, speed: speed, settle: DefaultSettleDelay}
}

// SettleAfter overrides the post-trace time advance. Callers with
// configs slower than the defaults (a 2s long-press, say) should pass
// their combined tail windows here.
func (p *Player) SettleAfter(d time.Duration) *Player {
	p.settle = d
	return p
}

// Play streams the trace file at path through the sink.
func (p *Player) Play(ctx context.Context, path string) (PlayStats, error) {
	r, err := NewReader(path)
	if err != nil {
		return PlayStats{}, err
	}
	defer r.Close()

	logging.Replay("Playing trace %s at speed %.2f", path, p.speed)
	return p.PlayFrom(ctx, r)
}

// PlayFrom streams events from src through the sink. The read and
// dispatch halves run as a pipeline; cancellation stops both.
func (p *Player) PlayFrom(ctx context.Context, src EventSource) (PlayStats, error) {
	start := time.Now()

	events := make(chan TraceEvent, 64)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(events)
		for {
			te, err := src.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			select {
			case events <- te:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	var stats PlayStats
	g.Go(func() error {
		var first, last time.Time
		haveLast := false

		for te := range events {
			switch {
			case te.Contact != nil:
				ev := *te.Contact
				if p.speed > 0 && haveLast && ev.Time.After(last) {
					delay := time.Duration(float64(ev.Time.Sub(last)) / p.speed)
					timer := time.NewTimer(delay)
					select {
					case <-timer.C:
					case <-gctx.Done():
						timer.Stop()
						return gctx.Err()
					}
				}
				p.sink.Tick(ev.Time)
				p.sink.Handle(ev)
				if !haveLast {
					first = ev.Time
				}
				last, haveLast = ev.Time, true
				stats.ContactsFed++

			case te.Gesture != nil:
				stats.AnnotationsSeen++

			default:
				logging.ReplayDebug("Skipping empty trace line")
			}
		}

		if haveLast {
			// Run time forward past every armed deadline so deferred
			// taps and dwell gestures at the tail of the trace fire.
			p.sink.Tick(last.Add(p.settle))
			stats.TraceDuration = last.Sub(first)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return stats, fmt.Errorf("playback failed: %w", err)
	}

	stats.WallDuration = time.Since(start)
	logging.Replay("Playback done: %d contacts, %d annotations, trace span %v",
		stats.ContactsFed, stats.AnnotationsSeen, stats.TraceDuration)
	return stats, nil
}
