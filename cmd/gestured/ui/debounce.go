// Package ui debouncing utilities for event handling
package ui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Debouncer delays a callback until a burst of triggers goes quiet.
type Debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
}

// NewDebouncer returns a debouncer that waits delay after the last trigger.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Debounce schedules fn after the delay. Each call restarts the clock,
// so only the last fn of a burst runs.
func (d *Debouncer) Debounce(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Cancel drops whatever is scheduled.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Immediate cancels the scheduled call and runs fn now.
func (d *Debouncer) Immediate(fn func()) {
	d.Cancel()
	fn()
}

// SizeDebouncer coalesces tea.WindowSizeMsg bursts during interactive
// resizing and delivers only the settled size. The model listens on
// Settled() via a command so the relayout happens on the update loop,
// not on the timer goroutine.
type SizeDebouncer struct {
	debouncer *Debouncer
	settled   chan tea.WindowSizeMsg

	mu      sync.Mutex
	pending tea.WindowSizeMsg
}

// NewSizeDebouncer creates a debouncer tuned for resize events
func NewSizeDebouncer(duration time.Duration) *SizeDebouncer {
	return &SizeDebouncer{
		debouncer: NewDebouncer(duration),
		settled:   make(chan tea.WindowSizeMsg, 1),
	}
}

// Put records a resize. Once the burst settles, the latest size is
// offered on the Settled channel. If an earlier settled size was never
// consumed it is replaced.
func (sd *SizeDebouncer) Put(msg tea.WindowSizeMsg) {
	sd.mu.Lock()
	sd.pending = msg
	sd.mu.Unlock()

	sd.debouncer.Debounce(func() {
		// All writers hold mu, so after the drain the one-slot buffer
		// is guaranteed to have room and the send cannot block.
		sd.mu.Lock()
		defer sd.mu.Unlock()
		select {
		case <-sd.settled:
		default:
		}
		sd.settled <- sd.pending
	})
}

// Settled returns the channel carrying debounced sizes
func (sd *SizeDebouncer) Settled() <-chan tea.WindowSizeMsg {
	return sd.settled
}

// Cancel drops any pending resize
func (sd *SizeDebouncer) Cancel() {
	sd.debouncer.Cancel()
}

// DefaultResizeDuration is the recommended debounce duration for resize events
const DefaultResizeDuration = 120 * time.Millisecond
