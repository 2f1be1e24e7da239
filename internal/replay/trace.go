package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"gestured/internal/gesture"
	"gestured/internal/logging"
)

// TraceEvent is one JSONL line of a trace: either a raw contact event
// or a recognized-gesture annotation. Exactly one field is set.
type TraceEvent struct {
	Contact *gesture.ContactEvent `json:"contact,omitempty"`
	Gesture *gesture.Event        `json:"gesture,omitempty"`
}

// Writer appends trace events to a JSONL file.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
	path string
}

// NewWriter creates (truncating) a trace file at path.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create trace directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}

	logging.Replay("Writing trace to %s", path)
	return &Writer{file: f, buf: bufio.NewWriter(f), path: path}, nil
}

// Path returns the trace file path.
func (w *Writer) Path() string { return w.path }

// WriteContact appends a raw contact event.
func (w *Writer) WriteContact(ev gesture.ContactEvent) error {
	return w.write(TraceEvent{Contact: &ev})
}

// WriteGesture appends a recognized-gesture annotation.
func (w *Writer) WriteGesture(ev gesture.Event) error {
	return w.write(TraceEvent{Gesture: &ev})
}

func (w *Writer) write(te TraceEvent) error {
	data, err := json.Marshal(te)
	if err != nil {
		return fmt.Errorf("failed to encode trace event: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.buf.Write(data); err != nil {
		return fmt.Errorf("failed to write trace event: %w", err)
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write trace event: %w", err)
	}
	return nil
}

// Close flushes and closes the trace file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush trace: %w", err)
	}
	return w.file.Close()
}

// Reader streams trace events from a JSONL file.
type Reader struct {
	file    *os.File
	scanner *bufio.Scanner
	line    int
}

var _ EventSource = (*Reader)(nil)

// NewReader opens a trace file for reading.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &Reader{file: f, scanner: scanner}, nil
}

// Next returns the next trace event, or io.EOF when the trace ends.
// Blank lines are skipped.
func (r *Reader) Next() (TraceEvent, error) {
	for r.scanner.Scan() {
		r.line++
		data := r.scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var te TraceEvent
		if err := json.Unmarshal(data, &te); err != nil {
			return TraceEvent{}, fmt.Errorf("trace line %d: %w", r.line, err)
		}
		return te, nil
	}
	if err := r.scanner.Err(); err != nil {
		return TraceEvent{}, fmt.Errorf("failed to read trace: %w", err)
	}
	return TraceEvent{}, io.EOF
}

// Close closes the trace file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// ReadAll loads an entire trace into memory.
func ReadAll(path string) ([]TraceEvent, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var events []TraceEvent
	for {
		te, err := r.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		events = append(events, te)
	}
}

// Recorder tees a live engine run into a trace file. Write failures
// are logged, not returned; losing a trace never interrupts
// recognition.
type Recorder struct {
	w *Writer
}

// NewRecorder creates a recorder writing to path.
func NewRecorder(path string) (*Recorder, error) {
	w, err := NewWriter(path)
	if err != nil {
		return nil, err
	}
	return &Recorder{w: w}, nil
}

// Contact records a raw contact event.
func (r *Recorder) Contact(ev gesture.ContactEvent) {
	if err := r.w.WriteContact(ev); err != nil {
		logging.ReplayError("Failed to record contact event: %v", err)
	}
}

// Gesture records a recognized gesture.
func (r *Recorder) Gesture(ev gesture.Event) {
	if err := r.w.WriteGesture(ev); err != nil {
		logging.ReplayError("Failed to record gesture: %v", err)
	}
}

// Close flushes and closes the underlying trace file.
func (r *Recorder) Close() error {
	logging.Replay("Trace recorded to %s", r.w.Path())
	return r.w.Close()
}
