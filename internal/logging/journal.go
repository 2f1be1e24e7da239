// Package logging: the journal is an append-only JSONL stream of
// recognition events, one JSON object per line, written alongside the
// category logs. It records what the engine recognized rather than how
// it got there, so a session's journal can be analyzed offline or
// compared across runs.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// =============================================================================
// JOURNAL EVENT TYPES
// =============================================================================

// JournalEventType identifies the kind of journaled event
type JournalEventType string

const (
	// Session lifecycle
	JournalSessionStart JournalEventType = "session_start"
	JournalSessionEnd   JournalEventType = "session_end"

	// Recognition events
	JournalGesture  JournalEventType = "gesture"
	JournalSequence JournalEventType = "sequence"
	JournalTemplate JournalEventType = "template"

	// Anomalies
	JournalUnknownContact JournalEventType = "unknown_contact"
	JournalStaleContact   JournalEventType = "stale_contact"

	// Performance
	JournalPerfSample JournalEventType = "perf_sample"
	JournalPerfSlow   JournalEventType = "perf_slow"
)

// JournalEvent is one structured journal entry
type JournalEvent struct {
	Timestamp  int64                  `json:"ts"` // Unix milliseconds
	EventType  JournalEventType       `json:"event"`
	SessionID  string                 `json:"session,omitempty"`
	Kind       string                 `json:"kind,omitempty"` // Gesture kind or sequence/template name
	TouchCount int                    `json:"touches,omitempty"`
	Confidence float64                `json:"confidence,omitempty"`
	DurationMs int64                  `json:"dur_ms,omitempty"`
	Message    string                 `json:"msg,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// =============================================================================
// JOURNAL WRITER
// =============================================================================

var (
	journalFile   *os.File
	journalMu     sync.Mutex
	journalLogger *JournalLogger
)

// JournalLogger writes structured journal entries, optionally scoped
// to a session id.
type JournalLogger struct {
	sessionID string
}

// InitJournal opens the journal file. No-op unless debug mode is on.
func InitJournal() error {
	if !IsDebugMode() {
		return nil
	}

	journalMu.Lock()
	defer journalMu.Unlock()

	if journalFile != nil {
		return nil // Already initialized
	}

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(logsDir, fmt.Sprintf("%s_journal.log", date))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create journal: %w", err)
	}
	journalFile = file

	header := fmt.Sprintf("# gestured journal started at %s\n", time.Now().Format(time.RFC3339))
	journalFile.WriteString(header)
	return nil
}

// CloseJournal closes the journal file
func CloseJournal() {
	journalMu.Lock()
	defer journalMu.Unlock()

	if journalFile != nil {
		journalFile.Close()
		journalFile = nil
	}
}

// Journal returns the global journal logger
func Journal() *JournalLogger {
	if journalLogger == nil {
		journalLogger = &JournalLogger{}
	}
	return journalLogger
}

// JournalWithSession creates a journal logger scoped to a session
func JournalWithSession(sessionID string) *JournalLogger {
	return &JournalLogger{sessionID: sessionID}
}

// ScopeJournal binds the shared journal to a session id, so entries
// journaled through Journal() by any component carry it. An empty id
// unscopes.
func ScopeJournal(sessionID string) {
	journalLogger = JournalWithSession(sessionID)
}

// Log writes one journal event
func (j *JournalLogger) Log(event JournalEvent) {
	if !IsDebugMode() || journalFile == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.SessionID == "" && j.sessionID != "" {
		event.SessionID = j.sessionID
	}

	journalMu.Lock()
	defer journalMu.Unlock()

	data, err := json.Marshal(event)
	if err == nil {
		journalFile.WriteString(string(data) + "\n")
	}
}

// =============================================================================
// CONVENIENCE METHODS
// =============================================================================

// SessionStart journals the beginning of a recognition session
func (j *JournalLogger) SessionStart(sessionID string) {
	j.Log(JournalEvent{
		EventType: JournalSessionStart,
		SessionID: sessionID,
	})
}

// SessionEnd journals the end of a session with summary counters
func (j *JournalLogger) SessionEnd(sessionID string, eventCount int, durationMs int64) {
	j.Log(JournalEvent{
		EventType:  JournalSessionEnd,
		SessionID:  sessionID,
		TouchCount: eventCount,
		DurationMs: durationMs,
	})
}

// GestureRecognized journals one recognized gesture
func (j *JournalLogger) GestureRecognized(kind string, touchCount int, confidence float64) {
	j.Log(JournalEvent{
		EventType:  JournalGesture,
		Kind:       kind,
		TouchCount: touchCount,
		Confidence: confidence,
	})
}

// SequenceCompleted journals a completed gesture sequence
func (j *JournalLogger) SequenceCompleted(name string, steps int, spanMs int64) {
	j.Log(JournalEvent{
		EventType:  JournalSequence,
		Kind:       name,
		TouchCount: steps,
		DurationMs: spanMs,
	})
}

// TemplateMatched journals a custom template match
func (j *JournalLogger) TemplateMatched(name string, confidence float64) {
	j.Log(JournalEvent{
		EventType:  JournalTemplate,
		Kind:       name,
		Confidence: confidence,
	})
}

// UnknownContact journals an event for an id the tracker does not know
func (j *JournalLogger) UnknownContact(op string, id int) {
	j.Log(JournalEvent{
		EventType: JournalUnknownContact,
		Message:   fmt.Sprintf("%s for unknown contact %d", op, id),
	})
}

// PerfSample journals one recognition-pass duration
func (j *JournalLogger) PerfSample(operation string, durationMs int64, thresholdMs int64) {
	eventType := JournalPerfSample
	if thresholdMs > 0 && durationMs > thresholdMs {
		eventType = JournalPerfSlow
	}
	j.Log(JournalEvent{
		EventType:  eventType,
		Kind:       operation,
		DurationMs: durationMs,
	})
}
