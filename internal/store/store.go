package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"gestured/internal/gesture"
	"gestured/internal/logging"
)

// Store persists recognition sessions and their emitted gestures in
// SQLite. One session is one contiguous run of the engine; its events
// arrive in emission order.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Session is one recorded engine run.
type Session struct {
	ID         string
	StartedAt  time.Time
	EndedAt    time.Time // zero while the session is open
	EventCount int
}

// Ended reports whether the session has been sealed.
func (s Session) Ended() bool { return !s.EndedAt.IsZero() }

// NewStore opens (creating if needed) the SQLite database at path.
func NewStore(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewStore").WarnOver(time.Second)
	defer timer.Stop()

	logging.Store("Opening session store at %s", path)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("busy_timeout pragma failed: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("journal_mode=WAL pragma failed: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logging.StoreDebug("foreign_keys pragma failed: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		logging.StoreError("schema init failed: %v", err)
		db.Close()
		return nil, err
	}

	logging.StoreDebug("Session store ready")
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	sessionsTable := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		ended_at INTEGER,
		event_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	eventsTable := `
	CREATE TABLE IF NOT EXISTS gesture_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		kind TEXT NOT NULL,
		touch_count INTEGER NOT NULL,
		confidence REAL NOT NULL,
		timestamp_ms INTEGER NOT NULL,
		payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_gesture_events_session
		ON gesture_events(session_id, timestamp_ms);
	CREATE INDEX IF NOT EXISTS idx_gesture_events_kind
		ON gesture_events(kind);`

	for _, stmt := range []string{sessionsTable, eventsTable} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	logging.StoreDebug("Closing session store")
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.dbPath }

// BeginSession creates a new open session and returns its id.
func (s *Store) BeginSession(startedAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	_, err := s.db.Exec(
		"INSERT INTO sessions (id, started_at) VALUES (?, ?)",
		id, startedAt.UnixMilli(),
	)
	if err != nil {
		logging.StoreError("Failed to begin session: %v", err)
		return "", fmt.Errorf("failed to begin session: %w", err)
	}

	logging.Store("Session started: %s", id)
	return id, nil
}

// EndSession seals a session, stamping its end time and event count.
func (s *Store) EndSession(id string, endedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`UPDATE sessions
		 SET ended_at = ?,
		     event_count = (SELECT COUNT(*) FROM gesture_events WHERE session_id = ?)
		 WHERE id = ?`,
		endedAt.UnixMilli(), id, id,
	)
	if err != nil {
		logging.StoreError("Failed to end session %s: %v", id, err)
		return fmt.Errorf("failed to end session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s not found", id)
	}

	logging.Store("Session ended: %s", id)
	return nil
}

// RecordEvent appends a recognized gesture to a session.
func (s *Store) RecordEvent(sessionID string, ev gesture.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO gesture_events (session_id, kind, touch_count, confidence, timestamp_ms, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, ev.Kind.String(), ev.TouchCount, ev.Confidence,
		ev.Timestamp.UnixMilli(), string(payload),
	)
	if err != nil {
		logging.StoreError("Failed to record %s event: %v", ev.Kind, err)
		return fmt.Errorf("failed to record event: %w", err)
	}

	logging.StoreDebug("Recorded %s event for session %s", ev.Kind, sessionID)
	return nil
}

// Sessions lists all sessions, newest first. Event counts are live,
// so open sessions report what they have so far.
func (s *Store) Sessions() ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT s.id, s.started_at, s.ended_at, COUNT(e.id)
		 FROM sessions s
		 LEFT JOIN gesture_events e ON e.session_id = s.id
		 GROUP BY s.id
		 ORDER BY s.started_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Session returns one session by id.
func (s *Store) Session(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT s.id, s.started_at, s.ended_at, COUNT(e.id)
		 FROM sessions s
		 LEFT JOIN gesture_events e ON e.session_id = s.id
		 WHERE s.id = ?
		 GROUP BY s.id`,
		id,
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return Session{}, fmt.Errorf("session %s not found", id)
	}
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(r rowScanner) (Session, error) {
	var (
		sess      Session
		startedMs int64
		endedMs   sql.NullInt64
	)
	if err := r.Scan(&sess.ID, &startedMs, &endedMs, &sess.EventCount); err != nil {
		if err == sql.ErrNoRows {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("failed to scan session: %w", err)
	}
	sess.StartedAt = time.UnixMilli(startedMs)
	if endedMs.Valid {
		sess.EndedAt = time.UnixMilli(endedMs.Int64)
	}
	return sess, nil
}

// Events returns a session's gestures in emission order, decoded for
// replay or export.
func (s *Store) Events(sessionID string) ([]gesture.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT payload FROM gesture_events
		 WHERE session_id = ?
		 ORDER BY timestamp_ms, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []gesture.Event
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		var ev gesture.Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// KindCounts returns recognized-gesture counts per kind. An empty
// sessionID counts across all sessions.
func (s *Store) KindCounts(sessionID string) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT kind, COUNT(*) FROM gesture_events GROUP BY kind"
	args := []interface{}{}
	if sessionID != "" {
		query = "SELECT kind, COUNT(*) FROM gesture_events WHERE session_id = ? GROUP BY kind"
		args = append(args, sessionID)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count kinds: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[kind] = count
	}
	return counts, rows.Err()
}

// DeleteSession removes a session and its events.
func (s *Store) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM gesture_events WHERE session_id = ?", id); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete events: %w", err)
	}
	res, err := tx.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return fmt.Errorf("session %s not found", id)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	logging.Store("Session deleted: %s", id)
	return nil
}
