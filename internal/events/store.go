package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	timestamp  DATETIME NOT NULL,
	subject    TEXT NOT NULL DEFAULT '',
	actor      TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL DEFAULT '',
	data       TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
CREATE INDEX IF NOT EXISTS idx_events_subject ON events(subject);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
`

// Log is the SQLite-backed audit trail. Safe for concurrent use; database/sql
// serializes access to the underlying connection pool.
type Log struct {
	db *sql.DB
}

// OpenLog opens (creating if needed) the audit database at path
func OpenLog(path string) (*Log, error) {
	if path == "" {
		return nil, fmt.Errorf("event log path is required")
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize event log schema: %w", err)
	}

	return &Log{db: db}, nil
}

// Close closes the underlying database
func (l *Log) Close() error {
	return l.db.Close()
}

// Append writes one event to the trail
func (l *Log) Append(ev *Event) error {
	if ev == nil {
		return fmt.Errorf("event is required")
	}
	if !ev.Type.IsValid() {
		return fmt.Errorf("invalid event type: %s", ev.Type)
	}

	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	_, err = l.db.Exec(
		`INSERT INTO events (id, type, timestamp, subject, actor, message, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, string(ev.Type), ev.Timestamp.UTC(), ev.Subject, ev.Actor, ev.Message, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// Query returns events matching the filter, newest first
func (l *Log) Query(f Filter) ([]*Event, error) {
	var conds []string
	var args []interface{}

	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.Subject != "" {
		conds = append(conds, "subject = ?")
		args = append(args, f.Subject)
	}
	if !f.After.IsZero() {
		conds = append(conds, "timestamp > ?")
		args = append(args, f.After.UTC())
	}

	query := "SELECT id, type, timestamp, subject, actor, message, data FROM events"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp DESC, id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Event
	for rows.Next() {
		var ev Event
		var typ, data string
		var ts time.Time
		if err := rows.Scan(&ev.ID, &typ, &ts, &ev.Subject, &ev.Actor, &ev.Message, &data); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Type = EventType(typ)
		ev.Timestamp = ts
		if err := json.Unmarshal([]byte(data), &ev.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event data: %w", err)
		}
		out = append(out, &ev)
	}
	return out, rows.Err()
}

// CountByType returns how many events of each type exist in the trail
func (l *Log) CountByType() (map[EventType]int, error) {
	rows, err := l.db.Query("SELECT type, COUNT(*) FROM events GROUP BY type")
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[EventType]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[EventType(typ)] = n
	}
	return counts, rows.Err()
}
