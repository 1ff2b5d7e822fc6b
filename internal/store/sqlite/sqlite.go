// Package sqlite keeps the history of discovery sessions in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/marcuoli/go-devicescan/pkg/devicescan"
)

// ErrNotFound is returned when a session ID does not exist.
var ErrNotFound = errors.New("session not found")

// Store implements devicescan.SessionStore using SQLite
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (creating if needed) the database at path.
func New(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time, and :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		device_count INTEGER NOT NULL,
		devices JSON NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session_devices (
		session_id TEXT NOT NULL,
		device_id TEXT NOT NULL,
		category TEXT NOT NULL,
		name TEXT NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_timestamp ON sessions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_session_devices_session ON session_devices(session_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save stores session, replacing any session with the same ID. A missing
// ID or timestamp is filled in, and the stored session is returned.
func (s *Store) Save(ctx context.Context, session devicescan.Session) (devicescan.Session, error) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Timestamp.IsZero() {
		session.Timestamp = s.now()
	}
	if session.Devices == nil {
		session.Devices = []devicescan.DiscoveredDevice{}
	}
	session.DeviceCount = len(session.Devices)

	data, err := json.Marshal(session.Devices)
	if err != nil {
		return devicescan.Session{}, fmt.Errorf("failed to marshal devices: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return devicescan.Session{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, timestamp, device_count, devices)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			timestamp = excluded.timestamp,
			device_count = excluded.device_count,
			devices = excluded.devices
	`, session.ID, session.Timestamp.UnixNano(), session.DeviceCount, string(data)); err != nil {
		return devicescan.Session{}, fmt.Errorf("failed to save session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_devices WHERE session_id = ?`, session.ID); err != nil {
		return devicescan.Session{}, fmt.Errorf("failed to clear session devices: %w", err)
	}
	for _, d := range session.Devices {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_devices (session_id, device_id, category, name)
			VALUES (?, ?, ?, ?)
		`, session.ID, d.ID(), string(d.Category()), d.Name()); err != nil {
			return devicescan.Session{}, fmt.Errorf("failed to save device %s: %w", d.ID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return devicescan.Session{}, fmt.Errorf("failed to commit session: %w", err)
	}
	return session, nil
}

// Session returns one session by ID.
func (s *Store) Session(ctx context.Context, id string) (devicescan.Session, error) {
	sessions, err := s.query(ctx, `
		SELECT id, timestamp, device_count, devices FROM sessions WHERE id = ?
	`, id)
	if err != nil {
		return devicescan.Session{}, err
	}
	if len(sessions) == 0 {
		return devicescan.Session{}, ErrNotFound
	}
	return sessions[0], nil
}

// Sessions returns every session, newest first.
func (s *Store) Sessions(ctx context.Context) ([]devicescan.Session, error) {
	return s.query(ctx, `
		SELECT id, timestamp, device_count, devices FROM sessions
		ORDER BY timestamp DESC
	`)
}

// SessionsBetween returns the sessions recorded in [from, to], newest first.
func (s *Store) SessionsBetween(ctx context.Context, from, to time.Time) ([]devicescan.Session, error) {
	return s.query(ctx, `
		SELECT id, timestamp, device_count, devices FROM sessions
		WHERE timestamp BETWEEN ? AND ?
		ORDER BY timestamp DESC
	`, from.UnixNano(), to.UnixNano())
}

// SessionsMatching returns the sessions holding a device whose name
// contains name, ignoring ASCII case. Newest first.
func (s *Store) SessionsMatching(ctx context.Context, name string) ([]devicescan.Session, error) {
	return s.query(ctx, `
		SELECT id, timestamp, device_count, devices FROM sessions
		WHERE id IN (
			SELECT session_id FROM session_devices
			WHERE name LIKE '%' || ? || '%' ESCAPE '\'
		)
		ORDER BY timestamp DESC
	`, escapeLike(name))
}

// Delete removes one session.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every session.
func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

func (s *Store) query(ctx context.Context, query string, args ...interface{}) ([]devicescan.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []devicescan.Session
	for rows.Next() {
		var (
			session devicescan.Session
			ts      int64
			data    []byte
		)
		if err := rows.Scan(&session.ID, &ts, &session.DeviceCount, &data); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if err := json.Unmarshal(data, &session.Devices); err != nil {
			return nil, fmt.Errorf("failed to unmarshal devices of %s: %w", session.ID, err)
		}
		session.Timestamp = time.Unix(0, ts)
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
