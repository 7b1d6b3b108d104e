// Package db provides session persistence over SQLite.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Monamimamimamo/DnD-AI-DM/internal/model"
)

// Store persists sessions, their gameplay event logs, and snapshots.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SessionRecord is one row of the sessions table.
type SessionRecord struct {
	SessionID     string
	CreatedAt     string
	CharacterName string
	Location      string
	Status        string
}

// CreateSession inserts the session record and a session_started event.
func (s *Store) CreateSession(ctx context.Context, sessionID, characterName, location string) error {
	createdAt := time.Now().UTC().Format(time.RFC3339)
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin create session: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO sessions(session_id, created_at, character_name, location, status)
		VALUES(?, ?, ?, ?, ?)`,
		sessionID, createdAt, characterName, location, "active"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert session: %w", err)
	}
	if err := s.insertEvent(ctx, tx, sessionID, model.GameplayEvent{
		Timestamp:   time.Now().UTC(),
		Type:        model.EventSessionStarted,
		Description: "session started",
		Actor:       characterName,
	}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create session: %w", err)
	}
	return nil
}

// AppendEvent records one gameplay event at the end of a session's log.
func (s *Store) AppendEvent(ctx context.Context, sessionID string, event model.GameplayEvent) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin append event: %w", err)
	}
	if err := s.insertEvent(ctx, tx, sessionID, event); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append event: %w", err)
	}
	return nil
}

func (s *Store) insertEvent(ctx context.Context, tx *sql.Tx, sessionID string, event model.GameplayEvent) error {
	seq, err := s.nextSeq(ctx, tx, sessionID)
	if err != nil {
		return err
	}
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO gameplay_events(session_id, seq, ts, type, description, actor) VALUES(?, ?, ?, ?, ?, ?)`,
		sessionID, seq, ts.Format(time.RFC3339), event.Type, event.Description, event.Actor); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *Store) nextSeq(ctx context.Context, tx *sql.Tx, sessionID string) (int, error) {
	var seq int
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM gameplay_events WHERE session_id=?`, sessionID)
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("read event seq: %w", err)
	}
	return seq + 1, nil
}

// Events returns a session's gameplay events in append order.
func (s *Store) Events(ctx context.Context, sessionID string) ([]model.GameplayEvent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ts, type, description, actor FROM gameplay_events WHERE session_id=? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.GameplayEvent
	for rows.Next() {
		var ts string
		var event model.GameplayEvent
		if err := rows.Scan(&ts, &event.Type, &event.Description, &event.Actor); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			event.Timestamp = parsed
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

// SaveSnapshot stores or replaces a session's state blob.
func (s *Store) SaveSnapshot(ctx context.Context, sessionID, stateJSON string) error {
	createdAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO snapshots(session_id, created_at, state_json) VALUES(?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET created_at=excluded.created_at, state_json=excluded.state_json`,
		sessionID, createdAt, stateJSON); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns a session's state blob, or empty if none exists.
func (s *Store) LoadSnapshot(ctx context.Context, sessionID string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT state_json FROM snapshots WHERE session_id=?`, sessionID)
	var stateJSON string
	if err := row.Scan(&stateJSON); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("read snapshot: %w", err)
	}
	return stateJSON, nil
}

// UpdateSessionLocation records the session's current location.
func (s *Store) UpdateSessionLocation(ctx context.Context, sessionID, location string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE sessions SET location=? WHERE session_id=?`, location, sessionID); err != nil {
		return fmt.Errorf("update session location: %w", err)
	}
	return nil
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id, created_at, character_name, location, status FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(&rec.SessionID, &rec.CreatedAt, &rec.CharacterName, &rec.Location, &rec.Status); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
