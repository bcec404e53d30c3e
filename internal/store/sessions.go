// ABOUTME: SQLite implementation of SessionStore for chat sessions.
// ABOUTME: Handles session rows and the append-only transcript log.

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// CreateSession creates a new session row.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, session.ID, session.Title, session.CreatedAt.Format(time.RFC3339), session.UpdatedAt.Format(time.RFC3339))

	return err
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	var sess Session
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, created_at, updated_at FROM sessions WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Title, &createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	sess.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &sess, nil
}

// ListSessions lists sessions, most recently updated first.
func (s *SQLiteStore) ListSessions(ctx context.Context, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, created_at, updated_at FROM sessions
		ORDER BY updated_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sessions []*Session
	for rows.Next() {
		var sess Session
		var createdAt, updatedAt string
		if err := rows.Scan(&sess.ID, &sess.Title, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		sess.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		sess.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

// TouchSession refreshes a session's updated_at timestamp.
func (s *SQLiteStore) TouchSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET updated_at = ? WHERE id = ?
	`, time.Now().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSessionTitle sets a session's display title.
func (s *SQLiteStore) SetSessionTitle(ctx context.Context, id, title string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET title = ?, updated_at = ? WHERE id = ?
	`, title, time.Now().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendTranscript appends one structured message to a session's transcript.
// Seq must be the next sequence number for the session; the unique index on
// (session_id, seq) rejects out-of-order writes.
func (s *SQLiteStore) AppendTranscript(ctx context.Context, msg *TranscriptMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcript_messages (id, session_id, seq, role, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.SessionID, msg.Seq, msg.Role, msg.Payload, msg.CreatedAt.Format(time.RFC3339))

	return err
}

// GetTranscript returns all messages of a session in sequence order.
func (s *SQLiteStore) GetTranscript(ctx context.Context, sessionID string) ([]*TranscriptMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, seq, role, payload, created_at
		FROM transcript_messages WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []*TranscriptMessage
	for rows.Next() {
		var m TranscriptMessage
		var createdAt string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Seq, &m.Role, &m.Payload, &createdAt); err != nil {
			return nil, err
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}
