// Package store persists client state in SQLite: the stats record and a
// local history of document sessions and their chat messages.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AndreyKorzunin/projectassist/internal/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	filename TEXT,
	doc_type TEXT,
	start_time DATETIME
);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	session_id TEXT,
	kind TEXT,
	content TEXT,
	timestamp DATETIME,
	FOREIGN KEY(session_id) REFERENCES sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, timestamp);
`

// Store is the SQLite database of the client.
type Store struct {
	db *sql.DB
}

// SessionSummary is one row of the session history.
type SessionSummary struct {
	ID           string
	Filename     string
	DocType      session.DocType
	StartTime    time.Time
	MessageCount int
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get reads a value from the key/value table.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Put writes a value to the key/value table.
func (s *Store) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// SaveSession records a document session in the history.
func (s *Store) SaveSession(ctx context.Context, sess *session.Session) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO sessions (id, filename, doc_type, start_time) VALUES (?, ?, ?, ?)",
		sess.ID, sess.Filename, string(sess.DocType), sess.StartTime,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// SaveMessages stores messages of a session. Messages already stored are
// skipped, so the whole transcript can be passed each time.
func (s *Store) SaveMessages(ctx context.Context, sessionID string, messages []session.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO messages (id, session_id, kind, content, timestamp) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, msg := range messages {
		if msg.Kind == session.KindLoading {
			continue
		}
		if _, err := stmt.ExecContext(ctx, msg.ID, sessionID, string(msg.Kind), msg.Text, msg.Timestamp); err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListSessions returns the most recent sessions first.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.filename, s.doc_type, s.start_time, COUNT(m.id)
		FROM sessions s LEFT JOIN messages m ON m.session_id = s.id
		GROUP BY s.id
		ORDER BY s.start_time DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		var docType string
		if err := rows.Scan(&sum.ID, &sum.Filename, &docType, &sum.StartTime, &sum.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sum.DocType = session.DocType(docType)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// LoadMessages returns the stored messages of a session in order.
func (s *Store) LoadMessages(ctx context.Context, sessionID string) ([]session.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, kind, content, timestamp FROM messages WHERE session_id = ? ORDER BY timestamp, rowid",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	var messages []session.Message
	for rows.Next() {
		var msg session.Message
		var kind string
		if err := rows.Scan(&msg.ID, &kind, &msg.Text, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Kind = session.Kind(kind)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
