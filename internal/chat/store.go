package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists conversation history per session in SQLite. Thread-safe:
// sql.DB handles connection pooling.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the session database at path, creating parent
// directories as needed.
func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}
	return newStore(db)
}

// NewInMemoryStore creates a store backed by an in-memory database.
func NewInMemoryStore() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("creating in-memory database: %w", err)
	}
	return newStore(db)
}

func newStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			message_index INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			payload TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE,
			UNIQUE(session_id, message_index)
		);

		CREATE INDEX IF NOT EXISTS idx_messages_session
		ON messages(session_id, message_index);
	`
	_, err := s.db.Exec(schema)
	return err
}

// payload carries the non-text parts of a message through the database.
type payload struct {
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolOutcome *ToolOutcome `json:"tool_outcome,omitempty"`
}

// Save replaces the stored history for a session.
func (s *Store) Save(ctx context.Context, sessionID string, messages []Message) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO sessions (session_id) VALUES (?)", sessionID)
	if err != nil {
		return fmt.Errorf("ensuring session: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("clearing old messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO messages (session_id, message_index, role, content, payload) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range messages {
		var extra sql.NullString
		if len(msg.ToolCalls) > 0 || msg.ToolOutcome != nil {
			data, err := json.Marshal(payload{
				ToolCalls:   msg.ToolCalls,
				ToolOutcome: msg.ToolOutcome,
			})
			if err != nil {
				return fmt.Errorf("encoding message %d: %w", i, err)
			}
			extra = sql.NullString{String: string(data), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, sessionID, i, string(msg.Role), msg.Content, extra); err != nil {
			return fmt.Errorf("inserting message %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE sessions SET updated_at = datetime('now') WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("updating session timestamp: %w", err)
	}

	return tx.Commit()
}

// Load returns the stored history for a session, empty when the session
// does not exist.
func (s *Store) Load(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT role, content, payload FROM messages WHERE session_id = ? ORDER BY message_index ASC",
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var role, content string
		var extra sql.NullString
		if err := rows.Scan(&role, &content, &extra); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}

		msg := Message{Role: Role(role), Content: content}
		if extra.Valid {
			var p payload
			if err := json.Unmarshal([]byte(extra.String), &p); err != nil {
				return nil, fmt.Errorf("decoding message payload: %w", err)
			}
			msg.ToolCalls = p.ToolCalls
			msg.ToolOutcome = p.ToolOutcome
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// Delete removes a session and its messages.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("deleting messages: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// ListSessions returns session ids, most recently updated first.
func (s *Store) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT session_id FROM sessions ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}
