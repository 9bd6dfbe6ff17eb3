package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chadn/ai-chatbot-meetings/model"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ SessionStore = (*SQLiteStore)(nil)

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}
	if _, err := db.Exec(schemaSessions); err != nil {
		return err
	}
	if _, err := db.Exec(schemaMessages); err != nil {
		return err
	}
	if _, err := db.Exec(schemaMessagesIndex); err != nil {
		return err
	}
	return nil
}

const schemaSessions = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	title TEXT,
	message_count INTEGER,
	created_at DATETIME,
	updated_at DATETIME
)`

const schemaMessages = `
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	session_id TEXT,
	position INTEGER,
	payload_json TEXT,
	FOREIGN KEY(session_id) REFERENCES sessions(id) ON DELETE CASCADE
)`

const schemaMessagesIndex = `
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, position)`

func (s *SQLiteStore) CreateSession(session *Session) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, title, message_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		session.ID,
		session.Title,
		session.MessageCount,
		session.CreatedAt,
		session.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) GetSession(id string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT id, title, message_count, created_at, updated_at
		 FROM sessions WHERE id = ?`, id)
	var out Session
	err := row.Scan(&out.ID, &out.Title, &out.MessageCount, &out.CreatedAt, &out.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SQLiteStore) ListSessions(limit, offset int) ([]*Session, error) {
	rows, err := s.db.Query(
		`SELECT id, title, message_count, created_at, updated_at
		 FROM sessions ORDER BY updated_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Session
	for rows.Next() {
		var session Session
		if err := rows.Scan(&session.ID, &session.Title, &session.MessageCount, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &session)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteSession(id string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) SaveMessages(sessionID string, msgs []model.Message) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	for i, msg := range msgs {
		payload, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		id := msg.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", sessionID, i)
		}
		if _, err := tx.Exec(
			`INSERT INTO messages (id, session_id, position, payload_json) VALUES (?, ?, ?, ?)`,
			id, sessionID, i, string(payload),
		); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(
		`UPDATE sessions SET message_count = ?, updated_at = ? WHERE id = ?`,
		len(msgs), time.Now().UTC(), sessionID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadMessages(sessionID string) ([]model.Message, error) {
	rows, err := s.db.Query(
		`SELECT payload_json FROM messages WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Message
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var msg model.Message
		if err := json.Unmarshal([]byte(payload), &msg); err != nil {
			return nil, fmt.Errorf("decode archived message: %v", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}
