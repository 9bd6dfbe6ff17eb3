// Package store archives chat sessions durably so transcripts survive
// process restarts. The in-memory history.Store stays the working copy;
// this is the explicit save/load layer behind it.
package store

import (
	"time"

	"github.com/chadn/ai-chatbot-meetings/model"
)

type Session struct {
	ID           string
	Title        string
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type SessionStore interface {
	CreateSession(session *Session) error
	GetSession(id string) (*Session, error)
	ListSessions(limit, offset int) ([]*Session, error)
	DeleteSession(id string) error
	// SaveMessages replaces the archived transcript of one session.
	SaveMessages(sessionID string, msgs []model.Message) error
	LoadMessages(sessionID string) ([]model.Message, error)
}
