// Package history holds the ordered, append-only record of one chat session
// and its JSON export/import.
package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/chadn/ai-chatbot-meetings/model"
)

// Store owns the message sequence of a single session. Messages are appended,
// never mutated or removed, except full replacement on import. A Store has no
// internal locking: each session owns its store exclusively.
type Store struct {
	messages []model.Message
}

func NewStore() *Store {
	return &Store{}
}

// Messages returns the sequence in insertion order. The returned slice is a
// copy; appends after the call are not reflected.
func (s *Store) Messages() []model.Message {
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) Len() int {
	return len(s.messages)
}

func (s *Store) AddSystem(content string) {
	s.add(model.Message{Role: model.RoleSystem, Content: content})
}

func (s *Store) AddHuman(content string) {
	s.add(model.Message{Role: model.RoleHuman, Content: content})
}

func (s *Store) AddAIText(content string) {
	s.add(model.Message{Role: model.RoleAI, Content: content})
}

// AddAI appends a full ai message, typically one carrying tool calls straight
// from the provider.
func (s *Store) AddAI(msg model.Message) {
	msg.Role = model.RoleAI
	s.add(msg)
}

func (s *Store) AddToolResult(result model.ToolResult) {
	id := result.ToolCallID
	if id == "" {
		id = model.UnknownToolCallID
	}
	s.add(model.Message{
		Role:       model.RoleTool,
		Content:    result.Content,
		ToolCallID: id,
	})
}

// HasSystem reports whether the session already carries a system message.
func (s *Store) HasSystem() bool {
	for _, m := range s.messages {
		if m.Role == model.RoleSystem {
			return true
		}
	}
	return false
}

// ConversationOnly returns the human and ai messages that carry text,
// skipping system plumbing, tool traffic, and tool-call-only ai messages.
func (s *Store) ConversationOnly() []model.Message {
	out := make([]model.Message, 0, len(s.messages))
	for _, m := range s.messages {
		if m.Role != model.RoleHuman && m.Role != model.RoleAI {
			continue
		}
		if m.Content == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// LastAIContent returns the text of the most recent ai message, or "" when
// the session has none. Used to surface a reply even after a soft-fail turn.
func (s *Store) LastAIContent() string {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == model.RoleAI && s.messages[i].Content != "" {
			return s.messages[i].Content
		}
	}
	return ""
}

func (s *Store) add(msg model.Message) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	s.messages = append(s.messages, msg)
}
