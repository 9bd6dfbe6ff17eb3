package history

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/chadn/ai-chatbot-meetings/model"
)

// ExportJSON renders the full message sequence as an indented JSON array,
// one object per message, in insertion order.
func (s *Store) ExportJSON() ([]byte, error) {
	msgs := s.messages
	if msgs == nil {
		msgs = []model.Message{}
	}
	return json.MarshalIndent(msgs, "", "  ")
}

// ImportJSON replaces the store contents with the messages parsed from a
// JSON array. The replacement is all-or-nothing: any malformed element or
// unknown message type rejects the whole import and the store is untouched.
// A tool message missing tool_call_id is accepted with a sentinel id.
func (s *Store) ImportJSON(data []byte) error {
	var msgs []model.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return fmt.Errorf("import chat history: %v", err)
	}
	for i := range msgs {
		if msgs[i].ID == "" {
			msgs[i].ID = uuid.NewString()
		}
	}
	s.messages = msgs
	return nil
}
