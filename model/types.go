package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Role string

const (
	RoleSystem Role = "system"
	RoleHuman  Role = "human"
	RoleAI     Role = "ai"
	RoleTool   Role = "tool"
)

// UnknownToolCallID is substituted when a persisted tool message carries no
// tool_call_id. Imports stay lenient instead of rejecting the transcript.
const UnknownToolCallID = "unknown"

// Message is one entry in a chat transcript. Content may be empty on ai
// messages that only carry tool calls. ToolCallID is set on tool messages
// only and refers back to the call emitted by a preceding ai message.
type Message struct {
	ID         string
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	CreatedAt  time.Time
}

// ToolCall is a structured request from the model to invoke a named tool.
// Immutable once created.
type ToolCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
	ID   string          `json:"id"`
}

// ToolResult is the outcome of executing one ToolCall. Content is always
// human-readable text, error or not, so it can be fed back to the model.
type ToolResult struct {
	ToolCallID string
	Content    string
	IsError    bool
}

func validRole(r Role) bool {
	switch r {
	case RoleSystem, RoleHuman, RoleAI, RoleTool:
		return true
	}
	return false
}

type toolCallJSON struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
	ID   string          `json:"id"`
	Type string          `json:"type"`
}

type messageJSON struct {
	Type       string         `json:"type"`
	Content    string         `json:"content"`
	Timestamp  string         `json:"timestamp"`
	ToolCalls  []toolCallJSON `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	w := messageJSON{
		Type:       string(m.Role),
		Content:    m.Content,
		Timestamp:  m.CreatedAt.Format(time.RFC3339Nano),
		ToolCallID: m.ToolCallID,
	}
	for _, c := range m.ToolCalls {
		args := c.Args
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		w.ToolCalls = append(w.ToolCalls, toolCallJSON{
			Name: c.Name,
			Args: args,
			ID:   c.ID,
			Type: "tool_call",
		})
	}
	return json.Marshal(w)
}

func (m *Message) UnmarshalJSON(b []byte) error {
	var w messageJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Type == "" {
		return errors.New("message missing type")
	}
	role := Role(w.Type)
	if !validRole(role) {
		return fmt.Errorf("unknown message type: %s", w.Type)
	}
	created, err := parseTimestamp(w.Timestamp)
	if err != nil {
		return fmt.Errorf("message timestamp: %v", err)
	}
	out := Message{
		Role:      role,
		Content:   w.Content,
		CreatedAt: created,
	}
	for _, c := range w.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{Name: c.Name, Args: c.Args, ID: c.ID})
	}
	if role == RoleTool {
		out.ToolCallID = w.ToolCallID
		if out.ToolCallID == "" {
			out.ToolCallID = UnknownToolCallID
		}
	}
	*m = out
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
