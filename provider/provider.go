// Package provider talks to LLM chat-completions APIs that support tool
// calling.
package provider

import (
	"context"
	"encoding/json"

	"github.com/chadn/ai-chatbot-meetings/model"
)

// ChatProvider produces one assistant reply for a message history. The reply
// may carry tool calls, plain text, or both.
type ChatProvider interface {
	Complete(ctx context.Context, messages []model.Message, tools []ToolDef) (*model.Message, error)
	Model() ModelInfo
}

type ModelInfo struct {
	ID        string
	Name      string
	MaxOutput int
}

type ToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}
