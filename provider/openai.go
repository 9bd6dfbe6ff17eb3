package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chadn/ai-chatbot-meetings/config"
	"github.com/chadn/ai-chatbot-meetings/model"
)

const openAIDefaultBaseURL = "https://api.openai.com/v1"

type OpenAI struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Tools       []openAITool    `json:"tools,omitempty"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []openAIToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

type openAIToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function openAIFunctionCall `json:"function"`
}

type openAIFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openAITool struct {
	Type     string               `json:"type"`
	Function openAIToolDefinition `json:"function"`
}

type openAIToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

func NewOpenAI(cfg config.OpenAIConfig) *OpenAI {
	must(strings.TrimSpace(cfg.Model) != "", "provider model is required")
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = openAIDefaultBaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &OpenAI{
		baseURL:     base,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{},
	}
}

func (o *OpenAI) Model() ModelInfo {
	return ModelInfo{
		ID:        o.model,
		Name:      o.model,
		MaxOutput: o.maxTokens,
	}
}

// Complete sends the full history in one request and decodes the first
// choice into an ai message.
func (o *OpenAI) Complete(ctx context.Context, messages []model.Message, tools []ToolDef) (*model.Message, error) {
	must(len(messages) > 0, "messages must not be empty")
	payload, err := json.Marshal(openAIRequest{
		Model:       o.model,
		Messages:    encodeMessages(messages),
		Tools:       encodeTools(tools),
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	})
	if err != nil {
		return nil, err
	}
	resp, err := o.post(ctx, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, readStatusError(resp)
	}
	var decoded openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode chat completion: %v", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}
	return decodeMessage(decoded.Choices[0].Message), nil
}

func encodeMessages(messages []model.Message) []openAIMessage {
	out := make([]openAIMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, encodeMessage(m))
	}
	return out
}

func encodeMessage(m model.Message) openAIMessage {
	msg := openAIMessage{Role: wireRole(m.Role), Content: m.Content}
	for _, c := range m.ToolCalls {
		args := string(c.Args)
		if args == "" {
			args = "{}"
		}
		msg.ToolCalls = append(msg.ToolCalls, openAIToolCall{
			ID:   c.ID,
			Type: "function",
			Function: openAIFunctionCall{
				Name:      c.Name,
				Arguments: args,
			},
		})
	}
	if m.Role == model.RoleTool {
		msg.ToolCallID = m.ToolCallID
	}
	return msg
}

// wireRole maps transcript roles onto OpenAI chat roles.
func wireRole(r model.Role) string {
	switch r {
	case model.RoleSystem:
		return "system"
	case model.RoleHuman:
		return "user"
	case model.RoleAI:
		return "assistant"
	case model.RoleTool:
		return "tool"
	}
	panic(fmt.Sprintf("unknown message role: %s", r))
}

func encodeTools(tools []ToolDef) []openAITool {
	out := make([]openAITool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openAITool{
			Type:     "function",
			Function: openAIToolDefinition(t),
		})
	}
	return out
}

func decodeMessage(m openAIMessage) *model.Message {
	msg := &model.Message{
		ID:        uuid.NewString(),
		Role:      model.RoleAI,
		Content:   m.Content,
		CreatedAt: time.Now().UTC(),
	}
	for _, c := range m.ToolCalls {
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}
		args := strings.TrimSpace(c.Function.Arguments)
		if args == "" {
			args = "{}"
		}
		msg.ToolCalls = append(msg.ToolCalls, model.ToolCall{
			Name: c.Function.Name,
			Args: json.RawMessage(args),
			ID:   id,
		})
	}
	return msg
}

func (o *OpenAI) post(ctx context.Context, payload []byte) (*http.Response, error) {
	return withRetry(ctx, 0, func() (*http.Response, error) {
		return o.doPost(ctx, payload)
	})
}

func (o *OpenAI) doPost(ctx context.Context, payload []byte) (*http.Response, error) {
	u := o.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return o.client.Do(req)
}

func readStatusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
	msg := strings.TrimSpace(string(b))
	if msg == "" {
		return fmt.Errorf("chat completion failed: status %d", resp.StatusCode)
	}
	return fmt.Errorf("chat completion failed: status %d: %s", resp.StatusCode, msg)
}

func must(ok bool, msg string) {
	if msg == "" {
		panic("assertion message must not be empty")
	}
	if !ok {
		panic(msg)
	}
}
