// Package tools declares the callable operations the model may invoke and
// the registry that dispatches tool calls by name.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/chadn/ai-chatbot-meetings/model"
	"github.com/chadn/ai-chatbot-meetings/provider"
)

type Tool interface {
	Name() string
	Description() string
	Parameters() JSONSchema
	Run(ctx context.Context, call model.ToolCall) (model.ToolResult, error)
}

type JSONSchema struct {
	Type       string                `json:"type"`
	Properties map[string]JSONSchema `json:"properties,omitempty"`
	Required   []string              `json:"required,omitempty"`
	Items      *JSONSchema           `json:"items,omitempty"`
	Enum       []string              `json:"enum,omitempty"`
	Desc       string                `json:"description,omitempty"`
}

type tool struct {
	name   string
	desc   string
	params JSONSchema
	runFn  func(ctx context.Context, call model.ToolCall) (model.ToolResult, error)
}

func (t tool) Name() string           { return t.name }
func (t tool) Description() string    { return t.desc }
func (t tool) Parameters() JSONSchema { return t.params }
func (t tool) Run(ctx context.Context, call model.ToolCall) (model.ToolResult, error) {
	if t.runFn == nil {
		panic(fmt.Sprintf("tool %q missing run function", t.name))
	}
	return t.runFn(ctx, call)
}

// Registry maps tool names to their implementations. It is populated once at
// startup and read-only afterwards.
type Registry struct {
	byName []Tool
	log    zerolog.Logger
}

func NewRegistry(log zerolog.Logger, toolList ...Tool) *Registry {
	return &Registry{
		byName: append([]Tool(nil), toolList...),
		log:    log.With().Str("component", "tools").Logger(),
	}
}

func (r *Registry) Tools() []Tool {
	return append([]Tool(nil), r.byName...)
}

// Execute runs one tool call and always returns a result, never an error:
// unknown tools, bad arguments, and calendar failures all come back as
// error-text results so the loop can hand them to the model as context.
func (r *Registry) Execute(ctx context.Context, call model.ToolCall) model.ToolResult {
	t := r.find(call.Name)
	if t == nil {
		r.log.Warn().Str("tool", call.Name).Msg("tool not found")
		return model.ToolResult{
			ToolCallID: call.ID,
			Content:    fmt.Sprintf("Error: tool not found: %s", call.Name),
			IsError:    true,
		}
	}
	result, err := t.Run(ctx, call)
	if err != nil {
		r.log.Error().Str("tool", call.Name).Err(err).Msg("tool execution failed")
		return model.ToolResult{ToolCallID: call.ID, Content: "Error: " + err.Error(), IsError: true}
	}
	result.ToolCallID = call.ID
	r.log.Debug().Str("tool", call.Name).Bool("is_error", result.IsError).Msg("tool executed")
	return result
}

func (r *Registry) find(name string) Tool {
	for _, t := range r.byName {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// ProviderDefs renders the registry as tool definitions for the provider.
func (r *Registry) ProviderDefs() []provider.ToolDef {
	defs := make([]provider.ToolDef, 0, len(r.byName))
	for _, t := range r.byName {
		parameters, err := json.Marshal(t.Parameters())
		if err != nil {
			panic(err)
		}
		defs = append(defs, provider.ToolDef{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  parameters,
		})
	}
	return defs
}
