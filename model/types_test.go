package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestMessageMarshalWireFormat(t *testing.T) {
	created := time.Date(2025, 1, 16, 9, 30, 0, 0, time.UTC)
	msg := Message{
		Role:      RoleAI,
		Content:   "",
		CreatedAt: created,
		ToolCalls: []ToolCall{
			{Name: "check_availability", Args: json.RawMessage(`{"start_date":"2025-01-16"}`), ID: "call_1"},
		},
	}
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["type"] != "ai" {
		t.Fatalf("type = %v", raw["type"])
	}
	if raw["timestamp"] != "2025-01-16T09:30:00Z" {
		t.Fatalf("timestamp = %v", raw["timestamp"])
	}
	calls, ok := raw["tool_calls"].([]any)
	if !ok || len(calls) != 1 {
		t.Fatalf("tool_calls = %v", raw["tool_calls"])
	}
	call := calls[0].(map[string]any)
	if call["name"] != "check_availability" || call["id"] != "call_1" || call["type"] != "tool_call" {
		t.Fatalf("unexpected tool call: %v", call)
	}
	if _, present := raw["tool_call_id"]; present {
		t.Fatal("tool_call_id should be omitted on ai messages")
	}
}

func TestMessageRoundTrip(t *testing.T) {
	in := Message{
		Role:       RoleTool,
		Content:    "Available: 9:00 AM, 2:00 PM",
		ToolCallID: "call_1",
		CreatedAt:  time.Date(2025, 1, 16, 9, 30, 0, 123456789, time.UTC),
	}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Message
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Role != in.Role || out.Content != in.Content || out.ToolCallID != in.ToolCallID {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) {
		t.Fatalf("timestamp mismatch: %v != %v", out.CreatedAt, in.CreatedAt)
	}
}

func TestUnmarshalToolMessageMissingCallID(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"type":"tool","content":"ok","timestamp":"2025-01-16T09:30:00Z"}`), &msg)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.ToolCallID != UnknownToolCallID {
		t.Fatalf("tool_call_id = %q, want %q", msg.ToolCallID, UnknownToolCallID)
	}
}

func TestUnmarshalUnknownType(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"type":"function","content":"x"}`), &msg)
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	if !strings.Contains(err.Error(), "unknown message type") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnmarshalMissingType(t *testing.T) {
	var msg Message
	if err := json.Unmarshal([]byte(`{"content":"x"}`), &msg); err == nil {
		t.Fatal("expected error for missing type")
	}
}

func TestUnmarshalEmptyTimestamp(t *testing.T) {
	var msg Message
	if err := json.Unmarshal([]byte(`{"type":"human","content":"hi"}`), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !msg.CreatedAt.IsZero() {
		t.Fatalf("expected zero timestamp, got %v", msg.CreatedAt)
	}
}
