package history

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/chadn/ai-chatbot-meetings/model"
)

func filledStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	s.AddSystem("You are a helpful assistant.")
	s.AddHuman("What's open on 2025-01-16?")
	s.AddAI(model.Message{
		ToolCalls: []model.ToolCall{
			{Name: "check_availability", Args: json.RawMessage(`{"start_date":"2025-01-16"}`), ID: "call_1"},
		},
	})
	s.AddToolResult(model.ToolResult{ToolCallID: "call_1", Content: "Available: 9:00 AM, 2:00 PM"})
	s.AddAIText("You have 9:00 AM and 2:00 PM available.")
	return s
}

func TestExportImportRoundTrip(t *testing.T) {
	src := filledStore(t)
	exported, err := src.ExportJSON()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := NewStore()
	if err := dst.ImportJSON(exported); err != nil {
		t.Fatalf("import: %v", err)
	}

	want := src.Messages()
	got := dst.Messages()
	if len(got) != len(want) {
		t.Fatalf("message count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Role != want[i].Role {
			t.Fatalf("msg %d role = %q, want %q", i, got[i].Role, want[i].Role)
		}
		if got[i].Content != want[i].Content {
			t.Fatalf("msg %d content = %q, want %q", i, got[i].Content, want[i].Content)
		}
		if !got[i].CreatedAt.Equal(want[i].CreatedAt) {
			t.Fatalf("msg %d timestamp = %v, want %v", i, got[i].CreatedAt, want[i].CreatedAt)
		}
		if got[i].ToolCallID != want[i].ToolCallID {
			t.Fatalf("msg %d tool_call_id = %q, want %q", i, got[i].ToolCallID, want[i].ToolCallID)
		}
		if len(got[i].ToolCalls) != len(want[i].ToolCalls) {
			t.Fatalf("msg %d tool call count = %d, want %d", i, len(got[i].ToolCalls), len(want[i].ToolCalls))
		}
		for j := range want[i].ToolCalls {
			if got[i].ToolCalls[j].Name != want[i].ToolCalls[j].Name {
				t.Fatalf("msg %d call %d name mismatch", i, j)
			}
			if got[i].ToolCalls[j].ID != want[i].ToolCalls[j].ID {
				t.Fatalf("msg %d call %d id mismatch", i, j)
			}
			if canonicalJSON(t, got[i].ToolCalls[j].Args) != canonicalJSON(t, want[i].ToolCalls[j].Args) {
				t.Fatalf("msg %d call %d args = %s, want %s",
					i, j, got[i].ToolCalls[j].Args, want[i].ToolCalls[j].Args)
			}
		}
	}
}

// canonicalJSON normalizes raw argument bytes so cosmetic differences in
// key order or whitespace do not mask a real mismatch.
func canonicalJSON(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	if len(raw) == 0 {
		return "{}"
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("args not valid JSON: %v", err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("canonicalize args: %v", err)
	}
	return string(b)
}

func TestExportEmptyStore(t *testing.T) {
	s := NewStore()
	b, err := s.ExportJSON()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if string(b) != "[]" {
		t.Fatalf("empty export = %q", b)
	}
}

func TestImportReplacesStore(t *testing.T) {
	s := filledStore(t)
	if err := s.ImportJSON([]byte(`[{"type":"human","content":"fresh start","timestamp":"2025-02-01T10:00:00Z"}]`)); err != nil {
		t.Fatalf("import: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("store length after import = %d", s.Len())
	}
	if s.Messages()[0].Content != "fresh start" {
		t.Fatalf("unexpected content: %q", s.Messages()[0].Content)
	}
}

func TestImportToolMessageMissingCallID(t *testing.T) {
	s := NewStore()
	err := s.ImportJSON([]byte(`[{"type":"tool","content":"done","timestamp":"2025-02-01T10:00:00Z"}]`))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got := s.Messages()[0].ToolCallID; got != model.UnknownToolCallID {
		t.Fatalf("tool_call_id = %q, want sentinel", got)
	}
}

func TestImportUnknownTypeRejectsWholeImport(t *testing.T) {
	s := filledStore(t)
	before := s.Len()
	err := s.ImportJSON([]byte(`[
		{"type":"human","content":"hi","timestamp":"2025-02-01T10:00:00Z"},
		{"type":"alien","content":"??","timestamp":"2025-02-01T10:00:01Z"}
	]`))
	if err == nil {
		t.Fatal("expected import error for unknown type")
	}
	if s.Len() != before {
		t.Fatalf("store modified on failed import: %d != %d", s.Len(), before)
	}
}

func TestImportNotAList(t *testing.T) {
	s := NewStore()
	if err := s.ImportJSON([]byte(`{"not":"a list"}`)); err == nil {
		t.Fatal("expected error for non-array input")
	}
}

func TestConversationOnly(t *testing.T) {
	s := filledStore(t)
	msgs := s.ConversationOnly()
	if len(msgs) != 2 {
		t.Fatalf("conversation length = %d, want 2", len(msgs))
	}
	if msgs[0].Role != model.RoleHuman || msgs[1].Role != model.RoleAI {
		t.Fatalf("unexpected roles: %q, %q", msgs[0].Role, msgs[1].Role)
	}
}

func TestLastAIContent(t *testing.T) {
	s := filledStore(t)
	if got := s.LastAIContent(); got != "You have 9:00 AM and 2:00 PM available." {
		t.Fatalf("last ai content = %q", got)
	}
	empty := NewStore()
	if got := empty.LastAIContent(); got != "" {
		t.Fatalf("empty store last ai content = %q", got)
	}
}

func TestAddStampsTimestampAndID(t *testing.T) {
	s := NewStore()
	before := time.Now().UTC()
	s.AddHuman("hello")
	msg := s.Messages()[0]
	if msg.ID == "" {
		t.Fatal("message id not assigned")
	}
	if msg.CreatedAt.Before(before.Add(-time.Second)) {
		t.Fatalf("timestamp not stamped: %v", msg.CreatedAt)
	}
}
