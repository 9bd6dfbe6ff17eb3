// Package agent drives the tool-calling conversation loop: it sends the
// session history to the model, executes any requested tools, feeds results
// back, and stops on a final answer or when the turn budget runs out.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/chadn/ai-chatbot-meetings/history"
	"github.com/chadn/ai-chatbot-meetings/metrics"
	"github.com/chadn/ai-chatbot-meetings/model"
	"github.com/chadn/ai-chatbot-meetings/provider"
	"github.com/chadn/ai-chatbot-meetings/tools"
)

const defaultMaxToolTurns = 3

// Outcome classifies how a turn ended.
type Outcome string

const (
	// OutcomeDone: the model produced a final answer within budget.
	OutcomeDone Outcome = "done"
	// OutcomeBudgetExhausted: tool calls were still pending when the
	// budget ran out. Soft fail, not an error: whatever ai content
	// exists is surfaced.
	OutcomeBudgetExhausted Outcome = "budget_exhausted"
)

// ProviderSource hands out one ChatProvider per model name. Satisfied by
// *provider.Cache.
type ProviderSource interface {
	Get(modelName string) provider.ChatProvider
}

type Agent struct {
	providers    ProviderSource
	registry     *tools.Registry
	maxToolTurns int
	timezone     string
	clock        func() time.Time
	log          zerolog.Logger
	metrics      *metrics.Metrics
}

// Request is one user turn. An empty Model selects the configured default.
type Request struct {
	Content string
	Model   string
}

func New(providers ProviderSource, registry *tools.Registry, maxToolTurns int, timezone string, log zerolog.Logger, m *metrics.Metrics) *Agent {
	if maxToolTurns <= 0 {
		maxToolTurns = defaultMaxToolTurns
	}
	if m == nil {
		m = metrics.New()
	}
	return &Agent{
		providers:    providers,
		registry:     registry,
		maxToolTurns: maxToolTurns,
		timezone:     timezone,
		clock:        func() time.Time { return time.Now() },
		log:          log.With().Str("component", "agent").Logger(),
		metrics:      m,
	}
}

// EnsureSystemMessage seeds the session with the dated system prompt when it
// does not have one yet.
func (a *Agent) EnsureSystemMessage(store *history.Store) {
	if store.HasSystem() {
		return
	}
	store.AddSystem(BuildSystemPrompt(a.clock(), a.timezone))
}

// Respond runs one user-visible turn. On a soft-fail (budget exhausted with
// tool calls still pending) it returns the most recent ai text, which may be
// empty, and the budget-exhausted outcome instead of an error.
func (a *Agent) Respond(ctx context.Context, store *history.Store, req Request) (string, Outcome, error) {
	a.EnsureSystemMessage(store)
	if req.Content != "" {
		store.AddHuman(req.Content)
	}
	prov := a.providers.Get(req.Model)
	defs := a.registry.ProviderDefs()

	remaining := a.maxToolTurns
	for remaining > 0 {
		remaining--
		if err := ctx.Err(); err != nil {
			return "", "", err
		}
		reply, err := a.complete(ctx, prov, store, defs)
		if err != nil {
			a.metrics.RecordChatTurn("error")
			return "", "", fmt.Errorf("generate response: %w", err)
		}
		if len(reply.ToolCalls) == 0 {
			store.AddAIText(reply.Content)
			a.metrics.RecordChatTurn(string(OutcomeDone))
			a.log.Debug().Int("messages", store.Len()).Msg("turn complete")
			return reply.Content, OutcomeDone, nil
		}
		store.AddAI(*reply)
		a.executeToolCalls(ctx, store, reply.ToolCalls)
	}

	// Budget spent while the model still wanted tools.
	a.metrics.TurnBudgetExhausted.Inc()
	a.metrics.RecordChatTurn(string(OutcomeBudgetExhausted))
	a.log.Warn().Int("max_tool_turns", a.maxToolTurns).Msg("turn budget exhausted")
	return store.LastAIContent(), OutcomeBudgetExhausted, nil
}

func (a *Agent) complete(ctx context.Context, prov provider.ChatProvider, store *history.Store, defs []provider.ToolDef) (*model.Message, error) {
	started := a.clock()
	reply, err := prov.Complete(ctx, store.Messages(), defs)
	if err != nil {
		a.metrics.RecordProviderRequest("error", a.clock().Sub(started))
		return nil, err
	}
	a.metrics.RecordProviderRequest("ok", a.clock().Sub(started))
	a.log.Debug().
		Int("tool_calls", len(reply.ToolCalls)).
		Int("content_len", len(reply.Content)).
		Msg("model reply")
	return reply, nil
}

func (a *Agent) executeToolCalls(ctx context.Context, store *history.Store, calls []model.ToolCall) {
	for _, call := range calls {
		result := a.registry.Execute(ctx, call)
		a.metrics.RecordToolExecution(call.Name, result.IsError)
		store.AddToolResult(result)
	}
}
