package provider

import (
	"sync"

	"github.com/chadn/ai-chatbot-meetings/config"
)

// Cache hands out one provider instance per model so switching models
// mid-session does not rebuild clients on every turn. It is owned by the
// component that drives generation and passed by reference, not kept as
// ambient global state. Safe for concurrent use; HTTP handlers share one
// cache across request goroutines.
type Cache struct {
	cfg config.OpenAIConfig

	mu        sync.Mutex
	providers map[string]ChatProvider
}

func NewCache(cfg config.OpenAIConfig) *Cache {
	return &Cache{
		cfg:       cfg,
		providers: map[string]ChatProvider{},
	}
}

// Get returns the provider for a model, constructing it on first use. An
// empty model name selects the configured default.
func (c *Cache) Get(modelName string) ChatProvider {
	if modelName == "" {
		modelName = c.cfg.Model
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.providers[modelName]; ok {
		return p
	}
	cfg := c.cfg
	cfg.Model = modelName
	p := NewOpenAI(cfg)
	c.providers[modelName] = p
	return p
}
