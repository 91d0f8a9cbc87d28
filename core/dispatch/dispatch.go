// Package dispatch resolves provider adapters by provider id and hands them
// an immutable configuration snapshot. Adding a provider means registering
// one more factory; no call site branches on provider id strings.
package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"chatgate/providers/ai"
	"chatgate/providers/ai/anthropic"
	"chatgate/providers/ai/gemini"
	"chatgate/providers/ai/ollama"
	"chatgate/providers/ai/openai"
)

// DefaultTimeout bounds every outbound provider call.
const DefaultTimeout = 60 * time.Second

const grokBaseURL = "https://api.x.ai/v1"

// ProviderConfig is one provider's configuration snapshot, supplied by the
// external settings store and treated as read-only for the duration of a
// request.
type ProviderConfig struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Keys []string `json:"keys"`
	URL  string   `json:"url,omitempty"` // required for self-hosted providers
}

// FirstKey returns the first configured credential, or the empty string when
// none is configured. The adapter, not the dispatcher, decides whether an
// empty credential is fatal.
func (c ProviderConfig) FirstKey() string {
	if len(c.Keys) == 0 {
		return ""
	}
	return c.Keys[0]
}

// Active reports whether the provider has any usable configuration: at least
// one non-empty key or a base URL.
func (c ProviderConfig) Active() bool {
	return c.FirstKey() != "" || c.URL != ""
}

// Factory constructs a fresh adapter instance for one request.
type Factory func() ai.Provider

// Registry maps provider ids to adapter factories. The zero value is not
// usable; construct with [NewRegistry], which installs the built-in
// provider set.
type Registry struct {
	factories map[string]Factory
	timeout   time.Duration
}

// NewRegistry returns a Registry with all built-in providers registered:
// openai, grok and generic (OpenAI-compatible), anthropic, gemini, and
// runpod (Ollama-style self-hosted).
func NewRegistry() *Registry {
	registry := &Registry{
		factories: make(map[string]Factory),
		timeout:   DefaultTimeout,
	}

	registry.Register("openai", func() ai.Provider { return openai.New() })
	registry.Register("grok", func() ai.Provider { return openai.New().WithBaseURL(grokBaseURL) })
	registry.Register("generic", func() ai.Provider { return openai.New() })
	registry.Register("anthropic", func() ai.Provider { return anthropic.New() })
	registry.Register("gemini", func() ai.Provider { return gemini.New() })
	registry.Register("runpod", func() ai.Provider { return ollama.New() })

	return registry
}

// Register installs or replaces the factory for a provider id. This is the
// single extension point for new providers.
func (r *Registry) Register(id string, factory Factory) {
	r.factories[id] = factory
}

// WithTimeout overrides the outbound call timeout applied to resolved
// adapters.
func (r *Registry) WithTimeout(timeout time.Duration) *Registry {
	if timeout > 0 {
		r.timeout = timeout
	}
	return r
}

// Resolve returns a configured adapter for the given snapshot. Unknown
// provider ids fail with [ai.ErrNotImplemented]; no generic call is ever
// attempted. The first credential in the snapshot's key list is applied
// (empty if none), along with the snapshot's base URL when present and an
// HTTP client carrying the registry timeout.
func (r *Registry) Resolve(cfg ProviderConfig) (ai.Provider, error) {
	factory, ok := r.factories[cfg.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ai.ErrNotImplemented, cfg.ID)
	}

	provider := factory().
		WithAPIKey(cfg.FirstKey()).
		WithHttpClient(&http.Client{Timeout: r.timeout})
	if cfg.URL != "" {
		provider = provider.WithBaseURL(cfg.URL)
	}
	return provider, nil
}

// Stream is the uniform streaming entry point: it resolves the adapter and
// returns a canonical delta stream regardless of whether the provider
// supports streaming natively. Buffered-only adapters are wrapped in a
// single-event stream.
func (r *Registry) Stream(ctx context.Context, cfg ProviderConfig, request ai.ChatRequest) (*ai.ChatStream, error) {
	provider, err := r.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	if streamer, ok := provider.(ai.StreamProvider); ok {
		return streamer.StreamMessage(ctx, request)
	}

	response, err := provider.SendMessage(ctx, request)
	if err != nil {
		return nil, err
	}
	return ai.NewSingleEventStream(response), nil
}
