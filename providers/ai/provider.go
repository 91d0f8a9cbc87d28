package ai

import (
	"context"
	"net/http"
)

// Provider is the core interface that every LLM provider adapter must
// satisfy. It covers the full lifecycle of a single buffered request:
// authentication, endpoint configuration, message dispatch, and response
// interpretation. Use [StreamProvider] in addition when the provider
// supports streaming.
type Provider interface {
	// SendMessage sends a chat request to the provider and returns the
	// completed response. Returns an error if the provider call fails,
	// the context is cancelled, or the response cannot be decoded.
	// A missing credential or endpoint fails with [ErrMissingConfig]
	// before any network call is made.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) Provider
}

// StreamProvider is an optional interface that providers implement to support
// streaming responses. Callers detect streaming support via type assertion:
// provider.(StreamProvider). If the provider does not implement this
// interface, callers fall back to SendMessage wrapped in a single-event
// stream.
type StreamProvider interface {
	Provider
	// StreamMessage sends a chat request and returns a ChatStream that yields
	// incremental deltas as they arrive from the API. Pre-stream errors
	// (auth, bad request, network) are returned as a normal error. Mid-stream
	// errors are yielded through the iterator.
	StreamMessage(ctx context.Context, request ChatRequest) (*ChatStream, error)
}
