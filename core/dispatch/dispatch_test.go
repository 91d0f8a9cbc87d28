package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"chatgate/providers/ai"
)

// countingProvider records calls so tests can assert no network activity.
type countingProvider struct {
	calls atomic.Int32
}

func (p *countingProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	p.calls.Add(1)
	return &ai.ChatResponse{Content: "stubbed"}, nil
}

func (p *countingProvider) WithAPIKey(string) ai.Provider           { return p }
func (p *countingProvider) WithBaseURL(string) ai.Provider          { return p }
func (p *countingProvider) WithHttpClient(*http.Client) ai.Provider { return p }

// TestResolve_UnknownProvider verifies unknown ids fail with
// ErrNotImplemented and no adapter is ever invoked.
func TestResolve_UnknownProvider(t *testing.T) {
	stub := &countingProvider{}
	registry := NewRegistry()
	registry.Register("stub", func() ai.Provider { return stub })

	_, err := registry.Resolve(ProviderConfig{ID: "mystery"})
	if !errors.Is(err, ai.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	if stub.calls.Load() != 0 {
		t.Errorf("expected no adapter call, got %d", stub.calls.Load())
	}
}

// TestResolve_BuiltinsRegistered verifies the built-in provider set resolves.
func TestResolve_BuiltinsRegistered(t *testing.T) {
	registry := NewRegistry()
	for _, id := range []string{"openai", "grok", "generic", "anthropic", "gemini", "runpod"} {
		if _, err := registry.Resolve(ProviderConfig{ID: id, Keys: []string{"k"}, URL: "http://localhost"}); err != nil {
			t.Errorf("expected %q to resolve, got %v", id, err)
		}
	}
}

// TestProviderConfig_FirstKey covers empty and populated key lists.
func TestProviderConfig_FirstKey(t *testing.T) {
	if got := (ProviderConfig{}).FirstKey(); got != "" {
		t.Errorf("expected empty key, got %q", got)
	}
	cfg := ProviderConfig{Keys: []string{"primary", "backup"}}
	if got := cfg.FirstKey(); got != "primary" {
		t.Errorf("expected first key, got %q", got)
	}
}

// TestProviderConfig_Active covers the key-or-URL activity rule.
func TestProviderConfig_Active(t *testing.T) {
	cases := []struct {
		name string
		cfg  ProviderConfig
		want bool
	}{
		{"empty", ProviderConfig{}, false},
		{"blank key", ProviderConfig{Keys: []string{""}}, false},
		{"key", ProviderConfig{Keys: []string{"k"}}, true},
		{"url", ProviderConfig{URL: "http://host"}, true},
	}
	for _, tc := range cases {
		if got := tc.cfg.Active(); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

// TestStream_FallsBackToSingleEventStream verifies a buffered-only adapter
// is wrapped so streaming callers still get a canonical delta sequence.
func TestStream_FallsBackToSingleEventStream(t *testing.T) {
	stub := &countingProvider{}
	registry := NewRegistry()
	registry.Register("stub", func() ai.Provider { return stub })

	stream, err := registry.Stream(context.Background(), ProviderConfig{ID: "stub"}, ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("unexpected collect error: %v", err)
	}
	if response.Content != "stubbed" {
		t.Errorf("unexpected content: %q", response.Content)
	}
	if stub.calls.Load() != 1 {
		t.Errorf("expected one buffered call, got %d", stub.calls.Load())
	}
}

// TestResolve_AppliesConfigSnapshot verifies key and URL from the snapshot
// reach the adapter by driving a real request against a mock server.
func TestResolve_AppliesConfigSnapshot(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"id":"1","model":"m","choices":[{"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	registry := NewRegistry()
	provider, err := registry.Resolve(ProviderConfig{ID: "openai", Keys: []string{"snapshot-key"}, URL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Model:    "m",
		Messages: []ai.Message{ai.TextMessage(ai.RoleUser, "hi")},
	}); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}
	if gotAuth != "Bearer snapshot-key" {
		t.Errorf("expected snapshot key applied, got %q", gotAuth)
	}
}
