package gemini

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

// TestStreamMessage_DeltasAndTermination verifies SSE frames yield content
// deltas in order and end-of-stream produces a done event.
func TestStreamMessage_DeltasAndTermination(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Hel\"}],\"role\":\"model\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"lo\"}],\"role\":\"model\"},\"finishReason\":\"STOP\"}],\"usageMetadata\":{\"promptTokenCount\":4,\"candidatesTokenCount\":2,\"totalTokenCount\":6}}\n\n")
	}))
	defer server.Close()

	provider := New().WithAPIKey("g-key").WithBaseURL(server.URL).WithHttpClient(server.Client()).(*GeminiProvider)

	stream, err := provider.StreamMessage(context.Background(), ai.ChatRequest{
		Model:    "gemini-1.5-pro",
		Messages: []ai.Message{ai.TextMessage(ai.RoleUser, "hi")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	response, err := stream.Collect()
	if err != nil {
		t.Fatalf("unexpected collect error: %v", err)
	}

	if gotPath != "/models/gemini-1.5-pro:streamGenerateContent" {
		t.Errorf("unexpected path: %q", gotPath)
	}
	if gotQuery != "key=g-key&alt=sse" {
		t.Errorf("unexpected query: %q", gotQuery)
	}
	if response.Content != "Hello" {
		t.Errorf("unexpected content: %q", response.Content)
	}
	if response.Usage == nil || response.Usage.TotalTokens != 6 {
		t.Errorf("unexpected usage: %+v", response.Usage)
	}
	if response.FinishReason != "stop" {
		t.Errorf("unexpected finish reason: %q", response.FinishReason)
	}
}

// TestStreamMessage_MissingKeyShortCircuits verifies ErrMissingConfig
// surfaces before any network call.
func TestStreamMessage_MissingKeyShortCircuits(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	provider := New().WithAPIKey("").WithBaseURL(server.URL).WithHttpClient(server.Client()).(*GeminiProvider)

	_, err := provider.StreamMessage(context.Background(), ai.ChatRequest{Model: "gemini-1.5-pro"})
	if !errors.Is(err, ai.ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no outbound call, got %d", calls.Load())
	}
}

// TestSendMessage_BufferedPath verifies the generateContent endpoint and
// key query parameter.
func TestSendMessage_BufferedPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "g-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"pong"}],"role":"model"},"finishReason":"STOP"}]}`)
	}))
	defer server.Close()

	provider := New().WithAPIKey("g-key").WithBaseURL(server.URL).WithHttpClient(server.Client())

	response, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Model:    "gemini-1.5-pro",
		Messages: []ai.Message{ai.TextMessage(ai.RoleUser, "ping")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Content != "pong" {
		t.Errorf("unexpected content: %q", response.Content)
	}
	if response.Model != "gemini-1.5-pro" {
		t.Errorf("expected request model echoed, got %q", response.Model)
	}
}
