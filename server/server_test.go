package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatgate/config"
	"chatgate/core/chat"
	"chatgate/core/dispatch"
	"chatgate/providers/ai"
	"chatgate/store"
)

// cannedProvider streams a fixed set of events for any request.
type cannedProvider struct {
	events []ai.StreamEvent
}

func (p *cannedProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	stream, err := p.StreamMessage(ctx, request)
	if err != nil {
		return nil, err
	}
	return stream.Collect()
}

func (p *cannedProvider) StreamMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatStream, error) {
	return ai.NewChatStream(func(yield func(ai.StreamEvent, error) bool) {
		for _, event := range p.events {
			if !yield(event, nil) {
				return
			}
		}
	}), nil
}

func (p *cannedProvider) WithAPIKey(string) ai.Provider           { return p }
func (p *cannedProvider) WithBaseURL(string) ai.Provider          { return p }
func (p *cannedProvider) WithHttpClient(*http.Client) ai.Provider { return p }

type testEnv struct {
	handler      http.Handler
	settings     *config.SettingsStore
	agents       *store.AgentStore
	instructions *store.InstructionStore
	sessions     *store.SessionStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dataDir := t.TempDir()

	settings, err := config.NewSettingsStore(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := settings.Save(config.Settings{Providers: []dispatch.ProviderConfig{
		{ID: "stub", Name: "Stub", Keys: []string{"k"}},
	}}); err != nil {
		t.Fatal(err)
	}

	agents, err := store.NewAgentStore(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	instructions, err := store.NewInstructionStore(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	sessions, err := store.NewSessionStore(dataDir, nil)
	if err != nil {
		t.Fatal(err)
	}

	registry := dispatch.NewRegistry()
	registry.Register("stub", func() ai.Provider {
		return &cannedProvider{events: []ai.StreamEvent{
			{Type: ai.StreamEventContent, Content: "Hel"},
			{Type: ai.StreamEventContent, Content: "lo"},
			{Type: ai.StreamEventUsage, Usage: &ai.Usage{PromptTokens: 2, CompletionTokens: 1}},
			{Type: ai.StreamEventDone, FinishReason: "stop"},
		}}
	})

	chatService := chat.NewService(registry, settings, agents, instructions, nil, sessions, nil)
	srv := New(chatService, settings, agents, instructions, sessions, nil)

	return &testEnv{
		handler:      srv.Handler(),
		settings:     settings,
		agents:       agents,
		instructions: instructions,
		sessions:     sessions,
	}
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	recorder := httptest.NewRecorder()
	env.handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeInto(t *testing.T, recorder *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(recorder.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestChatSendEndpoint(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPost, "/api/chat/send", chat.Request{
		ChatID:     "chat-1",
		ProviderID: "stub",
		ModelID:    "test-model",
		Messages:   []ai.Message{ai.TextMessage(ai.RoleUser, "Hi")},
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var response chatResponse
	decodeInto(t, recorder, &response)
	if response.Content != "Hello" || response.ModelUsed != "test-model" || response.Provider != "stub" {
		t.Errorf("response = %+v", response)
	}
	if response.Usage.TotalTokens != 3 {
		t.Errorf("usage total = %d, want 3", response.Usage.TotalTokens)
	}

	// The turn was persisted with the assistant reply appended.
	history, err := env.sessions.Load("chat-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 || history[1].Content != "Hello" {
		t.Errorf("persisted history = %+v", history)
	}
}

func TestChatSendUnknownProvider(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPost, "/api/chat/send", chat.Request{
		ProviderID: "unconfigured",
		Messages:   []ai.Message{ai.TextMessage(ai.RoleUser, "Hi")},
	})
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", recorder.Code)
	}
}

func TestChatStreamEndpoint(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPost, "/api/chat/stream", chat.Request{
		ChatID:     "chat-1",
		ProviderID: "stub",
		ModelID:    "m",
		Messages:   []ai.Message{ai.TextMessage(ai.RoleUser, "Hi")},
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	if got := recorder.Header().Get("Content-Type"); got != "application/x-ndjson" {
		t.Errorf("content type = %q", got)
	}

	var chunks []string
	scanner := bufio.NewScanner(recorder.Body)
	for scanner.Scan() {
		var event chat.Event
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("bad NDJSON line %q: %v", scanner.Text(), err)
		}
		if event.Error != "" {
			t.Fatalf("unexpected error event: %s", event.Error)
		}
		chunks = append(chunks, event.Chunk)
	}
	if got := strings.Join(chunks, ""); got != "Hello" {
		t.Errorf("streamed content = %q, want Hello", got)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPost, "/api/settings/save", config.Settings{
		Providers: []dispatch.ProviderConfig{
			{ID: "openai", Name: "OpenAI", Keys: []string{"sk-1"}},
			{ID: "anthropic", Name: "Anthropic"},
		},
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("save status = %d", recorder.Code)
	}

	var settings config.Settings
	decodeInto(t, env.do(t, http.MethodGet, "/api/settings", nil), &settings)
	if len(settings.Providers) != 2 {
		t.Errorf("settings = %+v", settings)
	}

	var active []config.ActiveProvider
	decodeInto(t, env.do(t, http.MethodGet, "/api/providers/active", nil), &active)
	if len(active) != 1 || active[0].ID != "openai" {
		t.Errorf("active = %+v, want only configured openai", active)
	}
}

func TestRemoteModelsEndpoint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[{"name":"llama3:8b"},{"name":"mistral:7b"}]}`))
	}))
	defer upstream.Close()

	env := newTestEnv(t)

	var payload struct {
		Models []string `json:"models"`
	}
	decodeInto(t, env.do(t, http.MethodGet, "/api/providers/models?url="+upstream.URL+"/", nil), &payload)
	if len(payload.Models) != 2 || payload.Models[0] != "llama3:8b" {
		t.Errorf("models = %v", payload.Models)
	}

	decodeInto(t, env.do(t, http.MethodGet, "/api/providers/models", nil), &payload)
	if len(payload.Models) != 1 || payload.Models[0] != "error-no-url" {
		t.Errorf("missing url models = %v", payload.Models)
	}
}

func TestAgentEndpoints(t *testing.T) {
	env := newTestEnv(t)

	var created store.Agent
	decodeInto(t, env.do(t, http.MethodPost, "/api/agents", map[string]string{
		"name":     "Helper",
		"role":     "Assistant",
		"category": "general",
	}), &created)
	if created.ID == "" || created.Name != "Helper" {
		t.Fatalf("created = %+v", created)
	}

	var listed []store.Agent
	decodeInto(t, env.do(t, http.MethodGet, "/api/agents", nil), &listed)
	if len(listed) != 1 {
		t.Fatalf("listed = %+v", listed)
	}

	var categories []string
	decodeInto(t, env.do(t, http.MethodGet, "/api/agents/categories", nil), &categories)
	if len(categories) != 1 || categories[0] != "general" {
		t.Errorf("categories = %v", categories)
	}

	var updated store.Agent
	decodeInto(t, env.do(t, http.MethodPut, "/api/agents/"+created.ID, map[string]string{
		"name":     "Helper",
		"role":     "Senior assistant",
		"category": "general",
	}), &updated)
	if updated.Role != "Senior assistant" {
		t.Errorf("updated = %+v", updated)
	}

	if recorder := env.do(t, http.MethodDelete, "/api/agents/"+created.ID, nil); recorder.Code != http.StatusOK {
		t.Fatalf("delete status = %d", recorder.Code)
	}
	if recorder := env.do(t, http.MethodGet, "/api/agents/"+created.ID, nil); recorder.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", recorder.Code)
	}
}

func TestInstructionEndpoints(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPost, "/api/instructions/save", instructionPayload{
		ChatID:  "chat-1",
		Content: "Be terse.",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("save status = %d", recorder.Code)
	}

	var payload map[string]string
	decodeInto(t, env.do(t, http.MethodGet, "/api/instructions/chat-1", nil), &payload)
	if payload["content"] != "Be terse." {
		t.Errorf("content = %q", payload["content"])
	}

	decodeInto(t, env.do(t, http.MethodGet, "/api/instructions/unknown", nil), &payload)
	if payload["content"] != "" {
		t.Errorf("unknown chat content = %q, want empty", payload["content"])
	}
}

func TestSessionEndpoints(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPost, "/api/sessions/save", sessionSavePayload{
		ChatID: "chat-1",
		Messages: []ai.Message{
			ai.TextMessage(ai.RoleUser, "What is Go?"),
			ai.TextMessage(ai.RoleAssistant, "A language."),
		},
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("save status = %d", recorder.Code)
	}

	var listed []store.SessionInfo
	decodeInto(t, env.do(t, http.MethodGet, "/api/sessions", nil), &listed)
	if len(listed) != 1 || listed[0].Title != "What is Go?" {
		t.Errorf("listed = %+v", listed)
	}

	var history []ai.Message
	decodeInto(t, env.do(t, http.MethodGet, "/api/sessions/chat-1", nil), &history)
	if len(history) != 2 || history[1].Content != "A language." {
		t.Errorf("history = %+v", history)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodOptions, "/api/chat/send", nil)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", recorder.Code)
	}
	if got := recorder.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
}
