// Package server exposes the chat gateway over HTTP: chat dispatch
// (buffered and streaming), provider settings, agent CRUD, per-chat
// instructions, and session history. Handlers are thin; all behavior lives
// in the packages they delegate to.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"chatgate/config"
	"chatgate/core/chat"
	"chatgate/store"
)

const remoteModelTimeout = 5 * time.Second

// Server holds the handler dependencies. Construct with [New].
type Server struct {
	chat         *chat.Service
	settings     *config.SettingsStore
	agents       *store.AgentStore
	instructions *store.InstructionStore
	sessions     *store.SessionStore
	httpClient   *http.Client
	logger       *slog.Logger
}

// New wires a Server. A nil logger falls back to slog.Default.
func New(chatService *chat.Service, settings *config.SettingsStore, agents *store.AgentStore, instructions *store.InstructionStore, sessions *store.SessionStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		chat:         chatService,
		settings:     settings,
		agents:       agents,
		instructions: instructions,
		sessions:     sessions,
		httpClient:   &http.Client{Timeout: remoteModelTimeout},
		logger:       logger,
	}
}

// Handler returns the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat/send", s.handleChatSend)
	mux.HandleFunc("POST /api/chat/stream", s.handleChatStream)

	mux.HandleFunc("POST /api/settings/save", s.handleSettingsSave)
	mux.HandleFunc("GET /api/settings", s.handleSettingsGet)
	mux.HandleFunc("GET /api/providers/active", s.handleActiveProviders)
	mux.HandleFunc("GET /api/providers/models", s.handleRemoteModels)

	mux.HandleFunc("POST /api/agents", s.handleAgentCreate)
	mux.HandleFunc("GET /api/agents", s.handleAgentList)
	mux.HandleFunc("GET /api/agents/categories", s.handleAgentCategories)
	mux.HandleFunc("GET /api/agents/{id}", s.handleAgentGet)
	mux.HandleFunc("PUT /api/agents/{id}", s.handleAgentUpdate)
	mux.HandleFunc("DELETE /api/agents/{id}", s.handleAgentDelete)

	mux.HandleFunc("POST /api/instructions/save", s.handleInstructionSave)
	mux.HandleFunc("GET /api/instructions/{chatID}", s.handleInstructionGet)

	mux.HandleFunc("GET /api/sessions", s.handleSessionList)
	mux.HandleFunc("GET /api/sessions/{chatID}", s.handleSessionGet)
	mux.HandleFunc("POST /api/sessions/save", s.handleSessionSave)

	return withCORS(mux)
}

// withCORS permits browser frontends served from another origin.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) writeStatusOK(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// decodeBody parses a JSON request body into dst, reporting a 400 itself
// on malformed input.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
