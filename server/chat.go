package server

import (
	"encoding/json"
	"net/http"

	"chatgate/core/chat"
	"chatgate/providers/ai"
)

// chatResponse is the buffered chat envelope returned to the frontend.
type chatResponse struct {
	Content   string   `json:"content"`
	ModelUsed string   `json:"model_used"`
	Provider  string   `json:"provider"`
	Usage     ai.Usage `json:"usage"`
}

func (s *Server) handleChatSend(w http.ResponseWriter, r *http.Request) {
	var request chat.Request
	if !s.decodeBody(w, r, &request) {
		return
	}

	response, err := s.chat.Send(r.Context(), request)
	if err != nil {
		s.logger.Error("chat send failed", "provider", request.ProviderID, "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{
		Content:   response.Content,
		ModelUsed: response.Model,
		Provider:  response.Provider,
		Usage:     response.Usage,
	})
}

// handleChatStream relays the canonical delta stream as newline-delimited
// JSON. Each line is either {"chunk": ...} or {"error": ...}; the response
// status is always 200 because failures can occur after the first byte.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var request chat.Request
	if !s.decodeBody(w, r, &request) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	encoder := json.NewEncoder(w)
	for event := range s.chat.Stream(r.Context(), request) {
		if err := encoder.Encode(event); err != nil {
			// Client went away; the iterator observes the context.
			return
		}
		flusher.Flush()
	}
}
