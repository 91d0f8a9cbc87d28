package server

import (
	"net/http"

	"chatgate/providers/ai"
)

type instructionPayload struct {
	ChatID  string `json:"chat_id"`
	Content string `json:"content"`
}

func (s *Server) handleInstructionSave(w http.ResponseWriter, r *http.Request) {
	var payload instructionPayload
	if !s.decodeBody(w, r, &payload) {
		return
	}

	if err := s.instructions.Save(payload.ChatID, payload.Content); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeStatusOK(w)
}

func (s *Server) handleInstructionGet(w http.ResponseWriter, r *http.Request) {
	content := s.instructions.SavedInstruction(r.PathValue("chatID"))
	s.writeJSON(w, http.StatusOK, map[string]string{"content": content})
}

type sessionSavePayload struct {
	ChatID   string       `json:"chat_id"`
	Messages []ai.Message `json:"messages"`
}

func (s *Server) handleSessionList(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.List()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	history, err := s.sessions.Load(r.PathValue("chatID"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleSessionSave(w http.ResponseWriter, r *http.Request) {
	var payload sessionSavePayload
	if !s.decodeBody(w, r, &payload) {
		return
	}

	if err := s.sessions.Save(payload.ChatID, payload.Messages); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeStatusOK(w)
}
