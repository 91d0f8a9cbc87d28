package server

import (
	"errors"
	"net/http"

	"chatgate/store"
)

func (s *Server) handleAgentCreate(w http.ResponseWriter, r *http.Request) {
	var agent store.Agent
	if !s.decodeBody(w, r, &agent) {
		return
	}

	created, err := s.agents.Create(agent)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleAgentList(w http.ResponseWriter, r *http.Request) {
	agents, err := s.agents.List()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if agents == nil {
		agents = []store.Agent{}
	}
	s.writeJSON(w, http.StatusOK, agents)
}

func (s *Server) handleAgentCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.agents.Categories()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleAgentGet(w http.ResponseWriter, r *http.Request) {
	agent, err := s.agents.Get(r.PathValue("id"))
	if err != nil {
		s.writeAgentError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, agent)
}

func (s *Server) handleAgentUpdate(w http.ResponseWriter, r *http.Request) {
	var agent store.Agent
	if !s.decodeBody(w, r, &agent) {
		return
	}

	updated, err := s.agents.Update(r.PathValue("id"), agent)
	if err != nil {
		s.writeAgentError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleAgentDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.agents.Delete(r.PathValue("id")); err != nil {
		s.writeAgentError(w, err)
		return
	}
	s.writeStatusOK(w)
}

func (s *Server) writeAgentError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "Agent not found")
		return
	}
	s.writeError(w, http.StatusInternalServerError, err.Error())
}
