package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"chatgate/config"
	"chatgate/internal/utils"
)

func (s *Server) handleSettingsSave(w http.ResponseWriter, r *http.Request) {
	var settings config.Settings
	if !s.decodeBody(w, r, &settings) {
		return
	}

	if err := s.settings.Save(settings); err != nil {
		s.logger.Error("failed to save settings", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Settings saved successfully",
	})
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.settings.Load())
}

func (s *Server) handleActiveProviders(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.settings.ActiveProviders())
}

// handleRemoteModels lists the models a self-hosted Ollama endpoint serves.
// Failures are reported as sentinel model names so the settings UI can show
// them inline instead of breaking the form.
func (s *Server) handleRemoteModels(w http.ResponseWriter, r *http.Request) {
	baseURL := r.URL.Query().Get("url")
	s.writeJSON(w, http.StatusOK, map[string][]string{
		"models": s.remoteModels(r, baseURL),
	})
}

func (s *Server) remoteModels(r *http.Request, baseURL string) []string {
	if baseURL == "" {
		return []string{"error-no-url"}
	}

	tagsURL := strings.TrimRight(baseURL, "/") + "/api/tags"
	request, err := http.NewRequestWithContext(r.Context(), http.MethodGet, tagsURL, nil)
	if err != nil {
		return []string{"connection-failed"}
	}

	response, err := s.httpClient.Do(request)
	if err != nil {
		s.logger.Warn("failed to reach remote model endpoint", "url", tagsURL, "error", err)
		return []string{"connection-failed"}
	}
	defer utils.CloseWithLog(response.Body)

	if response.StatusCode != http.StatusOK {
		return []string{"error-runpod-unreachable"}
	}

	var payload struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return []string{"connection-failed"}
	}

	names := make([]string, 0, len(payload.Models))
	for _, model := range payload.Models {
		names = append(names, model.Name)
	}
	return names
}
