package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"chatgate/core/dispatch"
)

// Settings is the user's provider settings document, saved as a whole.
type Settings struct {
	Providers []dispatch.ProviderConfig `json:"providers"`
}

// SettingsStore persists the provider settings document as one JSON file
// and serves read-only configuration snapshots to the chat service.
type SettingsStore struct {
	mu   sync.Mutex
	path string
}

// NewSettingsStore creates the data directory if needed and returns a store
// backed by dataDir/user_settings.json.
func NewSettingsStore(dataDir string) (*SettingsStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &SettingsStore{path: filepath.Join(dataDir, "user_settings.json")}, nil
}

// Save replaces the whole settings document.
func (s *SettingsStore) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	// Settings contain API keys.
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// Load returns the saved settings document. A missing or corrupted file
// reads as an empty provider list.
func (s *SettingsStore) Load() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *SettingsStore) load() Settings {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Settings{Providers: []dispatch.ProviderConfig{}}
	}
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{Providers: []dispatch.ProviderConfig{}}
	}
	if settings.Providers == nil {
		settings.Providers = []dispatch.ProviderConfig{}
	}
	return settings
}

// ResolveProviderConfig returns the saved snapshot for one provider id.
// Providers without any key or URL are treated as unconfigured.
func (s *SettingsStore) ResolveProviderConfig(providerID string) (dispatch.ProviderConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, provider := range s.load().Providers {
		if provider.ID == providerID && provider.Active() {
			return provider, true
		}
	}
	return dispatch.ProviderConfig{}, false
}
