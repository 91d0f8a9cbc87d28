package config

// knownModels is the static model registry per provider id. Providers absent
// from this map fall back to a single generic entry; self-hosted providers
// are expected to be queried live instead.
var knownModels = map[string][]string{
	"openai":    {"gpt-4o", "gpt-4-turbo", "gpt-3.5-turbo"},
	"anthropic": {"claude-3-5-sonnet", "claude-3-opus", "claude-3-haiku"},
	"gemini":    {"gemini-1.5-pro", "gemini-2.0-latest", "gemini-2.5-flash", "gemini-1.5-flash"},
	"grok":      {"grok-beta"},
	"runpod":    {"llama3-8b-instruct", "mistral-7b"},
}

// ActiveProvider is one entry of the active providers view: a configured
// provider joined with its known model list.
type ActiveProvider struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Models []string `json:"models"`
}

// ActiveProviders returns the configured providers (at least one key or a
// URL) with their model lists, in saved order.
func (s *SettingsStore) ActiveProviders() []ActiveProvider {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := []ActiveProvider{}
	for _, provider := range s.load().Providers {
		if !provider.Active() {
			continue
		}
		models, ok := knownModels[provider.ID]
		if !ok {
			models = []string{"default-model"}
		}
		active = append(active, ActiveProvider{
			ID:     provider.ID,
			Name:   provider.Name,
			Models: models,
		})
	}
	return active
}
