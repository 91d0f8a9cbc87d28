package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"chatgate/core/prompt"
)

// Agent is a stored agent profile. The embedded persona fields are what the
// prompt composer consumes; Category exists only for organizing the agent
// list.
type Agent struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	prompt.AgentProfile
}

// AgentStore is a flat-file CRUD store for agent profiles. All agents live
// in a single JSON array file; a missing or corrupted file reads as an empty
// list.
type AgentStore struct {
	mu   sync.Mutex
	path string
}

// NewAgentStore creates the data directory if needed and returns a store
// backed by dataDir/agents.json.
func NewAgentStore(dataDir string) (*AgentStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &AgentStore{path: filepath.Join(dataDir, "agents.json")}, nil
}

func (s *AgentStore) load() []Agent {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var agents []Agent
	if err := json.Unmarshal(data, &agents); err != nil {
		return nil
	}
	return agents
}

func (s *AgentStore) save(agents []Agent) error {
	data, err := json.MarshalIndent(agents, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal agents: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write agents file: %w", err)
	}
	return nil
}

// Create stores a new agent and returns it with a freshly assigned id. Any
// id supplied by the caller is ignored.
func (s *AgentStore) Create(agent Agent) (*Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agent.ID = uuid.New().String()

	agents := append(s.load(), agent)
	if err := s.save(agents); err != nil {
		return nil, err
	}
	return &agent, nil
}

// List returns all stored agents in insertion order.
func (s *AgentStore) List() ([]Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

// Get returns the agent with the given id, or [ErrNotFound].
func (s *AgentStore) Get(id string) (*Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, agent := range s.load() {
		if agent.ID == id {
			return &agent, nil
		}
	}
	return nil, fmt.Errorf("agent %q: %w", id, ErrNotFound)
}

// Update replaces the stored fields of the agent with the given id and
// returns the updated record. The id itself is immutable.
func (s *AgentStore) Update(id string, update Agent) (*Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agents := s.load()
	for i, agent := range agents {
		if agent.ID != id {
			continue
		}
		update.ID = id
		agents[i] = update
		if err := s.save(agents); err != nil {
			return nil, err
		}
		return &update, nil
	}
	return nil, fmt.Errorf("agent %q: %w", id, ErrNotFound)
}

// Delete removes the agent with the given id, or returns [ErrNotFound].
func (s *AgentStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agents := s.load()
	kept := agents[:0]
	for _, agent := range agents {
		if agent.ID != id {
			kept = append(kept, agent)
		}
	}
	if len(kept) == len(agents) {
		return fmt.Errorf("agent %q: %w", id, ErrNotFound)
	}
	return s.save(kept)
}

// Categories returns the sorted set of distinct non-empty categories.
func (s *AgentStore) Categories() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	for _, agent := range s.load() {
		if agent.Category != "" {
			seen[agent.Category] = true
		}
	}

	categories := make([]string, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories, nil
}

// ResolveAgent adapts the store to the chat service's agent lookup: a
// missing agent is reported as absent, never as an error.
func (s *AgentStore) ResolveAgent(agentID string) (*prompt.AgentProfile, bool) {
	agent, err := s.Get(agentID)
	if err != nil {
		return nil, false
	}
	return &agent.AgentProfile, true
}
