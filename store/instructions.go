package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// InstructionStore keeps one saved instruction per chat id in a single JSON
// map file. Reads never fail: a missing or corrupted file yields empty
// instructions.
type InstructionStore struct {
	mu   sync.Mutex
	path string
}

// NewInstructionStore creates the data directory if needed and returns a
// store backed by dataDir/instructions.json.
func NewInstructionStore(dataDir string) (*InstructionStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &InstructionStore{path: filepath.Join(dataDir, "instructions.json")}, nil
}

func (s *InstructionStore) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]string{}
	}
	var instructions map[string]string
	if err := json.Unmarshal(data, &instructions); err != nil || instructions == nil {
		return map[string]string{}
	}
	return instructions
}

// Save stores or replaces the instruction for a chat. An empty content
// clears it.
func (s *InstructionStore) Save(chatID string, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	instructions := s.load()
	if content == "" {
		delete(instructions, chatID)
	} else {
		instructions[chatID] = content
	}

	data, err := json.MarshalIndent(instructions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal instructions: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write instructions file: %w", err)
	}
	return nil
}

// SavedInstruction returns the instruction saved for a chat, or the empty
// string when none exists.
func (s *InstructionStore) SavedInstruction(chatID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()[chatID]
}
