package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"chatgate/providers/ai"
)

const sessionTitleLength = 30

// SessionInfo is one row of the session listing.
type SessionInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SessionStore persists full message histories, one JSON file per chat id.
// Chat ids are sanitized before becoming file names so callers cannot
// traverse outside the sessions directory.
type SessionStore struct {
	mu     sync.Mutex
	dir    string
	logger *slog.Logger
}

// NewSessionStore creates dataDir/sessions if needed and returns a store
// over it.
func NewSessionStore(dataDir string, logger *slog.Logger) (*SessionStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir := filepath.Join(dataDir, "sessions")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &SessionStore{dir: dir, logger: logger}, nil
}

// sanitizeChatID keeps only characters that are safe in a file name.
func sanitizeChatID(chatID string) string {
	var b strings.Builder
	for _, r := range chatID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (s *SessionStore) sessionPath(chatID string) string {
	return filepath.Join(s.dir, sanitizeChatID(chatID)+".json")
}

// Save writes the full message history for a chat, replacing any previous
// content.
func (s *SessionStore) Save(chatID string, history []ai.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(s.sessionPath(chatID), data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load returns the message history for a chat. A missing or corrupted file
// reads as an empty history.
func (s *SessionStore) Load(chatID string) ([]ai.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.sessionPath(chatID))
	if err != nil {
		return []ai.Message{}, nil
	}
	var history []ai.Message
	if err := json.Unmarshal(data, &history); err != nil {
		return []ai.Message{}, nil
	}
	return history, nil
}

// List returns all sessions newest-first, titled by their first user
// message.
func (s *SessionStore) List() ([]SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	type row struct {
		info    SessionInfo
		modTime int64
	}
	var rows []row

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		fileInfo, err := entry.Info()
		if err != nil {
			continue
		}
		chatID := strings.TrimSuffix(entry.Name(), ".json")

		rows = append(rows, row{
			info:    SessionInfo{ID: chatID, Title: s.sessionTitle(chatID)},
			modTime: fileInfo.ModTime().UnixNano(),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].modTime > rows[j].modTime
	})

	sessions := make([]SessionInfo, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, r.info)
	}
	return sessions, nil
}

// sessionTitle derives a listing title from the first user message. Callers
// hold s.mu.
func (s *SessionStore) sessionTitle(chatID string) string {
	data, err := os.ReadFile(s.sessionPath(chatID))
	if err != nil {
		return "Empty Chat"
	}
	var history []ai.Message
	if err := json.Unmarshal(data, &history); err != nil {
		return "Empty Chat"
	}

	for _, message := range history {
		if message.Role != ai.RoleUser {
			continue
		}
		title := message.Text()
		if runes := []rune(title); len(runes) > sessionTitleLength {
			return string(runes[:sessionTitleLength]) + "..."
		}
		return title
	}
	return "New Chat"
}

// PersistSession adapts the store to the chat service, which treats
// persistence as fire-and-forget: failures are logged, never surfaced to
// the caller mid-stream.
func (s *SessionStore) PersistSession(chatID string, history []ai.Message) {
	if err := s.Save(chatID, history); err != nil {
		s.logger.Error("failed to persist session", "chat_id", chatID, "error", err)
	}
}
