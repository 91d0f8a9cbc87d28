package store

import (
	"errors"
	"testing"

	"chatgate/core/prompt"
)

func newTestAgentStore(t *testing.T) *AgentStore {
	t.Helper()
	s, err := NewAgentStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewAgentStore failed: %v", err)
	}
	return s
}

func TestAgentCRUD(t *testing.T) {
	s := newTestAgentStore(t)

	created, err := s.Create(Agent{
		Category: "coding",
		AgentProfile: prompt.AgentProfile{
			Name: "Reviewer",
			Role: "Code reviewer",
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create did not assign an id")
	}

	got, err := s.Get(created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Reviewer" || got.Category != "coding" {
		t.Errorf("Get = %+v, want Reviewer/coding", got)
	}

	updated, err := s.Update(created.ID, Agent{
		ID:       "attempted-rewrite",
		Category: "review",
		AgentProfile: prompt.AgentProfile{
			Name: "Reviewer",
			Role: "Senior code reviewer",
		},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("Update changed id to %q", updated.ID)
	}
	if updated.Role != "Senior code reviewer" || updated.Category != "review" {
		t.Errorf("Update = %+v", updated)
	}

	if err := s.Delete(created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestAgentListSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewAgentStore(dir)
	if err != nil {
		t.Fatalf("NewAgentStore failed: %v", err)
	}

	for _, name := range []string{"A", "B"} {
		if _, err := s.Create(Agent{AgentProfile: prompt.AgentProfile{Name: name}}); err != nil {
			t.Fatalf("Create %s failed: %v", name, err)
		}
	}

	reopened, err := NewAgentStore(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	agents, err := reopened.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(agents) != 2 || agents[0].Name != "A" || agents[1].Name != "B" {
		t.Errorf("List = %+v, want A then B", agents)
	}
}

func TestAgentCategories(t *testing.T) {
	s := newTestAgentStore(t)

	for _, category := range []string{"writing", "coding", "coding", ""} {
		if _, err := s.Create(Agent{Category: category}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	categories, err := s.Categories()
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(categories) != 2 || categories[0] != "coding" || categories[1] != "writing" {
		t.Errorf("Categories = %v, want [coding writing]", categories)
	}
}

func TestResolveAgent(t *testing.T) {
	s := newTestAgentStore(t)

	created, err := s.Create(Agent{AgentProfile: prompt.AgentProfile{Name: "Helper"}})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	profile, ok := s.ResolveAgent(created.ID)
	if !ok || profile.Name != "Helper" {
		t.Errorf("ResolveAgent = %+v %v, want Helper true", profile, ok)
	}

	if _, ok := s.ResolveAgent("missing"); ok {
		t.Error("ResolveAgent found a missing agent")
	}
}
