package store

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestHookRepository_CRUD(t *testing.T) {
	s := newTestStore(t)
	repo := s.Hooks()

	h := &Hook{
		ID:         "h-1",
		Event:      "completed",
		PluginName: "score-log",
		Config:     json.RawMessage(`{"path":"/tmp/scores.log"}`),
		Enabled:    true,
	}

	t.Run("create", func(t *testing.T) {
		if err := repo.Create(h); err != nil {
			t.Fatalf("failed to create hook: %v", err)
		}
		if h.CreatedAt.IsZero() {
			t.Error("CreatedAt should be set after create")
		}
	})

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetByID("h-1")
		if err != nil {
			t.Fatalf("failed to get hook: %v", err)
		}
		if got.Event != "completed" || got.PluginName != "score-log" || !got.Enabled {
			t.Errorf("unexpected hook %+v", got)
		}
		if string(got.Config) != `{"path":"/tmp/scores.log"}` {
			t.Errorf("unexpected config %s", got.Config)
		}
	})

	t.Run("update", func(t *testing.T) {
		h.Enabled = false
		h.Config = nil
		if err := repo.Update(h); err != nil {
			t.Fatalf("failed to update hook: %v", err)
		}
		got, err := repo.GetByID("h-1")
		if err != nil {
			t.Fatalf("failed to get hook: %v", err)
		}
		if got.Enabled {
			t.Error("hook should be disabled")
		}
		if string(got.Config) != "{}" {
			t.Errorf("expected empty config, got %s", got.Config)
		}
	})

	t.Run("update missing", func(t *testing.T) {
		if err := repo.Update(&Hook{ID: "missing"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := repo.Delete("h-1"); err != nil {
			t.Fatalf("failed to delete hook: %v", err)
		}
		if _, err := repo.GetByID("h-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := repo.Delete("h-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestHookRepository_ListByEvent(t *testing.T) {
	s := newTestStore(t)
	repo := s.Hooks()

	hooks := []*Hook{
		{ID: "a", Event: "completed", PluginName: "score-log", Enabled: true},
		{ID: "b", Event: "completed", PluginName: "notify", Enabled: false},
		{ID: "c", Event: "answer_committed", PluginName: "notify", Enabled: true},
	}
	for _, h := range hooks {
		if err := repo.Create(h); err != nil {
			t.Fatalf("failed to create hook %s: %v", h.ID, err)
		}
	}

	got, err := repo.ListByEvent("completed")
	if err != nil {
		t.Fatalf("failed to list hooks: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected only enabled hook a, got %d hooks", len(got))
	}

	all, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list hooks: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 hooks, got %d", len(all))
	}

	none, err := repo.ListByEvent("question")
	if err != nil {
		t.Fatalf("failed to list hooks: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no hooks, got %d", len(none))
	}
}
