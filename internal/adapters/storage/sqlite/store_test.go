package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ronaldv/minime-agent/internal/adapters/storage/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "memory.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEnsureEntityIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	first, err := store.EnsureEntity(ctx, "main_assistant")
	if err != nil {
		t.Fatalf("EnsureEntity failed: %v", err)
	}

	second, err := store.EnsureEntity(ctx, "main_assistant")
	if err != nil {
		t.Fatalf("EnsureEntity (repeat) failed: %v", err)
	}

	if first != second {
		t.Errorf("expected same id for same external id, got %d and %d", first, second)
	}

	other, err := store.EnsureEntity(ctx, "email_agent")
	if err != nil {
		t.Fatalf("EnsureEntity (other) failed: %v", err)
	}
	if other == first {
		t.Errorf("expected distinct ids for distinct external ids, both got %d", other)
	}
}

func TestEnsureEntityRejectsEmptyID(t *testing.T) {
	store := newStore(t)
	if _, err := store.EnsureEntity(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty external id")
	}
}

func TestInsertAndRecentFacts(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	entityID, err := store.EnsureEntity(ctx, "main_assistant")
	if err != nil {
		t.Fatalf("EnsureEntity failed: %v", err)
	}
	processID, err := store.EnsureProcess(ctx, "main_assistant")
	if err != nil {
		t.Fatalf("EnsureProcess failed: %v", err)
	}

	for _, content := range []string{"first fact", "second fact", "third fact"} {
		if err := store.InsertFact(ctx, entityID, processID, content, "fact", ""); err != nil {
			t.Fatalf("InsertFact failed: %v", err)
		}
	}

	facts, err := store.RecentFacts(ctx, entityID, 2)
	if err != nil {
		t.Fatalf("RecentFacts failed: %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("expected 2 facts, got %d", len(facts))
	}
	if facts[0] != "third fact" || facts[1] != "second fact" {
		t.Errorf("expected most recent first, got %v", facts)
	}
}

func TestRecentFactsUnknownEntity(t *testing.T) {
	store := newStore(t)

	facts, err := store.RecentFacts(context.Background(), 999, 10)
	if err != nil {
		t.Fatalf("RecentFacts failed: %v", err)
	}
	if len(facts) != 0 {
		t.Errorf("expected no facts, got %v", facts)
	}
}
