package memctx_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ronaldv/minime-agent/internal/adapters/storage/memstore"
	"github.com/ronaldv/minime-agent/internal/app/memctx"
)

func newManager(t *testing.T) (*memctx.Manager, *memstore.FactStore) {
	t.Helper()

	store := memstore.NewFactStore()
	m, err := memctx.NewManager(context.Background(), store, "main_assistant", "")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m, store
}

func TestBuildContextEmptyWithoutFacts(t *testing.T) {
	m, _ := newManager(t)

	if got := m.BuildContext(context.Background(), "what's my favorite color?"); got != "" {
		t.Errorf("expected empty context, got %q", got)
	}
}

func TestBuildContextPrefersKeywordMatches(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	m.StoreMemory(ctx, "The dentist's office is on Maple Street", "fact", "")
	m.StoreMemory(ctx, "User prefers tea over coffee", "fact", "")
	m.StoreMemory(ctx, "Car service is due in November", "fact", "")

	got := m.BuildContext(ctx, "remind me about the dentist appointment")
	if !strings.HasPrefix(got, "Relevant memories:") {
		t.Fatalf("expected header prefix, got %q", got)
	}
	lines := strings.Split(got, "\n")
	if len(lines) < 2 || !strings.Contains(lines[1], "dentist") {
		t.Errorf("expected dentist fact ranked first, got %q", got)
	}
}

func TestBuildContextFallsBackToMostRecent(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	m.StoreMemory(ctx, "fact one", "fact", "")
	m.StoreMemory(ctx, "fact two", "fact", "")
	m.StoreMemory(ctx, "fact three", "fact", "")
	m.StoreMemory(ctx, "fact four", "fact", "")

	got := m.BuildContext(ctx, "zzz qqq xyzzy")
	if got == "" {
		t.Fatal("expected fallback context, got empty")
	}

	lines := strings.Split(got, "\n")
	if lines[0] != "Relevant memories:" {
		t.Errorf("expected header, got %q", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 most recent facts, got %d lines: %q", len(lines), got)
	}
	if lines[1] != "- fact four" || lines[2] != "- fact three" || lines[3] != "- fact two" {
		t.Errorf("expected the 3 most recent facts in order, got %q", got)
	}
}

func TestBuildContextRespectsBudget(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	long := strings.Repeat("important meeting details ", 40)
	for i := 0; i < 5; i++ {
		m.StoreMemory(ctx, long, "fact", "")
	}

	got := m.BuildContext(ctx, "tell me about the meeting")
	if len(got) > 1500 {
		t.Errorf("context exceeds budget: %d chars", len(got))
	}
	if got == "" {
		t.Error("expected non-empty context")
	}
}

func TestBuildContextStopwordOnlyQueryStillMatches(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	m.StoreMemory(ctx, "you and me", "fact", "")

	// Every token is a stop-word, so the unfiltered set is used.
	got := m.BuildContext(ctx, "you and me")
	if got == "" {
		t.Error("expected context from unfiltered tokens, got empty")
	}
}

func TestAddConversationStoresFact(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	m.AddConversation(ctx, "hello", "hi there")

	entityID, err := store.EnsureEntity(ctx, "main_assistant")
	if err != nil {
		t.Fatalf("EnsureEntity failed: %v", err)
	}
	facts, err := store.RecentFacts(ctx, entityID, 10)
	if err != nil {
		t.Fatalf("RecentFacts failed: %v", err)
	}
	if len(facts) != 1 || !strings.Contains(facts[0], "hello") {
		t.Errorf("expected conversation fact, got %v", facts)
	}
}

func TestRegistryReturnsSameManager(t *testing.T) {
	ctx := context.Background()
	reg := memctx.NewRegistry(memstore.NewFactStore())

	a, err := reg.Manager(ctx, "main_assistant", "")
	if err != nil {
		t.Fatalf("Manager failed: %v", err)
	}
	b, err := reg.Manager(ctx, "main_assistant", "")
	if err != nil {
		t.Fatalf("Manager (repeat) failed: %v", err)
	}
	if a != b {
		t.Error("expected cached manager instance")
	}

	c, err := reg.Manager(ctx, "email_agent", "")
	if err != nil {
		t.Fatalf("Manager (other) failed: %v", err)
	}
	if c == a {
		t.Error("expected distinct manager per agent id")
	}
}
