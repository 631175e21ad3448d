// Package memctx builds keyword-scored memory context for prompts and
// records conversation turns and captured items as facts. Memory is a
// best-effort enhancement: nothing in this package ever fails a turn.
package memctx

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ronaldv/minime-agent/internal/domain"
	"github.com/ronaldv/minime-agent/internal/observability"
)

const (
	fetchLimit      = 25
	contextBudget   = 1500
	maxRelevant     = 5
	recencyFallback = 3
)

var wordPattern = regexp.MustCompile(`\w+`)

var stopwords = map[string]struct{}{
	"i": {}, "me": {}, "my": {}, "you": {}, "your": {}, "the": {},
	"and": {}, "but": {}, "for": {}, "are": {}, "about": {}, "that": {},
	"this": {}, "with": {}, "have": {}, "what": {}, "when": {},
	"who": {}, "how": {}, "why": {}, "which": {}, "favorite": {}, "favourite": {},
}

// Manager handles the memory of one agent/namespace pair.
type Manager struct {
	agentID   string
	namespace string
	entityID  int64
	processID int64
	store     domain.FactStore
}

// NewManager resolves the numeric ids for the agent and namespace.
func NewManager(ctx context.Context, store domain.FactStore, agentID, namespace string) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("memctx: no fact store configured")
	}
	if namespace == "" {
		namespace = agentID
	}

	entityID, err := store.EnsureEntity(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("resolving entity %q: %w", agentID, err)
	}
	processID, err := store.EnsureProcess(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("resolving namespace %q: %w", namespace, err)
	}

	return &Manager{
		agentID:   agentID,
		namespace: namespace,
		entityID:  entityID,
		processID: processID,
		store:     store,
	}, nil
}

// BuildContext returns a bounded, header-prefixed excerpt of stored
// facts relevant to the user's message. It never fails: any problem
// yields the empty string.
func (m *Manager) BuildContext(ctx context.Context, userText string) string {
	if userText == "" {
		return ""
	}

	log := observability.LoggerFromContext(ctx).With("agent_id", m.agentID)

	facts, err := m.store.RecentFacts(ctx, m.entityID, fetchLimit)
	if err != nil {
		log.Warn("failed to fetch memories", "error", err)
		return ""
	}
	if len(facts) == 0 {
		return ""
	}

	keywords := queryKeywords(userText)

	type scored struct {
		score float64
		hits  int
		fact  string
	}

	items := make([]scored, 0, len(facts))
	for idx, f := range facts {
		lowered := strings.ToLower(f)
		hits := 0
		for kw := range keywords {
			if strings.Contains(lowered, kw) {
				hits++
			}
		}
		// Small recency bonus: earlier entries are the most recent, so
		// ties between equally matching facts break toward newer ones.
		score := float64(hits) + float64(len(facts)-idx)*0.01
		items = append(items, scored{score: score, hits: hits, fact: f})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].score > items[j].score })

	var relevant []string
	for _, it := range items {
		if it.hits > 0 && len(relevant) < maxRelevant {
			relevant = append(relevant, it.fact)
		}
	}
	if len(relevant) == 0 {
		n := recencyFallback
		if n > len(facts) {
			n = len(facts)
		}
		relevant = facts[:n]
	}

	lines := make([]string, 0, len(relevant)+1)
	lines = append(lines, "Relevant memories:")
	for _, f := range relevant {
		lines = append(lines, "- "+f)
	}

	out := strings.Join(lines, "\n")
	if len(out) > contextBudget {
		out = out[:contextBudget]
	}
	return out
}

// queryKeywords tokenizes the message into lowercase word tokens,
// discarding short tokens and stop-words; when that filters everything
// out, the unfiltered token set is used instead.
func queryKeywords(text string) map[string]struct{} {
	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)

	keywords := make(map[string]struct{})
	for _, tok := range tokens {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		keywords[tok] = struct{}{}
	}

	if len(keywords) == 0 {
		for _, tok := range tokens {
			keywords[tok] = struct{}{}
		}
	}
	return keywords
}

// AddConversation records a raw exchange. Fire-and-forget: failures are
// logged and swallowed.
func (m *Manager) AddConversation(ctx context.Context, userMessage, assistantReply string) {
	content := fmt.Sprintf("User: %s\nAssistant: %s", userMessage, assistantReply)
	m.StoreMemory(ctx, content, "conversation", "")
}

// StoreMemory records an arbitrary fact. Fire-and-forget.
func (m *Manager) StoreMemory(ctx context.Context, content, kind, metadata string) {
	if content == "" {
		return
	}
	if err := m.store.InsertFact(ctx, m.entityID, m.processID, content, kind, metadata); err != nil {
		observability.LoggerFromContext(ctx).Warn("failed to store memory",
			"agent_id", m.agentID,
			"kind", kind,
			"error", err)
	}
}
