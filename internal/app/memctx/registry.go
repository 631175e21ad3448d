package memctx

import (
	"context"
	"sync"

	"github.com/ronaldv/minime-agent/internal/domain"
)

// Registry owns the one-manager-per-agent/namespace contract. It is
// constructed once at the application root and passed by reference to
// every call site, instead of hiding the cache in package state.
type Registry struct {
	store domain.FactStore

	mu       sync.Mutex
	managers map[string]*Manager
}

func NewRegistry(store domain.FactStore) *Registry {
	return &Registry{
		store:    store,
		managers: make(map[string]*Manager),
	}
}

// Manager returns the cached manager for agentID/namespace, creating it
// on first use. Namespace defaults to agentID.
func (r *Registry) Manager(ctx context.Context, agentID, namespace string) (*Manager, error) {
	if namespace == "" {
		namespace = agentID
	}
	key := agentID + ":" + namespace

	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.managers[key]; ok {
		return m, nil
	}

	m, err := NewManager(ctx, r.store, agentID, namespace)
	if err != nil {
		return nil, err
	}
	r.managers[key] = m
	return m, nil
}
