package correlation

import (
	"context"
	"sync"

	"github.com/adam-platform/instrument-bridge/common/contract"
)

// MemoryStore is the in-process Lookup variant. Suitable for single-instance
// deployments and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]contract.CorrelationContext
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]contract.CorrelationContext)}
}

// Get returns the registered context, or nil on a miss.
func (s *MemoryStore) Get(ctx context.Context, activityID string) (*contract.CorrelationContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cc, ok := s.entries[activityID]
	if !ok {
		return nil, nil
	}
	return &cc, nil
}

// Set registers the context for an activity id.
func (s *MemoryStore) Set(ctx context.Context, activityID string, cc contract.CorrelationContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[activityID] = cc
	return nil
}
