package viewstate

import (
	"context"
	"sync"

	"github.com/yanqian/billing-dashboard/internal/domain/billing"
)

// MemoryStore tracks view generations for a single process.
type MemoryStore struct {
	mu          sync.Mutex
	generations map[string]uint64
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{generations: make(map[string]uint64)}
}

// Begin implements billing.ViewTracker.
func (s *MemoryStore) Begin(_ context.Context, viewKey string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[viewKey]++
	return s.generations[viewKey], nil
}

// Current implements billing.ViewTracker.
func (s *MemoryStore) Current(_ context.Context, viewKey string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[viewKey], nil
}

var _ billing.ViewTracker = (*MemoryStore)(nil)
