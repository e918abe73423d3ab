package billingrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/billing-dashboard/internal/domain/billing"
)

// MemoryRepository keeps billing rows in process memory for tests/dev.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]map[string]billing.Record
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]map[string]billing.Record)}
}

// Upsert stores rec, replacing any row with the same user and month.
func (r *MemoryRepository) Upsert(rec billing.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	months, ok := r.rows[rec.UserID]
	if !ok {
		months = make(map[string]billing.Record)
		r.rows[rec.UserID] = months
	}
	months[rec.Month] = rec
}

// ListMonthly implements billing.Repository.
func (r *MemoryRepository) ListMonthly(_ context.Context, userID string) ([]billing.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	months := r.rows[userID]
	out := make([]billing.Record, 0, len(months))
	for _, rec := range months {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month < out[j].Month
	})
	return out, nil
}

var _ billing.Repository = (*MemoryRepository)(nil)
