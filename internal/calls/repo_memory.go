package calls

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory call store for tests and early development.
// It mirrors the PG repo's upsert semantics: external_id is the global
// conflict target, account_id and created_at survive re-submission.
type MemoryRepo struct {
	mu      sync.Mutex
	nextID  int64
	byExtID map[string]*CallRecord

	// Clock is injectable for deterministic created_at/updated_at in tests.
	Clock func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byExtID: map[string]*CallRecord{}, Clock: time.Now}
}

func (r *MemoryRepo) Upsert(ctx context.Context, rec CallRecord) (CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.Clock()

	if existing, ok := r.byExtID[rec.ExternalID]; ok {
		existing.OccurredAt = rec.OccurredAt
		existing.ContactName = rec.ContactName
		existing.Phone = rec.Phone
		existing.Direction = rec.Direction
		existing.Status = rec.Status
		existing.Summary = rec.Summary
		existing.UpdatedAt = now
		return *existing, nil
	}

	r.nextID++
	rec.ID = r.nextID
	rec.CreatedAt = now
	rec.UpdatedAt = now
	stored := rec
	r.byExtID[rec.ExternalID] = &stored
	return stored, nil
}

func (r *MemoryRepo) List(ctx context.Context, accountID string, limit int) ([]CallRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]CallRecord, 0)
	for _, rec := range r.byExtID {
		if rec.AccountID != accountID {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
