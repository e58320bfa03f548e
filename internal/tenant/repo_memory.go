package tenant

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory key store for tests and early development.
// It mirrors the PG repo's contract: unknown and revoked keys are the same error.
type MemoryRepo struct {
	mu   sync.Mutex
	keys map[string]APIKey
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{keys: map[string]APIKey{}}
}

// PutKey registers a key, replacing any existing entry.
func (r *MemoryRepo) PutKey(k APIKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[k.Key] = k
}

func (r *MemoryRepo) AccountIDForKey(ctx context.Context, secret string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[secret]
	if !ok || k.Revoked {
		return "", ErrUnauthorized
	}
	return k.AccountID, nil
}
