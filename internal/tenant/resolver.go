package tenant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"call-analytics/pkg/logger"
	"call-analytics/pkg/utils"
)

var (
	// ErrMissingCredential means no key was presented at all.
	ErrMissingCredential = errors.New("tenant: missing credential")

	// ErrUnauthorized covers both unknown and revoked keys. Callers must not
	// surface which one it was; distinguishing them would let a client probe
	// for valid key material.
	ErrUnauthorized = errors.New("tenant: unauthorized")
)

// Repository abstracts API key lookup.
// Implementations must use a point query on the unique key column, not a scan.
type Repository interface {
	// AccountIDForKey returns the owning account for an active key.
	// Unknown and revoked keys both return ErrUnauthorized.
	AccountIDForKey(ctx context.Context, secret string) (string, error)
}

// Resolver maps an opaque API key to its owning account.
//
// Resolution is read-only: no last-used bookkeeping happens here. Positive
// results may be cached briefly; failures are never cached, so a key created
// out-of-band works on the next request.
type Resolver struct {
	repo  Repository
	cache *utils.StringCache
}

// NewResolver builds a resolver. cache may be nil to disable caching.
func NewResolver(repo Repository, cache *utils.StringCache) *Resolver {
	return &Resolver{repo: repo, cache: cache}
}

// Resolve returns the account id owning secret.
func (r *Resolver) Resolve(ctx context.Context, secret string) (string, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", ErrMissingCredential
	}

	ck := cacheKey(secret)
	if accountID, ok, err := r.cache.Get(ctx, ck); err != nil {
		// Cache trouble must not take down auth; fall through to the DB.
		logger.From(ctx).Warn("api key cache read failed", "err", err)
	} else if ok {
		return accountID, nil
	}

	accountID, err := r.repo.AccountIDForKey(ctx, secret)
	if err != nil {
		return "", err
	}

	if err := r.cache.Set(ctx, ck, accountID); err != nil {
		logger.From(ctx).Warn("api key cache write failed", "err", err)
	}
	return accountID, nil
}

// cacheKey digests the secret so raw key material never appears in redis keys.
func cacheKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return "apikey:" + hex.EncodeToString(sum[:])
}
