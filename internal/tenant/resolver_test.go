package tenant

import (
	"context"
	"errors"
	"testing"
)

func TestResolve_MissingCredential(t *testing.T) {
	r := NewResolver(NewMemoryRepo(), nil)

	for _, secret := range []string{"", "   "} {
		if _, err := r.Resolve(context.Background(), secret); !errors.Is(err, ErrMissingCredential) {
			t.Fatalf("secret %q: expected ErrMissingCredential, got %v", secret, err)
		}
	}
}

func TestResolve_UnknownAndRevokedCollapse(t *testing.T) {
	repo := NewMemoryRepo()
	repo.PutKey(APIKey{Key: "revoked-key", AccountID: "acct-1", Revoked: true})
	r := NewResolver(repo, nil)

	_, errUnknown := r.Resolve(context.Background(), "no-such-key")
	_, errRevoked := r.Resolve(context.Background(), "revoked-key")

	if !errors.Is(errUnknown, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown key, got %v", errUnknown)
	}
	if !errors.Is(errRevoked, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for revoked key, got %v", errRevoked)
	}
	// Callers must not be able to tell the two cases apart.
	if errUnknown.Error() != errRevoked.Error() {
		t.Fatalf("unknown and revoked must be indistinguishable: %q vs %q", errUnknown, errRevoked)
	}
}

func TestResolve_ActiveKey(t *testing.T) {
	repo := NewMemoryRepo()
	repo.PutKey(APIKey{Key: "good-key", AccountID: "acct-42"})
	r := NewResolver(repo, nil)

	accountID, err := r.Resolve(context.Background(), "good-key")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if accountID != "acct-42" {
		t.Fatalf("expected acct-42, got %q", accountID)
	}
}

func TestResolve_TrimsSecret(t *testing.T) {
	repo := NewMemoryRepo()
	repo.PutKey(APIKey{Key: "good-key", AccountID: "acct-42"})
	r := NewResolver(repo, nil)

	accountID, err := r.Resolve(context.Background(), "  good-key  ")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if accountID != "acct-42" {
		t.Fatalf("expected acct-42, got %q", accountID)
	}
}
