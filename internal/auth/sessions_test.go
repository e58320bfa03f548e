package auth

import (
	"testing"
	"time"

	"call-analytics/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
	}
}

func TestSessions_IssueAndVerify(t *testing.T) {
	m, err := NewSessionManager(testAuthConfig())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, "acct-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	claims, err := m.Verify(tok, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if claims.AccountID != "acct-1" {
		t.Fatalf("expected acct-1, got %q", claims.AccountID)
	}
}

func TestSessions_ExpiredTokenRejected(t *testing.T) {
	m, err := NewSessionManager(testAuthConfig())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, "acct-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if _, err := m.Verify(tok, now.Add(2*time.Hour)); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestSessions_WrongSecretRejected(t *testing.T) {
	m1, _ := NewSessionManager(testAuthConfig())
	m2, _ := NewSessionManager(config.AuthConfig{SessionSecret: "other-secret", SessionTTL: time.Hour})

	now := time.Unix(1700000000, 0).UTC()
	tok, err := m1.Issue(now, "acct-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := m2.Verify(tok, now); err == nil {
		t.Fatalf("expected signature mismatch to be rejected")
	}
}

func TestSessions_IssuerAndAudienceValidated(t *testing.T) {
	cfg := testAuthConfig()
	cfg.SessionIssuer = "call-api"
	cfg.SessionAudience = "dashboard"
	issuing, _ := NewSessionManager(cfg)

	now := time.Unix(1700000000, 0).UTC()
	tok, err := issuing.Issue(now, "acct-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if _, err := issuing.Verify(tok, now.Add(time.Minute)); err != nil {
		t.Fatalf("expected matching issuer/audience to verify, got %v", err)
	}

	other := cfg
	other.SessionIssuer = "someone-else"
	verifying, _ := NewSessionManager(other)
	if _, err := verifying.Verify(tok, now.Add(time.Minute)); err == nil {
		t.Fatalf("expected issuer mismatch to be rejected")
	}
}

func TestSessions_EmptyAccountRejected(t *testing.T) {
	m, _ := NewSessionManager(testAuthConfig())
	if _, err := m.Issue(time.Now(), ""); err == nil {
		t.Fatalf("expected error for empty account id")
	}
}

func TestNewSessionManager_RequiresSecret(t *testing.T) {
	if _, err := NewSessionManager(config.AuthConfig{}); err == nil {
		t.Fatalf("expected error for missing secret")
	}
}
