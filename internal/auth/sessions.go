package auth

import (
	"errors"
	"time"

	"call-analytics/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionManager issues and verifies dashboard session tokens.
//
// A session token is a short-lived HS256 JWT carrying the account id. The
// dashboard exchanges its API key for one (POST /sessions) and polls the read
// path with it, so raw key material is not replayed on every request.
type SessionManager struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewSessionManager(cfg config.AuthConfig) (*SessionManager, error) {
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}
	return &SessionManager{
		secret:   []byte(cfg.SessionSecret),
		issuer:   cfg.SessionIssuer,
		audience: cfg.SessionAudience,
		ttl:      cfg.SessionTTL,
	}, nil
}

// TTL reports the configured session lifetime.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue signs a session token for accountID.
func (m *SessionManager) Issue(now time.Time, accountID string) (string, error) {
	if accountID == "" {
		return "", errors.New("account_id required")
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  audienceOrNil(m.audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
		AccountID: accountID,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// Verify parses a session token and returns its claims.
func (m *SessionManager) Verify(tokenString string, now time.Time) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30*time.Second), // clock skew tolerance
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return Claims{}, err
	}

	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30 * time.Second), // clock skew tolerance
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	validator := jwt.NewValidator(opts...)
	if err := validator.Validate(claims.RegisteredClaims); err != nil {
		return Claims{}, err
	}

	if claims.AccountID == "" {
		return Claims{}, errors.New("account_id missing")
	}
	return claims, nil
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
