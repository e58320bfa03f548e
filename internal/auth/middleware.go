package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"call-analytics/internal/tenant"

	"github.com/gin-gonic/gin"
)

// Credential header names accepted for API key auth. Two names are kept for
// compatibility with existing callers.
const (
	headerAPIKey = "X-Api-Key"
	headerSecret = "X-Secret"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// RequireTenant authenticates the request and injects the tenant into context.
//
// Accepted credentials, in order:
//  1. API key via X-Api-Key or X-Secret (ingestion callers)
//  2. session token via Authorization: Bearer (dashboard reads)
//
// Unknown and revoked keys produce the same response body as each other.
func RequireTenant(resolver *tenant.Resolver, sessions *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := apiKeyFrom(c); key != "" {
			accountID, err := resolver.Resolve(c.Request.Context(), key)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Unauthorized"})
				return
			}
			bindAccount(c, accountID)
			return
		}

		if tok := bearerFrom(c); tok != "" {
			claims, err := sessions.Verify(tok, time.Now())
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Unauthorized"})
				return
			}
			bindAccount(c, claims.AccountID)
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Missing API key"})
	}
}

func apiKeyFrom(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader(headerAPIKey)); v != "" {
		return v
	}
	return strings.TrimSpace(c.GetHeader(headerSecret))
}

func bearerFrom(c *gin.Context) string {
	raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
	if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(raw, bearerPrefix)
}

func bindAccount(c *gin.Context, accountID string) {
	c.Request = c.Request.WithContext(WithAccount(c.Request.Context(), accountID))
	// Also store on gin context for handler convenience.
	c.Set("account_id", accountID)
	c.Next()
}

// ResolveKey authenticates a raw API key outside the middleware flow, for the
// session exchange endpoint. It preserves the missing-vs-invalid distinction.
func ResolveKey(c *gin.Context, resolver *tenant.Resolver) (string, int, string) {
	key := apiKeyFrom(c)
	if key == "" {
		return "", http.StatusUnauthorized, "Missing API key"
	}
	accountID, err := resolver.Resolve(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, tenant.ErrMissingCredential) {
			return "", http.StatusUnauthorized, "Missing API key"
		}
		return "", http.StatusUnauthorized, "Unauthorized"
	}
	return accountID, 0, ""
}
