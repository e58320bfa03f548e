package auth

import "github.com/golang-jwt/jwt/v5"

// Claims carried by a dashboard session token.
type Claims struct {
	jwt.RegisteredClaims

	AccountID string `json:"account_id"`
}
