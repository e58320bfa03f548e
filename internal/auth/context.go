package auth

import (
	"context"
	"errors"
)

type ctxKey int

const ctxAccountID ctxKey = iota

// WithAccount stores the authenticated tenant on the request context.
// Every store call downstream takes this value explicitly; nothing trusts a
// client-supplied account id.
func WithAccount(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, ctxAccountID, accountID)
}

// AccountID returns the authenticated tenant from context.
func AccountID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxAccountID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("account_id not in context")
}
