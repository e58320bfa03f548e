package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepo looks up API keys in Postgres.
type PGRepo struct {
	db *sql.DB
}

func NewPGRepo(db *sql.DB) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) AccountIDForKey(ctx context.Context, secret string) (string, error) {
	// Point query on the unique key column; revoked keys are filtered in SQL
	// so they are indistinguishable from unknown ones.
	const q = `
SELECT account_id
FROM api_keys
WHERE key = $1 AND revoked = false
LIMIT 1
`
	var accountID string
	if err := r.db.QueryRowContext(ctx, q, secret).Scan(&accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("api key lookup: %w", err)
	}
	return accountID, nil
}
