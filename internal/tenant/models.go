package tenant

import "time"

// APIKey authenticates ingestion requests for exactly one account.
// Accounts themselves are created out-of-band (see db/schema.sql); this
// service only ever sees their ids.
//
// Invariants:
// - Key is globally unique.
// - A revoked key must never resolve to an account.
type APIKey struct {
	Key       string    `json:"key" db:"key"`
	AccountID string    `json:"account_id" db:"account_id"`
	Name      string    `json:"name" db:"name"`
	Revoked   bool      `json:"revoked" db:"revoked"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
