package calls

import "time"

// CallRecord is a tenant-scoped call log entry.
//
// Identity invariant: ExternalID is unique across the whole store and is the
// idempotency key for ingestion. Re-submitting an external id mutates the
// existing row's mutable fields; AccountID, ExternalID and CreatedAt are fixed
// at first insert and never change, regardless of which key re-submits.
//
// Multi-tenant invariant: AccountID always comes from the authenticated key,
// never from caller input.
type CallRecord struct {
	ID         int64  `json:"id" db:"id"`
	ExternalID string `json:"external_id" db:"external_id"`
	AccountID  string `json:"account_id" db:"account_id"`

	// OccurredAt is the normalized call timestamp.
	OccurredAt time.Time `json:"occurred_at" db:"occurred_at"`

	ContactName string `json:"contact_name" db:"contact_name"`
	Phone       string `json:"phone" db:"phone"`
	Direction   string `json:"direction" db:"direction"`
	Status      string `json:"status" db:"status"`
	Summary     string `json:"summary" db:"summary"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Statuses counted as answered by the read-side summary. Status itself is
// free-text classification; callers send arbitrary labels.
var answeredStatuses = []string{"completed", "answered", "answered call"}
