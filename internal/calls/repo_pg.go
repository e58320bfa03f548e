package calls

import (
	"context"
	"database/sql"
	"fmt"
)

// PGRepo persists call records in Postgres.
//
// NOTE: assumes the calls table from db/schema.sql, in particular
// UNIQUE (external_id) — the upsert's conflict target.
type PGRepo struct {
	db *sql.DB
}

func NewPGRepo(db *sql.DB) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Upsert(ctx context.Context, rec CallRecord) (CallRecord, error) {
	// Single-statement insert-or-update: concurrent writes with the same
	// external_id serialize here, avoiding a read-then-write lost update.
	// account_id and created_at are deliberately absent from the UPDATE set;
	// ownership and creation time are fixed at first insert.
	const q = `
INSERT INTO calls (
  occurred_at, contact_name, phone, direction, status,
  summary, external_id, account_id, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW())
ON CONFLICT (external_id)
DO UPDATE SET
  occurred_at = EXCLUDED.occurred_at,
  contact_name = EXCLUDED.contact_name,
  phone = EXCLUDED.phone,
  direction = EXCLUDED.direction,
  status = EXCLUDED.status,
  summary = EXCLUDED.summary,
  updated_at = NOW()
RETURNING id, external_id, account_id, occurred_at, contact_name, phone,
          direction, status, summary, created_at, updated_at
`
	var out CallRecord
	if err := r.db.QueryRowContext(ctx, q,
		rec.OccurredAt,
		rec.ContactName,
		rec.Phone,
		rec.Direction,
		rec.Status,
		rec.Summary,
		rec.ExternalID,
		rec.AccountID,
	).Scan(
		&out.ID,
		&out.ExternalID,
		&out.AccountID,
		&out.OccurredAt,
		&out.ContactName,
		&out.Phone,
		&out.Direction,
		&out.Status,
		&out.Summary,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return CallRecord{}, fmt.Errorf("upsert call: %w", err)
	}
	return out, nil
}

func (r *PGRepo) List(ctx context.Context, accountID string, limit int) ([]CallRecord, error) {
	const q = `
SELECT id, external_id, account_id, occurred_at, contact_name, phone,
       direction, status, summary, created_at, updated_at
FROM calls
WHERE account_id = $1
ORDER BY occurred_at DESC
LIMIT $2
`
	rows, err := r.db.QueryContext(ctx, q, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	out := make([]CallRecord, 0)
	for rows.Next() {
		var rec CallRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.ExternalID,
			&rec.AccountID,
			&rec.OccurredAt,
			&rec.ContactName,
			&rec.Phone,
			&rec.Direction,
			&rec.Status,
			&rec.Summary,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	return out, nil
}
