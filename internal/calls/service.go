package calls

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
)

var ErrInvalidArgument = errors.New("calls: invalid argument")

const (
	// DefaultListLimit applies when no usable limit is requested.
	DefaultListLimit = 500
	// MaxListLimit bounds response size regardless of the requested limit.
	MaxListLimit = 1000
)

// Repository abstracts call record persistence.
//
// Upsert must be atomic on ExternalID: concurrent submissions of the same id
// are serialized by the store's conflict resolution, not by callers.
type Repository interface {
	// Upsert inserts rec or, when rec.ExternalID already exists, updates the
	// existing row's mutable fields. The existing row's AccountID and
	// CreatedAt are preserved. Returns the full post-write row.
	Upsert(ctx context.Context, rec CallRecord) (CallRecord, error)

	// List returns records owned by accountID only, ordered by OccurredAt
	// descending. limit is trusted to be pre-clamped.
	List(ctx context.Context, accountID string, limit int) ([]CallRecord, error)
}

// Service is the ingestion core: field coercion, timestamp normalization and
// id generation on the write path, scoped listing plus summary on the read path.
type Service struct {
	repo Repository
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// IngestRequest is the validated boundary shape of a call submission.
// Timestamp stays loosely typed on purpose; the normalizer owns its coercion.
type IngestRequest struct {
	Timestamp   any
	ContactName string
	Phone       string
	Direction   string
	Status      string
	Summary     string
	ExternalID  string
}

// Ingest normalizes and upserts one call record under accountID.
// accountID must come from the authenticated credential, never the request body.
func (s *Service) Ingest(ctx context.Context, accountID string, req IngestRequest) (CallRecord, error) {
	if accountID == "" {
		return CallRecord{}, ErrInvalidArgument
	}

	now := s.clock()

	direction := strings.TrimSpace(req.Direction)
	if direction == "" {
		direction = DirectionInbound
	}

	externalID := strings.TrimSpace(req.ExternalID)
	if externalID == "" {
		externalID = NewExternalID(now.UnixMilli())
	}

	rec := CallRecord{
		ExternalID:  externalID,
		AccountID:   accountID,
		OccurredAt:  NormalizeTimestamp(req.Timestamp, now),
		ContactName: strings.TrimSpace(req.ContactName),
		Phone:       strings.TrimSpace(req.Phone),
		Direction:   direction,
		Status:      strings.TrimSpace(req.Status),
		Summary:     strings.TrimSpace(req.Summary),
	}
	return s.repo.Upsert(ctx, rec)
}

// List returns up to limit records for accountID, newest first.
func (s *Service) List(ctx context.Context, accountID string, limit int) ([]CallRecord, error) {
	if accountID == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.List(ctx, accountID, ClampLimit(limit))
}

// ClampLimit coerces a requested page size into [1, MaxListLimit],
// falling back to DefaultListLimit for absent or unusable values.
func ClampLimit(n int) int {
	if n <= 0 {
		return DefaultListLimit
	}
	if n > MaxListLimit {
		return MaxListLimit
	}
	return n
}

// Summary holds read-side presentation aggregates, recomputed per request
// from the returned page. Nothing here is stored or maintained incrementally.
type Summary struct {
	TotalCalls     int     `json:"totalCalls"`
	AnsweredCalls  int     `json:"answeredCalls"`
	AnswerRate     float64 `json:"answerRate"`
	UniqueContacts int     `json:"uniqueContacts"`
}

// Summarize computes aggregates over one page of records.
func Summarize(records []CallRecord) Summary {
	out := Summary{TotalCalls: len(records)}

	contacts := map[string]struct{}{}
	for _, r := range records {
		if isAnswered(r.Status) {
			out.AnsweredCalls++
		}
		if p := strings.TrimSpace(r.Phone); p != "" {
			contacts[p] = struct{}{}
		}
	}
	out.UniqueContacts = len(contacts)

	if out.TotalCalls > 0 {
		rate := float64(out.AnsweredCalls) / float64(out.TotalCalls) * 100
		// one decimal place
		out.AnswerRate = math.Round(rate*10) / 10
	}
	return out
}

func isAnswered(status string) bool {
	for _, s := range answeredStatuses {
		if strings.EqualFold(status, s) {
			return true
		}
	}
	return false
}
