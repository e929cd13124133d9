package domain

import (
	"time"

	"github.com/google/uuid"
)

// UploadedImage is the raw submission as received from the caller. It lives
// only for the duration of one pipeline run and is never persisted as such.
type UploadedImage struct {
	Filename string
	Data     []byte
}

// HistoryRecord is one committed clinical history entry. It always references
// both stored artifacts and always carries a canonical result; it is never
// observable in a half-written state and is never mutated after creation.
type HistoryRecord struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	PatientName  string          `json:"patient_name"`
	Result       CanonicalResult `json:"result"`
	OriginalKey  string          `json:"original_key"`
	AnnotatedKey string          `json:"annotated_key"`
	CreatedAt    time.Time       `json:"created_at"`
}

// HistoryStats summarizes a user's history (or the whole table when computed
// without a user scope).
type HistoryStats struct {
	Total             int            `json:"total"`
	AverageConfidence float64        `json:"average_confidence"`
	ByLabel           map[string]int `json:"by_label"`
}

// OwnershipPredicate decides whether the requesting user may act on a record.
// The store itself is ownership-agnostic; callers inject their own policy
// (plain ownership, administrator override, etc.).
type OwnershipPredicate func(rec *HistoryRecord, user uuid.UUID) bool

// OwnerOnly is the default predicate: a record may only be accessed by the
// user it belongs to.
func OwnerOnly(rec *HistoryRecord, user uuid.UUID) bool {
	return rec != nil && rec.UserID == user
}
