package ports

import (
	"context"

	"github.com/google/uuid"

	"diagnostic-imaging-service/internal/core/domain"
)

// HistoryListFilter scopes and pages a history listing. A Nil UserID means
// "all users"; PatientName is a case-insensitive substring match.
type HistoryListFilter struct {
	UserID      uuid.UUID
	PatientName string
	Limit       int
	Offset      int
}

// ArtifactRemover deletes both stored artifacts of a record. It is invoked
// inside the delete transaction, before the row delete commits: if it returns
// an error the row delete must be rolled back, so a failed delete leaves both
// the record and its artifacts intact rather than orphaning either side.
type ArtifactRemover func(ctx context.Context, originalKey, annotatedKey string) error

type HistoryRepository interface {
	// Create inserts the record as a single transactional unit. The record is
	// either fully visible to other readers or fully absent.
	Create(ctx context.Context, rec *domain.HistoryRecord) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.HistoryRecord, error)

	List(ctx context.Context, filter HistoryListFilter) ([]*domain.HistoryRecord, int, error)

	Stats(ctx context.Context, userID uuid.UUID) (*domain.HistoryStats, error)

	// DeleteWithArtifacts locks the record, runs remove with its artifact keys
	// and commits the row delete only if remove succeeded. A concurrent second
	// delete of the same id observes ErrRecordNotFound.
	DeleteWithArtifacts(ctx context.Context, id uuid.UUID, remove ArtifactRemover) error
}
