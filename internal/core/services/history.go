package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"diagnostic-imaging-service/internal/core/domain"
	ports "diagnostic-imaging-service/internal/core/ports/output"
)

// HistoryService owns the lifecycle of history records: atomic creation at
// the end of a pipeline run, owner-checked reads and the atomic delete that
// removes the record together with both of its stored artifacts.
type HistoryService struct {
	repo    ports.HistoryRepository
	storage ports.StorageGateway
}

func NewHistoryService(repo ports.HistoryRepository, storage ports.StorageGateway) *HistoryService {
	return &HistoryService{repo: repo, storage: storage}
}

// Create validates the record and inserts it as one transactional unit. A
// record missing either artifact reference, the result label, the patient
// name or the owning user is rejected before the datastore is touched.
func (s *HistoryService) Create(ctx context.Context, rec *domain.HistoryRecord) error {
	if rec.UserID == uuid.Nil {
		return domain.ErrMissingUser
	}
	if strings.TrimSpace(rec.PatientName) == "" {
		return domain.ErrEmptyPatientName
	}
	if rec.OriginalKey == "" || rec.AnnotatedKey == "" || rec.Result.Label == "" {
		return domain.ErrConstraintViolation
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return s.repo.Create(ctx, rec)
}

// Get resolves a record and applies the caller's ownership predicate.
func (s *HistoryService) Get(ctx context.Context, id uuid.UUID, user uuid.UUID, allowed domain.OwnershipPredicate) (*domain.HistoryRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if allowed != nil && !allowed(rec, user) {
		return nil, domain.ErrForbidden
	}
	return rec, nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ClampPageSize bounds a requested listing size to [1, 100], defaulting to 20.
// Callers that echo the page size back must clamp with this too, so the
// reported size always matches what the query actually used.
func ClampPageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func (s *HistoryService) List(ctx context.Context, filter ports.HistoryListFilter) ([]*domain.HistoryRecord, int, error) {
	filter.Limit = ClampPageSize(filter.Limit)
	return s.repo.List(ctx, filter)
}

func (s *HistoryService) Stats(ctx context.Context, userID uuid.UUID) (*domain.HistoryStats, error) {
	return s.repo.Stats(ctx, userID)
}

// Delete removes the record and both artifacts as one unit. The ownership
// predicate is injected by the caller; the service itself has no notion of
// roles. If deleting either artifact from storage fails, the row delete is
// rolled back and the error surfaces: a retriable failed delete is strictly
// better than a record silently losing its artifacts (or vice versa). A
// second delete of the same id reports ErrRecordNotFound.
func (s *HistoryService) Delete(ctx context.Context, id uuid.UUID, user uuid.UUID, allowed domain.OwnershipPredicate) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if allowed != nil && !allowed(rec, user) {
		return domain.ErrForbidden
	}

	err = s.repo.DeleteWithArtifacts(ctx, id, func(ctx context.Context, originalKey, annotatedKey string) error {
		if err := s.storage.Delete(ctx, originalKey); err != nil {
			return err
		}
		return s.storage.Delete(ctx, annotatedKey)
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{"record_id": id, "user_id": user}).Info("history record deleted")
	return nil
}
