package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"diagnostic-imaging-service/internal/core/domain"
	ports "diagnostic-imaging-service/internal/core/ports/output"
	"diagnostic-imaging-service/internal/testutil"
)

func newHistoryFixture() (*HistoryService, *testutil.MockHistoryRepo, *testutil.MockStorageGateway) {
	repo := new(testutil.MockHistoryRepo)
	storage := new(testutil.MockStorageGateway)
	return NewHistoryService(repo, storage), repo, storage
}

func validRecord(owner uuid.UUID) *domain.HistoryRecord {
	return &domain.HistoryRecord{
		ID:           uuid.New(),
		UserID:       owner,
		PatientName:  "Juan Pérez",
		Result:       domain.CanonicalResult{Label: "Hernia", Confidence: 0.955},
		OriginalKey:  "abc123.jpg",
		AnnotatedKey: "def456.jpg",
	}
}

func TestHistoryCreate_OK(t *testing.T) {
	svc, repo, _ := newHistoryFixture()
	rec := validRecord(uuid.New())

	repo.On("Create", mock.Anything, rec).Return(nil)

	err := svc.Create(context.Background(), rec)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestHistoryCreate_AssignsID(t *testing.T) {
	svc, repo, _ := newHistoryFixture()
	rec := validRecord(uuid.New())
	rec.ID = uuid.Nil

	repo.On("Create", mock.Anything, rec).Return(nil)

	err := svc.Create(context.Background(), rec)
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rec.ID)
}

func TestHistoryCreate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.HistoryRecord)
		wantErr error
	}{
		{"missing user", func(r *domain.HistoryRecord) { r.UserID = uuid.Nil }, domain.ErrMissingUser},
		{"blank patient name", func(r *domain.HistoryRecord) { r.PatientName = "   " }, domain.ErrEmptyPatientName},
		{"missing original key", func(r *domain.HistoryRecord) { r.OriginalKey = "" }, domain.ErrConstraintViolation},
		{"missing annotated key", func(r *domain.HistoryRecord) { r.AnnotatedKey = "" }, domain.ErrConstraintViolation},
		{"missing label", func(r *domain.HistoryRecord) { r.Result.Label = "" }, domain.ErrConstraintViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newHistoryFixture()
			rec := validRecord(uuid.New())
			tt.mutate(rec)

			err := svc.Create(context.Background(), rec)
			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestHistoryGet_OwnerOnly(t *testing.T) {
	svc, repo, _ := newHistoryFixture()
	owner := uuid.New()
	rec := validRecord(owner)

	repo.On("GetByID", mock.Anything, rec.ID).Return(rec, nil)

	got, err := svc.Get(context.Background(), rec.ID, owner, domain.OwnerOnly)
	assert.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = svc.Get(context.Background(), rec.ID, uuid.New(), domain.OwnerOnly)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestHistoryGet_NotFound(t *testing.T) {
	svc, repo, _ := newHistoryFixture()
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrRecordNotFound)

	_, err := svc.Get(context.Background(), id, uuid.New(), domain.OwnerOnly)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestHistoryDelete_RemovesRowAndArtifacts(t *testing.T) {
	svc, repo, storage := newHistoryFixture()
	owner := uuid.New()
	rec := validRecord(owner)

	repo.On("GetByID", mock.Anything, rec.ID).Return(rec, nil)
	repo.On("DeleteWithArtifacts", mock.Anything, rec.ID).Return(nil, rec.OriginalKey, rec.AnnotatedKey)
	storage.On("Delete", mock.Anything, rec.OriginalKey).Return(nil)
	storage.On("Delete", mock.Anything, rec.AnnotatedKey).Return(nil)

	err := svc.Delete(context.Background(), rec.ID, owner, domain.OwnerOnly)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestHistoryDelete_SecondDeleteNotFound(t *testing.T) {
	svc, repo, _ := newHistoryFixture()
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrRecordNotFound)

	err := svc.Delete(context.Background(), id, uuid.New(), domain.OwnerOnly)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	repo.AssertNotCalled(t, "DeleteWithArtifacts", mock.Anything, mock.Anything)
}

func TestHistoryDelete_Forbidden(t *testing.T) {
	svc, repo, _ := newHistoryFixture()
	rec := validRecord(uuid.New())

	repo.On("GetByID", mock.Anything, rec.ID).Return(rec, nil)

	err := svc.Delete(context.Background(), rec.ID, uuid.New(), domain.OwnerOnly)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	repo.AssertNotCalled(t, "DeleteWithArtifacts", mock.Anything, mock.Anything)
}

func TestHistoryDelete_StorageFailureAbortsDelete(t *testing.T) {
	svc, repo, storage := newHistoryFixture()
	owner := uuid.New()
	rec := validRecord(owner)
	bucketErr := errors.New("bucket unavailable")

	repo.On("GetByID", mock.Anything, rec.ID).Return(rec, nil)
	repo.On("DeleteWithArtifacts", mock.Anything, rec.ID).Return(nil, rec.OriginalKey, rec.AnnotatedKey)
	storage.On("Delete", mock.Anything, rec.OriginalKey).Return(bucketErr)

	err := svc.Delete(context.Background(), rec.ID, owner, domain.OwnerOnly)
	assert.ErrorIs(t, err, bucketErr)
	storage.AssertNotCalled(t, "Delete", mock.Anything, rec.AnnotatedKey)
}

func TestHistoryList_ClampsPageSize(t *testing.T) {
	svc, repo, _ := newHistoryFixture()
	userID := uuid.New()

	repo.On("List", mock.Anything, mock.MatchedBy(func(f ports.HistoryListFilter) bool {
		return f.Limit == 20
	})).Return([]*domain.HistoryRecord{}, 0, nil).Once()

	_, _, err := svc.List(context.Background(), ports.HistoryListFilter{UserID: userID})
	assert.NoError(t, err)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f ports.HistoryListFilter) bool {
		return f.Limit == 100
	})).Return([]*domain.HistoryRecord{}, 0, nil).Once()

	_, _, err = svc.List(context.Background(), ports.HistoryListFilter{UserID: userID, Limit: 5000})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
