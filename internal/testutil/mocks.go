package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"diagnostic-imaging-service/internal/core/domain"
	ports "diagnostic-imaging-service/internal/core/ports/output"
)

// MockHistoryRepo is a mock of HistoryRepository.
type MockHistoryRepo struct {
	mock.Mock
}

func (m *MockHistoryRepo) Create(ctx context.Context, rec *domain.HistoryRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockHistoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.HistoryRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HistoryRecord), args.Error(1)
}

func (m *MockHistoryRepo) List(ctx context.Context, filter ports.HistoryListFilter) ([]*domain.HistoryRecord, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.HistoryRecord), args.Int(1), args.Error(2)
}

func (m *MockHistoryRepo) Stats(ctx context.Context, userID uuid.UUID) (*domain.HistoryStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HistoryStats), args.Error(1)
}

// DeleteWithArtifacts mirrors the repository contract: the remover runs
// before the delete is considered committed, and a remover failure aborts the
// whole delete. Configure with Return(err) for a failed lock/lookup, or
// Return(nil, originalKey, annotatedKey) for a row whose keys are handed to
// the remover.
func (m *MockHistoryRepo) DeleteWithArtifacts(ctx context.Context, id uuid.UUID, remove ports.ArtifactRemover) error {
	args := m.Called(ctx, id)
	if err := args.Error(0); err != nil {
		return err
	}
	if remove != nil {
		if err := remove(ctx, args.String(1), args.String(2)); err != nil {
			return err
		}
	}
	return nil
}

// MockStorageGateway is a mock of StorageGateway.
type MockStorageGateway struct {
	mock.Mock
}

func (m *MockStorageGateway) Put(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockStorageGateway) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStorageGateway) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorageGateway) URL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// MockInferenceGateway is a mock of InferenceGateway.
type MockInferenceGateway struct {
	mock.Mock
}

func (m *MockInferenceGateway) Infer(ctx context.Context, imageURL string) ([]domain.Prediction, error) {
	args := m.Called(ctx, imageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Prediction), args.Error(1)
}
