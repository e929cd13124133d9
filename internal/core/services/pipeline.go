package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"diagnostic-imaging-service/internal/core/domain"
	ports "diagnostic-imaging-service/internal/core/ports/output"
)

// PipelineService sequences one diagnostic submission end to end:
//
//	validate -> store original -> infer -> extract -> render ->
//	store annotated -> commit history record
//
// Stages are strictly sequential; the remote storage and inference calls are
// the only suspension points and each runs under the configured stage timeout
// so a slow collaborator cannot hold a worker indefinitely. There is no
// automatic retry: a failed remote call fails the submission. On any failure
// after the original upload (including context cancellation) the artifacts
// already pushed are deleted best-effort; a failed cleanup is logged as a
// known orphan and never escalated, because an orphaned artifact is
// recoverable by audit while a record missing an artifact would not be.
type PipelineService struct {
	storage      ports.StorageGateway
	inference    ports.InferenceGateway
	history      *HistoryService
	renderer     *Renderer
	stageTimeout time.Duration
	loc          *time.Location
}

func NewPipelineService(
	storage ports.StorageGateway,
	inference ports.InferenceGateway,
	history *HistoryService,
	renderer *Renderer,
	stageTimeout time.Duration,
	loc *time.Location,
) *PipelineService {
	if loc == nil {
		loc = time.UTC
	}
	return &PipelineService{
		storage:      storage,
		inference:    inference,
		history:      history,
		renderer:     renderer,
		stageTimeout: stageTimeout,
		loc:          loc,
	}
}

// Process runs the full pipeline for one submission and returns the committed
// history record, or an error with nothing recorded.
func (s *PipelineService) Process(ctx context.Context, upload domain.UploadedImage, patientName string, userID uuid.UUID) (*domain.HistoryRecord, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrMissingUser
	}
	patientName = strings.TrimSpace(patientName)
	if patientName == "" {
		return nil, domain.ErrEmptyPatientName
	}

	img, err := ValidateImage(upload.Data, path.Ext(upload.Filename))
	if err != nil {
		return nil, err
	}

	originalKey := GenerateArtifactKey(upload.Filename)
	if err := s.putArtifact(ctx, originalKey, upload.Data, contentTypeFor(upload.Filename)); err != nil {
		return nil, err
	}

	// Inference fetches the image by reference; the original is uploaded
	// first precisely so a reachable URL exists.
	preds, err := s.infer(ctx, s.storage.URL(originalKey))
	if err != nil {
		s.cleanup(originalKey)
		return nil, err
	}

	result := ExtractResult(preds)

	annotated := s.renderer.Render(img, preds)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, annotated, &jpeg.Options{Quality: 95}); err != nil {
		s.cleanup(originalKey)
		return nil, fmt.Errorf("encode annotated image: %w", err)
	}

	annotatedKey := GenerateArtifactKey(annotatedName(upload.Filename))
	if err := s.putArtifact(ctx, annotatedKey, buf.Bytes(), "image/jpeg"); err != nil {
		s.cleanup(originalKey)
		return nil, err
	}

	rec := &domain.HistoryRecord{
		ID:           uuid.New(),
		UserID:       userID,
		PatientName:  patientName,
		Result:       result,
		OriginalKey:  originalKey,
		AnnotatedKey: annotatedKey,
		CreatedAt:    time.Now().In(s.loc),
	}

	commitCtx, cancel := s.stageCtx(ctx)
	err = s.history.Create(commitCtx, rec)
	cancel()
	if err != nil {
		s.cleanup(originalKey, annotatedKey)
		return nil, err
	}

	log.WithFields(log.Fields{
		"record_id":  rec.ID,
		"user_id":    userID,
		"label":      result.Label,
		"confidence": result.Confidence,
	}).Info("submission processed")

	return rec, nil
}

func (s *PipelineService) putArtifact(ctx context.Context, key string, data []byte, contentType string) error {
	stage, cancel := s.stageCtx(ctx)
	defer cancel()
	if err := s.storage.Put(stage, key, data, contentType); err != nil {
		return classifyGatewayErr(fmt.Errorf("put %s: %w", key, err))
	}
	return nil
}

func (s *PipelineService) infer(ctx context.Context, imageURL string) ([]domain.Prediction, error) {
	stage, cancel := s.stageCtx(ctx)
	defer cancel()
	preds, err := s.inference.Infer(stage, imageURL)
	if err != nil {
		return nil, classifyGatewayErr(err)
	}
	return preds, nil
}

func (s *PipelineService) stageCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.stageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.stageTimeout)
}

// cleanup deletes already-pushed artifacts after a failed run. It runs on its
// own context so it still executes when the submission's context was the
// reason the run failed.
func (s *PipelineService) cleanup(keys ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			log.WithError(err).WithField("key", key).Warn("artifact cleanup failed, object is orphaned")
		}
	}
}

// classifyGatewayErr folds transport-level failures into the gateway error
// taxonomy. Errors already carrying a domain sentinel pass through untouched.
func classifyGatewayErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrGatewayTimeout),
		errors.Is(err, domain.ErrGatewayUnreachable),
		errors.Is(err, domain.ErrMalformedResponse):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrGatewayTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrGatewayUnreachable, err)
	}
}

func annotatedName(filename string) string {
	return strings.TrimSuffix(filename, path.Ext(filename)) + ".jpg"
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
