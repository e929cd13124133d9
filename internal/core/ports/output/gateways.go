package ports

import (
	"context"

	"diagnostic-imaging-service/internal/core/domain"
)

// StorageGateway is the keyed object store holding image artifacts. Keys are
// the opaque names produced by the pipeline's name generator.
type StorageGateway interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error

	// URL returns a reference the inference service can fetch the object from.
	URL(key string) string
}

// InferenceGateway submits an image reference to the remote detection model
// and returns its predictions in the order the model reported them. Any
// pre-rendered visualization in the response is discarded; annotation is
// rendered locally for consistency.
type InferenceGateway interface {
	Infer(ctx context.Context, imageURL string) ([]domain.Prediction, error)
}
