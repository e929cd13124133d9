package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"diagnostic-imaging-service/internal/config"
	ports "diagnostic-imaging-service/internal/core/ports/output"
)

// Client implements the StorageGateway port on top of a Google Cloud Storage
// bucket. Objects are publicly addressable under the configured base URL so
// the remote inference service can fetch them by reference.
type Client struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

func NewClient(ctx context.Context, cfg *config.StorageConfig) (ports.StorageGateway, error) {
	st, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com"
	}

	return &Client{
		client:        st,
		bucket:        cfg.Bucket,
		publicBaseURL: baseURL,
	}, nil
}

func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string) error {
	w := c.client.Bucket(c.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close object writer %s: %w", key, err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := c.client.Bucket(c.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

// Delete removes an object. Deleting an object that is already gone counts as
// success so cleanup of a partially-failed run is idempotent.
func (c *Client) Delete(ctx context.Context, key string) error {
	err := c.client.Bucket(c.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (c *Client) URL(key string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, c.bucket, key)
}
