package roboflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"diagnostic-imaging-service/internal/config"
	"diagnostic-imaging-service/internal/core/domain"
	ports "diagnostic-imaging-service/internal/core/ports/output"
)

// Client calls a Roboflow-style hosted detection endpoint: POST to
// {apiURL}/{modelID} with the image passed by URL. The response also carries a
// pre-rendered visualization field, which is ignored; annotation is rendered
// locally.
type Client struct {
	httpClient *http.Client
	apiURL     string
	modelID    string
	apiKey     string
}

func NewClient(cfg *config.InferenceConfig) ports.InferenceGateway {
	return &Client{
		// Timeout left to the caller's context; the orchestrator owns the
		// per-stage deadline.
		httpClient: &http.Client{},
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		modelID:    cfg.ModelID,
		apiKey:     cfg.APIKey,
	}
}

type inferResponse struct {
	Predictions []domain.Prediction `json:"predictions"`
}

func (c *Client) Infer(ctx context.Context, imageURL string) ([]domain.Prediction, error) {
	endpoint := fmt.Sprintf("%s/%s", c.apiURL, c.modelID)
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("image", imageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build inference request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrMalformedResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportErr(err)
	}

	var out inferResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	return out.Predictions, nil
}

func classifyTransportErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrGatewayTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrGatewayTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrGatewayUnreachable, err)
}
