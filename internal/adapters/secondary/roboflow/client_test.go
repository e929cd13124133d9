package roboflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diagnostic-imaging-service/internal/config"
	"diagnostic-imaging-service/internal/core/domain"
)

func newTestClient(serverURL string) *Client {
	return NewClient(&config.InferenceConfig{
		APIURL:  serverURL,
		ModelID: "proy_2/1",
		APIKey:  "test-key",
	}).(*Client)
}

func TestInfer_ParsesPredictions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/proy_2/1", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "https://cdn.example/orig.jpg", r.URL.Query().Get("image"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"predictions": [{
				"class": "Hernia",
				"confidence": 0.955,
				"x": 200, "y": 180, "width": 120, "height": 90,
				"points": [{"x": 140, "y": 135}, {"x": 260, "y": 135}, {"x": 200, "y": 225}]
			}],
			"visualization": "ignored-base64-blob"
		}`))
	}))
	defer srv.Close()

	preds, err := newTestClient(srv.URL).Infer(context.Background(), "https://cdn.example/orig.jpg")
	require.NoError(t, err)
	require.Len(t, preds, 1)

	assert.Equal(t, "Hernia", preds[0].Label)
	assert.Equal(t, 0.955, preds[0].Confidence)
	assert.True(t, preds[0].IsPolygon())
	assert.Equal(t, domain.Point{X: 140, Y: 135}, preds[0].Points[0])
}

func TestInfer_EmptyPredictions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"predictions": []}`))
	}))
	defer srv.Close()

	preds, err := newTestClient(srv.URL).Infer(context.Background(), "https://cdn.example/orig.jpg")
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestInfer_NonOKStatusIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Infer(context.Background(), "https://cdn.example/orig.jpg")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestInfer_BadJSONIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"predictions": [`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Infer(context.Background(), "https://cdn.example/orig.jpg")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestInfer_ConnectionRefusedIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	_, err := newTestClient(srv.URL).Infer(context.Background(), "https://cdn.example/orig.jpg")
	assert.ErrorIs(t, err, domain.ErrGatewayUnreachable)
}

func TestInfer_DeadlineIsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv.URL).Infer(ctx, "https://cdn.example/orig.jpg")
	assert.ErrorIs(t, err, domain.ErrGatewayTimeout)
}
