package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiddlewareRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logging())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	r := setupMiddlewareRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(headerRequestID)
	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestRequestID_KeepsClientSupplied(t *testing.T) {
	r := setupMiddlewareRouter()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerRequestID, "client-id-123")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "client-id-123", w.Header().Get(headerRequestID))
}

func TestLogging_UsesGeneratedRequestID(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	r := setupMiddlewareRouter()

	// No X-Request-ID on the request: the logged id must be the one
	// RequestID generated, not the (empty) inbound header.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.NotEmpty(t, entry.Data["request_id"])
	assert.Equal(t, w.Header().Get(headerRequestID), entry.Data["request_id"])
}

func TestLogging_TagsUserWhenPresent(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	r := setupMiddlewareRouter()
	userID := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-User-ID", userID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, userID, entry.Data["user_id"])
	assert.Equal(t, http.StatusNoContent, entry.Data["status"])
}
