package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-ID"

	// ContextRequestID is the gin context key the logging middleware reads
	// the correlation id from.
	ContextRequestID = "request_id"
)

// RequestID tags every request with a correlation id so the log lines of one
// diagnostic submission (upload, inference, commit) can be tied together. A
// client-supplied id is kept, otherwise a fresh one is generated; either way
// the id is stored on the context and echoed in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(ContextRequestID, id)
		c.Header(headerRequestID, id)

		c.Next()
	}
}
