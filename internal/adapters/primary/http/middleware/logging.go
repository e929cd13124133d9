package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Logging emits one structured line per request. The correlation id is read
// from the gin context, not the inbound header, so requests without a
// client-supplied X-Request-ID still log the id RequestID generated for them.
// The caller identity header is included when present so submissions can be
// traced back to a user without parsing it here.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := log.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString(ContextRequestID),
		}
		if user := c.GetHeader("X-User-ID"); user != "" {
			fields["user_id"] = user
		}

		log.WithFields(fields).Info("request completed")
	}
}
