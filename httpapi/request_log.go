package httpapi

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/uglydojo/q63"
)

// RequestIDHeader carries the request ID back to the caller.
const RequestIDHeader = "X-Request-ID"

// RequestLogger assigns each request an ID, attaches it and the client IP to
// the request context, and logs request/response metadata once the handler
// chain returns.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		clientIP := c.ClientIP()

		ctx := q63.WithRequestID(c.Request.Context(), requestID)
		ctx = q63.WithClientIP(ctx, clientIP)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		if logger != nil {
			logger.InfoContext(ctx, "http request",
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.Int("status", c.Writer.Status()),
				slog.String("latency", time.Since(start).String()),
			)
		}
	}
}
