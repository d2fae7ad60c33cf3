package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// GinMiddleware logs one line per request and stores a logger carrying the
// request id in the request context.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		l := FromContext(c.Request.Context()).With("request_id", requestID)
		c.Request = c.Request.WithContext(IntoContext(c.Request.Context(), l))

		c.Next()

		attrs := []any{
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"ip", c.ClientIP(),
			"latency_ms", float64(time.Since(start).Microseconds()) / 1000.0,
		}
		if len(c.Errors) > 0 {
			l.Error("http request", append(attrs, "err", c.Errors.String())...)
			return
		}
		l.Info("http request", attrs...)
	}
}
