package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio-app/internal/domain/catalog"
	"portfolio-app/internal/logger"
)

// Status maps a catalog error to its HTTP status.
func Status(err error) int {
	switch {
	case errors.Is(err, catalog.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes {"error": ...}. Client errors carry their message; server
// errors are logged and replaced with fallback.
func Respond(c *gin.Context, err error, fallback string) {
	status := Status(err)
	if status >= http.StatusInternalServerError || status == 499 {
		logger.FromContext(c.Request.Context()).Error(fallback, "error", err)
		c.AbortWithStatusJSON(status, gin.H{"error": fallback})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message(err)})
}

// NotFound replaces the message of a not-found error with msg.
func NotFound(err error, msg string) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("%w: %s", catalog.ErrNotFound, msg)
	}
	return err
}

func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// message drops the sentinel prefix: "conflict: slug x" -> "slug x".
func message(err error) string {
	msg := err.Error()
	for _, s := range []error{catalog.ErrValidation, catalog.ErrNotFound, catalog.ErrConflict, catalog.ErrDecode} {
		if rest, ok := strings.CutPrefix(msg, s.Error()+": "); ok {
			return rest
		}
	}
	return msg
}
