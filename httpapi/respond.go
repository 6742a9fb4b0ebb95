package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uglydojo/q63"
	"github.com/uglydojo/q63/internal/logging"
)

// fail writes err as {"error": message}. Caller-safe engine errors keep their
// own message; everything else is logged and answered with generic.
func (s *Server) fail(c *gin.Context, err error, generic string) {
	var e *q63.Error
	if errors.As(err, &e) && e.Kind != q63.KindInternal {
		c.AbortWithStatusJSON(e.Kind.HTTPStatus(), gin.H{"error": e.Message})
		return
	}

	logging.LogError(c.Request.Context(), s.logger, "request failed", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": generic})
}

// decodeBody decodes the JSON request body into dst. An unreadable body is
// reported as onInvalid.
func decodeBody(c *gin.Context, dst any, onInvalid *q63.Error) error {
	if c.Request.Body == nil {
		return onInvalid
	}
	if err := json.NewDecoder(c.Request.Body).Decode(dst); err != nil {
		return onInvalid
	}
	return nil
}

// requestOrigin rebuilds scheme://host for the URL the caller used. The
// engine only builds links from it when the host is allow-listed.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
