package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/uglydojo/q63"
)

const sessionContextKey = "q63.session"

// SessionValidator resolves a bearer token to the session behind it.
// *q63.Engine satisfies it.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*q63.SessionInfo, error)
}

// SessionFromContext returns the session stored by [Guard].
func SessionFromContext(c *gin.Context) (*q63.SessionInfo, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	info, ok := v.(*q63.SessionInfo)
	return info, ok
}

// Guard rejects requests without a live session token. Every rejection
// answers 401 with the same body; store failures answer 500 and are passed
// to onError when it is non-nil.
func Guard(sessions SessionValidator, onError func(c *gin.Context, err error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok || sessions == nil {
			abortUnauthorized(c)
			return
		}

		info, err := sessions.ValidateSession(c.Request.Context(), token)
		if err != nil {
			if q63.KindOf(err) == q63.KindAuth {
				abortUnauthorized(c)
				return
			}
			if onError != nil {
				onError(c, err)
			}
			if !c.IsAborted() {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalMessage(err)})
			}
			return
		}

		c.Set(sessionContextKey, info)
		c.Next()
	}
}

// BearerToken extracts the credential from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// AdminKey returns whatever follows an exact "Bearer " prefix. Nothing is
// trimmed or case-folded, so the key must match the header byte for byte.
func AdminKey(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return header[len(prefix):]
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": q63.ErrUnauthorized.Message})
}

func internalMessage(err error) string {
	var e *q63.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error."
}
