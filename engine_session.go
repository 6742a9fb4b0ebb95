package q63

import (
	"context"
	"errors"
	"time"

	"github.com/uglydojo/q63/session"
)

// ValidateSession resolves a bearer token to the account it was issued for.
//
// Malformed, unknown, and expired tokens all return [ErrUnauthorized].
// Malformed tokens are rejected without a store round-trip. Store failures
// are returned as-is.
func (e *Engine) ValidateSession(ctx context.Context, token string) (*SessionInfo, error) {
	if e == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	defer func() {
		e.metrics.Observe(MetricValidateLatency, time.Since(start))
	}()

	sess, err := e.sessionStore.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			e.metricInc(MetricSessionRejected)
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	e.metricInc(MetricSessionValidated)
	return &SessionInfo{
		Email:     sess.Email,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}
