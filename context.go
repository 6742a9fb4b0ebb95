package q63

import (
	"context"

	"github.com/uglydojo/q63/internal/logging"
)

// WithRequestID attaches a request identifier to ctx. Engine log records
// written with ctx carry it as request_id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return logging.WithRequestID(ctx, id)
}

// WithClientIP attaches the caller's IP address to ctx for log correlation.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return logging.WithClientIP(ctx, ip)
}

// RequestIDFromContext returns the identifier attached by [WithRequestID].
func RequestIDFromContext(ctx context.Context) string {
	return logging.RequestID(ctx)
}
