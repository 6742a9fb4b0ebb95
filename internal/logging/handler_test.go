package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/uglydojo/q63/internal/logging"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestSetupAddsServiceAndVersion(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("q63", "1.2.3", "json", "info", &buf)

	logger.Info("hello")

	entry := decode(t, &buf)
	assert.Equal(t, "q63", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "hello", entry["msg"])
}

func TestSetupRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("q63", "dev", "json", "warn", &buf)

	logger.Info("quiet")
	assert.Zero(t, buf.Len())

	logger.Warn("loud")
	assert.NotZero(t, buf.Len())
}

func TestSetupTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("q63", "dev", "text", "debug", &buf)

	logger.Debug("text line")
	assert.Contains(t, buf.String(), "msg=\"text line\"")
	assert.Contains(t, buf.String(), "service=q63")
}

func TestHandlerAddsRequestContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("q63", "dev", "json", "info", &buf)

	ctx := logging.WithRequestID(context.Background(), "req-1")
	ctx = logging.WithClientIP(ctx, "203.0.113.9")
	logger.InfoContext(ctx, "with request")

	entry := decode(t, &buf)
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "203.0.113.9", entry["client_ip"])
}

func TestHandlerAddsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("q63", "dev", "json", "info", &buf)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.InfoContext(ctx, "traced")

	entry := decode(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("nonsense"))
}

func TestLogErrorWithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("STORE_UNAVAILABLE").
		With("namespace", "session").
		Errorf("dial tcp: refused")

	logging.LogError(context.Background(), logger, "validate failed", err)

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "validate failed", entry["msg"])
	assert.Equal(t, "STORE_UNAVAILABLE", entry["code"])
	require.IsType(t, map[string]any{}, entry["context"])
	assert.Equal(t, "session", entry["context"].(map[string]any)["namespace"])
}

func TestLogErrorWithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logging.LogError(context.Background(), logger, "operation failed", errors.New("standard error"))

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Contains(t, entry["error"], "standard error")
}
