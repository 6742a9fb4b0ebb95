package q63

import (
	"context"
	"log/slog"
	"time"

	"github.com/uglydojo/q63/internal/flows"
	"github.com/uglydojo/q63/internal/outbox"
	"github.com/uglydojo/q63/internal/stores"
	"github.com/uglydojo/q63/password"
	"github.com/uglydojo/q63/session"
)

// Engine runs account, session, reset, and progress operations against the
// backing store.
//
// Engine methods are safe for concurrent use once [Builder.Build] returns.
type Engine struct {
	config       Config
	kv           *stores.RedisStore
	accounts     *stores.AccountStore
	resets       *stores.PasswordResetStore
	sessionStore *session.Store
	passwordHash *password.Hasher
	outbox       *outbox.Dispatcher
	metrics      *Metrics
	logger       *slog.Logger
	now          func() time.Time
	flows        flows.Service
}

// Close drains queued reset mail. The engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.outbox != nil {
		e.outbox.Close()
	}
}

// MailDropped describes the maildropped operation and its observable behavior.
//
// MailDropped may return an error when input validation, dependency calls, or security checks fail.
// MailDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MailDropped() uint64 {
	if e == nil || e.outbox == nil {
		return 0
	}
	return e.outbox.Dropped()
}

// MailEnabled reports whether reset links are delivered.
func (e *Engine) MailEnabled() bool {
	return e != nil && e.outbox != nil
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Ping checks the backing store.
func (e *Engine) Ping(ctx context.Context) error {
	if e == nil || e.kv == nil {
		return ErrEngineNotReady
	}
	return e.kv.Ping(ctx)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricIncFunc(id int) {
	e.metricInc(MetricID(id))
}

func (e *Engine) newFlowService() flows.Service {
	return flows.New(flows.Deps{
		Account:       e.accountFlowDeps(),
		PasswordReset: e.passwordResetFlowDeps(),
		Progress:      e.progressFlowDeps(),
	})
}

func (e *Engine) ready() bool {
	return e != nil && e.flows.Initialized()
}
