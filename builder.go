package q63

import (
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uglydojo/q63/internal/outbox"
	"github.com/uglydojo/q63/internal/stores"
	"github.com/uglydojo/q63/mail"
	"github.com/uglydojo/q63/password"
	"github.com/uglydojo/q63/session"
)

// Builder assembles an [Engine]. A Builder is single use.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	sender mail.Sender
	logger *slog.Logger
	now    func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client every record is stored through.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithMailSender overrides the sender built from Config.Mail.SMTP.
func (b *Builder) WithMailSender(sender mail.Sender) *Builder {
	b.sender = sender
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
//
// WithLogger may return an error when input validation, dependency calls, or security checks fail.
// WithLogger does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock replaces time.Now for expiry stamps and checks.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	// -------- PASSWORD HASHER --------
	ph, err := password.New(password.Config{Iterations: cfg.Password.Iterations})
	if err != nil {
		return nil, err
	}

	// -------- STORES --------
	kv := stores.NewRedisStore(b.redis, cfg.Store.KeyPrefix)

	engine := &Engine{
		config:       cfg,
		kv:           kv,
		accounts:     stores.NewAccountStore(kv),
		resets:       stores.NewPasswordResetStore(kv, now),
		sessionStore: session.NewStore(kv, cfg.Session.TTL, now),
		passwordHash: ph,
		metrics:      NewMetrics(cfg.Metrics),
		logger:       logger,
		now:          now,
	}

	// -------- MAIL OUTBOX --------
	sender := b.sender
	if sender == nil && cfg.Mail.SMTP.Enabled() {
		sender = mail.NewSMTPSender(cfg.Mail.SMTP, logger)
	}
	if sender != nil {
		engine.outbox = outbox.NewDispatcher(outbox.Config{
			BufferSize:  cfg.Mail.BufferSize,
			DropIfFull:  cfg.Mail.DropIfFull,
			SendTimeout: cfg.Mail.SendTimeout,
		}, sender, logger, func(err error) {
			if err != nil {
				engine.metricInc(MetricMailFailed)
				return
			}
			engine.metricInc(MetricMailSent)
		})
	} else {
		logger.Warn("mail delivery disabled; reset links will not be sent")
	}

	engine.flows = engine.newFlowService()

	b.built = true

	return engine, nil
}
