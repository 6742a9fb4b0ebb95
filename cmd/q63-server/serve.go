package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/uglydojo/q63"
	"github.com/uglydojo/q63/httpapi"
	"github.com/uglydojo/q63/internal/config"
	"github.com/uglydojo/q63/internal/logging"
	otelexport "github.com/uglydojo/q63/metrics/export/otel"
	promexport "github.com/uglydojo/q63/metrics/export/prometheus"
)

const (
	serviceName      = "q63-server"
	redisRetryBase   = 200 * time.Millisecond
	redisPingTimeout = 2 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	registerConfigFlags(cmd)
	return cmd
}

func registerConfigFlags(cmd *cobra.Command) {
	config.RegisterFlags(cmd.Flags())
}

func loadConfig(cmd *cobra.Command) (*config.Server, error) {
	cfg, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return nil, oops.Wrapf(err, "invalid configuration")
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg *config.Server) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.Setup(serviceName, version, cfg.Log.Format, cfg.Log.Level, os.Stderr)
	slog.SetDefault(logger)

	rdb, cleanup, err := openRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	engine, err := q63.New().
		WithConfig(cfg.Engine()).
		WithRedis(rdb).
		WithLogger(logger).
		Build()
	if err != nil {
		return oops.Wrapf(err, "build engine")
	}
	defer engine.Close()

	report := engine.SecurityReport()
	logger.Info("security posture",
		"password_iterations", report.PasswordIterations,
		"session_ttl", report.SessionTTL.String(),
		"reset_ttl", report.PasswordResetTTL.String(),
		"reset_mail", report.ResetMailEnabled,
		"admin_export", report.AdminExportEnabled,
	)
	if !report.AdminExportEnabled {
		logger.Warn("admin key not set; email export will reject every request")
	}
	if cfg.Reset.Origin == "" && len(cfg.Reset.Hosts) == 0 {
		logger.Warn("reset origin not set and no trusted hosts; reset links will not be sent")
	}

	var metricsHandler http.Handler
	if cfg.Metrics.Prometheus {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		registry.MustRegister(promexport.NewCollector(engine))
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	if cfg.Metrics.OTel {
		exporter, err := otelexport.NewOTelExporter(otel.Meter(serviceName), engine)
		if err != nil {
			return oops.Wrapf(err, "register otel instruments")
		}
		defer func() {
			if err := exporter.Close(); err != nil {
				logger.Warn("failed to unregister otel instruments", "error", err)
			}
		}()
	}

	gin.SetMode(gin.ReleaseMode)
	api := httpapi.New(engine, httpapi.Options{
		Logger:         logger,
		MetricsHandler: metricsHandler,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	logger.Info("api server listening",
		"addr", cfg.HTTP.Addr,
		"mail_enabled", engine.MailEnabled(),
		"embedded_redis", cfg.Redis.Embedded,
	)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err, ok := <-errChan:
		if ok {
			return oops.Wrapf(err, "http server")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.Shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", "error", err)
	}
	if dropped := engine.MailDropped(); dropped > 0 {
		logger.Warn("reset mail dropped during run", "count", dropped)
	}
	return nil
}

// openRedis connects to the configured Redis, or starts an embedded one,
// and waits until it answers PING.
func openRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, func(), error) {
	addr := cfg.Addr
	var mr *miniredis.Miniredis
	if cfg.Embedded {
		var err error
		mr, err = miniredis.Run()
		if err != nil {
			return nil, nil, oops.Code("STORE_UNAVAILABLE").Wrapf(err, "start embedded redis")
		}
		addr = mr.Addr()
		logger.Warn("using embedded redis; data will not persist", "addr", addr)
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{addr},
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	cleanup := func() {
		_ = client.Close()
		if mr != nil {
			mr.Close()
		}
	}

	backoff := retry.WithMaxRetries(cfg.Retries, retry.NewExponential(redisRetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis not ready", "addr", addr, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		cleanup()
		return nil, nil, oops.Code("STORE_UNAVAILABLE").With("addr", addr).Wrapf(err, "connect redis")
	}
	return client, cleanup, nil
}
