package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uglydojo/q63"
	"github.com/uglydojo/q63/middleware"
)

const healthTimeout = 2 * time.Second

// Options configures the HTTP surface.
type Options struct {
	Logger *slog.Logger
	// MetricsHandler is mounted at /metrics when non-nil.
	MetricsHandler http.Handler
}

// Server exposes a q63 Engine over JSON HTTP.
type Server struct {
	engine  *q63.Engine
	logger  *slog.Logger
	router  *gin.Engine
	metrics http.Handler
}

// New builds the router. The engine must already be built.
func New(engine *q63.Engine, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(CORS())

	s := &Server{
		engine:  engine,
		logger:  logger,
		router:  r,
		metrics: opts.MetricsHandler,
	}
	s.registerRoutes()
	return s
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics))
	}
	s.router.GET("/healthz", s.handleHealthz)

	api := s.router.Group("/api")
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)
	api.POST("/reset-request", s.handleResetRequest)
	api.POST("/reset-confirm", s.handleResetConfirm)
	api.GET("/export-emails", s.handleExportEmails)

	authed := api.Group("/")
	authed.Use(middleware.Guard(s.engine, func(c *gin.Context, err error) {
		s.fail(c, err, "Internal server error.")
	}))
	authed.GET("/progress", s.handleGetProgress)
	authed.PUT("/progress", s.handlePutProgress)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := s.engine.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "health check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
