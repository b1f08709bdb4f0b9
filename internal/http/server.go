// Package http serves the project catalog over a small REST API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/projectdeck/internal/logging"
	"github.com/fyrsmithlabs/projectdeck/internal/project"
	"github.com/fyrsmithlabs/projectdeck/internal/store"
)

// Route paths served by the catalog API.
const (
	HealthPath   = "/health"
	ProjectsPath = "/api/projects/all"
	CreatePath   = "/api/projects"
	MetricsPath  = "/metrics"
)

// Catalog is the project collection behind the API.
type Catalog interface {
	All() []project.Project
	Len() int
	Create(req project.CreateRequest) (project.Project, error)
}

// Server provides the catalog HTTP endpoints.
type Server struct {
	echo    *echo.Echo
	catalog Catalog
	logger  *logging.Logger
	config  *Config
	limiter *rate.Limiter
	version string
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
	// RateLimit is the sustained API request rate per second across all
	// clients. Zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	meter    metric.Meter
	gatherer prometheus.Gatherer
	version  string
}

// WithMeter records HTTP metrics on meter instead of the global provider.
func WithMeter(m metric.Meter) Option {
	return func(o *serverOptions) { o.meter = m }
}

// WithGatherer serves /metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(o *serverOptions) { o.gatherer = g }
}

// WithVersion reports v from /health.
func WithVersion(v string) Option {
	return func(o *serverOptions) { o.version = v }
}

// NewServer creates a new HTTP server.
func NewServer(catalog Catalog, logger *logging.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "127.0.0.1",
			Port: 8787,
		}
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit cannot be negative: %v", cfg.RateLimit)
	}

	o := serverOptions{gatherer: prometheus.DefaultGatherer}
	for _, opt := range opts {
		opt(&o)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		catalog: catalog,
		logger:  logger,
		config:  cfg,
		version: o.version,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger())
	e.Use(NewHTTPMetrics(o.meter, logger).MetricsMiddleware())

	s.registerRoutes(promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))

	return s, nil
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			ctx := logging.WithRequestID(req.Context(), c.Response().Header().Get(echo.HeaderXRequestID))
			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			s.logger.Info(ctx, "http request",
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
			)

			return err
		}
	}
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes(metrics http.Handler) {
	s.echo.GET(HealthPath, s.handleHealth)
	s.echo.GET(MetricsPath, echo.WrapHandler(metrics))

	s.echo.GET(ProjectsPath, s.handleList, s.rateLimit)
	s.echo.POST(CreatePath, s.handleCreate, s.rateLimit)
}

// rateLimit rejects API requests once the shared token bucket is empty.
func (s *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.limiter != nil && !s.limiter.Allow() {
			RateLimited.Inc()
			s.logger.Warn(c.Request().Context(), "rate limit exceeded",
				zap.String("path", c.Path()),
				zap.String("remote", c.RealIP()))
			return c.JSON(http.StatusTooManyRequests, ErrorResponse{Message: "rate limit exceeded"})
		}
		return next(c)
	}
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  s.version,
		Projects: s.catalog.Len(),
	})
}

// handleList returns the whole catalog as a JSON array.
func (s *Server) handleList(c echo.Context) error {
	return c.JSON(http.StatusOK, s.catalog.All())
}

// handleCreate adds a project from a CreateRequest body.
func (s *Server) handleCreate(c echo.Context) error {
	ctx := c.Request().Context()

	if auth := c.Request().Header.Get(echo.HeaderAuthorization); auth != "" {
		s.logger.Debug(ctx, "create request authorization", logging.RedactedString("authorization", auth))
	}

	var req project.CreateRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(ctx, "invalid create request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}

	p, err := s.catalog.Create(req)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrSlugTaken):
		return c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
	case errors.Is(err, project.ErrEmptyProjectName),
		errors.Is(err, project.ErrEmptySlug),
		errors.Is(err, project.ErrInvalidSlug):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	default:
		s.logger.Error(ctx, "create project failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
	}

	ProjectsCreated.Inc()
	s.logger.Info(ctx, "project created",
		zap.String("id", p.ID),
		zap.String("slug", p.Slug))

	return c.JSON(http.StatusCreated, p)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start starts the HTTP server. It returns http.ErrServerClosed after
// Shutdown.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", s.Addr()))
	return s.echo.Start(s.Addr())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}
