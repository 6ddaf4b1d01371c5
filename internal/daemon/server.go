package daemon

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/codehaus-cargo/cargo-sub009/internal/auth"
	"github.com/codehaus-cargo/cargo-sub009/internal/config"
	errUtils "github.com/codehaus-cargo/cargo-sub009/internal/errors"
	"github.com/codehaus-cargo/cargo-sub009/internal/version"
)

// Server exposes a Daemon over HTTP.
type Server struct {
	echo       *echo.Echo
	daemon     *Daemon
	config     config.DaemonConfig
	authMiddle *auth.Middleware
	logger     *log.Logger
}

type requestValidator struct {
	v *validator.Validate
}

func (rv *requestValidator) Validate(i interface{}) error {
	if err := rv.v.Struct(i); err != nil {
		return BadRequestError("Invalid request", err.Error())
	}
	return nil
}

// NewServer creates the HTTP server for d.
func NewServer(cfg config.DaemonConfig, d *Daemon, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = &requestValidator{v: validator.New()}

	s := &Server{
		echo:       e,
		daemon:     d,
		config:     cfg,
		authMiddle: auth.NewMiddleware(cfg),
		logger:     logger.With("component", "http"),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogMethod:  true,
		LogURI:     true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	s.echo.Use(middleware.Recover())
	s.echo.Use(SecurityHeaders)
	s.echo.Use(middleware.RequestID())

	if s.config.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.RateLimit),
		)))
	}

	s.echo.Use(ValidateContentType)
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	v1 := s.echo.Group("/api/v1")
	v1.GET("/containers", s.listContainers, s.authMiddle.RequireViewer)

	handles := v1.Group("/handles", ValidateHandleParam)
	handles.GET("", s.listHandles, s.authMiddle.RequireViewer)
	handles.GET("/:id", s.getHandle, s.authMiddle.RequireViewer)
	handles.GET("/:id/log", s.viewLog, s.authMiddle.RequireViewer)
	handles.POST("/:id/start", s.startHandle, s.authMiddle.RequireOperator)
	handles.POST("/:id/restart", s.restartHandle, s.authMiddle.RequireOperator)
	handles.POST("/:id/stop", s.stopHandle, s.authMiddle.RequireOperator)
	handles.DELETE("/:id", s.deleteHandle, s.authMiddle.RequireOperator)
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	addr := s.config.Address()
	s.logger.Info("cargo daemon listening", "address", "http://"+addr, "auth", s.config.AuthEnabled)

	s.echo.Server.ReadTimeout = s.config.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.WriteTimeout

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return errUtils.Wrapf(err, errUtils.ErrConfiguration, "daemon server failed")
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down cargo daemon")
	return s.echo.Shutdown(ctx)
}

// ServeHTTP allows Server to implement http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// healthCheck handles health check requests.
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "cargo-daemon",
		"version": version.Version,
		"handles": len(s.daemon.Handles()),
	})
}
