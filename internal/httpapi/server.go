// Package httpapi exposes the FIT decoder over HTTP: a single upload-and-
// decode endpoint, wrapped in request-logging, panic recovery, a
// per-request correlation ID, and an optional per-address rate limiter.
package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/samcharles93/fitdecode/internal/logger"
)

// Config bounds the resources one decode request may consume.
type Config struct {
	// MaxUploadBytes caps the accepted FIT file size. Zero means no limit.
	MaxUploadBytes int64
	// RequestsPerSecond and Burst configure the per-remote-address rate
	// limiter. Zero RequestsPerSecond disables limiting.
	RequestsPerSecond float64
	Burst             int
}

// Server is the httpapi collaborator: it owns no decoder state across
// requests, only the shared rate limiter and upload bound.
type Server struct {
	cfg     Config
	limiter *addressLimiter
}

// NewServer builds a Server from cfg.
func NewServer(cfg Config) *Server {
	s := &Server{cfg: cfg}
	if cfg.RequestsPerSecond > 0 {
		s.limiter = newAddressLimiter(cfg.RequestsPerSecond, cfg.Burst)
	}
	return s
}

// Register wires the decode route plus request-scoped middleware onto e.
func (s *Server) Register(e *echo.Echo) {
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(s.correlationID)
	if s.limiter != nil {
		e.Use(s.rateLimit)
	}
	e.POST("/v1/decode", s.handleDecode)
}

// correlationID attaches a per-request UUID to the request-scoped logger.
func (s *Server) correlationID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		id := uuid.NewString()
		log := logger.FromContext(c.Request().Context()).With("request_id", id)
		ctx := logger.WithContext(c.Request().Context(), log)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set("X-Request-Id", id)
		return next(c)
	}
}

// StartConfig builds an echo.StartConfig with a bounded read-header
// timeout on top of the given listen address.
func StartConfig(addr string, readTimeout time.Duration) echo.StartConfig {
	return echo.StartConfig{
		Address: addr,
		BeforeServeFunc: func(srv *http.Server) error {
			srv.ReadHeaderTimeout = readTimeout
			return nil
		},
	}
}

func writeError(c *echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}
