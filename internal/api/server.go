// Package api exposes the webhook HTTP surface.
package api

import (
	"context"
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/overtalkerr/overtalkerr/internal/adapter"
	"github.com/overtalkerr/overtalkerr/internal/config"
	"github.com/overtalkerr/overtalkerr/internal/conversation"
)

// Server handles HTTP requests for the Overtalkerr webhook API.
type Server struct {
	echo   *echo.Echo
	engine *conversation.Engine
	router *adapter.Router
	logger zerolog.Logger
	cfg    *config.Config
}

// NewServer creates a new API server instance.
func NewServer(engine *conversation.Engine, router *adapter.Router, cfg *config.Config, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		engine: engine,
		router: router,
		logger: logger.With().Str("component", "api").Logger(),
		cfg:    cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.BodyLimit("1M"))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	webhook := s.echo.Group("")
	if s.cfg.Auth.BasicUser != "" && s.cfg.Auth.BasicPass != "" {
		webhook.Use(middleware.BasicAuth(func(user, pass string, c echo.Context) (bool, error) {
			userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.cfg.Auth.BasicUser)) == 1
			passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.cfg.Auth.BasicPass)) == 1
			return userOK && passOK, nil
		}))
	}

	// Alexa skills post to the root path; the other platforms use
	// /voice. Both accept any recognized payload.
	webhook.POST("/", s.handleWebhook)
	webhook.POST("/voice", s.handleWebhook)
}

// handleWebhook detects the platform, runs the conversation turn, and
// renders the platform-specific response.
func (s *Server) handleWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
	}

	req, a, err := s.router.Parse(payload)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	resp := s.engine.Handle(c.Request().Context(), req)
	return c.JSON(http.StatusOK, a.BuildResponse(resp))
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Start begins serving on the given address.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
