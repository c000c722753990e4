// Package api exposes the generation flows over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Jrygg01/FrameForge/internal/core"
	"github.com/Jrygg01/FrameForge/internal/generate"
)

const (
	headerRequestID = "X-Request-ID"
	bodyLimit       = "16M"
	version         = "0.1.0"
)

// Generator is the orchestrator surface the handlers need.
type Generator interface {
	FromImage(ctx context.Context, in generate.ImageInput) (generate.ImageOutput, error)
	FromText(ctx context.Context, in generate.TextInput) (generate.TextOutput, error)
	FromVoiceTranscript(ctx context.Context, in generate.TextInput) (generate.TextOutput, error)
	Model() string
	MaxOutputTokens() int
}

// Transcripts persists conversation turns per session.
type Transcripts interface {
	Append(ctx context.Context, sessionID string, turns ...core.ChatTurn) error
	List(ctx context.Context, sessionID string, limit int) ([]core.ChatTurn, error)
	Delete(sessionID string) error
}

type Config struct {
	AllowedOrigin  string
	Production     bool
	RequestTimeout time.Duration
}

type Server struct {
	cfg         Config
	gen         Generator
	transcripts Transcripts
	logger      *slog.Logger
	echo        *echo.Echo
}

// NewServer wires routes and middleware. transcripts may be nil, which
// disables session storage.
func NewServer(cfg Config, gen Generator, transcripts Transcripts, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.AllowedOrigin) == "" {
		cfg.AllowedOrigin = "*"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		cfg:         cfg,
		gen:         gen,
		transcripts: transcripts,
		logger:      logger,
		echo:        e,
	}
	e.HTTPErrorHandler = s.handleHTTPError

	e.Use(middleware.Recover())
	e.Use(s.requestContext)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			logger := core.ComponentLogger(c.Request().Context(), s.logger, "http")
			if v.Error != nil {
				logger.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{cfg.AllowedOrigin},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, headerRequestID},
		ExposeHeaders: []string{headerRequestID},
	}))
	e.Use(middleware.BodyLimit(bodyLimit))

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/status", s.handleStatus)

	gen := api.Group("/generate")
	gen.POST("/image", s.handleGenerateImage)
	gen.POST("/text", s.handleGenerateText)
	gen.POST("/voice", s.handleGenerateVoice)

	api.GET("/sessions/:id/turns", s.handleListTurns)
	api.DELETE("/sessions/:id", s.handleDeleteSession)
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// requestContext tags every request with an id and a request-scoped logger.
func (s *Server) requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		id := strings.TrimSpace(req.Header.Get(headerRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Response().Header().Set(headerRequestID, id)

		ctx := core.WithRequestID(req.Context(), id)
		ctx = core.WithLogger(ctx, s.logger.With("request_id", id))
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}

func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.RequestTimeout)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "frameforge",
	})
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":          "running",
		"version":         version,
		"model":           s.gen.Model(),
		"maxOutputTokens": s.gen.MaxOutputTokens(),
		"transcripts":     s.transcripts != nil,
	})
}
