// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes report generation and source chat over HTTP.
package server

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
	"go.uber.org/zap"

	"github.com/pdiddy/report-engine/internal/completion"
	"github.com/pdiddy/report-engine/internal/pipeline"
	"github.com/pdiddy/report-engine/internal/report"
	"github.com/pdiddy/report-engine/pkg/types"
)

// DefaultAddress matches the port the web frontend expects.
const DefaultAddress = ":5000"

const shutdownTimeout = 10 * time.Second

// ReportStore is the subset of *report.Store the API uses.
type ReportStore interface {
	Save(ctx context.Context, r types.Report) error
	Get(ctx context.Context, id string) (types.Report, error)
	List(ctx context.Context, opts report.ListOptions) ([]types.Report, error)
}

// Config wires the server's dependencies. Store and Gatherer are optional.
type Config struct {
	Pipeline *pipeline.Pipeline
	Client   completion.Completer
	Store    ReportStore
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Server is the HTTP API.
type Server struct {
	echo     *echo.Echo
	pipeline *pipeline.Pipeline
	client   completion.Completer
	store    ReportStore
	logger   *zap.Logger
}

// New builds the echo instance and registers all routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		echo:     echo.New(),
		pipeline: cfg.Pipeline,
		client:   cfg.Client,
		store:    cfg.Store,
		logger:   logger.Named("http"),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))
	e.HTTPErrorHandler = s.handleError

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := e.Group("/api")
	api.GET("/health", s.health)
	api.POST("/generate-report", s.generateReport)
	api.POST("/chat", s.chat)
	api.GET("/reports", s.listReports)
	api.GET("/reports/:id", s.getReport)

	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddress
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()
	s.logger.Info("listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		<-errCh
		return nil
	}
}

// handleError renders every error as {"error": message}.
func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	req := c.Request()
	s.logger.Warn("request failed",
		zap.Int("status", code),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Error(err))
	if !c.Response().Committed {
		_ = c.JSON(code, map[string]any{"error": msg})
	}
}
