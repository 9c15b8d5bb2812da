package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	handler "github.com/newthinker/copyhub/internal/api/handler/api"
	"github.com/newthinker/copyhub/internal/api/middleware"
	"github.com/newthinker/copyhub/internal/app"
	"github.com/newthinker/copyhub/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server for copyhub
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string // empty disables the metrics endpoint
	Version     string
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, a *app.App, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()

	s := &Server{
		logger: logger,
		mux:    mux,
	}
	s.setupRoutes(cfg, a)

	mws := []func(http.Handler) http.Handler{metrics.LoggingMiddleware(logger)}
	if reg := a.Metrics(); reg != nil {
		mws = append(mws, metrics.HTTPMiddleware(reg))
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      middleware.Chain(mux, mws...),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, a *app.App) {
	auth := middleware.APIKeyAuth(cfg.APIKey)
	protect := func(h http.HandlerFunc) http.Handler { return auth(h) }

	health := handler.NewHealthHandler(a, cfg.Version)
	providers := handler.NewProvidersHandler(a)
	entry := handler.NewEntryHandler(a)

	s.mux.HandleFunc("GET /api/health", health.Health)

	if reg := a.Metrics(); reg != nil && cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}

	s.mux.Handle("GET /api/v1/providers", protect(providers.List))
	s.mux.Handle("GET /api/v1/providers/options", protect(providers.Options))
	s.mux.Handle("DELETE /api/v1/providers/filters", protect(providers.ClearFilters))
	s.mux.Handle("DELETE /api/v1/providers/sort", protect(providers.ClearSort))
	s.mux.Handle("POST /api/v1/positions/entry", protect(entry.Resolve))
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
