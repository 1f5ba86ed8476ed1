package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/pricedesk/internal/config"
	"github.com/me/pricedesk/internal/resource"
	"github.com/me/pricedesk/internal/store"
	"github.com/me/pricedesk/internal/ui"
)

// Server is the pricedesk web admin server.
type Server struct {
	router     chi.Router
	logger     *slog.Logger
	config     config.ServerConfig
	startTime  time.Time
	store      store.Store
	registry   *resource.Registry
	httpClient *http.Client // optional; client for pricing API calls
	ui         *ui.UI       // UI handler for web interface
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithHTTPClient sets the HTTP client used to reach the pricing API.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) {
		s.httpClient = c
	}
}

// New creates a new Server with all routes registered.
func New(cfg config.ServerConfig, st store.Store, logger *slog.Logger, opts ...Option) (*Server, error) {
	reg, err := resource.NewRegistry(cfg.Paging)
	if err != nil {
		return nil, fmt.Errorf("resource registry: %w", err)
	}

	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		store:     st,
		registry:  reg,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ui = ui.New(st, logger, ui.Config{
		APIBaseURL: cfg.APIBaseURL,
		Registry:   reg,
		Secure:     cfg.Secure,
		SessionTTL: cfg.SessionTTL,
		HTTPClient: s.httpClient,
	})

	s.routes()
	return s, nil
}

// StartSessionCleanup removes expired browser sessions every interval until
// ctx is done.
func (s *Server) StartSessionCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupSessions(ctx)
			}
		}
	}()
}

func (s *Server) cleanupSessions(ctx context.Context) {
	n, err := s.store.DeleteExpiredSessions(ctx)
	if err != nil {
		s.logger.Error("session cleanup failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("expired sessions removed", "count", n)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Get("/healthz", s.handleHealth)

	// UI routes (HTML)
	s.ui.RegisterRoutes(r)

	// API routes (JSON)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(apiAuthMiddleware(s.ui.Sessions()))
			r.Get("/resources", s.handleListResources)
			r.Get("/activity", s.handleListActivity)
		})
	})
}
