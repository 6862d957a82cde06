// Package server exposes the retrieval core over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/erabu/internal/config"
	"github.com/hyperjump/erabu/internal/retrieval"
)

// Server wires the HTTP routes to the retrieval service.
type Server struct {
	cfg       *config.Config
	retrieval *retrieval.Service
	logger    *zap.Logger
	http      *http.Server
}

// New creates a server for the given configuration and service.
func New(cfg *config.Config, svc *retrieval.Service, logger *zap.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		retrieval: svc,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/retrieve", s.handleRetrieve)
		r.Post("/citations", s.handleCitations)
		r.Post("/whatif", s.handleWhatIf)
	})
	r.Get("/api/documents/{documentID}/pages/{pageNumber}", s.handlePagePreview)

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start begins serving. Blocks until the listener fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}
