// Package server provides the HTTP API for Gazou.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/gazou/internal/config"
	"github.com/hyperjump/gazou/internal/search"
	"github.com/hyperjump/gazou/internal/storage"
	"github.com/hyperjump/gazou/internal/token"
)

// Server is the HTTP server for the Gazou API.
type Server struct {
	search *search.Service
	codec  token.Codec
	store  storage.FeedbackStore
	config *config.Config
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	searchSvc *search.Service,
	codec token.Codec,
	store storage.FeedbackStore,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		search: searchSvc,
		codec:  codec,
		store:  store,
		config: cfg,
		logger: logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/search-image", s.handleSearchImage)
	r.Post("/api/v1/create-feedback", s.handleCreateFeedback)
	r.Get("/api/v1/healthcheck", s.handleHealthcheck)
	r.Get("/api/v1/status", s.handleStatus)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
