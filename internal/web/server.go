// Package web provides the HTTP boundary over the core service: snapshot
// upload, search, entity mutations and archive management.
package web

import (
	"context"
	"net/http"

	"github.com/asterfield/stocksnap/internal/config"
	"github.com/asterfield/stocksnap/internal/core"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Service is the boundary contract the handlers consume.
// Implemented by *core.Service.
type Service interface {
	Ingest(ctx context.Context, files core.IngestFiles) (*core.IngestResult, error)
	Search(ctx context.Context, query string) ([]core.EntityResult, error)
	UpdateEntity(ctx context.Context, id int64, fields core.EntityFields) error
	DeleteEntity(ctx context.Context, id int64) error
	ListArchive(ctx context.Context) ([]string, error)
	DeleteArchived(ctx context.Context, name string) error
}

// Server is the HTTP server for the snapshot service.
type Server struct {
	service Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server over the given service and configuration.
func NewServer(service Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Post("/upload", s.handleIngest)
	s.router.Get("/search", s.handleSearch)
	s.router.Post("/search", s.handleSearch)

	s.router.Route("/api", func(r chi.Router) {
		r.Put("/entities/{entityID}", s.handleUpdateEntity)
		r.Delete("/entities/{entityID}", s.handleDeleteEntity)

		r.Get("/archive", s.handleListArchive)
		r.Delete("/archive/{objectName}", s.handleDeleteArchived)
	})
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
