// Package server implements the Seakeeper HTTP API servers. The ingestion
// and analytics processes share the middleware stack and lifecycle; they
// differ only in the routes mounted onto the router.
package server

import (
	"context"
	"expvar"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is one Seakeeper HTTP API server.
type Server struct {
	router chi.Router
	addr   string
	srv    *http.Server
	logger *slog.Logger
}

// New creates a server with the shared middleware stack and mounts the given
// routes under /api. maxBody of zero disables the body limit.
func New(addr, apiKey string, maxBody int64, logger *slog.Logger, mount func(chi.Router)) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if maxBody > 0 {
		r.Use(MaxBodyMiddleware(maxBody))
	}
	r.Use(APIKeyMiddleware(apiKey))

	r.Route("/api", mount)
	r.Method(http.MethodGet, "/debug/vars", expvar.Handler())

	return &Server{router: r, addr: addr, logger: logger}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins serving HTTP requests and blocks until the listener fails or
// the server is stopped.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info("server listening", "addr", s.addr)
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
