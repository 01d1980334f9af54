// Package server serves a built site for local preview.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Config holds server configuration.
type Config struct {
	Port       int
	Dir        string // Directory holding the built site.
	AllowAll   bool   // Allow all CORS origins.
	LiveReload bool   // Inject the reload client into HTML pages.
}

// Server is the preview server for a built site.
type Server struct {
	cfg        Config
	logger     *zap.SugaredLogger
	hub        *Hub
	router     chi.Router
	httpServer *http.Server
}

// New creates a preview server for cfg.Dir.
func New(cfg Config, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		hub:    NewHub(logger),
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// The bibliography is fetched cross-origin when pages are rendered
	// against a running preview.
	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	if s.cfg.LiveReload {
		r.Get(LiveReloadPath, s.hub.ServeHTTP)
	}

	static := http.FileServer(http.Dir(s.cfg.Dir))
	r.With(middleware.Timeout(60 * time.Second)).Handle("/*", s.staticHandler(static))

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Reload tells connected pages to refresh.
func (s *Server) Reload(paths ...string) { s.hub.Broadcast(paths) }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Infow("preview server listening", "addr", addr, "dir", s.cfg.Dir)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
