// Package server exposes the mapwright exporters over HTTP.
//
// The service is stateless: every request carries a whole canvas, which is
// loaded into a fresh engine for validation and then exported. Routes:
//
//	GET  /healthz                 liveness and build version
//	POST /v1/export/{format}      JSON envelope in, exported text out
//	POST /v1/render/{format}      JSON envelope in, Graphviz SVG or PNG out
//	POST /v1/import/csv           CSV tables in, JSON envelope out
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/mapwright/pkg/cache"
	"github.com/matzehuels/mapwright/pkg/config"
	"github.com/matzehuels/mapwright/pkg/render/nodelink"
)

// Defaults for [Config].
const (
	DefaultAddr        = ":8080"
	DefaultMaxBodySize = 4 << 20
	shutdownTimeout    = 10 * time.Second
)

// Config holds listener settings.
type Config struct {
	Addr           string   // listen address, default DefaultAddr
	MaxBodySize    int64    // request body limit in bytes, default DefaultMaxBodySize
	AllowedOrigins []string // CORS origins; empty disables CORS headers
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCache sets the artifact cache used by the render route.
func WithCache(c cache.Cache) Option {
	return func(s *Server) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithEngineConfig sets the engine configuration applied to every request.
func WithEngineConfig(c config.Config) Option {
	return func(s *Server) { s.engineCfg = c }
}

// Server serves the HTTP API.
type Server struct {
	cfg       Config
	engineCfg config.Config
	logger    *log.Logger
	cache     cache.Cache
	renderer  *nodelink.Renderer
}

// New creates a server. The artifact cache defaults to a no-op cache.
func New(cfg Config, opts ...Option) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	s := &Server{
		cfg:       cfg,
		engineCfg: config.Default(),
		logger:    log.Default(),
		cache:     cache.NewNullCache(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.renderer = nodelink.NewRenderer(s.cache, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "http:"), s.logger)
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "X-Dropped-Rows"},
			MaxAge:         300,
		}))
	}
	r.Use(chimiddleware.RequestSize(s.cfg.MaxBodySize))

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/export/{format}", s.export)
		r.Post("/render/{format}", s.render)
		r.Post("/import/csv", s.importCSV)
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
