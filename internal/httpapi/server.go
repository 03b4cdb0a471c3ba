// Package httpapi serves the drafting pipeline over HTTP in server mode.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/a3tai/mcp-form-drafter/internal/config"
	"github.com/a3tai/mcp-form-drafter/internal/draft"
	"github.com/a3tai/mcp-form-drafter/internal/googleforms"
	"github.com/a3tai/mcp-form-drafter/internal/logger"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
	// multipartOverhead is allowed on top of the file size limit for the
	// other form fields and part headers.
	multipartOverhead = 1 << 20
)

// Server is the HTTP surface.
type Server struct {
	cfg       *config.Config
	builder   *draft.Builder
	extractor draft.Extractor
	publisher googleforms.Publisher
	mcp       http.Handler
	log       *logger.Logger
}

// Option customizes a Server.
type Option func(*Server)

// WithPublisher enables POST /api/v1/forms.
func WithPublisher(p googleforms.Publisher) Option {
	return func(s *Server) { s.publisher = p }
}

// WithMCP mounts an MCP transport handler under its own path prefix.
func WithMCP(h http.Handler) Option {
	return func(s *Server) { s.mcp = h }
}

// New creates the HTTP surface.
func New(cfg *config.Config, builder *draft.Builder, extractor draft.Extractor, log *logger.Logger, opts ...Option) (*Server, error) {
	if cfg == nil || builder == nil || extractor == nil {
		return nil, errors.New("httpapi: config, builder and extractor are required")
	}
	s := &Server{
		cfg:       cfg,
		builder:   builder,
		extractor: extractor,
		log:       logger.OrNop(log).With("service", "httpapi.Server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the routed handler wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestID)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/extractions", s.extract).Methods(http.MethodPost)
	api.HandleFunc("/drafts", s.buildDraft).Methods(http.MethodPost)
	if s.publisher != nil {
		api.HandleFunc("/forms", s.createForm).Methods(http.MethodPost)
	}

	if s.mcp != nil {
		r.PathPrefix("/mcp/").Handler(s.mcp)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{requestIDHeader},
	})
	return c.Handler(r)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("http server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	}
}
