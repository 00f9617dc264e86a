// Package server exposes the layout pipeline and the default metadata
// registry over HTTP.
//
// # Routes
//
//	POST /v1/layout                 service JSON in, layout JSON out
//	POST /v1/render?format=svg      service JSON in, diagram out (dot, svg or txt)
//	GET  /v1/metadata               IDs of the default metadata documents
//	GET  /v1/metadata/{id}          one document
//	GET  /v1/metadata/{id}/layout   layout of a service stored as metadata
//	GET  /healthz                   liveness
//
// Every response carries an X-Request-ID header. A valid UUID sent by the
// client is echoed back; otherwise a new one is generated. Errors are JSON
// objects with the error code, message and request ID.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flowgrid/pkg/metadata"
	"github.com/matzehuels/flowgrid/pkg/pipeline"
)

// Defaults for [Options].
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxBodyBytes   = 4 << 20
	shutdownTimeout       = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Runner         *pipeline.Runner
	Registry       *metadata.Registry // Defaults to metadata.Default()
	Logger         *log.Logger
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// Server is the HTTP API.
type Server struct {
	runner       *pipeline.Runner
	registry     *metadata.Registry
	logger       *log.Logger
	maxBodyBytes int64
	router       chi.Router
}

// New builds a server and its routes.
func New(opts Options) *Server {
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Registry == nil {
		opts.Registry = metadata.Default()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &Server{
		runner:       opts.Runner,
		registry:     opts.Registry,
		logger:       opts.Logger,
		maxBodyBytes: opts.MaxBodyBytes,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
		r.Get("/metadata", s.handleMetadataList)
		r.Get("/metadata/{id}", s.handleMetadataGet)
		r.Get("/metadata/{id}/layout", s.handleMetadataLayout)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFound("no route for %s %s", r.Method, r.URL.Path))
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
