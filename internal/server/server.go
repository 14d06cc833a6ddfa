// Package server provides the HTTP upload service for scormpack.
//
// The service is a thin layer over the packaging pipeline: a browser form
// (GET /) posts an upload to POST /packages and receives the finished SCORM
// zip as a download. The server holds no state between requests; every
// invocation stages into its own disposable directory.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mreiter/scormpack/pkg/pipeline"
)

// Server serves the upload UI and packaging endpoint.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server. A nil runner gets a default pipeline runner wired
// to the logger; a nil logger falls back to log.Default().
func New(cfg Config, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, logger)
	}
	return &Server{cfg: cfg, runner: runner, logger: logger}
}

// Router builds the chi router with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/packages", s.handleCreatePackage)
	r.Get("/healthz", s.handleHealth)

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully with a short drain window.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	}
}

// requestLogger logs one line per request with status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
