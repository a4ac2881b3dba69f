// Package server exposes the dataset catalog, descriptive statistics and
// plot rendering over a JSON HTTP API, plus the embedded dashboard page.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"DataScope/src/config"
	"DataScope/src/dataset"
	"DataScope/src/storage"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	cfg     config.Config
	catalog *dataset.Catalog
	manager *dataset.Manager
	logger  *storage.Logger
}

func New(cfg config.Config, catalog *dataset.Catalog, manager *dataset.Manager, logger *storage.Logger) *Server {
	return &Server{cfg: cfg, catalog: catalog, manager: manager, logger: logger}
}

// Serve starts the HTTP server and blocks until the context is cancelled
// or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	addr := s.cfg.Addr()
	s.logger.Info("starting http server", "addr", addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).Round(time.Millisecond).String(),
		)
	})
}
