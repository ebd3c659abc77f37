// Copyright 2025 Certen Protocol

package httpapi

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Server is the HTTP read API: the three data endpoints, /healthz and
// /metrics behind the middleware stack.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// NewServer builds the mux, wraps it with middleware, and returns a
// Server ready for ListenAndServe. metricsHandler is typically
// (*metrics.Metrics).Handler(); passed as http.Handler so this package
// does not depend on pkg/metrics.
func NewServer(addr string, handlers *Handlers, metricsHandler http.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTPAPI] ", log.LstdFlags)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", getOnly(handlers.HandleGetDID))
	mux.HandleFunc("/resolve-handle/", getOnly(handlers.HandleResolveHandle))
	mux.HandleFunc("/resolve-ckb-addr/", getOnly(handlers.HandleResolveCkbAddr))
	mux.HandleFunc("/healthz", getOnly(handlers.HandleHealthz))
	mux.Handle("/metrics", metricsHandler)

	var root http.Handler = mux
	root = withAccessLog(logger, root)
	root = withRequestID(root)
	root = withGzip(root)
	root = withCORS(root)

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      root,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// getOnly routes non-GET methods to the 405 response; every handler in
// this service is read-only.
func getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			HandleDefault(w, r)
			return
		}
		next(w, r)
	}
}

// ListenAndServe blocks serving HTTP until the server is shut down. It
// never returns http.ErrServerClosed as an error.
func (s *Server) ListenAndServe() error {
	s.logger.Printf("Listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("httpapi: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests up
// to ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Println("Shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("httpapi: shutdown: %w", err)
	}
	return nil
}
