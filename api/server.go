package api

import (
	"context"
	"net/http"
	"time"
)

// Server wraps http.Server with the timeouts and shutdown behavior cmd/api
// expects.
type Server struct {
	inner *http.Server
}

func NewServer(port string, handler http.Handler) *Server {
	return &Server{
		inner: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
	}
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	return s.inner.ListenAndServe()
}

// Shutdown drains in-flight requests until the context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
