package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server wraps the HTTP listener of tilp-connect.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return &Server{httpServer: s, logger: logger}
}

// Start blocks until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.logger.Info("Starting tilp-connect HTTP server", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping tilp-connect HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// StopWithin drains in-flight requests for up to timeout. The deadline is
// independent of any caller context, which is usually already cancelled by
// the time the process shuts down.
func (s *Server) StopWithin(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Stop(ctx)
}
