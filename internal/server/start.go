package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Start runs the HTTP server and blocks until an interrupt or terminate
// signal arrives, then shuts everything down in dependency order.
func (s *Server) Start() {
	addr := ":" + s.Cfg.GetPort()
	go func() {
		if err := s.E.Start(addr); err != nil && err != http.ErrServerClosed {
			s.E.Logger.Fatalf("shutting down the server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.E.Shutdown(ctx); err != nil {
		s.E.Logger.Fatal(err)
	}
	s.Close()
}

// Close tears down the realtime bridge, the message bus and the store.
func (s *Server) Close() {
	s.cancel()
	if err := s.bus.Close(); err != nil {
		slog.Error("Failed to close message bus", "error", err)
	}
	if s.storeCloser != nil {
		if err := s.storeCloser.Close(); err != nil {
			slog.Error("Failed to close store", "error", err)
		}
	}
}
