package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"applykit/internal/store"
)

const shutdownTimeout = 30 * time.Second

// Start serves until ctx is cancelled, then shuts down gracefully. The
// store watcher and the metrics server run for the server's lifetime.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}

	if s.obs != nil {
		s.obs.StartMetricsServer()
	}
	if s.AppConfig.Store.Watch {
		_, err := s.store.Watch(ctx, s.AppConfig.Store.DebounceDelay, func(st store.State) {
			s.Logger.Info("Stored state reloaded", "profile", st.Profile.Name, "jobs", len(st.Jobs))
		})
		if err != nil {
			s.Logger.LogError(err, "Failed to start state watcher")
		}
	}

	s.displayServerInfo()

	serverErrors := make(chan error, 1)
	go func() {
		s.Logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.cleanupRateLimiter()
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.Logger.Info("Shutdown requested, starting graceful shutdown")
		return s.performGracefulShutdown(httpServer)
	}
}

func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.cleanupRateLimiter()

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}
	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

func (s *Server) cleanupRateLimiter() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
