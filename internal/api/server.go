package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/scorarr/scorarr/internal/api/handlers"
	"github.com/scorarr/scorarr/internal/api/middleware"
	"github.com/scorarr/scorarr/internal/config"
	"github.com/scorarr/scorarr/internal/controllers"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger *logrus.Logger
}

// NewServer creates a new HTTP server exposing health, status, and the
// Radarr import webhook.
func NewServer(cfg *config.Config, hookCtrl *controllers.HookController, reporter handlers.RunReporter, logger *logrus.Logger) *Server {
	s := &Server{
		logger: logger,
	}

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	statusHandler := handlers.NewStatusHandler(reporter, logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	webhookHandler := handlers.NewWebhookHandler(hookCtrl, logger)
	mux.HandleFunc("/api/webhook/radarr", webhookHandler.ServeHTTP)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server and blocks until the context is canceled or
// the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("addr", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
