// Package main is the entrypoint for the identity hooks HTTP gateway.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wiseuni/identity-hooks/internal/app"
	"github.com/wiseuni/identity-hooks/internal/config"
	"github.com/wiseuni/identity-hooks/internal/event"
	"github.com/wiseuni/identity-hooks/internal/health"
	"github.com/wiseuni/identity-hooks/internal/middleware"
)

// triggerPath accepts any hook, routed by the event's triggerSource.
const triggerPath = "/api/v1/hooks"

// hookPaths maps each hook to its dedicated route.
var hookPaths = map[string]string{
	event.HookPreSignUp:         "/api/v1/hooks/pre-signup",
	event.HookCustomMessage:     "/api/v1/hooks/custom-message",
	event.HookPreAuthentication: "/api/v1/hooks/pre-authentication",
	event.HookPostConfirmation:  "/api/v1/hooks/post-confirmation",
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := config.MustNewLogger(cfg)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting identity hooks gateway",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
	)

	// Wire hooks and their collaborators
	application, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize hooks", zap.Error(err))
	}
	defer func() { _ = application.Close() }()

	// Create router
	mux := http.NewServeMux()

	// Health endpoints
	healthHandlers := health.NewHandlers(application.Checkers...)
	mux.HandleFunc("GET /health/live", healthHandlers.LiveHandler)
	mux.HandleFunc("GET /health/ready", healthHandlers.ReadyHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(application.Registry, promhttp.HandlerOpts{}))

	// Hook endpoints
	routed := make(map[string]string, len(hookPaths))
	for _, name := range application.Dispatcher.Names() {
		path, ok := hookPaths[name]
		if !ok {
			continue
		}
		routed[path] = name
		mux.HandleFunc("POST "+path, application.Dispatcher.Handler(name))
	}
	mux.HandleFunc("POST "+triggerPath, application.Dispatcher.TriggerHandler())

	// Apply middleware chain
	var handler http.Handler = mux
	handler = middleware.Logging(logger)(handler)
	// Message customization and welcome mail never block the lifecycle, so
	// they keep running in maintenance mode.
	handler = middleware.Maintenance(cfg.MaintenanceMode, cfg.MaintenanceMessage, logger,
		application.Dispatcher.SuppressingRequest(triggerPath, routed),
	)(handler)
	handler = middleware.CorrelationID(cfg.CorrelationIDHeader)(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
