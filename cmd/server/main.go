package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aa-consent-gateway/internal/config"
	"aa-consent-gateway/internal/handler"
	"aa-consent-gateway/internal/metrics"
	"aa-consent-gateway/internal/middleware"
	"aa-consent-gateway/internal/repository"
	"aa-consent-gateway/internal/service"
	"aa-consent-gateway/pkg/logger"
)

const (
	startupProbeKey = "__redis_health_check__"
	startupProbeTTL = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(cfg.Server.LogLevel)
	appLogger.Info("Starting AA consent gateway")

	// Connect session store
	store, err := openSessionStore(&cfg.Session, repository.Open)
	if err != nil {
		appLogger.Error("Session store connection failed", "backend", cfg.Session.Backend, "error", err)
		log.Fatalf("Session store is not running or not accessible (backend %s): %v", cfg.Session.Backend, err)
	}
	appLogger.Info("Session store connection successful", "backend", cfg.Session.Backend)
	defer store.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if sqliteStore, ok := store.(*repository.SQLiteSessionStore); ok {
		go sqliteStore.RunCleanup(ctx, cfg.Session.CleanupInterval, appLogger)
	}

	// Initialize services
	reg := metrics.New()
	client := service.NewAAClient(cfg.Finvu.BaseURL, cfg.Finvu.Timeout, service.NewEnvelopeBuilder(), reg, appLogger)
	auth := service.NewAuthenticator(client, service.Credentials{
		UserID:   cfg.Finvu.UserID,
		Password: cfg.Finvu.Password,
	}, appLogger)
	sessions := service.NewSessionResolver(store, reg, appLogger)
	consentService := service.NewConsentService(client, auth, sessions, &cfg.Finvu, appLogger)

	// Initialize handlers and middleware
	router := handler.NewRouter(handler.RouterOptions{
		Consent:        handler.NewConsentHandler(consentService, appLogger),
		Health:         handler.NewHealthHandler(store, cfg.Session.Backend, appLogger),
		Auth:           middleware.NewAuthMiddleware(cfg.Security.APIKey, appLogger),
		Metrics:        reg,
		Logger:         appLogger,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Finvu.Timeout*2 + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("HTTP server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server error", "error", err)
			store.Close()
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	appLogger.Info("AA consent gateway started successfully",
		"address", addr,
		"finvu_base_url", cfg.Finvu.BaseURL,
		"session_store", cfg.Session.Backend,
		"api_key_enabled", cfg.Security.APIKey != "",
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	appLogger.Info("Shutting down server...", "signal", sig.String())
	stop()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
		return
	}

	appLogger.Info("Server stopped gracefully")
}

// openSessionStore opens the configured store and runs the startup probe.
// The store is closed again when the probe fails.
func openSessionStore(cfg *config.SessionConfig, open func(*config.SessionConfig) (repository.SessionStore, error)) (repository.SessionStore, error) {
	store, err := open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupProbeTTL)
	defer cancel()
	if err := repository.Probe(ctx, store, startupProbeKey, startupProbeTTL); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
