package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"app/internal/api/v1/router"
	"app/internal/config"
	"app/internal/logger"
	"app/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	logger := logger.New()

	// 1. Load configuration
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	// 2. Resolve Stripe secrets from Secret Manager when not set via env
	if err := loadStripeSecrets(cfg); err != nil {
		logger.Fatal().Msgf("Failed to load Stripe secrets: %v", err)
	}
	if cfg.StripeWebhookSecret == "" {
		logger.Warn().Msg("Stripe webhook secret is not configured, webhook deliveries will be rejected")
	}

	// 3. Build router (and get DB pool)
	r, pool, err := router.New(cfg, logger)
	if err != nil {
		logger.Fatal().Msgf("Failed to build router: %v", err)
	}
	defer pool.Close()

	// 4. Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Start server in a goroutine
	go func() {
		logger.Info().Msgf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Msgf("Listen: %s\n", err)
		}
	}()

	// 6. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutdown signal received, exiting...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Msgf("Server forced to shutdown: %v", err)
	}
	logger.Info().Msg("Server shut down gracefully")
}

// loadStripeSecrets fills cfg.StripeSecretKey and cfg.StripeWebhookSecret
// from GCP Secret Manager when secret names are configured and the values
// were not provided directly.
func loadStripeSecrets(cfg *config.Config) error {
	if cfg.GCPProjectID == "" || (cfg.StripeKeySecretName == "" && cfg.StripeWebhookSecretName == "") {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sm, err := service.NewSecretManagerService(ctx, cfg)
	if err != nil {
		return err
	}
	defer sm.Close()

	if cfg.StripeSecretKey == "" && cfg.StripeKeySecretName != "" {
		if cfg.StripeSecretKey, err = sm.GetSecret(ctx, cfg.StripeKeySecretName); err != nil {
			return err
		}
	}
	if cfg.StripeWebhookSecret == "" && cfg.StripeWebhookSecretName != "" {
		if cfg.StripeWebhookSecret, err = sm.GetSecret(ctx, cfg.StripeWebhookSecretName); err != nil {
			return err
		}
	}
	return nil
}
