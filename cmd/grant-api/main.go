// cmd/grant-api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"grant-portal/internal/api"
	"grant-portal/internal/common/auth"
	"grant-portal/internal/common/config"
	"grant-portal/internal/common/database"
	"grant-portal/internal/common/logger"
	"grant-portal/internal/common/observability"
	"grant-portal/internal/form/steps"
	"grant-portal/internal/notify"
	"grant-portal/internal/repository"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrUnsupported) {
			return err
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func buildVerifier(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) (auth.Verifier, func() error) {
	var verifier auth.Verifier
	switch cfg.Auth.Mode {
	case config.AuthModeJWT:
		verifier = auth.NewJWTVerifier(cfg.Auth.JWTSecret)
	default:
		verifier = auth.NewSupabaseVerifier(cfg.Database.Supabase)
	}

	noop := func() error { return nil }
	if !cfg.Auth.CacheEnabled {
		return verifier, noop
	}

	rdb := database.NewRedis(cfg.Database.Redis)
	err := retryWithBackoff(func() error {
		return rdb.Ping(ctx)
	}, 5, time.Second, zapLog, "Redis connection")
	if err != nil {
		// the cache is optional; verify upstream on every request
		zapLog.Warn("auth cache disabled", zap.Error(err))
		rdb.Close()
		return verifier, noop
	}
	zapLog.Info("Redis connected successfully")
	return auth.NewCachedVerifier(verifier, rdb.Client, config.GetDuration(cfg.Auth.CacheTTL), log), rdb.Close
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"env":     cfg.App.Environment,
	})

	zapLog.Info("Starting grant API...",
		zap.String("driver", cfg.Database.Driver),
		zap.String("authMode", cfg.Auth.Mode),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init storage with retry ---
	var (
		repo      repository.Repository
		closeRepo func() error
	)
	err = retryWithBackoff(func() error {
		var err error
		repo, closeRepo, err = repository.New(ctx, cfg.Database, log)
		return err
	}, 15, 2*time.Second, zapLog, "Storage connection")
	if err != nil {
		zapLog.Fatal("storage failed after retries", zap.Error(err))
	}
	defer closeRepo()
	zapLog.Info("Storage ready", zap.String("driver", cfg.Database.Driver))

	verifier, closeCache := buildVerifier(ctx, cfg, log, zapLog)
	defer closeCache()

	var notifier notify.Notifier = notify.NoOp{}
	if cfg.Integrations.Webhook.Enabled {
		notifier = notify.NewWebhookNotifier(cfg.Integrations.Webhook, steps.Grant(), nil, log)
		zapLog.Info("Submission webhook enabled")
	}

	handler := api.NewRouter(cfg.Server, cfg.Auth, api.Dependencies{
		Repository:    repo,
		Verifier:      verifier,
		Allowlist:     auth.NewAllowlist(cfg.Auth.AllowedEmails),
		Notifier:      notifier,
		Observability: obs,
		Logger:        log,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handler,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening",
			zap.String("address", cfg.Server.Address),
			zap.String("basePath", cfg.Server.BasePath),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, draining requests...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Grant API stopped gracefully")
}
