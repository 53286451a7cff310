// Package main runs the event invitation HTTP API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"videoinvites/config"
	"videoinvites/internal/adapters/auth"
	"videoinvites/internal/adapters/cache"
	"videoinvites/internal/adapters/email"
	"videoinvites/internal/adapters/storage"
	httpdelivery "videoinvites/internal/delivery/http"
	"videoinvites/internal/delivery/http/controllers"
	"videoinvites/internal/domain"
	"videoinvites/internal/repository/postgres"
	"videoinvites/internal/services"
)

const (
	shutdownTimeout  = 15 * time.Second
	cooldownPrefix   = "reset-code:"
	signalBufferSize = 1
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("schema applied")
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromEmail,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:          cfg.Mail.SESRegion,
			AccessKeyID:     cfg.Mail.SESAccessKeyID,
			SecretAccessKey: cfg.Mail.SESSecretAccessKey,
		},
		Brevo: email.BrevoConfig{
			BaseURL:   cfg.Mail.BrevoURL,
			APIKey:    cfg.Mail.BrevoAPIKey,
			Templates: cfg.Mail.BrevoTemplates,
			Sandbox:   cfg.Mail.BrevoSandbox,
		},
	}, logger)
	if err != nil {
		return err
	}

	objectStorage := storage.NewS3Storage(storage.S3Config{
		URL:             cfg.Storage.URL,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
	}, logger)

	cooldown := newCooldown(cfg.Redis, logger)

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	tokens := auth.NewJWTIssuer(cfg.JWTSecret)

	userRepo := postgres.NewUserRepository(db)
	userService := services.NewUserService(userRepo, hasher, tokens, cfg.JWTExpiry, logger, cfg.RequestTimeout)
	resetService := services.NewPasswordResetService(
		userRepo,
		postgres.NewPasswordResetCodeRepository(db),
		services.NewEmailService(mailer, logger),
		hasher,
		logger,
		cfg.RequestTimeout,
	)
	eventService := services.NewEventService(
		postgres.NewEventRepository(db),
		postgres.NewInviteeRepository(db),
		postgres.NewUploadRepository(db),
		objectStorage,
		services.UploadBuckets{Invitees: cfg.Storage.InviteesBucket, Compiled: cfg.Storage.CompiledBucket},
		logger,
		cfg.RequestTimeout,
		cfg.UploadTimeout,
	)

	router := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:     controllers.NewAuthController(logger, userService),
		Password: controllers.NewPasswordController(logger, resetService, userService, cooldown, cfg.Redis.ResetCodeCooldown),
		Event:    controllers.NewEventController(logger, eventService),
	}, tokens, httpdelivery.RouterConfig{
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, signalBufferSize)
	go func() {
		logger.Info("starting API server", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}

// newCooldown returns the Redis backed cooldown, or a no-op store when Redis is not configured.
func newCooldown(cfg config.RedisConfig, logger *slog.Logger) domain.CooldownStore {
	if cfg.Addr == "" {
		logger.Warn("REDIS_ADDR not set, reset code cooldown disabled")
		return cache.NewNoopCooldown()
	}
	client := cache.NewRedisClient(cache.RedisOptions{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return cache.NewRedisCooldown(client, cooldownPrefix)
}
