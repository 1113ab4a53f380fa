package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/compclass/platform/internal/app"
	"github.com/compclass/platform/internal/auth"
	"github.com/compclass/platform/internal/infra"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Connect to Postgres
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	// Apply migrations
	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Parse JWT expiry durations
	studentExpiry, err := time.ParseDuration(cfg.JWTStudentExpiry)
	if err != nil {
		return fmt.Errorf("parse student JWT expiry: %w", err)
	}
	teacherExpiry, err := time.ParseDuration(cfg.JWTTeacherExpiry)
	if err != nil {
		return fmt.Errorf("parse teacher JWT expiry: %w", err)
	}
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, studentExpiry, teacherExpiry)

	// Kafka mirror (no-op when disabled)
	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	router := app.NewRouter(app.RouterDeps{
		Pool:               pool,
		JWTMgr:             jwtMgr,
		Logger:             logger,
		PinMask:            cfg.PinMask,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Publisher:          producer,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.APIPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "port", cfg.APIPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
