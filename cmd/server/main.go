package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"reportingest/internal/app"
	"reportingest/internal/config"
	"reportingest/internal/handler"
	"reportingest/internal/logger"
	"reportingest/internal/middleware"
	"reportingest/internal/repository/postgres"
	"reportingest/internal/router"
	"reportingest/internal/service"
)

// @title Report Ingest API
// @version 1.0
// @description Ingests photographed gaming and point-of-sale reports and serves the normalized records.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	c, err := app.Build(cfg, zlog)
	if err != nil {
		return err
	}
	defer func() { _ = c.DB.Close() }()

	// Initialize services
	reportSvc := service.NewReportService(c.Reports, c.Scans)
	uploadSvc := service.NewUploadService(c.Storage, c.URLs, &cfg.S3, cfg.Ingest.UploadsPrefix, zlog)

	// Initialize handlers
	handlers := router.Handlers{
		Health: handler.NewHealthHandler(postgres.Pinger{DB: c.DB}),
		Proxy:  handler.NewProxyHandler(c.Storage, cfg.S3.Bucket, cfg.Proxy.CacheMaxAgeSecs, zlog),
		Event:  handler.NewEventHandler(c.Triggers, zlog),
		Report: handler.NewReportHandler(reportSvc),
		Upload: handler.NewUploadHandler(uploadSvc),
	}

	tokens := middleware.NewTokenValidator(cfg.Auth)
	if tokens == nil {
		zlog.Warn("bearer auth disabled: REPORTS_AUTH_JWT_SECRET is not set")
	}

	r := router.Setup(handlers, tokens, cfg.CORS.AllowedOrigins, zlog)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("environment", cfg.Server.Environment),
			zap.String("analyzer", cfg.Analyzer.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		zlog.Info("shutting down", zap.String("signal", sig.String()))
	}

	// Webhook ingestion can run for as long as a hub call, so allow in-flight requests to finish.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
