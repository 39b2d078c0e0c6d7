package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs-quantt/checklist-api/internal/api"
	"github.com/rs-quantt/checklist-api/internal/config"
	"github.com/rs-quantt/checklist-api/internal/logger"
	"github.com/rs-quantt/checklist-api/internal/notify"
	"github.com/rs-quantt/checklist-api/internal/repository"
	"github.com/rs-quantt/checklist-api/internal/service"
	"github.com/rs-quantt/checklist-api/internal/storage"
)

func main() {
	// Initialize logger from environment configuration
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	templateRepo := repository.NewTemplateRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	recordRepo := repository.NewItemRecordRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	// Initialize export storage; the service runs without it if the
	// endpoint is unreachable or unconfigured
	var exportService *service.ExportService
	objectStorage, err := storage.NewStorage(&storage.S3Config{
		Type:      storage.StorageType(cfg.Storage.Type),
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		appLogger.WithError(err).Warn("Export storage unavailable, admin exports disabled")
	} else {
		ctx := context.Background()
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Warn("Failed to ensure export bucket, admin exports disabled")
		} else {
			exportService = service.NewExportService(summaryRepo, objectStorage)
		}
	}

	// Initialize completion webhook notifier
	notifier := notify.NewWebhookNotifier(&notify.WebhookConfig{
		Enabled: cfg.Webhook.Enabled,
		URL:     cfg.Webhook.URL,
		Timeout: time.Duration(cfg.Webhook.TimeoutSeconds) * time.Second,
	})
	if notifier.IsEnabled() {
		appLogger.WithField("url", cfg.Webhook.URL).Info("Completion webhook enabled")
	}

	// Initialize services
	submitService := service.NewSubmitService(
		templateRepo,
		categoryRepo,
		recordRepo,
		summaryRepo,
		submissionRepo,
		notifier,
		appLogger,
		&service.SubmitConfig{MaxRetries: cfg.Submit.MaxRetries},
	)
	summaryService := service.NewSummaryService(templateRepo, categoryRepo, summaryRepo, submissionRepo)

	// Setup router
	router := api.SetupRouter(&api.RouterDeps{
		Templates:      templateRepo,
		Categories:     categoryRepo,
		SubmitService:  submitService,
		SummaryService: summaryService,
		ExportService:  exportService,
	}, cfg, appLogger)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
