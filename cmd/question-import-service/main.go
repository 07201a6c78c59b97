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

	"github.com/SAP-F-2025/question-import-service/internal/auth"
	"github.com/SAP-F-2025/question-import-service/internal/cache"
	"github.com/SAP-F-2025/question-import-service/internal/config"
	"github.com/SAP-F-2025/question-import-service/internal/handlers"
	"github.com/SAP-F-2025/question-import-service/internal/questionapi"
	"github.com/SAP-F-2025/question-import-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/question-import-service/internal/services"
	"github.com/SAP-F-2025/question-import-service/internal/utils"
	"github.com/SAP-F-2025/question-import-service/internal/validator"
	"github.com/SAP-F-2025/question-import-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	if err := run(cfg, logger); err != nil {
		logger.LogError(err, "Service stopped")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger utils.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slogger := logger.Slog()

	db, err := pkg.InitDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer pkg.CloseDatabase(db)

	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	credentials := auth.NewProvider(auth.Options{
		Token:        cfg.QuestionAPI.Token,
		ClientID:     cfg.QuestionAPI.ClientID,
		ClientSecret: cfg.QuestionAPI.ClientSecret,
		TokenURL:     cfg.QuestionAPI.TokenURL,
		Scopes:       cfg.QuestionAPI.Scopes,
	})
	client := questionapi.NewClient(questionapi.Config{
		BaseURL: cfg.QuestionAPI.BaseURL,
		Timeout: cfg.Import.RequestTimeout,
	}, credentials, slogger)

	progress := cache.NewProgressTracker(cache.NewRedisCache(redisClient, slogger))
	submitter := services.NewBatchSubmitter(client, progress, services.BatchPolicy{
		BatchSize:       cfg.Import.BatchSize,
		InterBatchDelay: cfg.Import.InterBatchDelay,
		RequestTimeout:  cfg.Import.RequestTimeout,
	}, slogger)

	v := validator.New()
	importService := services.NewImportService(
		postgres.NewImportJobPostgreSQL(db),
		submitter,
		progress,
		publisher,
		slogger,
		v,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.NewHandlerManager(importService, v, logger, cfg.Import.MaxUploadBytes), logger)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", utils.RequestIDHeader, utils.UserIDHeader},
			ExposedHeaders:   []string{"Content-Disposition", utils.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		})(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting question import service",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"batch_size", submitter.Policy().BatchSize,
			"batch_delay", submitter.Policy().InterBatchDelay)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
