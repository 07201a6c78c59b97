package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/SAP-F-2025/question-import-service/internal/auth"
	"github.com/SAP-F-2025/question-import-service/internal/config"
	"github.com/SAP-F-2025/question-import-service/internal/questionapi"
	"github.com/SAP-F-2025/question-import-service/internal/repositories"
	"github.com/SAP-F-2025/question-import-service/internal/services"
	"github.com/SAP-F-2025/question-import-service/internal/utils"
	"github.com/SAP-F-2025/question-import-service/internal/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := utils.NewLoggerWithLevel(os.Stderr, cfg.Environment, level).Slog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	}, credentials, logger)

	submitter := services.NewBatchSubmitter(client, nil, services.BatchPolicy{
		BatchSize:       cfg.Import.BatchSize,
		InterBatchDelay: cfg.Import.InterBatchDelay,
		RequestTimeout:  cfg.Import.RequestTimeout,
	}, logger)

	cli := commandLine{
		service: services.NewImportService(
			repositories.NewMemoryImportJobRepository(),
			submitter,
			nil,
			nil,
			logger,
			validator.New(),
		),
		out:    os.Stdout,
		userID: os.Getenv("USER"),
	}

	if err := cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		stop()
		os.Exit(1)
	}
}
