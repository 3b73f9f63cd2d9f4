package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudbasha/elmvoice/internal/common"
	"github.com/cloudbasha/elmvoice/internal/export"
	"github.com/cloudbasha/elmvoice/internal/genai"
	"github.com/cloudbasha/elmvoice/internal/kvstore"
	"github.com/cloudbasha/elmvoice/internal/mailer"
	"github.com/cloudbasha/elmvoice/internal/pipeline"
	"github.com/cloudbasha/elmvoice/internal/repository"
	"github.com/cloudbasha/elmvoice/internal/server"
	"github.com/cloudbasha/elmvoice/internal/vision"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := kvstore.OpenSQLite(ctx, cfg.Storage.Path, logger)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.Storage.Path, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("store close failed", "error", err)
		}
	}()

	invoices := repository.NewInvoiceRepository(ctx, store, logger)
	users := repository.NewUserRepository(ctx, store, logger)

	ocr := vision.NewClient(vision.Config{
		APIKey:  cfg.Vision.APIKey,
		BaseURL: cfg.Vision.BaseURL,
		Timeout: cfg.Vision.Timeout,
	}, logger)
	llm := genai.NewClient(genai.Config{
		APIKey:  cfg.GenAI.APIKey,
		BaseURL: cfg.GenAI.BaseURL,
		Model:   cfg.GenAI.Model,
		Timeout: cfg.GenAI.Timeout,
	}, logger)

	processor := pipeline.NewProcessor(ocr, llm, logger)
	exporter := export.NewService(invoices, logger)
	mail := mailer.NewMockSender(logger)

	srv := server.New(cfg, logger, processor, invoices, users, exporter, mail)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("http.serving", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
