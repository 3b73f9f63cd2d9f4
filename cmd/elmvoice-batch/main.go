package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/cloudbasha/elmvoice/constants"
	"github.com/cloudbasha/elmvoice/internal/common"
	"github.com/cloudbasha/elmvoice/internal/export"
	"github.com/cloudbasha/elmvoice/internal/genai"
	"github.com/cloudbasha/elmvoice/internal/kvstore"
	"github.com/cloudbasha/elmvoice/internal/pipeline"
	"github.com/cloudbasha/elmvoice/internal/repository"
	"github.com/cloudbasha/elmvoice/internal/vision"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory of receipt images to process (required)")
		out     = flag.String("out", "", "output XLSX path (defaults to invoices.xlsx next to -dir)")
		workers = flag.Int("workers", 0, "concurrent workers (defaults to config)")
		inmem   = flag.Bool("inmem", false, "use an in-memory store instead of the sqlite file")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: -dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "invoices.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}
	if *workers <= 0 {
		*workers = cfg.Batch.Workers
	}

	var store kvstore.Store
	if *inmem {
		store = kvstore.NewMemoryStore()
	} else {
		s, err := kvstore.OpenSQLite(ctx, cfg.Storage.Path, logger)
		if err != nil {
			logger.Error("failed to open store", "path", cfg.Storage.Path, "error", err)
			os.Exit(1)
		}
		defer s.Close()
		store = s
	}

	invoices := repository.NewInvoiceRepository(ctx, store, logger)

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

	var processed, failures atomic.Int64

	handle := func(ctx context.Context, job pipeline.Job) error {
		image, err := os.ReadFile(job.Path)
		if err != nil {
			failures.Add(1)
			return fmt.Errorf("read %s: %w", job.Path, err)
		}
		result, err := processor.ProcessReceipt(ctx, image)
		if err != nil {
			failures.Add(1)
			return fmt.Errorf("process %s: %w", job.Path, err)
		}
		if _, err := invoices.CreateInvoice(ctx, result.Draft); err != nil {
			failures.Add(1)
			return fmt.Errorf("create invoice for %s: %w", job.Path, err)
		}
		processed.Add(1)
		return nil
	}

	queue := pipeline.NewReceiptQueue(handle, logger,
		pipeline.WithWorkers(*workers),
		pipeline.WithQueueSize(cfg.Batch.QueueSize),
		pipeline.WithProcessTimeout(cfg.Batch.Timeout),
	)

	scanned := 0
	walkErr := filepath.WalkDir(*dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !constants.IsAllowedExt(filepath.Ext(path)) {
			return nil
		}
		scanned++
		return queue.Enqueue(ctx, pipeline.Job{Path: path})
	})
	if walkErr != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", walkErr)
		os.Exit(1)
	}

	queue.Shutdown(ctx)

	exporter := export.NewService(invoices, logger)
	xlsxBytes, err := exporter.ExportInvoicesXLSX(ctx, repository.InvoiceFilter{})
	if err != nil {
		logger.Error("failed to export invoices", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete",
		"scanned", scanned,
		"processed", processed.Load(),
		"failures", failures.Load(),
		"output_file", *out,
	)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files scanned: %d\n", scanned)
	fmt.Printf("- Invoices created: %d\n", processed.Load())
	fmt.Printf("- Failures: %d\n", failures.Load())
	fmt.Printf("- Output: %s\n", *out)
}
