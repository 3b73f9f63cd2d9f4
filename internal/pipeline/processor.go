package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudbasha/elmvoice/internal/entity"
	"github.com/cloudbasha/elmvoice/internal/genai"
	"github.com/cloudbasha/elmvoice/internal/metrics"
	"github.com/cloudbasha/elmvoice/internal/vision"
)

// Processor coordinates OCR (text extract) then structuring (draft invoice).
// It performs no persistence; callers decide what to do with the draft.
type Processor struct {
	logger *slog.Logger
	ocr    vision.TextExtractor
	llm    genai.InvoiceStructurer
}

// Result is the outcome of a successfully processed receipt.
type Result struct {
	ExtractedText string              `json:"extractedText"`
	Draft         entity.InvoiceDraft `json:"-"`
	RawDraft      json.RawMessage     `json:"invoice"`
}

func NewProcessor(ocr vision.TextExtractor, llm genai.InvoiceStructurer, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, ocr: ocr, llm: llm}
}

// ProcessReceipt runs extraction then structuring, sequentially. Empty
// extracted text does not short-circuit: structuring still runs and yields a
// mostly-empty draft. An error from either stage aborts with no partial
// result.
func (p *Processor) ProcessReceipt(ctx context.Context, image []byte) (Result, error) {
	start := time.Now()

	text, err := p.ocr.ExtractText(ctx, image)
	if err != nil {
		metrics.ReceiptsProcessed.WithLabelValues("ocr_error").Inc()
		p.logger.Error("pipeline.ocr.failed", "err", err)
		return Result{}, fmt.Errorf("extract text: %w", err)
	}
	if text == "" {
		p.logger.Warn("pipeline.ocr.empty_text")
	}

	draft, raw, err := p.llm.StructureInvoice(ctx, text)
	if err != nil {
		metrics.ReceiptsProcessed.WithLabelValues("structure_error").Inc()
		p.logger.Error("pipeline.structure.failed", "err", err)
		return Result{}, fmt.Errorf("structure invoice: %w", err)
	}

	metrics.ReceiptsProcessed.WithLabelValues("ok").Inc()
	p.logger.Info("pipeline.ok",
		"text_len", len(text),
		"items", len(draft.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Result{ExtractedText: text, Draft: draft, RawDraft: raw}, nil
}
