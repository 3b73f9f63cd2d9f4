package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cloudbasha/elmvoice/internal/entity"
	"github.com/cloudbasha/elmvoice/internal/repository"
)

// Service is a tiny façade over the invoice repository that produces
// XLSX and PDF bytes for exports.
type Service struct {
	invoices repository.InvoiceRepository
	logger   *slog.Logger
}

func NewService(invoices repository.InvoiceRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{invoices: invoices, logger: logger}
}

// ExportInvoicesXLSX returns an XLSX workbook (as bytes) with one row per
// invoice matching the filter.
func (s *Service) ExportInvoicesXLSX(ctx context.Context, filter repository.InvoiceFilter) ([]byte, error) {
	start := time.Now()

	invoices, err := s.invoices.ListInvoices(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Invoice #",
		"Date",
		"Due Date",
		"Vendor",
		"Client",
		"Items",
		"Subtotal",
		"Tax",
		"Total",
		"Status",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, inv := range invoices {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, inv.InvoiceNumber)
		write(2, inv.Date)
		write(3, inv.DueDate)
		write(4, truncate(inv.Vendor, 60))
		write(5, truncate(inv.Client, 60))
		write(6, itemSummary(inv.Items))
		write(7, inv.Subtotal)
		write(8, inv.Tax)
		write(9, inv.Total)
		write(10, string(inv.Status))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "C", 12)
	_ = f.SetColWidth(sheet, "D", "E", 28)
	_ = f.SetColWidth(sheet, "F", "F", 48)
	_ = f.SetColWidth(sheet, "G", "I", 12)
	_ = f.SetColWidth(sheet, "J", "J", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(invoices),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// itemSummary compresses line items into a single cell.
func itemSummary(items []entity.InvoiceItem) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s x%g", it.Description, it.Quantity)
	}
	return truncate(out, 140)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
