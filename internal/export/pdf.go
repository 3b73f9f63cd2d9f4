package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/cloudbasha/elmvoice/constants"
	"github.com/cloudbasha/elmvoice/internal/entity"
)

// InvoicePDF renders a single invoice as an A4 PDF document.
func (s *Service) InvoicePDF(inv *entity.Invoice) ([]byte, error) {
	start := time.Now()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(190, 10, "INVOICE", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(190, 6, fmt.Sprintf("%s  |  Generated: %s", inv.InvoiceNumber, inv.CreatedAt), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Parties
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(95, 8, "From", "1", 0, "L", true, 0, "")
	pdf.CellFormat(95, 8, "Bill To", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, inv.Vendor, "LR", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, inv.Client, "LR", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, inv.VendorAddress, "LRB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, inv.ClientAddress, "LRB", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.CellFormat(95, 6, fmt.Sprintf("Date: %s", inv.Date), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, fmt.Sprintf("Due: %s", inv.DueDate), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Items table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(95, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Unit Price", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Total", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, it := range inv.Items {
		pdf.CellFormat(95, 6, truncate(it.Description, 60), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%g", it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", it.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", it.Total), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	// Totals
	pdf.CellFormat(120, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, "Subtotal", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", inv.Subtotal), "1", 1, "R", false, 0, "")
	pdf.CellFormat(120, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, fmt.Sprintf("Tax (%.0f%%)", constants.TaxRate*100), "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", inv.Tax), "1", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 7, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, fmt.Sprintf("%.2f", inv.Total), "1", 1, "R", false, 0, "")
	pdf.Ln(4)

	// Status banner
	switch inv.Status {
	case constants.StatusPaid:
		pdf.SetFillColor(200, 255, 200)
	case constants.StatusSent:
		pdf.SetFillColor(220, 230, 255)
	default:
		pdf.SetFillColor(255, 235, 200)
	}
	pdf.CellFormat(190, 9, fmt.Sprintf("Status: %s", inv.Status), "1", 1, "C", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf write: %w", err)
	}

	s.logger.Info("export.pdf.ok",
		"invoice_number", inv.InvoiceNumber,
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
