// Package mailer delivers invoices to clients. The current implementation is
// a mock transport that records the delivery instead of sending real mail.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudbasha/elmvoice/internal/entity"
)

type Sender interface {
	SendInvoice(ctx context.Context, inv *entity.Invoice, recipient string) error
}

type MockSender struct {
	logger *slog.Logger
	delay  time.Duration
}

func NewMockSender(logger *slog.Logger) *MockSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockSender{logger: logger, delay: 150 * time.Millisecond}
}

// SendInvoice pretends to deliver the invoice. The recipient falls back to
// the invoice's client email when empty; a missing address is an error.
func (m *MockSender) SendInvoice(ctx context.Context, inv *entity.Invoice, recipient string) error {
	to := strings.TrimSpace(recipient)
	if to == "" {
		to = strings.TrimSpace(inv.ClientEmail)
	}
	if to == "" {
		return fmt.Errorf("invoice %s has no recipient email", inv.InvoiceNumber)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.delay):
	}

	m.logger.Info("mailer.sent",
		"invoice_number", inv.InvoiceNumber,
		"to", to,
		"total", inv.Total,
	)
	return nil
}
