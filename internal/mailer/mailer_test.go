package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudbasha/elmvoice/internal/entity"
)

func TestMockSender_UsesInvoiceEmailFallback(t *testing.T) {
	m := NewMockSender(nil)
	m.delay = 0

	inv := &entity.Invoice{InvoiceNumber: "INV-0001", ClientEmail: "billing@cloudbasha.com"}
	require.NoError(t, m.SendInvoice(context.Background(), inv, ""))
}

func TestMockSender_ExplicitRecipientWins(t *testing.T) {
	m := NewMockSender(nil)
	m.delay = 0

	inv := &entity.Invoice{InvoiceNumber: "INV-0001", ClientEmail: "billing@cloudbasha.com"}
	require.NoError(t, m.SendInvoice(context.Background(), inv, "override@elsewhere.com"))
}

func TestMockSender_NoRecipientErrors(t *testing.T) {
	m := NewMockSender(nil)
	m.delay = 0

	err := m.SendInvoice(context.Background(), &entity.Invoice{InvoiceNumber: "INV-0002"}, "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recipient")
}

func TestMockSender_HonorsContext(t *testing.T) {
	m := NewMockSender(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.SendInvoice(ctx, &entity.Invoice{ClientEmail: "x@y.com"}, "")
	assert.ErrorIs(t, err, context.Canceled)
}
