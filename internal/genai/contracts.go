package genai

import (
	"context"

	"github.com/cloudbasha/elmvoice/internal/entity"
)

// InvoiceStructurer is the interface the ingestion pipeline depends on.
// It returns the decoded draft plus the normalized raw JSON that passed the
// schema gate.
type InvoiceStructurer interface {
	StructureInvoice(ctx context.Context, extractedText string) (entity.InvoiceDraft, []byte, error)
}
