package constants

// InvoiceStatus is the canonical lifecycle status for an invoice.
type InvoiceStatus string

// Stable values (these exact strings are persisted).
const (
	StatusDraft     InvoiceStatus = "draft"
	StatusGenerated InvoiceStatus = "generated" // only status CreateInvoice produces
	StatusSent      InvoiceStatus = "sent"
	StatusPaid      InvoiceStatus = "paid"
)

// IsValidStatus reports whether s is one of the known invoice statuses.
func IsValidStatus(s string) bool {
	switch InvoiceStatus(s) {
	case StatusDraft, StatusGenerated, StatusSent, StatusPaid:
		return true
	}
	return false
}
