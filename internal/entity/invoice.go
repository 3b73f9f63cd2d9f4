package entity

import "github.com/cloudbasha/elmvoice/constants"

// InvoiceItem is a single line item. Invariant after any repository
// mutation: Total == Quantity * UnitPrice.
type InvoiceItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

// Invoice is the canonical invoice record. Subtotal, Tax and Total are
// derived fields computed from Items; they are never taken from a draft.
type Invoice struct {
	ID            string                  `json:"id"`
	InvoiceNumber string                  `json:"invoiceNumber"`
	Vendor        string                  `json:"vendor"`
	VendorAddress string                  `json:"vendorAddress"`
	VendorTaxID   string                  `json:"vendorTaxId"`
	Client        string                  `json:"client"`
	ClientAddress string                  `json:"clientAddress"`
	ClientEmail   string                  `json:"clientEmail"`
	Date          string                  `json:"date"`
	DueDate       string                  `json:"dueDate"`
	Items         []InvoiceItem           `json:"items"`
	Subtotal      float64                 `json:"subtotal"`
	Tax           float64                 `json:"tax"`
	Total         float64                 `json:"total"`
	Status        constants.InvoiceStatus `json:"status"`
	CreatedAt     string                  `json:"createdAt"`
}
