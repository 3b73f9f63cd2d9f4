package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexNumber decodes a JSON value that should be a number but may arrive as a
// quoted string, null, or garbage from the generative-text service. Invalid
// values leave Valid false instead of failing the whole document.
type FlexNumber struct {
	Value float64
	Valid bool
}

func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = FlexNumber{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = FlexNumber{}
			return nil
		}
		s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
		s = strings.ReplaceAll(s, ",", "")
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*n = FlexNumber{}
			return nil
		}
		*n = FlexNumber{Value: v, Valid: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		*n = FlexNumber{}
		return nil
	}
	*n = FlexNumber{Value: v, Valid: true}
	return nil
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Or returns the parsed value, or def when the source value was unusable.
func (n FlexNumber) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// DraftItem is an unsanitized line item as produced by the structuring
// adapter or an edit form. Quantity and UnitPrice tolerate string values;
// Total is ignored and recomputed by the repository.
type DraftItem struct {
	ID          string     `json:"id,omitempty"`
	Description string     `json:"description"`
	Quantity    FlexNumber `json:"quantity"`
	UnitPrice   FlexNumber `json:"unitPrice"`
	Total       FlexNumber `json:"total"`
}

// InvoiceDraft is the unvalidated invoice shape handed to CreateInvoice.
// Identity, status, timestamps and all derived money fields in the draft are
// discarded and reassigned by the repository.
type InvoiceDraft struct {
	Vendor        string      `json:"vendor"`
	VendorAddress string      `json:"vendorAddress"`
	VendorTaxID   string      `json:"vendorTaxId,omitempty"`
	Client        string      `json:"client"`
	ClientAddress string      `json:"clientAddress"`
	ClientEmail   string      `json:"clientEmail,omitempty"`
	InvoiceNumber string      `json:"invoiceNumber,omitempty"`
	Date          string      `json:"date"`
	DueDate       string      `json:"dueDate"`
	Items         []DraftItem `json:"items"`
	Subtotal      FlexNumber  `json:"subtotal"`
	Tax           FlexNumber  `json:"tax"`
	Total         FlexNumber  `json:"total"`
}

// InvoicePatch carries a partial update; nil fields are left untouched.
// When Items is present the repository recomputes all derived totals.
type InvoicePatch struct {
	Vendor        *string      `json:"vendor,omitempty"`
	VendorAddress *string      `json:"vendorAddress,omitempty"`
	VendorTaxID   *string      `json:"vendorTaxId,omitempty"`
	Client        *string      `json:"client,omitempty"`
	ClientAddress *string      `json:"clientAddress,omitempty"`
	ClientEmail   *string      `json:"clientEmail,omitempty"`
	Date          *string      `json:"date,omitempty"`
	DueDate       *string      `json:"dueDate,omitempty"`
	Items         *[]DraftItem `json:"items,omitempty"`
	Status        *string      `json:"status,omitempty"`
}
