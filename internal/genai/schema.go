package genai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildDraftInvoiceJSONSchema returns the schema the model's response must
// satisfy after normalization. Money-ish fields admit either numbers or
// strings; the repository coerces them later.
func BuildDraftInvoiceJSONSchema() map[string]any {
	itemProps := map[string]any{
		"id":          map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"quantity":    moneyProp(),
		"unitPrice":   moneyProp(),
		"total":       moneyProp(),
	}
	props := map[string]any{
		"vendor":        map[string]any{"type": "string"},
		"vendorAddress": map[string]any{"type": "string"},
		"vendorTaxId":   map[string]any{"type": "string"},
		"client":        map[string]any{"type": "string"},
		"clientAddress": map[string]any{"type": "string"},
		"clientEmail":   map[string]any{"type": "string"},
		"invoiceNumber": map[string]any{"type": "string"},
		"date":          map[string]any{"type": "string"},
		"dueDate":       map[string]any{"type": "string"},
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           itemProps,
				"required":             []string{"description"},
			},
		},
		"subtotal": moneyProp(),
		"tax":      moneyProp(),
		"total":    moneyProp(),
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"vendor", "client", "items"},
	}
}

func moneyProp() map[string]any {
	return map[string]any{"type": []string{"number", "string"}}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
