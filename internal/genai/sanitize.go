package genai

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// topLevelStrings are draft fields the template asks for as strings.
var topLevelStrings = []string{
	"vendor", "vendorAddress", "vendorTaxId", "client", "clientAddress",
	"clientEmail", "invoiceNumber", "date", "dueDate",
}

// NormalizeDraftJSON repairs the common ways the model deviates from the
// template before strict validation:
//   - null or missing string fields become ""
//   - null or missing items become []
//   - non-string scalars in string slots are stringified
//   - unknown keys are dropped (additionalProperties = false friendliness)
//
// It never invents line items or money values; out-of-shape items fail the
// schema gate afterwards.
func NormalizeDraftJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("normalize: decode: %w", err)
	}

	dropped := make([]string, 0, 4)

	for _, k := range topLevelStrings {
		switch t := m[k].(type) {
		case nil:
			m[k] = ""
		case string:
			// keep as is
		case float64:
			m[k] = fmt.Sprintf("%v", t)
			dropped = append(dropped, k+"(number)")
		case bool:
			m[k] = fmt.Sprintf("%v", t)
			dropped = append(dropped, k+"(bool)")
		default:
			m[k] = ""
			dropped = append(dropped, k+"(type)")
		}
	}

	switch items := m["items"].(type) {
	case nil:
		m["items"] = []any{}
	case []any:
		for _, it := range items {
			obj, ok := it.(map[string]any)
			if !ok {
				continue // schema gate rejects it
			}
			if _, ok := obj["description"].(string); !ok {
				if obj["description"] == nil {
					obj["description"] = ""
				}
			}
			for key := range obj {
				switch key {
				case "id", "description", "quantity", "unitPrice", "total":
				default:
					delete(obj, key)
					dropped = append(dropped, "items."+key+"(unknown)")
				}
			}
			if v, ok := obj["quantity"]; ok && v == nil {
				obj["quantity"] = 0
			}
			if v, ok := obj["unitPrice"]; ok && v == nil {
				obj["unitPrice"] = 0
			}
			if v, ok := obj["total"]; ok && v == nil {
				obj["total"] = 0
			}
		}
	}

	for _, k := range []string{"subtotal", "tax", "total"} {
		if m[k] == nil {
			m[k] = 0
		}
	}

	allowed := map[string]struct{}{
		"vendor": {}, "vendorAddress": {}, "vendorTaxId": {}, "client": {},
		"clientAddress": {}, "clientEmail": {}, "invoiceNumber": {}, "date": {},
		"dueDate": {}, "items": {}, "subtotal": {}, "tax": {}, "total": {},
	}
	for k := range m {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("normalize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("genai.structure.normalized", "dropped", dropped)
	}
	return out, dropped, nil
}
