package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexNumber_Decode(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		value float64
		valid bool
	}{
		{"plain number", `12.5`, 12.5, true},
		{"integer", `3`, 3, true},
		{"quoted number", `"42.10"`, 42.10, true},
		{"dollar prefix", `"$1,250.00"`, 1250.00, true},
		{"null", `null`, 0, false},
		{"empty string", `""`, 0, false},
		{"garbage string", `"two dozen"`, 0, false},
		{"bool", `true`, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var n FlexNumber
			require.NoError(t, json.Unmarshal([]byte(tc.in), &n))
			assert.Equal(t, tc.valid, n.Valid)
			if tc.valid {
				assert.Equal(t, tc.value, n.Value)
			}
		})
	}
}

func TestFlexNumber_Or(t *testing.T) {
	assert.Equal(t, 1.0, FlexNumber{}.Or(1))
	assert.Equal(t, 0.0, FlexNumber{Value: 0, Valid: true}.Or(1))
	assert.Equal(t, 7.0, FlexNumber{Value: 7, Valid: true}.Or(1))
}

// A draft from the structuring step may carry string numerics; decoding the
// whole document must survive them.
func TestInvoiceDraft_DecodeMixedNumerics(t *testing.T) {
	raw := `{
		"vendor": "Acme",
		"client": "CloudBasha",
		"items": [
			{"description": "Widget", "quantity": "2", "unitPrice": 9.99, "total": "19.98"},
			{"description": "Fee", "quantity": null, "unitPrice": "n/a", "total": null}
		],
		"subtotal": "19.98",
		"tax": 2.0,
		"total": null
	}`

	var d InvoiceDraft
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	require.Len(t, d.Items, 2)
	assert.Equal(t, 2.0, d.Items[0].Quantity.Or(1))
	assert.Equal(t, 9.99, d.Items[0].UnitPrice.Or(0))
	assert.Equal(t, 1.0, d.Items[1].Quantity.Or(1))
	assert.Equal(t, 0.0, d.Items[1].UnitPrice.Or(0))
	assert.False(t, d.Total.Valid)
}
