package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudbasha/elmvoice/internal/common"
)

func geminiReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	err := json.NewEncoder(w).Encode(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{
				"parts": []map[string]any{{"text": content}},
			}},
		},
	})
	require.NoError(t, err)
}

func newTestStructurer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gemini-test"}, nil)
}

const validDraft = `{
	"vendor": "Acme Supplies",
	"vendorAddress": "1 Acme Way",
	"client": "CloudBasha",
	"clientAddress": "",
	"invoiceNumber": "",
	"date": "2026-08-30",
	"dueDate": "2026-09-29",
	"items": [{"description": "Widget", "quantity": 2, "unitPrice": 10.0, "total": 20.0}],
	"subtotal": 20.0,
	"tax": 2.0,
	"total": 22.0
}`

func TestStructureInvoice_ValidJSON(t *testing.T) {
	var prompt string
	client := newTestStructurer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-test:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		prompt = body.Contents[0].Parts[0].Text

		geminiReply(t, w, validDraft)
	})

	draft, raw, err := client.StructureInvoice(context.Background(), "ACME receipt text")
	require.NoError(t, err)
	assert.Equal(t, "Acme Supplies", draft.Vendor)
	assert.Equal(t, "CloudBasha", draft.Client)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, 2.0, draft.Items[0].Quantity.Or(0))
	assert.NotEmpty(t, raw)
	assert.Contains(t, prompt, "ACME receipt text")
}

// Markdown code fences around the JSON are stripped before parsing.
func TestStructureInvoice_FencedJSON(t *testing.T) {
	client := newTestStructurer(t, func(w http.ResponseWriter, _ *http.Request) {
		geminiReply(t, w, "```json\n"+validDraft+"\n```")
	})

	draft, _, err := client.StructureInvoice(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "Acme Supplies", draft.Vendor)
}

// Empty extracted text (blank page) is still a legitimate request.
func TestStructureInvoice_EmptyTextStillSent(t *testing.T) {
	called := false
	client := newTestStructurer(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		geminiReply(t, w, `{"vendor":"","vendorAddress":"","client":"","clientAddress":"","invoiceNumber":"","date":"","dueDate":"","items":[],"subtotal":0,"tax":0,"total":0}`)
	})

	draft, _, err := client.StructureInvoice(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, draft.Items)
	assert.Equal(t, "", draft.Vendor)
}

// Prose instead of JSON fails the pipeline; no draft comes back.
func TestStructureInvoice_NonJSONFails(t *testing.T) {
	client := newTestStructurer(t, func(w http.ResponseWriter, _ *http.Request) {
		geminiReply(t, w, "I'm sorry, I could not find an invoice in this image.")
	})

	_, _, err := client.StructureInvoice(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse model output")
}

// Structurally wrong items (not objects) are rejected by the schema gate.
func TestStructureInvoice_SchemaMismatch(t *testing.T) {
	client := newTestStructurer(t, func(w http.ResponseWriter, _ *http.Request) {
		geminiReply(t, w, `{"vendor":"A","vendorAddress":"","client":"B","clientAddress":"","invoiceNumber":"","date":"","dueDate":"","items":["not an object"],"subtotal":0,"tax":0,"total":0}`)
	})

	_, _, err := client.StructureInvoice(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSchemaMismatch)
}

func TestStructureInvoice_HTTPError(t *testing.T) {
	client := newTestStructurer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "backend overloaded", http.StatusServiceUnavailable)
	})

	_, _, err := client.StructureInvoice(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestBuildInvoicePrompt_EmbedsText(t *testing.T) {
	p := BuildInvoicePrompt("RECEIPT BODY")
	assert.Contains(t, p, "RECEIPT BODY")
	for _, key := range []string{"vendor", "vendorAddress", "client", "clientAddress", "invoiceNumber", "date", "dueDate", "items", "subtotal", "tax", "total"} {
		assert.Contains(t, p, key)
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}

func TestNormalizeDraftJSON_FillsDefaultsAndDropsUnknown(t *testing.T) {
	in := []byte(`{
		"vendor": "Acme",
		"client": null,
		"confidence": 0.92,
		"items": [{"description": null, "quantity": null, "sku": "X1"}]
	}`)

	out, dropped, err := NormalizeDraftJSON(in, nil)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "", m["client"])
	assert.Equal(t, "", m["dueDate"])
	assert.NotContains(t, m, "confidence")

	items := m["items"].([]any)
	item := items[0].(map[string]any)
	assert.Equal(t, "", item["description"])
	assert.NotContains(t, item, "sku")

	joined := strings.Join(dropped, ",")
	assert.Contains(t, joined, "confidence")
	assert.Contains(t, joined, "sku")
}

func TestNormalizeDraftJSON_RejectsNonObject(t *testing.T) {
	_, _, err := NormalizeDraftJSON([]byte(`"just a string"`), nil)
	require.Error(t, err)
}

func TestDraftSchema_AcceptsStringNumerics(t *testing.T) {
	doc := []byte(`{
		"vendor": "A", "vendorAddress": "", "client": "B", "clientAddress": "",
		"invoiceNumber": "", "date": "", "dueDate": "",
		"items": [{"description": "Widget", "quantity": "2", "unitPrice": "$10.00", "total": "20"}],
		"subtotal": "20", "tax": 2, "total": "22"
	}`)
	require.NoError(t, ValidateJSONAgainstSchema(BuildDraftInvoiceJSONSchema(), doc))
}

func TestDraftSchema_RejectsMissingRequired(t *testing.T) {
	doc := []byte(`{"vendor": "A"}`)
	require.Error(t, ValidateJSONAgainstSchema(BuildDraftInvoiceJSONSchema(), doc))
}
