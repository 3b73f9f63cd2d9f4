package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cloudbasha/elmvoice/internal/common"
	"github.com/cloudbasha/elmvoice/internal/entity"
)

// StructureInvoice implements InvoiceStructurer against the Gemini
// generateContent endpoint. Empty extracted text is a legitimate input and
// still produces a request; a non-JSON or non-conforming response is an
// error, never a partial draft.
func (c *Client) StructureInvoice(ctx context.Context, extractedText string) (entity.InvoiceDraft, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("genai.structure.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(extractedText),
	)

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{
				{"text": BuildInvoicePrompt(extractedText)},
			}},
		},
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.cfg.APIKey)
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("genai.structure.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.InvoiceDraft{}, nil, err
	}

	var gr struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &gr); err != nil {
		c.log.Error("genai.structure.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return entity.InvoiceDraft{}, raw, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		c.log.Error("genai.structure.no_candidates", "req_id", rid, "raw", string(raw))
		return entity.InvoiceDraft{}, raw, fmt.Errorf("no candidates in gemini response")
	}

	content := stripCodeFence(gr.Candidates[0].Content.Parts[0].Text)
	rawContent := []byte(content)

	// Normalize first, then validate strictly; bad output is rejected here
	// rather than flowing into the repository.
	cleaned, dropped, sErr := NormalizeDraftJSON(rawContent, c.log)
	if sErr != nil {
		c.log.Error("genai.structure.parse_failed",
			"req_id", rid, "error", sErr, "content", content,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.InvoiceDraft{}, rawContent, fmt.Errorf("parse model output: %w", sErr)
	}
	schema := BuildDraftInvoiceJSONSchema()
	if err := ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		c.log.Error("genai.structure.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(cleaned),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.InvoiceDraft{}, cleaned, fmt.Errorf("%w: %v", common.ErrSchemaMismatch, err)
	}

	var draft entity.InvoiceDraft
	if err := json.Unmarshal(cleaned, &draft); err != nil {
		c.log.Error("genai.structure.unmarshal_failed", "req_id", rid, "error", err)
		return entity.InvoiceDraft{}, cleaned, fmt.Errorf("unmarshal draft: %w", err)
	}

	c.log.Info("genai.structure.ok",
		"req_id", rid,
		"vendor", draft.Vendor,
		"client", draft.Client,
		"items", len(draft.Items),
		"dropped", len(dropped),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return draft, cleaned, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("gemini response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gemini status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
