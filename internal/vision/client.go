package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// annotatePath is the images:annotate endpoint of the Vision REST API.
const annotatePath = "/v1/images:annotate"

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"` // base64-encoded bytes
}

type feature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []struct {
		FullTextAnnotation *struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// ExtractText sends the raw image bytes through text detection and returns
// the first full-text annotation, or an empty string when the service finds
// no text. No size or format validation is performed here.
func (c *Client) ExtractText(ctx context.Context, image []byte) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	body := annotateRequest{
		Requests: []imageRequest{{
			Image:    imageContent{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []feature{{Type: "TEXT_DETECTION"}},
		}},
	}

	c.log.Info("vision.annotate.start", "req_id", rid, "image_bytes", len(image))

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + annotatePath + "?key=" + c.cfg.APIKey
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("vision.annotate.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var out annotateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Error("vision.annotate.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return "", fmt.Errorf("decode vision response: %w", err)
	}
	if len(out.Responses) == 0 {
		c.log.Warn("vision.annotate.empty_response", "req_id", rid)
		return "", nil
	}
	r := out.Responses[0]
	if r.Error != nil {
		c.log.Error("vision.annotate.service_error",
			"req_id", rid, "code", r.Error.Code, "message", r.Error.Message,
		)
		return "", fmt.Errorf("vision error %d: %s", r.Error.Code, r.Error.Message)
	}

	text := ""
	if r.FullTextAnnotation != nil {
		text = r.FullTextAnnotation.Text
	}
	c.log.Info("vision.annotate.ok",
		"req_id", rid,
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

func (c *Client) post(ctx context.Context, url string, body any) ([]byte, error) {
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
		return nil, fmt.Errorf("vision http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("vision response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vision status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
