package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
}

func TestExtractText_ReturnsAnnotation(t *testing.T) {
	var gotBody annotateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, annotatePath, r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{
				{"fullTextAnnotation": map[string]any{"text": "ACME SUPPLIES\nTOTAL $25.50"}},
			},
		})
	})

	image := []byte{0xFF, 0xD8, 0xFF}
	text, err := client.ExtractText(context.Background(), image)
	require.NoError(t, err)
	assert.Equal(t, "ACME SUPPLIES\nTOTAL $25.50", text)

	require.Len(t, gotBody.Requests, 1)
	assert.Equal(t, base64.StdEncoding.EncodeToString(image), gotBody.Requests[0].Image.Content)
	require.Len(t, gotBody.Requests[0].Features, 1)
	assert.Equal(t, "TEXT_DETECTION", gotBody.Requests[0].Features[0].Type)
}

// A response without a fullTextAnnotation is a blank page, not an error.
func TestExtractText_NoAnnotationIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{{}},
		})
	})

	text, err := client.ExtractText(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestExtractText_ServiceError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{
				{"error": map[string]any{"code": 7, "message": "permission denied"}},
			},
		})
	})

	_, err := client.ExtractText(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestExtractText_HTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.ExtractText(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
