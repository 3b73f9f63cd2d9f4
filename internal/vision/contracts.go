package vision

import "context"

// TextExtractor is the interface the ingestion pipeline depends on.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}
