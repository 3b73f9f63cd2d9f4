package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudbasha/elmvoice/internal/entity"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(context.Context, []byte) (string, error) {
	return f.text, f.err
}

type fakeStructurer struct {
	draft   entity.InvoiceDraft
	raw     []byte
	err     error
	gotText string
	called  bool
}

func (f *fakeStructurer) StructureInvoice(_ context.Context, text string) (entity.InvoiceDraft, []byte, error) {
	f.called = true
	f.gotText = text
	return f.draft, f.raw, f.err
}

func TestProcessReceipt_PassesTextThrough(t *testing.T) {
	llm := &fakeStructurer{
		draft: entity.InvoiceDraft{Vendor: "Acme"},
		raw:   []byte(`{"vendor":"Acme"}`),
	}
	p := NewProcessor(&fakeExtractor{text: "RECEIPT TEXT"}, llm, nil)

	result, err := p.ProcessReceipt(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "RECEIPT TEXT", result.ExtractedText)
	assert.Equal(t, "RECEIPT TEXT", llm.gotText)
	assert.Equal(t, "Acme", result.Draft.Vendor)
	assert.Equal(t, json.RawMessage(`{"vendor":"Acme"}`), result.RawDraft)
}

// A blank page yields empty text; structuring still runs and the empty draft
// flows through.
func TestProcessReceipt_EmptyTextStillStructures(t *testing.T) {
	llm := &fakeStructurer{raw: []byte(`{}`)}
	p := NewProcessor(&fakeExtractor{text: ""}, llm, nil)

	result, err := p.ProcessReceipt(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.True(t, llm.called)
	assert.Equal(t, "", result.ExtractedText)
	assert.Equal(t, "", llm.gotText)
}

func TestProcessReceipt_OCRErrorAborts(t *testing.T) {
	llm := &fakeStructurer{}
	p := NewProcessor(&fakeExtractor{err: errors.New("vision down")}, llm, nil)

	_, err := p.ProcessReceipt(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract text")
	assert.False(t, llm.called)
}

// A structuring failure produces a single error and no partial result.
func TestProcessReceipt_StructureErrorAborts(t *testing.T) {
	llm := &fakeStructurer{err: errors.New("not json")}
	p := NewProcessor(&fakeExtractor{text: "some text"}, llm, nil)

	result, err := p.ProcessReceipt(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "structure invoice")
	assert.Empty(t, result.ExtractedText)
	assert.Nil(t, result.RawDraft)
}
