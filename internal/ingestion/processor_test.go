package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuassist/backend/internal/rag"
)

type fakeIndexer struct {
	docs     []rag.Document
	indexErr error
	deleted  []string
	deleteOK bool
}

func (f *fakeIndexer) Index(ctx context.Context, docs []rag.Document) (int, error) {
	if f.indexErr != nil {
		return 0, f.indexErr
	}
	f.docs = append(f.docs, docs...)
	return len(docs), nil
}

func (f *fakeIndexer) Delete(ctx context.Context, ids []string) bool {
	f.deleted = append(f.deleted, ids...)
	return f.deleteOK
}

func TestIndexDocuments(t *testing.T) {
	indexer := &fakeIndexer{}
	processor := NewProcessor(indexer)

	count, err := processor.IndexDocuments(context.Background(), []rag.Document{
		{ID: "doc_1", Text: "refund policy details"},
		{Text: "shipping information"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, indexer.docs, 2)
	assert.Equal(t, "doc_1", indexer.docs[0].ID)
	assert.Contains(t, indexer.docs[1].ID, "doc_")
}

func TestIndexDocumentsRejectsEmpty(t *testing.T) {
	processor := NewProcessor(&fakeIndexer{})

	tests := []struct {
		name string
		docs []rag.Document
	}{
		{name: "no documents", docs: nil},
		{name: "empty text", docs: []rag.Document{{ID: "a", Text: ""}}},
		{name: "whitespace text", docs: []rag.Document{{ID: "a", Text: "   "}}},
		{name: "one bad in batch", docs: []rag.Document{{Text: "fine"}, {Text: ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := processor.IndexDocuments(context.Background(), tt.docs)

			assert.Error(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestIndexDocumentsExtractsHTML(t *testing.T) {
	indexer := &fakeIndexer{}
	processor := NewProcessor(indexer)

	html := `<html><head><style>body { color: red; }</style></head>
<body><nav>Menu</nav><p>Billing runs on   the first of each month.</p>
<script>track();</script><footer>Copyright</footer></body></html>`

	count, err := processor.IndexDocuments(context.Background(), []rag.Document{{HTML: html}})

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, indexer.docs, 1)
	assert.Equal(t, "Billing runs on the first of each month.", indexer.docs[0].Text)
}

func TestIndexDocumentsPrefersPlainText(t *testing.T) {
	indexer := &fakeIndexer{}
	processor := NewProcessor(indexer)

	_, err := processor.IndexDocuments(context.Background(), []rag.Document{
		{Text: "plain wins", HTML: "<p>markup loses</p>"},
	})

	require.NoError(t, err)
	assert.Equal(t, "plain wins", indexer.docs[0].Text)
}

func TestIndexDocumentsIndexerFailure(t *testing.T) {
	processor := NewProcessor(&fakeIndexer{indexErr: errors.New("unavailable")})

	count, err := processor.IndexDocuments(context.Background(), []rag.Document{{Text: "doc"}})

	assert.Error(t, err)
	assert.Zero(t, count)
}

func TestDeleteDocument(t *testing.T) {
	indexer := &fakeIndexer{deleteOK: true}
	processor := NewProcessor(indexer)

	assert.True(t, processor.DeleteDocument(context.Background(), "doc_1"))
	assert.Equal(t, []string{"doc_1"}, indexer.deleted)

	assert.False(t, processor.DeleteDocument(context.Background(), ""))
	assert.Len(t, indexer.deleted, 1)
}

func TestLoadSamples(t *testing.T) {
	indexer := &fakeIndexer{}
	processor := NewProcessor(indexer)

	count, err := processor.LoadSamples(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, count)

	ids := make([]string, 0, len(indexer.docs))
	for _, doc := range indexer.docs {
		ids = append(ids, doc.ID)
	}
	assert.Contains(t, ids, "sample_password_reset")
	assert.Contains(t, ids, "sample_billing_plans")
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "strips tags",
			html:     "<div><h1>Title</h1>\n<p>Body text.</p></div>",
			expected: "Title Body text.",
		},
		{
			name:     "collapses whitespace",
			html:     "<p>a\n\n  b\tc</p>",
			expected: "a b c",
		},
		{
			name:     "empty document",
			html:     "<html><body></body></html>",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractText(tt.html))
		})
	}
}
