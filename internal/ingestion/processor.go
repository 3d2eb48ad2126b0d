package ingestion

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docuassist/backend/internal/rag"
	"github.com/docuassist/backend/pkg/logger"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// Indexer embeds and upserts prepared documents.
type Indexer interface {
	Index(ctx context.Context, docs []rag.Document) (int, error)
	Delete(ctx context.Context, ids []string) bool
}

// Processor prepares submitted documents for indexing: validates text,
// assigns ids, and extracts plain text from HTML submissions.
type Processor struct {
	indexer Indexer
}

func NewProcessor(indexer Indexer) *Processor {
	return &Processor{indexer: indexer}
}

// IndexDocuments validates and indexes a batch, returning the number of
// documents stored. Entries with empty text are rejected up front.
func (p *Processor) IndexDocuments(ctx context.Context, docs []rag.Document) (int, error) {
	if len(docs) == 0 {
		return 0, fmt.Errorf("no documents provided")
	}

	prepared := make([]rag.Document, 0, len(docs))
	for _, doc := range docs {
		text := strings.TrimSpace(doc.Text)
		if text == "" && doc.HTML != "" {
			text = extractText(doc.HTML)
		}
		if text == "" {
			return 0, fmt.Errorf("each document must have non-empty text")
		}

		id := doc.ID
		if id == "" {
			id = fmt.Sprintf("doc_%s", uuid.New().String())
		}

		prepared = append(prepared, rag.Document{
			ID:       id,
			Text:     text,
			Metadata: doc.Metadata,
		})
	}

	count, err := p.indexer.Index(ctx, prepared)
	if err != nil {
		return 0, fmt.Errorf("failed to index documents: %w", err)
	}

	logger.Info("Documents ingested", zap.Int("count", count))

	return count, nil
}

// DeleteDocument removes a single document from the index.
func (p *Processor) DeleteDocument(ctx context.Context, docID string) bool {
	if docID == "" {
		return false
	}
	return p.indexer.Delete(ctx, []string{docID})
}

// extractText strips markup from an HTML submission, collapsing the
// remaining whitespace.
func extractText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Warn("Failed to parse HTML document", zap.Error(err))
		return ""
	}

	doc.Find("script, style, nav, header, footer").Remove()

	text := doc.Text()
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
