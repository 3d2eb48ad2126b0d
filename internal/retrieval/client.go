package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docuassist/backend/internal/metrics"
	"github.com/docuassist/backend/internal/rag"
	"github.com/docuassist/backend/internal/vector/milvus"
	"github.com/docuassist/backend/pkg/logger"
	"github.com/docuassist/backend/pkg/utils"
)

// Embedder turns text into dense vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Index is the nearest-neighbor store the client searches and maintains.
type Index interface {
	Search(ctx context.Context, vector []float32, topK int) ([]milvus.Match, error)
	Upsert(ctx context.Context, rows []milvus.Row) error
	Delete(ctx context.Context, ids []string) error
	Stats(ctx context.Context) (int64, error)
}

// EmbeddingCache is an optional read-through cache for query embeddings.
type EmbeddingCache interface {
	GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, textHash string, embedding []float32, ttl time.Duration) error
}

// Health reports index availability and size.
type Health struct {
	Status       string `json:"status"`
	TotalVectors int64  `json:"total_vectors"`
	Error        string `json:"error,omitempty"`
}

// Client performs semantic retrieval: embed the query, search the index,
// map matches to scored passages.
type Client struct {
	embedder Embedder
	index    Index
	cache    EmbeddingCache
	cacheTTL time.Duration
}

func NewClient(embedder Embedder, index Index, cache EmbeddingCache) *Client {
	return &Client{
		embedder: embedder,
		index:    index,
		cache:    cache,
		cacheTTL: time.Hour,
	}
}

// Retrieve returns up to topK passages ordered by the index's rank.
// A provider failure is returned as an error so the caller can tell it
// apart from a legitimately empty result; both are valid degraded states.
func (c *Client) Retrieve(ctx context.Context, queryText string, topK int) ([]rag.Passage, error) {
	embedding, err := c.queryEmbedding(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	matches, err := c.index.Search(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	passages := make([]rag.Passage, 0, len(matches))
	for _, match := range matches {
		passages = append(passages, rag.Passage{
			Text:           match.Text,
			RelevanceScore: clampScore(float64(match.Score)),
		})
	}

	logger.Debug("Documents retrieved",
		zap.Int("top_k", topK),
		zap.Int("count", len(passages)),
	)

	return passages, nil
}

func (c *Client) queryEmbedding(ctx context.Context, text string) ([]float32, error) {
	if c.cache == nil {
		return c.embedder.Embed(ctx, text)
	}

	key := utils.HashText(text)
	cached, found, err := c.cache.GetEmbedding(ctx, key)
	if err != nil {
		logger.Warn("Embedding cache read failed", zap.Error(err))
	}
	if found {
		metrics.CacheHits.WithLabelValues("embedding").Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("embedding").Inc()

	embedding, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetEmbedding(ctx, key, embedding, c.cacheTTL); err != nil {
		logger.Warn("Embedding cache write failed", zap.Error(err))
	}

	return embedding, nil
}

// Index embeds and upserts documents keyed by id, assigning a fresh id
// where absent. Documents with empty text are rejected.
func (c *Client) Index(ctx context.Context, docs []rag.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Text == "" {
			return 0, fmt.Errorf("document text must not be empty")
		}
		texts = append(texts, doc.Text)
	}

	embeddings, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("batch embedding failed: %w", err)
	}

	if len(embeddings) != len(docs) {
		return 0, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(embeddings), len(docs))
	}

	rows := make([]milvus.Row, 0, len(docs))
	now := time.Now()
	for i, doc := range docs {
		id := doc.ID
		if id == "" {
			id = fmt.Sprintf("doc_%s", uuid.New().String())
		}
		rows = append(rows, milvus.Row{
			DocID:     id,
			Embedding: embeddings[i],
			Text:      doc.Text,
			Source:    doc.Metadata["source"],
			Category:  doc.Metadata["category"],
			Timestamp: now,
		})
	}

	if err := c.index.Upsert(ctx, rows); err != nil {
		return 0, fmt.Errorf("upsert failed: %w", err)
	}

	metrics.DocumentsIndexed.Add(float64(len(rows)))
	logger.Info("Documents indexed", zap.Int("count", len(rows)))

	return len(rows), nil
}

// Delete removes documents by id.
func (c *Client) Delete(ctx context.Context, ids []string) bool {
	if err := c.index.Delete(ctx, ids); err != nil {
		logger.Error("Document deletion failed", zap.Error(err), zap.Int("count", len(ids)))
		return false
	}
	return true
}

// Health checks index reachability. Repeated calls have no side effects.
func (c *Client) Health(ctx context.Context) Health {
	count, err := c.index.Stats(ctx)
	if err != nil {
		return Health{Status: "unhealthy", Error: err.Error()}
	}
	return Health{Status: "healthy", TotalVectors: count}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
