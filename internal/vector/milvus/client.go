package milvus

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/docuassist/backend/pkg/logger"
)

const (
	ivfNlist  = 1024
	ivfNprobe = 16
)

// vectorIndex defines the IVF_FLAT index over the embedding field.
// Embeddings are unit-norm, so the IP metric yields cosine similarity.
func vectorIndex() (entity.Index, error) {
	return entity.NewIndexIvfFlat(entity.IP, ivfNlist)
}

func searchParam() (entity.SearchParam, error) {
	return entity.NewIndexIvfFlatSearchParam(ivfNprobe)
}

// Client manages the documentation collection in Milvus.
type Client struct {
	client         client.Client
	collectionName string
	vectorDim      int
}

// Row is one document ready for upsert.
type Row struct {
	DocID     string
	Embedding []float32
	Text      string
	Source    string
	Category  string
	Timestamp time.Time
}

// Match is one ranked search hit.
type Match struct {
	DocID    string
	Text     string
	Source   string
	Category string
	Score    float32
}

func NewClient(endpoint, apiKey, collectionName string, vectorDim int) (*Client, error) {
	c, err := client.NewGrpcClient(
		context.Background(),
		endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
		vectorDim:      vectorDim,
	}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

// EnsureCollection creates and loads the collection if it does not exist.
func (m *Client) EnsureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if has {
		logger.Info("Collection already exists", zap.String("collection", m.collectionName))
		return nil
	}

	schema := &entity.Schema{
		CollectionName: m.collectionName,
		Description:    "Support documentation embeddings",
		Fields: []*entity.Field{
			{
				Name:       "doc_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.vectorDim),
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "4096",
				},
			},
			{
				Name:     "source",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "category",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "timestamp",
				DataType: entity.FieldTypeInt64,
			},
		},
	}

	err = m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := vectorIndex()
	if err != nil {
		return fmt.Errorf("failed to build index definition: %w", err)
	}
	err = m.client.CreateIndex(ctx, m.collectionName, "embedding", idx, false)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = m.client.LoadCollection(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", m.collectionName))

	return nil
}

// Upsert writes rows keyed by doc_id, overwriting on id collision.
func (m *Client) Upsert(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	docIDs := make([]string, len(rows))
	embeddings := make([][]float32, len(rows))
	texts := make([]string, len(rows))
	sources := make([]string, len(rows))
	categories := make([]string, len(rows))
	timestamps := make([]int64, len(rows))

	for i, row := range rows {
		docIDs[i] = row.DocID
		embeddings[i] = row.Embedding
		texts[i] = row.Text
		sources[i] = row.Source
		categories[i] = row.Category
		timestamps[i] = row.Timestamp.Unix()
	}

	_, err := m.client.Upsert(
		ctx,
		m.collectionName,
		"",
		entity.NewColumnVarChar("doc_id", docIDs),
		entity.NewColumnFloatVector("embedding", m.vectorDim, embeddings),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("source", sources),
		entity.NewColumnVarChar("category", categories),
		entity.NewColumnInt64("timestamp", timestamps),
	)

	if err != nil {
		return fmt.Errorf("failed to upsert rows: %w", err)
	}

	err = m.client.Flush(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Info("Rows upserted into vector store", zap.Int("count", len(rows)))

	return nil
}

// Search returns the topK nearest rows by inner product, in the rank
// order the index produced.
func (m *Client) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Match, error) {
	sp, err := searchParam()
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	searchResult, err := m.client.Search(
		ctx,
		m.collectionName,
		[]string{},
		"",
		[]string{"doc_id", "text", "source", "category"},
		[]entity.Vector{entity.FloatVector(queryEmbedding)},
		"embedding",
		entity.IP,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	matches := make([]Match, 0)
	for _, sr := range searchResult {
		for i := 0; i < sr.ResultCount; i++ {
			docIDCol := sr.Fields.GetColumn("doc_id")
			textCol := sr.Fields.GetColumn("text")
			sourceCol := sr.Fields.GetColumn("source")
			categoryCol := sr.Fields.GetColumn("category")

			docID, _ := docIDCol.Get(i)
			text, _ := textCol.Get(i)
			source, _ := sourceCol.Get(i)
			category, _ := categoryCol.Get(i)

			matches = append(matches, Match{
				DocID:    docID.(string),
				Text:     text.(string),
				Source:   source.(string),
				Category: category.(string),
				Score:    sr.Scores[i],
			})
		}
	}

	logger.Debug("Vector search completed",
		zap.Int("top_k", topK),
		zap.Int("matches", len(matches)),
	)

	return matches, nil
}

// Delete removes rows by doc_id.
func (m *Client) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = strconv.Quote(id)
	}
	expr := fmt.Sprintf("doc_id in [%s]", strings.Join(quoted, ", "))

	err := m.client.Delete(ctx, m.collectionName, "", expr)
	if err != nil {
		return fmt.Errorf("failed to delete rows: %w", err)
	}

	logger.Info("Rows deleted from vector store", zap.Int("count", len(ids)))

	return nil
}

// Stats reports the number of stored vectors.
func (m *Client) Stats(ctx context.Context) (int64, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.collectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection statistics: %w", err)
	}

	count, err := strconv.ParseInt(stats["row_count"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse row count: %w", err)
	}

	return count, nil
}
