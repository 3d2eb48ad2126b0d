package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:19530", cfg.Milvus.Endpoint)
	assert.Equal(t, 1536, cfg.Milvus.VectorDim)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	assert.Equal(t, "text-embedding-3-small", cfg.LLM.EmbeddingModel)
	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.Equal(t, 0.8, cfg.RAG.HighRelevance)
	assert.Equal(t, 0.6, cfg.RAG.MediumRelevance)
	assert.Equal(t, 150.0, cfg.RAG.SimulatedLatencyMS)
	assert.Equal(t, 10, cfg.RAG.HistoryWindow)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DOCUASSIST_RAG_TOPK", "5")
	t.Setenv("DOCUASSIST_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, 9090, cfg.Server.Port)
}
