// Package rag holds the domain types shared across the retrieval,
// generation and pipeline packages.
package rag

import "time"

// Passage is a single retrieved piece of documentation with its
// relevance to the query. Scores are always within [0, 1].
type Passage struct {
	Text           string  `json:"text"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Metrics captures per-query timing and retrieval counts.
type Metrics struct {
	RetrievalLatencyMS  float64 `json:"retrieval_latency_ms"`
	GenerationLatencyMS float64 `json:"generation_latency_ms"`
	TotalLatencyMS      float64 `json:"total_latency_ms"`
	DocumentCount       int     `json:"document_count"`
}

// Outcome is the unit returned to the caller for every processed query.
// It is always well formed: failures carry an apology response and an
// error description instead of propagating.
type Outcome struct {
	QueryID            string    `json:"query_id"`
	Response           string    `json:"response"`
	RetrievedDocuments []Passage `json:"retrieved_documents"`
	Metrics            Metrics   `json:"metrics"`
	Success            bool      `json:"success"`
	Error              string    `json:"error,omitempty"`
	Mode               string    `json:"mode,omitempty"`
}

// ConversationEntry is one query/response exchange in a user's history.
type ConversationEntry struct {
	QueryID   string    `json:"query_id"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Document is a unit of knowledge submitted for indexing.
type Document struct {
	ID       string            `json:"id,omitempty"`
	Text     string            `json:"text"`
	HTML     string            `json:"html,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Operating modes of the query pipeline.
const (
	ModeLive = "live"
	ModeDemo = "demo"
)
