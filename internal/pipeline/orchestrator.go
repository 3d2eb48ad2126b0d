// Package pipeline coordinates retrieval, grounded generation, demo-mode
// fallback, conversation history and feedback capture for each query.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docuassist/backend/internal/conversation"
	"github.com/docuassist/backend/internal/demo"
	"github.com/docuassist/backend/internal/feedback"
	"github.com/docuassist/backend/internal/generation"
	"github.com/docuassist/backend/internal/metrics"
	"github.com/docuassist/backend/internal/rag"
	"github.com/docuassist/backend/internal/retrieval"
	"github.com/docuassist/backend/internal/storage/models"
	"github.com/docuassist/backend/pkg/logger"
)

const (
	maxQueryLength    = 1000
	maxUserIDLength   = 100
	maxFeedbackLength = 500

	// Answer used when the pipeline itself fails; provider failures are
	// already absorbed below this layer.
	failureAnswer = "An error occurred processing your request. Please try again."
)

// Config carries the orchestration knobs.
type Config struct {
	TopK               int
	SimulatedLatencyMS float64
	HistoryWindow      int
}

// RecordWriter persists processed queries; nil disables persistence.
type RecordWriter interface {
	InsertQueryRecord(record *models.QueryRecord) error
}

// Orchestrator runs the query pipeline. The operating mode is decided
// once at construction: when the retrieval or generation client is
// absent the instance stays in demo mode for its lifetime.
type Orchestrator struct {
	engine             engine
	conversations      *conversation.Store
	sink               *feedback.Sink
	records            RecordWriter
	simulatedLatencyMS float64
}

func New(cfg Config, retriever *retrieval.Client, generator *generation.Client, sink *feedback.Sink, records RecordWriter) *Orchestrator {
	if cfg.TopK == 0 {
		cfg.TopK = 3
	}
	if cfg.SimulatedLatencyMS == 0 {
		cfg.SimulatedLatencyMS = 150.0
	}

	var eng engine
	if retriever != nil && generator != nil {
		eng = &liveEngine{retriever: retriever, generator: generator, topK: cfg.TopK}
	} else {
		logger.Warn("Retrieval backend unavailable, running in demo mode")
		eng = &demoEngine{matcher: demo.NewMatcher()}
	}

	return &Orchestrator{
		engine:             eng,
		conversations:      conversation.NewStore(cfg.HistoryWindow),
		sink:               sink,
		records:            records,
		simulatedLatencyMS: cfg.SimulatedLatencyMS,
	}
}

// ProcessQuery runs one query end to end and always returns a
// well-formed outcome, never a raw error.
func (o *Orchestrator) ProcessQuery(ctx context.Context, queryText, userID, systemPrompt string) rag.Outcome {
	queryID := uuid.New().String()
	start := time.Now()

	if userID == "" {
		userID = "anonymous"
	}

	queryText = strings.TrimSpace(queryText)
	if queryText == "" || len(queryText) > maxQueryLength {
		return rag.Outcome{
			QueryID:            queryID,
			Response:           failureAnswer,
			RetrievedDocuments: []rag.Passage{},
			Success:            false,
			Error:              fmt.Sprintf("query must be between 1 and %d characters", maxQueryLength),
		}
	}

	logger.Info("Processing query",
		zap.String("query_id", queryID),
		zap.String("user_id", userID),
		zap.String("mode", o.engine.Mode()),
	)

	outcome := o.run(ctx, queryID, queryText, systemPrompt, start)

	o.conversations.Append(userID, rag.ConversationEntry{
		QueryID:   queryID,
		Query:     queryText,
		Response:  outcome.Response,
		Timestamp: time.Now(),
	})

	o.persist(userID, queryText, outcome)

	status := "success"
	if !outcome.Success {
		status = "failure"
	}
	metrics.QueryTotal.WithLabelValues(o.engine.Mode(), status).Inc()
	metrics.QueryDuration.WithLabelValues(o.engine.Mode()).Observe(time.Since(start).Seconds())
	metrics.RetrievedDocuments.Observe(float64(outcome.Metrics.DocumentCount))

	logger.Info("Query processed",
		zap.String("query_id", queryID),
		zap.Bool("success", outcome.Success),
		zap.Int("document_count", outcome.Metrics.DocumentCount),
		zap.Float64("total_latency_ms", outcome.Metrics.TotalLatencyMS),
	)

	return outcome
}

// run executes the retrieval and generation phases. Any panic escaping
// them is an orchestration bug and becomes a recorded failure outcome.
func (o *Orchestrator) run(ctx context.Context, queryID, queryText, systemPrompt string, start time.Time) (outcome rag.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Pipeline failure",
				zap.String("query_id", queryID),
				zap.Any("panic", r),
			)
			outcome = rag.Outcome{
				QueryID:            queryID,
				Response:           failureAnswer,
				RetrievedDocuments: []rag.Passage{},
				Metrics: rag.Metrics{
					TotalLatencyMS: float64(time.Since(start).Microseconds()) / 1000.0,
				},
				Success: false,
				Error:   fmt.Sprintf("%v", r),
			}
		}
	}()

	retrievalStart := time.Now()
	passages, err := o.engine.Retrieve(ctx, queryText)
	retrievalLatency := float64(time.Since(retrievalStart).Microseconds()) / 1000.0

	if err != nil {
		// Degraded, not fatal: generation proceeds with empty context.
		logger.Warn("Retrieval failed, continuing without context",
			zap.String("query_id", queryID),
			zap.Float64("retrieval_latency_ms", retrievalLatency),
			zap.Error(err),
		)
		passages = nil
	}
	if len(passages) == 0 {
		logger.Warn("No relevant documents found", zap.String("query_id", queryID))
	}

	generationStart := time.Now()
	answer, genErr := o.engine.Generate(ctx, queryText, passages, systemPrompt)
	generationLatency := float64(time.Since(generationStart).Microseconds()) / 1000.0
	if genErr != nil {
		// The generation client already substituted its fallback answer.
		logger.Warn("Generation degraded to fallback answer",
			zap.String("query_id", queryID),
			zap.Float64("generation_latency_ms", generationLatency),
			zap.Error(genErr),
		)
	}

	mode := ""
	if o.engine.Mode() == rag.ModeDemo {
		mode = rag.ModeDemo
		// No real model call happened; keep the metrics shape uniform.
		generationLatency = o.simulatedLatencyMS
	}

	if passages == nil {
		passages = []rag.Passage{}
	}

	return rag.Outcome{
		QueryID:            queryID,
		Response:           answer,
		RetrievedDocuments: passages,
		Metrics: rag.Metrics{
			RetrievalLatencyMS:  retrievalLatency,
			GenerationLatencyMS: generationLatency,
			TotalLatencyMS:      float64(time.Since(start).Microseconds()) / 1000.0,
			DocumentCount:       len(passages),
		},
		Success: true,
		Mode:    mode,
	}
}

func (o *Orchestrator) persist(userID, queryText string, outcome rag.Outcome) {
	if o.records == nil {
		return
	}

	record := &models.QueryRecord{
		ID:                  outcome.QueryID,
		UserID:              userID,
		QueryText:           queryText,
		Response:            outcome.Response,
		Mode:                o.engine.Mode(),
		Success:             outcome.Success,
		DocumentCount:       outcome.Metrics.DocumentCount,
		RetrievalLatencyMS:  outcome.Metrics.RetrievalLatencyMS,
		GenerationLatencyMS: outcome.Metrics.GenerationLatencyMS,
		TotalLatencyMS:      outcome.Metrics.TotalLatencyMS,
		CreatedAt:           time.Now(),
	}

	if err := o.records.InsertQueryRecord(record); err != nil {
		logger.Warn("Failed to persist query record",
			zap.String("query_id", outcome.QueryID),
			zap.Error(err),
		)
	}
}

// History returns the user's recent exchanges, oldest first.
func (o *Orchestrator) History(userID string) []rag.ConversationEntry {
	return o.conversations.History(userID)
}

// CollectFeedback validates and records a rating. Validation failures
// are rejected before reaching the sink; the bool mirrors the sink's
// write result.
func (o *Orchestrator) CollectFeedback(ctx context.Context, queryID, userID string, rating int, text string) (bool, error) {
	if queryID == "" || len(queryID) > maxUserIDLength {
		return false, fmt.Errorf("invalid query id")
	}
	if userID == "" || len(userID) > maxUserIDLength {
		return false, fmt.Errorf("invalid user id")
	}
	if rating < 1 || rating > 5 {
		return false, fmt.Errorf("rating must be between 1 and 5")
	}
	if len(text) > maxFeedbackLength {
		return false, fmt.Errorf("feedback text must not exceed %d characters", maxFeedbackLength)
	}

	if o.sink == nil {
		return false, fmt.Errorf("feedback sink unavailable")
	}

	return o.sink.Record(ctx, queryID, userID, rating, text), nil
}

// HealthStatus aggregates component health for reporting.
type HealthStatus struct {
	Status     string                 `json:"status"`
	Mode       string                 `json:"mode"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Health reports pipeline health. In demo mode the instance is healthy
// but degraded, and says so via the mode field.
func (o *Orchestrator) Health(ctx context.Context) HealthStatus {
	componentHealth := o.engine.Health(ctx)

	return HealthStatus{
		Status: componentHealth.Status,
		Mode:   o.engine.Mode(),
		Components: map[string]interface{}{
			"vector_store": componentHealth,
		},
	}
}

// Mode exposes the operating mode chosen at construction.
func (o *Orchestrator) Mode() string {
	return o.engine.Mode()
}
