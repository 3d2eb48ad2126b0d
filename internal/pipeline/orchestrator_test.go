package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuassist/backend/internal/feedback"
	"github.com/docuassist/backend/internal/rag"
	"github.com/docuassist/backend/internal/retrieval"
	"github.com/docuassist/backend/internal/storage/models"
)

func newDemoOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	return New(Config{}, nil, nil, nil, nil)
}

func TestDemoModeKnownTopic(t *testing.T) {
	orch := newDemoOrchestrator(t)

	outcome := orch.ProcessQuery(context.Background(), "How do I reset my password?", "user-1", "")

	assert.True(t, outcome.Success)
	assert.Equal(t, "demo", outcome.Mode)
	assert.NotEmpty(t, outcome.QueryID)
	assert.Contains(t, outcome.Response, "Forgot Password?")
	require.Len(t, outcome.RetrievedDocuments, 1)
	assert.InDelta(t, 0.95, outcome.RetrievedDocuments[0].RelevanceScore, 0.001)
	assert.Equal(t, 150.0, outcome.Metrics.GenerationLatencyMS)
}

func TestDemoModeUnknownTopic(t *testing.T) {
	orch := newDemoOrchestrator(t)

	outcome := orch.ProcessQuery(context.Background(), "What is the airspeed of a swallow?", "user-1", "")

	assert.True(t, outcome.Success)
	assert.Contains(t, outcome.Response, "demo mode")
	require.Len(t, outcome.RetrievedDocuments, 1)
	assert.Equal(t, 0.5, outcome.RetrievedDocuments[0].RelevanceScore)
}

func TestDocumentCountMatchesRetrieved(t *testing.T) {
	orch := newDemoOrchestrator(t)

	for _, query := range []string{
		"How do I reset my password?",
		"What are your pricing plans?",
		"something entirely off topic",
	} {
		outcome := orch.ProcessQuery(context.Background(), query, "user-1", "")
		assert.Equal(t, len(outcome.RetrievedDocuments), outcome.Metrics.DocumentCount, "query: %s", query)
	}
}

func TestProcessQueryValidation(t *testing.T) {
	orch := newDemoOrchestrator(t)

	tests := []struct {
		name  string
		query string
	}{
		{name: "empty", query: ""},
		{name: "whitespace only", query: "   \t  "},
		{name: "too long", query: strings.Repeat("a", 1001)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := orch.ProcessQuery(context.Background(), tt.query, "user-1", "")

			assert.False(t, outcome.Success)
			assert.NotEmpty(t, outcome.Error)
			assert.NotEmpty(t, outcome.QueryID)
			assert.Equal(t, failureAnswer, outcome.Response)
			assert.Empty(t, outcome.RetrievedDocuments)
		})
	}

	// Rejected input never enters the conversation history.
	assert.Empty(t, orch.History("user-1"))
}

func TestProcessQueryAppendsHistory(t *testing.T) {
	orch := newDemoOrchestrator(t)

	first := orch.ProcessQuery(context.Background(), "How do I reset my password?", "user-1", "")
	second := orch.ProcessQuery(context.Background(), "How do I contact support?", "user-1", "")

	history := orch.History("user-1")
	require.Len(t, history, 2)
	assert.Equal(t, first.QueryID, history[0].QueryID)
	assert.Equal(t, second.QueryID, history[1].QueryID)
	assert.Equal(t, "How do I reset my password?", history[0].Query)
	assert.Equal(t, first.Response, history[0].Response)
}

func TestProcessQueryAnonymousUser(t *testing.T) {
	orch := newDemoOrchestrator(t)

	orch.ProcessQuery(context.Background(), "How do I create an account?", "", "")

	assert.Len(t, orch.History("anonymous"), 1)
}

func TestProcessQueryConcurrentSameUser(t *testing.T) {
	orch := newDemoOrchestrator(t)

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			outcome := orch.ProcessQuery(context.Background(), "What are your pricing plans?", "user-1", "")
			assert.True(t, outcome.Success)
		}()
	}
	wg.Wait()

	// The window keeps the most recent ten exchanges.
	assert.Len(t, orch.History("user-1"), 10)
}

type stubEngine struct {
	mode        string
	passages    []rag.Passage
	retrieveErr error
	answer      string
	genErr      error
	genCalls    int
	genPassages []rag.Passage
}

func (s *stubEngine) Mode() string { return s.mode }

func (s *stubEngine) Retrieve(ctx context.Context, queryText string) ([]rag.Passage, error) {
	return s.passages, s.retrieveErr
}

func (s *stubEngine) Generate(ctx context.Context, queryText string, passages []rag.Passage, systemPrompt string) (string, error) {
	s.genCalls++
	s.genPassages = passages
	return s.answer, s.genErr
}

func (s *stubEngine) Health(ctx context.Context) retrieval.Health {
	return retrieval.Health{Status: "healthy"}
}

func newStubOrchestrator(eng engine) *Orchestrator {
	orch := New(Config{}, nil, nil, nil, nil)
	orch.engine = eng
	return orch
}

func TestLiveModeRetrievalFailureStillGenerates(t *testing.T) {
	eng := &stubEngine{
		mode:        rag.ModeLive,
		retrieveErr: errors.New("vector store unreachable"),
		answer:      "Based on the available documentation, here is an answer.",
	}
	orch := newStubOrchestrator(eng)

	outcome := orch.ProcessQuery(context.Background(), "a question", "user-1", "")

	assert.True(t, outcome.Success)
	assert.Equal(t, 1, eng.genCalls)
	assert.Empty(t, eng.genPassages)
	assert.Equal(t, eng.answer, outcome.Response)
	assert.Equal(t, 0, outcome.Metrics.DocumentCount)
	assert.Empty(t, outcome.Mode)
	assert.NotNil(t, outcome.RetrievedDocuments)
}

func TestLiveModeGenerationFailureKeepsFallback(t *testing.T) {
	eng := &stubEngine{
		mode:     rag.ModeLive,
		passages: []rag.Passage{{Text: "doc", RelevanceScore: 0.9}},
		answer:   "I apologize, but I encountered an error while generating a response. Please try again.",
		genErr:   errors.New("model timeout"),
	}
	orch := newStubOrchestrator(eng)

	outcome := orch.ProcessQuery(context.Background(), "a question", "user-1", "")

	assert.True(t, outcome.Success)
	assert.Contains(t, outcome.Response, "I apologize")
	assert.Equal(t, 1, outcome.Metrics.DocumentCount)
}

type panicEngine struct{ stubEngine }

func (p *panicEngine) Retrieve(ctx context.Context, queryText string) ([]rag.Passage, error) {
	panic("index out of range")
}

func TestPipelinePanicBecomesFailureOutcome(t *testing.T) {
	orch := newStubOrchestrator(&panicEngine{stubEngine{mode: rag.ModeLive}})

	outcome := orch.ProcessQuery(context.Background(), "a question", "user-1", "")

	assert.False(t, outcome.Success)
	assert.Equal(t, failureAnswer, outcome.Response)
	assert.Contains(t, outcome.Error, "index out of range")
	assert.Empty(t, outcome.RetrievedDocuments)
}

type fakeWriter struct {
	records   []*models.FeedbackRecord
	insertErr error
}

func (f *fakeWriter) InsertFeedback(record *models.FeedbackRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeWriter) GetFeedbackStats() (*models.FeedbackStats, error) {
	return &models.FeedbackStats{Count: len(f.records)}, nil
}

func TestCollectFeedback(t *testing.T) {
	writer := &fakeWriter{}
	orch := New(Config{}, nil, nil, feedback.NewSink(writer), nil)

	ok, err := orch.CollectFeedback(context.Background(), "q-1", "user-1", 5, "very helpful")

	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, writer.records, 1)
	assert.Equal(t, "q-1", writer.records[0].QueryID)
	assert.Equal(t, 5, writer.records[0].Rating)
	assert.Equal(t, "very helpful", writer.records[0].Comment)
}

func TestCollectFeedbackValidation(t *testing.T) {
	writer := &fakeWriter{}
	orch := New(Config{}, nil, nil, feedback.NewSink(writer), nil)

	tests := []struct {
		name    string
		queryID string
		userID  string
		rating  int
		text    string
	}{
		{name: "rating too high", queryID: "q-1", userID: "user-1", rating: 6},
		{name: "rating too low", queryID: "q-1", userID: "user-1", rating: 0},
		{name: "missing query id", queryID: "", userID: "user-1", rating: 3},
		{name: "missing user id", queryID: "q-1", userID: "", rating: 3},
		{name: "text too long", queryID: "q-1", userID: "user-1", rating: 3, text: strings.Repeat("a", 501)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := orch.CollectFeedback(context.Background(), tt.queryID, tt.userID, tt.rating, tt.text)

			assert.Error(t, err)
			assert.False(t, ok)
		})
	}

	// Rejected submissions never reach the writer.
	assert.Empty(t, writer.records)
}

func TestCollectFeedbackWriteFailure(t *testing.T) {
	writer := &fakeWriter{insertErr: errors.New("disk full")}
	orch := New(Config{}, nil, nil, feedback.NewSink(writer), nil)

	ok, err := orch.CollectFeedback(context.Background(), "q-1", "user-1", 4, "")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCollectFeedbackUnknownQueryIDAccepted(t *testing.T) {
	writer := &fakeWriter{}
	orch := New(Config{}, nil, nil, feedback.NewSink(writer), nil)

	ok, err := orch.CollectFeedback(context.Background(), "never-issued", "user-1", 2, "")

	require.NoError(t, err)
	assert.True(t, ok)
}

type recordingWriter struct {
	mu      sync.Mutex
	records []*models.QueryRecord
}

func (r *recordingWriter) InsertQueryRecord(record *models.QueryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func TestProcessQueryPersistsRecord(t *testing.T) {
	writer := &recordingWriter{}
	orch := New(Config{}, nil, nil, nil, writer)

	outcome := orch.ProcessQuery(context.Background(), "How do I contact support?", "user-1", "")

	require.Len(t, writer.records, 1)
	record := writer.records[0]
	assert.Equal(t, outcome.QueryID, record.ID)
	assert.Equal(t, "user-1", record.UserID)
	assert.Equal(t, "demo", record.Mode)
	assert.True(t, record.Success)
	assert.Equal(t, outcome.Metrics.DocumentCount, record.DocumentCount)
}

func TestHealthDemoMode(t *testing.T) {
	orch := newDemoOrchestrator(t)

	health := orch.Health(context.Background())

	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "demo", health.Mode)
	assert.Contains(t, health.Components, "vector_store")
}

func TestModeFixedAtConstruction(t *testing.T) {
	orch := newDemoOrchestrator(t)

	assert.Equal(t, rag.ModeDemo, orch.Mode())
	orch.ProcessQuery(context.Background(), "How do I reset my password?", "user-1", "")
	assert.Equal(t, rag.ModeDemo, orch.Mode())
}
