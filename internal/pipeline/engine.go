package pipeline

import (
	"context"

	"github.com/docuassist/backend/internal/demo"
	"github.com/docuassist/backend/internal/generation"
	"github.com/docuassist/backend/internal/rag"
	"github.com/docuassist/backend/internal/retrieval"
)

// engine is the capability set the orchestrator sequences. Two variants
// exist: provider-backed (live) and static-table-backed (demo), selected
// once at construction. Keeping the split here leaves the pipeline
// single-sourced over both modes.
type engine interface {
	Mode() string
	Retrieve(ctx context.Context, queryText string) ([]rag.Passage, error)
	Generate(ctx context.Context, queryText string, passages []rag.Passage, systemPrompt string) (string, error)
	Health(ctx context.Context) retrieval.Health
}

type liveEngine struct {
	retriever *retrieval.Client
	generator *generation.Client
	topK      int
}

func (e *liveEngine) Mode() string {
	return rag.ModeLive
}

func (e *liveEngine) Retrieve(ctx context.Context, queryText string) ([]rag.Passage, error) {
	return e.retriever.Retrieve(ctx, queryText, e.topK)
}

func (e *liveEngine) Generate(ctx context.Context, queryText string, passages []rag.Passage, systemPrompt string) (string, error) {
	return e.generator.Generate(ctx, queryText, passages, systemPrompt)
}

func (e *liveEngine) Health(ctx context.Context) retrieval.Health {
	return e.retriever.Health(ctx)
}

type demoEngine struct {
	matcher *demo.Matcher
}

func (e *demoEngine) Mode() string {
	return rag.ModeDemo
}

// Retrieve and Generate both consult the matcher; it is deterministic,
// so the two calls agree on the same knowledge base entry.
func (e *demoEngine) Retrieve(ctx context.Context, queryText string) ([]rag.Passage, error) {
	_, passages := e.matcher.Respond(queryText)
	return passages, nil
}

func (e *demoEngine) Generate(ctx context.Context, queryText string, passages []rag.Passage, systemPrompt string) (string, error) {
	answer, _ := e.matcher.Respond(queryText)
	return answer, nil
}

func (e *demoEngine) Health(ctx context.Context) retrieval.Health {
	return retrieval.Health{Status: "healthy"}
}
