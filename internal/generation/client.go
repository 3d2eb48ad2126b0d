package generation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/docuassist/backend/internal/llm"
	"github.com/docuassist/backend/internal/rag"
	"github.com/docuassist/backend/pkg/logger"
)

// FallbackAnswer is returned whenever the completion provider fails, so
// the caller always has something displayable.
const FallbackAnswer = "I apologize, but I encountered an error while generating a response. Please try again."

const emptyContext = "No relevant documentation found."

const defaultSystemPrompt = `You are DocuAssist, an AI customer support assistant for a software company.
Your role is to provide accurate, helpful responses based on company documentation.

Guidelines:
1. Answer questions based ONLY on the provided context/documentation
2. If the context doesn't contain the answer, clearly state this
3. Be concise and professional
4. Provide actionable solutions when possible
5. Avoid hallucinating information not in the documentation
6. If you're unsure, acknowledge uncertainty rather than guessing`

// Completer is the single chat-completion call the client depends on.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
}

// Config carries the relevance label thresholds for context formatting.
type Config struct {
	HighRelevance   float64
	MediumRelevance float64
}

// Client produces answers grounded in retrieved passages.
type Client struct {
	completer Completer
	cfg       Config
}

func NewClient(completer Completer, cfg Config) *Client {
	if cfg.HighRelevance == 0 {
		cfg.HighRelevance = 0.8
	}
	if cfg.MediumRelevance == 0 {
		cfg.MediumRelevance = 0.6
	}
	return &Client{completer: completer, cfg: cfg}
}

// Generate answers the query conditioned on the passages. On provider
// failure it returns FallbackAnswer together with the error, so the
// failure stays observable without ever propagating past this layer.
func (c *Client) Generate(ctx context.Context, queryText string, passages []rag.Passage, systemPrompt string) (string, error) {
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	contextBlock := c.buildContext(passages)
	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock, queryText)

	answer, err := c.completer.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		logger.Error("Generation failed",
			zap.Error(err),
			zap.Int("passage_count", len(passages)),
		)
		return FallbackAnswer, err
	}

	logger.Debug("Response generated", zap.Int("length", len(answer)))

	return answer, nil
}

// buildContext concatenates passages in input order, each tagged with an
// index and a relevance label derived from the configured thresholds.
func (c *Client) buildContext(passages []rag.Passage) string {
	if len(passages) == 0 {
		return emptyContext
	}

	parts := make([]string, 0, len(passages))
	for i, passage := range passages {
		parts = append(parts, fmt.Sprintf("[Document %d] (Relevance: %s)\n%s",
			i+1, c.relevanceLabel(passage.RelevanceScore), passage.Text))
	}

	return strings.Join(parts, "\n\n")
}

func (c *Client) relevanceLabel(score float64) string {
	switch {
	case score > c.cfg.HighRelevance:
		return "High"
	case score > c.cfg.MediumRelevance:
		return "Medium"
	default:
		return "Low"
	}
}

// EvaluateGroundedness asks the model to rate how well the answer is
// supported by the passages. Failures report "Unknown" and never affect
// the primary answer.
func (c *Client) EvaluateGroundedness(ctx context.Context, queryText, answer string, passages []rag.Passage) string {
	snippets := make([]string, 0, len(passages))
	for _, passage := range passages {
		text := passage.Text
		if len(text) > 200 {
			text = text[:200]
		}
		snippets = append(snippets, text)
	}

	prompt := fmt.Sprintf(`Evaluate this response for accuracy and hallucination:
Query: %s
Response: %s
Context: %s

Rate (1-5) and identify any unsupported claims.`, queryText, answer, strings.Join(snippets, " | "))

	assessment, err := c.completer.Complete(ctx, llm.CompletionRequest{
		UserPrompt:  prompt,
		Temperature: 0.2,
		MaxTokens:   200,
	})
	if err != nil {
		logger.Error("Groundedness evaluation failed", zap.Error(err))
		return "Unknown"
	}

	return assessment
}
