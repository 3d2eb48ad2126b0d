package demo

import (
	"strings"

	"github.com/docuassist/backend/internal/rag"
)

// Matcher answers queries from the static knowledge base. It is used
// only when the live retrieval backend could not be constructed at all,
// never as a per-call fallback. Deterministic and side-effect free.
type Matcher struct{}

func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match returns the canned answer and passages for the first entry with
// any keyword contained in the lowercased query, or ok=false when no
// entry matches.
func (m *Matcher) Match(queryText string) (string, []rag.Passage, bool) {
	lowered := strings.ToLower(queryText)

	for _, entry := range knowledgeBase {
		for _, keyword := range entry.Keywords {
			if strings.Contains(lowered, keyword) {
				return entry.Answer, copyPassages(entry.Passages), true
			}
		}
	}

	return "", nil, false
}

// Respond always produces a displayable answer: the matched entry, or a
// menu of known categories with one synthetic low-score passage.
func (m *Matcher) Respond(queryText string) (string, []rag.Passage) {
	if answer, passages, ok := m.Match(queryText); ok {
		return answer, passages
	}
	return fallbackAnswer, copyPassages(fallbackPassages)
}

// copyPassages shields the static table from mutation by callers.
func copyPassages(passages []rag.Passage) []rag.Passage {
	out := make([]rag.Passage, len(passages))
	copy(out, passages)
	return out
}

// Categories lists the knowledge base categories in enumeration order.
func (m *Matcher) Categories() []string {
	categories := make([]string, 0, len(knowledgeBase))
	for _, entry := range knowledgeBase {
		categories = append(categories, entry.Category)
	}
	return categories
}
