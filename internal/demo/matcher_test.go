package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchKnownTopics(t *testing.T) {
	matcher := NewMatcher()

	tests := []struct {
		name     string
		query    string
		contains string
		score    float64
	}{
		{
			name:     "password reset",
			query:    "How do I reset my password?",
			contains: "Click 'Forgot Password?'",
			score:    0.95,
		},
		{
			name:     "billing",
			query:    "What does the Professional plan cost?",
			contains: "$99/month",
			score:    0.92,
		},
		{
			name:     "support uppercase",
			query:    "HOW DO I CONTACT SUPPORT?",
			contains: "support@company.com",
			score:    0.94,
		},
		{
			name:     "account creation",
			query:    "I want to sign up for a new account",
			contains: "'Sign Up'",
			score:    0.96,
		},
		{
			name:     "security",
			query:    "How do I enable 2FA?",
			contains: "Two-Factor Authentication",
			score:    0.93,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, passages, ok := matcher.Match(tt.query)

			require.True(t, ok)
			assert.Contains(t, answer, tt.contains)
			require.Len(t, passages, 1)
			assert.Equal(t, tt.score, passages[0].RelevanceScore)
		})
	}
}

func TestMatchFirstEntryWins(t *testing.T) {
	matcher := NewMatcher()

	// Mentions both password reset and billing; the password entry is
	// enumerated first and must win.
	answer, _, ok := matcher.Match("forgot password after changing my billing plan")

	require.True(t, ok)
	assert.Contains(t, answer, "reset your password")
}

func TestMatchUnknownTopic(t *testing.T) {
	matcher := NewMatcher()

	_, _, ok := matcher.Match("what is the weather today")

	assert.False(t, ok)
}

func TestRespondFallback(t *testing.T) {
	matcher := NewMatcher()

	answer, passages := matcher.Respond("completely unrelated question")

	assert.Contains(t, answer, "demo mode")
	require.Len(t, passages, 1)
	assert.Equal(t, 0.5, passages[0].RelevanceScore)
	assert.Equal(t, "Demo mode - Limited knowledge base", passages[0].Text)
}

func TestMatchReturnsIndependentPassages(t *testing.T) {
	matcher := NewMatcher()

	_, passages, ok := matcher.Match("reset my password")
	require.True(t, ok)
	require.Len(t, passages, 1)
	passages[0].Text = "mutated"
	passages[0].RelevanceScore = 0

	_, again, ok := matcher.Match("reset my password")
	require.True(t, ok)
	assert.Equal(t, "Password reset requires email verification. Reset links expire after 24 hours.", again[0].Text)
	assert.Equal(t, 0.95, again[0].RelevanceScore)
}

func TestRespondFallbackIndependentPassages(t *testing.T) {
	matcher := NewMatcher()

	_, passages := matcher.Respond("nothing in the knowledge base")
	require.Len(t, passages, 1)
	passages[0].RelevanceScore = 1.0

	_, again := matcher.Respond("nothing in the knowledge base")
	assert.Equal(t, 0.5, again[0].RelevanceScore)
}

func TestRespondDeterministic(t *testing.T) {
	matcher := NewMatcher()

	first, firstPassages := matcher.Respond("how to reset password")
	second, secondPassages := matcher.Respond("how to reset password")

	assert.Equal(t, first, second)
	assert.Equal(t, firstPassages, secondPassages)
}

func TestCategories(t *testing.T) {
	matcher := NewMatcher()

	categories := matcher.Categories()

	assert.Equal(t, []string{
		"Password Reset",
		"Pricing & Billing",
		"Contact Support",
		"Account Creation",
		"Security Features",
	}, categories)
}
