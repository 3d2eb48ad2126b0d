package conversation

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuassist/backend/internal/rag"
)

func entry(i int) rag.ConversationEntry {
	return rag.ConversationEntry{
		QueryID:   fmt.Sprintf("q-%d", i),
		Query:     fmt.Sprintf("question %d", i),
		Response:  fmt.Sprintf("answer %d", i),
		Timestamp: time.Now(),
	}
}

func TestHistoryEmpty(t *testing.T) {
	store := NewStore(10)

	assert.Empty(t, store.History("nobody"))
}

func TestHistoryWindow(t *testing.T) {
	tests := []struct {
		name    string
		appends int
		want    int
	}{
		{"zero", 0, 0},
		{"under window", 3, 3},
		{"exactly window", 10, 10},
		{"over window", 25, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(10)
			for i := 0; i < tt.appends; i++ {
				store.Append("alice", entry(i))
			}

			history := store.History("alice")

			require.Len(t, history, tt.want)
			if tt.want > 0 {
				// Oldest-first among the retained window.
				assert.Equal(t, fmt.Sprintf("q-%d", tt.appends-tt.want), history[0].QueryID)
				assert.Equal(t, fmt.Sprintf("q-%d", tt.appends-1), history[tt.want-1].QueryID)
			}
		})
	}
}

func TestUserIsolation(t *testing.T) {
	store := NewStore(10)
	store.Append("alice", entry(1))
	store.Append("bob", entry(2))

	require.Len(t, store.History("alice"), 1)
	require.Len(t, store.History("bob"), 1)
	assert.Equal(t, "q-1", store.History("alice")[0].QueryID)
	assert.Equal(t, "q-2", store.History("bob")[0].QueryID)
}

func TestConcurrentAppends(t *testing.T) {
	store := NewStore(100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Append("alice", entry(i))
		}(i)
	}
	wg.Wait()

	history := store.History("alice")
	require.Len(t, history, 50)

	// No entry lost, no duplicate.
	seen := make(map[string]bool)
	for _, e := range history {
		assert.False(t, seen[e.QueryID], "duplicate entry %s", e.QueryID)
		seen[e.QueryID] = true
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	store := NewStore(10)
	store.Append("alice", entry(1))

	history := store.History("alice")
	history[0].Response = "mutated"

	assert.Equal(t, "answer 1", store.History("alice")[0].Response)
}
