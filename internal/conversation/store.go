// Package conversation keeps per-user query/response history in memory
// for the lifetime of the process.
package conversation

import (
	"hash/fnv"
	"sync"

	"github.com/docuassist/backend/internal/rag"
)

const shardCount = 16

// DefaultWindow is how many entries History returns per user.
const DefaultWindow = 10

type shard struct {
	mu      sync.RWMutex
	entries map[string][]rag.ConversationEntry
}

// Store is a sharded, append-only conversation log keyed by user id.
// Appends from concurrent requests for the same user are safe; reads
// observe a consistent prefix in completion order.
type Store struct {
	shards [shardCount]*shard
	window int
}

func NewStore(window int) *Store {
	if window <= 0 {
		window = DefaultWindow
	}

	s := &Store{window: window}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string][]rag.ConversationEntry)}
	}
	return s
}

func (s *Store) shardFor(userID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return s.shards[h.Sum32()%shardCount]
}

// Append records an exchange under the user's key.
func (s *Store) Append(userID string, entry rag.ConversationEntry) {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	sh.entries[userID] = append(sh.entries[userID], entry)
	sh.mu.Unlock()
}

// History returns a copy of the user's most recent entries, oldest
// first, truncated to the configured window.
func (s *Store) History(userID string) []rag.ConversationEntry {
	sh := s.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	entries := sh.entries[userID]
	if len(entries) > s.window {
		entries = entries[len(entries)-s.window:]
	}

	out := make([]rag.ConversationEntry, len(entries))
	copy(out, entries)
	return out
}
