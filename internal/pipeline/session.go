package pipeline

import (
	"sync"

	"promptd/pkg/types"
)

// SessionStore owns an append-only, in-memory ordered log of conversation
// turns. Storage is unbounded; only the view used for prompt building is.
// Not persisted across process lifetimes.
type SessionStore struct {
	mu    sync.RWMutex
	turns []types.Turn
}

func NewSessionStore() *SessionStore { return &SessionStore{} }

// Append records one completed exchange. There is no deletion.
func (s *SessionStore) Append(t types.Turn) {
	s.mu.Lock()
	s.turns = append(s.turns, t)
	s.mu.Unlock()
}

// RecentWindow returns the last n turns in chronological order (or fewer if
// history is shorter). The result is a copy.
func (s *SessionStore) RecentWindow(n int) []types.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || len(s.turns) == 0 {
		return nil
	}
	start := len(s.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]types.Turn, len(s.turns)-start)
	copy(out, s.turns[start:])
	return out
}

// Len reports the number of stored turns.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Turns returns a copy of the full log, oldest first.
func (s *SessionStore) Turns() []types.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}
