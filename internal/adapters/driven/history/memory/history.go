// Package memory provides the in-memory session history store.
package memory

import (
	"context"
	"sync"

	"github.com/raglite/raglite/internal/core/domain"
	"github.com/raglite/raglite/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore keeps per-session conversation history in memory.
// Mutations on the same session serialise on a per-session mutex;
// different sessions never block each other.
type HistoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]domain.Turn
	locks    map[string]*sync.Mutex
}

// NewHistoryStore creates an empty history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		sessions: make(map[string][]domain.Turn),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Append adds turns to the end of a session's history, creating the
// session on first use.
func (s *HistoryStore) Append(_ context.Context, sessionID string, turns ...domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], turns...)
	return nil
}

// Read returns a copy of the session's history in order. An unknown
// session yields an empty history.
func (s *HistoryStore) Read(_ context.Context, sessionID string) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.sessions[sessionID]
	out := make([]domain.Turn, len(history))
	copy(out, history)
	return out, nil
}

// ReplaceLastUser rewrites the content of the most recent user turn.
func (s *HistoryStore) ReplaceLastUser(_ context.Context, sessionID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.sessions[sessionID]
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.RoleUser {
			history[i].Content = content
			return nil
		}
	}
	return domain.ErrNotFound
}

// Clear removes a session and its history.
func (s *HistoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	delete(s.locks, sessionID)
	return nil
}

// WithSessionLock runs fn while holding the session's mutation lock.
func (s *HistoryStore) WithSessionLock(sessionID string, fn func() error) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

func (s *HistoryStore) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}
