package session

import (
	"sort"
	"sync"
)

// InMemoryStore is a volatile session registry storing sessions in a process
// local map. It is safe for concurrent access.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	optFns   []func(o *Options)
}

// NewInMemoryStore constructs an empty in‑memory session store. optFns apply
// to every session it creates.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*Session), optFns: optFns}
}

// Get returns an existing session or creates a new one lazily.
func (s *InMemoryStore) Get(sessionID string) *Session {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess
	}
	return s.createSessionLocked(sessionID)
}

// Create forces the creation (or replacement) of a session with the given
// id. A replaced session is closed.
func (s *InMemoryStore) Create(sessionID string, optFns ...func(o *Options)) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.sessions[sessionID]; ok {
		old.Close()
	}
	return s.createSessionLocked(sessionID, optFns...)
}

// Delete closes and removes a session.
func (s *InMemoryStore) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if ok {
		sess.Close()
		delete(s.sessions, sessionID)
	}
	return ok
}

// IDs returns the sorted ids of all sessions.
func (s *InMemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// createSessionLocked allocates and stores a new session; caller must already
// hold the write lock.
func (s *InMemoryStore) createSessionLocked(sessionID string, extra ...func(o *Options)) *Session {
	sess := New(sessionID, append(append([]func(o *Options){}, s.optFns...), extra...)...)
	s.sessions[sessionID] = sess
	return sess
}
