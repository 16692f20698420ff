package api

import (
	"sync"

	"github.com/psylab-id/smds27/internal/services"
)

// memorySessionStore keeps in-progress sessions per process. Sessions are
// handed out as shallow copies: the top-level fields are isolated, while
// Profile, Record and Report are shared pointers and must not be mutated
// after the session service creates them. UpdateSession swaps the stored
// value wholesale.
type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*services.Session
}

// NewMemorySessionStore returns the in-process session store.
func NewMemorySessionStore() services.SessionStore {
	return &memorySessionStore{sessions: map[string]*services.Session{}}
}

func (s *memorySessionStore) AddSession(sess *services.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *memorySessionStore) GetSession(id string) (*services.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (s *memorySessionStore) UpdateSession(sess *services.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		return services.NewNotFoundError("session not found")
	}
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}
