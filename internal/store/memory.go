package store

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/aaronzipp/among-llms/internal/session"
)

// SessionStore keeps the live game sessions
type SessionStore struct {
	sessions map[string]*session.Session
	mu       sync.RWMutex
}

// NewSessionStore creates a new session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session.Session),
	}
}

// Add stores a session under a fresh id and returns the id
func (s *SessionStore) Add(sess *session.Session) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	for s.sessions[id] != nil {
		id = uuid.NewString()
	}
	s.sessions[id] = sess
	return id
}

// Get retrieves a session by id
func (s *SessionStore) Get(id string) (*session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, exists := s.sessions[id]
	return sess, exists
}

// Set stores a session
func (s *SessionStore) Set(id string, sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

// Delete removes a session and returns it
func (s *SessionStore) Delete(id string) (*session.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, exists := s.sessions[id]
	delete(s.sessions, id)
	return sess, exists
}

// Exists checks if a session id exists
func (s *SessionStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.sessions[id]
	return exists
}

// IDs returns the stored ids in sorted order
func (s *SessionStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Drain empties the store and returns what it held
func (s *SessionStore) Drain() []*session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*session.Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		out = append(out, sess)
		delete(s.sessions, id)
	}
	return out
}
