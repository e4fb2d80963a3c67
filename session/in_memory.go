package session

import (
	"sort"
	"sync"

	"github.com/hupe1980/casemesh/core"
)

// InMemoryStore is a volatile SessionStore keeping sessions in a process
// local map. It is safe for concurrent access. Returned sessions are clones;
// mutate through AppendEvent and ApplyDelta.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Get returns a clone of the session, creating it lazily.
func (s *InMemoryStore) Get(sessionID string) (*core.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if ok {
		return sess.Clone(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreateLocked(sessionID).Clone(), nil
}

// Create creates (or resets) the session with the given id.
func (s *InMemoryStore) Create(sessionID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := core.NewSession(sessionID)
	s.sessions[sessionID] = sess

	return sess.Clone(), nil
}

// AppendEvent adds an event to the session.
func (s *InMemoryStore) AppendEvent(sessionID string, ev core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getOrCreateLocked(sessionID).AddEvent(ev)

	return nil
}

// ApplyDelta merges a key/value delta into the session state.
func (s *InMemoryStore) ApplyDelta(sessionID string, delta map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getOrCreateLocked(sessionID).ApplyStateDelta(delta)

	return nil
}

// Delete removes a session. Unknown ids are ignored.
func (s *InMemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
}

// IDs returns the known session ids in sorted order.
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

// getOrCreateLocked requires the write lock.
func (s *InMemoryStore) getOrCreateLocked(sessionID string) *core.Session {
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = core.NewSession(sessionID)
		s.sessions[sessionID] = sess
	}

	return sess
}
