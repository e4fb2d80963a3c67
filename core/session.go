package core

import (
	"maps"
	"sync"
	"time"
)

// Session is a conversation: key/value state plus the ordered event history.
// It is safe for concurrent use.
type Session struct {
	ID      string         `json:"id"`
	State   map[string]any `json:"state"`
	Events  []Event        `json:"events"`
	Created time.Time      `json:"created"`
	Updated time.Time      `json:"updated"`

	mu sync.RWMutex
}

// NewSession returns an empty session.
func NewSession(id string) *Session {
	now := time.Now()

	return &Session{ID: id, State: map[string]any{}, Events: []Event{}, Created: now, Updated: now}
}

// GetState returns a state value.
func (s *Session) GetState(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.State[key]

	return v, ok
}

// StateSnapshot returns a copy of the state map.
func (s *Session) StateSnapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.State)
}

// ApplyStateDelta merges delta into the state.
func (s *Session) ApplyStateDelta(delta map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maps.Copy(s.State, delta)
	s.Updated = time.Now()
}

// AddEvent appends ev to the history.
func (s *Session) AddEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Events = append(s.Events, ev)
	s.Updated = time.Now()
}

// GetEvents returns a copy of the history.
func (s *Session) GetEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Event(nil), s.Events...)
}

// ConversationHistory returns the non-partial user, assistant and tool events
// that form the model context.
func (s *Session) ConversationHistory() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]Event, 0, len(s.Events))

	for _, ev := range s.Events {
		if ev.Content == nil || ev.IsPartial() {
			continue
		}

		switch ev.Content.Role {
		case "user", "assistant", "tool":
			res = append(res, ev)
		}
	}

	return res
}

// Clone returns a deep copy of state and history.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &Session{
		ID:      s.ID,
		State:   maps.Clone(s.State),
		Events:  append([]Event(nil), s.Events...),
		Created: s.Created,
		Updated: s.Updated,
	}
}

// SessionStore persists sessions. Get creates missing sessions lazily.
type SessionStore interface {
	Create(id string) (*Session, error)
	Get(id string) (*Session, error)
	AppendEvent(sessionID string, event Event) error
	ApplyDelta(sessionID string, delta map[string]any) error
}
