package artifact

import (
	"slices"
	"sync"
)

// InMemoryStore keeps artifacts in a nested map (session -> artifact -> bytes)
// guarded by an RWMutex. Data is copied on save and on read.
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]map[string][]byte
}

// NewInMemoryStore returns an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string]map[string][]byte)}
}

// Save stores or overwrites an artifact.
func (a *InMemoryStore) Save(sessionID, artifactID string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.artifacts[sessionID]; !ok {
		a.artifacts[sessionID] = make(map[string][]byte)
	}

	a.artifacts[sessionID][artifactID] = slices.Clone(data)

	return nil
}

// Get returns a copy of the artifact or ErrNotFound.
func (a *InMemoryStore) Get(sessionID, artifactID string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	data, ok := a.artifacts[sessionID][artifactID]
	if !ok {
		return nil, ErrNotFound
	}

	return slices.Clone(data), nil
}

// List returns the sorted artifact ids of a session.
func (a *InMemoryStore) List(sessionID string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make([]string, 0, len(a.artifacts[sessionID]))
	for id := range a.artifacts[sessionID] {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids, nil
}

// Delete removes the artifact or returns ErrNotFound.
func (a *InMemoryStore) Delete(sessionID, artifactID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	m := a.artifacts[sessionID]
	if _, ok := m[artifactID]; !ok {
		return ErrNotFound
	}

	delete(m, artifactID)

	return nil
}
