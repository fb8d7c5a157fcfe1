package session

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("session not found")

// Manager maps session ids to their owners. Each session is driven by a
// single learner sequentially, but different sessions may be served
// concurrently, so the registry itself is guarded.
type Manager[T any] struct {
	mu       sync.RWMutex
	sessions map[string]T
}

func NewManager[T any]() *Manager[T] {
	return &Manager[T]{sessions: make(map[string]T)}
}

func (m *Manager[T]) Put(id string, value T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = value
}

func (m *Manager[T]) Get(id string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.sessions[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return value, nil
}

func (m *Manager[T]) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
