package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	mu    sync.Mutex
	state *State
}

// MemoryStore holds sessions in process memory, evicting idle ones on Sweep
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
}

// NewMemoryStore creates a store whose sessions expire after ttl of inactivity
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
	}
}

func (m *MemoryStore) entry(id string) (*memoryEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	return e, ok
}

// Load returns the stored state for id
func (m *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	e, ok := m.entry(id)
	if !ok || e.state == nil {
		return nil, ErrNotFound
	}
	return e.state, nil
}

// Save stores state, creating its entry if needed
func (m *MemoryStore) Save(_ context.Context, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[state.ID()]
	if !ok {
		e = &memoryEntry{}
		m.entries[state.ID()] = e
	}
	e.state = state
	return nil
}

// Delete removes the session
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Lock serialises access to one session
func (m *MemoryStore) Lock(_ context.Context, id string) (func(), error) {
	e, ok := m.entry(id)
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	return e.mu.Unlock, nil
}

// Len returns the number of held sessions
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep evicts sessions idle since before now minus the ttl. Sessions locked
// by a request in progress are skipped until the next sweep.
func (m *MemoryStore) Sweep(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, e := range m.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.state == nil || e.state.UpdatedAt().Before(cutoff) {
			delete(m.entries, id)
			evicted++
		}
		e.mu.Unlock()
	}
	return evicted
}
