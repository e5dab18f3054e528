// Package credstore persists the credential pair (access + refresh token).
//
// The pair has one lifecycle: written on login, read on every outbound
// request, erased on logout or session expiry. Both tokens are always saved
// and erased together, never partially.
package credstore

import "sync"

// Store owns the credential pair.
type Store interface {
	// Tokens returns the current pair. Both strings are empty when no
	// session is stored.
	Tokens() (access, refresh string)

	// Save replaces the stored pair atomically.
	Save(access, refresh string) error

	// Clear erases the pair. Idempotent.
	Clear() error
}

// Memory is a process-local Store. Reads are atomic snapshot reads.
type Memory struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Tokens returns the current pair.
func (m *Memory) Tokens() (string, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access, m.refresh
}

// Save replaces the stored pair.
func (m *Memory) Save(access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	m.refresh = refresh
	return nil
}

// Clear erases the pair.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = ""
	m.refresh = ""
	return nil
}
