package api

import "sync"

// Credentials holds the opaque session credential on behalf of the
// transport. State components never read it.
type Credentials interface {
	Token() string
	SetToken(token string) error
	ClearToken() error
}

type MemoryCredentials struct {
	mu    sync.RWMutex
	token string
}

func (m *MemoryCredentials) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *MemoryCredentials) SetToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryCredentials) ClearToken() error {
	return m.SetToken("")
}
