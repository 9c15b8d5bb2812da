package settings

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps settings in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	settings Settings
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings.Clone(), nil
}

func (m *MemoryStore) Update(ctx context.Context, fn func(*Settings)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.settings.Clone()
	fn(&s)
	s.UpdatedAt = time.Now().UTC()
	m.settings = s
	return nil
}
