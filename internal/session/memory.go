package session

import (
	"context"
	"sync"
)

// MemoryStore keeps encoded sessions in process memory. It backs local runs
// without Redis and tests.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (m *MemoryStore) Load(ctx context.Context, identity string) (*Session, error) {
	m.mu.Lock()
	raw, ok := m.data[identity]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	s, _, err := Decode(raw)
	return s, err
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	raw, err := Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[s.Identity] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }
