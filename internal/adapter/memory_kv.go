package adapter

import (
	"context"
	"sync"

	"book-finder/internal/core"
)

// MemoryKV is a process-local KeyValueStore. Values are copied on the way
// in and out so callers never alias stored bytes.
type MemoryKV struct {
	mu    sync.RWMutex
	byKey map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{byKey: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.byKey[key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKey[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Close() error { return nil }
