package storage

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]json.RawMessage)}
}

func (m *MemoryStore) Get(_ context.Context, sessionID, key string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[sessionID][key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *MemoryStore) Put(_ context.Context, sessionID string, values map[string]json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kv, ok := m.data[sessionID]
	if !ok {
		kv = make(map[string]json.RawMessage, len(values))
		m.data[sessionID] = kv
	}
	for k, v := range values {
		kv[k] = slices.Clone(v)
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kv, ok := m.data[sessionID]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(kv, k)
	}
	if len(kv) == 0 {
		delete(m.data, sessionID)
	}
	return nil
}
