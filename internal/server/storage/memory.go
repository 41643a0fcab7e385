package storage

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/artvault/internal/common"
)

// MemoryStore keeps objects in process memory. Used in development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, common.ErrorNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("object %s: %w", key, common.ErrorNotFound)
	}
	u := url.URL{Scheme: "memory", Path: "/" + key, RawQuery: url.Values{"ttl": {ttl.String()}}.Encode()}
	return u.String(), nil
}
