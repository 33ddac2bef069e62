// Package storage is the client-side persistence port and the bridge that keeps
// session values in it.
package storage

import (
	"context"
	"sync"

	"github.com/set-night/finmind/internal/domain"
)

const (
	KeyAccessToken = "@access_token"
	KeyUser        = "@user"
)

// Store persists raw string values by key. Get returns domain.ErrNotFound for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Len is the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

type prefixed struct {
	prefix string
	next   Store
}

// WithPrefix namespaces every key of next, so several workspaces can share one Store.
func WithPrefix(next Store, prefix string) Store {
	return &prefixed{prefix: prefix, next: next}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, error) {
	return p.next.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.next.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.next.Remove(ctx, p.prefix+key)
}
