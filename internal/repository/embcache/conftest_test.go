package embcache

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/clubsearch/internal/db"
	"github.com/kailas-cloud/clubsearch/internal/domain"
)

type fakeEmbedder struct {
	res   domain.EmbeddingResult
	err   error
	calls int
	texts []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	f.calls++
	f.texts = append(f.texts, text)
	return f.res, f.err
}

// memStore is an in-memory store with injectable failures.
type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) only() (string, []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.data {
		return k, v
	}
	return "", nil
}
