package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Additional-Code/fleet/internal/cache"
	"github.com/Additional-Code/fleet/internal/entity"
	userrepo "github.com/Additional-Code/fleet/internal/repository/user"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type recordingSender struct {
	to      string
	message string
	err     error
}

func (r *recordingSender) Send(_ context.Context, to, message string) error {
	r.to = to
	r.message = message
	return r.err
}

type stubUsers struct {
	users map[string]*entity.User
	err   error
}

func (s stubUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[email]
	if !ok {
		return nil, userrepo.ErrNotFound
	}
	return u, nil
}

var errBoom = errors.New("boom")
