package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/noah-isme/fitcoach-api/internal/models"
	"github.com/noah-isme/fitcoach-api/internal/repository"
	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
)

var (
	testNow      = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC) // Wednesday
	errDBDown    = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	testPassword = "coach1234"
)

const (
	clientRonit = "c0a8012e-1111-4e6a-8b0b-000000000001"
	clientAlon  = "c0a8012e-1111-4e6a-8b0b-000000000002"
	clientNoa   = "c0a8012e-1111-4e6a-8b0b-000000000003"
	clientMaya  = "c0a8012e-1111-4e6a-8b0b-000000000005"
)

func demoFixtures(t *testing.T) repository.Fixtures {
	t.Helper()
	hash, err := HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return repository.DemoFixtures(testNow, hash)
}

func demoStore(t *testing.T) *repository.MemoryStore {
	t.Helper()
	return repository.NewMemoryStore(demoFixtures(t))
}

// failingLister fails every fetch.
type failingLister[T any] struct{ calls int }

func (f *failingLister[T]) ListByCoach(context.Context, string) ([]T, error) {
	f.calls++
	return nil, errDBDown
}

// memoryCache is an in-process CacheRepository.
type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	evicted []string
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
		m.evicted = append(m.evicted, k)
	}
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			m.evicted = append(m.evicted, k)
		}
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func newTestCache(repo *memoryCache, metrics *MetricsService) *CacheService {
	return NewCacheService(repo, metrics, time.Minute, nil, true)
}

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

func clientNames(clients []models.Client) []string {
	names := make([]string, len(clients))
	for i, c := range clients {
		names[i] = c.Name
	}
	return names
}
