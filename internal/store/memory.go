package store

import (
	"context"
	"sort"
	"sync"

	"github.com/serroba/shortlink/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository, shortener.VisitRecorder
// and shortener.VisitLister.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	urls    map[shortener.Key]*shortener.ShortURL
	secrets map[shortener.SecretKey]shortener.Key
	visits  map[shortener.Key][]shortener.Visit
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		urls:    make(map[shortener.Key]*shortener.ShortURL),
		secrets: make(map[shortener.SecretKey]shortener.Key),
		visits:  make(map[shortener.Key][]shortener.Visit),
	}
}

func (m *MemoryStore) Create(_ context.Context, shortURL *shortener.ShortURL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.urls[shortURL.Key]; ok {
		return shortener.ErrConflict
	}

	if _, ok := m.secrets[shortURL.SecretKey]; ok {
		return shortener.ErrConflict
	}

	m.nextID++
	shortURL.ID = m.nextID

	stored := *shortURL
	m.urls[shortURL.Key] = &stored
	m.secrets[shortURL.SecretKey] = shortURL.Key

	return nil
}

func (m *MemoryStore) KeyExists(_ context.Context, key shortener.Key) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.urls[key]

	return ok, nil
}

func (m *MemoryStore) GetActiveByKey(_ context.Context, key shortener.Key) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	url, ok := m.urls[key]
	if !ok || !url.IsActive {
		return nil, shortener.ErrNotFound
	}

	found := *url

	return &found, nil
}

func (m *MemoryStore) GetBySecretKey(_ context.Context, secret shortener.SecretKey) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key, ok := m.secrets[secret]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	found := *m.urls[key]

	return &found, nil
}

func (m *MemoryStore) ListByOwner(_ context.Context, userID int64) ([]*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owned := make([]*shortener.ShortURL, 0)

	for _, url := range m.urls {
		if url.UserID != nil && *url.UserID == userID {
			found := *url
			owned = append(owned, &found)
		}
	}

	sort.Slice(owned, func(i, j int) bool { return owned[i].ID > owned[j].ID })

	return owned, nil
}

func (m *MemoryStore) Deactivate(_ context.Context, secret shortener.SecretKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, ok := m.secrets[secret]
	if !ok {
		return shortener.ErrNotFound
	}

	m.urls[key].IsActive = false

	return nil
}

func (m *MemoryStore) RecordVisit(_ context.Context, visit *shortener.Visit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	url, ok := m.urls[visit.Key]
	if !ok {
		return shortener.ErrNotFound
	}

	url.Clicks++
	m.visits[visit.Key] = append(m.visits[visit.Key], *visit)

	return nil
}

func (m *MemoryStore) ListVisits(_ context.Context, key shortener.Key) ([]shortener.Visit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.urls[key]; !ok {
		return nil, shortener.ErrNotFound
	}

	return append([]shortener.Visit(nil), m.visits[key]...), nil
}
