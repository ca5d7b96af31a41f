package store

import (
	"context"
	"sync"

	"github.com/serroba/shortlink/internal/auth"
)

// MemoryUserStore is an in-memory implementation of auth.Repository.
type MemoryUserStore struct {
	mu         sync.RWMutex
	nextID     int64
	users      map[int64]*auth.User
	byEmail    map[string]int64
	byUsername map[string]int64
}

// NewMemoryUserStore creates a new in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:      make(map[int64]*auth.User),
		byEmail:    make(map[string]int64),
		byUsername: make(map[string]int64),
	}
}

func (m *MemoryUserStore) Create(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[user.Email]; ok {
		return auth.ErrEmailTaken
	}

	if _, ok := m.byUsername[user.Username]; ok {
		return auth.ErrUsernameTaken
	}

	m.nextID++
	user.ID = m.nextID

	stored := *user
	m.users[user.ID] = &stored
	m.byEmail[user.Email] = user.ID
	m.byUsername[user.Username] = user.ID

	return nil
}

func (m *MemoryUserStore) GetByID(_ context.Context, id int64) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.lookup(id, true)
}

func (m *MemoryUserStore) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]

	return m.lookup(id, ok)
}

func (m *MemoryUserStore) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byUsername[username]

	return m.lookup(id, ok)
}

func (m *MemoryUserStore) SetActive(_ context.Context, id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return auth.ErrNotFound
	}

	user.IsActive = active

	return nil
}

func (m *MemoryUserStore) lookup(id int64, ok bool) (*auth.User, error) {
	if !ok {
		return nil, auth.ErrNotFound
	}

	user, ok := m.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}

	found := *user

	return &found, nil
}
