package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShortURL(key string) *shortener.ShortURL {
	return &shortener.ShortURL{
		Key:       shortener.Key(key),
		SecretKey: shortener.SecretKey(key + "_secretxx"),
		TargetURL: "https://example.com/" + key,
		IsActive:  true,
		IsGuest:   true,
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryStore_Create(t *testing.T) {
	t.Run("assigns increasing ids", func(t *testing.T) {
		s := store.NewMemoryStore()

		first := newShortURL("abcde")
		second := newShortURL("fghij")

		require.NoError(t, s.Create(context.Background(), first))
		require.NoError(t, s.Create(context.Background(), second))

		assert.Equal(t, int64(1), first.ID)
		assert.Equal(t, int64(2), second.ID)
	})

	t.Run("rejects duplicate key", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Create(context.Background(), newShortURL("abcde"))

		dup := newShortURL("abcde")
		dup.SecretKey = "abcde_other"

		err := s.Create(context.Background(), dup)

		assert.ErrorIs(t, err, shortener.ErrConflict)
	})

	t.Run("rejects duplicate secret key", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Create(context.Background(), newShortURL("abcde"))

		dup := newShortURL("zzzzz")
		dup.SecretKey = "abcde_secretxx"

		err := s.Create(context.Background(), dup)

		assert.ErrorIs(t, err, shortener.ErrConflict)
	})
}

func TestMemoryStore_GetActiveByKey(t *testing.T) {
	t.Run("returns url when found", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Create(context.Background(), newShortURL("abcde"))

		url, err := s.GetActiveByKey(context.Background(), "abcde")

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/abcde", url.TargetURL)
	})

	t.Run("returns ErrNotFound when key does not exist", func(t *testing.T) {
		s := store.NewMemoryStore()

		url, err := s.GetActiveByKey(context.Background(), "nokey")

		assert.Nil(t, url)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("returns ErrNotFound for deactivated url", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Create(context.Background(), newShortURL("abcde"))
		require.NoError(t, s.Deactivate(context.Background(), "abcde_secretxx"))

		url, err := s.GetActiveByKey(context.Background(), "abcde")

		assert.Nil(t, url)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}

func TestMemoryStore_KeyExists(t *testing.T) {
	s := store.NewMemoryStore()
	_ = s.Create(context.Background(), newShortURL("abcde"))
	_ = s.Deactivate(context.Background(), "abcde_secretxx")

	exists, err := s.KeyExists(context.Background(), "abcde")
	require.NoError(t, err)
	assert.True(t, exists, "deactivated keys stay taken")

	exists, err = s.KeyExists(context.Background(), "other")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore_GetBySecretKey(t *testing.T) {
	s := store.NewMemoryStore()
	_ = s.Create(context.Background(), newShortURL("abcde"))

	url, err := s.GetBySecretKey(context.Background(), "abcde_secretxx")
	require.NoError(t, err)
	assert.Equal(t, shortener.Key("abcde"), url.Key)

	_, err = s.GetBySecretKey(context.Background(), "missing")
	assert.ErrorIs(t, err, shortener.ErrNotFound)
}

func TestMemoryStore_Deactivate(t *testing.T) {
	s := store.NewMemoryStore()

	err := s.Deactivate(context.Background(), "missing")

	assert.ErrorIs(t, err, shortener.ErrNotFound)
}

func TestMemoryStore_ListByOwner(t *testing.T) {
	s := store.NewMemoryStore()
	owner := int64(7)

	owned := newShortURL("aaaaa")
	owned.UserID = &owner
	owned.IsGuest = false
	_ = s.Create(context.Background(), owned)
	_ = s.Create(context.Background(), newShortURL("bbbbb"))

	urls, err := s.ListByOwner(context.Background(), owner)

	require.NoError(t, err)
	require.Len(t, urls, 1)
	assert.Equal(t, shortener.Key("aaaaa"), urls[0].Key)
}

func TestMemoryStore_RecordVisit(t *testing.T) {
	t.Run("appends visit and counts click", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Create(context.Background(), newShortURL("abcde"))

		visit := &shortener.Visit{
			Key:       "abcde",
			IPAddress: "10.0.0.1",
			UserAgent: "TestAgent/1.0",
			VisitedAt: time.Now(),
		}

		require.NoError(t, s.RecordVisit(context.Background(), visit))
		require.NoError(t, s.RecordVisit(context.Background(), visit))

		url, err := s.GetActiveByKey(context.Background(), "abcde")
		require.NoError(t, err)
		assert.Equal(t, int64(2), url.Clicks)

		visits, err := s.ListVisits(context.Background(), "abcde")
		require.NoError(t, err)
		require.Len(t, visits, 2)
		assert.Equal(t, "10.0.0.1", visits[0].IPAddress)
	})

	t.Run("returns ErrNotFound for unknown key", func(t *testing.T) {
		s := store.NewMemoryStore()

		err := s.RecordVisit(context.Background(), &shortener.Visit{Key: "nokey"})

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}

func TestMemoryStore_ListVisits(t *testing.T) {
	t.Run("returns visits oldest first", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Create(context.Background(), newShortURL("abcde"))

		first := time.Now().UTC()
		_ = s.RecordVisit(context.Background(), &shortener.Visit{Key: "abcde", IPAddress: "10.0.0.1", VisitedAt: first})
		_ = s.RecordVisit(context.Background(), &shortener.Visit{Key: "abcde", IPAddress: "10.0.0.2", VisitedAt: first.Add(time.Second)})

		visits, err := s.ListVisits(context.Background(), "abcde")

		require.NoError(t, err)
		require.Len(t, visits, 2)
		assert.Equal(t, "10.0.0.1", visits[0].IPAddress)
		assert.Equal(t, "10.0.0.2", visits[1].IPAddress)
	})

	t.Run("empty for a url nobody visited", func(t *testing.T) {
		s := store.NewMemoryStore()
		_ = s.Create(context.Background(), newShortURL("abcde"))

		visits, err := s.ListVisits(context.Background(), "abcde")

		require.NoError(t, err)
		assert.Empty(t, visits)
	})

	t.Run("returns ErrNotFound for unknown key", func(t *testing.T) {
		_, err := store.NewMemoryStore().ListVisits(context.Background(), "nokey")

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}
