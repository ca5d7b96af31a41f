package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/auth"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var errMock = errors.New("mock error")

const testURL = "https://example.com"

// recorder collects published events.
type recorder[T any] struct {
	mu     sync.Mutex
	events []*T
	err    error
}

func (r *recorder[T]) publish() messaging.Publish[T] {
	return func(_ context.Context, event *T) error {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.events = append(r.events, event)

		return r.err
	}
}

func (r *recorder[T]) all() []*T {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*T(nil), r.events...)
}

type testEnv struct {
	router   *chi.Mux
	urls     *store.MemoryStore
	users    *store.MemoryUserStore
	service  *auth.Service
	created  *recorder[analytics.URLCreatedEvent]
	accessed *recorder[analytics.URLAccessedEvent]
	url      *handlers.URLHandler
	auth     *handlers.AuthHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	return newTestEnvWithRepo(t, nil)
}

// newTestEnvWithRepo wires the handlers against repo, or a fresh memory store when repo is nil.
func newTestEnvWithRepo(t *testing.T, repo shortener.Repository) *testEnv {
	t.Helper()

	env := &testEnv{
		urls:     store.NewMemoryStore(),
		users:    store.NewMemoryUserStore(),
		created:  &recorder[analytics.URLCreatedEvent]{},
		accessed: &recorder[analytics.URLAccessedEvent]{},
	}

	if repo == nil {
		repo = env.urls
	}

	keys, err := shortener.NewKeyGenerator(shortener.DefaultKeyLength, shortener.DefaultMaxAttempts)
	require.NoError(t, err)

	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	env.service = auth.NewService(env.users, auth.NewPasswordHasher(bcrypt.MinCost), tokens)

	publishers := &analytics.Publishers{
		URLCreated:  env.created.publish(),
		URLAccessed: env.accessed.publish(),
	}

	var visits shortener.VisitLister = env.urls
	if lister, ok := repo.(shortener.VisitLister); ok {
		visits = lister
	}

	env.url = handlers.NewURLHandler(shortener.NewShortener(repo, keys), repo, visits, publishers, zap.NewNop())
	env.auth = handlers.NewAuthHandler(env.service, zap.NewNop())

	env.router = chi.NewMux()
	api := humachi.New(env.router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMeta(api))
	api.UseMiddleware(middleware.Authenticate(api, env.service, zap.NewNop()))
	handlers.RegisterRoutes(api, env.auth, env.url)

	return env
}

func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	return w
}

func (e *testEnv) signup(t *testing.T, email, username string) *auth.Session {
	t.Helper()

	session, err := e.service.Signup(context.Background(), email, username, "hunter22")
	require.NoError(t, err)

	return session
}

func statusOf(err error) int {
	var se huma.StatusError
	if errors.As(err, &se) {
		return se.GetStatus()
	}

	return http.StatusInternalServerError
}

// failingRepo wraps a memory store and fails selected operations.
type failingRepo struct {
	*store.MemoryStore
	createErr error
	getErr    error
	listErr   error
	visitsErr error
}

func (f *failingRepo) Create(ctx context.Context, u *shortener.ShortURL) error {
	if f.createErr != nil {
		return f.createErr
	}

	return f.MemoryStore.Create(ctx, u)
}

func (f *failingRepo) GetActiveByKey(ctx context.Context, key shortener.Key) (*shortener.ShortURL, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	return f.MemoryStore.GetActiveByKey(ctx, key)
}

func (f *failingRepo) ListByOwner(ctx context.Context, id int64) ([]*shortener.ShortURL, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	return f.MemoryStore.ListByOwner(ctx, id)
}

func (f *failingRepo) ListVisits(ctx context.Context, key shortener.Key) ([]shortener.Visit, error) {
	if f.visitsErr != nil {
		return nil, f.visitsErr
	}

	return f.MemoryStore.ListVisits(ctx, key)
}

// countingRepo counts inserts reaching the memory store.
type countingRepo struct {
	*store.MemoryStore
	creates int
}

func (c *countingRepo) Create(ctx context.Context, u *shortener.ShortURL) error {
	c.creates++

	return c.MemoryStore.Create(ctx, u)
}

// alwaysTaken reports every key as used.
type alwaysTaken struct {
	*store.MemoryStore
}

func (alwaysTaken) KeyExists(context.Context, shortener.Key) (bool, error) {
	return true, nil
}
