package container_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/container"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryInjector(t *testing.T) *do.Injector {
	t.Helper()

	opts := &container.Options{
		Port:        8888,
		KeyLength:   5,
		KeyAttempts: 10,
		Backend:     container.BackendMemory,
		JWTSecret:   "test-secret",
		TokenTTL:    "1h",
		BcryptCost:  4,
		CORSOrigins: "http://localhost:3000",
		LogFormat:   "json",
	}
	require.NoError(t, opts.Validate())

	injector := do.New()
	container.Register(injector, opts)

	t.Cleanup(func() { _ = injector.Shutdown() })

	return injector
}

func request(t *testing.T, router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

func TestMemoryBackend(t *testing.T) {
	injector := newMemoryInjector(t)

	group := do.MustInvoke[*messaging.ConsumerGroup](injector)
	require.NoError(t, group.Start(context.Background()))

	router := do.MustInvoke[*chi.Mux](injector)
	_ = do.MustInvoke[huma.API](injector)

	w := request(t, router, http.MethodPost, "/api/auth/signup",
		`{"email":"ann@example.com","password":"hunter22","username":"ann"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token, _ := decode(t, w)["access_token"].(string)
	require.NotEmpty(t, token)

	w = request(t, router, http.MethodPost, "/url", `{"target_url":"example.com/page"}`, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	created := decode(t, w)
	key, _ := created["url"].(string)
	secret, _ := created["admin_url"].(string)

	w = request(t, router, http.MethodGet, "/"+key, "", "")
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "https://example.com/page", w.Header().Get("Location"))

	assert.Eventually(t, func() bool {
		info := request(t, router, http.MethodGet, "/admin/"+secret, "", "")

		var body struct {
			Clicks int64 `json:"clicks"`
		}

		return json.Unmarshal(info.Body.Bytes(), &body) == nil && body.Clicks == 1
	}, 2*time.Second, 20*time.Millisecond, "visit should be recorded")

	w = request(t, router, http.MethodGet, "/api/urls", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), key)

	w = request(t, router, http.MethodGet, "/admin/"+secret+"/visitors", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var visitors []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &visitors))
	assert.Len(t, visitors, 1)

	w = request(t, router, http.MethodDelete, "/api/auth/me", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, request(t, router, http.MethodGet, "/api/urls", "", token).Code)

	w = request(t, router, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "disabled", decode(t, w)["postgres"])

	w = request(t, router, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestCORS(t *testing.T) {
	injector := newMemoryInjector(t)

	router := do.MustInvoke[*chi.Mux](injector)
	_ = do.MustInvoke[huma.API](injector)

	req := httptest.NewRequest(http.MethodOptions, "/url", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
