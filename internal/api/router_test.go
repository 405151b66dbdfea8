package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-portal/internal/common/auth"
	"grant-portal/internal/common/config"
	"grant-portal/internal/common/logger"
	"grant-portal/internal/models"
	"grant-portal/internal/notify"
	"grant-portal/internal/repository"
)

const testSecret = "router-test-secret"

type harness struct {
	server *httptest.Server
	signer *auth.JWTVerifier
}

func newHarness(t *testing.T, server config.ServerConfig, allowed []string) *harness {
	t.Helper()
	signer := auth.NewJWTVerifier(testSecret)
	handler := NewRouter(server, config.AuthConfig{TokenCookie: "sb-access-token"}, Dependencies{
		Repository:    repository.NewMemoryRepository(),
		Verifier:      signer,
		Allowlist:     auth.NewAllowlist(allowed),
		Notifier:      notify.NoOp{},
		Logger:        logger.NewTestLogger(t),
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &harness{server: srv, signer: signer}
}

func (h *harness) token(t *testing.T, id, email string) string {
	t.Helper()
	tok, err := h.signer.Sign(models.AuthUser{ID: id, Email: email})
	require.NoError(t, err)
	return tok
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.server.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// ==========================
// Routing and auth
// ==========================

func TestRouter_HealthAndMetricsArePublic(t *testing.T) {
	h := newHarness(t, config.ServerConfig{}, nil)

	resp := h.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_RequiresToken(t *testing.T) {
	h := newHarness(t, config.ServerConfig{}, nil)

	resp := h.do(t, http.MethodGet, "/api/applications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/api/applications", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_CookieToken(t *testing.T) {
	h := newHarness(t, config.ServerConfig{}, nil)

	req, err := http.NewRequest(http.MethodGet, h.server.URL+"/api/applications", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: h.token(t, "u1", "a@example.com")})
	resp, err := h.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_Allowlist(t *testing.T) {
	h := newHarness(t, config.ServerConfig{}, []string{"Team@Example.com"})

	resp := h.do(t, http.MethodGet, "/api/applications", h.token(t, "u1", "team@example.com"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/api/applications", h.token(t, "u2", "intruder@example.com"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_CustomBasePath(t *testing.T) {
	h := newHarness(t, config.ServerConfig{BasePath: "v1/"}, nil)
	tok := h.token(t, "u1", "a@example.com")

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/v1/applications", tok, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/api/applications", tok, nil).StatusCode)
}

func TestRouter_RateLimitPerUser(t *testing.T) {
	h := newHarness(t, config.ServerConfig{
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 2},
	}, nil)
	first := h.token(t, "u1", "a@example.com")
	second := h.token(t, "u2", "b@example.com")

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/applications", first, nil).StatusCode)
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/applications", first, nil).StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, h.do(t, http.MethodGet, "/api/applications", first, nil).StatusCode)
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/api/applications", second, nil).StatusCode)
}

// ==========================
// End to end flow
// ==========================

func TestRouter_ApplicationLifecycle(t *testing.T) {
	h := newHarness(t, config.ServerConfig{}, nil)
	tok := h.token(t, "u1", "a@example.com")

	resp := h.do(t, http.MethodPost, "/api/applications", tok, map[string]interface{}{
		"title":     "Acme",
		"form_data": map[string]interface{}{"company_name": "Acme"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Application models.Application `json:"application"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	id := created.Application.ID
	require.NotEmpty(t, id)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = h.do(t, http.MethodPost, "/api/applications/"+id+"/sections", tok, map[string]interface{}{
		"section_name":          "company_info",
		"section_data":          map[string]interface{}{"company_name": "Acme"},
		"completion_percentage": 25,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = h.do(t, http.MethodPut, "/api/applications/"+id, tok, map[string]interface{}{"status": "submitted"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	other := h.token(t, "u2", "b@example.com")
	resp = h.do(t, http.MethodGet, "/api/applications/"+id+"/sections", other, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = h.do(t, http.MethodDelete, "/api/applications/"+id, tok, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/api/applications/"+id+"/sections", tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
