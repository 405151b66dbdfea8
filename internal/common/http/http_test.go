package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-portal/internal/common/errors"
	"grant-portal/internal/common/logger"
	"grant-portal/internal/common/observability"
)

// ==========================
// Client Tests
// ==========================

func TestClient_JSON_SendsBodyAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Acme", body["title"])

		WriteJSON(w, http.StatusCreated, map[string]string{"id": "app-1"})
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	header := http.Header{}
	header.Set("Authorization", "Bearer token")

	resp, err := c.JSON(context.Background(), http.MethodPost, srv.URL, header, map[string]string{"title": "Acme"})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var out map[string]string
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, "app-1", out["id"])
}

func TestClient_JSON_NonSuccessIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Application not found"})
	}))
	defer srv.Close()

	resp, err := NewClientWith(srv.Client()).JSON(context.Background(), http.MethodGet, srv.URL, nil, nil)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Contains(t, string(resp.Body), "Application not found")
}

func TestClient_JSON_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewClient(time.Second).JSON(context.Background(), http.MethodGet, srv.URL, nil, nil)
	assert.Error(t, err)
}

func TestResponse_DecodeEmptyBody(t *testing.T) {
	var out map[string]string
	assert.NoError(t, (&Response{StatusCode: 204}).Decode(&out))
	assert.Nil(t, out)
}

// ==========================
// Request / Response Helper Tests
// ==========================

func TestDecodeJSON(t *testing.T) {
	var v map[string]interface{}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"x"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "x", v["title"])

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.ErrorIs(t, DecodeJSON(r, &v), ErrEmptyBody)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{broken"))
	assert.Error(t, DecodeJSON(r, &v))
}

// ==========================
// Middleware Tests
// ==========================

func TestRequestLogger_SetsRequestID(t *testing.T) {
	h := RequestLogger(logger.NewTestLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}

func TestRecover_WritesGeneric500(t *testing.T) {
	log := logger.NewTestLogger(t)
	h := Recover(errors.NewHTTPErrorHandler(log), log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	obs := observability.New("http-test")
	defer obs.Shutdown()

	r := mux.NewRouter()
	r.Use(Metrics(obs))
	var template string
	r.HandleFunc("/applications/{id}", func(w http.ResponseWriter, req *http.Request) {
		template = routeTemplate(req)
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/applications/abc", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/applications/{id}", template)
}

// ==========================
// Rate Limiter Tests
// ==========================

func TestRateLimiter_PerKeyBuckets(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	handler := errors.NewHTTPErrorHandler(logger.NewTestLogger(t))
	h := rl.Middleware(func(r *http.Request) string { return r.Header.Get("X-User") }, handler)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
	)

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-User", user)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("u1"))
	assert.Equal(t, http.StatusTooManyRequests, send("u1"))
	assert.Equal(t, http.StatusOK, send("u2"))
}
