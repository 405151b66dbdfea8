package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonhttp "grant-portal/internal/common/http"
	"grant-portal/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWith(srv.URL+"/api/", "token-123", commonhttp.NewClientWith(srv.Client()))
}

// ==========================
// Requests
// ==========================

func TestClient_SendsBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/applications", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"applications":[{"id":"a1","title":"Acme","status":"draft"}]}`))
	})

	apps, err := c.ListApplications(context.Background())

	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "a1", apps[0].ID)
	assert.Equal(t, models.StatusDraft, apps[0].Status)
}

func TestClient_CreateApplication(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Acme", body["title"])
		assert.Equal(t, "draft", body["status"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"application":{"id":"a1","title":"Acme","status":"draft"}}`))
	})

	app, err := c.CreateApplication(context.Background(), CreateInput{
		Title:    "Acme",
		FormData: map[string]interface{}{"company_name": "Acme"},
		Status:   models.StatusDraft,
	})

	require.NoError(t, err)
	assert.Equal(t, "a1", app.ID)
}

func TestClient_UpdateSendsOnlyPatchedFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/applications/a1", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"status": "submitted"}, body)
		_, _ = w.Write([]byte(`{"application":{"id":"a1","status":"submitted"}}`))
	})

	status := models.StatusSubmitted
	app, err := c.UpdateApplication(context.Background(), "a1", models.ApplicationPatch{Status: &status})

	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, app.Status)
}

func TestClient_SaveSectionReportsCreated(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/applications/a1/sections", r.URL.Path)
		if calls == 1 {
			w.WriteHeader(http.StatusCreated)
		}
		_, _ = w.Write([]byte(`{"section":{"id":"s1","section_name":"basic-info","completion_percentage":50}}`))
	})

	section, created, err := c.SaveSection(context.Background(), "a1", SectionInput{SectionName: "basic-info"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 50, section.CompletionPercentage)

	_, created, err = c.SaveSection(context.Background(), "a1", SectionInput{SectionName: "basic-info"})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestClient_DeleteAndListSections(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			_, _ = w.Write([]byte(`{"success":true}`))
		default:
			_, _ = w.Write([]byte(`{"sections":[{"id":"s1"},{"id":"s2"}]}`))
		}
	})

	require.NoError(t, c.DeleteApplication(context.Background(), "a1"))
	list, err := c.ListSections(context.Background(), "a1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

// ==========================
// Failures
// ==========================

func TestClient_ErrorUsesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Application not found","code":"APPLICATION_NOT_FOUND"}`))
	})

	_, err := c.GetApplication(context.Background(), "missing")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "APPLICATION_NOT_FOUND", apiErr.Code)
	assert.Equal(t, "Application not found", apiErr.UserMessage())
}

func TestClient_ErrorFallsBackPerOperation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	})

	_, _, err := c.SaveSection(context.Background(), "a1", SectionInput{SectionName: "x"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Failed to save application section", apiErr.UserMessage())
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()
	c := NewClientWith(srv.URL, "", commonhttp.NewClient(20*time.Millisecond))

	_, err := c.ListApplications(context.Background())

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
