package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	warns  []string
	errors []string
}

func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.warns = append(l.warns, msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.errors = append(l.errors, msg) }

// ==========================
// Mapping Tests
// ==========================

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeAccessDenied, http.StatusForbidden},
		{ErrCodeTitleRequired, http.StatusBadRequest},
		{ErrCodeSectionNameRequired, http.StatusBadRequest},
		{ErrCodeInvalidStatusTransition, http.StatusConflict},
		{ErrCodeApplicationNotFound, http.StatusNotFound},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeDatabaseError, http.StatusInternalServerError},
		{ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeUnauthorized))
	assert.Equal(t, "NOT_FOUND", GetErrorCategory(ErrCodeApplicationNotFound))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeDatabaseError))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeTitleRequired))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeDatabaseError))
	assert.False(t, IsRetryableErrorCode(ErrCodeApplicationNotFound))
}

// ==========================
// Handler Tests
// ==========================

func TestHTTPErrorHandler_ClientError(t *testing.T) {
	log := &recordingLogger{}
	h := NewHTTPErrorHandler(log)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/applications/abc", nil)
	h.Write(rec, req, fmt.Errorf("lookup: %w", NewApplicationNotFoundError("abc")))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Application not found", body["error"])
	assert.Equal(t, "APPLICATION_NOT_FOUND", body["code"])
	assert.Len(t, log.warns, 1)
	assert.Empty(t, log.errors)
}

func TestHTTPErrorHandler_UnknownErrorIsGeneric(t *testing.T) {
	log := &recordingLogger{}
	h := NewHTTPErrorHandler(log)

	rec := httptest.NewRecorder()
	h.Write(rec, nil, fmt.Errorf("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
	_, hasDetails := body["details"]
	assert.False(t, hasDetails)
	assert.Len(t, log.errors, 1)
}
