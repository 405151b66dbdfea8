package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Submitted ")
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, s)

	_, err = ParseStatus("archived")
	assert.Error(t, err)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusDraft, true},
		{StatusDraft, StatusSubmitted, true},
		{StatusSubmitted, StatusProcessing, true},
		{StatusProcessing, StatusCompleted, true},
		{StatusProcessing, StatusFailed, true},
		{StatusSubmitted, StatusDraft, false},
		{StatusCompleted, StatusProcessing, false},
		{StatusDraft, StatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCompletionPercentage(t *testing.T) {
	fields := []string{"company_name", "founder_name", "founder_email", "website_url"}

	three := FormValues{"company_name": "Acme", "founder_name": "Jo", "founder_email": "jo@acme.com", "website_url": "   "}
	assert.Equal(t, 75, CompletionPercentage(three, fields))

	three["website_url"] = "https://acme.com"
	assert.Equal(t, 100, CompletionPercentage(three, fields))

	assert.Equal(t, 33, CompletionPercentage(FormValues{"a": "x"}, []string{"a", "b", "c"}))
	assert.Equal(t, 67, CompletionPercentage(FormValues{"a": "x", "b": "y"}, []string{"a", "b", "c"}))
	assert.Equal(t, 0, CompletionPercentage(FormValues{}, nil))
}

func TestFormValuesFromData(t *testing.T) {
	values := FormValuesFromData(map[string]interface{}{
		"company_name": "Acme",
		"extra":        "ignored",
		"funding_use":  nil,
	}, []string{"company_name", "founder_name", "funding_use"})

	assert.Equal(t, FormValues{"company_name": "Acme", "founder_name": "", "funding_use": ""}, values)
}

func TestApplicationTitle(t *testing.T) {
	assert.Equal(t, "Acme", ApplicationTitle(FormValues{"company_name": "  Acme "}, true))
	assert.Equal(t, DraftTitle, ApplicationTitle(FormValues{}, true))
	assert.Equal(t, SubmittedTitle, ApplicationTitle(FormValues{"company_name": " "}, false))
}

func TestApplicationPatch_Apply(t *testing.T) {
	title := "New"
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	app := &Application{Title: "Old", Status: StatusDraft}

	patch := ApplicationPatch{Title: &title}
	assert.False(t, patch.IsEmpty())
	patch.Apply(app, now)

	assert.Equal(t, "New", app.Title)
	assert.Equal(t, StatusDraft, app.Status)
	assert.Equal(t, now, app.UpdatedAt)
	assert.True(t, ApplicationPatch{}.IsEmpty())
}
