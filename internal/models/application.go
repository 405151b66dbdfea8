// internal/models/application.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of an application.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusSubmitted  Status = "submitted"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Forward-only lifecycle. Staying in the same status is always allowed.
var validTransitions = map[Status][]Status{
	StatusDraft:      {StatusSubmitted},
	StatusSubmitted:  {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusCompleted:  {},
	StatusFailed:     {},
}

// ParseStatus converts a raw string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := validTransitions[s]; !ok {
		return "", fmt.Errorf("unknown application status %q", raw)
	}
	return s, nil
}

// CanTransition reports whether an application may move from one status to another.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Application is one grant application draft or submission.
type Application struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Title     string                 `json:"title"`
	Status    Status                 `json:"status"`
	FormData  map[string]interface{} `json:"form_data"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// ApplicationPatch is a partial update. Nil fields are left untouched.
type ApplicationPatch struct {
	Title    *string                `json:"title,omitempty"`
	Status   *Status                `json:"status,omitempty"`
	FormData map[string]interface{} `json:"form_data,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ApplicationPatch) IsEmpty() bool {
	return p.Title == nil && p.Status == nil && p.FormData == nil
}

// Apply writes the patch onto app and stamps UpdatedAt.
func (p ApplicationPatch) Apply(app *Application, now time.Time) {
	if p.Title != nil {
		app.Title = *p.Title
	}
	if p.Status != nil {
		app.Status = *p.Status
	}
	if p.FormData != nil {
		app.FormData = p.FormData
	}
	app.UpdatedAt = now
}

// Default titles used when the company name is still blank.
const (
	DraftTitle     = "Untitled Application"
	SubmittedTitle = "Grant Application"
)

// ApplicationTitle derives the record title from the company name.
func ApplicationTitle(values FormValues, draft bool) string {
	if name := strings.TrimSpace(values["company_name"]); name != "" {
		return name
	}
	if draft {
		return DraftTitle
	}
	return SubmittedTitle
}
