package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Section is the persisted snapshot of one form step for one application.
type Section struct {
	ID                   string                 `json:"id"`
	ApplicationID        string                 `json:"application_id"`
	SectionName          string                 `json:"section_name"`
	SectionData          map[string]interface{} `json:"section_data"`
	IsCompleted          bool                   `json:"is_completed"`
	CompletionPercentage int                    `json:"completion_percentage"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// FormValues holds the in-memory answers keyed by field name.
type FormValues map[string]string

// Clone returns an independent copy.
func (v FormValues) Clone() FormValues {
	out := make(FormValues, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Filled reports whether the named field has a non-blank value.
func (v FormValues) Filled(name string) bool {
	return strings.TrimSpace(v[name]) != ""
}

// FormValuesFromData maps stored form data onto the given field names,
// defaulting missing entries to "" and stringifying non-string ones.
func FormValuesFromData(data map[string]interface{}, fields []string) FormValues {
	out := make(FormValues, len(fields))
	for _, name := range fields {
		out[name] = ""
		raw, ok := data[name]
		if !ok || raw == nil {
			continue
		}
		if s, ok := raw.(string); ok {
			out[name] = s
		} else {
			out[name] = fmt.Sprint(raw)
		}
	}
	return out
}

// CompletionPercentage is round(100 * filled / total) over the named fields.
func CompletionPercentage(values FormValues, fields []string) int {
	if len(fields) == 0 {
		return 0
	}
	filled := 0
	for _, name := range fields {
		if values.Filled(name) {
			filled++
		}
	}
	return int(math.Round(100 * float64(filled) / float64(len(fields))))
}
