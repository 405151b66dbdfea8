package engine

import (
	"sync"
	"time"

	"grant-portal/internal/models"
)

// Store holds the mutable state of one form-filling session. Only SetField
// is exported as a mutator; the step index, the error map, and the save
// flags change through the Controller.
type Store struct {
	mu            sync.RWMutex
	stepCount     int
	stepIndex     int
	values        models.FormValues
	errors        map[string]string
	savingDraft   bool
	submitting    bool
	lastSavedAt   *time.Time
	applicationID string
}

// NewStore creates a store for a form of stepCount steps. Every name in
// fields starts as "" unless initial provides a value.
func NewStore(stepCount int, fields []string, initial models.FormValues, applicationID string) *Store {
	values := make(models.FormValues, len(fields))
	for _, name := range fields {
		values[name] = ""
	}
	for k, v := range initial {
		values[k] = v
	}
	if stepCount < 1 {
		stepCount = 1
	}
	return &Store{
		stepCount:     stepCount,
		values:        values,
		errors:        make(map[string]string),
		applicationID: applicationID,
	}
}

// SetField overwrites a value and drops any error recorded for it.
func (s *Store) SetField(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	delete(s.errors, name)
}

func (s *Store) Value(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

// Values returns a copy of every field value.
func (s *Store) Values() models.FormValues {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Clone()
}

// Errors returns a copy of the error map.
func (s *Store) Errors() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

func (s *Store) Error(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.errors[name]
	return msg, ok
}

func (s *Store) StepIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stepIndex
}

func (s *Store) StepCount() int {
	return s.stepCount
}

func (s *Store) IsSavingDraft() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.savingDraft
}

func (s *Store) IsSubmitting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submitting
}

// LastSavedAt reports the time of the last successful save, if any.
func (s *Store) LastSavedAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastSavedAt == nil {
		return time.Time{}, false
	}
	return *s.lastSavedAt, true
}

// ApplicationID is empty until the first save creates the record.
func (s *Store) ApplicationID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applicationID
}

// setStepIndex clamps i to [0, stepCount-1].
func (s *Store) setStepIndex(i int) {
	if i < 0 {
		i = 0
	}
	if i > s.stepCount-1 {
		i = s.stepCount - 1
	}
	s.mu.Lock()
	s.stepIndex = i
	s.mu.Unlock()
}

func (s *Store) replaceErrors(errs map[string]string) {
	next := make(map[string]string, len(errs))
	for k, v := range errs {
		next[k] = v
	}
	s.mu.Lock()
	s.errors = next
	s.mu.Unlock()
}

func (s *Store) setSavingDraft(v bool) {
	s.mu.Lock()
	s.savingDraft = v
	s.mu.Unlock()
}

func (s *Store) setSubmitting(v bool) {
	s.mu.Lock()
	s.submitting = v
	s.mu.Unlock()
}

func (s *Store) markSaved(at time.Time) {
	s.mu.Lock()
	s.lastSavedAt = &at
	s.mu.Unlock()
}

func (s *Store) setApplicationID(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	s.applicationID = id
	s.mu.Unlock()
}
