package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"grant-portal/internal/models"
)

// MemoryRepository keeps everything in process. Used for local runs and tests.
type MemoryRepository struct {
	mu           sync.RWMutex
	applications map[string]models.Application
	sections     map[string]models.Section
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		applications: make(map[string]models.Application),
		sections:     make(map[string]models.Section),
	}
}

func copyData(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneApplication(a models.Application) *models.Application {
	a.FormData = copyData(a.FormData)
	return &a
}

func cloneSection(s models.Section) *models.Section {
	s.SectionData = copyData(s.SectionData)
	return &s
}

func (m *MemoryRepository) ListApplications(_ context.Context, userID string) ([]models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Application, 0)
	for _, a := range m.applications {
		if a.UserID == userID {
			out = append(out, *cloneApplication(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *MemoryRepository) CreateApplication(_ context.Context, app models.Application) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts := now()
	app.ID = uuid.New().String()
	if app.Status == "" {
		app.Status = models.StatusDraft
	}
	if app.FormData == nil {
		app.FormData = map[string]interface{}{}
	}
	app.CreatedAt, app.UpdatedAt = ts, ts
	m.applications[app.ID] = *cloneApplication(app)
	return cloneApplication(app), nil
}

func (m *MemoryRepository) GetApplication(_ context.Context, userID, id string) (*models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.applications[id]
	if !ok || a.UserID != userID {
		return nil, fmt.Errorf("%w: application %s", ErrNotFound, id)
	}
	return cloneApplication(a), nil
}

func (m *MemoryRepository) UpdateApplication(_ context.Context, userID, id string, patch models.ApplicationPatch) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.applications[id]
	if !ok || a.UserID != userID {
		return nil, fmt.Errorf("%w: application %s", ErrNotFound, id)
	}
	patch.Apply(&a, now())
	m.applications[id] = *cloneApplication(a)
	return cloneApplication(a), nil
}

func (m *MemoryRepository) DeleteApplication(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.applications[id]
	if !ok || a.UserID != userID {
		return fmt.Errorf("%w: application %s", ErrNotFound, id)
	}
	delete(m.applications, id)
	for sid, s := range m.sections {
		if s.ApplicationID == id {
			delete(m.sections, sid)
		}
	}
	return nil
}

func (m *MemoryRepository) ListSections(_ context.Context, applicationID string) ([]models.Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Section, 0)
	for _, s := range m.sections {
		if s.ApplicationID == applicationID {
			out = append(out, *cloneSection(s))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *MemoryRepository) FindSection(_ context.Context, applicationID, sectionName string) (*models.Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.sections {
		if s.ApplicationID == applicationID && s.SectionName == sectionName {
			return cloneSection(s), nil
		}
	}
	return nil, fmt.Errorf("%w: section %s", ErrNotFound, sectionName)
}

func (m *MemoryRepository) CreateSection(_ context.Context, section models.Section) (*models.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.applications[section.ApplicationID]; !ok {
		return nil, fmt.Errorf("%w: application %s", ErrNotFound, section.ApplicationID)
	}
	ts := now()
	section.ID = uuid.New().String()
	section.CreatedAt, section.UpdatedAt = ts, ts
	m.sections[section.ID] = *cloneSection(section)
	return cloneSection(section), nil
}

func (m *MemoryRepository) UpdateSection(_ context.Context, id string, section models.Section) (*models.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.sections[id]
	if !ok {
		return nil, fmt.Errorf("%w: section %s", ErrNotFound, id)
	}
	existing.SectionData = copyData(section.SectionData)
	existing.IsCompleted = section.IsCompleted
	existing.CompletionPercentage = section.CompletionPercentage
	existing.UpdatedAt = now()
	m.sections[id] = existing
	return cloneSection(existing), nil
}
