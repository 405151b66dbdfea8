package repository

import (
	"context"
	"errors"
	"fmt"

	"grant-portal/internal/common/database"
	"grant-portal/internal/models"
)

const (
	applicationsTable = "applications"
	sectionsTable     = "application_sections"
)

// SupabaseRepository stores rows through PostgREST with the service key.
// Every application query carries an explicit user_id filter.
type SupabaseRepository struct {
	client *database.SupabaseClient
}

var _ Repository = (*SupabaseRepository)(nil)

func NewSupabaseRepository(client *database.SupabaseClient) *SupabaseRepository {
	return &SupabaseRepository{client: client}
}

func notFound(err error, what string) error {
	if errors.Is(err, database.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

func first[T any](rows []T, what string) (*T, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return &rows[0], nil
}

func (r *SupabaseRepository) ListApplications(ctx context.Context, userID string) ([]models.Application, error) {
	out := make([]models.Application, 0)
	q := database.NewQuery().Eq("user_id", userID).Order("updated_at", true)
	if err := r.client.Select(ctx, applicationsTable, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SupabaseRepository) CreateApplication(ctx context.Context, app models.Application) (*models.Application, error) {
	if app.Status == "" {
		app.Status = models.StatusDraft
	}
	if app.FormData == nil {
		app.FormData = map[string]interface{}{}
	}
	row := map[string]interface{}{
		"user_id":   app.UserID,
		"title":     app.Title,
		"status":    app.Status,
		"form_data": app.FormData,
	}

	var rows []models.Application
	if err := r.client.Insert(ctx, applicationsTable, row, &rows); err != nil {
		return nil, err
	}
	return first(rows, "created application")
}

func (r *SupabaseRepository) GetApplication(ctx context.Context, userID, id string) (*models.Application, error) {
	var app models.Application
	q := database.NewQuery().Eq("id", id).Eq("user_id", userID).Single()
	if err := r.client.Select(ctx, applicationsTable, q, &app); err != nil {
		return nil, notFound(err, "application "+id)
	}
	return &app, nil
}

func (r *SupabaseRepository) UpdateApplication(ctx context.Context, userID, id string, patch models.ApplicationPatch) (*models.Application, error) {
	row := map[string]interface{}{"updated_at": now()}
	if patch.Title != nil {
		row["title"] = *patch.Title
	}
	if patch.Status != nil {
		row["status"] = *patch.Status
	}
	if patch.FormData != nil {
		row["form_data"] = patch.FormData
	}

	var rows []models.Application
	q := database.NewQuery().Eq("id", id).Eq("user_id", userID)
	if err := r.client.Update(ctx, applicationsTable, q, row, &rows); err != nil {
		return nil, err
	}
	return first(rows, "application "+id)
}

func (r *SupabaseRepository) DeleteApplication(ctx context.Context, userID, id string) error {
	var rows []models.Application
	q := database.NewQuery().Eq("id", id).Eq("user_id", userID)
	if err := r.client.Delete(ctx, applicationsTable, q, &rows); err != nil {
		return err
	}
	_, err := first(rows, "application "+id)
	return err
}

func (r *SupabaseRepository) ListSections(ctx context.Context, applicationID string) ([]models.Section, error) {
	out := make([]models.Section, 0)
	q := database.NewQuery().Eq("application_id", applicationID).Order("updated_at", true)
	if err := r.client.Select(ctx, sectionsTable, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SupabaseRepository) FindSection(ctx context.Context, applicationID, sectionName string) (*models.Section, error) {
	var s models.Section
	q := database.NewQuery().Eq("application_id", applicationID).Eq("section_name", sectionName).Single()
	if err := r.client.Select(ctx, sectionsTable, q, &s); err != nil {
		return nil, notFound(err, "section "+sectionName)
	}
	return &s, nil
}

func (r *SupabaseRepository) CreateSection(ctx context.Context, section models.Section) (*models.Section, error) {
	row := map[string]interface{}{
		"application_id":        section.ApplicationID,
		"section_name":          section.SectionName,
		"section_data":          section.SectionData,
		"is_completed":          section.IsCompleted,
		"completion_percentage": section.CompletionPercentage,
	}
	var rows []models.Section
	if err := r.client.Insert(ctx, sectionsTable, row, &rows); err != nil {
		return nil, err
	}
	return first(rows, "created section")
}

func (r *SupabaseRepository) UpdateSection(ctx context.Context, id string, section models.Section) (*models.Section, error) {
	row := map[string]interface{}{
		"section_data":          section.SectionData,
		"is_completed":          section.IsCompleted,
		"completion_percentage": section.CompletionPercentage,
		"updated_at":            now(),
	}
	var rows []models.Section
	if err := r.client.Update(ctx, sectionsTable, database.NewQuery().Eq("id", id), row, &rows); err != nil {
		return nil, err
	}
	return first(rows, "section "+id)
}
