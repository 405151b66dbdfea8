package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"grant-portal/internal/common/database"
	"grant-portal/internal/common/logger"
	"grant-portal/internal/models"
)

const applicationColumns = `id, user_id, title, status, form_data, created_at, updated_at`

const sectionColumns = `id, application_id, section_name, section_data, is_completed, completion_percentage, created_at, updated_at`

// PostgresRepository talks to the schema in internal/migrations directly.
type PostgresRepository struct {
	db     *database.PostgresClient
	logger logger.Logger
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(db *database.PostgresClient, log logger.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "postgres-repository"}),
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row scanner) (*models.Application, error) {
	var (
		a    models.Application
		data []byte
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.Title, &a.Status, &data, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.FormData = map[string]interface{}{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &a.FormData); err != nil {
			return nil, fmt.Errorf("decode form_data: %w", err)
		}
	}
	return &a, nil
}

func scanSection(row scanner) (*models.Section, error) {
	var (
		s    models.Section
		data []byte
	)
	if err := row.Scan(&s.ID, &s.ApplicationID, &s.SectionName, &data, &s.IsCompleted,
		&s.CompletionPercentage, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.SectionData = map[string]interface{}{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.SectionData); err != nil {
			return nil, fmt.Errorf("decode section_data: %w", err)
		}
	}
	return &s, nil
}

func missing(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// audit records an event. Failures are logged and never returned.
func (r *PostgresRepository) audit(ctx context.Context, event, applicationID string, details map[string]interface{}) {
	payload, err := json.Marshal(details)
	if err != nil {
		r.logger.Warn("failed to marshal audit log details", map[string]interface{}{"error": err})
		payload = []byte("{}")
	}

	_, err = r.db.DB.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event, "application", applicationID, payload, now())
	if err != nil {
		r.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": applicationID,
			"event":         event,
		})
	}
}

func (r *PostgresRepository) ListApplications(ctx context.Context, userID string) ([]models.Application, error) {
	rows, err := r.db.DB.QueryContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE user_id = $1
		ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	out := make([]models.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateApplication(ctx context.Context, app models.Application) (*models.Application, error) {
	if app.Status == "" {
		app.Status = models.StatusDraft
	}
	if app.FormData == nil {
		app.FormData = map[string]interface{}{}
	}
	data, err := json.Marshal(app.FormData)
	if err != nil {
		return nil, fmt.Errorf("marshal form_data: %w", err)
	}

	ts := now()
	created, err := scanApplication(r.db.DB.QueryRowContext(ctx, `
		INSERT INTO applications (id, user_id, title, status, form_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING `+applicationColumns,
		uuid.New().String(), app.UserID, app.Title, app.Status, data, ts))
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}

	r.audit(ctx, "application_created", created.ID, map[string]interface{}{
		"userId": created.UserID,
		"status": created.Status,
	})
	if created.Status == models.StatusSubmitted {
		r.audit(ctx, "application_submitted", created.ID, map[string]interface{}{"userId": created.UserID})
	}
	return created, nil
}

func (r *PostgresRepository) GetApplication(ctx context.Context, userID, id string) (*models.Application, error) {
	a, err := scanApplication(r.db.DB.QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, missing(err, "application "+id)
	}
	return a, nil
}

func (r *PostgresRepository) UpdateApplication(ctx context.Context, userID, id string, patch models.ApplicationPatch) (*models.Application, error) {
	var data interface{}
	if patch.FormData != nil {
		raw, err := json.Marshal(patch.FormData)
		if err != nil {
			return nil, fmt.Errorf("marshal form_data: %w", err)
		}
		data = raw
	}
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}

	updated, err := scanApplication(r.db.DB.QueryRowContext(ctx, `
		UPDATE applications
		SET title = COALESCE($3, title),
		    status = COALESCE($4, status),
		    form_data = COALESCE($5, form_data),
		    updated_at = $6
		WHERE id = $1 AND user_id = $2
		RETURNING `+applicationColumns,
		id, userID, patch.Title, status, data, now()))
	if err != nil {
		return nil, missing(err, "application "+id)
	}

	if patch.Status != nil && *patch.Status == models.StatusSubmitted {
		r.audit(ctx, "application_submitted", id, map[string]interface{}{"userId": userID})
	}
	return updated, nil
}

func (r *PostgresRepository) DeleteApplication(ctx context.Context, userID, id string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM application_sections WHERE application_id = $1
			AND EXISTS (SELECT 1 FROM applications WHERE id = $1 AND user_id = $2)`, id, userID); err != nil {
			return fmt.Errorf("delete sections: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM applications WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return fmt.Errorf("delete application: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: application %s", ErrNotFound, id)
		}
		return nil
	})
}

func (r *PostgresRepository) ListSections(ctx context.Context, applicationID string) ([]models.Section, error) {
	rows, err := r.db.DB.QueryContext(ctx, `
		SELECT `+sectionColumns+`
		FROM application_sections
		WHERE application_id = $1
		ORDER BY updated_at DESC`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	out := make([]models.Section, 0)
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) FindSection(ctx context.Context, applicationID, sectionName string) (*models.Section, error) {
	s, err := scanSection(r.db.DB.QueryRowContext(ctx, `
		SELECT `+sectionColumns+`
		FROM application_sections
		WHERE application_id = $1 AND section_name = $2`, applicationID, sectionName))
	if err != nil {
		return nil, missing(err, "section "+sectionName)
	}
	return s, nil
}

func (r *PostgresRepository) CreateSection(ctx context.Context, section models.Section) (*models.Section, error) {
	data, err := json.Marshal(section.SectionData)
	if err != nil {
		return nil, fmt.Errorf("marshal section_data: %w", err)
	}
	ts := now()
	created, err := scanSection(r.db.DB.QueryRowContext(ctx, `
		INSERT INTO application_sections (`+sectionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING `+sectionColumns,
		uuid.New().String(), section.ApplicationID, section.SectionName, data,
		section.IsCompleted, section.CompletionPercentage, ts))
	if err != nil {
		return nil, fmt.Errorf("insert section: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) UpdateSection(ctx context.Context, id string, section models.Section) (*models.Section, error) {
	data, err := json.Marshal(section.SectionData)
	if err != nil {
		return nil, fmt.Errorf("marshal section_data: %w", err)
	}
	updated, err := scanSection(r.db.DB.QueryRowContext(ctx, `
		UPDATE application_sections
		SET section_data = $2, is_completed = $3, completion_percentage = $4, updated_at = $5
		WHERE id = $1
		RETURNING `+sectionColumns,
		id, data, section.IsCompleted, section.CompletionPercentage, now()))
	if err != nil {
		return nil, missing(err, "section "+id)
	}
	return updated, nil
}
