package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grant-portal/internal/common/logger"
	"grant-portal/internal/form/engine"
	"grant-portal/internal/form/steps"
	"grant-portal/internal/models"
)

var (
	ErrUnknownStep     = errors.New("UNKNOWN_STEP")
	ErrNoApplicationID  = errors.New("NO_APPLICATION_ID")
)

// Adapter maps form state onto application and section records. It is the
// engine's Saver.
type Adapter struct {
	api    DataAPI
	steps  *steps.Config
	logger logger.Logger
}

var _ engine.Saver = (*Adapter)(nil)

func NewAdapter(api DataAPI, cfg *steps.Config, log logger.Logger) *Adapter {
	return &Adapter{
		api:    api,
		steps:  cfg,
		logger: log.WithFields(map[string]interface{}{"component": "persistence"}),
	}
}

// LoadApplication fetches a saved application and maps its form data onto the
// configured fields.
func (a *Adapter) LoadApplication(ctx context.Context, id string) (models.FormValues, error) {
	app, err := a.api.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.FormValuesFromData(app.FormData, a.steps.FieldNames()), nil
}

// SaveDraftSection upserts the section for stepID with the fields that step owns.
func (a *Adapter) SaveDraftSection(ctx context.Context, applicationID, stepID string, values models.FormValues, pct int, complete bool) error {
	if applicationID == "" {
		return ErrNoApplicationID
	}
	step, _, ok := a.steps.ByID(stepID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStep, stepID)
	}

	data := make(map[string]interface{}, len(step.Fields))
	for _, f := range step.Fields {
		data[f.Name] = values[f.Name]
	}
	_, created, err := a.api.SaveSection(ctx, applicationID, SectionInput{
		SectionName:          step.ID,
		SectionData:          data,
		IsCompleted:          complete,
		CompletionPercentage: pct,
	})
	if err != nil {
		return err
	}
	a.logger.Debug("section saved", map[string]interface{}{
		"applicationId": applicationID,
		"section":       step.ID,
		"completion":    pct,
		"created":       created,
	})
	return nil
}

// CreateApplication creates a draft.
func (a *Adapter) CreateApplication(ctx context.Context, title string, values models.FormValues) (*models.Application, error) {
	return a.api.CreateApplication(ctx, CreateInput{
		Title:    title,
		FormData: a.formData(values),
		Status:   models.StatusDraft,
	})
}

func (a *Adapter) UpdateApplication(ctx context.Context, id string, patch models.ApplicationPatch) (*models.Application, error) {
	return a.api.UpdateApplication(ctx, id, patch)
}

// SaveDraft writes the application record and then the section for
// stepIndex. The returned id is set whenever the record exists, including
// when only the section save failed.
func (a *Adapter) SaveDraft(ctx context.Context, applicationID string, stepIndex int, values models.FormValues) (string, error) {
	step, ok := a.steps.At(stepIndex)
	if !ok {
		return applicationID, fmt.Errorf("%w: index %d", ErrUnknownStep, stepIndex)
	}

	title := models.ApplicationTitle(values, true)
	id := applicationID
	if id == "" {
		app, err := a.CreateApplication(ctx, title, values)
		if err != nil {
			return "", err
		}
		id = app.ID
	} else {
		_, err := a.UpdateApplication(ctx, id, models.ApplicationPatch{
			Title:    &title,
			FormData: a.formData(values),
		})
		if err != nil {
			return id, err
		}
	}

	pct := models.CompletionPercentage(values, step.FieldNames())
	if err := a.SaveDraftSection(ctx, id, step.ID, values, pct, pct == 100); err != nil {
		return id, err
	}
	return id, nil
}

// Submit creates or updates the application with status submitted.
func (a *Adapter) Submit(ctx context.Context, applicationID string, values models.FormValues) (string, error) {
	title := models.ApplicationTitle(values, false)
	data := a.formData(values)

	if applicationID == "" {
		app, err := a.api.CreateApplication(ctx, CreateInput{
			Title:    title,
			FormData: data,
			Status:   models.StatusSubmitted,
		})
		if err != nil {
			return "", err
		}
		return app.ID, nil
	}

	submitted := models.StatusSubmitted
	app, err := a.api.UpdateApplication(ctx, applicationID, models.ApplicationPatch{
		Title:    &title,
		Status:   &submitted,
		FormData: data,
	})
	if err != nil {
		return applicationID, err
	}
	return app.ID, nil
}

// formData lists every configured field. Blank optional file links are left out.
func (a *Adapter) formData(values models.FormValues) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for _, f := range a.steps.Fields() {
		v := values[f.Name]
		if f.Optional && f.Kind == steps.KindFile && strings.TrimSpace(v) == "" {
			continue
		}
		out[f.Name] = v
	}
	return out
}
