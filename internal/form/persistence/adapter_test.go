package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grant-portal/internal/common/logger"
	"grant-portal/internal/form/steps"
	"grant-portal/internal/models"
)

// ==========================
// Test fixtures
// ==========================

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	args := m.Called(ctx, id)
	app, _ := args.Get(0).(*models.Application)
	return app, args.Error(1)
}

func (m *mockAPI) CreateApplication(ctx context.Context, in CreateInput) (*models.Application, error) {
	args := m.Called(ctx, in)
	app, _ := args.Get(0).(*models.Application)
	return app, args.Error(1)
}

func (m *mockAPI) UpdateApplication(ctx context.Context, id string, patch models.ApplicationPatch) (*models.Application, error) {
	args := m.Called(ctx, id, patch)
	app, _ := args.Get(0).(*models.Application)
	return app, args.Error(1)
}

func (m *mockAPI) SaveSection(ctx context.Context, applicationID string, in SectionInput) (*models.Section, bool, error) {
	args := m.Called(ctx, applicationID, in)
	s, _ := args.Get(0).(*models.Section)
	return s, args.Bool(1), args.Error(2)
}

func newAdapter(t *testing.T, api DataAPI) *Adapter {
	return NewAdapter(api, steps.Grant(), logger.NewTestLogger(t))
}

func basicInfo() models.FormValues {
	values := models.FormValuesFromData(nil, steps.Grant().FieldNames())
	values["company_name"] = "  Acme  "
	values["founder_name"] = "Jo"
	values["founder_email"] = "jo@acme.com"
	return values
}

// ==========================
// SaveDraft
// ==========================

func TestSaveDraft_CreatesThenSavesSection(t *testing.T) {
	api := &mockAPI{}
	api.On("CreateApplication", mock.Anything, mock.MatchedBy(func(in CreateInput) bool {
		_, hasFile := in.FormData[steps.FieldFinancialStatementsURL]
		return in.Title == "Acme" && in.Status == models.StatusDraft && !hasFile &&
			in.FormData["founder_name"] == "Jo" && in.FormData["business_description"] == ""
	})).Return(&models.Application{ID: "app-1"}, nil).Once()
	api.On("SaveSection", mock.Anything, "app-1", SectionInput{
		SectionName: steps.BasicInfo,
		SectionData: map[string]interface{}{
			"company_name":  "  Acme  ",
			"founder_name":  "Jo",
			"founder_email": "jo@acme.com",
			"website_url":   "",
		},
		IsCompleted:          false,
		CompletionPercentage: 75,
	}).Return(&models.Section{ID: "s1"}, true, nil).Once()

	id, err := newAdapter(t, api).SaveDraft(context.Background(), "", 0, basicInfo())

	require.NoError(t, err)
	assert.Equal(t, "app-1", id)
	api.AssertExpectations(t)
}

func TestSaveDraft_UpdatesExisting(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateApplication", mock.Anything, "app-1", mock.MatchedBy(func(p models.ApplicationPatch) bool {
		return p.Status == nil && p.Title != nil && *p.Title == models.DraftTitle
	})).Return(&models.Application{ID: "app-1"}, nil).Once()
	api.On("SaveSection", mock.Anything, "app-1", mock.MatchedBy(func(in SectionInput) bool {
		return in.SectionName == steps.BusinessOverview && in.CompletionPercentage == 0
	})).Return(&models.Section{}, false, nil).Once()

	values := models.FormValuesFromData(nil, steps.Grant().FieldNames())
	id, err := newAdapter(t, api).SaveDraft(context.Background(), "app-1", 1, values)

	require.NoError(t, err)
	assert.Equal(t, "app-1", id)
	api.AssertExpectations(t)
}

func TestSaveDraft_SectionFailureKeepsID(t *testing.T) {
	api := &mockAPI{}
	api.On("CreateApplication", mock.Anything, mock.Anything).Return(&models.Application{ID: "app-1"}, nil).Once()
	api.On("SaveSection", mock.Anything, "app-1", mock.Anything).
		Return(nil, false, &APIError{Status: 500, Message: "Failed to create application section"}).Once()

	id, err := newAdapter(t, api).SaveDraft(context.Background(), "", 0, basicInfo())

	require.Error(t, err)
	assert.Equal(t, "app-1", id)
}

func TestSaveDraft_CreateFailure(t *testing.T) {
	api := &mockAPI{}
	api.On("CreateApplication", mock.Anything, mock.Anything).Return(nil, errors.New("offline")).Once()

	id, err := newAdapter(t, api).SaveDraft(context.Background(), "", 0, basicInfo())

	require.Error(t, err)
	assert.Empty(t, id)
	api.AssertNotCalled(t, "SaveSection", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveDraft_UnknownStep(t *testing.T) {
	_, err := newAdapter(t, &mockAPI{}).SaveDraft(context.Background(), "", 42, basicInfo())
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestSaveDraftSection_RequiresApplication(t *testing.T) {
	err := newAdapter(t, &mockAPI{}).SaveDraftSection(context.Background(), "", steps.BasicInfo, basicInfo(), 0, false)
	assert.ErrorIs(t, err, ErrNoApplicationID)
}

// ==========================
// Submit / Load
// ==========================

func TestSubmit_CreateWhenNew(t *testing.T) {
	api := &mockAPI{}
	api.On("CreateApplication", mock.Anything, mock.MatchedBy(func(in CreateInput) bool {
		return in.Status == models.StatusSubmitted && in.Title == models.SubmittedTitle
	})).Return(&models.Application{ID: "app-9"}, nil).Once()

	id, err := newAdapter(t, api).Submit(context.Background(), "", models.FormValues{})

	require.NoError(t, err)
	assert.Equal(t, "app-9", id)
}

func TestSubmit_UpdatesStatus(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateApplication", mock.Anything, "app-1", mock.MatchedBy(func(p models.ApplicationPatch) bool {
		return p.Status != nil && *p.Status == models.StatusSubmitted && *p.Title == "Acme"
	})).Return(&models.Application{ID: "app-1"}, nil).Once()

	id, err := newAdapter(t, api).Submit(context.Background(), "app-1", basicInfo())

	require.NoError(t, err)
	assert.Equal(t, "app-1", id)
}

func TestSubmit_FailureKeepsID(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateApplication", mock.Anything, "app-1", mock.Anything).
		Return(nil, &APIError{Status: 409, Message: "Invalid status transition"}).Once()

	id, err := newAdapter(t, api).Submit(context.Background(), "app-1", basicInfo())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid status transition", apiErr.UserMessage())
	assert.Equal(t, "app-1", id)
}

func TestLoadApplication_FillsMissingFields(t *testing.T) {
	api := &mockAPI{}
	api.On("GetApplication", mock.Anything, "app-1").Return(&models.Application{
		ID:       "app-1",
		FormData: map[string]interface{}{"company_name": "Acme", "unknown": "x"},
	}, nil).Once()

	values, err := newAdapter(t, api).LoadApplication(context.Background(), "app-1")

	require.NoError(t, err)
	assert.Equal(t, "Acme", values["company_name"])
	assert.Equal(t, "", values["founder_email"])
	assert.NotContains(t, values, "unknown")
	assert.Len(t, values, len(steps.Grant().FieldNames()))
}
