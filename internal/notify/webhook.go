package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"grant-portal/internal/common/config"
	commonhttp "grant-portal/internal/common/http"
	"grant-portal/internal/common/logger"
	"grant-portal/internal/common/metrics"
	"grant-portal/internal/form/steps"
	"grant-portal/internal/models"
)

var ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")

// WebhookNotifier posts a form-response event for each submission.
type WebhookNotifier struct {
	url      string
	formID   string
	formName string
	steps    *steps.Config
	http     *commonhttp.Client
	logger   logger.Logger
	now      func() time.Time
}

func NewWebhookNotifier(cfg config.WebhookConfig, form *steps.Config, client *commonhttp.Client, log logger.Logger) *WebhookNotifier {
	if client == nil {
		client = commonhttp.NewClient(config.GetDuration(cfg.Timeout))
	}
	return &WebhookNotifier{
		url:      cfg.URL,
		formID:   cfg.FormID,
		formName: cfg.FormName,
		steps:    form,
		http:     client,
		logger:   log.WithFields(map[string]interface{}{"component": "webhook"}),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// BuildEvent maps an application onto the form-response payload. Every
// configured field is listed in form order, blank ones included.
func (n *WebhookNotifier) BuildEvent(app *models.Application) models.FormResponseEvent {
	values := models.FormValuesFromData(app.FormData, n.steps.FieldNames())
	createdAt := n.now().Format(time.RFC3339)

	fields := make([]models.FormResponseField, 0, len(values))
	for _, f := range n.steps.Fields() {
		field := models.FormResponseField{
			Key:   f.Name,
			Label: f.Label,
			Type:  models.FieldTypeInputText,
			Value: values[f.Name],
		}
		if f.Kind == steps.KindFile {
			field.Type = models.FieldTypeFileUpload
			field.Value = models.FileValue{URL: values[f.Name]}
		}
		fields = append(fields, field)
	}

	formID := n.formID
	if formID == "" {
		formID = app.ID
	}

	return models.FormResponseEvent{
		EventID:   uuid.New().String(),
		EventType: models.EventTypeFormResponseFinished,
		CreatedAt: createdAt,
		Data: models.FormResponseData{
			ResponseID:   app.ID,
			SubmissionID: uuid.New().String(),
			RespondentID: app.UserID,
			FormID:       formID,
			FormName:     n.formName,
			CreatedAt:    createdAt,
			Fields:       fields,
		},
	}
}

func (n *WebhookNotifier) ApplicationSubmitted(ctx context.Context, app *models.Application) error {
	event := n.BuildEvent(app)

	resp, err := n.http.JSON(ctx, http.MethodPost, n.url, nil, event)
	if err == nil && !resp.OK() {
		err = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %v", ErrNotificationSendFailed, err)
	}

	metrics.WebhookDeliveries.WithLabelValues("delivered").Inc()
	n.logger.Info("submission webhook delivered", map[string]interface{}{
		"applicationId": app.ID,
		"eventId":       event.EventID,
	})
	return nil
}
