// internal/models/notification.go
package models

// Field types used in form response events.
const (
	FieldTypeInputText  = "INPUT_TEXT"
	FieldTypeFileUpload = "FILE_UPLOAD"
)

// EventTypeFormResponseFinished marks a completed submission.
const EventTypeFormResponseFinished = "form.response_finished"

// FormResponseEvent is posted to the submission webhook.
type FormResponseEvent struct {
	EventID   string           `json:"eventId"`
	EventType string           `json:"eventType"`
	CreatedAt string           `json:"createdAt"`
	Data      FormResponseData `json:"data"`
}

type FormResponseData struct {
	ResponseID   string              `json:"responseId"`
	SubmissionID string              `json:"submissionId"`
	RespondentID string              `json:"respondentId"`
	FormID       string              `json:"formId"`
	FormName     string              `json:"formName"`
	CreatedAt    string              `json:"createdAt"`
	Fields       []FormResponseField `json:"fields"`
}

// FormResponseField.Value is a string, or a FileValue for FILE_UPLOAD fields.
type FormResponseField struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

type FileValue struct {
	URL string `json:"url"`
}
