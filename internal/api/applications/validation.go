package applications

import (
	"strings"

	apperrors "grant-portal/internal/common/errors"
	"grant-portal/internal/common/validation"
	"grant-portal/internal/models"
)

func createSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"title"},
		Properties: map[string]validation.Property{
			"title": {
				Type:        "string",
				Description: "Application title",
				MaxLength:   validation.IntPtr(MaxTitleLength),
			},
			"form_data": {
				Type:        []string{"object", "null"},
				Description: "Answers keyed by field name",
			},
			"status": {
				Type:        "string",
				Description: "Initial status, draft or submitted",
			},
		},
		AdditionalProperties: true,
	}
}

func updateSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"title": {
				Type:      "string",
				MaxLength: validation.IntPtr(MaxTitleLength),
			},
			"form_data": {Type: "object"},
			"status":    {Type: "string"},
		},
		AdditionalProperties: true,
	}
}

func checkSchema(doc interface{}, schema validation.JSONSchema) error {
	result, err := validation.Validate(doc, schema)
	if err != nil {
		return apperrors.NewInvalidRequestError(err.Error())
	}
	if !result.Valid {
		return apperrors.NewInvalidRequestError(strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}

func sanitizeTitle(raw string) string {
	return strings.TrimSpace(validation.SanitizeText(raw))
}

func parseCreate(doc interface{}) (*createRequest, error) {
	body, ok := doc.(map[string]interface{})
	if !ok {
		return nil, apperrors.NewInvalidRequestError("body must be an object")
	}
	if err := checkSchema(body, createSchema()); err != nil {
		return nil, err
	}

	req := &createRequest{Status: models.StatusDraft}
	req.Title = sanitizeTitle(body["title"].(string))
	if req.Title == "" {
		return nil, apperrors.NewTitleRequiredError()
	}

	if data, ok := body["form_data"].(map[string]interface{}); ok {
		req.FormData = validation.SanitizeData(data)
	} else {
		req.FormData = map[string]interface{}{}
	}

	if raw, ok := body["status"].(string); ok {
		status, err := models.ParseStatus(raw)
		if err != nil || (status != models.StatusDraft && status != models.StatusSubmitted) {
			return nil, apperrors.NewInvalidStatusError(raw)
		}
		req.Status = status
	}
	return req, nil
}

func parseUpdate(doc interface{}) (*updateRequest, error) {
	body, ok := doc.(map[string]interface{})
	if !ok {
		return nil, apperrors.NewInvalidRequestError("body must be an object")
	}
	if err := checkSchema(body, updateSchema()); err != nil {
		return nil, err
	}

	req := &updateRequest{}
	if raw, ok := body["title"].(string); ok {
		title := sanitizeTitle(raw)
		if title == "" {
			return nil, apperrors.NewTitleRequiredError()
		}
		req.Patch.Title = &title
	}
	if data, ok := body["form_data"].(map[string]interface{}); ok {
		req.Patch.FormData = validation.SanitizeData(data)
	}
	if raw, ok := body["status"].(string); ok {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return nil, apperrors.NewInvalidStatusError(raw)
		}
		req.Patch.Status = &status
	}
	return req, nil
}
