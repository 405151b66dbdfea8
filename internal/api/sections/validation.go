package sections

import (
	"strings"

	apperrors "grant-portal/internal/common/errors"
	"grant-portal/internal/common/validation"
)

func saveSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"section_name"},
		Properties: map[string]validation.Property{
			"section_name": {
				Type:        "string",
				Description: "Step identifier, unique per application",
			},
			"section_data": {
				Type:        []string{"object", "null"},
				Description: "Answers owned by the step",
			},
			"is_completed": {Type: "boolean"},
			"completion_percentage": {
				Type:    "integer",
				Minimum: validation.FloatPtr(0),
				Maximum: validation.FloatPtr(100),
			},
		},
		AdditionalProperties: true,
	}
}

func parseSave(doc interface{}) (*saveRequest, error) {
	body, ok := doc.(map[string]interface{})
	if !ok {
		return nil, apperrors.NewInvalidRequestError("body must be an object")
	}
	switch name := body["section_name"].(type) {
	case nil:
		return nil, apperrors.NewSectionNameRequiredError()
	case string:
		if strings.TrimSpace(name) == "" {
			return nil, apperrors.NewSectionNameRequiredError()
		}
	}

	result, err := validation.Validate(body, saveSchema())
	if err != nil {
		return nil, apperrors.NewInvalidRequestError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidRequestError(strings.Join(result.GetErrorMessages(), "; "))
	}

	req := &saveRequest{
		SectionName: strings.TrimSpace(body["section_name"].(string)),
		SectionData: map[string]interface{}{},
	}
	if data, ok := body["section_data"].(map[string]interface{}); ok {
		req.SectionData = validation.SanitizeData(data)
	}
	if done, ok := body["is_completed"].(bool); ok {
		req.IsCompleted = done
	}
	if pct, ok := body["completion_percentage"].(float64); ok {
		req.CompletionPercentage = int(pct)
	}
	return req, nil
}
