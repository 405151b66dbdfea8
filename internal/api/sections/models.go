package sections

import "grant-portal/internal/models"

type saveRequest struct {
	SectionName          string
	SectionData          map[string]interface{}
	IsCompleted          bool
	CompletionPercentage int
}

type sectionResponse struct {
	Section *models.Section `json:"section"`
}

type listResponse struct {
	Sections []models.Section `json:"sections"`
}
