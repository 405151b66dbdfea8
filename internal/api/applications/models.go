package applications

import "grant-portal/internal/models"

// MaxTitleLength bounds application titles, matching the column width.
const MaxTitleLength = 255

type createRequest struct {
	Title    string
	FormData map[string]interface{}
	Status   models.Status
}

type updateRequest struct {
	Patch models.ApplicationPatch
}

type applicationResponse struct {
	Application *models.Application `json:"application"`
}

type listResponse struct {
	Applications []models.Application `json:"applications"`
}

type deleteResponse struct {
	Success bool `json:"success"`
}
