package sections

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"grant-portal/internal/common/auth"
	apperrors "grant-portal/internal/common/errors"
	commonhttp "grant-portal/internal/common/http"
	"grant-portal/internal/common/logger"
	"grant-portal/internal/common/metrics"
	"grant-portal/internal/models"
	"grant-portal/internal/repository"
)

// Handler serves the per-application section endpoints.
type Handler struct {
	repo   repository.Repository
	errors *apperrors.HTTPErrorHandler
	logger logger.Logger
}

func NewHandler(repo repository.Repository, errs *apperrors.HTTPErrorHandler, log logger.Logger) *Handler {
	return &Handler{
		repo:   repo,
		errors: errs,
		logger: log.WithFields(map[string]interface{}{"component": "sections"}),
	}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/applications/{id}/sections", h.List).Methods(http.MethodGet)
	r.HandleFunc("/applications/{id}/sections", h.Save).Methods(http.MethodPost)
}

// owned resolves the application in the path for the current user and
// writes the error response when it cannot.
func (h *Handler) owned(w http.ResponseWriter, r *http.Request, failure string) (*models.Application, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.errors.Write(w, r, apperrors.NewUnauthorizedError("no user in request context"))
		return nil, false
	}
	id := mux.Vars(r)["id"]
	app, err := h.repo.GetApplication(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.errors.Write(w, r, apperrors.NewApplicationNotFoundError(id))
		} else {
			h.errors.Write(w, r, apperrors.NewDatabaseError(failure, err))
		}
		return nil, false
	}
	return app, true
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	app, ok := h.owned(w, r, "Failed to fetch application sections")
	if !ok {
		return
	}
	list, err := h.repo.ListSections(r.Context(), app.ID)
	if err != nil {
		h.errors.Write(w, r, apperrors.NewDatabaseError("Failed to fetch application sections", err))
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, listResponse{Sections: list})
}

// Save upserts a section by name. It answers 201 when the section was
// created and 200 when an existing one was replaced.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	app, ok := h.owned(w, r, "Failed to update application section")
	if !ok {
		return
	}

	var doc interface{}
	if err := commonhttp.DecodeJSON(r, &doc); err != nil {
		h.errors.Write(w, r, apperrors.NewInvalidRequestError(err.Error()))
		return
	}
	req, err := parseSave(doc)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	saved, created, err := repository.UpsertSection(r.Context(), h.repo, models.Section{
		ApplicationID:        app.ID,
		SectionName:          req.SectionName,
		SectionData:          req.SectionData,
		IsCompleted:          req.IsCompleted,
		CompletionPercentage: req.CompletionPercentage,
	})
	if err != nil {
		metrics.SectionsSaved.WithLabelValues(metrics.SectionFailed).Inc()
		message := "Failed to update application section"
		if created {
			message = "Failed to create application section"
		}
		h.errors.Write(w, r, apperrors.NewDatabaseError(message, err))
		return
	}

	status := http.StatusOK
	result := metrics.SectionUpdated
	if created {
		status = http.StatusCreated
		result = metrics.SectionCreated
	}
	metrics.SectionsSaved.WithLabelValues(result).Inc()
	h.logger.Debug("section saved", map[string]interface{}{
		"applicationId": app.ID,
		"section":       saved.SectionName,
		"created":       created,
	})
	commonhttp.WriteJSON(w, status, sectionResponse{Section: saved})
}
