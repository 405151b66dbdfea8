package applications

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"grant-portal/internal/common/auth"
	apperrors "grant-portal/internal/common/errors"
	commonhttp "grant-portal/internal/common/http"
	"grant-portal/internal/common/logger"
	"grant-portal/internal/common/metrics"
	"grant-portal/internal/models"
	"grant-portal/internal/notify"
	"grant-portal/internal/repository"
)

// Handler serves the application collection and item endpoints.
type Handler struct {
	repo     repository.Repository
	notifier notify.Notifier
	errors   *apperrors.HTTPErrorHandler
	logger   logger.Logger
}

func NewHandler(repo repository.Repository, notifier notify.Notifier, errs *apperrors.HTTPErrorHandler, log logger.Logger) *Handler {
	if notifier == nil {
		notifier = notify.NoOp{}
	}
	return &Handler{
		repo:     repo,
		notifier: notifier,
		errors:   errs,
		logger:   log.WithFields(map[string]interface{}{"component": "applications"}),
	}
}

// Register mounts the routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/applications", h.List).Methods(http.MethodGet)
	r.HandleFunc("/applications", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/applications/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/applications/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/applications/{id}", h.Delete).Methods(http.MethodDelete)
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request) (*models.AuthUser, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.errors.Write(w, r, apperrors.NewUnauthorizedError("no user in request context"))
	}
	return user, ok
}

func (h *Handler) storageError(id, message string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewApplicationNotFoundError(id)
	}
	return apperrors.NewDatabaseError(message, err)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	apps, err := h.repo.ListApplications(r.Context(), user.ID)
	if err != nil {
		h.errors.Write(w, r, apperrors.NewDatabaseError("Failed to fetch applications", err))
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, listResponse{Applications: apps})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	var doc interface{}
	if err := commonhttp.DecodeJSON(r, &doc); err != nil {
		h.errors.Write(w, r, apperrors.NewInvalidRequestError(err.Error()))
		return
	}
	req, err := parseCreate(doc)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	app, err := h.repo.CreateApplication(r.Context(), models.Application{
		UserID:   user.ID,
		Title:    req.Title,
		Status:   req.Status,
		FormData: req.FormData,
	})
	if err != nil {
		h.errors.Write(w, r, apperrors.NewDatabaseError("Failed to create application", err))
		return
	}

	metrics.ApplicationsCreated.WithLabelValues(string(app.Status)).Inc()
	h.logger.Info("application created", map[string]interface{}{
		"applicationId": app.ID,
		"userId":        user.ID,
		"status":        app.Status,
	})
	if app.Status == models.StatusSubmitted {
		h.submitted(r.Context(), app)
	}
	commonhttp.WriteJSON(w, http.StatusCreated, applicationResponse{Application: app})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	app, err := h.repo.GetApplication(r.Context(), user.ID, id)
	if err != nil {
		h.errors.Write(w, r, h.storageError(id, "Failed to fetch application", err))
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, applicationResponse{Application: app})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	var doc interface{}
	if err := commonhttp.DecodeJSON(r, &doc); err != nil {
		h.errors.Write(w, r, apperrors.NewInvalidRequestError(err.Error()))
		return
	}
	req, err := parseUpdate(doc)
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	existing, err := h.repo.GetApplication(r.Context(), user.ID, id)
	if err != nil {
		h.errors.Write(w, r, h.storageError(id, "Failed to update application", err))
		return
	}
	if to := req.Patch.Status; to != nil && !models.CanTransition(existing.Status, *to) {
		h.errors.Write(w, r, apperrors.NewInvalidStatusTransitionError(string(existing.Status), string(*to)))
		return
	}

	app, err := h.repo.UpdateApplication(r.Context(), user.ID, id, req.Patch)
	if err != nil {
		h.errors.Write(w, r, h.storageError(id, "Failed to update application", err))
		return
	}

	if existing.Status != models.StatusSubmitted && app.Status == models.StatusSubmitted {
		h.submitted(r.Context(), app)
	}
	commonhttp.WriteJSON(w, http.StatusOK, applicationResponse{Application: app})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	if err := h.repo.DeleteApplication(r.Context(), user.ID, id); err != nil {
		h.errors.Write(w, r, h.storageError(id, "Failed to delete application", err))
		return
	}
	h.logger.Info("application deleted", map[string]interface{}{"applicationId": id, "userId": user.ID})
	commonhttp.WriteJSON(w, http.StatusOK, deleteResponse{Success: true})
}

// submitted runs the side effects of reaching the submitted status. Webhook
// failures are logged only.
func (h *Handler) submitted(ctx context.Context, app *models.Application) {
	metrics.ApplicationsSubmitted.Inc()
	if err := h.notifier.ApplicationSubmitted(ctx, app); err != nil {
		h.logger.Warn("submission webhook failed", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err,
		})
	}
}
