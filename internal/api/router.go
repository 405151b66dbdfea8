// Package api assembles the data API router.
package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grant-portal/internal/api/applications"
	"grant-portal/internal/api/sections"
	"grant-portal/internal/common/auth"
	"grant-portal/internal/common/config"
	apperrors "grant-portal/internal/common/errors"
	commonhttp "grant-portal/internal/common/http"
	"grant-portal/internal/common/logger"
	"grant-portal/internal/common/observability"
	"grant-portal/internal/notify"
	"grant-portal/internal/repository"
)

const DefaultBasePath = "/api"

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Repository    repository.Repository
	Verifier      auth.Verifier
	Allowlist     *auth.Allowlist
	Notifier      notify.Notifier
	Observability *observability.Observability
	Logger        logger.Logger
}

// NewRouter returns the HTTP handler for the data API. Everything under the
// base path requires an authenticated, allowlisted user.
func NewRouter(cfg config.ServerConfig, authCfg config.AuthConfig, deps Dependencies) http.Handler {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	errs := apperrors.NewHTTPErrorHandler(log)

	r := mux.NewRouter()
	r.Use(
		commonhttp.Recover(errs, log),
		commonhttp.RequestLogger(log),
		commonhttp.Metrics(deps.Observability),
	)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		commonhttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix(basePath(cfg.BasePath)).Subrouter()
	api.Use(auth.NewMiddleware(deps.Verifier, deps.Allowlist, authCfg.TokenCookie, errs, log).Handler)
	if cfg.RateLimit.Enabled {
		limiter := commonhttp.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		api.Use(limiter.Middleware(auth.UserID, errs))
	}

	applications.NewHandler(deps.Repository, deps.Notifier, errs, log).Register(api)
	sections.NewHandler(deps.Repository, errs, log).Register(api)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		commonhttp.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})
	return r
}

func basePath(raw string) string {
	p := strings.TrimRight(strings.TrimSpace(raw), "/")
	if p == "" {
		return DefaultBasePath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
