package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "grant-portal/internal/common/errors"
	"grant-portal/internal/common/logger"
	"grant-portal/internal/models"
)

type contextKey struct{}

// WithUser stores user in ctx.
func WithUser(ctx context.Context, user *models.AuthUser) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*models.AuthUser, bool) {
	user, ok := ctx.Value(contextKey{}).(*models.AuthUser)
	return user, ok && user != nil
}

// UserID returns the authenticated user id or "".
func UserID(r *http.Request) string {
	if user, ok := UserFromContext(r.Context()); ok {
		return user.ID
	}
	return ""
}

// Middleware authenticates requests from a bearer token or session cookie.
type Middleware struct {
	verifier  Verifier
	allowlist *Allowlist
	cookie    string
	errors    *apperrors.HTTPErrorHandler
	logger    logger.Logger
}

func NewMiddleware(verifier Verifier, allowlist *Allowlist, cookie string, handler *apperrors.HTTPErrorHandler, log logger.Logger) *Middleware {
	return &Middleware{
		verifier:  verifier,
		allowlist: allowlist,
		cookie:    cookie,
		errors:    handler,
		logger:    log.WithFields(map[string]interface{}{"component": "auth"}),
	}
}

func (m *Middleware) token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if m.cookie != "" {
		if c, err := r.Cookie(m.cookie); err == nil {
			return c.Value
		}
	}
	return ""
}

// Handler rejects unauthenticated requests with 401 and users outside the
// allowlist with 403.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.token(r)
		if token == "" {
			m.errors.Write(w, r, apperrors.NewUnauthorizedError("missing access token"))
			return
		}

		user, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrInvalidToken) && !errors.Is(err, ErrMissingToken) {
				m.logger.Error("token verification failed", map[string]interface{}{"error": err})
			}
			m.errors.Write(w, r, apperrors.NewUnauthorizedError("invalid access token"))
			return
		}

		if !m.allowlist.Allows(user.Email) {
			m.errors.Write(w, r, apperrors.NewAccessDeniedError(user.NormalizedEmail()))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}
