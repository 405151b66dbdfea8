// Package auth resolves bearer tokens to users and guards the data API.
package auth

import (
	"context"
	"errors"
	"strings"

	"grant-portal/internal/models"
)

var (
	ErrMissingToken = errors.New("MISSING_TOKEN")
	ErrInvalidToken = errors.New("INVALID_TOKEN")
)

// Verifier resolves an access token to the user it was issued for.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.AuthUser, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (*models.AuthUser, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (*models.AuthUser, error) {
	return f(ctx, token)
}

// Allowlist restricts access to a fixed set of emails. An empty list admits
// every authenticated user.
type Allowlist struct {
	emails map[string]struct{}
}

func NewAllowlist(emails []string) *Allowlist {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return &Allowlist{emails: set}
}

func (a *Allowlist) Allows(email string) bool {
	if a == nil || len(a.emails) == 0 {
		return true
	}
	_, ok := a.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

func (a *Allowlist) Len() int {
	if a == nil {
		return 0
	}
	return len(a.emails)
}
