package models

import (
	"strings"
	"time"
)

// AuthUser is the identity resolved from a bearer token.
type AuthUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// NormalizedEmail is the lower-cased, trimmed email used for allowlist checks.
func (u *AuthUser) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(u.Email))
}
