package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"grant-portal/internal/common/config"
	commonhttp "grant-portal/internal/common/http"
	"grant-portal/internal/models"
)

// SupabaseVerifier asks the Supabase auth server who owns a token.
type SupabaseVerifier struct {
	baseURL string
	apiKey  string
	http    *commonhttp.Client
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func NewSupabaseVerifier(cfg config.SupabaseConfig) *SupabaseVerifier {
	return NewSupabaseVerifierWithClient(cfg.URL, cfg.AnonKey,
		commonhttp.NewClient(config.GetDuration(cfg.Timeout)))
}

func NewSupabaseVerifierWithClient(baseURL, apiKey string, client *commonhttp.Client) *SupabaseVerifier {
	return &SupabaseVerifier{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    client,
	}
}

func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (*models.AuthUser, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	header := http.Header{}
	header.Set("apikey", v.apiKey)
	header.Set("Authorization", "Bearer "+token)

	resp, err := v.http.JSON(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", header, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase auth request: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: rejected by auth server", ErrInvalidToken)
	case !resp.OK():
		return nil, fmt.Errorf("supabase auth returned status %d", resp.StatusCode)
	}

	var u supabaseUser
	if err := resp.Decode(&u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, fmt.Errorf("%w: no user for token", ErrInvalidToken)
	}
	return &models.AuthUser{ID: u.ID, Email: u.Email, Role: u.Role}, nil
}
