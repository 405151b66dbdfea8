// Package persistence connects the form engine to the data API.
package persistence

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"grant-portal/internal/common/config"
	commonhttp "grant-portal/internal/common/http"
	"grant-portal/internal/models"
)

const defaultClientTimeout = 30 * time.Second

// APIError is a non-2xx answer from the data API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("data api: status %d: %s", e.Status, e.Message)
}

// UserMessage is the text shown to the person filling the form.
func (e *APIError) UserMessage() string {
	return e.Message
}

// SectionInput is the body of a section upsert.
type SectionInput struct {
	SectionName          string                 `json:"section_name"`
	SectionData          map[string]interface{} `json:"section_data"`
	IsCompleted          bool                   `json:"is_completed"`
	CompletionPercentage int                    `json:"completion_percentage"`
}

// CreateInput is the body of an application create.
type CreateInput struct {
	Title    string                 `json:"title"`
	FormData map[string]interface{} `json:"form_data"`
	Status   models.Status          `json:"status,omitempty"`
}

// DataAPI is the subset of the data API the adapter uses.
type DataAPI interface {
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	CreateApplication(ctx context.Context, in CreateInput) (*models.Application, error)
	UpdateApplication(ctx context.Context, id string, patch models.ApplicationPatch) (*models.Application, error)
	SaveSection(ctx context.Context, applicationID string, in SectionInput) (*models.Section, bool, error)
}

// Client calls the data API with the user's access token.
type Client struct {
	baseURL string
	token   string
	http    *commonhttp.Client
}

var _ DataAPI = (*Client)(nil)

// NewClient builds a client from the runner configuration.
func NewClient(cfg config.ClientConfig) *Client {
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	return NewClientWith(cfg.APIURL, cfg.AccessToken, commonhttp.NewClient(timeout))
}

func NewClientWith(baseURL, token string, client *commonhttp.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    client,
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (c *Client) call(ctx context.Context, method, path string, body, out interface{}, fallback string) (int, error) {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.JSON(ctx, method, c.baseURL+path, header, body)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", strings.ToLower(fallback), err)
	}
	if !resp.OK() {
		apiErr := &APIError{Status: resp.StatusCode, Message: fallback}
		var eb errorBody
		if resp.Decode(&eb) == nil {
			if eb.Error != "" {
				apiErr.Message = eb.Error
			}
			apiErr.Code = eb.Code
		}
		return resp.StatusCode, apiErr
	}
	if out != nil {
		if err := resp.Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func appPath(id string) string {
	return "/applications/" + url.PathEscape(id)
}

func (c *Client) ListApplications(ctx context.Context) ([]models.Application, error) {
	var out struct {
		Applications []models.Application `json:"applications"`
	}
	if _, err := c.call(ctx, http.MethodGet, "/applications", nil, &out, "Failed to fetch applications"); err != nil {
		return nil, err
	}
	return out.Applications, nil
}

func (c *Client) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	var out struct {
		Application *models.Application `json:"application"`
	}
	if _, err := c.call(ctx, http.MethodGet, appPath(id), nil, &out, "Failed to fetch application"); err != nil {
		return nil, err
	}
	if out.Application == nil {
		return nil, fmt.Errorf("fetch application %s: empty response", id)
	}
	return out.Application, nil
}

func (c *Client) CreateApplication(ctx context.Context, in CreateInput) (*models.Application, error) {
	var out struct {
		Application *models.Application `json:"application"`
	}
	if _, err := c.call(ctx, http.MethodPost, "/applications", in, &out, "Failed to create application"); err != nil {
		return nil, err
	}
	if out.Application == nil {
		return nil, fmt.Errorf("create application: empty response")
	}
	return out.Application, nil
}

func (c *Client) UpdateApplication(ctx context.Context, id string, patch models.ApplicationPatch) (*models.Application, error) {
	var out struct {
		Application *models.Application `json:"application"`
	}
	if _, err := c.call(ctx, http.MethodPut, appPath(id), patch, &out, "Failed to update application"); err != nil {
		return nil, err
	}
	if out.Application == nil {
		return nil, fmt.Errorf("update application %s: empty response", id)
	}
	return out.Application, nil
}

func (c *Client) DeleteApplication(ctx context.Context, id string) error {
	_, err := c.call(ctx, http.MethodDelete, appPath(id), nil, nil, "Failed to delete application")
	return err
}

func (c *Client) ListSections(ctx context.Context, applicationID string) ([]models.Section, error) {
	var out struct {
		Sections []models.Section `json:"sections"`
	}
	if _, err := c.call(ctx, http.MethodGet, appPath(applicationID)+"/sections", nil, &out, "Failed to fetch application sections"); err != nil {
		return nil, err
	}
	return out.Sections, nil
}

// SaveSection upserts a section. created reports a 201 answer.
func (c *Client) SaveSection(ctx context.Context, applicationID string, in SectionInput) (*models.Section, bool, error) {
	var out struct {
		Section *models.Section `json:"section"`
	}
	status, err := c.call(ctx, http.MethodPost, appPath(applicationID)+"/sections", in, &out, "Failed to save application section")
	if err != nil {
		return nil, false, err
	}
	return out.Section, status == http.StatusCreated, nil
}
