package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"grant-portal/internal/common/config"
	commonhttp "grant-portal/internal/common/http"
)

// ErrNoRows is returned when a single-row PostgREST request matched nothing.
var ErrNoRows = errors.New("NO_ROWS")

// postgrestNoRows is the PostgREST code for a singular request with zero rows.
const postgrestNoRows = "PGRST116"

// PostgRESTError is a non-2xx PostgREST response.
type PostgRESTError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *PostgRESTError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postgrest %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("postgrest %d: %s", e.Status, e.Message)
}

// Query holds PostgREST filters for one request.
type Query struct {
	params url.Values
	single bool
}

func NewQuery() *Query {
	return &Query{params: url.Values{}}
}

// Eq adds a column=eq.value filter.
func (q *Query) Eq(column, value string) *Query {
	q.params.Add(column, "eq."+value)
	return q
}

// Order sorts by column, descending when desc is set.
func (q *Query) Order(column string, desc bool) *Query {
	dir := "asc"
	if desc {
		dir = "desc"
	}
	q.params.Set("order", column+"."+dir)
	return q
}

// Single requests exactly one row as an object.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

func (q *Query) encode() string {
	if q == nil || len(q.params) == 0 {
		return ""
	}
	return "?" + q.params.Encode()
}

// SupabaseClient talks to the PostgREST endpoint of a Supabase project.
type SupabaseClient struct {
	baseURL string
	apiKey  string
	http    *commonhttp.Client
}

func NewSupabase(cfg config.SupabaseConfig) (*SupabaseClient, error) {
	key := cfg.ServiceKey
	if key == "" {
		key = cfg.AnonKey
	}
	if cfg.URL == "" || key == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	return NewSupabaseWithClient(cfg.URL, key, commonhttp.NewClient(config.GetDuration(cfg.Timeout))), nil
}

func NewSupabaseWithClient(baseURL, apiKey string, client *commonhttp.Client) *SupabaseClient {
	return &SupabaseClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    client,
	}
}

func (c *SupabaseClient) headers(q *Query, returnRows bool) http.Header {
	h := http.Header{}
	h.Set("apikey", c.apiKey)
	h.Set("Authorization", "Bearer "+c.apiKey)
	if returnRows {
		h.Set("Prefer", "return=representation")
	}
	if q != nil && q.single {
		h.Set("Accept", "application/vnd.pgrst.object+json")
	}
	return h
}

func (c *SupabaseClient) do(ctx context.Context, method, table string, q *Query, body, out interface{}) error {
	endpoint := c.baseURL + "/rest/v1/" + table + q.encode()
	resp, err := c.http.JSON(ctx, method, endpoint, c.headers(q, method != http.MethodGet), body)
	if err != nil {
		return err
	}
	if !resp.OK() {
		apiErr := &PostgRESTError{Status: resp.StatusCode}
		if decodeErr := json.Unmarshal(resp.Body, apiErr); decodeErr != nil {
			apiErr.Message = strings.TrimSpace(string(resp.Body))
		}
		if apiErr.Code == postgrestNoRows {
			return fmt.Errorf("%w: %s", ErrNoRows, table)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// Select reads rows from table into out.
func (c *SupabaseClient) Select(ctx context.Context, table string, q *Query, out interface{}) error {
	return c.do(ctx, http.MethodGet, table, q, nil, out)
}

// Insert creates row and decodes the stored rows into out.
func (c *SupabaseClient) Insert(ctx context.Context, table string, row, out interface{}) error {
	return c.do(ctx, http.MethodPost, table, nil, row, out)
}

// Update patches the rows matched by q.
func (c *SupabaseClient) Update(ctx context.Context, table string, q *Query, patch, out interface{}) error {
	return c.do(ctx, http.MethodPatch, table, q, patch, out)
}

// Delete removes the rows matched by q and decodes them into out.
func (c *SupabaseClient) Delete(ctx context.Context, table string, q *Query, out interface{}) error {
	return c.do(ctx, http.MethodDelete, table, q, nil, out)
}
