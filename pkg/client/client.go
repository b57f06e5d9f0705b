// Package client is a typed HTTP client for the readings API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"CapIot.readings/internal/models"
	"github.com/go-resty/resty/v2"
)

// Response and error shapes served by the API.
type (
	APIError        = models.APIError
	Reading         = models.Reading
	StatusResponse  = models.StatusResponse
	HealthResponse  = models.HealthResponse
	RoutesResponse  = models.RoutesResponse
	SaveResponse    = models.SaveResponse
	ListResponse    = models.ListResponse
	ReadingResponse = models.ReadingResponse
	RangeResponse   = models.RangeResponse
	DeleteResponse  = models.DeleteResponse
)

const defaultTimeout = 10 * time.Second

// Client talks to one readings API instance.
type Client struct {
	http *resty.Client
}

// Option customises a Client.
type Option func(*resty.Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

// WithRequestID sends a fixed X-Request-ID header on every request.
func WithRequestID(id string) Option {
	return func(c *resty.Client) { c.SetHeader("X-Request-ID", id) }
}

func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{http: rc}
}

// ListOptions are the optional parameters of List. Zero values use the server defaults.
type ListOptions struct {
	Limit   int
	OrderBy string
	Order   string
}

// Status calls GET /.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	return &out, c.do(ctx, http.MethodGet, "/", nil, nil, &out)
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	return &out, c.do(ctx, http.MethodGet, "/health", nil, nil, &out)
}

// Routes calls GET /routes.
func (c *Client) Routes(ctx context.Context) (*RoutesResponse, error) {
	var out RoutesResponse
	return &out, c.do(ctx, http.MethodGet, "/routes", nil, nil, &out)
}

// Save posts the five values as a new reading.
func (c *Client) Save(ctx context.Context, values [5]any) (*SaveResponse, error) {
	body := make(map[string]any, len(values))
	for i, field := range models.RequiredFields {
		body[field] = values[i]
	}
	return c.SaveRaw(ctx, body)
}

// SaveRaw posts body unchanged, so callers can omit fields.
func (c *Client) SaveRaw(ctx context.Context, body map[string]any) (*SaveResponse, error) {
	var out SaveResponse
	return &out, c.do(ctx, http.MethodPost, "/data", nil, body, &out)
}

// List calls GET /data.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResponse, error) {
	params := map[string]string{}
	if opts.Limit > 0 {
		params["limit"] = strconv.Itoa(opts.Limit)
	}
	if opts.OrderBy != "" {
		params["orderBy"] = opts.OrderBy
	}
	if opts.Order != "" {
		params["order"] = opts.Order
	}
	var out ListResponse
	return &out, c.do(ctx, http.MethodGet, "/data", params, nil, &out)
}

// Get calls GET /data/{id}.
func (c *Client) Get(ctx context.Context, id string) (*ReadingResponse, error) {
	var out ReadingResponse
	return &out, c.do(ctx, http.MethodGet, "/data/"+url.PathEscape(id), nil, nil, &out)
}

// Latest calls GET /data/latest. Data is nil when the store is empty.
func (c *Client) Latest(ctx context.Context) (*ReadingResponse, error) {
	var out ReadingResponse
	return &out, c.do(ctx, http.MethodGet, "/data/latest", nil, nil, &out)
}

// Range calls GET /data/range with dates in YYYY-MM-DD form. limit <= 0 uses the server default.
func (c *Client) Range(ctx context.Context, startDate, endDate string, limit int) (*RangeResponse, error) {
	params := map[string]string{"startDate": startDate, "endDate": endDate}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	var out RangeResponse
	return &out, c.do(ctx, http.MethodGet, "/data/range", params, nil, &out)
}

// Delete calls DELETE /data/{id}.
func (c *Client) Delete(ctx context.Context, id string) (*DeleteResponse, error) {
	var out DeleteResponse
	return &out, c.do(ctx, http.MethodDelete, "/data/"+url.PathEscape(id), nil, nil, &out)
}

// do runs one request. Error responses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, params map[string]string, body, result any) error {
	apiErr := &APIError{}
	req := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		SetError(apiErr)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		if apiErr.Code == "" {
			apiErr.Code = models.ErrorCodeInternalServerError
			apiErr.Message = resp.Status()
		}
		return apiErr
	}
	return nil
}
