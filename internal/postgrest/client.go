// Package postgrest is a remote.Backend for a hosted PostgREST endpoint
// (for example Supabase) at {URL}/rest/v1.
package postgrest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dukerupert/chorehub/internal/remote"
	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// apiError is the PostgREST error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("postgrest: status %d", e.Status)
	}
	return fmt.Sprintf("postgrest: status %d: %s", e.Status, e.Message)
}

type Client struct {
	http *resty.Client
}

var _ remote.Backend = (*Client)(nil)

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")+"/rest/v1").
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	if cfg.APIKey != "" {
		c.SetHeader("apikey", cfg.APIKey).SetAuthToken(cfg.APIKey)
	}
	return &Client{http: c}
}

func path(table string) string {
	return "/" + url.PathEscape(table)
}

func check(op, table string, resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	se := &StatusError{Status: resp.StatusCode()}
	if e, ok := resp.Error().(*apiError); ok && e != nil {
		se.Code = e.Code
		se.Message = e.Message
	}
	return fmt.Errorf("%s %s: %w", op, table, se)
}

func (c *Client) Insert(ctx context.Context, table string, row remote.Row) (remote.Row, error) {
	var out []remote.Row
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(row).
		SetResult(&out).
		SetError(&apiError{}).
		Post(path(table))
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}
	if err := check("insert", table, resp); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("insert %s: empty representation", table)
	}
	return out[0], nil
}

// Update asks for the patched rows back; PostgREST answers 200 with an empty
// array when the filter matched nothing.
func (c *Client) Update(ctx context.Context, table, id string, fields remote.Row) error {
	var out []remote.Row
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+id).
		SetBody(fields).
		SetResult(&out).
		SetError(&apiError{}).
		Patch(path(table))
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if err := check("update", table, resp); err != nil {
		return err
	}
	if len(out) == 0 {
		return fmt.Errorf("update %s %s: %w", table, id, remote.ErrNoRow)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, table, id string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("id", "eq."+id).
		SetError(&apiError{}).
		Delete(path(table))
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return check("delete", table, resp)
}

func (c *Client) List(ctx context.Context, table string, filter remote.Row) ([]remote.Row, error) {
	params := map[string]string{
		"select": "*",
		"order":  "created_at.asc,id.asc",
	}
	for k, v := range filter {
		params[k] = fmt.Sprintf("eq.%v", v)
	}

	var out []remote.Row
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&out).
		SetError(&apiError{}).
		Get(path(table))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	if err := check("list", table, resp); err != nil {
		return nil, err
	}
	return out, nil
}
