// Package notion implements the content-store HTTPS client: cursor
// pagination, collection queries, and bounded recursive block-tree
// fetching.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/starford/ansuz/internal/apperr"
)

// Defaults for the client knobs. PageSize is the API's documented
// maximum; MaxPages caps pathological pagination.
const (
	DefaultBaseURL  = "https://api.notion.com/v1"
	DefaultVersion  = "2022-06-28"
	DefaultPageSize = 100
	DefaultMaxPages = 1000
)

// ClientConfig carries the explicit construction parameters. Token is
// required; zero values elsewhere fall back to package defaults.
type ClientConfig struct {
	BaseURL    string
	Token      string
	Version    string
	PageSize   int
	MaxPages   int
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the content-store API. Safe for concurrent use; it
// holds no per-request state.
type Client struct {
	baseURL  string
	token    string
	version  string
	pageSize int
	maxPages int
	http     *http.Client
	logger   *slog.Logger
}

// NewClient creates a content-store client from cfg.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		baseURL:  cfg.BaseURL,
		token:    cfg.Token,
		version:  cfg.Version,
		pageSize: cfg.PageSize,
		maxPages: cfg.MaxPages,
		http:     cfg.HTTPClient,
		logger:   cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.version == "" {
		c.version = DefaultVersion
	}
	if c.pageSize <= 0 || c.pageSize > DefaultPageSize {
		c.pageSize = DefaultPageSize
	}
	if c.maxPages <= 0 {
		c.maxPages = DefaultMaxPages
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// listResponse is the cursor-paginated envelope shared by the query and
// list-children endpoints. Results stays raw until the caller decodes
// it into the concrete record type.
type listResponse struct {
	Results    json.RawMessage `json:"results"`
	HasMore    bool            `json:"has_more"`
	NextCursor string          `json:"next_cursor"`
}

// QueryDatabase drains the query endpoint for the given collection and
// returns all raw records in original order.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string) ([]Page, error) {
	path := "/databases/" + url.PathEscape(databaseID) + "/query"
	return fetchAllPages[Page](ctx, c, func(ctx context.Context, cursor string) (*listResponse, error) {
		body := map[string]any{"page_size": c.pageSize}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		return c.do(ctx, http.MethodPost, path, body)
	})
}

// BlockChildren drains the list-children endpoint for one parent block
// and returns its direct children in original order.
func (c *Client) BlockChildren(ctx context.Context, blockID string) ([]Block, error) {
	return fetchAllPages[Block](ctx, c, func(ctx context.Context, cursor string) (*listResponse, error) {
		q := url.Values{"page_size": {strconv.Itoa(c.pageSize)}}
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}
		path := "/blocks/" + url.PathEscape(blockID) + "/children?" + q.Encode()
		return c.do(ctx, http.MethodGet, path, nil)
	})
}

// fetchAllPages repeatedly invokes next with the previous response's
// cursor and accumulates decoded results until the upstream reports no
// more pages, no cursor is returned, or the iteration cap is hit.
func fetchAllPages[T any](ctx context.Context, c *Client, next func(ctx context.Context, cursor string) (*listResponse, error)) ([]T, error) {
	var out []T
	cursor := ""
	for range c.maxPages {
		resp, err := next(ctx, cursor)
		if err != nil {
			return nil, err
		}
		items, err := decodeResults[T](resp.Results)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		if !resp.HasMore || resp.NextCursor == "" {
			return out, nil
		}
		cursor = resp.NextCursor
	}
	c.logger.Warn("pagination cap reached, truncating result set",
		slog.Int("max_pages", c.maxPages), slog.Int("records", len(out)))
	return out, nil
}

// decodeResults enforces the array shape of the results field.
func decodeResults[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: results is not an array", apperr.ErrMalformedPayload)
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedPayload, err)
	}
	return items, nil
}

// do issues one authenticated request and decodes the pagination
// envelope. Non-2xx responses become UpstreamError with the raw body
// attached for server-side logging.
func (c *Client) do(ctx context.Context, method, path string, body any) (*listResponse, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content store request: %w", err)
	}
	defer resp.Body.Close()

	// Cap the body read; error payloads are small and success payloads
	// are bounded by the page size.
	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("content store request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(data)))
		return nil, &apperr.UpstreamError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var lr listResponse
	if err := json.Unmarshal(data, &lr); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedPayload, err)
	}
	return &lr, nil
}
