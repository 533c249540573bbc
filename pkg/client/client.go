// Package client is a small Go client for the pulseboard HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pulseboard/pkg/point"
)

// DefaultTimeout bounds every request unless the context expires first.
const DefaultTimeout = 10 * time.Second

// Option customizes a Client.
type Option func(*Client)

// WithAPIKey sets the X-API-Key header sent with ingest requests.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client, e.g. to share a
// transport or shorten the timeout in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Client talks to a pulseboard server over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ingestRequest struct {
	Value float64         `json:"value"`
	Ts    string          `json:"ts,omitempty"`
	Meta  json.RawMessage `json:"meta,omitempty"`
}

type ingestResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Ingest stores one point and returns its assigned id. A zero ts lets the
// server stamp the point with its own current time; a nil meta stores no
// metadata.
func (c *Client) Ingest(ctx context.Context, value float64, ts time.Time, meta json.RawMessage) (int64, error) {
	reqBody := ingestRequest{Value: value, Meta: meta}
	if !ts.IsZero() {
		reqBody.Ts = ts.UTC().Format(point.TimeLayout)
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to encode ingest request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ingest", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ingest request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, apiError("ingest", resp)
	}

	var out ingestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode ingest response: %w", err)
	}
	return out.ID, nil
}

// Data retrieves the points whose timestamps fall within [since, until] in
// ascending order. Bounds are free-form strings in any format the server
// accepts (epoch seconds, date-time layouts); an empty bound leaves that
// side open.
func (c *Client) Data(ctx context.Context, since, until string) ([]point.Point, error) {
	endpoint := c.baseURL + "/api/data"
	params := url.Values{}
	if since != "" {
		params.Set("since", since)
	}
	if until != "" {
		params.Set("until", until)
	}
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("data request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("data", resp)
	}

	var points []point.Point
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return nil, fmt.Errorf("failed to decode points: %w", err)
	}
	return points, nil
}

// apiError turns a non-200 response into an error carrying the server's
// message when one is present.
func apiError(op string, resp *http.Response) error {
	var apiErr errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("%s failed with status %d: %s", op, resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("%s failed with status %d", op, resp.StatusCode)
}
