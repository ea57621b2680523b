package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/helmcode/overload/pkg/model"
)

const DefaultBaseURL = "https://overload-api.onrender.com"

// Response is the raw outcome of an analyze call that reached the server.
type Response struct {
	StatusCode int
	StatusText string
	Body       []byte
	RequestID  string
}

// StatusError reports a non-2xx answer from an endpoint that has no
// richer error mapping.
type StatusError struct {
	Endpoint   string
	StatusCode int
	StatusText string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Endpoint, e.StatusCode, e.StatusText)
}

type Client struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

// NewClient returns a client for the analysis API. A zero timeout leaves
// the transport default in place.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
		userAgent: "overload-cli",
	}
}

// WithUserAgent overrides the User-Agent header sent on every request.
func (c *Client) WithUserAgent(ua string) *Client {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostAnalyze submits code to /analyze. A returned error means no response
// reached the caller; every HTTP status, including failures, comes back as
// a Response.
func (c *Client) PostAnalyze(ctx context.Context, req model.AnalysisRequest) (*Response, error) {
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.New().String()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
		Body:       respBytes,
		RequestID:  requestID,
	}, nil
}

// Health probes GET /health.
func (c *Client) Health(ctx context.Context) (*model.Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Endpoint: "/health", StatusCode: resp.StatusCode, StatusText: statusText(resp)}
	}

	var health model.Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("decode health: %w", err)
	}
	return &health, nil
}

// statusText drops the numeric prefix net/http puts in resp.Status.
func statusText(resp *http.Response) string {
	if text, ok := strings.CutPrefix(resp.Status, fmt.Sprintf("%d ", resp.StatusCode)); ok {
		return text
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
