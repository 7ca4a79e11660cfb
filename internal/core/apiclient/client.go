package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/socialgate/socialgate/internal/core"
	"github.com/socialgate/socialgate/internal/metrics"
	"github.com/socialgate/socialgate/internal/observability"
)

const maxResponseBytes = 10 << 20

// redactedParams never reach logs or error strings.
var redactedParams = []string{"access_token", "key"}

// Client performs single outbound calls against one platform's base URL.
// It never retries.
type Client struct {
	Platform   core.Platform
	BaseURL    string
	Headers    map[string]string
	HTTPClient *http.Client
	Breaker    *gobreaker.CircuitBreaker[[]byte]
}

// Options customizes one Request call.
type Options struct {
	Method  string
	Headers map[string]string
	Query   url.Values
	Body    any
}

// TransportError is returned for any non-2xx upstream response.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: upstream returned %d", e.Method, e.URL, e.StatusCode)
}

// RemoteMessage extracts the upstream API's own complaint from the body.
func (e *TransportError) RemoteMessage() string {
	if msg := extractRemoteMessage(e.Body); msg != "" {
		return msg
	}
	if e.Status != "" {
		return "Request failed: " + e.Status
	}
	return fmt.Sprintf("Request failed with status %d", e.StatusCode)
}

// New returns a client with a default timeout.
func New(platform core.Platform, baseURL string, headers map[string]string) *Client {
	return &Client{
		Platform:   platform,
		BaseURL:    baseURL,
		Headers:    headers,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Get issues a GET with params encoded as the query string.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string, out any) error {
	query := url.Values{}
	for key, value := range params {
		query.Set(key, value)
	}
	return c.Request(ctx, endpoint, Options{Method: http.MethodGet, Query: query}, out)
}

// Post issues a POST with data encoded as a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, data any, out any) error {
	return c.Request(ctx, endpoint, Options{Method: http.MethodPost, Body: data}, out)
}

// Request builds base URL + endpoint, merges headers (per-call over client
// defaults over Content-Type) and decodes a 2xx JSON body into out.
func (c *Client) Request(ctx context.Context, endpoint string, opts Options, out any) error {
	if c == nil {
		return errors.New("api client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.BaseURL + endpoint
	if len(opts.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + opts.Query.Encode()
	}

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range c.Headers {
		req.Header.Set(key, value)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	var raw []byte
	if c.Breaker != nil {
		raw, err = c.Breaker.Execute(func() ([]byte, error) {
			return c.do(req)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%s API temporarily unavailable: %w", c.Platform.DisplayName(), err)
		}
	} else {
		raw, err = c.do(req)
	}
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.Platform.DisplayName(), err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	safeURL := RedactURL(req.URL)
	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordUpstreamRequest(string(c.Platform), 0, duration)
		c.log("Upstream request failed", zap.String("method", req.Method), zap.String("url", safeURL), zap.Duration("duration", duration), zap.Error(redactError(err)))
		return nil, fmt.Errorf("%s %s: %w", req.Method, safeURL, redactError(err))
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	metrics.RecordUpstreamRequest(string(c.Platform), resp.StatusCode, duration)
	c.log("Upstream request completed",
		zap.String("method", req.Method),
		zap.String("url", safeURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", c.Platform.DisplayName(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Method:     req.Method,
			URL:        safeURL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       raw,
		}
	}
	return raw, nil
}

func (c *Client) log(msg string, fields ...zap.Field) {
	logger := observability.Logger()
	if logger == nil {
		return
	}
	fields = append(fields, zap.String("platform", string(c.Platform)))
	logger.Debug(msg, fields...)
}

// RedactURL renders u with credential query parameters masked.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	clone := *u
	query := clone.Query()
	changed := false
	for _, key := range redactedParams {
		if query.Has(key) {
			query.Set(key, "REDACTED")
			changed = true
		}
	}
	if changed {
		clone.RawQuery = query.Encode()
	}
	return clone.String()
}

// redactError strips credentials from *url.Error, which embeds the full URL.
func redactError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if parsed, perr := url.Parse(urlErr.URL); perr == nil {
			return &url.Error{Op: urlErr.Op, URL: RedactURL(parsed), Err: urlErr.Err}
		}
	}
	return err
}

type remoteErrorBody struct {
	Error  json.RawMessage `json:"error"`
	Detail string          `json:"detail"`
	Title  string          `json:"title"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func extractRemoteMessage(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}

	var parsed remoteErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}

	if len(parsed.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(parsed.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var flat string
		if err := json.Unmarshal(parsed.Error, &flat); err == nil && flat != "" {
			return flat
		}
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	if len(parsed.Errors) > 0 && parsed.Errors[0].Message != "" {
		return parsed.Errors[0].Message
	}
	return parsed.Title
}
