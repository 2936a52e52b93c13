package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xiaot623/gogo/chatrelay/internal/domain"
)

// ErrNotConfigured is returned by Send when no endpoint is set.
var ErrNotConfigured = errors.New("webhook endpoint not configured")

// ErrResponseTooLarge is returned when a response body exceeds the configured cap.
var ErrResponseTooLarge = errors.New("webhook response too large")

// StatusError is returned for a non-2xx upstream reply.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Body)
}

// Client is the HTTP webhook client.
type Client struct {
	endpoint   string
	apiKey     string
	maxBody    int64
	httpClient *http.Client
}

// NewClient creates a new webhook client. maxBody caps the bytes accepted from a
// response, larger bodies fail with ErrResponseTooLarge; values <= 0 disable the cap.
func NewClient(endpoint, apiKey string, timeout time.Duration, maxBody int64) *Client {
	return &Client{
		endpoint: strings.TrimSpace(endpoint),
		apiKey:   apiKey,
		maxBody:  maxBody,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint returns the configured webhook URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send posts {chatInput, topK, temperature} to the webhook.
func (c *Client) Send(ctx context.Context, req *domain.UpstreamRequest) ([]byte, error) {
	if c.endpoint == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := c.readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// readBody reads at most maxBody bytes. One extra byte is read so that an
// oversized body is reported instead of being cut short.
func (c *Client) readBody(r io.Reader) ([]byte, error) {
	if c.maxBody <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, c.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrResponseTooLarge, c.maxBody)
	}
	return body, nil
}

// setHeaders sets common request headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
