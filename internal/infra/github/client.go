// Package github provides a GraphQL client for the GitHub API and the
// domain.Tracker adapter built on it.
package github

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

	"github.com/cenkalti/backoff/v4"
	"github.com/runoshun/cardflow/internal/domain"
)

// Client defaults.
const (
	DefaultEndpoint        = domain.DefaultEndpoint
	DefaultTimeout         = domain.DefaultTimeout
	DefaultRetryMaxElapsed = domain.DefaultRetryMaxElapsed

	maxResponseSize = 50 * 1024 * 1024
)

// ErrRateLimited is returned when the retry budget ran out while rate limited.
var ErrRateLimited = errors.New("rate limited")

// Client performs GraphQL requests against the GitHub API.
// Fields are ordered to minimize memory padding.
type Client struct {
	HTTPClient      *http.Client
	Token           string
	Endpoint        string
	RetryMaxElapsed time.Duration // 0 disables retries
	initialInterval time.Duration // First retry delay, 0 uses the backoff default
}

// NewClient creates a new GitHub GraphQL client.
func NewClient(token string) *Client {
	return &Client{
		Token:           token,
		Endpoint:        DefaultEndpoint,
		RetryMaxElapsed: DefaultRetryMaxElapsed,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithHTTPClient returns a new client with a custom HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	cp := *c
	cp.HTTPClient = httpClient
	return &cp
}

// WithEndpoint returns a new client with a custom GraphQL endpoint (for testing or GitHub Enterprise).
func (c *Client) WithEndpoint(endpoint string) *Client {
	cp := *c
	cp.Endpoint = endpoint
	return &cp
}

// WithRetryMaxElapsed returns a new client with the given retry budget.
func (c *Client) WithRetryMaxElapsed(d time.Duration) *Client {
	cp := *c
	cp.RetryMaxElapsed = d
	return &cp
}

// APIError is a non-2xx HTTP response.
type APIError struct {
	Body       string
	StatusCode int
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s (status %d)", e.Body, e.StatusCode)
}

// GraphQLError is one entry of the errors array of a GraphQL response.
type GraphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Path    []any  `json:"path"`
}

// GraphQLErrors is the errors array of a GraphQL response.
type GraphQLErrors []GraphQLError

// Error implements error.
func (e GraphQLErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ge := range e {
		msgs[i] = ge.Message
		if ge.Type != "" {
			msgs[i] = ge.Type + ": " + ge.Message
		}
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// notFound reports whether any error is a NOT_FOUND error.
func (e GraphQLErrors) notFound() bool {
	for _, ge := range e {
		if ge.Type == "NOT_FOUND" {
			return true
		}
	}
	return false
}

func (e GraphQLErrors) rateLimited() bool {
	for _, ge := range e {
		if ge.Type == "RATE_LIMITED" {
			return true
		}
	}
	return false
}

type graphQLRequest struct {
	Variables map[string]any `json:"variables,omitempty"`
	Query     string         `json:"query"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors GraphQLErrors   `json:"errors"`
}

// errRateLimited marks a response the server rejected before processing it.
type errRateLimited struct {
	cause error
}

func (e *errRateLimited) Error() string { return e.cause.Error() }
func (e *errRateLimited) Unwrap() error { return e.cause }

// Query runs a read-only GraphQL operation and decodes data into out.
// Rate-limited responses and server errors are retried.
func (c *Client) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	return c.do(ctx, query, vars, out, true)
}

// Mutate runs a GraphQL mutation and decodes data into out.
// Only rate-limited responses are retried; a 5xx may have been applied.
func (c *Client) Mutate(ctx context.Context, query string, vars map[string]any, out any) error {
	return c.do(ctx, query, vars, out, false)
}

func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any, idempotent bool) error {
	if c.Token == "" {
		return domain.ErrMissingToken
	}
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	var data json.RawMessage
	op := func() error {
		d, err := c.send(ctx, body)
		if err == nil {
			data = d
			return nil
		}
		var rl *errRateLimited
		if errors.As(err, &rl) {
			return err
		}
		var apiErr *APIError
		if idempotent && errors.As(err, &apiErr) && apiErr.StatusCode >= 500 {
			return err
		}
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(op, backoff.WithContext(c.newBackOff(), ctx)); err != nil {
		var rl *errRateLimited
		if errors.As(err, &rl) {
			return fmt.Errorf("%w: %w", ErrRateLimited, rl.cause)
		}
		return err
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}

// newBackOff returns a fresh backoff; BackOff implementations are stateful.
func (c *Client) newBackOff() backoff.BackOff {
	if c.RetryMaxElapsed <= 0 {
		return &backoff.StopBackOff{}
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.RetryMaxElapsed
	if c.initialInterval > 0 {
		bo.InitialInterval = c.initialInterval
	}
	return bo
}

// send performs one HTTP round trip and returns the data member of the response.
func (c *Client) send(ctx context.Context, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// GitHub signals rate limiting with 429, or 403 with X-RateLimit-Remaining: 0.
	if resp.StatusCode == http.StatusTooManyRequests ||
		(resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0") {
		return nil, &errRateLimited{cause: &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var gr graphQLResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(gr.Errors) > 0 {
		if gr.Errors.rateLimited() {
			return nil, &errRateLimited{cause: gr.Errors}
		}
		return nil, gr.Errors
	}
	return gr.Data, nil
}
