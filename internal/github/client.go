package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// graphqlEndpoint is GitHub's GraphQL API endpoint.
	graphqlEndpoint = "https://api.github.com/graphql"

	userAgent = "discussion-export"
)

// Transport executes a GraphQL query with variables and returns the raw
// response body. The Fetcher owns interpretation of the data/errors envelope.
type Transport interface {
	Execute(ctx context.Context, query string, variables map[string]any) ([]byte, error)
}

// Client is the production Transport. It POSTs queries to the GraphQL
// endpoint with bearer authentication, classifies HTTP-level failures, and
// feeds rate limit headers back into its limiter.
type Client struct {
	http        *http.Client
	rateLimiter *RateLimiter
	endpoint    string
}

var _ Transport = (*Client)(nil)

// NewClient creates a client authenticated with a static access token.
// Works for both PAT and OAuth access tokens.
func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	return &Client{
		http:        tc,
		rateLimiter: NewRateLimiter(),
		endpoint:    graphqlEndpoint,
	}
}

// NewClientWithHTTPClient creates a client with a custom http.Client and
// endpoint. Used by tests to point at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, endpoint string) *Client {
	if endpoint == "" {
		endpoint = graphqlEndpoint
	}
	return &Client{
		http:        httpClient,
		rateLimiter: NewRateLimiter(),
		endpoint:    endpoint,
	}
}

// HTTPClient returns the underlying authenticated http.Client, shared with
// the asset downloader so both use the same token and timeout.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// RateLimiter returns the client's rate limiter.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// Execute implements Transport.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post query: %w", err)
	}
	defer resp.Body.Close()

	c.rateLimiter.UpdateFromResponse(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := c.classifyStatus(resp, body); err != nil {
		return nil, err
	}

	return body, nil
}

// classifyStatus maps non-2xx responses onto the error taxonomy. A 403 with
// an exhausted quota is a rate limit, not a permission failure.
func (c *Client) classifyStatus(resp *http.Response, body []byte) error {
	status := resp.StatusCode
	switch {
	case status == http.StatusUnauthorized:
		return ErrAuthentication
	case status == http.StatusTooManyRequests,
		status == http.StatusForbidden && resp.Header.Get(headerRateRemaining) == "0":
		return &RateLimitError{
			ResetAt:   c.rateLimiter.ResetTime(),
			Remaining: c.rateLimiter.Remaining(),
			Limit:     c.rateLimiter.Limit(),
		}
	case status == http.StatusForbidden:
		return &APIError{StatusCode: status, Message: "access denied: " + string(body)}
	case status < 200 || status > 299:
		return &APIError{StatusCode: status, Message: string(body)}
	}
	return nil
}
