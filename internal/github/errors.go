package github

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for conditions with no variable detail.
var (
	// ErrAuthentication indicates the token was rejected (HTTP 401).
	ErrAuthentication = errors.New("github: bad credentials")

	// ErrPaginationCursor indicates a page reported hasNextPage without an
	// endCursor. This is an upstream API contract violation, not a transient
	// condition, and is never retried.
	ErrPaginationCursor = errors.New("github: page reported more results but no continuation cursor")
)

// RateLimitError represents a rate limit exceeded response with reset time.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	if e.ResetAt.IsZero() {
		return "github: rate limit exceeded"
	}
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// APIError represents a non-2xx HTTP response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s", e.StatusCode, e.Message)
}

// GraphQLError represents an explicit errors payload in a GraphQL response.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "github: GraphQL error: " + strings.Join(e.Messages, "; ")
}

// ResponseError represents a response whose shape does not match the schema
// the fetcher expects (missing or null fields, undecodable JSON).
type ResponseError struct {
	Reason string
}

func (e *ResponseError) Error() string {
	return "github: malformed response: " + e.Reason
}

// IsNotFound checks if the error indicates the discussion or repository was
// not found. GraphQL reports missing resources as null nodes, which surface
// here as ResponseError, or as explicit NOT_FOUND error payloads.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	var gqlErr *GraphQLError
	if errors.As(err, &gqlErr) {
		for _, m := range gqlErr.Messages {
			if strings.Contains(m, "Could not resolve") || strings.Contains(m, "not found") {
				return true
			}
		}
	}
	return false
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsForbidden checks if the error indicates a permission-denied response.
func IsForbidden(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 403
	}
	return false
}
