// Package github implements the GraphQL client used to export discussions.
//
// The package comprises the following components:
//
//   - Client: executes GraphQL queries against api.github.com with bearer
//     authentication and rate limiting
//   - Fetcher: reconstructs a complete discussion tree (metadata, comments,
//     replies) via cursor-based pagination
//   - RateLimiter: proactive throttling plus reactive X-RateLimit header
//     tracking
//
// # Pagination
//
// GitHub's Discussions API is GraphQL-only. Comments and replies are paged
// connections: each page carries pageInfo.hasNextPage and pageInfo.endCursor.
// The fetcher requests pages of 100 sequentially until hasNextPage is false.
// A page that claims more results but supplies no cursor indicates an
// upstream API bug; the fetcher fails rather than loop or truncate silently.
//
// # Failure policy
//
// Any transport error, malformed response shape, or GraphQL-reported error
// aborts the fetch immediately. There is no partial-result mode and no
// automatic retry. Rate limiting surfaces as *RateLimitError so callers can
// message it distinctly from generic HTTP failures.
package github
