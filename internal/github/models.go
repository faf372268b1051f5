package github

import "time"

// DeletedAuthorLogin is the sentinel substituted for the author of any
// discussion, comment, or reply whose account no longer exists.
const DeletedAuthorLogin = "<deleted>"

// Author is a GitHub user. A nil *Author on a fetched entity means the
// account was deleted; the fetcher normalizes these to DeletedAuthorLogin
// before returning.
type Author struct {
	Login string `json:"login"`
}

// PageInfo is the cursor pair returned by a paged GraphQL connection.
// EndCursor is empty when the API returns null.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// Reply is a threaded response to a comment. Leaf entity.
type Reply struct {
	ID         string    `json:"id"`
	DatabaseID int64     `json:"databaseId"`
	Author     *Author   `json:"author"`
	CreatedAt  time.Time `json:"createdAt"`
	Body       string    `json:"body"`
}

// Comment is a top-level discussion comment with its replies.
// After a successful fetch, Replies is fully materialized and sorted
// ascending by creation time.
type Comment struct {
	ID         string    `json:"id"`
	DatabaseID int64     `json:"databaseId"`
	Author     *Author   `json:"author"`
	CreatedAt  time.Time `json:"createdAt"`
	Body       string    `json:"body"`
	Replies    []*Reply  `json:"replies"`
}

// Discussion is a fully materialized discussion tree. Comments contains
// every comment across all pages, sorted ascending by creation time.
type Discussion struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Number    int        `json:"number"`
	URL       string     `json:"url"`
	CreatedAt time.Time  `json:"createdAt"`
	Body      string     `json:"body"`
	Author    *Author    `json:"author"`
	Comments  []*Comment `json:"comments"`
}

// AuthorLogin returns the author's login, or DeletedAuthorLogin for nil.
func AuthorLogin(a *Author) string {
	if a == nil || a.Login == "" {
		return DeletedAuthorLogin
	}
	return a.Login
}
