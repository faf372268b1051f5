package github

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/custodia-labs/discussion-export/internal/logger"
)

// Fetcher reconstructs a complete discussion tree over a Transport.
type Fetcher struct {
	transport Transport
}

// NewFetcher creates a Fetcher using the given transport.
func NewFetcher(transport Transport) *Fetcher {
	return &Fetcher{transport: transport}
}

// graphQLResponse is the outer data/errors envelope.
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// connectionPage is one page of a comments or replies connection. PageInfo is
// a pointer so its absence (a schema mismatch) is distinguishable from an
// empty final page.
type connectionPage struct {
	Nodes    []json.RawMessage `json:"nodes"`
	PageInfo *PageInfo         `json:"pageInfo"`
}

// FetchDiscussion retrieves the discussion identified by owner/repo/number
// with all comments and replies materialized, deleted authors normalized to
// the sentinel, and both levels sorted ascending by creation time.
//
// Any transport error, malformed response, or GraphQL error payload aborts
// the whole fetch. There is no partial result.
func (f *Fetcher) FetchDiscussion(ctx context.Context, owner, repo string, number int) (*Discussion, error) {
	discussion, err := f.fetchMetadata(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}
	logger.Debug("fetched discussion %s (%q)", discussion.ID, discussion.Title)

	comments, err := f.fetchAllComments(ctx, discussion.ID)
	if err != nil {
		return nil, err
	}
	logger.Debug("fetched %d comments", len(comments))

	// Reply pagination runs one comment at a time; the API's rate and
	// consistency guarantees are per-request.
	for _, comment := range comments {
		replies, err := f.fetchAllReplies(ctx, comment.ID)
		if err != nil {
			return nil, err
		}
		comment.Replies = replies
	}

	discussion.Comments = comments
	normalizeAuthors(discussion)
	sortChronologically(discussion)

	return discussion, nil
}

// fetchMetadata performs the single non-paginated metadata request.
func (f *Fetcher) fetchMetadata(ctx context.Context, owner, repo string, number int) (*Discussion, error) {
	data, err := f.execute(ctx, discussionQuery, map[string]any{
		"owner":  owner,
		"repo":   repo,
		"number": number,
	})
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Repository *struct {
			Discussion *Discussion `json:"discussion"`
		} `json:"repository"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &ResponseError{Reason: fmt.Sprintf("decode discussion: %v", err)}
	}
	if envelope.Repository == nil {
		return nil, &ResponseError{Reason: "repository not found"}
	}
	if envelope.Repository.Discussion == nil {
		return nil, &ResponseError{Reason: "discussion not found"}
	}

	return envelope.Repository.Discussion, nil
}

// fetchAllComments pages through the discussion's comments.
func (f *Fetcher) fetchAllComments(ctx context.Context, discussionID string) ([]*Comment, error) {
	var comments []*Comment

	err := f.paginate(ctx, commentsQuery, discussionID, "comments", func(node json.RawMessage) error {
		var comment Comment
		if err := json.Unmarshal(node, &comment); err != nil {
			return &ResponseError{Reason: fmt.Sprintf("decode comment: %v", err)}
		}
		comments = append(comments, &comment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return comments, nil
}

// fetchAllReplies pages through one comment's replies.
func (f *Fetcher) fetchAllReplies(ctx context.Context, commentID string) ([]*Reply, error) {
	var replies []*Reply

	err := f.paginate(ctx, repliesQuery, commentID, "replies", func(node json.RawMessage) error {
		var reply Reply
		if err := json.Unmarshal(node, &reply); err != nil {
			return &ResponseError{Reason: fmt.Sprintf("decode reply: %v", err)}
		}
		replies = append(replies, &reply)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return replies, nil
}

// paginate drives one cursor loop: Start -> Requesting(cursor) -> {HasMore:
// loop | Done: return}. Null entries inside nodes are skipped. A page
// claiming more results without a cursor fails with ErrPaginationCursor.
func (f *Fetcher) paginate(
	ctx context.Context, query, nodeID, field string, visit func(json.RawMessage) error,
) error {
	after := ""
	for page := 1; ; page++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		variables := map[string]any{"id": nodeID, "after": nil}
		if after != "" {
			variables["after"] = after
		}

		data, err := f.execute(ctx, query, variables)
		if err != nil {
			return err
		}

		connection, err := extractConnection(data, field)
		if err != nil {
			return err
		}

		for _, node := range connection.Nodes {
			if string(node) == "null" {
				continue
			}
			if err := visit(node); err != nil {
				return err
			}
		}

		if !connection.PageInfo.HasNextPage {
			return nil
		}
		if connection.PageInfo.EndCursor == "" {
			return ErrPaginationCursor
		}
		after = connection.PageInfo.EndCursor
		logger.Debug("fetching %s page %d (cursor %s)", field, page+1, after)
	}
}

// extractConnection navigates data.node.<field> and validates the shape.
func extractConnection(data json.RawMessage, field string) (*connectionPage, error) {
	var envelope struct {
		Node map[string]json.RawMessage `json:"node"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &ResponseError{Reason: fmt.Sprintf("decode node: %v", err)}
	}
	if envelope.Node == nil {
		return nil, &ResponseError{Reason: "node is null; the ID may not match the expected type"}
	}

	raw, ok := envelope.Node[field]
	if !ok {
		return nil, &ResponseError{Reason: "response missing " + field + " field"}
	}

	var connection connectionPage
	if err := json.Unmarshal(raw, &connection); err != nil {
		return nil, &ResponseError{Reason: fmt.Sprintf("decode %s connection: %v", field, err)}
	}
	if connection.PageInfo == nil {
		return nil, &ResponseError{Reason: "response missing pageInfo field"}
	}

	return &connection, nil
}

// execute runs one query and unwraps the data/errors envelope.
func (f *Fetcher) execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	body, err := f.transport.Execute(ctx, query, variables)
	if err != nil {
		return nil, err
	}

	var response graphQLResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &ResponseError{Reason: fmt.Sprintf("decode envelope: %v", err)}
	}

	if len(response.Errors) > 0 {
		messages := make([]string, len(response.Errors))
		for i, e := range response.Errors {
			messages[i] = e.Message
		}
		return nil, &GraphQLError{Messages: messages}
	}

	if len(response.Data) == 0 || string(response.Data) == "null" {
		return nil, &ResponseError{Reason: "response missing data field"}
	}

	return response.Data, nil
}

// normalizeAuthors replaces nil authors with the deleted-account sentinel,
// once, so render code never null-checks.
func normalizeAuthors(d *Discussion) {
	if d.Author == nil {
		d.Author = &Author{Login: DeletedAuthorLogin}
	}
	for _, comment := range d.Comments {
		if comment.Author == nil {
			comment.Author = &Author{Login: DeletedAuthorLogin}
		}
		for _, reply := range comment.Replies {
			if reply.Author == nil {
				reply.Author = &Author{Login: DeletedAuthorLogin}
			}
		}
	}
}

// sortChronologically orders comments, and each comment's replies, ascending
// by creation time. The sort is stable: the API supplies no finer ordering
// key, so equal timestamps keep API order.
func sortChronologically(d *Discussion) {
	sort.SliceStable(d.Comments, func(i, j int) bool {
		return d.Comments[i].CreatedAt.Before(d.Comments[j].CreatedAt)
	})
	for _, comment := range d.Comments {
		sort.SliceStable(comment.Replies, func(i, j int) bool {
			return comment.Replies[i].CreatedAt.Before(comment.Replies[j].CreatedAt)
		})
	}
}
