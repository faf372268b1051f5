package github

// Queries are static, hand-authored strings. The Discussions API has no REST
// equivalent, and the field set never varies, so there is nothing for a query
// builder to do.

// discussionQuery fetches discussion metadata.
// Variables: $owner, $repo, $number.
const discussionQuery = `
query ($owner: String!, $repo: String!, $number: Int!) {
    repository(owner: $owner, name: $repo) {
        discussion(number: $number) {
            id
            title
            number
            url
            createdAt
            body
            author {
                login
            }
        }
    }
}
`

// commentsQuery pages through a discussion's comments by node ID.
// Variables: $id (Discussion node ID), $after (null for the first page).
const commentsQuery = `
query ($id: ID!, $after: String) {
    node(id: $id) {
        ... on Discussion {
            comments(first: 100, after: $after) {
                nodes {
                    id
                    databaseId
                    author {
                        login
                    }
                    createdAt
                    body
                }
                pageInfo {
                    hasNextPage
                    endCursor
                }
            }
        }
    }
}
`

// repliesQuery pages through a comment's replies by node ID.
// Variables: $id (DiscussionComment node ID), $after (null for the first page).
const repliesQuery = `
query ($id: ID!, $after: String) {
    node(id: $id) {
        ... on DiscussionComment {
            replies(first: 100, after: $after) {
                nodes {
                    id
                    databaseId
                    author {
                        login
                    }
                    createdAt
                    body
                }
                pageInfo {
                    hasNextPage
                    endCursor
                }
            }
        }
    }
}
`
