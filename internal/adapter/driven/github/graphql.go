package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/violinyanev/praier/internal/domain/port/driven"
)

// graphqlHTTPClient is the HTTP client used for GraphQL requests. It carries
// the same per-call timeout as the REST stack, alongside context cancellation.
var graphqlHTTPClient = &http.Client{Timeout: requestTimeout}

const openPullRequestsQuery = `query($owner: String!, $repo: String!, $first: Int!) {
	repository(owner: $owner, name: $repo) {
		pullRequests(states: OPEN, first: $first, orderBy: {field: UPDATED_AT, direction: DESC}) {
			nodes {
				number
				title
				headRefOid
				isDraft
				author {
					login
				}
			}
		}
	}
}`

// graphqlRequest is the JSON body sent to the GitHub GraphQL API.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// prNode is one pull request node in the GraphQL response.
type prNode struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	HeadRefOid string `json:"headRefOid"`
	IsDraft    bool   `json:"isDraft"`
	Author     struct {
		Login string `json:"login"`
	} `json:"author"`
}

// graphqlResponse represents the expected shape of the open-PR listing
// response.
type graphqlResponse struct {
	Data struct {
		Repository struct {
			PullRequests struct {
				Nodes []prNode `json:"nodes"`
			} `json:"pullRequests"`
		} `json:"repository"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"errors"`
}

// listOpenPullRequests queries the GraphQL API for the repository's open pull
// requests, newest activity first. Up to 100 PRs are returned, which is far
// beyond the expected scale of monitored repositories.
func (c *Client) listOpenPullRequests(ctx context.Context, owner, repo string) ([]prNode, error) {
	reqBody := graphqlRequest{
		Query: openPullRequestsQuery,
		Variables: map[string]any{
			"owner": owner,
			"repo":  repo,
			"first": 100,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling pull request query: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating pull request query: %w", err)
	}
	httpReq.Header.Set("Authorization", fmt.Sprintf("bearer %s", c.server.Token))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := graphqlHTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("listing pull requests for %s/%s: %w", owner, repo, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := mapGraphQLStatus(owner, repo, resp.StatusCode); err != nil {
		return nil, err
	}

	var gqlResp graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return nil, fmt.Errorf("decoding pull request response for %s/%s: %w", owner, repo, err)
	}

	if len(gqlResp.Errors) > 0 {
		first := gqlResp.Errors[0]
		if first.Type == "RATE_LIMITED" {
			return nil, fmt.Errorf("listing pull requests for %s/%s: %w", owner, repo, driven.ErrRateLimited)
		}
		if first.Type == "NOT_FOUND" {
			return nil, fmt.Errorf("listing pull requests for %s/%s: %w: %s", owner, repo, driven.ErrNotFound, first.Message)
		}
		return nil, fmt.Errorf("listing pull requests for %s/%s: graphql: %s", owner, repo, first.Message)
	}

	return gqlResp.Data.Repository.PullRequests.Nodes, nil
}

// mapGraphQLStatus maps non-200 GraphQL HTTP statuses to the error taxonomy.
func mapGraphQLStatus(owner, repo string, status int) error {
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("listing pull requests for %s/%s: HTTP %d: %w", owner, repo, status, driven.ErrPermission)
	case http.StatusTooManyRequests:
		return fmt.Errorf("listing pull requests for %s/%s: HTTP %d: %w", owner, repo, status, driven.ErrRateLimited)
	default:
		return fmt.Errorf("listing pull requests for %s/%s: HTTP %d", owner, repo, status)
	}
}
