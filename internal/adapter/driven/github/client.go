// Package github implements the SnapshotFetcher and WorkflowWriter ports
// using the go-github library plus a small raw GraphQL client.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/violinyanev/praier/internal/domain/model"
	"github.com/violinyanev/praier/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.SnapshotFetcher = (*Client)(nil)
	_ driven.WorkflowWriter  = (*Client)(nil)
)

// requestTimeout bounds every remote call. A request exceeding it fails like
// any other transport error and is retried on the next cycle; without it a
// stalled connection would block the single-threaded poll loop indefinitely.
const requestTimeout = 30 * time.Second

// Client implements both driven ports against one GitHub-compatible server.
type Client struct {
	gh         *gh.Client
	server     model.ServerConfig
	graphqlURL string
}

// NewClient creates a client for the given server with the following
// transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
//
// Enterprise servers (any URL other than api.github.com) are routed through
// go-github's enterprise URL handling.
func NewClient(server model.ServerConfig) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	rateLimitClient.Timeout = requestTimeout
	client := gh.NewClient(rateLimitClient).WithAuthToken(server.Token)

	if server.IsEnterprise() {
		var err error
		client, err = client.WithEnterpriseURLs(server.URL, server.URL)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise URLs for server %q: %w", server.Name, err)
		}
	}

	return &Client{
		gh:         client,
		server:     server,
		graphqlURL: graphqlEndpoint(server.URL),
	}, nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL. This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string, server model.ServerConfig) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	// Derive the GraphQL URL from baseURL so httptest servers can intercept
	// GraphQL requests.
	graphqlU := *u
	graphqlU.Path = "/graphql"

	return &Client{
		gh:         client,
		server:     server,
		graphqlURL: graphqlU.String(),
	}, nil
}

// FetchOpenPullRequests returns a snapshot of every open pull request in the
// repository. The PR list comes from GraphQL; check runs and workflow runs
// for each head SHA come from REST.
func (c *Client) FetchOpenPullRequests(ctx context.Context, repoFullName string) ([]model.PullRequestSnapshot, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	prs, err := c.listOpenPullRequests(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	snapshots := make([]model.PullRequestSnapshot, 0, len(prs))
	for _, pr := range prs {
		checkRuns, err := c.fetchCheckRuns(ctx, owner, repo, pr.HeadRefOid)
		if err != nil {
			return nil, err
		}

		workflowRuns, err := c.fetchWorkflowRuns(ctx, owner, repo, pr.HeadRefOid, pr.Number)
		if err != nil {
			return nil, err
		}

		snapshots = append(snapshots, model.PullRequestSnapshot{
			Ref: model.PullRequestRef{
				Server:       c.server.Name,
				RepoFullName: repoFullName,
				Number:       pr.Number,
			},
			Title:        pr.Title,
			Author:       pr.Author.Login,
			HeadSHA:      pr.HeadRefOid,
			IsDraft:      pr.IsDraft,
			CheckRuns:    checkRuns,
			WorkflowRuns: workflowRuns,
		})
	}

	return snapshots, nil
}

// fetchCheckRuns retrieves all check runs for the given head SHA. It handles
// pagination automatically and maps go-github types to domain model types.
func (c *Client) fetchCheckRuns(ctx context.Context, owner, repo, ref string) ([]model.CheckRun, error) {
	opts := &gh.ListCheckRunsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var allRuns []model.CheckRun

	for {
		result, resp, err := c.gh.Checks.ListCheckRunsForRef(ctx, owner, repo, ref, opts)
		if err != nil {
			return nil, mapAPIError(fmt.Sprintf("listing check runs for %s/%s@%s", owner, repo, ref), err)
		}

		logRateLimit(resp, owner+"/"+repo+"/check-runs", opts.Page, len(result.CheckRuns))

		for _, cr := range result.CheckRuns {
			allRuns = append(allRuns, model.CheckRun{
				ID:         cr.GetID(),
				Name:       cr.GetName(),
				Status:     cr.GetStatus(),
				Conclusion: cr.GetConclusion(),
				DetailsURL: cr.GetDetailsURL(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRuns, nil
}

// fetchWorkflowRuns retrieves the workflow runs for the given head SHA. Runs
// that declare PR associations are cross-checked against prNumber; runs
// belonging to a different pull request are dropped.
func (c *Client) fetchWorkflowRuns(ctx context.Context, owner, repo, headSHA string, prNumber int) ([]model.WorkflowRun, error) {
	opts := &gh.ListWorkflowRunsOptions{
		HeadSHA:     headSHA,
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var allRuns []model.WorkflowRun

	for {
		result, resp, err := c.gh.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, opts)
		if err != nil {
			return nil, mapAPIError(fmt.Sprintf("listing workflow runs for %s/%s@%s", owner, repo, headSHA), err)
		}

		logRateLimit(resp, owner+"/"+repo+"/workflow-runs", opts.Page, len(result.WorkflowRuns))

		for _, run := range result.WorkflowRuns {
			if !runBelongsToPR(run, prNumber) {
				continue
			}
			allRuns = append(allRuns, model.WorkflowRun{
				ID:     run.GetID(),
				Name:   run.GetName(),
				Status: run.GetStatus(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRuns, nil
}

// runBelongsToPR reports whether the run is associated with the given PR
// number. Runs without a declared PR association are kept; they already
// matched the PR's head SHA.
func runBelongsToPR(run *gh.WorkflowRun, prNumber int) bool {
	if len(run.PullRequests) == 0 {
		return true
	}
	for _, pr := range run.PullRequests {
		if pr.GetNumber() == prNumber {
			return true
		}
	}
	return false
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// graphqlEndpoint derives the GraphQL API URL from a REST base URL.
// Enterprise servers expose REST at /api/v3 and GraphQL at /api/graphql.
func graphqlEndpoint(baseURL string) string {
	if baseURL == "" || baseURL == model.DefaultServerURL {
		return "https://api.github.com/graphql"
	}
	u := strings.TrimSuffix(baseURL, "/")
	if strings.HasSuffix(u, "/api/v3") {
		return strings.TrimSuffix(u, "/v3") + "/graphql"
	}
	return u + "/graphql"
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
