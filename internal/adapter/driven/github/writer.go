package github

import (
	"context"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v82/github"
)

// ApproveWorkflowRun approves a workflow run that is held waiting for a
// maintainer. go-github has no typed helper for this endpoint, so the request
// is built directly against the REST route.
func (c *Client) ApproveWorkflowRun(ctx context.Context, repoFullName string, runID int64) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("repos/%v/%v/actions/runs/%v/approve", owner, repo, runID)
	req, err := c.gh.NewRequest(http.MethodPost, u, nil)
	if err != nil {
		return fmt.Errorf("creating approve request for run %d in %s: %w", runID, repoFullName, err)
	}

	resp, err := c.gh.Do(ctx, req, nil)
	if err != nil {
		return mapAPIError(fmt.Sprintf("approving workflow run %d in %s", runID, repoFullName), err)
	}

	logRateLimit(resp, repoFullName+"/approve", 0, 1)
	return nil
}

// CreateIssueComment creates a top-level comment on a pull request via the
// Issues API.
func (c *Client) CreateIssueComment(ctx context.Context, repoFullName string, prNumber int, body string) error {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return err
	}

	_, resp, err := c.gh.Issues.CreateComment(ctx, owner, repo, prNumber, &gh.IssueComment{
		Body: gh.Ptr(body),
	})
	if err != nil {
		return mapAPIError(fmt.Sprintf("creating issue comment on %s#%d", repoFullName, prNumber), err)
	}

	logRateLimit(resp, repoFullName+"/comment", 0, 1)
	return nil
}

// ValidateToken verifies the server's configured token and returns the
// authenticated username on success.
func (c *Client) ValidateToken(ctx context.Context) (string, error) {
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", mapAPIError(fmt.Sprintf("validating token for server %q", c.server.Name), err)
	}
	return user.GetLogin(), nil
}
