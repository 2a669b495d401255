package driven

import "context"

// WorkflowWriter defines the driven port for GitHub write operations used by
// the action dispatcher. It is intentionally separate from SnapshotFetcher
// (read operations) following the Interface Segregation Principle.
type WorkflowWriter interface {
	// ApproveWorkflowRun approves a workflow run held for maintainer
	// approval. A vanished run maps to ErrNotFound.
	ApproveWorkflowRun(ctx context.Context, repoFullName string, runID int64) error

	// CreateIssueComment posts a top-level comment on a pull request via the
	// Issues API.
	CreateIssueComment(ctx context.Context, repoFullName string, prNumber int, body string) error

	// ValidateToken verifies the server's configured token and returns the
	// authenticated username on success.
	ValidateToken(ctx context.Context) (username string, err error)
}
