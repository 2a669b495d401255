package model

import "fmt"

// PullRequestRef uniquely identifies a monitored pull request across all
// configured servers. It is comparable and used directly as a map key.
type PullRequestRef struct {
	Server       string // ServerConfig.Name of the owning server.
	RepoFullName string // "owner/name".
	Number       int
}

// String renders the ref as "server:owner/name#number" for logs.
func (r PullRequestRef) String() string {
	return fmt.Sprintf("%s:%s#%d", r.Server, r.RepoFullName, r.Number)
}

// RepoRef identifies one repository on one server. Comparable, used as a map
// key for per-repository accounting.
type RepoRef struct {
	Server       string // ServerConfig.Name of the owning server.
	RepoFullName string // "owner/name".
}

// Repo returns the repository component of the ref.
func (r PullRequestRef) Repo() RepoRef {
	return RepoRef{Server: r.Server, RepoFullName: r.RepoFullName}
}

// CheckRun is the status of a single CI check at snapshot time.
type CheckRun struct {
	ID         int64
	Name       string // Check run name (e.g., "build", "lint").
	Status     string // queued, in_progress, completed, waiting, requested, pending.
	Conclusion string // success, failure, neutral, cancelled, skipped, timed_out, action_required.
	DetailsURL string
}

// IsFailing reports whether the check completed with a failure conclusion.
func (c CheckRun) IsFailing() bool {
	return c.Status == CheckStatusCompleted && c.Conclusion == CheckConclusionFailure
}

// WorkflowRun is the state of a GitHub Actions workflow run at snapshot time.
type WorkflowRun struct {
	ID     int64
	Name   string
	Status string // queued, waiting, in_progress, completed, ...
}

// NeedsApproval reports whether the run is held waiting for a maintainer to
// approve its execution (first-time contributors, fork PRs).
func (w WorkflowRun) NeedsApproval() bool {
	return w.Status == RunStatusQueued || w.Status == RunStatusWaiting
}

// PullRequestSnapshot is a point-in-time read of one pull request's checks
// and workflow runs, produced fresh on every poll. Immutable once built.
type PullRequestSnapshot struct {
	Ref          PullRequestRef
	Title        string
	Author       string
	HeadSHA      string
	IsDraft      bool
	CheckRuns    []CheckRun
	WorkflowRuns []WorkflowRun
}

// FailingChecks returns the checks that completed with a failure conclusion,
// in snapshot order.
func (s PullRequestSnapshot) FailingChecks() []CheckRun {
	var failing []CheckRun
	for _, c := range s.CheckRuns {
		if c.IsFailing() {
			failing = append(failing, c)
		}
	}
	return failing
}

// RunsNeedingApproval returns the workflow runs held for approval, in
// snapshot order.
func (s PullRequestSnapshot) RunsNeedingApproval() []WorkflowRun {
	var pending []WorkflowRun
	for _, w := range s.WorkflowRuns {
		if w.NeedsApproval() {
			pending = append(pending, w)
		}
	}
	return pending
}
