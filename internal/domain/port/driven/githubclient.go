package driven

import (
	"context"

	"github.com/violinyanev/praier/internal/domain/model"
)

// SnapshotFetcher defines the driven port for reading pull request state from
// a single GitHub-compatible server. One fetcher instance is bound to one
// server; the poll service holds one per configured server.
type SnapshotFetcher interface {
	// FetchOpenPullRequests returns a snapshot of every open pull request in
	// the repository, each with its current check runs and workflow runs.
	// Failures are mapped to the package error taxonomy: ErrRateLimited when
	// throttled, ErrPermission on insufficient scope, plain wrapped errors
	// for transport failures.
	FetchOpenPullRequests(ctx context.Context, repoFullName string) ([]model.PullRequestSnapshot, error)
}
