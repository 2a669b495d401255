// Package driven defines the driven ports (outbound interfaces) of the
// monitoring core, plus the error taxonomy adapters must map remote failures
// into.
package driven

import "errors"

// Sentinel errors for remote call failures. Adapters wrap these with
// fmt.Errorf("...: %w", ...) so callers can branch with errors.Is while logs
// keep the full context. Plain transport failures (network, 5xx) are wrapped
// without a sentinel and are always retried on the next cycle.
var (
	// ErrRateLimited signals the remote is throttling us. The affected
	// repository is skipped for the remainder of the cycle; the caller backs
	// off until the next scheduled poll rather than retrying immediately.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotFound signals the PR or run disappeared between fetch and
	// dispatch. Non-fatal; the tracked entry is evicted early.
	ErrNotFound = errors.New("not found")

	// ErrPermission signals the token lacks the required scope. Logged
	// prominently; the repository is skipped and the process continues.
	ErrPermission = errors.New("permission denied")
)
