package model

// ActionKind identifies one of the remediation actions the monitor can take.
type ActionKind string

const (
	// ActionApproveRun approves a workflow run held for maintainer approval.
	ActionApproveRun ActionKind = "approve_run"
	// ActionCommentCopilot posts a single @copilot comment summarizing all
	// currently failing checks.
	ActionCommentCopilot ActionKind = "comment_copilot"
)

// Action is a remediation decision produced by the change detector. It
// carries no side effects; the dispatcher executes it.
type Action struct {
	Kind ActionKind

	// RunID and RunName are set for ActionApproveRun.
	RunID   int64
	RunName string

	// FailingChecks is set for ActionCommentCopilot and lists the names of
	// all failing checks aggregated into the single comment.
	FailingChecks []string
}

// ActionRecord proves a specific action kind was already taken for a specific
// fingerprint, preventing repetition across polling cycles while the
// underlying condition is unchanged.
type ActionRecord struct {
	Kind        ActionKind
	Fingerprint Fingerprint
}
