package model

// Workflow run statuses relevant to auto-approval.
const (
	RunStatusQueued     = "queued"
	RunStatusWaiting    = "waiting"
	RunStatusInProgress = "in_progress"
	RunStatusCompleted  = "completed"
)

// Check run statuses and conclusions relevant to failure detection.
const (
	CheckStatusCompleted   = "completed"
	CheckConclusionFailure = "failure"
	CheckConclusionSuccess = "success"
)
