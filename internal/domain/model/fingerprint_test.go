package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/violinyanev/praier/internal/domain/model"
)

func snapshotWith(checks []model.CheckRun, runs []model.WorkflowRun) model.PullRequestSnapshot {
	return model.PullRequestSnapshot{
		Ref:          model.PullRequestRef{Server: "default", RepoFullName: "org/repo", Number: 1},
		CheckRuns:    checks,
		WorkflowRuns: runs,
	}
}

func TestFingerprint_OrderIndependent(t *testing.T) {
	a := snapshotWith(
		[]model.CheckRun{
			{Name: "build", Status: "completed", Conclusion: "failure"},
			{Name: "lint", Status: "completed", Conclusion: "success"},
		},
		[]model.WorkflowRun{
			{ID: 100, Status: "queued"},
			{ID: 200, Status: "completed"},
		},
	)
	b := snapshotWith(
		[]model.CheckRun{
			{Name: "lint", Status: "completed", Conclusion: "success"},
			{Name: "build", Status: "completed", Conclusion: "failure"},
		},
		[]model.WorkflowRun{
			{ID: 200, Status: "completed"},
			{ID: 100, Status: "queued"},
		},
	)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprint_ChangesWithConclusion(t *testing.T) {
	before := snapshotWith([]model.CheckRun{{Name: "build", Status: "completed", Conclusion: "success"}}, nil)
	after := snapshotWith([]model.CheckRun{{Name: "build", Status: "completed", Conclusion: "failure"}}, nil)

	assert.NotEqual(t, before.Fingerprint(), after.Fingerprint())
}

func TestFingerprint_ChangesWithRunStatus(t *testing.T) {
	before := snapshotWith(nil, []model.WorkflowRun{{ID: 7, Status: "waiting"}})
	after := snapshotWith(nil, []model.WorkflowRun{{ID: 7, Status: "in_progress"}})

	assert.NotEqual(t, before.Fingerprint(), after.Fingerprint())
}

func TestFingerprint_ChangesWithNewCheck(t *testing.T) {
	one := snapshotWith([]model.CheckRun{{Name: "build", Status: "completed", Conclusion: "failure"}}, nil)
	two := snapshotWith([]model.CheckRun{
		{Name: "build", Status: "completed", Conclusion: "failure"},
		{Name: "lint", Status: "completed", Conclusion: "failure"},
	}, nil)

	assert.NotEqual(t, one.Fingerprint(), two.Fingerprint())
}

func TestFingerprint_EmptySnapshotStable(t *testing.T) {
	a := snapshotWith(nil, nil)
	b := snapshotWith(nil, nil)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEmpty(t, a.Fingerprint())
}

func TestFailingChecks_OnlyCompletedFailures(t *testing.T) {
	snap := snapshotWith([]model.CheckRun{
		{Name: "build", Status: "completed", Conclusion: "failure"},
		{Name: "lint", Status: "in_progress", Conclusion: ""},
		{Name: "test", Status: "completed", Conclusion: "success"},
		{Name: "scan", Status: "completed", Conclusion: "failure"},
	}, nil)

	failing := snap.FailingChecks()
	assert.Len(t, failing, 2)
	assert.Equal(t, "build", failing[0].Name)
	assert.Equal(t, "scan", failing[1].Name)
}

func TestRunsNeedingApproval(t *testing.T) {
	snap := snapshotWith(nil, []model.WorkflowRun{
		{ID: 1, Status: "queued"},
		{ID: 2, Status: "in_progress"},
		{ID: 3, Status: "waiting"},
		{ID: 4, Status: "completed"},
	})

	pending := snap.RunsNeedingApproval()
	assert.Len(t, pending, 2)
	assert.Equal(t, int64(1), pending[0].ID)
	assert.Equal(t, int64(3), pending[1].ID)
}
