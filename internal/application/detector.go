// Package application contains use-case orchestration services: change
// detection, action dispatch, and the polling loop that drives them.
package application

import (
	"github.com/violinyanev/praier/internal/domain/model"
	"github.com/violinyanev/praier/internal/domain/port/driven"
)

// Detector decides which remediation actions a fresh snapshot requires,
// without taking any of them. It is a pure decision component: given
// identical inputs it produces an identical, deterministically ordered
// action list.
type Detector struct {
	autoApprove bool
	autoFix     bool
}

// NewDetector creates a Detector. autoApprove gates the workflow approval
// rule; autoFix gates the Copilot comment rule.
func NewDetector(autoApprove, autoFix bool) *Detector {
	return &Detector{
		autoApprove: autoApprove,
		autoFix:     autoFix,
	}
}

// Detect compares the snapshot against the previously tracked entry (nil on
// first sighting) and returns the required actions. If the stored fingerprint
// equals the snapshot's, nothing is emitted regardless of content: an
// unchanged PR is a no-op. Otherwise two independent rules run, deduplicated
// against the entry's action records for the current fingerprint:
//
//   - one Approve per workflow run held for approval, in snapshot order;
//   - one aggregated CommentCopilot listing every failing check.
//
// Approve actions always precede the comment action.
func (d *Detector) Detect(entry *driven.TrackedEntry, snap model.PullRequestSnapshot) []model.Action {
	fp := snap.Fingerprint()
	if entry != nil && entry.Fingerprint == fp {
		return nil
	}

	var actions []model.Action

	if d.autoApprove && !entry.HasAction(fp, model.ActionApproveRun) {
		for _, run := range snap.RunsNeedingApproval() {
			actions = append(actions, model.Action{
				Kind:    model.ActionApproveRun,
				RunID:   run.ID,
				RunName: run.Name,
			})
		}
	}

	if d.autoFix && !entry.HasAction(fp, model.ActionCommentCopilot) {
		if failing := snap.FailingChecks(); len(failing) > 0 {
			names := make([]string, 0, len(failing))
			for _, c := range failing {
				names = append(names, c.Name)
			}
			actions = append(actions, model.Action{
				Kind:          model.ActionCommentCopilot,
				FailingChecks: names,
			})
		}
	}

	return actions
}
