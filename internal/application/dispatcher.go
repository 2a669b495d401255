package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/violinyanev/praier/internal/domain/model"
	"github.com/violinyanev/praier/internal/domain/port/driven"
)

// Dispatcher executes the actions produced by the Detector against the
// owning server and records them in the state store. An action is recorded
// only after the remote call succeeds, and the stored fingerprint advances
// only once every action for the snapshot succeeded, so failed actions
// re-fire on the next cycle. The dispatcher holds no state of its own.
type Dispatcher struct {
	writers map[string]driven.WorkflowWriter
	store   driven.StateStore
}

// NewDispatcher creates a Dispatcher. writers maps server names to their
// write clients.
func NewDispatcher(writers map[string]driven.WorkflowWriter, store driven.StateStore) *Dispatcher {
	return &Dispatcher{
		writers: writers,
		store:   store,
	}
}

// Dispatch executes actions for the snapshot's pull request. Each action
// emits one structured event with its outcome. Failures are contained to
// this ref: the returned error is for cycle accounting only and never aborts
// other pull requests. A NotFound from the remote means the PR or run
// vanished between fetch and dispatch; the tracked entry is dropped early
// and dispatch stops.
func (d *Dispatcher) Dispatch(ctx context.Context, snap model.PullRequestSnapshot, actions []model.Action) error {
	ref := snap.Ref

	writer, ok := d.writers[ref.Server]
	if !ok {
		return fmt.Errorf("no client configured for server %q", ref.Server)
	}

	fp := snap.Fingerprint()
	var failed, approves, approveFailures int

	for _, action := range actions {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		switch action.Kind {
		case model.ActionApproveRun:
			approves++
			err = writer.ApproveWorkflowRun(ctx, ref.RepoFullName, action.RunID)
		case model.ActionCommentCopilot:
			err = writer.CreateIssueComment(ctx, ref.RepoFullName, ref.Number, CopilotCommentBody(action.FailingChecks))
		default:
			err = fmt.Errorf("unknown action kind %q", action.Kind)
		}

		if errors.Is(err, driven.ErrNotFound) {
			slog.Warn("target vanished mid-dispatch, dropping tracked entry",
				"server", ref.Server,
				"repo", ref.RepoFullName,
				"pr", ref.Number,
				"action", string(action.Kind),
				"error", err,
			)
			d.store.Delete(ref)
			return nil
		}

		if err != nil {
			failed++
			if action.Kind == model.ActionApproveRun {
				approveFailures++
			}
			slog.Error("action failed",
				"server", ref.Server,
				"repo", ref.RepoFullName,
				"pr", ref.Number,
				"action", string(action.Kind),
				"run_id", action.RunID,
				"error", err,
			)
			continue
		}

		// The approve record is written once below, after the whole batch
		// of approvals succeeded.
		if action.Kind == model.ActionCommentCopilot {
			d.store.RecordAction(ref, fp, action.Kind)
		}

		slog.Info("action dispatched",
			"server", ref.Server,
			"repo", ref.RepoFullName,
			"pr", ref.Number,
			"action", string(action.Kind),
			"run_id", action.RunID,
			"run_name", action.RunName,
			"failing_checks", len(action.FailingChecks),
		)
	}

	if approves > 0 && approveFailures == 0 {
		d.store.RecordAction(ref, fp, model.ActionApproveRun)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d actions failed for %s", failed, len(actions), ref)
	}

	d.store.UpdateFingerprint(ref, fp)
	return nil
}

// CopilotCommentBody formats the single comment posted when checks fail,
// mentioning @copilot and listing every failing check by name.
func CopilotCommentBody(failingChecks []string) string {
	var b strings.Builder
	b.WriteString("@copilot The following checks are failing in this PR:\n\n")
	for _, name := range failingChecks {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	b.WriteString(`
Please analyze the failing checks and suggest fixes for the issues. Focus on:
1. Test failures and their root causes
2. Linting/formatting issues
3. Build failures
4. Security vulnerabilities

Provide specific code changes that would resolve these issues.`)
	return b.String()
}
