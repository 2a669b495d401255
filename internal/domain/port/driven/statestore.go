package driven

import "github.com/violinyanev/praier/internal/domain/model"

// TrackedEntry is the last-observed state for one tracked pull request: the
// fingerprint recorded after the most recent fully-successful dispatch, plus
// the actions already taken. Get returns a copy; mutations go through the
// store methods.
type TrackedEntry struct {
	Fingerprint model.Fingerprint
	Records     []model.ActionRecord
}

// HasAction reports whether the given action kind was already recorded for
// the given fingerprint.
func (e *TrackedEntry) HasAction(fp model.Fingerprint, kind model.ActionKind) bool {
	if e == nil {
		return false
	}
	for _, r := range e.Records {
		if r.Fingerprint == fp && r.Kind == kind {
			return true
		}
	}
	return false
}

// StateStore defines the driven port for tracking per-PR observation state
// across polling cycles. Implementations must be safe for concurrent use.
// State is volatile: a process restart resets the store to empty, so the
// first poll after a restart may re-fire already-handled actions once. The
// remote operations are idempotent enough that this is accepted rather than
// hidden.
type StateStore interface {
	// Get returns a copy of the tracked entry for ref, or nil if the ref has
	// never been recorded.
	Get(ref model.PullRequestRef) *TrackedEntry

	// RecordAction marks the (ref, fingerprint, kind) triple as done.
	// Idempotent: recording the same triple twice has no additional effect.
	// Creates the entry if ref is not yet tracked.
	RecordAction(ref model.PullRequestRef, fp model.Fingerprint, kind model.ActionKind)

	// UpdateFingerprint advances the stored fingerprint for ref, creating
	// the entry if needed. Called only after every action for the snapshot
	// succeeded (or none were required), so a failed action re-fires on the
	// next cycle.
	UpdateFingerprint(ref model.PullRequestRef, fp model.Fingerprint)

	// Delete removes the entry for ref immediately. Used when the remote
	// reports the PR or run vanished mid-dispatch.
	Delete(ref model.PullRequestRef)

	// EvictStale removes entries for refs absent from seen for the
	// configured number of consecutive full polls and returns the evicted
	// refs. Refs present in seen have their absence counter reset. Only
	// entries whose repository appears in polled take part in absence
	// accounting: a repository whose fetch failed this cycle contributes no
	// refs to seen, and that absence proves nothing about its pull requests.
	EvictStale(seen map[model.PullRequestRef]struct{}, polled map[model.RepoRef]struct{}) []model.PullRequestRef

	// Len returns the number of tracked refs.
	Len() int
}
