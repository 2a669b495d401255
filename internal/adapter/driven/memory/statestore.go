// Package memory implements the StateStore port as a volatile in-process map.
package memory

import (
	"sync"

	"github.com/violinyanev/praier/internal/domain/model"
	"github.com/violinyanev/praier/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StateStore = (*StateStore)(nil)

// entry is the internal mutable representation of a tracked pull request.
type entry struct {
	fingerprint  model.Fingerprint
	records      map[model.ActionRecord]struct{}
	missedCycles int
}

// StateStore tracks per-PR observation state in memory, guarded by a single
// coarse mutex. Expected scale is tens to low hundreds of tracked PRs, so
// finer-grained locking buys nothing. Nothing is persisted; restart resets
// the store to empty.
type StateStore struct {
	mu             sync.Mutex
	entries        map[model.PullRequestRef]*entry
	evictionCycles int
}

// NewStateStore creates an empty store. evictionCycles is the number of
// consecutive full polls a ref must be absent before its entry is removed;
// values below 1 are raised to 1.
func NewStateStore(evictionCycles int) *StateStore {
	if evictionCycles < 1 {
		evictionCycles = 1
	}
	return &StateStore{
		entries:        make(map[model.PullRequestRef]*entry),
		evictionCycles: evictionCycles,
	}
}

// Get returns a copy of the tracked entry for ref, or nil if untracked.
func (s *StateStore) Get(ref model.PullRequestRef) *driven.TrackedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[ref]
	if !ok {
		return nil
	}

	records := make([]model.ActionRecord, 0, len(e.records))
	for r := range e.records {
		records = append(records, r)
	}
	return &driven.TrackedEntry{
		Fingerprint: e.fingerprint,
		Records:     records,
	}
}

// RecordAction marks the (ref, fingerprint, kind) triple as done, creating
// the entry if needed. Recording the same triple twice is a no-op.
func (s *StateStore) RecordAction(ref model.PullRequestRef, fp model.Fingerprint, kind model.ActionKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.getOrCreate(ref)
	e.records[model.ActionRecord{Kind: kind, Fingerprint: fp}] = struct{}{}
}

// UpdateFingerprint advances the stored fingerprint for ref, creating the
// entry if needed.
func (s *StateStore) UpdateFingerprint(ref model.PullRequestRef, fp model.Fingerprint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getOrCreate(ref).fingerprint = fp
}

// Delete removes the entry for ref immediately.
func (s *StateStore) Delete(ref model.PullRequestRef) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, ref)
}

// EvictStale removes entries absent from seen for the configured number of
// consecutive cycles and returns the evicted refs. Called once per full poll
// across all repositories. Entries whose repository is not in polled are left
// untouched: their fetch failed this cycle, so absence from seen is not
// evidence the pull request closed.
func (s *StateStore) EvictStale(seen map[model.PullRequestRef]struct{}, polled map[model.RepoRef]struct{}) []model.PullRequestRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []model.PullRequestRef
	for ref, e := range s.entries {
		if _, ok := seen[ref]; ok {
			e.missedCycles = 0
			continue
		}
		if _, ok := polled[ref.Repo()]; !ok {
			continue
		}
		e.missedCycles++
		if e.missedCycles >= s.evictionCycles {
			delete(s.entries, ref)
			evicted = append(evicted, ref)
		}
	}
	return evicted
}

// Len returns the number of tracked refs.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// getOrCreate must be called with the mutex held.
func (s *StateStore) getOrCreate(ref model.PullRequestRef) *entry {
	e, ok := s.entries[ref]
	if !ok {
		e = &entry{records: make(map[model.ActionRecord]struct{})}
		s.entries[ref] = e
	}
	return e
}
