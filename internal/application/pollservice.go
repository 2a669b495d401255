package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/violinyanev/praier/internal/domain/model"
	"github.com/violinyanev/praier/internal/domain/port/driven"
)

// Target is one (server, repository) pair to poll.
type Target = model.RepoRef

// Stats is a point-in-time view of the monitor's footprint.
type Stats struct {
	Servers    int
	Targets    int
	TrackedPRs int
}

// PollService drives the monitoring cycle: fetch snapshots for every target,
// feed them through the detector, hand required actions to the dispatcher,
// evict stale entries, sleep, repeat. The whole pipeline runs on a single
// goroutine, which gives at-most-one-in-flight semantics per pull request
// without per-ref locking.
type PollService struct {
	fetchers   map[string]driven.SnapshotFetcher
	detector   *Detector
	dispatcher *Dispatcher
	store      driven.StateStore
	targets    []Target
	interval   time.Duration
}

// NewPollService creates a PollService. fetchers maps server names to their
// read clients; every target's server must have a fetcher.
func NewPollService(
	fetchers map[string]driven.SnapshotFetcher,
	detector *Detector,
	dispatcher *Dispatcher,
	store driven.StateStore,
	targets []Target,
	interval time.Duration,
) *PollService {
	return &PollService{
		fetchers:   fetchers,
		detector:   detector,
		dispatcher: dispatcher,
		store:      store,
		targets:    targets,
		interval:   interval,
	}
}

// Start begins the polling loop. It runs an immediate cycle, then polls on
// the configured interval. Start blocks until the context is canceled; it
// returns between pull requests, never mid-dispatch.
func (s *PollService) Start(ctx context.Context) {
	if err := s.RunCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("initial poll cycle failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("poll service stopped")
			return
		case <-ticker.C:
			if err := s.RunCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("poll cycle failed", "error", err)
			}
		}
	}
}

// RunCycle performs one full monitoring cycle across all targets. Per-target
// and per-action errors are contained and logged; the only error RunCycle
// itself returns is context cancellation.
func (s *PollService) RunCycle(ctx context.Context) error {
	start := time.Now()
	seen := make(map[model.PullRequestRef]struct{})
	polled := make(map[model.RepoRef]struct{})

	var prs, actions, errCount int

	for _, target := range s.targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		fetcher, ok := s.fetchers[target.Server]
		if !ok {
			slog.Error("no client configured for server", "server", target.Server, "repo", target.RepoFullName)
			errCount++
			continue
		}

		snapshots, err := fetcher.FetchOpenPullRequests(ctx, target.RepoFullName)
		switch {
		case errors.Is(err, context.Canceled):
			return err
		case errors.Is(err, driven.ErrRateLimited):
			slog.Warn("rate limited, skipping repository until next cycle",
				"server", target.Server, "repo", target.RepoFullName)
			errCount++
			continue
		case errors.Is(err, driven.ErrPermission):
			slog.Error("token lacks required scope for repository",
				"server", target.Server, "repo", target.RepoFullName, "error", err)
			errCount++
			continue
		case err != nil:
			slog.Error("repo poll failed",
				"server", target.Server, "repo", target.RepoFullName, "error", err)
			errCount++
			continue
		}

		polled[target] = struct{}{}

		for _, snap := range snapshots {
			if err := ctx.Err(); err != nil {
				return err
			}

			prs++
			seen[snap.Ref] = struct{}{}

			required := s.detector.Detect(s.store.Get(snap.Ref), snap)
			actions += len(required)

			// Dispatch runs even with zero actions so the stored fingerprint
			// advances for unchanged-but-newly-seen pull requests.
			if err := s.dispatcher.Dispatch(ctx, snap, required); err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				errCount++
			}
		}
	}

	evicted := s.store.EvictStale(seen, polled)
	for _, ref := range evicted {
		slog.Info("evicted stale pull request",
			"server", ref.Server, "repo", ref.RepoFullName, "pr", ref.Number)
	}

	stats := s.Stats()
	slog.Info("poll cycle complete",
		"targets", stats.Targets,
		"prs", prs,
		"actions", actions,
		"errors", errCount,
		"evicted", len(evicted),
		"tracked", stats.TrackedPRs,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return nil
}

// Stats reports the number of configured servers and targets and the number
// of currently tracked pull requests.
func (s *PollService) Stats() Stats {
	return Stats{
		Servers:    len(s.fetchers),
		Targets:    len(s.targets),
		TrackedPRs: s.store.Len(),
	}
}
