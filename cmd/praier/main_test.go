package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/violinyanev/praier/internal/application"
	"github.com/violinyanev/praier/internal/config"
	"github.com/violinyanev/praier/internal/domain/port/driven"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestBuildTargets_PlainRepoFansOutAcrossServers(t *testing.T) {
	cfg := &config.Config{
		Monitoring: config.Monitoring{Repositories: []string{"owner/repo"}},
	}
	fetchers := map[string]driven.SnapshotFetcher{"default": nil}

	targets := buildTargets(cfg, fetchers)

	require.Len(t, targets, 1)
	assert.Equal(t, application.Target{Server: "default", RepoFullName: "owner/repo"}, targets[0])
}

func TestBuildTargets_PrefixRestrictsToNamedServer(t *testing.T) {
	cfg := &config.Config{
		Monitoring: config.Monitoring{Repositories: []string{"enterprise:owner/repo"}},
	}
	fetchers := map[string]driven.SnapshotFetcher{
		"default":    nil,
		"enterprise": nil,
	}

	targets := buildTargets(cfg, fetchers)

	require.Len(t, targets, 1)
	assert.Equal(t, application.Target{Server: "enterprise", RepoFullName: "owner/repo"}, targets[0])
}

func TestBuildTargets_UnknownServerPrefixWarns(t *testing.T) {
	buf := captureLogs(t)

	cfg := &config.Config{
		Monitoring: config.Monitoring{Repositories: []string{
			"ghost:owner/repo",
			"owner/kept",
		}},
	}
	fetchers := map[string]driven.SnapshotFetcher{"default": nil}

	targets := buildTargets(cfg, fetchers)

	require.Len(t, targets, 1)
	assert.Equal(t, "owner/kept", targets[0].RepoFullName)
	assert.Contains(t, buf.String(), "ghost", "a dropped target must name the unknown server")
	assert.Contains(t, buf.String(), "skipping repository")
}
