package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/violinyanev/praier/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "praier.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_Full(t *testing.T) {
	t.Setenv("TEST_GH_TOKEN", "secret-token")

	path := writeConfig(t, `
github_servers:
  - name: "public"
    url: "https://api.github.com"
    token: "${TEST_GH_TOKEN}"
  - name: "enterprise"
    url: "https://github.example.com/api/v3"
    token: "plain-token"

monitoring:
  poll_interval: 90s
  repositories:
    - "owner/repo1"
    - "enterprise:owner/repo2"
  auto_approve_actions: true
  auto_fix_with_copilot: false
  eviction_cycles: 3

log_level: "debug"
`)

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	require.Len(t, cfg.Servers, 2)
	assert.Equal(t, "public", cfg.Servers[0].Name)
	assert.Equal(t, "secret-token", cfg.Servers[0].Token, "token env reference is expanded")
	assert.Equal(t, "plain-token", cfg.Servers[1].Token)

	assert.Equal(t, 90*time.Second, cfg.Monitoring.PollInterval)
	assert.Equal(t, []string{"owner/repo1", "enterprise:owner/repo2"}, cfg.Monitoring.Repositories)
	assert.True(t, cfg.Monitoring.AutoApproveEnabled())
	assert.False(t, cfg.Monitoring.AutoFixEnabled())
	assert.Equal(t, 3, cfg.Monitoring.EvictionCycles)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
github_servers:
  - name: "public"
    token: "tok"
`)

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.github.com", cfg.Servers[0].URL)
	assert.Equal(t, 60*time.Second, cfg.Monitoring.PollInterval)
	assert.Equal(t, 1, cfg.Monitoring.EvictionCycles)
	assert.True(t, cfg.Monitoring.AutoApproveEnabled())
	assert.True(t, cfg.Monitoring.AutoFixEnabled())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFile_BareSecondsInterval(t *testing.T) {
	path := writeConfig(t, `
monitoring:
  poll_interval: 120
`)

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Monitoring.PollInterval)
}

func TestLoadFile_InvalidInterval(t *testing.T) {
	path := writeConfig(t, `
monitoring:
  poll_interval: soon
`)

	_, err := config.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll_interval")
}

func TestLoadFile_NegativeInterval(t *testing.T) {
	path := writeConfig(t, `
monitoring:
  poll_interval: -10s
`)

	_, err := config.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive")
}

func TestLoadFile_InvalidRepository(t *testing.T) {
	path := writeConfig(t, `
monitoring:
  repositories:
    - "not-a-repo"
`)

	_, err := config.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner/name")
}

func TestLoadFile_UnknownServerPrefix(t *testing.T) {
	path := writeConfig(t, `
github_servers:
  - name: "public"
monitoring:
  repositories:
    - "ghost:owner/repo"
`)

	_, err := config.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown server")
}

func TestLoadFile_DuplicateServerNames(t *testing.T) {
	path := writeConfig(t, `
github_servers:
  - name: "public"
  - name: "public"
`)

	_, err := config.LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate server name")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadEnv_SingleServer(t *testing.T) {
	t.Setenv("GITHUB_URL", "")
	t.Setenv("GITHUB_NAME", "")
	t.Setenv("GITHUB_TOKEN", "env-token")
	t.Setenv("PRAIER_SERVER_COUNT", "")
	t.Setenv("PRAIER_POLL_INTERVAL", "30s")
	t.Setenv("PRAIER_REPOSITORIES", "owner/repo1, owner/repo2")
	t.Setenv("PRAIER_AUTO_APPROVE", "false")
	t.Setenv("PRAIER_AUTO_FIX", "")
	t.Setenv("PRAIER_EVICTION_CYCLES", "2")
	t.Setenv("PRAIER_LOG_LEVEL", "warn")
	t.Setenv("PRAIER_LOG_FILE", "")

	cfg, err := config.LoadEnv()
	require.NoError(t, err)

	require.Len(t, cfg.Servers, 1)
	assert.Equal(t, "default", cfg.Servers[0].Name)
	assert.Equal(t, "https://api.github.com", cfg.Servers[0].URL)
	assert.Equal(t, "env-token", cfg.Servers[0].Token)

	assert.Equal(t, 30*time.Second, cfg.Monitoring.PollInterval)
	assert.Equal(t, []string{"owner/repo1", "owner/repo2"}, cfg.Monitoring.Repositories)
	assert.False(t, cfg.Monitoring.AutoApproveEnabled())
	assert.True(t, cfg.Monitoring.AutoFixEnabled())
	assert.Equal(t, 2, cfg.Monitoring.EvictionCycles)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadEnv_MultipleServers(t *testing.T) {
	t.Setenv("GITHUB_URL", "")
	t.Setenv("GITHUB_NAME", "public")
	t.Setenv("GITHUB_TOKEN", "tok0")
	t.Setenv("PRAIER_SERVER_COUNT", "2")
	t.Setenv("GITHUB_1_GITHUB_URL", "https://github.example.com/api/v3")
	t.Setenv("GITHUB_1_GITHUB_NAME", "enterprise")
	t.Setenv("GITHUB_1_GITHUB_TOKEN", "tok1")
	t.Setenv("PRAIER_POLL_INTERVAL", "")
	t.Setenv("PRAIER_REPOSITORIES", "")
	t.Setenv("PRAIER_AUTO_APPROVE", "")
	t.Setenv("PRAIER_AUTO_FIX", "")
	t.Setenv("PRAIER_EVICTION_CYCLES", "")
	t.Setenv("PRAIER_LOG_LEVEL", "")

	cfg, err := config.LoadEnv()
	require.NoError(t, err)

	require.Len(t, cfg.Servers, 2)
	assert.Equal(t, "public", cfg.Servers[0].Name)
	assert.Equal(t, "enterprise", cfg.Servers[1].Name)
	assert.Equal(t, "https://github.example.com/api/v3", cfg.Servers[1].URL)
	assert.Equal(t, "tok1", cfg.Servers[1].Token)
}

func TestServerConfigs(t *testing.T) {
	path := writeConfig(t, `
github_servers:
  - name: "enterprise"
    url: "https://github.example.com/api/v3"
    token: "tok"
`)

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	servers := cfg.ServerConfigs()
	require.Len(t, servers, 1)
	assert.Equal(t, "enterprise", servers[0].Name)
	assert.True(t, servers[0].IsEnterprise())
	assert.True(t, servers[0].HasToken())
}
