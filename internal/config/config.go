// Package config loads application configuration from a YAML file or from
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/violinyanev/praier/internal/domain/model"
)

// Server is one GitHub-compatible server entry in the configuration.
// Token values are expanded against the environment, so YAML files can hold
// "${GITHUB_TOKEN}" instead of the secret itself.
type Server struct {
	Name  string `yaml:"name"`
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// Monitoring holds the polling behavior settings.
type Monitoring struct {
	PollInterval   time.Duration `yaml:"-"`
	RawInterval    string        `yaml:"poll_interval"`
	Repositories   []string      `yaml:"repositories"`
	AutoApprove    *bool         `yaml:"auto_approve_actions"`
	AutoFix        *bool         `yaml:"auto_fix_with_copilot"`
	EvictionCycles int           `yaml:"eviction_cycles"`
}

// Config is the root configuration.
type Config struct {
	Servers    []Server   `yaml:"github_servers"`
	Monitoring Monitoring `yaml:"monitoring"`
	LogLevel   string     `yaml:"log_level"`
	LogFile    string     `yaml:"log_file"`
}

// LoadFile reads and validates configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnv builds configuration from environment variables, loading a .env
// file first if one exists. The primary server reads GITHUB_URL, GITHUB_TOKEN
// and GITHUB_NAME; additional servers use GITHUB_<i>_ prefixes up to
// PRAIER_SERVER_COUNT. Monitoring settings use the PRAIER_ prefix.
func LoadEnv() (*Config, error) {
	_ = godotenv.Load()

	servers := []Server{serverFromEnv("")}
	count := 1
	if v := os.Getenv("PRAIER_SERVER_COUNT"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PRAIER_SERVER_COUNT has invalid value %q: %w", v, err)
		}
		count = parsed
	}
	for i := 1; i < count; i++ {
		servers = append(servers, serverFromEnv(fmt.Sprintf("GITHUB_%d_", i)))
	}

	cfg := Config{
		Servers: servers,
		Monitoring: Monitoring{
			RawInterval:  os.Getenv("PRAIER_POLL_INTERVAL"),
			Repositories: splitList(os.Getenv("PRAIER_REPOSITORIES")),
		},
		LogLevel: os.Getenv("PRAIER_LOG_LEVEL"),
		LogFile:  os.Getenv("PRAIER_LOG_FILE"),
	}

	if v := os.Getenv("PRAIER_AUTO_APPROVE"); v != "" {
		b := strings.EqualFold(v, "true")
		cfg.Monitoring.AutoApprove = &b
	}
	if v := os.Getenv("PRAIER_AUTO_FIX"); v != "" {
		b := strings.EqualFold(v, "true")
		cfg.Monitoring.AutoFix = &b
	}
	if v := os.Getenv("PRAIER_EVICTION_CYCLES"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PRAIER_EVICTION_CYCLES has invalid value %q: %w", v, err)
		}
		cfg.Monitoring.EvictionCycles = parsed
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ServerConfigs converts the configured servers to immutable domain configs.
func (c *Config) ServerConfigs() []model.ServerConfig {
	out := make([]model.ServerConfig, 0, len(c.Servers))
	for _, s := range c.Servers {
		out = append(out, model.ServerConfig{
			Name:  s.Name,
			URL:   s.URL,
			Token: s.Token,
		})
	}
	return out
}

// AutoApproveEnabled reports whether queued/waiting workflow runs should be
// approved automatically.
func (m Monitoring) AutoApproveEnabled() bool {
	return m.AutoApprove == nil || *m.AutoApprove
}

// AutoFixEnabled reports whether failing checks should trigger a Copilot
// comment.
func (m Monitoring) AutoFixEnabled() bool {
	return m.AutoFix == nil || *m.AutoFix
}

// finish applies defaults, expands secrets, and validates.
func (c *Config) finish() error {
	if err := c.setDefaults(); err != nil {
		return err
	}
	return c.validate()
}

func (c *Config) setDefaults() error {
	if len(c.Servers) == 0 {
		c.Servers = []Server{serverFromEnv("")}
	}
	for i := range c.Servers {
		if c.Servers[i].Name == "" {
			c.Servers[i].Name = "default"
		}
		if c.Servers[i].URL == "" {
			c.Servers[i].URL = model.DefaultServerURL
		}
		c.Servers[i].Token = os.ExpandEnv(c.Servers[i].Token)
	}

	if c.Monitoring.RawInterval == "" {
		c.Monitoring.RawInterval = "60s"
	}
	interval, err := parseInterval(c.Monitoring.RawInterval)
	if err != nil {
		return fmt.Errorf("parsing poll_interval %q: %w", c.Monitoring.RawInterval, err)
	}
	c.Monitoring.PollInterval = interval

	if c.Monitoring.EvictionCycles == 0 {
		c.Monitoring.EvictionCycles = 1
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	return nil
}

func (c *Config) validate() error {
	if c.Monitoring.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.Monitoring.RawInterval)
	}
	if c.Monitoring.EvictionCycles < 1 {
		return fmt.Errorf("eviction_cycles must be at least 1, got %d", c.Monitoring.EvictionCycles)
	}

	names := make(map[string]bool, len(c.Servers))
	for i, s := range c.Servers {
		if s.Name == "" {
			return fmt.Errorf("github_servers[%d]: name required", i)
		}
		if names[s.Name] {
			return fmt.Errorf("github_servers[%d]: duplicate server name %q", i, s.Name)
		}
		names[s.Name] = true
	}

	for i, repo := range c.Monitoring.Repositories {
		target := repo
		if server, rest, ok := strings.Cut(repo, ":"); ok {
			if !names[server] {
				return fmt.Errorf("repositories[%d]: unknown server %q in %q", i, server, repo)
			}
			target = rest
		}
		parts := strings.Split(target, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return fmt.Errorf("repositories[%d]: invalid repository %q: expected owner/name", i, repo)
		}
	}

	return nil
}

// parseInterval accepts Go duration strings ("90s", "2m") and, for
// compatibility with older configs, bare integers interpreted as seconds.
func parseInterval(raw string) (time.Duration, error) {
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(raw)
}

func serverFromEnv(prefix string) Server {
	url := os.Getenv(prefix + "GITHUB_URL")
	if url == "" {
		url = model.DefaultServerURL
	}
	name := os.Getenv(prefix + "GITHUB_NAME")
	if name == "" {
		name = "default"
		if prefix != "" {
			name = strings.ToLower(strings.TrimSuffix(prefix, "_"))
		}
	}
	return Server{
		Name:  name,
		URL:   url,
		Token: os.Getenv(prefix + "GITHUB_TOKEN"),
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
