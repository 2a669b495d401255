// Command praier monitors pull requests on GitHub-compatible servers,
// auto-approving workflow runs held for approval and asking Copilot to fix
// failing checks.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/violinyanev/praier/internal/adapter/driven/github"
	"github.com/violinyanev/praier/internal/adapter/driven/memory"
	"github.com/violinyanev/praier/internal/application"
	"github.com/violinyanev/praier/internal/config"
	"github.com/violinyanev/praier/internal/domain/port/driven"
	"github.com/violinyanev/praier/internal/logging"
)

const sampleConfig = `# Praier configuration file.

github_servers:
  - name: "public"
    url: "https://api.github.com"
    token: "${GITHUB_TOKEN}"

  # Example for GitHub Enterprise Server
  # - name: "enterprise"
  #   url: "https://github.company.com/api/v3"
  #   token: "${GITHUB_ENTERPRISE_TOKEN}"

monitoring:
  poll_interval: 60s
  repositories:
    - "owner/repo1"
    - "owner/repo2"
    # Restrict a repository to one server:
    # - "enterprise:owner/repo3"
  auto_approve_actions: true
  auto_fix_with_copilot: true
  eviction_cycles: 1

log_level: "info"
`

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "praier",
	Short: "Automate pull request workflows with GitHub Actions and Copilot",
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Start monitoring pull requests",
	RunE: func(cmd *cobra.Command, _ []string) error {
		once, _ := cmd.Flags().GetBool("once")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runMonitor(cfg, once)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the resolved configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		cmd.Printf("GitHub servers: %d\n", len(cfg.Servers))
		for i, s := range cfg.Servers {
			token := "missing"
			if s.Token != "" {
				token = "configured"
			}
			cmd.Printf("  %d. %s (%s) - token %s\n", i+1, s.Name, s.URL, token)
		}

		cmd.Printf("\nPoll interval: %s\n", cfg.Monitoring.PollInterval)
		cmd.Printf("Auto-approve actions: %t\n", cfg.Monitoring.AutoApproveEnabled())
		cmd.Printf("Auto-fix with Copilot: %t\n", cfg.Monitoring.AutoFixEnabled())
		cmd.Printf("Eviction cycles: %d\n", cfg.Monitoring.EvictionCycles)

		if len(cfg.Monitoring.Repositories) == 0 {
			cmd.Println("\nRepositories: none configured")
		} else {
			cmd.Printf("\nRepositories (%d):\n", len(cfg.Monitoring.Repositories))
			for _, repo := range cfg.Monitoring.Repositories {
				cmd.Printf("  - %s\n", repo)
			}
		}

		cmd.Printf("\nLog level: %s\n", cfg.LogLevel)
		return nil
	},
}

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config",
	Short: "Print or write a sample configuration file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			cmd.Print(sampleConfig)
			return nil
		}
		if err := os.WriteFile(output, []byte(sampleConfig), 0o644); err != nil {
			return fmt.Errorf("writing sample config: %w", err)
		}
		cmd.Printf("Sample configuration written to %s\n", output)
		return nil
	},
}

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection REPOSITORY",
	Short: "Verify credentials and list open PRs for a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		serverName, _ := cmd.Flags().GetString("server")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runTestConnection(cmd, cfg, serverName, args[0])
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")

	monitorCmd.Flags().Bool("once", false, "run a single poll cycle and exit")
	generateConfigCmd.Flags().StringP("output", "o", "", "output file path")
	testConnectionCmd.Flags().StringP("server", "s", "default", "server name to test against")

	rootCmd.AddCommand(monitorCmd, statusCmd, generateConfigCmd, testConnectionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves configuration from the --config file or, absent one,
// the environment. The --log-level flag overrides the configured level.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.LoadEnv()
	}
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// runMonitor wires the adapters and runs the poll loop until a shutdown
// signal arrives (or one cycle completes, with --once).
func runMonitor(cfg *config.Config, once bool) error {
	closeLogs, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeLogs() }()

	if len(cfg.Monitoring.Repositories) == 0 {
		return fmt.Errorf("no repositories configured: set monitoring.repositories or PRAIER_REPOSITORIES")
	}

	fetchers := make(map[string]driven.SnapshotFetcher)
	writers := make(map[string]driven.WorkflowWriter)
	for _, server := range cfg.ServerConfigs() {
		if !server.HasToken() {
			slog.Warn("no token provided for server, skipping", "server", server.Name)
			continue
		}
		client, err := githubadapter.NewClient(server)
		if err != nil {
			return err
		}
		fetchers[server.Name] = client
		writers[server.Name] = client
		slog.Info("github client created", "server", server.Name, "url", server.URL)
	}
	if len(fetchers) == 0 {
		return fmt.Errorf("no servers with tokens configured: set GITHUB_TOKEN or provide a config file")
	}

	targets := buildTargets(cfg, fetchers)
	if len(targets) == 0 {
		return fmt.Errorf("no pollable targets: every configured repository maps to a server without credentials")
	}

	store := memory.NewStateStore(cfg.Monitoring.EvictionCycles)
	detector := application.NewDetector(cfg.Monitoring.AutoApproveEnabled(), cfg.Monitoring.AutoFixEnabled())
	dispatcher := application.NewDispatcher(writers, store)
	svc := application.NewPollService(fetchers, detector, dispatcher, store, targets, cfg.Monitoring.PollInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("praier started",
		"servers", len(fetchers),
		"targets", len(targets),
		"poll_interval", cfg.Monitoring.PollInterval,
		"auto_approve", cfg.Monitoring.AutoApproveEnabled(),
		"auto_fix", cfg.Monitoring.AutoFixEnabled(),
	)

	if once {
		return svc.RunCycle(ctx)
	}

	svc.Start(ctx)
	slog.Info("shutdown complete")
	return nil
}

// buildTargets expands the configured repositories across servers. A plain
// "owner/name" entry is polled on every server with credentials; a
// "server:owner/name" entry only on the named server.
func buildTargets(cfg *config.Config, fetchers map[string]driven.SnapshotFetcher) []application.Target {
	var targets []application.Target
	for _, repo := range cfg.Monitoring.Repositories {
		if server, rest, ok := strings.Cut(repo, ":"); ok {
			if _, exists := fetchers[server]; !exists {
				slog.Warn("skipping repository: no credentialed server with that name",
					"server", server, "repo", rest)
				continue
			}
			targets = append(targets, application.Target{Server: server, RepoFullName: rest})
			continue
		}
		for name := range fetchers {
			targets = append(targets, application.Target{Server: name, RepoFullName: repo})
		}
	}
	return targets
}

// runTestConnection validates the named server's token and prints the open
// pull requests found in the repository.
func runTestConnection(cmd *cobra.Command, cfg *config.Config, serverName, repo string) error {
	for _, server := range cfg.ServerConfigs() {
		if server.Name != serverName {
			continue
		}
		if !server.HasToken() {
			return fmt.Errorf("no token configured for server %q", serverName)
		}

		client, err := githubadapter.NewClient(server)
		if err != nil {
			return err
		}

		cmd.Printf("Testing connection to %s...\n", server.URL)

		username, err := client.ValidateToken(cmd.Context())
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}
		cmd.Printf("Authenticated as %s\n", username)

		snapshots, err := client.FetchOpenPullRequests(cmd.Context(), repo)
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}

		cmd.Printf("Found %d open pull requests in %s:\n", len(snapshots), repo)
		for i, snap := range snapshots {
			if i == 5 {
				cmd.Printf("  ... and %d more\n", len(snapshots)-5)
				break
			}
			cmd.Printf("  #%d: %s (%s)\n", snap.Ref.Number, snap.Title, snap.Author)
		}
		return nil
	}
	return fmt.Errorf("server %q not found in configuration", serverName)
}
